package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

type voteRequest struct {
	Code     string `json:"code" binding:"required"`
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
}

func (a *API) submitVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.falha(c, "payload invalido ao registrar voto", bindErro(err))
		return
	}

	ballot, err := domain.NewBallot(req.OptionID, req.Text)
	if err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.falha(c, "voto sem conteudo valido", err)
		return
	}

	receipt, err := a.voting.SubmitVote(c.Request.Context(), domain.VoteRequest{
		Code:       req.Code,
		Ballot:     ballot,
		VoterToken: voterToken(c),
		OriginIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		a.logger.WarnContext(c.Request.Context(), "falha ao registrar voto", "error", err, "code", req.Code, "status", statusFromError(err))
		responderErro(c, err)
		return
	}
	responderJSON(c, http.StatusCreated, receipt)
}

func (a *API) trackParticipant(c *gin.Context) {
	err := a.voting.TrackParticipant(c.Request.Context(), c.Param("code"), domain.SlideID(c.Param("slideID")), voterToken(c))
	if err != nil {
		a.falha(c, "falha ao registrar participante", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) getResults(c *gin.Context) {
	resultado, err := a.voting.GetVoteResults(c.Request.Context(), c.Param("code"), domain.SlideID(c.Param("slideID")))
	if err != nil {
		a.falha(c, "erro ao obter resultados", err)
		return
	}
	responderJSON(c, http.StatusOK, resultado)
}
