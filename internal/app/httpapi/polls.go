package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
)

type activeSlideRequest struct {
	SlideID string `json:"slide_id" binding:"required"`
}

type statusRequest struct {
	Status domain.PollStatus `json:"status" binding:"required"`
}

// pollResponse é a enquete acrescida dos slides em que a sessão atual já votou.
type pollResponse struct {
	domain.PollView
	VotedSlideIDs []domain.SlideID `json:"voted_slide_ids"`
}

func (a *API) createPoll(c *gin.Context) {
	var req domain.CreatePollInput
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido ao criar enquete", bindErro(err))
		return
	}

	view, err := a.polls.CreatePoll(c.Request.Context(), req, userID(c))
	if err != nil {
		a.falha(c, "falha ao criar enquete", err)
		return
	}
	responderJSON(c, http.StatusCreated, view)
}

func (a *API) getPoll(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	view, err := a.polls.GetPoll(ctx, code)
	if err != nil {
		a.falha(c, "erro ao obter enquete", err)
		return
	}

	votados, err := a.voting.GetVotedSlideIDs(ctx, code, nil, voterToken(c))
	if err != nil {
		a.falha(c, "erro ao obter slides votados", err)
		return
	}
	if votados == nil {
		votados = []domain.SlideID{}
	}
	responderJSON(c, http.StatusOK, pollResponse{PollView: view, VotedSlideIDs: votados})
}

func (a *API) updateActiveSlide(c *gin.Context) {
	var req activeSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido ao trocar slide", bindErro(err))
		return
	}
	view, err := a.polls.UpdateActiveSlide(c.Request.Context(), c.Param("code"), domain.SlideID(req.SlideID), userID(c))
	if err != nil {
		a.falha(c, "falha ao trocar slide ativo", err)
		return
	}
	responderJSON(c, http.StatusOK, view)
}

func (a *API) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido ao mudar status", bindErro(err))
		return
	}
	view, err := a.polls.UpdatePollStatus(c.Request.Context(), c.Param("code"), req.Status, userID(c))
	if err != nil {
		a.falha(c, "falha ao mudar status", err)
		return
	}
	responderJSON(c, http.StatusOK, view)
}

func (a *API) addSlide(c *gin.Context) {
	var req domain.AddSlideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido ao adicionar slide", bindErro(err))
		return
	}
	view, err := a.polls.AddSlideToPoll(c.Request.Context(), c.Param("code"), req, userID(c))
	if err != nil {
		a.falha(c, "falha ao adicionar slide", err)
		return
	}
	responderJSON(c, http.StatusCreated, view)
}

func (a *API) archivePoll(c *gin.Context) {
	if err := a.polls.ArchivePoll(c.Request.Context(), c.Param("code"), userID(c)); err != nil {
		a.falha(c, "falha ao arquivar enquete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) deletePoll(c *gin.Context) {
	if err := a.polls.DeletePoll(c.Request.Context(), c.Param("code"), userID(c)); err != nil {
		a.falha(c, "falha ao excluir enquete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) myPolls(c *gin.Context) {
	lista, err := a.polls.ListByPresenter(c.Request.Context(), userID(c))
	if err != nil {
		a.falha(c, "erro ao listar enquetes do apresentador", err)
		return
	}
	if lista == nil {
		lista = []domain.PollSummary{}
	}
	responderJSON(c, http.StatusOK, lista)
}

// falha registra o erro no nível adequado e responde com o status mapeado.
func (a *API) falha(c *gin.Context, msg string, err error) {
	ctx := c.Request.Context()
	if statusFromError(err) >= http.StatusInternalServerError {
		a.logger.ErrorContext(ctx, msg, "error", err, "path", c.FullPath())
	} else {
		a.logger.DebugContext(ctx, msg, "error", err, "path", c.FullPath())
	}
	responderErro(c, err)
}
