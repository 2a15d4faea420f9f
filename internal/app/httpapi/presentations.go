package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
)

type presentationRequest struct {
	Title  string             `json:"title" binding:"required,max=200"`
	Slides []domain.SlideSpec `json:"slides" binding:"required,min=1,max=50,dive"`
}

func (a *API) listPresentations(c *gin.Context) {
	lista, err := a.presentations.List(c.Request.Context(), userID(c))
	if err != nil {
		a.falha(c, "erro ao listar apresentacoes", err)
		return
	}
	responderJSON(c, http.StatusOK, lista)
}

func (a *API) getPresentation(c *gin.Context) {
	p, err := a.presentations.Get(c.Request.Context(), domain.PresentationID(c.Param("id")), userID(c))
	if err != nil {
		a.falha(c, "erro ao obter apresentacao", err)
		return
	}
	responderJSON(c, http.StatusOK, p)
}

func (a *API) createPresentation(c *gin.Context) {
	a.savePresentation(c, "", http.StatusCreated)
}

func (a *API) updatePresentation(c *gin.Context) {
	a.savePresentation(c, domain.PresentationID(c.Param("id")), http.StatusOK)
}

func (a *API) savePresentation(c *gin.Context, id domain.PresentationID, status int) {
	var req presentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido ao salvar apresentacao", bindErro(err))
		return
	}
	salvo, err := a.presentations.Save(c.Request.Context(), domain.SavedPresentation{
		ID:      id,
		OwnerID: userID(c),
		Title:   req.Title,
		Slides:  req.Slides,
	})
	if err != nil {
		a.falha(c, "falha ao salvar apresentacao", err)
		return
	}
	responderJSON(c, status, salvo)
}

func (a *API) deletePresentation(c *gin.Context) {
	if err := a.presentations.Delete(c.Request.Context(), domain.PresentationID(c.Param("id")), userID(c)); err != nil {
		a.falha(c, "falha ao excluir apresentacao", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) launchPresentation(c *gin.Context) {
	view, err := a.presentations.Launch(c.Request.Context(), domain.PresentationID(c.Param("id")), userID(c))
	if err != nil {
		a.falha(c, "falha ao lancar apresentacao", err)
		return
	}
	responderJSON(c, http.StatusCreated, view)
}
