package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
)

type maintenanceRequest struct {
	Action string `json:"action" binding:"required"`
}

func (a *API) adminPolls(c *gin.Context) {
	lista, err := a.admin.ListPolls(c.Request.Context(), domain.PollStatus(c.Query("status")))
	if err != nil {
		a.falha(c, "erro ao listar enquetes", err)
		return
	}
	responderJSON(c, http.StatusOK, lista)
}

func (a *API) adminStats(c *gin.Context) {
	stats, err := a.admin.Stats(c.Request.Context())
	if err != nil {
		a.falha(c, "erro ao obter estatisticas", err)
		return
	}
	responderJSON(c, http.StatusOK, stats)
}

func (a *API) adminSystem(c *gin.Context) {
	responderJSON(c, http.StatusOK, a.admin.SystemStatus())
}

func (a *API) adminMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.falha(c, "payload invalido na manutencao", bindErro(err))
		return
	}
	report, err := a.admin.RunAction(c.Request.Context(), req.Action)
	if err != nil {
		a.falha(c, "falha na manutencao", err)
		return
	}
	a.logger.InfoContext(c.Request.Context(), "manutencao disparada pelo painel", "action", report.Action, "afetadas", report.Affected, "admin", userID(c))
	responderJSON(c, http.StatusOK, report)
}
