package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
)

const (
	cookieVoterSession = "voter_session"
	headerVoterToken   = "X-Voter-Token"
	voterSessionMaxAge = 365 * 24 * 60 * 60

	ctxVoterToken = "voter_token"
	ctxUserID     = "user_id"
)

// voterSession garante um token de votante por navegador: aceita o header, depois o
// cookie, e na falta dos dois gera um UUID novo e devolve como cookie HttpOnly.
func (a *API) voterSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(headerVoterToken)
		if !ids.ValidVoterToken(token) {
			token, _ = c.Cookie(cookieVoterSession)
		}
		if !ids.ValidVoterToken(token) {
			token = ids.NewVoterToken()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieVoterSession, token, voterSessionMaxAge, "/", "", a.opts.SecureCookies, true)
		}
		c.Header(headerVoterToken, token)
		c.Set(ctxVoterToken, token)
		c.Next()
	}
}

// optionalAuth identifica o apresentador quando há bearer; sem bearer a requisição segue anônima.
func (a *API) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c.GetHeader("Authorization"))
		if bearer == "" {
			c.Next()
			return
		}
		a.authenticate(c, bearer)
	}
}

func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c.GetHeader("Authorization"))
		if bearer == "" {
			responderErro(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		a.authenticate(c, bearer)
	}
}

func (a *API) authenticate(c *gin.Context, bearer string) {
	userID, err := a.auth.Authenticate(c.Request.Context(), bearer)
	if err != nil {
		a.logger.WarnContext(c.Request.Context(), "bearer recusado", "error", err)
		responderErro(c, domain.ErrUnauthorized)
		c.Abort()
		return
	}
	c.Set(ctxUserID, userID)
	c.Next()
}

func (a *API) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := a.admin.IsAdmin(c.Request.Context(), c.GetString(ctxUserID))
		if err != nil {
			responderErro(c, err)
			c.Abort()
			return
		}
		if !ok {
			responderErro(c, domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLogger registra a conclusão de cada requisição; health e metrics ficam de fora.
func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			c.Next()
			return
		}

		inicio := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		a.logger.Log(c.Request.Context(), level, "requisicao concluida",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(inicio),
			"client_ip", c.ClientIP(),
		)
	}
}

func bearerToken(header string) string {
	tipo, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(tipo, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func voterToken(c *gin.Context) string { return c.GetString(ctxVoterToken) }

func userID(c *gin.Context) string { return c.GetString(ctxUserID) }
