// Pacote httpapi expõe a API REST e o stream SSE das enquetes sobre o gin.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/health"
)

// Streamer acompanha uma enquete e chama onChange a cada mudança do estado reduzido.
type Streamer interface {
	Run(ctx context.Context, code string, onChange func(event string, snap domain.Snapshot) error) error
}

// Options agrega o que a API precisa além dos serviços.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	Heartbeat      time.Duration
	// Ready responde o /readyz; sem ele a rota não é registrada.
	Ready *health.Checker
}

// API empacota os handlers HTTP ligados aos serviços da aplicação e ao logger.
type API struct {
	polls         domain.PollService
	voting        domain.VotingService
	presentations domain.PresentationService
	admin         domain.AdminService
	auth          domain.Authenticator
	streamer      Streamer
	opts          Options
	logger        *slog.Logger
}

func New(
	polls domain.PollService,
	voting domain.VotingService,
	presentations domain.PresentationService,
	admin domain.AdminService,
	auth domain.Authenticator,
	streamer Streamer,
	opts Options,
	logger *slog.Logger,
) *API {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		polls:         polls,
		voting:        voting,
		presentations: presentations,
		admin:         admin,
		auth:          auth,
		streamer:      streamer,
		opts:          opts,
		logger:        logger,
	}
}

// Handler monta o roteador completo. As rotas ficam centralizadas aqui para facilitar os testes.
func (a *API) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())
	if len(a.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     a.opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerVoterToken},
			ExposeHeaders:    []string{headerVoterToken},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", gin.WrapF(health.LiveHandler()))
	if a.opts.Ready != nil {
		r.GET("/readyz", gin.WrapF(a.opts.Ready.ReadyHandler()))
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	polls := api.Group("/polls")
	polls.POST("", a.optionalAuth(), a.createPoll)
	polls.GET("/:code", a.voterSession(), a.getPoll)
	polls.PUT("/:code/active-slide", a.optionalAuth(), a.updateActiveSlide)
	polls.PUT("/:code/status", a.optionalAuth(), a.updateStatus)
	polls.POST("/:code/slides", a.optionalAuth(), a.addSlide)
	polls.POST("/:code/archive", a.optionalAuth(), a.archivePoll)
	polls.DELETE("/:code", a.optionalAuth(), a.deletePoll)
	polls.GET("/:code/slides/:slideID/results", a.getResults)
	polls.POST("/:code/slides/:slideID/participants", a.voterSession(), a.trackParticipant)
	polls.GET("/:code/stream", a.stream)

	api.POST("/votes", a.voterSession(), a.submitVote)

	api.GET("/me/polls", a.requireAuth(), a.myPolls)

	pres := api.Group("/presentations", a.requireAuth())
	pres.GET("", a.listPresentations)
	pres.POST("", a.createPresentation)
	pres.GET("/:id", a.getPresentation)
	pres.PUT("/:id", a.updatePresentation)
	pres.DELETE("/:id", a.deletePresentation)
	pres.POST("/:id/launch", a.launchPresentation)

	admin := api.Group("/admin", a.requireAuth(), a.requireAdmin())
	admin.GET("/polls", a.adminPolls)
	admin.GET("/stats", a.adminStats)
	admin.GET("/system", a.adminSystem)
	admin.POST("/maintenance", a.adminMaintenance)

	return r
}
