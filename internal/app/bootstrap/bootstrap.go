// Pacote bootstrap monta as dependências compartilhadas por API, worker e CLI a partir da configuração.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/app/maintenance"
	"github.com/marcelojr/enquetes/internal/app/polls"
	"github.com/marcelojr/enquetes/internal/app/presentations"
	"github.com/marcelojr/enquetes/internal/app/realtime"
	"github.com/marcelojr/enquetes/internal/app/voting"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/antifraude"
	"github.com/marcelojr/enquetes/internal/platform/clock"
	"github.com/marcelojr/enquetes/internal/platform/config"
	"github.com/marcelojr/enquetes/internal/platform/health"
	"github.com/marcelojr/enquetes/internal/platform/identity"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/logger"
	"github.com/marcelojr/enquetes/internal/platform/migrations"
	"github.com/marcelojr/enquetes/internal/platform/storage/pollstore"
	postgresstorage "github.com/marcelojr/enquetes/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/enquetes/internal/platform/storage/redis"
)

// Deps reúne conexões e serviços já ligados entre si.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Clock  domain.Clock

	DB    *gorm.DB
	SQL   *sql.DB
	Redis *goredis.Client

	Store           *pollstore.Store
	Admins          *postgresstorage.AdminRepository
	Subscriber      domain.Subscriber
	RealtimeBackend string

	Polls         *polls.Service
	Voting        *voting.Service
	Presentations *presentations.Service
	Sweeper       *maintenance.Sweeper
	Admin         *maintenance.AdminService
	Auth          domain.Authenticator
	Checker       *health.Checker
}

// NewLogger monta o logger a partir da seção log e o instala como padrão.
func NewLogger(cfg config.Config) *slog.Logger {
	l := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logger.FileOptions{
			Path:       cfg.Log.FilePath,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	})
	logger.SetDefault(l)
	return l
}

// Open conecta no Postgres (obrigatório) e no Redis (quando habilitado) e liga os serviços.
// O chamador deve chamar Close ao final.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*Deps, error) {
	d := &Deps{Config: cfg, Log: log, Clock: clock.NewSystemClock()}

	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	d.DB = db
	if d.SQL, err = db.DB(); err != nil {
		return nil, fmt.Errorf("bootstrap: obter sql.DB: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			d.Close()
			return nil, fmt.Errorf("bootstrap: migracao automatica: %w", err)
		}
	}

	if cfg.Redis.Enabled {
		client, err := redisstorage.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Redis = client
	}

	d.wire()
	return d, nil
}

func (d *Deps) wire() {
	cfg := d.Config

	var cache domain.Cache
	if cfg.CacheActive() && d.Redis != nil {
		cache = redisstorage.NewCache(d.Redis, cfg.Cache.KeyPrefix)
	}
	d.Store = pollstore.New(durable(d.DB), cache, d.Clock, pollstore.WithLogger(d.Log))

	var publisher domain.Publisher
	if d.Redis != nil {
		pubsub := redisstorage.NewPubSub(d.Redis)
		publisher, d.Subscriber = pubsub, pubsub
		d.RealtimeBackend = "redis"
	} else {
		hub := realtime.NewHub()
		publisher, d.Subscriber = hub, hub
		d.RealtimeBackend = "memory"
	}
	notifier := realtime.NewNotifier(publisher, d.Log)

	var guard domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimit.Enabled && d.Redis != nil {
		guard = antifraude.NewRedisRateLimiter(d.Redis, cfg.RateLimit.MaxActions, cfg.RateLimitWindow(), cfg.RateLimit.KeyPrefix)
	}

	d.Auth = identity.Anonymous{}
	if cfg.Auth.JWTSecret != "" {
		d.Auth = identity.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	}

	idGen := ids.NewGenerator()
	d.Polls = polls.NewService(d.Store, notifier, d.Clock, ids.NewCodeGenerator(cfg.Polls.CodeLength), idGen, polls.Settings{
		CodeLength:      cfg.Polls.CodeLength,
		CodeMaxAttempts: cfg.Polls.CodeMaxAttempts,
		TTL:             cfg.PollTTL(),
		AnonymousTTL:    cfg.AnonymousPollTTL(),
	}, d.Log)
	d.Voting = voting.NewService(d.Polls, d.Store, notifier, guard, d.Clock, idGen, d.Log)
	d.Presentations = presentations.NewService(postgresstorage.NewPresentationRepository(d.DB), d.Polls, d.Clock, idGen, d.Log)

	d.Admins = postgresstorage.NewAdminRepository(d.DB)
	d.Sweeper = maintenance.NewSweeper(d.Store, d.Clock, cfg.RetentionWindow(), d.Log)
	d.Admin = maintenance.NewAdminService(d.Admins, d.Store, d.Sweeper, domain.SystemStatus{
		CacheEnabled:    d.Store.CacheEnabled(),
		RealtimeBackend: d.RealtimeBackend,
		Environment:     cfg.App.Environment,
		Version:         cfg.App.Version,
	})
	d.Checker = health.NewChecker(d.SQL, d.Redis)
}

func durable(db *gorm.DB) pollstore.Durable {
	return pollstore.Durable{
		Polls:        postgresstorage.NewPollRepository(db),
		Slides:       postgresstorage.NewSlideRepository(db),
		Options:      postgresstorage.NewOptionRepository(db),
		Votes:        postgresstorage.NewVoteRepository(db),
		Participants: postgresstorage.NewParticipantRepository(db),
	}
}

// Follower devolve o acompanhamento usado pelo stream SSE.
func (d *Deps) Follower() *realtime.Follower {
	return realtime.NewFollower(d.Subscriber, d.Polls.Snapshot, d.Config.Realtime.FallbackInterval, d.Log)
}

func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Log.Warn("falha ao fechar redis", "error", err)
		}
	}
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil {
			d.Log.Warn("falha ao fechar postgres", "error", err)
		}
	}
}
