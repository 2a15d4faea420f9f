package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/migrations"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ids.NewULID())
	db, err := gorm.Open(sqlite.Open(dsn), Config())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Aplicar migrations no banco de teste
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

type fixture struct {
	poll      domain.Poll
	quiz      domain.Slide
	cloud     domain.Slide
	quizOpts  []domain.Option
	createdAt time.Time
}

// seedPoll cria uma enquete com um slide de quiz (duas opções) e um de nuvem de palavras.
func seedPoll(t *testing.T, db *gorm.DB, code string) fixture {
	t.Helper()

	gen := ids.NewGenerator()
	now := time.Now().UTC().Truncate(time.Millisecond)
	pollID := domain.PollID(ids.NewUUID())

	quiz := domain.Slide{ID: domain.SlideID(gen.New()), PollID: pollID, Type: domain.SlideTypeQuiz, Question: "Cor favorita?", OrderIndex: 0, Style: "donut", CreatedAt: now}
	cloud := domain.Slide{ID: domain.SlideID(gen.New()), PollID: pollID, Type: domain.SlideTypeWordCloud, Question: "Uma palavra", OrderIndex: 1, Style: "cloud", CreatedAt: now}
	opts := []domain.Option{
		{ID: domain.OptionID(gen.New()), SlideID: quiz.ID, Text: "Red", Color: "#dc2626", Position: 0, CreatedAt: now},
		{ID: domain.OptionID(gen.New()), SlideID: quiz.ID, Text: "Blue", Color: "#2563eb", Position: 1, CreatedAt: now},
	}
	poll := domain.Poll{
		ID:            pollID,
		Code:          code,
		Title:         "Cor favorita?",
		PresenterID:   "presenter-1",
		ActiveSlideID: quiz.ID,
		Status:        domain.PollStatusActive,
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}

	require.NoError(t, NewPollRepository(db).Create(context.Background(), poll, []domain.Slide{quiz, cloud}, opts))

	return fixture{poll: poll, quiz: quiz, cloud: cloud, quizOpts: opts, createdAt: now}
}
