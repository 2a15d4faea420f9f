package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/domain"
)

func TestAdminRepository_Grant_DevePermitirAcessoPorUserID(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	admin, err := repo.IsAdmin(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, admin)

	// Act
	require.NoError(t, repo.Grant(ctx, domain.AdminUser{UserID: "user-1", GrantedBy: "pollctl", GrantedAt: time.Now()}))
	require.NoError(t, repo.Grant(ctx, domain.AdminUser{UserID: "user-1", GrantedBy: "outro", GrantedAt: time.Now()}))

	// Assert
	admin, err = repo.IsAdmin(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = repo.IsAdmin(ctx, "")
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestAdminRepository_PresenterStats_DeveSomarEnquetesEApresentacoes(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	// Arrange: presenter-1 tem duas enquetes, owner-2 apenas uma apresentação
	seedPoll(t, db, "111111")
	seedPoll(t, db, "222222")
	require.NoError(t, NewPresentationRepository(db).Create(ctx, novaApresentacao("owner-2")))

	// Act
	stats, err := repo.PresenterStats(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.PresenterStats{PresenterID: "presenter-1", PollCount: 2}, stats[0])
	assert.Equal(t, domain.PresenterStats{PresenterID: "owner-2", PresentationCount: 1}, stats[1])
}
