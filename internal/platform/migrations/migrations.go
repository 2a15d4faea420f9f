// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202501150001_enquetes_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&domain.Poll{},
					&domain.Slide{},
					&domain.Option{},
					&domain.Vote{},
					&domain.Participant{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("slide_participants", "votes", "options", "slides", "polls")
			},
		},
		{
			ID: "202502030001_apresentacoes_admin",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.SavedPresentation{}, &domain.AdminUser{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("admin_users", "saved_presentations")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
