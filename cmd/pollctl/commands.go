package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelojr/enquetes/internal/app/bootstrap"
	"github.com/marcelojr/enquetes/internal/app/maintenance"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/config"
	"github.com/marcelojr/enquetes/internal/platform/identity"
	"github.com/marcelojr/enquetes/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/enquetes/internal/platform/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica as migrations pendentes no Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := postgresstorage.Open(cmd.Context(), cfg.PostgresDSN())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := migrations.Run(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations aplicadas")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Lista enquetes vivas e contagens por apresentador",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := open(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()
			lista, err := deps.Admin.ListPolls(ctx, domain.PollStatus(status))
			if err != nil {
				return err
			}
			stats, err := deps.Admin.Stats(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODIGO\tSTATUS\tSLIDES\tAPRESENTADOR\tEXPIRA")
			for _, p := range lista {
				dono := p.PresenterID
				if dono == "" {
					dono = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.Code, p.Status, p.SlideCount, dono, p.ExpiresAt.Format(time.RFC3339))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "APRESENTADOR\tENQUETES\tAPRESENTACOES")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\n", s.PresenterID, s.PollCount, s.PresentationCount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filtra por status (active, completed, expired)")
	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sweep [acao...]",
		Short:     "Executa as rotinas de manutencao; sem argumentos executa todas",
		ValidArgs: maintenance.Actions,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := open(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			if len(args) == 0 {
				args = maintenance.Actions
			}
			for _, action := range args {
				report, err := deps.Sweeper.Run(cmd.Context(), action)
				if err != nil {
					return fmt.Errorf("%s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d enquetes\n", report.Action, report.Affected)
			}
			return nil
		},
	}
}

func newGrantAdminCmd() *cobra.Command {
	var grantedBy string
	cmd := &cobra.Command{
		Use:   "grant-admin <user-id>",
		Short: "Concede acesso administrativo pelo id do usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := open(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			err = deps.Admins.Grant(cmd.Context(), domain.AdminUser{
				UserID:    args[0],
				GrantedBy: grantedBy,
				GrantedAt: deps.Clock.Agora(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s agora e administrador\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&grantedBy, "by", "pollctl", "quem concedeu o acesso")
	return cmd
}

// newTokenCmd emite um bearer assinado com JWT_SECRET, útil em ambientes locais.
func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Emite um token de acesso para o usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := identity.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Issue(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "validade do token")
	return cmd
}

func open(cmd *cobra.Command) (*bootstrap.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.Open(cmd.Context(), cfg, bootstrap.NewLogger(cfg))
}
