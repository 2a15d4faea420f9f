// pollctl é a ferramenta de operação: migrations, estatísticas, rotinas de manutenção e acesso administrativo.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcelojr/enquetes/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("pollctl falhou", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pollctl",
		Short:         "Operacao do servico de enquetes ao vivo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newStatsCmd(),
		newSweepCmd(),
		newGrantAdminCmd(),
		newTokenCmd(),
	)
	return root
}
