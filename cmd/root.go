package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brewhouse/storefront/internal/constants"
	"github.com/brewhouse/storefront/internal/log"
)

func Start() {
	logger := log.Get("/var/log/storefront.log", os.Getenv("STOREFRONT_ENV")).
		With().
		Str(log.KeyAppName, constants.APP_MAIN_STOREFRONT).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: constants.APP_MAIN_STOREFRONT}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "storefront",
		Short: "Run the storefront server",
		Run: func(cmd *cobra.Command, args []string) {
			runStorefront(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
