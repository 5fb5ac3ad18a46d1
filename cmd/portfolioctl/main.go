// Command portfolioctl runs cache database migrations and inspects draft
// cache slots.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Operations CLI for the portfolio content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			log = logger.New()

			var err error
			cfg, err = config.Load()
			return err
		},
	}
)

func main() {
	rootCmd.AddCommand(newMigrateCmd(), newCacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
