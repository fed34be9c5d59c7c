package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd tạo root command, mặc định chạy serve
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-api",
		Short: "Catalog API - books and authors over HTTP",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Load từ .env file (development/local)
			// Production sẽ dùng system environment variables
			if err := godotenv.Load(); err != nil {
				log.Debug().Msg("No .env file found, using system environment variables")
			}
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args)
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
