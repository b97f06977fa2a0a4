// Command studioctl is the operator CLI: schema migration, first-run seeding
// and CSV exports straight from the database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/config"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
)

var (
	flagDriver string
	flagDSN    string

	cliCfg config.CLIConfig
	cfgErr error
	log    zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "studioctl",
	Short:         "Studio backend operator tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		log = logger.New(logger.Options{ServiceName: "studioctl", Level: cliCfg.LogLevel, Format: "console", Output: os.Stderr})
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	cliCfg, cfgErr = config.LoadCLI()
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", cliCfg.DBDriver, "database driver (postgres|sqlite)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", cliCfg.DBDSN, "database DSN (default $DB_DSN)")
}

func openDB() (*gorm.DB, error) {
	gdb, err := db.Connect(flagDriver, flagDSN)
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
