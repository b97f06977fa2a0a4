package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/export"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)

	seedCmd.Flags().String("email", "admin@studio.local", "admin email")
	seedCmd.Flags().String("password", "", "admin password (min 8 characters)")
	seedCmd.Flags().String("name", "Admin", "admin full name")
	_ = seedCmd.MarkFlagRequired("password")

	exportCmd.Flags().StringP("out", "o", "", "output file (default <dataset>_<date>.csv)")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		log.Info().Int("tables", len(db.Models())).Msg("migrasi selesai")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first admin user and the default studio profile",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	gdb, err := openDB()
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		email = strings.ToLower(strings.TrimSpace(email))
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			u := models.User{FullName: name, Email: email, Password: hash, Role: models.RoleAdmin, IsActive: true}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			log.Info().Str("email", email).Msg("admin dibuat")
		} else {
			log.Info().Str("email", email).Msg("admin sudah ada")
		}

		var profiles int64
		if err := tx.Model(&models.Profile{}).Count(&profiles).Error; err != nil {
			return err
		}
		if profiles == 0 {
			if _, err := profile.NewProfileService(tx).Save(cmd.Context(), models.DefaultProfile()); err != nil {
				return err
			}
			log.Info().Msg("profil studio default dibuat")
		}
		return nil
	})
}

var exportCmd = &cobra.Command{
	Use:       "export DATASET",
	Short:     "Write a dataset as CSV",
	Args:      cobra.ExactArgs(1),
	ValidArgs: export.Datasets(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = export.Filename(name, time.Now())
		}

		gdb, err := openDB()
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := export.NewExportService(gdb).Export(cmd.Context(), name, f); err != nil {
			os.Remove(out)
			return fmt.Errorf("export %s: %w", name, err)
		}
		log.Info().Str("file", out).Msg("ekspor selesai")
		return nil
	},
}
