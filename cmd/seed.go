package cmd

import (
	"log"

	"github.com/spf13/cobra"

	config "task-tracker.com/task-tracker/internal/configs"
	"task-tracker.com/task-tracker/internal/sessions"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default users",
	Long:  "Creates pelaksana1, leader1 and manager1 with SEED_PASSWORD when the user table is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		database := config.NewDatabaseClient(cfg.DatabaseDSN)

		_, authService := newServices(cfg, database, sessions.NewMemoryRevoker())

		n, err := authService.SeedUsers(cmd.Context(), cfg.SeedPassword)
		if err != nil {
			return err
		}
		if n == 0 {
			log.Println("users already exist, nothing to seed")
			return nil
		}

		log.Printf("seeded %d users", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
