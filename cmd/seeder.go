package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the demo users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if cfg.Database.Driver == internal.DriverMemory {
			log.Fatalf("the memory driver does not persist; the server seeds it on start")
		}

		handle, err := openStore(ctx, cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer handle.Close()

		if clearData {
			removed, err := clearUsers(ctx, handle.Store)
			if err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Removed existing users:", removed)
		}

		inserted, err := user.Seed(ctx, handle.Store)
		if err != nil {
			log.Fatalf("failed to seed users: %v", err)
		}
		fmt.Printf("Seeded %d demo users (%d already present)\n", inserted, len(user.SeedUsers())-inserted)
	},
}

func clearUsers(ctx context.Context, store user.Store) (int, error) {
	all, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, u := range all {
		if err := store.Remove(ctx, u.ID); err != nil {
			return i, fmt.Errorf("remove user %s: %w", u.ID, err)
		}
	}
	return len(all), nil
}
