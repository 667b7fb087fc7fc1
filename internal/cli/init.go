package cli

import (
	"fmt"
	"os"

	"github.com/tandem-app/tandem/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete an existing sqlite database before initializing."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if storage.IsPostgresConnString(ctx.Config) {
			return fmt.Errorf("--force only applies to sqlite storage; drop the postgres schema manually")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized tandem storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
