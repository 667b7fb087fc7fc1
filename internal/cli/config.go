package cli

import (
	"errors"
	"fmt"

	"github.com/tandem-app/tandem/internal/keyring"
	"github.com/tandem-app/tandem/internal/storage"
)

type ConfigSetDBCmd struct {
	ConnString string `arg:"" help:"PostgreSQL connection string to store in the OS keyring."`
}

func (c *ConfigSetDBCmd) Run(ctx *Context) error {
	if !storage.IsPostgresConnString(c.ConnString) {
		return fmt.Errorf("expected a postgres:// connection string")
	}
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in OS keyring.")
	return nil
}

type ConfigGetDBCmd struct{}

func (c *ConfigGetDBCmd) Run(ctx *Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No connection string stored.")
			return nil
		}
		return err
	}
	// Redact any password before echoing.
	fmt.Println(storage.RedactConnString(connStr))
	return nil
}

type ConfigDeleteDBCmd struct{}

func (c *ConfigDeleteDBCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No connection string stored.")
			return nil
		}
		return err
	}
	fmt.Println("Connection string removed from OS keyring.")
	return nil
}
