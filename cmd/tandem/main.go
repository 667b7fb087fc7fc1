package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/tandem-app/tandem/internal/cli"
	apperrors "github.com/tandem-app/tandem/internal/errors"
	"github.com/tandem-app/tandem/internal/keyring"
	"github.com/tandem-app/tandem/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path or postgres:// connection string." type:"path" default:"~/.config/tandem/tandem.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize tandem storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	Serve   cli.ServeCmd   `cmd:"" help:"Run the tandem API server." default:"1"`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health diagnostics."`
	Creds struct {
		SetDB    cli.ConfigSetDBCmd    `cmd:"" name:"set-db" help:"Store a postgres connection string in the OS keyring."`
		GetDB    cli.ConfigGetDBCmd    `cmd:"" name:"get-db" help:"Show the stored connection string (password redacted)."`
		DeleteDB cli.ConfigDeleteDBCmd `cmd:"" name:"delete-db" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage stored credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tandem"),
		kong.Description("Two-person habit accountability server"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	config := CLI.Config
	if !storage.IsPostgresConnString(config) {
		// A sqlite path may still be overridden by keyring credentials,
		// so a deployment can switch to postgres without flags.
		if connStr, err := keyring.GetConnectionString(); err == nil {
			config = connStr
		} else if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable) {
			apperrors.Fatal(err)
		}
	}

	var store storage.Provider
	var dataDir string
	if storage.IsPostgresConnString(config) {
		if storage.HasEmbeddedCredentials(config) {
			apperrors.Fatalf("connection string must not embed a password; use 'tandem creds set-db' or PGPASSWORD")
		}
		store = storage.NewPostgresStore(config)
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".config", "tandem")
	} else {
		store = storage.NewSQLiteStore(config)
		dataDir = filepath.Dir(config)
	}

	appCtx := &cli.Context{
		Store:   store,
		Config:  config,
		DataDir: dataDir,
		Debug:   CLI.Debug,
	}

	apperrors.Fatal(ctx.Run(appCtx))
}
