package cli

import (
	"fmt"
)

type MigrateCmd struct {
	Status bool `help:"Show the schema version without applying anything."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	if c.Status {
		if err := ctx.Store.Load(); err != nil {
			return err
		}
		current, latest, err := ctx.Store.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (latest: %d)\n", current, latest)
		if current < latest {
			fmt.Println("Run 'tandem migrate' to apply pending migrations.")
		}
		return nil
	}

	// Load tolerates a behind schema; it only rejects one newer than the
	// binary supports.
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	applied, err := ctx.Store.Migrate(func(msg string) { fmt.Println(msg) })
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Println("Database schema is up to date.")
	} else {
		fmt.Printf("Applied %d migration(s).\n", applied)
	}
	return nil
}
