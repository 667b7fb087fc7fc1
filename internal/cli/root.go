package cli

import (
	"github.com/tandem-app/tandem/internal/storage"
)

// Context carries the shared dependencies into kong command Run methods.
type Context struct {
	Store storage.Provider
	// Config is the raw value of --config: a sqlite path or a postgres
	// connection string.
	Config string
	// DataDir is where logs and the default sqlite database live.
	DataDir string
	Debug   bool
}
