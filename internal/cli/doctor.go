package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/tandem-app/tandem/internal/keyring"
	"github.com/tandem-app/tandem/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: DB reachable
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	// Check 2: Migrations complete (only if DB is reachable)
	if dbReachable {
		if err := checkMigrationsComplete(ctx); err != nil {
			fmt.Printf("❌ Migrations complete: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Migrations complete: OK\n")
		}
	} else {
		fmt.Printf("⊘ Migrations complete: SKIPPED (database not reachable)\n")
	}

	// Check 3: Keyring availability (warning only; sqlite setups never need it)
	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else if storage.IsPostgresConnString(ctx.Config) {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   keyring unavailable; postgres credentials must come from the environment or .pgpass\n")
	} else {
		fmt.Printf("⊘ OS keyring: not needed for sqlite storage\n")
	}

	// Check 4: Stale server pidfile
	if err := checkStalePidfile(ctx); err != nil {
		fmt.Printf("⚠ Server pidfile: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Server pidfile: OK\n")
	}

	// Check 5: Clock sanity
	if err := checkClock(); err != nil {
		fmt.Printf("❌ System clock: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ System clock: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'tandem migrate'", current, latest)
	}
	return nil
}

// checkStalePidfile flags a pidfile left behind by a crashed server. A live
// tandem process owning the pid is fine; anything else deserves a cleanup.
func checkStalePidfile(ctx *Context) error {
	pidPath := PidfilePath(ctx.DataDir)
	data, err := os.ReadFile(pidPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read pidfile %s: %w", pidPath, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("pidfile %s is corrupt; delete it", pidPath)
	}

	proc, err := ps.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}
	if proc == nil || !strings.Contains(proc.Executable(), "tandem") {
		return fmt.Errorf("stale pidfile %s (pid %d is not a tandem server); delete it", pidPath, pid)
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// PidfilePath is where the serve command records its pid.
func PidfilePath(dataDir string) string {
	return filepath.Join(dataDir, "tandem.pid")
}
