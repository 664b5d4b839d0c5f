package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	bruinconfig "github.com/bruinnotes/bruin/internal/config"
	"github.com/bruinnotes/bruin/internal/synclog"
)

// daemonCmd runs the watcher and a periodic full-sweep ticker in the
// foreground until interrupted. A flock file prevents two daemons from
// running against the same vault at once; the watcher itself does the
// fast per-file reconciliation, and the ticker is a backstop against
// events the watcher missed (a vault mounted over a network filesystem,
// a laptop that slept through a debounce window).
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the watcher and periodic sync in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := bruinconfig.GetDuration("daemon.sweep-interval")
		if cmd.Flags().Changed("sweep-interval") {
			interval, _ = cmd.Flags().GetDuration("sweep-interval")
		}
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		lockPath := filepath.Join(app.vaultDir, ".bruin-daemon.lock")
		lock := flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquiring daemon lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("a bruin daemon is already running against %s", app.vaultDir)
		}
		defer func() { _ = lock.Unlock() }()

		logPath := bruinconfig.GetString("daemon.log-path")
		if logPath == "" {
			logPath = filepath.Join(defaultBruinHome(), "daemon.log")
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("preparing daemon log directory: %w", err)
		}
		logger := synclog.New(logPath, 10, 5)
		defer logger.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := app.attachWatcher(ctx); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		logger.Logf("watcher started on %s", app.vaultDir)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Logf("daemon started, full sweep every %s", interval)
		for {
			select {
			case <-ctx.Done():
				logger.Logf("shutting down")
				return nil
			case <-ticker.C:
				if err := app.Sync.TriggerSync(ctx); err != nil {
					logger.Errorf("periodic sweep failed: %v", err)
					continue
				}
				st := app.Sync.Status()
				logger.Logf("periodic sweep complete: %d file(s) synced", st.FilesSynced)
			}
		}
	},
}

func init() {
	daemonCmd.Flags().Duration("sweep-interval", 5*time.Minute, "interval between full sweeps")
	rootCmd.AddCommand(daemonCmd)
}
