package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pantryhub/groceryd/internal/backup"
	"github.com/pantryhub/groceryd/internal/logging"
	"github.com/pantryhub/groceryd/internal/realtime"
	"github.com/pantryhub/groceryd/internal/server"
	"github.com/pantryhub/groceryd/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grocery list server",
	Long: `Start the HTTP server: REST API, WebSocket push channel, and the
landing page.

On startup the store file is snapshotted into the backups directory
(best-effort; a failed backup never blocks startup) and the schema is
created if absent. The server then accepts traffic on all interfaces.

WebSocket events broadcast to connected clients:
  server:connected    one-time welcome on connect
  groceries:created   full item after a POST
  groceries:updated   full item after a PUT
  groceries:deleted   {"id": N} after a DELETE
  groceries:refresh   full list after an out-of-band store change
                      (only with --watch)

Example usage:
  groceryd serve                  # Port 5000, store in data/groceries.db
  groceryd serve --port 8080      # Custom port
  groceryd serve --watch          # Also broadcast external store changes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("db") {
			cfg.DBPath, _ = cmd.Flags().GetString("db")
		}
		if cmd.Flags().Changed("ui-dir") {
			cfg.UIDir, _ = cmd.Flags().GetString("ui-dir")
		}
		if cmd.Flags().Changed("watch") {
			cfg.Watch.Enabled, _ = cmd.Flags().GetBool("watch")
		}

		// Snapshot before the store is opened for writing. Best-effort:
		// Run logs and swallows every failure.
		backupLogger := logging.New("[backup] ", cfg.LogFile)
		backup.New(cfg.DBPath, cfg.Backup.Dir, cfg.Backup.Keep, backupLogger).Run()

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		hub := realtime.NewHub(logging.New("[hub] ", cfg.LogFile))

		srv, err := server.New(server.Config{
			Port:   cfg.Port,
			Store:  st,
			Hub:    hub,
			UIDir:  cfg.UIDir,
			Logger: logging.New("[serve] ", cfg.LogFile),
		})
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return err
		}

		if cfg.Watch.Enabled {
			w, err := watch.New(st, hub, cfg.Watch.Debounce, logging.New("[watch] ", cfg.LogFile))
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()
		}

		runner := backup.NewRunner(backup.New(cfg.DBPath, cfg.Backup.Dir, cfg.Backup.Keep, backupLogger), cfg.Backup.Interval)
		runner.Start()
		defer runner.Stop()

		fmt.Printf("groceryd listening on http://localhost:%d\n", cfg.Port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", cfg.Port)
		fmt.Printf("Health check: http://localhost:%d/health\n", cfg.Port)
		fmt.Println("\nPress Ctrl+C to stop...")

		sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-sigCtx.Done()

		fmt.Println("\nShutting down...")
		return srv.Stop()
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 5000, "Port to listen on")
	serveCmd.Flags().String("db", "", "Store file path (overrides config)")
	serveCmd.Flags().String("ui-dir", "", "Built UI directory to serve at /")
	serveCmd.Flags().Bool("watch", false, "Broadcast refresh when the store file changes externally")

	rootCmd.AddCommand(serveCmd)
}
