package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/omaradly/transmem/internal/server"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the translation daemon",
	Long:  `Starts the transmem HTTP daemon: a JSON API plus a websocket channel for editor integrations, backed by the full resolution pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{
			Addr:     a.cfg.Listen,
			AllowAll: serveAllowAll,
		}, a.resolver, a.memory, a.docs, a.offline)

		// Periodic maintenance: retention sweep and context GC.
		maintenance := time.NewTicker(time.Hour)
		defer maintenance.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-maintenance.C:
					runMaintenance(ctx, a)
				}
			}
		}()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down daemon...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "transmem v%s starting on %s\n", Version, a.cfg.Listen)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.cfg.Database)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", a.cfg.Backend.Kind)

		return srv.Start()
	},
}

// runMaintenance prunes rarely used memory entries and expired contexts.
func runMaintenance(ctx context.Context, a *app) {
	cutoff := time.Now().AddDate(0, 0, -a.cfg.Memory.RetentionDays)
	if n, err := a.memory.Sweep(ctx, cutoff, a.cfg.Memory.SweepMinUseCount); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: retention sweep failed: %v\n", err)
	} else if n > 0 && verbose {
		fmt.Fprintf(os.Stderr, "Retention sweep purged %d entries\n", n)
	}

	if n, err := a.docs.GC(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: context gc failed: %v\n", err)
	} else if n > 0 && verbose {
		fmt.Fprintf(os.Stderr, "Context gc purged %d contexts\n", n)
	}
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
