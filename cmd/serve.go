package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvasek/facemark/internal/attendance"
	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/enrollment"
	"github.com/jvasek/facemark/internal/imagestore"
	"github.com/jvasek/facemark/internal/training"
	"github.com/jvasek/facemark/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the Facemark web server.
The server exposes the enrollment, attendance, and training status API
consumed by the kiosk camera frontend and the admin dashboard.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		if n, err := strconv.Atoi(envPort); err == nil && n > 0 {
			port = n
		} else {
			log.Printf("invalid WEB_PORT %q, using port %d", envPort, port)
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	store := imagestore.New(&cfg.ImageStore)
	ledger := attendance.NewLedger(repos.attendance)

	recognizer := training.NewRecognizer(cfg.Recognizer, store.BaseDir())
	coordinator := training.NewCoordinator(recognizer)
	coordinator.Start(ctx)
	defer coordinator.Stop()

	manager := enrollment.NewManager(repos.identities, store, ledger, coordinator)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, manager, ledger, coordinator)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facemark API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
