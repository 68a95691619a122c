package grafo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/config"
	"github.com/soundprediction/grafo/pkg/logger"
	"github.com/soundprediction/grafo/pkg/server"
	"github.com/soundprediction/grafo/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the grafo HTTP server",
	Long: `Start the grafo HTTP server to provide REST API access to the graph.

The server provides endpoints for:
- Running Cypher queries in every result representation
- Loading records as nodes
- Exporting the graph as JSON
- Inspecting indexes and labels
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost         string
	serverPort         int
	serverMode         string
	serverTelemetryDir string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")
	serverCmd.Flags().StringVar(&serverTelemetryDir, "telemetry-dir", "", "Directory for error telemetry parquet files (disabled when empty)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Override config with command-line flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	// Error Tracking using Parquet
	if serverTelemetryDir != "" {
		ph, err := telemetry.NewParquetHandler(log.Handler(), serverTelemetryDir)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer ph.Close()
		log = slog.New(ph)
		fmt.Printf("Error telemetry enabled at: %s\n", serverTelemetryDir)
	}

	client, err := grafo.NewClientFromConfig(cfg, grafo.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	fmt.Printf("Grafo initialized with driver: %s\n", cfg.Database.Driver)

	// Create and setup server
	srv := server.New(cfg, client, log)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if err := client.Close(shutdownCtx); err != nil {
			return fmt.Errorf("driver close error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	return nil
}
