package logger_test

import (
	"log/slog"

	"github.com/soundprediction/grafo/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Loaded nodes into the graph") // Will be green in terminal
	log.Warn("This is a warning message")   // Will be yellow in terminal
	log.Error("This is an error message")   // Will be red in terminal
}

func ExampleNewLogger() {
	// Create a logger with custom configuration
	log := logger.NewLogger(slog.LevelInfo, "text")

	// Log with attributes
	log.Info("Processing request", "user_id", "12345", "action", "create")
	log.Info("Loaded merged nodes", "count", 42, "chunk_size", 100)               // Green
	log.Warn("Rate limit approaching", "current", 95, "limit", 100)               // Yellow
	log.Error("Database connection failed", "error", "timeout", "retry_count", 3) // Red
}
