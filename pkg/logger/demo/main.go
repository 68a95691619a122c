package main

import (
	"log/slog"

	"github.com/soundprediction/grafo/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Grafo Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Loaded nodes into the graph - green!")
	log.Info("Exported snapshot successfully - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Store operations are highlighted in green:")
	log.Info("Loaded merged records", "count", 42, "chunk_size", 100)
	log.Info("Linked doctors to patients", "edges", 156)
	log.Info("Imported graph snapshot", "nodes", 1200, "relationships", 3400)

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
