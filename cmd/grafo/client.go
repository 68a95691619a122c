package grafo

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/config"
	"github.com/soundprediction/grafo/pkg/logger"
)

// loadConfig resolves configuration from file, environment and the
// shared database flags. Flags win over everything else.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.Database.Driver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("db-uri") {
		cfg.Database.URI, _ = flags.GetString("db-uri")
	}
	if flags.Changed("db-username") {
		cfg.Database.Username, _ = flags.GetString("db-username")
	}
	if flags.Changed("db-password") {
		cfg.Database.Password, _ = flags.GetString("db-password")
	}
	if flags.Changed("db-database") {
		cfg.Database.Database, _ = flags.GetString("db-database")
	}
	if flags.Changed("rdf-host") {
		cfg.RDF.Host, _ = flags.GetString("rdf-host")
	}

	return cfg, nil
}

// newGraphClient builds a client from the resolved configuration.
func newGraphClient(cfg *config.Config) (*grafo.Client, error) {
	log := logger.NewLogger(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	return grafo.NewClientFromConfig(cfg, grafo.WithLogger(log))
}
