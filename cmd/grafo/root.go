package grafo

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "grafo",
		Short: "Grafo: property graph convenience tool",
		Long: `Grafo wraps a Cypher-speaking graph store behind one client. It
generates parameter-bound statements for the common operations, loads
tabular data as nodes, links nodes on matching properties, and moves
whole graphs in and out as JSON, Parquet or RDF.

Complete documentation is available at https://github.com/soundprediction/grafo`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize configuration
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.grafo.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Database flags, shared by every command that touches the store
	rootCmd.PersistentFlags().String("db-driver", "neo4j", "Database driver (neo4j, ladybug)")
	rootCmd.PersistentFlags().String("db-uri", "bolt://localhost:7687", "Database URI (bolt URI or ladybug path)")
	rootCmd.PersistentFlags().String("db-username", "neo4j", "Database username (not used for ladybug)")
	rootCmd.PersistentFlags().String("db-password", "", "Database password (not used for ladybug)")
	rootCmd.PersistentFlags().String("db-database", "neo4j", "Database name (not used for ladybug)")
	rootCmd.PersistentFlags().String("rdf-host", "", "RDF endpoint host (derived from the bolt URI when empty)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".grafo" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".grafo")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
