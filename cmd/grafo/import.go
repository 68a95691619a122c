package grafo

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a graph snapshot from JSON or Parquet",
	Long: `Import a snapshot produced by grafo export. Nodes are created first,
then relationships are stitched together on the snapshot ids.

Examples:
  grafo import --file dump.json
  grafo import --format parquet --dir ./snapshot`,
	RunE: runImport,
}

var (
	importFile   string
	importFormat string
	importDir    string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON snapshot file")
	importCmd.Flags().StringVar(&importFormat, "format", "json", "import format (json, parquet)")
	importCmd.Flags().StringVar(&importDir, "dir", "", "parquet snapshot directory")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newGraphClient(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer client.Close(ctx)

	switch importFormat {
	case "json":
		if importFile == "" {
			return fmt.Errorf("json import needs --file")
		}
		data, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", importFile, err)
		}
		stats, err := client.ImportJSON(ctx, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes, %d relationships\n",
			stats.NodesImported, stats.RelationshipsImported)
		return nil
	case "parquet":
		dir := importDir
		if dir == "" {
			dir = cfg.Export.Dir
		}
		if dir == "" {
			return fmt.Errorf("parquet import needs --dir or a configured export dir")
		}
		stats, err := client.ImportParquet(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes, %d relationships\n",
			stats.NodesImported, stats.RelationshipsImported)
		return nil
	default:
		return fmt.Errorf("unknown import format: %s", importFormat)
	}
}
