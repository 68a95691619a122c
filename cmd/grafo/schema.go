package grafo

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/grafo"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect or apply graph schema",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List indexes and constraints",
	RunE:  runSchemaShow,
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply indexes and constraints from a schema file",
	Long: `Apply a YAML schema file. Each entry is a label.property spec; specs
that already exist are skipped.

  indexes:
    - patient.pid
    - doctor.name
  constraints:
    - patient.pid`,
	RunE: runSchemaApply,
}

var schemaApplyFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaApplyCmd)

	schemaApplyCmd.Flags().StringVarP(&schemaApplyFile, "file", "f", "", "YAML schema file")
	schemaApplyCmd.MarkFlagRequired("file")
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()

	indexes, err := client.GetIndexes(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Indexes:")
	if err := printFrame(out, indexes); err != nil {
		return err
	}

	constraints, err := client.GetConstraints(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nConstraints:")
	return printFrame(out, constraints)
}

func runSchemaApply(cmd *cobra.Command, args []string) error {
	schema, err := grafo.LoadSchemaFile(schemaApplyFile)
	if err != nil {
		return err
	}

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

	if err := client.ApplySchema(ctx, schema); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d indexes and %d constraints from %s\n",
		len(schema.Indexes), len(schema.Constraints), schemaApplyFile)
	return nil
}
