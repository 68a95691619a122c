package grafo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soundprediction/grafo/pkg/frame"
)

var queryCmd = &cobra.Command{
	Use:   "query [statement]",
	Short: "Run a Cypher statement and print the results",
	Long: `Run a Cypher statement against the configured store.

Parameters are passed as repeated --param key=value flags. Values that
parse as JSON keep their type (numbers, booleans, lists); anything else
is passed as a string.

Examples:
  grafo query "MATCH (n:person) RETURN n.name"
  grafo query "MATCH (n:person) WHERE n.age > $min RETURN n" --param min=40
  grafo query "MATCH (n) RETURN n.name, n.age" --output table`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	queryParams []string
	queryOutput string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringArrayVarP(&queryParams, "param", "p", nil, "query parameter as key=value (repeatable)")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "json", "output format (json, table)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	params, err := parseParams(queryParams)
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

	switch queryOutput {
	case "table":
		fr, err := client.QueryFrame(ctx, args[0], params)
		if err != nil {
			return err
		}
		return printFrame(cmd.OutOrStdout(), fr)
	case "json":
		rows, err := client.Query(ctx, args[0], params)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unknown output format: %s", queryOutput)
	}
}

// parseParams turns key=value pairs into a parameter map. Values that
// parse as JSON keep their type; everything else stays a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		params[key] = v
	}
	return params, nil
}

// printFrame renders a frame as an aligned text table.
func printFrame(w io.Writer, fr *frame.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	cols := fr.Columns()
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	for i := 0; i < fr.NumRows(); i++ {
		row := fr.Row(i)
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = fmt.Sprintf("%v", row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "(%d rows)\n", fr.NumRows())
	return err
}
