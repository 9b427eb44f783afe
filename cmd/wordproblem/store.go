// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wordproblem-engine/internal/store"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and export the result store",
	Long: `Store reads the SQLite database written by extract --db and
features --db. Use subcommands to list stored problems or export them.`,
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list [problem]",
	Short: "List stored problems, or the quantities of one problem",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	db, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	if len(args) == 0 {
		ids, err := db.Problems(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(ids)
		}
		if len(ids) == 0 {
			fmt.Println("No problems stored.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	rows, err := db.Quantities(ctx, args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(rows)
	}
	return formatQuantityRows(rows)
}

func formatQuantityRows(rows []store.QuantityRow) error {
	if len(rows) == 0 {
		fmt.Println("No quantities found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-8s  %-7s  %-6s  %-20s  %s\n",
		"Idx", "ID", "Value", "Unknown", "PartOf", "Type", "Context")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range rows {
		typ := truncate(r.Type, 20)
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-8s  %-7t  %-6d  %-20s  %s\n",
			r.Index, r.UniqueID, r.Value, r.IsUnknown, r.PartOf, typ, formatContext(r.Context))
	}
	return nil
}

// formatContext renders the non-empty relations of a stored context.
func formatContext(c map[string][]int) string {
	var parts []string
	for _, rel := range types.Relations {
		if ps := c[string(rel)]; len(ps) > 0 {
			parts = append(parts, fmt.Sprintf("%s=%v", rel, ps))
		}
	}
	return strings.Join(parts, " ")
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to YAML or JSON",
	Long: `Export writes every stored problem with its quantities and features
to export.yaml or export.json in the store directory.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	db, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer db.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = db.ExportYAML(context.Background())
	case "json":
		path, err = db.ExportJSON(context.Background())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func encodeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	storeListCmd.Flags().Bool("json", false, "output results as JSON")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
