// Package main provides the CLI entry point for pptfill.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/javajack/pptfill"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	pretty     bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pptfill",
		Short: "Fill slide-deck templates from spreadsheet data",
		Long: `pptfill extracts template data (text, dates, tables, combo charts,
image paths) from a workbook and substitutes ${...} markers in a slide deck.`,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [template.xlsx]",
		Short: "Extract template data from a workbook and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	inspectCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{Name: "pptfill", Level: level})

	data, err := pptfill.LoadWorkbook(inputPath, pptfill.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("encode template data: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(out))
	return nil
}
