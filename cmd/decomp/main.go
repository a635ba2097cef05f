// Command decomp runs decomposition analyses from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/godecomp"
	"github.com/sartorproj/godecomp/internal/config"
	"github.com/sartorproj/godecomp/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	decimals   int
	noHistory  bool
	format     string
	exportPath string

	// Input selection
	dataPath    string
	sheetName   string
	exampleName string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "decomp",
	Short: "Decompose the change of an indicator into its effects",
	Long: `decomp splits the change of an aggregate indicator into the effects that
produced it: Kitagawa composition and behavior effects, formula-based
decompositions, Oaxaca-Blinder gaps, nested and age-component decompositions
and seasonal trends.

Input comes from a CSV or Excel file (--data) or a built-in example
(--example). Results print as tables, JSON, Markdown or HTML and can be
exported to CSV, JSON or Excel.`,
	Version:       godecomp.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("decimals") {
			cfg.Output.Decimals = decimals
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVar(&decimals, "decimals", 4, "Decimals shown in tables (overrides output.decimals)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record the analysis in the history")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown, html")
	rootCmd.PersistentFlags().StringVarP(&exportPath, "export", "o", "", "Export the result to a .csv, .json or .xlsx file")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Input CSV or Excel file")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "Excel sheet (default: first sheet)")
	rootCmd.PersistentFlags().StringVarP(&exampleName, "example", "e", "", "Use a built-in example dataset instead of --data")

	rootCmd.AddCommand(
		demographicCmd,
		mathematicalCmd,
		regressionCmd,
		structuralCmd,
		trendCmd,
		exampleCmd,
		historyCmd,
		reportCmd,
		batchCmd,
		configCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
