package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	api "asset_analyst/pkg/api/analyst"
	"asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/config"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/num"
	"asset_analyst/pkg/core/report"
	"asset_analyst/pkg/core/utils"
)

type runOptions struct {
	ticker   string
	features string
	prices   string
	price    float64
	format   string
	out      string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze one company",
		Long:  "Load a feature table (CSV or JSON) and an optional price history, run the analysis and write the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ticker, "ticker", "", "Ticker symbol (required)")
	cmd.Flags().StringVar(&opts.features, "features", "", "Feature table file, .csv or .json (required)")
	cmd.Flags().StringVar(&opts.prices, "prices", "", "Daily price file, .csv or .json")
	cmd.Flags().Float64Var(&opts.price, "price", 0, "Current price override (0 = derive from prices)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format (json|markdown|html)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("features")
	return cmd
}

func isJSON(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".hjson"
}

func loadFeatures(path string) (*feature.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isJSON(path) {
		return feature.ReadTableCSV(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var rows []feature.Row
	if _, err := utils.SmartParse(string(data), &rows); err != nil {
		return nil, err
	}
	return feature.NewTable(rows)
}

func loadPrices(path string) (feature.PriceSeries, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isJSON(path) {
		return feature.ReadPricesCSV(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var points []feature.PricePoint
	if _, err := utils.SmartParse(string(data), &points); err != nil {
		return nil, err
	}
	return feature.NewPriceSeries(points)
}

// render writes the result in the requested format.
func render(w io.Writer, format string, res *analyst.Result, rep report.Report, currency string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(api.AnalyzeResponse{Result: res, Report: rep})
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown(res, rep, currency))
		return err
	case "html":
		html, err := report.HTML(report.Markdown(res, rep, currency))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runAnalysis(cmd *cobra.Command, opts *runOptions) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := cfg.Level()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	logger := log.Logger.Level(level)

	ticker, err := api.NormalizeTicker(opts.ticker)
	if err != nil {
		return err
	}
	table, err := loadFeatures(opts.features)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	prices, err := loadPrices(opts.prices)
	if err != nil {
		return fmt.Errorf("failed to load prices: %w", err)
	}
	quote := num.None()
	if opts.price > 0 {
		quote = num.Some(opts.price)
	}

	logger.Info().Str("ticker", ticker).Int("periods", table.Len()).Int("prices", len(prices)).Msg("running analysis")

	engine := analyst.NewEngine(analyst.WithLogger(logger))
	res, err := engine.Analyze(analyst.Input{Ticker: ticker, Features: table, Prices: prices, MarketPrice: quote})
	if err != nil {
		return err
	}
	rep := report.Build(res, quote)

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := render(w, opts.format, res, rep, cfg.Currency); err != nil {
		return err
	}
	if opts.out != "" {
		logger.Info().Str("path", opts.out).Msg("report written")
	}
	return nil
}
