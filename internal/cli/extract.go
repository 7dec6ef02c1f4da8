package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/extract"
	"github.com/rustyeddy/fxrisk/internal/telemetry"
	"github.com/rustyeddy/fxrisk/polygon"
	"github.com/rustyeddy/fxrisk/storage"
)

func newExtractCmd(rc *RootConfig) *cobra.Command {
	var (
		fromStr string
		toStr   string
		symbols []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Download daily FX aggregates from Polygon into raw storage",
		Long: `Fetch daily aggregates for every configured currency pair and write one
raw JSON file per pair to storage.raw_data.fx_rates.

The range starts at the earliest last date the run journal recorded for
the selected pairs, or at var_parameters.minimum_data_date when one of
them has never been fetched, and ends today in the
pipeline timezone. A failing pair does not stop the others; the command
exits non-zero when any pair failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := rc.pipeline()
			if err != nil {
				return err
			}
			log := rc.logger(cmd.ErrOrStderr())
			ctx = log.WithContext(ctx)

			apiKey, err := rc.secrets.Get(ctx, p.PolygonSecretScope(), p.PolygonSecretKey())
			if err != nil {
				return fmt.Errorf("polygon api key: %w", err)
			}
			client, err := polygon.NewClient(polygon.Config{
				BaseURL: p.PolygonBaseURL(),
				APIKey:  apiKey,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}

			j, err := rc.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			if len(symbols) == 0 {
				symbols = p.CurrencySymbols()
			}
			from := fromStr
			if from == "" {
				from, err = extract.ResolveFromDate(ctx, j, symbols, p.MinimumDataDate())
				if err != nil {
					return err
				}
			}
			to := toStr
			if to == "" {
				to = p.Today(time.Now())
			}

			metrics := telemetry.NewMetrics()
			job := &extract.Job{
				Fetcher: client,
				Writer:  storage.LocalFS{},
				Journal: j,
				Metrics: metrics,
			}
			sum, runErr := job.Run(ctx, extract.Request{
				Environment: p.Environment(),
				Symbols:     symbols,
				From:        from,
				To:          to,
				OutputDir:   p.FXRatesRawPath(),
			})
			rc.writeMetrics(metrics, log)

			if sum.RunID != "" {
				printExtractSummary(cmd, p.Environment(), sum)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "First date YYYY-MM-DD (default: last processed date)")
	cmd.Flags().StringVar(&toStr, "to", "", "Last date YYYY-MM-DD (default: today in pipeline.timezone)")
	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "Subset of currency pair symbols to fetch")
	cmd.Flags().DurationVar(&timeout, "timeout", polygon.DefaultTimeout, "Per-request timeout")
	return cmd
}

func printExtractSummary(cmd *cobra.Command, environment string, sum extract.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Extraction summary")
	fmt.Fprintf(out, "  Environment: %s\n", strings.ToUpper(environment))
	fmt.Fprintf(out, "  Run: %s\n", sum.RunID)
	fmt.Fprintf(out, "  Date range: %s to %s\n", sum.From, sum.To)
	fmt.Fprintf(out, "  Total pairs: %d\n", sum.Total)
	fmt.Fprintf(out, "  Successful: %d\n", sum.Succeeded)
	fmt.Fprintf(out, "  Failed: %d\n", len(sum.Failed))
	if len(sum.Failed) > 0 {
		fmt.Fprintf(out, "  Failed pairs: %s\n", strings.Join(sum.Failed, ", "))
	}
}
