package cli

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/internal/telemetry"
	"github.com/rustyeddy/fxrisk/positions"
	"github.com/rustyeddy/fxrisk/storage"
)

func newPositionsCmd(rc *RootConfig) *cobra.Command {
	var (
		dateStr string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Generate simulated end-of-day positions",
		Long: `Generate one position per configured currency pair and write them as
JSON lines to storage.raw_data.positions/{date}_positions.json, replacing
any earlier file for the same date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := rc.pipeline()
			if err != nil {
				return err
			}
			log := rc.logger(cmd.ErrOrStderr())
			ctx = log.WithContext(ctx)

			if dateStr == "" {
				dateStr = p.Today(time.Now())
			}
			date, err := time.Parse(time.DateOnly, dateStr)
			if err != nil {
				return fmt.Errorf("bad --date: %w", err)
			}

			j, err := rc.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			metrics := telemetry.NewMetrics()
			job := &positions.Job{
				Config:  p,
				Writer:  storage.LocalFS{},
				Journal: j,
				Metrics: metrics,
			}
			if cmd.Flags().Changed("seed") {
				job.Options = append(job.Options, positions.WithRand(rand.New(rand.NewSource(seed))))
			}

			res, err := job.Run(ctx, date)
			rc.writeMetrics(metrics, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d positions for %s\n", len(res.Records), date.Format(time.DateOnly))
			fmt.Fprintf(out, "  File: %s\n", res.Path)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "  direction\tcount\ttotal\tmean")
			for _, s := range res.Summary {
				fmt.Fprintf(tw, "  %s\t%d\t%.2f\t%.2f\n", s.Direction, s.Count, s.Sum, s.Mean)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Position date YYYY-MM-DD (default: today in pipeline.timezone)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Fix the random seed for a reproducible run")
	return cmd
}
