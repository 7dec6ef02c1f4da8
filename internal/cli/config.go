package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved pipeline configuration",
		Long: `Load pipeline_config.yaml, merge the environment override on top
and validate the result.

Examples:
  fxrisk config validate --env prod
  fxrisk config get databricks.catalog
  fxrisk config get api.polygon.timeout --default 30
  fxrisk config tables`,
	}

	cmd.AddCommand(
		newConfigValidateCmd(rc),
		newConfigShowCmd(rc),
		newConfigGetCmd(rc),
		newConfigTablesCmd(rc),
	)
	return cmd
}

func newConfigValidateCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rc.pipeline()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid (%s)\n", p.Dir())
			fmt.Fprint(out, p.Summary())
			return nil
		},
	}
}

func newConfigShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rc.pipeline()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), p.AsMap())
		},
	}
}

// missing marks an absent path.
type missing struct{}

func newConfigGetCmd(rc *RootConfig) *cobra.Command {
	var def string

	cmd := &cobra.Command{
		Use:   "get <dotted.path>",
		Short: "Print one value of the merged configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rc.pipeline()
			if err != nil {
				return err
			}

			v := p.Get(args[0], missing{})
			if _, ok := v.(missing); ok {
				if !cmd.Flags().Changed("default") {
					return fmt.Errorf("%s: not set", args[0])
				}
				v = def
			}

			out := cmd.OutOrStdout()
			switch v.(type) {
			case map[string]any, []any:
				return writeYAML(out, v)
			default:
				fmt.Fprintln(out, v)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&def, "default", "", "Value printed when the path is absent")
	return cmd
}

func newConfigTablesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the SQL parameters derived from the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rc.pipeline()
			if err != nil {
				return err
			}
			params, err := p.SQLParameters()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range slices.Sorted(maps.Keys(params)) {
				fmt.Fprintf(tw, "%s\t%v\n", k, params[k])
			}
			return tw.Flush()
		},
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
