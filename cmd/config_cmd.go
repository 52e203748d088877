package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/pkg/settings"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: fmt.Sprintf(`Print the embedded defaults merged with the user configuration file
(--config-file, else %s).`, config.DefaultPath(settings.CliBinaryName)),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch output {
			case OutputYAML:
				_, err = out.Write(data)
				return err
			case OutputJSON:
				// Round-trip through YAML so JSON keys match the file format.
				var generic map[string]any
				if err := yaml.Unmarshal(data, &generic); err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(generic)
			default:
				return fmt.Errorf("unknown output format %q (want yaml or json)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputYAML, "output format: yaml|json")

	themes := &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cfg.Theme.Themes))
			for name := range cfg.Theme.Themes {
				names = append(names, name)
			}
			slices.Sort(names)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available themes (default: %s):\n", cfg.Theme.Default)
			for _, name := range names {
				fmt.Fprintf(out, " - %s\n", name)
			}
			return nil
		},
	}
	cmd.AddCommand(themes)
	return cmd
}
