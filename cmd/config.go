package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kliff/internal/render"
)

var configOutput string

// configCmd prints the merged configuration; `config path` and
// `config default` cover the two inputs of the merge.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		format, err := render.ParseFormat(configOutput)
		if err != nil {
			return err
		}
		cfg := sanitizeConfig(st.cfg)
		out := cmd.OutOrStdout()
		if format != render.FormatText && format != render.FormatYAML {
			return render.Encode(out, format, cfg)
		}

		var node yaml.Node
		if err := node.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		addConfigComments(&node, cfg)
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		return enc.Close()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := resolveConfigPath(configFile)
		if path == "" {
			path = "(built-in defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := loadDefaultConfigRaw()
		if err != nil {
			return fmt.Errorf("failed to read default config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	},
}

func init() { //nolint:gochecknoinits
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|toml")
	configCmd.AddCommand(configPathCmd, configDefaultCmd)
}
