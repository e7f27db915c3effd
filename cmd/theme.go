package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kliff/internal/prefs"
)

// themeCmd groups the theme preference subcommands; bare `kliff theme` prints
// the current theme.
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the saved theme",
	Args:  cobra.NoArgs,
	RunE:  runThemeGet,
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the theme in effect",
	Args:  cobra.NoArgs,
	RunE:  runThemeGet,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Available themes (default: %s):\n", st.cfg.UI.Theme.Default)
		for _, name := range st.cfg.ThemeNames() {
			marker := " "
			if name == st.theme {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %s\n", marker, name)
		}
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Save a theme as the preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(args[0])
		if err := checkTheme(st.cfg, name); err != nil {
			printThemeSelectionError(cmd.ErrOrStderr(), err)
			return err
		}
		return saveTheme(cmd, st, name)
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch to the next theme and save it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		return saveTheme(cmd, st, st.cfg.NextTheme(st.theme))
	},
}

func runThemeGet(cmd *cobra.Command, _ []string) error {
	st, err := loadAppState(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), st.theme)
	return err
}

func saveTheme(cmd *cobra.Command, st appState, name string) error {
	p, err := st.prefs.Load()
	if err != nil {
		st.log.Error(err, "replacing unreadable preferences")
		p = prefs.Prefs{}
	}
	p.Theme = name
	if err := st.prefs.Save(p); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	st.log.V(1).Info("theme saved", "theme", name)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s\n", name)
	return err
}

func init() { //nolint:gochecknoinits
	themeCmd.AddCommand(themeGetCmd, themeListCmd, themeSetCmd, themeToggleCmd)
}
