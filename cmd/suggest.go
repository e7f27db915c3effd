package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

var suggestOutput string

var suggestCmd = &cobra.Command{
	Use:     "suggest <text>",
	Short:   "Print the suggestions for partial input",
	Example: "\n  kliff suggest qu\n  kliff suggest dark -o json\n",
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		format, err := render.ParseFormat(suggestOutput)
		if err != nil {
			return err
		}
		text := strings.Join(args, " ")
		dd, err := settledDropdown(st.cfg, st.catalog, text)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format != render.FormatText {
			items := dd.Items
			if items == nil {
				items = []suggest.Suggestion{}
			}
			return render.Encode(out, format, render.SuggestDoc{Input: text, Suggestions: items})
		}
		if len(dd.Items) == 0 {
			return nil
		}
		width := outputWidth()
		styles := render.NewStyles(st.cfg.UI.Themes[st.theme], st.run.NoColor || stdoutIsPiped())
		_, err = fmt.Fprintln(out, styles.SuggestionList(render.Suggestions(dd), width))
		return err
	},
}

func init() { //nolint:gochecknoinits
	suggestCmd.Flags().StringVarP(&suggestOutput, "output", "o", "text", "output format: text|json|yaml|toml")
}
