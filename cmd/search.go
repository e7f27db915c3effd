package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/cel"
	"github.com/oakwood-commons/kliff/internal/query"
	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/results"
)

type searchOptions struct {
	page          int
	pageSize      int
	where         string
	selectExpr    string
	output        string
	width         int
	listFunctions bool
}

var searchOpts = searchOptions{page: 1}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Print one page of results",
	Long: `search resolves a query the way the search screen does and prints one page.

Resolution tries the whole query as a catalog key, then each term longer than
two characters, then the default results.`,
	Example: "\n  kliff search dark matter\n  kliff search machine learning --page 2\n  kliff search css -o yaml\n  kliff search quantum --where 'r.type == \"Research Paper\"'\n  kliff search css --select 'r.title.upperAscii()'\n  kliff search --list-functions\n",
	Args: func(cmd *cobra.Command, args []string) error {
		if searchOpts.listFunctions {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchOpts.listFunctions {
			return printFunctions(cmd)
		}
		st, err := loadAppState(cmd)
		if err != nil {
			return err
		}
		q, err := query.Finalize(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printSearch(cmd, st, q, searchOpts)
	},
}

// printSearch resolves q and prints the requested page. An out-of-range page
// is an error here; the HTTP surface falls back to page 1 instead.
func printSearch(cmd *cobra.Command, st appState, q string, opts searchOptions) error {
	format, err := render.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	if opts.pageSize > 0 {
		st.cfg.Search.PageSize = opts.pageSize
	}
	resolver, err := buildResolver(st, false, opts.where)
	if err != nil {
		return err
	}

	p := results.New(resolver, st.cfg.Search.PageSize, results.WithLogger(st.log.WithName("results")))
	if err := p.Search(cmd.Context(), q); err != nil {
		return err
	}
	if opts.page != 1 && !p.Goto(opts.page) {
		return fmt.Errorf("page %d is out of range (1-%d)", opts.page, max(p.State().Page.TotalPages(), 1))
	}

	out := cmd.OutOrStdout()
	if strings.TrimSpace(opts.selectExpr) != "" {
		return printSelected(cmd, p.State(), p.Page(), opts.selectExpr, format)
	}
	if format != render.FormatText {
		return render.Encode(out, format, render.NewResultsDoc(p.State()))
	}
	width := opts.width
	if width <= 0 {
		width = outputWidth()
	}
	styles := render.NewStyles(st.cfg.UI.Themes[st.theme], st.run.NoColor || stdoutIsPiped())
	_, err = fmt.Fprintln(out, styles.Results(render.Results(p.State()), width))
	return err
}

// selectDoc is the structured form of --select output.
type selectDoc struct {
	Query  string `json:"query" yaml:"query" toml:"query"`
	Select string `json:"select" yaml:"select" toml:"select"`
	Page   int    `json:"page" yaml:"page" toml:"page"`
	Values []any  `json:"values" yaml:"values" toml:"values"`
}

// printSelected evaluates expr against each record on the current page.
func printSelected(cmd *cobra.Command, state results.State, records []catalog.Record, expr string, format render.Format) error {
	ev, err := cel.NewEvaluator()
	if err != nil {
		return err
	}
	doc := selectDoc{Query: state.Set.Query, Select: expr, Page: state.Page.Current, Values: make([]any, 0, len(records))}
	for _, rec := range records {
		v, err := ev.Evaluate(expr, rec.Fields())
		if err != nil {
			return fmt.Errorf("--select: %w%s", err, functionsHint)
		}
		doc.Values = append(doc.Values, v)
	}

	out := cmd.OutOrStdout()
	if format != render.FormatText {
		return render.Encode(out, format, doc)
	}
	for _, v := range doc.Values {
		if _, err := fmt.Fprintln(out, v); err != nil {
			return err
		}
	}
	return nil
}

func printFunctions(cmd *cobra.Command) error {
	names, err := cel.Functions()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
	return err
}

func init() { //nolint:gochecknoinits
	f := searchCmd.Flags()
	f.IntVar(&searchOpts.page, "page", 1, "page to print (1-based)")
	f.IntVar(&searchOpts.pageSize, "page-size", 0, "results per page (default from config)")
	f.StringVar(&searchOpts.where, "where", "", "CEL filter over each record, bound as r (e.g. 'r.type == \"Tutorial\"')")
	f.StringVar(&searchOpts.selectExpr, "select", "", "CEL expression printed for each record on the page instead of the results")
	f.BoolVar(&searchOpts.listFunctions, "list-functions", false, "list the functions --where and --select may call")
	f.StringVarP(&searchOpts.output, "output", "o", "text", "output format: text|json|yaml|toml")
	f.IntVar(&searchOpts.width, "width", 0, "text output width (default: terminal width)")
}
