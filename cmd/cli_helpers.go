package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/cel"
	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/prefs"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
	"github.com/oakwood-commons/kliff/pkg/logger"
	"github.com/oakwood-commons/kliff/pkg/settings"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

func printThemeSelectionError(w io.Writer, err error) {
	var themeErr themeSelectionError
	if errors.As(err, &themeErr) {
		fmt.Fprintf(w, "unknown theme %q\n", themeErr.Selected)
		fmt.Fprintf(w, "available themes: %v\n", themeErr.Available)
		fmt.Fprintf(w, "default theme: %s\n", themeErr.DefaultTheme)
		return
	}
	fmt.Fprintln(w, err)
}

// checkTheme returns a themeSelectionError when name is not configured.
func checkTheme(cfg config.Config, name string) error {
	if _, ok := cfg.UI.Themes[name]; ok {
		return nil
	}
	return themeSelectionError{Selected: name, Available: cfg.ThemeNames(), DefaultTheme: cfg.UI.Theme.Default}
}

// selectTheme picks the theme for this run: an explicit --theme wins and must
// exist; otherwise the saved preference when it still exists; otherwise the
// configured default.
func selectTheme(cfg config.Config, cliTheme string, themeFlagSet bool, store prefs.Store, lgr logr.Logger) (string, error) {
	if themeFlagSet {
		name := strings.TrimSpace(cliTheme)
		if err := checkTheme(cfg, name); err != nil {
			return "", err
		}
		return name, nil
	}
	if store != nil {
		p, err := store.Load()
		if err != nil {
			lgr.Error(err, "ignoring saved preferences")
		} else if _, ok := cfg.UI.Themes[p.Theme]; ok {
			return p.Theme, nil
		}
	}
	return cfg.UI.Theme.Default, nil
}

// resolveConfigPath returns the explicit configFile if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/kliff/config.yaml) or ~/.config/kliff/config.yaml if present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// resolvePrefsPath returns the explicit prefs file if set, else the default
// location under the user config directory.
func resolvePrefsPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return prefs.DefaultPath()
}

// flagChanged reports whether name was set on the command line in fs.
func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// appState is what every command needs once flags are parsed.
type appState struct {
	run     *settings.Run
	cfg     config.Config
	catalog *catalog.Catalog
	prefs   prefs.Store
	theme   string
	log     logr.Logger
}

// loadAppState loads the merged config, the catalog and the theme choice.
func loadAppState(cmd *cobra.Command) (appState, error) {
	ctx := cmd.Context()
	st := appState{
		run: settings.FromContextOrDefault(ctx),
		log: *logger.ForComponent(ctx, cmd.Name()),
	}

	cfg, err := loadMergedConfig(st.run.ConfigFile)
	if err != nil {
		return st, err
	}
	cfg.App.Version = settings.VersionInformation.BuildVersion
	st.cfg = cfg

	st.catalog, err = loadCatalog(cfg.Search)
	if err != nil {
		return st, err
	}

	path, err := resolvePrefsPath(prefsFile)
	if err != nil {
		st.log.Error(err, "theme preference will not be saved")
		st.prefs = &prefs.MemoryStore{}
	} else {
		st.prefs = prefs.FileStore{Path: path}
	}

	st.theme, err = selectTheme(cfg, themeName, flagChanged(cmd.Flags(), "theme"), st.prefs, st.log)
	if err != nil {
		return st, err
	}
	st.log.V(1).Info("loaded configuration", "config_file", st.run.ConfigFile, "theme", st.theme, "keys", st.catalog.Keys())
	return st, nil
}

func loadCatalog(sc config.SearchConfig) (*catalog.Catalog, error) {
	if sc.CatalogFile == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(sc.CatalogFile)
}

const functionsHint = " (kliff search --list-functions shows what a filter may call)"

// buildResolver stacks the resolution chain: the catalog lookup, then the
// simulated latency and timeout when withLatency is set, then the --where
// filter.
func buildResolver(st appState, withLatency bool, where string) (results.Resolver, error) {
	var r results.Resolver = results.StaticResolver{Source: st.catalog}
	if withLatency && (st.cfg.Search.LatencyMS > 0 || st.cfg.Search.TimeoutMS > 0) {
		r = results.DelayedResolver{Next: r, Delay: st.cfg.Search.Latency(), Timeout: st.cfg.Search.Timeout()}
	}
	if strings.TrimSpace(where) == "" {
		return r, nil
	}
	ev, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}
	pred, err := ev.Compile(where)
	if err != nil {
		return nil, fmt.Errorf("--where: %w%s", err, functionsHint)
	}
	return results.FilteredResolver{Next: r, Filter: pred}, nil
}

// settledDropdown is the dropdown state once the debounce has settled on text.
func settledDropdown(cfg config.Config, src suggest.Source, text string) (suggest.State, error) {
	policy, err := suggest.ParseEnterPolicy(cfg.Search.EnterPolicy)
	if err != nil {
		return suggest.State{}, err
	}
	engine := suggest.NewEngine(src, suggest.Options{MaxSuggestions: cfg.Search.MaxSuggestions})
	st, _ := suggest.Reduce(suggest.NewState(policy), suggest.TextChanged{Text: text})
	st, _ = suggest.Reduce(st, suggest.SuggestionsReady{Text: text, Items: engine.Compute(text)})
	return st, nil
}
