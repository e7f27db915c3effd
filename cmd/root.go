package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/kliff/internal/query"
	"github.com/oakwood-commons/kliff/internal/ui"
	"github.com/oakwood-commons/kliff/pkg/logger"
	"github.com/oakwood-commons/kliff/pkg/settings"
)

const (
	fallbackWidth      = 100
	resizePollInterval = 250 * time.Millisecond
)

var (
	configFile string
	prefsFile  string
	logFile    string
	logLevel   int8
	themeName  string
	noColor    bool
)

var (
	stdinIsPiped    = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	stdoutIsPiped   = func() bool { stat, _ := os.Stdout.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTTY         = openTTYDevices
	termGetSize     = term.GetSize
	newResizeTicker = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize  = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
	runTUI          = ui.Run
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

// errNoTerminal is returned when the search screen is requested without a terminal.
var errNoTerminal = errors.New("the search screen needs a terminal; use 'kliff search <query>' for plain output")

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [query|results-url]",
	Short: "Search the mock catalog with live suggestions and paged results",
	Long: `kliff opens an interactive search box. Suggestions appear as you type;
Enter opens the results for the highlighted suggestion or the typed text.

A results URL such as "results?q=dark+matter" opens that search directly.`,
	Example:       "\n  kliff\n  kliff 'dark matter theories'\n  kliff 'results?q=machine+learning'\n  kliff search quantum -o json\n  kliff serve --addr :8080\n",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSearchScreen,
}

// setupRun initializes the logger and the run settings and stores both on the
// command's context.
func setupRun(cmd *cobra.Command, _ []string) error {
	run := settings.NewCliParams()
	run.MinLogLevel = logLevel
	run.LogFile = logFile
	run.ConfigFile = resolveConfigPath(configFile)
	run.NoColor = noColor || os.Getenv("NO_COLOR") != ""
	run.Interactive = cmd == rootCmd

	// The search screen owns the terminal, so it only logs to --log-file.
	var w io.Writer = os.Stderr
	if run.Interactive {
		w = io.Discard
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	}
	lgr := logger.Setup(logLevel, w)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

func runSearchScreen(cmd *cobra.Command, args []string) error {
	st, err := loadAppState(cmd)
	if err != nil {
		return err
	}

	initial := ""
	if len(args) > 0 {
		initial, err = query.FromURL(strings.Join(args, " "))
		if err != nil {
			return err
		}
	}

	if stdoutIsPiped() {
		if initial == "" {
			return errNoTerminal
		}
		return printSearch(cmd, st, initial, searchOptions{page: 1, output: "text"})
	}

	resolver, err := buildResolver(st, true, "")
	if err != nil {
		return err
	}

	opts, release := ttyOptions(cmd.Context())
	defer release()

	_, err = runTUI(ui.Options{
		Config:       st.cfg,
		Source:       st.catalog,
		Resolver:     resolver,
		Prefs:        st.prefs,
		Theme:        st.theme,
		NoColor:      st.run.NoColor,
		InitialQuery: initial,
		Context:      cmd.Context(),
		Logger:       *logger.ForComponent(cmd.Context(), "ui"),
	}, opts...)
	return err
}

// outputWidth is the width plain text output wraps to: the terminal behind
// stdout, else $COLUMNS, else fallbackWidth.
func outputWidth() int {
	if w, _, err := termGetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// ttyOptions points the search screen at the controlling terminal when stdin
// is a pipe, e.g. `echo query | kliff`. The returned func releases it.
func ttyOptions(parent context.Context) ([]tea.ProgramOption, func()) {
	if !stdinIsPiped() {
		return nil, func() {}
	}
	in, out, err := openTTY()
	if err != nil {
		// No controlling terminal; bubbletea falls back to stdin.
		return nil, func() {}
	}

	ctx, cancel := context.WithCancel(parent)
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), watchTTYSize(ctx, out)}
	return opts, func() {
		cancel()
		_ = in.Close()
		if out != in {
			_ = out.Close()
		}
	}
}

func openTTYDevices() (*os.File, *os.File, error) {
	inPath, outPath := ttyPaths(runtime.GOOS)
	in, err := os.OpenFile(inPath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if outPath == inPath {
		return in, in, nil
	}
	out, err := os.OpenFile(outPath, os.O_RDWR, 0)
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}
	return in, out, nil
}

func ttyPaths(goos string) (in, out string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// watchTTYSize polls a reopened terminal, which does not deliver resize
// signals to the program, and forwards size changes until ctx ends.
func watchTTYSize(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		go func() {
			t := newResizeTicker(resizePollInterval)
			defer t.Stop()

			var last tea.WindowSizeMsg
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C():
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil {
						continue
					}
					size := tea.WindowSizeMsg{Width: w, Height: h}
					if size == last {
						continue
					}
					last = size
					sendWindowSize(p, size)
				}
			}
		}()
	}
}

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print kliff version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

func init() { //nolint:gochecknoinits
	// Assigned here rather than in the literal: setupRun refers to rootCmd.
	rootCmd.PersistentPreRunE = setupRun
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/kliff/config.yaml)")
	pf.StringVar(&prefsFile, "prefs-file", "", "path to the saved preferences file")
	pf.StringVar(&logFile, "log-file", "", "append JSON logs to this file (the search screen logs nowhere else)")
	pf.Int8Var(&logLevel, "log-level", 0, "minimum log level: -1 debug, 0 info, 1 warn, 2 error")
	pf.StringVar(&themeName, "theme", "", "theme name (default: saved preference, then config; see 'kliff theme list')")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	_ = pf.MarkHidden("prefs-file")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, searchCmd, suggestCmd, serveCmd, themeCmd, configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
