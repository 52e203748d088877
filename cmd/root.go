// Package cmd is the gridx command line: it loads a record file, resolves
// the column configuration and shows the records as an interactive grid or
// prints them.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/formatter"
	"github.com/oakwood-commons/gridx/internal/limiter"
	"github.com/oakwood-commons/gridx/internal/ui"
	"github.com/oakwood-commons/gridx/pkg/core"
	"github.com/oakwood-commons/gridx/pkg/grid"
	"github.com/oakwood-commons/gridx/pkg/logger"
	"github.com/oakwood-commons/gridx/pkg/orderstore"
	"github.com/oakwood-commons/gridx/pkg/settings"
	"github.com/oakwood-commons/gridx/pkg/tui"
)

// errNoInput is returned by loadInput when there is no file argument and
// stdin is a terminal.
var errNoInput = errors.New("no input provided")

// Output formats of the non-interactive mode.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputCSV   = "csv"
)

type rootOptions struct {
	run *settings.Run

	query         string
	output        string
	format        string
	themeName     string
	pageSize      int
	position      string
	selectable    bool
	expandable    bool
	snapshot      bool
	startKeys     []string
	width         int
	height        int
	debug         bool
	printSelected bool
	title         string
	window        limiter.Config

	closeLog func() error
}

// Execute runs the gridx command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{run: settings.NewCliParams()}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Browse record files as an interactive data grid",
		Long: `gridx shows JSON, NDJSON, YAML, TOML or CSV records as a data grid with
column search, checklist filters, sorting, pagination, selection, expandable
rows and drag-to-reorder rows and columns. Column order is remembered between
runs. Without -i the records are printed in the --output format.`,
		Example: "\n  gridx people.json -i\n  gridx people.yaml -q 'tags=nice,cool' -o json\n  cat people.ndjson | gridx -i --selectable --print-selected\n  gridx people.csv --snapshot --press '/' --press 'jim<CR>'\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.Sync()
			if opts.closeLog != nil {
				_ = opts.closeLog()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := opts.runGrid(cmd, args)
			if errors.Is(err, errNoInput) {
				return cmd.Help()
			}
			return err
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.run.ConfigPath, "config-file", "c", "", "path to a YAML config file (default $XDG_CONFIG_HOME/gridx/config.yaml)")
	pf.StringVar(&opts.run.StatePath, "state-file", "", "file remembering column order (default $XDG_STATE_HOME/gridx/state.json)")
	pf.BoolVar(&opts.debug, "debug", false, "log grid state changes")
	pf.StringVar(&opts.run.LogFile, "log-file", "", "write JSON logs to this file")
	pf.BoolVar(&opts.run.NoColor, "no-color", false, "disable color output")

	f := cmd.Flags()
	f.BoolVarP(&opts.run.Interactive, "interactive", "i", false, "start the interactive grid")
	f.StringVarP(&opts.query, "query", "q", "", "URL query string seeding column filters, e.g. 'tags=nice,cool&name=jo'")
	f.StringVarP(&opts.output, "output", "o", OutputTable, "output format: table|json|yaml|csv")
	f.StringVar(&opts.format, "format", "", "input format: json|ndjson|yaml|toml|csv (default: detect)")
	f.StringVar(&opts.themeName, "theme", "", "theme name (default from config)")
	f.StringVar(&opts.title, "title", "", "title shown above the grid")
	f.IntVar(&opts.pageSize, "page-size", 0, "rows per page (default from config)")
	f.StringVar(&opts.position, "position", "", "pagination bar corner: topLeft|topRight|bottomLeft|bottomRight")
	f.BoolVar(&opts.selectable, "selectable", false, "show row checkboxes")
	f.BoolVar(&opts.expandable, "expandable", false, "allow expanding rows")
	f.BoolVar(&opts.printSelected, "print-selected", false, "print the selected records as JSON when the grid exits")
	f.BoolVar(&opts.snapshot, "snapshot", false, "render a single grid screen and exit; honors --width/--height and --press")
	f.StringArrayVar(&opts.startKeys, "press", nil, "simulate keys on startup, e.g. --press '/' --press 'jim<CR>' (use <Tab>, <CR>, <Esc>, <Space>, <Down>)")
	f.IntVar(&opts.window.Limit, "limit", 0, "print only the first N matching rows")
	f.IntVar(&opts.window.Offset, "offset", 0, "skip the first N matching rows when printing")
	f.IntVar(&opts.window.Tail, "tail", 0, "print only the last N matching rows; conflicts with --limit")
	f.IntVar(&opts.width, "width", 0, "output width in columns (default: terminal width)")
	f.IntVar(&opts.height, "height", 0, "grid height in rows (default: terminal height)")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(opts), newOrderCmd(opts))
	return cmd
}

// setupLogging configures the global logger. Logs go to --log-file when set;
// otherwise the interactive grid discards them and other modes write errors
// to stderr.
func (o *rootOptions) setupLogging(cmd *cobra.Command) error {
	if o.debug {
		o.run.MinLogLevel = -1
	}
	var out io.Writer = os.Stderr
	level := o.run.MinLogLevel
	switch {
	case o.run.LogFile != "":
		w, closeFn, err := logger.OpenFile(o.run.LogFile)
		if err != nil {
			return err
		}
		out, o.closeLog = w, closeFn
	case o.run.Interactive:
		out = io.Discard
	case !o.debug:
		level = 2
	}
	lgr := logger.Setup(logger.Options{Level: level, Output: out})
	lgr = logger.WithValues(lgr,
		logger.RootCommandKey, settings.CliBinaryName,
		logger.SubCommandKey, cmd.Name(),
		logger.SessionKey, uuid.NewString(),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	cmd.SetContext(settings.IntoContext(ctx, o.run))
	return nil
}

func contextLogger(cmd *cobra.Command) logr.Logger {
	ctx := cmd.Context()
	if ctx == nil {
		return logr.Discard()
	}
	return *logger.FromContext(ctx)
}

// loadConfig reads the merged configuration and applies the grid flags that
// were set on the command line.
func (o *rootOptions) loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(o.run.ConfigPath, settings.CliBinaryName)
	if err != nil {
		return cfg, err
	}
	if flags == nil {
		return cfg, nil
	}
	if flags.Changed("page-size") {
		cfg.Grid.PageSize = &o.pageSize
	}
	if flags.Changed("position") {
		cfg.Grid.Position = o.position
	}
	if flags.Changed("selectable") {
		cfg.Grid.Selectable = &o.selectable
	}
	if flags.Changed("expandable") {
		cfg.Grid.Expandable = &o.expandable
	}
	if flags.Changed("theme") {
		cfg.Theme.Default = o.themeName
	}
	return cfg, nil
}

func (o *rootOptions) statePath() (string, error) {
	if o.run.StatePath != "" {
		return o.run.StatePath, nil
	}
	return orderstore.DefaultStatePath(settings.CliBinaryName)
}

func (o *rootOptions) tuiConfig(cfg config.Config) tui.Config {
	th := ui.ThemeFromPalette(cfg.Theme.Palette())
	return tui.Config{
		Title:     strings.TrimSpace(o.title),
		Width:     o.width,
		Height:    o.height,
		NoColor:   o.run.NoColor,
		ThemeName: cfg.Theme.Default,
		Theme:     &th,
		StartKeys: o.startKeys,
	}
}

func (o *rootOptions) runGrid(cmd *cobra.Command, args []string) error {
	lgr := contextLogger(cmd)
	switch o.output {
	case OutputTable, OutputJSON, OutputYAML, OutputCSV:
	default:
		return fmt.Errorf("unknown output format %q (want table, json, yaml or csv)", o.output)
	}
	if err := o.window.Validate(); err != nil {
		return err
	}

	ds, err := loadInput(cmd.InOrStdin(), args, o.format, lgr)
	if err != nil {
		return err
	}
	cfg, err := o.loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	engine, err := core.New(core.WithConfig(cfg), core.WithLogger(lgr))
	if err != nil {
		return err
	}
	props, err := engine.Props(ds, o.query)
	if err != nil {
		return err
	}

	if o.run.Interactive || o.snapshot {
		path, err := o.statePath()
		if err != nil {
			return err
		}
		persister := orderstore.NewPersister(orderstore.NewFileStore(path), engine.OrderKey(), lgr)
		props.Columns = orderstore.Restore(persister, props.DeclaredColumns)
		props.Order = persister
	}

	tcfg := o.tuiConfig(cfg)
	out := cmd.OutOrStdout()
	switch {
	case o.snapshot:
		fmt.Fprintln(out, tui.Snapshot(cmd.Context(), props, tcfg, nil))
		return nil
	case o.run.Interactive:
		return o.runInteractive(cmd, props, tcfg, ds.Fields)
	}
	return writeRecords(out, o.output, props, tcfg, ds.Fields, o.window)
}

func (o *rootOptions) runInteractive(cmd *cobra.Command, props grid.Props[grid.MapRecord], tcfg tui.Config, fields []string) error {
	progOpts, cleanup := getProgramOptions()
	defer cleanup()
	selected, err := tui.Run(cmd.Context(), props, tcfg, nil, progOpts...)
	if err != nil {
		return fmt.Errorf("run grid: %w", err)
	}
	if o.printSelected {
		return formatter.WriteJSON(cmd.OutOrStdout(), selected, fields)
	}
	return nil
}
