// stringray: linter and refactoring tool for Xcode string tables.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/stringray/config"
	"github.com/minios-linux/stringray/i18n"
	"github.com/minios-linux/stringray/langmeta"
	"github.com/minios-linux/stringray/lint"
	"github.com/minios-linux/stringray/loader"
	"github.com/minios-linux/stringray/merge"
	"github.com/minios-linux/stringray/report"
	"github.com/minios-linux/stringray/strtable"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorBlue   = color.New(color.FgBlue).SprintFunc()
)

// newLogger returns the console logger shared by the command output helpers
// and the library packages.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     color.NoColor,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: formatLevel,
	}
	return zerolog.New(cw).Level(level)
}

func formatLevel(i any) string {
	switch i {
	case nil:
		// logSuccess events carry no level
		return colorGreen("[OK]")
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		return "[DEBUG]"
	case zerolog.LevelInfoValue:
		return colorBlue("[INFO]")
	case zerolog.LevelWarnValue:
		return colorYellow("[WARN]")
	default:
		return colorRed("[ERROR]")
	}
}

func logInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func logSuccess(format string, args ...any) {
	log.Log().Msgf(format, args...)
}

func logWarning(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func logError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	inputDir string
	baseFlag string
	ignore   []string
	noCache  bool
	verbose  bool

	settings config.Settings
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stringray",
		Short: "Lint and refactor Xcode .strings and .stringsdict tables",
		Long: `stringray checks and rewrites localized string tables laid out as
<dir>/<locale>.lproj/<table>.strings and <table>.stringsdict.

Commands:
  lint      Check tables for missing, orphaned and duplicate keys,
            missing comments and broken format specifiers
  status    Show locales, tables and translation coverage
  sort      Sort a table by key
  copy      Copy keys from one table to another
  move      Move keys from one table to another
  delete    Delete keys from a table
  rename    Rename keys by prefix or regular expression

Matches (--match):
  exact:<key>     the key itself
  prefix:<text>   keys starting with text (also a bare value)
  regex:<expr>    keys matching a regular expression
  glob:<pattern>  keys matching a glob, '.' separates segments`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVarP(&inputDir, "input", "i", ".", "Directory holding the .lproj folders")
	pf.StringVar(&baseFlag, "base", "", "Base locale (default: inferred)")
	pf.StringSliceVar(&ignore, "ignore", nil, "Locales to ignore")
	pf.BoolVar(&noCache, "no-cache", false, "Do not read or write the parse cache")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show debug output")

	root.AddCommand(
		newLintCmd(),
		newStatusCmd(),
		newSortCmd(),
		newCopyCmd(),
		newMoveCmd(),
		newDeleteCmd(),
		newRenameCmd(),
		newVersionCmd(),
	)

	return root
}

// setup loads settings and configures logging and translations.
func setup() error {
	var err error
	settings, err = config.LoadSettings()
	if err != nil {
		return err
	}
	level := settings.Level()
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = newLogger(os.Stderr, level)
	if noCache {
		settings.NoCache = true
	}
	i18n.Init(settings.Lang)
	return nil
}

func main() {
	log.Logger = newLogger(os.Stderr, zerolog.InfoLevel)
	err := newRootCmd().Execute()
	if err != nil {
		var lintErr *lint.Error
		if errors.As(err, &lintErr) {
			logWarning("%s", lintErr.Error())
		} else {
			logError("%v", err)
		}
	}
	os.Exit(exitCode(err, strict))
}

// exitCode maps a command error to the process exit status. Lint findings
// fail the run only when they include errors, or any finding in strict mode.
func exitCode(err error, strict bool) int {
	if err == nil {
		return 0
	}
	var lintErr *lint.Error
	if errors.As(err, &lintErr) {
		if lintErr.Count(lint.SeverityError) > 0 || strict {
			return 2
		}
		return 0
	}
	return 1
}

func newLoader() *loader.Loader {
	return loader.New(settings.Cache())
}

func detectProject() (*config.Project, error) {
	return config.Detect(inputDir, baseFlag)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stringray version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// lint
// ---------------------------------------------------------------------------

var strict bool

func newLintCmd() *cobra.Command {
	var (
		list       bool
		configPath string
		reporter   string
		repair     bool
	)

	cmd := &cobra.Command{
		Use:   "lint [table...]",
		Short: "Check tables for problems",
		Long: `Run the lint rules over one or more tables (default: every table found).

Rules are configured with a .stringray.yml file in the input directory:

  included: [missing_localization, duplicate_key]
  excluded: [missing_comment]
  rules:
    duplicate_key:
      severity: warning

Exit status is 2 when errors are found (or any violation with --strict).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lintConfig(configPath)
			if err != nil {
				return err
			}
			if list {
				report.Rules(os.Stdout, lint.AllRules(), cfg)
				return nil
			}
			rep, err := report.New(reporter, os.Stdout)
			if err != nil {
				return err
			}
			return runLint(args, lint.New(rep, cfg), repair)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&list, "list", "l", false, "List the available rules and their configuration")
	f.StringVarP(&configPath, "config", "c", "", "Configuration file (default: <input>/"+config.LintFileName+")")
	f.StringVarP(&reporter, "reporter", "r", "console", "Output format: "+strings.Join(report.Names, ", "))
	f.BoolVar(&repair, "repair", false, "Repair what the rules can and save the tables")
	f.BoolVar(&strict, "strict", false, "Fail on warnings too")

	return cmd
}

func lintConfig(path string) (lint.Config, error) {
	if path != "" {
		return config.LoadLintConfig(path)
	}
	cfg, found, err := config.FindLintConfig(inputDir)
	if err != nil {
		return lint.Config{}, err
	}
	if found != "" {
		log.Debug().Str("file", found).Msg("using lint configuration")
	}
	return cfg, nil
}

func runLint(tables []string, linter *lint.Linter, repair bool) error {
	proj, err := detectProject()
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		tables = proj.Tables
	}
	if len(tables) == 0 {
		logWarning(i18n.T("No string tables found in %s"), proj.Root)
		return nil
	}

	ld := newLoader()
	var violations []lint.Violation
	for _, name := range tables {
		logInfo(i18n.T("Linting: %s"), name)
		t, err := ld.LoadTable(proj.Root, name, proj.Base, ignore...)
		if err != nil {
			return err
		}

		if err := linter.Report(t); err != nil {
			var lintErr *lint.Error
			if !errors.As(err, &lintErr) {
				return err
			}
			violations = append(violations, lintErr.Violations...)
		}

		if repair {
			if err := linter.Repair(t); err != nil {
				return err
			}
			if err := loader.SaveTable(t, proj.Root); err != nil {
				return err
			}
			logSuccess(i18n.T("Repaired %s"), name)
		}

		if err := ld.WriteCache(proj.Root, name); err != nil {
			logWarning("%v", err)
		}
	}

	stats := ld.Stats()
	log.Debug().Int("parsed", stats.Parsed).Int("cached", stats.Cached).Msg("files loaded")

	if len(violations) > 0 {
		return &lint.Error{Violations: violations}
	}
	logSuccess(i18n.T("No violations found"))
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: locales, tables, coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show locales, tables and translation coverage",
		Long: `Show the detected base locale, locales and tables, and for every table
the number of entries per locale and how many base keys each locale covers.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(os.Stdout)
		},
	}

	return cmd
}

func runStatus(w io.Writer) error {
	proj, err := detectProject()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", colorBlue(i18n.T("Project")))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Root:       %s\n", proj.Root)
	fmt.Fprintf(w, "  Base:       %s\n", proj.Base)
	fmt.Fprintf(w, "  Locales:    %s\n", strings.Join(proj.Locales, ", "))
	fmt.Fprintf(w, "  Tables:     %s\n", strings.Join(proj.Tables, ", "))
	fmt.Fprintln(w)

	ld := newLoader()
	for _, name := range proj.Tables {
		t, err := ld.LoadTable(proj.Root, name, proj.Base, ignore...)
		if err != nil {
			return err
		}
		showTableStats(w, t)
		fmt.Fprintf(w, "  Cache:      %s\n\n", ld.CacheSummary(proj.Root, name))
	}
	return nil
}

func showTableStats(w io.Writer, t *strtable.Table) {
	fmt.Fprintf(w, "%s\n", colorBlue(t.Name))

	base := t.BaseLocalization().AllKeys()
	width := langColumnWidth(t.Locales())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Locale", "Language", "Strings", "Plurals", "Coverage"})
	table.SetAutoWrapText(false)
	for _, locale := range t.Locales() {
		l, _ := t.Localization(locale)
		covered := 0
		for _, k := range l.AllKeys().Values() {
			if base.ContainsKey(k) {
				covered++
			}
		}
		percent := 100
		if base.Len() > 0 {
			percent = covered * 100 / base.Len()
		}
		table.Append([]string{
			langCell(locale, width),
			langmeta.Resolve(locale).English,
			fmt.Sprint(len(l.Strings())),
			fmt.Sprint(len(l.Pluralizations())),
			progressBar(percent, 20),
		})
	}
	table.Render()
}

// progressBar renders a percentage as a colored bar followed by the number.
func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent >= 100:
		bar = colorGreen(bar)
	case percent >= 50:
		bar = colorYellow(bar)
	default:
		bar = colorRed(bar)
	}
	return fmt.Sprintf("%s %3d%%", bar, percent)
}

func langColumnWidth(locales []string) int {
	width := 0
	for _, l := range locales {
		width = max(width, len(l))
	}
	return width
}

// langCell pads a locale to width and prefixes its flag when known.
func langCell(locale string, width int) string {
	cell := fmt.Sprintf("%-*s", width, locale)
	if flag := langmeta.Resolve(locale).Flag; flag != "" {
		return flag + " " + cell
	}
	return cell
}

// ---------------------------------------------------------------------------
// sort
// ---------------------------------------------------------------------------

func newSortCmd() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "sort <table>",
		Short: "Sort a table alphabetically by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := detectProject()
			if err != nil {
				return err
			}
			t, err := newLoader().LoadTable(proj.Root, args[0], proj.Base, ignore...)
			if err != nil {
				return err
			}
			if !merge.Sort(t, locale) {
				return fmt.Errorf("table %s has no locale %q", args[0], locale)
			}
			if err := loader.SaveTable(t, proj.Root); err != nil {
				return err
			}
			logSuccess(i18n.T("Sorted %s"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Locale to sort (default: all)")
	return cmd
}

// ---------------------------------------------------------------------------
// copy / move / delete
// ---------------------------------------------------------------------------

// selectionFlags are the key selection options shared by copy, move and
// delete.
type selectionFlags struct {
	locale  string
	prefix  []string
	exact   []string
	matches []string
}

func (s *selectionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.locale, "locale", "", "Locale to operate on (default: all)")
	fs.StringArrayVar(&s.prefix, "prefix", nil, "Select keys starting with this prefix (repeatable)")
	fs.StringArrayVar(&s.exact, "exact", nil, "Select this exact key (repeatable)")
	fs.StringArrayVarP(&s.matches, "match", "m", nil, "Select keys with a match expression (repeatable)")
}

func (s *selectionFlags) selection() (merge.Selection, error) {
	sel := merge.Selection{Locale: s.locale}
	for _, p := range s.prefix {
		sel.Matches = append(sel.Matches, strtable.Prefix(p))
	}
	for _, e := range s.exact {
		sel.Matches = append(sel.Matches, strtable.Exact(e))
	}
	parsed, err := strtable.ParseMatches(s.matches)
	if err != nil {
		return sel, err
	}
	sel.Matches = append(sel.Matches, parsed...)
	return sel, nil
}

func newCopyCmd() *cobra.Command {
	return newTransferCmd("copy", "Copy keys matching the selection from one table to another", merge.Copy)
}

func newMoveCmd() *cobra.Command {
	return newTransferCmd("move", "Move keys matching the selection from one table to another", merge.Move)
}

func newTransferCmd(use, short string, op func(src, dst *strtable.Table, sel merge.Selection) *strtable.Table) *cobra.Command {
	var (
		sel    selectionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   use + " <source> <destination>",
		Short: short,
		Long: short + `.

Without --prefix, --exact or --match every key is selected. Keys the
destination already has keep their destination value.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			proj, err := detectProject()
			if err != nil {
				return err
			}
			if output == "" {
				output = proj.Root
			}

			ld := newLoader()
			src, err := ld.LoadTable(proj.Root, args[0], proj.Base, ignore...)
			if err != nil {
				return err
			}
			dst, err := loadOrCreate(ld, output, args[1], proj.Base)
			if err != nil {
				return err
			}

			moved := op(src, dst, selection)
			if err := loader.SaveTable(dst, output); err != nil {
				return err
			}
			if use == "move" {
				if err := loader.SaveTable(src, proj.Root); err != nil {
					return err
				}
			}
			logSuccess(i18n.N("%s: %d entry to %s", "%s: %d entries to %s", moved.Len()), use, moved.Len(), args[1])
			return nil
		},
	}

	sel.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default: the input directory)")
	return cmd
}

// loadOrCreate loads a table from dir, which need not exist yet.
func loadOrCreate(ld *loader.Loader, dir, name, base string) (*strtable.Table, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return strtable.NewTable(name, base), nil
	}
	return ld.LoadTable(dir, name, base, ignore...)
}

func newDeleteCmd() *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete keys matching the selection from a table",
		Long: `Delete keys matching the selection from a table.

At least one of --prefix, --exact or --match is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			proj, err := detectProject()
			if err != nil {
				return err
			}
			t, err := newLoader().LoadTable(proj.Root, args[0], proj.Base, ignore...)
			if err != nil {
				return err
			}
			removed, err := merge.Delete(t, selection)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			if err := loader.SaveTable(t, proj.Root); err != nil {
				return err
			}
			logSuccess(i18n.N("Deleted %d entry", "Deleted %d entries", removed.Len()), removed.Len())
			return nil
		},
	}

	sel.register(cmd.Flags())
	return cmd
}

// ---------------------------------------------------------------------------
// rename
// ---------------------------------------------------------------------------

func newRenameCmd() *cobra.Command {
	var (
		matches      []string
		replacements []string
	)

	cmd := &cobra.Command{
		Use:   "rename <table>",
		Short: "Rename keys by prefix or regular expression",
		Long: `Rename keys in every locale of a table. Each --match is paired with the
--replacement at the same position and the pairs are applied in order.

  stringray rename Localizable -m settings. -R preferences.
  stringray rename Localizable -m 'regex:^(.*)_title$' -R '${1}.title'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := strtable.ParseMatches(matches)
			if err != nil {
				return err
			}
			proj, err := detectProject()
			if err != nil {
				return err
			}
			t, err := newLoader().LoadTable(proj.Root, args[0], proj.Base, ignore...)
			if err != nil {
				return err
			}
			n, err := merge.Rename(t, parsed, replacements)
			if err != nil {
				return fmt.Errorf("rename: %w", err)
			}
			if err := loader.SaveTable(t, proj.Root); err != nil {
				return err
			}
			logSuccess(i18n.N("Renamed %d entry", "Renamed %d entries", n), n)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&matches, "match", "m", nil, "Keys to rename (bare values are prefixes)")
	cmd.Flags().StringArrayVarP(&replacements, "replacement", "R", nil, "Replacement for the match at the same position")
	return cmd
}
