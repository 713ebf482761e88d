package lint

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/stringray/strtable"
)

// ConfigFileName is the lint configuration looked up next to the tables.
const ConfigFileName = ".stringray.yml"

// Reporter renders the violations of one rule.
type Reporter interface {
	Report(rule RuleInfo, violations []Violation) error
}

// Error is returned by Linter.Report when any violation was found.
type Error struct {
	Violations []Violation
}

// Count returns the number of violations with severity s.
func (e *Error) Count(s Severity) int {
	n := 0
	for _, v := range e.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

func (e *Error) Error() string {
	return fmt.Sprintf("Encountered %d errors and %d warnings.", e.Count(SeverityError), e.Count(SeverityWarning))
}

// Linter runs rules over tables.
type Linter struct {
	rules    []Rule
	reporter Reporter
	config   Config
}

// New returns a linter over rules, or over AllRules when none are given.
// reporter may be nil when only Lint and Repair are used.
func New(reporter Reporter, config Config, rules ...Rule) *Linter {
	if len(rules) == 0 {
		rules = AllRules()
	}
	return &Linter{rules: rules, reporter: reporter, config: config}
}

// Rules returns every rule the linter knows.
func (l *Linter) Rules() []Rule { return l.rules }

// EnabledRules returns the rules the config lets run, in order.
func (l *Linter) EnabledRules() []Rule { return l.config.Enabled(l.rules) }

// Lint returns every violation in t. It does not modify t.
func (l *Linter) Lint(t *strtable.Table) []Violation {
	var out []Violation
	for _, r := range l.EnabledRules() {
		out = append(out, r.Scan(t, l.config.RuleConfig(r.Info()))...)
	}
	return out
}

// Report scans t rule by rule, handing each rule's violations to the
// reporter as soon as they are known. It returns *Error when anything was
// found.
func (l *Linter) Report(t *strtable.Table) error {
	var all []Violation
	for _, r := range l.EnabledRules() {
		info := r.Info()
		cfg := l.config.RuleConfig(info)
		violations := r.Scan(t, cfg)
		log.Debug().Str("rule", info.ID).Str("table", t.Name).Int("violations", len(violations)).Msg("rule scanned")
		if len(violations) == 0 {
			continue
		}
		if l.reporter != nil {
			info.Severity = cfg.Severity
			if err := l.reporter.Report(info, violations); err != nil {
				return fmt.Errorf("reporting %s: %w", info.ID, err)
			}
		}
		all = append(all, violations...)
	}
	if len(all) > 0 {
		return &Error{Violations: all}
	}
	return nil
}

// Repair runs every enabled rule's repair in order on t. If one fails, t is
// restored to its state before the first repair.
func (l *Linter) Repair(t *strtable.Table) error {
	snapshot := t.Clone()
	for _, r := range l.EnabledRules() {
		info := r.Info()
		if err := r.Repair(t, l.config.RuleConfig(info)); err != nil {
			t.Restore(snapshot)
			return fmt.Errorf("repairing %s: %w", info.ID, err)
		}
	}
	return nil
}
