// Package lint checks string tables against a configurable set of rules.
//
// A Rule scans a table and returns violations without touching it; rules
// that can fix what they find also implement a mutating Repair. The Linter
// picks the enabled rules from a Config, resolves each rule's severity and
// either collects violations (Lint), streams them to a Reporter (Report) or
// applies repairs (Repair).
package lint

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringray/strtable"
)

// ---------------------------------------------------------------------------
// Severity
// ---------------------------------------------------------------------------

// Severity ranks a violation.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity validates s.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityWarning, SeverityError:
		return Severity(s), nil
	}
	return "", fmt.Errorf("invalid severity %q (want warning or error)", s)
}

// UnmarshalYAML rejects anything but "warning" and "error".
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	v, err := ParseSeverity(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = v
	return nil
}

func (s Severity) String() string { return string(s) }

// ---------------------------------------------------------------------------
// Rules and violations
// ---------------------------------------------------------------------------

// RuleInfo describes a rule.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	// Severity is the default, overridden per rule in Config.Rules.
	Severity Severity
}

// RuleConfig is the per-rule configuration handed to Scan.
type RuleConfig struct {
	Severity Severity `yaml:"severity"`
}

// Rule is one lint check.
type Rule interface {
	Info() RuleInfo
	// Scan reports violations in t. It must not modify t.
	Scan(t *strtable.Table, cfg RuleConfig) []Violation
	// Repair fixes what Scan reports, in place.
	Repair(t *strtable.Table, cfg RuleConfig) error
}

// noRepair is embedded by rules that cannot repair.
type noRepair struct{}

func (noRepair) Repair(*strtable.Table, RuleConfig) error { return nil }

// Violation is one finding.
type Violation struct {
	Rule     string
	Locale   string
	Location *strtable.Location
	Severity Severity
	Reason   string
}

func (v Violation) String() string {
	if loc := v.Location.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, v.Severity, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", v.Locale, v.Severity, v.Reason)
}

func (info RuleInfo) violation(cfg RuleConfig, locale string, loc *strtable.Location, format string, args ...any) Violation {
	return Violation{
		Rule:     info.ID,
		Locale:   locale,
		Location: loc,
		Severity: cfg.Severity,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config selects rules and overrides severities. The zero value runs every
// rule at its default severity.
type Config struct {
	Included []string              `yaml:"included"`
	Excluded []string              `yaml:"excluded"`
	Rules    map[string]RuleConfig `yaml:"rules"`
}

// Enabled filters rules: when Included is set only those ids remain, then
// Excluded ids are dropped. Exclusion wins over inclusion.
func (c Config) Enabled(rules []Rule) []Rule {
	return slices.DeleteFunc(slices.Clone(rules), func(r Rule) bool {
		id := r.Info().ID
		if len(c.Included) > 0 && !slices.Contains(c.Included, id) {
			return true
		}
		return slices.Contains(c.Excluded, id)
	})
}

// RuleConfig returns the effective configuration of a rule.
func (c Config) RuleConfig(info RuleInfo) RuleConfig {
	if rc, ok := c.Rules[info.ID]; ok && rc.Severity != "" {
		return rc
	}
	return RuleConfig{Severity: info.Severity}
}

// Validate reports rule ids in c that none of rules carries.
func (c Config) Validate(rules []Rule) error {
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.Info().ID] = true
	}
	var errs []error
	for _, id := range c.Included {
		if !known[id] {
			errs = append(errs, fmt.Errorf("included: unknown rule %q", id))
		}
	}
	for _, id := range c.Excluded {
		if !known[id] {
			errs = append(errs, fmt.Errorf("excluded: unknown rule %q", id))
		}
	}
	for _, id := range sortedKeys(c.Rules) {
		if !known[id] {
			errs = append(errs, fmt.Errorf("rules: unknown rule %q", id))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
