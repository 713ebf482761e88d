// Package report renders lint violations: as a table for people, as
// compiler-style lines for Xcode build logs, or not at all.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/minios-linux/stringray/lint"
)

var (
	errorText   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
	headingText = color.New(color.Bold).SprintFunc()
)

func severityText(s lint.Severity) string {
	if s == lint.SeverityError {
		return errorText(s.String())
	}
	return warningText(s.String())
}

// Names lists the reporters accepted by New.
var Names = []string{"console", "xcode", "null"}

// New returns the reporter called name, writing to w.
func New(name string, w io.Writer) (lint.Reporter, error) {
	switch name {
	case "console", "":
		return NewConsole(w), nil
	case "xcode":
		return NewXcode(w), nil
	case "null":
		return Null{}, nil
	}
	return nil, fmt.Errorf("unknown reporter %q (want one of %s)", name, strings.Join(Names, ", "))
}

// ---------------------------------------------------------------------------
// Console
// ---------------------------------------------------------------------------

// Console prints one table per rule.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Report(rule lint.RuleInfo, violations []lint.Violation) error {
	if _, err := fmt.Fprintf(c.w, "%s (%s): %d\n", headingText(rule.Name), rule.ID, len(violations)); err != nil {
		return err
	}
	table := tablewriter.NewWriter(c.w)
	table.SetHeader([]string{"Locale", "Location", "Severity", "Reason"})
	table.SetAutoWrapText(false)
	for _, v := range violations {
		table.Append([]string{v.Locale, v.Location.String(), severityText(v.Severity), v.Reason})
	}
	table.Render()
	return nil
}

// ---------------------------------------------------------------------------
// Xcode
// ---------------------------------------------------------------------------

// Xcode prints "file[:line]: severity: reason" lines, which Xcode turns
// into issues when emitted from a build phase.
type Xcode struct {
	w io.Writer
}

func NewXcode(w io.Writer) *Xcode { return &Xcode{w: w} }

func (x *Xcode) Report(_ lint.RuleInfo, violations []lint.Violation) error {
	for _, v := range violations {
		where := v.Location.String()
		if where == "" {
			where = v.Locale + ".lproj"
		}
		if _, err := fmt.Fprintf(x.w, "%s: %s: %s\n", where, v.Severity, v.Reason); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Null
// ---------------------------------------------------------------------------

// Null discards everything; the exit status still reflects violations.
type Null struct{}

func (Null) Report(lint.RuleInfo, []lint.Violation) error { return nil }

// ---------------------------------------------------------------------------
// Rule listing
// ---------------------------------------------------------------------------

// Rules prints every rule with its effective severity and whether cfg
// enables it.
func Rules(w io.Writer, rules []lint.Rule, cfg lint.Config) {
	enabled := make(map[string]bool)
	for _, r := range cfg.Enabled(rules) {
		enabled[r.Info().ID] = true
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Identifier", "Name", "Severity", "Enabled", "Description"})
	table.SetAutoWrapText(false)
	for _, r := range rules {
		info := r.Info()
		on := "no"
		if enabled[info.ID] {
			on = "yes"
		}
		table.Append([]string{info.ID, info.Name, severityText(cfg.RuleConfig(info).Severity), on, info.Description})
	}
	table.Render()
}
