// Package cli renders command results for the studyflow terminal client.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
	"github.com/at-ishikawa/studyflow/internal/database"
	"github.com/at-ishikawa/studyflow/internal/server"
)

// Output formats for migrate status.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Printer writes human-readable results to a terminal.
type Printer struct {
	stdoutWriter io.Writer
	bold         *color.Color
	green        *color.Color
	yellow       *color.Color
	red          *color.Color
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		stdoutWriter: w,
		bold:         color.New(color.Bold),
		green:        color.New(color.FgGreen),
		yellow:       color.New(color.FgYellow),
		red:          color.New(color.FgRed),
	}
}

// MigrationResult reports what migrate did to the database at path.
func (p *Printer) MigrationResult(path string, applied []int) error {
	if len(applied) == 0 {
		_, err := p.green.Fprintf(p.stdoutWriter, "Database %s is up to date.\n", path)
		return err
	}

	versions := make([]string, 0, len(applied))
	for _, v := range applied {
		versions = append(versions, fmt.Sprintf("%04d", v))
	}
	_, err := p.green.Fprintf(p.stdoutWriter, "Applied %d migration(s) to %s: %s\n",
		len(applied), path, strings.Join(versions, ", "))
	return err
}

// MigrationStatuses lists every known migration in the given format.
func (p *Printer) MigrationStatuses(statuses []database.MigrationStatus, format string) error {
	switch format {
	case FormatYAML:
		encoder := yaml.NewEncoder(p.stdoutWriter)
		encoder.SetIndent(2)
		if err := encoder.Encode(statuses); err != nil {
			return fmt.Errorf("yaml.Encode() > %w", err)
		}
		return encoder.Close()
	case FormatTable, "":
		tw := tabwriter.NewWriter(p.stdoutWriter, 0, 0, 2, ' ', 0)
		if _, err := p.bold.Fprintln(tw, "VERSION\tDESCRIPTION\tSTATE\tAPPLIED AT"); err != nil {
			return err
		}
		for _, s := range statuses {
			state := p.yellow.Sprint("pending")
			if s.Applied {
				state = p.green.Sprint("applied")
			}
			if _, err := fmt.Fprintf(tw, "%04d\t%s\t%s\t%s\n", s.Version, s.Description, state, s.AppliedAt); err != nil {
				return err
			}
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q: want %s or %s", format, FormatTable, FormatYAML)
	}
}

// StudyLogAdded confirms an inserted log.
func (p *Printer) StudyLogAdded(subject string) error {
	_, err := p.green.Fprintf(p.stdoutWriter, "Saved study log for %s.\n", subject)
	return err
}

// Health prints the state reported by a server.
func (p *Printer) Health(health server.HealthResponse) error {
	var c *color.Color
	switch health.State {
	case bootstrap.StateReady:
		c = p.green
	case bootstrap.StateStarting:
		c = p.yellow
	default:
		c = p.red
	}

	if _, err := fmt.Fprintf(p.stdoutWriter, "state: %s\n", c.Sprint(health.State)); err != nil {
		return err
	}
	if health.Version != "" {
		if _, err := fmt.Fprintf(p.stdoutWriter, "version: %s\n", health.Version); err != nil {
			return err
		}
	}
	if health.Error != "" {
		if _, err := fmt.Fprintf(p.stdoutWriter, "error: %s\n", p.red.Sprint(health.Error)); err != nil {
			return err
		}
	}
	return nil
}
