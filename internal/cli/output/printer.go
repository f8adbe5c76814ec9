// Package output formats contexta-cli results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type Format string

const (
	FormatPlain Format = "plain"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPlain, FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be plain, table, or json", s)
	}
}

// ResolveColors reports whether to colorize for mode "auto", "always" or
// "never". Auto honours NO_COLOR and TERM=dumb.
func ResolveColors(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return os.Getenv("TERM") != "dumb", nil
	default:
		return false, fmt.Errorf("invalid color mode %q: must be auto, always, or never", mode)
	}
}

// Printer writes records in one of the supported formats.
type Printer struct {
	out       io.Writer
	err       io.Writer
	format    Format
	useColors bool
}

func NewPrinter(out, errOut io.Writer, format Format, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, format: format, useColors: useColors}
}

// Record prints an ordered list of key/value pairs.
func (p *Printer) Record(keys []string, values map[string]string) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	case FormatTable:
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, values[k]})
		}
		return p.table([]string{"FIELD", "VALUE"}, rows)
	default:
		for _, k := range keys {
			if _, err := fmt.Fprintf(p.out, "%s: %s\n", k, values[k]); err != nil {
				return err
			}
		}
		return nil
	}
}

// Value prints a single value. Plain output is the bare value so it can be
// piped.
func (p *Printer) Value(key, value string) error {
	if p.format == FormatPlain {
		_, err := fmt.Fprintln(p.out, value)
		return err
	}
	return p.Record([]string{key}, map[string]string{key: value})
}

func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		c := color.New(color.FgRed)
		c.EnableColor()
		c.Fprintf(p.err, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

func (p *Printer) table(header []string, rows [][]string) error {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
