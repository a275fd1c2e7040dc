// internal/logging/render.go
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/steamicc/easyflash/internal/logsink"
)

var (
	blue   = lipgloss.Color("39")
	yellow = lipgloss.Color("214")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
	purple = lipgloss.Color("99")
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(blue)
	warnStyle  = lipgloss.NewStyle().Foreground(yellow)
	errStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	stampStyle = lipgloss.NewStyle().Foreground(dim)
)

// Renderer formats job log entries for a terminal.
type Renderer struct {
	Timestamps bool
}

// Line renders one entry without a trailing newline.
//
//	[12:04:05.120] [INFO] Unlock target
//
// PlainInfo entries carry no tag.
func (r Renderer) Line(e logsink.Entry) string {
	var b strings.Builder
	if r.Timestamps && !e.At.IsZero() {
		b.WriteString(stampStyle.Render("[" + e.At.Format("15:04:05.000") + "]"))
		b.WriteByte(' ')
	}

	switch e.Kind {
	case logsink.Info:
		b.WriteString(infoStyle.Render("[INFO]"))
		b.WriteByte(' ')
	case logsink.Warning:
		b.WriteString(warnStyle.Render("[WARN]"))
		b.WriteByte(' ')
	case logsink.Error:
		b.WriteString(errStyle.Render("[ERR]"))
		b.WriteByte(' ')
	}
	b.WriteString(e.Text)
	return b.String()
}

// Write renders entries one per line.
func (r Renderer) Write(w io.Writer, entries ...logsink.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, r.Line(e)); err != nil {
			return err
		}
	}
	return nil
}

// Follow prints sink entries as they arrive until done is closed or ctx ends,
// then flushes what is left.
func (r Renderer) Follow(ctx context.Context, sink *logsink.Sink, w io.Writer, done <-chan struct{}) error {
	for {
		if err := r.Write(w, sink.Drain()...); err != nil {
			return err
		}
		select {
		case <-sink.Notify():
		case <-done:
			return r.Write(w, sink.Drain()...)
		case <-ctx.Done():
			_ = r.Write(w, sink.Drain()...)
			return ctx.Err()
		}
	}
}

// Table renders a rounded-border table for listing commands.
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
