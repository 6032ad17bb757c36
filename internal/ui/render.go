package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
)

// Colors
var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB74D"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
)

// Printer writes styled summaries to w.
type Printer struct {
	w     io.Writer
	color bool
	width int // table width limit, 0 for none

	title  lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
	border lipgloss.Style
	header lipgloss.Style
}

// NewPrinter creates a Printer for w. Colors are used only when color is true.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{w: w, color: color}
	p.title = r.NewStyle().Bold(true).Foreground(ColorAccent)
	p.pass = r.NewStyle().Foreground(ColorPass)
	p.fail = r.NewStyle().Bold(true).Foreground(ColorFail)
	p.warn = r.NewStyle().Foreground(ColorWarn)
	p.muted = r.NewStyle().Foreground(ColorMuted)
	p.border = r.NewStyle().Foreground(ColorMuted)
	p.header = r.NewStyle().Bold(true).Foreground(ColorAccent)
	return p
}

// NewFilePrinter writes to f, colored when f is a terminal. Tables are fitted
// to the terminal width.
func NewFilePrinter(f *os.File) *Printer {
	p := NewPrinter(f, ShouldUseColor(f))
	if IsTerminal(f) {
		p.width = Width(f)
	}
	return p
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Pairs prints one block per processed pair.
func (p *Printer) Pairs(results []*handler.PairResult) {
	for i, res := range results {
		if res == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.pair(res)
	}
}

func (p *Printer) pair(res *handler.PairResult) {
	title := filepathBase(res.Pair.Knowledge) + " + " + filepathBase(res.Pair.Prerequisite)
	if res.OK() {
		fmt.Fprintln(p.w, p.style(p.title, title))
	} else {
		fmt.Fprintln(p.w, p.style(p.fail, title+" (failed)"))
	}

	p.file("nodes", res.Nodes)
	p.file("relationships", res.Relationships)

	if res.ScriptPath != "" {
		fmt.Fprintf(p.w, "  %s %s\n", p.style(p.pass, "✓ complete"), res.ScriptPath)
	} else if res.Script != "" {
		fmt.Fprintf(p.w, "  %s\n", p.style(p.pass, "✓ complete script built"))
	} else {
		fmt.Fprintf(p.w, "  %s\n", p.style(p.muted, "- complete script skipped"))
	}
}

func (p *Printer) file(label string, fr handler.FileResult) {
	if fr.Err != nil {
		fmt.Fprintf(p.w, "  %s %s\n", p.style(p.fail, "✗ "+label), core.FormatUserError(fr.Err))
		fmt.Fprintf(p.w, "    %s\n", p.style(p.muted, fr.Err.Error()))
		return
	}

	detail := fmt.Sprintf("%d %s, %s", fr.Result.Records, label, fr.Result.Encoding)
	line := fmt.Sprintf("  %s %s", p.style(p.pass, "✓ "+label), detail)
	if fr.Output != "" {
		line += " -> " + fr.Output
	}
	fmt.Fprintln(p.w, line)
	if fr.Result.Lossy {
		fmt.Fprintf(p.w, "    %s\n", p.style(p.warn, "undecodable bytes were dropped"))
	}
}

// Validation prints the result of a structure check.
func (p *Printer) Validation(kValid, pValid bool, problems []string) {
	p.check("knowledge point file", kValid)
	p.check("prerequisite file", pValid)
	for _, msg := range problems {
		fmt.Fprintf(p.w, "  %s\n", p.style(p.warn, msg))
	}
}

func (p *Printer) check(label string, ok bool) {
	if ok {
		fmt.Fprintf(p.w, "%s %s\n", p.style(p.pass, "✓"), label)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(p.fail, "✗"), label)
}

// PairList prints discovered pairs as a table.
func (p *Printer) PairList(pairs []handler.Pair) {
	if len(pairs) == 0 {
		fmt.Fprintln(p.w, p.style(p.muted, "no pairs found"))
		return
	}

	rows := make([][]string, 0, len(pairs))
	for _, pr := range pairs {
		rows = append(rows, []string{pr.Tag, pr.Knowledge, pr.Prerequisite})
	}
	fmt.Fprintln(p.w, p.table([]string{"TAG", "KNOWLEDGE POINTS", "PREREQUISITES"}, rows))
}

// History prints recent conversions as a table.
func (p *Printer) History(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.style(p.muted, "no conversions recorded"))
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := string(e.Status)
		if e.Status == history.StatusFailed && e.Error != "" {
			status += ": " + truncate(e.Error, 60)
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Kind,
			e.Source,
			e.Encoding,
			strconv.Itoa(e.Records),
			e.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	fmt.Fprintln(p.w, p.table(
		[]string{"WHEN", "KIND", "SOURCE", "ENCODING", "RECORDS", "DURATION", "STATUS"}, rows))
}

// Error prints err with its support code.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(p.fail, "Error:"), core.FormatUserError(err))
	fmt.Fprintf(p.w, "  %s\n", p.style(p.muted, err.Error()))
}

func (p *Printer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...)
	if p.width > 0 {
		t = t.Width(p.width)
	}
	if p.color {
		t = t.BorderStyle(p.border).StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return lipgloss.NewStyle()
		})
	}
	return t.Render()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func filepathBase(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
