package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
)

func TestPairs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	ok := &handler.PairResult{
		Pair: handler.Pair{Knowledge: "in/knowledge_points_EMA.csv", Prerequisite: "in/Prerequisite_EMA.csv"},
		Nodes: handler.FileResult{
			Result: &core.Result{Records: 12, Encoding: "big5", Lossy: true},
			Output: "output/knowledge_points_EMA_nodes.cypher",
		},
		Relationships: handler.FileResult{
			Result: &core.Result{Records: 30, Encoding: "utf-8"},
			Output: "output/Prerequisite_EMA_relationships.cypher",
		},
		Script:     "...",
		ScriptPath: "output/knowledge_points_EMA_Prerequisite_EMA_complete.cypher",
	}
	failed := &handler.PairResult{
		Pair:          handler.Pair{Knowledge: "k.csv", Prerequisite: "p.csv"},
		Nodes:         handler.FileResult{Err: &core.MissingFieldsError{Fields: []string{"Subject"}}},
		Relationships: handler.FileResult{Result: &core.Result{Records: 1, Encoding: "utf-8"}},
	}

	p.Pairs([]*handler.PairResult{ok, failed})
	out := buf.String()

	assert.Contains(t, out, "knowledge_points_EMA.csv + Prerequisite_EMA.csv\n")
	assert.Contains(t, out, "✓ nodes 12 nodes, big5 -> output/knowledge_points_EMA_nodes.cypher")
	assert.Contains(t, out, "undecodable bytes were dropped")
	assert.Contains(t, out, "✓ complete output/knowledge_points_EMA_Prerequisite_EMA_complete.cypher")
	assert.Contains(t, out, "✗ nodes")
	assert.Contains(t, out, "VAL004")
	assert.Contains(t, out, "- complete script skipped")
	assert.Contains(t, out, "k.csv + p.csv (failed)\n")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestValidation(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Validation(true, false, []string{"prerequisite file: missing required column(s): Target"})

	assert.Equal(t,
		"✓ knowledge point file\n✗ prerequisite file\n  prerequisite file: missing required column(s): Target\n",
		buf.String())
}

func TestHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.History(nil)
	assert.Equal(t, "no conversions recorded\n", buf.String())

	buf.Reset()
	e := history.NewEntry("prerequisites", "Prerequisite_EMA.csv")
	e.Encoding = "utf-8"
	e.Records = 7
	e.Duration = 1234 * time.Microsecond
	f := history.NewEntry("knowledge_points", "bad.csv")
	f.Fail(errors.New("missing required column(s): Name"))

	p.History([]history.Entry{e, f})
	out := buf.String()
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "Prerequisite_EMA.csv")
	assert.Contains(t, out, "1ms")
	assert.Contains(t, out, "failed: missing required column(s): Name")
}

func TestHistoryTable_Width(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.width = 60

	e := history.NewEntry("knowledge_points", strings.Repeat("knowledge_points_", 6)+"EMA.csv")
	e.Encoding = "big5"
	p.History([]history.Entry{e})

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 60, line)
	}
}

func TestPairList(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PairList([]handler.Pair{{Tag: "EMA", Knowledge: "a.csv", Prerequisite: "b.csv"}})
	assert.Contains(t, buf.String(), "EMA")
	assert.Contains(t, buf.String(), "b.csv")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Error(errors.New("empty file: no header row found"))
	assert.Contains(t, buf.String(), "Error: The file has no header row (Code: FILE005)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a b", truncate("a\nb", 5))
}
