package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

// Converter is the conversion engine. It holds only configuration; every
// call reads its file, builds its own records and returns fresh text, so a
// Converter is safe for concurrent use.
type Converter struct {
	reader *tabular.Reader
	fields FieldSet
	escape EscapeFunc
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithReader sets the file reader.
func WithReader(r *tabular.Reader) Option {
	return func(c *Converter) { c.reader = r }
}

// WithFieldSet replaces the alias tables.
func WithFieldSet(fs FieldSet) Option {
	return func(c *Converter) { c.fields = fs }
}

// WithEscape selects the literal escaper (Escape or EscapeStrict).
func WithEscape(fn EscapeFunc) Option {
	return func(c *Converter) {
		if fn != nil {
			c.escape = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// NewConverter creates a Converter with the default reader, the built-in
// alias tables and the legacy escaper.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		fields: DefaultFieldSet(),
		escape: Escape,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reader == nil {
		c.reader = tabular.NewReader(tabular.WithLogger(c.logger))
	}
	return c
}

// DetectEncoding returns the encoding the reader would use for path.
func (c *Converter) DetectEncoding(path string) string {
	return c.reader.DetectEncoding(path)
}

// ConvertKnowledgePoints returns the node-creation script for a
// knowledge-point file.
func (c *Converter) ConvertKnowledgePoints(ctx context.Context, path string) (string, error) {
	res, err := c.KnowledgePoints(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Cypher, nil
}

// ConvertPrerequisites returns the relationship-creation script for a
// prerequisite file.
func (c *Converter) ConvertPrerequisites(ctx context.Context, path string) (string, error) {
	res, err := c.Prerequisites(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Cypher, nil
}

// KnowledgePoints converts a knowledge-point file and reports what was read.
// Every failure is a *TranslationError; no partial output is returned.
func (c *Converter) KnowledgePoints(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	tbl, err := c.read(ctx, path)
	if err != nil {
		return nil, wrapTranslation(KindKnowledgePoints, path, err)
	}

	records, err := ParseKnowledgePoints(ctx, tbl, c.fields.KnowledgePoints)
	if err != nil {
		return nil, wrapTranslation(KindKnowledgePoints, path, err)
	}

	res := &Result{
		Kind:     KindKnowledgePoints,
		Path:     path,
		Cypher:   renderKnowledgePoints(records, c.escape),
		Records:  len(records),
		Encoding: tbl.Encoding,
		Lossy:    tbl.Lossy,
	}

	c.logger.Info("knowledge points converted",
		"path", path,
		"nodes", res.Records,
		"encoding", res.Encoding,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Prerequisites converts a prerequisite file and reports what was read.
// Every failure is a *TranslationError; no partial output is returned.
func (c *Converter) Prerequisites(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	tbl, err := c.read(ctx, path)
	if err != nil {
		return nil, wrapTranslation(KindPrerequisites, path, err)
	}

	records, err := ParsePrerequisites(ctx, tbl, c.fields.Prerequisites)
	if err != nil {
		return nil, wrapTranslation(KindPrerequisites, path, err)
	}

	res := &Result{
		Kind:     KindPrerequisites,
		Path:     path,
		Cypher:   renderPrerequisites(records, c.escape),
		Records:  len(records),
		Encoding: tbl.Encoding,
		Lossy:    tbl.Lossy,
	}

	c.logger.Info("prerequisites converted",
		"path", path,
		"relationships", res.Records,
		"encoding", res.Encoding,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ValidateStructure checks that both files can be read and carry every
// required column, without converting them. A read failure of either file
// marks both invalid.
func (c *Converter) ValidateStructure(knowledgePath, prerequisitePath string) (bool, bool, []string) {
	var problems []string

	kt, err := c.reader.Read(knowledgePath)
	if err != nil {
		return false, false, append(problems, fmt.Sprintf("read error: %v", err))
	}
	pt, err := c.reader.Read(prerequisitePath)
	if err != nil {
		return false, false, append(problems, fmt.Sprintf("read error: %v", err))
	}

	kValid, pValid := true, true
	if err := ResolveFields(kt.Headers, c.fields.KnowledgePoints).Err(); err != nil {
		kValid = false
		problems = append(problems, fmt.Sprintf("knowledge point file: %v", err))
	}
	if err := ResolveFields(pt.Headers, c.fields.Prerequisites).Err(); err != nil {
		pValid = false
		problems = append(problems, fmt.Sprintf("prerequisite file: %v", err))
	}

	return kValid, pValid, problems
}

func (c *Converter) read(ctx context.Context, path string) (*tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reader.Read(path)
}
