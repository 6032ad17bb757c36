// Package handler drives conversions end to end: it pairs input files, runs
// the converter, writes the generated scripts and records each run.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/logging"
)

// DefaultTimeout bounds a single pair conversion.
var DefaultTimeout = 2 * time.Minute

// Pipeline converts files and persists the results.
type Pipeline struct {
	converter *core.Converter
	recorder  history.Recorder
	outputDir string // empty means nothing is written to disk
	timeout   time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRecorder records every conversion in r.
func WithRecorder(r history.Recorder) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithOutputDir writes generated scripts under dir.
func WithOutputDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.outputDir = dir }
}

// WithTimeout overrides DefaultTimeout. Zero disables the timeout.
func WithTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.timeout = d }
}

// NewPipeline creates a Pipeline around conv.
func NewPipeline(conv *core.Converter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		converter: conv,
		recorder:  history.Nop{},
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileResult is the outcome for one input file of a pair.
type FileResult struct {
	Result *core.Result // nil on failure
	Output string       // path written, empty if nothing was written
	Err    error
}

// PairResult is the outcome of ProcessPair.
type PairResult struct {
	Pair          Pair
	Nodes         FileResult
	Relationships FileResult
	Script        string // composite script, empty unless both sides succeeded
	ScriptPath    string
}

// OK reports whether both conversions succeeded.
func (r *PairResult) OK() bool {
	return r.Nodes.Err == nil && r.Relationships.Err == nil
}

// Convert runs one conversion of the given kind and records it. Nothing is
// written to disk.
func (p *Pipeline) Convert(ctx context.Context, kind core.Kind, path string) (*core.Result, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.convert(ctx, kind, path, filepath.Base(path))
}

// ConvertNamed is Convert for inputs stored under a temporary path; source
// is the name recorded in history.
func (p *Pipeline) ConvertNamed(ctx context.Context, kind core.Kind, path, source string) (*core.Result, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.convert(ctx, kind, path, source)
}

// ProcessPair converts a knowledge point file and its prerequisite file
// concurrently. Each successful side is written on its own; the composite
// script is written only when both succeed. The returned error joins the
// failures of both sides.
func (p *Pipeline) ProcessPair(ctx context.Context, pair Pair) (*PairResult, error) {
	return p.processPair(ctx, pair, filepath.Base(pair.Knowledge), filepath.Base(pair.Prerequisite))
}

// ProcessNamedPair is ProcessPair for inputs stored under temporary paths;
// the names are used for history, the script header and output file names.
func (p *Pipeline) ProcessNamedPair(ctx context.Context, pair Pair, knowledgeName, prerequisiteName string) (*PairResult, error) {
	return p.processPair(ctx, pair, knowledgeName, prerequisiteName)
}

func (p *Pipeline) processPair(ctx context.Context, pair Pair, kName, pName string) (*PairResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	log := logging.WithFields(ctx, "knowledge", kName, "prerequisite", pName)
	out := &PairResult{Pair: pair}

	// A failure on one side must not cancel the other, so errors are kept
	// per side rather than returned to the group.
	var g errgroup.Group
	g.Go(func() error {
		out.Nodes.Result, out.Nodes.Err = p.convert(ctx, core.KindKnowledgePoints, pair.Knowledge, kName)
		return nil
	})
	g.Go(func() error {
		out.Relationships.Result, out.Relationships.Err = p.convert(ctx, core.KindPrerequisites, pair.Prerequisite, pName)
		return nil
	})
	_ = g.Wait()

	names := NamesFor(kName, pName)

	if out.Nodes.Err == nil {
		out.Nodes.Output, out.Nodes.Err = p.write(log, names.Nodes, out.Nodes.Result.Cypher)
	}
	if out.Relationships.Err == nil {
		out.Relationships.Output, out.Relationships.Err = p.write(log, names.Relationships, out.Relationships.Result.Cypher)
	}

	if out.Nodes.Result != nil && out.Relationships.Result != nil {
		out.Script = CompositeScript(kName, pName, out.Nodes.Result.Cypher, out.Relationships.Result.Cypher)
		var err error
		out.ScriptPath, err = p.write(log, names.Complete, out.Script)
		if err != nil {
			return out, err
		}
	}

	err := errors.Join(out.Nodes.Err, out.Relationships.Err)
	if err != nil {
		log.Warn("pair conversion failed", "error", err)
	} else {
		log.Info("pair converted",
			"nodes", out.Nodes.Result.Records,
			"relationships", out.Relationships.Result.Records)
	}
	return out, err
}

// ProcessDir converts every pair found in dir. Pairs are processed in order;
// a failing pair does not stop the rest.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) ([]*PairResult, error) {
	pairs, err := ResolvePairs(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*PairResult, 0, len(pairs))
	var errs []error
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := p.ProcessPair(ctx, pair)
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("pair %s: %w", pair.Tag, err))
		}
	}
	return results, errors.Join(errs...)
}

func (p *Pipeline) convert(ctx context.Context, kind core.Kind, path, source string) (*core.Result, error) {
	start := time.Now()
	log := logging.FromContext(ctx)

	var (
		res *core.Result
		err error
	)
	switch kind {
	case core.KindKnowledgePoints:
		res, err = p.converter.KnowledgePoints(ctx, path)
	case core.KindPrerequisites:
		res, err = p.converter.Prerequisites(ctx, path)
	default:
		return nil, fmt.Errorf("unknown conversion kind %q", kind)
	}

	entry := history.NewEntry(string(kind), source)
	entry.Duration = time.Since(start)
	if err != nil {
		entry.Fail(err)
	} else {
		entry.Encoding = res.Encoding
		entry.Records = res.Records
		if res.Lossy {
			log.Warn("undecodable bytes dropped", "source", source, "encoding", res.Encoding)
		}
	}

	// History is best effort; a recording failure never fails the conversion.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := p.recorder.Record(recCtx, entry); rerr != nil {
		log.Warn("failed to record conversion", "source", source, "error", rerr)
	}

	return res, err
}

// write stores content as name under the output directory. The name is
// reduced to its base so it cannot escape the directory.
func (p *Pipeline) write(log *slog.Logger, name, content string) (string, error) {
	if p.outputDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(p.outputDir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Info("script written", "path", path, "bytes", len(content))
	return path, nil
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
