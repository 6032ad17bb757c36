package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the largest input file accepted (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// Reader turns a file of unknown text encoding into a Table.
// A Reader holds no per-call state and is safe for concurrent use.
type Reader struct {
	threshold   float64
	candidates  []string
	maxFileSize int64
	detector    Detector
	logger      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithThreshold sets the detector confidence at which the detected encoding
// is used without probing the candidates.
func WithThreshold(t float64) Option {
	return func(r *Reader) { r.threshold = t }
}

// WithCandidates sets the ordered candidate encodings.
func WithCandidates(c []string) Option {
	return func(r *Reader) {
		if len(c) == 0 {
			return
		}
		r.candidates = make([]string, 0, len(c))
		for _, name := range c {
			if n := NormalizeName(name); n != "" {
				r.candidates = append(r.candidates, n)
			}
		}
	}
}

// WithMaxFileSize limits the size of files the Reader accepts. Zero or less
// disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(r *Reader) { r.maxFileSize = n }
}

// WithDetector replaces the statistical detector.
func WithDetector(d Detector) Option {
	return func(r *Reader) { r.detector = d }
}

// WithLogger sets the logger used for progress notices.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// NewReader creates a Reader with the default threshold, candidates and
// chardet detector, then applies opts.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		threshold:   DefaultConfidenceThreshold,
		candidates:  append([]string(nil), DefaultCandidates...),
		maxFileSize: DefaultMaxFileSize,
		detector:    NewChardetDetector(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DetectEncoding returns the encoding that Read would try first for path.
// It never fails: an unreadable file or a detector failure yields "utf-8".
func (r *Reader) DetectEncoding(path string) string {
	raw, err := r.readFile(path)
	if err != nil {
		r.logger.Warn("encoding detection failed, using default",
			"path", path, "encoding", DefaultEncoding, "error", err)
		return DefaultEncoding
	}
	return r.resolveEncoding(raw, path)
}

// Read loads path into a Table. Workbooks (.xlsx, .xlsm) are read from their
// first sheet. Text files are decoded with the detected encoding, then with
// each remaining candidate, and finally with a lossy UTF-8 decode that drops
// undecodable bytes; encoding problems alone never make Read fail.
func (r *Reader) Read(path string) (*Table, error) {
	if IsWorkbook(path) {
		if err := r.checkSize(path); err != nil {
			return nil, err
		}
		return readWorkbook(path)
	}

	raw, err := r.readFile(path)
	if err != nil {
		return nil, err
	}

	enc := r.resolveEncoding(raw, path)
	text, usedEnc, lossy := r.decode(raw, enc, path)

	records, err := parseCSV(text)
	if err != nil {
		return nil, fmt.Errorf("invalid csv %s: %w", filepath.Base(path), err)
	}

	t, err := NewTable(records)
	if err != nil {
		return nil, err
	}
	t.Encoding = usedEnc
	t.Lossy = lossy

	r.logger.Debug("file read",
		"path", path, "encoding", usedEnc, "rows", t.Len(), "lossy", lossy)

	return t, nil
}

// resolveEncoding runs the detector and, when it is not confident enough,
// probes the candidates in order.
func (r *Reader) resolveEncoding(raw []byte, path string) string {
	det, err := r.detector.Detect(raw)
	if err != nil || det.Encoding == "" {
		r.logger.Info("encoding detection failed, using default",
			"path", path, "encoding", DefaultEncoding, "error", err)
		return DefaultEncoding
	}

	detected := NormalizeName(det.Encoding)
	r.logger.Info("detected encoding",
		"path", path, "encoding", detected, "confidence", det.Confidence)

	if det.Confidence >= r.threshold {
		return detected
	}

	for _, c := range r.candidates {
		if _, err := DecodeStrict(raw, c); err == nil {
			r.logger.Info("low confidence, using candidate encoding",
				"path", path, "encoding", c, "detected", detected)
			return c
		}
	}

	return detected
}

// decode tries enc, then the other candidates, then the lossy fallback.
func (r *Reader) decode(raw []byte, enc, path string) (text, used string, lossy bool) {
	s, err := DecodeStrict(raw, enc)
	if err == nil {
		return s, enc, false
	}
	r.logger.Info("decode failed, retrying candidates",
		"path", path, "encoding", enc, "error", err)

	for _, c := range r.candidates {
		if c == enc {
			continue
		}
		if s, err := DecodeStrict(raw, c); err == nil {
			r.logger.Info("decoded with candidate encoding", "path", path, "encoding", c)
			return s, c, false
		}
	}

	r.logger.Warn("all candidate encodings failed, undecodable bytes dropped",
		"path", path, "encoding", DefaultEncoding)
	return DecodeLossy(raw), DefaultEncoding, true
}

func (r *Reader) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return fmt.Errorf("file too large: %s is %d bytes (limit %d)",
			filepath.Base(path), info.Size(), r.maxFileSize)
	}
	return nil
}

func (r *Reader) readFile(path string) ([]byte, error) {
	if err := r.checkSize(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// parseCSV parses decoded text. Rows may have varying column counts and
// stray quotes are tolerated.
func parseCSV(text string) ([][]string, error) {
	cr := csv.NewReader(NewBOMSkippingReader(strings.NewReader(text)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("line %d: %w", pe.Line, pe.Err)
		}
		return nil, err
	}
	return records, nil
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
