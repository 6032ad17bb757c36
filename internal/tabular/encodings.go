package tabular

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// DefaultEncoding is used when detection fails outright.
const DefaultEncoding = "utf-8"

// DefaultConfidenceThreshold is the detector confidence at or above which the
// detected encoding is trusted without probing the candidates.
const DefaultConfidenceThreshold = 0.7

// DefaultCandidates is the ordered list of encodings probed when detection is
// not confident enough, and retried when the resolved encoding fails.
var DefaultCandidates = []string{"utf-8", "big5", "gbk", "gb2312", "cp950"}

// Detection is the best guess of a statistical encoding detector.
type Detection struct {
	Encoding   string
	Confidence float64 // 0..1
}

// Detector guesses the text encoding of raw bytes.
type Detector interface {
	Detect(data []byte) (Detection, error)
}

// chardetDetector adapts saintfish/chardet to Detector.
type chardetDetector struct {
	detector *chardet.Detector
}

// NewChardetDetector returns the default statistical detector.
func NewChardetDetector() Detector {
	return chardetDetector{detector: chardet.NewTextDetector()}
}

func (d chardetDetector) Detect(data []byte) (Detection, error) {
	res, err := d.detector.DetectBest(data)
	if err != nil {
		return Detection{}, err
	}
	return Detection{
		Encoding:   res.Charset,
		Confidence: float64(res.Confidence) / 100,
	}, nil
}

// DecodeError reports that raw bytes are not valid in an encoding.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding error: cannot decode as %s: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("encoding error: cannot decode as %s", e.Encoding)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// knownEncodings covers the candidate list plus the Chinese charsets the
// detector reports. Python-style aliases map onto the nearest x/text decoder.
var knownEncodings = map[string]encoding.Encoding{
	"big5":       traditionalchinese.Big5,
	"cp950":      traditionalchinese.Big5,
	"big5-hkscs": traditionalchinese.Big5,
	"gbk":        simplifiedchinese.GBK,
	"gb2312":     simplifiedchinese.GBK,
	"cp936":      simplifiedchinese.GBK,
	"gb18030":    simplifiedchinese.GB18030,
	"hz-gb-2312": simplifiedchinese.HZGB2312,
}

// NormalizeName lowercases an encoding label and folds the spellings the
// detector uses onto the names used elsewhere in this package.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "utf8":
		return "utf-8"
	case "gb-18030":
		return "gb18030"
	}
	return n
}

func isUTF8(name string) bool {
	switch NormalizeName(name) {
	case "utf-8", "ascii", "us-ascii":
		return true
	}
	return false
}

// lookupEncoding resolves an encoding name to a decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	n := NormalizeName(name)
	if enc, ok := knownEncodings[n]; ok {
		return enc, nil
	}
	if enc, err := htmlindex.Get(n); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
		return enc, nil
	}
	return nil, &DecodeError{Encoding: n, Err: fmt.Errorf("unsupported encoding %q", name)}
}

// DecodeStrict decodes raw with the named encoding and fails if any byte
// sequence is invalid in it.
func DecodeStrict(raw []byte, name string) (string, error) {
	if isUTF8(name) {
		if !utf8.Valid(raw) {
			return "", &DecodeError{Encoding: NormalizeName(name)}
		}
		return string(raw), nil
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Encoding: NormalizeName(name), Err: err}
	}

	// x/text decoders substitute U+FFFD instead of failing.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", &DecodeError{Encoding: NormalizeName(name)}
	}

	return string(out), nil
}

// DecodeLossy interprets raw as UTF-8 and drops every undecodable byte.
// It never fails; the result is not guaranteed to be lossless.
func DecodeLossy(raw []byte) string {
	out, _ := io.ReadAll(NewUTF8Sanitizer(bytes.NewReader(raw)))
	return string(out)
}
