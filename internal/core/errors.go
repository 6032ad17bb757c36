package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrMissingFields = errors.New("missing required column")
	ErrDuplicateName = errors.New("duplicate knowledge point name")
)

// MissingFieldsError reports required canonical fields that no header matched.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// DuplicateNameError reports a knowledge-point name seen twice in one file.
// Row is the 1-based data-row number of the second occurrence.
type DuplicateNameError struct {
	Name string
	Row  int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate knowledge point name: '%s' (row %d)", e.Name, e.Row)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// Kind names the conversion that failed.
type Kind string

const (
	KindKnowledgePoints Kind = "knowledge_points"
	KindPrerequisites   Kind = "prerequisites"
)

// TranslationError wraps every failure of a conversion call. The cause stays
// reachable through errors.Is / errors.As.
type TranslationError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *TranslationError) Error() string {
	what := "knowledge point"
	if e.Kind == KindPrerequisites {
		what = "prerequisite"
	}
	return fmt.Sprintf("converting %s file %s: %v", what, e.Path, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

func wrapTranslation(kind Kind, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TranslationError{Kind: kind, Path: path, Err: err}
}
