package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File name conventions for a knowledge point / prerequisite pair sharing a tag.
const (
	KnowledgePrefix    = "knowledge_points_"
	PrerequisitePrefix = "Prerequisite_"

	DefaultKnowledgeFile    = "knowledge_points_EMA.csv"
	DefaultPrerequisiteFile = "Prerequisite_EMA.csv"
)

// ErrNoPairs is returned when a directory holds no complete pair.
var ErrNoPairs = errors.New("no file pairs found")

// inputExts are the accepted input extensions, in preference order.
var inputExts = []string{".csv", ".xlsx", ".xlsm"}

// Pair is a knowledge point file and its prerequisite file.
type Pair struct {
	Tag          string // e.g. "EMA"
	Knowledge    string
	Prerequisite string
}

// FindPairs lists the pairs in dir: every knowledge_points_<TAG> file whose
// Prerequisite_<TAG> counterpart exists. A CSV counterpart is preferred over
// a workbook. Pairs are sorted by tag.
func FindPairs(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			present[e.Name()] = true
		}
	}

	var pairs []Pair
	seen := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, KnowledgePrefix) {
			continue
		}
		ext := filepath.Ext(name)
		if !isInputExt(ext) {
			continue
		}

		tag := strings.TrimSuffix(strings.TrimPrefix(name, KnowledgePrefix), ext)
		if tag == "" || seen[tag] {
			continue
		}

		for _, pext := range inputExts {
			prereq := PrerequisitePrefix + tag + pext
			if present[prereq] {
				seen[tag] = true
				pairs = append(pairs, Pair{
					Tag:          tag,
					Knowledge:    filepath.Join(dir, name),
					Prerequisite: filepath.Join(dir, prereq),
				})
				break
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Tag < pairs[j].Tag })
	return pairs, nil
}

// DefaultPair returns the conventional EMA pair inside dir.
func DefaultPair(dir string) Pair {
	return Pair{
		Tag:          "EMA",
		Knowledge:    filepath.Join(dir, DefaultKnowledgeFile),
		Prerequisite: filepath.Join(dir, DefaultPrerequisiteFile),
	}
}

// ResolvePairs returns the pairs discovered in dir, or the default pair when
// none are found and the default files exist.
func ResolvePairs(dir string) ([]Pair, error) {
	pairs, err := FindPairs(dir)
	if err != nil {
		return nil, err
	}
	if len(pairs) > 0 {
		return pairs, nil
	}

	def := DefaultPair(dir)
	if fileExists(def.Knowledge) && fileExists(def.Prerequisite) {
		return []Pair{def}, nil
	}
	return nil, fmt.Errorf("%w in %s", ErrNoPairs, dir)
}

func isInputExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range inputExts {
		if e == ext {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
