package core

// aliases.go resolves the literal headers of a file to canonical field names.
//
// Each canonical field accepts a fixed set of literal headers: the plain
// English name, a bilingual "中文(English)" form and the bare Chinese name,
// plus legacy synonyms for the hierarchy columns. Matching is exact and
// case-sensitive. For every field the headers are walked in file order and
// the first header that is one of the field's aliases is taken.

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Canonical knowledge-point fields.
const (
	FieldLabel           = "Label"
	FieldName            = "Name"
	FieldEducationSystem = "Education System"
	FieldSubject         = "Subject"
	FieldID              = "ID"
	FieldIsRoot          = "IsRoot"
	FieldTopic           = "Topic"
	FieldUnit            = "Unit"
	FieldConcept         = "Concept"
)

// Canonical prerequisite fields.
const (
	FieldTypes        = "Types"
	FieldPrerequisite = "Prerequisite"
	FieldTarget       = "Target"
)

// FieldSpec declares a canonical field and the literal headers it accepts.
type FieldSpec struct {
	Name     string   // Canonical name
	Aliases  []string // Accepted literal headers, in declaration order
	Required bool     // Absence aborts the conversion
}

// KnowledgePointFields are the canonical fields of a knowledge-point file.
var KnowledgePointFields = []FieldSpec{
	{Name: FieldLabel, Required: true, Aliases: []string{"Label", "標籤(Label)", "標籤"}},
	{Name: FieldName, Required: true, Aliases: []string{"Name", "名稱(Name)", "名稱"}},
	{Name: FieldEducationSystem, Required: true, Aliases: []string{"Education System", "學制(Education System)", "學制"}},
	{Name: FieldSubject, Required: true, Aliases: []string{"Subject", "學科(Subject)", "學科"}},
	{Name: FieldID, Aliases: []string{"ID", "編號(ID)", "編號"}},
	{Name: FieldIsRoot, Aliases: []string{"IsRoot", "是否為根結點(IsRoot)", "是否為根結點"}},
	{Name: FieldTopic, Aliases: []string{"Topic", "主題(Topic)", "主題", "第一層知識"}},
	{Name: FieldUnit, Aliases: []string{"Unit", "次主題(Unit)", "次主題", "第二層知識"}},
	{Name: FieldConcept, Aliases: []string{"Concept", "概念(Concept)", "概念", "第三層知識"}},
}

// PrerequisiteFields are the canonical fields of a prerequisite file.
// Target also accepts the Name headers so that a prerequisite sheet can reuse
// the knowledge-point name column.
var PrerequisiteFields = []FieldSpec{
	{Name: FieldTypes, Required: true, Aliases: []string{"Types", "類型(Types)", "類型"}},
	{Name: FieldPrerequisite, Required: true, Aliases: []string{"Prerequisite", "先備關係(Prerequisite)", "先備關係"}},
	{Name: FieldTarget, Required: true, Aliases: []string{"Target", "名稱(Name)", "名稱", "Name"}},
}

// Resolution maps canonical field names to the literal header chosen for them.
type Resolution struct {
	Headers map[string]string // canonical -> actual header

	missing []string
}

// Header returns the literal header resolved for a canonical field.
func (r Resolution) Header(field string) (string, bool) {
	h, ok := r.Headers[field]
	return h, ok
}

// Missing lists the required canonical fields with no matching header, in
// declaration order.
func (r Resolution) Missing() []string {
	return slices.Clone(r.missing)
}

// Err returns a *MissingFieldsError when any required field is unresolved.
func (r Resolution) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return &MissingFieldsError{Fields: r.Missing()}
}

// ResolveFields matches headers against specs. The alias sets are built once;
// each field then takes the first header, in file order, that is one of its
// aliases. Unresolved optional fields are simply absent from the result.
func ResolveFields(headers []string, specs []FieldSpec) Resolution {
	lookup := make(map[string]map[string]struct{}, len(specs))
	for _, spec := range specs {
		set := make(map[string]struct{}, len(spec.Aliases))
		for _, a := range spec.Aliases {
			set[a] = struct{}{}
		}
		lookup[spec.Name] = set
	}

	res := Resolution{Headers: make(map[string]string, len(specs))}
	for _, spec := range specs {
		aliases := lookup[spec.Name]
		found := false
		for _, h := range headers {
			if _, ok := aliases[h]; ok {
				res.Headers[spec.Name] = h
				found = true
				break
			}
		}
		if !found && spec.Required {
			res.missing = append(res.missing, spec.Name)
		}
	}

	return res
}

// AliasFile is the on-disk format of additional header aliases:
//
//	knowledge_points:
//	  Name: ["知識點名稱"]
//	prerequisites:
//	  Target: ["目標"]
type AliasFile struct {
	KnowledgePoints map[string][]string `yaml:"knowledge_points"`
	Prerequisites   map[string][]string `yaml:"prerequisites"`
}

// FieldSet holds the alias tables used by a Converter.
type FieldSet struct {
	KnowledgePoints []FieldSpec
	Prerequisites   []FieldSpec
}

// DefaultFieldSet returns copies of the built-in alias tables.
func DefaultFieldSet() FieldSet {
	return FieldSet{
		KnowledgePoints: cloneSpecs(KnowledgePointFields),
		Prerequisites:   cloneSpecs(PrerequisiteFields),
	}
}

// LoadFieldSet reads an alias file and appends its aliases after the
// built-in ones. An empty path returns the defaults.
func LoadFieldSet(path string) (FieldSet, error) {
	fs := DefaultFieldSet()
	if path == "" {
		return fs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("read alias file: %w", err)
	}

	var af AliasFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return fs, fmt.Errorf("parse alias file %s: %w", path, err)
	}

	if err := fs.Extend(af); err != nil {
		return fs, fmt.Errorf("alias file %s: %w", path, err)
	}
	return fs, nil
}

// Extend appends the aliases of af to the matching canonical fields.
// Unknown canonical names are rejected.
func (fs *FieldSet) Extend(af AliasFile) error {
	if err := extendSpecs(fs.KnowledgePoints, af.KnowledgePoints); err != nil {
		return fmt.Errorf("knowledge_points: %w", err)
	}
	if err := extendSpecs(fs.Prerequisites, af.Prerequisites); err != nil {
		return fmt.Errorf("prerequisites: %w", err)
	}
	return nil
}

func extendSpecs(specs []FieldSpec, extra map[string][]string) error {
	// Sorted so that error messages are stable.
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		i := slices.IndexFunc(specs, func(s FieldSpec) bool { return s.Name == name })
		if i < 0 {
			return fmt.Errorf("unknown field %q", name)
		}
		for _, a := range extra[name] {
			if a == "" || slices.Contains(specs[i].Aliases, a) {
				continue
			}
			specs[i].Aliases = append(specs[i].Aliases, a)
		}
	}
	return nil
}

func cloneSpecs(specs []FieldSpec) []FieldSpec {
	out := make([]FieldSpec, len(specs))
	for i, s := range specs {
		out[i] = s
		out[i].Aliases = slices.Clone(s.Aliases)
	}
	return out
}
