package core

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultLabel is the label a knowledge point gets when its Label cell is blank.
const DefaultLabel = "KnowledgePoint"

// DefaultRelationshipType is the type a prerequisite gets when its Types cell
// is blank.
const DefaultRelationshipType = "Prerequisite"

// Sentinel cell values.
const (
	sentinelNotApplicable = "X" // hierarchy columns, case-insensitive
	sentinelNone          = "無" // prerequisite entries
)

// KnowledgePointRecord is one node derived from a data row.
// Optional string fields are empty when absent; IsRoot is nil when unknown.
type KnowledgePointRecord struct {
	Name            string
	Label           string
	EducationSystem string
	Subject         string
	IsRoot          *bool
	KnowledgeID     string
	Topic           string
	Unit            string
	Concept         string

	Row int // 1-based data-row number
}

// Properties returns the node's property literals in output order:
// name, educationSystem, subject, then the optional properties that are set.
// Required properties are always present, even when empty.
func (r KnowledgePointRecord) Properties(escape EscapeFunc) *orderedmap.OrderedMap[string, string] {
	props := orderedmap.New[string, string]()
	props.Set("name", escape(r.Name))
	props.Set("educationSystem", escape(r.EducationSystem))
	props.Set("subject", escape(r.Subject))

	if r.IsRoot != nil {
		props.Set("isRoot", strconv.FormatBool(*r.IsRoot))
	}
	if r.KnowledgeID != "" {
		props.Set("knowledgeId", escape(r.KnowledgeID))
	}
	if r.Topic != "" {
		props.Set("topic", escape(r.Topic))
	}
	if r.Unit != "" {
		props.Set("unit", escape(r.Unit))
	}
	if r.Concept != "" {
		props.Set("concept", escape(r.Concept))
	}

	return props
}

// PrerequisiteRecord is one relationship candidate. A single source row
// yields one record per prerequisite entry in its cell.
type PrerequisiteRecord struct {
	Prerequisite string
	Target       string
	Type         string

	Row int // 1-based data-row number
}

// Properties returns the relationship's literals in output order.
func (r PrerequisiteRecord) Properties(escape EscapeFunc) *orderedmap.OrderedMap[string, string] {
	props := orderedmap.New[string, string]()
	props.Set("prerequisite", escape(r.Prerequisite))
	props.Set("target", escape(r.Target))
	props.Set("type", escape(r.Type))
	return props
}

// Result is the outcome of one conversion call.
type Result struct {
	Kind     Kind
	Path     string
	Cypher   string
	Records  int    // nodes or relationship candidates emitted
	Encoding string // encoding the input was decoded with
	Lossy    bool   // undecodable bytes were dropped while reading
}
