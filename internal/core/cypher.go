package core

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node and relationship labels used in generated statements.
const (
	NodeLabel         = "KnowledgePoint"
	RelationshipLabel = "Prerequisite"
)

// mapLiteral renders props as a Cypher map literal, keeping insertion order.
// Values must already be Cypher literals.
func mapLiteral(props *orderedmap.OrderedMap[string, string]) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(pair.Key)
		b.WriteString(": ")
		b.WriteString(pair.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// script accumulates output lines; String joins them with "\n".
type script struct {
	lines []string
}

func (s *script) line(l ...string) {
	s.lines = append(s.lines, l...)
}

func (s *script) blank() {
	s.lines = append(s.lines, "")
}

// unwind appends a batched statement over elements bound to alias, followed
// by body and a blank line. Nothing is written when elements is empty.
func (s *script) unwind(elements []string, alias string, body ...string) {
	if len(elements) == 0 {
		return
	}
	s.line("UNWIND [", strings.Join(elements, ",\n"), "] AS "+alias)
	s.line(body...)
	s.blank()
}

func (s *script) String() string {
	return strings.Join(s.lines, "\n")
}

// renderKnowledgePoints produces the node script: a header comment, one
// batched CREATE over all records, and the three index statements.
func renderKnowledgePoints(records []KnowledgePointRecord, escape EscapeFunc) string {
	elements := make([]string, 0, len(records))
	for _, r := range records {
		elements = append(elements, mapLiteral(r.Properties(escape)))
	}

	var s script
	s.line("// 創建知識點節點")
	s.blank()
	s.unwind(elements, "nodeData", "CREATE (n:"+NodeLabel+") SET n = nodeData")

	s.line("// 建立索引以提升查詢效能")
	s.line("// 建立名稱索引")
	s.line(indexStatement("name"))
	s.blank()
	s.line("// 建立科目索引")
	s.line(indexStatement("subject"))
	s.blank()
	s.line("// 建立教育階段索引")
	s.line(indexStatement("educationSystem"))

	return s.String()
}

// renderPrerequisites produces the relationship script. Both endpoints are
// matched by name.
func renderPrerequisites(records []PrerequisiteRecord, escape EscapeFunc) string {
	elements := make([]string, 0, len(records))
	for _, r := range records {
		elements = append(elements, mapLiteral(r.Properties(escape)))
	}

	var s script
	s.line("// 創建先備關係")
	s.blank()
	s.unwind(elements, "relData",
		"MATCH (a:"+NodeLabel+" {name: relData.prerequisite})",
		"MATCH (b:"+NodeLabel+" {name: relData.target})",
		"CREATE (a)-[r:"+RelationshipLabel+"]->(b)",
	)

	return s.String()
}

func indexStatement(property string) string {
	return "CREATE INDEX FOR (n:" + NodeLabel + ") ON (n." + property + ")"
}
