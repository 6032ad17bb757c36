package handler

import (
	"fmt"
	"path/filepath"
	"strings"
)

const scriptTemplate = `// 完整的Neo4j Cypher腳本
// 由CSV轉換工具自動生成
// 檔案: %s + %s

// 清除現有資料 (可選)
// MATCH (n) DETACH DELETE n;

%s

%s

// 查詢範例
// MATCH (n:KnowledgePoint) RETURN n LIMIT 10;
// MATCH (a:KnowledgePoint)-[r:Prerequisite]->(b:KnowledgePoint) RETURN a, r, b LIMIT 10;
// MATCH (n:KnowledgePoint {subject: 'math'}) RETURN n;
// MATCH (n:KnowledgePoint {isRoot: true}) RETURN n;
`

// CompositeScript stitches a node script and a relationship script into one
// runnable file, naming both sources in its header.
func CompositeScript(knowledgeName, prerequisiteName, nodes, relationships string) string {
	return fmt.Sprintf(scriptTemplate, knowledgeName, prerequisiteName, nodes, relationships)
}

// OutputNames are the file names written for one pair.
type OutputNames struct {
	Nodes         string
	Relationships string
	Complete      string
}

// NamesFor derives output file names from the input file stems.
func NamesFor(knowledgePath, prerequisitePath string) OutputNames {
	k := stem(knowledgePath)
	p := stem(prerequisitePath)
	return OutputNames{
		Nodes:         k + "_nodes.cypher",
		Relationships: p + "_relationships.cypher",
		Complete:      k + "_" + p + "_complete.cypher",
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
