package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestFindPairs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"knowledge_points_EMA.csv", "Prerequisite_EMA.csv",
		"knowledge_points_ALG.xlsx", "Prerequisite_ALG.csv", "Prerequisite_ALG.xlsx",
		"knowledge_points_LONE.csv",
		"knowledge_points_.csv",
		"knowledge_points_TXT.txt", "Prerequisite_TXT.txt",
		"notes.csv",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "knowledge_points_DIR.csv"), 0o755))

	pairs, err := FindPairs(dir)
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, Pair{
		Tag:          "ALG",
		Knowledge:    filepath.Join(dir, "knowledge_points_ALG.xlsx"),
		Prerequisite: filepath.Join(dir, "Prerequisite_ALG.csv"),
	}, pairs[0])
	assert.Equal(t, "EMA", pairs[1].Tag)
	assert.Equal(t, filepath.Join(dir, "Prerequisite_EMA.csv"), pairs[1].Prerequisite)
}

func TestFindPairs_MissingDir(t *testing.T) {
	_, err := FindPairs(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolvePairs(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		_, err := ResolvePairs(t.TempDir())
		assert.ErrorIs(t, err, ErrNoPairs)
	})

	t.Run("discovered", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "knowledge_points_Q.csv", "Prerequisite_Q.csv")
		pairs, err := ResolvePairs(dir)
		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "Q", pairs[0].Tag)
	})
}

func TestDefaultPair(t *testing.T) {
	p := DefaultPair("in")
	assert.Equal(t, filepath.Join("in", "knowledge_points_EMA.csv"), p.Knowledge)
	assert.Equal(t, filepath.Join("in", "Prerequisite_EMA.csv"), p.Prerequisite)
}

func TestNamesFor(t *testing.T) {
	n := NamesFor("data/knowledge_points_EMA.csv", "/tmp/Prerequisite_EMA.xlsx")
	assert.Equal(t, "knowledge_points_EMA_nodes.cypher", n.Nodes)
	assert.Equal(t, "Prerequisite_EMA_relationships.cypher", n.Relationships)
	assert.Equal(t, "knowledge_points_EMA_Prerequisite_EMA_complete.cypher", n.Complete)
}

func TestCompositeScript(t *testing.T) {
	got := CompositeScript("k.csv", "p.csv", "NODES", "RELS")
	want := "// 完整的Neo4j Cypher腳本\n" +
		"// 由CSV轉換工具自動生成\n" +
		"// 檔案: k.csv + p.csv\n" +
		"\n" +
		"// 清除現有資料 (可選)\n" +
		"// MATCH (n) DETACH DELETE n;\n" +
		"\n" +
		"NODES\n" +
		"\n" +
		"RELS\n" +
		"\n" +
		"// 查詢範例\n" +
		"// MATCH (n:KnowledgePoint) RETURN n LIMIT 10;\n" +
		"// MATCH (a:KnowledgePoint)-[r:Prerequisite]->(b:KnowledgePoint) RETURN a, r, b LIMIT 10;\n" +
		"// MATCH (n:KnowledgePoint {subject: 'math'}) RETURN n;\n" +
		"// MATCH (n:KnowledgePoint {isRoot: true}) RETURN n;\n"
	assert.Equal(t, want, got)
}
