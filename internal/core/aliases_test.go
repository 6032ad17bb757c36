package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFields(t *testing.T) {
	t.Run("english headers", func(t *testing.T) {
		res := ResolveFields([]string{"Label", "Name", "Education System", "Subject"}, KnowledgePointFields)
		require.NoError(t, res.Err())
		h, ok := res.Header(FieldEducationSystem)
		assert.True(t, ok)
		assert.Equal(t, "Education System", h)

		_, ok = res.Header(FieldTopic)
		assert.False(t, ok, "absent optional field is not resolved")
	})

	t.Run("bilingual and legacy headers", func(t *testing.T) {
		headers := []string{"標籤(Label)", "名稱", "學制(Education System)", "學科", "第一層知識", "次主題(Unit)", "概念"}
		res := ResolveFields(headers, KnowledgePointFields)
		require.NoError(t, res.Err())
		assert.Equal(t, "第一層知識", res.Headers[FieldTopic])
		assert.Equal(t, "次主題(Unit)", res.Headers[FieldUnit])
		assert.Equal(t, "概念", res.Headers[FieldConcept])
	})

	t.Run("first header in file order wins", func(t *testing.T) {
		res := ResolveFields([]string{"名稱", "Name"}, KnowledgePointFields)
		assert.Equal(t, "名稱", res.Headers[FieldName])

		res = ResolveFields([]string{"Name", "Target"}, PrerequisiteFields)
		assert.Equal(t, "Name", res.Headers[FieldTarget])
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		res := ResolveFields([]string{"label", "Name", "Education System", "subject"}, KnowledgePointFields)
		assert.Equal(t, []string{FieldLabel, FieldSubject}, res.Missing())
		assert.ErrorIs(t, res.Err(), ErrMissingFields)
	})

	t.Run("missing in declaration order", func(t *testing.T) {
		res := ResolveFields([]string{"Target"}, PrerequisiteFields)
		assert.Equal(t, []string{FieldTypes, FieldPrerequisite}, res.Missing())

		var mfe *MissingFieldsError
		require.ErrorAs(t, res.Err(), &mfe)
		assert.Contains(t, mfe.Error(), "Types, Prerequisite")
	})

	t.Run("no headers", func(t *testing.T) {
		res := ResolveFields(nil, KnowledgePointFields)
		assert.Len(t, res.Missing(), 4)
	})
}

func TestLoadFieldSet(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		fs, err := LoadFieldSet("")
		require.NoError(t, err)
		assert.Equal(t, KnowledgePointFields, fs.KnowledgePoints)
	})

	t.Run("extensions append after built-ins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
knowledge_points:
  Name: ["知識點名稱", "Name"]
prerequisites:
  Target: ["目標"]
`), 0o644))

		fs, err := LoadFieldSet(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"Name", "名稱(Name)", "名稱", "知識點名稱"}, fs.KnowledgePoints[1].Aliases)
		assert.Equal(t, "目標", fs.Prerequisites[2].Aliases[len(fs.Prerequisites[2].Aliases)-1])

		res := ResolveFields([]string{"標籤", "知識點名稱", "學制", "學科"}, fs.KnowledgePoints)
		assert.NoError(t, res.Err())

		// Package tables are untouched.
		assert.Len(t, KnowledgePointFields[1].Aliases, 3)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("prerequisites:\n  Source: [\"來源\"]\n"), 0o644))

		_, err := LoadFieldSet(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown field "Source"`)
		assert.Equal(t, "CFG001", MapError(err).Code)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("knowledge_points: [oops"), 0o644))

		_, err := LoadFieldSet(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFieldSet(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
