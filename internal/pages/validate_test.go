package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/apperr"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Weekly notes", NormalizeTitle("  Weekly notes  "))
	assert.Equal(t, UntitledPlaceholder, NormalizeTitle(""))
	assert.Equal(t, UntitledPlaceholder, NormalizeTitle("   "))
}

func TestNormalizeContentShapes(t *testing.T) {
	t.Run("text keeps only the text field", func(t *testing.T) {
		got, err := normalizeContent("text", map[string]any{"text": "hi", "junk": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"text": "hi"}, got)
	})

	t.Run("missing text defaults empty", func(t *testing.T) {
		got, err := normalizeContent("heading", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"text": ""}, got)
	})

	t.Run("bulleted list items must be strings", func(t *testing.T) {
		_, err := normalizeContent("bulleted_list", map[string]any{"items": []any{"ok", 7}})
		assert.True(t, apperr.IsValidation(err))

		got, err := normalizeContent("bulleted_list", map[string]any{"items": []any{"a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"items": []any{"a", "b"}}, got)
	})

	t.Run("checkbox items get a checked default", func(t *testing.T) {
		got, err := normalizeContent("checkbox_list", map[string]any{
			"items": []any{map[string]any{"text": "buy milk"}},
		})
		require.NoError(t, err)
		items := got["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, map[string]any{"text": "buy milk", "checked": false}, items[0])
	})

	t.Run("checkbox checked must be boolean", func(t *testing.T) {
		_, err := normalizeContent("checkbox_list", map[string]any{
			"items": []any{map[string]any{"text": "x", "checked": "yes"}},
		})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("divider discards content", func(t *testing.T) {
		got, err := normalizeContent("divider", map[string]any{"text": "ignored"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, got)
	})

	t.Run("callout defaults to note style", func(t *testing.T) {
		got, err := normalizeContent("callout", map[string]any{"text": "heads up"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"style": "note", "text": "heads up"}, got)
	})

	t.Run("callout rejects unknown style", func(t *testing.T) {
		_, err := normalizeContent("callout", map[string]any{"style": "loud"})
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestValidateBlocksFailsWholeList(t *testing.T) {
	_, err := validateBlocks([]BlockInput{
		{Type: "text", Content: map[string]any{"text": "fine"}},
		{Type: "gif"},
	})
	assert.True(t, apperr.IsValidation(err))

	normalized, err := validateBlocks([]BlockInput{
		{Type: "text", Content: map[string]any{"text": "fine"}},
		{Type: "divider"},
	})
	require.NoError(t, err)
	assert.Len(t, normalized, 2)
}
