package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/model"
)

func (f *fixture) pageWithBlocks(t *testing.T, texts ...string) *model.Page {
	t.Helper()
	page, err := f.svc.Create("doc", f.editor, "")
	require.NoError(t, err)

	blocks := make([]BlockInput, 0, len(texts))
	for _, text := range texts {
		blocks = append(blocks, BlockInput{Type: "text", Content: map[string]any{"text": text}})
	}
	require.NoError(t, f.svc.Save(page.ID, "doc", blocks, f.editor, ""))
	return page
}

func (f *fixture) loadBlocks(t *testing.T, pageID uint) []model.Block {
	t.Helper()
	var blocks []model.Block
	require.NoError(t, f.db.Where("page_id = ?", pageID).Order("position ASC").Find(&blocks).Error)
	return blocks
}

func TestSaveCreatesBlocksWithDensePositions(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "one", "two", "three")

	blocks := f.loadBlocks(t, page.ID)
	require.Len(t, blocks, 3)
	for i, block := range blocks {
		assert.Equal(t, i+1, block.Position)
	}
	assert.EqualValues(t, 3, f.auditCount(t, audit.ActionBlockAdded))

	var reloaded model.Page
	require.NoError(t, f.db.First(&reloaded, page.ID).Error)
	assert.NotNil(t, reloaded.LastEditedAt)
}

func TestSaveIdenticalResubmissionIsQuiet(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "one", "two")
	stored := f.loadBlocks(t, page.ID)

	resubmit := make([]BlockInput, 0, len(stored))
	for i := range stored {
		resubmit = append(resubmit, BlockInput{
			ID:      &stored[i].ID,
			Type:    stored[i].Type,
			Content: map[string]any{"text": []string{"one", "two"}[i]},
		})
	}

	before := f.auditCount(t, audit.ActionBlockUpdated)
	require.NoError(t, f.svc.Save(page.ID, "doc", resubmit, f.editor, ""))

	assert.Equal(t, before, f.auditCount(t, audit.ActionBlockUpdated))
	assert.EqualValues(t, 0, f.auditCount(t, audit.ActionBlockReordered))
	assert.EqualValues(t, 0, f.auditCount(t, audit.ActionPageTitleUpdated))
	assert.EqualValues(t, 2, f.auditCount(t, audit.ActionBlockAdded))
}

func TestSaveUpdatesOnlyChangedBlocks(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "keep", "edit me")
	stored := f.loadBlocks(t, page.ID)

	require.NoError(t, f.svc.Save(page.ID, "doc", []BlockInput{
		{ID: &stored[0].ID, Type: "text", Content: map[string]any{"text": "keep"}},
		{ID: &stored[1].ID, Type: "text", Content: map[string]any{"text": "edited"}},
	}, f.editor, ""))

	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionBlockUpdated))
	blocks := f.loadBlocks(t, page.ID)
	assert.Contains(t, string(blocks[1].Content), "edited")
	assert.NotNil(t, blocks[1].UpdatedByUserID)
	assert.Nil(t, blocks[0].UpdatedByUserID)
}

func TestSaveDeleteTriggersReorder(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "a", "b", "c")
	stored := f.loadBlocks(t, page.ID)

	// Drop the middle block; survivors keep their relative order but the
	// original sequence changed, so one reorder entry is logged and
	// positions close the gap.
	require.NoError(t, f.svc.Save(page.ID, "doc", []BlockInput{
		{ID: &stored[0].ID, Type: "text", Content: map[string]any{"text": "a"}},
		{ID: &stored[2].ID, Type: "text", Content: map[string]any{"text": "c"}},
	}, f.editor, ""))

	blocks := f.loadBlocks(t, page.ID)
	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].Position)
	assert.Equal(t, 2, blocks[1].Position)

	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionBlockDeleted))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionBlockReordered))
}

func TestSaveExplicitReorder(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "a", "b")
	stored := f.loadBlocks(t, page.ID)

	require.NoError(t, f.svc.Save(page.ID, "doc", []BlockInput{
		{ID: &stored[1].ID, Type: "text", Content: map[string]any{"text": "b"}},
		{ID: &stored[0].ID, Type: "text", Content: map[string]any{"text": "a"}},
	}, f.editor, ""))

	blocks := f.loadBlocks(t, page.ID)
	require.Len(t, blocks, 2)
	assert.Equal(t, stored[1].ID, blocks[0].ID)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionBlockReordered))
	// Position moves alone are block updates too.
	assert.EqualValues(t, 2, f.auditCount(t, audit.ActionBlockUpdated))
}

func TestSaveTitleChange(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "a")

	require.NoError(t, f.svc.Save(page.ID, "  Renamed  ", nil, f.editor, ""))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageTitleUpdated))

	var reloaded model.Page
	require.NoError(t, f.db.First(&reloaded, page.ID).Error)
	assert.Equal(t, "Renamed", reloaded.Title)

	// Empty title falls back to the placeholder.
	require.NoError(t, f.svc.Save(page.ID, "   ", nil, f.editor, ""))
	require.NoError(t, f.db.First(&reloaded, page.ID).Error)
	assert.Equal(t, UntitledPlaceholder, reloaded.Title)
}

func TestSaveValidationAbortsBeforeMutation(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "survivor")

	err := f.svc.Save(page.ID, "doc", []BlockInput{
		{Type: "text", Content: map[string]any{"text": "new"}},
		{Type: "hologram"},
	}, f.editor, "")
	assert.True(t, apperr.IsValidation(err))

	// Nothing was created or deleted.
	blocks := f.loadBlocks(t, page.ID)
	require.Len(t, blocks, 1)
	assert.Contains(t, string(blocks[0].Content), "survivor")
}

func TestSaveArchivedPageRefused(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "a")
	require.NoError(t, f.svc.Archive(page.ID, f.editor, ""))

	err := f.svc.Save(page.ID, "doc", nil, f.editor, "")
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, f.loadBlocks(t, page.ID), 1)
}

func TestSaveRoleGate(t *testing.T) {
	f := newFixture(t)
	page := f.pageWithBlocks(t, "a")

	err := f.svc.Save(page.ID, "doc", nil, f.viewer, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	err = f.svc.Save(page.ID, "doc", nil, nil, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	err = f.svc.Save(9999, "doc", nil, f.editor, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
