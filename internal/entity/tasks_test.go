package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/entity"
	"workspace-service/internal/model"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t)

	task, err := f.svc.CreateTask(entity.TaskInput{Title: "  Ship release  "}, f.editor, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Ship release", task.Title)
	assert.Equal(t, "backlog", task.Status)
	assert.Equal(t, f.editor.ID, task.CreatedByUserID)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionTaskCreated))
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTask(entity.TaskInput{Title: "   "}, f.editor, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.CreateTask(entity.TaskInput{Title: "x", Status: "bogus"}, f.editor, "")
	assert.True(t, apperr.IsValidation(err))

	// No audit rows for refused operations.
	assert.EqualValues(t, 0, f.auditCount(t, audit.ActionTaskCreated))
}

func TestCreateTaskViewerForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTask(entity.TaskInput{Title: "x"}, f.viewer, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.CreateTask(entity.TaskInput{Title: "x"}, nil, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateTaskOwnership(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.CreateTask(entity.TaskInput{Title: "mine"}, f.editor, "")
	require.NoError(t, err)

	// Another editor may not touch it.
	_, err = f.svc.UpdateTask(task.ID, entity.TaskInput{Title: "stolen"}, f.other, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// The admin may.
	updated, err := f.svc.UpdateTask(task.ID, entity.TaskInput{Title: "renamed", Status: "in_progress"}, f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "in_progress", updated.Status)

	entry := f.lastAudit(t, audit.ActionTaskUpdated)
	assert.Contains(t, string(entry.Metadata), `"from":"mine"`)
	assert.Contains(t, string(entry.Metadata), `"to":"renamed"`)
}

func TestUpdateTaskDueDate(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.CreateTask(entity.TaskInput{Title: "dated"}, f.editor, "")
	require.NoError(t, err)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	updated, err := f.svc.UpdateTask(task.ID, entity.TaskInput{Title: "dated", DueDate: &due}, f.editor, "")
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))
}

func TestDeleteTaskRemovesLinks(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.CreateTask(entity.TaskInput{Title: "linked"}, f.editor, "")
	require.NoError(t, err)

	page := model.Page{Title: "Notes", CreatedByUserID: f.editor.ID}
	require.NoError(t, f.db.Create(&page).Error)
	require.NoError(t, f.svc.LinkTaskPage(task.ID, page.ID, true, f.editor, ""))

	require.NoError(t, f.svc.DeleteTask(task.ID, f.editor, ""))

	_, err = f.svc.GetTask(task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var links int64
	require.NoError(t, f.db.Model(&model.TaskPageLink{}).Where("task_id = ?", task.ID).Count(&links).Error)
	assert.EqualValues(t, 0, links)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionTaskDeleted))
}

func TestLinkTaskPageIdempotent(t *testing.T) {
	f := newFixture(t)
	task, err := f.svc.CreateTask(entity.TaskInput{Title: "t"}, f.editor, "")
	require.NoError(t, err)
	page := model.Page{Title: "p", CreatedByUserID: f.editor.ID}
	require.NoError(t, f.db.Create(&page).Error)

	require.NoError(t, f.svc.LinkTaskPage(task.ID, page.ID, true, f.editor, ""))
	require.NoError(t, f.svc.LinkTaskPage(task.ID, page.ID, true, f.editor, ""))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionTaskPageLinked))

	ids, err := f.svc.LinkedPageIDs(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{page.ID}, ids)

	require.NoError(t, f.svc.LinkTaskPage(task.ID, page.ID, false, f.editor, ""))
	require.NoError(t, f.svc.LinkTaskPage(task.ID, page.ID, false, f.editor, ""))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionTaskPageUnlinked))
}

func TestListTasksFilters(t *testing.T) {
	f := newFixture(t)

	project, err := f.svc.CreateProject(entity.ProjectInput{Name: "Apollo"}, f.editor, "")
	require.NoError(t, err)

	_, err = f.svc.CreateTask(entity.TaskInput{Title: "write docs", ProjectID: &project.ID}, f.editor, "")
	require.NoError(t, err)
	_, err = f.svc.CreateTask(entity.TaskInput{Title: "fix bug", Status: "in_progress"}, f.editor, "")
	require.NoError(t, err)
	_, err = f.svc.CreateTask(entity.TaskInput{Title: "old thing", Status: "archived"}, f.editor, "")
	require.NoError(t, err)

	// Archived rows are hidden unless asked for.
	tasks, err := f.svc.ListTasks(entity.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = f.svc.ListTasks(entity.ListQuery{IncludeArchived: "1"})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	// Status filter.
	tasks, err = f.svc.ListTasks(entity.ListQuery{Status: "in_progress"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "fix bug", tasks[0].Title)

	// The text filter matches the parent project name too.
	tasks, err = f.svc.ListTasks(entity.ListQuery{Q: "apollo"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "write docs", tasks[0].Title)

	// Unparented tasks still list.
	tasks, err = f.svc.ListTasks(entity.ListQuery{Q: "fix"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestListTasksSorting(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"bravo", "alpha", "charlie"} {
		_, err := f.svc.CreateTask(entity.TaskInput{Title: title}, f.editor, "")
		require.NoError(t, err)
	}

	tasks, err := f.svc.ListTasks(entity.ListQuery{Sort: "title", Dir: "asc"})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "alpha", tasks[0].Title)
	assert.Equal(t, "charlie", tasks[2].Title)

	// Unknown sort keys and directions fall back instead of erroring.
	_, err = f.svc.ListTasks(entity.ListQuery{Sort: "evil; DROP TABLE task", Dir: "sideways"})
	assert.NoError(t, err)
}
