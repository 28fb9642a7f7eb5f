package entity

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

var taskSortColumns = map[string]string{
	"title":      "task.title",
	"status":     "task.status",
	"updated_at": "task.updated_at",
	"due_date":   "task.due_date",
}

// TaskInput carries task fields for create and update.
type TaskInput struct {
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date"`
	ProjectID *uint      `json:"project_id"`
	// Source annotates where the create came from (e.g. a project
	// quick-add form); it only shows up in audit metadata.
	Source string `json:"-"`
}

// ListTasks returns tasks matching q, ordered per its sort key. The text
// filter also matches the parent project name through an outer join so
// unparented tasks still appear.
func (s *Service) ListTasks(q ListQuery) ([]model.Task, error) {
	tx := s.ws.Model(&model.Task{}).
		Select("task.*").
		Joins("LEFT JOIN project ON project.id = task.project_id")

	if term := strings.TrimSpace(q.Q); term != "" {
		like := likePattern(term)
		tx = tx.Where("LOWER(task.title) LIKE ? OR LOWER(project.name) LIKE ?", like, like)
	}
	if q.Status != "" {
		tx = tx.Where("task.status = ?", q.Status)
	}
	if q.ProjectID != "" {
		if id, err := strconv.ParseUint(q.ProjectID, 10, 64); err == nil {
			tx = tx.Where("task.project_id = ?", id)
		}
	}
	if !q.includeArchived() {
		tx = tx.Where("task.status <> ?", model.StatusArchived)
	}

	tx = tx.Order(orderClause(taskSortColumns, q.Sort, q.Dir, "task.updated_at"))

	var tasks []model.Task
	if err := tx.Preload("Project").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask loads one task with its project.
func (s *Service) GetTask(id uint) (*model.Task, error) {
	var task model.Task
	if err := s.ws.Preload("Project").First(&task, id).Error; err != nil {
		return nil, notFoundOr(err, "load task")
	}
	return &task, nil
}

func validateTaskInput(in *TaskInput, defaultStatus string) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validationf("task title is required")
	}
	if in.Status == "" {
		in.Status = defaultStatus
	}
	if !model.ValidTaskStatus(in.Status) {
		return apperr.Validationf("invalid task status")
	}
	return nil
}

// CreateTask creates a task for actor and logs the creation.
func (s *Service) CreateTask(in TaskInput, actor *model.User, ip string) (*model.Task, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	if err := validateTaskInput(&in, "backlog"); err != nil {
		return nil, err
	}

	task := model.Task{
		Title:           in.Title,
		Status:          in.Status,
		DueDate:         in.DueDate,
		ProjectID:       in.ProjectID,
		CreatedByUserID: actor.ID,
	}
	err := s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Create(&task).Error; err != nil {
			return err
		}
		var meta map[string]any
		if in.Source != "" {
			meta = map[string]any{"source": in.Source}
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionTaskCreated,
			EntityType: "Task",
			EntityID:   audit.EntityID(task.ID),
			Metadata:   meta,
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies in to the task after the ownership check, logging a
// field-level diff.
func (s *Service) UpdateTask(id uint, in TaskInput, actor *model.User, ip string) (*model.Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireEdit(actor, task); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = task.Status
	}
	if err := validateTaskInput(&in, task.Status); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Title != task.Title {
		changes["title"] = map[string]any{"from": task.Title, "to": in.Title}
	}
	if in.Status != task.Status {
		changes["status"] = map[string]any{"from": task.Status, "to": in.Status}
	}
	if !uintPtrEqual(in.ProjectID, task.ProjectID) {
		changes["project_id"] = map[string]any{"from": task.ProjectID, "to": in.ProjectID}
	}
	if !timePtrEqual(in.DueDate, task.DueDate) {
		changes["due_date"] = map[string]any{"from": task.DueDate, "to": in.DueDate}
	}

	err = s.inTransaction(func(ws, core *gorm.DB) error {
		updates := map[string]any{
			"title":      in.Title,
			"status":     in.Status,
			"project_id": in.ProjectID,
			"due_date":   in.DueDate,
		}
		if err := ws.Model(task).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionTaskUpdated,
			EntityType: "Task",
			EntityID:   audit.EntityID(task.ID),
			Metadata:   changes,
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task and its page links.
func (s *Service) DeleteTask(id uint, actor *model.User, ip string) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if err := authz.RequireEdit(actor, task); err != nil {
		return err
	}

	return s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Where("task_id = ?", task.ID).Delete(&model.TaskPageLink{}).Error; err != nil {
			return err
		}
		if err := ws.Delete(&model.Task{}, task.ID).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionTaskDeleted,
			EntityType: "Task",
			EntityID:   audit.EntityID(task.ID),
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}

// LinkTaskPage links or unlinks a page from a task. Both directions are
// idempotent: re-linking an existing pair or unlinking a missing one is a
// silent no-op with no audit entry.
func (s *Service) LinkTaskPage(taskID, pageID uint, link bool, actor *model.User, ip string) error {
	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if err := authz.RequireEdit(actor, task); err != nil {
		return err
	}
	var page model.Page
	if err := s.ws.First(&page, pageID).Error; err != nil {
		return notFoundOr(err, "load page")
	}

	var existing model.TaskPageLink
	err = s.ws.Where("task_id = ? AND page_id = ?", task.ID, page.ID).First(&existing).Error
	exists := err == nil

	if link == exists {
		return nil
	}

	return s.inTransaction(func(ws, core *gorm.DB) error {
		action := audit.ActionTaskPageLinked
		if link {
			if err := ws.Create(&model.TaskPageLink{TaskID: task.ID, PageID: page.ID}).Error; err != nil {
				return err
			}
		} else {
			action = audit.ActionTaskPageUnlinked
			if err := ws.Where("task_id = ? AND page_id = ?", task.ID, page.ID).Delete(&model.TaskPageLink{}).Error; err != nil {
				return err
			}
		}
		return audit.Record(core, audit.Entry{
			Action:     action,
			EntityType: "Task",
			EntityID:   audit.EntityID(task.ID),
			Metadata:   map[string]any{"page_id": page.ID},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}

// LinkedPageIDs returns the ids of pages linked to a task.
func (s *Service) LinkedPageIDs(taskID uint) ([]uint, error) {
	var ids []uint
	err := s.ws.Model(&model.TaskPageLink{}).Where("task_id = ?", taskID).Pluck("page_id", &ids).Error
	return ids, err
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
