package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

type TaskRepository struct {
	conn
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{conn{db: db}}
}

func (r *TaskRepository) CreateTask(ctx context.Context, t quality.Task) (quality.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Task{}, err
	}

	row := taskRow(t)
	if err := db.Create(&row).Error; err != nil {
		return quality.Task{}, errs.Wrap(err, "insert task")
	}
	return mapTask(row), nil
}

func (r *TaskRepository) GetTask(ctx context.Context, id uint64) (quality.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Task{}, err
	}

	var row model.Task
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.Task{}, notFoundOr(err, "task %d", id)
	}
	return mapTask(row), nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]quality.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Task{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Assignee != "" {
		query = query.Where("assignee = ?", filter.Assignee)
	}
	query = searchAny(query, filter.Search, "title", "description", "assignee", "checklist_name")

	var rows []model.Task
	if err := query.Order("updated_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query tasks")
	}

	items := make([]quality.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTask(row))
	}
	return items, nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, t quality.Task) (quality.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Task{}, err
	}

	row := taskRow(t)
	result := db.Model(&model.Task{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"title":          row.Title,
			"description":    row.Description,
			"assignee":       row.Assignee,
			"due_date":       row.DueDate,
			"status":         row.Status,
			"priority":       row.Priority,
			"checklist_name": row.ChecklistName,
		})
	if result.Error != nil {
		return quality.Task{}, errs.Wrap(result.Error, "update task")
	}
	if result.RowsAffected == 0 {
		return quality.Task{}, errs.NotFoundf("task %d", t.ID)
	}
	return r.GetTask(ctx, t.ID)
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.Task{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete task")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("task %d", id)
	}
	return nil
}

func taskRow(t quality.Task) model.Task {
	return model.Task{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Assignee:      t.Assignee,
		DueDate:       toDate(t.DueDate),
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		ChecklistName: t.ChecklistName,
	}
}

func mapTask(row model.Task) quality.Task {
	return quality.Task{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Assignee:      row.Assignee,
		DueDate:       fromDate(row.DueDate),
		Status:        quality.TaskStatus(row.Status),
		Priority:      quality.TaskPriority(row.Priority),
		ChecklistName: row.ChecklistName,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
