package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

type ProcessSheetRepository struct {
	conn
}

var _ ports.ProcessSheetRepository = (*ProcessSheetRepository)(nil)

func NewProcessSheetRepository(db *gorm.DB) *ProcessSheetRepository {
	return &ProcessSheetRepository{conn{db: db}}
}

func (r *ProcessSheetRepository) CreateProcessSheet(ctx context.Context, p quality.ProcessSheet) (quality.ProcessSheet, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ProcessSheet{}, err
	}

	row := processSheetRow(p)
	if err := db.Create(&row).Error; err != nil {
		return quality.ProcessSheet{}, errs.Wrap(err, "insert process sheet")
	}
	return mapProcessSheet(row), nil
}

func (r *ProcessSheetRepository) GetProcessSheet(ctx context.Context, id uint64) (quality.ProcessSheet, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ProcessSheet{}, err
	}

	var row model.ProcessSheet
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.ProcessSheet{}, notFoundOr(err, "process sheet %d", id)
	}
	return mapProcessSheet(row), nil
}

func (r *ProcessSheetRepository) ListProcessSheets(ctx context.Context, filter ports.ProcessSheetFilter) ([]quality.ProcessSheet, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ProcessSheet{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Assignee != "" {
		query = query.Where("assignee = ?", filter.Assignee)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.ChecklistID != nil {
		query = query.Where("checklist_id = ?", *filter.ChecklistID)
	}
	query = searchAny(query, filter.Search, "name", "project_name", "notes", "assignee", "lot_number", "inspector")

	var rows []model.ProcessSheet
	if err := query.Order("updated_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query process sheets")
	}

	items := make([]quality.ProcessSheet, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProcessSheet(row))
	}
	return items, nil
}

func (r *ProcessSheetRepository) UpdateProcessSheet(ctx context.Context, p quality.ProcessSheet) (quality.ProcessSheet, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ProcessSheet{}, err
	}

	row := processSheetRow(p)
	result := db.Model(&model.ProcessSheet{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":          row.Name,
			"project_name":  row.ProjectName,
			"lot_number":    row.LotNumber,
			"inspector":     row.Inspector,
			"status":        row.Status,
			"priority":      row.Priority,
			"assignee":      row.Assignee,
			"planned_start": row.PlannedStart,
			"planned_end":   row.PlannedEnd,
			"checklist_id":  row.ChecklistID,
			"notes":         row.Notes,
			"progress":      row.Progress,
		})
	if result.Error != nil {
		return quality.ProcessSheet{}, errs.Wrap(result.Error, "update process sheet")
	}
	if result.RowsAffected == 0 {
		return quality.ProcessSheet{}, errs.NotFoundf("process sheet %d", p.ID)
	}
	return r.GetProcessSheet(ctx, p.ID)
}

func (r *ProcessSheetRepository) DeleteProcessSheet(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		executionIDs := db.Model(&model.Execution{}).Select("id").Where("process_sheet_id = ?", id)
		if err := deleteExecutionsWhere(db, "id IN (?)", executionIDs); err != nil {
			return err
		}

		result := db.Where("id = ?", id).Delete(&model.ProcessSheet{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete process sheet")
		}
		if result.RowsAffected == 0 {
			return errs.NotFoundf("process sheet %d", id)
		}
		return nil
	})
}

func processSheetRow(p quality.ProcessSheet) model.ProcessSheet {
	return model.ProcessSheet{
		ID:           p.ID,
		Name:         p.Name,
		ProjectName:  p.ProjectName,
		LotNumber:    p.LotNumber,
		Inspector:    p.Inspector,
		Status:       string(p.Status),
		Priority:     p.Priority,
		Assignee:     p.Assignee,
		PlannedStart: toDate(p.PlannedStart),
		PlannedEnd:   toDate(p.PlannedEnd),
		ChecklistID:  p.ChecklistID,
		Notes:        p.Notes,
		Progress:     p.Progress,
	}
}

func mapProcessSheet(row model.ProcessSheet) quality.ProcessSheet {
	return quality.ProcessSheet{
		ID:           row.ID,
		Name:         row.Name,
		ProjectName:  row.ProjectName,
		LotNumber:    row.LotNumber,
		Inspector:    row.Inspector,
		Status:       quality.ProcessStatus(row.Status),
		Priority:     row.Priority,
		Assignee:     row.Assignee,
		PlannedStart: fromDate(row.PlannedStart),
		PlannedEnd:   fromDate(row.PlannedEnd),
		ChecklistID:  row.ChecklistID,
		Notes:        row.Notes,
		Progress:     row.Progress,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
