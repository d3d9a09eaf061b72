package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

type ExecutionRepository struct {
	conn
}

var _ ports.ExecutionRepository = (*ExecutionRepository)(nil)

func NewExecutionRepository(db *gorm.DB) *ExecutionRepository {
	return &ExecutionRepository{conn{db: db}}
}

func (r *ExecutionRepository) CreateExecution(ctx context.Context, e quality.Execution) (quality.Execution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Execution{}, err
	}

	row := executionRow(e)
	row.Version = 1
	if err := db.Create(&row).Error; err != nil {
		return quality.Execution{}, errs.Wrap(err, "insert execution")
	}
	return mapExecution(row), nil
}

func (r *ExecutionRepository) GetExecution(ctx context.Context, id uint64) (quality.Execution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Execution{}, err
	}

	var row model.Execution
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.Execution{}, notFoundOr(err, "execution %d", id)
	}
	return mapExecution(row), nil
}

func (r *ExecutionRepository) ListExecutions(ctx context.Context, filter ports.ExecutionFilter) ([]quality.Execution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Execution{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Result != nil {
		query = query.Where("result = ?", *filter.Result)
	}
	if filter.ChecklistID != nil {
		query = query.Where("checklist_id = ?", *filter.ChecklistID)
	}
	if filter.ProcessSheetID != nil {
		query = query.Where("process_sheet_id = ?", *filter.ProcessSheetID)
	}
	if filter.ExecutorID != nil {
		query = query.Where("executor_id = ?", *filter.ExecutorID)
	}
	query = searchAny(query, filter.Search, "comment")

	if filter.OldestFirst {
		query = query.Order("id asc")
	} else {
		query = query.Order("updated_at desc").Order("id desc")
	}

	var rows []model.Execution
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query executions")
	}

	items := make([]quality.Execution, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapExecution(row))
	}
	return items, nil
}

func (r *ExecutionRepository) UpdateExecution(ctx context.Context, e quality.Execution, expectedVersion *int) (quality.Execution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Execution{}, err
	}

	row := executionRow(e)
	query := db.Model(&model.Execution{}).Where("id = ?", e.ID)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}
	result := query.Updates(map[string]any{
		"process_sheet_id": row.ProcessSheetID,
		"checklist_id":     row.ChecklistID,
		"status":           row.Status,
		"result":           row.Result,
		"started_at":       row.StartedAt,
		"finished_at":      row.FinishedAt,
		"comment":          row.Comment,
		"version":          gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return quality.Execution{}, errs.Wrap(result.Error, "update execution")
	}
	if result.RowsAffected == 0 {
		current, err := r.GetExecution(ctx, e.ID)
		if err != nil {
			return quality.Execution{}, err
		}
		if expectedVersion == nil {
			return current, nil
		}
		return quality.Execution{}, errs.Conflictf("execution %d version is %d, not %d", e.ID, current.Version, *expectedVersion)
	}
	return r.GetExecution(ctx, e.ID)
}

func (r *ExecutionRepository) DeleteExecution(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&model.Execution{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errs.Wrap(err, "count execution")
		}
		if count == 0 {
			return errs.NotFoundf("execution %d", id)
		}
		return deleteExecutionsWhere(db, "id = ?", id)
	})
}

func (r *ExecutionRepository) InsertResults(ctx context.Context, results []quality.ExecutionItemResult) ([]quality.ExecutionItemResult, error) {
	if len(results) == 0 {
		return []quality.ExecutionItemResult{}, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ExecutionItemResult, 0, len(results))
	for _, res := range results {
		rows = append(rows, model.ExecutionItemResult{
			ExecutionID:     res.ExecutionID,
			ChecklistItemID: res.ChecklistItemID,
			Status:          string(res.Status),
			Value:           res.Value,
			Note:            res.Note,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "insert execution item results")
	}

	out := make([]quality.ExecutionItemResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapItemResult(row))
	}
	return out, nil
}

func (r *ExecutionRepository) DeleteResults(ctx context.Context, executionID uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		return deleteResultsWhere(db, "execution_id = ?", executionID)
	})
}

func (r *ExecutionRepository) ListResults(ctx context.Context, filter ports.ItemResultFilter) ([]quality.ExecutionItemResult, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ExecutionItemResult{})
	if filter.ExecutionID != nil {
		query = query.Where("execution_id = ?", *filter.ExecutionID)
	}
	if filter.ChecklistItemID != nil {
		query = query.Where("checklist_item_id = ?", *filter.ChecklistItemID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []model.ExecutionItemResult
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query execution item results")
	}

	items := make([]quality.ExecutionItemResult, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapItemResult(row))
	}
	return items, nil
}

func (r *ExecutionRepository) GetResult(ctx context.Context, id uint64) (quality.ExecutionItemResult, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ExecutionItemResult{}, err
	}

	var row model.ExecutionItemResult
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.ExecutionItemResult{}, notFoundOr(err, "execution item result %d", id)
	}
	return mapItemResult(row), nil
}

func (r *ExecutionRepository) CountCompleted(ctx context.Context, executionIDs []uint64, memberOnly bool) (map[uint64]int, error) {
	out := make(map[uint64]int, len(executionIDs))
	if len(executionIDs) == 0 {
		return out, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ExecutionItemResult{}).
		Select("execution_item_results.execution_id AS execution_id, COUNT(*) AS completed").
		Where("execution_item_results.execution_id IN ?", executionIDs).
		Where("execution_item_results.status <> ?", string(quality.ItemSkip))
	if memberOnly {
		query = query.
			Joins("JOIN executions ON executions.id = execution_item_results.execution_id").
			Joins("JOIN checklist_items ON checklist_items.id = execution_item_results.checklist_item_id").
			Where("checklist_items.checklist_id = executions.checklist_id")
	}

	type countRow struct {
		ExecutionID uint64
		Completed   int
	}
	var rows []countRow
	if err := query.Group("execution_item_results.execution_id").Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "count completed results")
	}

	for _, id := range executionIDs {
		out[id] = 0
	}
	for _, row := range rows {
		out[row.ExecutionID] = row.Completed
	}
	return out, nil
}

func (r *ExecutionRepository) CreatePhoto(ctx context.Context, p quality.ExecutionPhoto) (quality.ExecutionPhoto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ExecutionPhoto{}, err
	}

	row := model.ExecutionPhoto{
		ItemResultID: p.ItemResultID,
		Image:        p.Image,
		Annotation:   p.Annotation,
	}
	if err := db.Create(&row).Error; err != nil {
		return quality.ExecutionPhoto{}, errs.Wrap(err, "insert execution photo")
	}
	return mapPhoto(row), nil
}

func (r *ExecutionRepository) GetPhoto(ctx context.Context, id uint64) (quality.ExecutionPhoto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ExecutionPhoto{}, err
	}

	var row model.ExecutionPhoto
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.ExecutionPhoto{}, notFoundOr(err, "execution photo %d", id)
	}
	return mapPhoto(row), nil
}

func (r *ExecutionRepository) ListPhotos(ctx context.Context, itemResultID *uint64) ([]quality.ExecutionPhoto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ExecutionPhoto{})
	if itemResultID != nil {
		query = query.Where("item_result_id = ?", *itemResultID)
	}

	var rows []model.ExecutionPhoto
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query execution photos")
	}

	items := make([]quality.ExecutionPhoto, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPhoto(row))
	}
	return items, nil
}

func (r *ExecutionRepository) PhotosByResult(ctx context.Context, itemResultIDs []uint64) (map[uint64][]quality.ExecutionPhoto, error) {
	out := make(map[uint64][]quality.ExecutionPhoto, len(itemResultIDs))
	if len(itemResultIDs) == 0 {
		return out, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ExecutionPhoto
	if err := db.Where("item_result_id IN ?", itemResultIDs).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query execution photos")
	}
	for _, row := range rows {
		out[row.ItemResultID] = append(out[row.ItemResultID], mapPhoto(row))
	}
	return out, nil
}

func (r *ExecutionRepository) UpdatePhoto(ctx context.Context, p quality.ExecutionPhoto) (quality.ExecutionPhoto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ExecutionPhoto{}, err
	}

	result := db.Model(&model.ExecutionPhoto{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"item_result_id": p.ItemResultID,
			"image":          p.Image,
			"annotation":     p.Annotation,
		})
	if result.Error != nil {
		return quality.ExecutionPhoto{}, errs.Wrap(result.Error, "update execution photo")
	}
	if result.RowsAffected == 0 {
		return quality.ExecutionPhoto{}, errs.NotFoundf("execution photo %d", p.ID)
	}
	return r.GetPhoto(ctx, p.ID)
}

func (r *ExecutionRepository) DeletePhoto(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.ExecutionPhoto{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete execution photo")
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("execution photo %d", id)
	}
	return nil
}

// deleteExecutionsWhere cascades photos -> results -> executions for the matching executions.
func deleteExecutionsWhere(db *gorm.DB, cond string, args ...any) error {
	executionIDs := db.Model(&model.Execution{}).Select("id").Where(cond, args...)
	if err := deleteResultsWhere(db, "execution_id IN (?)", executionIDs); err != nil {
		return err
	}
	if err := db.Where(cond, args...).Delete(&model.Execution{}).Error; err != nil {
		return errs.Wrap(err, "delete executions")
	}
	return nil
}

func deleteResultsWhere(db *gorm.DB, cond string, args ...any) error {
	resultIDs := db.Model(&model.ExecutionItemResult{}).Select("id").Where(cond, args...)
	if err := db.Where("item_result_id IN (?)", resultIDs).Delete(&model.ExecutionPhoto{}).Error; err != nil {
		return errs.Wrap(err, "delete execution photos")
	}
	if err := db.Where(cond, args...).Delete(&model.ExecutionItemResult{}).Error; err != nil {
		return errs.Wrap(err, "delete execution item results")
	}
	return nil
}

func executionRow(e quality.Execution) model.Execution {
	return model.Execution{
		ID:             e.ID,
		ProcessSheetID: e.ProcessSheetID,
		ChecklistID:    e.ChecklistID,
		ExecutorID:     e.ExecutorID,
		Status:         string(e.Status),
		Result:         string(e.Result),
		StartedAt:      e.StartedAt,
		FinishedAt:     e.FinishedAt,
		Comment:        e.Comment,
		Version:        e.Version,
	}
}

func mapExecution(row model.Execution) quality.Execution {
	return quality.Execution{
		ID:             row.ID,
		ProcessSheetID: row.ProcessSheetID,
		ChecklistID:    row.ChecklistID,
		ExecutorID:     row.ExecutorID,
		Status:         quality.ExecutionStatus(row.Status),
		Result:         quality.ExecutionResult(row.Result),
		StartedAt:      row.StartedAt,
		FinishedAt:     row.FinishedAt,
		Comment:        row.Comment,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func mapItemResult(row model.ExecutionItemResult) quality.ExecutionItemResult {
	return quality.ExecutionItemResult{
		ID:              row.ID,
		ExecutionID:     row.ExecutionID,
		ChecklistItemID: row.ChecklistItemID,
		Status:          quality.ItemStatus(row.Status),
		Value:           row.Value,
		Note:            row.Note,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func mapPhoto(row model.ExecutionPhoto) quality.ExecutionPhoto {
	return quality.ExecutionPhoto{
		ID:           row.ID,
		ItemResultID: row.ItemResultID,
		Image:        row.Image,
		Annotation:   row.Annotation,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
