package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

const checklistItemOrder = `checklist_items."order" asc, checklist_items.id asc`

type ChecklistRepository struct {
	conn
}

var _ ports.ChecklistRepository = (*ChecklistRepository)(nil)

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{conn{db: db}}
}

func (r *ChecklistRepository) CreateChecklist(ctx context.Context, c quality.Checklist) (quality.Checklist, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Checklist{}, err
	}

	row := model.Checklist{
		Name:        c.Name,
		Description: c.Description,
		CategoryID:  c.CategoryID,
		Version:     1,
	}
	if err := db.Create(&row).Error; err != nil {
		return quality.Checklist{}, errs.Wrap(err, "insert checklist")
	}
	return mapChecklist(row), nil
}

func (r *ChecklistRepository) GetChecklist(ctx context.Context, id uint64) (quality.Checklist, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Checklist{}, err
	}

	var row model.Checklist
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.Checklist{}, notFoundOr(err, "checklist %d", id)
	}
	return mapChecklist(row), nil
}

func (r *ChecklistRepository) ListChecklists(ctx context.Context, filter ports.ChecklistFilter) ([]quality.Checklist, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Checklist{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	query = searchAny(query, filter.Search, "name", "description")

	var rows []model.Checklist
	if err := query.Order("updated_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklists")
	}

	items := make([]quality.Checklist, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapChecklist(row))
	}
	return items, nil
}

func (r *ChecklistRepository) UpdateChecklist(ctx context.Context, c quality.Checklist, expectedVersion *int) (quality.Checklist, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Checklist{}, err
	}

	query := db.Model(&model.Checklist{}).Where("id = ?", c.ID)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}
	result := query.Updates(map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"category_id": c.CategoryID,
		"version":     gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return quality.Checklist{}, errs.Wrap(result.Error, "update checklist")
	}
	if result.RowsAffected == 0 {
		current, err := r.GetChecklist(ctx, c.ID)
		if err != nil {
			return quality.Checklist{}, err
		}
		if expectedVersion == nil {
			return current, nil
		}
		return quality.Checklist{}, errs.Conflictf("checklist %d version is %d, not %d", c.ID, current.Version, *expectedVersion)
	}
	return r.GetChecklist(ctx, c.ID)
}

func (r *ChecklistRepository) DeleteChecklist(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		var executions int64
		if err := db.Model(&model.Execution{}).Where("checklist_id = ?", id).Count(&executions).Error; err != nil {
			return errs.Wrap(err, "count checklist executions")
		}
		if executions > 0 {
			return errs.Conflictf("checklist %d is referenced by %d execution(s)", id, executions)
		}

		if err := deleteChecklistItems(db, id); err != nil {
			return err
		}
		if err := db.Model(&model.ProcessSheet{}).Where("checklist_id = ?", id).Update("checklist_id", nil).Error; err != nil {
			return errs.Wrap(err, "unbind process sheets from checklist")
		}

		result := db.Where("id = ?", id).Delete(&model.Checklist{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete checklist")
		}
		if result.RowsAffected == 0 {
			return errs.NotFoundf("checklist %d", id)
		}
		return nil
	})
}

func (r *ChecklistRepository) InsertItems(ctx context.Context, items []quality.ChecklistItem) ([]quality.ChecklistItem, error) {
	if len(items) == 0 {
		return []quality.ChecklistItem{}, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ChecklistItem, 0, len(items))
	for _, item := range items {
		options, err := encodeOptions(item.Options)
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.ChecklistItem{
			ChecklistID: item.ChecklistID,
			CheckItemID: item.CheckItemID,
			Order:       item.Order,
			Required:    item.Required,
			Instruction: item.Instruction,
			Unit:        item.Unit,
			Options:     options,
		})
	}

	if err := db.Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("checklist already contains this check item")
		}
		return nil, errs.Wrap(err, "insert checklist items")
	}

	out := make([]quality.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapChecklistItem(row))
	}
	return out, nil
}

func (r *ChecklistRepository) DeleteItems(ctx context.Context, checklistID uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		return deleteChecklistItems(db, checklistID)
	})
}

func (r *ChecklistRepository) ListItems(ctx context.Context, checklistID uint64) ([]quality.ChecklistItemDetail, error) {
	return r.ListAllItems(ctx, &checklistID)
}

func (r *ChecklistRepository) ListItemsByChecklists(ctx context.Context, checklistIDs []uint64) (map[uint64][]quality.ChecklistItemDetail, error) {
	out := make(map[uint64][]quality.ChecklistItemDetail, len(checklistIDs))
	if len(checklistIDs) == 0 {
		return out, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	details, err := listItemDetails(db.Where("checklist_items.checklist_id IN ?", checklistIDs))
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		out[d.ChecklistID] = append(out[d.ChecklistID], d)
	}
	return out, nil
}

func (r *ChecklistRepository) GetItem(ctx context.Context, id uint64) (quality.ChecklistItemDetail, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ChecklistItemDetail{}, err
	}

	details, err := listItemDetails(db.Where("checklist_items.id = ?", id))
	if err != nil {
		return quality.ChecklistItemDetail{}, err
	}
	if len(details) == 0 {
		return quality.ChecklistItemDetail{}, errs.NotFoundf("checklist item %d", id)
	}
	return details[0], nil
}

func (r *ChecklistRepository) ListAllItems(ctx context.Context, checklistID *uint64) ([]quality.ChecklistItemDetail, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if checklistID != nil {
		db = db.Where("checklist_items.checklist_id = ?", *checklistID)
	}
	return listItemDetails(db)
}

func (r *ChecklistRepository) CountItems(ctx context.Context, checklistID uint64) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ChecklistItem{}).Where("checklist_id = ?", checklistID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count checklist items")
	}
	return int(count), nil
}

func (r *ChecklistRepository) ItemRefs(ctx context.Context, ids []uint64) (map[uint64]quality.ChecklistItemRef, error) {
	out := make(map[uint64]quality.ChecklistItemRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	type refRow struct {
		ID            uint64
		ChecklistID   uint64
		CheckItemName string
	}
	var rows []refRow
	if err := db.Model(&model.ChecklistItem{}).
		Select("checklist_items.id AS id, checklist_items.checklist_id AS checklist_id, check_items.name AS check_item_name").
		Joins("JOIN check_items ON check_items.id = checklist_items.check_item_id").
		Where("checklist_items.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist item refs")
	}

	for _, row := range rows {
		out[row.ID] = quality.ChecklistItemRef{
			ID:            row.ID,
			ChecklistID:   row.ChecklistID,
			CheckItemName: row.CheckItemName,
		}
	}
	return out, nil
}

// deleteChecklistItems refuses while any execution result still points at one of the items.
func deleteChecklistItems(db *gorm.DB, checklistID uint64) error {
	itemIDs := db.Model(&model.ChecklistItem{}).Select("id").Where("checklist_id = ?", checklistID)

	var referenced int64
	if err := db.Model(&model.ExecutionItemResult{}).
		Where("checklist_item_id IN (?)", itemIDs).
		Count(&referenced).Error; err != nil {
		return errs.Wrap(err, "count results referencing checklist items")
	}
	if referenced > 0 {
		return errs.Conflictf("checklist %d items are referenced by %d execution result(s)", checklistID, referenced)
	}

	if err := db.Where("checklist_id = ?", checklistID).Delete(&model.ChecklistItem{}).Error; err != nil {
		return errs.Wrap(err, "delete checklist items")
	}
	return nil
}

func listItemDetails(query *gorm.DB) ([]quality.ChecklistItemDetail, error) {
	var rows []model.ChecklistItem
	if err := query.Model(&model.ChecklistItem{}).Order(checklistItemOrder).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist items")
	}
	if len(rows) == 0 {
		return []quality.ChecklistItemDetail{}, nil
	}

	checkItemIDs := make([]uint64, 0, len(rows))
	for _, row := range rows {
		checkItemIDs = append(checkItemIDs, row.CheckItemID)
	}

	var checkRows []model.CheckItem
	if err := query.Session(&gorm.Session{NewDB: true}).
		Where("id IN ?", checkItemIDs).
		Find(&checkRows).Error; err != nil {
		return nil, errs.Wrap(err, "query check items for checklist")
	}
	byID := make(map[uint64]model.CheckItem, len(checkRows))
	for _, row := range checkRows {
		byID[row.ID] = row
	}

	out := make([]quality.ChecklistItemDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, quality.ChecklistItemDetail{
			ChecklistItem: mapChecklistItem(row),
			CheckItem:     mapCheckItem(byID[row.CheckItemID]),
		})
	}
	return out, nil
}

func mapChecklist(row model.Checklist) quality.Checklist {
	return quality.Checklist{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CategoryID:  row.CategoryID,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapChecklistItem(row model.ChecklistItem) quality.ChecklistItem {
	return quality.ChecklistItem{
		ID:          row.ID,
		ChecklistID: row.ChecklistID,
		CheckItemID: row.CheckItemID,
		Order:       row.Order,
		Required:    row.Required,
		Instruction: row.Instruction,
		Unit:        row.Unit,
		Options:     decodeOptions(row.Options),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
