package repository

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

type CatalogRepository struct {
	conn
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{conn{db: db}}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c quality.Category) (quality.Category, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Category{}, err
	}

	row := model.Category{Name: c.Name, Description: c.Description}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return quality.Category{}, errs.Validationf("name", "category %q already exists", c.Name)
		}
		return quality.Category{}, errs.Wrap(err, "insert category")
	}
	return mapCategory(row), nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id uint64) (quality.Category, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Category{}, err
	}

	var row model.Category
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.Category{}, notFoundOr(err, "category %d", id)
	}
	return mapCategory(row), nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, filter ports.CategoryFilter) ([]quality.Category, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := searchAny(db.Model(&model.Category{}), filter.Search, "name", "description")

	var rows []model.Category
	if err := query.Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query categories")
	}

	items := make([]quality.Category, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCategory(row))
	}
	return items, nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, c quality.Category) (quality.Category, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Category{}, err
	}

	result := db.Model(&model.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":        c.Name,
			"description": c.Description,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return quality.Category{}, errs.Validationf("name", "category %q already exists", c.Name)
		}
		return quality.Category{}, errs.Wrap(result.Error, "update category")
	}
	if result.RowsAffected == 0 {
		return quality.Category{}, errs.NotFoundf("category %d", c.ID)
	}
	return r.GetCategory(ctx, c.ID)
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		if err := db.Model(&model.CheckItem{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return errs.Wrap(err, "unbind check items from category")
		}
		if err := db.Model(&model.Checklist{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return errs.Wrap(err, "unbind checklists from category")
		}

		result := db.Where("id = ?", id).Delete(&model.Category{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete category")
		}
		if result.RowsAffected == 0 {
			return errs.NotFoundf("category %d", id)
		}
		return nil
	})
}

func (r *CatalogRepository) CreateCheckItem(ctx context.Context, item quality.CheckItem) (quality.CheckItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.CheckItem{}, err
	}

	row, err := checkItemRow(item)
	if err != nil {
		return quality.CheckItem{}, err
	}
	if err := db.Create(&row).Error; err != nil {
		return quality.CheckItem{}, errs.Wrap(err, "insert check item")
	}
	return mapCheckItem(row), nil
}

func (r *CatalogRepository) GetCheckItem(ctx context.Context, id uint64) (quality.CheckItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.CheckItem{}, err
	}

	var row model.CheckItem
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return quality.CheckItem{}, notFoundOr(err, "check item %d", id)
	}
	return mapCheckItem(row), nil
}

func (r *CatalogRepository) GetCheckItems(ctx context.Context, ids []uint64) (map[uint64]quality.CheckItem, error) {
	out := make(map[uint64]quality.CheckItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.CheckItem
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query check items")
	}
	for _, row := range rows {
		out[row.ID] = mapCheckItem(row)
	}
	return out, nil
}

func (r *CatalogRepository) ListCheckItems(ctx context.Context, filter ports.CheckItemFilter) ([]quality.CheckItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.CheckItem{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Required != nil {
		query = query.Where("required = ?", *filter.Required)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	query = searchAny(query, filter.Search, "name", "description", "unit")

	var rows []model.CheckItem
	if err := query.Order("updated_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query check items")
	}

	items := make([]quality.CheckItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCheckItem(row))
	}
	return items, nil
}

func (r *CatalogRepository) UpdateCheckItem(ctx context.Context, item quality.CheckItem) (quality.CheckItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.CheckItem{}, err
	}

	row, err := checkItemRow(item)
	if err != nil {
		return quality.CheckItem{}, err
	}

	result := db.Model(&model.CheckItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":            row.Name,
			"type":            row.Type,
			"category_id":     row.CategoryID,
			"required":        row.Required,
			"unit":            row.Unit,
			"description":     row.Description,
			"options":         row.Options,
			"min_value":       row.MinValue,
			"max_value":       row.MaxValue,
			"default_value":   row.DefaultValue,
			"decimal_places":  row.DecimalPlaces,
			"reference_image": row.ReferenceImage,
		})
	if result.Error != nil {
		return quality.CheckItem{}, errs.Wrap(result.Error, "update check item")
	}
	if result.RowsAffected == 0 {
		return quality.CheckItem{}, errs.NotFoundf("check item %d", item.ID)
	}
	return r.GetCheckItem(ctx, item.ID)
}

func (r *CatalogRepository) DeleteCheckItem(ctx context.Context, id uint64) error {
	return r.inTx(ctx, func(db *gorm.DB) error {
		var used int64
		if err := db.Model(&model.ChecklistItem{}).Where("check_item_id = ?", id).Count(&used).Error; err != nil {
			return errs.Wrap(err, "count check item usage")
		}
		if used > 0 {
			return errs.Conflictf("check item %d is used by %d checklist item(s)", id, used)
		}

		result := db.Where("id = ?", id).Delete(&model.CheckItem{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete check item")
		}
		if result.RowsAffected == 0 {
			return errs.NotFoundf("check item %d", id)
		}
		return nil
	})
}

func (r *CatalogRepository) MissingCheckItems(ctx context.Context, ids []uint64) ([]uint64, error) {
	found, err := r.GetCheckItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	var missing []uint64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func checkItemRow(item quality.CheckItem) (model.CheckItem, error) {
	options, err := encodeOptions(item.Options)
	if err != nil {
		return model.CheckItem{}, err
	}
	return model.CheckItem{
		ID:             item.ID,
		Name:           item.Name,
		Type:           string(item.Type),
		CategoryID:     item.CategoryID,
		Required:       item.Required,
		Unit:           item.Unit,
		Description:    item.Description,
		Options:        options,
		MinValue:       item.MinValue,
		MaxValue:       item.MaxValue,
		DefaultValue:   item.DefaultValue,
		DecimalPlaces:  item.DecimalPlaces,
		ReferenceImage: item.ReferenceImage,
	}, nil
}

func mapCategory(row model.Category) quality.Category {
	return quality.Category{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapCheckItem(row model.CheckItem) quality.CheckItem {
	return quality.CheckItem{
		ID:             row.ID,
		Name:           row.Name,
		Type:           quality.CheckItemType(row.Type),
		CategoryID:     row.CategoryID,
		Required:       row.Required,
		Unit:           row.Unit,
		Description:    row.Description,
		Options:        decodeOptions(row.Options),
		MinValue:       row.MinValue,
		MaxValue:       row.MaxValue,
		DefaultValue:   row.DefaultValue,
		DecimalPlaces:  row.DecimalPlaces,
		ReferenceImage: row.ReferenceImage,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
