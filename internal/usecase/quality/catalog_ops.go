package quality

import (
	"context"
	"errors"
	"log/slog"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/ports"
)

type CategoryPayload struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

type categoryFields struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type CheckItemPayload struct {
	Name           Optional[string]   `json:"name"`
	Type           Optional[string]   `json:"type"`
	CategoryID     Optional[uint64]   `json:"category_id"`
	Required       Optional[bool]     `json:"required"`
	Unit           Optional[string]   `json:"unit"`
	Description    Optional[string]   `json:"description"`
	Options        Optional[[]string] `json:"options"`
	MinValue       Optional[float64]  `json:"min_value"`
	MaxValue       Optional[float64]  `json:"max_value"`
	DefaultValue   Optional[float64]  `json:"default_value"`
	DecimalPlaces  Optional[int]      `json:"decimal_places"`
	ReferenceImage Optional[string]   `json:"reference_image"`
}

type checkItemFields struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Type           string   `json:"type"`
	CategoryID     *uint64  `json:"category_id"`
	Required       bool     `json:"required"`
	Unit           string   `json:"unit" validate:"max=50"`
	Description    string   `json:"description"`
	Options        []string `json:"options"`
	MinValue       *float64 `json:"min_value"`
	MaxValue       *float64 `json:"max_value"`
	DefaultValue   *float64 `json:"default_value"`
	DecimalPlaces  *int     `json:"decimal_places"`
	ReferenceImage string   `json:"reference_image"`
}

func (p CategoryPayload) applyTo(f *categoryFields) {
	p.Name.assign(&f.Name)
	p.Description.assign(&f.Description)
}

func (p CheckItemPayload) applyTo(f *checkItemFields) {
	p.Name.assign(&f.Name)
	p.Type.assign(&f.Type)
	assignPtr(p.CategoryID, &f.CategoryID)
	p.Required.assign(&f.Required)
	p.Unit.assign(&f.Unit)
	p.Description.assign(&f.Description)
	p.Options.assign(&f.Options)
	assignPtr(p.MinValue, &f.MinValue)
	assignPtr(p.MaxValue, &f.MaxValue)
	assignPtr(p.DefaultValue, &f.DefaultValue)
	assignPtr(p.DecimalPlaces, &f.DecimalPlaces)
	p.ReferenceImage.assign(&f.ReferenceImage)
}

func (s *Service) CreateCategory(ctx context.Context, p CategoryPayload) (CategoryView, error) {
	if err := checkContext(ctx); err != nil {
		return CategoryView{}, err
	}

	var f categoryFields
	p.applyTo(&f)
	if err := s.check(f, ""); err != nil {
		return CategoryView{}, err
	}

	created, err := s.catalog.CreateCategory(ctx, domainquality.Category{Name: f.Name, Description: f.Description})
	if err != nil {
		return CategoryView{}, err
	}
	return categoryView(created), nil
}

func (s *Service) GetCategory(ctx context.Context, id uint64) (CategoryView, error) {
	if err := checkContext(ctx); err != nil {
		return CategoryView{}, err
	}

	c, err := s.catalog.GetCategory(ctx, id)
	if err != nil {
		return CategoryView{}, err
	}
	return categoryView(c), nil
}

func (s *Service) ListCategories(ctx context.Context, filter ports.CategoryFilter) ([]CategoryView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items, err := s.catalog.ListCategories(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryView, 0, len(items))
	for _, c := range items {
		out = append(out, categoryView(c))
	}
	return out, nil
}

// UpdateCategory merges p into the stored category. A full update requires name.
func (s *Service) UpdateCategory(ctx context.Context, id uint64, p CategoryPayload, partial bool) (CategoryView, error) {
	if err := checkContext(ctx); err != nil {
		return CategoryView{}, err
	}
	if !partial && !p.Name.Set {
		return CategoryView{}, requiredField("name")
	}

	var updated domainquality.Category
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.catalog.GetCategory(txCtx, id)
		if err != nil {
			return err
		}
		f := categoryFields{Name: current.Name, Description: current.Description}
		p.applyTo(&f)
		if err := s.check(f, ""); err != nil {
			return err
		}
		current.Name = f.Name
		current.Description = f.Description
		updated, err = s.catalog.UpdateCategory(txCtx, current)
		return err
	})
	if err != nil {
		return CategoryView{}, err
	}
	return categoryView(updated), nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *Service) CreateCheckItem(ctx context.Context, p CheckItemPayload) (CheckItemView, error) {
	if err := checkContext(ctx); err != nil {
		return CheckItemView{}, err
	}

	var created domainquality.CheckItem
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var f checkItemFields
		p.applyTo(&f)
		item, err := s.checkItemFromFields(txCtx, f)
		if err != nil {
			return err
		}
		created, err = s.catalog.CreateCheckItem(txCtx, item)
		return err
	})
	if err != nil {
		return CheckItemView{}, err
	}
	return s.renderCheckItem(ctx, created)
}

func (s *Service) GetCheckItem(ctx context.Context, id uint64) (CheckItemView, error) {
	if err := checkContext(ctx); err != nil {
		return CheckItemView{}, err
	}

	item, err := s.catalog.GetCheckItem(ctx, id)
	if err != nil {
		return CheckItemView{}, err
	}
	return s.renderCheckItem(ctx, item)
}

func (s *Service) ListCheckItems(ctx context.Context, filter ports.CheckItemFilter) ([]CheckItemView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items, err := s.catalog.ListCheckItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CheckItemView, 0, len(items))
	for _, item := range items {
		out = append(out, checkItemView(item, categories))
	}
	return out, nil
}

func (s *Service) UpdateCheckItem(ctx context.Context, id uint64, p CheckItemPayload, partial bool) (CheckItemView, error) {
	if err := checkContext(ctx); err != nil {
		return CheckItemView{}, err
	}
	if !partial && !p.Name.Set {
		return CheckItemView{}, requiredField("name")
	}

	var updated domainquality.CheckItem
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.catalog.GetCheckItem(txCtx, id)
		if err != nil {
			return err
		}
		f := checkItemFields{
			Name:           current.Name,
			Type:           string(current.Type),
			CategoryID:     current.CategoryID,
			Required:       current.Required,
			Unit:           current.Unit,
			Description:    current.Description,
			Options:        current.Options,
			MinValue:       current.MinValue,
			MaxValue:       current.MaxValue,
			DefaultValue:   current.DefaultValue,
			DecimalPlaces:  current.DecimalPlaces,
			ReferenceImage: current.ReferenceImage,
		}
		p.applyTo(&f)
		item, err := s.checkItemFromFields(txCtx, f)
		if err != nil {
			return err
		}
		item.ID = id
		updated, err = s.catalog.UpdateCheckItem(txCtx, item)
		return err
	})
	if err != nil {
		return CheckItemView{}, err
	}
	return s.renderCheckItem(ctx, updated)
}

func (s *Service) DeleteCheckItem(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.quality"), slog.Uint64("check_item_id", id))
	if err := s.catalog.DeleteCheckItem(ctx, id); err != nil {
		if errs.KindOf(err) == errs.KindConflict {
			logging.Info(ctx, "check item delete refused", slog.String("reason", errs.Message(err)))
		}
		return err
	}
	return nil
}

func (s *Service) checkItemFromFields(ctx context.Context, f checkItemFields) (domainquality.CheckItem, error) {
	if err := s.check(f, ""); err != nil {
		return domainquality.CheckItem{}, err
	}
	itemType, err := choice("type", domainquality.ParseCheckItemType, f.Type)
	if err != nil {
		return domainquality.CheckItem{}, err
	}
	if err := s.requireCategory(ctx, f.CategoryID); err != nil {
		return domainquality.CheckItem{}, err
	}

	item := domainquality.CheckItem{
		Name:           f.Name,
		Type:           itemType,
		CategoryID:     f.CategoryID,
		Required:       f.Required,
		Unit:           f.Unit,
		Description:    f.Description,
		Options:        nonNilStrings(f.Options),
		MinValue:       f.MinValue,
		MaxValue:       f.MaxValue,
		DefaultValue:   f.DefaultValue,
		DecimalPlaces:  f.DecimalPlaces,
		ReferenceImage: f.ReferenceImage,
	}
	if err := domainquality.ValidateCheckItem(item); err != nil {
		field := "min_value"
		if errors.Is(err, domainquality.ErrDecimalPlaces) {
			field = "decimal_places"
		}
		return domainquality.CheckItem{}, errs.Validation(field, err.Error())
	}
	return item, nil
}

func (s *Service) renderCheckItem(ctx context.Context, item domainquality.CheckItem) (CheckItemView, error) {
	categories := map[uint64]domainquality.Category{}
	if item.CategoryID != nil {
		c, err := s.catalog.GetCategory(ctx, *item.CategoryID)
		if err != nil && errs.KindOf(err) != errs.KindNotFound {
			return CheckItemView{}, err
		}
		if err == nil {
			categories[c.ID] = c
		}
	}
	return checkItemView(item, categories), nil
}

// requireCategory reports a validation error when id names a missing category.
func (s *Service) requireCategory(ctx context.Context, id *uint64) error {
	if id == nil {
		return nil
	}
	if _, err := s.catalog.GetCategory(ctx, *id); err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return errs.Validationf("category_id", "category %d does not exist", *id)
		}
		return err
	}
	return nil
}

func (s *Service) categoryIndex(ctx context.Context) (map[uint64]domainquality.Category, error) {
	categories, err := s.catalog.ListCategories(ctx, ports.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]domainquality.Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}
