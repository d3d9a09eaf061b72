package quality

import (
	"context"
	"fmt"
	"log/slog"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/ports"
)

// ChecklistItemSpec is one child of a nested checklist write.
type ChecklistItemSpec struct {
	CheckItemID uint64   `json:"check_item_id" validate:"required"`
	Order       *int     `json:"order" validate:"omitempty,min=0"`
	Required    bool     `json:"required"`
	Instruction string   `json:"instruction"`
	Unit        string   `json:"unit" validate:"max=50"`
	Options     []string `json:"options"`
}

type ChecklistPayload struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	CategoryID  Optional[uint64] `json:"category_id"`

	// Version, when given on update, must match the stored version.
	Version Optional[int] `json:"version"`

	// ItemsWrite replaces every item when present and leaves items untouched when absent.
	ItemsWrite Optional[[]ChecklistItemSpec] `json:"items_write"`
}

type checklistFields struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	CategoryID  *uint64 `json:"category_id"`
}

func (p ChecklistPayload) applyTo(f *checklistFields) {
	p.Name.assign(&f.Name)
	p.Description.assign(&f.Description)
	assignPtr(p.CategoryID, &f.CategoryID)
}

func (s *Service) CreateChecklist(ctx context.Context, p ChecklistPayload) (ChecklistView, error) {
	return s.saveChecklist(ctx, 0, p)
}

// UpdateChecklist merges p into the stored checklist; items follow full-replace semantics.
func (s *Service) UpdateChecklist(ctx context.Context, id uint64, p ChecklistPayload, partial bool) (ChecklistView, error) {
	if !partial && !p.Name.Set {
		return ChecklistView{}, requiredField("name")
	}
	return s.saveChecklist(ctx, id, p)
}

// saveChecklist creates (id == 0) or updates a checklist and its items in one transaction.
// Every referenced id is checked before any row is touched.
func (s *Service) saveChecklist(ctx context.Context, id uint64, p ChecklistPayload) (ChecklistView, error) {
	if err := checkContext(ctx); err != nil {
		return ChecklistView{}, err
	}
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.quality"), slog.String("op", "save_checklist"))

	specs, replace, err := s.checklistSpecs(p.ItemsWrite)
	if err != nil {
		return ChecklistView{}, err
	}

	var saved domainquality.Checklist
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var f checklistFields
		var current domainquality.Checklist
		if id != 0 {
			var err error
			current, err = s.checklists.GetChecklist(txCtx, id)
			if err != nil {
				return err
			}
			f = checklistFields{Name: current.Name, Description: current.Description, CategoryID: current.CategoryID}
		}
		p.applyTo(&f)
		if err := s.check(f, ""); err != nil {
			return err
		}
		if err := s.requireCategory(txCtx, f.CategoryID); err != nil {
			return err
		}
		if replace {
			if err := s.requireCheckItems(txCtx, specs); err != nil {
				return err
			}
		}

		var err error
		if id == 0 {
			saved, err = s.checklists.CreateChecklist(txCtx, domainquality.Checklist{
				Name:        f.Name,
				Description: f.Description,
				CategoryID:  f.CategoryID,
			})
		} else {
			current.Name = f.Name
			current.Description = f.Description
			current.CategoryID = f.CategoryID
			saved, err = s.checklists.UpdateChecklist(txCtx, current, p.Version.ptr())
		}
		if err != nil {
			return err
		}

		if !replace {
			return nil
		}
		if id != 0 {
			if err := s.checklists.DeleteItems(txCtx, saved.ID); err != nil {
				return err
			}
		}
		_, err = s.checklists.InsertItems(txCtx, checklistItemsFromSpecs(saved.ID, specs))
		return err
	})
	if err != nil {
		return ChecklistView{}, err
	}

	logging.Info(ctx, "checklist saved",
		slog.Uint64("checklist_id", saved.ID),
		slog.Int("version", saved.Version),
		slog.Bool("items_replaced", replace),
	)
	s.publish(ctx, subjectChecklistSaved, savedEvent{ID: saved.ID, Version: saved.Version})
	return s.GetChecklist(ctx, saved.ID)
}

func (s *Service) checklistSpecs(items Optional[[]ChecklistItemSpec]) ([]ChecklistItemSpec, bool, error) {
	if !items.Set {
		return nil, false, nil
	}
	if items.Null {
		return nil, false, errs.Validation("items_write", "this field may not be null")
	}

	ids := make([]uint64, 0, len(items.Value))
	for i, spec := range items.Value {
		if err := s.check(spec, fmt.Sprintf("items_write[%d]", i)); err != nil {
			return nil, false, err
		}
		ids = append(ids, spec.CheckItemID)
	}
	if dup, ok := domainquality.DuplicateCheckItem(ids); ok {
		return nil, false, errs.Conflictf("check item %d: %s", dup, domainquality.ErrDuplicateItem)
	}
	return items.Value, true, nil
}

func (s *Service) requireCheckItems(ctx context.Context, specs []ChecklistItemSpec) error {
	ids := make([]uint64, 0, len(specs))
	for _, spec := range specs {
		ids = append(ids, spec.CheckItemID)
	}
	missing, err := s.catalog.MissingCheckItems(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return errs.Validationf("items_write", "check item %d does not exist", missing[0])
	}
	return nil
}

func checklistItemsFromSpecs(checklistID uint64, specs []ChecklistItemSpec) []domainquality.ChecklistItem {
	explicit := make([]*int, 0, len(specs))
	for _, spec := range specs {
		explicit = append(explicit, spec.Order)
	}
	orders := domainquality.ResolveItemOrders(explicit)

	items := make([]domainquality.ChecklistItem, 0, len(specs))
	for i, spec := range specs {
		items = append(items, domainquality.ChecklistItem{
			ChecklistID: checklistID,
			CheckItemID: spec.CheckItemID,
			Order:       orders[i],
			Required:    spec.Required,
			Instruction: spec.Instruction,
			Unit:        spec.Unit,
			Options:     nonNilStrings(spec.Options),
		})
	}
	return items
}

func (s *Service) GetChecklist(ctx context.Context, id uint64) (ChecklistView, error) {
	if err := checkContext(ctx); err != nil {
		return ChecklistView{}, err
	}

	c, err := s.checklists.GetChecklist(ctx, id)
	if err != nil {
		return ChecklistView{}, err
	}
	views, err := s.renderChecklists(ctx, []domainquality.Checklist{c})
	if err != nil {
		return ChecklistView{}, err
	}
	return views[0], nil
}

func (s *Service) ListChecklists(ctx context.Context, filter ports.ChecklistFilter) ([]ChecklistView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items, err := s.checklists.ListChecklists(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderChecklists(ctx, items)
}

func (s *Service) DeleteChecklist(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return s.checklists.DeleteChecklist(ctx, id)
}

// ListChecklistItems returns the ordered items of one checklist.
func (s *Service) ListChecklistItems(ctx context.Context, checklistID uint64) ([]ChecklistItemView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if _, err := s.checklists.GetChecklist(ctx, checklistID); err != nil {
		return nil, err
	}
	return s.listItemViews(ctx, &checklistID)
}

// ListAllChecklistItems lists items across checklists, optionally narrowed to one.
func (s *Service) ListAllChecklistItems(ctx context.Context, checklistID *uint64) ([]ChecklistItemView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return s.listItemViews(ctx, checklistID)
}

func (s *Service) GetChecklistItem(ctx context.Context, id uint64) (ChecklistItemView, error) {
	if err := checkContext(ctx); err != nil {
		return ChecklistItemView{}, err
	}

	detail, err := s.checklists.GetItem(ctx, id)
	if err != nil {
		return ChecklistItemView{}, err
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return ChecklistItemView{}, err
	}
	return checklistItemView(detail, categories), nil
}

// AppendChecklistItem adds one item; order defaults to the current item count.
func (s *Service) AppendChecklistItem(ctx context.Context, checklistID uint64, spec ChecklistItemSpec) (ChecklistItemView, error) {
	if err := checkContext(ctx); err != nil {
		return ChecklistItemView{}, err
	}
	if err := s.check(spec, ""); err != nil {
		return ChecklistItemView{}, err
	}

	var created domainquality.ChecklistItem
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checklists.GetChecklist(txCtx, checklistID); err != nil {
			return err
		}
		missing, err := s.catalog.MissingCheckItems(txCtx, []uint64{spec.CheckItemID})
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return errs.Validationf("check_item_id", "check item %d does not exist", spec.CheckItemID)
		}

		var order int
		if spec.Order != nil {
			order = *spec.Order
		} else {
			count, err := s.checklists.CountItems(txCtx, checklistID)
			if err != nil {
				return err
			}
			order = count
		}
		spec.Order = &order

		inserted, err := s.checklists.InsertItems(txCtx, checklistItemsFromSpecs(checklistID, []ChecklistItemSpec{spec}))
		if err != nil {
			return err
		}
		created = inserted[0]
		return nil
	})
	if err != nil {
		return ChecklistItemView{}, err
	}
	return s.GetChecklistItem(ctx, created.ID)
}

func (s *Service) listItemViews(ctx context.Context, checklistID *uint64) ([]ChecklistItemView, error) {
	details, err := s.checklists.ListAllItems(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChecklistItemView, 0, len(details))
	for _, d := range details {
		out = append(out, checklistItemView(d, categories))
	}
	return out, nil
}

func (s *Service) renderChecklists(ctx context.Context, checklists []domainquality.Checklist) ([]ChecklistView, error) {
	ids := make([]uint64, 0, len(checklists))
	for _, c := range checklists {
		ids = append(ids, c.ID)
	}
	itemsByChecklist, err := s.checklists.ListItemsByChecklists(ctx, ids)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ChecklistView, 0, len(checklists))
	for _, c := range checklists {
		view := ChecklistView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CategoryID:  c.CategoryID,
			Version:     c.Version,
			Items:       []ChecklistItemView{},
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
		if c.CategoryID != nil {
			if cat, ok := categories[*c.CategoryID]; ok {
				cv := categoryView(cat)
				view.Category = &cv
			}
		}
		for _, d := range itemsByChecklist[c.ID] {
			view.Items = append(view.Items, checklistItemView(d, categories))
		}
		out = append(out, view)
	}
	return out, nil
}
