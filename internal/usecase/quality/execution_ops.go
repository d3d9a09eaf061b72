package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/ports"
)

// ItemResultSpec is one child of a nested execution write.
type ItemResultSpec struct {
	ChecklistItemID uint64 `json:"checklist_item_id" validate:"required"`
	Status          string `json:"status"`
	Value           string `json:"value" validate:"max=255"`
	Note            string `json:"note"`
}

type ExecutionPayload struct {
	ProcessSheetID Optional[uint64]    `json:"process_sheet_id"`
	ChecklistID    Optional[uint64]    `json:"checklist_id"`
	StartedAt      Optional[time.Time] `json:"started_at"`
	FinishedAt     Optional[time.Time] `json:"finished_at"`
	Status         Optional[string]    `json:"status"`
	Result         Optional[string]    `json:"result"`
	Comment        Optional[string]    `json:"comment"`

	// Version, when given on update, must match the stored version.
	Version Optional[int] `json:"version"`

	// ItemResultsWrite replaces every result when present and leaves results untouched when absent.
	ItemResultsWrite Optional[[]ItemResultSpec] `json:"item_results_write"`
}

type executionFields struct {
	ProcessSheetID *uint64    `json:"process_sheet_id"`
	ChecklistID    uint64     `json:"checklist_id" validate:"required"`
	StartedAt      *time.Time `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
	Status         string     `json:"status"`
	Result         string     `json:"result"`
	Comment        string     `json:"comment"`
}

func (p ExecutionPayload) applyTo(f *executionFields) {
	assignPtr(p.ProcessSheetID, &f.ProcessSheetID)
	p.ChecklistID.assign(&f.ChecklistID)
	assignPtr(p.StartedAt, &f.StartedAt)
	assignPtr(p.FinishedAt, &f.FinishedAt)
	p.Status.assign(&f.Status)
	p.Result.assign(&f.Result)
	p.Comment.assign(&f.Comment)
}

// CreateExecution records a new run. executor is the acting username, empty when anonymous.
func (s *Service) CreateExecution(ctx context.Context, p ExecutionPayload, executor string) (ExecutionView, error) {
	return s.saveExecution(ctx, 0, p, executor)
}

// UpdateExecution merges p into the stored execution; results follow full-replace semantics.
func (s *Service) UpdateExecution(ctx context.Context, id uint64, p ExecutionPayload, partial bool) (ExecutionView, error) {
	if !partial && !p.ChecklistID.Set {
		return ExecutionView{}, requiredField("checklist_id")
	}
	return s.saveExecution(ctx, id, p, "")
}

type resolvedResult struct {
	spec   ItemResultSpec
	status domainquality.ItemStatus
}

func (s *Service) saveExecution(ctx context.Context, id uint64, p ExecutionPayload, executor string) (ExecutionView, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionView{}, err
	}
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.quality"), slog.String("op", "save_execution"))

	results, replace, err := s.resultSpecs(p.ItemResultsWrite)
	if err != nil {
		return ExecutionView{}, err
	}

	var saved domainquality.Execution
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var f executionFields
		var current domainquality.Execution
		if id != 0 {
			var err error
			current, err = s.executions.GetExecution(txCtx, id)
			if err != nil {
				return err
			}
			f = executionFields{
				ProcessSheetID: current.ProcessSheetID,
				ChecklistID:    current.ChecklistID,
				StartedAt:      current.StartedAt,
				FinishedAt:     current.FinishedAt,
				Status:         string(current.Status),
				Result:         string(current.Result),
				Comment:        current.Comment,
			}
		}
		p.applyTo(&f)

		execution, err := s.executionFromFields(txCtx, f)
		if err != nil {
			return err
		}
		if replace {
			if err := s.requireResultItems(txCtx, f.ChecklistID, results); err != nil {
				return err
			}
		} else if id != 0 && s.opts.StrictMembership && f.ChecklistID != current.ChecklistID {
			if err := s.requireStoredMembership(txCtx, id, f.ChecklistID); err != nil {
				return err
			}
		}

		if id == 0 {
			execution.ExecutorID, err = s.resolveExecutor(txCtx, executor)
			if err != nil {
				return err
			}
			saved, err = s.executions.CreateExecution(txCtx, execution)
		} else {
			execution.ID = id
			execution.ExecutorID = current.ExecutorID
			saved, err = s.executions.UpdateExecution(txCtx, execution, p.Version.ptr())
		}
		if err != nil {
			return err
		}

		if !replace {
			return nil
		}
		if id != 0 {
			if err := s.executions.DeleteResults(txCtx, saved.ID); err != nil {
				return err
			}
		}
		rows := make([]domainquality.ExecutionItemResult, 0, len(results))
		for _, r := range results {
			rows = append(rows, domainquality.ExecutionItemResult{
				ExecutionID:     saved.ID,
				ChecklistItemID: r.spec.ChecklistItemID,
				Status:          r.status,
				Value:           r.spec.Value,
				Note:            r.spec.Note,
			})
		}
		_, err = s.executions.InsertResults(txCtx, rows)
		return err
	})
	if err != nil {
		return ExecutionView{}, err
	}

	logging.Info(ctx, "execution saved",
		slog.Uint64("execution_id", saved.ID),
		slog.Int("version", saved.Version),
		slog.Bool("results_replaced", replace),
	)
	s.publish(ctx, subjectExecutionSaved, savedEvent{ID: saved.ID, Version: saved.Version, ChecklistID: saved.ChecklistID})
	return s.GetExecution(ctx, saved.ID)
}

func (s *Service) resultSpecs(items Optional[[]ItemResultSpec]) ([]resolvedResult, bool, error) {
	if !items.Set {
		return nil, false, nil
	}
	if items.Null {
		return nil, false, errs.Validation("item_results_write", "this field may not be null")
	}

	out := make([]resolvedResult, 0, len(items.Value))
	for i, spec := range items.Value {
		prefix := fmt.Sprintf("item_results_write[%d]", i)
		if err := s.check(spec, prefix); err != nil {
			return nil, false, err
		}
		status, err := choice(prefix+".status", domainquality.ParseItemStatus, spec.Status)
		if err != nil {
			return nil, false, err
		}
		out = append(out, resolvedResult{spec: spec, status: status})
	}
	return out, true, nil
}

// requireResultItems checks every referenced checklist item exists and, in strict
// mode, belongs to the execution's checklist.
func (s *Service) requireResultItems(ctx context.Context, checklistID uint64, results []resolvedResult) error {
	ids := make([]uint64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.spec.ChecklistItemID)
	}
	refs, err := s.checklists.ItemRefs(ctx, ids)
	if err != nil {
		return err
	}

	for i, r := range results {
		ref, ok := refs[r.spec.ChecklistItemID]
		if !ok {
			return errs.Validationf("item_results_write", "checklist item %d does not exist", r.spec.ChecklistItemID)
		}
		if s.opts.StrictMembership && ref.ChecklistID != checklistID {
			return errs.Validationf(
				fmt.Sprintf("item_results_write[%d].checklist_item_id", i),
				"checklist item %d: %s", ref.ID, domainquality.ErrForeignChecklist,
			)
		}
	}
	return nil
}

// requireStoredMembership rejects moving an execution to another checklist while
// its stored results still reference items of the previous one.
func (s *Service) requireStoredMembership(ctx context.Context, executionID, checklistID uint64) error {
	stored, err := s.executions.ListResults(ctx, ports.ItemResultFilter{ExecutionID: &executionID})
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(stored))
	for _, r := range stored {
		ids = append(ids, r.ChecklistItemID)
	}
	refs, err := s.checklists.ItemRefs(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range stored {
		if ref, ok := refs[r.ChecklistItemID]; !ok || ref.ChecklistID != checklistID {
			return errs.Validationf("checklist_id", "checklist %d: %w", checklistID, domainquality.ErrStrandedResults)
		}
	}
	return nil
}

func (s *Service) executionFromFields(ctx context.Context, f executionFields) (domainquality.Execution, error) {
	if err := s.check(f, ""); err != nil {
		return domainquality.Execution{}, err
	}
	status, err := choice("status", domainquality.ParseExecutionStatus, f.Status)
	if err != nil {
		return domainquality.Execution{}, err
	}
	result, err := choice("result", domainquality.ParseExecutionResult, f.Result)
	if err != nil {
		return domainquality.Execution{}, err
	}
	if err := s.requireChecklist(ctx, "checklist_id", &f.ChecklistID); err != nil {
		return domainquality.Execution{}, err
	}
	if f.ProcessSheetID != nil {
		if _, err := s.sheets.GetProcessSheet(ctx, *f.ProcessSheetID); err != nil {
			if errs.KindOf(err) == errs.KindNotFound {
				return domainquality.Execution{}, errs.Validationf("process_sheet_id", "process sheet %d does not exist", *f.ProcessSheetID)
			}
			return domainquality.Execution{}, err
		}
	}

	return domainquality.Execution{
		ProcessSheetID: f.ProcessSheetID,
		ChecklistID:    f.ChecklistID,
		Status:         status,
		Result:         result,
		StartedAt:      f.StartedAt,
		FinishedAt:     f.FinishedAt,
		Comment:        f.Comment,
	}, nil
}

func (s *Service) GetExecution(ctx context.Context, id uint64) (ExecutionView, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionView{}, err
	}

	execution, err := s.executions.GetExecution(ctx, id)
	if err != nil {
		return ExecutionView{}, err
	}
	views, err := s.renderExecutions(ctx, []domainquality.Execution{execution})
	if err != nil {
		return ExecutionView{}, err
	}
	return views[0], nil
}

func (s *Service) ListExecutions(ctx context.Context, filter ports.ExecutionFilter) ([]ExecutionView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	executions, err := s.executions.ListExecutions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderExecutions(ctx, executions)
}

// DeleteExecution removes the execution with its results and photos.
func (s *Service) DeleteExecution(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	if err := s.executions.DeleteExecution(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, subjectExecutionDeleted, savedEvent{ID: id})
	return nil
}

func (s *Service) ListItemResults(ctx context.Context, filter ports.ItemResultFilter) ([]ItemResultView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	results, err := s.executions.ListResults(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderResults(ctx, results)
}

func (s *Service) GetItemResult(ctx context.Context, id uint64) (ItemResultView, error) {
	if err := checkContext(ctx); err != nil {
		return ItemResultView{}, err
	}

	result, err := s.executions.GetResult(ctx, id)
	if err != nil {
		return ItemResultView{}, err
	}
	views, err := s.renderResults(ctx, []domainquality.ExecutionItemResult{result})
	if err != nil {
		return ItemResultView{}, err
	}
	return views[0], nil
}

func (s *Service) renderExecutions(ctx context.Context, executions []domainquality.Execution) ([]ExecutionView, error) {
	var all []domainquality.ExecutionItemResult
	for _, e := range executions {
		results, err := s.executions.ListResults(ctx, ports.ItemResultFilter{ExecutionID: &e.ID})
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	resultViews, err := s.renderResults(ctx, all)
	if err != nil {
		return nil, err
	}

	byExecution := make(map[uint64][]ItemResultView, len(executions))
	for _, rv := range resultViews {
		byExecution[rv.ExecutionID] = append(byExecution[rv.ExecutionID], rv)
	}

	out := make([]ExecutionView, 0, len(executions))
	for _, e := range executions {
		results := byExecution[e.ID]
		if results == nil {
			results = []ItemResultView{}
		}
		out = append(out, ExecutionView{
			ID:             e.ID,
			ProcessSheetID: e.ProcessSheetID,
			ChecklistID:    e.ChecklistID,
			ExecutorID:     e.ExecutorID,
			StartedAt:      e.StartedAt,
			FinishedAt:     e.FinishedAt,
			Status:         string(e.Status),
			Result:         string(e.Result),
			Comment:        e.Comment,
			Version:        e.Version,
			ItemResults:    results,
			CreatedAt:      e.CreatedAt,
			UpdatedAt:      e.UpdatedAt,
		})
	}
	return out, nil
}

// renderResults expands results with their checklist items and photos, keeping input order.
func (s *Service) renderResults(ctx context.Context, results []domainquality.ExecutionItemResult) ([]ItemResultView, error) {
	if len(results) == 0 {
		return []ItemResultView{}, nil
	}

	itemIDs := make([]uint64, 0, len(results))
	resultIDs := make([]uint64, 0, len(results))
	for _, r := range results {
		itemIDs = append(itemIDs, r.ChecklistItemID)
		resultIDs = append(resultIDs, r.ID)
	}

	refs, err := s.checklists.ItemRefs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	checklistIDs := make([]uint64, 0, len(refs))
	seen := make(map[uint64]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ChecklistID]; ok {
			continue
		}
		seen[ref.ChecklistID] = struct{}{}
		checklistIDs = append(checklistIDs, ref.ChecklistID)
	}
	itemsByChecklist, err := s.checklists.ListItemsByChecklists(ctx, checklistIDs)
	if err != nil {
		return nil, err
	}
	details := make(map[uint64]domainquality.ChecklistItemDetail, len(itemIDs))
	for _, items := range itemsByChecklist {
		for _, d := range items {
			details[d.ID] = d
		}
	}

	photos, err := s.executions.PhotosByResult(ctx, resultIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ItemResultView, 0, len(results))
	for _, r := range results {
		photoViews := make([]ExecutionPhotoView, 0, len(photos[r.ID]))
		for _, ph := range photos[r.ID] {
			photoViews = append(photoViews, s.photoView(ph))
		}
		out = append(out, ItemResultView{
			ID:            r.ID,
			ExecutionID:   r.ExecutionID,
			ChecklistItem: checklistItemView(details[r.ChecklistItemID], categories),
			Status:        string(r.Status),
			Value:         r.Value,
			Note:          r.Note,
			Photos:        photoViews,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out, nil
}
