package quality

import (
	"context"
	"log/slog"

	"pqms/internal/bootstrap/logging"
	domainquality "pqms/internal/domain/quality"
	"pqms/internal/ports"
)

// ExecutionProgress computes completion for one execution from its stored results.
// It reads inside one transaction so the result set cannot change mid-read.
func (s *Service) ExecutionProgress(ctx context.Context, id uint64) (ExecutionProgress, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionProgress{}, err
	}

	var out ExecutionProgress
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		execution, err := s.executions.GetExecution(txCtx, id)
		if err != nil {
			return err
		}
		total, err := s.checklists.CountItems(txCtx, execution.ChecklistID)
		if err != nil {
			return err
		}
		results, err := s.executions.ListResults(txCtx, ports.ItemResultFilter{ExecutionID: &execution.ID})
		if err != nil {
			return err
		}

		itemIDs := make([]uint64, 0, len(results))
		resultIDs := make([]uint64, 0, len(results))
		for _, r := range results {
			itemIDs = append(itemIDs, r.ChecklistItemID)
			resultIDs = append(resultIDs, r.ID)
		}
		refs, err := s.checklists.ItemRefs(txCtx, itemIDs)
		if err != nil {
			return err
		}
		photos, err := s.executions.PhotosByResult(txCtx, resultIDs)
		if err != nil {
			return err
		}

		counted := results
		if s.opts.StrictMembership {
			counted = make([]domainquality.ExecutionItemResult, 0, len(results))
			for _, r := range results {
				if refs[r.ChecklistItemID].ChecklistID == execution.ChecklistID {
					counted = append(counted, r)
				}
			}
		}
		completed := domainquality.CountCompleted(counted)

		out = ExecutionProgress{
			ExecutionID:    execution.ID,
			Status:         string(execution.Status),
			Result:         string(execution.Result),
			CompletedItems: completed,
			TotalItems:     total,
			Progress:       domainquality.Percent(completed, total),
			Results:        make([]ResultProgress, 0, len(results)),
		}
		for _, r := range results {
			urls := make([]string, 0, len(photos[r.ID]))
			for _, ph := range photos[r.ID] {
				urls = append(urls, s.photoURL(ph.Image))
			}
			out.Results = append(out.Results, ResultProgress{
				ItemResultID:    r.ID,
				ChecklistItemID: r.ChecklistItemID,
				ItemName:        refs[r.ChecklistItemID].CheckItemName,
				Status:          string(r.Status),
				Value:           r.Value,
				Note:            r.Note,
				Photos:          urls,
			})
		}
		return nil
	})
	if err != nil {
		return ExecutionProgress{}, err
	}
	return out, nil
}

// ProcessSheetProgress rolls up progress across the sheet's executions. Every
// execution is measured against the sheet's own checklist; the aggregate is the
// best single execution.
func (s *Service) ProcessSheetProgress(ctx context.Context, id uint64) (ProcessSheetProgress, error) {
	if err := checkContext(ctx); err != nil {
		return ProcessSheetProgress{}, err
	}
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.quality"), slog.Uint64("process_sheet_id", id))

	var out ProcessSheetProgress
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		sheet, err := s.sheets.GetProcessSheet(txCtx, id)
		if err != nil {
			return err
		}
		total := 0
		if sheet.ChecklistID != nil {
			total, err = s.checklists.CountItems(txCtx, *sheet.ChecklistID)
			if err != nil {
				return err
			}
		}

		executions, err := s.executions.ListExecutions(txCtx, ports.ExecutionFilter{ProcessSheetID: &sheet.ID, OldestFirst: true})
		if err != nil {
			return err
		}
		ids := make([]uint64, 0, len(executions))
		for _, e := range executions {
			ids = append(ids, e.ID)
		}
		completed, err := s.executions.CountCompleted(txCtx, ids, s.opts.StrictMembership)
		if err != nil {
			return err
		}

		out = ProcessSheetProgress{
			ProcessSheetID: sheet.ID,
			TotalItems:     total,
			Executions:     make([]ExecutionSummary, 0, len(executions)),
		}
		progresses := make([]int, 0, len(executions))
		for _, e := range executions {
			p := domainquality.Percent(completed[e.ID], total)
			progresses = append(progresses, p)
			out.Executions = append(out.Executions, ExecutionSummary{
				ID:             e.ID,
				Status:         string(e.Status),
				Result:         string(e.Result),
				CompletedItems: completed[e.ID],
				TotalItems:     total,
				Progress:       p,
				StartedAt:      e.StartedAt,
				FinishedAt:     e.FinishedAt,
			})
		}
		out.ProjectProgress = domainquality.ProjectProgress(progresses)
		return nil
	})
	if err != nil {
		return ProcessSheetProgress{}, err
	}

	if out.ProjectProgress > 100 {
		logging.Warn(ctx, "project progress exceeds 100", slog.Int("project_progress", out.ProjectProgress))
	}
	return out, nil
}
