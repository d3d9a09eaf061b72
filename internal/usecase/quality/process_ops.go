package quality

import (
	"context"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/ports"
)

const defaultPriority = 3

type ProcessSheetPayload struct {
	Name         Optional[string] `json:"name"`
	ProjectName  Optional[string] `json:"project_name"`
	LotNumber    Optional[string] `json:"lot_number"`
	Inspector    Optional[string] `json:"inspector"`
	Status       Optional[string] `json:"status"`
	Priority     Optional[int]    `json:"priority"`
	Assignee     Optional[string] `json:"assignee"`
	PlannedStart Optional[string] `json:"planned_start"`
	PlannedEnd   Optional[string] `json:"planned_end"`
	ChecklistID  Optional[uint64] `json:"checklist_id"`
	Notes        Optional[string] `json:"notes"`
	Progress     Optional[int]    `json:"progress"`
}

type processSheetFields struct {
	Name         string  `json:"name" validate:"required,max=200"`
	ProjectName  string  `json:"project_name" validate:"max=200"`
	LotNumber    string  `json:"lot_number" validate:"max=255"`
	Inspector    string  `json:"inspector" validate:"max=255"`
	Status       string  `json:"status"`
	Priority     int     `json:"priority"`
	Assignee     string  `json:"assignee" validate:"max=100"`
	PlannedStart *string `json:"planned_start"`
	PlannedEnd   *string `json:"planned_end"`
	ChecklistID  *uint64 `json:"checklist_id"`
	Notes        string  `json:"notes"`
	Progress     int     `json:"progress"`
}

func (p ProcessSheetPayload) applyTo(f *processSheetFields) {
	p.Name.assign(&f.Name)
	p.ProjectName.assign(&f.ProjectName)
	p.LotNumber.assign(&f.LotNumber)
	p.Inspector.assign(&f.Inspector)
	p.Status.assign(&f.Status)
	p.Priority.assign(&f.Priority)
	p.Assignee.assign(&f.Assignee)
	assignPtr(p.PlannedStart, &f.PlannedStart)
	assignPtr(p.PlannedEnd, &f.PlannedEnd)
	assignPtr(p.ChecklistID, &f.ChecklistID)
	p.Notes.assign(&f.Notes)
	p.Progress.assign(&f.Progress)
}

func (s *Service) CreateProcessSheet(ctx context.Context, p ProcessSheetPayload) (ProcessSheetView, error) {
	if err := checkContext(ctx); err != nil {
		return ProcessSheetView{}, err
	}

	var created domainquality.ProcessSheet
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		f := processSheetFields{Priority: defaultPriority}
		p.applyTo(&f)
		sheet, err := s.processSheetFromFields(txCtx, f)
		if err != nil {
			return err
		}
		created, err = s.sheets.CreateProcessSheet(txCtx, sheet)
		return err
	})
	if err != nil {
		return ProcessSheetView{}, err
	}
	return processSheetView(created), nil
}

func (s *Service) GetProcessSheet(ctx context.Context, id uint64) (ProcessSheetView, error) {
	if err := checkContext(ctx); err != nil {
		return ProcessSheetView{}, err
	}

	sheet, err := s.sheets.GetProcessSheet(ctx, id)
	if err != nil {
		return ProcessSheetView{}, err
	}
	return processSheetView(sheet), nil
}

func (s *Service) ListProcessSheets(ctx context.Context, filter ports.ProcessSheetFilter) ([]ProcessSheetView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	sheets, err := s.sheets.ListProcessSheets(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessSheetView, 0, len(sheets))
	for _, sheet := range sheets {
		out = append(out, processSheetView(sheet))
	}
	return out, nil
}

func (s *Service) UpdateProcessSheet(ctx context.Context, id uint64, p ProcessSheetPayload, partial bool) (ProcessSheetView, error) {
	if err := checkContext(ctx); err != nil {
		return ProcessSheetView{}, err
	}
	if !partial && !p.Name.Set {
		return ProcessSheetView{}, requiredField("name")
	}

	var updated domainquality.ProcessSheet
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.sheets.GetProcessSheet(txCtx, id)
		if err != nil {
			return err
		}
		f := processSheetFields{
			Name:         current.Name,
			ProjectName:  current.ProjectName,
			LotNumber:    current.LotNumber,
			Inspector:    current.Inspector,
			Status:       string(current.Status),
			Priority:     current.Priority,
			Assignee:     current.Assignee,
			PlannedStart: formatDate(current.PlannedStart),
			PlannedEnd:   formatDate(current.PlannedEnd),
			ChecklistID:  current.ChecklistID,
			Notes:        current.Notes,
			Progress:     current.Progress,
		}
		p.applyTo(&f)
		sheet, err := s.processSheetFromFields(txCtx, f)
		if err != nil {
			return err
		}
		sheet.ID = id
		updated, err = s.sheets.UpdateProcessSheet(txCtx, sheet)
		return err
	})
	if err != nil {
		return ProcessSheetView{}, err
	}
	return processSheetView(updated), nil
}

// DeleteProcessSheet removes the sheet together with its executions.
func (s *Service) DeleteProcessSheet(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.sheets.DeleteProcessSheet(txCtx, id)
	})
}

func (s *Service) processSheetFromFields(ctx context.Context, f processSheetFields) (domainquality.ProcessSheet, error) {
	if err := s.check(f, ""); err != nil {
		return domainquality.ProcessSheet{}, err
	}
	status, err := choice("status", domainquality.ParseProcessStatus, f.Status)
	if err != nil {
		return domainquality.ProcessSheet{}, err
	}
	if err := domainquality.ValidateStoredProgress(f.Progress); err != nil {
		return domainquality.ProcessSheet{}, errs.Validation("progress", err.Error())
	}
	plannedStart, err := parseDate("planned_start", f.PlannedStart)
	if err != nil {
		return domainquality.ProcessSheet{}, err
	}
	plannedEnd, err := parseDate("planned_end", f.PlannedEnd)
	if err != nil {
		return domainquality.ProcessSheet{}, err
	}
	if err := s.requireChecklist(ctx, "checklist_id", f.ChecklistID); err != nil {
		return domainquality.ProcessSheet{}, err
	}

	return domainquality.ProcessSheet{
		Name:         f.Name,
		ProjectName:  f.ProjectName,
		LotNumber:    f.LotNumber,
		Inspector:    f.Inspector,
		Status:       status,
		Priority:     f.Priority,
		Assignee:     f.Assignee,
		PlannedStart: plannedStart,
		PlannedEnd:   plannedEnd,
		ChecklistID:  f.ChecklistID,
		Notes:        f.Notes,
		Progress:     f.Progress,
	}, nil
}

func (s *Service) requireChecklist(ctx context.Context, field string, id *uint64) error {
	if id == nil {
		return nil
	}
	if _, err := s.checklists.GetChecklist(ctx, *id); err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return errs.Validationf(field, "checklist %d does not exist", *id)
		}
		return err
	}
	return nil
}
