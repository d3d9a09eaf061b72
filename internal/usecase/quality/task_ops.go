package quality

import (
	"context"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/ports"
)

type TaskPayload struct {
	Title         Optional[string] `json:"title"`
	Description   Optional[string] `json:"description"`
	Assignee      Optional[string] `json:"assignee"`
	DueDate       Optional[string] `json:"due_date"`
	Status        Optional[string] `json:"status"`
	Priority      Optional[string] `json:"priority"`
	ChecklistName Optional[string] `json:"checklist_name"`
}

type taskFields struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description"`
	Assignee      string  `json:"assignee" validate:"max=100"`
	DueDate       *string `json:"due_date"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	ChecklistName string  `json:"checklist_name" validate:"max=200"`
}

func (p TaskPayload) applyTo(f *taskFields) {
	p.Title.assign(&f.Title)
	p.Description.assign(&f.Description)
	p.Assignee.assign(&f.Assignee)
	assignPtr(p.DueDate, &f.DueDate)
	p.Status.assign(&f.Status)
	p.Priority.assign(&f.Priority)
	p.ChecklistName.assign(&f.ChecklistName)
}

func (s *Service) CreateTask(ctx context.Context, p TaskPayload) (TaskView, error) {
	if err := checkContext(ctx); err != nil {
		return TaskView{}, err
	}

	var f taskFields
	p.applyTo(&f)
	task, err := s.taskFromFields(f)
	if err != nil {
		return TaskView{}, err
	}
	created, err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		return TaskView{}, err
	}
	return taskView(created), nil
}

func (s *Service) GetTask(ctx context.Context, id uint64) (TaskView, error) {
	if err := checkContext(ctx); err != nil {
		return TaskView{}, err
	}

	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	return taskView(task), nil
}

func (s *Service) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]TaskView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t))
	}
	return out, nil
}

func (s *Service) UpdateTask(ctx context.Context, id uint64, p TaskPayload, partial bool) (TaskView, error) {
	if err := checkContext(ctx); err != nil {
		return TaskView{}, err
	}
	if !partial && !p.Title.Set {
		return TaskView{}, requiredField("title")
	}

	var updated domainquality.Task
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tasks.GetTask(txCtx, id)
		if err != nil {
			return err
		}
		f := taskFields{
			Title:         current.Title,
			Description:   current.Description,
			Assignee:      current.Assignee,
			DueDate:       formatDate(current.DueDate),
			Status:        string(current.Status),
			Priority:      string(current.Priority),
			ChecklistName: current.ChecklistName,
		}
		p.applyTo(&f)
		task, err := s.taskFromFields(f)
		if err != nil {
			return err
		}
		task.ID = id
		updated, err = s.tasks.UpdateTask(txCtx, task)
		return err
	})
	if err != nil {
		return TaskView{}, err
	}
	return taskView(updated), nil
}

func (s *Service) DeleteTask(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return s.tasks.DeleteTask(ctx, id)
}

func (s *Service) taskFromFields(f taskFields) (domainquality.Task, error) {
	if err := s.check(f, ""); err != nil {
		return domainquality.Task{}, err
	}
	status, err := choice("status", domainquality.ParseTaskStatus, f.Status)
	if err != nil {
		return domainquality.Task{}, err
	}
	priority, err := choice("priority", domainquality.ParseTaskPriority, f.Priority)
	if err != nil {
		return domainquality.Task{}, err
	}
	dueDate, err := parseDate("due_date", f.DueDate)
	if err != nil {
		return domainquality.Task{}, err
	}
	return domainquality.Task{
		Title:         f.Title,
		Description:   f.Description,
		Assignee:      f.Assignee,
		DueDate:       dueDate,
		Status:        status,
		Priority:      priority,
		ChecklistName: f.ChecklistName,
	}, nil
}
