package quality

import (
	"time"

	domainquality "pqms/internal/domain/quality"
)

type CategoryView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CheckItemView struct {
	ID             uint64        `json:"id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Category       *CategoryView `json:"category"`
	CategoryID     *uint64       `json:"category_id"`
	Required       bool          `json:"required"`
	Unit           string        `json:"unit"`
	Description    string        `json:"description"`
	Options        []string      `json:"options"`
	MinValue       *float64      `json:"min_value"`
	MaxValue       *float64      `json:"max_value"`
	DefaultValue   *float64      `json:"default_value"`
	DecimalPlaces  *int          `json:"decimal_places"`
	ReferenceImage string        `json:"reference_image"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type ChecklistItemView struct {
	ID          uint64        `json:"id"`
	ChecklistID uint64        `json:"checklist_id"`
	CheckItem   CheckItemView `json:"check_item"`
	Order       int           `json:"order"`
	Required    bool          `json:"required"`
	Instruction string        `json:"instruction"`
	Unit        string        `json:"unit"`
	Options     []string      `json:"options"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ChecklistView struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    *CategoryView       `json:"category"`
	CategoryID  *uint64             `json:"category_id"`
	Version     int                 `json:"version"`
	Items       []ChecklistItemView `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ProcessSheetView struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	ProjectName   string    `json:"project_name"`
	LotNumber     string    `json:"lot_number"`
	Inspector     string    `json:"inspector"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	Priority      int       `json:"priority"`
	Assignee      string    `json:"assignee"`
	PlannedStart  *string   `json:"planned_start"`
	PlannedEnd    *string   `json:"planned_end"`
	ChecklistID   *uint64   `json:"checklist_id"`
	Notes         string    `json:"notes"`
	Progress      int       `json:"progress"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ExecutionPhotoView struct {
	ID           uint64    `json:"id"`
	ItemResultID uint64    `json:"item_result_id"`
	Image        string    `json:"image"`
	URL          string    `json:"url"`
	Annotation   string    `json:"annotation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ItemResultView struct {
	ID            uint64               `json:"id"`
	ExecutionID   uint64               `json:"execution_id"`
	ChecklistItem ChecklistItemView    `json:"checklist_item"`
	Status        string               `json:"status"`
	Value         string               `json:"value"`
	Note          string               `json:"note"`
	Photos        []ExecutionPhotoView `json:"photos"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type ExecutionView struct {
	ID             uint64           `json:"id"`
	ProcessSheetID *uint64          `json:"process_sheet_id"`
	ChecklistID    uint64           `json:"checklist_id"`
	ExecutorID     *uint64          `json:"executor_id"`
	StartedAt      *time.Time       `json:"started_at"`
	FinishedAt     *time.Time       `json:"finished_at"`
	Status         string           `json:"status"`
	Result         string           `json:"result"`
	Comment        string           `json:"comment"`
	Version        int              `json:"version"`
	ItemResults    []ItemResultView `json:"item_results"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type UserView struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Department  string    `json:"department"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskView struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Assignee      string    `json:"assignee"`
	DueDate       *string   `json:"due_date"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	ChecklistName string    `json:"checklist_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ResultProgress is one item result as shown in execution progress.
type ResultProgress struct {
	ItemResultID    uint64   `json:"item_result_id" yaml:"item_result_id" toml:"item_result_id"`
	ChecklistItemID uint64   `json:"checklist_item_id" yaml:"checklist_item_id" toml:"checklist_item_id"`
	ItemName        string   `json:"item_name" yaml:"item_name" toml:"item_name"`
	Status          string   `json:"status" yaml:"status" toml:"status"`
	Value           string   `json:"value" yaml:"value" toml:"value"`
	Note            string   `json:"note" yaml:"note" toml:"note"`
	Photos          []string `json:"photos" yaml:"photos" toml:"photos"`
}

type ExecutionProgress struct {
	ExecutionID    uint64           `json:"execution_id" yaml:"execution_id" toml:"execution_id"`
	Status         string           `json:"status" yaml:"status" toml:"status"`
	Result         string           `json:"result" yaml:"result" toml:"result"`
	CompletedItems int              `json:"completed_items" yaml:"completed_items" toml:"completed_items"`
	TotalItems     int              `json:"total_items" yaml:"total_items" toml:"total_items"`
	Progress       int              `json:"progress" yaml:"progress" toml:"progress"`
	Results        []ResultProgress `json:"results" yaml:"results" toml:"results"`
}

// ExecutionSummary is one execution inside a process sheet aggregate.
type ExecutionSummary struct {
	ID             uint64     `json:"id" yaml:"id" toml:"id"`
	Status         string     `json:"status" yaml:"status" toml:"status"`
	Result         string     `json:"result" yaml:"result" toml:"result"`
	CompletedItems int        `json:"completed_items" yaml:"completed_items" toml:"completed_items"`
	TotalItems     int        `json:"total_items" yaml:"total_items" toml:"total_items"`
	Progress       int        `json:"progress" yaml:"progress" toml:"progress"`
	StartedAt      *time.Time `json:"started_at" yaml:"started_at" toml:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at" yaml:"finished_at" toml:"finished_at,omitempty"`
}

type ProcessSheetProgress struct {
	ProcessSheetID  uint64             `json:"process_sheet_id" yaml:"process_sheet_id" toml:"process_sheet_id"`
	TotalItems      int                `json:"total_items" yaml:"total_items" toml:"total_items"`
	ProjectProgress int                `json:"project_progress" yaml:"project_progress" toml:"project_progress"`
	Executions      []ExecutionSummary `json:"executions" yaml:"executions" toml:"executions"`
}

func categoryView(c domainquality.Category) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func checkItemView(item domainquality.CheckItem, categories map[uint64]domainquality.Category) CheckItemView {
	view := CheckItemView{
		ID:             item.ID,
		Name:           item.Name,
		Type:           string(item.Type),
		CategoryID:     item.CategoryID,
		Required:       item.Required,
		Unit:           item.Unit,
		Description:    item.Description,
		Options:        nonNilStrings(item.Options),
		MinValue:       item.MinValue,
		MaxValue:       item.MaxValue,
		DefaultValue:   item.DefaultValue,
		DecimalPlaces:  item.DecimalPlaces,
		ReferenceImage: item.ReferenceImage,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.CategoryID != nil {
		if c, ok := categories[*item.CategoryID]; ok {
			cv := categoryView(c)
			view.Category = &cv
		}
	}
	return view
}

func checklistItemView(d domainquality.ChecklistItemDetail, categories map[uint64]domainquality.Category) ChecklistItemView {
	return ChecklistItemView{
		ID:          d.ID,
		ChecklistID: d.ChecklistID,
		CheckItem:   checkItemView(d.CheckItem, categories),
		Order:       d.Order,
		Required:    d.Required,
		Instruction: d.Instruction,
		Unit:        d.Unit,
		Options:     nonNilStrings(d.Options),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func processSheetView(p domainquality.ProcessSheet) ProcessSheetView {
	return ProcessSheetView{
		ID:            p.ID,
		Name:          p.Name,
		ProjectName:   p.ProjectName,
		LotNumber:     p.LotNumber,
		Inspector:     p.Inspector,
		Status:        string(p.Status),
		StatusDisplay: p.Status.Label(),
		Priority:      p.Priority,
		Assignee:      p.Assignee,
		PlannedStart:  formatDate(p.PlannedStart),
		PlannedEnd:    formatDate(p.PlannedEnd),
		ChecklistID:   p.ChecklistID,
		Notes:         p.Notes,
		Progress:      p.Progress,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func userView(u domainquality.User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Department:  u.Department,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func taskView(t domainquality.Task) TaskView {
	return TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Assignee:      t.Assignee,
		DueDate:       formatDate(t.DueDate),
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		ChecklistName: t.ChecklistName,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
