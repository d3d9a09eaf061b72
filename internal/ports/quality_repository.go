package ports

import (
	"context"

	"pqms/internal/domain/quality"
)

type CategoryFilter struct {
	Search string
}

type CheckItemFilter struct {
	Type       string
	Required   *bool
	CategoryID *uint64
	Search     string
}

type ChecklistFilter struct {
	CategoryID *uint64
	Search     string
}

type ProcessSheetFilter struct {
	Status      string
	Assignee    string
	Priority    *int
	ChecklistID *uint64
	Search      string
}

type ExecutionFilter struct {
	Status         string
	Result         *string
	ChecklistID    *uint64
	ProcessSheetID *uint64
	ExecutorID     *uint64
	Search         string
	// OldestFirst orders by id ascending instead of most recently updated first.
	OldestFirst bool
}

type ItemResultFilter struct {
	ExecutionID     *uint64
	ChecklistItemID *uint64
	Status          string
}

type UserFilter struct {
	Search string
}

type TaskFilter struct {
	Status   string
	Priority string
	Assignee string
	Search   string
}

// CatalogRepository stores categories and check items.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, c quality.Category) (quality.Category, error)
	GetCategory(ctx context.Context, id uint64) (quality.Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]quality.Category, error)
	UpdateCategory(ctx context.Context, c quality.Category) (quality.Category, error)
	// DeleteCategory unbinds check items and checklists before removing the row.
	DeleteCategory(ctx context.Context, id uint64) error

	CreateCheckItem(ctx context.Context, item quality.CheckItem) (quality.CheckItem, error)
	GetCheckItem(ctx context.Context, id uint64) (quality.CheckItem, error)
	GetCheckItems(ctx context.Context, ids []uint64) (map[uint64]quality.CheckItem, error)
	ListCheckItems(ctx context.Context, filter CheckItemFilter) ([]quality.CheckItem, error)
	UpdateCheckItem(ctx context.Context, item quality.CheckItem) (quality.CheckItem, error)
	// DeleteCheckItem fails with a conflict while any checklist item references it.
	DeleteCheckItem(ctx context.Context, id uint64) error
	// MissingCheckItems returns the ids (in input order) that do not exist.
	MissingCheckItems(ctx context.Context, ids []uint64) ([]uint64, error)
}

// ChecklistRepository stores checklists and their owned items.
type ChecklistRepository interface {
	CreateChecklist(ctx context.Context, c quality.Checklist) (quality.Checklist, error)
	GetChecklist(ctx context.Context, id uint64) (quality.Checklist, error)
	ListChecklists(ctx context.Context, filter ChecklistFilter) ([]quality.Checklist, error)
	// UpdateChecklist bumps Version. A non-nil expectedVersion must match the stored one.
	UpdateChecklist(ctx context.Context, c quality.Checklist, expectedVersion *int) (quality.Checklist, error)
	// DeleteChecklist fails with a conflict while executions reference the checklist.
	DeleteChecklist(ctx context.Context, id uint64) error

	InsertItems(ctx context.Context, items []quality.ChecklistItem) ([]quality.ChecklistItem, error)
	// DeleteItems removes every item of the checklist; conflict if results reference any.
	DeleteItems(ctx context.Context, checklistID uint64) error
	ListItems(ctx context.Context, checklistID uint64) ([]quality.ChecklistItemDetail, error)
	ListItemsByChecklists(ctx context.Context, checklistIDs []uint64) (map[uint64][]quality.ChecklistItemDetail, error)
	GetItem(ctx context.Context, id uint64) (quality.ChecklistItemDetail, error)
	ListAllItems(ctx context.Context, checklistID *uint64) ([]quality.ChecklistItemDetail, error)
	CountItems(ctx context.Context, checklistID uint64) (int, error)
	ItemRefs(ctx context.Context, ids []uint64) (map[uint64]quality.ChecklistItemRef, error)
}

type ProcessSheetRepository interface {
	CreateProcessSheet(ctx context.Context, p quality.ProcessSheet) (quality.ProcessSheet, error)
	GetProcessSheet(ctx context.Context, id uint64) (quality.ProcessSheet, error)
	ListProcessSheets(ctx context.Context, filter ProcessSheetFilter) ([]quality.ProcessSheet, error)
	UpdateProcessSheet(ctx context.Context, p quality.ProcessSheet) (quality.ProcessSheet, error)
	// DeleteProcessSheet cascades to executions, their results and photos.
	DeleteProcessSheet(ctx context.Context, id uint64) error
}

// ExecutionRepository stores executions, their item results and photos.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, e quality.Execution) (quality.Execution, error)
	GetExecution(ctx context.Context, id uint64) (quality.Execution, error)
	ListExecutions(ctx context.Context, filter ExecutionFilter) ([]quality.Execution, error)
	UpdateExecution(ctx context.Context, e quality.Execution, expectedVersion *int) (quality.Execution, error)
	DeleteExecution(ctx context.Context, id uint64) error

	InsertResults(ctx context.Context, results []quality.ExecutionItemResult) ([]quality.ExecutionItemResult, error)
	// DeleteResults removes every result of the execution together with their photos.
	DeleteResults(ctx context.Context, executionID uint64) error
	ListResults(ctx context.Context, filter ItemResultFilter) ([]quality.ExecutionItemResult, error)
	GetResult(ctx context.Context, id uint64) (quality.ExecutionItemResult, error)
	// CountCompleted returns non-SKIP result counts per execution. When memberOnly
	// is set only results whose checklist item belongs to the execution's checklist count.
	CountCompleted(ctx context.Context, executionIDs []uint64, memberOnly bool) (map[uint64]int, error)

	CreatePhoto(ctx context.Context, p quality.ExecutionPhoto) (quality.ExecutionPhoto, error)
	GetPhoto(ctx context.Context, id uint64) (quality.ExecutionPhoto, error)
	ListPhotos(ctx context.Context, itemResultID *uint64) ([]quality.ExecutionPhoto, error)
	// PhotosByResult groups photos by item result, each group in insertion order.
	PhotosByResult(ctx context.Context, itemResultIDs []uint64) (map[uint64][]quality.ExecutionPhoto, error)
	UpdatePhoto(ctx context.Context, p quality.ExecutionPhoto) (quality.ExecutionPhoto, error)
	DeletePhoto(ctx context.Context, id uint64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u quality.User) (quality.User, error)
	GetUser(ctx context.Context, id uint64) (quality.User, error)
	GetUserByUsername(ctx context.Context, username string) (quality.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]quality.User, error)
	// UpdateUser writes the profile fields; is_active and is_staff are left as stored.
	UpdateUser(ctx context.Context, u quality.User) (quality.User, error)
	// DeleteUser clears executor_id on the user's executions before removing the row.
	DeleteUser(ctx context.Context, id uint64) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, t quality.Task) (quality.Task, error)
	GetTask(ctx context.Context, id uint64) (quality.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]quality.Task, error)
	UpdateTask(ctx context.Context, t quality.Task) (quality.Task, error)
	DeleteTask(ctx context.Context, id uint64) error
}
