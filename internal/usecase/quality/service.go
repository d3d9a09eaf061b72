package quality

import (
	"github.com/go-playground/validator/v10"

	"pqms/internal/ports"
)

// Options carries the behaviour switches read from configuration.
type Options struct {
	// StrictMembership rejects item results for checklist items outside the
	// execution's checklist and excludes such results from progress.
	StrictMembership bool
	// MediaBaseURL prefixes relative photo references in progress output.
	MediaBaseURL string
}

type Service struct {
	catalog    ports.CatalogRepository
	checklists ports.ChecklistRepository
	sheets     ports.ProcessSheetRepository
	executions ports.ExecutionRepository
	tasks      ports.TaskRepository
	users      ports.UserRepository
	uow        ports.UnitOfWork
	kv         ports.KeyValueStore
	events     ports.EventPublisher
	validate   *validator.Validate
	opts       Options
}

// NewService wires quality usecases. A nil events publisher drops notifications.
func NewService(
	catalog ports.CatalogRepository,
	checklists ports.ChecklistRepository,
	sheets ports.ProcessSheetRepository,
	executions ports.ExecutionRepository,
	tasks ports.TaskRepository,
	users ports.UserRepository,
	uow ports.UnitOfWork,
	kv ports.KeyValueStore,
	events ports.EventPublisher,
	opts Options,
) *Service {
	return &Service{
		catalog:    catalog,
		checklists: checklists,
		sheets:     sheets,
		executions: executions,
		tasks:      tasks,
		users:      users,
		uow:        uow,
		kv:         kv,
		events:     events,
		validate:   newValidator(),
		opts:       opts,
	}
}
