package quality

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
	"pqms/internal/infrastructure/kvstore"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/infrastructure/persistence/sqlite/repository"
	"pqms/internal/infrastructure/persistence/sqlite/uow"
	"pqms/internal/ports"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

func setupService(t *testing.T, opts Options) (*Service, *recordingPublisher) {
	t.Helper()

	pub := &recordingPublisher{}
	return newTestService(openTestDB(t), opts, pub), pub
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "quality.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newTestService(db *gorm.DB, opts Options, pub ports.EventPublisher) *Service {
	return NewService(
		repository.NewCatalogRepository(db),
		repository.NewChecklistRepository(db),
		repository.NewProcessSheetRepository(db),
		repository.NewExecutionRepository(db),
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		uow.NewUnitOfWork(db),
		kvstore.NewSQLiteStore(db),
		pub,
		opts,
	)
}

func makeUser(t *testing.T, svc *Service, username string) UserView {
	t.Helper()

	user, err := svc.CreateUser(context.Background(), UserPayload{Username: Some(username)})
	require.NoError(t, err)
	return user
}

func makeCheckItems(t *testing.T, svc *Service, n int) []uint64 {
	t.Helper()

	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		item, err := svc.CreateCheckItem(context.Background(), CheckItemPayload{Name: Some("dimension")})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	return ids
}

func makeChecklist(t *testing.T, svc *Service, checkItemIDs []uint64) ChecklistView {
	t.Helper()

	specs := make([]ChecklistItemSpec, 0, len(checkItemIDs))
	for _, id := range checkItemIDs {
		specs = append(specs, ChecklistItemSpec{CheckItemID: id})
	}
	checklist, err := svc.CreateChecklist(context.Background(), ChecklistPayload{
		Name:       Some("incoming inspection"),
		ItemsWrite: Some(specs),
	})
	require.NoError(t, err)
	return checklist
}

// makeExecution records one result per status against the first checklist items.
func makeExecution(t *testing.T, svc *Service, checklist ChecklistView, sheetID *uint64, statuses ...string) ExecutionView {
	t.Helper()

	results := make([]ItemResultSpec, 0, len(statuses))
	for i, status := range statuses {
		results = append(results, ItemResultSpec{ChecklistItemID: checklist.Items[i].ID, Status: status})
	}
	payload := ExecutionPayload{
		ChecklistID:      Some(checklist.ID),
		ItemResultsWrite: Some(results),
	}
	if sheetID != nil {
		payload.ProcessSheetID = Some(*sheetID)
	}
	execution, err := svc.CreateExecution(context.Background(), payload, "")
	require.NoError(t, err)
	return execution
}

func TestChecklistFullReplaceAssignsIndexOrders(t *testing.T) {
	svc, pub := setupService(t, Options{})
	ctx := context.Background()
	ids := makeCheckItems(t, svc, 5)
	checklist := makeChecklist(t, svc, ids[:2])
	require.Len(t, checklist.Items, 2)

	updated, err := svc.UpdateChecklist(ctx, checklist.ID, ChecklistPayload{
		Name: Some("renamed"),
		ItemsWrite: Some([]ChecklistItemSpec{
			{CheckItemID: ids[4]},
			{CheckItemID: ids[3]},
			{CheckItemID: ids[2]},
			{CheckItemID: ids[0]},
		}),
	}, false)
	require.NoError(t, err)

	require.Len(t, updated.Items, 4)
	for i, want := range []uint64{ids[4], ids[3], ids[2], ids[0]} {
		assert.Equal(t, i, updated.Items[i].Order)
		assert.Equal(t, want, updated.Items[i].CheckItem.ID)
	}
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, checklist.Version+1, updated.Version)
	assert.Contains(t, pub.Subjects(), subjectChecklistSaved)
}

func TestChecklistExplicitOrderOverridesIndex(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	ids := makeCheckItems(t, svc, 2)

	late := 10
	checklist, err := svc.CreateChecklist(ctx, ChecklistPayload{
		Name: Some("ordered"),
		ItemsWrite: Some([]ChecklistItemSpec{
			{CheckItemID: ids[0], Order: &late},
			{CheckItemID: ids[1]},
		}),
	})
	require.NoError(t, err)

	require.Len(t, checklist.Items, 2)
	assert.Equal(t, ids[1], checklist.Items[0].CheckItem.ID)
	assert.Equal(t, 1, checklist.Items[0].Order)
	assert.Equal(t, ids[0], checklist.Items[1].CheckItem.ID)
	assert.Equal(t, 10, checklist.Items[1].Order)
}

func TestChecklistUpdateWithoutItemsKeepsChildren(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ids := makeCheckItems(t, svc, 3)
	checklist := makeChecklist(t, svc, ids)

	updated, err := svc.UpdateChecklist(context.Background(), checklist.ID, ChecklistPayload{
		Description: Some("only the description changes"),
	}, true)
	require.NoError(t, err)

	require.Len(t, updated.Items, 3)
	assert.Equal(t, checklist.Name, updated.Name)
	assert.Equal(t, "only the description changes", updated.Description)
}

func TestChecklistNestedWriteRollsBackOnMissingCheckItem(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	ids := makeCheckItems(t, svc, 2)
	checklist := makeChecklist(t, svc, ids)

	_, err := svc.UpdateChecklist(ctx, checklist.ID, ChecklistPayload{
		Name:       Some("should not stick"),
		ItemsWrite: Some([]ChecklistItemSpec{{CheckItemID: ids[0]}, {CheckItemID: 9999}}),
	}, false)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "items_write", errs.FieldOf(err))

	current, err := svc.GetChecklist(ctx, checklist.ID)
	require.NoError(t, err)
	assert.Equal(t, checklist.Name, current.Name)
	assert.Equal(t, checklist.Version, current.Version)
	assert.Len(t, current.Items, 2)
}

func TestChecklistDuplicateCheckItemInPayload(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ids := makeCheckItems(t, svc, 1)

	_, err := svc.CreateChecklist(context.Background(), ChecklistPayload{
		Name:       Some("dup"),
		ItemsWrite: Some([]ChecklistItemSpec{{CheckItemID: ids[0]}, {CheckItemID: ids[0]}}),
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	lists, err := svc.ListChecklists(context.Background(), ports.ChecklistFilter{})
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestAppendChecklistItem(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	ids := makeCheckItems(t, svc, 3)
	checklist := makeChecklist(t, svc, ids[:2])

	appended, err := svc.AppendChecklistItem(ctx, checklist.ID, ChecklistItemSpec{CheckItemID: ids[2], Required: true})
	require.NoError(t, err)
	assert.Equal(t, 2, appended.Order)
	assert.True(t, appended.Required)

	_, err = svc.AppendChecklistItem(ctx, checklist.ID, ChecklistItemSpec{CheckItemID: ids[0]})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	items, err := svc.ListChecklistItems(ctx, checklist.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestCheckItemDeleteProtectedWhileUsed(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	ids := makeCheckItems(t, svc, 2)
	makeChecklist(t, svc, ids[:1])

	err := svc.DeleteCheckItem(ctx, ids[0])
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	_, err = svc.GetCheckItem(ctx, ids[0])
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCheckItem(ctx, ids[1]))
	_, err = svc.GetCheckItem(ctx, ids[1])
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestCheckItemValidation(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()

	_, err := svc.CreateCheckItem(ctx, CheckItemPayload{Name: Some("x"), Type: Some("color")})
	assert.Equal(t, "type", errs.FieldOf(err))

	_, err = svc.CreateCheckItem(ctx, CheckItemPayload{Name: Some("x"), MinValue: Some(5.0), MaxValue: Some(1.0)})
	assert.Equal(t, "min_value", errs.FieldOf(err))

	_, err = svc.CreateCheckItem(ctx, CheckItemPayload{Name: Some("x"), CategoryID: Some(uint64(42))})
	assert.Equal(t, "category_id", errs.FieldOf(err))

	_, err = svc.CreateCheckItem(ctx, CheckItemPayload{})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "name", errs.FieldOf(err))
}

func TestExecutionProgressTruncates(t *testing.T) {
	cases := []struct {
		name      string
		statuses  []string
		completed int
		progress  int
	}{
		{name: "one of four", statuses: []string{"OK"}, completed: 1, progress: 25},
		{name: "three of four", statuses: []string{"OK", "NG", "OK"}, completed: 3, progress: 75},
		{name: "all skipped", statuses: []string{"SKIP", "SKIP", "SKIP", "SKIP"}, completed: 0, progress: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := setupService(t, Options{})
			checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 4))
			execution := makeExecution(t, svc, checklist, nil, tc.statuses...)

			progress, err := svc.ExecutionProgress(context.Background(), execution.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, progress.TotalItems)
			assert.Equal(t, tc.completed, progress.CompletedItems)
			assert.Equal(t, tc.progress, progress.Progress)
			assert.Len(t, progress.Results, len(tc.statuses))
		})
	}
}

func TestExecutionProgressZeroTotal(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	other := makeChecklist(t, svc, makeCheckItems(t, svc, 1))
	empty := makeChecklist(t, svc, nil)

	execution, err := svc.CreateExecution(ctx, ExecutionPayload{
		ChecklistID:      Some(empty.ID),
		ItemResultsWrite: Some([]ItemResultSpec{{ChecklistItemID: other.Items[0].ID}}),
	}, "")
	require.NoError(t, err)

	progress, err := svc.ExecutionProgress(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalItems)
	assert.Equal(t, 1, progress.CompletedItems)
	assert.Equal(t, 0, progress.Progress)
}

func TestProcessSheetProgressIsMaximum(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 10))

	sheet, err := svc.CreateProcessSheet(ctx, ProcessSheetPayload{
		Name:        Some("lot 42"),
		ChecklistID: Some(checklist.ID),
	})
	require.NoError(t, err)

	ok := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "OK"
		}
		return out
	}
	makeExecution(t, svc, checklist, &sheet.ID, ok(2)...)
	makeExecution(t, svc, checklist, &sheet.ID, ok(8)...)
	makeExecution(t, svc, checklist, &sheet.ID, ok(5)...)

	progress, err := svc.ProcessSheetProgress(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalItems)
	assert.Equal(t, 80, progress.ProjectProgress)
	require.Len(t, progress.Executions, 3)
	got := []int{progress.Executions[0].Progress, progress.Executions[1].Progress, progress.Executions[2].Progress}
	assert.Equal(t, []int{20, 80, 50}, got)

	stored, err := svc.GetProcessSheet(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Progress)
}

func TestProcessSheetProgressWithoutExecutions(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 3))

	sheet, err := svc.CreateProcessSheet(ctx, ProcessSheetPayload{Name: Some("idle"), ChecklistID: Some(checklist.ID)})
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.Priority)
	assert.Equal(t, string(domainquality.ProcessPlanning), sheet.Status)

	progress, err := svc.ProcessSheetProgress(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.ProjectProgress)
	assert.Equal(t, 3, progress.TotalItems)
	assert.NotNil(t, progress.Executions)
	assert.Empty(t, progress.Executions)
}

func TestProcessSheetProgressValidation(t *testing.T) {
	svc, _ := setupService(t, Options{})

	_, err := svc.CreateProcessSheet(context.Background(), ProcessSheetPayload{Name: Some("x"), Progress: Some(101)})
	assert.Equal(t, "progress", errs.FieldOf(err))

	_, err = svc.CreateProcessSheet(context.Background(), ProcessSheetPayload{Name: Some("x"), PlannedStart: Some("2024/01/01")})
	assert.Equal(t, "planned_start", errs.FieldOf(err))
}

func TestStrictMembershipRejectsForeignResults(t *testing.T) {
	ctx := context.Background()

	for _, strict := range []bool{false, true} {
		svc, _ := setupService(t, Options{StrictMembership: strict})
		own := makeChecklist(t, svc, makeCheckItems(t, svc, 2))
		foreign := makeChecklist(t, svc, makeCheckItems(t, svc, 1))

		_, err := svc.CreateExecution(ctx, ExecutionPayload{
			ChecklistID: Some(own.ID),
			ItemResultsWrite: Some([]ItemResultSpec{
				{ChecklistItemID: own.Items[0].ID},
				{ChecklistItemID: foreign.Items[0].ID},
			}),
		}, "")
		if strict {
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
			assert.Equal(t, "item_results_write[1].checklist_item_id", errs.FieldOf(err))
			continue
		}
		require.NoError(t, err)
	}
}

func TestStrictProgressExcludesForeignResults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	lenient := newTestService(db, Options{}, &recordingPublisher{})
	strict := newTestService(db, Options{StrictMembership: true}, &recordingPublisher{})

	own := makeChecklist(t, lenient, makeCheckItems(t, lenient, 2))
	foreign := makeChecklist(t, lenient, makeCheckItems(t, lenient, 1))
	execution, err := lenient.CreateExecution(ctx, ExecutionPayload{
		ChecklistID: Some(own.ID),
		ItemResultsWrite: Some([]ItemResultSpec{
			{ChecklistItemID: own.Items[0].ID, Status: "OK"},
			{ChecklistItemID: foreign.Items[0].ID, Status: "OK"},
		}),
	}, "")
	require.NoError(t, err)

	loose, err := lenient.ExecutionProgress(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loose.CompletedItems)
	assert.Equal(t, 100, loose.Progress)

	progress, err := strict.ExecutionProgress(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TotalItems)
	assert.Equal(t, 1, progress.CompletedItems)
	assert.Equal(t, 50, progress.Progress)
	assert.Len(t, progress.Results, 2)
}

func TestStrictChecklistSwitchRechecksStoredResults(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, Options{StrictMembership: true})
	first := makeChecklist(t, svc, makeCheckItems(t, svc, 2))
	second := makeChecklist(t, svc, makeCheckItems(t, svc, 2))
	execution := makeExecution(t, svc, first, nil, "OK")

	_, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		ChecklistID: Some(second.ID),
	}, true)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "checklist_id", errs.FieldOf(err))
	assert.ErrorIs(t, err, domainquality.ErrStrandedResults)

	current, err := svc.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ChecklistID)

	switched, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		ChecklistID: Some(second.ID),
		ItemResultsWrite: Some([]ItemResultSpec{
			{ChecklistItemID: second.Items[1].ID, Status: "NG"},
		}),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, second.ID, switched.ChecklistID)
	require.Len(t, switched.ItemResults, 1)

	emptied, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		ChecklistID:      Some(first.ID),
		ItemResultsWrite: Some([]ItemResultSpec{}),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, emptied.ChecklistID)
	assert.Empty(t, emptied.ItemResults)
}

func TestLenientChecklistSwitchKeepsResults(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, Options{})
	first := makeChecklist(t, svc, makeCheckItems(t, svc, 1))
	second := makeChecklist(t, svc, makeCheckItems(t, svc, 1))
	execution := makeExecution(t, svc, first, nil, "OK")

	switched, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		ChecklistID: Some(second.ID),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, second.ID, switched.ChecklistID)
	assert.Len(t, switched.ItemResults, 1)
}

func TestExecutorMustBeKnownActiveUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, Options{})
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 1))

	_, err := svc.CreateExecution(ctx, ExecutionPayload{ChecklistID: Some(checklist.ID)}, "ghost")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "executor", errs.FieldOf(err))

	anonymous, err := svc.CreateExecution(ctx, ExecutionPayload{ChecklistID: Some(checklist.ID)}, "  ")
	require.NoError(t, err)
	assert.Nil(t, anonymous.ExecutorID)
}

func TestDeleteUserClearsExecutor(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, Options{})
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 1))
	inspector := makeUser(t, svc, "inspector01")
	other := makeUser(t, svc, "inspector02")

	mine, err := svc.CreateExecution(ctx, ExecutionPayload{ChecklistID: Some(checklist.ID)}, "inspector01")
	require.NoError(t, err)
	theirs, err := svc.CreateExecution(ctx, ExecutionPayload{ChecklistID: Some(checklist.ID)}, "inspector02")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, inspector.ID))

	orphaned, err := svc.GetExecution(ctx, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, orphaned.ExecutorID)

	kept, err := svc.GetExecution(ctx, theirs.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.ExecutorID)
	assert.Equal(t, other.ID, *kept.ExecutorID)

	_, err = svc.GetUser(ctx, inspector.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(svc.DeleteUser(ctx, inspector.ID)))
}

func TestUserWritesAndSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, Options{})

	sato, err := svc.CreateUser(ctx, UserPayload{
		Username:    Some(" sato.k "),
		Email:       Some("sato@example.com"),
		DisplayName: Some("Sato Kenji"),
		Department:  Some("Assembly"),
	})
	require.NoError(t, err)
	assert.Equal(t, "sato.k", sato.Username)
	assert.True(t, sato.IsActive)
	assert.False(t, sato.IsStaff)
	makeUser(t, svc, "tanaka")

	_, err = svc.CreateUser(ctx, UserPayload{Username: Some("sato.k")})
	require.Error(t, err)
	assert.Equal(t, "username", errs.FieldOf(err))

	_, err = svc.CreateUser(ctx, UserPayload{Username: Some("two words")})
	assert.Equal(t, "username", errs.FieldOf(err))

	_, err = svc.CreateUser(ctx, UserPayload{Username: Some("kato"), Email: Some("not-an-email")})
	assert.Equal(t, "email", errs.FieldOf(err))

	found, err := svc.ListUsers(ctx, ports.UserFilter{Search: "assembly"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, sato.ID, found[0].ID)

	all, err := svc.ListUsers(ctx, ports.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID, all[1].ID)

	patched, err := svc.UpdateUser(ctx, sato.ID, UserPayload{Department: Some("Final inspection")}, true)
	require.NoError(t, err)
	assert.Equal(t, "sato.k", patched.Username)
	assert.Equal(t, "Final inspection", patched.Department)

	_, err = svc.UpdateUser(ctx, sato.ID, UserPayload{Email: Some("x@example.com")}, false)
	assert.Equal(t, "username", errs.FieldOf(err))
}

func TestExecutionVersionConflict(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 2))
	execution := makeExecution(t, svc, checklist, nil, "OK")

	_, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		Status:  Some("running"),
		Version: Some(execution.Version + 5),
		ItemResultsWrite: Some([]ItemResultSpec{
			{ChecklistItemID: checklist.Items[0].ID},
			{ChecklistItemID: checklist.Items[1].ID},
		}),
	}, true)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	current, err := svc.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", current.Status)
	assert.Len(t, current.ItemResults, 1)

	updated, err := svc.UpdateExecution(ctx, execution.ID, ExecutionPayload{
		Status:  Some("running"),
		Version: Some(execution.Version),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "running", updated.Status)
	assert.Equal(t, execution.Version+1, updated.Version)
	assert.Len(t, updated.ItemResults, 1)
}

func TestExecutionRoundTripKeepsInsertionOrder(t *testing.T) {
	svc, pub := setupService(t, Options{MediaBaseURL: "https://media.example.com/"})
	ctx := context.Background()
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 3))
	inspector := makeUser(t, svc, "inspector01")

	execution, err := svc.CreateExecution(ctx, ExecutionPayload{
		ChecklistID: Some(checklist.ID),
		ItemResultsWrite: Some([]ItemResultSpec{
			{ChecklistItemID: checklist.Items[2].ID, Status: "NG", Value: "3.2"},
			{ChecklistItemID: checklist.Items[0].ID, Status: "OK"},
			{ChecklistItemID: checklist.Items[1].ID, Status: "SKIP", Note: "n/a"},
		}),
	}, "inspector01")
	require.NoError(t, err)
	require.NotNil(t, execution.ExecutorID)
	assert.Equal(t, inspector.ID, *execution.ExecutorID)

	first := execution.ItemResults[0].ID
	for _, image := range []string{"execution_photos/b.jpg", "https://cdn.example.com/a.jpg"} {
		_, err := svc.CreatePhoto(ctx, PhotoPayload{ItemResultID: Some(first), Image: Some(image)})
		require.NoError(t, err)
	}

	again, err := svc.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, again.ItemResults, 3)
	assert.Equal(t, checklist.Items[2].ID, again.ItemResults[0].ChecklistItem.ID)
	assert.Equal(t, checklist.Items[0].ID, again.ItemResults[1].ChecklistItem.ID)
	assert.Equal(t, checklist.Items[1].ID, again.ItemResults[2].ChecklistItem.ID)
	assert.Equal(t, []string{"NG", "OK", "SKIP"}, []string{again.ItemResults[0].Status, again.ItemResults[1].Status, again.ItemResults[2].Status})
	require.Len(t, again.ItemResults[0].Photos, 2)
	assert.Equal(t, "execution_photos/b.jpg", again.ItemResults[0].Photos[0].Image)

	progress, err := svc.ExecutionProgress(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://media.example.com/execution_photos/b.jpg",
		"https://cdn.example.com/a.jpg",
	}, progress.Results[0].Photos)
	assert.Equal(t, "dimension", progress.Results[0].ItemName)
	assert.Equal(t, 2, progress.CompletedItems)
	assert.Equal(t, 66, progress.Progress)

	require.NoError(t, svc.DeleteExecution(ctx, execution.ID))
	_, err = svc.GetExecution(ctx, execution.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Contains(t, pub.Subjects(), subjectExecutionDeleted)
}

func TestChecklistDeleteProtectedByExecutions(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()
	checklist := makeChecklist(t, svc, makeCheckItems(t, svc, 1))
	makeExecution(t, svc, checklist, nil, "OK")

	err := svc.DeleteChecklist(ctx, checklist.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	_, err = svc.UpdateChecklist(ctx, checklist.ID, ChecklistPayload{
		ItemsWrite: Some([]ChecklistItemSpec{}),
	}, true)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestSettingsSeedGetAndUpdate(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()

	wrote, err := svc.SeedSettings(ctx)
	require.NoError(t, err)
	assert.True(t, wrote)
	wrote, err = svc.SeedSettings(ctx)
	require.NoError(t, err)
	assert.False(t, wrote)

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ja", settings.Language)
	assert.Equal(t, 60, settings.SessionTimeoutMinutes)

	patched, err := svc.UpdateSettings(ctx, SettingsPayload{Language: Some("en")}, true)
	require.NoError(t, err)
	assert.Equal(t, "en", patched.Language)
	assert.Equal(t, settings.SystemName, patched.SystemName)

	_, err = svc.UpdateSettings(ctx, SettingsPayload{BackupFrequency: Some("yearly")}, true)
	require.Error(t, err)
	assert.Equal(t, "backup_frequency", errs.FieldOf(err))

	replaced, err := svc.UpdateSettings(ctx, SettingsPayload{SystemName: Some("QA")}, false)
	require.NoError(t, err)
	assert.Equal(t, "QA", replaced.SystemName)
	assert.Equal(t, "ja", replaced.Language)
}

func TestTaskDefaultsAndFilter(t *testing.T) {
	svc, _ := setupService(t, Options{})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskPayload{Title: Some("calibrate"), DueDate: Some("2026-03-01")})
	require.NoError(t, err)
	assert.Equal(t, "todo", task.Status)
	assert.Equal(t, "medium", task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-03-01", *task.DueDate)

	updated, err := svc.UpdateTask(ctx, task.ID, TaskPayload{Status: Some("done"), DueDate: Null[string]()}, true)
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)
	assert.Nil(t, updated.DueDate)

	_, err = svc.UpdateTask(ctx, task.ID, TaskPayload{Status: Some("doing")}, false)
	assert.Equal(t, "title", errs.FieldOf(err))
}
