package httpapi

import (
	"net/http"

	"pqms/internal/ports"
	"pqms/internal/usecase/quality"
)

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCategories(r.Context(), ports.CategoryFilter{Search: queryString(r, "search")})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listCheckItems(w http.ResponseWriter, r *http.Request) {
	required, err := queryBool(r, "required")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := queryID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListCheckItems(r.Context(), ports.CheckItemFilter{
		Type:       queryString(r, "type"),
		Required:   required,
		CategoryID: categoryID,
		Search:     queryString(r, "search"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listChecklists(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListChecklists(r.Context(), ports.ChecklistFilter{
		CategoryID: categoryID,
		Search:     queryString(r, "search"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) appendChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var spec quality.ChecklistItemSpec
	if err := decodeJSON(w, r, &spec); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.AppendChecklistItem(r.Context(), id, spec)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *handler) listChecklistItems(w http.ResponseWriter, r *http.Request) {
	checklistID, err := queryID(r, "checklist")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListAllChecklistItems(r.Context(), checklistID)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listProcessSheets(w http.ResponseWriter, r *http.Request) {
	priority, err := queryInt(r, "priority")
	if err != nil {
		writeError(w, r, err)
		return
	}
	checklistID, err := queryID(r, "checklist")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListProcessSheets(r.Context(), ports.ProcessSheetFilter{
		Status:      queryString(r, "status"),
		Assignee:    queryString(r, "assignee"),
		Priority:    priority,
		ChecklistID: checklistID,
		Search:      queryString(r, "search"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) createExecution(w http.ResponseWriter, r *http.Request) {
	var p quality.ExecutionPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.CreateExecution(r.Context(), p, r.Header.Get(remoteUserHeader))
	respond(w, r, http.StatusCreated, out, err)
}

func (h *handler) listExecutions(w http.ResponseWriter, r *http.Request) {
	checklistID, err := queryID(r, "checklist")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sheetID, err := queryID(r, "process_sheet")
	if err != nil {
		writeError(w, r, err)
		return
	}
	executorID, err := queryID(r, "executor")
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := ports.ExecutionFilter{
		Status:         queryString(r, "status"),
		ChecklistID:    checklistID,
		ProcessSheetID: sheetID,
		ExecutorID:     executorID,
		Search:         queryString(r, "search"),
	}
	// result= (empty) selects executions without a verdict.
	if r.URL.Query().Has("result") {
		result := queryString(r, "result")
		filter.Result = &result
	}

	out, err := h.svc.ListExecutions(r.Context(), filter)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listItemResults(w http.ResponseWriter, r *http.Request) {
	executionID, err := queryID(r, "execution")
	if err != nil {
		writeError(w, r, err)
		return
	}
	itemID, err := queryID(r, "checklist_item")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListItemResults(r.Context(), ports.ItemResultFilter{
		ExecutionID:     executionID,
		ChecklistItemID: itemID,
		Status:          queryString(r, "status"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listPhotos(w http.ResponseWriter, r *http.Request) {
	resultID, err := queryID(r, "item_result")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.ListPhotos(r.Context(), resultID)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListUsers(r.Context(), ports.UserFilter{Search: queryString(r, "search")})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListTasks(r.Context(), ports.TaskFilter{
		Status:   queryString(r, "status"),
		Priority: queryString(r, "priority"),
		Assignee: queryString(r, "assignee"),
		Search:   queryString(r, "search"),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetSettings(r.Context())
	respond(w, r, http.StatusOK, out, err)
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var p quality.SettingsPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.svc.UpdateSettings(r.Context(), p, r.Method == http.MethodPatch)
	respond(w, r, http.StatusOK, out, err)
}
