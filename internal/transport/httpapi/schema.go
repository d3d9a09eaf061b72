package httpapi

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/usecase/quality"
)

var (
	schemaOnce sync.Once
	schemaDoc  map[string]*jsonschema.Schema
)

// resourceSchemas describes every resource representation the API returns.
func resourceSchemas() map[string]*jsonschema.Schema {
	schemaOnce.Do(func() {
		reflector := &jsonschema.Reflector{DoNotReference: true}
		schemaDoc = map[string]*jsonschema.Schema{
			"category":               reflector.Reflect(&quality.CategoryView{}),
			"check_item":             reflector.Reflect(&quality.CheckItemView{}),
			"checklist":              reflector.Reflect(&quality.ChecklistView{}),
			"checklist_item":         reflector.Reflect(&quality.ChecklistItemView{}),
			"process_sheet":          reflector.Reflect(&quality.ProcessSheetView{}),
			"execution":              reflector.Reflect(&quality.ExecutionView{}),
			"execution_item_result":  reflector.Reflect(&quality.ItemResultView{}),
			"execution_photo":        reflector.Reflect(&quality.ExecutionPhotoView{}),
			"execution_progress":     reflector.Reflect(&quality.ExecutionProgress{}),
			"process_sheet_progress": reflector.Reflect(&quality.ProcessSheetProgress{}),
			"task":                   reflector.Reflect(&quality.TaskView{}),
			"user":                   reflector.Reflect(&quality.UserView{}),
			"system_settings":        reflector.Reflect(&domainquality.SystemSettings{}),
		}
	})
	return schemaDoc
}

func (h *handler) schema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"title":     "pqms resource API",
		"resources": resourceSchemas(),
	})
}
