package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pqms/internal/usecase/quality"
)

const remoteUserHeader = "X-Remote-User"

type handler struct {
	svc *quality.Service
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists browser origins granted CORS access.
	AllowedOrigins []string
}

// NewRouter exposes the quality service as a JSON resource API under /api.
func NewRouter(svc *quality.Service, opts Options) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/schema", h.schema)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", create(svc.CreateCategory))
			r.Get("/{id}", getByID(svc.GetCategory))
			r.Put("/{id}", update(svc.UpdateCategory))
			r.Patch("/{id}", update(svc.UpdateCategory))
			r.Delete("/{id}", deleteByID(svc.DeleteCategory))
		})

		r.Route("/check-items", func(r chi.Router) {
			r.Get("/", h.listCheckItems)
			r.Post("/", create(svc.CreateCheckItem))
			r.Get("/{id}", getByID(svc.GetCheckItem))
			r.Put("/{id}", update(svc.UpdateCheckItem))
			r.Patch("/{id}", update(svc.UpdateCheckItem))
			r.Delete("/{id}", deleteByID(svc.DeleteCheckItem))
		})

		r.Route("/checklists", func(r chi.Router) {
			r.Get("/", h.listChecklists)
			r.Post("/", create(svc.CreateChecklist))
			r.Get("/{id}", getByID(svc.GetChecklist))
			r.Put("/{id}", update(svc.UpdateChecklist))
			r.Patch("/{id}", update(svc.UpdateChecklist))
			r.Delete("/{id}", deleteByID(svc.DeleteChecklist))
			r.Get("/{id}/items", getByID(svc.ListChecklistItems))
			r.Post("/{id}/items", h.appendChecklistItem)
		})

		r.Route("/checklist-items", func(r chi.Router) {
			r.Get("/", h.listChecklistItems)
			r.Get("/{id}", getByID(svc.GetChecklistItem))
		})

		r.Route("/process-sheets", func(r chi.Router) {
			r.Get("/", h.listProcessSheets)
			r.Post("/", create(svc.CreateProcessSheet))
			r.Get("/{id}", getByID(svc.GetProcessSheet))
			r.Put("/{id}", update(svc.UpdateProcessSheet))
			r.Patch("/{id}", update(svc.UpdateProcessSheet))
			r.Delete("/{id}", deleteByID(svc.DeleteProcessSheet))
			r.Get("/{id}/progress", getByID(svc.ProcessSheetProgress))
		})

		r.Route("/executions", func(r chi.Router) {
			r.Get("/", h.listExecutions)
			r.Post("/", h.createExecution)
			r.Get("/{id}", getByID(svc.GetExecution))
			r.Put("/{id}", update(svc.UpdateExecution))
			r.Patch("/{id}", update(svc.UpdateExecution))
			r.Delete("/{id}", deleteByID(svc.DeleteExecution))
			r.Get("/{id}/progress", getByID(svc.ExecutionProgress))
		})

		r.Route("/execution-item-results", func(r chi.Router) {
			r.Get("/", h.listItemResults)
			r.Get("/{id}", getByID(svc.GetItemResult))
		})

		r.Route("/execution-photos", func(r chi.Router) {
			r.Get("/", h.listPhotos)
			r.Post("/", create(svc.CreatePhoto))
			r.Get("/{id}", getByID(svc.GetPhoto))
			r.Put("/{id}", update(svc.UpdatePhoto))
			r.Patch("/{id}", update(svc.UpdatePhoto))
			r.Delete("/{id}", deleteByID(svc.DeletePhoto))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", create(svc.CreateUser))
			r.Get("/{id}", getByID(svc.GetUser))
			r.Put("/{id}", update(svc.UpdateUser))
			r.Patch("/{id}", update(svc.UpdateUser))
			r.Delete("/{id}", deleteByID(svc.DeleteUser))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.listTasks)
			r.Post("/", create(svc.CreateTask))
			r.Get("/{id}", getByID(svc.GetTask))
			r.Put("/{id}", update(svc.UpdateTask))
			r.Patch("/{id}", update(svc.UpdateTask))
			r.Delete("/{id}", deleteByID(svc.DeleteTask))
		})

		r.Route("/system-settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Put("/", h.updateSettings)
			r.Patch("/", h.updateSettings)
		})
	})

	return r
}

func respond(w http.ResponseWriter, r *http.Request, status int, value any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, value)
}

func create[P, T any](fn func(context.Context, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p P
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := fn(r.Context(), p)
		respond(w, r, http.StatusCreated, out, err)
	}
}

func getByID[T any](fn func(context.Context, uint64) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := fn(r.Context(), id)
		respond(w, r, http.StatusOK, out, err)
	}
}

// update serves PUT as a full update and PATCH as a partial one.
func update[P, T any](fn func(context.Context, uint64, P, bool) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var p P
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := fn(r.Context(), id, p, r.Method == http.MethodPatch)
		respond(w, r, http.StatusOK, out, err)
	}
}

func deleteByID(fn func(context.Context, uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := fn(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
