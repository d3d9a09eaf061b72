package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pqms/internal/bootstrap/logging"
	"pqms/internal/errs"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindConflict:
		status = http.StatusConflict
	}

	message := errs.Message(err)
	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Field:   errs.FieldOf(err),
	})
}

// decodeJSON reads one JSON object from the body. Malformed input is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validation("", "request body is empty")
		}
		return errs.Validationf("", "malformed JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NotFoundf("no resource with id %q", raw)
	}
	return id, nil
}

func queryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

func queryID(r *http.Request, name string) (*uint64, error) {
	raw := queryString(r, name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errs.Validationf(name, "%q is not a valid id", raw)
	}
	return &id, nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := queryString(r, name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.Validationf(name, "%q is not a valid integer", raw)
	}
	return &n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.ToLower(queryString(r, name))
	switch raw {
	case "":
		return nil, nil
	case "true", "1":
		v := true
		return &v, nil
	case "false", "0":
		v := false
		return &v, nil
	default:
		return nil, errs.Validationf(name, "%q is not a valid boolean", raw)
	}
}
