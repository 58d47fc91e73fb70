// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies each factory accepts them (storage, summarizer)
// and returns a function with exactly that signature:
//
//	router.HandleFunc("POST /api/students", student.New(storage))
//
// New(storage) is called ONCE at startup; the returned closure runs on
// every request.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aanand-mishra/students-api/internal/metrics"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/summary"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// Summarizer produces a natural-language description of a student.
// *summary.Client satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, name string, age int, email string) (string, error)
}

// SummaryObserver records the outcome of each summary attempt.
// *metrics.Metrics satisfies it.
type SummaryObserver interface {
	ObserveSummary(outcome string)
}

// validate is shared; a Validate caches struct metadata and is safe for
// concurrent use.
var validate = validator.New()

// ─────────────────────────────────────────────────────────────────────────────
// Shared request helpers
// ─────────────────────────────────────────────────────────────────────────────

var (
	errEmptyBody = errors.New("request body is empty")
	errInvalidID = errors.New("invalid id: must be a UUID")
)

// parseID returns the canonical form of the {id} path segment.
func parseID(r *http.Request) (string, error) {
	u, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", errInvalidID
	}
	return u.String(), nil
}

// decodeInput reads and validates a StudentInput body. It writes the 400
// response itself and reports false when the request must stop.
func decodeInput(w http.ResponseWriter, r *http.Request) (types.StudentInput, bool) {
	var in types.StudentInput

	err := json.NewDecoder(r.Body).Decode(&in)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errEmptyBody))
		return in, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}

	if err := validate.Struct(in); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return in, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}

	return in, true
}

// writeStoreError maps storage errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrInvalidStudent):
		status = http.StatusBadRequest
	}
	response.WriteJSON(w, status, response.GeneralError(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "name": "Ada Lovelace", "email": "ada@example.com", "age": 30 }
//
// Success response (201 Created): the stored student, including its id.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — another student already has this email
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		student, err := storage.CreateStudent(in.Name, in.Email, *in.Age)
		if err != nil {
			slog.Warn("error creating student", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("student created", slog.String("id", student.ID))
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a UUID
//	404 Not Found    — no student with this id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("getting a student", slog.String("id", id))

		student, err := storage.GetStudentByID(id)
		if err != nil {
			slog.Error("error getting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students. An empty store yields [] (not null).
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student; the id is preserved.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, or validation failure
//	404 Not Found    — no student with this id
//	409 Conflict     — a different student already has the new email
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("updating a student", slog.String("id", id))

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		updated, err := storage.UpdateStudentByID(id, in.Student())
		if err != nil {
			slog.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id} and answers 204 No Content.
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("deleting a student", slog.String("id", id))

		if err := storage.DeleteStudentByID(id); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Summary handles GET /api/students/{id}/summary
//
// The record is read first and the store lock is released before the
// generation call goes out, so a slow generator never blocks writers.
//
// Success response (200 OK):
//
//	{ "summary": "Ada Lovelace is a 30-year-old student who ..." }
//
// Error responses:
//
//	400 Bad Request          — id is not a UUID
//	404 Not Found            — no student with this id
//	503 Service Unavailable  — the generation service failed
//
// ─────────────────────────────────────────────────────────────────────────────
func Summary(storage storage.Storage, summarizer Summarizer, observer SummaryObserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("summarizing a student", slog.String("id", id))

		student, err := storage.GetStudentByID(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		text, err := summarizer.Summarize(r.Context(), student.Name, student.Age, student.Email)
		if err != nil {
			slog.Error("error generating summary",
				slog.String("id", id),
				slog.String("error", err.Error()))

			if errors.Is(err, summary.ErrGenerationUnavailable) {
				observer.ObserveSummary(metrics.OutcomeUnavailable)
				response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
				return
			}
			observer.ObserveSummary(metrics.OutcomeError)
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		observer.ObserveSummary(metrics.OutcomeOK)
		response.WriteJSON(w, http.StatusOK, types.Summary{Summary: text})
	}
}

// Register mounts every student route on mux, each wrapped with m's
// request instrumentation.
//
// Route table:
//
//	POST   /api/students              → create a new student
//	GET    /api/students              → list all students
//	GET    /api/students/{id}         → get one student by ID
//	PUT    /api/students/{id}         → update a student
//	DELETE /api/students/{id}         → delete a student
//	GET    /api/students/{id}/summary → generated profile summary
func Register(mux *http.ServeMux, storage storage.Storage, summarizer Summarizer, m *metrics.Metrics) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/students", New(storage)},
		{"GET /api/students", GetList(storage)},
		{"GET /api/students/{id}", GetByID(storage)},
		{"PUT /api/students/{id}", Update(storage)},
		{"DELETE /api/students/{id}", Delete(storage)},
		{"GET /api/students/{id}/summary", Summary(storage, summarizer, m)},
	}

	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, m.Instrument(rt.pattern, rt.handler))
	}
}
