package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	msgIDRequired   = "id is required"
	msgNotFound     = "task not found"
	msgInternal     = "internal server error"
	msgTaskDeleted  = "task deleted"
	routeTasks      = "/api/tasks"
	routeTaskByID   = "/api/tasks/{id}"
	urlParamTaskKey = "id"
)

type errResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type handlers struct {
	uc     UseCases
	logger *slog.Logger
	now    func() time.Time
}

// RegisterRoutes binds the task endpoints under /api/tasks.
func RegisterRoutes(r chi.Router, uc UseCases, logger *slog.Logger) {
	h := &handlers{uc: uc, logger: logger, now: time.Now}
	h.register(r)
}

func (h *handlers) register(r chi.Router) {
	r.Get(routeTasks, h.listTasks)
	r.Post(routeTasks, h.createTask)
	r.Get(routeTaskByID, h.getTask)
	r.Put(routeTaskByID, h.updateTask)
	r.Delete(routeTaskByID, h.deleteTask)

	// chi never matches {id} against an empty segment; route the bare
	// trailing slash to the same handlers so taskID answers 400.
	r.Get(routeTasks+"/", h.getTask)
	r.Put(routeTasks+"/", h.updateTask)
	r.Delete(routeTasks+"/", h.deleteTask)
}

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.uc.List.Execute(r.Context())
	if err != nil {
		h.internalError(w, r, "list_tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(tasks))
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, found, err := h.uc.Get.Execute(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "get_task", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errResponse{Error: msgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, toDTO(t))
}

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(r.Body)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	t, err := h.uc.Create.Execute(r.Context(), req.toDomain(h.now()))
	if err != nil {
		h.internalError(w, r, "create_task", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(t))
}

// updateTask looks the task up first so the existing creation time can be
// carried over. A record deleted between the lookup and the write yields the
// same 404 as one that never existed.
func (h *handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	req, err := decodeUpdateRequest(r.Body)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	existing, found, err := h.uc.Get.Execute(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "update_task", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errResponse{Error: msgNotFound})
		return
	}

	updated, found, err := h.uc.Update.Execute(r.Context(), req.toDomain(id, existing.CreatedAt))
	if err != nil {
		h.internalError(w, r, "update_task", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errResponse{Error: msgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, toDTO(updated))
}

func (h *handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	deleted, err := h.uc.Delete.Execute(r.Context(), id)
	if err != nil {
		h.internalError(w, r, "delete_task", err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errResponse{Error: msgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgTaskDeleted})
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, urlParamTaskKey))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: msgIDRequired})
		return "", false
	}
	return id, true
}

func writeBadRequest(w http.ResponseWriter, err error) {
	msg := ErrInvalidBody.Error()
	if errors.Is(err, ErrBlankTitle) {
		msg = ErrBlankTitle.Error()
	}
	writeJSON(w, http.StatusBadRequest, errResponse{Error: msg})
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("task_store_error",
		slog.String("op", op),
		slog.String("req_id", chimw.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, errResponse{Error: msgInternal})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
