// Package admin exposes a read-mostly HTTP view of an App: registered tasks,
// worker presence, results, a stop command per worker and, optionally,
// prometheus metrics.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/dao"
	"github.com/viant/tasq/service/registry"
	"go.uber.org/zap"
)

// Handler serves admin routes
type Handler struct {
	app      *registry.App
	router   *mux.Router
	logger   *zap.Logger
	gatherer prometheus.Gatherer
}

// Option represents a handler option
type Option func(h *Handler)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithGatherer enables GET /metrics for gatherer
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = gatherer
	}
}

// TaskView describes a registered task
type TaskView struct {
	Name   string `json:"name"`
	Arg    string `json:"arg"`
	Result string `json:"result"`
}

// New creates an admin handler for app
func New(app *registry.App, opts ...Option) *Handler {
	ret := &Handler{app: app, router: mux.NewRouter(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ret)
	}
	ret.router.HandleFunc("/tasks", ret.listTasks).Methods(http.MethodGet)
	ret.router.HandleFunc("/workers", ret.listWorkers).Methods(http.MethodGet)
	ret.router.HandleFunc("/workers/{id}", ret.getWorker).Methods(http.MethodGet)
	ret.router.HandleFunc("/workers/{id}/stop", ret.stopWorker).Methods(http.MethodPost)
	ret.router.HandleFunc("/results/{id}", ret.getResult).Methods(http.MethodGet)
	if ret.gatherer != nil {
		ret.router.Handle("/metrics", promhttp.HandlerFor(ret.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return ret
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	kinds := h.app.Tasks()
	views := make([]*TaskView, 0, len(kinds))
	for _, kind := range kinds {
		views = append(views, &TaskView{Name: kind.Name, Arg: kind.ArgType(), Result: kind.ResultType()})
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) listWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.app.ListWorkers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if workers == nil {
		workers = []*message.WorkerInfo{}
	}
	h.writeJSON(w, http.StatusOK, workers)
}

func (h *Handler) getWorker(w http.ResponseWriter, r *http.Request) {
	info, err := h.worker(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) stopWorker(w http.ResponseWriter, r *http.Request) {
	info, err := h.worker(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err = h.app.QueueCommand(r.Context(), message.StopWorker, info.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("stop command queued", zap.String("worker", info.ID))
	h.writeJSON(w, http.StatusAccepted, map[string]string{"id": info.ID, "command": string(message.StopWorker)})
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := h.app.Result(r.Context(), id)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: result %v", dao.ErrNotFound, id)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) worker(r *http.Request) (*message.WorkerInfo, error) {
	id := mux.Vars(r)["id"]
	info, err := h.app.WorkerInfo(r.Context(), id)
	if err == nil && info == nil {
		err = fmt.Errorf("%w: worker %v", dao.ErrNotFound, id)
	}
	return info, err
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, dao.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("admin request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}
