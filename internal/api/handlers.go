// Package api exposes HTTP handlers for the activity signup service.
package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"example.com/signup/internal/domain"
)

// IndexPath is where GET / redirects.
const IndexPath = "/static/index.html"

const maxFormBytes = 1 << 16

//go:embed static
var staticFiles embed.FS

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *zap.Logger
	static  http.Handler
	index   []byte
	modTime time.Time
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		panic(err)
	}
	return &Handler{
		service: service,
		logger:  logger,
		static:  http.StripPrefix("/static/", http.FileServerFS(sub)),
		index:   index,
		modTime: time.Now(),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{name}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{name}/unregister", h.unregister)
	mux.HandleFunc("GET "+IndexPath, h.indexPage)
	mux.Handle("GET /static/", h.static)
	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// indexPage answers IndexPath with the page itself. http.FileServer would
// redirect any path ending in index.html to its directory.
func (h *Handler) indexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", h.modTime, bytes.NewReader(h.index))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogView(h.service.ListActivities(r.Context())))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email, ok, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if !ok {
		h.writeDomainError(w, r, domain.ErrEmailRequired)
		return
	}

	conf, err := h.service.Signup(r.Context(), name, email)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", conf.Email, conf.Activity),
	})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email, ok, err := emailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if !ok {
		h.writeDomainError(w, r, domain.ErrEmailRequired)
		return
	}

	conf, err := h.service.Unregister(r.Context(), name, email)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", conf.Email, conf.Activity),
	})
}

// emailParam reads email from the query string, falling back to a form or
// JSON body. DELETE bodies are honoured too, unlike http.Request.FormValue.
// The boolean reports whether the parameter was supplied at all; an empty
// value is still a value.
func emailParam(r *http.Request) (string, bool, error) {
	if query := r.URL.Query(); query.Has("email") {
		return query.Get("email"), true, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return "", false, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body := io.LimitReader(r.Body, maxFormBytes)
	switch mediaType {
	case "application/x-www-form-urlencoded":
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", false, err
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return "", false, err
		}
		return values.Get("email"), values.Has("email"), nil
	case "application/json":
		var req EmailRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
		if req.Email == nil {
			return "", false, nil
		}
		return *req.Email, true, nil
	default:
		return "", false, nil
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
	case errors.Is(err, domain.ErrAlreadySignedUp):
		writeError(w, http.StatusBadRequest, "already_signed_up", "Student already signed up for this activity")
	case errors.Is(err, domain.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, "not_registered", "Student is not signed up for this activity")
	case errors.Is(err, domain.ErrActivityFull):
		writeError(w, http.StatusBadRequest, "activity_full", "Activity is full")
	case errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email is required")
	default:
		h.logger.Error("roster operation failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
