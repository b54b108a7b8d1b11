package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"resumidorDeAtas/internal/models"
	"resumidorDeAtas/internal/pipeline"
	"resumidorDeAtas/internal/store"
	"resumidorDeAtas/internal/summarizer"
	"resumidorDeAtas/templates"
)

type App struct {
	logger *slog.Logger

	router   *chi.Mux
	pipeline *pipeline.Pipeline
	store    store.Store

	workDir        string
	allowedOrigins []string

	jobSlots chan struct{}
	wg       sync.WaitGroup

	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewApp(logger *slog.Logger, st store.Store, pipe *pipeline.Pipeline, workDir string, allowedOrigins []string, maxConcurrentJobs int) *App {
	if maxConcurrentJobs <= 0 {
		maxConcurrentJobs = 2
	}

	app := &App{
		logger:         logger,
		router:         chi.NewRouter(),
		pipeline:       pipe,
		store:          st,
		workDir:        workDir,
		allowedOrigins: allowedOrigins,
		jobSlots:       make(chan struct{}, maxConcurrentJobs),
		subs:           make(map[string]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	app.registerRoutes()
	return app
}

func (a *App) Router() http.Handler {
	return a.router
}

// Wait blocks until all in-flight jobs finish; used on shutdown.
func (a *App) Wait() {
	a.wg.Wait()
}

func (a *App) registerRoutes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Recoverer)
	a.router.Use(a.corsMiddleware)

	a.router.Get("/", a.liveness)
	a.router.Get("/healthz", a.liveness)
	a.router.Post("/start-job", a.startJob)
	a.router.Get("/job-status/{job_id}", a.jobStatus)
	a.router.Get("/jobs", a.jobsPage)
	a.router.Get("/ata/{job_id}", a.downloadMinutes)
	a.router.Get("/ws/{job_id}", a.jobWS)
}

func (a *App) liveness(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "resumidorDeAtas",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// startJob creates the job record and returns its id immediately; the
// pipeline runs off the request path. URL reachability is not checked here.
func (a *App) startJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "formulário inválido"})
		return
	}

	url := strings.TrimSpace(r.PostFormValue("url"))
	if url == "" {
		a.respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "campo url é obrigatório"})
		return
	}

	jobID := a.SubmitJob(url)
	a.respondJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

func (a *App) jobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := a.store.Get(jobID)
	if err != nil {
		a.respondJSON(w, http.StatusNotFound, map[string]string{"detail": "job not found"})
		return
	}
	a.respondJSON(w, http.StatusOK, job)
}

func (a *App) jobsPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, templates.JobsPage(a.store.List()))
}

// downloadMinutes serves the finished summary as a .docx attachment.
func (a *App) downloadMinutes(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := a.store.Get(jobID)
	if err != nil {
		a.respondJSON(w, http.StatusNotFound, map[string]string{"detail": "job not found"})
		return
	}
	if job.Status != models.StatusDone {
		a.respondJSON(w, http.StatusConflict, map[string]string{"detail": "ata ainda não está pronta"})
		return
	}

	docxPath := filepath.Join(a.workDir, "ata_"+jobID+".docx")
	if err := summarizer.WriteMinutes(job.Title, job.Summary, docxPath); err != nil {
		a.logger.Error("failed to write docx", "job_id", jobID, "error", err)
		a.respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "erro ao gerar documento"})
		return
	}
	defer os.Remove(docxPath)

	w.Header().Set("Content-Disposition", "attachment; filename=\"ata_"+jobID+".docx\"")
	http.ServeFile(w, r, docxPath)
}

func (a *App) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		a.logger.Error("failed to render template", "error", err)
		http.Error(w, "erro ao renderizar página", http.StatusInternalServerError)
	}
}

func (a *App) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode json", "error", err)
	}
}

// corsMiddleware enforces the configured origin allow-list. Requests from
// disallowed origins are rejected before reaching any route.
func (a *App) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if !a.originAllowed(origin) {
				a.respondJSON(w, http.StatusForbidden, map[string]string{"detail": "origem não permitida"})
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *App) originAllowed(origin string) bool {
	for _, allowed := range a.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
