package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"resumidorDeAtas/internal/models"
)

// jobWS streams stage progress for one job until the client disconnects.
func (a *App) jobWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := a.store.Get(jobID)
	if err != nil {
		a.respondJSON(w, http.StatusNotFound, map[string]string{"detail": "job not found"})
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	a.mu.Lock()
	if a.subs[jobID] == nil {
		a.subs[jobID] = make(map[*websocket.Conn]struct{})
	}
	a.subs[jobID][conn] = struct{}{}
	a.mu.Unlock()

	_ = conn.WriteJSON(models.ProgressEvent{
		ID:     job.ID,
		Status: job.Status,
		Error:  job.Error,
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	a.mu.Lock()
	delete(a.subs[jobID], conn)
	a.mu.Unlock()
	_ = conn.Close()
}

func (a *App) broadcast(jobID string, evt models.ProgressEvent) {
	a.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(a.subs[jobID]))
	for c := range a.subs[jobID] {
		conns = append(conns, c)
	}
	a.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(evt); err != nil {
			a.mu.Lock()
			delete(a.subs[jobID], c)
			a.mu.Unlock()
			_ = c.Close()
		}
	}
}
