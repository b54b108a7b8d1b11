package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumidorDeAtas/internal/models"
	"resumidorDeAtas/internal/pipeline"
	"resumidorDeAtas/internal/segmenter"
	"resumidorDeAtas/internal/store"
)

// fakeStages implements every pipeline stage; gate (when set) blocks the
// download stage until released so tests can observe the processing state.
type fakeStages struct {
	gate        chan struct{}
	downloadErr error
}

func (f *fakeStages) Download(ctx context.Context, u, workDir string) (string, string, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.downloadErr != nil {
		return "", "", f.downloadErr
	}
	return "Sessão Ordinária 12", workDir + "/audio.m4a", nil
}

func (f *fakeStages) Split(ctx context.Context, audioPath string, maxSeconds int) ([]segmenter.Segment, error) {
	return []segmenter.Segment{{Index: 0, Path: audioPath}}, nil
}

func (f *fakeStages) Transcribe(ctx context.Context, segments []segmenter.Segment) (string, error) {
	return "transcrição completa da sessão", nil
}

func (f *fakeStages) Summarize(ctx context.Context, transcript string) (string, error) {
	return "Principais Pontos:\n- pauta aprovada", nil
}

func newTestApp(t *testing.T, fakes *fakeStages, origins []string) *App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pipe := pipeline.New(logger, fakes, fakes, fakes, fakes, t.TempDir(), 1390, time.Minute)
	return NewApp(logger, store.NewMemory(), pipe, t.TempDir(), origins, 2)
}

func startJob(t *testing.T, app *App, videoURL string) string {
	t.Helper()
	form := url.Values{"url": {videoURL}}
	req := httptest.NewRequest(http.MethodPost, "/start-job", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["job_id"])
	return body["job_id"]
}

func getStatus(t *testing.T, app *App, jobID string) (int, models.Job) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/job-status/"+jobID, nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	var job models.Job
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	}
	return rec.Code, job
}

func TestLiveness(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestJobStatusUnknownID(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"*"})

	code, _ := getStatus(t, app, "desconhecido")
	assert.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodGet, "/job-status/desconhecido", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	assert.JSONEq(t, `{"detail": "job not found"}`, rec.Body.String())
}

func TestStartJobRequiresURL(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/start-job", strings.NewReader("url="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndToEndSuccess(t *testing.T) {
	fakes := &fakeStages{gate: make(chan struct{})}
	app := newTestApp(t, fakes, []string{"*"})

	jobID := startJob(t, app, "https://example.com/video123")

	// the request path returned before the pipeline finished
	code, job := getStatus(t, app, jobID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusProcessing, job.Status)
	assert.Empty(t, job.Title)
	assert.Empty(t, job.Error)

	close(fakes.gate)

	require.Eventually(t, func() bool {
		_, job := getStatus(t, app, jobID)
		return job.Status == models.StatusDone
	}, 2*time.Second, 10*time.Millisecond)

	_, job = getStatus(t, app, jobID)
	assert.Equal(t, "Sessão Ordinária 12", job.Title)
	assert.Equal(t, "transcrição completa da sessão", job.Transcription)
	assert.True(t, strings.HasPrefix(job.Summary, "Principais Pontos:"))
	assert.Empty(t, job.Error)
}

func TestEndToEndFailure(t *testing.T) {
	fakes := &fakeStages{downloadErr: errors.New("vídeo privado ou inexistente")}
	app := newTestApp(t, fakes, []string{"*"})

	jobID := startJob(t, app, "https://example.com/nao-existe")

	require.Eventually(t, func() bool {
		_, job := getStatus(t, app, jobID)
		return job.Status == models.StatusError
	}, 2*time.Second, 10*time.Millisecond)

	_, job := getStatus(t, app, jobID)
	assert.NotEmpty(t, job.Error)
	assert.Empty(t, job.Title)
	assert.Empty(t, job.Transcription)
	assert.Empty(t, job.Summary)
}

func TestCORSDisallowedOrigin(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"https://camara.example.gov.br"})

	req := httptest.NewRequest(http.MethodGet, "/job-status/x", nil)
	req.Header.Set("Origin", "https://malicioso.example.com")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSAllowedOrigin(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"https://camara.example.gov.br"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://camara.example.gov.br")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://camara.example.gov.br", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestJobsPage(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"*"})
	startJob(t, app, "https://example.com/video123")

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Resumidor de Atas")
}

func TestDownloadMinutesNotReady(t *testing.T) {
	fakes := &fakeStages{gate: make(chan struct{})}
	app := newTestApp(t, fakes, []string{"*"})
	defer close(fakes.gate)

	jobID := startJob(t, app, "https://example.com/video123")

	req := httptest.NewRequest(http.MethodGet, "/ata/"+jobID, nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDownloadMinutesUnknownJob(t *testing.T) {
	app := newTestApp(t, &fakeStages{}, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/ata/desconhecido", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
