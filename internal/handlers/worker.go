package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"resumidorDeAtas/internal/models"
)

// SubmitJob registers a new job in processing state and launches its worker.
// Also used by the watch-folder ingestor, with a local file path as the url.
func (a *App) SubmitJob(url string) string {
	jobID := uuid.NewString()
	a.store.Create(jobID)
	a.logger.Info("job created", "job_id", jobID, "url", url)

	a.wg.Add(1)
	go a.runJob(jobID, url)

	return jobID
}

// runJob executes the pipeline for one job and writes its terminal state.
// A job transitions exactly once, to done or error; a failure in one job
// never affects the others.
func (a *App) runJob(jobID, url string) {
	defer a.wg.Done()

	a.jobSlots <- struct{}{}
	defer func() { <-a.jobSlots }()

	defer func() {
		if r := recover(); r != nil {
			a.failJob(jobID, fmt.Errorf("panic: %v", r))
		}
	}()

	notify := func(stage models.Stage) {
		a.broadcast(jobID, models.ProgressEvent{
			ID:     jobID,
			Stage:  stage,
			Status: models.StatusProcessing,
		})
	}

	result, err := a.pipeline.Run(context.Background(), jobID, url, notify)
	if err != nil {
		a.failJob(jobID, err)
		return
	}

	if err := a.store.Complete(jobID, result); err != nil {
		a.logger.Error("failed to finalize job", "job_id", jobID, "error", err)
		return
	}

	a.broadcast(jobID, models.ProgressEvent{
		ID:      jobID,
		Status:  models.StatusDone,
		Message: "ata concluída",
	})
}

func (a *App) failJob(jobID string, err error) {
	a.logger.Error("job failed", "job_id", jobID, "error", err)

	if serr := a.store.Fail(jobID, err.Error()); serr != nil {
		a.logger.Error("failed to record job failure", "job_id", jobID, "error", serr)
		return
	}

	a.broadcast(jobID, models.ProgressEvent{
		ID:     jobID,
		Status: models.StatusError,
		Error:  err.Error(),
	})
}
