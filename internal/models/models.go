package models

import "time"

// JobStatus represents the current state of a summarization job.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job tracks one end-to-end video-to-minutes request. The status field
// determines which other fields are populated: "processing" carries only the
// id, "done" carries title/transcription/summary, "error" carries error.
type Job struct {
	ID            string    `json:"job_id"`
	Status        JobStatus `json:"status"`
	Title         string    `json:"title,omitempty"`
	Transcription string    `json:"transcription,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Result holds the content produced by a successful pipeline run.
type Result struct {
	Title         string
	Transcription string
	Summary       string
}

// Stage identifies a pipeline phase in progress events.
type Stage string

const (
	StageDownload      Stage = "download"
	StageSegmentation  Stage = "segmentation"
	StageTranscription Stage = "transcription"
	StageSummarization Stage = "summarization"
)

// ProgressEvent is sent to clients over WebSocket while a job runs.
type ProgressEvent struct {
	ID      string    `json:"id"`
	Stage   Stage     `json:"stage,omitempty"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
}
