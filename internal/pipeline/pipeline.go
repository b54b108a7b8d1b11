// Package pipeline runs the four processing stages of one job in order:
// acquisition, segmentation, transcription, summarization.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"resumidorDeAtas/internal/models"
	"resumidorDeAtas/internal/segmenter"
)

// Downloader resolves a source URL into a title and a local audio file.
type Downloader interface {
	Download(ctx context.Context, url, workDir string) (title string, audioPath string, err error)
}

// Segmenter splits audio into ordered API-sized slices.
type Segmenter interface {
	Split(ctx context.Context, audioPath string, maxSeconds int) ([]segmenter.Segment, error)
}

// Transcriber converts ordered segments into one transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, segments []segmenter.Segment) (string, error)
}

// Summarizer produces the final minutes document from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// StageNotify reports stage starts; used for progress events. May be nil.
type StageNotify func(stage models.Stage)

// Pipeline composes the stages. Stages run strictly sequentially; any stage
// error aborts the run and all partial work is discarded.
type Pipeline struct {
	logger      *slog.Logger
	downloader  Downloader
	segmenter   Segmenter
	transcriber Transcriber
	summarizer  Summarizer

	workDir           string
	maxSegmentSeconds int
	callTimeout       time.Duration
}

func New(
	logger *slog.Logger,
	dl Downloader,
	seg Segmenter,
	tr Transcriber,
	sum Summarizer,
	workDir string,
	maxSegmentSeconds int,
	callTimeout time.Duration,
) *Pipeline {
	return &Pipeline{
		logger:            logger,
		downloader:        dl,
		segmenter:         seg,
		transcriber:       tr,
		summarizer:        sum,
		workDir:           workDir,
		maxSegmentSeconds: maxSegmentSeconds,
		callTimeout:       callTimeout,
	}
}

// Run executes the full pipeline for one job. Temporary files live in a
// per-job directory removed when the run finishes, success or not.
func (p *Pipeline) Run(ctx context.Context, jobID, url string, notify StageNotify) (models.Result, error) {
	start := time.Now()

	jobDir, err := os.MkdirTemp(p.workDir, "job-"+jobID+"-*")
	if err != nil {
		return models.Result{}, fmt.Errorf("create job dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	p.notify(notify, models.StageDownload)
	p.logger.Info("downloading audio", "job_id", jobID, "url", url)
	title, audioPath, err := p.stage1Download(ctx, url, jobDir)
	if err != nil {
		return models.Result{}, err
	}

	p.notify(notify, models.StageSegmentation)
	p.logger.Info("segmenting audio", "job_id", jobID, "path", audioPath)
	segments, err := p.stage2Split(ctx, audioPath)
	if err != nil {
		return models.Result{}, err
	}
	p.logger.Info("audio segmented", "job_id", jobID, "segments", len(segments))

	p.notify(notify, models.StageTranscription)
	transcript, err := p.stage3Transcribe(ctx, segments)
	if err != nil {
		return models.Result{}, err
	}
	p.logger.Info("transcription completed", "job_id", jobID, "chars", len(transcript))

	p.notify(notify, models.StageSummarization)
	summary, err := p.stage4Summarize(ctx, transcript)
	if err != nil {
		return models.Result{}, err
	}

	p.logger.Info("pipeline completed", "job_id", jobID, "title", title, "elapsed", time.Since(start))
	return models.Result{
		Title:         title,
		Transcription: transcript,
		Summary:       summary,
	}, nil
}

func (p *Pipeline) stage1Download(ctx context.Context, url, jobDir string) (string, string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.downloader.Download(ctx, url, jobDir)
}

func (p *Pipeline) stage2Split(ctx context.Context, audioPath string) ([]segmenter.Segment, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.segmenter.Split(ctx, audioPath, p.maxSegmentSeconds)
}

func (p *Pipeline) stage3Transcribe(ctx context.Context, segments []segmenter.Segment) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.transcriber.Transcribe(ctx, segments)
}

func (p *Pipeline) stage4Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.summarizer.Summarize(ctx, transcript)
}

// withTimeout bounds each stage; external calls otherwise have no deadline.
func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.callTimeout)
}

func (p *Pipeline) notify(notify StageNotify, stage models.Stage) {
	if notify != nil {
		notify(stage)
	}
}
