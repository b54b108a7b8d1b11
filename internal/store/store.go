// Package store holds job records for the lifetime of the process.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"resumidorDeAtas/internal/models"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// Store is the job registry. Exactly one writer finalizes each job; status
// reads may happen concurrently from any goroutine.
type Store interface {
	// Create registers a new job in processing state.
	Create(id string)
	// Complete moves a processing job to done and attaches its content.
	Complete(id string, res models.Result) error
	// Fail moves a processing job to error with a caller-visible message.
	Fail(id string, msg string) error
	// Get returns a snapshot of the job, never a live record.
	Get(id string) (models.Job, error)
	// List returns snapshots of all jobs, most recently updated first.
	List() []models.Job
}

type memoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// NewMemory creates an in-memory Store. Records accumulate until the process
// exits; there is no eviction.
func NewMemory() Store {
	return &memoryStore{jobs: make(map[string]*models.Job)}
}

func (s *memoryStore) Create(id string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &models.Job{
		ID:        id,
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *memoryStore) Complete(id string, res models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	// Replace the whole record so a concurrent reader never observes a
	// half-written terminal state.
	s.jobs[id] = &models.Job{
		ID:            id,
		Status:        models.StatusDone,
		Title:         res.Title,
		Transcription: res.Transcription,
		Summary:       res.Summary,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     time.Now(),
	}
	return nil
}

func (s *memoryStore) Fail(id string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	s.jobs[id] = &models.Job{
		ID:        id,
		Status:    models.StatusError,
		Error:     msg,
		CreatedAt: job.CreatedAt,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (s *memoryStore) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

func (s *memoryStore) List() []models.Job {
	s.mu.RLock()
	jobs := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].UpdatedAt.After(jobs[j].UpdatedAt)
	})
	return jobs
}
