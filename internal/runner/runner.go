package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Request is one code-run submission. Language defaults to JavaScript,
// matching the in-browser editor.
type Request struct {
	Code       string        `json:"code"`
	Stdin      string        `json:"stdin,omitempty"`
	LanguageID int           `json:"languageId,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// Result is the sandbox output as reported by the execution service.
type Result struct {
	Stdout      string    `json:"stdout"`
	Stderr      string    `json:"stderr"`
	Status      string    `json:"status"`
	Time        string    `json:"time,omitempty"`
	Memory      int       `json:"memory,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Job struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Request     Request    `json:"request"`
	Status      Status     `json:"status"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

var ErrJobNotFound = errors.New("run job not found")

// JobStore persists run jobs across their async lifecycle.
type JobStore interface {
	Save(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
}

// Sandbox executes a single submission and blocks until it completes.
type Sandbox interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Service accepts submissions, runs them against the sandbox in the
// background, and tracks their state in the job store.
type Service struct {
	store   JobStore
	sandbox Sandbox
	timeout time.Duration
}

func NewService(store JobStore, sandbox Sandbox, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{store: store, sandbox: sandbox, timeout: timeout}
}

func (s *Service) Submit(ctx context.Context, userID string, req Request) (Job, error) {
	if req.Timeout <= 0 {
		req.Timeout = s.timeout
	}

	job := Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		Request:   req,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.store.Save(ctx, job); err != nil {
		return Job{}, fmt.Errorf("save run job: %w", err)
	}

	go s.execute(job.ID)

	return job, nil
}

func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) execute(id string) {
	ctx := context.Background()
	job, err := s.store.Get(ctx, id)
	if err != nil {
		log.Printf("runner: fetch job %s: %v", id, err)
		return
	}

	job.Status = StatusRunning
	job.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, job); err != nil {
		log.Printf("runner: mark job %s running: %v", id, err)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, job.Request.Timeout)
	defer cancel()

	result, runErr := s.sandbox.Run(runCtx, job.Request)

	now := time.Now().UTC()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = now
	}
	job.Result = &result
	job.CompletedAt = &result.CompletedAt
	job.UpdatedAt = now

	if runErr != nil {
		job.Status = StatusFailed
		job.Error = runErr.Error()
		log.Printf("runner: job %s failed: %v", id, runErr)
	} else {
		job.Status = StatusSucceeded
		job.Error = ""
	}

	if err := s.store.Save(ctx, job); err != nil {
		log.Printf("runner: finalize job %s: %v", id, err)
	}
}
