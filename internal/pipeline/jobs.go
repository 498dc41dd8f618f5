package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/walker"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusRendering JobStatus = "rendering"
	StatusWriting   JobStatus = "writing"
	StatusCompleted JobStatus = "completed"
	StatusUnchanged JobStatus = "unchanged"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether s is a terminal status.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusUnchanged || s == StatusFailed
}

// Job tracks the state of a single page conversion.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	PageID string `json:"page_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`

	Options    Options `json:"options"`
	OutputPath string  `json:"output_path,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	errors   []string
	warnings []string
}

// Progress tracks what the walk produced so far.
type Progress struct {
	Stats    walker.Stats `json:"stats"`
	Bytes    int          `json:"bytes"`
	Warnings []string     `json:"warnings"`
	Errors   []string     `json:"errors"`
}

// NewJob returns a queued job for pageID with a time-ordered id.
func NewJob(pageID string, opts Options) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		PageID:    pageID,
		Status:    StatusQueued,
		Phase:     "queued",
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// List returns snapshots of all jobs, newest first.
func (s *JobStore) List() []JobSnapshot {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal problem with the conversion.
func (j *Job) AddWarning(w string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// SetResult records the walk statistics and rendered size.
func (j *Job) SetResult(title, hash string, stats walker.Stats, size int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.ContentHash = hash
	j.Progress.Stats = stats
	j.Progress.Bytes = size
	j.UpdatedAt = time.Now()
}

// SetOutputPath records where the document was written.
func (j *Job) SetOutputPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputPath = path
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string        `json:"job_id"`
	PageID      string        `json:"page_id"`
	Status      JobStatus     `json:"status"`
	Phase       string        `json:"phase"`
	Title       string        `json:"title"`
	Format      export.Format `json:"format"`
	OutputPath  string        `json:"output_path,omitempty"`
	ContentHash string        `json:"content_hash,omitempty"`
	Progress    Progress      `json:"progress"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		PageID:      j.PageID,
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Title,
		Format:      j.Options.Format,
		OutputPath:  j.OutputPath,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Stats:    j.Progress.Stats,
			Bytes:    j.Progress.Bytes,
			Warnings: nonNil(j.warnings),
			Errors:   nonNil(j.errors),
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
