package jobs

import (
	"sync"
	"time"

	"doc-llm-pipeline/internal/common"
)

// Store is the contract the coordinator and the HTTP layer depend on.
// Every mutation targets a single job keyed by its id; only that job's
// coordinator writes to it while the job is live.
type Store interface {
	Put(job *Job)
	Get(id string) (*Job, error)
	Update(id string, mutate func(*Job)) error
	FindByFile(fileID string) (*Job, error)
}

// MemoryStore keeps jobs in process memory. Jobs are never deleted;
// process lifetime equals job lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*Job),
	}
}

func (s *MemoryStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	s.jobs[job.ID] = job
}

func (s *MemoryStore) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[id]
	if !exists {
		return nil, common.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

// Update applies mutate to the stored record under the lock.
func (s *MemoryStore) Update(id string, mutate func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[id]
	if !exists {
		return common.ErrNotFound
	}
	mutate(job)
	job.UpdatedAt = time.Now()
	return nil
}

// FindByFile returns the most recently created job for a file id.
func (s *MemoryStore) FindByFile(fileID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Job
	for _, job := range s.jobs {
		if job.FileID != fileID {
			continue
		}
		if latest == nil || job.CreatedAt.After(latest.CreatedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, common.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}
