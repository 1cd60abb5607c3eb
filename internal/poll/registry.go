package poll

import (
	"context"
	"sync"
)

// Job is one unit of work run on every scheduler tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs a scheduler runs, in registration order. It is safe
// for concurrent use so jobs can be added while a scheduler is ticking.
type Registry struct {
	mu   sync.RWMutex
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register appends job. A job whose name is already registered replaces the
// earlier one in place, so a tick never runs the same name twice.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.jobs {
		if existing.Name() == job.Name() {
			r.jobs[i] = job
			return
		}
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a snapshot of the registered jobs.
func (r *Registry) Jobs() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Job(nil), r.jobs...)
}

// JobFunc adapts a function into a named Job.
func JobFunc(name string, fn func(ctx context.Context) error) Job {
	return funcJob{name: name, fn: fn}
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string { return j.name }

func (j funcJob) Run(ctx context.Context) error {
	if j.fn == nil {
		return nil
	}
	return j.fn(ctx)
}
