package cron

import (
	"context"
	"fmt"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in run order. Names are unique.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry from the given jobs, skipping nils.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{names: map[string]struct{}{}}
	for _, job := range jobs {
		_ = registry.Register(job)
	}
	return registry
}

// Register appends jobs in order, stopping at the first name already taken.
func (r *Registry) Register(jobs ...Job) error {
	if r.names == nil {
		r.names = map[string]struct{}{}
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if _, dup := r.names[job.Name()]; dup {
			return fmt.Errorf("cron job %q already registered", job.Name())
		}
		r.names[job.Name()] = struct{}{}
		r.jobs = append(r.jobs, job)
	}
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Names lists job names in run order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}
