package cron

import (
	"context"
	"strings"
)

// Job is one unit of scheduled maintenance, such as pruning stale carts.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs keyed by name. A later registration under an existing
// name replaces the earlier job but keeps its position.
type Registry struct {
	jobs  []Job
	index map[string]int
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{index: make(map[string]int, len(jobs))}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register ignores nil jobs and jobs with a blank name.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	name := strings.TrimSpace(job.Name())
	if name == "" {
		return
	}
	if i, ok := r.index[name]; ok {
		r.jobs[i] = job
		return
	}
	r.index[name] = len(r.jobs)
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}
