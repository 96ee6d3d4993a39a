// Package worker precomputes expensive dashboard views in the background so
// the first request for them is served from the memo.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// Warmer fills the result memo for one view. Feature is only meaningful for
// the features view.
type Warmer interface {
	Warm(ctx context.Context, view domain.ViewID, feature domain.FeatureName) error
}

// Job represents one view to precompute.
type Job struct {
	View    domain.ViewID
	Feature domain.FeatureName
}

// Pool manages background workers for warm-up jobs.
type Pool struct {
	warmer  Warmer
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	done    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewPool creates a worker pool with a bounded queue.
func NewPool(warmer Warmer, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{warmer: warmer, jobs: make(chan Job, queueSize), ctx: ctx, cancel: cancel}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
}

// Abort cancels in-flight work, then stops. Queued jobs fail fast.
func (p *Pool) Abort() {
	p.cancel()
	p.Stop()
}

// Submit queues a job without blocking. It reports false when the queue is full.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.dropped.Add(1)
		logrus.WithFields(logrus.Fields{"view": job.View, "feature": job.Feature}).Warn("worker: queue full, dropping warm-up job")
		return false
	}
}

// SubmitAll queues the views that are worth precomputing: evaluation, the PCA
// projection, insights and every feature distribution.
func (p *Pool) SubmitAll() int {
	jobs := []Job{
		{View: domain.ViewEvaluation},
		{View: domain.ViewPCA},
		{View: domain.ViewInsights},
	}
	for _, f := range domain.FeatureNames {
		jobs = append(jobs, Job{View: domain.ViewFeatures, Feature: f})
	}

	queued := 0
	for _, j := range jobs {
		if p.Submit(j) {
			queued++
		}
	}
	return queued
}

// Stats reports completed, failed and dropped job counts.
func (p *Pool) Stats() (done, failed, dropped int64) {
	return p.done.Load(), p.failed.Load(), p.dropped.Load()
}

func (p *Pool) processJob(job Job) {
	entry := logrus.WithFields(logrus.Fields{"view": job.View, "feature": job.Feature})
	if err := p.warmer.Warm(p.ctx, job.View, job.Feature); err != nil {
		p.failed.Add(1)
		// An undefined metric on a degenerate dataset is expected and will be
		// reported again on request.
		entry.WithError(err).Warn("worker: warm-up failed")
		return
	}
	p.done.Add(1)
	entry.Debug("worker: view warmed")
}
