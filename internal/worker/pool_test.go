package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

type recordingWarmer struct {
	mu   sync.Mutex
	jobs []Job
	fail map[domain.ViewID]error
}

func (w *recordingWarmer) Warm(ctx context.Context, view domain.ViewID, feature domain.FeatureName) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs = append(w.jobs, Job{View: view, Feature: feature})
	return w.fail[view]
}

func TestPool_SubmitAll(t *testing.T) {
	warmer := &recordingWarmer{fail: map[domain.ViewID]error{
		domain.ViewEvaluation: domain.ErrInsufficientClusters,
	}}
	pool := NewPool(warmer, 32)
	pool.Start(3)

	queued := pool.SubmitAll()
	pool.Stop()

	assert.Equal(t, 3+domain.FeatureCount, queued)
	assert.Len(t, warmer.jobs, queued)

	done, failed, dropped := pool.Stats()
	assert.Equal(t, int64(queued-1), done)
	assert.Equal(t, int64(1), failed)
	assert.Equal(t, int64(0), dropped)

	features := map[domain.FeatureName]bool{}
	for _, j := range warmer.jobs {
		if j.View == domain.ViewFeatures {
			features[j.Feature] = true
		}
	}
	assert.Len(t, features, domain.FeatureCount)
}

type blockingWarmer struct {
	release chan struct{}
}

func (w *blockingWarmer) Warm(ctx context.Context, view domain.ViewID, feature domain.FeatureName) error {
	select {
	case <-w.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPool_DropsWhenQueueFull(t *testing.T) {
	warmer := &blockingWarmer{release: make(chan struct{})}
	pool := NewPool(warmer, 1)

	// No workers yet: the first job fills the queue.
	assert.True(t, pool.Submit(Job{View: domain.ViewPCA}))
	assert.False(t, pool.Submit(Job{View: domain.ViewInsights}))

	pool.Start(1)
	close(warmer.release)
	pool.Stop()

	done, failed, dropped := pool.Stats()
	assert.Equal(t, int64(1), done)
	assert.Equal(t, int64(0), failed)
	assert.Equal(t, int64(1), dropped)
}

func TestPool_AbortCancelsInFlight(t *testing.T) {
	warmer := &blockingWarmer{release: make(chan struct{})}
	pool := NewPool(warmer, 4)
	pool.Start(2)
	pool.Submit(Job{View: domain.ViewPCA})
	pool.Submit(Job{View: domain.ViewEvaluation})

	pool.Abort()

	done, failed, _ := pool.Stats()
	assert.Equal(t, int64(0), done)
	assert.Equal(t, int64(2), failed)
}

func TestNewPool_ClampsQueue(t *testing.T) {
	pool := NewPool(&recordingWarmer{}, 0)
	assert.Equal(t, 1, cap(pool.jobs))
}
