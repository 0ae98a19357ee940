package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/fleetops/auth-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrPoolClosed is returned for work submitted after the pool stopped.
var ErrPoolClosed = errors.New("hash pool closed")

var _ ports.PasswordHasher = (*HashPool)(nil)

// PoolMetrics are the collectors a HashPool reports to. Nil fields are skipped.
type PoolMetrics struct {
	// Duration is labelled by op: "hash" or "verify".
	Duration *prometheus.HistogramVec
	Depth    prometheus.Gauge
}

// HashPool runs CPU-bound password hashing on a fixed set of workers so that
// request goroutines only wait on a channel. It satisfies ports.PasswordHasher
// by delegating to the wrapped hasher.
type HashPool struct {
	inner   ports.PasswordHasher
	jobs    chan func()
	workers int
	stopped chan struct{}
	once    sync.Once
	metrics PoolMetrics
	log     zerolog.Logger
}

// NewHashPool creates a HashPool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(inner ports.PasswordHasher, numWorkers int, m PoolMetrics, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		inner:   inner,
		jobs:    make(chan func(), channelBuffer),
		workers: numWorkers,
		stopped: make(chan struct{}),
		metrics: m,
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after which every submission fails with ErrPoolClosed.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		p.once.Do(func() { close(p.stopped) })
		p.log.Info().Msg("hash pool stopped")
	}()
	p.log.Info().Int("workers", p.workers).Msg("hash pool started")
}

func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest string
		err    error
	)
	if runErr := p.run(ctx, "hash", func() {
		digest, err = p.inner.Hash(ctx, plaintext)
	}); runErr != nil {
		return "", runErr
	}
	return digest, err
}

func (p *HashPool) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var (
		ok  bool
		err error
	)
	if runErr := p.run(ctx, "verify", func() {
		ok, err = p.inner.Verify(ctx, plaintext, digest)
	}); runErr != nil {
		return false, runErr
	}
	return ok, err
}

// run enqueues fn and blocks until a worker has executed it or ctx ends.
func (p *HashPool) run(ctx context.Context, op string, fn func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		start := time.Now()
		fn()
		if p.metrics.Duration != nil {
			p.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}
	}

	select {
	case <-p.stopped:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		p.reportDepth()
	case <-ctx.Done():
		return fmt.Errorf("hash pool %s: %w", op, ctx.Err())
	case <-p.stopped:
		return ErrPoolClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("hash pool %s: %w", op, ctx.Err())
	case <-p.stopped:
		return ErrPoolClosed
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.reportDepth()
			p.log.Trace().Int("worker_id", id).Msg("hash job picked up")
			job()
		}
	}
}

func (p *HashPool) reportDepth() {
	if p.metrics.Depth != nil {
		p.metrics.Depth.Set(float64(len(p.jobs)))
	}
}
