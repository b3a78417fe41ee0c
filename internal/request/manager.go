// Package request coalesces concurrent translation requests: identical
// in-flight requests share one network call, independent requests for the
// same language pair ride one batch, and failed batches retry with
// exponential backoff before every waiter hears the final failure.
package request

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/omaradly/transmem/internal/backend"
	"github.com/omaradly/transmem/internal/translation"
)

// Config holds the coalescing and retry tunables.
type Config struct {
	BatchSize   int           // flush when a batch reaches this many requests
	Debounce    time.Duration // flush this long after the last insert
	DedupTTL    time.Duration // window for merging identical requests
	CallTimeout time.Duration // hard per-call deadline, independent of callers
	MaxRetries  int           // retries after the first attempt
	BackoffBase time.Duration // first retry delay
	BackoffCap  time.Duration // ceiling for retry delays
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		BatchSize:   5,
		Debounce:    100 * time.Millisecond,
		DedupTTL:    30 * time.Second,
		CallTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: time.Second,
		BackoffCap:  5 * time.Second,
	}
}

// onlineConfidence is assigned to results the network produced.
const onlineConfidence = 0.9

// group is one logical request and every waiter attached to it.
type group struct {
	req       *translation.Request
	createdAt time.Time
	waiters   []chan *translation.Result
}

// batchQueue accumulates groups for one (source,target) pair. Only one
// flush may be in flight per queue; arrivals during a flush form the
// next batch.
type batchQueue struct {
	source    string
	target    string
	queue     []*group
	timer     *time.Timer
	executing bool
}

// Manager deduplicates, batches, and retries translation requests
// against a backend endpoint. It performs no caching; that is the memory
// store's job.
type Manager struct {
	cfg      Config
	endpoint backend.Endpoint

	mu      sync.Mutex
	pending map[string]*group      // request key -> in-flight group
	batches map[string]*batchQueue // batch key -> queue
}

// NewManager creates a request manager over the given endpoint.
func NewManager(endpoint backend.Endpoint, cfg Config) *Manager {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	return &Manager{
		cfg:      cfg,
		endpoint: endpoint,
		pending:  make(map[string]*group),
		batches:  make(map[string]*batchQueue),
	}
}

// Submit enqueues a request and returns a channel that receives exactly
// one Result. Identical requests within the dedup TTL share the pending
// network call and receive the identical Result.
func (m *Manager) Submit(req *translation.Request) <-chan *translation.Result {
	ch := make(chan *translation.Result, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	rkey := req.RequestKey()
	if g, ok := m.pending[rkey]; ok {
		if time.Since(g.createdAt) < m.cfg.DedupTTL {
			g.waiters = append(g.waiters, ch)
			return ch
		}
		// Expired pending entry: evict lazily and start fresh.
		delete(m.pending, rkey)
	}

	g := &group{req: req, createdAt: time.Now(), waiters: []chan *translation.Result{ch}}
	m.pending[rkey] = g

	bkey := req.BatchKey()
	q, ok := m.batches[bkey]
	if !ok {
		q = &batchQueue{source: req.SourceLang, target: req.TargetLang}
		m.batches[bkey] = q
	}
	q.queue = append(q.queue, g)

	if len(q.queue) >= m.cfg.BatchSize {
		m.flushLocked(bkey, q)
		return ch
	}

	// Debounce: (re)arm the flush timer on every insert.
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(m.cfg.Debounce, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if q, ok := m.batches[bkey]; ok {
			m.flushLocked(bkey, q)
		}
	})
	return ch
}

// Resolve submits req and blocks for its result or ctx cancellation.
func (m *Manager) Resolve(ctx context.Context, req *translation.Request) (*translation.Result, error) {
	select {
	case result := <-m.Submit(req):
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// flushLocked starts a network call for up to BatchSize queued groups.
// Caller holds m.mu. A queue already mid-flush is left alone; its
// completion triggers the next cycle.
func (m *Manager) flushLocked(bkey string, q *batchQueue) {
	if q.executing || len(q.queue) == 0 {
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}

	n := len(q.queue)
	if n > m.cfg.BatchSize {
		n = m.cfg.BatchSize
	}
	members := make([]*group, n)
	copy(members, q.queue[:n])
	q.queue = append([]*group(nil), q.queue[n:]...)
	q.executing = true

	go m.execute(bkey, q, members)
}

// execute performs the network call with retries, fans results out, and
// kicks off the next cycle if more requests queued up meanwhile.
func (m *Manager) execute(bkey string, q *batchQueue, members []*group) {
	batch := backend.Batch{Source: q.source, Target: q.target}
	for _, g := range members {
		batch.Segments = append(batch.Segments, backend.Segment{ID: g.req.ID, Text: g.req.Text})
	}

	result, err := m.callWithRetry(batch)
	if err != nil {
		failure := translation.Failure(err)
		m.deliver(members, func(*group) *translation.Result { return failure })
	} else {
		byID := result.ByID()
		m.deliver(members, func(g *group) *translation.Result {
			seg, ok := byID[g.req.ID]
			if !ok {
				return translation.Failure(translation.NewError(
					translation.KindSegmentNotFound,
					fmt.Sprintf("response omitted segment %s", g.req.ID)))
			}
			return &translation.Result{
				Success:      true,
				Text:         seg.Text,
				DetectedLang: result.DetectedLang,
				Alternatives: seg.Alternatives,
				Confidence:   onlineConfidence,
				Provenance:   translation.ProvenanceOnline,
			}
		})
	}

	m.mu.Lock()
	q.executing = false
	if len(q.queue) > 0 {
		m.flushLocked(bkey, q)
	} else if m.batches[bkey] == q {
		delete(m.batches, bkey)
	}
	m.mu.Unlock()
}

// callWithRetry sends the same batch payload up to 1+MaxRetries times.
// Only NETWORK_ERROR-class failures retry; timeouts and everything else
// surface immediately.
func (m *Manager) callWithRetry(batch backend.Batch) (*backend.BatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(m.backoff(attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CallTimeout)
		result, err := m.endpoint.Translate(ctx, batch)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !translation.IsRetryable(err) {
			return nil, err
		}
		log.Printf("request: batch %s|%s attempt %d/%d failed: %v",
			batch.Source, batch.Target, attempt+1, m.cfg.MaxRetries+1, err)
	}
	return nil, lastErr
}

func (m *Manager) backoff(attempt int) time.Duration {
	d := m.cfg.BackoffBase << (attempt - 1)
	if m.cfg.BackoffCap > 0 && d > m.cfg.BackoffCap {
		d = m.cfg.BackoffCap
	}
	return d
}

// deliver hands each group's result to all of its waiters and retires the
// group. Every waiter of a group receives the identical Result.
func (m *Manager) deliver(members []*group, resultFor func(*group) *translation.Result) {
	// Snapshot waiter lists under the lock: once a group leaves pending,
	// no new waiter can attach to it.
	waiters := make([][]chan *translation.Result, len(members))
	m.mu.Lock()
	for i, g := range members {
		if m.pending[g.req.RequestKey()] == g {
			delete(m.pending, g.req.RequestKey())
		}
		waiters[i] = g.waiters
	}
	m.mu.Unlock()

	for i, g := range members {
		result := resultFor(g)
		for _, ch := range waiters[i] {
			ch <- result
		}
	}
}
