package request

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/omaradly/transmem/internal/backend"
	"github.com/omaradly/transmem/internal/translation"
)

// fakeEndpoint counts calls and delegates to a configurable handler.
type fakeEndpoint struct {
	mu      sync.Mutex
	calls   int32
	batches []backend.Batch
	handler func(batch backend.Batch) (*backend.BatchResult, error)
}

func (f *fakeEndpoint) Name() string { return "fake" }

func (f *fakeEndpoint) Translate(ctx context.Context, batch backend.Batch) (*backend.BatchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	f.mu.Unlock()
	if f.handler != nil {
		return f.handler(batch)
	}
	return echoResult(batch), nil
}

// echoResult translates every segment to "<text>-translated".
func echoResult(batch backend.Batch) *backend.BatchResult {
	result := &backend.BatchResult{}
	for _, s := range batch.Segments {
		result.Segments = append(result.Segments, backend.ResultSegment{
			ID:   s.ID,
			Text: s.Text + "-translated",
		})
	}
	return result
}

func (f *fakeEndpoint) callCount() int { return int(atomic.LoadInt32(&f.calls)) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 10 * time.Millisecond
	cfg.BackoffBase = time.Millisecond
	cfg.BackoffCap = 5 * time.Millisecond
	cfg.CallTimeout = time.Second
	return cfg
}

func newRequest(id, text string) *translation.Request {
	return &translation.Request{ID: id, Text: text, SourceLang: "en", TargetLang: "zh"}
}

func TestDedupIdempotence(t *testing.T) {
	endpoint := &fakeEndpoint{}
	m := NewManager(endpoint, testConfig())

	const n = 8
	channels := make([]<-chan *translation.Result, n)
	for i := 0; i < n; i++ {
		channels[i] = m.Submit(newRequest(fmt.Sprintf("req-%d", i), "hello"))
	}

	results := make([]*translation.Result, n)
	for i, ch := range channels {
		select {
		case results[i] = <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("waiter %d timed out", i)
		}
	}

	if got := endpoint.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("waiter %d received a different result object", i)
		}
	}
	if !results[0].Success || results[0].Text != "hello-translated" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Provenance != translation.ProvenanceOnline {
		t.Errorf("provenance = %q, want online", results[0].Provenance)
	}
}

func TestBatchFlushesAtSize(t *testing.T) {
	endpoint := &fakeEndpoint{}
	cfg := testConfig()
	cfg.Debounce = time.Hour // only a size trigger can flush
	m := NewManager(endpoint, cfg)

	channels := make([]<-chan *translation.Result, cfg.BatchSize)
	for i := 0; i < cfg.BatchSize; i++ {
		channels[i] = m.Submit(newRequest(fmt.Sprintf("r%d", i), fmt.Sprintf("text %d", i)))
	}

	for i, ch := range channels {
		select {
		case r := <-ch:
			if !r.Success {
				t.Errorf("request %d failed: %+v", i, r)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("full batch did not flush without debounce")
		}
	}

	if got := endpoint.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
	endpoint.mu.Lock()
	defer endpoint.mu.Unlock()
	if len(endpoint.batches[0].Segments) != cfg.BatchSize {
		t.Errorf("batch carried %d segments, want %d", len(endpoint.batches[0].Segments), cfg.BatchSize)
	}
}

func TestSingleRequestWaitsForDebounce(t *testing.T) {
	endpoint := &fakeEndpoint{}
	cfg := testConfig()
	cfg.Debounce = 50 * time.Millisecond
	m := NewManager(endpoint, cfg)

	start := time.Now()
	ch := m.Submit(newRequest("solo", "alone"))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("debounce flush never happened")
	}
	if elapsed := time.Since(start); elapsed < cfg.Debounce {
		t.Errorf("flushed after %v, before the %v debounce", elapsed, cfg.Debounce)
	}
}

func TestRetryCeiling(t *testing.T) {
	endpoint := &fakeEndpoint{
		handler: func(backend.Batch) (*backend.BatchResult, error) {
			return nil, translation.NewError(translation.KindNetworkError, "transport down")
		},
	}
	cfg := testConfig()
	m := NewManager(endpoint, cfg)

	ch := m.Submit(newRequest("r1", "doomed"))
	var result *translation.Result
	select {
	case result = <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no final failure delivered")
	}

	if got, want := endpoint.callCount(), 1+cfg.MaxRetries; got != want {
		t.Errorf("attempts = %d, want %d", got, want)
	}
	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.ErrorKind != translation.KindNetworkError {
		t.Errorf("error kind = %q, want NETWORK_ERROR", result.ErrorKind)
	}
}

func TestTimeoutNotRetried(t *testing.T) {
	endpoint := &fakeEndpoint{
		handler: func(backend.Batch) (*backend.BatchResult, error) {
			return nil, translation.NewError(translation.KindTimeout, "deadline hit")
		},
	}
	m := NewManager(endpoint, testConfig())

	result := <-m.Submit(newRequest("r1", "slow"))
	if got := endpoint.callCount(); got != 1 {
		t.Errorf("attempts = %d, want 1 (timeouts are not retried)", got)
	}
	if result.ErrorKind != translation.KindTimeout {
		t.Errorf("error kind = %q, want TIMEOUT", result.ErrorKind)
	}
}

func TestSegmentNotFound(t *testing.T) {
	endpoint := &fakeEndpoint{
		handler: func(batch backend.Batch) (*backend.BatchResult, error) {
			// Answer only the first segment; omit the rest.
			return &backend.BatchResult{Segments: []backend.ResultSegment{
				{ID: batch.Segments[0].ID, Text: "ok"},
			}}, nil
		},
	}
	cfg := testConfig()
	cfg.BatchSize = 2
	m := NewManager(endpoint, cfg)

	ch1 := m.Submit(newRequest("kept", "first"))
	ch2 := m.Submit(newRequest("dropped", "second"))

	r1 := <-ch1
	r2 := <-ch2
	if !r1.Success {
		t.Errorf("answered segment failed: %+v", r1)
	}
	if r2.Success || r2.ErrorKind != translation.KindSegmentNotFound {
		t.Errorf("omitted segment result = %+v, want SEGMENT_NOT_FOUND", r2)
	}
}

func TestMidFlightArrivalsFormNextBatch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	endpoint := &fakeEndpoint{
		handler: func(batch backend.Batch) (*backend.BatchResult, error) {
			started <- struct{}{}
			<-release
			return echoResult(batch), nil
		},
	}
	cfg := testConfig()
	cfg.Debounce = 5 * time.Millisecond
	m := NewManager(endpoint, cfg)

	ch1 := m.Submit(newRequest("first", "one"))
	<-started // first flush is in flight

	// Arrives mid-flight: must not join the executing batch.
	ch2 := m.Submit(newRequest("second", "two"))
	time.Sleep(20 * time.Millisecond)
	if got := endpoint.callCount(); got != 1 {
		t.Fatalf("second batch started during first flush: calls = %d", got)
	}

	close(release)
	r1 := <-ch1
	r2 := <-ch2
	if !r1.Success || !r2.Success {
		t.Errorf("results: %+v, %+v", r1, r2)
	}
	if got := endpoint.callCount(); got != 2 {
		t.Errorf("network calls = %d, want 2", got)
	}
}

func TestConcurrentSubmitDistinctKeys(t *testing.T) {
	endpoint := &fakeEndpoint{}
	cfg := testConfig()
	m := NewManager(endpoint, cfg)

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := newRequest(fmt.Sprintf("r%d", i), fmt.Sprintf("text %d", i))
			result, err := m.Resolve(context.Background(), req)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !result.Success || result.Text != fmt.Sprintf("text %d-translated", i) {
				errs <- fmt.Sprintf("request %d got %+v", i, result)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
