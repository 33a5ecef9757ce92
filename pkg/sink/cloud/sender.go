package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/identity"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
	"osmosis-ai/osmosis-go/pkg/telemetry/metrics"
)

// IngestPath is appended to the base URL for every envelope.
const IngestPath = "/ingest"

// Warning messages emitted by the sender.
const (
	MsgPrepareFailed  = "Failed to prepare data for cloud logging"
	MsgNotInitialized = "Cloud logging not initialized yet, skipping envelope"
	MsgNon200         = "Cloud ingest returned non-200 status"
)

// Options configures a Sender.
type Options struct {
	// BaseURL is the ingest service root. Default: config.DefaultCloudBaseURL
	BaseURL string

	// Timeout bounds each POST. SetTimeout changes it later.
	// Default: config.DefaultCloudTimeout
	Timeout time.Duration

	// HTTPClient issues the POSTs. Default: a client with Timeout.
	HTTPClient *http.Client

	// Hasher derives the owner hash. Default: a new cold hasher, warmed during Init.
	Hasher *identity.Hasher

	Logger  *logging.Logger
	Metrics *metrics.Collector

	// Now is the clock used for envelope dates. Default: time.Now
	Now func() time.Time
}

// Sender posts envelopes to the ingest endpoint.
//
// Send never blocks on the network: each envelope is posted from its own
// goroutine and failures are reported as warnings. The sender has its own
// enabled flag, on by default, independent of config.Config.Enabled.
type Sender struct {
	client  *http.Client
	hasher  *identity.Hasher
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time

	enabled atomic.Bool
	timeout atomic.Int64

	// apiKey and owner always belong together. A key being initialized
	// waits in pending until its hash is ready; gen orders competing Inits.
	mu      sync.RWMutex
	baseURL string
	apiKey  string
	owner   string
	pending string
	gen     uint64

	group    singleflight.Group
	wg       sync.WaitGroup
	inflight atomic.Int64
}

// NewSender creates a sender. It sends nothing until Init is called with a key.
func NewSender(opts Options) *Sender {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultCloudBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = config.DefaultCloudTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Hasher == nil {
		opts.Hasher = identity.NewHasher(identity.DefaultSeed)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Sender{
		client:  opts.HTTPClient,
		hasher:  opts.Hasher,
		logger:  opts.Logger.With("component", "sink.cloud"),
		metrics: opts.Metrics,
		now:     opts.Now,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
	s.enabled.Store(true)
	s.timeout.Store(int64(opts.Timeout))
	return s
}

// Init computes the owner hash for apiKey in the background and then makes
// it the active key. The returned channel is closed once Init has finished.
// Until then the previous key, if any, keeps sending. If ctx ends first, or a
// later Init or Reset supersedes this one, the key is never activated.
// Concurrent calls for the same key share one hash computation. An empty
// apiKey is the same as Reset.
func (s *Sender) Init(ctx context.Context, apiKey string) <-chan struct{} {
	ready := make(chan struct{})

	if apiKey == "" {
		s.Reset()
		close(ready)
		return ready
	}

	s.mu.Lock()
	if s.apiKey == apiKey {
		s.gen++
		s.pending = ""
		s.mu.Unlock()
		close(ready)
		return ready
	}
	if s.pending != apiKey {
		s.gen++
		s.pending = apiKey
	}
	gen := s.gen
	s.mu.Unlock()

	go func() {
		defer close(ready)

		v, _, _ := s.group.Do(apiKey, func() (any, error) {
			s.hasher.Warm()
			return s.hasher.Hash(apiKey), nil
		})

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.pending = ""
		if ctx.Err() != nil {
			return
		}
		s.apiKey, s.owner = apiKey, v.(string)
	}()

	return ready
}

// Reset drops the active key and any key still initializing. Later Send
// calls return "" without I/O until Init is called again.
func (s *Sender) Reset() {
	s.mu.Lock()
	s.gen++
	s.apiKey, s.owner, s.pending = "", "", ""
	s.mu.Unlock()
}

// Enable turns the sender on.
func (s *Sender) Enable() { s.enabled.Store(true) }

// Disable turns the sender off. Later Send calls return "" without I/O.
func (s *Sender) Disable() { s.enabled.Store(false) }

// Enabled reports the sender's own flag.
func (s *Sender) Enabled() bool { return s.enabled.Load() }

// Initialized reports whether a key is active and its owner hash is ready.
func (s *Sender) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey != ""
}

// Active reports whether apiKey is the key envelopes are sent with.
func (s *Sender) Active(apiKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return apiKey != "" && s.apiKey == apiKey
}

// Owner returns the owner hash, or "" before initialization.
func (s *Sender) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// SetBaseURL changes the ingest service root for later sends.
func (s *Sender) SetBaseURL(baseURL string) {
	s.mu.Lock()
	s.baseURL = strings.TrimRight(baseURL, "/")
	s.mu.Unlock()
}

// SetTimeout changes the bound on later POSTs. Non-positive values are ignored.
func (s *Sender) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout.Store(int64(d))
	}
}

// Send builds an envelope from q, resp and status and posts it in the
// background. It returns the envelope's correlation id: the one set on q, or
// a generated one. It returns "" without sending when the sender is disabled
// or has no active key, and warns when a key is still initializing.
func (s *Sender) Send(q envelope.Query, resp envelope.Response, status envelope.Status) string {
	if !s.enabled.Load() {
		return ""
	}

	s.mu.RLock()
	apiKey, owner, pending, base := s.apiKey, s.owner, s.pending, s.baseURL
	s.mu.RUnlock()

	if apiKey == "" {
		if pending != "" {
			s.logger.Warn(MsgNotInitialized, "api", q.API)
			s.metrics.RecordEnvelope(metrics.ResultSkipped)
		}
		return ""
	}

	now := s.now()
	q.Stamp(now)
	id := envelope.EnsureCorrelationID(&q, now)

	body, err := envelope.Encode(&envelope.Envelope{
		Owner:    owner,
		Date:     now.Unix(),
		Query:    q,
		Response: resp,
		Status:   status,
	})
	if err != nil {
		s.logger.Warn(MsgPrepareFailed, "correlation_id", id, "error", err)
		s.metrics.RecordEnvelope(metrics.ResultFailed)
		return id
	}

	s.wg.Add(1)
	s.metrics.SetInflight(int(s.inflight.Add(1)))
	go func() {
		defer s.wg.Done()
		defer func() { s.metrics.SetInflight(int(s.inflight.Add(-1))) }()
		s.post(base+IngestPath, apiKey, id, body)
	}()

	return id
}

func (s *Sender) post(url, apiKey, id string, body []byte) {
	start := time.Now()
	defer func() { s.metrics.ObserveIngest(time.Since(start)) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.timeout.Load()))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn(MsgPrepareFailed, "correlation_id", id, "error", err)
		s.metrics.RecordEnvelope(metrics.ResultFailed)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn(MsgPrepareFailed, "correlation_id", id, "error", err)
		s.metrics.RecordEnvelope(metrics.ResultFailed)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn(fmt.Sprintf("%s: %d", MsgNon200, resp.StatusCode),
			"status", resp.StatusCode,
			"correlation_id", id,
		)
		s.metrics.RecordEnvelope(metrics.ResultRejected)
		return
	}
	s.metrics.RecordEnvelope(metrics.ResultSent)
}

// Flush waits for in-flight posts to finish or ctx to end.
func (s *Sender) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush interrupted with %d posts in flight: %w", s.inflight.Load(), ctx.Err())
	}
}
