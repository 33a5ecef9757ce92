package osmosis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"osmosis-ai/osmosis-go/internal/testutil"
	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/dispatch"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/identity"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	o    *Osmosis
	out  *syncBuffer
	logs *syncBuffer
	ms   *testutil.MockServer
}

func newHarness(t *testing.T, cfg config.Config, providers ...dispatch.Provider) *harness {
	t.Helper()
	h := &harness{out: &syncBuffer{}, logs: &syncBuffer{}}

	logger, err := logging.New(logging.Config{Format: "text", Level: "debug", Writer: h.logs})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h.o, err = New(context.Background(), Options{
		Config:        &cfg,
		Logger:        logger,
		ConsoleWriter: h.out,
		Providers:     providers,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = h.o.Close(context.Background()) })

	h.ms = testutil.NewMockServer()
	t.Cleanup(h.ms.Close)
	h.ms.SetResponse("/v1/chat/completions", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.MockOpenAIResponse("hi", "gpt-4o"),
	})
	return h
}

func (h *harness) openAI() goopenai.ClientConfig {
	cfg := goopenai.DefaultConfig("sk-test")
	cfg.BaseURL = h.ms.URL() + "/v1"
	cfg.HTTPClient = h.ms.Client()
	return cfg
}

func (h *harness) chat(t *testing.T) {
	t.Helper()
	client := h.o.WrapOpenAI(goopenai.NewClientWithConfig(h.openAI()))
	resp, err := client.CreateChatCompletion(context.Background(), goopenai.ChatCompletionRequest{
		Model:    "gpt-4o",
		Messages: []goopenai.ChatCompletionMessage{{Role: goopenai.ChatMessageRoleUser, Content: "Say hi"}},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}
	if resp.Choices[0].Message.Content != "hi" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogDestination = "stdout"

	_, err := New(context.Background(), Options{Config: &cfg, Logger: logging.Nop()})
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNew_DoesNotMutateCallerConfig(t *testing.T) {
	cfg := config.Default()
	h := newHarness(t, cfg)

	if err := h.o.Configure(context.Background(), config.Partial{
		EnabledAPIs: map[string]bool{config.APIOpenAI: false},
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !cfg.APIEnabled(config.APIOpenAI) {
		t.Error("caller config changed")
	}
	snapshot := h.o.Config()
	if snapshot.APIEnabled(config.APIOpenAI) || !snapshot.APIEnabled(config.APIAnthropic) {
		t.Errorf("unexpected toggles %v", snapshot.EnabledAPIs)
	}
}

func TestWrapOpenAI_Console(t *testing.T) {
	h := newHarness(t, config.Default())
	h.chat(t)

	out := h.out.String()
	for _, want := range []string{"[OSMOSIS-AI][", "OpenAI Request:", "Path: /chat/completions", "Method: POST", `"model": "gpt-4o"`} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigure_DisabledPassesThrough(t *testing.T) {
	h := newHarness(t, config.Default())
	if err := h.o.Configure(context.Background(), config.Partial{Enabled: config.Bool(false)}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	h.chat(t)
	if out := h.out.String(); out != "" {
		t.Errorf("expected no console output, got:\n%s", out)
	}
}

func TestInitCloud_EndToEnd(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies [][]byte
		keys   []string
	)
	ingest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		keys = append(keys, r.Header.Get("x-api-key"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ingest.Close()

	cfg := config.Default()
	cfg.Cloud.BaseURL = ingest.URL
	h := newHarness(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.o.InitCloud(ctx, "osm-key"); err != nil {
		t.Fatalf("InitCloud: %v", err)
	}
	if dest := h.o.Config().LogDestination; dest != config.DestinationBoth {
		t.Errorf("expected both, got %s", dest)
	}

	h.chat(t)
	if err := h.o.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected one envelope, got %d", len(bodies))
	}
	if keys[0] != "osm-key" {
		t.Errorf("expected api key header, got %q", keys[0])
	}
	env, err := envelope.Decode(bytes.TrimSpace(bodies[0]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Owner != identity.OwnerHash("osm-key") {
		t.Errorf("unexpected owner %q", env.Owner)
	}
	if code, ok := env.Status.Int(); !ok || code != http.StatusOK {
		t.Errorf("expected status 200, got %v", env.Status)
	}
	if env.Query.API != config.APIOpenAI || env.Query.Path != "/chat/completions" {
		t.Errorf("unexpected query %+v", env.Query)
	}
	if !envelope.CorrelationIDPattern.MatchString(env.Query.CorrelationID) {
		t.Errorf("unexpected correlation id %q", env.Query.CorrelationID)
	}
	if !strings.Contains(h.out.String(), "OpenAI Request:") {
		t.Error("expected console record alongside the envelope")
	}
}

func TestNew_StartsCloudInitFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CloudAPIKey = "osm-key"
	cfg.LogDestination = config.DestinationCloud
	h := newHarness(t, cfg)

	select {
	case <-h.o.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("cloud init did not finish")
	}
	if report := h.o.Health(context.Background()); !report.Ready() {
		t.Errorf("expected ready, got %+v", report)
	}
}

func TestHealth_Degraded(t *testing.T) {
	cfg := config.Default()
	cfg.LogDestination = config.DestinationCloud
	h := newHarness(t, cfg, dispatch.NewProvider("bedrock", func(context.Context) error {
		return errors.New("sdk missing")
	}))
	if err := h.o.Configure(context.Background(), config.Partial{
		EnabledAPIs: map[string]bool{"bedrock": true},
	}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	report := h.o.Health(context.Background())
	if report.Ready() {
		t.Fatal("expected degraded report")
	}
	if msg := report.Checks["cloud"].Message; !strings.Contains(msg, "API key") {
		t.Errorf("unexpected cloud check %q", msg)
	}
	if msg := report.Checks["families"].Message; !strings.Contains(msg, "bedrock: sdk missing") {
		t.Errorf("unexpected families check %q", msg)
	}

	rec := httptest.NewRecorder()
	h.o.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsHandler(t *testing.T) {
	h := newHarness(t, config.Default())
	h.chat(t)

	rec := httptest.NewRecorder()
	h.o.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"osmosis_interceptor_calls_total", "osmosis_interceptor_console_records_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestWatchConfig(t *testing.T) {
	h := newHarness(t, config.Default())
	path := filepath.Join(t.TempDir(), "osmosis.yaml")
	if err := os.WriteFile(path, []byte("enabled: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.o.WatchConfig(ctx, path) }()

	testutil.WaitForCondition(t, 5*time.Second, func() bool {
		return strings.Contains(h.logs.String(), "Config watcher started")
	}, "watcher did not start")

	if err := os.WriteFile(path, []byte("enabled_apis:\n  langchain: false\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	testutil.WaitForCondition(t, 5*time.Second, func() bool {
		cfg := h.o.Config()
		return !cfg.APIEnabled(config.APILangChain)
	}, "reload was not applied")

	cfg := h.o.Config()
	if !cfg.Enabled || !cfg.APIEnabled(config.APIOpenAI) {
		t.Errorf("reload changed unrelated fields: %+v", cfg)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchConfig: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WatchConfig did not return")
	}
}
