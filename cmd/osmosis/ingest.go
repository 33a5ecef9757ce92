package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"osmosis-ai/osmosis-go/pkg/cli"
	"osmosis-ai/osmosis-go/pkg/envelope"
	"osmosis-ai/osmosis-go/pkg/identity"
	"osmosis-ai/osmosis-go/pkg/sink/cloud"
	"osmosis-ai/osmosis-go/pkg/telemetry/health"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

const maxEnvelopeBytes = 10 << 20

var ingestFlags struct {
	addr            string
	apiKey          string
	format          string
	shutdownTimeout time.Duration
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run a local ingest endpoint",
	Long: `Run a local endpoint that accepts envelopes the way the OSMOSIS-AI ingest
service does, and print each one as it arrives.

Point an application at it with cloud.base_url or OSMOSIS_CLOUD_BASE_URL.
With --api-key, envelopes carrying another key are rejected with 401 and
envelopes whose owner does not match the key are reported.

Endpoints:
  POST /ingest    receive one envelope
  GET  /health    readiness
  GET  /version   build information
  GET  /metrics   received envelope counters

Examples:
  osmosis ingest --addr 127.0.0.1:8787
  osmosis ingest --api-key osm-dev --format json`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestFlags.addr, "addr", "a", "127.0.0.1:8787", "listen address")
	ingestCmd.Flags().StringVar(&ingestFlags.apiKey, "api-key", "", "accept only this x-api-key")
	ingestCmd.Flags().StringVar(&ingestFlags.format, "format", "text", "output format: text, json")
	ingestCmd.Flags().DurationVar(&ingestFlags.shutdownTimeout, "shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
}

// received is the text form of an accepted envelope.
type received struct {
	env *envelope.Envelope
}

func (r received) String() string {
	q := r.env.Query
	line := fmt.Sprintf("%s owner=%s status=%s api=%s %s %s",
		time.Unix(r.env.Date, 0).UTC().Format(time.RFC3339), r.env.Owner, r.env.Status, q.API, q.Method, q.Path)
	if q.CorrelationID != "" {
		line += " id=" + q.CorrelationID
	}
	if r.env.Response.Failed() {
		line += " error=" + strconv.Quote(r.env.Response.Error)
	}
	return line
}

type ingestHandler struct {
	out       io.Writer
	formatter cli.Formatter
	apiKey    string
	owner     string
	logger    *logging.Logger
	received  *prometheus.CounterVec

	mu sync.Mutex
}

func newIngestHandler(out io.Writer, formatter cli.Formatter, apiKey string, logger *logging.Logger, registry *prometheus.Registry) *ingestHandler {
	h := &ingestHandler{
		out:       out,
		formatter: formatter,
		apiKey:    apiKey,
		logger:    logger,
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osmosis",
			Subsystem: "ingest",
			Name:      "envelopes_received_total",
			Help:      "Envelopes received by the local ingest endpoint, by result.",
		}, []string{"result"}),
	}
	if apiKey != "" {
		h.owner = identity.OwnerHash(apiKey)
	}
	registry.MustRegister(h.received)
	return h
}

func (h *ingestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.apiKey != "" && r.Header.Get("x-api-key") != h.apiKey {
		h.received.WithLabelValues("unauthorized").Inc()
		http.Error(w, "invalid API key", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes))
	if err != nil {
		h.received.WithLabelValues("invalid").Inc()
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	env, err := envelope.Decode(bytes.TrimSpace(body))
	if err != nil {
		h.received.WithLabelValues("invalid").Inc()
		h.logger.Warn("Rejected envelope", "error", err)
		http.Error(w, fmt.Sprintf("invalid envelope: %v", err), http.StatusBadRequest)
		return
	}

	if h.owner != "" && env.Owner != h.owner {
		h.logger.Warn("Envelope owner does not match API key", "owner", env.Owner, "expected", h.owner)
	}
	h.received.WithLabelValues("accepted").Inc()

	h.mu.Lock()
	var printErr error
	if _, ok := h.formatter.(*cli.TextFormatter); ok {
		printErr = h.formatter.FormatTo(h.out, received{env: env})
	} else {
		printErr = h.formatter.FormatTo(h.out, env)
	}
	h.mu.Unlock()
	if printErr != nil {
		h.logger.Warn("Failed to print envelope", "error", printErr)
	}

	w.WriteHeader(http.StatusOK)
}

func newIngestMux(h *ingestHandler, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(cloud.IngestPath, h)
	mux.Handle("/health", health.New(0).Handler())
	mux.Handle("/version", health.VersionHandler(Version, GitCommit, BuildDate))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func runIngest(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(ingestFlags.format)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	registry := prometheus.NewRegistry()
	h := newIngestHandler(cmd.OutOrStdout(), cli.NewFormatter(format, true), ingestFlags.apiKey, logger, registry)

	ln, err := net.Listen("tcp", ingestFlags.addr)
	if err != nil {
		return cli.NewCommandError("ingest", err)
	}
	srv := &http.Server{
		Handler:           newIngestMux(h, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()
	return serve(ctx, srv, ln, ingestFlags.shutdownTimeout, logger)
}

// serve runs srv on ln until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *logging.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()
	logger.Info("Ingest endpoint listening", "address", ln.Addr().String(), "ingest_url", "http://"+ln.Addr().String())

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return cli.NewCommandError("ingest", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.NewCommandError("ingest", err)
	}
	logger.Info("Ingest endpoint stopped")
	return nil
}
