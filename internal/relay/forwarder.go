package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/httpclient"
	"github.com/netric-solutions/quote-bridge/internal/metrics"
	"github.com/netric-solutions/quote-bridge/internal/rate"
)

// Forwarder POSTs stored payloads to the configured downstream URL.
type Forwarder struct {
	logger *zap.Logger
	exec   *httpclient.Executor
	url    string
}

// NewForwarder constructs a forwarder for the given downstream URL.
func NewForwarder(logger *zap.Logger, rateMgr *rate.Manager, url string, timeout time.Duration) *Forwarder {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, 1, "forwarder", func(status int, body []byte) error {
		return fmt.Errorf("failed to share data, status code: %d", status)
	})
	return &Forwarder{
		logger: logger,
		exec:   exec,
		url:    url,
	}
}

// URL returns the downstream target.
func (f *Forwarder) URL() string { return f.url }

// Share POSTs the payload downstream. It returns whether the forward
// succeeded together with a human-readable message, mirroring what the
// relay endpoints report back to callers.
func (f *Forwarder) Share(ctx context.Context, payload map[string]any) (bool, string) {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncForward("error")
		return false, fmt.Sprintf("error sharing data: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(data))
	if err != nil {
		metrics.IncForward("error")
		return false, fmt.Sprintf("error sharing data: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	err = f.exec.DoJSON(ctx, req, "forwarder", nil)
	metrics.ObserveDuration(metrics.ForwardDuration, start, f.url)

	if err != nil {
		f.logger.Warn("relay.forward_failed",
			zap.String("url", f.url),
			zap.Error(err))
		metrics.IncForward("error")
		return false, fmt.Sprintf("failed to connect to receiving service: %v", err)
	}

	metrics.IncForward("ok")
	return true, "Data forwarded successfully"
}
