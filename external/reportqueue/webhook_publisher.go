// Package reportqueue delivers finished run artifacts to a downstream
// webhook. Delivery is optional: a run without a configured publisher
// still produces its local exports.
package reportqueue

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/dani537/fantasy-crew/internal/platform/logging"
	"github.com/dani537/fantasy-crew/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("report webhook transient failure")

type WebhookPublisherConfig struct {
	// TargetURL receives the JSON payload via POST.
	TargetURL string
	// Token is sent as a bearer credential when set.
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type WebhookPublisher struct {
	client         *fasthttp.Client
	targetURL      string
	token          string
	maxRetries     int
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig) (*WebhookPublisher, error) {
	targetURL, err := validateTargetURL(cfg.TargetURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid report webhook target")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookPublisher{
		client:         &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		targetURL:      targetURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     cfg.MaxRetries,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

// Publish posts the payload as JSON. Transient failures (network errors,
// 408/429/5xx) are retried and feed the circuit breaker; any 2xx counts
// as delivered.
func (p *WebhookPublisher) Publish(ctx context.Context, kind string, payload any) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "report webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("report webhook is temporarily unavailable: %w", err)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal report payload")
	}
	_, _ = buf.Write(body)

	err = p.deliver(ctx, kind, buf.Bytes())
	if p.circuitEnabled {
		if err != nil && crerr.Is(err, errWebhookTransient) {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "report delivered", "kind", kind, "bytes", buf.Len())
	return nil
}

func (p *WebhookPublisher) deliver(ctx context.Context, kind string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(p.targetURL)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.Header.Set("x-report-kind", kind)
		if p.token != "" {
			req.Header.Set("authorization", "Bearer "+p.token)
		}
		req.SetBody(body)

		err := p.client.DoTimeout(req, resp, p.timeout)
		status := resp.StatusCode()
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send report: %v", errWebhookTransient, err)
		case status >= 200 && status < 300:
			return nil
		case status == fasthttp.StatusRequestTimeout || status == fasthttp.StatusTooManyRequests || status >= 500:
			lastErr = fmt.Errorf("%w: webhook status=%d", errWebhookTransient, status)
		default:
			return fmt.Errorf("webhook status=%d", status)
		}

		if attempt == p.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("report delivery failed")
	}
	p.logger.WarnContext(ctx, "report delivery failed", "kind", kind, "error", lastErr)
	return lastErr
}

func validateTargetURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}
