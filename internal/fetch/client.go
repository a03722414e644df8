package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/metrics"
	"github.com/quantti/tapas-fpl-app/internal/store"
)

// Resource names one upstream document and where it is cached.
type Resource struct {
	Endpoint string // metrics label, e.g. "bootstrap"
	URLPath  string
	RelPath  string
	// TTL is how long a cached copy stays fresh; zero never expires.
	TTL time.Duration
}

type Client struct {
	HTTP           *http.Client
	Store          *store.JSONStore
	BaseURL        string
	UserAgent      string
	Sleep          time.Duration
	PrettyWrite    bool
	UseCache       bool
	DisableWrite   bool
	ServeStale     bool
	MaxRetries     uint64
	InitialBackoff time.Duration
	LiveTTL        time.Duration
	StaticTTL      time.Duration

	log     *logrus.Entry
	breaker *gobreaker.CircuitBreaker

	limitOnce sync.Once
	limit     *rate.Limiter
}

func NewClient(st *store.JSONStore, log logrus.FieldLogger) *Client {
	c := &Client{
		HTTP:           &http.Client{Timeout: 20 * time.Second},
		Store:          st,
		BaseURL:        "https://fantasy.premierleague.com/api",
		UserAgent:      "tapas-fpl/1.0",
		Sleep:          250 * time.Millisecond,
		PrettyWrite:    true,
		UseCache:       true,
		ServeStale:     true,
		MaxRetries:     4,
		InitialBackoff: 500 * time.Millisecond,
		LiveTTL:        time.Minute,
		StaticTTL:      10 * time.Minute,
		log:            log.WithField("component", "fetch"),
	}
	c.SetBreakerTimeout(30 * time.Second)
	return c
}

// NewFromConfig builds a client with its cache rooted at cfg.RawRoot.
func NewFromConfig(cfg config.Upstream, log logrus.FieldLogger) *Client {
	c := NewClient(store.NewJSONStore(cfg.RawRoot), log)
	c.HTTP.Timeout = cfg.Timeout
	c.BaseURL = cfg.BaseURL
	c.UserAgent = cfg.UserAgent
	c.Sleep = cfg.Sleep
	c.MaxRetries = cfg.MaxRetries
	c.LiveTTL = cfg.LiveTTL
	c.StaticTTL = cfg.StaticTTL
	c.SetBreakerTimeout(cfg.BreakerTimeout)
	return c
}

// SetBreakerTimeout replaces the circuit breaker; timeout is how long it
// stays open before letting a probe through.
func (c *Client) SetBreakerTimeout(timeout time.Duration) {
	log := c.log
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fpl-api",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

// BreakerState exposes the breaker state for health reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// FetchRaw returns the document from the cache when fresh, otherwise from
// the network, writing it back to the cache. When the upstream is down or
// recalculating and ServeStale is set, a stale cached copy is returned.
func (c *Client) FetchRaw(ctx context.Context, res Resource, force bool) ([]byte, error) {
	if !force && c.UseCache && c.Store.Fresh(res.RelPath, res.TTL) {
		if b, err := c.Store.ReadRaw(res.RelPath); err == nil {
			metrics.FetchRequests.WithLabelValues(res.Endpoint, metrics.ResultCached).Inc()
			return b, nil
		}
	}

	body, err := c.fetchWithRetry(ctx, res)
	if err != nil {
		metrics.FetchRequests.WithLabelValues(res.Endpoint, resultLabel(err)).Inc()
		if c.ServeStale && c.UseCache && (errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRecalculating)) {
			if b, rerr := c.Store.ReadRaw(res.RelPath); rerr == nil {
				c.log.WithError(err).WithField("path", res.URLPath).Warn("serving stale cache")
				return b, nil
			}
		}
		return nil, err
	}
	metrics.FetchRequests.WithLabelValues(res.Endpoint, metrics.ResultOK).Inc()

	if !c.DisableWrite {
		if err := c.Store.WriteRaw(res.RelPath, body, c.PrettyWrite); err != nil {
			return nil, fmt.Errorf("cache %s: %w", res.RelPath, err)
		}
	}
	return body, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, res Resource) ([]byte, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.InitialBackoff
	eb.MaxElapsedTime = 0
	var b backoff.BackOff = backoff.WithContext(backoff.WithMaxRetries(eb, c.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		body, err := c.get(ctx, res)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		if !Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		c.log.WithFields(logrus.Fields{
			"path":    res.URLPath,
			"attempt": attempt,
		}).WithError(err).Debug("upstream request failed, retrying")
		return nil, err
	}, b)
}

// limiter spaces requests at least Sleep apart across all goroutines. It is
// built on first use so Sleep can be set after NewClient.
func (c *Client) limiter() *rate.Limiter {
	c.limitOnce.Do(func() {
		if c.Sleep > 0 {
			c.limit = rate.NewLimiter(rate.Every(c.Sleep), 1)
		}
	})
	return c.limit
}

func (c *Client) get(ctx context.Context, res Resource) ([]byte, error) {
	if lim := c.limiter(); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		start := time.Now()
		defer func() {
			metrics.FetchDuration.WithLabelValues(res.Endpoint).Observe(time.Since(start).Seconds())
		}()
		return c.do(ctx, res.URLPath)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("GET %s: %w: %w", res.URLPath, errBreakerOpen, ErrUnavailable)
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) do(ctx context.Context, urlPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+urlPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("GET %s: %w: %w", urlPath, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w: %w", urlPath, ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable && bytes.Contains(body, []byte(recalculatingMarker)) {
		return nil, fmt.Errorf("GET %s: %w", urlPath, ErrRecalculating)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: urlPath, Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrRecalculating):
		return metrics.ResultRecalculating
	case errors.Is(err, ErrUnavailable):
		return metrics.ResultUnavailable
	default:
		return metrics.ResultError
	}
}
