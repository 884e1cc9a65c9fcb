package transfermarkt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/scoracle-transfers/internal/config"
)

// RawPage is the markup of one successfully loaded page.
type RawPage struct {
	URL  string
	Body []byte
}

// --------------------------------------------------------------------------
// Injectable strategies
// --------------------------------------------------------------------------

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IdentityProvider picks the User-Agent for one attempt.
type IdentityProvider interface {
	UserAgent() string
}

// Backoff returns how long to wait after the given 1-based failed attempt.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RandomIdentity rotates uniformly over a fixed pool of user agents.
type RandomIdentity struct {
	Agents []string
}

func (r RandomIdentity) UserAgent() string {
	if len(r.Agents) == 0 {
		return config.DefaultUserAgents[rand.IntN(len(config.DefaultUserAgents))]
	}
	return r.Agents[rand.IntN(len(r.Agents))]
}

// LinearJitter draws a base delay uniformly from [Min, Max) and scales it by
// the attempt number, so attempt 2 waits twice as long on average as
// attempt 1. Float64 defaults to math/rand/v2.
type LinearJitter struct {
	Min     time.Duration
	Max     time.Duration
	Float64 func() float64
}

// DefaultBackoff waits 2 to 5s after the first failure and 4 to 10s after the
// second.
var DefaultBackoff = LinearJitter{Min: 2 * time.Second, Max: 5 * time.Second}

func (l LinearJitter) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	draw := rand.Float64
	if l.Float64 != nil {
		draw = l.Float64
	}
	base := float64(l.Min) + draw()*float64(l.Max-l.Min)
	return time.Duration(base * float64(attempt))
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --------------------------------------------------------------------------
// Fetcher
// --------------------------------------------------------------------------

// FetcherConfig holds the Fetcher's collaborators. Zero fields get
// production defaults.
type FetcherConfig struct {
	HTTPClient        Doer
	Timeout           time.Duration
	Identities        IdentityProvider
	Backoff           Backoff
	Sleeper           Sleeper
	RequestsPerMinute int // 0 disables pacing
	Logger            *slog.Logger
}

// Fetcher loads pages with user-agent rotation and jittered linear backoff.
// It holds no per-request state and is safe for concurrent use.
type Fetcher struct {
	client     Doer
	identities IdentityProvider
	backoff    Backoff
	sleeper    Sleeper
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher from cfg.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	identities := cfg.Identities
	if identities == nil {
		identities = RandomIdentity{Agents: config.DefaultUserAgents}
	}
	var backoff Backoff = DefaultBackoff
	if cfg.Backoff != nil {
		backoff = cfg.Backoff
	}
	var sleeper Sleeper = realSleeper{}
	if cfg.Sleeper != nil {
		sleeper = cfg.Sleeper
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		rps := float64(cfg.RequestsPerMinute) / 60.0
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Fetcher{
		client:     client,
		identities: identities,
		backoff:    backoff,
		sleeper:    sleeper,
		limiter:    limiter,
		logger:     logger,
	}
}

// Fetch loads url, retrying transport failures and non-2xx responses up to
// maxAttempts times in total. maxAttempts below 1 means the default.
func (f *Fetcher) Fetch(ctx context.Context, url string, maxAttempts int) (*RawPage, error) {
	if maxAttempts < 1 {
		maxAttempts = config.DefaultMaxAttempts
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := f.get(ctx, url)
		if err == nil {
			return &RawPage{URL: url, Body: body}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		last = err
		f.logger.Info("Request failed", "url", url, "attempt", attempt, "max_attempts", maxAttempts, "error", err)

		if attempt == maxAttempts {
			break
		}
		delay := f.backoff.Delay(attempt)
		f.logger.Info("Waiting to try again", "delay", delay.Round(time.Millisecond))
		if err := f.sleeper.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &FetchExhaustedError{URL: url, Attempts: maxAttempts, Last: last}
}

// get performs one attempt.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.identities.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status code %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
