// Package session owns the ride-data provider credential: renewal before
// expiry, outbound request pacing, and a single renew-and-retry on rejection.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrUnauthenticated means no credential is installed.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrAuthenticationExpired means renewal failed or the provider rejected
	// a freshly renewed credential. The session is cleared; the caller must
	// re-authenticate.
	ErrAuthenticationExpired = errors.New("authentication expired")
	// ErrRateLimited means the provider signalled quota exhaustion. The
	// manager does not retry; the caller should back off.
	ErrRateLimited = errors.New("rate limited by provider")
)

// Credentials are renewed this long before their stated expiry.
const renewalWindow = 5 * time.Minute

// Credential is short-lived access material issued by the identity provider.
// ExpiresAt is unix milliseconds and is the authoritative staleness source.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// TokenSource exchanges a refresh token for a new credential.
type TokenSource interface {
	Refresh(ctx context.Context, refreshToken string) (Credential, error)
}

// Manager guarantees every outbound provider call carries a currently-valid
// credential and respects a minimum inter-request interval. Calls through one
// manager are serialized; the credential is owned exclusively by the manager
// and mutated only by renewal, Authenticate, and Logout.
type Manager struct {
	mu          sync.Mutex
	cred        Credential
	tokens      TokenSource
	httpc       *http.Client
	minInterval time.Duration
	lastRequest time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewManager(cred Credential, tokens TokenSource, minInterval time.Duration) *Manager {
	return &Manager{
		cred:        cred,
		tokens:      tokens,
		httpc:       &http.Client{Timeout: 30 * time.Second},
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Authenticate installs a credential, replacing any previous one.
func (m *Manager) Authenticate(cred Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
}

// Logout clears the credential.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = Credential{}
}

// Credential returns a copy of the current credential for inspection.
func (m *Manager) Credential() Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}

// EnsureValid renews the credential if it is inside the renewal window.
// It fails with ErrUnauthenticated when no credential is installed, and with
// ErrAuthenticationExpired (clearing the session) when renewal fails.
func (m *Manager) EnsureValid(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureValidLocked(ctx)
}

// Request performs a GET against the provider with a valid credential and
// pacing applied. A 401 triggers exactly one renew-and-retry cycle; a second
// 401 is fatal. A 429 surfaces as ErrRateLimited without retrying.
func (m *Manager) Request(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureValidLocked(ctx); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := m.paceLocked(ctx); err != nil {
			return nil, err
		}

		status, body, err := m.do(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("provider request: %w", err)
		}

		switch {
		case status == http.StatusUnauthorized:
			if attempt >= 1 {
				m.cred = Credential{}
				return nil, fmt.Errorf("authorization rejected after renewal: %w", ErrAuthenticationExpired)
			}
			if err := m.renewLocked(ctx); err != nil {
				return nil, err
			}
		case status == http.StatusTooManyRequests:
			return nil, fmt.Errorf("provider quota exhausted: %w", ErrRateLimited)
		case status >= 200 && status < 300:
			return body, nil
		default:
			return nil, fmt.Errorf("provider returned status %d", status)
		}
	}
}

func (m *Manager) ensureValidLocked(ctx context.Context) error {
	if m.cred.AccessToken == "" {
		return ErrUnauthenticated
	}
	if m.now().UnixMilli() >= m.cred.ExpiresAt-renewalWindow.Milliseconds() {
		return m.renewLocked(ctx)
	}
	return nil
}

func (m *Manager) renewLocked(ctx context.Context) error {
	cred, err := m.tokens.Refresh(ctx, m.cred.RefreshToken)
	if err != nil {
		m.cred = Credential{}
		return fmt.Errorf("credential renewal failed (%v): %w", err, ErrAuthenticationExpired)
	}
	m.cred = cred
	return nil
}

// paceLocked suspends the caller until the minimum inter-request interval has
// passed since the previous call through this manager.
func (m *Manager) paceLocked(ctx context.Context) error {
	if !m.lastRequest.IsZero() {
		if wait := m.minInterval - m.now().Sub(m.lastRequest); wait > 0 {
			if err := m.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	m.lastRequest = m.now()
	return nil
}

func (m *Manager) do(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.cred.AccessToken)

	resp, err := m.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
