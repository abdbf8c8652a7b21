package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"velotime/internal/session"
)

const defaultTokenURL = "https://www.strava.com/oauth/token"

// TokenSource renews Strava credentials with the refresh-token grant.
// It implements session.TokenSource.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpc        *http.Client
	now          func() time.Time
}

func NewTokenSource(clientID, clientSecret string) *TokenSource {
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}

// Refresh exchanges a refresh token for a new credential.
func (s *TokenSource) Refresh(ctx context.Context, refreshToken string) (session.Credential, error) {
	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return session.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return session.Credential{}, fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Credential{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return session.Credential{}, fmt.Errorf("token refresh failed: status %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return session.Credential{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return session.Credential{}, fmt.Errorf("token response missing access_token")
	}

	expiresAt := tok.ExpiresAt * 1000
	if tok.ExpiresAt == 0 {
		expiresAt = s.now().Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli()
	}
	return session.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
