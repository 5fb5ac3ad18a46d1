// Package auth wraps the external identity provider and the role policy
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/models"
	"github.com/rs/zerolog"
)

// Identity is a successful sign-in
type Identity struct {
	User        models.User
	AccessToken string
	ExpiresIn   time.Duration
}

// IdentityProvider authenticates users against an external service
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
}

// GoTrueProvider speaks the GoTrue REST API used by Supabase auth
type GoTrueProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewGoTrueProvider creates a provider for cfg.ProviderURL
func NewGoTrueProvider(cfg config.AuthConfig, log zerolog.Logger) *GoTrueProvider {
	return &GoTrueProvider{
		baseURL:    strings.TrimRight(cfg.ProviderURL, "/"),
		apiKey:     cfg.ProviderKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "identity_provider").Logger(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e providerError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Error != "":
		return e.Error
	}
	return "authentication failed"
}

// SignIn exchanges email and password for an access token
func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	const op = "sign in"

	if p.baseURL == "" {
		return nil, models.NewFailure(models.KindUpstream, op, fmt.Errorf("identity provider is not configured"))
	}

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, models.NewFailure(models.KindUpstream, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Msg("Identity provider unreachable")
		return nil, models.NewFailure(models.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, models.NewFailure(models.KindNetwork, op, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusUnprocessableEntity:
		var pe providerError
		json.Unmarshal(raw, &pe)
		return nil, models.NewFailure(models.KindAuth, op, fmt.Errorf("%s", pe.message()))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, models.NewFailure(models.KindUpstream, op, fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, models.NewFailure(models.KindUpstream, op, fmt.Errorf("failed to decode token response: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, models.NewFailure(models.KindUpstream, op, fmt.Errorf("token response carried no access token"))
	}

	return &Identity{
		User:        models.User{ID: tr.User.ID, Email: tr.User.Email},
		AccessToken: tr.AccessToken,
		ExpiresIn:   time.Duration(tr.ExpiresIn) * time.Second,
	}, nil
}

// SignOut revokes the provider session behind accessToken
func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	const op = "sign out"

	if p.baseURL == "" || accessToken == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return models.NewFailure(models.KindUpstream, op, err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.NewFailure(models.KindNetwork, op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// an already expired provider session is as good as a revoked one
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.NewFailure(models.KindUpstream, op, fmt.Errorf("provider returned status %d", resp.StatusCode))
	}
	return nil
}
