package service

import (
	"context"
	"sync"
	"time"

	"github.com/portfolio-content-api/internal/auth"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/validation"
	"github.com/portfolio-content-api/pkg/jwt"
	"github.com/rs/zerolog"
)

// sessionService issues session tokens after the identity provider accepts
// a login. Admin status is recomputed from the policy on every read.
type sessionService struct {
	provider auth.IdentityProvider
	policy   *auth.Policy
	tokens   *jwt.Manager
	log      zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
	// token id -> provider access token, for provider sign-out
	providerTokens map[string]string
	// token id -> expiry of revoked tokens
	revoked map[string]time.Time
}

func newSessionService(provider auth.IdentityProvider, policy *auth.Policy, tokens *jwt.Manager, log zerolog.Logger) *sessionService {
	return &sessionService{
		provider:       provider,
		policy:         policy,
		tokens:         tokens,
		log:            log.With().Str("service", "session").Logger(),
		now:            time.Now,
		providerTokens: make(map[string]string),
		revoked:        make(map[string]time.Time),
	}
}

// Login moves the caller from unauthenticated to authenticated
func (s *sessionService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	const op = "login"

	if err := validation.Login(req); err != nil {
		return nil, models.NewFailure(models.KindValidation, op, err)
	}

	identity, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.log.Info().Err(err).Str("email", req.Email).Msg("Login rejected")
		return nil, wrapFailure(op, err)
	}

	email := identity.User.Email
	if email == "" {
		email = req.Email
	}
	roles := s.policy.RolesFor(email)

	token, claims, err := s.tokens.Generate(identity.User.ID, email, roleNames(roles))
	if err != nil {
		return nil, models.NewFailure(models.KindUpstream, op, err)
	}

	s.mu.Lock()
	s.providerTokens[claims.ID] = identity.AccessToken
	s.mu.Unlock()

	expires := claims.ExpiresAt.Time
	s.log.Info().Str("user_id", identity.User.ID).Bool("admin", s.policy.IsAdmin(email)).Msg("User logged in")

	return &models.Session{
		State:     models.SessionAuthenticated,
		User:      &models.User{ID: identity.User.ID, Email: email},
		Roles:     roles,
		IsAdmin:   s.policy.IsAdmin(email),
		Token:     token,
		ExpiresAt: &expires,
	}, nil
}

// Logout revokes token and signs out of the provider. An invalid or
// already revoked token is a no-op.
func (s *sessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	s.pruneLocked()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	providerToken := s.providerTokens[claims.ID]
	delete(s.providerTokens, claims.ID)
	s.mu.Unlock()

	if err := s.provider.SignOut(ctx, providerToken); err != nil {
		// the local session is already gone
		s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Provider sign-out failed")
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("User logged out")
	return nil
}

// CurrentSession resolves a bearer token to a session. Missing, invalid,
// expired and revoked tokens all resolve to the anonymous session.
func (s *sessionService) CurrentSession(ctx context.Context, token string) *models.Session {
	if token == "" {
		return models.Anonymous()
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		anon := models.Anonymous()
		anon.Error = "session expired or invalid"
		return anon
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return models.Anonymous()
	}

	expires := claims.ExpiresAt.Time
	return &models.Session{
		State:     models.SessionAuthenticated,
		User:      &models.User{ID: claims.UserID, Email: claims.Email},
		Roles:     s.policy.RolesFor(claims.Email),
		IsAdmin:   s.policy.IsAdmin(claims.Email),
		ExpiresAt: &expires,
	}
}

func (s *sessionService) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
}

func roleNames(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
