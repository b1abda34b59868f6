package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/rs/zerolog"
)

// Resolver turns request credentials into an Identity
type Resolver struct {
	users         repository.UserRepository
	sessions      repository.SessionRepository
	secret        []byte
	cookie        string
	autoProvision bool
	now           func() time.Time
	log           zerolog.Logger
}

// NewResolver creates a resolver backed by the user and session stores
func NewResolver(repos *repository.Repositories, cfg config.AuthConfig, log zerolog.Logger) *Resolver {
	return &Resolver{
		users:         repos.User,
		sessions:      repos.Session,
		secret:        []byte(cfg.JWTSecret),
		cookie:        cfg.SessionCookie,
		autoProvision: cfg.AutoProvision,
		now:           time.Now,
		log:           log.With().Str("component", "auth").Logger(),
	}
}

// Resolve returns the caller identity, or nil for anonymous requests.
// A bearer token that fails verification is an error; an unknown or expired
// session cookie is treated as anonymous.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*Identity, error) {
	if header := req.Header.Get("Authorization"); header != "" {
		token, ok := bearerToken(header)
		if !ok {
			return nil, ErrInvalidToken
		}
		return r.fromToken(ctx, token)
	}

	if c, err := req.Cookie(r.cookie); err == nil && c.Value != "" {
		return r.fromSession(ctx, c.Value)
	}
	return nil, nil
}

func (r *Resolver) fromToken(ctx context.Context, token string) (*Identity, error) {
	if len(r.secret) == 0 {
		return nil, fmt.Errorf("%w: token verification is not configured", ErrInvalidToken)
	}

	claims, err := ParseToken(r.secret, token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if r.autoProvision {
		// refresh identity fields on every verified callback; role is left alone
		provisioned, err := r.users.Upsert(ctx, upsertFromClaims(claims, user))
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			// the token's email belongs to another row; keep what was loaded
			r.log.Warn().Err(err).Str("user_id", claims.Subject).Msg("Skipping user refresh")
		case err != nil:
			return nil, fmt.Errorf("failed to provision user: %w", err)
		default:
			user = provisioned
		}
	}

	return &Identity{UserID: claims.Subject, User: user}, nil
}

func (r *Resolver) fromSession(ctx context.Context, sid string) (*Identity, error) {
	session, err := r.sessions.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.Expired(r.now()) || session.Data.UserID == "" {
		return nil, nil
	}

	user, err := r.users.GetByID(ctx, session.Data.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &Identity{UserID: session.Data.UserID, User: user}, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func upsertFromClaims(claims *Claims, existing *models.User) *models.UpsertUser {
	in := &models.UpsertUser{
		ID:              claims.Subject,
		Email:           optional(claims.Email),
		FirstName:       optional(claims.GivenName),
		LastName:        optional(claims.FamilyName),
		ProfileImageURL: optional(claims.Picture),
		Username:        optional(claims.PreferredUsername),
	}
	if existing != nil {
		// claims may omit fields; keep what is stored
		if in.Email == nil {
			in.Email = existing.Email
		}
		if in.FirstName == nil {
			in.FirstName = existing.FirstName
		}
		if in.LastName == nil {
			in.LastName = existing.LastName
		}
		if in.ProfileImageURL == nil {
			in.ProfileImageURL = existing.ProfileImageURL
		}
	}
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
