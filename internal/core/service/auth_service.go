package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriscience/catalog/internal/api/metrics"
	"github.com/agriscience/catalog/internal/core/domain"
	"github.com/agriscience/catalog/internal/core/ports"
)

// DevelopmentSecret signs credentials when no JWT secret is configured.
// It is public knowledge and must never be relied on in production.
const DevelopmentSecret = "default-jwt-secret-key-for-development-only-change-in-production-min-32-chars"

// AuthConfig holds the operator credentials and signing material.
type AuthConfig struct {
	AdminEmail    string
	AdminPassword string
	// AdminPasswordHash is a bcrypt hash. When set it is used instead of
	// AdminPassword.
	AdminPasswordHash string
	OwnerEmails       []string
	Secret            string
	Production        bool
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService implements login and stateless credential verification for
// the single operator.
type AuthService struct {
	cfg     AuthConfig
	owners  map[string]struct{}
	secret  []byte
	revoked ports.RevocationList
	now     func() time.Time
	log     zerolog.Logger
}

// NewAuthService builds the service. revoked may be nil, in which case
// credentials stay valid until they expire.
func NewAuthService(cfg AuthConfig, revoked ports.RevocationList, log zerolog.Logger) *AuthService {
	log = log.With().Str("component", "auth").Logger()

	owners := make(map[string]struct{}, len(cfg.OwnerEmails))
	for _, e := range cfg.OwnerEmails {
		if e = normalizeEmail(e); e != "" {
			owners[e] = struct{}{}
		}
	}

	secret := cfg.Secret
	if secret == "" {
		secret = DevelopmentSecret
		ev := log.Warn()
		if cfg.Production {
			ev = log.Error()
		}
		ev.Str("kind", "configuration").
			Msg("JWT_SECRET is not set, signing sessions with the development fallback secret; set JWT_SECRET before deploying")
	} else {
		log.Debug().Int("secret_length", len(secret)).Msg("session signing secret configured")
	}

	s := &AuthService{
		cfg:     cfg,
		owners:  owners,
		secret:  []byte(secret),
		revoked: revoked,
		now:     time.Now,
		log:     log,
	}

	if !s.credentialsConfigured() {
		log.Error().Str("kind", "configuration").Msg("ADMIN_EMAIL and ADMIN_PASSWORD are not configured, login is disabled")
	}
	if len(owners) == 0 {
		log.Warn().Str("kind", "configuration").Msg("ADMIN_OWNER_EMAILS is empty, no one can reach the admin area")
	}
	return s
}

func (s *AuthService) credentialsConfigured() bool {
	return s.cfg.AdminEmail != "" && (s.cfg.AdminPassword != "" || s.cfg.AdminPasswordHash != "")
}

// Authenticate reports whether email and password match the configured
// operator exactly. It does not consult the owner allow-list.
func (s *AuthService) Authenticate(email, password string) (bool, error) {
	if !s.credentialsConfigured() {
		return false, domain.ErrAuthNotConfigured
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.AdminEmail)) == 1

	var passwordOK bool
	if s.cfg.AdminPasswordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	}

	return emailOK && passwordOK, nil
}

// IsAuthorizedOwner matches email against the allow-list ignoring case and
// surrounding whitespace.
func (s *AuthService) IsAuthorizedOwner(email string) bool {
	e := normalizeEmail(email)
	if e == "" {
		return false
	}
	_, ok := s.owners[e]
	return ok
}

// IssueCredential signs a token for email valid for domain.SessionTTL.
func (s *AuthService) IssueCredential(email string) (string, *domain.Session, error) {
	// NumericDate has second precision; truncating keeps the returned
	// session identical to what verification will later decode.
	issued := s.now().UTC().Truncate(time.Second)
	session := &domain.Session{
		TokenID:   uuid.NewString(),
		Email:     email,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(domain.SessionTTL),
	}

	claims := sessionClaims{
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, session, nil
}

// VerifyCredential checks signature, expiry and revocation. A credential is
// no longer valid at the exact instant it expires.
func (s *AuthService) VerifyCredential(ctx context.Context, token string) (*domain.Session, bool) {
	if token == "" {
		return nil, false
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Email == "" {
		s.log.Debug().Err(err).Msg("credential rejected")
		metrics.CredentialVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, false
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation lookup failed, rejecting credential")
			metrics.CredentialVerificationsTotal.WithLabelValues("invalid").Inc()
			return nil, false
		}
		if revoked {
			metrics.CredentialVerificationsTotal.WithLabelValues("revoked").Inc()
			return nil, false
		}
	}

	metrics.CredentialVerificationsTotal.WithLabelValues("valid").Inc()

	session := &domain.Session{
		TokenID:   claims.ID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return session, true
}

// Login authenticates the operator and, if the email is an owner, issues a
// credential. Missing configuration surfaces as domain.ErrAuthNotConfigured.
func (s *AuthService) Login(_ context.Context, email, password string) (string, *domain.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("missing_fields").Inc()
		return "", nil, domain.ErrMissingCredentials
	}

	ok, err := s.Authenticate(email, password)
	if err != nil {
		s.log.Error().Err(err).Str("kind", "configuration").Msg("login attempted without configured admin credentials")
		metrics.LoginAttemptsTotal.WithLabelValues("misconfigured").Inc()
		return "", nil, err
	}
	if !ok {
		s.log.Info().Msg("login rejected: invalid credentials")
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}
	if !s.IsAuthorizedOwner(email) {
		s.log.Warn().Msg("login rejected: email is not an owner")
		metrics.LoginAttemptsTotal.WithLabelValues("not_authorized").Inc()
		return "", nil, domain.ErrNotAuthorized
	}

	token, session, err := s.IssueCredential(email)
	if err != nil {
		return "", nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("session_id", session.TokenID).Msg("operator signed in")
	return token, session, nil
}

// Logout revokes the session until its expiry when a revocation list is
// configured. Without one there is nothing to do server-side.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	if s.revoked == nil || session == nil || session.TokenID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info().Str("session_id", session.TokenID).Msg("session revoked")
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
