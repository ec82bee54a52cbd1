package services

import (
	"sync"
	"time"

	"linecheck/config"
	"linecheck/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialService holds the bearer credential attached to upstream
// requests. It never issues or verifies tokens; it only knows whether one is
// present and, for parseable JWTs, whether it has locally expired so the
// poller can stop invalidating while logged out.
type CredentialService struct {
	mu    sync.RWMutex
	token string
	log   logger.Logger
}

func NewCredentialService(cfg config.Config) *CredentialService {
	return &CredentialService{
		token: cfg.OpsAPIToken,
		log:   logger.New("CredentialService"),
	}
}

func (s *CredentialService) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *CredentialService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HasValidCredential reports whether a credential is present and not known to
// be expired. Opaque (non-JWT) tokens count as valid; a JWT without an expiry
// claim counts as valid. Signature verification is the upstream API's job.
func (s *CredentialService) HasValidCredential() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.After(time.Now())
}
