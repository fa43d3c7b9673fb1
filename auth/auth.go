package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"cafefinder/config"
	"cafefinder/model"
	"cafefinder/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Gate checks the single shared password that unlocks editing and removal.
// It is a convenience lock, not identity: there is no lockout or rate limit.
type Gate struct {
	hash        []byte
	tokenSecret []byte
	tokenTTL    time.Duration
}

// Grant is handed to a caller that presented the right password.
type Grant struct {
	Token     string
	ExpiresAt time.Time
}

func NewGate(cfg config.AccessConfig) (*Gate, error) {
	if cfg.Password == "" {
		return nil, errors.New("access password is required")
	}
	hash, err := bcrypt.GenerateFromPassword(digest(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash access password: %w", err)
	}

	secret := cfg.TokenSecret
	if secret == "" {
		// tokens then only survive until restart
		secret = uuid.NewString()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Gate{hash: hash, tokenSecret: []byte(secret), tokenTTL: ttl}, nil
}

func (g *Gate) Check(attempt string) bool {
	if attempt == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, digest(attempt)) == nil
}

// digest keeps bcrypt input under its 72 byte limit so the whole password
// takes part in the comparison.
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// Open checks attempt and, when it matches, issues a short-lived token.
func (g *Gate) Open(attempt string) (Grant, error) {
	if !g.Check(attempt) {
		return Grant{}, model.ErrAccessDenied
	}
	token, expires, err := utils.GenerateGateToken(g.tokenSecret, g.tokenTTL)
	if err != nil {
		return Grant{}, fmt.Errorf("sign gate token: %w", err)
	}
	return Grant{Token: token, ExpiresAt: expires}, nil
}

// Authorize accepts either a token issued by Open or the password itself.
func (g *Gate) Authorize(token, password string) error {
	if token != "" {
		if err := utils.ValidateGateToken(g.tokenSecret, token); err != nil {
			return fmt.Errorf("%w: %v", model.ErrAccessDenied, err)
		}
		return nil
	}
	if g.Check(password) {
		return nil
	}
	return model.ErrAccessDenied
}
