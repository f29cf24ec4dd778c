package atelier

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every way a bearer token can fail verification.
// Callers get no more detail than that; the log does.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer mints and verifies signed, expiring admin tokens. A token is
// base64url(payload) + "." + base64url(HMAC-SHA256(payload)) where payload
// is "<unix expiry>.<random nonce>". Tokens are stateless: restarting the
// server does not revoke them, rotating the secret does.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a fresh token valid for the configured TTL.
func (t *TokenIssuer) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token nonce: %w", err)
	}
	exp := time.Now().Add(t.ttl).Unix()
	payload := strconv.FormatInt(exp, 10) + "." + hex.EncodeToString(nonce)
	sig := t.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." +
		base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks the signature and expiry of a token produced by Issue.
func (t *TokenIssuer) Verify(token string) error {
	encPayload, encSig, ok := strings.Cut(token, ".")
	if !ok {
		return ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil {
		return ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal(sig, t.sign(string(payload))) {
		return ErrInvalidToken
	}
	expStr, _, ok := strings.Cut(string(payload), ".")
	if !ok {
		return ErrInvalidToken
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() >= exp {
		return ErrInvalidToken
	}
	return nil
}

func (t *TokenIssuer) sign(payload string) []byte {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// VerifyPassword checks a login attempt against the configured credential.
// A bcrypt hash is preferred; the plaintext fallback uses a constant-time
// compare so neither path leaks timing.
func VerifyPassword(cfg *Config, password string) bool {
	if cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(cfg.AdminPassword), []byte(password)) == 1
}
