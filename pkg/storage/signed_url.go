package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("download token is invalid")
	ErrTokenExpired = errors.New("download token has expired")
)

// SignedURLSigner issues tamper-proof download tokens for generated
// files. A token embeds the job ID, an expiry timestamp and the storage
// path, signed with an HMAC secret.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Token format: <jobID>.<expiresUnix>.<base64(path)>.<hexSig>
func (s *SignedURLSigner) Sign(jobID, relPath string) string {
	expires := time.Now().Add(s.ttl).Unix()
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	payload := fmt.Sprintf("%s.%d.%s", jobID, expires, encodedPath)

	return payload + "." + s.signature(payload)
}

// Verify validates a token and returns the job ID and storage path it
// was issued for.
func (s *SignedURLSigner) Verify(token string) (jobID, relPath string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", ErrTokenInvalid
	}

	payload := strings.Join(parts[:3], ".")
	if !hmac.Equal([]byte(s.signature(payload)), []byte(parts[3])) {
		return "", "", ErrTokenInvalid
	}

	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", ErrTokenInvalid
	}
	if time.Now().Unix() > expires {
		return "", "", ErrTokenExpired
	}

	pathBytes, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	return parts[0], string(pathBytes), nil
}

func (s *SignedURLSigner) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
