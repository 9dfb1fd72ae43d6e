// Package webhook – signature.go validates the X-Line-Signature header:
// base64 of HMAC-SHA256 over the raw request body, keyed by the channel
// secret.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// validSignature reports whether sig matches the expected digest of body.
// An empty secret disables validation (local development only).
func validSignature(secret string, body []byte, sig string) bool {
	if secret == "" {
		return true
	}
	if sig == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
