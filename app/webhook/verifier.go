// Package webhook verifies signed webhook deliveries from the research
// service. The signed content is "{id}.{timestamp}.{body}", authenticated
// with HMAC-SHA256 under a pre-shared secret. The signature header carries
// one or more space-separated versioned candidates ("v1,<base64>"); a match
// on any supported candidate accepts the delivery.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// IDHeader is the HTTP header carrying the unique message ID.
	IDHeader = "webhook-id"

	// TimestampHeader is the HTTP header carrying the delivery timestamp.
	TimestampHeader = "webhook-timestamp"

	// SignatureHeader is the HTTP header carrying the signature candidates.
	SignatureHeader = "webhook-signature"

	// MaxBodySize is the maximum accepted webhook body size (1MB).
	MaxBodySize = 1 << 20

	// secretPrefix is an optional prefix on the configured secret.
	secretPrefix = "whsec_"

	// supportedVersion is the only signature scheme version accepted.
	supportedVersion = "v1"
)

var (
	// ErrMissingHeaders is returned when any required header is absent.
	ErrMissingHeaders = errors.New("missing webhook headers")

	// ErrInvalidSignature is returned when no signature candidate matches.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Verifier checks webhook signatures against the shared secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier from the configured secret. The secret may
// carry a "whsec_" prefix followed by base64; a plain string is used as-is.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is empty")
	}

	key := []byte(secret)
	if trimmed, ok := strings.CutPrefix(secret, secretPrefix); ok {
		decoded, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode webhook secret: %w", err)
		}
		key = decoded
	}

	return &Verifier{secret: key}, nil
}

// Verify checks the signature header against the signed content
// "{id}.{timestamp}.{body}". Returns ErrMissingHeaders if any header is
// empty and ErrInvalidSignature if no candidate matches.
func (v *Verifier) Verify(id, timestamp, signatureHeader string, body []byte) error {
	if id == "" || timestamp == "" || signatureHeader == "" {
		return ErrMissingHeaders
	}

	expected := v.Sign(id, timestamp, body)

	for _, candidate := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != supportedVersion {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign computes the base64 HMAC-SHA256 signature over the signed content.
// Exposed so tests and local tooling can produce valid deliveries.
func (v *Verifier) Sign(id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
