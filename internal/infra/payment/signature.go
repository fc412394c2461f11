package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"payment-relay/internal/domain/ports/adapter"
)

var _ adapter.SignatureVerifier = SignatureVerifier{}

// Sign returns the lower-case hex HMAC-SHA256 of "orderID|paymentID" keyed by secret.
func Sign(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature reports whether signature matches the callback fields.
// An empty secret never verifies.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" {
		return false
	}
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignatureVerifier binds the gateway key secret.
type SignatureVerifier struct {
	secret string
}

func NewSignatureVerifier(secret string) SignatureVerifier {
	return SignatureVerifier{secret: secret}
}

func (v SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, v.secret)
}
