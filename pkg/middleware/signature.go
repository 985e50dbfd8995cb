package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/logger"
)

const SignatureHeader = "X-Signature-256"

// RequestSignature requires mutating requests to carry an HMAC-SHA256 of the
// body, hex encoded, optionally prefixed with "sha256=".
func RequestSignature(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				rejectSignature(w, log, r, "missing "+SignatureHeader+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				rejectSignature(w, log, r, "failed to read request body")
				return
			}

			if !hmac.Equal([]byte(Sign(secret, body)), []byte(signature)) {
				rejectSignature(w, log, r, "signature mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func extractSignature(r *http.Request) string {
	header := r.Header.Get(SignatureHeader)
	if signature, found := strings.CutPrefix(header, "sha256="); found {
		return signature
	}
	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

func rejectSignature(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Request signature verification failed",
		"request_id", RequestID(r),
		"reason", reason,
		"path", r.URL.Path,
		"client_ip", ClientIP(r),
	)
	writeError(w, http.StatusUnauthorized, apperrors.CodeBadRequest, "Unauthorized")
}
