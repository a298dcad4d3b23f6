package idempotency

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	MinKeyLength = 16
	MaxKeyLength = 128
	KeyPrefix    = "idempotency"
)

var (
	ErrKeyTooShort = errors.New("idempotency key must be at least 16 characters")
	ErrKeyTooLong  = errors.New("idempotency key must not exceed 128 characters")
	ErrKeyInvalid  = errors.New("idempotency key contains invalid characters")

	validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

func Validate(key string) error {
	switch {
	case len(key) < MinKeyLength:
		return ErrKeyTooShort
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case !validKeyPattern.MatchString(key):
		return ErrKeyInvalid
	}

	return nil
}

// BuildCacheKey scopes a client key to the method and path it was used on,
// e.g. "idempotency:persons:1c6f...".
func BuildCacheKey(namespace, method, path, idempotencyKey string) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(method)
	_, _ = digest.WriteString("\x00")
	_, _ = digest.WriteString(path)
	_, _ = digest.WriteString("\x00")
	_, _ = digest.WriteString(idempotencyKey)

	parts := []string{KeyPrefix}
	if namespace != "" {
		parts = append(parts, namespace)
	}

	parts = append(parts, strconv.FormatUint(digest.Sum64(), 16))

	return strings.Join(parts, ":")
}

// Fingerprint identifies a request payload so a reused key with a different
// body can be detected.
func Fingerprint(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}
