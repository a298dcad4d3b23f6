package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		key         string
		expectedErr error
	}{
		{name: "uuid", key: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "underscores", key: "create_person_000123"},
		{name: "minimum length", key: strings.Repeat("k", MinKeyLength)},
		{name: "maximum length", key: strings.Repeat("k", MaxKeyLength)},
		{name: "too short", key: "short", expectedErr: ErrKeyTooShort},
		{name: "too long", key: strings.Repeat("k", MaxKeyLength+1), expectedErr: ErrKeyTooLong},
		{name: "invalid characters", key: "invalid!key@12345", expectedErr: ErrKeyInvalid},
		{name: "spaces", key: "key with spaces 123", expectedErr: ErrKeyInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tc.key)
			if tc.expectedErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	t.Parallel()

	key := BuildCacheKey("persons", "POST", "/api/pessoas", "550e8400-e29b-41d4-a716-446655440000")

	require.True(t, strings.HasPrefix(key, "idempotency:persons:"))
	require.Equal(t, key, BuildCacheKey("persons", "POST", "/api/pessoas", "550e8400-e29b-41d4-a716-446655440000"))
	require.NotEqual(t, key, BuildCacheKey("persons", "PUT", "/api/pessoas", "550e8400-e29b-41d4-a716-446655440000"))
	require.NotEqual(t, key, BuildCacheKey("persons", "POST", "/api/pessoas/1", "550e8400-e29b-41d4-a716-446655440000"))
	require.True(t, strings.HasPrefix(BuildCacheKey("", "POST", "/", "k"), "idempotency:"))
	require.Len(t, strings.Split(BuildCacheKey("", "POST", "/", "k"), ":"), 2)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	require.Equal(t, Fingerprint([]byte(`{"nome":"Ana"}`)), Fingerprint([]byte(`{"nome":"Ana"}`)))
	require.NotEqual(t, Fingerprint([]byte(`{"nome":"Ana"}`)), Fingerprint([]byte(`{"nome":"Bea"}`)))
}
