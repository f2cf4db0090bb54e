package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiFieldTokenRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	token := EncodeMultiFieldToken(ts.Format(time.RFC3339Nano), "entry-42")

	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	parsed, err := time.Parse(time.RFC3339Nano, fields[0])
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
	assert.Equal(t, "entry-42", fields[1])
}

func TestDecodeMultiFieldTokenRejectsGarbage(t *testing.T) {
	_, err := DecodeMultiFieldToken("not-base64!!")
	assert.Error(t, err)
}

func TestDateBasedTokenRoundTrip(t *testing.T) {
	ts := time.Now().UTC().Truncate(time.Microsecond)
	decoded, err := DecodeDateBasedToken(EncodeDateBasedToken(ts))
	require.NoError(t, err)
	assert.True(t, decoded.Equal(ts))
}
