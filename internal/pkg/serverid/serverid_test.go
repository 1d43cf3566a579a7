package serverid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := New("secret")

	sid, err := c.Encode("0b5c7b4e-upload")
	require.NoError(t, err)
	assert.NotContains(t, sid, "0b5c7b4e-upload")

	id, err := c.Decode(sid)
	require.NoError(t, err)
	assert.Equal(t, "0b5c7b4e-upload", id)
}

func TestCodec_RejectsForeignAndGarbage(t *testing.T) {
	sid, err := New("other-secret").Encode("id-1")
	require.NoError(t, err)

	c := New("secret")
	_, err = c.Decode(sid)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = c.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = c.Decode("")
	assert.ErrorIs(t, err, ErrInvalid)
}
