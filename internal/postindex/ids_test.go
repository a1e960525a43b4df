package postindex

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNativeID(t *testing.T) {
	hex := "0123456789abcdef0123456789abcdef"
	native := ToNativeID(hex)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", native)

	_, err := uuid.Parse(native)
	require.NoError(t, err)

	// already dashed passes through
	assert.Equal(t, native, ToNativeID(native))

	// unexpected length passes through
	assert.Equal(t, "abc", ToNativeID("abc"))
}

func TestFromNativeID(t *testing.T) {
	assert.Equal(t, "0123456789abcdef0123456789abcdef", FromNativeID("01234567-89ab-cdef-0123-456789abcdef"))
	assert.Equal(t, "nodashes", FromNativeID("nodashes"))
}

func TestRoundTrip(t *testing.T) {
	id := FromNativeID(uuid.New().String())
	assert.Equal(t, id, FromNativeID(ToNativeID(id)))
}
