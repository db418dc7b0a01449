package tensorboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasan-suufi/tensorboard"
)

func TestValidateBlobKey_AcceptsUnreservedCharset(t *testing.T) {
	valid := []string{
		"a",
		"abcXYZ019",
		"with.dots_and-dashes~too",
		"8f14e45f-ceea-467f-9a5f-8e1f1b2c3d4e",
	}
	for _, key := range valid {
		assert.NoError(t, tensorboard.ValidateBlobKey(key), "key %q", key)
	}
}

func TestValidateBlobKey_RejectsEmptyKey(t *testing.T) {
	err := tensorboard.ValidateBlobKey("")
	require.Error(t, err)
	assert.True(t, tensorboard.IsInvalidArgument(err))
}

func TestValidateBlobKey_RejectsReservedCharacters(t *testing.T) {
	invalid := []string{
		"has space",
		"slash/inside",
		"colon:inside",
		"percent%41",
		"question?mark",
		"plus+sign",
		"unicode-é",
	}
	for _, key := range invalid {
		err := tensorboard.ValidateBlobKey(key)
		require.Error(t, err, "key %q", key)
		assert.True(t, tensorboard.IsInvalidArgument(err), "key %q", key)
	}
}

func TestNewBlobKey_MintsValidUniqueKeys(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := tensorboard.NewBlobKey()
		require.NoError(t, tensorboard.ValidateBlobKey(key))
		assert.False(t, seen[key], "key %q minted twice", key)
		seen[key] = true
	}
}
