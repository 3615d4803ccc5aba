package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHashing pins the identifier derivation. Identifiers are persisted and
// published to indexers, so any drift here silently orphans existing domains.
func TestHashing(t *testing.T) {
	t.Run("keccak256 of empty input", func(t *testing.T) {
		assert.Equal(t,
			common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
			Keccak256(),
		)
	})

	t.Run("label hash matches known vector", func(t *testing.T) {
		assert.Equal(t,
			common.HexToHash("0x4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0"),
			LabelHash("eth"),
		)
	})

	t.Run("top-level domain hashes the label alone", func(t *testing.T) {
		assert.Equal(t, LabelHash("wilder"), HashOf(Root, "wilder"))
	})

	t.Run("child hashes parent then label hash", func(t *testing.T) {
		parent := HashOf(Root, "wilder")
		lh := LabelHash("beasts")
		expected := Keccak256(parent.Bytes(), lh.Bytes())
		assert.Equal(t, expected, HashOf(parent, "beasts"))
	})

	t.Run("path derivation chains parents", func(t *testing.T) {
		expected := HashOf(HashOf(HashOf(Root, "wilder"), "beasts"), "wolf")
		assert.Equal(t, expected, HashPath("wilder", "beasts", "wolf"))
	})

	t.Run("siblings never collide", func(t *testing.T) {
		parent := HashOf(Root, "wilder")
		assert.NotEqual(t, HashOf(parent, "a"), HashOf(parent, "b"))
		assert.NotEqual(t, HashOf(Root, "a"), HashOf(parent, "a"))
	})
}

func TestTokenID(t *testing.T) {
	hash := HashPath("wilder", "beasts")
	id := TokenID(hash)
	require.NotNil(t, id)
	assert.Equal(t, hash, HashFromTokenID(id))
	assert.True(t, TokenID(Root).IsZero())
}
