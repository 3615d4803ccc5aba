package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Root is the identifier of the tree root. Top-level domains are its children.
var Root = common.Hash{}

// Keccak256 hashes the concatenation of data.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// LabelHash hashes a single label.
func LabelHash(label string) common.Hash {
	return Keccak256([]byte(label))
}

// HashOf derives a domain identifier from its parent and label. Top-level
// domains hash the label alone; every other domain hashes the parent id
// followed by the label hash.
func HashOf(parent common.Hash, label string) common.Hash {
	if parent == Root {
		return LabelHash(label)
	}
	lh := LabelHash(label)
	return Keccak256(parent.Bytes(), lh.Bytes())
}

// HashPath derives the identifier of a dotted path given leaf-last labels,
// e.g. HashPath("wilder", "beasts") for "beasts.wilder".
func HashPath(labels ...string) common.Hash {
	h := Root
	for _, l := range labels {
		h = HashOf(h, l)
	}
	return h
}

// TokenID is the ownership token id of a domain: its hash as a big-endian integer.
func TokenID(hash common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(hash.Bytes())
}

// HashFromTokenID reverses TokenID.
func HashFromTokenID(id *uint256.Int) common.Hash {
	return common.Hash(id.Bytes32())
}
