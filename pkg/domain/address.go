package domain

import "github.com/ethereum/go-ethereum/common"

// SystemAddress derives the fixed account of an in-process component, e.g.
// the registrar that holds the registrar role or the treasury escrow.
func SystemAddress(name string) common.Address {
	return common.BytesToAddress(Keccak256([]byte("zns:" + name)).Bytes()[12:])
}

// IsZero reports whether addr is the zero address.
func IsZero(addr common.Address) bool {
	return addr == (common.Address{})
}
