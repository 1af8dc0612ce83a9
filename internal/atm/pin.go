package atm

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

type pinDigest [blake2b.Size256]byte

// digestPin binds the pin to its account so equal pins on different
// accounts do not share a digest.
func digestPin(account, pin string) pinDigest {
	return blake2b.Sum256([]byte(account + "\x00" + pin))
}

func (d pinDigest) matches(account, pin string) bool {
	got := digestPin(account, pin)
	return subtle.ConstantTimeCompare(d[:], got[:]) == 1
}
