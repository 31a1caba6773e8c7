package entity

import "github.com/stellar/go/strkey"

// IsValidAddress reports whether s is a checksummed account (G...) or contract (C...) strkey.
func IsValidAddress(s string) bool {
	if strkey.IsValidEd25519PublicKey(s) {
		return true
	}
	_, err := strkey.Decode(strkey.VersionByteContract, s)
	return err == nil
}
