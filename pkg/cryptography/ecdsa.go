package cryptography

import (
	"crypto/elliptic"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

func validateSecp256k1(compressed []byte) error {
	if _, err := ethCrypto.DecompressPubkey(compressed); err != nil {
		return errors.Wrap(ErrInvalidKey, err.Error())
	}

	return nil
}

func validateP256(compressed []byte) error {
	x, _ := elliptic.UnmarshalCompressed(elliptic.P256(), compressed)
	if x == nil {
		return errors.Wrap(ErrInvalidKey, "not a compressed P-256 point")
	}

	return nil
}
