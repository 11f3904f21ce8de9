package merkle_tree

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// SizeAccount byte size of a serialized account
const SizeAccount = 160

var ErrSizeByteSlice = errors.New("byte slice size is inconsistent with an account size")

// Account describes a rollup account. Its tree leaf hashes the four slots
// (pubKey.X, pubKey.Y, nonce, balance) in that order; the index is the
// leaf position and is not part of the leaf hash.
type Account struct {
	Index   uint64
	Nonce   uint64
	Balance fr.Element
	PubKey  eddsa.PublicKey
}

// Reset sets the account to the default empty account: the identity
// public key (0, 1), zero nonce, zero balance.
func (ac *Account) Reset() {
	ac.Index = 0
	ac.Nonce = 0
	ac.Balance.SetZero()
	ac.PubKey.A.X.SetZero()
	ac.PubKey.A.Y.SetOne()
}

// LeafHash returns the MiMC digest of the account's four leaf slots.
func (ac *Account) LeafHash() big.Int {
	var px, py, nonce, balance big.Int
	ac.PubKey.A.X.BigInt(&px)
	ac.PubKey.A.Y.BigInt(&py)
	nonce.SetUint64(ac.Nonce)
	ac.Balance.BigInt(&balance)
	return MimcHash(&px, &py, &nonce, &balance)
}

// Serialize returns the account as a concatenation of 5 chunks of 256 bits:
// index || nonce || balance || pubKey.X || pubKey.Y
func (ac *Account) Serialize() []byte {
	res := make([]byte, SizeAccount)

	binary.BigEndian.PutUint64(res[24:], ac.Index)
	binary.BigEndian.PutUint64(res[56:], ac.Nonce)

	buf := ac.Balance.Bytes()
	copy(res[64:], buf[:])
	buf = ac.PubKey.A.X.Bytes()
	copy(res[96:], buf[:])
	buf = ac.PubKey.A.Y.Bytes()
	copy(res[128:], buf[:])

	return res
}

// Deserialize reconstructs an account from data produced by Serialize.
func Deserialize(res *Account, data []byte) error {
	if len(data) != SizeAccount {
		return ErrSizeByteSlice
	}
	res.Index = binary.BigEndian.Uint64(data[24:32])
	res.Nonce = binary.BigEndian.Uint64(data[56:64])
	res.Balance.SetBytes(data[64:96])
	res.PubKey.A.X.SetBytes(data[96:128])
	res.PubKey.A.Y.SetBytes(data[128:160])
	return nil
}
