package rollup

import (
	"math/big"

	merkle_tree "github.com/DryginAlexander/OpenPlasma/merkle-tree"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// Deposit credits an account leaf and installs the depositor's public
// key. Deposits carry no signature; they originate from an already
// authenticated on-chain event.
type Deposit struct {
	pubKey    eddsa.PublicKey
	accountId uint64
	amount    uint64
}

// NewDeposit creates a new deposit request
func NewDeposit(pubKey eddsa.PublicKey, accountId uint64, amount uint64) Deposit {
	var res Deposit
	res.pubKey = pubKey
	res.accountId = accountId
	res.amount = amount
	return res
}

// ChainHash folds the deposit into the running accumulator as
// H(accumulator, pubkey x, pubkey y, account id, amount). The digest is
// order sensitive: reordering or omitting a deposit changes the final
// value, even for a zero amount.
func (d *Deposit) ChainHash(accumulator *big.Int) big.Int {
	var px, py, id, amount big.Int
	d.pubKey.A.X.BigInt(&px)
	d.pubKey.A.Y.BigInt(&py)
	id.SetUint64(d.accountId)
	amount.SetUint64(d.amount)
	return merkle_tree.MimcHash(accumulator, &px, &py, &id, &amount)
}
