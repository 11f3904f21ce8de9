package rollup

import (
	"math/big"

	merkle_tree "github.com/DryginAlexander/OpenPlasma/merkle-tree"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

var hFunc = mimc.NewMiMC()

// OffchainWithdrawal describes a client authored withdrawal request. The
// nonce must be the account's stored nonce plus one; requests are strictly
// sequential.
type OffchainWithdrawal struct {
	accountId    uint64
	amount       fr.Element
	nonce        uint64
	signature    eddsa.Signature
	hasSignature bool
}

// NewWithdrawal creates a new withdrawal request (to be signed)
func NewWithdrawal(accountId uint64, amount uint64, nonce uint64) OffchainWithdrawal {
	var res OffchainWithdrawal
	res.accountId = accountId
	res.amount.SetUint64(amount)
	res.nonce = nonce
	return res
}

// Hash digests (account id, amount, nonce) into one field element,
// matching the in-circuit digest of the same values.
func (w *OffchainWithdrawal) Hash() big.Int {
	var id, amount, nonce big.Int
	id.SetUint64(w.accountId)
	w.amount.BigInt(&amount)
	nonce.SetUint64(w.nonce)
	return merkle_tree.MimcHash(&id, &amount, &nonce)
}

// signingMessage truncates the digest to its low 248 bits, serialized
// little endian on 31 bytes, then re-embeds those bytes as one canonical
// big endian hash block for the signature primitive to absorb.
func (w *OffchainWithdrawal) signingMessage() []byte {
	digest := w.Hash()
	var e fr.Element
	e.SetBigInt(&digest)
	be := e.Bytes()

	var msg [31]byte
	for i := 0; i < len(msg); i++ {
		msg[i] = be[31-i]
	}

	block := make([]byte, 32)
	for i := 0; i < len(msg); i++ {
		block[31-i] = msg[i]
	}
	return block
}

// Sign signs the withdrawal digest and attaches the signature to the
// request.
func (w *OffchainWithdrawal) Sign(priv eddsa.PrivateKey) (eddsa.Signature, error) {
	msg := w.signingMessage()
	sigBin, err := priv.Sign(msg, hFunc)
	if err != nil {
		return eddsa.Signature{}, err
	}
	var sig eddsa.Signature
	if _, err := sig.SetBytes(sigBin); err != nil {
		return eddsa.Signature{}, err
	}
	w.signature = sig
	w.hasSignature = true
	return sig, nil
}

// VerifySignature checks the attached signature against pub. A forged
// signature reports false without an error; a request that was never
// signed reports ErrMissingSignature.
func (w *OffchainWithdrawal) VerifySignature(pub eddsa.PublicKey) (bool, error) {
	if !w.hasSignature {
		return false, ErrMissingSignature
	}
	msg := w.signingMessage()
	return pub.Verify(w.signature.Bytes(), msg, hFunc)
}

// AccountState snapshots one leaf transition, with the authentication
// path and index bits captured before the mutation. The path
// authenticates the leaf against both the old and the new root, since
// rewriting a leaf never changes its own siblings.
type AccountState struct {
	OldPubKey  eddsa.PublicKey
	NewPubKey  eddsa.PublicKey
	OldNonce   uint64
	NewNonce   uint64
	OldBalance fr.Element
	NewBalance fr.Element
	Path       []big.Int
	Index      []int
}

// UpdateTreeAndRecordState applies the withdrawal to the tree. Validation
// runs strictly before any mutation: the account must exist, hold at
// least the amount, and store a nonce one below the request's. The caller
// is trusted to have verified the signature already.
func (w *OffchainWithdrawal) UpdateTreeAndRecordState(tree *merkle_tree.AccountTree) (AccountState, error) {
	ac, err := tree.Account(w.accountId)
	if err != nil {
		return AccountState{}, ErrNonExistingAccount
	}

	// checks if the amount is correct
	var bAmount, bBalance big.Int
	ac.Balance.BigInt(&bBalance)
	w.amount.BigInt(&bAmount)
	if bAmount.Cmp(&bBalance) == 1 {
		return AccountState{}, ErrAmountTooHigh
	}

	// check if the nonce is correct
	if w.nonce != ac.Nonce+1 {
		return AccountState{}, ErrNonce
	}

	path, err := tree.Proof(w.accountId)
	if err != nil {
		return AccountState{}, err
	}
	indexBits := tree.IndexBits(w.accountId)

	var newBalance fr.Element
	newBalance.Sub(&ac.Balance, &w.amount)
	if _, err := tree.UpdateBalance(w.accountId, newBalance, w.nonce); err != nil {
		return AccountState{}, err
	}

	return AccountState{
		OldPubKey:  ac.PubKey,
		NewPubKey:  ac.PubKey,
		OldNonce:   ac.Nonce,
		NewNonce:   w.nonce,
		OldBalance: ac.Balance,
		NewBalance: newBalance,
		Path:       path,
		Index:      indexBits,
	}, nil
}
