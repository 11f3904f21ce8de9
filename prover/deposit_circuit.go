package prover

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/reilabs/gnark-lean-extractor/v3/abstractor"
)

// AccountConstraints is the in-circuit view of one account leaf before and
// after a state transition, with its authentication path. The path
// elements serve both inclusion proofs: rewriting a leaf never changes its
// own siblings. PathIndices are the leaf position bits, least significant
// first.
type AccountConstraints struct {
	OldPubKeyX frontend.Variable
	OldPubKeyY frontend.Variable
	OldNonce   frontend.Variable
	OldBalance frontend.Variable

	NewPubKeyX frontend.Variable
	NewPubKeyY frontend.Variable
	NewNonce   frontend.Variable
	NewBalance frontend.Variable

	PathElements []frontend.Variable
	PathIndices  []frontend.Variable
}

// DepositConstraints is one deposit applied to one account leaf.
type DepositConstraints struct {
	Account AccountConstraints

	PubKeyX   frontend.Variable
	PubKeyY   frontend.Variable
	AccountId frontend.Variable
	Amount    frontend.Variable
}

// verifyDepositUpdate constrains a single deposit step against the running
// accumulator hash and Merkle root and returns the advanced pair.
func verifyDepositUpdate(api frontend.API, deposit DepositConstraints, accumulatorHash frontend.Variable, root frontend.Variable, depth int) (frontend.Variable, frontend.Variable) {
	account := deposit.Account

	// the deposited key is what the updated leaf stores
	api.AssertIsEqual(deposit.PubKeyX, account.NewPubKeyX)
	api.AssertIsEqual(deposit.PubKeyY, account.NewPubKeyY)

	// the claimed account id is the leaf position
	idBits := api.ToBinary(deposit.AccountId, depth)
	for i := 0; i < depth; i++ {
		api.AssertIsEqual(idBits[i], account.PathIndices[i])
	}

	// credit the balance; the amount is bounded to 64 bits so the sum
	// cannot wrap around the field modulus
	abstractor.CallVoid(api, AssertIsLess{A: deposit.Amount, B: new(big.Int).Lsh(big.NewInt(1), 64), N: 64})
	api.AssertIsEqual(api.Add(account.OldBalance, deposit.Amount), account.NewBalance)

	// a deposit never touches the nonce
	api.AssertIsEqual(account.OldNonce, account.NewNonce)

	// fold the deposit into the accumulator
	newAccumulatorHash := abstractor.Call(api, MimcHashGadget{In: []frontend.Variable{accumulatorHash, deposit.PubKeyX, deposit.PubKeyY, deposit.AccountId, deposit.Amount}})

	// authenticate the old leaf against the running root
	oldLeaf := abstractor.Call(api, AccountLeafGadget{PubKeyX: account.OldPubKeyX, PubKeyY: account.OldPubKeyY, Nonce: account.OldNonce, Balance: account.OldBalance})
	oldRoot := abstractor.Call(api, MerkleRootGadget{Hash: oldLeaf, Index: account.PathIndices, Path: account.PathElements, Depth: depth})
	api.AssertIsEqual(oldRoot, root)

	// recompute the root over the updated leaf
	newLeaf := abstractor.Call(api, AccountLeafGadget{PubKeyX: account.NewPubKeyX, PubKeyY: account.NewPubKeyY, Nonce: account.NewNonce, Balance: account.NewBalance})
	newRoot := abstractor.Call(api, MerkleRootGadget{Hash: newLeaf, Index: account.PathIndices, Path: account.PathElements, Depth: depth})

	return newAccumulatorHash, newRoot
}

// DepositBatchCircuit proves that applying BatchSize deposits in order
// moves the account tree from OldRoot to NewRoot while extending the
// deposit accumulator from OldAccumulatorHash to NewAccumulatorHash.
type DepositBatchCircuit struct {
	OldAccumulatorHash frontend.Variable `gnark:",public"`
	NewAccumulatorHash frontend.Variable `gnark:",public"`
	OldRoot            frontend.Variable `gnark:",public"`
	NewRoot            frontend.Variable `gnark:",public"`

	Deposits []DepositConstraints `gnark:"input"`

	Depth     uint32
	BatchSize uint32
}

func (circuit *DepositBatchCircuit) Define(api frontend.API) error {
	accumulatorHash := circuit.OldAccumulatorHash
	root := circuit.OldRoot
	for i := 0; i < int(circuit.BatchSize); i++ {
		accumulatorHash, root = verifyDepositUpdate(api, circuit.Deposits[i], accumulatorHash, root, int(circuit.Depth))
	}
	api.AssertIsEqual(accumulatorHash, circuit.NewAccumulatorHash)
	api.AssertIsEqual(root, circuit.NewRoot)
	return nil
}
