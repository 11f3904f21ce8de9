package prover

import (
	"math/big"
	"math/rand"

	merkle_tree "github.com/DryginAlexander/OpenPlasma/merkle-tree"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// BuildTestDepositBatch applies batchSize deposits to distinct accounts of
// a fresh tree and captures the witness of every step, including the
// accumulator hash chain and the root boundary values.
func BuildTestDepositBatch(treeDepth int, batchSize int, seed int64) *DepositBatchParameters {
	rng := rand.New(rand.NewSource(seed))
	tree := merkle_tree.NewAccountTree(treeDepth)

	oldRoot := tree.Root()
	accumulator := big.NewInt(0)
	oldAccumulator := new(big.Int).Set(accumulator)

	deposits := make([]DepositInputs, batchSize)
	usedIndices := make(map[uint64]bool)
	for i := 0; i < batchSize; i++ {
		var index uint64
		for {
			index = uint64(rng.Intn(1 << treeDepth))
			if !usedIndices[index] {
				usedIndices[index] = true
				break
			}
		}
		privKey, err := eddsa.GenerateKey(rng)
		if err != nil {
			panic(err)
		}
		amount := uint64(rng.Intn(1000) + 1)

		oldAccount, err := tree.Account(index)
		if err != nil {
			panic(err)
		}
		path, err := tree.Proof(index)
		if err != nil {
			panic(err)
		}

		newAccount := oldAccount
		newAccount.PubKey = privKey.PublicKey
		var credit fr.Element
		credit.SetUint64(amount)
		newAccount.Balance.Add(&oldAccount.Balance, &credit)
		if _, err := tree.UpdateAccount(index, newAccount); err != nil {
			panic(err)
		}

		input := DepositInputs{
			PubKeyX:      *newAccount.PubKey.A.X.BigInt(new(big.Int)),
			PubKeyY:      *newAccount.PubKey.A.Y.BigInt(new(big.Int)),
			AccountId:    *new(big.Int).SetUint64(index),
			Amount:       *new(big.Int).SetUint64(amount),
			OldPubKeyX:   *oldAccount.PubKey.A.X.BigInt(new(big.Int)),
			OldPubKeyY:   *oldAccount.PubKey.A.Y.BigInt(new(big.Int)),
			OldNonce:     *new(big.Int).SetUint64(oldAccount.Nonce),
			OldBalance:   *oldAccount.Balance.BigInt(new(big.Int)),
			NewPubKeyX:   *newAccount.PubKey.A.X.BigInt(new(big.Int)),
			NewPubKeyY:   *newAccount.PubKey.A.Y.BigInt(new(big.Int)),
			NewNonce:     *new(big.Int).SetUint64(newAccount.Nonce),
			NewBalance:   *newAccount.Balance.BigInt(new(big.Int)),
			PathIndex:    index,
			PathElements: path,
		}
		deposits[i] = input

		next := merkle_tree.MimcHash(accumulator, &input.PubKeyX, &input.PubKeyY, &input.AccountId, &input.Amount)
		accumulator = &next
	}

	newRoot := tree.Root()

	return &DepositBatchParameters{
		OldAccumulatorHash: *oldAccumulator,
		NewAccumulatorHash: *accumulator,
		OldRoot:            oldRoot,
		NewRoot:            newRoot,
		Deposits:           deposits,
	}
}
