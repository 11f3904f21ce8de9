package prover

import (
	"math/big"
	"math/rand"
	"testing"

	merkle_tree "github.com/DryginAlexander/OpenPlasma/merkle-tree"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
)

func TestDepositCircuit(t *testing.T) {
	assert := test.NewAssert(t)

	t.Run("Single deposit", func(t *testing.T) {
		treeDepth := 4
		batchSize := 1
		params := BuildTestDepositBatch(treeDepth, batchSize, 1)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.NoError(err)
	})

	t.Run("Batch of three deposits", func(t *testing.T) {
		treeDepth := 4
		batchSize := 3
		params := BuildTestDepositBatch(treeDepth, batchSize, 2)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.NoError(err)
	})

	t.Run("Deeper tree", func(t *testing.T) {
		treeDepth := 8
		batchSize := 2
		params := BuildTestDepositBatch(treeDepth, batchSize, 3)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.NoError(err)
	})

	t.Run("Zero amount installs key and advances accumulator", func(t *testing.T) {
		treeDepth := 4
		params := buildHandcraftedDeposit(treeDepth, 3, big.NewInt(0), 42)

		if params.NewAccumulatorHash.Cmp(&params.OldAccumulatorHash) == 0 {
			t.Fatal("zero amount deposit must still advance the accumulator")
		}

		circuit := createDepositCircuit(treeDepth, 1)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.NoError(err)
	})

	t.Run("Invalid new accumulator hash", func(t *testing.T) {
		treeDepth := 4
		batchSize := 2
		params := BuildTestDepositBatch(treeDepth, batchSize, 4)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)
		witness.NewAccumulatorHash = frontend.Variable(new(big.Int).Add(&params.NewAccumulatorHash, big.NewInt(1)))

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Invalid new root", func(t *testing.T) {
		treeDepth := 4
		batchSize := 2
		params := BuildTestDepositBatch(treeDepth, batchSize, 5)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)
		witness.NewRoot = frontend.Variable(new(big.Int).Add(&params.NewRoot, big.NewInt(1)))

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Invalid amount", func(t *testing.T) {
		treeDepth := 4
		batchSize := 2
		params := BuildTestDepositBatch(treeDepth, batchSize, 6)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)
		witness.Deposits[0].Amount = frontend.Variable(new(big.Int).Add(&params.Deposits[0].Amount, big.NewInt(1)))

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Swapped deposits", func(t *testing.T) {
		treeDepth := 4
		batchSize := 2
		params := BuildTestDepositBatch(treeDepth, batchSize, 7)
		params.Deposits[0], params.Deposits[1] = params.Deposits[1], params.Deposits[0]

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Account id does not match leaf position", func(t *testing.T) {
		treeDepth := 4
		batchSize := 1
		params := BuildTestDepositBatch(treeDepth, batchSize, 8)
		params.Deposits[0].PathIndex ^= 1

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Tampered path element", func(t *testing.T) {
		treeDepth := 4
		batchSize := 1
		params := BuildTestDepositBatch(treeDepth, batchSize, 9)

		circuit := createDepositCircuit(treeDepth, batchSize)
		witness := createDepositWitness(params)
		witness.Deposits[0].Account.PathElements[0] = frontend.Variable(new(big.Int).Add(&params.Deposits[0].PathElements[0], big.NewInt(1)))

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})

	t.Run("Amount above the 64 bit range", func(t *testing.T) {
		treeDepth := 4
		amount := new(big.Int).Lsh(big.NewInt(1), 64)
		params := buildHandcraftedDeposit(treeDepth, 5, amount, 43)

		circuit := createDepositCircuit(treeDepth, 1)
		witness := createDepositWitness(params)

		err := test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		assert.Error(err)
	})
}

func createDepositCircuit(treeDepth, batchSize int) *DepositBatchCircuit {
	deposits := make([]DepositConstraints, batchSize)
	for i := 0; i < batchSize; i++ {
		deposits[i] = DepositConstraints{
			Account: AccountConstraints{
				PathElements: make([]frontend.Variable, treeDepth),
				PathIndices:  make([]frontend.Variable, treeDepth),
			},
		}
	}

	return &DepositBatchCircuit{
		OldAccumulatorHash: frontend.Variable(0),
		NewAccumulatorHash: frontend.Variable(0),
		OldRoot:            frontend.Variable(0),
		NewRoot:            frontend.Variable(0),
		Deposits:           deposits,
		Depth:              uint32(treeDepth),
		BatchSize:          uint32(batchSize),
	}
}

func createDepositWitness(params *DepositBatchParameters) *DepositBatchCircuit {
	treeDepth := int(params.TreeDepth())
	batchSize := int(params.BatchSize())
	witness := createDepositCircuit(treeDepth, batchSize)

	witness.OldAccumulatorHash = frontend.Variable(params.OldAccumulatorHash)
	witness.NewAccumulatorHash = frontend.Variable(params.NewAccumulatorHash)
	witness.OldRoot = frontend.Variable(params.OldRoot)
	witness.NewRoot = frontend.Variable(params.NewRoot)

	for i := 0; i < batchSize; i++ {
		input := params.Deposits[i]
		witness.Deposits[i].PubKeyX = frontend.Variable(input.PubKeyX)
		witness.Deposits[i].PubKeyY = frontend.Variable(input.PubKeyY)
		witness.Deposits[i].AccountId = frontend.Variable(input.AccountId)
		witness.Deposits[i].Amount = frontend.Variable(input.Amount)

		witness.Deposits[i].Account.OldPubKeyX = frontend.Variable(input.OldPubKeyX)
		witness.Deposits[i].Account.OldPubKeyY = frontend.Variable(input.OldPubKeyY)
		witness.Deposits[i].Account.OldNonce = frontend.Variable(input.OldNonce)
		witness.Deposits[i].Account.OldBalance = frontend.Variable(input.OldBalance)
		witness.Deposits[i].Account.NewPubKeyX = frontend.Variable(input.NewPubKeyX)
		witness.Deposits[i].Account.NewPubKeyY = frontend.Variable(input.NewPubKeyY)
		witness.Deposits[i].Account.NewNonce = frontend.Variable(input.NewNonce)
		witness.Deposits[i].Account.NewBalance = frontend.Variable(input.NewBalance)

		for j := 0; j < treeDepth; j++ {
			witness.Deposits[i].Account.PathElements[j] = frontend.Variable(input.PathElements[j])
			witness.Deposits[i].Account.PathIndices[j] = frontend.Variable((input.PathIndex >> j) & 1)
		}
	}

	return witness
}

// buildHandcraftedDeposit builds a one deposit batch with a caller chosen
// amount, recomputing the accumulator and both roots from the tree so that
// every constraint except the ones under test holds.
func buildHandcraftedDeposit(treeDepth int, index uint64, amount *big.Int, seed int64) *DepositBatchParameters {
	tree := merkle_tree.NewAccountTree(treeDepth)
	privKey, err := eddsa.GenerateKey(rand.New(rand.NewSource(seed)))
	if err != nil {
		panic(err)
	}

	oldAccount, err := tree.Account(index)
	if err != nil {
		panic(err)
	}
	path, err := tree.Proof(index)
	if err != nil {
		panic(err)
	}
	oldRoot := tree.Root()

	newAccount := oldAccount
	newAccount.PubKey = privKey.PublicKey
	var credit fr.Element
	credit.SetBigInt(amount)
	newAccount.Balance.Add(&oldAccount.Balance, &credit)
	if _, err := tree.UpdateAccount(index, newAccount); err != nil {
		panic(err)
	}

	id := new(big.Int).SetUint64(index)
	px := newAccount.PubKey.A.X.BigInt(new(big.Int))
	py := newAccount.PubKey.A.Y.BigInt(new(big.Int))
	accumulator := merkle_tree.MimcHash(big.NewInt(0), px, py, id, amount)

	return &DepositBatchParameters{
		OldAccumulatorHash: *big.NewInt(0),
		NewAccumulatorHash: accumulator,
		OldRoot:            oldRoot,
		NewRoot:            tree.Root(),
		Deposits: []DepositInputs{{
			PubKeyX:      *px,
			PubKeyY:      *py,
			AccountId:    *id,
			Amount:       *amount,
			OldPubKeyX:   *oldAccount.PubKey.A.X.BigInt(new(big.Int)),
			OldPubKeyY:   *oldAccount.PubKey.A.Y.BigInt(new(big.Int)),
			OldNonce:     *new(big.Int).SetUint64(oldAccount.Nonce),
			OldBalance:   *oldAccount.Balance.BigInt(new(big.Int)),
			NewPubKeyX:   *px,
			NewPubKeyY:   *py,
			NewNonce:     *new(big.Int).SetUint64(newAccount.Nonce),
			NewBalance:   *newAccount.Balance.BigInt(new(big.Int)),
			PathIndex:    index,
			PathElements: path,
		}},
	}
}
