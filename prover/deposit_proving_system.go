package prover

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/DryginAlexander/OpenPlasma/logging"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// DepositInputs carries the witness of a single deposit step: the claimed
// deposit fields, the account leaf slots before and after the credit, and
// the leaf's authentication path captured before the update. PathIndex is
// the leaf position; the prover decomposes it into the path bits.
type DepositInputs struct {
	PubKeyX   big.Int
	PubKeyY   big.Int
	AccountId big.Int
	Amount    big.Int

	OldPubKeyX big.Int
	OldPubKeyY big.Int
	OldNonce   big.Int
	OldBalance big.Int

	NewPubKeyX big.Int
	NewPubKeyY big.Int
	NewNonce   big.Int
	NewBalance big.Int

	PathIndex    uint64
	PathElements []big.Int
}

type DepositBatchParameters struct {
	OldAccumulatorHash big.Int
	NewAccumulatorHash big.Int
	OldRoot            big.Int
	NewRoot            big.Int
	Deposits           []DepositInputs
}

func (p *DepositBatchParameters) BatchSize() uint32 {
	return uint32(len(p.Deposits))
}

func (p *DepositBatchParameters) TreeDepth() uint32 {
	if len(p.Deposits) == 0 {
		return 0
	}
	return uint32(len(p.Deposits[0].PathElements))
}

func (p *DepositBatchParameters) ValidateShape(treeDepth uint32, batchSize uint32) error {
	if p.BatchSize() != batchSize {
		return fmt.Errorf("wrong number of deposits: %d", p.BatchSize())
	}
	for i, deposit := range p.Deposits {
		if len(deposit.PathElements) != int(treeDepth) {
			return fmt.Errorf("wrong size of merkle proof for deposit %d: %d", i, len(deposit.PathElements))
		}
	}
	return nil
}

func R1CSDeposit(treeDepth uint32, batchSize uint32) (constraint.ConstraintSystem, error) {
	if treeDepth == 0 {
		return nil, fmt.Errorf("tree depth must be positive")
	}
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}

	deposits := make([]DepositConstraints, batchSize)
	for i := 0; i < int(batchSize); i++ {
		deposits[i] = DepositConstraints{
			Account: AccountConstraints{
				PathElements: make([]frontend.Variable, treeDepth),
				PathIndices:  make([]frontend.Variable, treeDepth),
			},
		}
	}

	circuit := DepositBatchCircuit{
		Deposits:  deposits,
		Depth:     treeDepth,
		BatchSize: batchSize,
	}
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}

func SetupDeposit(treeDepth uint32, batchSize uint32) (*ProvingSystem, error) {
	ccs, err := R1CSDeposit(treeDepth, batchSize)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	return &ProvingSystem{
		TreeDepth:        treeDepth,
		BatchSize:        batchSize,
		ProvingKey:       pk,
		VerifyingKey:     vk,
		ConstraintSystem: ccs}, nil
}

func ImportDepositSetup(treeDepth uint32, batchSize uint32, pkPath string, vkPath string) (*ProvingSystem, error) {
	ccs, err := R1CSDeposit(treeDepth, batchSize)
	if err != nil {
		return nil, err
	}
	pk, err := LoadProvingKey(pkPath)
	if err != nil {
		return nil, err
	}
	vk, err := LoadVerifyingKey(vkPath)
	if err != nil {
		return nil, err
	}
	return &ProvingSystem{
		TreeDepth:        treeDepth,
		BatchSize:        batchSize,
		ProvingKey:       pk,
		VerifyingKey:     vk,
		ConstraintSystem: ccs}, nil
}

func (ps *ProvingSystem) ProveDeposit(params *DepositBatchParameters) (*Proof, error) {
	if err := params.ValidateShape(ps.TreeDepth, ps.BatchSize); err != nil {
		return nil, err
	}

	deposits := make([]DepositConstraints, ps.BatchSize)
	for i := 0; i < int(ps.BatchSize); i++ {
		input := params.Deposits[i]
		account := AccountConstraints{
			OldPubKeyX:   input.OldPubKeyX,
			OldPubKeyY:   input.OldPubKeyY,
			OldNonce:     input.OldNonce,
			OldBalance:   input.OldBalance,
			NewPubKeyX:   input.NewPubKeyX,
			NewPubKeyY:   input.NewPubKeyY,
			NewNonce:     input.NewNonce,
			NewBalance:   input.NewBalance,
			PathElements: make([]frontend.Variable, ps.TreeDepth),
			PathIndices:  make([]frontend.Variable, ps.TreeDepth),
		}
		for j := 0; j < int(ps.TreeDepth); j++ {
			account.PathElements[j] = input.PathElements[j]
			account.PathIndices[j] = (input.PathIndex >> j) & 1
		}
		deposits[i] = DepositConstraints{
			Account:   account,
			PubKeyX:   input.PubKeyX,
			PubKeyY:   input.PubKeyY,
			AccountId: input.AccountId,
			Amount:    input.Amount,
		}
	}

	assignment := DepositBatchCircuit{
		OldAccumulatorHash: params.OldAccumulatorHash,
		NewAccumulatorHash: params.NewAccumulatorHash,
		OldRoot:            params.OldRoot,
		NewRoot:            params.NewRoot,
		Deposits:           deposits,
	}

	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}

	logging.Logger().Info().Msg("Proving deposit batch " + strconv.Itoa(int(ps.TreeDepth)) + " " + strconv.Itoa(int(ps.BatchSize)))
	proof, err := groth16.Prove(ps.ConstraintSystem, ps.ProvingKey, witness)
	if err != nil {
		return nil, err
	}

	return &Proof{proof}, nil
}

func (ps *ProvingSystem) VerifyDeposit(oldAccumulatorHash big.Int, newAccumulatorHash big.Int, oldRoot big.Int, newRoot big.Int, proof *Proof) error {
	publicAssignment := DepositBatchCircuit{
		OldAccumulatorHash: oldAccumulatorHash,
		NewAccumulatorHash: newAccumulatorHash,
		OldRoot:            oldRoot,
		NewRoot:            newRoot,
	}
	witness, err := frontend.NewWitness(&publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	return groth16.Verify(proof.Proof, ps.VerifyingKey, witness)
}
