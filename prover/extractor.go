package prover

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/reilabs/gnark-lean-extractor/v3/extractor"
)

func ExtractLean(treeDepth uint32, batchSize uint32) (string, error) {
	// Not checking for batchSize == 0 or treeDepth == 0

	deposits := make([]DepositConstraints, batchSize)
	for i := 0; i < int(batchSize); i++ {
		deposits[i].Account.PathElements = make([]frontend.Variable, treeDepth)
		deposits[i].Account.PathIndices = make([]frontend.Variable, treeDepth)
	}

	depositCircuit := DepositBatchCircuit{
		Deposits:  deposits,
		Depth:     treeDepth,
		BatchSize: batchSize,
	}

	return extractor.ExtractCircuits("OpenPlasma", ecc.BN254, &depositCircuit)
}
