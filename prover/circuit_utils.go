package prover

import (
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/reilabs/gnark-lean-extractor/v3/abstractor"
)

type Proof struct {
	Proof groth16.Proof
}

type ProvingSystem struct {
	TreeDepth        uint32
	BatchSize        uint32
	ProvingKey       groth16.ProvingKey
	VerifyingKey     groth16.VerifyingKey
	ConstraintSystem constraint.ConstraintSystem
}

// MimcHashGadget digests its inputs with the in-circuit MiMC, matching
// the out-of-circuit digest of the same field elements.
type MimcHashGadget struct {
	In []frontend.Variable
}

func (gadget MimcHashGadget) DefineGadget(api frontend.API) interface{} {
	hFunc, err := mimc.NewMiMC(api)
	if err != nil {
		panic(err)
	}
	hFunc.Write(gadget.In...)
	return hFunc.Sum()
}

// ProveParentHash gadget generates the ParentHash
type ProveParentHash struct {
	Bit     frontend.Variable
	Hash    frontend.Variable
	Sibling frontend.Variable
}

func (gadget ProveParentHash) DefineGadget(api frontend.API) interface{} {
	api.AssertIsBoolean(gadget.Bit)
	d1 := api.Select(gadget.Bit, gadget.Sibling, gadget.Hash)
	d2 := api.Select(gadget.Bit, gadget.Hash, gadget.Sibling)
	hash := abstractor.Call(api, MimcHashGadget{In: []frontend.Variable{d1, d2}})
	return hash
}

// AccountLeafGadget hashes the four account slots in their leaf order:
// pubkey x, pubkey y, nonce, balance.
type AccountLeafGadget struct {
	PubKeyX frontend.Variable
	PubKeyY frontend.Variable
	Nonce   frontend.Variable
	Balance frontend.Variable
}

func (gadget AccountLeafGadget) DefineGadget(api frontend.API) interface{} {
	return abstractor.Call(api, MimcHashGadget{In: []frontend.Variable{gadget.PubKeyX, gadget.PubKeyY, gadget.Nonce, gadget.Balance}})
}

// Assert A is less than B.
type AssertIsLess struct {
	A frontend.Variable
	B frontend.Variable
	N int
}

// To prevent overflows N (the number of bits) must not be greater than 252 + 1,
// see https://github.com/zkopru-network/zkopru/issues/116
func (gadget AssertIsLess) DefineGadget(api frontend.API) interface{} {
	// Add 2^N to B to ensure a positive number
	oneShifted := new(big.Int).Lsh(big.NewInt(1), uint(gadget.N))
	num := api.Add(gadget.A, api.Sub(oneShifted, gadget.B))
	bin := api.ToBinary(num, gadget.N+1)
	api.AssertIsEqual(0, bin[gadget.N])
	return nil
}

type MerkleRootGadget struct {
	Hash  frontend.Variable
	Index []frontend.Variable
	Path  []frontend.Variable
	Depth int
}

func (gadget MerkleRootGadget) DefineGadget(api frontend.API) interface{} {
	currentHash := gadget.Hash
	for i := 0; i < gadget.Depth; i++ {
		currentHash = abstractor.Call(api, ProveParentHash{Bit: gadget.Index[i], Hash: currentHash, Sibling: gadget.Path[i]})
	}
	return currentHash
}
