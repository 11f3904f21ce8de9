package merkle_tree

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// MimcHash digests the given values as canonical field elements, one
// 32-byte block each, and returns the result reduced into the field.
func MimcHash(values ...*big.Int) big.Int {
	h := mimc.NewMiMC()
	var e fr.Element
	for _, v := range values {
		e.SetBigInt(v)
		b := e.Bytes()
		h.Write(b[:])
	}
	var sum fr.Element
	sum.SetBytes(h.Sum(nil))
	var result big.Int
	sum.BigInt(&result)
	return result
}

type MimcNode interface {
	depth() int
	Value() big.Int
	withValue(index int, val big.Int) MimcNode
	writeProof(index int, out []big.Int)
}

func indexIsLeft(index int, depth int) bool {
	return index&(1<<(depth-1)) == 0
}

func (node *MimcFullNode) depth() int {
	return node.dep
}

func (node *MimcEmptyNode) depth() int {
	return node.dep
}

func (node *MimcFullNode) Value() big.Int {
	return node.val
}

func (node *MimcEmptyNode) Value() big.Int {
	return node.emptyTreeValues[node.depth()]
}

func (node *MimcFullNode) withValue(index int, val big.Int) MimcNode {
	result := MimcFullNode{
		dep:   node.depth(),
		Left:  node.Left,
		Right: node.Right,
	}
	if node.depth() == 0 {
		result.val = val
	} else {
		if indexIsLeft(index, node.depth()) {
			result.Left = node.Left.withValue(index, val)
		} else {
			result.Right = node.Right.withValue(index, val)
		}
		result.initHash()
	}
	return &result
}

func (node *MimcEmptyNode) withValue(index int, val big.Int) MimcNode {
	result := MimcFullNode{
		dep: node.depth(),
	}
	if node.depth() == 0 {
		result.val = val
	} else {
		emptyChild := MimcEmptyNode{dep: node.depth() - 1, emptyTreeValues: node.emptyTreeValues}
		initializedChild := emptyChild.withValue(index, val)
		if indexIsLeft(index, node.depth()) {
			result.Left = initializedChild
			result.Right = &emptyChild
		} else {
			result.Left = &emptyChild
			result.Right = initializedChild
		}
		result.initHash()
	}
	return &result
}

func (node *MimcFullNode) writeProof(index int, out []big.Int) {
	if node.depth() == 0 {
		return
	}
	if indexIsLeft(index, node.depth()) {
		out[node.depth()-1] = node.Right.Value()
		node.Left.writeProof(index, out)
	} else {
		out[node.depth()-1] = node.Left.Value()
		node.Right.writeProof(index, out)
	}
}

func (node *MimcEmptyNode) writeProof(index int, out []big.Int) {
	for i := 0; i < node.depth(); i++ {
		out[i] = node.emptyTreeValues[i]
	}
}

type MimcFullNode struct {
	dep   int
	val   big.Int
	Left  MimcNode
	Right MimcNode
}

func (node *MimcFullNode) initHash() {
	leftVal := node.Left.Value()
	rightVal := node.Right.Value()
	node.val = MimcHash(&leftVal, &rightVal)
}

type MimcEmptyNode struct {
	dep             int
	emptyTreeValues []big.Int
}

type MimcTree struct {
	Root MimcNode
}

// Update replaces the leaf at index and returns its authentication path
// after the update, leaf-level sibling first.
func (tree *MimcTree) Update(index int, value big.Int) []big.Int {
	tree.Root = tree.Root.withValue(index, value)
	proof := make([]big.Int, tree.Root.depth())
	tree.Root.writeProof(index, proof)
	return proof
}

func (tree *MimcTree) GetProofByIndex(index int) []big.Int {
	proof := make([]big.Int, tree.Root.depth())
	tree.Root.writeProof(index, proof)
	return proof
}

func (tree *MimcTree) Depth() int {
	return tree.Root.depth()
}

// NewTree builds an empty tree of the given depth where every leaf holds
// emptyLeaf. Empty subtrees share one hash ladder, so construction is
// O(depth) regardless of width.
func NewTree(depth int, emptyLeaf big.Int) MimcTree {
	initHashes := make([]big.Int, depth+1)
	initHashes[0] = emptyLeaf
	for i := 1; i <= depth; i++ {
		initHashes[i] = MimcHash(&initHashes[i-1], &initHashes[i-1])
	}
	return MimcTree{Root: &MimcEmptyNode{dep: depth, emptyTreeValues: initHashes}}
}

func (tree *MimcTree) DeepCopy() *MimcTree {
	if tree == nil {
		return nil
	}
	return &MimcTree{
		Root: deepCopyNode(tree.Root),
	}
}

func deepCopyNode(node MimcNode) MimcNode {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *MimcFullNode:
		return deepCopyFullNode(n)
	case *MimcEmptyNode:
		return deepCopyEmptyNode(n)
	default:
		panic("Unknown node type")
	}
}

func deepCopyFullNode(node *MimcFullNode) *MimcFullNode {
	if node == nil {
		return nil
	}
	return &MimcFullNode{
		dep:   node.dep,
		val:   *new(big.Int).Set(&node.val),
		Left:  deepCopyNode(node.Left),
		Right: deepCopyNode(node.Right),
	}
}

func deepCopyEmptyNode(node *MimcEmptyNode) *MimcEmptyNode {
	if node == nil {
		return nil
	}
	emptyTreeValues := make([]big.Int, len(node.emptyTreeValues))
	for i, v := range node.emptyTreeValues {
		emptyTreeValues[i] = *new(big.Int).Set(&v)
	}
	return &MimcEmptyNode{
		dep:             node.dep,
		emptyTreeValues: emptyTreeValues,
	}
}
