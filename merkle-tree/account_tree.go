package merkle_tree

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var ErrIndexOutOfRange = errors.New("account index exceeds tree capacity")

// AccountTree pairs a sparse account registry with a Merkle tree over the
// account leaf hashes. Accounts never touched since genesis read back as
// the default account, matching the empty-leaf ladder the tree is built
// from. The tree is not synchronized; callers serialize writes.
type AccountTree struct {
	depth    int
	accounts map[uint64]Account
	tree     MimcTree
}

func NewAccountTree(depth int) *AccountTree {
	var empty Account
	empty.Reset()
	return &AccountTree{
		depth:    depth,
		accounts: make(map[uint64]Account),
		tree:     NewTree(depth, empty.LeafHash()),
	}
}

func (at *AccountTree) Depth() int {
	return at.depth
}

// Size returns the leaf capacity of the tree.
func (at *AccountTree) Size() uint64 {
	return uint64(1) << at.depth
}

func (at *AccountTree) Root() big.Int {
	return at.tree.Root.Value()
}

// Account returns the account stored at index, or the default account if
// the index was never written.
func (at *AccountTree) Account(index uint64) (Account, error) {
	if index >= at.Size() {
		return Account{}, ErrIndexOutOfRange
	}
	if ac, ok := at.accounts[index]; ok {
		return ac, nil
	}
	var ac Account
	ac.Reset()
	ac.Index = index
	return ac, nil
}

// UpdateAccount writes the full account at index and returns its
// authentication path after the update, leaf-level sibling first.
func (at *AccountTree) UpdateAccount(index uint64, ac Account) ([]big.Int, error) {
	if index >= at.Size() {
		return nil, ErrIndexOutOfRange
	}
	ac.Index = index
	at.accounts[index] = ac
	return at.tree.Update(int(index), ac.LeafHash()), nil
}

// UpdateBalance rewrites only the balance and nonce slots of the account
// at index, leaving the public key untouched.
func (at *AccountTree) UpdateBalance(index uint64, balance fr.Element, nonce uint64) ([]big.Int, error) {
	ac, err := at.Account(index)
	if err != nil {
		return nil, err
	}
	ac.Balance = balance
	ac.Nonce = nonce
	return at.UpdateAccount(index, ac)
}

// Proof returns the authentication path of the leaf at index against the
// current root, leaf-level sibling first.
func (at *AccountTree) Proof(index uint64) ([]big.Int, error) {
	if index >= at.Size() {
		return nil, ErrIndexOutOfRange
	}
	return at.tree.GetProofByIndex(int(index)), nil
}

// IndexBits decomposes the leaf position into depth bits, least
// significant first, bit i selecting the direction at level i counting
// from the leaf.
func (at *AccountTree) IndexBits(index uint64) []int {
	bits := make([]int, at.depth)
	for i := 0; i < at.depth; i++ {
		bits[i] = int((index >> i) & 1)
	}
	return bits
}

func (at *AccountTree) DeepCopy() *AccountTree {
	if at == nil {
		return nil
	}
	accounts := make(map[uint64]Account, len(at.accounts))
	for k, v := range at.accounts {
		accounts[k] = v
	}
	return &AccountTree{
		depth:    at.depth,
		accounts: accounts,
		tree:     *at.tree.DeepCopy(),
	}
}
