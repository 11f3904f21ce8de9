package rollup

import (
	"math/big"
	"sync"

	merkle_tree "github.com/DryginAlexander/OpenPlasma/merkle-tree"
	"github.com/DryginAlexander/OpenPlasma/prover"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// Operator owns the account tree, the deposit queue and the running
// deposit accumulator. Every state transition runs under one lock, so the
// path captured for a witness always matches the root transition being
// proved.
type Operator struct {
	mu              sync.Mutex
	tree            *merkle_tree.AccountTree
	pendingDeposits []Deposit
	accumulator     big.Int
}

// NewOperator creates an operator over a fresh tree of the given depth.
func NewOperator(depth int) *Operator {
	return &Operator{tree: merkle_tree.NewAccountTree(depth)}
}

func (o *Operator) Root() big.Int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tree.Root()
}

func (o *Operator) AccumulatorHash() big.Int {
	o.mu.Lock()
	defer o.mu.Unlock()
	var res big.Int
	res.Set(&o.accumulator)
	return res
}

// Account reads the account stored at index.
func (o *Operator) Account(index uint64) (merkle_tree.Account, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ac, err := o.tree.Account(index)
	if err != nil {
		return merkle_tree.Account{}, ErrNonExistingAccount
	}
	return ac, nil
}

// Withdraw verifies the request's signature against pub and applies it to
// the tree.
func (o *Operator) Withdraw(w *OffchainWithdrawal, pub eddsa.PublicKey) (AccountState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ok, err := w.VerifySignature(pub)
	if err != nil {
		return AccountState{}, err
	}
	if !ok {
		return AccountState{}, ErrWrongSignature
	}
	return w.UpdateTreeAndRecordState(o.tree)
}

// SubmitDeposit queues a deposit for the next committed batch.
func (o *Operator) SubmitDeposit(d Deposit) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingDeposits = append(o.pendingDeposits, d)
}

// PendingDeposits returns the current queue length.
func (o *Operator) PendingDeposits() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pendingDeposits)
}

// CommitDeposits applies the next batchSize queued deposits and returns
// the witness of the whole batch. The deposits are applied to a copy of
// the tree that is swapped in only once every step has succeeded, so a
// rejected deposit leaves the tree and accumulator untouched; the
// offending request is dropped from the queue.
func (o *Operator) CommitDeposits(batchSize int) (*prover.DepositBatchParameters, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if batchSize <= 0 || len(o.pendingDeposits) < batchSize {
		return nil, ErrNotEnoughDeposits
	}

	work := o.tree.DeepCopy()
	oldRoot := o.tree.Root()
	oldAccumulator := new(big.Int).Set(&o.accumulator)
	accumulator := oldAccumulator

	deposits := make([]prover.DepositInputs, batchSize)
	for i := 0; i < batchSize; i++ {
		input, next, err := applyDeposit(work, accumulator, o.pendingDeposits[i])
		if err != nil {
			o.pendingDeposits = append(o.pendingDeposits[:i], o.pendingDeposits[i+1:]...)
			return nil, err
		}
		deposits[i] = input
		accumulator = &next
	}

	params := &prover.DepositBatchParameters{
		OldAccumulatorHash: *oldAccumulator,
		NewAccumulatorHash: *accumulator,
		OldRoot:            oldRoot,
		NewRoot:            work.Root(),
		Deposits:           deposits,
	}

	o.tree = work
	o.accumulator = *accumulator
	o.pendingDeposits = o.pendingDeposits[batchSize:]

	return params, nil
}

// applyDeposit credits one deposit on the tree and returns the step's
// witness and the advanced accumulator. The authentication path is
// captured before the leaf is rewritten. A live account only accepts
// deposits carrying its stored key; a default leaf adopts the deposited
// key.
func applyDeposit(tree *merkle_tree.AccountTree, accumulator *big.Int, d Deposit) (prover.DepositInputs, big.Int, error) {
	ac, err := tree.Account(d.accountId)
	if err != nil {
		return prover.DepositInputs{}, big.Int{}, ErrNonExistingAccount
	}

	defaultKey := ac.PubKey.A.X.IsZero() && ac.PubKey.A.Y.IsOne()
	if !defaultKey && (!ac.PubKey.A.X.Equal(&d.pubKey.A.X) || !ac.PubKey.A.Y.Equal(&d.pubKey.A.Y)) {
		return prover.DepositInputs{}, big.Int{}, ErrPubKeyMismatch
	}

	path, err := tree.Proof(d.accountId)
	if err != nil {
		return prover.DepositInputs{}, big.Int{}, err
	}

	newAccount := ac
	newAccount.PubKey = d.pubKey
	var credit fr.Element
	credit.SetUint64(d.amount)
	newAccount.Balance.Add(&ac.Balance, &credit)
	if _, err := tree.UpdateAccount(d.accountId, newAccount); err != nil {
		return prover.DepositInputs{}, big.Int{}, err
	}

	input := prover.DepositInputs{
		PubKeyX:      *d.pubKey.A.X.BigInt(new(big.Int)),
		PubKeyY:      *d.pubKey.A.Y.BigInt(new(big.Int)),
		AccountId:    *new(big.Int).SetUint64(d.accountId),
		Amount:       *new(big.Int).SetUint64(d.amount),
		OldPubKeyX:   *ac.PubKey.A.X.BigInt(new(big.Int)),
		OldPubKeyY:   *ac.PubKey.A.Y.BigInt(new(big.Int)),
		OldNonce:     *new(big.Int).SetUint64(ac.Nonce),
		OldBalance:   *ac.Balance.BigInt(new(big.Int)),
		NewPubKeyX:   *newAccount.PubKey.A.X.BigInt(new(big.Int)),
		NewPubKeyY:   *newAccount.PubKey.A.Y.BigInt(new(big.Int)),
		NewNonce:     *new(big.Int).SetUint64(newAccount.Nonce),
		NewBalance:   *newAccount.Balance.BigInt(new(big.Int)),
		PathIndex:    d.accountId,
		PathElements: path,
	}

	next := d.ChainHash(accumulator)
	return input, next, nil
}
