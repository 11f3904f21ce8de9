package rollup

import (
	"math/big"
	"testing"

	"github.com/DryginAlexander/OpenPlasma/prover"
)

func TestWithdrawAfterDeposit(t *testing.T) {
	operator := NewOperator(4)
	pkey := generateKey(21)

	operator.SubmitDeposit(NewDeposit(pkey.PublicKey, 5, 100))
	if _, err := operator.CommitDeposits(1); err != nil {
		t.Fatal(err)
	}

	w := NewWithdrawal(5, 40, 1)
	if _, err := w.Sign(pkey); err != nil {
		t.Fatal(err)
	}
	state, err := operator.Withdraw(&w, pkey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	var expected big.Int
	expected.SetUint64(60)
	var got big.Int
	state.NewBalance.BigInt(&got)
	if got.Cmp(&expected) != 0 {
		t.Fatal("incorrect balance in the withdrawal witness")
	}
	if state.NewNonce != 1 {
		t.Fatal("incorrect nonce in the withdrawal witness")
	}

	acc, err := operator.Account(5)
	if err != nil {
		t.Fatal(err)
	}
	acc.Balance.BigInt(&got)
	if got.Cmp(&expected) != 0 {
		t.Fatal("incorrect stored balance after the withdrawal")
	}
}

func TestWithdrawRejectsBadSignatures(t *testing.T) {
	operator := NewOperator(4)
	pkey := generateKey(22)
	other := generateKey(23)

	operator.SubmitDeposit(NewDeposit(pkey.PublicKey, 2, 50))
	if _, err := operator.CommitDeposits(1); err != nil {
		t.Fatal(err)
	}

	w := NewWithdrawal(2, 10, 1)
	if _, err := w.Sign(other); err != nil {
		t.Fatal(err)
	}
	if _, err := operator.Withdraw(&w, pkey.PublicKey); err != ErrWrongSignature {
		t.Fatal("a withdrawal signed with a foreign key must be rejected")
	}

	unsigned := NewWithdrawal(2, 10, 1)
	if _, err := operator.Withdraw(&unsigned, pkey.PublicKey); err != ErrMissingSignature {
		t.Fatal("an unsigned withdrawal must be rejected")
	}

	acc, err := operator.Account(2)
	if err != nil {
		t.Fatal(err)
	}
	var balance big.Int
	acc.Balance.BigInt(&balance)
	if balance.Uint64() != 50 {
		t.Fatal("a rejected withdrawal must not move funds")
	}
}

func TestCommittedBatchProves(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping the groth16 setup in short mode")
	}

	operator := NewOperator(4)
	k1 := generateKey(24)
	k2 := generateKey(25)
	operator.SubmitDeposit(NewDeposit(k1.PublicKey, 1, 30))
	operator.SubmitDeposit(NewDeposit(k2.PublicKey, 2, 70))

	params, err := operator.CommitDeposits(2)
	if err != nil {
		t.Fatal(err)
	}

	ps, err := prover.SetupDeposit(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := ps.ProveDeposit(params)
	if err != nil {
		t.Fatal(err)
	}
	err = ps.VerifyDeposit(params.OldAccumulatorHash, params.NewAccumulatorHash, params.OldRoot, params.NewRoot, proof)
	if err != nil {
		t.Fatal(err)
	}
}
