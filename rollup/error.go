package rollup

import "errors"

var (
	// ErrNonExistingAccount account not in the tree
	ErrNonExistingAccount = errors.New("the account is not in the rollup database")

	// ErrWrongSignature wrong signature
	ErrWrongSignature = errors.New("invalid signature")

	// ErrMissingSignature the withdrawal was never signed
	ErrMissingSignature = errors.New("no signature attached to the withdrawal")

	// ErrAmountTooHigh the amount is bigger than the balance
	ErrAmountTooHigh = errors.New("amount is bigger than balance")

	// ErrNonce inconsistent nonce between withdrawal and account
	ErrNonce = errors.New("incorrect nonce")

	// ErrPubKeyMismatch the deposited key differs from the stored one
	ErrPubKeyMismatch = errors.New("deposit public key does not match the account key")

	// ErrNotEnoughDeposits the queue holds fewer deposits than the batch needs
	ErrNotEnoughDeposits = errors.New("not enough pending deposits for the batch")
)
