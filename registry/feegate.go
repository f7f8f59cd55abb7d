package registry

import (
	"math/big"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// feeGate holds the registration fee and the balance collected from
// successful registrations. Like accessControl it has no lock of its own;
// the Registry's mutex covers it.
type feeGate struct {
	fee     *big.Int
	balance *big.Int
}

func newFeeGate(fee *big.Int) *feeGate {
	return &feeGate{
		fee:     new(big.Int).Set(fee),
		balance: new(big.Int),
	}
}

func (f *feeGate) currentFee() *big.Int {
	return new(big.Int).Set(f.fee)
}

func (f *feeGate) currentBalance() *big.Int {
	return new(big.Int).Set(f.balance)
}

// checkPayment is the fee guard: the attached payment must cover the
// current fee.
func (f *feeGate) checkPayment(paid *big.Int) error {
	if paid.Cmp(f.fee) < 0 {
		return interfaces.ErrInsufficientPayment
	}
	return nil
}

func (f *feeGate) setFee(newFee *big.Int) {
	f.fee = new(big.Int).Set(newFee)
}

// accumulate adds a successful registration's payment to the collected
// balance.
func (f *feeGate) accumulate(paid *big.Int) {
	f.balance.Add(f.balance, paid)
}

// drain returns the entire collected balance and zeroes it. Actually
// moving the funds is the caller's concern.
func (f *feeGate) drain() *big.Int {
	owed := f.balance
	f.balance = new(big.Int)
	return owed
}
