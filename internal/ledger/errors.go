package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
)

var (
	ErrAccountNotFound = errors.New("ledger: account not found")
	ErrFundingDisabled = errors.New("ledger: friendbot funding is only available on the test network")
)

// RejectionError carries the structured result codes of a transaction the
// network refused. Resubmitting the same envelope will not succeed; the
// underlying condition (missing trustline, insufficient balance, stale
// sequence) has to change first.
type RejectionError struct {
	TransactionCode string
	OperationCodes  []string
}

func (e *RejectionError) Error() string {
	if len(e.OperationCodes) > 0 {
		return fmt.Sprintf("ledger: transaction rejected: %s [%s]", e.TransactionCode, strings.Join(e.OperationCodes, ", "))
	}
	return fmt.Sprintf("ledger: transaction rejected: %s", e.TransactionCode)
}

// NetworkError wraps a transport failure reaching Horizon. The whole
// orchestration call is safe to retry from scratch.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsSequenceConflict reports a tx_bad_seq rejection: two submissions from
// the same account raced and the network serialized them. The loser may
// reload the account and rebuild.
func IsSequenceConflict(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej) && rej.TransactionCode == "tx_bad_seq"
}

// translateError maps Horizon client failures into the package error
// taxonomy. Anything that is not a structured Horizon problem is treated
// as a transient network failure.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	herr := horizonclient.GetError(err)
	if herr == nil {
		return &NetworkError{Op: op, Err: err}
	}
	if herr.Problem.Status == 404 {
		return ErrAccountNotFound
	}
	if codes, cerr := herr.ResultCodes(); cerr == nil {
		rej := &RejectionError{TransactionCode: codes.TransactionCode, OperationCodes: codes.OperationCodes}
		if rej.TransactionCode == "" {
			rej.TransactionCode = codes.InnerTransactionCode
		}
		return rej
	}
	if herr.Problem.Status >= 500 {
		return &NetworkError{Op: op, Err: herr}
	}
	return &RejectionError{TransactionCode: herr.Problem.Title}
}
