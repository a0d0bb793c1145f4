package ledger

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/render/problem"
)

func TestTranslateErrorNil(t *testing.T) {
	if err := translateError("submit", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestTranslateErrorTransport(t *testing.T) {
	cause := errors.New("connection refused")
	err := translateError("submit", cause)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T", err)
	}
	if netErr.Op != "submit" || !errors.Is(err, cause) {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsRetryable(err) {
		t.Fatal("transport failures must be retryable")
	}
}

func TestTranslateErrorNotFound(t *testing.T) {
	herr := &horizonclient.Error{Problem: problem.P{Status: 404, Title: "Resource Missing"}}
	if err := translateError("load account", herr); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTranslateErrorServerFault(t *testing.T) {
	herr := &horizonclient.Error{Problem: problem.P{Status: 503, Title: "Timeout"}}
	err := translateError("submit", herr)
	if !IsRetryable(err) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}

func TestTranslateErrorClientFault(t *testing.T) {
	herr := &horizonclient.Error{Problem: problem.P{Status: 400, Title: "Bad Request"}}
	err := translateError("submit", herr)
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %T", err)
	}
	if rej.TransactionCode != "Bad Request" {
		t.Fatalf("unexpected code: %q", rej.TransactionCode)
	}
	if IsRetryable(err) {
		t.Fatal("rejections must not be retryable")
	}
}

func TestRejectionErrorMessage(t *testing.T) {
	rej := &RejectionError{TransactionCode: "tx_failed", OperationCodes: []string{"op_no_trust"}}
	msg := rej.Error()
	if !strings.Contains(msg, "tx_failed") || !strings.Contains(msg, "op_no_trust") {
		t.Fatalf("unexpected message: %q", msg)
	}
	bare := &RejectionError{TransactionCode: "tx_bad_seq"}
	if !strings.Contains(bare.Error(), "tx_bad_seq") {
		t.Fatalf("unexpected message: %q", bare.Error())
	}
}

func TestIsSequenceConflict(t *testing.T) {
	if !IsSequenceConflict(&RejectionError{TransactionCode: "tx_bad_seq"}) {
		t.Fatal("tx_bad_seq must be a sequence conflict")
	}
	wrapped := fmt.Errorf("submit: %w", &RejectionError{TransactionCode: "tx_bad_seq"})
	if !IsSequenceConflict(wrapped) {
		t.Fatal("wrapped tx_bad_seq must be a sequence conflict")
	}
	if IsSequenceConflict(&RejectionError{TransactionCode: "tx_failed"}) {
		t.Fatal("tx_failed is not a sequence conflict")
	}
	if IsSequenceConflict(errors.New("other")) {
		t.Fatal("plain errors are not sequence conflicts")
	}
}
