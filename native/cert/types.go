package cert

import "math/big"

// ContractState is the 3-valued lifecycle state of the contract. A missing
// state record decodes canonically as StateActive.
type ContractState uint8

const (
	// StateActive permits every operation.
	StateActive ContractState = 0
	// StateInactive permits only read-only query operations.
	StateInactive ContractState = 1
	// StateAllStop rejects every operation, including queries.
	StateAllStop ContractState = 2
)

// String implements fmt.Stringer.
func (s ContractState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateAllStop:
		return "allstop"
	default:
		return "unknown"
	}
}

// Certificate is a uniquely identified membership certificate. AllPoint is the
// cumulative lifetime score and never decreases; AvailablePoint is the
// spendable balance consumed by upgrades. A zero InviterTokenID marks the
// genesis certificate.
type Certificate struct {
	TokenID        [32]byte
	Owner          [20]byte
	Rank           *big.Int
	AllPoint       *big.Int
	AvailablePoint *big.Int
	InviterTokenID [32]byte
}

// Clone returns a deep copy to avoid callers mutating shared pointers.
func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	clone := &Certificate{
		TokenID:        c.TokenID,
		Owner:          c.Owner,
		InviterTokenID: c.InviterTokenID,
	}
	clone.Rank = cloneBigInt(c.Rank)
	clone.AllPoint = cloneBigInt(c.AllPoint)
	clone.AvailablePoint = cloneBigInt(c.AvailablePoint)
	return clone
}

// storedCertificate is the persisted shape of a certificate record.
type storedCertificate struct {
	TokenID        [32]byte
	Owner          [20]byte
	Rank           *big.Int
	AllPoint       *big.Int
	AvailablePoint *big.Int
	InviterTokenID [32]byte
}

func (s *storedCertificate) certificate() *Certificate {
	return &Certificate{
		TokenID:        s.TokenID,
		Owner:          s.Owner,
		Rank:           cloneBigInt(s.Rank),
		AllPoint:       cloneBigInt(s.AllPoint),
		AvailablePoint: cloneBigInt(s.AvailablePoint),
		InviterTokenID: s.InviterTokenID,
	}
}

// ExchangeReceipt records a completed ownership transfer, keyed by the
// transferring invocation's identity.
type ExchangeReceipt struct {
	From    [20]byte
	To      [20]byte
	TokenID [32]byte
}

// TransferLog is the external asset ledger's record of a completed payment.
type TransferLog struct {
	From  [20]byte
	To    [20]byte
	Value *big.Int
}

// TransferLedger resolves completed asset movements recorded outside this
// contract. Implementations are host-provided and must be deterministic for a
// given (asset, txid) pair.
type TransferLedger interface {
	GetTransferLog(assetID [20]byte, txid [32]byte) (*TransferLog, bool)
}

// WitnessChecker verifies that the invoking party controls the credentials of
// the named account. Host-provided.
type WitnessChecker interface {
	CheckWitness(addr [20]byte) bool
}

// Invocation carries the host-supplied identity of the current call. TxHash is
// unique and unpredictable to callers; it seeds token identifier derivation
// and keys exchange receipts.
type Invocation struct {
	TxHash  [32]byte
	Witness WitnessChecker
}

func (inv Invocation) hasWitness(addr [20]byte) bool {
	if inv.Witness == nil {
		return false
	}
	return inv.Witness.CheckWitness(addr)
}

// Params holds the static configuration injected at construction time. The
// super admin is the only identity allowed to rotate the operating admin and
// the contract state.
type Params struct {
	SuperAdmin [20]byte
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
