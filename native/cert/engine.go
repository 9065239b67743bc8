package cert

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"certledger/core/events"
	"certledger/core/types"
)

// Storage abstracts the subset of state manager functionality required by the
// certificate engine.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVHas(key []byte) (bool, error)
}

type certEvent struct {
	evt *types.Event
}

func (e certEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e certEvent) Event() *types.Event { return e.evt }

// Engine implements the certificate lifecycle state machine over a namespaced
// key-value store. Every exported operation is one complete state transition;
// the surrounding host guarantees that its writes are applied atomically and
// that no two invocations overlap.
type Engine struct {
	store     Storage
	emitter   events.Emitter
	transfers TransferLedger
	params    Params
}

// NewEngine creates an engine bound to the provided storage backend with a
// no-op emitter. Callers can override the emitter via SetEmitter.
func NewEngine(store Storage, params Params) *Engine {
	return &Engine{
		store:   store,
		emitter: events.NoopEmitter{},
		params:  params,
	}
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetTransferLedger configures the external asset ledger used to verify
// payments backing issuance and upgrades.
func (e *Engine) SetTransferLedger(ledger TransferLedger) {
	e.transfers = ledger
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(certEvent{evt: event})
}

// deriveTokenID computes a certificate identifier from the invocation identity
// and the per-call sequence index, so a batch issuance yields distinct ids.
func deriveTokenID(txHash [32]byte, index uint64) [32]byte {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], index)
	var id [32]byte
	copy(id[:], ethcrypto.Keccak256(txHash[:], seq[:]))
	return id
}

func newCertificate(tokenID [32]byte, owner [20]byte, inviter [32]byte) *storedCertificate {
	return &storedCertificate{
		TokenID:        tokenID,
		Owner:          owner,
		Rank:           big.NewInt(1),
		AllPoint:       big.NewInt(0),
		AvailablePoint: big.NewInt(0),
		InviterTokenID: inviter,
	}
}

// --- Administrative state ---

// State reports the contract lifecycle state. An unset record is canonically
// Active.
func (e *Engine) State() (ContractState, error) {
	if e == nil || e.store == nil {
		return StateActive, ErrNotConfigured
	}
	var code uint8
	ok, err := e.store.KVGet(stateKey, &code)
	if err != nil {
		return StateActive, err
	}
	if !ok {
		return StateActive, nil
	}
	switch ContractState(code) {
	case StateActive, StateInactive, StateAllStop:
		return ContractState(code), nil
	default:
		return StateActive, nil
	}
}

// applySetState persists the lifecycle state for a recognised code. Codes
// outside {0,1,2} leave the stored state untouched and still succeed, matching
// the tolerant behaviour of the deployed contract.
func (e *Engine) applySetState(code *big.Int) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	if code == nil {
		return ErrInvalidArgument
	}
	if !code.IsUint64() {
		return nil
	}
	switch ContractState(code.Uint64()) {
	case StateActive, StateInactive, StateAllStop:
		return e.store.KVPut(stateKey, uint8(code.Uint64()))
	default:
		return nil
	}
}

func (e *Engine) applySetAdmin(addr [20]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	return e.store.KVPut(adminKey, addr)
}

func (e *Engine) adminAddress() ([20]byte, bool, error) {
	var addr [20]byte
	if e == nil || e.store == nil {
		return addr, false, ErrNotConfigured
	}
	ok, err := e.store.KVGet(adminKey, &addr)
	return addr, ok, err
}

// SetGatherAddress persists the account that must receive payments backing
// issuance and upgrades.
func (e *Engine) SetGatherAddress(addr [20]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	return e.store.KVPut(gatherKey, addr)
}

// GatherAddress reports the configured payment recipient.
func (e *Engine) GatherAddress() ([20]byte, bool, error) {
	var addr [20]byte
	if e == nil || e.store == nil {
		return addr, false, ErrNotConfigured
	}
	ok, err := e.store.KVGet(gatherKey, &addr)
	return addr, ok, err
}

// --- Lifecycle operations ---

// Deploy performs the one-time genesis issuance: exactly one certificate with
// rank 1, zero points and no inviter, owned by the provided address.
func (e *Engine) Deploy(inv Invocation, address [20]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	done, err := e.store.KVHas(deployKey)
	if err != nil {
		return err
	}
	if done {
		return ErrAlreadyDeployed
	}
	holdings, err := e.Holdings(address)
	if err != nil {
		return err
	}
	tokenID := deriveTokenID(inv.TxHash, 1)
	stored := newCertificate(tokenID, address, [32]byte{})
	if err := e.saveCertificate(stored); err != nil {
		return err
	}
	holdings = appendToken(holdings, tokenID)
	if err := e.saveHoldings(address, holdings); err != nil {
		return err
	}
	if err := e.store.KVPut(deployKey, uint8(1)); err != nil {
		return err
	}
	e.emit(NewIssuedEvent(address, 1, big.NewInt(0), [][32]byte{tokenID}))
	return nil
}

// Buy issues count new certificates to the payer of the referenced external
// payment. The payment must target the gather address, carry at least the
// receivable amount and be unconsumed; the inviter certificate must exist.
func (e *Engine) Buy(inv Invocation, assetID [20]byte, txid [32]byte, count int, inviterTokenID [32]byte, receivable *big.Int) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	if count < 1 || receivable == nil || receivable.Sign() < 1 {
		return ErrInvalidArgument
	}
	inviter, ok, err := e.Certificate(inviterTokenID)
	if err != nil {
		return err
	}
	if !ok || inviter.Owner == ([20]byte{}) {
		return ErrInviterNotFound
	}
	log, err := e.verifyPayment(assetID, txid, receivable, false)
	if err != nil {
		return err
	}
	payer := log.From
	holdings, err := e.Holdings(payer)
	if err != nil {
		return err
	}
	added := make([][32]byte, 0, count)
	for i := 1; i <= count; i++ {
		tokenID := deriveTokenID(inv.TxHash, uint64(i))
		if err := e.saveCertificate(newCertificate(tokenID, payer, inviterTokenID)); err != nil {
			return err
		}
		holdings = appendToken(holdings, tokenID)
		added = append(added, tokenID)
	}
	if err := e.saveHoldings(payer, holdings); err != nil {
		return err
	}
	e.emit(NewIssuedEvent(payer, count, log.Value, added))
	return e.markConsumed(txid)
}

// Bind designates tokenID as the account's primary certificate. Rebinding the
// already-bound certificate is a trivial success.
func (e *Engine) Bind(address [20]byte, tokenID [32]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	bound, haveBinding, err := e.BoundToken(address)
	if err != nil {
		return err
	}
	if haveBinding && bound == tokenID {
		return nil
	}
	cert, ok, err := e.Certificate(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCertificateNotFound
	}
	if cert.Owner != address {
		return ErrNotOwner
	}
	if err := e.store.KVPut(bindingKey(address), tokenID); err != nil {
		return err
	}
	e.emit(NewBoundEvent(address, tokenID))
	return nil
}

// Upgrade raises the certificate's rank by one, consuming needPoint spendable
// points and a verified payment strictly greater than receivable.
func (e *Engine) Upgrade(assetID [20]byte, txid [32]byte, tokenID [32]byte, receivable, needPoint *big.Int) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	if receivable == nil || needPoint == nil || needPoint.Sign() < 0 {
		return ErrInvalidArgument
	}
	log, err := e.verifyPayment(assetID, txid, receivable, true)
	if err != nil {
		return err
	}
	stored, ok, err := e.loadCertificate(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCertificateNotFound
	}
	if stored.Owner != log.From {
		return ErrNotOwner
	}
	if stored.AvailablePoint.Cmp(needPoint) < 0 {
		return ErrInsufficientPoints
	}
	previousRank := cloneBigInt(stored.Rank)
	stored.Rank = new(big.Int).Add(stored.Rank, big.NewInt(1))
	stored.AvailablePoint = new(big.Int).Sub(stored.AvailablePoint, needPoint)
	if err := e.saveCertificate(stored); err != nil {
		return err
	}
	if err := e.markConsumed(txid); err != nil {
		return err
	}
	e.emit(NewUpgradedEvent(tokenID, stored.Owner, previousRank, stored.Rank))
	e.emit(NewPointAdjustedEvent(tokenID, stored.Owner, new(big.Int).Neg(needPoint)))
	return nil
}

// ReduceGrade lowers the certificate's rank by one. Rank never falls below 1.
func (e *Engine) ReduceGrade(tokenID [32]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	stored, ok, err := e.loadCertificate(tokenID)
	if err != nil {
		return err
	}
	if !ok || stored.Owner == ([20]byte{}) {
		return ErrCertificateNotFound
	}
	if stored.Rank.Cmp(big.NewInt(2)) < 0 {
		return ErrRankFloor
	}
	previousRank := cloneBigInt(stored.Rank)
	stored.Rank = new(big.Int).Sub(stored.Rank, big.NewInt(1))
	if err := e.saveCertificate(stored); err != nil {
		return err
	}
	e.emit(NewUpgradedEvent(tokenID, stored.Owner, previousRank, stored.Rank))
	return nil
}

// AddPoint adjusts the certificate's spendable points by the signed value.
// Positive adjustments also accrue to the lifetime counter; negative
// adjustments never reduce it. A zero value is a trivial success. Adjustments
// that would drive the spendable balance negative fail without mutation.
func (e *Engine) AddPoint(tokenID [32]byte, value *big.Int) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	if value == nil {
		return ErrInvalidArgument
	}
	if value.Sign() == 0 {
		return nil
	}
	stored, ok, err := e.loadCertificate(tokenID)
	if err != nil {
		return err
	}
	if !ok || stored.Owner == ([20]byte{}) {
		return ErrCertificateNotFound
	}
	next := new(big.Int).Add(stored.AvailablePoint, value)
	if next.Sign() < 0 {
		return ErrPointUnderflow
	}
	stored.AvailablePoint = next
	if value.Sign() > 0 {
		stored.AllPoint = new(big.Int).Add(stored.AllPoint, value)
	}
	if err := e.saveCertificate(stored); err != nil {
		return err
	}
	e.emit(NewPointAdjustedEvent(tokenID, stored.Owner, value))
	return nil
}

// Exchange transfers the certificate from one account to another, moving it
// between the two holdings indices and clearing the sender's binding when the
// bound certificate leaves. A self-transfer is a trivial success.
func (e *Engine) Exchange(inv Invocation, from, to [20]byte, tokenID [32]byte) error {
	if e == nil || e.store == nil {
		return ErrNotConfigured
	}
	if from == to {
		return nil
	}
	stored, ok, err := e.loadCertificate(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCertificateNotFound
	}
	if stored.Owner != from {
		return ErrNotOwner
	}
	fromHoldings, err := e.Holdings(from)
	if err != nil {
		return err
	}
	toHoldings, err := e.Holdings(to)
	if err != nil {
		return err
	}
	fromHoldings = removeToken(fromHoldings, tokenID)
	toHoldings = appendToken(toHoldings, tokenID)
	if err := e.saveHoldings(from, fromHoldings); err != nil {
		return err
	}
	if err := e.saveHoldings(to, toHoldings); err != nil {
		return err
	}
	stored.Owner = to
	if err := e.saveCertificate(stored); err != nil {
		return err
	}
	bound, haveBinding, err := e.BoundToken(from)
	if err != nil {
		return err
	}
	if haveBinding && bound == tokenID {
		if err := e.store.KVDelete(bindingKey(from)); err != nil {
			return err
		}
	}
	receipt := ExchangeReceipt{From: from, To: to, TokenID: tokenID}
	if err := e.store.KVPut(receiptKey(inv.TxHash), &receipt); err != nil {
		return err
	}
	e.emit(NewExchangedEvent(from, to, tokenID))
	return nil
}

// --- Lookups ---

// Certificate resolves a certificate by token id. Absent certificates are not
// an error; the second return value reports presence.
func (e *Engine) Certificate(tokenID [32]byte) (*Certificate, bool, error) {
	stored, ok, err := e.loadCertificate(tokenID)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.certificate(), true, nil
}

// BoundToken resolves the account's primary certificate designation.
func (e *Engine) BoundToken(address [20]byte) ([32]byte, bool, error) {
	var tokenID [32]byte
	if e == nil || e.store == nil {
		return tokenID, false, ErrNotConfigured
	}
	ok, err := e.store.KVGet(bindingKey(address), &tokenID)
	return tokenID, ok, err
}

// Holdings resolves the full set of certificates held by the account, in
// acquisition order.
func (e *Engine) Holdings(address [20]byte) ([][32]byte, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotConfigured
	}
	var tokens [][32]byte
	if _, err := e.store.KVGet(holdingsKey(address), &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Receipt resolves the exchange receipt recorded by the invocation with the
// given identity.
func (e *Engine) Receipt(txHash [32]byte) (*ExchangeReceipt, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotConfigured
	}
	var receipt ExchangeReceipt
	ok, err := e.store.KVGet(receiptKey(txHash), &receipt)
	if err != nil || !ok {
		return nil, false, err
	}
	return &receipt, true, nil
}

// --- Internal helpers ---

func (e *Engine) loadCertificate(tokenID [32]byte) (*storedCertificate, bool, error) {
	var stored storedCertificate
	ok, err := e.store.KVGet(certificateKey(tokenID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	if stored.Rank == nil {
		stored.Rank = big.NewInt(0)
	}
	if stored.AllPoint == nil {
		stored.AllPoint = big.NewInt(0)
	}
	if stored.AvailablePoint == nil {
		stored.AvailablePoint = big.NewInt(0)
	}
	return &stored, true, nil
}

func (e *Engine) saveCertificate(stored *storedCertificate) error {
	return e.store.KVPut(certificateKey(stored.TokenID), stored)
}

func (e *Engine) saveHoldings(address [20]byte, tokens [][32]byte) error {
	return e.store.KVPut(holdingsKey(address), tokens)
}

func appendToken(tokens [][32]byte, tokenID [32]byte) [][32]byte {
	for _, existing := range tokens {
		if existing == tokenID {
			return tokens
		}
	}
	return append(tokens, tokenID)
}

func removeToken(tokens [][32]byte, tokenID [32]byte) [][32]byte {
	filtered := tokens[:0]
	for _, existing := range tokens {
		if existing != tokenID {
			filtered = append(filtered, existing)
		}
	}
	return filtered
}
