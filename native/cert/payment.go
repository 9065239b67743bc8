package cert

import "math/big"

// verifyPayment validates the external payment backing an issuance or
// upgrade: the consumption marker must be absent, the transfer log must exist
// with a known sender, the recipient must be the gather address and the amount
// must meet the threshold. Purchases accept amounts equal to the threshold;
// upgrades require strictly more.
//
// The caller performs the gated business effect and then marks the
// transaction consumed; both happen inside one host-atomic invocation.
func (e *Engine) verifyPayment(assetID [20]byte, txid [32]byte, receivable *big.Int, strict bool) (*TransferLog, error) {
	if e.transfers == nil {
		return nil, ErrNotConfigured
	}
	consumed, err := e.store.KVHas(consumedKey(txid))
	if err != nil {
		return nil, err
	}
	if consumed {
		return nil, ErrPaymentConsumed
	}
	gather, haveGather, err := e.GatherAddress()
	if err != nil {
		return nil, err
	}
	if !haveGather {
		return nil, ErrGatherAddressUnset
	}
	log, ok := e.transfers.GetTransferLog(assetID, txid)
	if !ok || log == nil || log.From == ([20]byte{}) {
		return nil, ErrPaymentNotFound
	}
	if log.To != gather {
		return nil, ErrPaymentRecipient
	}
	if log.Value == nil {
		return nil, ErrPaymentAmount
	}
	cmp := log.Value.Cmp(receivable)
	if cmp < 0 || (strict && cmp == 0) {
		return nil, ErrPaymentAmount
	}
	verified := &TransferLog{From: log.From, To: log.To, Value: cloneBigInt(log.Value)}
	return verified, nil
}

// markConsumed records the at-most-once consumption marker for the payment
// transaction.
func (e *Engine) markConsumed(txid [32]byte) error {
	return e.store.KVPut(consumedKey(txid), uint8(1))
}
