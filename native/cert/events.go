package cert

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"certledger/core/types"
)

const (
	// EventTypeIssued is emitted when new certificates are created, at
	// genesis deployment or through a verified purchase.
	EventTypeIssued = "cert.issued"
	// EventTypeExchanged is emitted when a certificate changes owner.
	EventTypeExchanged = "cert.exchanged"
	// EventTypeUpgraded is emitted on every rank change, up or down.
	EventTypeUpgraded = "cert.upgraded"
	// EventTypePointAdjusted is emitted when a certificate's spendable
	// points change.
	EventTypePointAdjusted = "cert.pointAdjusted"
	// EventTypeBound is emitted when an account designates its primary
	// certificate.
	EventTypeBound = "cert.bound"
)

func bigIntAttr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// NewIssuedEvent returns the canonical event payload for an issuance. tokens
// lists the identifiers created by this call in creation order.
func NewIssuedEvent(owner [20]byte, count int, amount *big.Int, tokens [][32]byte) *types.Event {
	encoded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		encoded = append(encoded, hex.EncodeToString(token[:]))
	}
	return &types.Event{
		Type: EventTypeIssued,
		Attributes: map[string]string{
			"owner":  hex.EncodeToString(owner[:]),
			"count":  strconv.Itoa(count),
			"amount": bigIntAttr(amount),
			"tokens": strings.Join(encoded, ","),
		},
	}
}

// NewExchangedEvent returns the canonical event payload for an ownership
// transfer.
func NewExchangedEvent(from, to [20]byte, tokenID [32]byte) *types.Event {
	return &types.Event{
		Type: EventTypeExchanged,
		Attributes: map[string]string{
			"from":    hex.EncodeToString(from[:]),
			"to":      hex.EncodeToString(to[:]),
			"tokenId": hex.EncodeToString(tokenID[:]),
		},
	}
}

// NewUpgradedEvent returns the canonical event payload for a rank change.
// Downgrades emit the same event with previousRank > newRank.
func NewUpgradedEvent(tokenID [32]byte, owner [20]byte, previousRank, newRank *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeUpgraded,
		Attributes: map[string]string{
			"tokenId":      hex.EncodeToString(tokenID[:]),
			"owner":        hex.EncodeToString(owner[:]),
			"previousRank": bigIntAttr(previousRank),
			"newRank":      bigIntAttr(newRank),
		},
	}
}

// NewPointAdjustedEvent returns the canonical event payload for a point
// balance change. delta carries the raw signed adjustment.
func NewPointAdjustedEvent(tokenID [32]byte, owner [20]byte, delta *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypePointAdjusted,
		Attributes: map[string]string{
			"tokenId": hex.EncodeToString(tokenID[:]),
			"owner":   hex.EncodeToString(owner[:]),
			"delta":   bigIntAttr(delta),
		},
	}
}

// NewBoundEvent returns the canonical event payload for a binding.
func NewBoundEvent(addr [20]byte, tokenID [32]byte) *types.Event {
	return &types.Event{
		Type: EventTypeBound,
		Attributes: map[string]string{
			"address": hex.EncodeToString(addr[:]),
			"tokenId": hex.EncodeToString(tokenID[:]),
		},
	}
}
