package cert

import (
	"math/big"
	"testing"
)

func TestIssuedEventAttributes(t *testing.T) {
	owner := newTestAddress(0xAA)
	tokens := [][32]byte{newTestHash(0x01), newTestHash(0x02)}

	evt := NewIssuedEvent(owner, 2, big.NewInt(100), tokens)
	if evt.Type != EventTypeIssued {
		t.Fatalf("unexpected type %s", evt.Type)
	}
	if evt.Attribute("count") != "2" || evt.Attribute("amount") != "100" {
		t.Fatalf("unexpected attributes %v", evt.Attributes)
	}
	wantTokens := "0101010101010101010101010101010101010101010101010101010101010101," +
		"0202020202020202020202020202020202020202020202020202020202020202"
	if evt.Attribute("tokens") != wantTokens {
		t.Fatalf("unexpected tokens attribute %s", evt.Attribute("tokens"))
	}
}

func TestPointAdjustedEventCarriesSignedDelta(t *testing.T) {
	evt := NewPointAdjustedEvent(newTestHash(0x01), newTestAddress(0xAA), big.NewInt(-7))
	if evt.Attribute("delta") != "-7" {
		t.Fatalf("unexpected delta %s", evt.Attribute("delta"))
	}

	evt = NewPointAdjustedEvent(newTestHash(0x01), newTestAddress(0xAA), nil)
	if evt.Attribute("delta") != "0" {
		t.Fatalf("nil delta must render as zero")
	}
}

func TestUpgradedEventRanks(t *testing.T) {
	evt := NewUpgradedEvent(newTestHash(0x01), newTestAddress(0xAA), big.NewInt(3), big.NewInt(2))
	if evt.Attribute("previousRank") != "3" || evt.Attribute("newRank") != "2" {
		t.Fatalf("unexpected ranks %v", evt.Attributes)
	}
}
