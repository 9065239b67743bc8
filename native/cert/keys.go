package cert

// Single-byte record family prefixes. Each family owns a disjoint slice of the
// contract namespace.
var (
	holdingsPrefix    = []byte{0x10}
	bindingPrefix     = []byte{0x11}
	certificatePrefix = []byte{0x12}
	receiptPrefix     = []byte{0x13}
	consumedPrefix    = []byte{0x14}
)

// Unprefixed scalar keys.
var (
	stateKey  = []byte("state")
	adminKey  = []byte("adminAddress")
	gatherKey = []byte("gatherAddress")
	deployKey = []byte("initDeploy")
)

func prefixedKey(prefix []byte, id []byte) []byte {
	buf := make([]byte, len(prefix)+len(id))
	copy(buf, prefix)
	copy(buf[len(prefix):], id)
	return buf
}

func holdingsKey(addr [20]byte) []byte {
	return prefixedKey(holdingsPrefix, addr[:])
}

func bindingKey(addr [20]byte) []byte {
	return prefixedKey(bindingPrefix, addr[:])
}

func certificateKey(tokenID [32]byte) []byte {
	return prefixedKey(certificatePrefix, tokenID[:])
}

func receiptKey(txHash [32]byte) []byte {
	return prefixedKey(receiptPrefix, txHash[:])
}

func consumedKey(txid [32]byte) []byte {
	return prefixedKey(consumedPrefix, txid[:])
}
