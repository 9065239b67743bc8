package cert

import (
	"errors"
	"math/big"
	"testing"
)

// setupDispatch returns an engine with the super admin 0x01, an operating
// admin 0x02 and a configured gather address 0x03.
func setupDispatch(t *testing.T) (*Engine, *eventRecorder, *mockLedger, [20]byte, [20]byte) {
	t.Helper()
	engine, recorder, ledger := newTestEngine(t)
	superAdmin := newTestAddress(0x01)
	admin := newTestAddress(0x02)

	if _, err := engine.Invoke(newInvocation(0x01, superAdmin), MethodSetAdmin, []interface{}{admin[:]}); err != nil {
		t.Fatalf("setAdmin: %v", err)
	}
	gather := newTestAddress(0x03)
	if _, err := engine.Invoke(newInvocation(0x02, admin), MethodSetGatherAddress, []interface{}{gather[:]}); err != nil {
		t.Fatalf("setGatherAddress: %v", err)
	}
	return engine, recorder, ledger, superAdmin, admin
}

func TestInvokeUnknownMethodAndArity(t *testing.T) {
	engine, _, _, _, admin := setupDispatch(t)

	if _, err := engine.Invoke(newInvocation(0x10, admin), "mintUnicorn", nil); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("unknown method: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x11, admin), MethodDeploy, nil); !errors.Is(err, ErrInvalidArity) {
		t.Fatalf("missing args: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x12, admin), MethodDeploy, []interface{}{[]byte{0x01}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("short address: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x13, admin), MethodAddPoint, []interface{}{make([]byte, 32), "ten"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad integer: %v", err)
	}
}

func TestInvokeSuperAdminGate(t *testing.T) {
	engine, _, _, superAdmin, admin := setupDispatch(t)

	// Only the super admin may rotate state and admin.
	if _, err := engine.Invoke(newInvocation(0x20, admin), MethodSetState, []interface{}{big.NewInt(1)}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("setState by admin: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x21, admin), MethodSetAdmin, []interface{}{admin[:]}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("setAdmin by admin: %v", err)
	}

	result, err := engine.Invoke(newInvocation(0x22, superAdmin), MethodSetState, []interface{}{big.NewInt(1)})
	if err != nil {
		t.Fatalf("setState: %v", err)
	}
	if ok, _ := result.(bool); !ok {
		t.Fatalf("setState result = %v", result)
	}

	// An out-of-range code still succeeds and changes nothing.
	if _, err := engine.Invoke(newInvocation(0x23, superAdmin), MethodSetState, []interface{}{big.NewInt(9)}); err != nil {
		t.Fatalf("tolerant setState: %v", err)
	}
	state, err := engine.Invoke(newInvocation(0x24), MethodGetState, nil)
	if err != nil {
		t.Fatalf("getState: %v", err)
	}
	if state != StateInactive {
		t.Fatalf("state = %v, want inactive", state)
	}
}

func TestInvokeStateGating(t *testing.T) {
	engine, _, _, superAdmin, admin := setupDispatch(t)
	owner := newTestAddress(0xAA)

	if _, err := engine.Invoke(newInvocation(0x30, admin), MethodDeploy, []interface{}{owner[:]}); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	// Inactive: queries pass, mutations fail.
	if _, err := engine.Invoke(newInvocation(0x31, superAdmin), MethodSetState, []interface{}{big.NewInt(1)}); err != nil {
		t.Fatalf("setState inactive: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x32), MethodGetUserNfts, []interface{}{owner[:]}); err != nil {
		t.Fatalf("query while inactive: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x33, admin), MethodAddPoint, []interface{}{make([]byte, 32), big.NewInt(1)}); !errors.Is(err, ErrContractInactive) {
		t.Fatalf("mutation while inactive: %v", err)
	}

	// AllStop: everything but getState and the super-admin operations fails.
	if _, err := engine.Invoke(newInvocation(0x34, superAdmin), MethodSetState, []interface{}{big.NewInt(2)}); err != nil {
		t.Fatalf("setState allstop: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x35), MethodGetUserNfts, []interface{}{owner[:]}); !errors.Is(err, ErrContractStopped) {
		t.Fatalf("query while stopped: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x36), MethodGetState, nil); err != nil {
		t.Fatalf("getState while stopped: %v", err)
	}
	if _, err := engine.Invoke(newInvocation(0x37, superAdmin), MethodSetState, []interface{}{big.NewInt(0)}); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	// Back to Active, mutations require the admin witness.
	if _, err := engine.Invoke(newInvocation(0x38), MethodAddPoint, []interface{}{make([]byte, 32), big.NewInt(0)}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("mutation without witness: %v", err)
	}
}

func TestInvokeEndToEndScenario(t *testing.T) {
	engine, _, ledger, _, admin := setupDispatch(t)
	owner := newTestAddress(0xAA)
	buyer := newTestAddress(0xBB)
	gather := newTestAddress(0x03)
	asset := newTestAddress(0x0A)

	deployInv := newInvocation(0x40, admin)
	if _, err := engine.Invoke(deployInv, MethodDeploy, []interface{}{owner[:]}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	genesis := deriveTokenID(deployInv.TxHash, 1)

	txid := newTestHash(0x41)
	ledger.record(asset, txid, buyer, gather, 100)
	buyInv := newInvocation(0x42, admin)
	if _, err := engine.Invoke(buyInv, MethodBuy, []interface{}{asset[:], txid[:], big.NewInt(2), genesis[:], big.NewInt(50)}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	result, err := engine.Invoke(newInvocation(0x43), MethodGetUserNfts, []interface{}{buyer[:]})
	if err != nil {
		t.Fatalf("getUserNfts: %v", err)
	}
	holdings, ok := result.([][32]byte)
	if !ok || len(holdings) != 2 {
		t.Fatalf("unexpected holdings result %v", result)
	}

	purchased := holdings[0]
	if _, err := engine.Invoke(newInvocation(0x44, admin), MethodBind, []interface{}{buyer[:], purchased[:]}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	result, err = engine.Invoke(newInvocation(0x45), MethodGetBindNft, []interface{}{buyer[:]})
	if err != nil {
		t.Fatalf("getBindNft: %v", err)
	}
	if bound, _ := result.([]byte); len(bound) != 32 {
		t.Fatalf("unexpected binding result %v", result)
	}

	// Selling the bound certificate clears the binding.
	exchangeInv := newInvocation(0x46, admin)
	if _, err := engine.Invoke(exchangeInv, MethodExchange, []interface{}{buyer[:], owner[:], purchased[:]}); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	result, err = engine.Invoke(newInvocation(0x47), MethodGetBindNft, []interface{}{buyer[:]})
	if err != nil {
		t.Fatalf("getBindNft after sale: %v", err)
	}
	if bound, _ := result.([]byte); len(bound) != 0 {
		t.Fatalf("binding must be empty after sale, got %x", bound)
	}

	result, err = engine.Invoke(newInvocation(0x48), MethodGetTxInfo, []interface{}{exchangeInv.TxHash[:]})
	if err != nil {
		t.Fatalf("getTxInfo: %v", err)
	}
	receipt, ok := result.(*ExchangeReceipt)
	if !ok || receipt == nil || receipt.TokenID != purchased {
		t.Fatalf("unexpected receipt %v", result)
	}

	// Replaying the purchase fails and issues nothing.
	if _, err := engine.Invoke(newInvocation(0x49, admin), MethodBuy, []interface{}{asset[:], txid[:], big.NewInt(1), genesis[:], big.NewInt(50)}); !errors.Is(err, ErrPaymentConsumed) {
		t.Fatalf("replayed buy: %v", err)
	}
}

func TestInvokeQuerySentinels(t *testing.T) {
	engine, _, _, _, _ := setupDispatch(t)

	// Missing certificates resolve to a zero-valued record, not an error.
	result, err := engine.Invoke(newInvocation(0x50), MethodGetNftInfoByID, []interface{}{make([]byte, 32)})
	if err != nil {
		t.Fatalf("getNftInfoById: %v", err)
	}
	cert, ok := result.(*Certificate)
	if !ok || cert == nil {
		t.Fatalf("unexpected result %v", result)
	}
	if cert.Owner != ([20]byte{}) {
		t.Fatalf("sentinel record must have an empty owner")
	}

	// Unknown receipts resolve to nil.
	result, err = engine.Invoke(newInvocation(0x51), MethodGetTxInfo, []interface{}{make([]byte, 32)})
	if err != nil {
		t.Fatalf("getTxInfo: %v", err)
	}
	if receipt, _ := result.(*ExchangeReceipt); receipt != nil {
		t.Fatalf("unexpected receipt %v", receipt)
	}

	// The gather address query returns the configured account.
	result, err = engine.Invoke(newInvocation(0x52), MethodGetGatherAddress, nil)
	if err != nil {
		t.Fatalf("getGatherAddress: %v", err)
	}
	gather := newTestAddress(0x03)
	if addr, _ := result.([]byte); len(addr) != 20 || addr[0] != gather[0] {
		t.Fatalf("unexpected gather address %x", result)
	}
}

func TestParseCommandShapes(t *testing.T) {
	cmd, err := ParseCommand(MethodBuy, []interface{}{make([]byte, 20), make([]byte, 32), 2, make([]byte, 32), big.NewInt(10)})
	if err != nil {
		t.Fatalf("parse buy: %v", err)
	}
	buy, ok := cmd.(BuyCommand)
	if !ok {
		t.Fatalf("unexpected command %T", cmd)
	}
	if buy.Count != 2 || buy.Receivable.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("unexpected parse %+v", buy)
	}

	if _, err := ParseCommand(MethodBuy, []interface{}{make([]byte, 20), make([]byte, 31), 2, make([]byte, 32), big.NewInt(10)}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("short txid: %v", err)
	}
	if _, err := ParseCommand(MethodExchange, []interface{}{make([]byte, 20), make([]byte, 20)}); !errors.Is(err, ErrInvalidArity) {
		t.Fatalf("exchange arity: %v", err)
	}
}
