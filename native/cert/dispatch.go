package cert

import (
	"fmt"
	"math/big"
)

// Method names accepted by the dispatcher.
const (
	MethodSetState         = "setState"
	MethodSetAdmin         = "setAdmin"
	MethodGetState         = "getState"
	MethodGetBindNft       = "getBindNft"
	MethodGetNftInfoByID   = "getNftInfoById"
	MethodGetTxInfo        = "getTxInfo"
	MethodGetGatherAddress = "getGatherAddress"
	MethodGetUserNfts      = "getUserNfts"
	MethodSetGatherAddress = "setGatherAddress"
	MethodDeploy           = "deploy"
	MethodBuy              = "buy"
	MethodBind             = "bind"
	MethodUpgrade          = "upgrade"
	MethodAddPoint         = "addPoint"
	MethodExchange         = "exchange"
	MethodReduceGrade      = "reduceGrade"
)

// Command is the closed set of parsed, shape-validated invocations. Parsing
// happens once at the boundary; operations receive strongly typed values.
type Command interface {
	method() string
}

type SetStateCommand struct{ Code *big.Int }
type SetAdminCommand struct{ Address [20]byte }
type GetStateCommand struct{}
type GetBindNftCommand struct{ Address [20]byte }
type GetNftInfoCommand struct{ TokenID [32]byte }
type GetTxInfoCommand struct{ TxHash [32]byte }
type GetGatherAddressCommand struct{}
type GetUserNftsCommand struct{ Address [20]byte }
type SetGatherAddressCommand struct{ Address [20]byte }
type DeployCommand struct{ Address [20]byte }

type BuyCommand struct {
	AssetID        [20]byte
	TxID           [32]byte
	Count          int
	InviterTokenID [32]byte
	Receivable     *big.Int
}

type BindCommand struct {
	Address [20]byte
	TokenID [32]byte
}

type UpgradeCommand struct {
	AssetID    [20]byte
	TxID       [32]byte
	TokenID    [32]byte
	Receivable *big.Int
	NeedPoint  *big.Int
}

type AddPointCommand struct {
	TokenID [32]byte
	Value   *big.Int
}

type ExchangeCommand struct {
	From    [20]byte
	To      [20]byte
	TokenID [32]byte
}

type ReduceGradeCommand struct{ TokenID [32]byte }

func (SetStateCommand) method() string         { return MethodSetState }
func (SetAdminCommand) method() string         { return MethodSetAdmin }
func (GetStateCommand) method() string         { return MethodGetState }
func (GetBindNftCommand) method() string       { return MethodGetBindNft }
func (GetNftInfoCommand) method() string       { return MethodGetNftInfoByID }
func (GetTxInfoCommand) method() string        { return MethodGetTxInfo }
func (GetGatherAddressCommand) method() string { return MethodGetGatherAddress }
func (GetUserNftsCommand) method() string      { return MethodGetUserNfts }
func (SetGatherAddressCommand) method() string { return MethodSetGatherAddress }
func (DeployCommand) method() string           { return MethodDeploy }
func (BuyCommand) method() string              { return MethodBuy }
func (BindCommand) method() string             { return MethodBind }
func (UpgradeCommand) method() string          { return MethodUpgrade }
func (AddPointCommand) method() string         { return MethodAddPoint }
func (ExchangeCommand) method() string         { return MethodExchange }
func (ReduceGradeCommand) method() string      { return MethodReduceGrade }

func argAddress(args []interface{}, i int) ([20]byte, error) {
	var addr [20]byte
	switch v := args[i].(type) {
	case [20]byte:
		return v, nil
	case []byte:
		if len(v) != 20 {
			return addr, fmt.Errorf("%w: argument %d: address must be 20 bytes", ErrInvalidArgument, i)
		}
		copy(addr[:], v)
		return addr, nil
	default:
		return addr, fmt.Errorf("%w: argument %d: expected address bytes", ErrInvalidArgument, i)
	}
}

func argHash(args []interface{}, i int) ([32]byte, error) {
	var hash [32]byte
	switch v := args[i].(type) {
	case [32]byte:
		return v, nil
	case []byte:
		if len(v) != 32 {
			return hash, fmt.Errorf("%w: argument %d: identifier must be 32 bytes", ErrInvalidArgument, i)
		}
		copy(hash[:], v)
		return hash, nil
	default:
		return hash, fmt.Errorf("%w: argument %d: expected identifier bytes", ErrInvalidArgument, i)
	}
}

func argBigInt(args []interface{}, i int) (*big.Int, error) {
	switch v := args[i].(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: argument %d: nil integer", ErrInvalidArgument, i)
		}
		return new(big.Int).Set(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("%w: argument %d: expected integer", ErrInvalidArgument, i)
	}
}

func argCount(args []interface{}, i int) (int, error) {
	value, err := argBigInt(args, i)
	if err != nil {
		return 0, err
	}
	if !value.IsInt64() {
		return 0, fmt.Errorf("%w: argument %d: count out of range", ErrInvalidArgument, i)
	}
	return int(value.Int64()), nil
}

func checkArity(method string, args []interface{}, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrInvalidArity, method, want, len(args))
	}
	return nil
}

// ParseCommand validates the method name, arity and argument shapes of an
// inbound call and produces the corresponding typed command. No state is read
// or written.
func ParseCommand(method string, args []interface{}) (Command, error) {
	switch method {
	case MethodSetState:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		code, err := argBigInt(args, 0)
		if err != nil {
			return nil, err
		}
		return SetStateCommand{Code: code}, nil
	case MethodSetAdmin:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return SetAdminCommand{Address: addr}, nil
	case MethodGetState:
		if err := checkArity(method, args, 0); err != nil {
			return nil, err
		}
		return GetStateCommand{}, nil
	case MethodGetBindNft:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return GetBindNftCommand{Address: addr}, nil
	case MethodGetNftInfoByID:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 0)
		if err != nil {
			return nil, err
		}
		return GetNftInfoCommand{TokenID: tokenID}, nil
	case MethodGetTxInfo:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		txHash, err := argHash(args, 0)
		if err != nil {
			return nil, err
		}
		return GetTxInfoCommand{TxHash: txHash}, nil
	case MethodGetGatherAddress:
		if err := checkArity(method, args, 0); err != nil {
			return nil, err
		}
		return GetGatherAddressCommand{}, nil
	case MethodGetUserNfts:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return GetUserNftsCommand{Address: addr}, nil
	case MethodSetGatherAddress:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return SetGatherAddressCommand{Address: addr}, nil
	case MethodDeploy:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		return DeployCommand{Address: addr}, nil
	case MethodBuy:
		if err := checkArity(method, args, 5); err != nil {
			return nil, err
		}
		assetID, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		txid, err := argHash(args, 1)
		if err != nil {
			return nil, err
		}
		count, err := argCount(args, 2)
		if err != nil {
			return nil, err
		}
		inviter, err := argHash(args, 3)
		if err != nil {
			return nil, err
		}
		receivable, err := argBigInt(args, 4)
		if err != nil {
			return nil, err
		}
		return BuyCommand{AssetID: assetID, TxID: txid, Count: count, InviterTokenID: inviter, Receivable: receivable}, nil
	case MethodBind:
		if err := checkArity(method, args, 2); err != nil {
			return nil, err
		}
		addr, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 1)
		if err != nil {
			return nil, err
		}
		return BindCommand{Address: addr, TokenID: tokenID}, nil
	case MethodUpgrade:
		if err := checkArity(method, args, 5); err != nil {
			return nil, err
		}
		assetID, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		txid, err := argHash(args, 1)
		if err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 2)
		if err != nil {
			return nil, err
		}
		receivable, err := argBigInt(args, 3)
		if err != nil {
			return nil, err
		}
		needPoint, err := argBigInt(args, 4)
		if err != nil {
			return nil, err
		}
		return UpgradeCommand{AssetID: assetID, TxID: txid, TokenID: tokenID, Receivable: receivable, NeedPoint: needPoint}, nil
	case MethodAddPoint:
		if err := checkArity(method, args, 2); err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 0)
		if err != nil {
			return nil, err
		}
		value, err := argBigInt(args, 1)
		if err != nil {
			return nil, err
		}
		return AddPointCommand{TokenID: tokenID, Value: value}, nil
	case MethodExchange:
		if err := checkArity(method, args, 3); err != nil {
			return nil, err
		}
		from, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		to, err := argAddress(args, 1)
		if err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 2)
		if err != nil {
			return nil, err
		}
		return ExchangeCommand{From: from, To: to, TokenID: tokenID}, nil
	case MethodReduceGrade:
		if err := checkArity(method, args, 1); err != nil {
			return nil, err
		}
		tokenID, err := argHash(args, 0)
		if err != nil {
			return nil, err
		}
		return ReduceGradeCommand{TokenID: tokenID}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// Invoke parses and executes one inbound call after applying the lifecycle
// state gate and witness checks. setState/setAdmin require the super-admin
// witness regardless of state; getState is always answered; every other query
// is rejected under AllStop; every mutating operation requires an Active
// state plus the admin witness. Any returned error means the host must
// discard the invocation's writes.
func (e *Engine) Invoke(inv Invocation, method string, args []interface{}) (interface{}, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotConfigured
	}
	cmd, err := ParseCommand(method, args)
	if err != nil {
		return nil, err
	}
	return e.Execute(inv, cmd)
}

// Execute runs a previously parsed command through the same gating as Invoke.
func (e *Engine) Execute(inv Invocation, cmd Command) (interface{}, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotConfigured
	}
	switch c := cmd.(type) {
	case SetStateCommand:
		if !inv.hasWitness(e.params.SuperAdmin) {
			return nil, ErrUnauthorized
		}
		if err := e.applySetState(c.Code); err != nil {
			return nil, err
		}
		return true, nil
	case SetAdminCommand:
		if !inv.hasWitness(e.params.SuperAdmin) {
			return nil, ErrUnauthorized
		}
		if err := e.applySetAdmin(c.Address); err != nil {
			return nil, err
		}
		return true, nil
	case GetStateCommand:
		return e.State()
	}

	state, err := e.State()
	if err != nil {
		return nil, err
	}
	if state == StateAllStop {
		return nil, ErrContractStopped
	}

	switch c := cmd.(type) {
	case GetBindNftCommand:
		tokenID, ok, err := e.BoundToken(c.Address)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []byte(nil), nil
		}
		return tokenID[:], nil
	case GetNftInfoCommand:
		cert, ok, err := e.Certificate(c.TokenID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return (&storedCertificate{}).certificate(), nil
		}
		return cert, nil
	case GetTxInfoCommand:
		receipt, _, err := e.Receipt(c.TxHash)
		if err != nil {
			return nil, err
		}
		return receipt, nil
	case GetGatherAddressCommand:
		addr, ok, err := e.GatherAddress()
		if err != nil {
			return nil, err
		}
		if !ok {
			return []byte(nil), nil
		}
		return addr[:], nil
	case GetUserNftsCommand:
		return e.Holdings(c.Address)
	}

	if state != StateActive {
		return nil, ErrContractInactive
	}
	admin, haveAdmin, err := e.adminAddress()
	if err != nil {
		return nil, err
	}
	if !haveAdmin || !inv.hasWitness(admin) {
		return nil, ErrUnauthorized
	}

	switch c := cmd.(type) {
	case SetGatherAddressCommand:
		err = e.SetGatherAddress(c.Address)
	case DeployCommand:
		err = e.Deploy(inv, c.Address)
	case BuyCommand:
		err = e.Buy(inv, c.AssetID, c.TxID, c.Count, c.InviterTokenID, c.Receivable)
	case BindCommand:
		err = e.Bind(c.Address, c.TokenID)
	case UpgradeCommand:
		err = e.Upgrade(c.AssetID, c.TxID, c.TokenID, c.Receivable, c.NeedPoint)
	case AddPointCommand:
		err = e.AddPoint(c.TokenID, c.Value)
	case ExchangeCommand:
		err = e.Exchange(inv, c.From, c.To, c.TokenID)
	case ReduceGradeCommand:
		err = e.ReduceGrade(c.TokenID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, cmd.method())
	}
	if err != nil {
		return nil, err
	}
	return true, nil
}
