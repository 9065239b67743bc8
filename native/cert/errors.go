package cert

import "errors"

var (
	ErrNotConfigured       = errors.New("cert: engine not configured")
	ErrInvalidArgument     = errors.New("cert: invalid argument")
	ErrUnknownMethod       = errors.New("cert: unknown method")
	ErrInvalidArity        = errors.New("cert: wrong argument count")
	ErrUnauthorized        = errors.New("cert: unauthorized")
	ErrContractStopped     = errors.New("cert: contract stopped")
	ErrContractInactive    = errors.New("cert: contract inactive")
	ErrAlreadyDeployed     = errors.New("cert: genesis already deployed")
	ErrCertificateNotFound = errors.New("cert: certificate not found")
	ErrNotOwner            = errors.New("cert: not certificate owner")
	ErrInviterNotFound     = errors.New("cert: inviter certificate not found")
	ErrGatherAddressUnset  = errors.New("cert: gather address not configured")
	ErrPaymentConsumed     = errors.New("cert: payment already consumed")
	ErrPaymentNotFound     = errors.New("cert: payment record not found")
	ErrPaymentRecipient    = errors.New("cert: payment recipient mismatch")
	ErrPaymentAmount       = errors.New("cert: payment amount insufficient")
	ErrInsufficientPoints  = errors.New("cert: insufficient available points")
	ErrPointUnderflow      = errors.New("cert: available points would go negative")
	ErrRankFloor           = errors.New("cert: rank already at minimum")
)
