package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Query layer.
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrNotInPool   = "E_NOT_IN_POOL"
	ErrUnsupported = "E_UNSUPPORTED"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrNotInPool:       {},
	ErrUnsupported:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
