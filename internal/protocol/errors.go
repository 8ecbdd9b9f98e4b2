package protocol

import "errors"

var (
	ErrNotObject         = errors.New("protocol: message is not a JSON object")
	ErrWrongOriginator   = errors.New("protocol: missing or mismatched originator")
	ErrMethodNotString   = errors.New("protocol: method is not a string")
	ErrMissingMethod     = errors.New("protocol: missing method")
	ErrNilDetail         = errors.New("protocol: nil event detail")
	ErrReservedDetailKey = errors.New("protocol: detail uses reserved originator key")
)
