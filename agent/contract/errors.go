package contract

import "errors"

var (
	ErrConfig          = errors.New("configuration missing")
	ErrUpstream        = errors.New("upstream service failed")
	ErrEmptyExtraction = errors.New("no content extracted")
	ErrProtocol        = errors.New("model protocol anomaly")
	ErrValidation      = errors.New("validation failed")
)
