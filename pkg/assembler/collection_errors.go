package assembler

import (
	"errors"
	"fmt"

	xamlerrors "github.com/jacoelho/xaml/errors"
)

var (
	errCapability = errors.New("collection does not support the operation")
	errMissingKey = errors.New("keyed collection value has no x:Key")
)

func capabilityError(collection any, op string) error {
	return fmt.Errorf("%w: %T has no %s", errCapability, collection, op)
}

func errorCode(err error) xamlerrors.ErrorCode {
	switch {
	case errors.Is(err, errMissingKey):
		return xamlerrors.ErrMissingKey
	case errors.Is(err, errCapability):
		return xamlerrors.ErrCollectionCapability
	default:
		return xamlerrors.ErrSetValue
	}
}
