package tree

import (
	"errors"
	"fmt"
)

var (
	ErrConstruction    = errors.New("[xrbtree] comparator and combiner are required")
	ErrEmptyTree       = errors.New("[xrbtree] empty tree")
	ErrElementNotFound = errors.New("[xrbtree] element not found")
	ErrReplaceDisabled = errors.New("[xrbtree] replace disabled")

	ErrInvariantViolation = errors.New("[xrbtree] invariant violation")
	ErrRedViolation       = fmt.Errorf("%w: red", ErrInvariantViolation)
	ErrBlackViolation     = fmt.Errorf("%w: black height", ErrInvariantViolation)
	ErrAugViolation       = fmt.Errorf("%w: augmentation", ErrInvariantViolation)
	ErrOrderViolation     = fmt.Errorf("%w: key order", ErrInvariantViolation)
	ErrLinkViolation      = fmt.Errorf("%w: parent link", ErrInvariantViolation)
	ErrCountViolation     = fmt.Errorf("%w: element count", ErrInvariantViolation)
)
