package errors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrDependencyUnavailable = errors.New("owner service unavailable")
	ErrOwnerNotFound         = errors.New("owner not found")
)
