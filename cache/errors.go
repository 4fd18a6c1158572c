package cache

import "errors"

var (
	// ErrStoreClosed is returned by stores after Close.
	ErrStoreClosed = errors.New("cache: store is closed")

	// ErrInvalidResource is returned for resource names outside the key scheme.
	ErrInvalidResource = errors.New("cache: invalid resource name")

	// ErrInvalidKey is returned when a key does not belong to the resource it is registered under.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrInvalidResultType is returned when a cached payload cannot be decoded into the requested type.
	ErrInvalidResultType = errors.New("cache: invalid result type")

	// ErrNilLoader is returned when GetOrLoad is called without a loader.
	ErrNilLoader = errors.New("cache: nil loader")
)
