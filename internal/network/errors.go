package network

import "errors"

// Rejection reasons. A provider attempt that fails with any of these is
// skipped and the next provider is tried; none of them reach the caller.
var (
	// ErrTransport covers request construction, network, timeout and non-2xx failures.
	ErrTransport = errors.New("network: provider transport failure")
	// ErrProviderFailure means the payload carried the provider's own failure marker.
	ErrProviderFailure = errors.New("network: provider reported failure")
	// ErrValidation means the payload did not match the provider's schema.
	ErrValidation = errors.New("network: provider response failed validation")
	// ErrQualityGate means the payload was valid but carried no geographic data.
	ErrQualityGate = errors.New("network: provider response carried no location data")
	// ErrNoTarget means the provider needs a target IP and none was supplied.
	ErrNoTarget = errors.New("network: no target ip to resolve")
)

// Provider list errors, reported when a list is loaded.
var (
	ErrNoProviders     = errors.New("network: provider list is empty")
	ErrInvalidProvider = errors.New("network: invalid provider")
)
