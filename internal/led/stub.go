//go:build !linux

package led

import "errors"

// RealWriter is not available on non-Linux platforms.
type RealWriter struct{}

// NewRealWriter returns an error on non-Linux platforms.
func NewRealWriter(pin int) (*RealWriter, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealWriter) Set(bool) error {
	return errors.New("led: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealWriter) Close() error {
	return nil
}
