package ipg

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Fault is a processor-level rejection returned as a SOAP fault
type Fault struct {
	Code    string            // ProcessorResponseCode, e.g. "05"
	Message string            // ProcessorResponseMessage, e.g. "Do not honor"
	Raw     map[string]string // Every field of the fault detail
}

func (f *Fault) Error() string {
	return f.Message
}

// ConnectivityError covers DNS, TLS, timeout and unreadable-response failures
type ConnectivityError struct {
	Op         string
	StatusCode int // HTTP status when the server answered with a non-SOAP body
	Timeout    bool
	Err        error
}

func (e *ConnectivityError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: http status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: http status %d", e.Op, e.StatusCode)
	}
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Temporary reports whether a later attempt could succeed
func (e *ConnectivityError) Temporary() bool {
	return e.Timeout || e.StatusCode >= 500
}

// ProvisioningError means the client certificate could not be written to disk
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision client certificate: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func newConnectivityError(op string, err error) *ConnectivityError {
	return &ConnectivityError{Op: op, Err: err, Timeout: isTimeout(err)}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
