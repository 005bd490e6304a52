package common

import (
	"errors"
	"fmt"
)

// NodeErrType classifies the errors returned while processing node duties.
type NodeErrType uint32

const (
	// InvalidOperation is returned when a lifecycle event arrives in a stage
	// that can neither handle it nor absorb it as a duplicate.
	InvalidOperation NodeErrType = iota
	// InvalidShare is returned when a signature share does not verify against
	// the signer's public key share.
	InvalidShare
	// NotElder is returned when an elder duty cannot run nor be queued.
	NotElder
	// NotAdult is returned when an adult duty arrives before adult duties were
	// assumed.
	NotAdult
	// UnknownDuty is returned for duty values no handler recognises.
	UnknownDuty
)

func (t NodeErrType) String() string {
	switch t {
	case InvalidOperation:
		return "Invalid Operation"
	case InvalidShare:
		return "Invalid Share"
	case NotElder:
		return "Not Elder"
	case NotAdult:
		return "Not Adult"
	case UnknownDuty:
		return "Unknown Duty"
	default:
		return "Unknown"
	}
}

// NodeErr is the error type surfaced by the node's duty handlers.
type NodeErr struct {
	op      string
	errType NodeErrType
	msg     string
	err     error
}

// NewNodeErr ...
func NewNodeErr(op string, errType NodeErrType, msg string) NodeErr {
	return NodeErr{
		op:      op,
		errType: errType,
		msg:     msg,
	}
}

// WrapNodeErr attaches a cause to a NodeErr.
func WrapNodeErr(op string, errType NodeErrType, err error) NodeErr {
	return NodeErr{
		op:      op,
		errType: errType,
		msg:     err.Error(),
		err:     err,
	}
}

// Error ...
func (e NodeErr) Error() string {
	return fmt.Sprintf("%s, %s, %s", e.op, e.errType, e.msg)
}

// Unwrap returns the wrapped cause, if any.
func (e NodeErr) Unwrap() error {
	return e.err
}

// IsNode checks that err, or any error it wraps, is a NodeErr of type t.
func IsNode(err error, t NodeErrType) bool {
	var nodeErr NodeErr
	return errors.As(err, &nodeErr) && nodeErr.errType == t
}
