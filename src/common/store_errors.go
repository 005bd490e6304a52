package common

import "fmt"

// StoreErrType enumerates the failures a ledger store can report.
type StoreErrType uint32

const (
	// KeyNotFound is returned when no value lives under the requested key.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when inserting a value that is already
	// present.
	KeyAlreadyExists
	// Empty is returned when the store holds nothing for the request.
	Empty
	// Closed is returned when using a store that has been closed.
	Closed
)

// StoreErr ...
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error ...
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case Empty:
		m = "Empty"
	case Closed:
		m = "Closed"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that it's code matches
// the provided StoreErr code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
