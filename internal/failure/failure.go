// failure classifies the terminal errors of the command line tools.
// Commands work with Kind internally and only turn it into a process exit
// code right before exiting.
package failure

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	Configuration
	LibraryInitFailure
	BusInitFailure
	PinInitFailure
	Usage
	UnsupportedOption
	MissingArgument
	InvalidAddressFormat
	AddressOutOfRange
	ReservedAddress
	NoDevice
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Configuration:
		return "configuration"
	case LibraryInitFailure:
		return "library init failure"
	case BusInitFailure:
		return "bus init failure"
	case PinInitFailure:
		return "pin init failure"
	case Usage:
		return "usage"
	case UnsupportedOption:
		return "unsupported option"
	case MissingArgument:
		return "missing argument"
	case InvalidAddressFormat:
		return "invalid address format"
	case AddressOutOfRange:
		return "address out of range"
	case ReservedAddress:
		return "reserved address"
	case NoDevice:
		return "no device"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an error tagged with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

// Cause lets errors.Cause unwrap to the underlying error.
func (e *Error) Cause() error {
	return e.Err
}

func New(kind Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's cause chain,
// or Unknown when there is none.
func KindOf(err error) Kind {
	for err != nil {
		if fe, ok := err.(*Error); ok {
			return fe.Kind
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return Unknown
		}
		err = c.Cause()
	}
	return Unknown
}

// Code maps err to the exit status of the tools. nil is success.
func Code(err error) int {
	if err == nil {
		return 0
	}

	switch KindOf(err) {
	case Configuration:
		return 1
	case LibraryInitFailure, BusInitFailure, PinInitFailure:
		return 2
	case Usage:
		return 3
	case UnsupportedOption:
		return 4
	case MissingArgument:
		return 5
	case InvalidAddressFormat, AddressOutOfRange:
		return 6
	case ReservedAddress:
		return 7
	case NoDevice:
		return 8
	case Interrupted:
		return 130
	default:
		return 1
	}
}
