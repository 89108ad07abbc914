package ytsw

type errGeneric uint8

// Errors returned by the switch driver packages. Use errors.Is to test for
// them since most are returned wrapped with context.
const (
	_                  errGeneric = iota // non-initialized err
	ErrTimeout                           // timeout
	ErrInvalidArgument                   // invalid argument
	ErrAddrOutOfRange                    // address out of range
	ErrClosed                            // use of closed switch
	ErrUnsupported                       // unsupported
)

func (err errGeneric) Error() string {
	return err.String()
}
