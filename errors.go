package swotrace

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/blackmagic-traceview/swotrace/internal/transport"
)

// Error is a structured session error carrying enough context for a
// caller to log or branch on (§7's error kinds, §6's trace_errno).
type Error struct {
	Op          string        // operation that failed (e.g. "OpenUSB", "OpenTCP")
	Code        TraceErrorCode
	LocationTag int           // 1..11, identifies which acquisition step failed (§6)
	Errno       syscall.Errno // 0 if not applicable
	Msg         string
	Inner       error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.LocationTag != 0 {
		parts = append(parts, fmt.Sprintf("loc=%d", e.LocationTag))
	}
	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("swotrace: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("swotrace: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// TraceErrorCode is the stable return-code set §6 requires transport
// acquisition to surface to the UI.
type TraceErrorCode string

const (
	ErrCodeOK           TraceErrorCode = "ok"
	ErrCodeNoInterface  TraceErrorCode = "no interface"
	ErrCodeNoDevPath    TraceErrorCode = "no device path"
	ErrCodeNoAccess     TraceErrorCode = "no access"
	ErrCodeNoPipe       TraceErrorCode = "no pipe"
	ErrCodeNoThread     TraceErrorCode = "no thread"
	ErrCodeInitFailed   TraceErrorCode = "init failed"
)

// Location tags identifying which acquisition step failed, surfaced via
// trace_errno (§6). Numbered 1..11 per the spec's contract, with no
// gaps; LocUSBContextInit, LocUSBOpenOutEndpoint, LocTCPSetDeadline,
// LocRingAlloc and LocReaderSpawn are not returned by any acquisition
// path in this module.
const (
	LocUSBContextInit = iota + 1
	LocUSBOpenDevice
	LocUSBSetConfig
	LocUSBClaimInterface
	LocUSBOpenOutEndpoint
	LocUSBOpenInEndpoint
	LocTCPResolveAddr
	LocTCPDial
	LocTCPSetDeadline
	LocRingAlloc
	LocReaderSpawn
)

// NewError constructs a structured error with an operation and code.
func NewError(op string, code TraceErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewAcquisitionError constructs the §7.1 "transport acquisition
// failure" kind: synchronous, fatal for the session, carrying the
// location tag trace_errno reports.
func NewAcquisitionError(op string, code TraceErrorCode, loc int, inner error) *Error {
	e := &Error{Op: op, Code: code, LocationTag: loc, Inner: inner}
	if errno, ok := inner.(syscall.Errno); ok {
		e.Errno = errno
		e.Msg = errno.Error()
	} else if inner != nil {
		e.Msg = inner.Error()
	}
	return e
}

// WrapError wraps an arbitrary error with session context, mapping a
// bare syscall.Errno to its TraceErrorCode via mapErrnoToCode.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: se.Code, LocationTag: se.LocationTag, Errno: se.Errno, Msg: se.Msg, Inner: se.Inner}
	}
	if errno, ok := inner.(syscall.Errno); ok {
		return &Error{Op: op, Code: mapErrnoToCode(errno), Errno: errno, Msg: errno.Error(), Inner: inner}
	}
	return &Error{Op: op, Code: ErrCodeInitFailed, Msg: inner.Error(), Inner: inner}
}

func mapErrnoToCode(errno syscall.Errno) TraceErrorCode {
	switch errno {
	case syscall.ENOENT:
		return ErrCodeNoDevPath
	case syscall.EACCES, syscall.EPERM:
		return ErrCodeNoAccess
	case syscall.EPIPE, syscall.ENODEV:
		return ErrCodeNoPipe
	case syscall.ENOSYS, syscall.EOPNOTSUPP:
		return ErrCodeNoInterface
	default:
		return ErrCodeInitFailed
	}
}

// fromAcquisitionError translates an internal/transport.AcquisitionError
// (which cannot itself depend on this package) into this package's
// structured *Error, preserving the location tag from §6.
func fromAcquisitionError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var ae *transport.AcquisitionError
	if errors.As(err, &ae) {
		return &Error{
			Op:          op,
			Code:        TraceErrorCode(ae.Code),
			LocationTag: ae.LocationTag,
			Errno:       ae.Errno,
			Msg:         ae.Error(),
			Inner:       ae.Inner,
		}
	}
	return WrapError(op, err)
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code TraceErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
