package swotrace

import (
	"errors"
	"syscall"
	"testing"

	"github.com/blackmagic-traceview/swotrace/internal/transport"
)

func TestStructuredError(t *testing.T) {
	err := NewError("OpenUSB", ErrCodeNoAccess, "permission denied on endpoint")

	if err.Op != "OpenUSB" {
		t.Errorf("Expected Op=OpenUSB, got %s", err.Op)
	}
	if err.Code != ErrCodeNoAccess {
		t.Errorf("Expected Code=ErrCodeNoAccess, got %s", err.Code)
	}

	expected := "swotrace: permission denied on endpoint (op=OpenUSB)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestNewAcquisitionError(t *testing.T) {
	err := NewAcquisitionError("OpenUSB", ErrCodeNoPipe, LocUSBOpenInEndpoint, syscall.ENODEV)

	if err.LocationTag != LocUSBOpenInEndpoint {
		t.Errorf("Expected LocationTag=%d, got %d", LocUSBOpenInEndpoint, err.LocationTag)
	}
	if err.Errno != syscall.ENODEV {
		t.Errorf("Expected Errno=ENODEV, got %v", err.Errno)
	}
}

func TestWrapError(t *testing.T) {
	err := WrapError("OpenTCP", syscall.ENOENT)

	if err.Code != ErrCodeNoDevPath {
		t.Errorf("Expected Code=ErrCodeNoDevPath, got %s", err.Code)
	}
	if err.Errno != syscall.ENOENT {
		t.Errorf("Expected Errno=ENOENT, got %v", err.Errno)
	}
	if !errors.Is(err, err) {
		t.Error("Expected error to be comparable with errors.Is against itself")
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("ProcessText", ErrCodeInitFailed, "decoder not ready")

	if !IsCode(err, ErrCodeInitFailed) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, ErrCodeNoAccess) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCodeInitFailed) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestErrnoMapping(t *testing.T) {
	testCases := []struct {
		errno    syscall.Errno
		expected TraceErrorCode
	}{
		{syscall.ENOENT, ErrCodeNoDevPath},
		{syscall.EACCES, ErrCodeNoAccess},
		{syscall.EPERM, ErrCodeNoAccess},
		{syscall.EPIPE, ErrCodeNoPipe},
		{syscall.ENODEV, ErrCodeNoPipe},
		{syscall.ENOSYS, ErrCodeNoInterface},
		{syscall.EOPNOTSUPP, ErrCodeNoInterface},
	}

	for _, tc := range testCases {
		code := mapErrnoToCode(tc.errno)
		if code != tc.expected {
			t.Errorf("mapErrnoToCode(%v) = %s, want %s", tc.errno, code, tc.expected)
		}
	}
}

func TestFromAcquisitionError(t *testing.T) {
	inner := &transport.AcquisitionError{
		Op:          "OpenUSB",
		Code:        transport.CodeNoAccess,
		LocationTag: transport.LocUSBOpenInEndpoint,
		Errno:       syscall.EACCES,
	}

	err := fromAcquisitionError("OpenSession", inner)
	if err == nil {
		t.Fatal("expected a non-nil *Error")
	}
	if err.LocationTag != transport.LocUSBOpenInEndpoint {
		t.Errorf("Expected LocationTag=%d, got %d", transport.LocUSBOpenInEndpoint, err.LocationTag)
	}
	if err.Errno != syscall.EACCES {
		t.Errorf("Expected Errno=EACCES, got %v", err.Errno)
	}
}

func TestFromAcquisitionErrorPassthrough(t *testing.T) {
	err := fromAcquisitionError("OpenSession", syscall.ENOENT)
	if err.Code != ErrCodeNoDevPath {
		t.Errorf("Expected plain errno to still be mapped, got %s", err.Code)
	}
}
