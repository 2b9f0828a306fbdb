package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// USBTransport reads trace frames from a probe's bulk IN endpoint,
// grounded on the same gousb acquisition sequence (context -> device ->
// config -> interface -> endpoint) the pack uses for ASIC USB access,
// adapted to a read-only trace source.
type USBTransport struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epIn   *gousb.InEndpoint
}

// OpenUSB claims the bulk IN endpoint on the given interface/config of
// the probe identified by vendor/product ID, releasing every
// intermediate handle on any failure path (§5's "scoped acquisition
// must guarantee release on every error path").
func OpenUSB(vendorID, productID gousb.ID, configNum, intfNum, endpoint int) (*USBTransport, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		ctx.Close()
		return nil, newAcqErr("OpenUSB", CodeNoDevPath, LocUSBOpenDevice, err)
	}
	if device == nil {
		ctx.Close()
		return nil, newAcqErr("OpenUSB", CodeNoDevPath, LocUSBOpenDevice,
			fmt.Errorf("no device matching vid=%#04x pid=%#04x", vendorID, productID))
	}

	config, err := device.Config(configNum)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, newAcqErr("OpenUSB", CodeNoInterface, LocUSBSetConfig, err)
	}

	intf, _, err := config.Interface(intfNum, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, newAcqErr("OpenUSB", CodeNoInterface, LocUSBClaimInterface, err)
	}

	epIn, err := intf.InEndpoint(endpoint)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, newAcqErr("OpenUSB", CodeNoPipe, LocUSBOpenInEndpoint, err)
	}

	return &USBTransport{ctx: ctx, device: device, config: config, intf: intf, epIn: epIn}, nil
}

// ReadFrame implements interfaces.Transport. A read that returns no
// bytes yields a zero-length slice with a nil error so the reader
// goroutine can apply the §4.3 50ms sleep-and-retry policy; a short
// read returns the bytes it got; any error means the handle is no
// longer usable and the reader should exit.
func (u *USBTransport) ReadFrame(ctx context.Context) ([]byte, float64, error) {
	buf := make([]byte, constants.FrameSize)
	n, err := u.epIn.ReadContext(ctx, buf)
	ts := nowMono()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ts, ctx.Err()
		}
		return nil, ts, err
	}
	if n == 0 {
		return []byte{}, ts, nil
	}
	return buf[:n], ts, nil
}

// Close releases the claimed interface, config, device, and context in
// reverse acquisition order. Safe to call more than once.
func (u *USBTransport) Close() error {
	if u.intf != nil {
		u.intf.Close()
		u.intf = nil
	}
	if u.config != nil {
		u.config.Close()
		u.config = nil
	}
	if u.device != nil {
		u.device.Close()
		u.device = nil
	}
	if u.ctx != nil {
		u.ctx.Close()
		u.ctx = nil
	}
	return nil
}

func nowMono() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
