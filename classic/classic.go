// Package classic drives Classic Controllers, Classic Controller Pros and the
// many byte-compatible clone pads.
//
// Typical usage:
//
//	c, err := classic.New(ctx, bus)
//	if err != nil {
//		return err
//	}
//	r, err := c.Read(ctx)
//
// Axes returned by Read are centred on the position captured during Init.
package classic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/wiiext"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/report"
)

type Mode int

const (
	ModeStandard Mode = iota
	ModeHighRes
)

func (m Mode) String() string {
	if m == ModeHighRes {
		return "high-resolution"
	}
	return "standard"
}

func (m Mode) reportSize() int {
	if m == ModeHighRes {
		return protocol.HighResReportSize
	}
	return protocol.ReportSize
}

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateCalibrating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateCalibrating:
		return "calibrating"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Classic serialises all bus access, so a single instance may be shared
// between goroutines. Any failure drops the driver to StateUninitialized;
// call Init before trusting further readings.
type Classic struct {
	mx       sync.Mutex
	iface    *protocol.Interface
	log      *slog.Logger
	baseline report.ClassicBaseline
	mode     Mode
	state    State
}

// New takes ownership of bus and initialises the controller.
func New(ctx context.Context, bus wiiext.I2CBus, opts ...protocol.Option) (*Classic, error) {
	iface := protocol.New(bus, opts...)
	c := &Classic{
		iface: iface,
		log:   iface.Logger(),
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Init runs the encryption-disable handshake and captures a new baseline.
// The resolution mode survives: a controller in high resolution mode keeps
// sending 8 byte reports, and one that was power cycled is switched back,
// so the high resolution select is written again before calibrating.
func (c *Classic) Init(ctx context.Context) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	c.state = StateInitializing
	if err := c.iface.Handshake(ctx); err != nil {
		c.state = StateUninitialized
		return fmt.Errorf("classic: handshake failed: %w", err)
	}
	if c.mode == ModeHighRes {
		if err := c.iface.SetResolution(ctx, true); err != nil {
			c.state = StateUninitialized
			return fmt.Errorf("classic: could not restore %s mode: %w", c.mode, err)
		}
	}
	return c.calibrate(ctx)
}

// Recalibrate captures the current position as the new baseline. The
// controller should be idle when this is called.
func (c *Classic) Recalibrate(ctx context.Context) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	return c.calibrate(ctx)
}

// EnableHighRes switches to 8 byte reports with full byte axes. The resting
// values differ between modes so the baseline is captured again.
func (c *Classic) EnableHighRes(ctx context.Context) error {
	return c.setMode(ctx, ModeHighRes)
}

// DisableHighRes asks the controller to go back to 6 byte reports.
//
// Controllers tested so far ignore the request and keep sending 8 byte
// reports, so subsequent reads decode the first six bytes of the high
// resolution layout. Only a power cycle restores standard resolution.
func (c *Classic) DisableHighRes(ctx context.Context) error {
	return c.setMode(ctx, ModeStandard)
}

func (c *Classic) setMode(ctx context.Context, mode Mode) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	if err := c.iface.SetResolution(ctx, mode == ModeHighRes); err != nil {
		c.state = StateUninitialized
		return fmt.Errorf("classic: could not select %s mode: %w", mode, err)
	}
	c.mode = mode
	c.log.Debug("resolution changed", "mode", mode.String())
	return c.calibrate(ctx)
}

// Identify reads the identity block. It leaves the calibration untouched.
func (c *Classic) Identify(ctx context.Context) (report.ControllerType, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return report.Unrecognized, fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	id, err := c.iface.ReadID(ctx)
	if err != nil {
		c.state = StateUninitialized
		return report.Unrecognized, fmt.Errorf("classic: could not read identity: %w", err)
	}
	return report.Identify(id)
}

// Read samples the controller and returns axes relative to the baseline.
func (c *Classic) Read(ctx context.Context) (report.ClassicCalibrated, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return report.ClassicCalibrated{}, fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	r, err := c.sample(ctx)
	if err != nil {
		return report.ClassicCalibrated{}, err
	}
	return c.baseline.Apply(r), nil
}

// ReadUncalibrated samples the controller and returns the decoded report.
func (c *Classic) ReadUncalibrated(ctx context.Context) (report.ClassicReading, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return report.ClassicReading{}, fmt.Errorf("classic: %w", wiiext.ErrDestroyed)
	}
	return c.sample(ctx)
}

func (c *Classic) Baseline() report.ClassicBaseline {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.baseline
}

func (c *Classic) Mode() Mode {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.mode
}

func (c *Classic) State() State {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.state
}

// Destroy returns the bus and delay provider. The driver is unusable afterwards.
func (c *Classic) Destroy() (wiiext.I2CBus, protocol.Delayer) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.iface == nil {
		return nil, nil
	}
	bus, delay := c.iface.Destroy()
	c.iface = nil
	c.state = StateUninitialized
	return bus, delay
}

func (c *Classic) calibrate(ctx context.Context) error {
	c.state = StateCalibrating
	r, err := c.sample(ctx)
	if err != nil {
		return err
	}
	c.baseline = report.CaptureClassic(r)
	c.state = StateReady
	c.log.Debug("baseline captured", "mode", c.mode.String(), "baseline", c.baseline)
	return nil
}

func (c *Classic) sample(ctx context.Context) (report.ClassicReading, error) {
	data, err := c.iface.Sample(ctx, c.mode.reportSize())
	if err != nil {
		c.state = StateUninitialized
		return report.ClassicReading{}, fmt.Errorf("classic: read failed: %w", err)
	}
	r, err := report.DecodeClassic(data)
	if err != nil {
		c.state = StateUninitialized
		return report.ClassicReading{}, fmt.Errorf("classic: %w", err)
	}
	return r, nil
}
