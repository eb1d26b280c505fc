// Package nunchuk drives the Nunchuk extension: a two axis joystick, a three
// axis accelerometer and the C and Z buttons.
package nunchuk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/wiiext"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/report"
)

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

// Nunchuk only reads 6 byte reports. Only the joystick is calibrated.
type Nunchuk struct {
	mx       sync.Mutex
	iface    *protocol.Interface
	log      *slog.Logger
	baseline report.NunchukBaseline
	state    State
}

func New(ctx context.Context, bus wiiext.I2CBus, opts ...protocol.Option) (*Nunchuk, error) {
	iface := protocol.New(bus, opts...)
	n := &Nunchuk{
		iface: iface,
		log:   iface.Logger(),
	}
	if err := n.Init(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Nunchuk) Init(ctx context.Context) error {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return fmt.Errorf("nunchuk: %w", wiiext.ErrDestroyed)
	}
	n.state = StateInitializing
	if err := n.iface.Handshake(ctx); err != nil {
		n.state = StateUninitialized
		return fmt.Errorf("nunchuk: handshake failed: %w", err)
	}
	return n.calibrate(ctx)
}

func (n *Nunchuk) Recalibrate(ctx context.Context) error {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return fmt.Errorf("nunchuk: %w", wiiext.ErrDestroyed)
	}
	return n.calibrate(ctx)
}

func (n *Nunchuk) Identify(ctx context.Context) (report.ControllerType, error) {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return report.Unrecognized, fmt.Errorf("nunchuk: %w", wiiext.ErrDestroyed)
	}
	id, err := n.iface.ReadID(ctx)
	if err != nil {
		n.state = StateUninitialized
		return report.Unrecognized, fmt.Errorf("nunchuk: could not read identity: %w", err)
	}
	return report.Identify(id)
}

func (n *Nunchuk) Read(ctx context.Context) (report.NunchukCalibrated, error) {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return report.NunchukCalibrated{}, fmt.Errorf("nunchuk: %w", wiiext.ErrDestroyed)
	}
	r, err := n.sample(ctx)
	if err != nil {
		return report.NunchukCalibrated{}, err
	}
	return n.baseline.Apply(r), nil
}

func (n *Nunchuk) ReadUncalibrated(ctx context.Context) (report.NunchukReading, error) {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return report.NunchukReading{}, fmt.Errorf("nunchuk: %w", wiiext.ErrDestroyed)
	}
	return n.sample(ctx)
}

func (n *Nunchuk) Baseline() report.NunchukBaseline {
	n.mx.Lock()
	defer n.mx.Unlock()
	return n.baseline
}

func (n *Nunchuk) State() State {
	n.mx.Lock()
	defer n.mx.Unlock()
	return n.state
}

func (n *Nunchuk) Destroy() (wiiext.I2CBus, protocol.Delayer) {
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.iface == nil {
		return nil, nil
	}
	bus, delay := n.iface.Destroy()
	n.iface = nil
	n.state = StateUninitialized
	return bus, delay
}

func (n *Nunchuk) calibrate(ctx context.Context) error {
	n.state = StateCalibrating
	r, err := n.sample(ctx)
	if err != nil {
		return err
	}
	n.baseline = report.CaptureNunchuk(r)
	n.state = StateReady
	n.log.Debug("baseline captured", "baseline", n.baseline)
	return nil
}

func (n *Nunchuk) sample(ctx context.Context) (report.NunchukReading, error) {
	data, err := n.iface.Sample(ctx, protocol.ReportSize)
	if err != nil {
		n.state = StateUninitialized
		return report.NunchukReading{}, fmt.Errorf("nunchuk: read failed: %w", err)
	}
	r, err := report.DecodeNunchuk(data)
	if err != nil {
		n.state = StateUninitialized
		return report.NunchukReading{}, fmt.Errorf("nunchuk: %w", err)
	}
	return r, nil
}
