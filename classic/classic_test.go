package classic

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/wiiext"
	wiimock "github.com/mklimuk/wiiext/mock"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/report"
)

// MockI2CBus is a mock implementation of wiiext.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	classicID      = []byte{0, 0, 164, 32, 3, 1}
	classicIdle    = []byte{97, 224, 145, 99, 255, 255}
	classicBtnA    = []byte{97, 224, 145, 99, 255, 239}
	classicLJoyL   = []byte{73, 225, 145, 99, 255, 255}
	classicHDIdle  = []byte{132, 127, 130, 136, 31, 26, 255, 255}
	classicHDLJoyL = []byte{36, 127, 135, 137, 31, 26, 255, 255}
)

// no settle period keeps the mock sequences fast
var fast = protocol.WithSettleDelay(0)

func size(n int) interface{} {
	return mock.MatchedBy(func(b []byte) bool { return len(b) == n })
}

func expectHandshake(bus *MockI2CBus) {
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0x00}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xF0, 0x55}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFB, 0x00}).Return(nil).Once()
}

func expectSample(bus *MockI2CBus, data []byte) {
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(protocol.Address), size(len(data))).Return(data, nil).Once()
}

func newClassic(t *testing.T, bus *MockI2CBus, idle []byte) *Classic {
	t.Helper()
	expectHandshake(bus)
	expectSample(bus, idle)
	c, err := New(context.Background(), bus, fast)
	require.NoError(t, err)
	return c
}

func TestClassic_New(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)

	bus.AssertExpectations(t)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, ModeStandard, c.Mode())
	assert.Equal(t, report.ClassicBaseline{
		LeftX:        133,
		LeftY:        129,
		RightX:       123,
		RightY:       139,
		TriggerLeft:  24,
		TriggerRight: 24,
	}, c.Baseline())
}

func TestClassic_NewHandshakeFailure(t *testing.T) {
	bus := new(MockI2CBus)
	nack := fmt.Errorf("nack")
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0x00}).Return(nack).Once()

	c, err := New(context.Background(), bus, fast)
	assert.Nil(t, c)
	var terr *wiiext.TransportError
	require.True(t, errors.As(err, &terr))
	assert.ErrorIs(t, err, nack)
	bus.AssertExpectations(t)
}

func TestClassic_ReadIdle(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)

	expectSample(bus, classicIdle)
	r, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ClassicCalibrated{}, r)
	bus.AssertExpectations(t)
}

func TestClassic_ReadButton(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)

	expectSample(bus, classicBtnA)
	r, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ClassicButtons{A: true}, r.Buttons)
}

func TestClassic_ReadLeftStick(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)

	expectSample(bus, classicLJoyL)
	raw, err := c.ReadUncalibrated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(36), raw.LeftX)

	expectSample(bus, classicLJoyL)
	r, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int8(-97), r.LeftX)
	assert.InDelta(t, 0, r.LeftY, 8)
}

func TestClassic_EnableHighRes(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(nil).Once()
	expectSample(bus, classicHDIdle)
	require.NoError(t, c.EnableHighRes(ctx))
	assert.Equal(t, ModeHighRes, c.Mode())
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, uint8(132), c.Baseline().LeftX)
	assert.Equal(t, uint8(127), c.Baseline().RightX)

	expectSample(bus, classicHDLJoyL)
	r, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int8(-96), r.LeftX)
	assert.Equal(t, int8(5), r.LeftY)
	bus.AssertExpectations(t)
}

func TestClassic_DisableHighRes(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(nil).Once()
	expectSample(bus, classicHDIdle)
	require.NoError(t, c.EnableHighRes(ctx))

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x01}).Return(nil).Once()
	expectSample(bus, classicIdle)
	require.NoError(t, c.DisableHighRes(ctx))
	assert.Equal(t, ModeStandard, c.Mode())
	bus.AssertExpectations(t)
}

func TestClassic_InitKeepsHighRes(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(nil).Once()
	expectSample(bus, classicHDIdle)
	require.NoError(t, c.EnableHighRes(ctx))

	expectHandshake(bus)
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(nil).Once()
	expectSample(bus, classicHDIdle)
	require.NoError(t, c.Init(ctx))
	assert.Equal(t, ModeHighRes, c.Mode())
	assert.Equal(t, StateReady, c.State())
	bus.AssertExpectations(t)
}

func TestClassic_InitRestoreHighResFailure(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(nil).Once()
	expectSample(bus, classicHDIdle)
	require.NoError(t, c.EnableHighRes(ctx))

	expectHandshake(bus)
	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFE, 0x03}).Return(fmt.Errorf("nack")).Once()
	err := c.Init(ctx)
	var terr *wiiext.TransportError
	assert.True(t, errors.As(err, &terr))
	assert.Equal(t, StateUninitialized, c.State())
	bus.AssertExpectations(t)
}

func TestClassic_EmulatedReinitHighRes(t *testing.T) {
	ctrl := wiimock.NewController(wiimock.Classic, wiimock.WithMinGap(protocol.InterMessageDelay))
	ctx := context.Background()
	c, err := New(ctx, ctrl)
	require.NoError(t, err)
	require.NoError(t, c.EnableHighRes(ctx))

	// the controller stays in high resolution mode across a new handshake
	require.NoError(t, c.Init(ctx))
	require.True(t, ctrl.HighRes())
	r, err := c.Read(ctx)
	require.NoError(t, err)
	assert.False(t, r.Buttons.Any())
	assert.Equal(t, report.ClassicCalibrated{}, r)

	// after a power cycle the mode is selected again
	ctrl.Reset()
	require.NoError(t, c.Init(ctx))
	assert.True(t, ctrl.HighRes())
	assert.Equal(t, ModeHighRes, c.Mode())
	r, err = c.Read(ctx)
	require.NoError(t, err)
	assert.False(t, r.Buttons.Any())
	assert.Equal(t, report.ClassicCalibrated{}, r)
}

func TestClassic_Identify(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	baseline := c.Baseline()

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0xFA}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(protocol.Address), size(6)).Return(classicID, nil).Once()
	typ, err := c.Identify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Classic, typ)
	assert.Equal(t, baseline, c.Baseline())
	bus.AssertExpectations(t)
}

func TestClassic_ReadFailure(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)
	timeout := fmt.Errorf("bus timeout")

	bus.On("WriteToAddr", mock.Anything, byte(protocol.Address), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(protocol.Address), mock.Anything).Return(nil, timeout).Once()
	_, err := c.Read(context.Background())
	var terr *wiiext.TransportError
	assert.True(t, errors.As(err, &terr))
	assert.ErrorIs(t, err, timeout)
	assert.Equal(t, StateUninitialized, c.State())
}

func TestClassic_Destroy(t *testing.T) {
	bus := new(MockI2CBus)
	c := newClassic(t, bus, classicIdle)

	gotBus, delay := c.Destroy()
	assert.Same(t, bus, gotBus)
	assert.NotNil(t, delay)

	_, err := c.Read(context.Background())
	assert.ErrorIs(t, err, wiiext.ErrDestroyed)
	assert.ErrorIs(t, c.Init(context.Background()), wiiext.ErrDestroyed)
	gotBus, delay = c.Destroy()
	assert.Nil(t, gotBus)
	assert.Nil(t, delay)
}

func TestClassic_Emulated(t *testing.T) {
	ctrl := wiimock.NewController(wiimock.Classic, wiimock.WithMinGap(protocol.InterMessageDelay))
	ctx := context.Background()

	c, err := New(ctx, ctrl)
	require.NoError(t, err)
	assert.False(t, ctrl.Encrypted())

	typ, err := c.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Classic, typ)

	ctrl.Push(classicLJoyL)
	r, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int8(-97), r.LeftX)

	ctrl.Push(classicHDIdle, classicHDLJoyL)
	require.NoError(t, c.EnableHighRes(ctx))
	assert.True(t, ctrl.HighRes())
	r, err = c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int8(-96), r.LeftX)
}

func TestClassic_EmulatedCooperative(t *testing.T) {
	ctrl := wiimock.NewController(wiimock.ClassicPro, wiimock.WithMinGap(protocol.InterMessageDelay))
	ctx := context.Background()

	c, err := New(ctx, ctrl, protocol.WithDelayer(protocol.NewScheduledDelay()))
	require.NoError(t, err)
	typ, err := c.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.ClassicPro, typ)

	for i := 0; i < 5; i++ {
		r, err := c.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, report.ClassicCalibrated{}, r)
	}
}

func TestClassic_CancelDuringSettle(t *testing.T) {
	ctrl := wiimock.NewController(wiimock.Classic)
	delay := protocol.NewScheduledDelay()
	c, err := New(context.Background(), ctrl, protocol.WithDelayer(delay), protocol.WithSettleDelay(time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, delay.Settle(context.Background(), time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateUninitialized, c.State())
}

func TestClassic_ConcurrentReads(t *testing.T) {
	ctrl := wiimock.NewController(wiimock.Classic, wiimock.WithMinGap(protocol.InterMessageDelay))
	ctx := context.Background()
	c, err := New(ctx, ctrl)
	require.NoError(t, err)

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := c.Read(ctx)
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestModeAndStateString(t *testing.T) {
	assert.Equal(t, "standard", ModeStandard.String())
	assert.Equal(t, "high-resolution", ModeHighRes.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "calibrating", StateCalibrating.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "uninitialized", StateUninitialized.String())
}
