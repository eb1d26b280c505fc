package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/wiiext"
)

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

// recordingDelay keeps the settle periods requested by the interface.
type recordingDelay struct {
	mu     sync.Mutex
	settle []time.Duration
	waits  int
}

func (r *recordingDelay) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits++
	return nil
}

func (r *recordingDelay) Settle(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settle = append(r.settle, d)
	return nil
}

func TestInterface_Handshake(t *testing.T) {
	bus := new(MockI2CBus)
	delay := new(recordingDelay)
	iface := New(bus, WithDelayer(delay))
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0x00}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0xF0, 0x55}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0xFB, 0x00}).Return(nil).Once()

	require.NoError(t, iface.Handshake(ctx))
	bus.AssertExpectations(t)
	long := 2 * InterMessageDelay
	assert.Equal(t, []time.Duration{long, long, long, long}, delay.settle)
	assert.Equal(t, 3, delay.waits)
}

func TestInterface_HandshakeFailure(t *testing.T) {
	bus := new(MockI2CBus)
	iface := New(bus, WithDelayer(new(recordingDelay)))
	nack := fmt.Errorf("nack")

	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0x00}).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0xF0, 0x55}).Return(nack).Once()

	err := iface.Handshake(context.Background())
	var terr *wiiext.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "disable encryption", terr.Op)
	assert.ErrorIs(t, err, nack)
	// no further writes after the failure
	bus.AssertNumberOfCalls(t, "WriteToAddr", 2)
}

func TestInterface_Sample(t *testing.T) {
	tests := []struct {
		name string
		size int
		data []byte
	}{
		{"standard", ReportSize, []byte{97, 224, 145, 99, 255, 255}},
		{"high resolution", HighResReportSize, []byte{132, 127, 130, 136, 31, 26, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			delay := new(recordingDelay)
			iface := New(bus, WithDelayer(delay))

			bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0x00}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, byte(Address), mock.MatchedBy(func(b []byte) bool {
				return len(b) == tt.size
			})).Return(tt.data, nil).Once()

			data, err := iface.Sample(context.Background(), tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.data, data)
			assert.Equal(t, []time.Duration{InterMessageDelay, InterMessageDelay}, delay.settle)
			bus.AssertExpectations(t)
		})
	}
}

func TestInterface_InvalidSize(t *testing.T) {
	bus := new(MockI2CBus)
	iface := New(bus, WithDelayer(new(recordingDelay)))
	ctx := context.Background()

	for _, size := range []int{0, 5, 7, 9, 16} {
		_, err := iface.ReadBlock(ctx, size)
		assert.ErrorIs(t, err, wiiext.ErrInvalidInputData)
		_, err = iface.Sample(ctx, size)
		assert.ErrorIs(t, err, wiiext.ErrInvalidInputData)
	}
	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestInterface_ReadFailure(t *testing.T) {
	bus := new(MockI2CBus)
	iface := New(bus, WithDelayer(new(recordingDelay)))
	timeout := fmt.Errorf("bus timeout")

	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(Address), mock.Anything).Return(nil, timeout).Once()

	_, err := iface.Sample(context.Background(), ReportSize)
	var terr *wiiext.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "read block", terr.Op)
	assert.ErrorIs(t, err, timeout)
}

func TestInterface_ReadID(t *testing.T) {
	bus := new(MockI2CBus)
	iface := New(bus, WithDelayer(new(recordingDelay)))
	id := []byte{0, 0, 164, 32, 3, 1}

	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0xFA}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(Address), mock.Anything).Return(id, nil).Once()

	data, err := iface.ReadID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, data)
	bus.AssertExpectations(t)
}

func TestInterface_SetResolution(t *testing.T) {
	tests := []struct {
		hires    bool
		expected []byte
	}{
		{true, []byte{0xFE, 0x03}},
		{false, []byte{0xFE, 0x01}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("hires=%v", tt.hires), func(t *testing.T) {
			bus := new(MockI2CBus)
			delay := new(recordingDelay)
			iface := New(bus, WithDelayer(delay), WithSettleDelay(time.Millisecond))

			bus.On("WriteToAddr", mock.Anything, byte(Address), tt.expected).Return(nil).Once()
			require.NoError(t, iface.SetResolution(context.Background(), tt.hires))
			bus.AssertExpectations(t)
			assert.Equal(t, []time.Duration{2 * time.Millisecond, 2 * time.Millisecond}, delay.settle)
		})
	}
}

func TestInterface_WriteRegisterCustomAddress(t *testing.T) {
	bus := new(MockI2CBus)
	iface := New(bus, WithDelayer(new(recordingDelay)), WithAddress(0x53))

	bus.On("WriteToAddr", mock.Anything, byte(0x53), []byte{0x40, 0x00}).Return(nil).Once()
	require.NoError(t, iface.WriteRegister(context.Background(), 0x40, 0x00))
	bus.AssertExpectations(t)
}

func TestInterface_Destroy(t *testing.T) {
	bus := new(MockI2CBus)
	delay := NewScheduledDelay()
	iface := New(bus, WithDelayer(delay))

	gotBus, gotDelay := iface.Destroy()
	assert.Same(t, bus, gotBus)
	assert.Same(t, delay, gotDelay)
}

func TestInterface_SleepDelayTiming(t *testing.T) {
	bus := new(MockI2CBus)
	settle := 5 * time.Millisecond
	iface := New(bus, WithSettleDelay(settle))

	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(Address), mock.Anything).Return(make([]byte, 6), nil).Once()

	start := time.Now()
	_, err := iface.Sample(context.Background(), ReportSize)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 2*settle)
}
