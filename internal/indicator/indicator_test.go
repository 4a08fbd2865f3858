package indicator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type recorder struct {
	mu   sync.Mutex
	sets []bool
	err  error
}

func (r *recorder) Out(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, on)
	return r.err
}

func (r *recorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.sets...)
}

type flag struct{ v atomic.Bool }

func (f *flag) Enabled() bool { return f.v.Load() }

func run(t *testing.T, b *Blinker, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, b.Run(ctx))
}

func TestLEDDrivesPin(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17", L: gpio.High}
	led, err := NewLED(pin)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, pin.Read(), "LED starts off")

	require.NoError(t, led.Out(true))
	assert.Equal(t, gpio.High, pin.Read())
	require.NoError(t, led.Out(false))
	assert.Equal(t, gpio.Low, pin.Read())
}

func TestBlinkerBlinksWhileEnabled(t *testing.T) {
	out := &recorder{}
	f := &flag{}
	f.v.Store(true)
	b := &Blinker{LED: out, Flag: f, On: 5 * time.Millisecond, Period: 20 * time.Millisecond, IdlePoll: 50 * time.Millisecond}

	run(t, b, 110*time.Millisecond)

	sets := out.snapshot()
	require.GreaterOrEqual(t, len(sets), 4)
	assert.True(t, sets[0])
	for i := 1; i < len(sets)-1; i++ {
		assert.NotEqual(t, sets[i-1], sets[i], "transitions alternate at %d", i)
	}
	assert.False(t, sets[len(sets)-1], "LED is off after Run returns")
}

func TestBlinkerIdleHoldsOff(t *testing.T) {
	out := &recorder{}
	b := &Blinker{LED: out, Flag: &flag{}, On: 5 * time.Millisecond, Period: 20 * time.Millisecond, IdlePoll: 10 * time.Millisecond}

	run(t, b, 60*time.Millisecond)

	for _, on := range out.snapshot() {
		assert.False(t, on)
	}
}

func TestBlinkerStopsBlinkingWhenDisabled(t *testing.T) {
	out := &recorder{}
	f := &flag{}
	f.v.Store(true)
	b := &Blinker{LED: out, Flag: f, On: 5 * time.Millisecond, Period: 10 * time.Millisecond, IdlePoll: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()

	time.Sleep(40 * time.Millisecond)
	f.v.Store(false)
	time.Sleep(30 * time.Millisecond)
	n := len(out.snapshot())
	time.Sleep(40 * time.Millisecond)
	cancel()
	<-done

	sets := out.snapshot()
	for _, on := range sets[n:] {
		assert.False(t, on, "no blink once disabled")
	}
}

func TestBlinkerSurvivesOutputErrors(t *testing.T) {
	out := &recorder{err: errors.New("gpio busy")}
	f := &flag{}
	f.v.Store(true)
	b := &Blinker{LED: out, Flag: f, On: 2 * time.Millisecond, Period: 5 * time.Millisecond, IdlePoll: 5 * time.Millisecond}

	run(t, b, 30*time.Millisecond)
	assert.NotEmpty(t, out.snapshot())
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Out(true))
}
