package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	// ErrBusy is returned when the command queue stays full.
	ErrBusy = errors.New("BUSY")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("UNAVAILABLE")
	// ErrInvalidParam is returned for non-numeric settings.
	ErrInvalidParam = errors.New("INVALID_PARAM")
)

// Controller states, indexing STATE_List.
const (
	StateOff = iota
	StatePurge
	StateRun
	StateBreak
	StateJam
)

// STATES bits.
const (
	bitHS001 = 1 << iota
	bitHS002
	bitH001
	bitC001
	bitLED
	bitAlarm
)

// plcSelfHeat is the PLC cabinet temperature above ambient, °C.
const plcSelfHeat = 15

// Params are the operator settings.
type Params struct {
	SetID float64
	SP    float64 // setpoint, °C
	D     float64 // deadband, °C
	DHI   float64 // overshoot above SP+D that counts as a loop break, °C
	THI   float64 // seconds of overshoot before a loop break
	DLO   float64 // undershoot below SP-D that counts as a jam, °C
	TLO   float64 // seconds of undershoot before a jam
	TB    float64 // purge duration, seconds
	Start float64 // START select value
}

// DefaultParams returns the controller power-on settings.
func DefaultParams() Params {
	return Params{SetID: 1, SP: 40, D: 2, DHI: 5, THI: 60, DLO: 5, TLO: 300, TB: 10}
}

// Options configures a Chamber.
type Options struct {
	Params  Params
	Ambient float64 // °C
	// HeatRate and CoolRate are °C per second with the heater or cooler on.
	HeatRate float64
	CoolRate float64
	// Loss is the fraction of the ambient difference lost per second.
	Loss float64
}

// DefaultOptions returns a chamber that settles near 40 °C within minutes.
func DefaultOptions() Options {
	return Options{
		Params:   DefaultParams(),
		Ambient:  20,
		HeatRate: 0.4,
		CoolRate: 0.3,
		Loss:     0.005,
	}
}

type command struct {
	settings map[string]any
	step     time.Duration
	response chan error
}

// Chamber is the simulated process and controller.
type Chamber struct {
	opts Options

	mu     sync.RWMutex
	params Params
	temp   float64
	heater bool
	cooler bool
	state  int
	purge  time.Duration
	over   time.Duration
	under  time.Duration

	commands chan command
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewChamber creates a chamber at ambient temperature and starts its worker.
func NewChamber(opts Options) *Chamber {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Chamber{
		opts:     opts,
		params:   opts.Params,
		temp:     opts.Ambient,
		commands: make(chan command, 100),
		ctx:      ctx,
		cancel:   cancel,
	}

	c.wg.Add(1)
	go c.worker()
	return c
}

func (c *Chamber) worker() {
	defer c.wg.Done()

	for {
		select {
		case cmd := <-c.commands:
			cmd.response <- c.process(cmd)
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Chamber) process(cmd command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cmd.step > 0 {
		c.step(cmd.step)
		return nil
	}
	return c.apply(cmd.settings)
}

// apply validates every value before changing any parameter.
func (c *Chamber) apply(settings map[string]any) error {
	p := c.params
	for k, v := range settings {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParam, k, v)
		}
		switch k {
		case "SET_ID":
			p.SetID = f
		case "SP":
			p.SP = f
		case "D":
			p.D = f
		case "DHI":
			p.DHI = f
		case "THI":
			p.THI = f
		case "DLO":
			p.DLO = f
		case "TLO":
			p.TLO = f
		case "TB":
			p.TB = f
		case "START":
			p.Start = f
		}
	}

	wasRunning := c.params.Start != 0
	c.params = p
	if !wasRunning && p.Start != 0 {
		c.begin()
	}
	if p.Start == 0 {
		c.state = StateOff
	}
	return nil
}

// begin enters purge or run after a start command.
func (c *Chamber) begin() {
	c.over, c.under = 0, 0
	if c.params.Start == 2 && c.params.TB > 0 {
		c.state = StatePurge
		c.purge = seconds(c.params.TB)
		return
	}
	c.state = StateRun
}

// step advances the thermal model and the controller by dt.
func (c *Chamber) step(dt time.Duration) {
	sec := dt.Seconds()
	p := c.params

	switch c.state {
	case StatePurge:
		c.heater, c.cooler = false, true
		c.purge -= dt
		if c.purge <= 0 {
			c.state = StateRun
		}
	case StateRun:
		// Two-position control with hysteresis around SP ± D.
		switch {
		case c.temp < p.SP-p.D:
			c.heater, c.cooler = true, false
		case c.temp > p.SP+p.D:
			c.heater, c.cooler = false, true
		case c.temp >= p.SP && c.heater:
			c.heater = false
		case c.temp <= p.SP && c.cooler:
			c.cooler = false
		}
		c.supervise(dt)
	default:
		c.heater, c.cooler = false, false
	}

	if c.heater {
		c.temp += c.opts.HeatRate * sec
	}
	if c.cooler {
		c.temp -= c.opts.CoolRate * sec
	}
	c.temp -= (c.temp - c.opts.Ambient) * math.Min(1, c.opts.Loss*sec)
}

// supervise trips to StateBreak or StateJam when the temperature stays out
// of the alarm band for too long.
func (c *Chamber) supervise(dt time.Duration) {
	p := c.params
	if c.temp > p.SP+p.D+p.DHI {
		c.over += dt
	} else {
		c.over = 0
	}
	if c.temp < p.SP-p.D-p.DLO {
		c.under += dt
	} else {
		c.under = 0
	}

	switch {
	case p.THI > 0 && c.over >= seconds(p.THI):
		c.state = StateBreak
	case p.TLO > 0 && c.under >= seconds(p.TLO):
		c.state = StateJam
	}
}

// Submit applies settings in FIFO order with the time steps.
func (c *Chamber) Submit(settings map[string]any) error {
	return c.enqueue(command{settings: settings})
}

// Advance steps the model by dt through the command queue.
func (c *Chamber) Advance(dt time.Duration) error {
	if dt <= 0 {
		return nil
	}
	return c.enqueue(command{step: dt})
}

func (c *Chamber) enqueue(cmd command) error {
	cmd.response = make(chan error, 1)

	select {
	case c.commands <- cmd:
	case <-time.After(5 * time.Second):
		return ErrBusy
	case <-c.ctx.Done():
		return ErrClosed
	}

	select {
	case err := <-cmd.response:
		return err
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// Params returns the current settings.
func (c *Chamber) Params() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// Temperature returns the chamber temperature in °C.
func (c *Chamber) Temperature() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.temp
}

// State returns the controller state.
func (c *Chamber) State() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Tags returns the controller tags as published to the WebHMI server.
// TT001 and PLC_TT are in tenths of a degree.
func (c *Chamber) Tags() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.params
	states := 0
	if p.Start != 0 {
		states |= bitHS001 | bitLED
	}
	if p.Start == 2 {
		states |= bitHS002
	}
	if c.heater {
		states |= bitH001
	}
	if c.cooler {
		states |= bitC001
	}
	if c.state == StateBreak || c.state == StateJam {
		states |= bitAlarm
	}

	return map[string]any{
		"SET_ID": p.SetID,
		"SP":     p.SP,
		"D":      p.D,
		"DHI":    p.DHI,
		"THI":    p.THI,
		"DLO":    p.DLO,
		"TLO":    p.TLO,
		"TB":     p.TB,
		"TT001":  math.Round(c.temp * 10),
		"STATES": float64(states),
		"STATE":  float64(c.state),
		"PLC":    1.0,
		"PLC_TT": math.Round((c.opts.Ambient + plcSelfHeat) * 10),
	}
}

// Close stops the worker.
func (c *Chamber) Close() error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("shutdown timeout")
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
