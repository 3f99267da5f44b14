// Package midi maps raw MIDI control-change events onto named viewer
// parameters. A Controller owns the mapping table, normalizes values into
// each mapping's target range, throttles dispatch per target function and
// invokes the registered handlers.
//
// Handlers run on the listener goroutine, not the caller's. A handler that
// mutates GUI state must marshal that work back to the owning thread
// itself.
package midi

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/markxbrooks/Mol-MiDial/internal/logger"
)

const (
	// DefaultThrottleInterval is the minimum spacing between dispatches
	// for a target function without an override.
	DefaultThrottleInterval = 50 * time.Millisecond

	// DefaultStopTimeout bounds the wait for the listener goroutine on
	// Stop. A transport that never unblocks can make Stop return first;
	// callers must tolerate that.
	DefaultStopTimeout = time.Second
)

// Handler receives the normalized value for one target function.
type Handler func(value float64)

// Config holds controller configuration.
type Config struct {
	// Transport supplies ports and event streams. Nil means no MIDI
	// support is available; all connect attempts fail fast.
	Transport Transport

	// DefaultThrottle overrides DefaultThrottleInterval when positive.
	DefaultThrottle time.Duration

	// StopTimeout overrides DefaultStopTimeout when positive.
	StopTimeout time.Duration
}

// ThrottleInfo reports the current throttle configuration.
type ThrottleInfo struct {
	DefaultInterval time.Duration            `json:"defaultInterval"`
	Overrides       map[string]time.Duration `json:"overrides"`
}

// Status reports the controller's connection state.
type Status struct {
	Connected bool   `json:"connected"`
	Listening bool   `json:"listening"`
	Port      string `json:"port"`
}

// Controller is the event dispatcher and listener for one MIDI input.
//
// One mutex guards the mapping table, handler registry, throttle
// configuration and throttle state; the caller thread and the listener
// goroutine both go through it.
type Controller struct {
	mu sync.RWMutex

	transport Transport
	conn      Connection
	port      string

	mappings *mappingTable
	handlers map[string]Handler

	defaultThrottle   time.Duration
	throttleOverrides map[string]time.Duration
	lastDispatch      map[string]time.Time
	lastValues        map[string]float64

	stopTimeout time.Duration
	running     bool
	stopChan    chan struct{}
	done        chan struct{}

	// injectable clock for deterministic throttle tests
	now func() time.Time
}

// NewController creates a controller preloaded with the default mapping
// table and the stock expensive-function throttle overrides.
func NewController(cfg Config) *Controller {
	defaultThrottle := cfg.DefaultThrottle
	if defaultThrottle <= 0 {
		defaultThrottle = DefaultThrottleInterval
	}
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}

	c := &Controller{
		transport:         cfg.Transport,
		mappings:          newMappingTable(),
		handlers:          make(map[string]Handler),
		defaultThrottle:   defaultThrottle,
		throttleOverrides: defaultExpensiveThrottles(),
		lastDispatch:      make(map[string]time.Time),
		lastValues:        make(map[string]float64),
		stopTimeout:       stopTimeout,
		now:               time.Now,
	}

	for _, nm := range DefaultMappings() {
		c.mappings.set(nm.Name, nm.Mapping)
	}

	if cfg.Transport == nil {
		logger.Warning("MIDI transport not available, connect attempts will fail")
	}

	return c
}

// AddMapping adds or overwrites a mapping by name. An existing name keeps
// its position in the match order.
func (c *Controller) AddMapping(name string, m Mapping) {
	c.mu.Lock()
	c.mappings.set(name, m)
	c.mu.Unlock()
	logger.Debugf("added MIDI mapping: %s -> %s", name, m.TargetFunction)
}

// RemoveMapping removes a mapping by name. Unknown names are ignored.
func (c *Controller) RemoveMapping(name string) {
	c.mu.Lock()
	removed := c.mappings.remove(name)
	c.mu.Unlock()
	if removed {
		logger.Debugf("removed MIDI mapping: %s", name)
	}
}

// EnableMapping re-enables dispatch for a mapping.
func (c *Controller) EnableMapping(name string) {
	c.mu.Lock()
	ok := c.mappings.setEnabled(name, true)
	c.mu.Unlock()
	if ok {
		logger.Debugf("enabled mapping: %s", name)
	}
}

// DisableMapping suppresses dispatch for a mapping without removing it.
func (c *Controller) DisableMapping(name string) {
	c.mu.Lock()
	ok := c.mappings.setEnabled(name, false)
	c.mu.Unlock()
	if ok {
		logger.Debugf("disabled mapping: %s", name)
	}
}

// Mapping returns the mapping stored under name.
func (c *Controller) Mapping(name string) (Mapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mappings.get(name)
}

// MappingInfo returns an ordered snapshot of the mapping table.
func (c *Controller) MappingInfo() []MappingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mappings.snapshot()
}

// SetHandler registers the handler for a target function, replacing any
// prior registration.
func (c *Controller) SetHandler(target string, h Handler) {
	c.mu.Lock()
	c.handlers[target] = h
	c.mu.Unlock()
	logger.Debugf("set control handler: %s", target)
}

// RemoveHandler unregisters the handler for a target function. Subsequent
// matching events are logged and skipped.
func (c *Controller) RemoveHandler(target string) {
	c.mu.Lock()
	delete(c.handlers, target)
	c.mu.Unlock()
	logger.Debugf("removed control handler: %s", target)
}

// SetThrottleInterval sets a per-function throttle override. Negative
// intervals are clamped to zero.
func (c *Controller) SetThrottleInterval(target string, interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	c.mu.Lock()
	c.throttleOverrides[target] = interval
	c.mu.Unlock()
	logger.Debugf("set throttle interval for %s: %s", target, interval)
}

// SetDefaultThrottleInterval sets the global default throttle interval.
// Negative intervals are clamped to zero.
func (c *Controller) SetDefaultThrottleInterval(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	c.mu.Lock()
	c.defaultThrottle = interval
	c.mu.Unlock()
	logger.Debugf("set default throttle interval: %s", interval)
}

// ThrottleSettings returns the current throttle configuration.
func (c *Controller) ThrottleSettings() ThrottleInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	overrides := make(map[string]time.Duration, len(c.throttleOverrides))
	for k, v := range c.throttleOverrides {
		overrides[k] = v
	}
	return ThrottleInfo{DefaultInterval: c.defaultThrottle, Overrides: overrides}
}

// ClearThrottleState resets the last-dispatch times and last-delivered
// values, re-arming any noise-floor-suppressed functions.
func (c *Controller) ClearThrottleState() {
	c.mu.Lock()
	c.lastDispatch = make(map[string]time.Time)
	c.lastValues = make(map[string]float64)
	c.mu.Unlock()
	logger.Debug("cleared throttle state")
}

// Ports enumerates the available MIDI input endpoints.
func (c *Controller) Ports() ([]string, error) {
	c.mu.RLock()
	transport := c.transport
	c.mu.RUnlock()
	if transport == nil {
		return nil, ErrTransportUnavailable
	}
	ports, err := transport.Ports()
	if err != nil {
		logger.Error("listing MIDI ports failed", err)
		return nil, err
	}
	return ports, nil
}

// Connect opens the named input endpoint, replacing any existing
// connection. It fails fast when no transport is available.
func (c *Controller) Connect(port string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		logger.Error("MIDI transport not available", nil)
		return ErrTransportUnavailable
	}
	if c.running {
		return errors.New("midi: stop listening before reconnecting")
	}

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.port = ""
	}

	conn, err := c.transport.Open(port)
	if err != nil {
		logger.Error(fmt.Sprintf("connecting to MIDI port %s failed", port), err)
		return err
	}

	c.conn = conn
	c.port = port
	logger.Infof("connected to MIDI port: %s", port)
	return nil
}

// Disconnect releases the input endpoint. Safe to call from any state;
// stops the listener first if needed.
func (c *Controller) Disconnect() {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		logger.Error("disconnecting from MIDI failed", err)
	}
	c.conn = nil
	c.port = ""
	logger.Info("disconnected from MIDI")
}

// IsConnected reports whether an input endpoint is open.
func (c *Controller) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// IsListening reports whether the listener goroutine is running.
func (c *Controller) IsListening() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Status returns the connection state for the API layer.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{Connected: c.conn != nil, Listening: c.running, Port: c.port}
}

// Start spawns the listener goroutine. It fails unless connected and not
// already listening.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		logger.Error("no MIDI input connected", nil)
		return errors.New("midi: no input connected")
	}
	if c.running {
		logger.Warning("MIDI controller already running")
		return errors.New("midi: already listening")
	}

	c.running = true
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	go c.listen(c.conn, c.stopChan, c.done)

	logger.Info("started MIDI listening")
	return nil
}

// Stop signals the listener to exit and waits for it with a bounded
// timeout. The controller stays connected.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	// Drop the flag here so a concurrent Stop cannot close stopChan twice.
	c.running = false
	stopChan, done, timeout := c.stopChan, c.done, c.stopTimeout
	c.mu.Unlock()

	close(stopChan)
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warning("timed out waiting for MIDI listener to exit")
	}
	logger.Info("stopped MIDI listening")
}

// listen is the single listener loop. It drains the connection's event
// stream until stopped or the stream ends, and always clears the running
// flag on the way out so callers can detect loop death.
func (c *Controller) listen(conn Connection, stopChan <-chan struct{}, done chan<- struct{}) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-stopChan:
			return
		case ev, ok := <-conn.Events():
			if !ok {
				logger.Warning("MIDI event stream ended")
				return
			}
			switch ev.Kind {
			case KindControlChange:
				c.HandleControlChange(ev.Control, ev.Channel, ev.Value)
			case KindNoteOn:
				c.handleNoteOn(ev)
			case KindNoteOff:
				c.handleNoteOff(ev)
			case KindOther:
				// ignored
			}
		}
	}
}

// handleNoteOn is a reserved extension point for toggle controls.
func (c *Controller) handleNoteOn(Event) {}

// handleNoteOff is a reserved extension point for momentary controls.
func (c *Controller) handleNoteOff(Event) {}

// HandleControlChange routes one raw control-change event through the
// mapping table and dispatch gates. Exported so hosts can inject events
// from sources other than the transport.
func (c *Controller) HandleControlChange(control, channel, value uint8) {
	c.mu.RLock()
	entry, ok := c.mappings.firstEnabledMatch(control, channel)
	c.mu.RUnlock()
	if !ok {
		return
	}

	target := ConvertValue(value, entry.Mapping)
	if c.dispatch(entry.Mapping.TargetFunction, target) {
		logger.Debugf("MIDI control: %s -> %s = %.6f", entry.Name, entry.Mapping.TargetFunction, target)
	}
}

// ConvertValue normalizes a raw value in [0,SourceMax] into the mapping's
// target range: min + (raw/127)*(max-min). No clamping beyond what the
// fixed source range guarantees.
func ConvertValue(raw uint8, m Mapping) float64 {
	normalized := float64(raw) / SourceMax
	return m.TargetMin + normalized*(m.TargetMax-m.TargetMin)
}

// dispatch applies the three gates in order (handler present, throttle
// interval elapsed, change above the noise floor) and invokes the handler
// when all pass. Throttle state is updated only after a successful
// invocation. Returns whether the handler ran.
func (c *Controller) dispatch(target string, value float64) bool {
	c.mu.Lock()
	handler, registered := c.handlers[target]
	if !registered || handler == nil {
		c.mu.Unlock()
		logger.Debugf("no handler for control: %s", target)
		return false
	}

	now := c.now()
	if last, seen := c.lastDispatch[target]; seen {
		interval, override := c.throttleOverrides[target]
		if !override {
			interval = c.defaultThrottle
		}
		if elapsed := now.Sub(last); elapsed < interval {
			c.mu.Unlock()
			logger.Debugf("throttling %s (last update %s ago)", target, elapsed)
			return false
		}
	}
	if last, seen := c.lastValues[target]; seen {
		if math.Abs(value-last) < noiseFloor(value) {
			c.mu.Unlock()
			return false
		}
	}
	c.mu.Unlock()

	if err := invoke(handler, value); err != nil {
		logger.Error(fmt.Sprintf("control handler %s failed", target), err)
		return false
	}

	c.mu.Lock()
	c.lastDispatch[target] = now
	c.lastValues[target] = value
	c.mu.Unlock()
	return true
}

// noiseFloor is the minimum delta required to accept a dispatch: 0.1% of
// the value's magnitude, never less than 0.001 absolute.
func noiseFloor(value float64) float64 {
	return math.Max(0.001, math.Abs(value)*0.001)
}

// invoke is the error-capture boundary around a handler call. A panicking
// handler is converted to an error and never propagates to the listener.
func invoke(h Handler, value float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	h(value)
	return nil
}
