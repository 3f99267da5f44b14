package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/markxbrooks/Mol-MiDial/internal/logger"
)

// eventBufferDepth is the fan-in buffer between the driver callback and the
// listener goroutine. When full, events are dropped rather than blocking
// the driver.
const eventBufferDepth = 64

// GomidiTransport is the production Transport backed by gomidi/rtmidi.
type GomidiTransport struct{}

// NewGomidiTransport returns the rtmidi-backed transport.
func NewGomidiTransport() *GomidiTransport {
	return &GomidiTransport{}
}

// Ports lists the available MIDI input port names.
func (t *GomidiTransport) Ports() ([]string, error) {
	ins := gomidi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// Open opens the named input port and starts fanning its messages into an
// event channel.
func (t *GomidiTransport) Open(name string) (Connection, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("midi: input port %q not found: %w", name, err)
	}

	conn := &gomidiConnection{
		in:     in,
		events: make(chan Event, eventBufferDepth),
	}

	stop, err := gomidi.ListenTo(in, conn.receive, gomidi.HandleError(func(listenErr error) {
		logger.Error("MIDI listener error, closing input", listenErr)
		// Close must not run on the listener callback goroutine itself.
		go func() { _ = conn.Close() }()
	}))
	if err != nil {
		return nil, fmt.Errorf("midi: listen to %q: %w", name, err)
	}
	conn.stop = stop

	return conn, nil
}

// Shutdown releases the underlying MIDI driver. Call once at process exit.
func (t *GomidiTransport) Shutdown() {
	gomidi.CloseDriver()
}

type gomidiConnection struct {
	in     drivers.In
	stop   func()
	events chan Event

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func (c *gomidiConnection) Events() <-chan Event {
	return c.events
}

func (c *gomidiConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.stop != nil {
			c.stop()
		}
		err = c.in.Close()
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
	return err
}

// receive translates a driver message into an Event and hands it to the
// listener. Runs on the driver's callback goroutine.
func (c *gomidiConnection) receive(msg gomidi.Message, _ int32) {
	var (
		ev       Event
		ch, k, v uint8
	)

	switch {
	case msg.GetControlChange(&ch, &k, &v):
		ev = Event{Kind: KindControlChange, Channel: ch, Control: k, Value: v}
	case msg.GetNoteOn(&ch, &k, &v):
		ev = Event{Kind: KindNoteOn, Channel: ch, Control: k, Value: v}
	case msg.GetNoteOff(&ch, &k, &v):
		ev = Event{Kind: KindNoteOff, Channel: ch, Control: k, Value: v}
	default:
		ev = Event{Kind: KindOther}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.events <- ev:
	default:
		logger.Debugf("dropping MIDI event, buffer full: %s", ev.Kind)
	}
}
