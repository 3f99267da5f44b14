package midi

import "errors"

// ErrTransportUnavailable is returned by connect attempts when no MIDI
// transport could be initialized. The condition is persistent; callers
// should not retry.
var ErrTransportUnavailable = errors.New("midi: transport unavailable")

// Connection is an open MIDI input endpoint. Events delivers the incoming
// stream; the channel is closed when the endpoint is closed or the
// underlying stream dies.
type Connection interface {
	Events() <-chan Event
	Close() error
}

// Transport abstracts the MIDI input layer so the controller can be tested
// without hardware.
type Transport interface {
	// Ports enumerates the currently available input endpoints by name.
	Ports() ([]string, error)

	// Open opens the named endpoint. It fails if the endpoint does not
	// exist or cannot be opened.
	Open(name string) (Connection, error)
}
