// Package pubsub fans controller events out to WebSocket subscribers. It
// also decouples dispatch callbacks, which run on the MIDI listener
// goroutine, from consumers that must not block it.
package pubsub

import (
	"strconv"
	"sync"
	"time"
)

// Topic represents a subscription topic.
type Topic string

const (
	TopicParameterUpdated Topic = "PARAMETER_UPDATED"
	TopicControllerStatus Topic = "CONTROLLER_STATUS"
	TopicMappingChanged   Topic = "MAPPING_CHANGED"
)

// ParameterUpdate is the payload published for each accepted dispatch.
type ParameterUpdate struct {
	Target    string    `json:"target"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber represents a subscription channel.
type Subscriber struct {
	ID      string
	Topic   Topic
	Filter  string // optional target-function filter
	Channel chan interface{}
}

// PubSub manages subscriptions and message distribution.
type PubSub struct {
	mu          sync.RWMutex
	subscribers map[Topic][]*Subscriber
	nextID      int
}

// New creates a new PubSub instance.
func New() *PubSub {
	return &PubSub{
		subscribers: make(map[Topic][]*Subscriber),
	}
}

// Subscribe creates a new subscription for a topic. A non-empty filter
// restricts parameter updates to one target function.
func (ps *PubSub) Subscribe(topic Topic, filter string, bufferSize int) *Subscriber {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.nextID++
	sub := &Subscriber{
		ID:      strconv.Itoa(ps.nextID),
		Topic:   topic,
		Filter:  filter,
		Channel: make(chan interface{}, bufferSize),
	}

	ps.subscribers[topic] = append(ps.subscribers[topic], sub)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (ps *PubSub) Unsubscribe(sub *Subscriber) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	subs := ps.subscribers[sub.Topic]
	for i, s := range subs {
		if s.ID == sub.ID {
			close(s.Channel)
			ps.subscribers[sub.Topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends a message to the topic's subscribers. If filter is
// non-empty, only subscribers with a matching or empty filter receive it.
// Delivery is non-blocking; slow subscribers drop messages.
func (ps *PubSub) Publish(topic Topic, filter string, message interface{}) {
	ps.mu.RLock()
	subs := ps.subscribers[topic]
	ps.mu.RUnlock()

	for _, sub := range subs {
		if sub.Filter == "" || filter == "" || sub.Filter == filter {
			select {
			case sub.Channel <- message:
			default:
				// channel full, skip
			}
		}
	}
}

// PublishUpdate publishes a parameter update stamped with the current time.
func (ps *PubSub) PublishUpdate(target string, value float64) {
	ps.Publish(TopicParameterUpdated, target, ParameterUpdate{
		Target:    target,
		Value:     value,
		Timestamp: time.Now(),
	})
}

// SubscriberCount returns the number of subscribers for a topic.
func (ps *PubSub) SubscriberCount(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}
