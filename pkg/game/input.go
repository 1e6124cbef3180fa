package game

import "sync"

// Event is an input event fed to the loop.
type Event uint8

const (
	EventQuit      Event = iota + 1 // Window closed or process asked to quit
	EventKeyEscape                  // Stop, or exit when already stopped
	EventKeyPause                   // Toggle pause
	EventKeyStop                    // Stop, or resume when stopped
	EventKeyDebug                   // Toggle debug mode
)

func (e Event) String() string {
	switch e {
	case EventQuit:
		return "quit"
	case EventKeyEscape:
		return "escape"
	case EventKeyPause:
		return "pause"
	case EventKeyStop:
		return "stop"
	case EventKeyDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// initialInputCapacity is the starting capacity of an InputQueue.
const initialInputCapacity = 16

// InputQueue buffers input events until the loop drains them at the start of a tick. Push is safe
// to call from any goroutine.
type InputQueue struct {
	events []Event
	mu     sync.Mutex
}

// NewInputQueue creates an empty InputQueue.
func NewInputQueue() *InputQueue {
	return &InputQueue{events: make([]Event, 0, initialInputCapacity)}
}

// Push appends an event.
func (q *InputQueue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Len returns the number of buffered events.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// drain appends every buffered event to target in push order and empties the queue.
func (q *InputQueue) drain(target *[]Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	*target = append(*target, q.events...)
	q.events = q.events[:0]
}
