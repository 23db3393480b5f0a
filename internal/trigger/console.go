package trigger

import (
	"bufio"
	"io"
	"sync"
)

// Console starts recording immediately and toggles stop/start on every line
// read from its input (usually os.Stdin).
type Console struct {
	r    io.Reader
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// Compile-time interface satisfaction check.
var _ Trigger = (*Console)(nil)

// NewConsole creates a Console reading lines from r.
func NewConsole(r io.Reader) *Console {
	return &Console{
		r:    r,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives console events.
func (c *Console) Events() <-chan Event {
	return c.ch
}

// Start emits EventStart, then alternates EventStop and EventStart for each
// input line. It returns at EOF or after Stop.
func (c *Console) Start() {
	defer close(c.ch)

	recording := true
	if !c.send(Event{Type: EventStart}) {
		return
	}

	lines := make(chan struct{})
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.r)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-c.done:
				return
			}
		}
	}()

	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
			typ := EventStop
			if !recording {
				typ = EventStart
			}
			recording = !recording
			if !c.send(Event{Type: typ}) {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Console) send(ev Event) bool {
	select {
	case c.ch <- ev:
		return true
	case <-c.done:
		return false
	}
}

// Stop terminates the console trigger. A pending read on the input is
// abandoned rather than interrupted.
func (c *Console) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
}
