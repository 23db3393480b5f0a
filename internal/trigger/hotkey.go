package trigger

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// Hotkey emits events for a global key combination. In "hold" mode pressing
// starts and releasing stops; in "toggle" mode each press flips the state.
type Hotkey struct {
	keys []string
	mode string // "hold" or "toggle"
	ch   chan Event
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	recording bool
}

// Compile-time interface satisfaction check.
var _ Trigger = (*Hotkey)(nil)

// NewHotkey creates a Hotkey for the given key combo and mode.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "r"]).
func NewHotkey(keys []string, mode string) *Hotkey {
	return &Hotkey{
		keys: keys,
		mode: mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events.
func (h *Hotkey) Events() <-chan Event {
	return h.ch
}

// Start registers the hotkey and blocks until Stop is called.
func (h *Hotkey) Start() {
	if h.mode == "hold" {
		hook.Register(hook.KeyDown, h.keys, func(hook.Event) { h.press() })
		hook.Register(hook.KeyUp, h.keys, func(hook.Event) { h.release() })
	} else {
		hook.Register(hook.KeyDown, h.keys, func(hook.Event) { h.toggle() })
	}

	evChan := hook.Start()
	go func() {
		<-h.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(h.ch)
}

// press starts recording in hold mode; key repeat is ignored.
func (h *Hotkey) press() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recording {
		return
	}
	h.recording = true
	h.emit(EventStart)
}

func (h *Hotkey) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording {
		return
	}
	h.recording = false
	h.emit(EventStop)
}

func (h *Hotkey) toggle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.recording {
		h.emit(EventStop)
	} else {
		h.emit(EventStart)
	}
	h.recording = !h.recording
}

// emit never blocks the hook thread; events are dropped if nobody listens.
func (h *Hotkey) emit(t EventType) {
	select {
	case h.ch <- Event{Type: t}:
	default:
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (h *Hotkey) Stop() {
	h.once.Do(func() {
		close(h.done)
	})
}
