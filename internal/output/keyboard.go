package output

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Keyboard sends text to the focused application using robotgo.
type Keyboard struct {
	method string // "type" or "paste"
}

// Compile-time interface satisfaction check.
var _ Emitter = (*Keyboard)(nil)

// NewKeyboard creates a Keyboard emitter. method must be "type" or "paste".
func NewKeyboard(method string) *Keyboard {
	return &Keyboard{method: method}
}

// Emit types or pastes text. Empty text is a no-op.
func (k *Keyboard) Emit(text string) error {
	if text == "" {
		return nil
	}

	switch k.method {
	case "paste":
		return k.paste(text)
	default: // "type"
		robotgo.Type(text)
		return nil
	}
}

// paste copies text to the clipboard, sends the platform paste shortcut and
// restores the previous clipboard contents.
func (k *Keyboard) paste(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("output: write to clipboard: %w", err)
	}

	mod := pasteModifier(runtime.GOOS)
	if err := robotgo.KeyTap("v", mod); err != nil {
		return fmt.Errorf("output: key tap %s+v: %w", mod, err)
	}

	// best effort
	_ = robotgo.WriteAll(prev)

	return nil
}

func pasteModifier(goos string) string {
	if goos == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
