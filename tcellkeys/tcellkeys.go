// Package tcellkeys adapts tcell terminal key events to bindz.
//
// Printable keys map to their rune, so bindz.On('q') matches a plain
// "q" press. Ctrl+letter presses map to the lower-case letter plus
// bindz.ModCtrl, so bindz.On('k', bindz.ModCtrl) matches Ctrl+K whichever
// code tcell reports for it. Other special keys (arrows, function keys,
// Backspace, Tab, Enter) map to negative bindz.Key values derived from
// the tcell key code; use Key to obtain them:
//
//	keys.Bind("quit", bindz.On(tcellkeys.Key(tcell.KeyEscape)))(quit)
//
//	for {
//		if ev, ok := screen.PollEvent().(*tcell.EventKey); ok {
//			reg.NotifyKeyListeners(ctx, tcellkeys.Event(ev))
//		}
//	}
package tcellkeys

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/zoobzio/bindz"
)

// Key returns the bindz key for a tcell special key.
func Key(k tcell.Key) bindz.Key {
	return bindz.Key(-1 - int32(k))
}

// Rune returns the bindz key for a printable character.
func Rune(r rune) bindz.Key {
	return bindz.Key(r)
}

// Mods converts tcell modifiers.
func Mods(m tcell.ModMask) bindz.ModMask {
	var out bindz.ModMask
	if m&tcell.ModShift != 0 {
		out |= bindz.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= bindz.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= bindz.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= bindz.ModMeta
	}
	return out
}

// KeyEvent is a bindz.KeyEvent built from a tcell key. tcell reports key
// presses only, so every KeyEvent is a bindz.EventKeyDown.
type KeyEvent struct {
	code bindz.Key
	mods bindz.ModMask

	// Source is the original tcell event, nil when built with FromKey.
	Source *tcell.EventKey
}

// Type implements bindz.Event.
func (e KeyEvent) Type() bindz.EventType { return bindz.EventKeyDown }

// Key implements bindz.KeyEvent.
func (e KeyEvent) Key() bindz.Key { return e.code }

// Mods implements bindz.KeyEvent.
func (e KeyEvent) Mods() bindz.ModMask { return e.mods }

// FromKey builds a key event from tcell's key, rune and modifier triple.
func FromKey(k tcell.Key, r rune, m tcell.ModMask) KeyEvent {
	ev := KeyEvent{mods: Mods(m)}
	if k == tcell.KeyRune {
		ev.code = Rune(r)
		return ev
	}
	if letter, ok := ctrlLetter(k); ok {
		ev.code = Rune(letter)
		ev.mods |= bindz.ModCtrl
		return ev
	}
	ev.code = Key(k)
	return ev
}

// ctrlLetter returns the letter behind a Ctrl+letter key. tcell reports
// these either as KeyCtrlA..KeyCtrlZ or as the upper-case letter code.
// Backspace, Tab and Enter share codes with Ctrl+H, Ctrl+I and Ctrl+M and
// stay special keys.
func ctrlLetter(k tcell.Key) (rune, bool) {
	if k == tcell.KeyBackspace || k == tcell.KeyTab || k == tcell.KeyEnter {
		return 0, false
	}
	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return 'a' + rune(k-tcell.KeyCtrlA), true
	case k >= 'A' && k <= 'Z':
		return 'a' + rune(k-'A'), true
	}
	return 0, false
}

// Event converts a tcell key event.
func Event(ev *tcell.EventKey) KeyEvent {
	out := FromKey(ev.Key(), ev.Rune(), ev.Modifiers())
	out.Source = ev
	return out
}

// Namer names keys for keymap files: printable keys by their rune and
// special keys by tcell's names ("Enter", "F1", "Ctrl-A").
var Namer bindz.KeyNamer = namer{}

var byName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

type namer struct{}

func (namer) KeyName(k bindz.Key) string {
	if k >= 0 {
		return bindz.RuneNamer.KeyName(k)
	}
	tk := tcell.Key(-1 - int32(k))
	if name, ok := tcell.KeyNames[tk]; ok {
		return name
	}
	return fmt.Sprintf("Key[%d]", int(tk))
}

func (namer) ParseKey(name string) (bindz.Key, error) {
	if k, ok := byName[strings.ToLower(name)]; ok {
		return Key(k), nil
	}
	var code int
	if _, err := fmt.Sscanf(name, "Key[%d]", &code); err == nil {
		return Key(tcell.Key(code)), nil
	}
	return bindz.RuneNamer.ParseKey(name)
}
