package bindz

import (
	"fmt"
	"strings"
)

// Key identifies a physical key. Non-negative values are the rune the key
// produces; negative values are host-defined special keys.
type Key int32

// String returns the rune for printable keys and #<code> otherwise.
func (k Key) String() string {
	return RuneNamer.KeyName(k)
}

// ModMask is a set of modifier keys.
type ModMask uint16

const (
	// ModNone is the empty set. As a bind requirement it means "any modifiers".
	ModNone ModMask = 0

	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether every modifier in req is present in m.
func (m ModMask) Has(req ModMask) bool {
	return m&req == req
}

// String returns a representation like "Ctrl+Shift".
func (m ModMask) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if m&ModMeta != 0 {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

var modNames = map[string]ModMask{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"a":       ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
	"m":       ModMeta,
}

// ParseModMask parses "Ctrl+Shift" or "C-S". The empty string is ModNone.
func ParseModMask(s string) (ModMask, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ModNone, nil
	}

	sep := "+"
	if !strings.Contains(s, "+") && strings.Contains(s, "-") {
		sep = "-"
	}

	var mask ModMask
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		mod, ok := modNames[part]
		if !ok {
			return ModNone, fmt.Errorf("%w: %q", ErrUnknownModifier, part)
		}
		mask |= mod
	}
	return mask, nil
}

func combine(mods []ModMask) ModMask {
	var m ModMask
	for _, mod := range mods {
		m |= mod
	}
	return m
}

// Chord is the physical trigger of a key bind: a key plus the modifiers
// it requires. The zero value is Unbound and never matches.
type Chord struct {
	key   Key
	mods  ModMask
	bound bool
}

// Unbound is the chord of a bind with no physical key.
var Unbound = Chord{}

// On returns a chord bound to k requiring all of mods.
func On(k Key, mods ...ModMask) Chord {
	return Chord{key: k, mods: combine(mods), bound: true}
}

// Key returns the bound key, or false if the chord is unbound.
func (c Chord) Key() (Key, bool) {
	return c.key, c.bound
}

// Mods returns the required modifiers.
func (c Chord) Mods() ModMask {
	return c.mods
}

// IsBound reports whether a physical key is assigned.
func (c Chord) IsBound() bool {
	return c.bound
}

// Matches reports whether a key event with key k and active modifiers
// mods triggers the chord. An empty requirement accepts any modifiers;
// otherwise the active set must contain every required modifier.
func (c Chord) Matches(k Key, mods ModMask) bool {
	if !c.bound || c.key != k {
		return false
	}
	return c.mods == ModNone || mods.Has(c.mods)
}

func (c Chord) String() string {
	if !c.bound {
		return "<unbound>"
	}
	if c.mods == ModNone {
		return c.key.String()
	}
	return c.mods.String() + "+" + c.key.String()
}
