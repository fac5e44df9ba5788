package bindz

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// KeyListener routes key events to callbacks registered by bind name.
//
// A bind name is a logical action ("jump", "save") decoupled from the
// physical key that triggers it. The first registration of a name fixes
// its chord; Rebind changes it later without touching the callbacks.
type KeyListener struct {
	handle string
	reg    *Registry

	mu    sync.RWMutex
	binds map[string]*binding
	order []*binding
	count int
}

// binding is the record behind one bind name.
type binding struct {
	name      string
	chord     Chord
	callbacks []keyCallbackEntry
}

type keyCallbackEntry struct {
	id string
	fn KeyCallback
}

func newKeyListener(handle string, reg *Registry) *KeyListener {
	return &KeyListener{
		handle: handle,
		reg:    reg,
		binds:  make(map[string]*binding),
	}
}

// Handle returns the handle the listener was created under.
func (l *KeyListener) Handle() string {
	return l.handle
}

// Bind returns a binder that attaches a callback to name.
//
// If name is new it is created with def as its chord; pass Unbound to
// create it without a key. If name already exists def is ignored and only
// the callback is appended.
//
//	keys.Bind("save", bindz.On('s', bindz.ModCtrl))(saveFile)
func (l *KeyListener) Bind(name string, def Chord) KeyBinder {
	return func(cb KeyCallback) KeyCallback {
		if _, err := l.Hook(name, def, cb); err != nil {
			l.reg.log.Error().
				Err(err).
				Str("handle", l.handle).
				Str("bind", name).
				Msg("bind failed")
		}
		return cb
	}
}

// Hook attaches cb to name, creating the bind with def if needed, and
// returns a handle that removes exactly this registration.
func (l *KeyListener) Hook(name string, def Chord, cb KeyCallback) (Hook, error) {
	if l.reg.isClosed() {
		return Hook{}, ErrRegistryClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// A rejected call must not create the bind.
	existing := 0
	if b, ok := l.binds[name]; ok {
		existing = len(b.callbacks)
	}
	if existing >= l.reg.cfg.maxPerKey || l.count >= l.reg.cfg.maxTotal {
		return Hook{}, ErrTooManyCallbacks
	}

	b := l.ensure(name, def)
	id := newID()
	b.callbacks = append(b.callbacks, keyCallbackEntry{id: id, fn: cb})
	l.count++

	return Hook{
		id: id,
		unhook: func() error {
			return l.remove(name, id)
		},
	}, nil
}

// ensure returns the binding for name, creating it with def. Callers hold
// the write lock.
func (l *KeyListener) ensure(name string, def Chord) *binding {
	if b, ok := l.binds[name]; ok {
		return b
	}
	b := &binding{name: name, chord: def}
	l.binds[name] = b
	l.order = append(l.order, b)
	l.reg.log.Debug().
		Str("handle", l.handle).
		Str("bind", name).
		Stringer("chord", def).
		Msg("bind created")
	return b
}

func (l *KeyListener) remove(name, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.binds[name]
	if !ok {
		return ErrHookNotFound
	}
	for i, e := range b.callbacks {
		if e.id != id {
			continue
		}
		next := make([]keyCallbackEntry, 0, len(b.callbacks)-1)
		next = append(next, b.callbacks[:i]...)
		next = append(next, b.callbacks[i+1:]...)
		b.callbacks = next
		l.count--
		return nil
	}
	return ErrHookNotFound
}

// Rebind replaces the chord of an existing bind and returns the previous
// one so the caller can restore it. Passing Unbound removes the key.
func (l *KeyListener) Rebind(name string, c Chord) (Chord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.binds[name]
	if !ok {
		l.reg.log.Warn().
			Str("handle", l.handle).
			Str("bind", name).
			Msg("rebind of unknown bind")
		return Unbound, fmt.Errorf("%w: %q", ErrUnknownBind, name)
	}
	prev := b.chord
	b.chord = c
	l.reg.log.Info().
		Str("handle", l.handle).
		Str("bind", name).
		Stringer("from", prev).
		Stringer("to", c).
		Msg("bind rebound")
	return prev, nil
}

// Chord returns the current chord of name.
func (l *KeyListener) Chord(name string) (Chord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.binds[name]
	if !ok {
		return Unbound, false
	}
	return b.chord, true
}

// Binds returns every bind name in creation order.
func (l *KeyListener) Binds() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, len(l.order))
	for i, b := range l.order {
		names[i] = b.name
	}
	return names
}

// ClearBind removes every callback from name but keeps the bind and its
// chord. It returns how many callbacks were removed.
func (l *KeyListener) ClearBind(name string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.binds[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBind, name)
	}
	n := len(b.callbacks)
	b.callbacks = nil
	l.count -= n
	return n, nil
}

// RemoveBind deletes name together with its chord and callbacks. A later
// Bind for the same name starts from its own default again.
func (l *KeyListener) RemoveBind(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.binds[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBind, name)
	}
	delete(l.binds, name)
	order := make([]*binding, 0, len(l.order)-1)
	for _, o := range l.order {
		if o != b {
			order = append(order, o)
		}
	}
	l.order = order
	l.count -= len(b.callbacks)
	return nil
}

// Keymap returns the current chord of every bind.
func (l *KeyListener) Keymap() Keymap {
	l.mu.RLock()
	defer l.mu.RUnlock()

	km := make(Keymap, len(l.binds))
	for name, b := range l.binds {
		km[name] = b.chord
	}
	return km
}

// ApplyKeymap merges km into the listener. Existing binds are rebound;
// unknown names are created without callbacks, so a later Bind for them
// adopts the loaded chord instead of its own default.
func (l *KeyListener) ApplyKeymap(km Keymap) {
	names := make([]string, 0, len(km))
	for name := range km {
		names = append(names, name)
	}
	sort.Strings(names)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range names {
		c := km[name]
		if b, ok := l.binds[name]; ok {
			b.chord = c
			continue
		}
		l.ensure(name, c)
	}
	l.reg.log.Info().
		Str("handle", l.handle).
		Int("binds", len(names)).
		Msg("keymap applied")
}

func (l *KeyListener) totals() (callbacks, binds int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count, len(l.binds)
}

// Notify dispatches ev to the callbacks of every bind whose chord matches
// the event's key and modifiers. Binds fire in creation order and
// callbacks in registration order. Unbound binds never match.
//
// The listener does not filter by event category: key-down and key-up
// events are delivered alike. Use OnlyTypes when a callback cares.
func (l *KeyListener) Notify(ctx context.Context, ev KeyEvent) error {
	if ev == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	k, mods := ev.Key(), ev.Mods()

	type match struct {
		name      string
		callbacks []keyCallbackEntry
	}

	l.mu.RLock()
	var matches []match
	for _, b := range l.order {
		if b.chord.Matches(k, mods) && len(b.callbacks) > 0 {
			matches = append(matches, match{name: b.name, callbacks: b.callbacks})
		}
	}
	l.mu.RUnlock()

	var first error
	for _, m := range matches {
		for _, e := range m.callbacks {
			fn := e.fn
			err := l.reg.dispatch.submit(task{
				ctx:    ctx,
				handle: l.handle,
				target: m.name,
				call: func(ctx context.Context) error {
					return fn(ctx, ev)
				},
			})
			if err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
