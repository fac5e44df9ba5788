// Package bindz provides a callback registry and dispatcher for a host
// application's event loop.
//
// Independent modules register callbacks against event categories or
// against named key binds under a shared handle. The host loop feeds its
// events in and bindz fans them out to every matching callback without
// blocking the loop:
//   - EventManager: callbacks keyed by event category
//   - KeyListener: callbacks keyed by a logical bind name, decoupled from
//     the physical key that triggers it and rebindable at runtime
//   - Registry: handle to manager lookup, broadcast and dispatch
//
// Basic Usage:
//
//	ui := bindz.GetEventManager("ui")
//
//	// Decorator style: the binder returns the callback unchanged
//	onResize := ui.Register(EventResize)(func(ctx context.Context, ev bindz.Event) error {
//		return relayout(ev)
//	})
//
//	keys := bindz.GetKeyListener("player")
//	keys.Bind("jump", bindz.On(' '))(func(ctx context.Context, ev bindz.KeyEvent) error {
//		return player.Jump()
//	})
//
//	// In the host loop
//	for ev := range events {
//		bindz.NotifyEventManagers(ctx, ev)
//		if kev, ok := ev.(bindz.KeyEvent); ok {
//			bindz.NotifyKeyListeners(ctx, kev)
//		}
//	}
//
// Explicit Registries:
//
//	reg := bindz.NewRegistry(
//		bindz.WithMode(bindz.DispatchPooled),
//		bindz.WithWorkers(8),
//		bindz.WithTimeout(time.Second),
//		bindz.WithLogger(logger),
//	)
//	defer reg.Close()
//
// Concurrency:
//
// Callbacks run concurrently with each other and with the host loop.
// Launch order follows registration order but completion order is not
// defined. Callbacks that share mutable state must synchronize it
// themselves.
package bindz

import "context"

// EventType is the category tag the host attaches to each event.
// Callbacks registered on an EventManager are selected by it.
type EventType uint32

// Well-known categories for key events. Hosts may define any other values.
const (
	EventKeyDown EventType = iota + 1
	EventKeyUp
)

// Event is the opaque record handed to callbacks. bindz only reads its
// category; payload interpretation is left to the callbacks.
type Event interface {
	Type() EventType
}

// KeyEvent is an Event that carries a physical key and the modifiers
// held while it changed state.
type KeyEvent interface {
	Event
	Key() Key
	Mods() ModMask
}

// Callback handles one event. A returned error is logged and counted but
// never reaches the notifier or other callbacks.
type Callback func(ctx context.Context, ev Event) error

// KeyCallback handles one key event.
type KeyCallback func(ctx context.Context, ev KeyEvent) error

// Binder stores a callback and returns it unchanged, so registration
// works both inline and on an already declared function.
type Binder func(Callback) Callback

// KeyBinder is the KeyListener counterpart of Binder.
type KeyBinder func(KeyCallback) KeyCallback

// SimpleEvent is a ready-made Event for hosts without their own types.
type SimpleEvent struct {
	Kind EventType
	Data any
}

// Type implements Event.
func (e SimpleEvent) Type() EventType { return e.Kind }

// SimpleKeyEvent is a ready-made KeyEvent.
type SimpleKeyEvent struct {
	Kind      EventType
	Code      Key
	Modifiers ModMask
}

// Type implements Event.
func (e SimpleKeyEvent) Type() EventType { return e.Kind }

// Key implements KeyEvent.
func (e SimpleKeyEvent) Key() Key { return e.Code }

// Mods implements KeyEvent.
func (e SimpleKeyEvent) Mods() ModMask { return e.Modifiers }

// KeyDown builds a key-down SimpleKeyEvent.
func KeyDown(k Key, mods ...ModMask) SimpleKeyEvent {
	return SimpleKeyEvent{Kind: EventKeyDown, Code: k, Modifiers: combine(mods)}
}

// KeyUp builds a key-up SimpleKeyEvent.
func KeyUp(k Key, mods ...ModMask) SimpleKeyEvent {
	return SimpleKeyEvent{Kind: EventKeyUp, Code: k, Modifiers: combine(mods)}
}

// OnlyTypes wraps cb so it only runs for the given categories. KeyListener
// does not filter by category, so callbacks that care about key-down
// versus key-up use this.
func OnlyTypes(cb KeyCallback, types ...EventType) KeyCallback {
	return func(ctx context.Context, ev KeyEvent) error {
		for _, t := range types {
			if ev.Type() == t {
				return cb(ctx, ev)
			}
		}
		return nil
	}
}
