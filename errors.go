package bindz

import "errors"

// Registration Errors
//
// These errors are returned when managing callback lifecycle.

// ErrAlreadyUnhooked is returned when unhooking a Hook that has already
// been unhooked or was never valid.
var ErrAlreadyUnhooked = errors.New("hook already unhooked")

// ErrHookNotFound is returned when the registration behind a Hook no
// longer exists, for example after Purge or ClearBind.
var ErrHookNotFound = errors.New("hook not found")

// ErrTooManyCallbacks is returned when a registration would exceed the
// per-key or per-manager callback limit.
var ErrTooManyCallbacks = errors.New("callback limit exceeded")

// Bind Errors

// ErrUnknownBind is returned by Rebind, ClearBind and RemoveBind when the
// bind name has never been created on the listener.
var ErrUnknownBind = errors.New("unknown bind")

// ErrUnknownKey is returned by a KeyNamer that cannot parse a key name.
var ErrUnknownKey = errors.New("unknown key name")

// ErrUnknownModifier is returned when a modifier name cannot be parsed.
var ErrUnknownModifier = errors.New("unknown modifier")

// ErrUnsupportedFormat is returned for keymap files with an extension
// other than .json, .yaml, .yml or .toml.
var ErrUnsupportedFormat = errors.New("unsupported keymap format")

// Lifecycle Errors

// ErrRegistryClosed is returned when registering or notifying through a
// registry that has been closed.
var ErrRegistryClosed = errors.New("registry is closed")

// ErrAlreadyClosed is returned when calling Close twice.
var ErrAlreadyClosed = errors.New("registry already closed")

// Dispatch Errors

// ErrQueueFull is returned in pooled mode when neither the worker queue
// nor the overflow ring can accept a callback.
var ErrQueueFull = errors.New("dispatch queue is full")

// ErrCallbackPanicked is recorded for callbacks that panicked. It is
// logged and counted, never returned to the notifier.
var ErrCallbackPanicked = errors.New("callback panicked during execution")
