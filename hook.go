package bindz

// Hook is a handle to one callback registration. It lets the caller
// remove that registration without touching others that share the same
// function, key or bind.
//
// Thread Safety:
// Unhook is safe to call concurrently with dispatch, but each handle
// should be unhooked once. Later calls return ErrAlreadyUnhooked.
//
// Example:
//
//	hook, err := manager.Hook(EventQuit, saveOnQuit)
//	if err != nil {
//	    return err
//	}
//	defer hook.Unhook()
type Hook struct {
	// id of the registration, mostly useful in logs.
	id string

	// unhook performs the removal; cleared after the first call.
	unhook func() error
}

// ID returns the registration id.
func (h *Hook) ID() string {
	return h.id
}

// Unhook removes this registration.
//
// Returns:
//   - nil: registration removed
//   - ErrAlreadyUnhooked: handle already used or zero value
//   - ErrHookNotFound: registration was purged or its bind removed
func (h *Hook) Unhook() error {
	if h.unhook == nil {
		return ErrAlreadyUnhooked
	}
	err := h.unhook()
	h.unhook = nil
	return err
}
