package bindz

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchKeymap applies the keymap at path to the listener, then re-applies
// it whenever the file is written or replaced, until ctx is done. A file
// that fails to parse is logged and skipped; the previous chords stay in
// effect.
//
// The parent directory is watched rather than the file so editors that
// save through rename are picked up.
//
//	go keys.WatchKeymap(ctx, "keys.yaml", tcellkeys.Namer)
func (l *KeyListener) WatchKeymap(ctx context.Context, path string, namer KeyNamer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := FormatFromPath(abs); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	log := l.reg.log.With().
		Str("handle", l.handle).
		Str("path", abs).
		Logger()

	reload := func() {
		if err := l.LoadKeymap(abs, namer); err != nil {
			log.Warn().Err(err).Msg("keymap reload failed")
			return
		}
		log.Debug().Msg("keymap reloaded")
	}
	reload()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("keymap watch error")
		}
	}
}
