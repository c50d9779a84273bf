package sched

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchConfig watches the config file and calls apply with each cleanly
// parsed version. Events are debounced so editors that write in several
// steps trigger a single reload. Parse failures are logged and skipped;
// the running config stays in effect.
//
// The watcher is attached to the file's directory rather than the file
// itself, since many editors replace the file on save.
func WatchConfig(path string, log zerolog.Logger, apply func(Config)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	file := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			cfg, err := Parse(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload skipped")
				return
			}
			if err := cfg.Validate(); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload skipped")
				return
			}
			log.Info().Str("path", path).Msg("config reloaded")
			apply(cfg)
		})
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != file {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(werr).Msg("config watcher error")
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}, nil
}
