// Package app assembles the session core into one explicit context object.
// Everything the command surface needs hangs off App; there are no
// package-level mutable globals.
package app

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/events"
	"github.com/chatforge/chatforge/internal/session"
)

// App owns the session store, the current settings profile, and the event
// broker collaborators subscribe to.
type App struct {
	Store  *session.Store
	Broker *events.Broker
	Logger *log.Logger

	mu           sync.RWMutex
	settings     config.Settings
	settingsPath string
}

// New wires an App from a settings profile. The store starts with one fresh
// active session.
func New(settings config.Settings, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}

	broker := events.NewBroker()
	store := session.NewStore(session.Options{
		Broker: broker,
		Logger: logger,
	})

	return &App{
		Store:    store,
		Broker:   broker,
		Logger:   logger,
		settings: settings.Repaired(),
	}
}

// PersistTo makes settings updates write back to the given file. An empty
// path keeps the profile in memory only.
func (a *App) PersistTo(path string) {
	a.mu.Lock()
	a.settingsPath = path
	a.mu.Unlock()
}

// Settings returns the current profile. The value is a copy; the profile is
// immutable until replaced by UpdateSettings.
func (a *App) Settings() config.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// UpdateSettings merges a partial update over the current profile and
// returns the replacement. Unknown keys are ignored, bad values repaired.
func (a *App) UpdateSettings(patch map[string]any) config.Settings {
	a.mu.Lock()
	a.settings = config.ApplyPartial(a.settings, patch)
	updated := a.settings
	path := a.settingsPath
	a.mu.Unlock()

	if path != "" {
		if err := config.Save(path, updated); err != nil {
			a.Logger.Warn("settings not persisted", "path", path, "err", err)
		}
	}

	a.Broker.Publish(events.SettingsUpdated, "", updated)
	return updated
}

// Submit sends a user message through the store under the current profile.
func (a *App) Submit(text string) (session.Handle, error) {
	return a.Store.SubmitUserMessage(text, a.Settings())
}

// Shutdown closes the event broker. Pending bot completions still fire; they
// just stop being observable.
func (a *App) Shutdown() {
	a.Broker.Shutdown()
}
