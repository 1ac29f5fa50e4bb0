package fernet

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fernet-go/fernet/errors"
)

// Bootstrap is the capability a plugin must expose to be activated. SetUp
// receives the live application and may subscribe to events, register
// services or mutate options; the loader has no further contract over what a
// plugin does.
type Bootstrap interface {
	SetUp(app *Application) error
}

// BootstrapFunc adapts a plain function into a Bootstrap.
type BootstrapFunc func(app *Application) error

func (fn BootstrapFunc) SetUp(app *Application) error { return fn(app) }

// PluginFactory produces a fresh plugin value for activation. Factories are
// deliberately untyped: the loader checks the product for the Bootstrap
// capability and skips anything that lacks it, so registering a
// not-yet-capable plugin is representable and harmless.
type PluginFactory func() interface{}

// PluginRegistry maps manifest identifiers to plugin factories. It replaces
// runtime name-convention discovery: plugins are registered explicitly at
// build time (or by an explicit discovery pass) before any manifest is
// loaded.
type PluginRegistry struct {
	factories map[string]PluginFactory
	mu        sync.RWMutex
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{factories: make(map[string]PluginFactory)}
}

// Register binds a manifest identifier to a factory. Later registrations
// under the same identifier win.
func (r *PluginRegistry) Register(identifier string, factory PluginFactory) *PluginRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[identifier] = factory
	return r
}

// RegisterBootstrap binds an identifier to a Bootstrap-conforming factory.
func (r *PluginRegistry) RegisterBootstrap(identifier string, factory func() Bootstrap) *PluginRegistry {
	return r.Register(identifier, func() interface{} { return factory() })
}

// Lookup returns the factory registered under identifier.
func (r *PluginRegistry) Lookup(identifier string) (PluginFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[identifier]
	return factory, ok
}

// Len returns the registered identifier count.
func (r *PluginRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.factories)
}

// Identifiers returns the registered identifiers, sorted.
func (r *PluginRegistry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identifiers := make([]string, 0, len(r.factories))
	for identifier := range r.factories {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)

	return identifiers
}

// LoadPlugins reads the plugin manifest at manifestPath and activates each
// listed plugin against app, in manifest order.
//
// A missing manifest is a no-op. A manifest that is not valid JSON, or whose
// top-level value is not an array of strings, fails with ErrorPluginManifest;
// that is a startup failure, not a per-request one. Identifiers with no
// registered factory, or whose product lacks the Bootstrap capability, are
// skipped: loading is best-effort per plugin.
func LoadPlugins(app *Application, manifestPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrorPluginManifest, err)
	}

	identifiers, err := decodeManifest(raw)
	if err != nil {
		return errors.Wrap(errors.ErrorPluginManifest,
			fmt.Errorf("plugin manifest %s: %w", manifestPath, err))
	}

	for _, identifier := range identifiers {
		factory, ok := app.Plugins().Lookup(identifier)
		if !ok {
			app.Logger().Debugf("plugin %s not registered, skipping", identifier)
			continue
		}

		bootstrap, ok := factory().(Bootstrap)
		if !ok {
			app.Logger().Debugf("plugin %s has no bootstrap capability, skipping", identifier)
			continue
		}

		app.Logger().Debugf("activating plugin %s", identifier)

		if err := bootstrap.SetUp(app); err != nil {
			return fmt.Errorf("plugin %s setup: %w", identifier, err)
		}
	}

	return nil
}

// decodeManifest enforces the manifest shape strictly: the top-level value
// must be an array and every entry a string. json.Unmarshal into a []string
// would let `null` and other degenerate documents through.
func decodeManifest(raw []byte) ([]string, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	entries, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level value must be an array, got %T", doc)
	}

	identifiers := make([]string, 0, len(entries))
	for i, entry := range entries {
		identifier, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d must be a string, got %T", i, entry)
		}
		identifiers = append(identifiers, identifier)
	}

	return identifiers, nil
}
