package fernet

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Application is the framework instance: the resolved option table, the
// event bus, the plugin/component/service registries and the process logger,
// created once at process start and threaded explicitly into every operation
// that needs it. There is no implicit global lookup.
//
// The application is process-wide shared state with no per-run locking; the
// host process model is responsible for serializing runs against one
// instance or isolating instances per worker.
type Application struct {
	Name      string
	StartedAt time.Time

	options    *OptionSet
	events     *EventBus
	plugins    *PluginRegistry
	components *ComponentRegistry
	services   *ServiceRegistry
	logger     *log.Logger

	router Router
	source RequestSource

	// construction inputs, consumed by New
	configFile string
	overrides  map[string]interface{}
	environ    []string
	envPrefix  string
	defaults   []OptionDef

	loadOnce sync.Once
	loadErr  error
}

// Option configures an Application under construction.
type Option func(*Application) error

// WithName sets the application name used in logs and the CLI.
func WithName(name string) Option {
	return func(a *Application) error {
		a.Name = name
		return nil
	}
}

// WithOverrides supplies caller option overrides; they win over config-file
// values and defaults, and lose to the environment overlay.
func WithOverrides(overrides map[string]interface{}) Option {
	return func(a *Application) error {
		for name, value := range overrides {
			a.overrides[name] = value
		}
		return nil
	}
}

// WithConfigFile points at a JSON config file whose settings act as
// overrides. A missing file is ignored.
func WithConfigFile(path string) Option {
	return func(a *Application) error {
		a.configFile = path
		return nil
	}
}

// WithEnviron replaces the environment snapshot used for the option overlay.
// Defaults to os.Environ(); tests inject their own entries.
func WithEnviron(environ []string) Option {
	return func(a *Application) error {
		a.environ = environ
		return nil
	}
}

// WithEnvPrefix replaces the DefaultEnvPrefix for the overlay.
func WithEnvPrefix(prefix string) Option {
	return func(a *Application) error {
		a.envPrefix = prefix
		return nil
	}
}

// WithOptionDefs declares additional options (with kinds and defaults) on top
// of DefaultOptions, for hosts that extend the framework.
func WithOptionDefs(defs ...OptionDef) Option {
	return func(a *Application) error {
		a.defaults = append(a.defaults, defs...)
		return nil
	}
}

// WithRouter binds the routing capability the pipeline delegates to.
func WithRouter(router Router) Option {
	return func(a *Application) error {
		a.router = router
		return nil
	}
}

// WithRequestSource binds the host-environment capability the pipeline
// obtains the inbound request from.
func WithRequestSource(source RequestSource) Option {
	return func(a *Application) error {
		a.source = source
		return nil
	}
}

// WithPluginRegistry replaces the (empty) plugin registry.
func WithPluginRegistry(registry *PluginRegistry) Option {
	return func(a *Application) error {
		a.plugins = registry
		return nil
	}
}

// WithComponents replaces the (empty) component registry.
func WithComponents(components *ComponentRegistry) Option {
	return func(a *Application) error {
		a.components = components
		return nil
	}
}

// WithLogger replaces the logger instead of building one from the options.
func WithLogger(logger *log.Logger) Option {
	return func(a *Application) error {
		a.logger = logger
		return nil
	}
}

// New constructs an Application: it resolves options (defaults, config file,
// overrides, env overlay), builds the logger from them, and wires the event
// bus and registries. New does not load plugins; that happens on the first
// pipeline run so manifest failures surface through the run guard.
func New(opts ...Option) (*Application, error) {
	app := &Application{
		StartedAt:  time.Now(),
		overrides:  map[string]interface{}{},
		environ:    os.Environ(),
		envPrefix:  DefaultEnvPrefix,
		defaults:   DefaultOptions(),
		plugins:    NewPluginRegistry(),
		components: NewComponentRegistry(),
		services:   NewServiceRegistry(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	overrides := map[string]interface{}{}
	if app.configFile != "" {
		settings, err := LoadConfigFile(app.configFile)
		if err != nil {
			return nil, err
		}
		for name, value := range settings {
			overrides[name] = value
		}
	}
	for name, value := range app.overrides {
		overrides[name] = value
	}

	app.options = ResolveOptions(app.defaults, overrides, app.environ, app.envPrefix)

	if app.logger == nil {
		app.logger = NewLogger(app.options)
	}
	app.options.SetLogger(app.logger)
	app.events = NewEventBus(app.logger)

	return app, nil
}

func (a *Application) Options() *OptionSet            { return a.options }
func (a *Application) Events() *EventBus              { return a.events }
func (a *Application) Plugins() *PluginRegistry       { return a.plugins }
func (a *Application) Components() *ComponentRegistry { return a.components }
func (a *Application) Services() *ServiceRegistry     { return a.services }
func (a *Application) Logger() *log.Logger            { return a.logger }
func (a *Application) Router() Router                 { return a.router }

// DevMode reports whether the application runs with verbose error output.
func (a *Application) DevMode() bool { return a.options.GetBool("devMode") }

// On subscribes fn to one of the fixed lifecycle events.
func (a *Application) On(event string, fn EventFunc) error {
	return a.events.Subscribe(event, fn)
}

// PluginManifestPath is where the loader looks for the plugin manifest:
// the pluginFile option resolved against rootPath.
func (a *Application) PluginManifestPath() string {
	return filepath.Join(a.options.GetString("rootPath"), a.options.GetString("pluginFile"))
}

// load activates manifest plugins and dispatches onLoad, once per
// application lifetime. The outcome is sticky: a manifest or onLoad failure
// reports the same error to every subsequent run.
func (a *Application) load() error {
	a.loadOnce.Do(func() {
		if err := LoadPlugins(a, a.PluginManifestPath()); err != nil {
			a.loadErr = err
			return
		}
		a.loadErr = a.events.Dispatch(a, EventLoad, a)
	})

	return a.loadErr
}
