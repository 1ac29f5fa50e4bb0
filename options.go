package fernet

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// OptionKind declares how an option's value should be interpreted. The kind
// lives on the declaration, not the stored value: env overlays are coerced
// against the declared default's kind.
type OptionKind int

const (
	KindString OptionKind = iota
	KindBool
	KindNumber
	KindList
	KindLevel
	KindComponent
)

// OptionDef declares a known option: its name, kind and process default.
type OptionDef struct {
	Name    string
	Kind    OptionKind
	Default interface{}
}

// DefaultEnvPrefix marks environment variables that overlay options.
const DefaultEnvPrefix = "FERNET_"

// DefaultOptions are the options the framework itself understands. Plugins
// may contribute more at runtime via Set/Append; those land in the open
// extension slots without a declared kind.
func DefaultOptions() []OptionDef {
	return []OptionDef{
		{Name: "devMode", Kind: KindBool, Default: false},
		{Name: "enableJs", Kind: KindBool, Default: true},
		{Name: "urlPrefix", Kind: KindString, Default: "/"},
		{Name: "componentNamespaces", Kind: KindList, Default: []string{}},
		{Name: "logPath", Kind: KindString, Default: ""},
		{Name: "logName", Kind: KindString, Default: "fernet"},
		{Name: "logLevel", Kind: KindLevel, Default: "info"},
		{Name: "error404", Kind: KindComponent, Default: "error404"},
		{Name: "error500", Kind: KindComponent, Default: "error500"},
		{Name: "rootPath", Kind: KindString, Default: "."},
		{Name: "routingFile", Kind: KindString, Default: "routing.json"},
		{Name: "pluginFile", Kind: KindString, Default: "plugins.json"},
	}
}

// None is the sentinel Get returns for options that were never declared nor
// set. Lookups log and degrade, they never fail.
var None = noneValue{}

type noneValue struct{}

func (noneValue) String() string { return "<none>" }

// OptionSet is the resolved option table: declared options with kinds plus an
// open extension map for dynamically contributed entries (env overlays with
// no declared default, plugin-set keys).
type OptionSet struct {
	defs   map[string]OptionDef
	values map[string]interface{}
	extra  map[string]interface{}

	logger *logrus.Logger
	mu     sync.RWMutex
}

// ResolveOptions merges defaults, caller overrides and the environment
// overlay, in that order, into one OptionSet.
//
// Environment entries are "KEY=value" strings (os.Environ form). Entries
// whose key carries the prefix overlay the option named by the remainder,
// converted from UPPER_SNAKE to the table's camelCase convention. When the
// declared default is boolean the value is parsed with the conventional
// truthy tokens; otherwise the raw string is stored. A prefixed key with no
// declared default is stored raw in the extension map.
func ResolveOptions(defaults []OptionDef, overrides map[string]interface{}, environ []string, prefix string) *OptionSet {
	set := &OptionSet{
		defs:   make(map[string]OptionDef, len(defaults)),
		values: make(map[string]interface{}, len(defaults)),
		extra:  map[string]interface{}{},
		logger: logrus.StandardLogger(),
	}

	// Config-file loaders lowercase their keys, so overrides match declared
	// names case-insensitively.
	canonical := make(map[string]string, len(defaults))

	for _, def := range defaults {
		set.defs[def.Name] = def
		set.values[def.Name] = def.Default
		canonical[strings.ToLower(def.Name)] = def.Name
	}

	for name, value := range overrides {
		if declared, ok := canonical[strings.ToLower(name)]; ok {
			set.values[declared] = value
		} else {
			set.extra[name] = value
		}
	}

	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}

		name := CamelCase(strings.TrimPrefix(key, prefix))

		def, declared := set.defs[name]
		if !declared {
			set.extra[name] = value
			continue
		}

		if def.Kind == KindBool {
			set.values[name] = truthy(value)
		} else {
			set.values[name] = value
		}
	}

	return set
}

// SetLogger swaps the logger used for unknown-key warnings.
func (o *OptionSet) SetLogger(logger *logrus.Logger) {
	o.mu.Lock()
	o.logger = logger
	o.mu.Unlock()
}

// Get returns the stored value for name. Unknown names log a warning and
// return the None sentinel; Get never fails.
func (o *OptionSet) Get(name string) interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if value, ok := o.values[name]; ok {
		return value
	}
	if value, ok := o.extra[name]; ok {
		return value
	}

	o.logger.WithField("option", name).Warnf("undefined option %q", name)
	return None
}

// GetString returns the option coerced to a string ("" for None).
func (o *OptionSet) GetString(name string) string {
	value := o.Get(name)
	if value == None {
		return ""
	}
	return cast.ToString(value)
}

// GetBool returns the option coerced to a bool (false for None).
func (o *OptionSet) GetBool(name string) bool {
	value := o.Get(name)
	if value == None {
		return false
	}
	if s, ok := value.(string); ok {
		return truthy(s)
	}
	return cast.ToBool(value)
}

// GetStrings returns the option as a string list (nil for None).
func (o *OptionSet) GetStrings(name string) []string {
	value := o.Get(name)
	if value == None {
		return nil
	}
	return cast.ToStringSlice(value)
}

// Set stores value under name, in the declared slot when one exists,
// otherwise in the extension map.
func (o *OptionSet) Set(name string, value interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, declared := o.defs[name]; declared {
		o.values[name] = value
		return
	}
	o.extra[name] = value
}

// Append appends value to the list stored under name, creating the list if
// the slot is absent and lifting a scalar slot into a list first.
func (o *OptionSet) Append(name string, value interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	slot := o.values
	if _, declared := o.defs[name]; !declared {
		slot = o.extra
	}

	current, ok := o.values[name]
	if !ok {
		if current, ok = o.extra[name]; !ok {
			slot[name] = []interface{}{value}
			return
		}
	}

	switch existing := current.(type) {
	case []interface{}:
		slot[name] = append(existing, value)
	case []string:
		if s, isString := value.(string); isString {
			slot[name] = append(existing, s)
			return
		}
		lifted := make([]interface{}, 0, len(existing)+1)
		for _, item := range existing {
			lifted = append(lifted, item)
		}
		slot[name] = append(lifted, value)
	default:
		slot[name] = []interface{}{existing, value}
	}
}

// Each calls fn for every declared and extension entry. Iteration order is
// unspecified.
func (o *OptionSet) Each(fn func(name string, value interface{})) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for name, value := range o.values {
		fn(name, value)
	}
	for name, value := range o.extra {
		fn(name, value)
	}
}

