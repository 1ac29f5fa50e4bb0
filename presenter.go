package fernet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fernet-go/fernet/errors"
)

// Component is a renderable unit resolved by identifier. Error views are
// components; the framework treats them as opaque renderables and owns no
// templating of its own.
type Component interface {
	Render() (string, error)
}

// ComponentFunc adapts a function into a Component.
type ComponentFunc func() (string, error)

func (fn ComponentFunc) Render() (string, error) { return fn() }

// ComponentFactory builds a component for a concrete error condition.
// Construction may fail; the presenter treats that the same as a render
// failure.
type ComponentFactory func(cause error) (Component, error)

// ComponentRegistry resolves component identifiers to factories.
type ComponentRegistry struct {
	factories map[string]ComponentFactory
	mu        sync.RWMutex
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{factories: make(map[string]ComponentFactory)}
}

func (r *ComponentRegistry) Register(identifier string, factory ComponentFactory) *ComponentRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[identifier] = factory
	return r
}

func (r *ComponentRegistry) Lookup(identifier string) (ComponentFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[identifier]
	return factory, ok
}

// Presenter renders an error condition into response body content, degrading
// gracefully when rendering itself fails.
type Presenter struct {
	app *Application
}

func NewPresenter(app *Application) *Presenter {
	return &Presenter{app: app}
}

// Present dispatches onError with the cause, then renders a body for it.
//
// The onError dispatch is not guarded: a failing subscriber aborts
// presentation and the error returns to the caller. Everything after the
// dispatch is fail-safe: if the configured error view cannot be built or
// rendered (error return or panic), the failure is logged at error level and
// a plain-text fallback body is returned instead.
func (p *Presenter) Present(cause error, kind string) (string, error) {
	if err := p.app.Events().Dispatch(p.app, EventError, cause); err != nil {
		return "", err
	}

	body, err := p.render(cause, kind)
	if err != nil {
		wrapped := errors.Unwind(errors.Wrap(errors.ErrorPresentation, err))
		p.app.Logger().WithFields(wrapped.ToLogFields()).
			Errorf("error view %s failed: %v", kind, err)

		return "Error: " + cause.Error(), nil
	}

	return body, nil
}

func (p *Presenter) render(cause error, kind string) (body string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error view panic: %v", r)
		}
	}()

	// Development mode shows the verbose diagnostic regardless of kind.
	if p.app.DevMode() {
		return diagnostic(cause), nil
	}

	identifier := p.app.Options().GetString(kind)
	if identifier == "" {
		return "", fmt.Errorf("no error view configured under option %q", kind)
	}

	factory, ok := p.resolve(identifier)
	if !ok {
		return "", fmt.Errorf("error view component %q not registered", identifier)
	}

	component, err := factory(cause)
	if err != nil {
		return "", err
	}

	return component.Render()
}

// resolve tries the identifier directly, then under each configured component
// namespace.
func (p *Presenter) resolve(identifier string) (ComponentFactory, bool) {
	if factory, ok := p.app.Components().Lookup(identifier); ok {
		return factory, true
	}

	for _, namespace := range p.app.Options().GetStrings("componentNamespaces") {
		if factory, ok := p.app.Components().Lookup(namespace + "." + identifier); ok {
			return factory, true
		}
	}

	return nil, false
}

// diagnostic is the development-mode error view: everything we know about the
// failure, as plain text.
func diagnostic(cause error) string {
	var b strings.Builder

	e := errors.Unwind(cause)

	b.WriteString("=== fernet error ===\n")
	fmt.Fprintf(&b, "message: %s\n", cause.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, "key:     %s\n", e.Key)
	}
	if e.Caller != "" {
		fmt.Fprintf(&b, "caller:  %s\n", e.Caller)
	}
	if e.Err != nil && e.Err.Error() != cause.Error() {
		fmt.Fprintf(&b, "cause:   %s\n", e.Err.Error())
	}
	for key, value := range e.Data {
		fmt.Fprintf(&b, "data:    %s=%v\n", key, value)
	}

	return b.String()
}
