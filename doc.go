/*
Package fernet is the bootstrap core of a micro web framework: it resolves
process configuration, activates manifest plugins, dispatches lifecycle
events, delegates each inbound request to a router capability, and guarantees
that every failure along that path still produces a well-formed response.

# Overview

Fernet deliberately owns only the orchestration. Routing, dependency lookup,
request/response transport and view rendering are external collaborators
consumed through small capability interfaces (Router, RequestSource,
ServiceRegistry, Component).

# Usage

A minimal entrypoint:

	package main

	import (
		"net/http"

		"github.com/fernet-go/fernet"
		"github.com/go-chi/chi/v5"
	)

	func main() {
		app, err := fernet.New(
			fernet.WithName("my-app"),
			fernet.WithConfigFile("config.json"),
			fernet.WithRouter(fernet.NewMuxRouter(func(mux *chi.Mux) {
				mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("Hello Fernet!"))
				})
			})),
		)
		if err != nil {
			panic(err)
		}

		http.ListenAndServe(":9999", fernet.Handler(app))
	}

# Components

  - Application: the explicit framework instance holding options, events,
    registries and the logger.
  - OptionSet: the resolved option table (defaults, config file, overrides,
    FERNET_ environment overlay).
  - EventBus: ordered synchronous dispatch over the fixed lifecycle events
    onLoad, onRequest, onResponse and onError.
  - PluginRegistry / LoadPlugins: explicit plugin registration plus
    best-effort activation from a JSON manifest.
  - Pipeline: the request lifecycle; Run always returns exactly one response.
  - Presenter: fail-safe error rendering with a plain-text last resort.
*/
package fernet
