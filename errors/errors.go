package errors

import "net/http"

var (
	// ErrorGeneric is the catch-all fault; the pipeline answers it with a 500.
	ErrorGeneric = Error{Key: "ERROR.UNKNOWN", Status: http.StatusInternalServerError}

	// ErrorRouteNotFound - the router could not resolve the request.
	ErrorRouteNotFound = Error{Key: "ERROR.ROUTE_NOT_FOUND", Status: http.StatusNotFound}

	// ErrorPluginManifest - plugin manifest present but malformed; fatal to startup.
	ErrorPluginManifest = Error{Key: "ERROR.PLUGIN_MANIFEST", Status: http.StatusInternalServerError}

	// ErrorUnknownEvent - subscribe/dispatch against an event outside the fixed set.
	ErrorUnknownEvent = Error{Key: "ERROR.UNKNOWN_EVENT"}

	// ErrorUnknownOption - lookup of an option that was never declared or set.
	// Logged and swallowed by the option table, never raised.
	ErrorUnknownOption = Error{Key: "ERROR.UNKNOWN_OPTION"}

	// ErrorPresentation - an error component failed to build or render.
	ErrorPresentation = Error{Key: "ERROR.PRESENTATION", Status: http.StatusInternalServerError}
)
