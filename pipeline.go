package fernet

import (
	"fmt"
	"net/http"

	"github.com/fernet-go/fernet/errors"
)

// RouteStatus tags a routing outcome explicitly; the pipeline matches on the
// tag instead of inspecting error types.
type RouteStatus int

const (
	RouteStatusOK RouteStatus = iota
	RouteStatusNotFound
	RouteStatusFault
)

// RouteResult is the router capability's answer: a response, a miss, or a
// fault with its cause.
type RouteResult struct {
	status   RouteStatus
	response *Response
	err      error
}

func (r RouteResult) Status() RouteStatus { return r.status }
func (r RouteResult) Response() *Response { return r.response }
func (r RouteResult) Err() error          { return r.err }

// RouteOK wraps a successful routing outcome.
func RouteOK(response *Response) RouteResult {
	return RouteResult{status: RouteStatusOK, response: response}
}

// RouteNotFound marks a request the router could not resolve.
func RouteNotFound(err error) RouteResult {
	if err == nil {
		err = errors.ErrorRouteNotFound.NewError(fmt.Errorf("route not found"))
	}
	return RouteResult{status: RouteStatusNotFound, err: err}
}

// RouteFault marks any other routing failure.
func RouteFault(err error) RouteResult {
	if err == nil {
		err = errors.ErrorGeneric.NewError(fmt.Errorf("unspecified routing fault"))
	}
	return RouteResult{status: RouteStatusFault, err: err}
}

// Router is the external routing capability: map one inbound request (plus
// the caller-supplied target) to a response. The framework never parses
// routes itself.
type Router interface {
	Route(app *Application, target string, req *http.Request) RouteResult
}

// RouterFunc adapts a function into a Router.
type RouterFunc func(app *Application, target string, req *http.Request) RouteResult

func (fn RouterFunc) Route(app *Application, target string, req *http.Request) RouteResult {
	return fn(app, target, req)
}

// RequestSource is the host-environment capability the pipeline obtains the
// inbound request from.
type RequestSource interface {
	Request() (*http.Request, error)
}

// RequestSourceFunc adapts a function into a RequestSource.
type RequestSourceFunc func() (*http.Request, error)

func (fn RequestSourceFunc) Request() (*http.Request, error) { return fn() }

// Pipeline runs one request lifecycle end to end: load plugins, dispatch
// onLoad, obtain the request, dispatch onRequest, register the request as a
// service, delegate to the router, dispatch onResponse, finalize. Any failure
// at any stage diverts to the error presenter; Run always returns a response
// and never lets a failure escape to the caller.
type Pipeline struct {
	app       *Application
	presenter *Presenter
	source    RequestSource
	router    Router
}

func NewPipeline(app *Application) *Pipeline {
	return &Pipeline{
		app:       app,
		presenter: NewPresenter(app),
		source:    app.source,
		router:    app.router,
	}
}

// WithSource overrides the request source for this pipeline only. The web
// adapter binds each inbound request this way.
func (p *Pipeline) WithSource(source RequestSource) *Pipeline {
	p.source = source
	return p
}

// Run processes one request against target and returns exactly one finalized
// response. A panic anywhere in the lifecycle — subscribers, the router, the
// request source — is recovered and diverted to the error branch.
func (p *Pipeline) Run(target string) (response *Response) {
	var req *http.Request

	defer func() {
		if r := recover(); r != nil {
			response = p.fail(recoveredError(r)).finalize(req)
		}
	}()

	response, req = p.run(target)
	return response.finalize(req)
}

func (p *Pipeline) run(target string) (*Response, *http.Request) {
	logger := p.app.Logger()

	logger.Debugf("pipeline: loading plugins")
	if err := p.app.load(); err != nil {
		return p.fail(err), nil
	}

	logger.Debugf("pipeline: obtaining request")
	if p.source == nil {
		return p.fail(fmt.Errorf("no request source bound")), nil
	}
	req, err := p.source.Request()
	if err != nil {
		return p.fail(err), nil
	}

	if err := p.app.Events().Dispatch(p.app, EventRequest, req); err != nil {
		return p.fail(err), req
	}

	p.app.Services().Set(ServiceRequest, req)

	if p.router == nil {
		return p.fail(fmt.Errorf("no router bound")), req
	}

	logger.Debugf("pipeline: routing %s %s", req.Method, req.URL.Path)
	result := p.router.Route(p.app, target, req)

	switch result.Status() {
	case RouteStatusOK:
		response := result.Response()
		if response == nil {
			return p.fail(fmt.Errorf("router returned an empty response")), req
		}

		if err := p.app.Events().Dispatch(p.app, EventResponse, response); err != nil {
			return p.fail(err), req
		}

		return response, req

	case RouteStatusNotFound:
		logger.WithField("path", req.URL.Path).Infof("route not found: %s", req.URL.Path)
		return p.present(result.Err(), "error404", http.StatusNotFound), req

	default:
		fault := errors.Unwind(result.Err())
		logger.WithFields(fault.ToLogFields()).Errorf("routing fault: %v", result.Err())
		return p.present(result.Err(), "error500", http.StatusInternalServerError), req
	}
}

// fail is the generic error branch for every non-routing failure (plugin
// manifest, load-phase dispatch, request source). Not-found conditions keep
// their 404 classification even on this path.
func (p *Pipeline) fail(err error) *Response {
	e := errors.Unwind(err)

	if e.Key == errors.ErrorRouteNotFound.Key {
		p.app.Logger().Infof("route not found: %v", err)
		return p.present(err, "error404", http.StatusNotFound)
	}

	p.app.Logger().WithFields(e.ToLogFields()).Errorf("pipeline failure: %v", err)
	return p.present(err, "error500", http.StatusInternalServerError)
}

// present synthesizes the error response. If presentation itself is stopped
// by a broken onError subscriber (error or panic), the pipeline falls back to
// the plain-text body on its own: Run must still return a response.
func (p *Pipeline) present(cause error, kind string, status int) *Response {
	body, err := p.safePresent(cause, kind)
	if err != nil {
		p.app.Logger().Errorf("onError dispatch failed while presenting: %v", err)
		body = "Error: " + cause.Error()
	}

	return NewResponse().SetStatus(status).SetBody([]byte(body))
}

func (p *Pipeline) safePresent(cause error, kind string) (body string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	return p.presenter.Present(cause, kind)
}
