package fernet

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Handler adapts the pipeline to net/http: every inbound request becomes one
// pipeline run, and the produced Response is written back out. The path is
// passed to the router capability as the run target.
func Handler(app *Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		started := time.Now()

		pipeline := NewPipeline(app).WithSource(RequestSourceFunc(func() (*http.Request, error) {
			return r, nil
		}))

		response := pipeline.Run(r.URL.Path)

		headers := w.Header()
		for key, values := range response.Headers() {
			for _, value := range values {
				headers.Add(key, value)
			}
		}
		headers.Set("X-Request-Id", requestID)

		w.WriteHeader(response.Status())
		if r.Method != http.MethodHead {
			w.Write(response.Body())
		}

		app.Logger().WithFields(log.Fields{
			"http.request_id": requestID,
			"http.method":     r.Method,
			"http.path":       r.URL.Path,
			"http.status":     response.Status(),
			"duration":        time.Since(started),
		}).Info("request served")
	})
}

// MuxRouter adapts a chi mux into the Router capability. Matching stays
// chi's business; the adapter only classifies the outcome: no matching route
// is a miss, a panicking handler is a fault, anything else is the handler's
// response.
type MuxRouter struct {
	mux *chi.Mux
}

func NewMuxRouter(configure func(mux *chi.Mux)) *MuxRouter {
	mux := chi.NewRouter()
	if configure != nil {
		configure(mux)
	}
	return &MuxRouter{mux: mux}
}

func (m *MuxRouter) Route(app *Application, target string, req *http.Request) (result RouteResult) {
	defer func() {
		if r := recover(); r != nil {
			result = RouteFault(recoveredError(r))
		}
	}()

	rctx := chi.NewRouteContext()
	if !m.mux.Match(rctx, req.Method, req.URL.Path) {
		return RouteNotFound(nil)
	}

	capture := newResponseCapture()
	m.mux.ServeHTTP(capture, req)

	return RouteOK(capture.response())
}

func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{value: r}
}

type panicError struct{ value interface{} }

func (e *panicError) Error() string { return fmt.Sprintf("recovered panic: %v", e.value) }

// responseCapture collects a handler's output into a Response value.
type responseCapture struct {
	headers http.Header
	status  int
	body    bytes.Buffer
}

func newResponseCapture() *responseCapture {
	return &responseCapture{headers: http.Header{}, status: http.StatusOK}
}

func (c *responseCapture) Header() http.Header { return c.headers }

func (c *responseCapture) WriteHeader(status int) { c.status = status }

func (c *responseCapture) Write(b []byte) (int, error) { return c.body.Write(b) }

func (c *responseCapture) response() *Response {
	response := NewResponse().SetStatus(c.status).SetBody(c.body.Bytes())
	for key, values := range c.headers {
		for _, value := range values {
			response.Headers().Add(key, value)
		}
	}
	return response
}
