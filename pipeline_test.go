package fernet

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRequest(path string) RequestSource {
	return RequestSourceFunc(func() (*http.Request, error) {
		return httptest.NewRequest(http.MethodGet, path, nil), nil
	})
}

func okRouter(body string) Router {
	return RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
		return RouteOK(NewResponse().WriteString(body))
	})
}

func TestPipelineRunSuccess(t *testing.T) {
	app, _ := newTestApplication(t,
		WithRouter(okRouter("hello")),
		WithRequestSource(fixedRequest("/hello")))

	var responseEvents int
	require.NoError(t, app.On(EventResponse, func(a *Application, arg interface{}) error {
		responseEvents++
		_, ok := arg.(*Response)
		assert.True(t, ok, "onResponse receives the response")
		return nil
	}))

	response := NewPipeline(app).Run("/hello")

	require.NotNil(t, response)
	assert.Equal(t, http.StatusOK, response.Status())
	assert.Equal(t, "hello", string(response.Body()))
	assert.Equal(t, 1, responseEvents, "onResponse fires exactly once before Run returns")
}

func TestPipelineRunFinalizesResponse(t *testing.T) {
	app, _ := newTestApplication(t,
		WithRouter(okRouter("<html></html>")),
		WithRequestSource(fixedRequest("/")))

	response := NewPipeline(app).Run("/")

	assert.Equal(t, strconv.Itoa(len("<html></html>")), response.Headers().Get("Content-Length"))
	assert.NotEmpty(t, response.Headers().Get("Content-Type"))
}

func TestPipelineRunNotFound(t *testing.T) {
	app, _ := newTestApplication(t,
		WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
			return RouteNotFound(nil)
		})),
		WithRequestSource(fixedRequest("/ghost")))

	app.Components().Register("error404", staticComponent("custom 404"))

	response := NewPipeline(app).Run("/ghost")

	assert.Equal(t, http.StatusNotFound, response.Status())
	assert.Equal(t, "custom 404", string(response.Body()))
}

func TestPipelineRunFault(t *testing.T) {
	app, hook := newTestApplication(t,
		WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
			return RouteFault(stderrors.New("handler blew up"))
		})),
		WithRequestSource(fixedRequest("/boom")))

	app.Components().Register("error500", staticComponent("custom 500"))

	response := NewPipeline(app).Run("/boom")

	assert.Equal(t, http.StatusInternalServerError, response.Status())
	assert.Equal(t, "custom 500", string(response.Body()))

	var faultLogged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			faultLogged = true
		}
	}
	assert.True(t, faultLogged, "faults are logged at error level")
}

func TestPipelineRunManifestFailure(t *testing.T) {
	app, _ := newTestApplication(t)

	require.NoError(t, os.WriteFile(app.PluginManifestPath(), []byte(`{"nope": 1}`), 0o644))

	pipeline := NewPipeline(app).WithSource(fixedRequest("/"))
	response := pipeline.Run("/")

	require.NotNil(t, response, "a startup failure still yields a response")
	assert.Equal(t, http.StatusInternalServerError, response.Status())
}

func TestPipelineRunRequestLifecycle(t *testing.T) {
	var requestSeen *http.Request

	app, _ := newTestApplication(t,
		WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
			// the request must already be resolvable as a service here
			service, ok := app.Services().Get(ServiceRequest)
			assert.True(t, ok)
			assert.Same(t, req, service)
			return RouteOK(NewResponse())
		})),
		WithRequestSource(fixedRequest("/lifecycle")))

	require.NoError(t, app.On(EventRequest, func(a *Application, arg interface{}) error {
		requestSeen, _ = arg.(*http.Request)
		return nil
	}))

	NewPipeline(app).Run("/lifecycle")

	require.NotNil(t, requestSeen, "onRequest fires with the inbound request")
	assert.Equal(t, "/lifecycle", requestSeen.URL.Path)
}

func TestPipelineRunLoadDispatch(t *testing.T) {
	app, _ := newTestApplication(t,
		WithRouter(okRouter("ok")),
		WithRequestSource(fixedRequest("/")))

	var loads int
	require.NoError(t, app.On(EventLoad, func(a *Application, arg interface{}) error {
		loads++
		assert.Same(t, app, arg)
		return nil
	}))

	pipeline := NewPipeline(app)
	pipeline.Run("/")
	pipeline.Run("/")

	assert.Equal(t, 1, loads, "onLoad fires once per application lifetime")
}

func TestPipelineRunFailingSubscribers(t *testing.T) {
	t.Run("failing onRequest diverts to the error branch", func(t *testing.T) {
		app, _ := newTestApplication(t,
			WithRouter(okRouter("never")),
			WithRequestSource(fixedRequest("/")))

		require.NoError(t, app.On(EventRequest, func(*Application, interface{}) error {
			return stderrors.New("listener broke")
		}))

		response := NewPipeline(app).Run("/")

		assert.Equal(t, http.StatusInternalServerError, response.Status())
		assert.NotEqual(t, "never", string(response.Body()))
	})

	t.Run("broken onError subscriber still yields the plaintext fallback", func(t *testing.T) {
		app, _ := newTestApplication(t,
			WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
				return RouteFault(stderrors.New("primary failure"))
			})),
			WithRequestSource(fixedRequest("/")))

		require.NoError(t, app.On(EventError, func(*Application, interface{}) error {
			return stderrors.New("monitoring also broke")
		}))

		response := NewPipeline(app).Run("/")

		require.NotNil(t, response)
		assert.Equal(t, http.StatusInternalServerError, response.Status())
		assert.Equal(t, "Error: primary failure", string(response.Body()))
	})
}

func TestPipelineRunPanicRecovery(t *testing.T) {
	tests := []struct {
		name string
		wire func(t *testing.T, app *Application)
	}{
		{
			name: "panicking onRequest subscriber",
			wire: func(t *testing.T, app *Application) {
				require.NoError(t, app.On(EventRequest, func(*Application, interface{}) error {
					panic("listener lost its mind")
				}))
			},
		},
		{
			name: "panicking router",
			wire: func(t *testing.T, app *Application) {
				app.router = RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
					panic("router lost its mind")
				})
			},
		},
		{
			name: "panicking request source",
			wire: func(t *testing.T, app *Application) {
				app.source = RequestSourceFunc(func() (*http.Request, error) {
					panic("source lost its mind")
				})
			},
		},
		{
			name: "panicking onResponse subscriber",
			wire: func(t *testing.T, app *Application) {
				require.NoError(t, app.On(EventResponse, func(*Application, interface{}) error {
					panic("listener lost its mind")
				}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApplication(t,
				WithRouter(okRouter("never")),
				WithRequestSource(fixedRequest("/")))

			tt.wire(t, app)

			var response *Response
			assert.NotPanics(t, func() {
				response = NewPipeline(app).Run("/")
			})

			require.NotNil(t, response)
			assert.Equal(t, http.StatusInternalServerError, response.Status())
			assert.NotEqual(t, "never", string(response.Body()))
		})
	}

	t.Run("panicking onError subscriber still yields the plaintext fallback", func(t *testing.T) {
		app, _ := newTestApplication(t,
			WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
				return RouteFault(stderrors.New("primary failure"))
			})),
			WithRequestSource(fixedRequest("/")))

		require.NoError(t, app.On(EventError, func(*Application, interface{}) error {
			panic("monitoring lost its mind")
		}))

		var response *Response
		assert.NotPanics(t, func() {
			response = NewPipeline(app).Run("/")
		})

		require.NotNil(t, response)
		assert.Equal(t, http.StatusInternalServerError, response.Status())
		assert.Equal(t, "Error: primary failure", string(response.Body()))
	})
}

func TestRouteFaultNilError(t *testing.T) {
	result := RouteFault(nil)

	assert.Equal(t, RouteStatusFault, result.Status())
	require.Error(t, result.Err())

	app, _ := newTestApplication(t,
		WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
			return RouteFault(nil)
		})),
		WithRequestSource(fixedRequest("/")))

	var response *Response
	assert.NotPanics(t, func() {
		response = NewPipeline(app).Run("/")
	})

	require.NotNil(t, response)
	assert.Equal(t, http.StatusInternalServerError, response.Status())
}

func TestPipelineRunDegenerateWiring(t *testing.T) {
	t.Run("nil router yields a 500", func(t *testing.T) {
		app, _ := newTestApplication(t, WithRequestSource(fixedRequest("/")))

		response := NewPipeline(app).Run("/")

		assert.Equal(t, http.StatusInternalServerError, response.Status())
	})

	t.Run("nil request source yields a 500", func(t *testing.T) {
		app, _ := newTestApplication(t, WithRouter(okRouter("ok")))

		response := NewPipeline(app).Run("/")

		assert.Equal(t, http.StatusInternalServerError, response.Status())
	})

	t.Run("router returning an empty ok result yields a 500", func(t *testing.T) {
		app, _ := newTestApplication(t,
			WithRouter(RouterFunc(func(app *Application, target string, req *http.Request) RouteResult {
				return RouteOK(nil)
			})),
			WithRequestSource(fixedRequest("/")))

		response := NewPipeline(app).Run("/")

		assert.Equal(t, http.StatusInternalServerError, response.Status())
	})
}

func TestResponseFinalize(t *testing.T) {
	t.Run("http/1.0 requests get connection close", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.ProtoMajor, req.ProtoMinor = 1, 0

		response := NewResponse().WriteString("x").finalize(req)

		assert.Equal(t, "close", response.Headers().Get("Connection"))
	})

	t.Run("existing content type is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		response := NewResponse().
			SetHeader("Content-Type", "application/json").
			WriteString("{}").
			finalize(req)

		assert.Equal(t, "application/json", response.Headers().Get("Content-Type"))
	})

	t.Run("zero status becomes 200", func(t *testing.T) {
		response := (&Response{headers: http.Header{}}).finalize(nil)
		assert.Equal(t, http.StatusOK, response.Status())
	})
}

func TestPipelineManifestPathUsesOptions(t *testing.T) {
	dir := t.TempDir()
	app, _ := newTestApplication(t, WithOverrides(map[string]interface{}{
		"rootPath":   dir,
		"pluginFile": "custom.json",
	}))

	assert.Equal(t, filepath.Join(dir, "custom.json"), app.PluginManifestPath())
}
