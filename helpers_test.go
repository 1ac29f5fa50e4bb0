package fernet

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds an application with a captured logger and no
// real environment, so tests inject their own overlay entries.
func newTestApplication(t *testing.T, opts ...Option) (*Application, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts = append([]Option{
		WithLogger(logger),
		WithEnviron([]string{}),
		WithOverrides(map[string]interface{}{
			// keep the plugin loader away from any real plugins.json
			"pluginFile": "plugins-test-missing.json",
			"rootPath":   t.TempDir(),
		}),
	}, opts...)

	app, err := New(opts...)
	require.NoError(t, err)

	return app, hook
}

func staticComponent(body string) ComponentFactory {
	return func(cause error) (Component, error) {
		return ComponentFunc(func() (string, error) { return body, nil }), nil
	}
}
