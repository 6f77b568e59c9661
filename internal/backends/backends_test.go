package backends

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tenalg/internal/tensor"
)

// resetRegistry clears the registry for the duration of a test.
func resetRegistry(t *testing.T) {
	t.Helper()
	mu.Lock()
	savedConstructors, savedFirst, savedDefault := registeredConstructors, firstRegistered, DefaultConfig
	registeredConstructors, firstRegistered, DefaultConfig = make(map[string]Constructor), "", ""
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registeredConstructors, firstRegistered, DefaultConfig = savedConstructors, savedFirst, savedDefault
		mu.Unlock()
	})
}

// namedMock is a MockBackend reporting the configuration it was built with.
type namedMock struct {
	*tensor.MockBackend
	name string
}

func (m namedMock) Name() string { return m.name }

func registerMock(name string, gotConfig *string) {
	Register(name, func(config string) (tensor.Backend, error) {
		if gotConfig != nil {
			*gotConfig = config
		}
		return namedMock{MockBackend: tensor.NewMockBackend(), name: name}, nil
	})
}

func TestNoBackends(t *testing.T) {
	resetRegistry(t)
	_, err := NewWithConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registered backends")
}

func TestFirstRegisteredIsDefault(t *testing.T) {
	resetRegistry(t)
	t.Setenv(EnvBackend, "")
	registerMock("first", nil)
	registerMock("second", nil)

	b, err := New()
	require.NoError(t, err)
	assert.Equal(t, "first", b.Name())
	assert.Equal(t, []string{"first", "second"}, List())
}

func TestSelectionOrder(t *testing.T) {
	resetRegistry(t)
	registerMock("first", nil)
	registerMock("second", nil)
	registerMock("third", nil)

	DefaultConfig = "second"
	b, err := New()
	require.NoError(t, err)
	assert.Equal(t, "second", b.Name(), "DefaultConfig applies without the environment variable")

	t.Setenv(EnvBackend, "third")
	b, err = New()
	require.NoError(t, err)
	assert.Equal(t, "third", b.Name(), "environment variable wins over DefaultConfig")
}

func TestConfigIsForwarded(t *testing.T) {
	resetRegistry(t)
	var got string
	registerMock("mock", &got)

	_, err := NewWithConfig("mock:threads=4:extra")
	require.NoError(t, err)
	assert.Equal(t, "threads=4:extra", got)

	_, err = NewWithConfig(":opts")
	require.NoError(t, err)
	assert.Equal(t, "opts", got, "empty name selects the first registered backend")
}

func TestConstructorError(t *testing.T) {
	resetRegistry(t)
	cause := errors.New("device unavailable")
	Register("broken", func(string) (tensor.Backend, error) { return nil, cause })

	_, err := NewWithConfig("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), `failed to create backend "broken"`)
}

func TestUnknownBackend(t *testing.T) {
	resetRegistry(t)
	registerMock("mock", nil)

	_, err := NewWithConfig("missing:cfg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `can't find backend "missing"`)

	t.Setenv(EnvBackend, "missing")
	assert.Panics(t, func() { MustNew() })
}
