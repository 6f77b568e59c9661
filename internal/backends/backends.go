// Package backends keeps the registry of numeric backends and selects one at
// startup from configuration.
//
// The configuration string has the format "<backend_name>[:<backend_configuration>]".
// The "<backend_name>" is the name of a registered backend (e.g.: "cpu") and
// "<backend_configuration>" is passed along to that backend's constructor.
package backends

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tenalg/internal/tensor"
)

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) (tensor.Backend, error)

var (
	mu                     sync.RWMutex
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a constructor that takes as input a configuration string that is
// passed along to the backend.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// List returns the names of the registered backends, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig is the default backend configuration, used when TENALG_BACKEND is not set.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// EnvBackend is the environment variable with the default backend configuration to use.
const EnvBackend = "TENALG_BACKEND"

// New returns a new default Backend.
//
// The default is:
//
// 1. The environment TENALG_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
func New() (tensor.Backend, error) {
	if config, found := os.LookupEnv(EnvBackend); found {
		return NewWithConfig(config)
	}
	return NewWithConfig(DefaultConfig)
}

// MustNew is like New, but panics on error.
func MustNew() tensor.Backend {
	b, err := New()
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return b
}

// NewWithConfig creates the backend described by config, formatted as
// "<backend_name>[:<backend_configuration>]". An empty backend name selects the
// first registered backend.
func NewWithConfig(config string) (tensor.Backend, error) {
	mu.RLock()
	if len(registeredConstructors) == 0 {
		mu.RUnlock()
		return nil, errors.New(`no registered backends -- maybe import them with import _ "github.com/born-ml/tenalg/backend/all"?`)
	}
	backendName, backendConfig := config, ""
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	if backendName == "" {
		backendName = firstRegistered
	}
	constructor, found := registeredConstructors[backendName]
	mu.RUnlock()
	if !found {
		return nil, errors.Errorf("can't find backend %q for configuration %q given, registered backends: %v",
			backendName, config, List())
	}

	b, err := constructor(backendConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create backend %q", backendName)
	}
	klog.V(1).Infof("tenalg: using backend %q (config %q)", b.Name(), backendConfig)
	return b, nil
}
