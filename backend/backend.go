// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend selects a numeric backend at startup.
//
// Backends register themselves when imported (see backend/all). The
// configuration has the format "<backend_name>[:<backend_configuration>]" and is
// read from the TENALG_BACKEND environment variable, then DefaultConfig. With
// neither set, the first registered backend is used.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tenalg/backend"
//	    _ "github.com/born-ml/tenalg/backend/all"
//	)
//
//	b, err := backend.New() // TENALG_BACKEND=gonum selects the gonum backend
package backend

import (
	"github.com/born-ml/tenalg/internal/backends"
	internaltensor "github.com/born-ml/tenalg/internal/tensor"
	"github.com/born-ml/tenalg/tensor"
)

// EnvBackend is the environment variable holding the backend configuration.
const EnvBackend = backends.EnvBackend

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) (tensor.Backend, error)

// SetDefaultConfig sets the configuration used when TENALG_BACKEND is not set.
func SetDefaultConfig(config string) {
	backends.DefaultConfig = config
}

// Register makes a backend available under name.
func Register(name string, constructor Constructor) {
	backends.Register(name, func(config string) (internaltensor.Backend, error) {
		return constructor(config)
	})
}

// List returns the names of the registered backends, sorted.
func List() []string {
	return backends.List()
}

// New returns the backend selected by configuration.
func New() (tensor.Backend, error) {
	return backends.New()
}

// MustNew is like New, but panics on error.
func MustNew() tensor.Backend {
	return backends.MustNew()
}

// NewWithConfig returns the backend described by config.
func NewWithConfig(config string) (tensor.Backend, error) {
	return backends.NewWithConfig(config)
}
