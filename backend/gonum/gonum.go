// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gonum provides a backend that runs matrix products through gonum's BLAS.
//
// Float64 products use mat.Dense, float32 products use blas32.Gemm. Integer
// dtypes fall back to the pure Go CPU kernels. Importing the package registers
// it under the name "gonum", so it can be selected with TENALG_BACKEND=gonum.
package gonum

import (
	internalgonum "github.com/born-ml/tenalg/internal/backend/gonum"
	"github.com/born-ml/tenalg/tensor"
)

// Backend is the gonum backend implementation.
type Backend = internalgonum.Backend

// Name is the registry name of the gonum backend, for use in TENALG_BACKEND.
const Name = internalgonum.BackendName

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new gonum backend.
func New() *Backend {
	return internalgonum.New()
}
