// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/tenalg/internal/tensor"

// Backend defines the numeric capabilities tensor algebra is built on.
//
// Implementations:
//   - backend/cpu: Pure Go loops
//   - backend/gonum: BLAS matrix products via gonum
//
// Use backend.New to pick one at startup from the TENALG_BACKEND environment
// variable.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tenalg/tensor"
//	    "github.com/born-ml/tenalg/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	y := x.Mul(x)  // Uses backend.Mul under the hood
type Backend interface {
	Mul(a, b *RawTensor) *RawTensor                  // Element-wise multiplication.
	MatMul(a, b *RawTensor) *RawTensor               // 2D matrix multiplication.
	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape tensor.
	Sum(x *RawTensor) *RawTensor                     // Total sum (scalar result).

	// Metadata.
	Name() string   // Backend name (e.g., "CPU", "gonum").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
