// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for the tenalg library.
//
// # Overview
//
// Tensors are multi-dimensional arrays bound to a numeric backend. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - Shapes with rank and per-mode extents
//   - The Backend interface implemented by backend/cpu and backend/gonum
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tenalg/tensor"
//	    "github.com/born-ml/tenalg/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Arange[float64](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float64](tensor.Shape{3, 4}, backend)
//
//	    z := x.MatMul(y)  // Shape: (2, 4)
//	}
//
// # Supported Data Types
//
// float32, float64, int32 and int64 via the DType constraint.
package tensor
