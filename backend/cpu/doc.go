// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32, Float64, Int32 and Int64 support
//   - Naive row-major matrix multiplication
//
// Importing the package registers it under the name "cpu", so it can be
// selected with TENALG_BACKEND=cpu.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tenalg/backend/cpu"
//	    "github.com/born-ml/tenalg/tenalg"
//	    "github.com/born-ml/tenalg/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Arange[float64](tensor.Shape{3, 4}, backend)
//	    y := tensor.Ones[float64](tensor.Shape{4, 5}, backend)
//	    z, err := tenalg.Contract(x, y, 1)  // Shape: (3, 5)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
