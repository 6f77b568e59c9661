// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tenalg provides tensor algebra on top of a pluggable numeric backend.
//
// # Generalized inner product
//
// Inner computes the scalar inner product of two tensors with identical shapes.
// Contract computes the inner product along n common modes: the last n modes
// of the first tensor against the first n modes of the second.
//
//	backend := cpu.New()
//	a := tensor.Arange[float64](tensor.Shape{2, 3, 4}, backend)
//	b := tensor.Arange[float64](tensor.Shape{3, 4, 5}, backend)
//
//	c, err := tenalg.Contract(a, b, 2) // Shape: (2, 5)
//	s, err := tenalg.Inner(a, a)       // sum of squares
//
// Incompatible shapes are reported with an error matching ErrShapeMismatch;
// use errors.As with *ShapeMismatchError to inspect the offending shapes.
package tenalg

import (
	"github.com/born-ml/tenalg/internal/tenalg"
	"github.com/born-ml/tenalg/tensor"
)

// ErrShapeMismatch is matched by every error reporting incompatible operand shapes.
var ErrShapeMismatch = tenalg.ErrShapeMismatch

// ShapeMismatchError reports the operand shapes (and mode count, if any) of a
// rejected inner product.
type ShapeMismatchError = tenalg.ShapeMismatchError

// Option configures InnerProduct.
type Option = tenalg.Option

// Result holds the outcome of InnerProduct.
type Result[T tensor.DType, B tensor.Backend] = tenalg.Result[T, B]

// Inner returns the scalar inner product sum(t1 * t2) of two tensors with identical shapes.
func Inner[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B]) (T, error) {
	return tenalg.Inner(t1, t2)
}

// Contract returns the inner product of t1 and t2 along nModes common modes.
//
// For t1 of shape (a..., c...) and t2 of shape (c..., b...), with len(c) == nModes,
// the result has shape (a..., b...). With nModes == 0 the result is the outer product.
func Contract[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B], nModes int) (*tensor.Tensor[T, B], error) {
	return tenalg.Contract(t1, t2, nModes)
}

// WithModes makes InnerProduct contract over n common modes.
func WithModes(n int) Option {
	return tenalg.WithModes(n)
}

// InnerProduct computes the generalized inner product: Inner without options,
// Contract with WithModes.
func InnerProduct[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B], opts ...Option) (Result[T, B], error) {
	return tenalg.InnerProduct(t1, t2, opts...)
}
