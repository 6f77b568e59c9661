package tenalg

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/tenalg/internal/tensor"
)

// ErrShapeMismatch is matched (with errors.Is) by every error reporting
// incompatible operand shapes.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeMismatchError reports the operand shapes (and mode count, if any) of a
// rejected inner product.
type ShapeMismatchError struct {
	Shape1, Shape2 tensor.Shape

	// NModes is only meaningful when HasModes is set.
	NModes   int
	HasModes bool
}

// Error implements error.
func (e *ShapeMismatchError) Error() string {
	if !e.HasModes {
		return fmt.Sprintf("%v: inner product without common modes requires tensor1.shape == tensor2.shape, "+
			"got tensor1.shape=%v and tensor2.shape=%v", ErrShapeMismatch, e.Shape1, e.Shape2)
	}
	return fmt.Sprintf("%v: incorrect shapes for inner product along %d common modes, "+
		"tensor1.shape=%v, tensor2.shape=%v", ErrShapeMismatch, e.NModes, e.Shape1, e.Shape2)
}

// Is makes errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

func shapeMismatch(shape1, shape2 tensor.Shape) error {
	return errors.WithStack(&ShapeMismatchError{
		Shape1: shape1.Clone(),
		Shape2: shape2.Clone(),
	})
}

func modesMismatch(nModes int, shape1, shape2 tensor.Shape) error {
	return errors.WithStack(&ShapeMismatchError{
		Shape1:   shape1.Clone(),
		Shape2:   shape2.Clone(),
		NModes:   nModes,
		HasModes: true,
	})
}
