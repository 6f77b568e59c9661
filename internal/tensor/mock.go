package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a reference backend for testing.
// It implements every operation naively through float64 for correctness checks.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Mul performs element-wise multiplication.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("mock mul: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	result := m.alloc(a.Shape(), a.DType())
	for i := 0; i < a.NumElements(); i++ {
		setFloat(result, i, getFloat(a, i)*getFloat(b, i))
	}
	return result
}

// MatMul performs naive 2D matrix multiplication.
func (m *MockBackend) MatMul(a, b *RawTensor) *RawTensor {
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 || a.Shape()[1] != b.Shape()[0] {
		panic(fmt.Sprintf("mock matmul: shape mismatch %v @ %v", a.Shape(), b.Shape()))
	}
	rows, inner, cols := a.Shape()[0], a.Shape()[1], b.Shape()[1]
	result := m.alloc(Shape{rows, cols}, a.DType())
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			for k := 0; k < inner; k++ {
				sum += getFloat(a, i*inner+k) * getFloat(b, k*cols+j)
			}
			setFloat(result, i*cols+j, sum)
		}
	}
	return result
}

// Reshape copies the data into a tensor of the new shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("mock reshape: %v", err))
	}
	return result
}

// Sum returns the total sum as a scalar tensor.
func (m *MockBackend) Sum(x *RawTensor) *RawTensor {
	result := m.alloc(Shape{}, x.DType())
	var sum float64
	for i := 0; i < x.NumElements(); i++ {
		sum += getFloat(x, i)
	}
	setFloat(result, 0, sum)
	return result
}

func (m *MockBackend) alloc(shape Shape, dtype DataType) *RawTensor {
	result, err := NewRaw(shape, dtype, m.Device())
	if err != nil {
		panic(err)
	}
	return result
}

func getFloat(r *RawTensor, i int) float64 {
	switch r.DType() {
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	case Int32:
		return float64(r.AsInt32()[i])
	case Int64:
		return float64(r.AsInt64()[i])
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", r.DType()))
	}
}

func setFloat(r *RawTensor, i int, v float64) {
	switch r.DType() {
	case Float32:
		r.AsFloat32()[i] = float32(v)
	case Float64:
		r.AsFloat64()[i] = v
	case Int32:
		r.AsInt32()[i] = int32(v)
	case Int64:
		r.AsInt64()[i] = int64(v)
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", r.DType()))
	}
}
