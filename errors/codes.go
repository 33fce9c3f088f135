package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeShapeMismatch indicates a collection, target, or item matched
	// none of the supported shapes for an operation.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
	// ErrCodeInvalidArgument indicates an argument outside its allowed range.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeIteratorClosed indicates Next was called on a closed iterator.
	ErrCodeIteratorClosed ErrorCode = "ITERATOR_CLOSED"
)
