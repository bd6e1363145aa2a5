// Package quantity wraps k8s.io/apimachinery's resource.Quantity parsing to
// turn a Kubernetes-style quantity string into a fixed-point byte count.
package quantity

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// SpecInvalidError wraps a quantity that failed to parse as a valid,
// non-negative byte count.
type SpecInvalidError struct {
	Value string
	Cause error
}

func (e *SpecInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid quantity %q: %s", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid quantity %q", e.Value)
}

func (e *SpecInvalidError) Unwrap() error {
	return e.Cause
}

// ParseBytes parses a Kubernetes resource-quantity lexical form (e.g.
// "500Mi", "1Gi", "1500m", "1.5k") into a fixed-point integer byte count.
// Negative values and unparseable suffixes return a *SpecInvalidError.
func ParseBytes(value string) (int64, error) {
	q, err := resource.ParseQuantity(value)
	if err != nil {
		return 0, &SpecInvalidError{Value: value, Cause: err}
	}
	if q.Sign() < 0 {
		return 0, &SpecInvalidError{Value: value, Cause: fmt.Errorf("quantity must not be negative")}
	}
	// Value() rounds up to the nearest integer, so sub-byte forms like
	// "1500m" (1.5) resolve to a valid fixed-point byte count (2) instead
	// of failing the way AsInt64 would on a non-integer scale.
	return q.Value(), nil
}

const gibibyte = 1024 * 1024 * 1024

// RoundToGiB rounds a byte count to the nearest whole gibibyte, rounding
// half up. Used to turn a node's reported free capacity into a layout
// assignment's capacity field, which Garage expects in whole GiB.
func RoundToGiB(bytes uint64) uint64 {
	return (bytes + gibibyte/2) / gibibyte
}
