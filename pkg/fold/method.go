// Package fold implements the per-pixel reducers that combine feature
// occupancy grids into a single result grid.
//
// Three methods are supported:
//
//   - count: number of features touching each pixel
//   - max: largest field value among the features touching each pixel
//   - mean: sum of field values divided by the number of touching features
//
// Folding is commutative for every method, so the result does not depend
// on feature order.
package fold

import (
	"strings"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// Method selects the reducer.
type Method string

const (
	MethodCount Method = "count"
	MethodMax   Method = "max"
	MethodMean  Method = "mean"
)

// DefaultMethod is used when no method is given.
const DefaultMethod = MethodCount

// Methods lists the supported methods in display order.
var Methods = []Method{MethodCount, MethodMax, MethodMean}

// ParseMethod converts a method name into a Method. Names are matched
// case-insensitively; an empty name yields DefaultMethod.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCount, MethodMax, MethodMean:
		return m, nil
	}
	return "", rferrors.New(rferrors.ErrCodeInvalidMethod,
		"invalid method %q (must be one of: count, max, mean)", s)
}

// NeedsField reports whether the method reads a numeric attribute.
func (m Method) NeedsField() bool {
	return m == MethodMax || m == MethodMean
}

func (m Method) String() string { return string(m) }

// Validate checks the method/field combination. It does not touch any
// file, so callers run it before opening inputs. The field name itself is
// not inspected: a name no feature carries fails while folding.
func Validate(m Method, field string) error {
	switch m {
	case MethodCount, MethodMax, MethodMean:
	default:
		return rferrors.New(rferrors.ErrCodeInvalidMethod,
			"invalid method %q (must be one of: count, max, mean)", string(m))
	}
	if m.NeedsField() && field == "" {
		return rferrors.New(rferrors.ErrCodeMissingField,
			"field name is mandatory when method is %s", m)
	}
	return nil
}
