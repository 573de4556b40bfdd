// SPDX-License-Identifier: MIT

// Package interp provides one-dimensional piecewise-linear interpolation
// over a set of (x, y) knots. Queries outside the knot range are linearly
// extrapolated from the first or last interval rather than rejected; the
// caller decides whether that matters.
package interp

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Linear evaluates the piecewise-linear interpolant of y over x at each
// query point in xi. The knot pairs are treated as an unordered set of
// correspondences: a jointly sorted copy is built first, so the caller's
// arrays are never mutated. Use LinearSorted when x is already ascending.
func Linear(x, y, xi []float64) ([]float64, error) {
	if err := checkKnots(x, y); err != nil {
		return nil, err
	}

	xs := make([]float64, len(x))
	copy(xs, x)
	inds := make([]int, len(x))
	floats.Argsort(xs, inds)

	ys := make([]float64, len(y))
	for i, idx := range inds {
		ys[i] = y[idx]
	}

	return evaluate(xs, ys, xi)
}

// LinearSorted is Linear for knots the caller asserts are already sorted
// by ascending x. No copy is made and the assertion is not re-checked.
func LinearSorted(x, y, xi []float64) ([]float64, error) {
	if err := checkKnots(x, y); err != nil {
		return nil, err
	}
	return evaluate(x, y, xi)
}

func checkKnots(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("interp: mismatched knot arrays (%d x values, %d y values)", len(x), len(y))
	}
	if len(x) < 2 {
		return fmt.Errorf("interp: need at least 2 knots, got %d", len(x))
	}
	return nil
}

// evaluate performs the per-query binary search and linear formula.
// Interval selection: an exact hit at knot i uses the interval ending at
// that knot, (x[i-1], x[i]); hits at or below x[0] clamp to the first
// interval, queries past x[n-1] clamp to the last. Both out-of-range
// cases therefore extrapolate from the nearest edge interval.
func evaluate(xs, ys, xi []float64) ([]float64, error) {
	n := len(xs)
	yi := make([]float64, len(xi))

	for k, q := range xi {
		i := sort.SearchFloat64s(xs, q)
		if i < 1 {
			i = 1
		}
		if i > n-1 {
			i = n - 1
		}

		x0, x2 := xs[i-1], xs[i]
		if x2 == x0 {
			// Duplicate knots bracketing a query would divide by zero;
			// surface the bad table instead of emitting NaN.
			return nil, fmt.Errorf("interp: degenerate interval, duplicate knot x=%v", x0)
		}
		yi[k] = ys[i-1] + (ys[i]-ys[i-1])*(q-x0)/(x2-x0)
	}

	return yi, nil
}
