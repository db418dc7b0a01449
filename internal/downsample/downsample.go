// Package downsample implements the point-selection strategy used by the
// in-tree providers when a read's cap is smaller than a series.
package downsample

// Series returns at most max points from data, which must already be sorted
// by ascending step.
//
// Strategy: deterministic uniform stride. The final point is always kept (it
// is the series' latest state, which renderers rely on), the first point is
// kept whenever max >= 2, and the remainder are taken at evenly spaced
// indices. Relative order is preserved. max of 0 yields an empty series. The
// result is always a copy; the input is never aliased or modified.
func Series[T any](data []T, max int) []T {
	if max <= 0 {
		return []T{}
	}
	if len(data) <= max {
		out := make([]T, len(data))
		copy(out, data)
		return out
	}
	if max == 1 {
		return []T{data[len(data)-1]}
	}

	// Pick max-1 evenly spaced indices from [0, len-2], then the last.
	out := make([]T, 0, max)
	span := len(data) - 1
	keep := max - 1
	for i := 0; i < keep; i++ {
		out = append(out, data[i*span/keep])
	}
	out = append(out, data[len(data)-1])
	return out
}
