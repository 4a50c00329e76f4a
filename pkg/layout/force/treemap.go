package force

import (
	"math"
	"slices"
)

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Squarify partitions the rectangle (x, y, w, h) into one cell per area,
// with cell areas proportional to the input and aspect ratios kept close to
// one. Cells are returned in input order. Non-positive areas receive an
// empty cell at the current cursor.
func Squarify(areas []float64, x, y, w, h float64) []Rect {
	out := make([]Rect, len(areas))
	total := 0.0
	for _, a := range areas {
		if a > 0 {
			total += a
		}
	}
	if total == 0 || w <= 0 || h <= 0 {
		for i := range out {
			out[i] = Rect{X: x + w/2, Y: y + h/2}
		}
		return out
	}

	scale := w * h / total
	order := make([]int, 0, len(areas))
	scaled := make([]float64, len(areas))
	for i, a := range areas {
		if a > 0 {
			scaled[i] = a * scale
			order = append(order, i)
		} else {
			out[i] = Rect{X: x + w/2, Y: y + h/2}
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scaled[a] > scaled[b]:
			return -1
		case scaled[a] < scaled[b]:
			return 1
		}
		return 0
	})

	for len(order) > 0 {
		side := math.Min(w, h)
		n := 1
		for n < len(order) && worst(scaled, order[:n+1], side) <= worst(scaled, order[:n], side) {
			n++
		}
		row := order[:n]
		sum := 0.0
		for _, i := range row {
			sum += scaled[i]
		}

		if w >= h {
			cw := sum / h
			cy := y
			for _, i := range row {
				ch := scaled[i] / cw
				out[i] = Rect{X: x, Y: cy, W: cw, H: ch}
				cy += ch
			}
			x += cw
			w -= cw
		} else {
			rh := sum / w
			cx := x
			for _, i := range row {
				rw := scaled[i] / rh
				out[i] = Rect{X: cx, Y: y, W: rw, H: rh}
				cx += rw
			}
			y += rh
			h -= rh
		}
		order = order[n:]
	}
	return out
}

// worst returns the largest aspect ratio in a row laid along a side.
func worst(areas []float64, row []int, side float64) float64 {
	sum, lo, hi := 0.0, math.Inf(1), 0.0
	for _, i := range row {
		a := areas[i]
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	s2, w2 := sum*sum, side*side
	return math.Max(w2*hi/s2, s2/(w2*lo))
}
