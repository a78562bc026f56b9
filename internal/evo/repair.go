package evo

import "pixevade/internal/model"

// ReflectCoords repairs out-of-range coordinates with a single reflection
// step, applied independently per scalar: a negative value flips sign, then
// a value past size-1 is replaced by size-1-v. The second step lands in
// [-(size-1), -1] for any overshoot and larger overshoots are not re-folded;
// the compositor resolves those negative indices from the end of the axis.
// Known limitation, kept deliberately: the repair never clamps.
func ReflectCoords(planes []model.Plane, size int) []model.Plane {
	return reflectPlanes(planes, float64(size-1))
}

// ReflectColors repairs out-of-range color components: a negative value
// flips sign, then a value past 1 is replaced by 1-v. Channels are repaired
// independently with no renormalization.
func ReflectColors(planes []model.Plane) []model.Plane {
	return reflectPlanes(planes, 1)
}

func reflectPlanes(planes []model.Plane, upper float64) []model.Plane {
	out := make([]model.Plane, len(planes))
	for i, plane := range planes {
		repaired := make(model.Plane, len(plane))
		for p, unit := range plane {
			vals := make([]float64, len(unit))
			for d, v := range unit {
				if v < 0 {
					v = -v
				}
				if v > upper {
					v = upper - v
				}
				vals[d] = v
			}
			repaired[p] = vals
		}
		out[i] = repaired
	}
	return out
}
