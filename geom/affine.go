package geom

// Affine is a 2x3 affine matrix mapping (x, y) to
// (A*x + C*y + E, B*x + D*y + F).
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity is the affine matrix that leaves every point unchanged.
var Identity = Affine{A: 1, D: 1}

// Translation returns a matrix translating by (dx, dy).
func Translation(dx, dy float64) Affine {
	return Affine{A: 1, D: 1, E: dx, F: dy}
}

// Scaling returns a matrix scaling by (sx, sy) about the origin.
func Scaling(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// Mul returns the matrix applying n first and then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Det returns the determinant of the linear part of m.
func (m Affine) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix. The second return value is false
// when m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.Det()
	if det == 0 || !finite(det) {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

// Apply maps p through m.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}
