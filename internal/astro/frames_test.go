package astro

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"unit y", Vec3{0, 1, 0}, 1},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 0, 4}, 5},
		{"negative", Vec3{-3, -4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalized(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want Vec3
	}{
		{"unit x", Vec3{5, 0, 0}, Vec3{1, 0, 0}},
		{"unit y", Vec3{0, 3, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{1, 0, 1}, Vec3{1 / math.Sqrt(2), 0, 1 / math.Sqrt(2)}},
		{"zero", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Normalized()
			if !vecNear(got, tt.want, 1e-10) {
				t.Errorf("Normalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, -20, 30}

	if got := a.Lerp(b, 0); !vecNear(got, a, 1e-12) {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); !vecNear(got, b, 1e-12) {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	if got := a.Lerp(b, 0.1); !vecNear(got, Vec3{1, -2, 3}, 1e-12) {
		t.Errorf("Lerp(0.1) = %v, want {1 -2 3}", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := Vec3{Z: 1}

	if got := x.Cross(y); !vecNear(got, z, 1e-12) {
		t.Errorf("X × Y = %v, want %v", got, z)
	}
	if got := y.Cross(x); !vecNear(got, z.Scale(-1), 1e-12) {
		t.Errorf("Y × X = %v, want -Z", got)
	}
}

func TestVec3RotateY(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		deg  float64
		want Vec3
	}{
		{"zero angle", Vec3{100, 0, 0}, 0, Vec3{100, 0, 0}},
		{"quarter turn", Vec3{100, 0, 0}, 90, Vec3{0, 0, -100}},
		{"half turn", Vec3{100, 0, 0}, 180, Vec3{-100, 0, 0}},
		{"full turn", Vec3{100, 0, 0}, 360, Vec3{100, 0, 0}},
		{"keeps height", Vec3{0, 7, 50}, 90, Vec3{50, 7, 0}},
		{"negative angle", Vec3{100, 0, 0}, -90, Vec3{0, 0, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.RotateY(DegToRad(tt.deg))
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("RotateY(%v) = %v, want %v", tt.deg, got, tt.want)
			}
			if math.Abs(got.Norm()-tt.v.Norm()) > 1e-9 {
				t.Errorf("RotateY changed length: %v -> %v", tt.v.Norm(), got.Norm())
			}
		})
	}
}

func TestProjectTopDown(t *testing.T) {
	cfg := DefaultProjectionConfig()

	tests := []struct {
		name      string
		v         Vec3
		wantAngle float64 // expected screen angle in degrees
	}{
		{"along +X", Vec3{100, 0, 0}, 0},
		{"along -Z", Vec3{0, 0, -100}, 90},
		{"along -X", Vec3{-100, 0, 0}, 180},
		{"along +Z", Vec3{0, 0, 100}, -90},
		{"along -X with negative zero Z", Vec3{-100, 0, math.Copysign(0, -1)}, 180},
		{"diagonal", Vec3{100, 0, 100}, -45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProjectTopDown(tt.v, cfg)
			gotAngle := RadToDeg(math.Atan2(p.Y, p.X))
			if math.Abs(math.Remainder(gotAngle-tt.wantAngle, 360)) > 1e-6 {
				t.Errorf("angle = %v, want %v", gotAngle, tt.wantAngle)
			}
			if math.Abs(p.R-tt.v.Norm()) > 1e-9 {
				t.Errorf("R = %v, want %v", p.R, tt.v.Norm())
			}
		})
	}
}

func TestProjectTopDownScaleModes(t *testing.T) {
	log := DefaultProjectionConfig()
	lin := log
	lin.Mode = ScaleLinear

	// Both modes map the configured extent to unit radius.
	for _, cfg := range []ProjectionConfig{log, lin} {
		p := ProjectTopDown(Vec3{X: cfg.Extent}, cfg)
		if math.Abs(p.X-1) > 1e-9 {
			t.Errorf("%v: extent projects to %v, want 1", cfg.Mode, p.X)
		}
	}

	// Log mode gives inner orbits more room than linear.
	inner := Vec3{X: 40}
	if ProjectTopDown(inner, log).X <= ProjectTopDown(inner, lin).X {
		t.Error("log scaling should expand the inner system")
	}

	// Origin stays at the origin.
	if p := ProjectTopDown(Origin, log); p.X != 0 || p.Y != 0 {
		t.Errorf("origin projects to (%v, %v)", p.X, p.Y)
	}
}
