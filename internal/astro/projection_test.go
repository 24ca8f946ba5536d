package astro

import (
	"math"
	"testing"
)

func TestProjectorCenter(t *testing.T) {
	p := NewProjector(Vec3{Z: 100}, Origin, 90, 1)

	sp := p.Project(Origin)
	if !sp.Visible {
		t.Fatal("look-at target should be visible")
	}
	if math.Abs(sp.X) > 1e-12 || math.Abs(sp.Y) > 1e-12 {
		t.Errorf("target projected to (%v, %v), want center", sp.X, sp.Y)
	}
	if math.Abs(sp.Depth-100) > 1e-9 {
		t.Errorf("Depth = %v, want 100", sp.Depth)
	}
}

func TestProjectorAxes(t *testing.T) {
	// Looking down -Z with a 90° FOV: tan(45°) = 1, so a point offset by the
	// depth lands on the viewport edge.
	p := NewProjector(Vec3{Z: 100}, Origin, 90, 1)

	right := p.Project(Vec3{X: 100})
	if math.Abs(right.X-1) > 1e-9 || math.Abs(right.Y) > 1e-9 {
		t.Errorf("+X projected to (%v, %v), want (1, 0)", right.X, right.Y)
	}

	up := p.Project(Vec3{Y: 50})
	if math.Abs(up.Y-0.5) > 1e-9 || math.Abs(up.X) > 1e-9 {
		t.Errorf("+Y projected to (%v, %v), want (0, 0.5)", up.X, up.Y)
	}
}

func TestProjectorBehindEye(t *testing.T) {
	p := NewProjector(Vec3{Z: 100}, Origin, 75, 1)
	if sp := p.Project(Vec3{Z: 200}); sp.Visible {
		t.Errorf("point behind the eye should not be visible: %+v", sp)
	}
}

func TestProjectorStraightDown(t *testing.T) {
	// Eye directly above the target must not produce a degenerate basis.
	p := NewProjector(Vec3{Y: 300}, Origin, 75, 2)
	sp := p.Project(Vec3{X: 10})
	if !sp.Visible {
		t.Fatal("point should be visible from above")
	}
	if math.IsNaN(sp.X) || math.IsNaN(sp.Y) {
		t.Fatalf("NaN projection: %+v", sp)
	}
	if sp.X <= 0 {
		t.Errorf("+X should appear right of center from above, got %v", sp.X)
	}
}

func TestProjectRadius(t *testing.T) {
	p := NewProjector(Vec3{Z: 100}, Origin, 90, 1)
	if got := p.ProjectRadius(10, 100); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("ProjectRadius = %v, want 0.1", got)
	}
	if got := p.ProjectRadius(10, 0); got != 0 {
		t.Errorf("ProjectRadius at zero depth = %v, want 0", got)
	}
}
