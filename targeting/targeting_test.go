package targeting

import (
	"math"
	"testing"

	"nvext/weapon"
)

func TestFOVScoreStraightAhead(t *testing.T) {
	for _, fov := range []float32{0, 0.5, 5, 180} {
		tune := DefaultTuning()
		tune.FOV = fov

		score, ok := tune.FOVScore(Vec3{100, 0, 0}, Vec3{}, Vec2{})
		if !ok {
			t.Errorf("fov %v: target straight ahead reported out of range", fov)
		}
		if score != 0 {
			t.Errorf("fov %v: expected score 0, got %v", fov, score)
		}
	}
}

func TestFOVScoreOutOfRange(t *testing.T) {
	tune := DefaultTuning()

	// 90 degrees to the left: yaw error 90, scaled 67.5
	aim := Vec3{0, 100, 0}
	e := tune.AngleError(aim, Vec3{}, Vec2{})
	if math.Abs(float64(e.Y)-90) > 1e-3 || math.Abs(float64(e.X)) > 1e-3 {
		t.Fatalf("unexpected angle error %+v", e)
	}

	tests := []struct {
		fov float32
		ok  bool
	}{
		{0, false},
		{10, false},
		{67, false},
		{68, true},
		{180, true},
	}

	for _, tt := range tests {
		tune.FOV = tt.fov
		score, ok := tune.FOVScore(aim, Vec3{}, Vec2{})
		if ok != tt.ok {
			t.Errorf("fov %v: expected ok=%v, got %v (score %v)", tt.fov, tt.ok, ok, score)
		}
		if ok && math.Abs(float64(score)-67.5) > 1e-3 {
			t.Errorf("fov %v: expected score 67.5, got %v", tt.fov, score)
		}
	}

	// directly behind: yaw error 180, scaled 135, beyond a 0 to 134 threshold
	for _, fov := range []float32{0, 45, 134} {
		tune.FOV = fov
		if _, ok := tune.FOVScore(Vec3{-100, 0, 0}, Vec3{}, Vec2{}); ok {
			t.Errorf("fov %v: target behind reported in range", fov)
		}
	}
}

func TestFOVScoreBeyondHalfTurn(t *testing.T) {
	tune := DefaultTuning()

	// target at yaw +170 while looking at yaw -170: raw yaw error 340, scaled 255
	rad := 170 / tune.RadToDeg
	aim := Vec3{float32(100 * math.Cos(rad)), float32(100 * math.Sin(rad)), 0}
	view := Vec2{Y: -170}

	e := tune.AngleError(aim, Vec3{}, view)
	if math.Abs(float64(e.Y)-340) > 1e-3 {
		t.Fatalf("Expected yaw error 340, got %v", e.Y)
	}

	for _, fov := range []float32{0, 90, 180} {
		tune.FOV = fov
		if score, ok := tune.FOVScore(aim, Vec3{}, view); ok {
			t.Errorf("fov %v: expected out of range, got score %v", fov, score)
		}
	}

	tune.FOV = 256
	score, ok := tune.FOVScore(aim, Vec3{}, view)
	if !ok || math.Abs(float64(score)-255) > 1e-2 {
		t.Errorf("Expected score 255 within fov 256, got %v (%v)", score, ok)
	}
}

func TestFOVScorePitch(t *testing.T) {
	tune := DefaultTuning()
	tune.FOV = 180

	// 45 degrees above the horizon gives pitch -45 in game convention
	e := tune.AngleError(Vec3{100, 0, 100}, Vec3{}, Vec2{})
	if math.Abs(float64(e.X)+45) > 1e-3 {
		t.Errorf("expected pitch error -45, got %v", e.X)
	}

	// already looking there
	score, ok := tune.FOVScore(Vec3{100, 0, 100}, Vec3{}, Vec2{X: -45})
	if !ok || score > 1e-3 {
		t.Errorf("expected zero score when aligned, got %v %v", score, ok)
	}
}

func TestFOVScoreNaN(t *testing.T) {
	tune := DefaultTuning()
	tune.FOV = 180

	if _, ok := tune.FOVScore(Vec3{1, 2, 3}, Vec3{1, 2, 3}, Vec2{}); ok {
		t.Error("Expected a target at the camera position to be out of range")
	}
}

func TestNormalizeYaw(t *testing.T) {
	tune := DefaultTuning()
	tune.FOV = 180

	// aim slightly left of +X while the view yaw reads 350
	aim := Vec3{100, 1.7455, 0}
	view := Vec2{Y: 350}

	raw := tune.AngleError(aim, Vec3{}, view)
	if raw.Y > -340 {
		t.Fatalf("expected an unwrapped yaw error near -349, got %v", raw.Y)
	}

	tune.NormalizeYaw = true
	wrapped := tune.AngleError(aim, Vec3{}, view)
	if math.Abs(float64(wrapped.Y)-11) > 0.01 {
		t.Errorf("expected wrapped yaw error near 11, got %v", wrapped.Y)
	}
}

func TestIsVisible(t *testing.T) {
	// entity indexes 3 and 7 are player slots 2 and 6
	const local, cand = 3, 7
	const localBit, candBit = 1 << 2, 1 << 6

	tests := []struct {
		name      string
		rule      VisibilityRule
		candMask  uint64
		localMask uint64
		want      bool
	}{
		{"either none", EitherBit, 0, 0, false},
		{"either candidate mask", EitherBit, localBit, 0, true},
		{"either local mask", EitherBit, 0, candBit, true},
		{"either both", EitherBit, localBit, candBit, true},
		{"either wrong bits", EitherBit, candBit, localBit, false},
		{"either entity index bits", EitherBit, 1 << local, 1 << cand, false},
		{"both one", BothBits, localBit, 0, false},
		{"both both", BothBits, localBit, candBit, true},
		{"candidate only", CandidateMaskOnly, 0, candBit, false},
		{"local only", LocalMaskOnly, 0, candBit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.rule, tt.candMask, tt.localMask, local, cand); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsVisibleSlotEdges(t *testing.T) {
	tests := []struct {
		name      string
		candMask  uint64
		localMask uint64
		local     int
		cand      int
		want      bool
	}{
		{"first slot in candidate mask", 1, 0, 1, 2, true},
		{"last slot in local mask", 0, 1 << 63, 1, 64, true},
		{"last slot local player", 1 << 63, 0, 64, 2, true},
		{"all local bits last slot", 0, math.MaxUint64, 1, 64, true},
		{"bit 0 is not slot 2", 0, 1, 1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(EitherBit, tt.candMask, tt.localMask, tt.local, tt.cand); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsVisibleMonotonic(t *testing.T) {
	masks := []uint64{0, 1, 1 << 5, 1<<5 | 1<<9, math.MaxUint64, 1 << 63}

	for li := 1; li <= 64; li += 7 {
		for ci := 1; ci <= 64; ci += 5 {
			for _, cm := range masks {
				for _, lm := range masks {
					before := IsVisible(EitherBit, cm, lm, li, ci)
					if before && !IsVisible(EitherBit, cm|1<<uint(li-1), lm, li, ci) {
						t.Fatalf("setting candidate bit hid target (li=%d ci=%d)", li, ci)
					}
					if before && !IsVisible(EitherBit, cm, lm|1<<uint(ci-1), li, ci) {
						t.Fatalf("setting local bit hid target (li=%d ci=%d)", li, ci)
					}
				}
			}
		}
	}

	for _, idx := range []int{-1, 0, 65} {
		if IsVisible(EitherBit, math.MaxUint64, math.MaxUint64, idx, idx) {
			t.Errorf("index %d out of range must not be visible", idx)
		}
	}
}

func TestPick(t *testing.T) {
	tune := DefaultTuning()
	tune.FOV = 30

	local := Viewer{Index: 1, Team: 2, Mask: 0}
	visible := uint64(1 << 0) // slot of entity 1

	candidates := []Candidate{
		{Index: 1, Team: 3, Alive: true, Aim: Vec3{100, 0, 0}, Mask: visible},  // self
		{Index: 2, Team: 2, Alive: true, Aim: Vec3{100, 0, 0}, Mask: visible},  // teammate
		{Index: 3, Team: 3, Alive: false, Aim: Vec3{100, 0, 0}, Mask: visible}, // dead
		{Index: 4, Team: 3, Alive: true, Aim: Vec3{100, 1, 0}, Mask: 0},        // hidden
		{Index: 5, Team: 3, Alive: true, Aim: Vec3{100, 10, 0}, Mask: visible}, // far off
		{Index: 6, Team: 3, Alive: true, Aim: Vec3{100, 5, 0}, Mask: visible},  // best
		{Index: 7, Team: 3, Alive: true, Aim: Vec3{0, 100, 0}, Mask: visible},  // out of fov
	}

	best, score, ok := tune.Pick(local, candidates)
	if !ok {
		t.Fatal("Expected a target")
	}
	if best.Index != 6 {
		t.Errorf("Expected candidate 6, got %d (score %v)", best.Index, score)
	}

	tune.VisibleOnly = false
	best, _, _ = tune.Pick(local, candidates)
	if best.Index != 4 {
		t.Errorf("Expected hidden candidate 4 without visibility check, got %d", best.Index)
	}

	tune.ExcludeTeam = false
	best, _, _ = tune.Pick(local, candidates)
	if best.Index != 2 {
		t.Errorf("Expected teammate 2 without team exclusion, got %d", best.Index)
	}

	if _, _, ok := tune.Pick(local, nil); ok {
		t.Error("Expected no target from an empty list")
	}
}

func TestProfiles(t *testing.T) {
	p := NewProfiles(DefaultTuning())
	p.Set(weapon.Sniper, 1.5)

	if got := p.For(weapon.Sniper).FOV; got != 1.5 {
		t.Errorf("Expected sniper fov 1.5, got %v", got)
	}
	if got := p.For(weapon.Sniper).Scale; got != 0.75 {
		t.Errorf("Expected scale carried from fallback, got %v", got)
	}
	if got := p.For(weapon.Rifle).FOV; got != DefaultTuning().FOV {
		t.Errorf("Expected fallback fov, got %v", got)
	}
}

func TestWindow(t *testing.T) {
	w := Window{Width: 1920, Height: 1080}

	if c := w.Center(); c.X != 960 || c.Y != 540 {
		t.Errorf("unexpected center %+v", c)
	}
	if !w.Contains(Vec2{0, 0}) || !w.Contains(Vec2{1920, 1080}) {
		t.Error("edges should be inside")
	}
	if w.Contains(Vec2{-1, 10}) || w.Contains(Vec2{10, 1081}) {
		t.Error("outside points reported inside")
	}
}

func TestVec3Length(t *testing.T) {
	d := Vec3{4, 6, 12}.Sub(Vec3{1, 2, 0})
	if d.Length() != 13 {
		t.Errorf("Expected 13, got %v", d.Length())
	}
	if !(Vec3{}).IsZero() || d.IsZero() {
		t.Error("unexpected IsZero")
	}
}
