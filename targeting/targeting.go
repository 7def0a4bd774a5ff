// Package targeting is the pure geometry on top of resolved entities: the
// visibility test, field-of-view scoring and candidate ranking.
package targeting

import (
	"math"

	"nvext/weapon"
)

// VisibilityRule selects how the two spotted masks are combined
type VisibilityRule int

const (
	// EitherBit: the local player's bit in the candidate's mask, or the candidate's bit in the local mask
	EitherBit VisibilityRule = iota
	BothBits
	CandidateMaskOnly
	LocalMaskOnly
)

func (r VisibilityRule) String() string {
	switch r {
	case EitherBit:
		return "either"
	case BothBits:
		return "both"
	case CandidateMaskOnly:
		return "candidate"
	case LocalMaskOnly:
		return "local"
	}
	return "unknown"
}

// Tuning holds the empirical constants of the aim assist
type Tuning struct {
	FOV          float32 // maximum score accepted
	Scale        float32 // weight applied to the angular error norm
	RadToDeg     float64
	NormalizeYaw bool // wrap the yaw error into [-180, 180)
	Visibility   VisibilityRule
	VisibleOnly  bool
	ExcludeTeam  bool
}

// DefaultTuning returns the stock constants with a 5 degree FOV
func DefaultTuning() Tuning {
	return Tuning{
		FOV:         5,
		Scale:       0.75,
		RadToDeg:    57.295779513,
		Visibility:  EitherBit,
		VisibleOnly: true,
		ExcludeTeam: true,
	}
}

// slotBit maps an entity-list index (1..64) to its bit in a spotted mask.
// The mask is indexed by player slot, which is the entity index minus one.
func slotBit(index int) uint64 {
	if index < 1 || index > 64 {
		return 0
	}
	return 1 << uint(index-1)
}

// IsVisible applies rule to the candidate's spotted mask and the local player's
// spotted mask. Indexes are entity-list indexes, 1..64.
func IsVisible(rule VisibilityRule, candidateMask, localMask uint64, localIndex, candidateIndex int) bool {
	seenByLocal := candidateMask&slotBit(localIndex) != 0
	seesLocal := localMask&slotBit(candidateIndex) != 0

	switch rule {
	case BothBits:
		return seenByLocal && seesLocal
	case CandidateMaskOnly:
		return seenByLocal
	case LocalMaskOnly:
		return seesLocal
	default:
		return seenByLocal || seesLocal
	}
}

// AngleError returns the pitch (X) and yaw (Y) in degrees between the current
// view angles and the direction from camera to aim
func (t Tuning) AngleError(aim, camera Vec3, view Vec2) Vec2 {
	d := aim.Sub(camera)
	dist := math.Sqrt(float64(d.X)*float64(d.X) + float64(d.Y)*float64(d.Y))

	yaw := math.Atan2(float64(d.Y), float64(d.X))*t.RadToDeg - float64(view.Y)
	pitch := -math.Atan(float64(d.Z)/dist)*t.RadToDeg - float64(view.X)

	if t.NormalizeYaw {
		yaw = math.Mod(yaw+180, 360)
		if yaw < 0 {
			yaw += 360
		}
		yaw -= 180
	}

	return Vec2{X: float32(pitch), Y: float32(yaw)}
}

// FOVScore scores how far aim is from the crosshair. ok is false when the
// score exceeds the configured FOV or is not a number.
func (t Tuning) FOVScore(aim, camera Vec3, view Vec2) (score float32, ok bool) {
	e := t.AngleError(aim, camera, view)
	norm := float32(math.Sqrt(float64(e.X)*float64(e.X)+float64(e.Y)*float64(e.Y))) * t.Scale

	if norm != norm || norm > t.FOV {
		return 0, false
	}
	return norm, true
}

// Viewer is the local player as seen by the ranking
type Viewer struct {
	Index  int
	Team   uint8
	Camera Vec3
	View   Vec2
	Mask   uint64
}

// Candidate is one potential target
type Candidate struct {
	Index int
	Team  uint8
	Alive bool
	Aim   Vec3
	Mask  uint64
}

// Pick returns the candidate with the lowest FOV score, skipping the dead,
// teammates (when ExcludeTeam is set) and the invisible (when VisibleOnly is set)
func (t Tuning) Pick(local Viewer, candidates []Candidate) (Candidate, float32, bool) {
	var best Candidate
	bestScore := float32(math.MaxFloat32)
	found := false

	for _, c := range candidates {
		if !c.Alive || c.Index == local.Index {
			continue
		}

		if t.ExcludeTeam && c.Team == local.Team {
			continue
		}

		if t.VisibleOnly && !IsVisible(t.Visibility, c.Mask, local.Mask, local.Index, c.Index) {
			continue
		}

		score, ok := t.FOVScore(c.Aim, local.Camera, local.View)
		if !ok {
			continue
		}

		if score < bestScore {
			best, bestScore, found = c, score, true
		}
	}

	if !found {
		return Candidate{}, 0, false
	}
	return best, bestScore, true
}

// Profiles holds per weapon category tuning with a shared fallback
type Profiles struct {
	Fallback   Tuning
	ByCategory map[weapon.Category]Tuning
}

// NewProfiles returns a set where every category uses fallback
func NewProfiles(fallback Tuning) *Profiles {
	return &Profiles{Fallback: fallback, ByCategory: make(map[weapon.Category]Tuning)}
}

// Set overrides the FOV for one category, keeping the other fallback constants
func (p *Profiles) Set(c weapon.Category, fov float32) {
	t := p.Fallback
	t.FOV = fov
	p.ByCategory[c] = t
}

// For returns the tuning used while holding a weapon of category c
func (p *Profiles) For(c weapon.Category) Tuning {
	if t, ok := p.ByCategory[c]; ok {
		return t
	}
	return p.Fallback
}
