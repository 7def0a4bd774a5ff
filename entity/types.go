package entity

import (
	"nvext/bone"
	"nvext/process"
	"nvext/targeting"
	"nvext/weapon"
)

// Flag is a bit of the pawn's status bitmask
type Flag uint32

const (
	FlagOnGround Flag = 1 << 0
	FlagDucking  Flag = 1 << 1
)

// AimPunchCache is the header of the engine vector caching recent aim punch angles
type AimPunchCache struct {
	Count uint64
	Data  uint64
}

// Controller is the persistent identity of a player
type Controller struct {
	Address    process.ProcessMemoryAddress
	Alive      uint8
	Team       uint8
	Name       string
	PawnHandle uint32
	Pawn       process.ProcessMemoryAddress
}

// Weapon is the pawn's active weapon
type Weapon struct {
	weapon.Info
	Ammo    int32
	MaxAmmo int32
}

// Pawn is the spawned body of a player for one life
type Pawn struct {
	Address       process.ProcessMemoryAddress
	Camera        targeting.Vec3
	Position      targeting.Vec3
	ViewAngles    targeting.Vec2
	Weapon        Weapon
	ShotsFired    uint32
	AimPunch      AimPunchCache
	Health        int32
	Armor         int32
	FOV           uint32
	SpottedByMask uint64
	Flags         uint32
	Skeleton      bone.Skeleton
}

// HasFlag reports whether every bit of f is set
func (p *Pawn) HasFlag(f Flag) bool {
	return p.Flags&uint32(f) == uint32(f)
}

// Entity pairs a controller with its pawn. It is only valid for the cycle it was resolved in.
type Entity struct {
	Index      int
	Local      bool
	Controller Controller
	Pawn       Pawn
}

// IsAlive requires both the controller's alive flag and positive pawn health
func (e *Entity) IsAlive() bool {
	return e.Controller.Alive == 1 && e.Pawn.Health > 0
}

// InScreen projects the pawn's origin
func (e *Entity) InScreen(proj targeting.Projector, win targeting.Window) (targeting.Vec2, bool) {
	return proj.WorldToScreen(e.Pawn.Position, win)
}

// AimPoint is the world position of joint j, or the origin when no skeleton was read
func (e *Entity) AimPoint(j bone.Joint) targeting.Vec3 {
	if p := e.Pawn.Skeleton.At(j); !p.World.IsZero() {
		return p.World
	}
	return e.Pawn.Position
}

// Candidate describes the entity for target ranking
func (e *Entity) Candidate(aim bone.Joint) targeting.Candidate {
	return targeting.Candidate{
		Index: e.Index,
		Team:  e.Controller.Team,
		Alive: e.IsAlive(),
		Aim:   e.AimPoint(aim),
		Mask:  e.Pawn.SpottedByMask,
	}
}

// Viewer describes the entity as the local player for target ranking
func (e *Entity) Viewer() targeting.Viewer {
	return targeting.Viewer{
		Index:  e.Index,
		Team:   e.Controller.Team,
		Camera: e.Pawn.Camera,
		View:   e.Pawn.ViewAngles,
		Mask:   e.Pawn.SpottedByMask,
	}
}
