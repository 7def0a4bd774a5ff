// Package entity hydrates player controllers and pawns from the game's entity
// list. Every resolution re-reads remote memory and aborts on the first failed
// read, so no partially filled value is ever returned.
package entity

import (
	"fmt"

	"nvext/bone"
	"nvext/game"
	"nvext/offsets"
	"nvext/pod"
	"nvext/process"
	"nvext/targeting"
	"nvext/weapon"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	// NameSize is the declared size of the controller's name buffer
	NameSize = 128
	// WeaponNameSize is how much of the designer name is read
	WeaponNameSize = 40
)

// BoneUpdater computes the skeleton of a pawn
type BoneUpdater interface {
	Update(pawn process.ProcessMemoryAddress, win targeting.Window, proj targeting.Projector) (bone.Skeleton, error)
}

type fieldOffsets struct {
	health, team, flags uint64

	alive, name, pawnHandle uint64

	camera, origin, eyeAngles, clippingWeapon, crosshair uint64
	spotted, aimPunch, shotsFired, armor                 uint64
	cameraServices, cameraFOV                            uint64

	identity, designerName    uint64
	vdata, clip, vdataMaxClip uint64
}

// Resolver turns addresses into Controllers and Pawns for one build. It holds
// no per-call state and is safe for concurrent use when its Reader is.
type Resolver struct {
	r     process.Reader
	bones BoneUpdater
	list  offsets.EntityList
	off   fieldOffsets
	log   *logger.Logger
}

// New binds a Resolver to the offsets of profile. bones may be nil, in which
// case pawns are resolved without a skeleton.
func New(r process.Reader, profile *offsets.Profile, bones BoneUpdater) (*Resolver, error) {
	required := append(append([]offsets.Field{}, offsets.ControllerFields...), offsets.PawnFields...)
	required = append(required, offsets.PawnCrosshairIndex, offsets.PawnArmor, offsets.PawnShotsFired,
		offsets.PawnCameraServices, offsets.CameraFOV)
	if err := profile.Validate(required); err != nil {
		return nil, err
	}

	get := func(f offsets.Field) uint64 {
		v, _ := profile.Get(f)
		return v
	}

	return &Resolver{
		r:     r,
		bones: bones,
		list:  profile.Entities(),
		off: fieldOffsets{
			health: get(offsets.EntityHealth),
			team:   get(offsets.EntityTeam),
			flags:  get(offsets.EntityFlags),

			alive:      get(offsets.ControllerPawnAlive),
			name:       get(offsets.ControllerName),
			pawnHandle: get(offsets.ControllerPlayerPawn),

			camera:         get(offsets.PawnCameraPos),
			origin:         get(offsets.PawnOldOrigin),
			eyeAngles:      get(offsets.PawnEyeAngles),
			clippingWeapon: get(offsets.PawnClippingWeapon),
			crosshair:      get(offsets.PawnCrosshairIndex),
			spotted:        get(offsets.PawnSpottedState) + get(offsets.SpottedByMask),
			aimPunch:       get(offsets.PawnAimPunchCache),
			shotsFired:     get(offsets.PawnShotsFired),
			armor:          get(offsets.PawnArmor),
			cameraServices: get(offsets.PawnCameraServices),
			cameraFOV:      get(offsets.CameraFOV),

			identity:     get(offsets.InstanceIdentity),
			designerName: get(offsets.IdentityDesigner),
			vdata:        get(offsets.WeaponVData),
			clip:         get(offsets.WeaponClip),
			vdataMaxClip: get(offsets.WeaponVDataMaxClip),
		},
		log: logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.BrightBlack, "entity")),
	}, nil
}

// HandleOffsets splits a handle into the page pointer offset from the list head
// and the slot offset within that page
func HandleOffsets(el offsets.EntityList, handle uint32) (page, slot uint64) {
	index := handle & el.IndexMask
	page = uint64(el.PageBase) + uint64(el.PageStride)*uint64(index>>el.PageShift)
	slot = uint64(el.SlotStride) * uint64(handle&el.SlotMask)
	return page, slot
}

// Handle converts a packed entity handle into the entity's address with two
// hops: the page pointer, then the slot within the page.
func (r *Resolver) Handle(ctx game.Context, handle uint32) (process.ProcessMemoryAddress, error) {
	pageOff, slotOff := HandleOffsets(r.list, handle)

	page, err := process.ReadOffset[process.ProcessMemoryAddress](r.r, ctx.EntityList, pageOff)
	if err != nil {
		return 0, fmt.Errorf("handle %#x page: %w", handle, err)
	}

	addr, err := process.ReadOffset[process.ProcessMemoryAddress](r.r, page, slotOff)
	if err != nil {
		return 0, fmt.Errorf("handle %#x slot: %w", handle, err)
	}

	if addr == 0 {
		return 0, fmt.Errorf("handle %#x: %w", handle, process.ErrNullAddress)
	}
	return addr, nil
}

// ControllerAt returns the address of the controller in entity slot index
func (r *Resolver) ControllerAt(ctx game.Context, index int) (process.ProcessMemoryAddress, error) {
	if index < 1 || index > r.list.MaxPlayers {
		return 0, fmt.Errorf("controller index %d out of range 1..%d", index, r.list.MaxPlayers)
	}
	return r.Handle(ctx, uint32(index))
}

// ResolveController reads the controller at addr. When the name buffer decodes
// empty the name from last is kept; last may be nil.
func (r *Resolver) ResolveController(ctx game.Context, addr process.ProcessMemoryAddress, last *Controller) (Controller, error) {
	if addr == 0 {
		return Controller{}, process.ErrNullAddress
	}

	c := Controller{Address: addr}
	var err error

	if c.Alive, err = process.ReadOffset[uint8](r.r, addr, r.off.alive); err != nil {
		return Controller{}, fmt.Errorf("controller alive: %w", err)
	}

	if c.Team, err = process.ReadOffset[uint8](r.r, addr, r.off.team); err != nil {
		return Controller{}, fmt.Errorf("controller team: %w", err)
	}

	buf, err := process.Read(r.r, addr.Add(r.off.name), NameSize)
	if err != nil {
		return Controller{}, fmt.Errorf("controller name: %w", err)
	}
	c.Name = pod.CString(buf)
	if c.Name == "" && last != nil {
		c.Name = last.Name
	}

	if c.PawnHandle, err = process.ReadOffset[uint32](r.r, addr, r.off.pawnHandle); err != nil {
		return Controller{}, fmt.Errorf("controller pawn handle: %w", err)
	}

	if c.Pawn, err = r.Handle(ctx, c.PawnHandle); err != nil {
		return Controller{}, fmt.Errorf("controller pawn: %w", err)
	}

	return c, nil
}

// ResolvePawn reads the pawn at addr. The skeleton is projected through proj into win.
func (r *Resolver) ResolvePawn(addr process.ProcessMemoryAddress, win targeting.Window, proj targeting.Projector) (Pawn, error) {
	if addr == 0 {
		return Pawn{}, process.ErrNullAddress
	}

	p := Pawn{Address: addr}
	var err error

	if p.Camera, err = process.ReadOffset[targeting.Vec3](r.r, addr, r.off.camera); err != nil {
		return Pawn{}, fmt.Errorf("pawn camera: %w", err)
	}

	if p.Position, err = process.ReadOffset[targeting.Vec3](r.r, addr, r.off.origin); err != nil {
		return Pawn{}, fmt.Errorf("pawn origin: %w", err)
	}

	if p.ViewAngles, err = process.ReadOffset[targeting.Vec2](r.r, addr, r.off.eyeAngles); err != nil {
		return Pawn{}, fmt.Errorf("pawn eye angles: %w", err)
	}

	if p.Weapon, err = r.resolveWeapon(addr); err != nil {
		return Pawn{}, fmt.Errorf("pawn weapon: %w", err)
	}

	if p.ShotsFired, err = process.ReadOffset[uint32](r.r, addr, r.off.shotsFired); err != nil {
		return Pawn{}, fmt.Errorf("pawn shots fired: %w", err)
	}

	if p.AimPunch, err = process.ReadOffset[AimPunchCache](r.r, addr, r.off.aimPunch); err != nil {
		return Pawn{}, fmt.Errorf("pawn aim punch: %w", err)
	}

	if p.Health, err = process.ReadOffset[int32](r.r, addr, r.off.health); err != nil {
		return Pawn{}, fmt.Errorf("pawn health: %w", err)
	}

	if p.Armor, err = process.ReadOffset[int32](r.r, addr, r.off.armor); err != nil {
		return Pawn{}, fmt.Errorf("pawn armor: %w", err)
	}

	services, err := process.ReadOffset[process.ProcessMemoryAddress](r.r, addr, r.off.cameraServices)
	if err != nil {
		return Pawn{}, fmt.Errorf("pawn camera services: %w", err)
	}
	if p.FOV, err = process.ReadOffset[uint32](r.r, services, r.off.cameraFOV); err != nil {
		return Pawn{}, fmt.Errorf("pawn fov: %w", err)
	}

	if p.SpottedByMask, err = process.ReadOffset[uint64](r.r, addr, r.off.spotted); err != nil {
		return Pawn{}, fmt.Errorf("pawn spotted mask: %w", err)
	}

	if p.Flags, err = process.ReadOffset[uint32](r.r, addr, r.off.flags); err != nil {
		return Pawn{}, fmt.Errorf("pawn flags: %w", err)
	}

	if r.bones != nil {
		if p.Skeleton, err = r.bones.Update(addr, win, proj); err != nil {
			return Pawn{}, fmt.Errorf("pawn skeleton: %w", err)
		}
	}

	return p, nil
}

// resolveWeapon decodes the designer name of the clipping weapon, then its ammo
// through the weapon's static data
func (r *Resolver) resolveWeapon(pawn process.ProcessMemoryAddress) (Weapon, error) {
	nameAddr, err := process.Trace(r.r, pawn, r.off.clippingWeapon, r.off.identity, r.off.designerName, 0)
	if err != nil {
		return Weapon{}, fmt.Errorf("name chain: %w", err)
	}

	buf, err := process.Read(r.r, nameAddr, WeaponNameSize)
	if err != nil {
		return Weapon{}, fmt.Errorf("name: %w", err)
	}

	w := Weapon{Info: weapon.Parse(pod.CString(buf))}

	clipping, err := process.ReadOffset[process.ProcessMemoryAddress](r.r, pawn, r.off.clippingWeapon)
	if err != nil {
		return Weapon{}, fmt.Errorf("clipping weapon: %w", err)
	}

	vdata, err := process.ReadOffset[process.ProcessMemoryAddress](r.r, clipping, r.off.vdata)
	if err != nil {
		return Weapon{}, fmt.Errorf("weapon data: %w", err)
	}

	if w.MaxAmmo, err = process.ReadOffset[int32](r.r, vdata, r.off.vdataMaxClip); err != nil {
		return Weapon{}, fmt.Errorf("max ammo: %w", err)
	}

	if w.Ammo, err = process.ReadOffset[int32](r.r, clipping, r.off.clip); err != nil {
		return Weapon{}, fmt.Errorf("ammo: %w", err)
	}

	return w, nil
}
