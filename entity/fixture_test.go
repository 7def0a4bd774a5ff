package entity

import (
	"testing"

	"nvext/game"
	"nvext/offsets"
	"nvext/process"
	"nvext/process_blob"
	"nvext/targeting"
)

// world lays out an entity list, controllers and pawns in a simulated process
type world struct {
	t       *testing.T
	blob    *process_blob.ProcessBlob
	profile *offsets.Profile
	list    offsets.EntityList
	head    process.ProcessMemoryAddress
	pages   map[uint64]process.ProcessMemoryAddress
	ctx     game.Context
}

func newWorld(t *testing.T) *world {
	t.Helper()

	profile, err := offsets.Embedded().Profile("")
	if err != nil {
		t.Fatal(err)
	}

	w := &world{
		t:       t,
		blob:    process_blob.NewProcessBlob(),
		profile: profile,
		list:    profile.Entities(),
		pages:   make(map[uint64]process.ProcessMemoryAddress),
	}
	w.head = w.blob.Alloc(0x1000)
	w.ctx = game.Context{EntityList: w.head}
	return w
}

func (w *world) off(f offsets.Field) uint64 {
	v, err := w.profile.Get(f)
	if err != nil {
		w.t.Fatal(err)
	}
	return v
}

func (w *world) must(err error) {
	w.t.Helper()
	if err != nil {
		w.t.Fatal(err)
	}
}

func (w *world) resolver(bones BoneUpdater) *Resolver {
	r, err := New(w.blob, w.profile, bones)
	w.must(err)
	return r
}

// link stores addr in the slot addressed by handle, creating the page if needed
func (w *world) link(handle uint32, addr process.ProcessMemoryAddress) {
	pageOff, slotOff := HandleOffsets(w.list, handle)

	page, ok := w.pages[pageOff]
	if !ok {
		page = w.blob.Alloc(0x10000)
		w.pages[pageOff] = page
		w.must(w.blob.PutPointer(w.head.Add(pageOff), page))
	}

	w.must(w.blob.PutPointer(page.Add(slotOff), addr))
}

func (w *world) controller(index int, alive, team uint8, name string, pawnHandle uint32) process.ProcessMemoryAddress {
	addr := w.blob.Alloc(0x1000)
	w.must(w.blob.Put(addr.Add(w.off(offsets.ControllerPawnAlive)), []byte{alive}))
	w.must(w.blob.Put(addr.Add(w.off(offsets.EntityTeam)), []byte{team}))
	w.must(w.blob.PutNTS(addr.Add(w.off(offsets.ControllerName)), name))
	w.must(w.blob.PutUINT32(addr.Add(w.off(offsets.ControllerPlayerPawn)), pawnHandle))
	w.link(uint32(index), addr)
	return addr
}

type pawnLayout struct {
	health, armor int32
	team          uint8
	weapon        string
	ammo, maxAmmo int32
	camera        targeting.Vec3
	origin        targeting.Vec3
	angles        targeting.Vec2
	flags         uint32
	spotted       uint64
	fov           uint32
	shots         uint32
}

func (w *world) pawn(handle uint32, s pawnLayout) process.ProcessMemoryAddress {
	addr := w.blob.Alloc(0x2000)

	w.must(process_blob.PutT(w.blob, addr.Add(w.off(offsets.PawnCameraPos)), s.camera))
	w.must(process_blob.PutT(w.blob, addr.Add(w.off(offsets.PawnOldOrigin)), s.origin))
	w.must(process_blob.PutT(w.blob, addr.Add(w.off(offsets.PawnEyeAngles)), s.angles))
	w.must(w.blob.PutINT32(addr.Add(w.off(offsets.EntityHealth)), s.health))
	w.must(w.blob.PutINT32(addr.Add(w.off(offsets.PawnArmor)), s.armor))
	w.must(w.blob.Put(addr.Add(w.off(offsets.EntityTeam)), []byte{s.team}))
	w.must(w.blob.PutUINT32(addr.Add(w.off(offsets.EntityFlags)), s.flags))
	w.must(w.blob.PutUINT32(addr.Add(w.off(offsets.PawnShotsFired)), s.shots))
	w.must(w.blob.PutUINT64(addr.Add(w.off(offsets.PawnSpottedState)+w.off(offsets.SpottedByMask)), s.spotted))
	w.must(process_blob.PutT(w.blob, addr.Add(w.off(offsets.PawnAimPunchCache)), AimPunchCache{Count: 2, Data: 0x1234}))

	services := w.blob.Alloc(0x1000)
	w.must(w.blob.PutPointer(addr.Add(w.off(offsets.PawnCameraServices)), services))
	w.must(w.blob.PutUINT32(services.Add(w.off(offsets.CameraFOV)), s.fov))

	gun := w.blob.Alloc(0x2000)
	identity := w.blob.Alloc(0x100)
	name := w.blob.Alloc(0x100)
	vdata := w.blob.Alloc(0x1000)
	w.must(w.blob.PutPointer(addr.Add(w.off(offsets.PawnClippingWeapon)), gun))
	w.must(w.blob.PutPointer(gun.Add(w.off(offsets.InstanceIdentity)), identity))
	w.must(w.blob.PutPointer(identity.Add(w.off(offsets.IdentityDesigner)), name))
	w.must(w.blob.PutNTS(name, s.weapon))
	w.must(w.blob.PutPointer(gun.Add(w.off(offsets.WeaponVData)), vdata))
	w.must(w.blob.PutINT32(vdata.Add(w.off(offsets.WeaponVDataMaxClip)), s.maxAmmo))
	w.must(w.blob.PutINT32(gun.Add(w.off(offsets.WeaponClip)), s.ammo))

	if handle != 0 {
		w.link(handle, addr)
	}
	return addr
}

func (w *world) setHealth(pawn process.ProcessMemoryAddress, health int32) {
	w.must(w.blob.PutINT32(pawn.Add(w.off(offsets.EntityHealth)), health))
}

func (w *world) setCrosshair(pawn process.ProcessMemoryAddress, handle uint32) {
	w.must(w.blob.PutUINT32(pawn.Add(w.off(offsets.PawnCrosshairIndex)), handle))
}
