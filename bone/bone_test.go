package bone_test

import (
	"testing"

	"nvext/bone"
	"nvext/offsets"
	"nvext/process"
	"nvext/process_blob"
	"nvext/targeting"
)

// flat projects world (x, y) straight onto the screen
type flat struct{}

func (flat) WorldToScreen(pos targeting.Vec3, win targeting.Window) (targeting.Vec2, bool) {
	p := targeting.Vec2{X: pos.X, Y: pos.Y}
	return p, win.Contains(p)
}

func TestUpdate(t *testing.T) {
	profile, err := offsets.Embedded().Profile("")
	if err != nil {
		t.Fatal(err)
	}

	blob := process_blob.NewProcessBlob()
	pawn := blob.Alloc(0x2000)
	node := blob.Alloc(0x400)
	array := blob.Alloc(0x1000)

	sceneNode, _ := profile.Get(offsets.EntitySceneNode)
	model, _ := profile.Get(offsets.SkeletonModel)
	bones, _ := profile.Get(offsets.ModelStateBones)

	blob.PutPointer(pawn.Add(sceneNode), node)
	blob.PutPointer(node.Add(model+bones), array)

	// 32 byte stride: position then scale then rotation
	for j := 0; j < bone.JointCount; j++ {
		blob.PutFLOAT32(array.Add(uint64(j)*0x20), float32(j*10), float32(j), 64)
	}

	r, err := bone.New(blob, profile)
	if err != nil {
		t.Fatal(err)
	}

	s, err := r.Update(pawn, targeting.Window{Width: 100, Height: 100}, flat{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	head := s.At(bone.Head)
	if head.World != (targeting.Vec3{X: 60, Y: 6, Z: 64}) {
		t.Errorf("unexpected head position %+v", head.World)
	}
	if !head.OnScreen || head.Screen != (targeting.Vec2{X: 60, Y: 6}) {
		t.Errorf("unexpected head projection %+v", head)
	}

	if s.At(bone.AnkleR).OnScreen {
		t.Error("joint at x=270 should be off screen")
	}
}

func TestUpdateFailures(t *testing.T) {
	profile, _ := offsets.Embedded().Profile("")
	blob := process_blob.NewProcessBlob()
	pawn := blob.Alloc(0x2000)

	r, _ := bone.New(blob, profile)

	if _, err := r.Update(0, targeting.Window{}, flat{}); !process.IsAbsent(err) {
		t.Errorf("Expected absent for null pawn, got %v", err)
	}

	// scene node pointer is zero
	if _, err := r.Update(pawn, targeting.Window{}, flat{}); !process.IsAbsent(err) {
		t.Errorf("Expected absent for missing scene node, got %v", err)
	}

	// bone array points at unmapped memory
	node := blob.Alloc(0x400)
	sceneNode, _ := profile.Get(offsets.EntitySceneNode)
	model, _ := profile.Get(offsets.SkeletonModel)
	bones, _ := profile.Get(offsets.ModelStateBones)
	blob.PutPointer(pawn.Add(sceneNode), node)
	blob.PutPointer(node.Add(model+bones), 0x7000_0000)

	if _, err := r.Update(pawn, targeting.Window{}, flat{}); err == nil || process.IsAbsent(err) {
		t.Errorf("Expected a read failure, got %v", err)
	}
}

func TestNewMissingOffsets(t *testing.T) {
	if _, err := bone.New(process_blob.NewProcessBlob(), &offsets.Profile{Build: "empty"}); err == nil {
		t.Error("Expected error for a profile without skeleton offsets")
	}
}
