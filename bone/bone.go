// Package bone reads a pawn's skeleton from its scene node and projects the joints.
package bone

import (
	"fmt"

	"nvext/offsets"
	"nvext/pod"
	"nvext/process"
	"nvext/targeting"
)

// Joint indexes into the skeleton's bone array
type Joint int

const (
	Pelvis     Joint = 0
	Spine2     Joint = 2
	Spine1     Joint = 4
	Neck       Joint = 5
	Head       Joint = 6
	UpperArmL  Joint = 8
	LowerArmL  Joint = 9
	HandL      Joint = 10
	UpperArmR  Joint = 13
	LowerArmR  Joint = 14
	HandR      Joint = 15
	UpperLegL  Joint = 22
	LowerLegL  Joint = 23
	AnkleL     Joint = 24
	UpperLegR  Joint = 25
	LowerLegR  Joint = 26
	AnkleR     Joint = 27
	JointCount       = 28
)

// boneData is one entry of the engine's bone array
type boneData struct {
	Pos      targeting.Vec3
	Scale    float32
	Rotation [4]float32
}

// Point is a joint in world and screen space
type Point struct {
	World    targeting.Vec3
	Screen   targeting.Vec2
	OnScreen bool
}

// Skeleton holds every joint of one pawn for one frame
type Skeleton struct {
	Points [JointCount]Point
}

// At returns the joint j
func (s *Skeleton) At(j Joint) Point {
	return s.Points[j]
}

// Reader resolves skeletons for pawns of one build
type Reader struct {
	r         process.Reader
	sceneNode uint64
	bones     uint64
}

// New binds a Reader to the offsets in p
func New(r process.Reader, p *offsets.Profile) (*Reader, error) {
	sceneNode, err := p.Get(offsets.EntitySceneNode)
	if err != nil {
		return nil, err
	}
	model, err := p.Get(offsets.SkeletonModel)
	if err != nil {
		return nil, err
	}
	array, err := p.Get(offsets.ModelStateBones)
	if err != nil {
		return nil, err
	}

	return &Reader{r: r, sceneNode: sceneNode, bones: model + array}, nil
}

// Update reads the bone array of pawn and projects each joint. A joint that
// does not project is kept with OnScreen false; only read failures are errors.
func (b *Reader) Update(pawn process.ProcessMemoryAddress, win targeting.Window, proj targeting.Projector) (Skeleton, error) {
	array, err := process.Trace(b.r, pawn, b.sceneNode, b.bones, 0)
	if err != nil {
		return Skeleton{}, fmt.Errorf("bone array: %w", err)
	}

	raw, err := pod.ReadSliceT[boneData](b.r, array, JointCount)
	if err != nil {
		return Skeleton{}, fmt.Errorf("bone data: %w", err)
	}

	var s Skeleton
	for i, d := range raw {
		s.Points[i].World = d.Pos
		if proj != nil {
			s.Points[i].Screen, s.Points[i].OnScreen = proj.WorldToScreen(d.Pos, win)
		}
	}
	return s, nil
}
