// Package world decodes objects that live outside the player model.
package world

import (
	"fmt"

	"nvext/game"
	"nvext/offsets"
	"nvext/process"
	"nvext/targeting"
)

// plantedFlag is where the planted bool sits relative to the planted-C4 global
const plantedFlag = 8

// Site index of the second bomb site; any other value reads as site A
const siteB = 1

// Bomb is a planted C4 as of one read
type Bomb struct {
	Address  process.ProcessMemoryAddress
	Site     string
	Position targeting.Vec3
}

// Decoder reads world objects for one build
type Decoder struct {
	r         process.Reader
	site      uint64
	sceneNode uint64
	origin    uint64
}

func New(r process.Reader, profile *offsets.Profile) (*Decoder, error) {
	if err := profile.Validate(offsets.BombFields); err != nil {
		return nil, err
	}

	site, _ := profile.Get(offsets.PlantedC4Site)
	node, _ := profile.Get(offsets.EntitySceneNode)
	origin, _ := profile.Get(offsets.SceneNodeOrigin)

	return &Decoder{r: r, site: site, sceneNode: node, origin: origin}, nil
}

// SiteName maps a site index to its letter
func SiteName(index uint32) string {
	if index == siteB {
		return "B"
	}
	return "A"
}

// PlantedBomb follows the two pointers from the planted-C4 global to the bomb entity
func (d *Decoder) PlantedBomb(static process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	list, err := process.ReadOffset[process.ProcessMemoryAddress](d.r, static, 0)
	if err != nil {
		return 0, fmt.Errorf("planted c4 list: %w", err)
	}

	bomb, err := process.ReadOffset[process.ProcessMemoryAddress](d.r, list, 0)
	if err != nil {
		return 0, fmt.Errorf("planted c4: %w", err)
	}

	if bomb == 0 {
		return 0, process.ErrNullAddress
	}
	return bomb, nil
}

// IsPlanted reads the flag stored just before the planted-C4 global
func (d *Decoder) IsPlanted(static process.ProcessMemoryAddress) (bool, error) {
	if static <= plantedFlag {
		return false, process.ErrNullAddress
	}

	flag, err := process.ReadT[uint8](d.r, static-plantedFlag)
	if err != nil {
		return false, fmt.Errorf("planted flag: %w", err)
	}
	return flag != 0, nil
}

// BombSite reads the site letter of the bomb entity
func (d *Decoder) BombSite(bomb process.ProcessMemoryAddress) (string, error) {
	index, err := process.ReadOffset[uint32](d.r, bomb, d.site)
	if err != nil {
		return "", fmt.Errorf("bomb site: %w", err)
	}
	return SiteName(index), nil
}

// BombPosition reads the origin of the bomb's scene node
func (d *Decoder) BombPosition(bomb process.ProcessMemoryAddress) (targeting.Vec3, error) {
	node, err := process.ReadOffset[process.ProcessMemoryAddress](d.r, bomb, d.sceneNode)
	if err != nil {
		return targeting.Vec3{}, fmt.Errorf("bomb scene node: %w", err)
	}

	pos, err := process.ReadOffset[targeting.Vec3](d.r, node, d.origin)
	if err != nil {
		return targeting.Vec3{}, fmt.Errorf("bomb origin: %w", err)
	}
	return pos, nil
}

// Bomb returns the planted bomb. ok is false when nothing is planted or any
// read along the way failed.
func (d *Decoder) Bomb(ctx game.Context) (Bomb, bool) {
	planted, err := d.IsPlanted(ctx.PlantedC4)
	if err != nil || !planted {
		return Bomb{}, false
	}

	addr, err := d.PlantedBomb(ctx.PlantedC4)
	if err != nil {
		return Bomb{}, false
	}

	site, err := d.BombSite(addr)
	if err != nil {
		return Bomb{}, false
	}

	pos, err := d.BombPosition(addr)
	if err != nil {
		return Bomb{}, false
	}

	return Bomb{Address: addr, Site: site, Position: pos}, true
}
