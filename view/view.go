// Package view reads the engine's view-projection matrix and projects world
// positions into the game window.
package view

import (
	"fmt"

	"nvext/pod"
	"nvext/process"
	"nvext/targeting"
)

// Matrix is the row-major 4x4 view-projection matrix as the engine stores it
type Matrix [4][4]float32

// minW rejects points at or behind the camera plane
const minW = 0.01

// View is a snapshot of the camera used for projection. It implements targeting.Projector.
type View struct {
	Matrix Matrix
}

var _ targeting.Projector = View{}

// Read loads the view matrix stored at addr
func Read(r process.Reader, addr process.ProcessMemoryAddress) (View, error) {
	m, err := pod.ReadT[Matrix](r, addr)
	if err != nil {
		return View{}, fmt.Errorf("view matrix: %w", err)
	}
	return View{Matrix: m}, nil
}

// WorldToScreen projects pos into client-area coordinates offset by the window origin
func (v View) WorldToScreen(pos targeting.Vec3, win targeting.Window) (targeting.Vec2, bool) {
	m := &v.Matrix

	w := m[3][0]*pos.X + m[3][1]*pos.Y + m[3][2]*pos.Z + m[3][3]
	if w < minW {
		return targeting.Vec2{}, false
	}

	x := (m[0][0]*pos.X + m[0][1]*pos.Y + m[0][2]*pos.Z + m[0][3]) / w
	y := (m[1][0]*pos.X + m[1][1]*pos.Y + m[1][2]*pos.Z + m[1][3]) / w

	halfW := float32(win.Width) / 2
	halfH := float32(win.Height) / 2

	screen := targeting.Vec2{
		X: halfW + x*halfW,
		Y: halfH - y*halfH,
	}

	if !win.Contains(screen) {
		return targeting.Vec2{}, false
	}

	screen.X += float32(win.X)
	screen.Y += float32(win.Y)
	return screen, true
}
