package targeting

import "math"

// Vec2 mirrors the game's two-float layout. For view angles X is pitch and Y is yaw.
type Vec2 struct {
	X, Y float32
}

// Vec3 mirrors the game's three-float world vector layout
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Window is the client area of the game window in screen coordinates
type Window struct {
	Width, Height int32
	X, Y          int32
}

// Contains reports whether a client-relative point is inside the client area
func (w Window) Contains(p Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float32(w.Width) && p.Y <= float32(w.Height)
}

// Center is the client-relative crosshair position
func (w Window) Center() Vec2 {
	return Vec2{float32(w.Width) / 2, float32(w.Height) / 2}
}

// Projector turns world positions into screen positions. ok is false for points
// behind the camera or outside the window.
type Projector interface {
	WorldToScreen(pos Vec3, win Window) (screen Vec2, ok bool)
}
