// Package game discovers the client module's globals by signature and
// snapshots the dynamic addresses the resolvers read from.
package game

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"nvext/offsets"
	"nvext/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// ErrNotDiscovered is returned by Refresh before Discover has located the entity list
var ErrNotDiscovered = errors.New("entity list not discovered")

// Statics are the addresses of the globals inside the client module. They only
// change when the module is reloaded.
type Statics struct {
	EntityList      process.ProcessMemoryAddress
	LocalController process.ProcessMemoryAddress
	LocalPawn       process.ProcessMemoryAddress
	PlantedC4       process.ProcessMemoryAddress
	ViewAngles      process.ProcessMemoryAddress
	ViewMatrix      process.ProcessMemoryAddress
}

// Context is one read of the dynamic heads. Resolvers take it by value and never modify it.
type Context struct {
	EntityList      process.ProcessMemoryAddress // dereferenced list head
	LocalController process.ProcessMemoryAddress
	LocalPawn       process.ProcessMemoryAddress
	PlantedC4       process.ProcessMemoryAddress // static slot, decoders dereference it
	ViewAngles      process.ProcessMemoryAddress
	ViewMatrix      process.ProcessMemoryAddress
}

// Game owns address discovery for one attached process
type Game struct {
	p       process.Process
	profile *offsets.Profile
	log     *logger.Logger

	mu      sync.RWMutex
	statics Statics
}

func New(p process.Process, profile *offsets.Profile) *Game {
	return &Game{
		p:       p,
		profile: profile,
		log:     logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.BrightBlack, "game")),
	}
}

// Profile returns the offsets this game was discovered with
func (g *Game) Profile() *offsets.Profile {
	return g.profile
}

// Statics returns the last discovered static addresses
func (g *Game) Statics() Statics {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.statics
}

// Discover scans the client module for every signature in the profile. Only a
// missing entity list is fatal; other misses leave the address zero.
func (g *Game) Discover() error {
	var s Statics

	targets := []struct {
		name string
		dst  *process.ProcessMemoryAddress
	}{
		{offsets.SigEntityList, &s.EntityList},
		{offsets.SigLocalController, &s.LocalController},
		{offsets.SigLocalPawn, &s.LocalPawn},
		{offsets.SigPlantedC4, &s.PlantedC4},
		{offsets.SigViewAngles, &s.ViewAngles},
		{offsets.SigViewMatrix, &s.ViewMatrix},
	}

	for _, target := range targets {
		addr, err := g.find(target.name)
		if err != nil {
			if target.name == offsets.SigEntityList {
				return fmt.Errorf("discover %s: %w", target.name, err)
			}
			g.log.Warn("Signature ", target.name, " not resolved: ", err)
			continue
		}

		*target.dst = addr
		g.log.Debugln("Resolved", target.name, "at", addr.ToString())
	}

	g.mu.Lock()
	g.statics = s
	g.mu.Unlock()

	g.log.Infoln("Discovered globals in", g.profile.Module, "for build", g.profile.Build)
	return nil
}

func (g *Game) find(name string) (process.ProcessMemoryAddress, error) {
	sig, ok := g.profile.Signature(name)
	if !ok {
		return 0, fmt.Errorf("no signature in build %q", g.profile.Build)
	}

	aob, err := process.ParseSignature(sig.Pattern)
	if err != nil {
		return 0, err
	}

	match, err := g.p.ScanModule(g.profile.Module, aob)
	if err != nil {
		return 0, err
	}

	return ResolveRelative(g.p, match, sig)
}

// ResolveRelative follows the 32-bit displacement of the instruction at match
func ResolveRelative(r process.Reader, match process.ProcessMemoryAddress, sig offsets.Signature) (process.ProcessMemoryAddress, error) {
	data, err := process.Read(r, match.Add(uint64(sig.Operand)), 4)
	if err != nil {
		return 0, fmt.Errorf("displacement at %s: %w", match.ToString(), err)
	}

	disp := int64(int32(binary.LittleEndian.Uint32(data)))
	addr := int64(match) + int64(sig.Length) + disp + int64(sig.Extra)
	return process.ProcessMemoryAddress(addr), nil
}

// Refresh reads the dynamic heads from the discovered statics. A local player
// that is not in game yet leaves the local addresses zero.
func (g *Game) Refresh() (Context, error) {
	s := g.Statics()
	if s.EntityList == 0 {
		return Context{}, ErrNotDiscovered
	}

	head, err := process.ReadPointer(g.p, s.EntityList)
	if err != nil {
		return Context{}, fmt.Errorf("entity list head: %w", err)
	}

	ctx := Context{
		EntityList: head,
		PlantedC4:  s.PlantedC4,
		ViewAngles: s.ViewAngles,
		ViewMatrix: s.ViewMatrix,
	}

	if s.LocalController != 0 {
		ctx.LocalController, err = process.ReadPointer(g.p, s.LocalController)
		if err != nil {
			return Context{}, fmt.Errorf("local controller: %w", err)
		}
	}

	if s.LocalPawn != 0 {
		ctx.LocalPawn, err = process.ReadPointer(g.p, s.LocalPawn)
		if err != nil {
			return Context{}, fmt.Errorf("local pawn: %w", err)
		}
	}

	return ctx, nil
}

// InGame reports whether the context has everything needed to resolve players
func (c Context) InGame() bool {
	return c.EntityList != 0 && c.LocalController != 0 && c.LocalPawn != 0
}
