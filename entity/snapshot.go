package entity

import (
	"fmt"

	"nvext/game"
	"nvext/process"
	"nvext/targeting"
)

// Resolve hydrates the controller at addr and then its pawn
func (r *Resolver) Resolve(ctx game.Context, addr process.ProcessMemoryAddress, win targeting.Window, proj targeting.Projector, last *Controller) (Entity, error) {
	c, err := r.ResolveController(ctx, addr, last)
	if err != nil {
		return Entity{}, err
	}

	p, err := r.ResolvePawn(c.Pawn, win, proj)
	if err != nil {
		return Entity{}, err
	}

	return Entity{Controller: c, Pawn: p, Local: addr == ctx.LocalController}, nil
}

// Local hydrates the local player. The pawn comes from the context rather than
// the controller's handle so spectating does not swap bodies.
func (r *Resolver) Local(ctx game.Context, win targeting.Window, proj targeting.Projector, last *Controller) (Entity, error) {
	c, err := r.ResolveController(ctx, ctx.LocalController, last)
	if err != nil {
		return Entity{}, fmt.Errorf("local controller: %w", err)
	}

	p, err := r.ResolvePawn(ctx.LocalPawn, win, proj)
	if err != nil {
		return Entity{}, fmt.Errorf("local pawn: %w", err)
	}

	return Entity{Controller: c, Pawn: p, Local: true}, nil
}

// Snapshot walks controller slots 1..MaxPlayers and returns every entity that
// resolved. prev is the previous snapshot and only feeds the name cache.
func (r *Resolver) Snapshot(ctx game.Context, win targeting.Window, proj targeting.Projector, prev []Entity) ([]Entity, error) {
	if ctx.EntityList == 0 {
		return nil, fmt.Errorf("snapshot: %w", process.ErrNullAddress)
	}

	last := make(map[process.ProcessMemoryAddress]*Controller, len(prev))
	for i := range prev {
		last[prev[i].Controller.Address] = &prev[i].Controller
	}

	var out []Entity
	for i := 1; i <= r.list.MaxPlayers; i++ {
		addr, err := r.ControllerAt(ctx, i)
		if err != nil {
			if !process.IsAbsent(err) {
				r.log.Debugln("Slot", i, "unreadable:", err)
			}
			continue
		}

		e, err := r.Resolve(ctx, addr, win, proj, last[addr])
		if err != nil {
			if !process.IsAbsent(err) {
				r.log.Debugln("Slot", i, "unresolved:", err)
			}
			continue
		}

		e.Index = i
		out = append(out, e)
	}

	return out, nil
}

// LocalIndex returns the slot of the local player in a snapshot, or -1
func LocalIndex(entities []Entity) int {
	for _, e := range entities {
		if e.Local {
			return e.Index
		}
	}
	return -1
}

// NoEntity is the crosshair index when nothing is aimed at
const NoEntity = 0xFFFFFFFF

// EntityAtCrosshair resolves the pawn under the local player's crosshair. found
// is false when nothing resolvable is there, including NoEntity and index 0 (the
// world). allowShoot additionally requires the pawn to be alive and, with
// excludeTeam, on another team.
func (r *Resolver) EntityAtCrosshair(ctx game.Context, local *Entity, excludeTeam bool, win targeting.Window, proj targeting.Projector) (found, allowShoot bool) {
	handle, err := process.ReadOffset[uint32](r.r, local.Pawn.Address, r.off.crosshair)
	if err != nil || handle == NoEntity || handle&r.list.IndexMask == 0 {
		return false, false
	}

	addr, err := r.Handle(ctx, handle)
	if err != nil {
		return false, false
	}

	p, err := r.ResolvePawn(addr, win, proj)
	if err != nil {
		return false, false
	}

	team, err := process.ReadOffset[uint8](r.r, addr, r.off.team)
	if err != nil {
		return false, false
	}

	allowShoot = p.Health > 0
	if excludeTeam {
		allowShoot = allowShoot && team != local.Controller.Team
	}
	return true, allowShoot
}
