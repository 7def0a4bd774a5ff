// Package poll drives resolution on a fixed cadence: a fast tick re-reads every
// entity and a slow tick re-reads the dynamic heads.
package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"nvext/bone"
	"nvext/entity"
	"nvext/game"
	"nvext/process"
	"nvext/targeting"
	"nvext/view"
	"nvext/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	DefaultInterval = 25 * time.Millisecond
	DefaultRefresh  = time.Second
)

// Heads supplies the per-cycle context. *game.Game implements it.
type Heads interface {
	Refresh() (game.Context, error)
}

// Frame is everything resolved in one tick
type Frame struct {
	Tick     uint64
	Time     time.Time
	Context  game.Context
	View     view.View
	Local    entity.Entity
	HasLocal bool
	Entities []entity.Entity
	Bomb     world.Bomb
	Planted  bool

	Crosshair  bool
	AllowShoot bool

	Target      targeting.Candidate
	TargetScore float32
	HasTarget   bool
}

// Config tunes a Poller
type Config struct {
	Interval    time.Duration
	Refresh     time.Duration
	Window      targeting.Window
	Aim         bone.Joint
	Profiles    *targeting.Profiles
	ExcludeTeam bool
}

// Poller owns the scheduling; everything it calls is stateless
type Poller struct {
	r        process.Reader
	heads    Heads
	resolver *entity.Resolver
	world    *world.Decoder
	cfg      Config
	log      *logger.Logger

	ctx   game.Context
	prev  []entity.Entity
	local *entity.Controller
	ticks atomic.Uint64
}

func New(r process.Reader, heads Heads, resolver *entity.Resolver, decoder *world.Decoder, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefresh
	}
	if cfg.Profiles == nil {
		cfg.Profiles = targeting.NewProfiles(targeting.DefaultTuning())
	}

	return &Poller{
		r:        r,
		heads:    heads,
		resolver: resolver,
		world:    decoder,
		cfg:      cfg,
		log:      logger.NewLogger(coloransi.Color(coloransi.Yellow, coloransi.BrightBlack, "poll")),
	}
}

// Ticks returns how many frames have been produced
func (p *Poller) Ticks() uint64 {
	return p.ticks.Load()
}

// Run polls until ctx is cancelled, handing each frame to fn. Heads that fail to
// refresh are retried on the next slow tick; frames keep flowing with the last good context.
func (p *Poller) Run(ctx context.Context, fn func(Frame)) error {
	p.refresh()

	fast := time.NewTicker(p.cfg.Interval)
	defer fast.Stop()
	slow := time.NewTicker(p.cfg.Refresh)
	defer slow.Stop()

	p.log.Infoln("Polling every", p.cfg.Interval, "refreshing every", p.cfg.Refresh)

	for {
		select {
		case <-ctx.Done():
			p.log.Infoln("Stopped after", p.Ticks(), "frames")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-slow.C:
			p.refresh()
		case now := <-fast.C:
			fn(p.Step(now))
		}
	}
}

func (p *Poller) refresh() {
	ctx, err := p.heads.Refresh()
	if err != nil {
		p.log.Warn("Refresh failed: ", err)
		return
	}

	if ctx.InGame() != p.ctx.InGame() {
		p.log.Infoln("In game:", ctx.InGame())
	}
	p.ctx = ctx
}

// Step resolves one frame against the current context
func (p *Poller) Step(now time.Time) Frame {
	f := Frame{Tick: p.ticks.Add(1), Time: now, Context: p.ctx}

	var proj targeting.Projector
	if p.ctx.ViewMatrix != 0 {
		if v, err := view.Read(p.r, p.ctx.ViewMatrix); err == nil {
			f.View = v
			proj = v
		}
	}

	entities, err := p.resolver.Snapshot(p.ctx, p.cfg.Window, proj, p.prev)
	if err != nil {
		return f
	}
	f.Entities = entities
	p.prev = entities

	if local, err := p.resolver.Local(p.ctx, p.cfg.Window, proj, p.local); err == nil {
		local.Index = entity.LocalIndex(entities)
		f.Local, f.HasLocal = local, true
		p.local = &f.Local.Controller
	}

	if p.world != nil {
		f.Bomb, f.Planted = p.world.Bomb(p.ctx)
	}

	if !f.HasLocal {
		return f
	}

	f.Crosshair, f.AllowShoot = p.resolver.EntityAtCrosshair(p.ctx, &f.Local, p.cfg.ExcludeTeam, p.cfg.Window, proj)

	tune := p.cfg.Profiles.For(f.Local.Pawn.Weapon.Category)
	candidates := make([]targeting.Candidate, 0, len(entities))
	for i := range entities {
		candidates = append(candidates, entities[i].Candidate(p.cfg.Aim))
	}
	f.Target, f.TargetScore, f.HasTarget = tune.Pick(f.Local.Viewer(), candidates)

	return f
}
