package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nvext/attach"
	"nvext/bone"
	"nvext/entity"
	"nvext/game"
	"nvext/offsets"
	"nvext/poll"
	"nvext/pod"
	"nvext/targeting"
	"nvext/weapon"
	"nvext/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// categoryFOV parses "sniper=2,pistol=4" into per-category FOV overrides
func categoryFOV(s string, p *targeting.Profiles) error {
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' }) {
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("expected category=fov, got %q", part)
		}
		c, ok := weapon.ParseCategory(strings.TrimSpace(name))
		if !ok {
			return fmt.Errorf("unknown weapon category %q", name)
		}
		fov, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
		if err != nil {
			return fmt.Errorf("fov for %s: %w", c, err)
		}
		p.Set(c, float32(fov))
	}
	return nil
}

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (overrides -name)")
	nameFlag := flag.String("name", attach.DefaultName, "Executable name to attach to")
	buildFlag := flag.String("build", "", "Offset profile build id (default: the set's default)")
	profilesFlag := flag.String("profiles", "", "Offset profile file (default: embedded profiles)")
	intervalFlag := flag.Duration("interval", poll.DefaultInterval, "Entity poll interval")
	refreshFlag := flag.Duration("refresh", poll.DefaultRefresh, "Dynamic head refresh interval")
	widthFlag := flag.Int("width", 1920, "Game window width")
	heightFlag := flag.Int("height", 1080, "Game window height")
	fovFlag := flag.Float64("fov", 5, "Default target FOV in degrees")
	fovByCategory := flag.String("fov-category", "", "Per-category FOV overrides, e.g. sniper=2,pistol=4")
	friendlyFlag := flag.Bool("friendly", false, "Consider teammates as targets")
	onceFlag := flag.Bool("once", false, "Print one frame and exit")
	flag.Parse()

	set := offsets.Embedded()
	if *profilesFlag != "" {
		var err error
		if set, err = offsets.LoadFile(*profilesFlag); err != nil {
			fmt.Printf("Error loading profiles: %v\n", err)
			os.Exit(1)
		}
	}

	profile, err := set.Profile(*buildFlag)
	if err != nil {
		fmt.Printf("Error selecting profile: %v (available: %s)\n", err, strings.Join(set.Builds(), ", "))
		os.Exit(1)
	}

	tuning := targeting.DefaultTuning()
	tuning.FOV = float32(*fovFlag)
	tuning.ExcludeTeam = !*friendlyFlag
	profiles := targeting.NewProfiles(tuning)
	if err := categoryFOV(*fovByCategory, profiles); err != nil {
		fmt.Printf("Error parsing -fov-category: %v\n", err)
		os.Exit(1)
	}

	proc, err := attach.Open(*pidFlag, *nameFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Attached to process %d using build %s\n", proc.GetPID(), profile.Build)

	g := game.New(proc, profile)
	if err := g.Discover(); err != nil {
		fmt.Printf("Error discovering globals: %v\n", err)
		os.Exit(1)
	}

	bones, err := bone.New(proc, profile)
	if err != nil {
		fmt.Printf("Skeletons disabled: %v\n", err)
	}

	var updater entity.BoneUpdater
	if bones != nil {
		updater = bones
	}

	resolver, err := entity.New(proc, profile, updater)
	if err != nil {
		fmt.Printf("Error building resolver: %v\n", err)
		os.Exit(1)
	}

	decoder, err := world.New(proc, profile)
	if err != nil {
		fmt.Printf("Error building bomb decoder: %v\n", err)
		os.Exit(1)
	}

	window := targeting.Window{Width: int32(*widthFlag), Height: int32(*heightFlag)}

	poller := poll.New(proc, g, resolver, decoder, poll.Config{
		Interval:    *intervalFlag,
		Refresh:     *refreshFlag,
		Window:      window,
		Aim:         bone.Head,
		Profiles:    profiles,
		ExcludeTeam: tuning.ExcludeTeam,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	table := newTable()
	last := time.Time{}

	err = poller.Run(ctx, func(f poll.Frame) {
		if !*onceFlag && f.Time.Sub(last) < time.Second {
			return
		}
		last = f.Time

		render(table, f, window)
		if *onceFlag {
			cancel()
		}
	})
	if err != nil {
		fmt.Printf("Poller stopped: %v\n", err)
		os.Exit(1)
	}
}

func newTable() *pod.Table {
	return pod.NewTable(
		pod.ColumnSpec{Header: "IDX", AlignRight: true},
		pod.ColumnSpec{Header: "NAME", MinWidth: 16},
		pod.ColumnSpec{Header: "TEAM", AlignRight: true},
		pod.ColumnSpec{Header: "HP", AlignRight: true, FormatFunc: pod.Foreground(coloransi.Green)},
		pod.ColumnSpec{Header: "AR", AlignRight: true},
		pod.ColumnSpec{Header: "WEAPON"},
		pod.ColumnSpec{Header: "AMMO", AlignRight: true},
		pod.ColumnSpec{Header: "POSITION"},
		pod.ColumnSpec{Header: "DIST", AlignRight: true},
		pod.ColumnSpec{Header: "SCREEN"},
		pod.ColumnSpec{Header: "FLAGS", FormatFunc: pod.Foreground(coloransi.Yellow)},
	)
}

func render(t *pod.Table, f poll.Frame, win targeting.Window) {
	t.Reset()
	for i := range f.Entities {
		e := &f.Entities[i]

		var flags []string
		if e.Local {
			flags = append(flags, "local")
		}
		if f.HasTarget && f.Target.Index == e.Index {
			flags = append(flags, "target")
		}
		if e.Pawn.HasFlag(entity.FlagDucking) {
			flags = append(flags, "ducking")
		}

		p := e.Pawn.Position

		var dist, screen string
		if f.HasLocal && !e.Local {
			dist = fmt.Sprintf("%.0f", p.Sub(f.Local.Pawn.Position).Length())
		}
		if s, ok := e.InScreen(f.View, win); ok {
			screen = fmt.Sprintf("%.0f,%.0f", s.X, s.Y)
		}

		t.AddRow(
			strconv.Itoa(e.Index),
			e.Controller.Name,
			strconv.Itoa(int(e.Controller.Team)),
			strconv.Itoa(int(e.Pawn.Health)),
			strconv.Itoa(int(e.Pawn.Armor)),
			e.Pawn.Weapon.Name,
			fmt.Sprintf("%d/%d", e.Pawn.Weapon.Ammo, e.Pawn.Weapon.MaxAmmo),
			fmt.Sprintf("%.0f %.0f %.0f", p.X, p.Y, p.Z),
			dist,
			screen,
			strings.Join(flags, ","),
		)
	}

	fmt.Printf("\ntick %d  players %d  crosshair %v  shoot %v\n", f.Tick, t.Len(), f.Crosshair, f.AllowShoot)
	if f.Planted {
		b := f.Bomb.Position
		fmt.Printf("bomb planted at %s (%.0f %.0f %.0f)\n", f.Bomb.Site, b.X, b.Y, b.Z)
	}
	t.Render(os.Stdout)
}
