package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"nvext/attach"
	"nvext/game"
	"nvext/offsets"
	"nvext/process"
	"nvext/search"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (overrides -name)")
	nameFlag := flag.String("name", attach.DefaultName, "Executable name to attach to")
	buildFlag := flag.String("build", "", "Offset profile build id")
	profilesFlag := flag.String("profiles", "", "Offset profile file (default: embedded profiles)")
	fromFlag := flag.String("from", "pawn", "Search root: pawn, controller, or a hex address")
	strFlag := flag.String("string", "", "Search for a NUL terminated string")
	intFlag := flag.String("int32", "", "Search for an int32 value")
	floatFlag := flag.String("float", "", "Search for a float32 value")
	tolFlag := flag.Float64("tolerance", 0.01, "Tolerance for -float")
	depthFlag := flag.Int("depth", 2, "Maximum pointer hops from the root")
	sizeFlag := flag.Uint("size", 0x2000, "Bytes scanned per object")
	alignFlag := flag.Uint("align", 4, "Alignment of candidate offsets")
	maxFlag := flag.Int("max", 64, "Stop after this many results")
	flag.Parse()

	opts := []search.Option{
		search.WithMaxDepth(*depthFlag),
		search.WithMaxStructSize(*sizeFlag),
		search.WithMinAlignment(*alignFlag),
		search.WithMaxResults(*maxFlag),
	}

	switch {
	case *strFlag != "":
		opts = append(opts, search.WithString(*strFlag))
	case *intFlag != "":
		v, err := strconv.ParseInt(*intFlag, 0, 32)
		if err != nil {
			fmt.Printf("Error parsing --int32: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, search.WithValue(int32(v)))
	case *floatFlag != "":
		v, err := strconv.ParseFloat(*floatFlag, 32)
		if err != nil {
			fmt.Printf("Error parsing --float: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, search.WithFloatNear(float32(v), float32(*tolFlag)))
	default:
		fmt.Println("Error: one of --string, --int32 or --float is required")
		flag.Usage()
		os.Exit(1)
	}

	proc, err := attach.Open(*pidFlag, *nameFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	if err := proc.UpdateMemoryMap(); err != nil {
		fmt.Printf("Error updating memory map: %v\n", err)
		os.Exit(1)
	}

	var root process.ProcessMemoryAddress
	switch *fromFlag {
	case "pawn", "controller":
		set := offsets.Embedded()
		if *profilesFlag != "" {
			if set, err = offsets.LoadFile(*profilesFlag); err != nil {
				fmt.Printf("Error loading profiles: %v\n", err)
				os.Exit(1)
			}
		}
		profile, err := set.Profile(*buildFlag)
		if err != nil {
			fmt.Printf("Error selecting profile: %v\n", err)
			os.Exit(1)
		}

		g := game.New(proc, profile)
		if err := g.Discover(); err != nil {
			fmt.Printf("Error discovering globals: %v\n", err)
			os.Exit(1)
		}
		ctx, err := g.Refresh()
		if err != nil {
			fmt.Printf("Error reading globals: %v\n", err)
			os.Exit(1)
		}

		root = ctx.LocalPawn
		if *fromFlag == "controller" {
			root = ctx.LocalController
		}
	default:
		v, err := strconv.ParseUint(*fromFlag, 0, 64)
		if err != nil {
			fmt.Printf("Error parsing --from: %v\n", err)
			os.Exit(1)
		}
		root = process.ProcessMemoryAddress(v)
	}

	if root == 0 {
		fmt.Printf("Error: %s is not available (not in a match?)\n", *fromFlag)
		os.Exit(1)
	}

	fmt.Printf("Searching from %s (%s)\n", *fromFlag, root.ToString())

	results, err := search.Search(proc, root, opts...)
	if err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d results:\n", len(results))
	for _, r := range results {
		chain, field := r.Offsets()
		fmt.Printf("  %s  trace %#x field %#x\n", r, chain, field)
	}
}
