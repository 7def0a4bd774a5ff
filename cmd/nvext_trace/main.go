package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nvext/attach"
	"nvext/game"
	"nvext/hexdump"
	"nvext/offsets"
	"nvext/process"
)

func parseOffsets(s string) ([]uint64, error) {
	var offs []uint64
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		v, err := strconv.ParseUint(part, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", part, err)
		}
		offs = append(offs, v)
	}
	return offs, nil
}

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (overrides -name)")
	nameFlag := flag.String("name", attach.DefaultName, "Executable name to attach to")
	buildFlag := flag.String("build", "", "Offset profile build id")
	profilesFlag := flag.String("profiles", "", "Offset profile file (default: embedded profiles)")
	aobFlag := flag.String("aob", "", "Signature to scan for in the module, e.g. '48 8B 0D ?? ?? ?? ??'")
	sigFlag := flag.String("sig", "", "Named signature from the profile to resolve and dump")
	moduleFlag := flag.String("module", "", "Module for -offset and -aob (default: the profile's module)")
	offsetFlag := flag.String("offset", "", "Module-relative base offset for -trace")
	traceFlag := flag.String("trace", "", "Pointer chain from the base, e.g. '0x0,0x10,0'")
	sizeFlag := flag.Uint("size", 0x100, "Bytes to dump at the final address")
	classFlag := flag.String("class", "", "Comma separated classes whose fields label the dump")
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
		fmt.Printf("Error selecting profile: %v\n", err)
		os.Exit(1)
	}

	module := *moduleFlag
	if module == "" {
		module = profile.Module
	}

	if *aobFlag == "" && *sigFlag == "" && *offsetFlag == "" {
		fmt.Println("Error: one of --aob, --sig or --offset is required")
		flag.Usage()
		os.Exit(1)
	}

	proc, err := attach.Open(*pidFlag, *nameFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Attached to process %d\n", proc.GetPID())

	if err := proc.UpdateMemoryMap(); err != nil {
		fmt.Printf("Error updating memory map: %v\n", err)
		os.Exit(1)
	}
	regions, _ := proc.GetMemoryMap()

	opts := hexdump.DefaultOptions()
	opts.Regions = regions
	if *classFlag != "" {
		opts.Labels = hexdump.LabelsFor(profile, strings.Split(*classFlag, ",")...)
	}

	dump := func(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, o hexdump.Options) {
		data, err := proc.ReadMemory(addr, size)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", addr.ToString(), err)
			return
		}
		o.Base = uint64(addr)
		hexdump.Write(os.Stdout, data, o)
	}

	if *aobFlag != "" {
		aob, err := process.ParseSignature(*aobFlag)
		if err != nil {
			fmt.Printf("Error parsing AOB: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Scanning %s for pattern: %s\n", module, aob)
		match, err := proc.ScanModule(module, aob)
		if err != nil {
			fmt.Printf("Error scanning module: %v\n", err)
			os.Exit(1)
		}

		base, _, _ := proc.ModuleBase(module)
		fmt.Printf("Match at %s (%s+0x%x)\n", match.ToString(), module, uint64(match-base))

		o := opts
		o.Labels = nil
		o.Highlight = aob.Pattern
		dump(match-16, process.ProcessMemorySize(32+len(aob.Pattern)), o)
	}

	if *sigFlag != "" {
		sig, ok := profile.Signature(*sigFlag)
		if !ok {
			fmt.Printf("Error: build %s has no signature %q\n", profile.Build, *sigFlag)
			os.Exit(1)
		}

		aob, err := process.ParseSignature(sig.Pattern)
		if err != nil {
			fmt.Printf("Error parsing signature %s: %v\n", *sigFlag, err)
			os.Exit(1)
		}

		match, err := proc.ScanModule(module, aob)
		if err != nil {
			fmt.Printf("Error scanning for %s: %v\n", *sigFlag, err)
			os.Exit(1)
		}

		addr, err := game.ResolveRelative(proc, match, sig)
		if err != nil {
			fmt.Printf("Error resolving %s: %v\n", *sigFlag, err)
			os.Exit(1)
		}

		ptr, _ := process.ReadPointer(proc, addr)
		fmt.Printf("%s: match %s -> global %s -> %s\n", *sigFlag, match.ToString(), addr.ToString(), ptr.ToString())
		dump(addr, process.ProcessMemorySize(*sizeFlag), opts)
	}

	if *offsetFlag != "" {
		off, err := strconv.ParseUint(*offsetFlag, 0, 64)
		if err != nil {
			fmt.Printf("Error parsing --offset: %v\n", err)
			os.Exit(1)
		}

		chain, err := parseOffsets(*traceFlag)
		if err != nil {
			fmt.Printf("Error parsing --trace: %v\n", err)
			os.Exit(1)
		}

		base, err := process.ModuleAddress(proc, module, off)
		if err != nil {
			fmt.Printf("Error locating %s: %v\n", module, err)
			os.Exit(1)
		}

		addr := base
		if len(chain) > 0 {
			if addr, err = process.Trace(proc, base, chain...); err != nil {
				fmt.Printf("Error tracing %s via %v: %v\n", base.ToString(), chain, err)
				os.Exit(1)
			}
		}

		fmt.Printf("%s+0x%x -> %s\n", module, off, addr.ToString())
		dump(addr, process.ProcessMemorySize(*sizeFlag), opts)
	}
}
