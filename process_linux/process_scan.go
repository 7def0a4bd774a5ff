//go:build linux

package process_linux

import (
	"fmt"

	"nvext/process"
)

// Scan searches for the given pattern in the process memory
// and returns all matching addresses
func (p *LinuxProcess) Scan(aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	memMap, err := p.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	p.log.Infoln("Starting memory scan for pattern", aob.String())

	results, skipped, err := process.ScanRegions(p, memMap, aob)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		p.log.Debugln("Skipped", skipped, "unreadable regions")
	}

	p.log.Infoln("Scan complete, found", len(results), "matches")
	return results, nil
}

// ScanModule searches only the image of the named module and returns the first match
func (p *LinuxProcess) ScanModule(module string, aob process.AOB) (process.ProcessMemoryAddress, error) {
	base, size, err := p.ModuleBase(module)
	if err != nil {
		return 0, err
	}

	memMap, err := p.GetMemoryMap()
	if err != nil {
		return 0, fmt.Errorf("failed to get memory map: %w", err)
	}

	return process.ScanModuleRegions(p, memMap, base, size, aob)
}
