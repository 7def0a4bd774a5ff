package offsets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed profiles/default.json
var defaultProfiles []byte

// ErrUnknownBuild is returned when a Set has no profile for the requested build
var ErrUnknownBuild = errors.New("unknown build")

// Set is a collection of profiles keyed by build id
type Set struct {
	Default  string     `json:"default"`
	Profiles []*Profile `json:"profiles"`
}

// Load decodes a profile set. A document holding a single profile is accepted too.
func Load(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	set := &Set{}
	if _, ok := top["profiles"]; ok {
		if err := json.Unmarshal(data, set); err != nil {
			return nil, fmt.Errorf("decode profiles: %w", err)
		}
	} else {
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		set.Profiles = []*Profile{&p}
	}

	seen := make(map[string]bool)
	for i, p := range set.Profiles {
		if p.Build == "" {
			return nil, fmt.Errorf("profile %d has no build id", i)
		}
		if seen[p.Build] {
			return nil, fmt.Errorf("duplicate profile for build %q", p.Build)
		}
		seen[p.Build] = true
	}

	if set.Default == "" && len(set.Profiles) > 0 {
		set.Default = set.Profiles[0].Build
	}

	return set, nil
}

// LoadFile loads a profile set from path
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Embedded returns the profile set compiled into the binary
func Embedded() *Set {
	set, err := Load(strings.NewReader(string(defaultProfiles)))
	if err != nil {
		panic("offsets: embedded profiles are invalid: " + err.Error())
	}
	return set
}

// Profile returns the profile for build, or the default profile when build is empty
func (s *Set) Profile(build string) (*Profile, error) {
	if build == "" {
		build = s.Default
	}

	for _, p := range s.Profiles {
		if p.Build == build {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%q (have %s): %w", build, strings.Join(s.Builds(), ", "), ErrUnknownBuild)
}

// Builds lists the known build ids in sorted order
func (s *Set) Builds() []string {
	builds := make([]string, 0, len(s.Profiles))
	for _, p := range s.Profiles {
		builds = append(builds, p.Build)
	}
	sort.Strings(builds)
	return builds
}
