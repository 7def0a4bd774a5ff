// Package offsets holds the per-build layout of the game's classes: byte
// offsets keyed by (class, field), the signatures used to locate globals,
// and the entity list geometry. Profiles are data, loaded at startup.
package offsets

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names one member of one class
type Field struct {
	Class string
	Name  string
}

func (f Field) String() string {
	return f.Class + "::" + f.Name
}

// MissingFieldError is returned when a profile has no entry for a field
type MissingFieldError struct {
	Build string
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("offsets: build %q has no offset for %s", e.Build, e.Field)
}

// Offset is a byte offset that unmarshals from a JSON number or a hex/decimal string
type Offset uint64

func (o *Offset) UnmarshalJSON(b []byte) error {
	var n uint64
	if err := json.Unmarshal(b, &n); err == nil {
		*o = Offset(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("offset must be a number or string, got %s", string(b))
	}

	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", s, err)
	}
	*o = Offset(n)
	return nil
}

func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%X", uint64(o)))
}

// Signature locates a global through a RIP-relative instruction.
// The resolved address is match + Length + int32(*(match+Operand)) + Extra.
type Signature struct {
	Pattern string `json:"pattern"`
	Operand int    `json:"operand"`
	Length  int    `json:"length"`
	Extra   Offset `json:"extra"`
}

// EntityList is the geometry of the two-level entity table
type EntityList struct {
	PageBase   Offset `json:"page_base"`   // offset of the first page pointer from the list head
	PageStride Offset `json:"page_stride"` // distance between page pointers
	SlotStride Offset `json:"slot_stride"` // distance between slots within a page
	IndexMask  uint32 `json:"index_mask"`
	PageShift  uint32 `json:"page_shift"`
	SlotMask   uint32 `json:"slot_mask"`
	MaxPlayers int    `json:"max_players"`
}

// DefaultEntityList is the geometry observed in every supported build so far
var DefaultEntityList = EntityList{
	PageBase:   0x10,
	PageStride: 0x8,
	SlotStride: 0x78,
	IndexMask:  0x7FFF,
	PageShift:  9,
	SlotMask:   0x1FF,
	MaxPlayers: 64,
}

// Profile is the layout of one game build
type Profile struct {
	Build      string                       `json:"build"`
	Module     string                       `json:"module"`
	Classes    map[string]map[string]Offset `json:"classes"`
	Signatures map[string]Signature         `json:"signatures"`
	EntityList *EntityList                  `json:"entity_list,omitempty"`
}

// Get returns the offset of f in this build
func (p *Profile) Get(f Field) (uint64, error) {
	if fields, ok := p.Classes[f.Class]; ok {
		if off, ok := fields[f.Name]; ok {
			return uint64(off), nil
		}
	}
	return 0, &MissingFieldError{Build: p.Build, Field: f}
}

// Has reports whether f is present
func (p *Profile) Has(f Field) bool {
	_, err := p.Get(f)
	return err == nil
}

// Entities returns the entity list geometry, falling back to DefaultEntityList
func (p *Profile) Entities() EntityList {
	if p.EntityList == nil {
		return DefaultEntityList
	}

	el := *p.EntityList
	if el.PageStride == 0 {
		el.PageStride = DefaultEntityList.PageStride
	}
	if el.SlotStride == 0 {
		el.SlotStride = DefaultEntityList.SlotStride
	}
	if el.IndexMask == 0 {
		el.IndexMask = DefaultEntityList.IndexMask
	}
	if el.SlotMask == 0 {
		el.SlotMask = DefaultEntityList.SlotMask
	}
	if el.PageShift == 0 {
		el.PageShift = DefaultEntityList.PageShift
	}
	if el.MaxPlayers == 0 {
		el.MaxPlayers = DefaultEntityList.MaxPlayers
	}
	return el
}

// Signature returns the named signature with the common mov/lea defaults applied
func (p *Profile) Signature(name string) (Signature, bool) {
	sig, ok := p.Signatures[name]
	if !ok {
		return Signature{}, false
	}
	if sig.Operand == 0 {
		sig.Operand = 3
	}
	if sig.Length == 0 {
		sig.Length = 7
	}
	return sig, true
}

// Validate checks that every field in required is present
func (p *Profile) Validate(required []Field) error {
	var missing []string
	for _, f := range required {
		if !p.Has(f) {
			missing = append(missing, f.String())
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("offsets: build %q is missing %d fields: %s", p.Build, len(missing), strings.Join(missing, ", "))
	}
	return nil
}
