package offsets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedProfile(t *testing.T) {
	set := Embedded()

	p, err := set.Profile("")
	if err != nil {
		t.Fatalf("default profile: %v", err)
	}

	if p.Module != "client.dll" {
		t.Errorf("Expected module client.dll, got %q", p.Module)
	}

	for _, group := range [][]Field{ControllerFields, PawnFields, BombFields} {
		if err := p.Validate(group); err != nil {
			t.Errorf("embedded profile incomplete: %v", err)
		}
	}

	for _, name := range []string{SigEntityList, SigLocalController, SigLocalPawn, SigPlantedC4, SigViewAngles, SigViewMatrix} {
		if _, ok := p.Signature(name); !ok {
			t.Errorf("Expected signature %s in embedded profile", name)
		}
	}
}

func TestProfileGet(t *testing.T) {
	p := Embedded().Profiles[0]

	tests := []struct {
		field Field
		want  uint64
	}{
		{EntityHealth, 0x32C},
		{EntityTeam, 0x3BF},
		{ControllerPawnAlive, 0x7F4},
		{ControllerPlayerPawn, 0x7EC},
		{PawnEyeAngles, 0x1518},
		{PawnOldOrigin, 0x1224},
		{PawnArmor, 0x1510},
		{PlantedC4Site, 0xE84},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			got, err := p.Get(tt.field)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %#x, got %#x", tt.want, got)
			}
		})
	}
}

func TestMissingField(t *testing.T) {
	p := &Profile{Build: "b1", Classes: map[string]map[string]Offset{"C_BaseEntity": {"m_iHealth": 4}}}

	_, err := p.Get(Field{"C_BaseEntity", "m_iTeamNum"})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingFieldError, got %v", err)
	}
	if missing.Build != "b1" || missing.Field.Name != "m_iTeamNum" {
		t.Errorf("unexpected error contents: %+v", missing)
	}

	if _, err := p.Get(Field{"C_Nope", "m_iHealth"}); err == nil {
		t.Error("Expected error for unknown class")
	}

	err = p.Validate([]Field{EntityHealth, EntityTeam, EntityFlags})
	if err == nil || !strings.Contains(err.Error(), "missing 2 fields") {
		t.Errorf("Expected two missing fields, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		build   string
		want    uint64
		wantErr bool
	}{
		{
			name:  "single profile hex string",
			doc:   `{"build":"x","module":"client.dll","classes":{"A":{"f":"0x10"}}}`,
			build: "x", want: 0x10,
		},
		{
			name:  "single profile number",
			doc:   `{"build":"x","classes":{"A":{"f":32}}}`,
			build: "x", want: 32,
		},
		{
			name:  "set with default",
			doc:   `{"default":"y","profiles":[{"build":"x","classes":{"A":{"f":"1"}}},{"build":"y","classes":{"A":{"f":"0X2"}}}]}`,
			build: "", want: 2,
		},
		{
			name:    "bad offset",
			doc:     `{"build":"x","classes":{"A":{"f":"zz"}}}`,
			wantErr: true,
		},
		{
			name:    "duplicate build",
			doc:     `{"profiles":[{"build":"x"},{"build":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "missing build",
			doc:     `{"profiles":[{"module":"client.dll"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load(strings.NewReader(tt.doc))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			p, err := set.Profile(tt.build)
			if err != nil {
				t.Fatalf("Profile: %v", err)
			}

			got, err := p.Get(Field{"A", "f"})
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %#x, got %#x", tt.want, got)
			}
		})
	}
}

func TestUnknownBuild(t *testing.T) {
	_, err := Embedded().Profile("does-not-exist")
	if !errors.Is(err, ErrUnknownBuild) {
		t.Errorf("Expected ErrUnknownBuild, got %v", err)
	}
}

func TestEntityListDefaults(t *testing.T) {
	p := &Profile{Build: "x"}
	if got := p.Entities(); got != DefaultEntityList {
		t.Errorf("Expected defaults, got %+v", got)
	}

	p.EntityList = &EntityList{PageBase: 0x20, SlotStride: 0x80}
	got := p.Entities()
	if got.PageBase != 0x20 || got.SlotStride != 0x80 {
		t.Errorf("overrides lost: %+v", got)
	}
	if got.PageStride != 8 || got.SlotMask != 0x1FF || got.IndexMask != 0x7FFF || got.PageShift != 9 {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestSignatureDefaults(t *testing.T) {
	p := &Profile{Signatures: map[string]Signature{
		"a": {Pattern: "48 8B"},
		"b": {Pattern: "E8", Operand: 1, Length: 5, Extra: 0x138},
	}}

	a, _ := p.Signature("a")
	if a.Operand != 3 || a.Length != 7 {
		t.Errorf("Expected mov defaults, got %+v", a)
	}

	b, _ := p.Signature("b")
	if b.Operand != 1 || b.Length != 5 || b.Extra != 0x138 {
		t.Errorf("explicit values overwritten: %+v", b)
	}

	if _, ok := p.Signature("c"); ok {
		t.Error("Expected unknown signature to be absent")
	}
}
