package weapon

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		raw      string
		id       string
		name     string
		category Category
	}{
		{"weapon_ak47", "ak47", "AK-47", Rifle},
		{"WEAPON_AWP", "awp", "AWP", Sniper},
		{"weapon_m4a1_silencer", "m4a1_silencer", "M4A1-S", Rifle},
		{"weapon_m4a1", "m4a1", "M4A4", Rifle},
		{"weapon_knife", "knife", "Knife", Knife},
		{"weapon_c4", "c4", "Bomb", Other},
		{"weapon_taser", "taser", "Zeus x27", Other},
		{"weapon_usp_silencer", "usp_silencer", "USP-S", Pistol},
		{"weapon_weapon_nova", "nova", "Nova", Shotgun},
		{"weapon_knife_karambit", "knife_karambit", "knife_karambit", Unclassified},
		{"", "", "", None},
		{"weapon_", "", "", None},
		{" weapon_ak47", " weapon_ak47", " weapon_ak47", Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			if got.ID != tt.id || got.Name != tt.name || got.Category != tt.category {
				t.Errorf("Parse(%q) = %+v, want {%s %s %s}", tt.raw, got, tt.id, tt.name, tt.category)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"weapon_ak47", "Weapon_Deagle", "weapon_weapon_glock", "ak47", "weapon_", "x"} {
		once := Canonicalize(raw)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestTableSize(t *testing.T) {
	if Known() != 45 {
		t.Errorf("Expected 45 known weapons, got %d", Known())
	}

	for id, info := range table {
		if info.Name == "" {
			t.Errorf("%s has no display name", id)
		}
		if info.Category == None || info.Category == Unclassified {
			t.Errorf("%s has no category", id)
		}
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	for c := None; c <= Unclassified; c++ {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}

	if _, ok := ParseCategory("bazooka"); ok {
		t.Error("Expected unknown category to fail")
	}
	if Category(99).String() != "unclassified" {
		t.Error("out of range category should print unclassified")
	}
}
