// Package weapon maps the designer names stored on weapon entities to a
// category and a display name.
package weapon

import "strings"

// Category groups weapons that share aim tuning
type Category int

const (
	None Category = iota
	Pistol
	Rifle
	Submachine
	Sniper
	Shotgun
	MachineGun
	Knife
	Other
	Unclassified
)

var categoryNames = [...]string{
	None:         "none",
	Pistol:       "pistol",
	Rifle:        "rifle",
	Submachine:   "submachine",
	Sniper:       "sniper",
	Shotgun:      "shotgun",
	MachineGun:   "machinegun",
	Knife:        "knife",
	Other:        "other",
	Unclassified: "unclassified",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unclassified"
	}
	return categoryNames[c]
}

// ParseCategory is the inverse of Category.String
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return Category(i), true
		}
	}
	return Unclassified, false
}

// Prefix carried by every weapon designer name
const Prefix = "weapon_"

// Info is what a weapon id decodes to
type Info struct {
	ID       string
	Name     string
	Category Category
}

var table = map[string]Info{
	"ak47":          {Name: "AK-47", Category: Rifle},
	"aug":           {Name: "AUG", Category: Rifle},
	"famas":         {Name: "FAMAS", Category: Rifle},
	"galilar":       {Name: "Galil AR", Category: Rifle},
	"m4a1":          {Name: "M4A4", Category: Rifle},
	"m4a1_silencer": {Name: "M4A1-S", Category: Rifle},
	"sg556":         {Name: "SG556", Category: Rifle},

	"awp":    {Name: "AWP", Category: Sniper},
	"g3sg1":  {Name: "G3SG1", Category: Sniper},
	"scar20": {Name: "SCAR-20", Category: Sniper},
	"ssg08":  {Name: "SSG 08", Category: Sniper},

	"bizon": {Name: "PP-Bizon", Category: Submachine},
	"mac10": {Name: "MAC-10", Category: Submachine},
	"mp5sd": {Name: "MP5-SD", Category: Submachine},
	"mp7":   {Name: "MP7", Category: Submachine},
	"mp9":   {Name: "MP9", Category: Submachine},
	"p90":   {Name: "P90", Category: Submachine},
	"ump45": {Name: "UMP-45", Category: Submachine},

	"cz75a":        {Name: "CZ-75 Auto", Category: Pistol},
	"deagle":       {Name: "Desert Eagle", Category: Pistol},
	"elite":        {Name: "Dual Berettas", Category: Pistol},
	"fiveseven":    {Name: "Five-SeveN", Category: Pistol},
	"glock":        {Name: "Glock", Category: Pistol},
	"hkp2000":      {Name: "P2000", Category: Pistol},
	"p250":         {Name: "P250", Category: Pistol},
	"revolver":     {Name: "Revolver", Category: Pistol},
	"tec9":         {Name: "TEC-9", Category: Pistol},
	"usp_silencer": {Name: "USP-S", Category: Pistol},

	"mag7":     {Name: "MAG-7", Category: Shotgun},
	"nova":     {Name: "Nova", Category: Shotgun},
	"sawedoff": {Name: "Sawed-Off", Category: Shotgun},
	"xm1014":   {Name: "XM1014", Category: Shotgun},

	"m249":  {Name: "M249", Category: MachineGun},
	"negev": {Name: "Negev", Category: MachineGun},

	"knife": {Name: "Knife", Category: Knife},
	"fists": {Name: "Fists", Category: Knife},

	"c4":           {Name: "Bomb", Category: Other},
	"decoy":        {Name: "Decoy Grenade", Category: Other},
	"flashbang":    {Name: "Flashbang", Category: Other},
	"healthshot":   {Name: "MediShot", Category: Other},
	"hegrenade":    {Name: "Grenade", Category: Other},
	"incgrenade":   {Name: "Incendiary", Category: Other},
	"molotov":      {Name: "Molotov", Category: Other},
	"smokegrenade": {Name: "Smoke", Category: Other},
	"taser":        {Name: "Zeus x27", Category: Other},
}

// Canonicalize lower-cases a designer name and strips every leading "weapon_"
func Canonicalize(raw string) string {
	id := strings.ToLower(raw)
	for strings.HasPrefix(id, Prefix) {
		id = id[len(Prefix):]
	}
	return id
}

// Lookup maps a canonical id. Unknown ids come back Unclassified with the id as display name.
func Lookup(id string) Info {
	if id == "" {
		return Info{Category: None}
	}

	info, ok := table[id]
	if !ok {
		return Info{ID: id, Name: id, Category: Unclassified}
	}

	info.ID = id
	return info
}

// Parse canonicalizes a raw designer name and looks it up
func Parse(raw string) Info {
	return Lookup(Canonicalize(raw))
}

// Known returns the number of entries in the table
func Known() int {
	return len(table)
}
