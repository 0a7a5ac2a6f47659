package domain

// Character is a profile record keyed by the site's signed numeric id.
// Both positive and negative id ranges are populated independently.
// Every scraped field is optional: a missing DOM node yields nil, never an
// aborted record.
type Character struct {
	TargetID    int
	Name        *string
	Rank        *string
	Popularity  *string
	Faction     *string
	Role        *string
	PortraitURL *string
	Story       *string
	MDJ         *string
	Equipment   []EquipmentItem
	Attributes  *AttributeSet
}

// EquipmentItem is one row of a character's inventory table.
type EquipmentItem struct {
	Name         string
	Type         string
	Description  string
	Price        *string
	ImageURL     *string
	ThumbnailURL *string
}

// AttributeSet mirrors the stat block rendered on a profile page. The store
// upserts it as a whole; individual stats carry no history.
type AttributeSet struct {
	CC  int `json:"cc"`
	CT  int `json:"ct"`
	F   int `json:"f"`
	E   int `json:"e"`
	Agi int `json:"agi"`
	PV  int `json:"pv"`
	PM  int `json:"pm"`
	FM  int `json:"fm"`
	M   int `json:"m"`
	A   int `json:"a"`
	Mvt int `json:"mvt"`
	P   int `json:"p"`
	Spd int `json:"spd"`
	R   int `json:"r"`
	RM  int `json:"rm"`
	XP  int `json:"xp"`
}

// StrPtr is a small helper for building optional fields.
func StrPtr(s string) *string {
	return &s
}
