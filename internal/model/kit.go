package model

// ActivityType tags kits for catalog filtering.
type ActivityType string

const (
	ActivityCamping  ActivityType = "Camping"
	ActivityTrekking ActivityType = "Trekking"
	ActivityBeach    ActivityType = "Beach"
	ActivityWinter   ActivityType = "Winter"
	ActivityEvent    ActivityType = "Event"
	ActivityLakeside ActivityType = "Lakeside"
)

// Kit is a rentable equipment bundle.  Kits are reference data owned by
// the catalog; bookings keep a frozen copy.
//
// Fields:
//  ID            – catalog identifier (slug).
//  Name          – display name.
//  Price         – formatted price label as shown in the catalog.
//  PricePerNight – Price parsed into minor units.
//  Description   – marketing copy.
//  Items         – equipment included in the bundle.
//  ImageURL      – catalog image.
//  Activities    – category tags used for filtering.
//  Features      – short feature bullets.
type Kit struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Price         string         `json:"price"`
	PricePerNight Money          `json:"price_per_night"`
	Description   string         `json:"description"`
	Items         []string       `json:"items"`
	ImageURL      string         `json:"image_url,omitempty"`
	Activities    []ActivityType `json:"activity_type"`
	Features      []string       `json:"features,omitempty"`
}

// HasActivity reports whether the kit carries the given tag.
func (k Kit) HasActivity(a ActivityType) bool {
	for _, t := range k.Activities {
		if t == a {
			return true
		}
	}
	return false
}

// PriceType selects how an add-on is charged.
type PriceType string

const (
	// PerNight add-ons are charged unit price × nights once selected.
	PerNight PriceType = "per night"
	// PerItem add-ons are charged unit price × quantity.
	PerItem PriceType = "per item"
)

// AddOnCategory groups add-ons in the product page.
type AddOnCategory string

const (
	CategoryComfortUtility    AddOnCategory = "Comfort & Utility"
	CategoryLightingAmbience  AddOnCategory = "Lighting & Ambience"
	CategoryEntertainmentTech AddOnCategory = "Entertainment & Tech"
	CategoryCookingFood       AddOnCategory = "Cooking & Food"
	CategorySafetyHealth      AddOnCategory = "Safety & Health"
	CategoryGamesFun          AddOnCategory = "Games & Fun"
)

// AddOn is an optional extra that can be attached to a kit booking.
type AddOn struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Price       Money         `json:"price"`
	PriceType   PriceType     `json:"price_type"`
	Category    AddOnCategory `json:"category"`
	Description string        `json:"description,omitempty"`
}

// AddOnSelection maps add-on IDs to selected quantities.  A quantity of
// zero or less is the same as not selecting the add-on.
type AddOnSelection map[string]int

// Normalized returns a copy without zero or negative quantities.
func (s AddOnSelection) Normalized() AddOnSelection {
	out := make(AddOnSelection, len(s))
	for id, qty := range s {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}
