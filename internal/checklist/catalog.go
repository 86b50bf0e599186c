// Package checklist holds the static inspection item catalog and the pure
// business rules evaluated over an inspection's item states: status
// validation, progress aggregation and the final verdict.
package checklist

import "github.com/munidigital/transporte/internal/model"

// ItemDefinition is one immutable catalog entry. Definitions are fixed at
// build time; changing the regulatory checklist means redeploying these
// tables, not a data migration.
type ItemDefinition struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Display categories.
const (
	CategoryActiveSafety  = "Active Safety"
	CategoryPassiveSafety = "Passive Safety"
	CategoryVisibility    = "Visibility"
	CategoryEquipment     = "Required Equipment"
	CategorySignage       = "Signage"
	CategoryCabin         = "Cabin"
	CategoryDocumentation = "Documentation"
)

// commonItems apply to every vehicle regardless of transport type.
var commonItems = []ItemDefinition{
	{ID: "brakes", Label: "Brake system operation", Category: CategoryActiveSafety},
	{ID: "steering", Label: "Steering and suspension play", Category: CategoryActiveSafety},
	{ID: "tires", Label: "Tire condition and tread depth", Category: CategoryActiveSafety},
	{ID: "lights", Label: "Exterior lights and turn signals", Category: CategoryActiveSafety},
	{ID: "mirrors", Label: "Rear-view and side mirrors", Category: CategoryVisibility},
	{ID: "wipers", Label: "Windshield glazing and wipers", Category: CategoryVisibility},
	{ID: "seatbelts", Label: "Seat belts and anchorages", Category: CategoryPassiveSafety},
	{ID: "fire-extinguisher", Label: "Fire extinguisher charged and accessible", Category: CategoryEquipment},
	{ID: "first-aid-kit", Label: "First aid kit complete and in date", Category: CategoryEquipment},
}

// scholasticItems extend the checklist for school transport vehicles.
var scholasticItems = []ItemDefinition{
	{ID: "school-signage", Label: "School transport placards and banding", Category: CategorySignage},
	{ID: "interior-handrails", Label: "Interior handrails and grab points", Category: CategoryCabin},
	{ID: "door-mechanism", Label: "Door mechanism controlled by driver", Category: CategoryCabin},
	{ID: "emergency-exits", Label: "Emergency exits marked and operable", Category: CategoryPassiveSafety},
	{ID: "seat-anchorage", Label: "Seat fastening and spacing", Category: CategoryPassiveSafety},
	{ID: "step-height", Label: "Access step height and non-slip surface", Category: CategoryCabin},
	{ID: "window-guards", Label: "Window locks and opening limiters", Category: CategoryPassiveSafety},
	{ID: "interior-lighting", Label: "Interior lighting operational", Category: CategoryCabin},
	{ID: "speed-limiter", Label: "Speed limiter sealed and functional", Category: CategoryActiveSafety},
}

// remiseItems extend the checklist for remise vehicles.
var remiseItems = []ItemDefinition{
	{ID: "fare-card", Label: "Current fare card displayed to passengers", Category: CategoryDocumentation},
}

// Catalog returns the ordered item definitions that apply to a transport
// type: the common items followed by the type-specific extension.
// An unrecognized transport type yields the common items only; the catalog
// is deliberately fail-open so a miscategorized license still gets a usable
// (if reduced) checklist rather than an error.
func Catalog(transportType string) []ItemDefinition {
	var specific []ItemDefinition
	switch transportType {
	case model.TransportScholastic:
		specific = scholasticItems
	case model.TransportRemise:
		specific = remiseItems
	}

	defs := make([]ItemDefinition, 0, len(commonItems)+len(specific))
	defs = append(defs, commonItems...)
	defs = append(defs, specific...)
	return defs
}
