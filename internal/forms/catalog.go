package forms

import "github.com/goatkit/kamdesk/internal/models"

// CategoryAccommodation routes location and sub-category through the
// accommodation fields instead of the staff ones.
const CategoryAccommodation = "Accommodation/Housing Issues"

// StaffLocations are the offices a requester can work at.
var StaffLocations = []string{
	"KAM HQ",
	"KSICL – Jimba",
	"KSICL – Sagamu",
	"KAM Haulage",
	"Dimkit Ganmo",
	"Dimkit Kaduna",
	"Lagos Office",
}

// AccommodationLocations are the staff housing sites.
var AccommodationLocations = []string{
	"GCFO Quarters – Irewolede Estate",
	"New House – Irewolede Estate",
	"GRA Quarters – Trove Street, Flower Garden, GRA",
	"Honourable Qtrs 1 – Legislative Qtrs Estate",
	"Honourable Qtrs 2 – Legislative Qtrs Estate",
	"Yellow House – Mandate III Estate",
	"Ghosh House – Mandate III Estate",
	"Jaspal House – Mandate III Estate",
	"Ofa Garage",
}

// AccommodationIssues are the sub-categories of CategoryAccommodation.
var AccommodationIssues = []string{
	"Generator",
	"Water/Plumbing",
	"Electrical",
	"Furniture",
	"Environment",
	"Others",
}

type category struct {
	name string
	subs []string
}

var categories = []category{
	{name: CategoryAccommodation, subs: AccommodationIssues},
	{name: "Office Issue", subs: []string{"Water/Plumbing", "Electrical", "Furniture", "Cleaning", "Others"}},
	{name: "Vehicle Issue", subs: []string{"Maintenance", "Battery", "Mechanical", "Accident", "Tyre", "Registration", "Others"}},
}

// Categories lists the ticket categories in menu order.
func Categories() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.name
	}
	return out
}

// SubCategories lists the sub-categories of name, or nil for an unknown category.
func SubCategories(name string) []string {
	for _, c := range categories {
		if c.name == name {
			return append([]string(nil), c.subs...)
		}
	}
	return nil
}

// Locations lists the locations offered for a category.
func Locations(categoryName string) []string {
	if categoryName == CategoryAccommodation {
		return append([]string(nil), AccommodationLocations...)
	}
	return append([]string(nil), StaffLocations...)
}

// Departments lists the departments a ticket can be raised for.
func Departments() []string {
	return append([]string(nil), models.Departments...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
