package models

import "strings"

const (
	CategoryGroceries     = "Groceries"
	CategoryRestaurants   = "Restaurants"
	CategoryUtilities     = "Utilities"
	CategoryTransport     = "Transport"
	CategoryShopping      = "Shopping"
	CategoryHealth        = "Health"
	CategoryEntertainment = "Entertainment"
	CategoryIncome        = "Income"
	CategoryHousing       = "Housing"
	CategoryEducation     = "Education"
	CategorySubscriptions = "Subscriptions"
	CategoryTravel        = "Travel"
	CategoryMiscellaneous = "Miscellaneous"
)

// Categories is the closed set a transaction description can be assigned to,
// in the order it is presented to the model.
var Categories = []string{
	CategoryGroceries,
	CategoryRestaurants,
	CategoryUtilities,
	CategoryTransport,
	CategoryShopping,
	CategoryHealth,
	CategoryEntertainment,
	CategoryIncome,
	CategoryHousing,
	CategoryEducation,
	CategorySubscriptions,
	CategoryTravel,
	CategoryMiscellaneous,
}

var categoryIndex = func() map[string]string {
	m := make(map[string]string, len(Categories))
	for _, c := range Categories {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// ParseCategory returns the canonical spelling of s if it names a known
// category, ignoring case and surrounding whitespace.
func ParseCategory(s string) (string, bool) {
	c, ok := categoryIndex[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}
