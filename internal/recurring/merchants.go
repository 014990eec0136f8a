package recurring

import "strings"

// Category is a coarse merchant class, as produced by the categorization hints.
type Category string

const (
	CategorySubscription  Category = "subscription"
	CategoryUtilities     Category = "utilities"
	CategoryHousing       Category = "housing"
	CategoryInsurance     Category = "insurance"
	CategoryConnectivity  Category = "connectivity"
	CategoryFitness       Category = "fitness"
	CategoryDining        Category = "dining"
	CategoryRideHailing   Category = "ride_hailing"
	CategoryRetail        Category = "retail"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

var categories = []Category{
	CategorySubscription, CategoryUtilities, CategoryHousing, CategoryInsurance,
	CategoryConnectivity, CategoryFitness, CategoryDining, CategoryRideHailing,
	CategoryRetail, CategoryEntertainment, CategoryOther,
}

// Categories returns the full category vocabulary in a fixed order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory returns the category named s, if it is part of the vocabulary.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Recurring reports whether the category counts as evidence of an obligation.
func (c Category) Recurring() bool {
	switch c {
	case CategorySubscription, CategoryUtilities, CategoryHousing,
		CategoryInsurance, CategoryConnectivity, CategoryFitness:
		return true
	}
	return false
}

// Variable reports whether the category is discretionary spend.
func (c Category) Variable() bool {
	switch c {
	case CategoryDining, CategoryRideHailing, CategoryRetail, CategoryEntertainment:
		return true
	}
	return false
}

// Hints maps canonical keys to the category an external categorizer assigned.
// A nil Hints is valid and means "no hints".
type Hints map[string]Category

func (h Hints) variable(key string) bool {
	return h[key].Variable()
}

func (h Hints) recurring(key string) bool {
	return h[key].Recurring()
}

// variableSpend lists substrings of discretionary merchants. A key that
// contains any of them never becomes a recurring pattern, however regular.
var variableSpend = []string{
	// dining and coffee
	"starbucks", "coffee", "cafe", "caffe", "caffè", "espresso", "bakery",
	"restaurant", "ristorante", "trattoria", "osteria", "pizzeria", "pizza",
	"sushi", "burger", "mcdonald", "kfc", "bistro", "tavern",
	// food delivery
	"deliveroo", "just eat", "justeat", "glovo", "doordash", "grubhub", "ubereats", "uber eats",
	// ride hailing and taxis
	"uber", "lyft", "bolt", "taxi", "freenow", "free now", "cabify",
	// convenience and general retail
	"convenience", "eleven", "autogrill", "tabacchi", "kiosk", "ikea",
	"zara", "primark", "decathlon", "walmart", "target", "costco",
	// entertainment outings
	"cinema", "theatre", "theater", "ticketmaster", "concert", "bowling", "museum",
}

// knownRecurring lists substrings of obligations: utilities, housing,
// connectivity, insurance, gyms and common subscription brands.
var knownRecurring = []string{
	// utilities
	"electric", "energy", "enel", "edison", "iren", "a2a", "water",
	"acqua", "utility", "utilities", "bolletta",
	// housing
	"rent", "affitto", "mortgage", "mutuo", "condominio",
	// connectivity
	"internet", "broadband", "fiber", "fibra", "mobile", "telecom", "vodafone",
	"windtre", "iliad", "fastweb", "verizon", "comcast", "phone",
	// insurance
	"insurance", "assicurazione", "allianz", "generali", "axa", "unipol",
	// fitness
	"gym", "palestra", "fitness", "mcfit", "virgin active",
	// subscription brands
	"netflix", "spotify", "disney", "prime video", "amazon prime", "hbo", "dazn",
	"youtube premium", "apple", "icloud", "google one", "microsoft", "adobe",
	"dropbox", "github", "chatgpt", "openai", "audible", "patreon", "subscription",
	"abbonamento",
}

// IsVariableSpend reports whether a canonical key names a discretionary
// merchant (dining, ride hailing, retail, entertainment outings).
func IsVariableSpend(key string) bool {
	return containsAny(key, variableSpend)
}

// IsKnownRecurring reports whether a canonical key names a known kind of
// obligation.
func IsKnownRecurring(key string) bool {
	return containsAny(key, knownRecurring)
}

func containsAny(key string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(key, term) {
			return true
		}
	}
	return false
}
