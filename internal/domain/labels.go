package domain

import "strings"

// Category is one of the eight canonical catalog categories
type Category string

const (
	CategoryDesign         Category = "design"
	CategoryVideoEditing   Category = "video-editing"
	CategoryAudio          Category = "audio"
	CategoryPhotoEditing   Category = "photo-editing"
	CategorySiteBuilding   Category = "site-building"
	CategoryCodeGeneration Category = "code-generation"
	CategoryWriting        Category = "writing"
	CategoryProductivity   Category = "productivity"
)

// AllCategories returns the canonical categories in table order.
// Table order is also the heuristic tie-break order.
func AllCategories() []Category {
	return []Category{
		CategoryDesign,
		CategoryVideoEditing,
		CategoryAudio,
		CategoryPhotoEditing,
		CategorySiteBuilding,
		CategoryCodeGeneration,
		CategoryWriting,
		CategoryProductivity,
	}
}

// ParseCategory accepts a canonical category regardless of case or padding
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Difficulty is the expected learning curve of a tool
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// ParseDifficulty normalizes a model-supplied difficulty
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{Beginner, Intermediate, Advanced} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// Pricing is the commercial model of a tool
type Pricing string

const (
	PricingFree     Pricing = "Free"
	PricingFreemium Pricing = "Freemium"
	PricingPaid     Pricing = "Paid"
	PricingUnknown  Pricing = "Unknown"
)

// ParsePricing normalizes a model-supplied pricing label
func ParsePricing(s string) (Pricing, bool) {
	for _, p := range []Pricing{PricingFree, PricingFreemium, PricingPaid, PricingUnknown} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}
