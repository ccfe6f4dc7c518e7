package types

import "strings"

// QueryCategory is the topical tag produced by the external query classifier.
// The router treats it as opaque except for lookups into per-category tables.
type QueryCategory string

const (
	CategoryCoding     QueryCategory = "coding"
	CategoryData       QueryCategory = "data"
	CategoryLegal      QueryCategory = "legal"
	CategoryCompliance QueryCategory = "compliance"
	CategoryFinance    QueryCategory = "finance"
	CategoryCreative   QueryCategory = "creative"
	CategoryGeneral    QueryCategory = "general"
	CategoryProduct    QueryCategory = "product"
	CategoryOperations QueryCategory = "operations"
	CategoryUnknown    QueryCategory = "unknown"
)

// ParseCategory resolves a classifier tag to a known category.
// Unrecognized tags resolve to unknown.
func ParseCategory(s string) QueryCategory {
	switch QueryCategory(strings.ToLower(s)) {
	case CategoryCoding, CategoryData, CategoryLegal, CategoryCompliance,
		CategoryFinance, CategoryCreative, CategoryGeneral, CategoryProduct,
		CategoryOperations:
		return QueryCategory(strings.ToLower(s))
	default:
		return CategoryUnknown
	}
}

// CapabilityAxis maps a category to the capability dimension used when
// scoring candidate models.
func (c QueryCategory) CapabilityAxis() string {
	switch c {
	case CategoryCoding, CategoryData:
		return "coding"
	case CategoryLegal, CategoryCompliance, CategoryFinance:
		return "reasoning"
	case CategoryCreative:
		return "creative"
	case CategoryOperations:
		return "operations"
	case CategoryProduct:
		return "product"
	default:
		return "reasoning"
	}
}
