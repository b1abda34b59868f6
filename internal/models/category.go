package models

// Category is a fixed news section. Name is what readers see, DBValue is stored on
// articles and URLSlug is the English path segment.
type Category struct {
	Name    string `json:"name"`
	DBValue string `json:"dbValue"`
	URLSlug string `json:"urlSlug"`
}

// Categories lists every news section in display order
var Categories = []Category{
	{Name: "राष्ट्रीय", DBValue: "राष्ट्रीय", URLSlug: "national"},
	{Name: "राज्य", DBValue: "राज्य", URLSlug: "state"},
	{Name: "मनोरंजन", DBValue: "मनोरंजन", URLSlug: "entertainment"},
	{Name: "व्यापार", DBValue: "व्यापार", URLSlug: "business"},
	{Name: "तकनीक", DBValue: "तकनीक", URLSlug: "tech"},
	{Name: "खेल", DBValue: "खेल", URLSlug: "sports"},
	{Name: "पोलिटिक्स", DBValue: "पोलिटिक्स", URLSlug: "politics"},
	{Name: "स्टार्टअप", DBValue: "स्टार्टअप", URLSlug: "startup"},
}

// CategoryByURLSlug finds a category by its English slug
func CategoryByURLSlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.URLSlug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryByDBValue finds a category by its stored Hindi value
func CategoryByDBValue(value string) (Category, bool) {
	for _, c := range Categories {
		if c.DBValue == value {
			return c, true
		}
	}
	return Category{}, false
}

// ResolveCategory accepts either form and returns the stored value
func ResolveCategory(value string) (string, bool) {
	if c, ok := CategoryByDBValue(value); ok {
		return c.DBValue, true
	}
	if c, ok := CategoryByURLSlug(value); ok {
		return c.DBValue, true
	}
	return "", false
}
