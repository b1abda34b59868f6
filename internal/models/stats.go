package models

// Stats holds row counts reported by the stats endpoint
type Stats struct {
	Users     int `json:"users"`
	Articles  int `json:"articles"`
	Comments  int `json:"comments"`
	Reactions int `json:"reactions"`
	Bookmarks int `json:"bookmarks"`
}
