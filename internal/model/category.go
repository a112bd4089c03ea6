package model

import "time"

// Category groups time entries, e.g. "Work" or "Reading".
type Category struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // #RRGGBB
	Icon      string    `json:"icon"`
}

// DefaultCategories are seeded for every newly registered user.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Study", Color: "#8B5CF6", Icon: "BookOpen"},
		{Name: "Reading", Color: "#EC4899", Icon: "Book"},
		{Name: "Exercise", Color: "#10B981", Icon: "Bike"},
		{Name: "Work", Color: "#F59E0B", Icon: "Briefcase"},
	}
}
