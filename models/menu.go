package models

type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"` // "starters", "mains", "desserts"
}

const (
	CategoryStarters = "starters"
	CategoryMains    = "mains"
	CategoryDesserts = "desserts"
)

// Category is a toggle shown on the home screen.
type Category struct {
	Key  string
	Name string
}

var Categories = []Category{
	{Key: CategoryStarters, Name: "Starters"},
	{Key: CategoryMains, Name: "Mains"},
	{Key: CategoryDesserts, Name: "Desserts"},
}
