package catalog

import "github.com/seafresh/backend/internal/domain"

func strPtr(s string) *string { return &s }

// DemoProducts is the development catalog loaded into an empty sqlite database
var DemoProducts = []domain.Product{
	{Name: "Fresh Salmon Fillet", Description: strPtr("Skin-on Atlantic salmon, cut to order"), Price: 24.90, ImageURL: "/images/products/salmon-fillet.jpg", IsAvailable: true},
	{Name: "Tiger Shrimp 1kg", Description: strPtr("Raw shell-on tiger shrimp, frozen at sea"), Price: 32.50, ImageURL: "/images/products/tiger-shrimp.jpg", IsAvailable: true},
	{Name: "King Crab Legs", Description: strPtr("Cooked red king crab legs"), Price: 79.00, ImageURL: "/images/products/king-crab.jpg", IsAvailable: true},
	{Name: "Sea Bass Whole", Description: strPtr("Line caught whole fish, gutted and scaled"), Price: 18.40, ImageURL: "/images/products/sea-bass.jpg", IsAvailable: true},
	{Name: "Blue Mussels 2kg", Description: strPtr("Rope grown shellfish, cleaned"), Price: 12.00, ImageURL: "/images/products/mussels.jpg", IsAvailable: true},
	{Name: "Live Lobster", Description: strPtr("Canadian lobster, 600-700g"), Price: 45.00, ImageURL: "/images/products/lobster.jpg", IsAvailable: false},
	{Name: "Tuna Steak", Description: nil, Price: 21.75, ImageURL: "/images/products/tuna-steak.jpg", IsAvailable: true},
}
