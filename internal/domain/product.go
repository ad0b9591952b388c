package domain

// Product is a catalog entry as exposed by the storefront database
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:255;not null"`
	Description *string `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"not null"`
	ImageURL    string  `json:"image_url" gorm:"column:image_url;size:512"`
	IsAvailable bool    `json:"is_available" gorm:"column:is_available;index"`
}

// TableName overrides the default table name.
func (Product) TableName() string {
	return "products"
}

// DescriptionOrEmpty returns the description, or "" when it is null
func (p Product) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
