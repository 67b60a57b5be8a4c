package domain

import "time"

// Brand collections of the storefront catalog. Each collection was a separate
// document collection in the previous backend; here they share one table keyed
// by the Collection column.
const (
	CollectionSakura  = "sakura"
	CollectionZara    = "zara"
	CollectionRituals = "rituals"
	CollectionDecants = "decants"
)

var Collections = []string{
	CollectionSakura,
	CollectionZara,
	CollectionRituals,
	CollectionDecants,
}

func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Product is a catalog entry with per-variant price tiers and uploaded images.
type Product struct {
	ID          int64       `gorm:"primaryKey" json:"id,string"`
	Collection  string      `gorm:"index;size:32" json:"collection"`
	Name        string      `gorm:"index" json:"name"`
	Description string      `json:"description"`
	Type        string      `gorm:"size:64" json:"type"`
	Notes       string      `json:"notes"`
	Brand       string      `gorm:"size:64" json:"brand"` // decant source house, e.g. Dior
	Prices      []PriceTier `gorm:"serializer:json" json:"prices"`
	Images      []string    `gorm:"serializer:json" json:"images"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Product) TableName() string {
	return "store_product"
}

// TierFor returns the price tier matching the variant, if any.
func (p *Product) TierFor(v Variant) (PriceTier, bool) {
	for _, t := range p.Prices {
		if t.Variant.Equal(v) {
			return t, true
		}
	}
	return PriceTier{}, false
}
