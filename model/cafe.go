package model

// PriceTier is the coffee price bracket of a cafe.
type PriceTier string

const (
	PriceOneToTwo     PriceTier = "$1-$2"
	PriceThreeToFour  PriceTier = "$3-$4"
	PriceFiveToSix    PriceTier = "$5-$6"
	PriceSevenToEight PriceTier = "$7-$8"
	PriceNineAndUp    PriceTier = "$9 and up"
)

// PriceTiers lists every valid tier, cheapest first.
var PriceTiers = []PriceTier{
	PriceOneToTwo,
	PriceThreeToFour,
	PriceFiveToSix,
	PriceSevenToEight,
	PriceNineAndUp,
}

func (p PriceTier) Valid() bool {
	for _, tier := range PriceTiers {
		if p == tier {
			return true
		}
	}
	return false
}

// CafeEntry is a single cafe in the directory. It deliberately does not embed
// gorm.Model: deletes are permanent, never soft.
type CafeEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:250;not null;uniqueIndex"`
	MapURL      string    `json:"map_url" gorm:"column:map_url;size:500;not null"`
	Zipcode     string    `json:"zipcode" gorm:"size:10;not null;index"`
	City        string    `json:"city" gorm:"size:30;not null;index"`
	HasSockets  bool      `json:"has_sockets" gorm:"not null"`
	HasToilet   bool      `json:"has_toilet" gorm:"not null"`
	HasWifi     bool      `json:"has_wifi" gorm:"not null"`
	CoffeePrice PriceTier `json:"coffee_price" gorm:"size:250;not null"`
}

func (CafeEntry) TableName() string {
	return "cafes"
}

// EntryPatch holds the fields that may change after creation. A nil field is
// left untouched.
type EntryPatch struct {
	HasSockets  *bool
	HasToilet   *bool
	HasWifi     *bool
	CoffeePrice *PriceTier
}

func (p EntryPatch) Empty() bool {
	return p.HasSockets == nil && p.HasToilet == nil && p.HasWifi == nil && p.CoffeePrice == nil
}

// Columns returns the patch as a column map so that false values are written.
func (p EntryPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if p.HasSockets != nil {
		cols["has_sockets"] = *p.HasSockets
	}
	if p.HasToilet != nil {
		cols["has_toilet"] = *p.HasToilet
	}
	if p.HasWifi != nil {
		cols["has_wifi"] = *p.HasWifi
	}
	if p.CoffeePrice != nil {
		cols["coffee_price"] = string(*p.CoffeePrice)
	}
	return cols
}

// Apply merges the patch into e.
func (p EntryPatch) Apply(e *CafeEntry) {
	if p.HasSockets != nil {
		e.HasSockets = *p.HasSockets
	}
	if p.HasToilet != nil {
		e.HasToilet = *p.HasToilet
	}
	if p.HasWifi != nil {
		e.HasWifi = *p.HasWifi
	}
	if p.CoffeePrice != nil {
		e.CoffeePrice = *p.CoffeePrice
	}
}
