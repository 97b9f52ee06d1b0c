package model

// swagger:model Location
type Location struct {
	UUIDBase
	Name    string `gorm:"size:100;not null" json:"name"`
	Address string `gorm:"size:200;not null" json:"address"`
	City    string `gorm:"size:100;index;not null" json:"city"`
	Active  bool   `gorm:"default:true" json:"active"`
}

func (Location) TableName() string {
	return "locations"
}
