package model

// swagger:model Judge
type Judge struct {
	UUIDBase
	UserID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Active bool   `gorm:"default:true" json:"active"`
}

func (Judge) TableName() string {
	return "judges"
}
