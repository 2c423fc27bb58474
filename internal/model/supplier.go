package model

type Supplier struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ContactInfo string `gorm:"type:varchar(255)" json:"contact_info"`
	Address     string `gorm:"type:text" json:"address"`
}
