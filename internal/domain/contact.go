package domain

import "time"

// Contact is one synced provider contact. ContactId is the provider's
// serialized identifier including the domain suffix; only individual-user
// identifiers ("@c.us") are ever persisted.
type Contact struct {
	ID          int64     `json:"id,string" gorm:"primaryKey"`
	ContactId   string    `json:"contact_id" gorm:"uniqueIndex;size:255"`
	DeviceKey   string    `json:"device_key" gorm:"index;size:16"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Number      string    `json:"number" gorm:"index;size:64"`
	IsBusiness  bool      `json:"is_business"`
	IsGroup     bool      `json:"is_group"`
	IsUser      bool      `json:"is_user"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Categories  string    `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "wa_contact"
}
