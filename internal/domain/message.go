package domain

import "time"

// Message is one ingested provider message, scoped to a Device by DeviceKey.
// MessageId is provider-assigned and may collide across devices.
type Message struct {
	ID        int64     `json:"id,string" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;size:36"`
	DeviceKey string    `json:"device_key" gorm:"index;size:16"`
	MessageId string    `json:"message_id" gorm:"index;size:255"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Type      string    `json:"type" gorm:"size:64"`
	Timestamp int64     `json:"timestamp"`
	IsGroup   bool      `json:"is_group"`
	FromMe    bool      `json:"from_me"`
	Read      int       `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "wa_message"
}
