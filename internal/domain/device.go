package domain

import "time"

// DeviceStatus is the closed set of device connection states derived from
// provider webhook events.
type DeviceStatus string

const (
	DeviceStatusUnknown       DeviceStatus = "unknown"
	DeviceStatusConnecting    DeviceStatus = "connecting"
	DeviceStatusQR            DeviceStatus = "qr"
	DeviceStatusAuthenticated DeviceStatus = "authenticated"
	DeviceStatusReady         DeviceStatus = "ready"
	DeviceStatusConnected     DeviceStatus = "connected"
	DeviceStatusDisconnected  DeviceStatus = "disconnected"
)

// Device mirrors one provider session. SessionId is provider-assigned and
// unique; Key is generated locally and scopes Messages/Contacts independently
// of the provider identifier.
type Device struct {
	ID        int64        `json:"id,string" gorm:"primaryKey"`
	UUID      string       `json:"uuid" gorm:"uniqueIndex;size:36"`
	SessionId string       `json:"session_id" gorm:"uniqueIndex;size:128"`
	Key       string       `json:"key" gorm:"uniqueIndex;size:16"`
	Number    string       `json:"number"`
	Status    DeviceStatus `json:"status" gorm:"index;size:32"`
	Ready     bool         `json:"ready"`
	UserId    int64        `json:"user_id,string" gorm:"index"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Device) TableName() string {
	return "wa_device"
}
