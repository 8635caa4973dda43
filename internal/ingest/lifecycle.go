package ingest

import "github.com/chatfusion/warelay/internal/domain"

// statusDataTypes is the closed set of webhook dataType values that mutate a
// device's status; each maps to the status literal of the same name.
var statusDataTypes = map[string]domain.DeviceStatus{
	"qr":            domain.DeviceStatusQR,
	"authenticated": domain.DeviceStatusAuthenticated,
	"ready":         domain.DeviceStatusReady,
	"connecting":    domain.DeviceStatusConnecting,
	"connected":     domain.DeviceStatusConnected,
	"disconnected":  domain.DeviceStatusDisconnected,
}

// observedDataTypes are recognized events that never mutate status; they are
// logged for observability only.
var observedDataTypes = map[string]bool{
	"device_linked":   true,
	"device_unlinked": true,
	"message":         true,
	"media":           true,
	"contact":         true,
	"contacts":        true,
}

// StatusForDataType maps a webhook dataType onto a device status. ok is
// false for every dataType outside the closed status set.
func StatusForDataType(dataType string) (domain.DeviceStatus, bool) {
	status, ok := statusDataTypes[dataType]
	return status, ok
}

// Recognized reports whether the dataType is known at all; unrecognized
// values are ignored by the pipeline.
func Recognized(dataType string) bool {
	if _, ok := statusDataTypes[dataType]; ok {
		return true
	}
	return observedDataTypes[dataType]
}

// ReadyForStatus derives the device ready flag from its status.
func ReadyForStatus(status domain.DeviceStatus) bool {
	return status == domain.DeviceStatusReady || status == domain.DeviceStatusConnected
}
