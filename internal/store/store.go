// Package store implements the canonical record store for devices, messages
// and contacts. It is the sole mutator of those tables; relay and ingest code
// go through the RecordStore contract so the backing database can be swapped
// without touching call sites.
package store

import (
	"context"

	"github.com/chatfusion/warelay/internal/domain"
)

// RecordStore is the persistence contract shared by the relay gateway and the
// webhook ingest pipeline.
type RecordStore interface {
	// CreateDeviceIfAbsent inserts a Device for sessionId unless one already
	// exists. It reports whether a row was created and always returns the
	// stored row, so concurrent start retries converge on a single Device.
	CreateDeviceIfAbsent(ctx context.Context, sessionId string, userId int64, status domain.DeviceStatus) (*domain.Device, bool, error)
	GetDeviceBySessionId(ctx context.Context, sessionId string) (*domain.Device, error)
	GetDeviceByKey(ctx context.Context, key string) (*domain.Device, error)
	ListDevicesByUser(ctx context.Context, userId int64) ([]domain.Device, error)
	UpdateDeviceStatus(ctx context.Context, sessionId string, status domain.DeviceStatus, ready bool) error
	CountDevices(ctx context.Context) (int64, error)

	CreateMessage(ctx context.Context, msg *domain.Message) error
	ListMessagesByDeviceKey(ctx context.Context, deviceKey string, limit int) ([]domain.Message, error)

	UpsertContact(ctx context.Context, contact *domain.Contact) error
	ListContactsByDeviceKey(ctx context.Context, deviceKey string, limit int) ([]domain.Contact, error)

	FindActiveApiKey(ctx context.Context, apiKey string) (*domain.SysApiKey, error)
}
