package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/chatfusion/warelay/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// deviceKeyRetries bounds retries when a freshly generated device key hits the
// unique index. Keys are 36^8 so more than a couple of retries means the
// random source is broken.
const deviceKeyRetries = 5

// GormStore is the gorm-backed RecordStore used in production and in tests
// (sqlite).
type GormStore struct {
	db *gorm.DB
}

var _ RecordStore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateDeviceIfAbsent(ctx context.Context, sessionId string, userId int64, status domain.DeviceStatus) (*domain.Device, bool, error) {
	if strings.TrimSpace(sessionId) == "" {
		return nil, false, errors.New("store: empty session id")
	}
	if status == "" {
		status = domain.DeviceStatusUnknown
	}

	for i := 0; i < deviceKeyRetries; i++ {
		dev := &domain.Device{
			ID:        common.UUIDint64(),
			UUID:      common.UUID(),
			SessionId: sessionId,
			Key:       common.GenerateDeviceKey(),
			Status:    status,
			UserId:    userId,
		}
		// Insert-if-absent keyed on session_id: the conflict clause makes
		// concurrent start retries for the same session a no-op instead of a
		// duplicate row.
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
			Create(dev)
		if res.Error != nil {
			// A duplicate device key is retryable with a fresh key; any other
			// error is not.
			if isUniqueViolation(res.Error) {
				zap.L().Warn("store: device key collision, regenerating",
					zap.String("session_id", sessionId), zap.String("key", dev.Key))
				continue
			}
			return nil, false, res.Error
		}
		created := res.RowsAffected > 0
		if created {
			return dev, true, nil
		}
		existing, err := s.GetDeviceBySessionId(ctx, sessionId)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return nil, false, errors.New("store: exhausted device key retries")
}

func (s *GormStore) GetDeviceBySessionId(ctx context.Context, sessionId string) (*domain.Device, error) {
	var dev domain.Device
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&dev).Error; err != nil {
		return nil, err
	}
	return &dev, nil
}

func (s *GormStore) GetDeviceByKey(ctx context.Context, key string) (*domain.Device, error) {
	var dev domain.Device
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&dev).Error; err != nil {
		return nil, err
	}
	return &dev, nil
}

func (s *GormStore) ListDevicesByUser(ctx context.Context, userId int64) ([]domain.Device, error) {
	var devs []domain.Device
	if err := s.db.WithContext(ctx).Where("user_id = ?", userId).Order("id DESC").Find(&devs).Error; err != nil {
		return nil, err
	}
	return devs, nil
}

func (s *GormStore) UpdateDeviceStatus(ctx context.Context, sessionId string, status domain.DeviceStatus, ready bool) error {
	res := s.db.WithContext(ctx).Model(&domain.Device{}).
		Where("session_id = ?", sessionId).
		Updates(map[string]interface{}{
			"status":     status,
			"ready":      ready,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) CountDevices(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&domain.Device{}).Count(&total).Error
	return total, err
}

func (s *GormStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == 0 {
		msg.ID = common.UUIDint64()
	}
	if msg.UUID == "" {
		msg.UUID = common.UUID()
	}
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *GormStore) ListMessagesByDeviceKey(ctx context.Context, deviceKey string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var msgs []domain.Message
	err := s.db.WithContext(ctx).
		Where("device_key = ?", deviceKey).
		Order("id DESC").Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// UpsertContact inserts the contact or fully overwrites the existing row with
// the same contact_id; only the identity column is preserved on conflict.
func (s *GormStore) UpsertContact(ctx context.Context, contact *domain.Contact) error {
	if strings.TrimSpace(contact.ContactId) == "" {
		return errors.New("store: empty contact id")
	}
	if contact.ID == 0 {
		contact.ID = common.UUIDint64()
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "contact_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"device_key", "name", "contact_name", "number",
				"is_business", "is_group", "is_user",
				"description", "email", "website", "address",
				"latitude", "longitude", "categories", "updated_at",
			}),
		}).
		Create(contact).Error
}

func (s *GormStore) ListContactsByDeviceKey(ctx context.Context, deviceKey string, limit int) ([]domain.Contact, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var contacts []domain.Contact
	err := s.db.WithContext(ctx).
		Where("device_key = ?", deviceKey).
		Order("id DESC").Limit(limit).
		Find(&contacts).Error
	return contacts, err
}

func (s *GormStore) FindActiveApiKey(ctx context.Context, apiKey string) (*domain.SysApiKey, error) {
	var key domain.SysApiKey
	err := s.db.WithContext(ctx).
		Where("api_key = ? AND status = ?", apiKey, common.ENABLED).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// isUniqueViolation matches both postgres and sqlite duplicate-key errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
