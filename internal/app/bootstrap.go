package app

import (
	"errors"
	"time"

	"github.com/chatfusion/warelay/internal/domain"
	"github.com/chatfusion/warelay/pkg/common"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkDefaultOperator seeds a default operator account and API key on a
// fresh database so the relay surface is usable immediately. The generated
// key is logged exactly once at creation time.
func (a *Application) checkDefaultOperator() {
	const defaultUsername = "admin"

	var opr domain.SysOpr
	err := a.gormDB.Where("username = ?", defaultUsername).First(&opr).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		opr = domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  defaultUsername,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "default operator",
			LastLogin: time.Now(),
		}
		if err := a.gormDB.Create(&opr).Error; err != nil {
			zap.L().Error("failed to create default operator", zap.Error(err))
			return
		}
		zap.L().Info("initialized default operator account", zap.String("username", defaultUsername))
	case err != nil:
		zap.L().Error("failed to query default operator", zap.Error(err))
		return
	}

	var keyCount int64
	if err := a.gormDB.Model(&domain.SysApiKey{}).Where("opr_id = ?", opr.ID).Count(&keyCount).Error; err != nil {
		zap.L().Error("failed to count api keys", zap.Error(err))
		return
	}
	if keyCount > 0 {
		return
	}

	apiKey := random.String(32, random.Alphanumeric)
	row := &domain.SysApiKey{
		ID:     common.UUIDint64(),
		OprId:  opr.ID,
		Name:   defaultUsername,
		ApiKey: apiKey,
		Status: common.ENABLED,
		Remark: "bootstrap key",
	}
	if err := a.gormDB.Create(row).Error; err != nil {
		zap.L().Error("failed to create bootstrap api key", zap.Error(err))
		return
	}
	zap.L().Info("initialized bootstrap api key", zap.String("api_key", apiKey))
}
