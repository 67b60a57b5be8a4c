package app

import (
	"errors"
	"strings"
	"time"

	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

// Default runtime settings initialized on first start.
var settingSchemas = []settingSchema{
	{Key: "store.OrderEmailEnabled", Default: "true", Description: "Send status emails on order confirmation/rejection"},
	{Key: "store.WhatsAppNumber", Default: "", Description: "Override the checkout handoff WhatsApp number"},
	{Key: "smtp.Host", Default: "", Description: "Override SMTP host"},
	{Key: "smtp.Port", Default: "", Description: "Override SMTP port"},
	{Key: "smtp.User", Default: "", Description: "Override SMTP username"},
	{Key: "smtp.Passwd", Default: "", Description: "Override SMTP password"},
	{Key: "smtp.From", Default: "", Description: "Override the notification sender address"},
	{Key: "smtp.AdminTo", Default: "", Description: "Contact form recipient"},
}

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "sakuraessence"

	hashedPassword, err := common.HashPassword(defaultPassword)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var operator domain.SysOpr
	err = a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkBanner seeds a single welcome banner on an empty installation so the
// storefront carousel is never blank.
func (a *Application) checkBanner() {
	var count int64
	a.gormDB.Model(&domain.Banner{}).Count(&count)
	if count > 0 {
		return
	}
	if err := a.gormDB.Create(&domain.Banner{
		ID:       common.UUIDint64(),
		Title:    "Sakura Essence",
		Subtitle: "Parfums raffinés & élégance intemporelle",
		Image:    "/uploads/default-banner.webp",
		Active:   true,
	}).Error; err != nil {
		zap.L().Error("failed to create default banner", zap.Error(err))
	} else {
		zap.L().Info("initialized default banner")
	}
}
