package app

import (
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ConfigManager reads and caches sys_config runtime settings.
type ConfigManager struct {
	app   *Application
	mu    sync.RWMutex
	cache map[string]string
}

func NewConfigManager(a *Application) *ConfigManager {
	m := &ConfigManager{app: a, cache: make(map[string]string)}
	m.Reload()
	return m
}

// Reload reads all settings from the database into the cache.
func (m *ConfigManager) Reload() {
	var rows []domain.SysConfig
	if err := m.app.DB().Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]string, len(rows))
	for _, r := range rows {
		m.cache[r.Type+"."+r.Name] = r.Value
	}
}

func (m *ConfigManager) value(category, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cache[category+"."+name]
	return v, ok
}

func (m *ConfigManager) GetString(category, name string) string {
	v, _ := m.value(category, name)
	return v
}

func (m *ConfigManager) GetInt(category, name string) int {
	v, _ := m.value(category, name)
	return cast.ToInt(v)
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	v, _ := m.value(category, name)
	return cast.ToInt64(v)
}

func (m *ConfigManager) GetBool(category, name string) bool {
	v, _ := m.value(category, name)
	return cast.ToBool(v)
}

// Set writes one setting, creating it when absent, and refreshes the cache.
func (m *ConfigManager) Set(category, name, value string) error {
	var count int64
	m.app.DB().Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", category, name).Count(&count)
	var err error
	if count == 0 {
		err = m.app.DB().Create(&domain.SysConfig{Type: category, Name: name, Value: value}).Error
	} else {
		err = m.app.DB().Model(&domain.SysConfig{}).
			Where("type = ? AND name = ?", category, name).
			Update("value", value).Error
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cache[category+"."+name] = value
	m.mu.Unlock()
	return nil
}

// DecodeCategory overlays all non-empty settings of a category onto the given
// struct, matching setting names to field names case-insensitively.
func (m *ConfigManager) DecodeCategory(category string, out interface{}) {
	m.mu.RLock()
	values := make(map[string]interface{})
	prefix := category + "."
	for k, v := range m.cache {
		if strings.HasPrefix(k, prefix) && v != "" {
			values[strings.TrimPrefix(k, prefix)] = v
		}
	}
	m.mu.RUnlock()
	if len(values) == 0 {
		return
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		zap.L().Error("settings decoder init failed", zap.Error(err))
		return
	}
	if err := decoder.Decode(values); err != nil {
		zap.L().Warn("settings decode failed", zap.String("category", category), zap.Error(err))
	}
}
