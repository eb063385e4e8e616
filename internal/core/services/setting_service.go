package services

import (
	"context"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/pkg/utils/crypto"
)

// SystemSettingService stores operator-provided settings. Secret values (the
// sandbox provider API key) are encrypted at rest with the server's
// encryption key.
type SystemSettingService struct {
	repo          ports.SystemSettingRepository
	logger        *logger.Logger
	encryptionKey string
}

func NewSystemSettingService(repo ports.SystemSettingRepository, log *logger.Logger, encryptionKey string) *SystemSettingService {
	return &SystemSettingService{repo: repo, logger: log, encryptionKey: encryptionKey}
}

func (s *SystemSettingService) SetSandboxAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrSettingValueRequired
	}

	value := key
	settingType := "string"
	if s.encryptionKey != "" {
		encrypted, err := crypto.Encrypt(key, s.encryptionKey)
		if err != nil {
			s.logger.Errorw("setting_encrypt_failed", "key", domain.SettingSandboxAPIKey, "error", err)
			return err
		}
		value = encrypted
		settingType = "encrypted"
	}

	return s.repo.Set(ctx, &domain.SystemSetting{
		Key:      domain.SettingSandboxAPIKey,
		Value:    value,
		Type:     settingType,
		Category: "integration",
	})
}

// GetSandboxAPIKey returns the stored provider key, or empty when none is
// set. Used as a fallback when the environment does not carry the key.
func (s *SystemSettingService) GetSandboxAPIKey(ctx context.Context) (string, error) {
	setting, err := s.repo.Get(ctx, domain.SettingSandboxAPIKey)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}

	if setting.Type == "encrypted" && s.encryptionKey != "" {
		decrypted, err := crypto.Decrypt(setting.Value, s.encryptionKey)
		if err != nil {
			s.logger.Errorw("setting_decrypt_failed", "key", domain.SettingSandboxAPIKey, "error", err)
			return "", err
		}
		return decrypted, nil
	}

	return setting.Value, nil
}
