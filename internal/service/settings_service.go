package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"billing/internal/model"
	"billing/internal/repository"
)

type SettingsService interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	// UpdateSettings upserts every pair in one transaction. A bad value for
	// any key rejects the whole update.
	UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	txManager    repository.TransactionManager
}

func NewSettingsService(settingsRepo repository.SettingsRepository, txManager repository.TransactionManager) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		txManager:    txManager,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (map[string]string, error) {
	settings, err := s.settingsRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, invalid("", "no settings given")
	}
	if err := validateSettings(values); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, k := range keys {
			if err := s.settingsRepo.Upsert(txCtx, k, values[k]); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSettings(ctx)
}

func validateSettings(values map[string]string) error {
	for k, v := range values {
		switch {
		case strings.TrimSpace(k) == "":
			return invalid("key", "setting key must not be empty")
		case k == model.SettingInvoicePrefix && strings.TrimSpace(v) == "":
			return invalid(k, "invoice prefix must not be empty")
		case k == model.SettingInvoiceCounter:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil || n < 1 {
				return invalid(k, "invoice counter must be a positive integer, got %q", v)
			}
		}
	}
	return nil
}
