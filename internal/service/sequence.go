package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"billing/internal/model"
	"billing/internal/repository"

	"gorm.io/gorm"
)

// SequenceAllocator hands out invoice numbers from the settings table.
type SequenceAllocator interface {
	// Allocate reads the current prefix and counter and formats the next
	// number. Nothing is persisted.
	Allocate(ctx context.Context) (number string, counter int64, err error)
	// Commit stores counter+1. It belongs in the same transaction as the
	// invoice insert that used counter.
	Commit(ctx context.Context, counter int64) error
}

type sequenceAllocator struct {
	settingsRepo repository.SettingsRepository
}

func NewSequenceAllocator(settingsRepo repository.SettingsRepository) SequenceAllocator {
	return &sequenceAllocator{settingsRepo: settingsRepo}
}

// FormatInvoiceNumber renders "{prefix}-{counter}" with the counter zero-padded to five digits.
func FormatInvoiceNumber(prefix string, counter int64) string {
	return fmt.Sprintf("%s-%05d", prefix, counter)
}

func (s *sequenceAllocator) Allocate(ctx context.Context) (string, int64, error) {
	prefix := model.DefaultInvoicePrefix
	setting, err := s.settingsRepo.Get(ctx, model.SettingInvoicePrefix)
	switch {
	case err == nil:
		if v := strings.TrimSpace(setting.Value); v != "" {
			prefix = v
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", 0, fmt.Errorf("failed to read invoice prefix: %w", err)
	}

	counter := model.DefaultInvoiceCounter
	setting, err = s.settingsRepo.GetForUpdate(ctx, model.SettingInvoiceCounter)
	switch {
	case err == nil:
		if n, perr := strconv.ParseInt(strings.TrimSpace(setting.Value), 10, 64); perr == nil && n >= 1 {
			counter = n
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", 0, fmt.Errorf("failed to read invoice counter: %w", err)
	}

	return FormatInvoiceNumber(prefix, counter), counter, nil
}

func (s *sequenceAllocator) Commit(ctx context.Context, counter int64) error {
	if err := s.settingsRepo.Upsert(ctx, model.SettingInvoiceCounter, strconv.FormatInt(counter+1, 10)); err != nil {
		return fmt.Errorf("failed to advance invoice counter: %w", err)
	}
	return nil
}
