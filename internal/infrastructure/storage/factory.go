package storage

import (
	"context"
	"fmt"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns the voucher storage selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (appfinance.FileStorage, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Warn("Voucher storage is in memory; uploaded vouchers are lost on restart")
		return NewMemoryVoucherStorage(cfg.KeyPrefix), nil
	case "s3":
		s, err := NewS3VoucherStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Voucher storage ready", zap.String("bucket", cfg.Bucket))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
