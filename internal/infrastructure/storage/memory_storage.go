package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	appfinance "github.com/campusledger/backend/internal/application/finance"
)

const memoryScheme = "mem://"

// MemoryVoucherStorage keeps vouchers in process memory. Used when no bucket
// is configured and in tests.
type MemoryVoucherStorage struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string]StoredVoucher
}

// StoredVoucher is a voucher held by MemoryVoucherStorage
type StoredVoucher struct {
	ContentType string
	FileName    string
	Data        []byte
}

func NewMemoryVoucherStorage(keyPrefix string) *MemoryVoucherStorage {
	return &MemoryVoucherStorage{prefix: keyPrefix, objects: make(map[string]StoredVoucher)}
}

func (s *MemoryVoucherStorage) Put(_ context.Context, file appfinance.VoucherFile) (string, error) {
	if len(file.Data) == 0 {
		return "", errors.New("voucher is empty")
	}
	key := voucherKey(s.prefix, file)

	s.mu.Lock()
	s.objects[key] = StoredVoucher{
		ContentType: file.ContentType,
		FileName:    file.FileName,
		Data:        append([]byte(nil), file.Data...),
	}
	s.mu.Unlock()
	return memoryScheme + key, nil
}

func (s *MemoryVoucherStorage) Delete(_ context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, memoryScheme)
	if !ok {
		return fmt.Errorf("not a memory voucher reference: %q", ref)
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored voucher by reference.
func (s *MemoryVoucherStorage) Get(ref string) (StoredVoucher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.objects[strings.TrimPrefix(ref, memoryScheme)]
	return v, ok
}

// Len returns the number of stored vouchers.
func (s *MemoryVoucherStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

var _ appfinance.FileStorage = (*MemoryVoucherStorage)(nil)
