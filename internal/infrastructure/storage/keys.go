package storage

import (
	"encoding/hex"
	"path"
	"strings"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"golang.org/x/crypto/blake2b"
)

// voucherKey addresses a voucher by its content, so re-uploading the same
// file for a payment does not create a second object:
//
//	<prefix>/<tenant>/<payment>/<blake2b-256 of bytes><ext>
func voucherKey(prefix string, file appfinance.VoucherFile) string {
	sum := blake2b.Sum256(file.Data)
	name := hex.EncodeToString(sum[:]) + extension(file.FileName)
	return path.Join(strings.Trim(prefix, "/"), file.TenantID.String(), file.PaymentID.String(), name)
}

func extension(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 8 {
		return ""
	}
	for _, c := range ext[min(1, len(ext)):] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
