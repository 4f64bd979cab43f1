package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestCodeForKind(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, CodeForKind(shared.KindValidation))
	assert.Equal(t, ErrCodeInvalidState, CodeForKind(shared.KindInvalidState))
	assert.Equal(t, ErrCodeConflict, CodeForKind(shared.KindConflict))
	assert.Equal(t, ErrCodeNotFound, CodeForKind(shared.KindNotFound))
	assert.Equal(t, ErrCodeInternal, CodeForKind("SOMETHING_ELSE"))
}

func TestNewDomainErrorResponse(t *testing.T) {
	err := shared.NewValidationError("AMOUNT_EXCEEDS_AVAILABLE", "Amount exceeds the available balance")
	resp := NewDomainErrorResponse(err, "req-1")

	raw, jsonErr := json.Marshal(resp)
	require.NoError(t, jsonErr)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_VALIDATION",
			"reason": "AMOUNT_EXCEEDS_AVAILABLE",
			"message": "Amount exceeds the available balance",
			"request_id": "req-1"
		}
	}`, string(raw))
}

func TestNewPageResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a", "b"}, 5, 1, 2)
	resp := NewPageResponse(&page)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, int64(5), resp.Meta.Total)
}

func TestListRequest_Filter(t *testing.T) {
	f := ListRequest{}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)

	f = ListRequest{Page: 3, PageSize: 50, OrderBy: "due_date", OrderDir: "asc", Search: "tuition"}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "due_date", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, "tuition", f.Search)
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type req struct {
		Amount   string `validate:"decimal_gt0"`
		Discount string `validate:"omitempty,decimal_gte0"`
		Period   string `validate:"omitempty,period"`
		Date     string `validate:"omitempty,date"`
	}

	assert.NoError(t, v.Struct(req{Amount: "150.50", Discount: "0", Period: "2026-10", Date: "2026-10-17"}))

	tests := []struct {
		name  string
		input req
		field string
	}{
		{"zero amount", req{Amount: "0"}, "Amount"},
		{"negative amount", req{Amount: "-1"}, "Amount"},
		{"not a number", req{Amount: "ten"}, "Amount"},
		{"negative discount", req{Amount: "1", Discount: "-0.01"}, "Discount"},
		{"bad period", req{Amount: "1", Period: "2026-13"}, "Period"},
		{"bad date", req{Amount: "1", Date: "17/10/2026"}, "Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestParseHelpers(t *testing.T) {
	d, err := ParseDateOpt("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDateOpt("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.Format(DateLayout))

	_, err = ParseDateOpt("2026-02-30")
	assert.Error(t, err)

	amount, err := ParseDecimalOpt("12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.5", amount.String())

	_, err = ParseDecimalOpt("abc")
	assert.Error(t, err)
}
