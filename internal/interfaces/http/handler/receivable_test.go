package handler

import (
	"net/http"
	"testing"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivableHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	studentID := uuid.New()

	created := env.createReceivable(studentID, "450.00")
	assert.Equal(t, env.tenantID, created.TenantID)
	assert.Equal(t, finance.ReceivableStatusPending, created.Status)
	assert.True(t, created.RemainingAmount.Equal(money("450")))

	w := env.do(http.MethodGet, "/receivables/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[appfinance.ReceivableResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, studentID, got.StudentID)
	assert.False(t, got.IsOverdue)
}

func TestReceivableHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	due := time.Now().UTC().AddDate(0, 0, 10).Format(time.DateOnly)

	tests := []struct {
		name  string
		req   CreateReceivableRequest
		field string
	}{
		{"zero amount", CreateReceivableRequest{StudentID: uuid.NewString(), ConceptID: uuid.NewString(), Amount: "0", DueDate: due}, "amount"},
		{"bad student id", CreateReceivableRequest{StudentID: "42", ConceptID: uuid.NewString(), Amount: "10", DueDate: due}, "student_id"},
		{"bad due date", CreateReceivableRequest{StudentID: uuid.NewString(), ConceptID: uuid.NewString(), Amount: "10", DueDate: "17/10/2026"}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/receivables", tt.req)
			require.Equal(t, http.StatusBadRequest, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
			require.NotEmpty(t, errInfo.Details)
			assert.Equal(t, tt.field, errInfo.Details[0].Field)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestReceivableHandler_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	created := env.createReceivable(uuid.New(), "100.00")

	otherSchool := env.issue(uuid.New())
	w := env.doAs(otherSchool, http.MethodGet, "/receivables/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Code)

	w = env.doAs(otherSchool, http.MethodGet, "/receivables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]appfinance.ReceivableResponse](t, w))
}

func TestReceivableHandler_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.doAs("", http.MethodGet, "/receivables", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, w).Code)
}

func TestReceivableHandler_ListFiltersAndPages(t *testing.T) {
	env := newTestEnv(t)
	studentID := uuid.New()
	env.createReceivable(studentID, "100.00")
	env.createReceivable(studentID, "250.00")
	env.createReceivable(uuid.New(), "900.00")

	w := env.do(http.MethodGet, "/receivables?student_id="+studentID.String()+"&order_by=amount&order_dir=asc&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[[]appfinance.ReceivableResponse](t, w)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].Amount.Equal(money("100")))
	require.NotNil(t, page.Meta)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)

	w = env.do(http.MethodGet, "/receivables?min_amount=200", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]appfinance.ReceivableResponse](t, w), 2)

	w = env.do(http.MethodGet, "/receivables?status=OPEN", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/receivables/summary?student_id="+studentID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeData[appfinance.ReceivableSummary](t, w)
	assert.Equal(t, int64(2), summary.Count)
	assert.True(t, summary.TotalAmount.Equal(money("350")))
}

func TestReceivableHandler_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	created := env.createReceivable(uuid.New(), "300.00")
	path := "/receivables/" + created.ID.String()

	description := "Term 2 tuition"
	amount := "320.00"
	w := env.do(http.MethodPut, path, UpdateReceivableRequest{Amount: &amount, Description: &description})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[appfinance.ReceivableResponse](t, w)
	assert.Equal(t, description, updated.Description)
	assert.True(t, updated.RemainingAmount.Equal(money("320")))

	w = env.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceivableHandler_DeleteWithPaymentsConflicts(t *testing.T) {
	env := newTestEnv(t)
	created := env.createReceivable(uuid.New(), "300.00")
	env.registerPayment(created.ID, "50.00")

	w := env.do(http.MethodDelete, "/receivables/"+created.ID.String(), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeConflict, errInfo.Code)
	assert.Equal(t, "RECEIVABLE_HAS_PAYMENTS", errInfo.Reason)
}

func TestReceivableHandler_MalformedID(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/receivables/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errInfo := decodeError(t, w)
	require.Len(t, errInfo.Details, 1)
	assert.Equal(t, "id", errInfo.Details[0].Field)
}
