package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

func (e *testEnv) registerPayment(receivableID uuid.UUID, amount string) appfinance.SettlementResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/payments", RegisterPaymentRequest{
		ReceivableID: receivableID.String(),
		Amount:       amount,
		PaymentDate:  today(),
		Method:       string(finance.PaymentMethodBankTransfer),
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[appfinance.SettlementResponse](e.t, w)
}

func (e *testEnv) uploadVoucher(paymentID uuid.UUID, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(e.t, err)
	_, err = part.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/voucher", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPaymentHandler_RegisterAndConfirm(t *testing.T) {
	env := newTestEnv(t)
	ar := env.createReceivable(uuid.New(), "500.00")

	registered := env.registerPayment(ar.ID, "200.00")
	assert.Equal(t, finance.PaymentStatusPending, registered.Payment.Status)
	assert.Equal(t, finance.ReceivableStatusPending, registered.Receivable.Status)

	w := env.do(http.MethodPost, "/payments/"+registered.Payment.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decodeData[appfinance.SettlementResponse](t, w)
	assert.Equal(t, finance.PaymentStatusConfirmed, confirmed.Payment.Status)
	assert.Equal(t, finance.ReceivableStatusPartial, confirmed.Receivable.Status)
	assert.True(t, confirmed.Receivable.RemainingAmount.Equal(money("300")))

	w = env.do(http.MethodPost, "/payments/"+registered.Payment.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeError(t, w).Code)
}

func TestPaymentHandler_RejectsOverpayment(t *testing.T) {
	env := newTestEnv(t)
	ar := env.createReceivable(uuid.New(), "100.00")
	env.registerPayment(ar.ID, "80.00")

	w := env.do(http.MethodPost, "/payments", RegisterPaymentRequest{
		ReceivableID: ar.ID.String(),
		Amount:       "30.00",
		PaymentDate:  today(),
		Method:       string(finance.PaymentMethodCash),
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	errInfo := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
	assert.NotEmpty(t, errInfo.Reason)
}

func TestPaymentHandler_RejectAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ar := env.createReceivable(uuid.New(), "400.00")
	first := env.registerPayment(ar.ID, "100.00")
	second := env.registerPayment(ar.ID, "100.00")

	w := env.do(http.MethodPost, "/payments/"+first.Payment.ID.String()+"/reject", ReasonRequest{Reason: "Transfer bounced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decodeData[appfinance.SettlementResponse](t, w)
	assert.Equal(t, finance.PaymentStatusRejected, rejected.Payment.Status)
	assert.Equal(t, "Transfer bounced", rejected.Payment.RejectionReason)

	w = env.do(http.MethodPost, "/payments/"+second.Payment.ID.String()+"/cancel", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "a reason is required")

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/payments/"+second.Payment.ID.String()+"/confirm", nil).Code)
	w = env.do(http.MethodPost, "/payments/"+second.Payment.ID.String()+"/cancel", ReasonRequest{Reason: "Duplicate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decodeData[appfinance.SettlementResponse](t, w)
	assert.Equal(t, finance.PaymentStatusCancelled, cancelled.Payment.Status)
	assert.Equal(t, finance.ReceivableStatusPending, cancelled.Receivable.Status)
	assert.True(t, cancelled.Receivable.RemainingAmount.Equal(money("400")))
}

func TestPaymentHandler_UpdateAndList(t *testing.T) {
	env := newTestEnv(t)
	ar := env.createReceivable(uuid.New(), "400.00")
	payment := env.registerPayment(ar.ID, "100.00")

	amount := "150.00"
	method := string(finance.PaymentMethodCard)
	w := env.do(http.MethodPut, "/payments/"+payment.Payment.ID.String(), UpdatePaymentRequest{Amount: &amount, Method: &method})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[appfinance.PaymentResponse](t, w)
	assert.True(t, updated.Amount.Equal(money("150")))
	assert.Equal(t, finance.PaymentMethodCard, updated.Method)

	w = env.do(http.MethodGet, "/payments?receivable_id="+ar.ID.String()+"&method=CARD", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]appfinance.PaymentResponse](t, w), 1)

	w = env.do(http.MethodGet, "/payments?status=CONFIRMED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]appfinance.PaymentResponse](t, w))

	w = env.do(http.MethodGet, "/payments/"+payment.Payment.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payment.Payment.ID, decodeData[appfinance.PaymentResponse](t, w).ID)
}

func TestPaymentHandler_UploadVoucher(t *testing.T) {
	env := newTestEnv(t)
	ar := env.createReceivable(uuid.New(), "400.00")
	payment := env.registerPayment(ar.ID, "100.00")

	t.Run("stores an allowed file", func(t *testing.T) {
		w := env.uploadVoucher(payment.Payment.ID, "receipt.pdf", "application/pdf", []byte("%PDF-1.7 receipt"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotEmpty(t, decodeData[appfinance.PaymentResponse](t, w).VoucherRef)
	})

	t.Run("refuses a disallowed type", func(t *testing.T) {
		w := env.uploadVoucher(payment.Payment.ID, "receipt.svg", "image/svg+xml", []byte("<svg/>"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeError(t, w).Code)
	})

	t.Run("refuses an oversized file", func(t *testing.T) {
		w := env.uploadVoucher(payment.Payment.ID, "scan.png", "image/png", bytes.Repeat([]byte{0x89}, testVoucherLimit+1))
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeError(t, w).Code)
	})

	t.Run("requires the file field", func(t *testing.T) {
		w := env.do(http.MethodPost, "/payments/"+payment.Payment.ID.String()+"/voucher", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		require.Len(t, errInfo.Details, 1)
		assert.Equal(t, VoucherFormField, errInfo.Details[0].Field)
	})
}
