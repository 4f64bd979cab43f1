package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/auth"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/campusledger/backend/internal/infrastructure/persistence"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/storage"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/campusledger/backend/internal/interfaces/http/middleware"
	"github.com/campusledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testVoucherLimit = 1 << 10

// testEnv is the ledger API on a private in-memory database, authenticated as
// one operator of one school.
type testEnv struct {
	t         *testing.T
	db        *gorm.DB
	router    *gin.Engine
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	tenantID  uuid.UUID
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	receivables := persistence.NewGormAccountReceivableRepository(db)
	payments := persistence.NewGormPaymentRepository(db)
	plans := persistence.NewGormPaymentPlanRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	paymentService := appfinance.NewPaymentService(payments, storage.NewMemoryVoucherStorage("vouchers"), txScope)
	paymentService.SetConfig(appfinance.PaymentServiceConfig{MaxVoucherBytes: testVoucherLimit})

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-with-enough-length",
		Issuer:                "campus-ledger",
		AccessTokenExpiration: time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	env := &testEnv{
		t:         t,
		db:        db,
		jwt:       jwtService,
		blacklist: blacklist,
		tenantID:  uuid.New(),
	}
	env.token = env.issue(env.tenantID)

	r := gin.New()
	r.Use(middleware.RequestID())
	receivableService := appfinance.NewReceivableService(receivables, payments, txScope)
	invoiceService := appfinance.NewInvoiceService(invoices,
		persistence.NewGormStudentDirectory(db), persistence.NewGormFeeCatalog(db), txScope)
	router.NewRouter(r, router.WithMiddleware(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))).Register(
		NewReceivableHandler(receivableService).Routes(),
		NewPaymentHandler(paymentService, testVoucherLimit).Routes(),
		NewPaymentPlanHandler(appfinance.NewPaymentPlanService(plans, receivables, txScope)).Routes(),
		NewInvoiceHandler(invoiceService).Routes(),
		NewCollectionHandler(appfinance.NewCollectionService(receivables, payments, plans)).Routes(),
		NewAuthHandler(blacklist).Routes(),
	).Setup()
	env.router = r
	return env
}

func (e *testEnv) issue(tenantID uuid.UUID) string {
	e.t.Helper()
	token, _, err := e.jwt.Issue(auth.IssueInput{TenantID: tenantID, ActorID: uuid.New(), ActorName: "Bursar"})
	require.NoError(e.t, err)
	return token
}

// do sends a JSON request as the env's operator
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	return e.doAs(e.token, method, path, body)
}

func (e *testEnv) doAs(token, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedStudent() uuid.UUID {
	e.t.Helper()
	student := models.StudentModel{
		BaseModel: models.BaseModel{ID: uuid.New()},
		TenantID:  e.tenantID,
		FullName:  "Ada Mensah",
		Active:    true,
	}
	require.NoError(e.t, e.db.Create(&student).Error)
	return student.ID
}

func (e *testEnv) seedFee(studentID uuid.UUID, description, price string) {
	e.t.Helper()
	fee := models.FeeAssignmentModel{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		TenantID:    e.tenantID,
		StudentID:   studentID,
		ConceptID:   uuid.New(),
		Description: description,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    decimal.NewFromInt(1),
		Discount:    decimal.Zero,
		Tax:         decimal.Zero,
	}
	require.NoError(e.t, e.db.Create(&fee).Error)
}

// createReceivable posts a receivable due in 30 days and returns it
func (e *testEnv) createReceivable(studentID uuid.UUID, amount string) appfinance.ReceivableResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/receivables", CreateReceivableRequest{
		StudentID: studentID.String(),
		ConceptID: uuid.NewString(),
		Amount:    amount,
		DueDate:   time.Now().UTC().AddDate(0, 0, 30).Format(time.DateOnly),
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[appfinance.ReceivableResponse](e.t, w)
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode[T](t, w)
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	env := decode[json.RawMessage](t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
