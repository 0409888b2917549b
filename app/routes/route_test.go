package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/configs"
	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/models/migrations"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/routes"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/securecookie"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "Secret123"

type outbox struct {
	mu   sync.Mutex
	err  error
	sent []string
}

func (o *outbox) SendHTMLEmail(to, subject, htmlBody string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, to+"|"+subject)
	return nil
}

func (o *outbox) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

type apiFixture struct {
	db     *gorm.DB
	srv    *httptest.Server
	mail   *outbox
	admin  *models.User
	client *models.User
}

func newAPI(t *testing.T, csrfEnabled bool) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migrations.AutoMigrate(db))

	users := repositories.NewUserRepository(db)
	admin := &models.User{Username: "owner", Email: "owner@shop.test", Password: testPassword, Role: models.RoleAdmin}
	customer := &models.User{Username: "ana", Email: "ana@shop.test", Password: testPassword}
	require.NoError(t, users.Create(context.Background(), admin))
	require.NoError(t, users.Create(context.Background(), customer))

	mail := &outbox{}
	router, err := routes.NewRouter(routes.Options{
		DB: db,
		Env: configs.ENV{
			AppName:                    "Boutique",
			AppEnv:                     "test",
			AppURL:                     "http://shop.test",
			CSRFEnabled:                csrfEnabled,
			JWTSecret:                  "route-test-secret",
			JWTTTLHours:                1,
			InvitationTTLHours:         24,
			VerificationCodeTTLMinutes: 10,
		},
		Logger:  zap.NewNop(),
		Metrics: metrics.New("test"),
		Mailer:  mail,
		Now:     func() time.Time { return time.Now().UTC() },
		SessionKeys: &configs.SessionKeys{
			AuthKey: securecookie.GenerateRandomKey(64),
			EncKey:  securecookie.GenerateRandomKey(32),
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiFixture{db: db, srv: srv, mail: mail, admin: admin, client: customer}
}

type call struct {
	method string
	path   string
	body   interface{}
	token  string
	header map[string]string
}

func (f *apiFixture) do(t *testing.T, httpClient *http.Client, c call) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(c.method, f.srv.URL+c.path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	if httpClient == nil {
		httpClient = f.srv.Client()
	}
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (f *apiFixture) token(t *testing.T, login string) string {
	t.Helper()
	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/token", body: map[string]string{
		"login": login, "password": testPassword,
	}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Bearer", body["token_type"])
	return body["token"].(string)
}

func (f *apiFixture) createProduct(t *testing.T, adminToken, name, price string, stock int) string {
	t.Helper()
	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/products", token: adminToken, body: map[string]interface{}{
		"name": name, "price": price, "stock": stock, "category": "Dresses",
	}})
	require.Equal(t, http.StatusCreated, status, body)
	return body["product"].(map[string]interface{})["id"].(string)
}

func asDecimal(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected a decimal string, got %T", v)
	return decimal.RequireFromString(s)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPI(t, false)

	status, body := f.do(t, nil, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `test_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPI(t, false)
	status, body := f.do(t, nil, call{method: http.MethodGet, path: "/api/nope"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newAPI(t, false)

	status, _ := f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/products"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/products", token: f.token(t, "ana")})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/send_invitation", token: f.token(t, "ana"),
		body: map[string]string{"email": "new@shop.test"}})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/dashboard", token: f.token(t, "owner")})
	assert.Equal(t, http.StatusOK, status)
}

func TestCatalogThroughAPI(t *testing.T) {
	f := newAPI(t, false)
	adminToken := f.token(t, "owner@shop.test")

	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/categories", token: adminToken,
		body: map[string]string{"name": "Dresses"}})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/categories", token: adminToken,
		body: map[string]string{"name": "Dresses"}})
	assert.Equal(t, http.StatusConflict, status, body)

	id := f.createProduct(t, adminToken, "Linen Dress", "49.90", 1)

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/products?q=linen"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 1)

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/products/category/dresses"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 1)

	status, body = f.do(t, nil, call{method: http.MethodPut, path: "/api/admin/products/" + id + "/stock", token: adminToken,
		body: map[string]int{"stock": 0}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, models.StatusInactive, body["product"].(map[string]interface{})["status"])

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/products"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["products"])

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/products?status=Inactive", token: adminToken})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 1)

	status, _ = f.do(t, nil, call{method: http.MethodDelete, path: "/api/admin/categories/" + "missing", token: adminToken})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidationErrorsAreReportedPerField(t *testing.T) {
	f := newAPI(t, false)
	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/products", token: f.token(t, "owner"),
		body: map[string]interface{}{"name": "", "category": "Dresses"}})

	assert.Equal(t, http.StatusBadRequest, status)
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, body)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "stock")
}

func TestSessionCartCheckout(t *testing.T) {
	f := newAPI(t, false)
	productID := f.createProduct(t, f.token(t, "owner"), "Silk Scarf", "10.00", 5)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}

	status, _ := f.do(t, browser, call{method: http.MethodGet, path: "/api/cart"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := f.do(t, browser, call{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"login": "ana", "password": testPassword}})
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.do(t, browser, call{method: http.MethodPost, path: "/api/cart",
		body: map[string]interface{}{"product_id": productID, "quantity": 2}})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body["cart_count"])

	status, body = f.do(t, browser, call{method: http.MethodPost, path: "/api/cart",
		body: map[string]interface{}{"product_id": productID, "quantity": 9}})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = f.do(t, browser, call{method: http.MethodPost, path: "/api/cart/checkout",
		body: map[string]string{"payment_method": "card"}})
	require.Equal(t, http.StatusCreated, status, body)
	invoice := body["invoice"].(map[string]interface{})
	assert.True(t, asDecimal(t, invoice["total_amount"]).Equal(decimal.RequireFromString("24.20")))
	assert.Equal(t, "ana@shop.test", invoice["customer_email"])

	status, body = f.do(t, browser, call{method: http.MethodGet, path: "/api/cart/count"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["cart_count"])

	status, _ = f.do(t, browser, call{method: http.MethodPost, path: "/api/auth/logout"})
	require.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, browser, call{method: http.MethodGet, path: "/api/profile"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminInvoiceLifecycle(t *testing.T) {
	f := newAPI(t, false)
	adminToken := f.token(t, "owner")
	productID := f.createProduct(t, adminToken, "Wool Blazer", "10.00", 3)

	f.mail.fail(errors.New("smtp down"))
	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/invoices", token: adminToken, body: map[string]interface{}{
		"customer_name":  "Walk-in",
		"customer_email": "walkin@shop.test",
		"payment_method": "cash",
		"cash_received":  "50",
		"send_email":     true,
		"items":          []map[string]interface{}{{"product_id": productID, "quantity": 3, "discount": "10"}},
	}})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, false, body["email_sent"])
	assert.NotEmpty(t, body["email_error"])

	invoice := body["invoice"].(map[string]interface{})
	id := invoice["id"].(string)
	assert.True(t, asDecimal(t, invoice["total_amount"]).Equal(decimal.RequireFromString("32.67")))
	assert.True(t, asDecimal(t, invoice["change_given"]).Equal(decimal.RequireFromString("17.33")))

	f.mail.fail(nil)
	status, body = f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/invoices/" + id + "/send", token: adminToken})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, models.InvoiceStatusSent, body["invoice"].(map[string]interface{})["status"])

	today := time.Now().UTC().Format("2006-01-02")
	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/invoices?from=" + today + "&to=" + today, token: adminToken})
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["invoices"], 1)

	status, _ = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/invoices?from=2024-13-40", token: adminToken})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/invoices/summary", token: adminToken})
	require.Equal(t, http.StatusOK, status)
	summary := body["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total_invoices"])

	status, body = f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/invoices/" + id + "/void", token: adminToken})
	require.Equal(t, http.StatusOK, status, body)
	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/admin/invoices/" + id + "/void", token: adminToken})
	assert.Equal(t, http.StatusConflict, status)

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/products/" + productID, token: adminToken})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["product"].(map[string]interface{})["stock"])
}

func TestInvitationRegistration(t *testing.T) {
	f := newAPI(t, false)

	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/send_invitation", token: f.token(t, "owner"),
		body: map[string]string{"email": "new@shop.test"}})
	require.Equal(t, http.StatusCreated, status, body)
	require.Equal(t, 1, f.mail.count())

	var invitation models.Invitation
	require.NoError(t, f.db.Where("email = ?", "new@shop.test").First(&invitation).Error)
	token := invitation.Token

	status, _ = f.do(t, nil, call{method: http.MethodGet, path: "/api/invitations/" + token})
	assert.Equal(t, http.StatusOK, status)

	register := map[string]string{
		"username":         "newbie",
		"email":            "new@shop.test",
		"password":         "Welcome1",
		"confirm_password": "Welcome1",
		"invitation_token": token,
	}
	status, body = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/register", body: register})
	require.Equal(t, http.StatusCreated, status, body)

	register["username"], register["email"] = "second", "second@shop.test"
	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/register", body: register})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCSRFEnforcedForCookieClients(t *testing.T) {
	f := newAPI(t, true)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}
	login := map[string]string{"login": "ana", "password": testPassword}

	status, _ := f.do(t, browser, call{method: http.MethodPost, path: "/api/auth/login", body: login})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := f.do(t, browser, call{method: http.MethodGet, path: "/api/csrf-token"})
	require.Equal(t, http.StatusOK, status)
	csrfToken := body["csrf_token"].(string)
	header := body["header"].(string)

	status, body = f.do(t, browser, call{method: http.MethodPost, path: "/api/auth/login", body: login,
		header: map[string]string{header: csrfToken}})
	assert.Equal(t, http.StatusOK, status, body)

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/token", body: login})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = f.do(t, nil, call{method: http.MethodGet, path: "/api/admin/dashboard", token: tokenWithoutCSRF(t, f)})
	assert.Equal(t, http.StatusOK, status, body)
}

// tokenWithoutCSRF obtains a bearer token through a CSRF-aware client, then
// uses it without any cookies.
func tokenWithoutCSRF(t *testing.T, f *apiFixture) string {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}

	_, body := f.do(t, browser, call{method: http.MethodGet, path: "/api/csrf-token"})
	status, body := f.do(t, browser, call{method: http.MethodPost, path: "/api/auth/token",
		body:   map[string]string{"login": "owner", "password": testPassword},
		header: map[string]string{body["header"].(string): body["csrf_token"].(string)},
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAPI(t, false)

	status, _ := f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/password-reset/request",
		body: map[string]string{"email": "nobody@shop.test"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, f.mail.count())

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/password-reset/request",
		body: map[string]string{"email": "ana@shop.test"}})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, f.mail.count())

	var user models.User
	require.NoError(t, f.db.First(&user, "email = ?", "ana@shop.test").Error)
	require.NotNil(t, user.VerificationCode)
	code := *user.VerificationCode

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/password-reset/verify",
		body: map[string]string{"email": "ana@shop.test", "code": code}})
	assert.Equal(t, http.StatusOK, status)

	status, body := f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/password-reset/confirm",
		body: map[string]string{"email": "ana@shop.test", "code": code, "password": "NewSecret9", "confirm_password": "NewSecret9"}})
	require.Equal(t, http.StatusOK, status, body)

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/token",
		body: map[string]string{"login": "ana", "password": testPassword}})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, nil, call{method: http.MethodPost, path: "/api/auth/token",
		body: map[string]string{"login": "ana", "password": "NewSecret9"}})
	assert.Equal(t, http.StatusOK, status)
}
