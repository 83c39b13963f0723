package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"rentalmate/internal/models"
	"rentalmate/internal/service"
	"rentalmate/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore backs the handler tests with a single listing and in-memory
// bookings.
type memStore struct {
	mu       sync.Mutex
	pg       models.PG
	room     models.RoomType
	bookings map[int64]*models.Booking
	byOrder  map[string]int64
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		pg: models.PG{ID: 1, OwnerID: 21, Name: "Sunrise PG", City: "Pune"},
		room: models.RoomType{
			ID: 1, PGID: 1, Type: models.RoomTypeSingle,
			Price: 8000, Deposit: 10000, Total: 5, Available: 5,
		},
		bookings: make(map[int64]*models.Booking),
		byOrder:  make(map[string]int64),
	}
}

func (m *memStore) GetPG(ctx context.Context, id int64) (*models.PG, error) {
	if id != m.pg.ID {
		return nil, store.ErrNotFound
	}
	pg := m.pg
	return &pg, nil
}

func (m *memStore) GetRoomType(ctx context.Context, pgID int64, roomType string) (*models.RoomType, error) {
	if pgID != m.pg.ID || roomType != m.room.Type {
		return nil, store.ErrNotFound
	}
	rt := m.room
	return &rt, nil
}

func (m *memStore) CreateBookingTx(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byOrder[b.PaymentOrderID]; dup {
		return store.ErrDuplicateOrder
	}
	if m.room.Available <= 0 {
		return store.ErrNoRoomsAvailable
	}
	m.room.Available--
	m.nextID++
	b.ID = m.nextID
	cp := *b
	m.bookings[b.ID] = &cp
	m.byOrder[b.PaymentOrderID] = b.ID
	return nil
}

func (m *memStore) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) GetBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	cp := *m.bookings[id]
	return &cp, nil
}

func (m *memStore) ListBookings(ctx context.Context, f store.BookingFilter) ([]models.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for id := int64(1); id <= m.nextID; id++ {
		b, ok := m.bookings[id]
		if !ok {
			continue
		}
		if f.TenantID != 0 && b.TenantID != f.TenantID {
			continue
		}
		if f.OwnerID != 0 && b.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) UpdateBookingStatus(ctx context.Context, id int64, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return store.ErrStatusConflict
	}
	b.Status = to
	return nil
}

func (m *memStore) CancelBookingTx(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bookings[b.ID]
	if !ok || models.IsTerminalStatus(stored.Status) {
		return store.ErrStatusConflict
	}
	cp := *b
	m.bookings[b.ID] = &cp
	if m.room.Available < m.room.Total {
		m.room.Available++
	}
	return nil
}

func (m *memStore) StatusStats(ctx context.Context, ownerID int64) ([]models.StatusStat, error) {
	return []models.StatusStat{{Status: models.BookingStatusConfirmed, Count: 1, Revenue: 32800}}, nil
}

func (m *memStore) MonthlyRevenue(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthlyRevenue, error) {
	return nil, nil
}

var _ service.Store = (*memStore)(nil)

func newTestRouter() (*gin.Engine, *memStore) {
	st := newMemStore()
	svc := service.NewBookingService(st, nil, service.NewSimulatedGateway(), nil)
	h := NewHandler(svc, testSecret)

	router := gin.New()
	h.SetupRoutes(router)
	return router, st
}

func mintToken(t *testing.T, secret string, userID int64, role string, expiry time.Duration) string {
	t.Helper()
	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func orderBody(orderID string) gin.H {
	checkIn := time.Now().AddDate(0, 0, 40).UTC().Truncate(24 * time.Hour)
	body := gin.H{
		"pg":           1,
		"room_type":    models.RoomTypeSingle,
		"check_in":     checkIn.Format(time.RFC3339),
		"check_out":    checkIn.AddDate(0, 0, 90).Format(time.RFC3339),
		"monthly_rent": 8000,
		"deposit":      10000,
	}
	if orderID != "" {
		body["order_id"] = orderID
		body["contact"] = gin.H{"name": "Asha", "phone": "9999999999", "email": "asha@example.com"}
	}
	return body
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(router, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/bookings", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	wrongSecret := mintToken(t, "other-secret", 11, models.RoleTenant, time.Hour)
	w = doRequest(router, http.MethodGet, "/api/bookings", wrongSecret, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := mintToken(t, testSecret, 11, models.RoleTenant, -time.Hour)
	w = doRequest(router, http.MethodGet, "/api/bookings", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	unknownRole := mintToken(t, testSecret, 11, "superuser", time.Hour)
	w = doRequest(router, http.MethodGet, "/api/bookings", unknownRole, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGatedRoutes(t *testing.T) {
	router, _ := newTestRouter()
	tenantToken := mintToken(t, testSecret, 11, models.RoleTenant, time.Hour)

	w := doRequest(router, http.MethodPut, "/api/bookings/1/status", tenantToken,
		gin.H{"status": models.BookingStatusActive})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/bookings/stats/overview", tenantToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ownerToken := mintToken(t, testSecret, 21, models.RoleOwner, time.Hour)
	w = doRequest(router, http.MethodGet, "/api/bookings/stats/overview", ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, _ := newTestRouter()
	token := mintToken(t, testSecret, 11, models.RoleTenant, time.Hour)

	w := doRequest(router, http.MethodPost, "/api/bookings/create-order", token, orderBody(""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID  string  `json:"order_id"`
			Amount   int64   `json:"amount"`
			Currency string  `json:"currency"`
			Months   int     `json:"months"`
			Discount int     `json:"discount"`
			Total    float64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Data.OrderID, "order_dev_")
	assert.Equal(t, "INR", resp.Data.Currency)
	assert.Equal(t, 3, resp.Data.Months)
	assert.Equal(t, 5, resp.Data.Discount)
	assert.Equal(t, 32800.0, resp.Data.Total)
	assert.Equal(t, int64(3280000), resp.Data.Amount)
}

func TestCreateOrderValidationErrors(t *testing.T) {
	router, _ := newTestRouter()
	token := mintToken(t, testSecret, 11, models.RoleTenant, time.Hour)

	body := orderBody("")
	body["room_type"] = "penthouse"
	w := doRequest(router, http.MethodPost, "/api/bookings/create-order", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = orderBody("")
	body["pg"] = 404
	w = doRequest(router, http.MethodPost, "/api/bookings/create-order", token, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	router, st := newTestRouter()
	tenantToken := mintToken(t, testSecret, 11, models.RoleTenant, time.Hour)
	ownerToken := mintToken(t, testSecret, 21, models.RoleOwner, time.Hour)
	strangerToken := mintToken(t, testSecret, 55, models.RoleTenant, time.Hour)

	// Verify payment creates the booking.
	w := doRequest(router, http.MethodPost, "/api/bookings/verify-payment", tenantToken,
		orderBody("order_dev_http_1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	booking := created.Data
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.NotEmpty(t, booking.BookingRef)
	assert.Equal(t, 4, st.room.Available)

	// Re-verifying the same order does not create a second booking.
	w = doRequest(router, http.MethodPost, "/api/bookings/verify-payment", tenantToken,
		orderBody("order_dev_http_1"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 4, st.room.Available)
	assert.Len(t, st.bookings, 1)

	bookingPath := fmt.Sprintf("/api/bookings/%d", booking.ID)

	// Tenant and owner can read it, a stranger cannot.
	w = doRequest(router, http.MethodGet, bookingPath, tenantToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, bookingPath, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, bookingPath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The list is scoped to the caller.
	w = doRequest(router, http.MethodGet, "/api/bookings", strangerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Count)

	// Owner advances the lifecycle.
	w = doRequest(router, http.MethodPut, bookingPath+"/status", ownerToken,
		gin.H{"status": models.BookingStatusActive})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Backward transition is rejected.
	w = doRequest(router, http.MethodPut, bookingPath+"/status", ownerToken,
		gin.H{"status": models.BookingStatusConfirmed})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tenant cancels, refund comes back in the response.
	w = doRequest(router, http.MethodPut, bookingPath+"/cancel", tenantToken,
		gin.H{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cancelResp struct {
		Data service.CancelResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelResp))
	assert.Equal(t, models.BookingStatusCancelled, cancelResp.Data.Booking.Status)
	assert.Equal(t, 100, cancelResp.Data.RefundPercentage)
	assert.Equal(t, 5, st.room.Available)

	// Cancelling again is rejected.
	w = doRequest(router, http.MethodPut, bookingPath+"/cancel", tenantToken,
		gin.H{"reason": "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSoldOutOverHTTP(t *testing.T) {
	router, st := newTestRouter()
	st.room.Available = 0
	token := mintToken(t, testSecret, 11, models.RoleTenant, time.Hour)

	w := doRequest(router, http.MethodPost, "/api/bookings/verify-payment", token,
		orderBody("order_dev_http_2"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no rooms available")
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type staticChecker struct {
	err error
}

func (c staticChecker) Ping(ctx context.Context) error {
	return c.err
}

func TestReadinessTracksDependencies(t *testing.T) {
	st := newMemStore()
	svc := service.NewBookingService(st, nil, service.NewSimulatedGateway(), nil)

	healthy := gin.New()
	NewHandler(svc, testSecret, staticChecker{}).SetupRoutes(healthy)
	w := doRequest(healthy, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	degraded := gin.New()
	NewHandler(svc, testSecret, staticChecker{}, staticChecker{err: errors.New("connection refused")}).SetupRoutes(degraded)
	w = doRequest(degraded, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
