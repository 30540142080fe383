package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fairway/src/config"
	"fairway/src/db"
	"fairway/src/types"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test_secret"

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

// testAuthMiddleware stands in for the real token middleware so authed
// handlers can be exercised without a users table round trip.
func testAuthMiddleware(userId uint, role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", userId)
		ctx.Set("email", "someone@example.com")
		ctx.Set("uid", "test-uid")
		ctx.Set("role", role)
	}
}

func authedRouter(userId uint, role string) *gin.Engine {
	r := gin.New()
	apiv1 := apiv1Group(r)
	authed := apiv1.Group("")
	authed.Use(testAuthMiddleware(userId, role))
	bookingRoutes(authed)
	serviceRoutes(authed)
	reviewRoutes(authed)
	providerRoutes(authed)
	transcriptionRoutes(authed)
	adminRoutes(authed)
	return r
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
	os.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)
	os.Unsetenv("SMTP_HOST")
	os.Unsetenv("REDIS_HOST")

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TearDownTest() {
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func futureSchedule() string {
	return time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
}

func stripeEventPayload(eventId, eventType string, object map[string]any) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":          eventId,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data": map[string]any{
			"object": object,
		},
	})
	return payload
}

func signPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func (s *TestSuite) TestHealthz() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestWebhookRejectsBadSignature() {
	router := setupRouter()

	w := httptest.NewRecorder()
	payload := stripeEventPayload("evt_bad_sig", "checkout.session.completed", map[string]any{})
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestWebhookIgnoresUnrecognizedEvents() {
	router := setupRouter()

	w := httptest.NewRecorder()
	payload := stripeEventPayload("evt_unknown_1", "payment_intent.created", map[string]any{"id": "pi_1"})
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestWebhookPaymentFailedUnknownCustomer() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectExec(`UPDATE "caddie_profiles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	router := setupRouter()

	w := httptest.NewRecorder()
	payload := stripeEventPayload("evt_invoice_1", "invoice.payment_failed", map[string]any{
		"id":       "in_1",
		"customer": "cus_unknown",
	})
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func checkoutCompletedPayload(eventId, sessionId string, schedule string) []byte {
	return stripeEventPayload(eventId, "checkout.session.completed", map[string]any{
		"id":     sessionId,
		"object": "checkout.session",
		"mode":   "payment",
		"metadata": map[string]string{
			"service_id":   "1",
			"provider_id":  "9",
			"player_id":    "7",
			"price":        "120.00",
			"scheduled_at": schedule,
		},
	})
}

func (s *TestSuite) TestWebhookCheckoutCreatesBookingOnce() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WithArgs(
			"pending",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			120.0,
			sqlmock.AnyArg(),
			"cs_paid_1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	router := setupRouter()

	w := httptest.NewRecorder()
	payload := checkoutCompletedPayload("evt_paid_1", "cs_paid_1", futureSchedule())
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestWebhookCheckoutDuplicateSessionIsNoOp() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectCommit()

	router := setupRouter()

	w := httptest.NewRecorder()
	payload := checkoutCompletedPayload("evt_paid_2", "cs_paid_1", futureSchedule())
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestWebhookCheckoutStorageFailureAnswers500() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "webhook_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnError(errors.New("connection reset by peer"))
	s.Mock.ExpectRollback()

	router := setupRouter()

	w := httptest.NewRecorder()
	payload := checkoutCompletedPayload("evt_paid_3", "cs_paid_3", futureSchedule())
	req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 500, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "connection reset")
}

func (s *TestSuite) TestCreateBookingRejectsSelfBooking() {
	router := authedRouter(7, types.ROLE_GOLFER)

	body := types.CreateBookingRequestBody{
		ServiceID:   1,
		ProviderID:  7,
		ScheduledAt: futureSchedule(),
		Price:       120,
	}
	rbytes, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "own service")
}

func (s *TestSuite) TestCreateBookingRejectsPastDate() {
	router := authedRouter(7, types.ROLE_GOLFER)

	body := types.CreateBookingRequestBody{
		ServiceID:   1,
		ProviderID:  9,
		ScheduledAt: time.Now().Add(-48 * time.Hour).Format(config.TIME_PARSE_FORMAT),
		Price:       120,
	}
	rbytes, _ := json.Marshal(&body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCreateReviewRejectsRatingOutOfRange() {
	router := authedRouter(7, types.ROLE_GOLFER)

	for _, rating := range []int{0, 6} {
		w := httptest.NewRecorder()
		rbytes, _ := json.Marshal(map[string]any{"rating": rating})
		req, _ := http.NewRequest("POST", "/api/v1/bookings/1/reviews", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equalf(s.T(), 400, w.Code, "rating %d", rating)
	}
}

func bookingRow(status string, playerId, providerId uint) *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "status", "service_id", "player_id", "provider_id", "total_price"}).
		AddRow(1, status, 1, playerId, providerId, 120.0)
}

func (s *TestSuite) TestCreateReviewPreconditions() {
	s.Run("rejects a requester who is not the player", func() {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
			WillReturnRows(bookingRow("completed", 7, 9))

		router := authedRouter(5, types.ROLE_GOLFER)
		w := httptest.NewRecorder()
		rbytes, _ := json.Marshal(types.CreateReviewRequestBody{Rating: 5})
		req, _ := http.NewRequest("POST", "/api/v1/bookings/1/reviews", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("rejects a booking that is not completed", func() {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
			WillReturnRows(bookingRow("confirmed", 7, 9))

		router := authedRouter(7, types.ROLE_GOLFER)
		w := httptest.NewRecorder()
		rbytes, _ := json.Marshal(types.CreateReviewRequestBody{Rating: 5})
		req, _ := http.NewRequest("POST", "/api/v1/bookings/1/reviews", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		resbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "completed")
	})

	s.Run("rejects a second review for the same booking", func() {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
			WillReturnRows(bookingRow("completed", 7, 9))
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		router := authedRouter(7, types.ROLE_GOLFER)
		w := httptest.NewRecorder()
		rbytes, _ := json.Marshal(types.CreateReviewRequestBody{Rating: 5})
		req, _ := http.NewRequest("POST", "/api/v1/bookings/1/reviews", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		resbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "already exists")
	})
}

func (s *TestSuite) TestUpdateBookingStatusPlayerMayOnlyCancel() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow("pending", 7, 9))

	router := authedRouter(7, types.ROLE_GOLFER)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.UpdateBookingStatusRequestBody{Status: "confirmed"})
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/status", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestUpdateBookingStatusRejectsStranger() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow("pending", 7, 9))

	router := authedRouter(5, types.ROLE_GOLFER)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.UpdateBookingStatusRequestBody{Status: "cancelled"})
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/status", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestUpdateBookingStatusProviderConfirms() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow("pending", 7, 9))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	router := authedRouter(9, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.UpdateBookingStatusRequestBody{Status: "confirmed"})
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/status", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "confirmed", gjson.GetBytes(resbytes, "data.status").String())
}

func (s *TestSuite) TestUpdateBookingStatusInvalidTransition() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow("completed", 7, 9))

	router := authedRouter(9, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.UpdateBookingStatusRequestBody{Status: "confirmed"})
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/status", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "cannot change from completed to confirmed", gjson.GetBytes(resbytes, "error").String())
}

func (s *TestSuite) TestUpdateBookingStatusConflict() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow("pending", 7, 9))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	router := authedRouter(9, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.UpdateBookingStatusRequestBody{Status: "confirmed"})
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/status", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
}

func (s *TestSuite) TestBookingCheckoutRejectsUnavailableService() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "services"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "title", "price", "available", "provider_id"}).
			AddRow(1, "18-hole bag carry", 120.0, false, 9))

	router := authedRouter(7, types.ROLE_GOLFER)

	w := httptest.NewRecorder()
	body := types.CreateCheckoutRequestBody{
		ServiceID:   1,
		ProviderID:  9,
		ScheduledAt: futureSchedule(),
	}
	rbytes, _ := json.Marshal(&body)
	req, _ := http.NewRequest("POST", "/api/v1/checkout/bookings", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "not available")
}

func (s *TestSuite) TestServiceAvailabilityNotFound() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "services" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectCommit()

	router := authedRouter(9, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(map[string]any{"available": false})
	req, _ := http.NewRequest("PUT", "/api/v1/services/1/availability", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
}

func (s *TestSuite) TestSubscriptionCheckoutAlreadyActive() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "caddie_profiles"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "verified", "subscription_status"}).
			AddRow(1, 7, true, "active"))

	router := authedRouter(7, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/checkout/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	resbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Contains(s.T(), gjson.GetBytes(resbytes, "error").String(), "already active")
}

func (s *TestSuite) TestVettingRequiresDetailedAnswers() {
	router := authedRouter(7, types.ROLE_CADDIE)

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.VettingRequestBody{
		ExperienceAnswer: "too short",
		EtiquetteAnswer:  "too short",
		CourseAnswer:     "too short",
	})
	req, _ := http.NewRequest("POST", "/api/v1/caddies/vetting", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestAdminRoutesRejectNonAdmins() {
	router := authedRouter(7, types.ROLE_GOLFER)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestAuthTokenUnknownEmail() {
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := setupRouter()

	w := httptest.NewRecorder()
	rbytes, _ := json.Marshal(types.AuthTokenRequestBody{Email: "nobody@example.com"})
	req, _ := http.NewRequest("POST", "/api/v1/auth/token", strings.NewReader(string(rbytes)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
