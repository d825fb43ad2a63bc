package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/mkravets/tripbooking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) EditBooking(ctx context.Context, input booking.EditBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateStatus(ctx context.Context, input booking.UpdateStatusInput) (*booking.StatusResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.StatusResult), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:          "bk-1",
		UserID:      42,
		BookingType: domain.BookingTypeFlightHotel,
		Persons:     1,
		TotalPrice:  220,
		Status:      domain.BookingStatusPending,
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		UserID:      42,
		BookingType: "flight_hotel",
		StartDate:   "2025-03-10",
		Persons:     1,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), input).Return(sampleBooking(), nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "bk-1", data["booking_id"])
	assert.Equal(t, "pending", data["status"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_ValidationError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(booking.CreateBookingInput{UserID: 42, BookingType: "cruise"})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).
		Return(nil, apperr.New(apperr.KindValidation, `unknown booking type "cruise"`))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "unknown booking type")
}

func TestBookingHandler_edit(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	body, _ := json.Marshal(editBookingRequest{
		UserID:  42,
		Changes: map[string]any{"persons": 2.0},
	})
	c.Request = httptest.NewRequest("PATCH", "/bookings/bk-1", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	staged := sampleBooking()
	staged.PendingChanges = map[string]any{"persons": 2.0}

	mockService.On("EditBooking", c.Request.Context(), booking.EditBookingInput{
		BookingID: "bk-1",
		UserID:    42,
		Changes:   map[string]any{"persons": 2.0},
	}).Return(staged, nil)

	handler.edit(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "changes staged for confirmation", resp.Message)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_updateStatus(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	body, _ := json.Marshal(updateStatusRequest{UserID: 42, Status: "confirmed"})
	c.Request = httptest.NewRequest("PUT", "/bookings/bk-1/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	confirmed := sampleBooking()
	confirmed.Status = domain.BookingStatusConfirmed

	mockService.On("UpdateStatus", c.Request.Context(), booking.UpdateStatusInput{
		BookingID: "bk-1",
		UserID:    42,
		Status:    "confirmed",
	}).Return(&booking.StatusResult{Booking: confirmed, Changed: true, Message: "booking confirmed"}, nil)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "booking confirmed", resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "confirmed", data["status"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/bk-1?user_id=42", nil)

	canceled := sampleBooking()
	canceled.Status = domain.BookingStatusCanceled

	mockService.On("CancelBooking", c.Request.Context(), "bk-1", int64(42)).Return(canceled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "canceled", data["status"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_MissingUserID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/bk-1", nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CancelBooking")
}

func TestBookingHandler_updateStatus_RetryableFailure(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	body, _ := json.Marshal(updateStatusRequest{UserID: 42, Status: "confirmed"})
	c.Request = httptest.NewRequest("PUT", "/bookings/bk-1/status", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("UpdateStatus", c.Request.Context(), mock.Anything).
		Return(nil, apperr.New(apperr.KindPersistence, "booking is busy, try again"))

	handler.updateStatus(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "try again")
}
