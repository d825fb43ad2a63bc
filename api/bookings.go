package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/mkravets/tripbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.edit)
	router.PUT("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.cancel)
}

type bookingResponse struct {
	ID               string                   `json:"booking_id"`
	UserID           int64                    `json:"user_id"`
	BookingType      string                   `json:"booking_type"`
	PackageID        *int64                   `json:"package_id,omitempty"`
	PackageName      string                   `json:"package_name,omitempty"`
	FlightDetails    *domain.FlightDetails    `json:"flight_details,omitempty"`
	HotelDetails     *domain.HotelDetails     `json:"hotel_details,omitempty"`
	ItineraryDetails *domain.ItineraryDetails `json:"itinerary_details,omitempty"`
	StartDate        string                   `json:"start_date"`
	EndDate          string                   `json:"end_date,omitempty"`
	Persons          int                      `json:"persons"`
	TotalPrice       float64                  `json:"total_price"`
	Status           string                   `json:"status"`
	InsuranceType    string                   `json:"insurance_type"`
	PendingChanges   map[string]any           `json:"pending_changes,omitempty"`
	CreatedAt        string                   `json:"created_at"`
	UpdatedAt        string                   `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		BookingType:      string(b.BookingType),
		PackageID:        b.PackageID,
		PackageName:      b.PackageName,
		FlightDetails:    b.FlightDetails,
		HotelDetails:     b.HotelDetails,
		ItineraryDetails: b.ItineraryDetails,
		StartDate:        b.StartDate.Format("2006-01-02"),
		Persons:          b.Persons,
		TotalPrice:       b.TotalPrice,
		Status:           string(b.Status),
		InsuranceType:    string(b.InsuranceType),
		PendingChanges:   b.PendingChanges,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
	if b.EndDate != nil {
		resp.EndDate = b.EndDate.Format("2006-01-02")
	}
	return resp
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "booking created", toBookingResponse(b))
}

type editBookingRequest struct {
	UserID  int64          `json:"user_id"`
	Changes map[string]any `json:"changes"`
}

func (h *BookingHandler) edit(c *gin.Context) {
	var req editBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	b, err := h.service.EditBooking(c.Request.Context(), booking.EditBookingInput{
		BookingID: c.Param("id"),
		UserID:    req.UserID,
		Changes:   req.Changes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "changes staged for confirmation", toBookingResponse(b))
}

type updateStatusRequest struct {
	UserID         int64          `json:"user_id"`
	Status         string         `json:"status"`
	PendingChanges map[string]any `json:"pending_changes"`
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), booking.UpdateStatusInput{
		BookingID:      c.Param("id"),
		UserID:         req.UserID,
		Status:         req.Status,
		PendingChanges: req.PendingChanges,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, result.Message, toBookingResponse(result.Booking))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, err := userIDQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "booking canceled", toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, err := userIDQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, err := userIDQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	ok(c, http.StatusOK, "", out)
}

func userIDQuery(c *gin.Context) (int64, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return 0, apperr.New(apperr.KindValidation, "user_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindValidation, "user_id must be a positive integer")
	}
	return id, nil
}
