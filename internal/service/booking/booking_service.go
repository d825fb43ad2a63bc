package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/mkravets/tripbooking/internal/kafka"
	"github.com/mkravets/tripbooking/internal/patch"
	"github.com/mkravets/tripbooking/internal/pricing"
	"github.com/mkravets/tripbooking/internal/repository"
)

const dateLayout = "2006-01-02"

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	EditBooking(ctx context.Context, input EditBookingInput) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*StatusResult, error)
	CancelBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	users              repository.UserRepository
	calc               *pricing.Calculator
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	calc *pricing.Calculator,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		users:        users,
		calc:         calc,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateBookingInput struct {
	UserID        int64                    `json:"user_id"`
	BookingType   string                   `json:"booking_type"`
	PackageID     *int64                   `json:"package_id"`
	Flight        *domain.FlightDetails    `json:"flight_details"`
	Hotel         *domain.HotelDetails     `json:"hotel_details"`
	Itinerary     *domain.ItineraryDetails `json:"itinerary_details"`
	StartDate     string                   `json:"start_date"`
	EndDate       string                   `json:"end_date"`
	Persons       int                      `json:"persons"`
	InsuranceType string                   `json:"insurance_type"`
	TotalPrice    *float64                 `json:"total_price"`
}

type EditBookingInput struct {
	BookingID string         `json:"booking_id"`
	UserID    int64          `json:"user_id"`
	Changes   map[string]any `json:"changes"`
}

type UpdateStatusInput struct {
	BookingID      string         `json:"booking_id"`
	UserID         int64          `json:"user_id"`
	Status         string         `json:"status"`
	PendingChanges map[string]any `json:"pending_changes"`
}

// StatusResult reports a status-update outcome. Changed is false for the
// idempotent no-op path, which never re-runs merge or pricing.
type StatusResult struct {
	Booking *domain.Booking
	Changed bool
	Message string
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	bookingType, ok := domain.ParseBookingType(input.BookingType)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "unknown booking type %q", input.BookingType)
	}
	if input.Persons < 1 {
		return nil, apperr.New(apperr.KindValidation, "persons must be at least 1")
	}
	insurance, ok := domain.ParseInsuranceType(input.InsuranceType)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "unknown insurance type %q", input.InsuranceType)
	}
	if bookingType == domain.BookingTypeFlightHotel && input.Flight == nil && input.Hotel == nil {
		return nil, apperr.New(apperr.KindValidation, "flight_hotel bookings need flight or hotel details")
	}

	startDate, err := parseDate("start_date", input.StartDate, true)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("end_date", input.EndDate, false)
	if err != nil {
		return nil, err
	}
	if endDate != nil && endDate.Before(*startDate) {
		return nil, apperr.New(apperr.KindValidation, "end_date is before start_date")
	}

	if err := s.checkUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	// server price is always computed: it validates the package reference and
	// backstops a missing or non-positive caller figure
	computed, pkg, err := s.calc.Compute(ctx, pricing.Input{
		BookingType: bookingType,
		Persons:     input.Persons,
		StartDate:   *startDate,
		EndDate:     endDate,
		Flight:      input.Flight,
		Hotel:       input.Hotel,
		Itinerary:   input.Itinerary,
		PackageID:   input.PackageID,
		Insurance:   insurance,
	})
	if err != nil {
		return nil, err
	}
	total := computed
	if input.TotalPrice != nil && *input.TotalPrice > 0 {
		total = *input.TotalPrice
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		BookingType:      bookingType,
		PackageID:        input.PackageID,
		FlightDetails:    input.Flight,
		HotelDetails:     input.Hotel,
		ItineraryDetails: input.Itinerary,
		StartDate:        *startDate,
		EndDate:          endDate,
		Persons:          input.Persons,
		TotalPrice:       total,
		Status:           domain.BookingStatusPending,
		InsuranceType:    insurance,
	}
	if pkg != nil {
		booking.PackageName = pkg.Name
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

// EditBooking stages a change set on the row without touching the effective
// trip details or the price; the changes take hold only at confirm time.
// Repeated edits accumulate through a shallow top-level merge.
func (s *BookingService) EditBooking(ctx context.Context, input EditBookingInput) (*domain.Booking, error) {
	if input.BookingID == "" {
		return nil, apperr.New(apperr.KindValidation, "booking_id is required")
	}
	if len(input.Changes) == 0 {
		return nil, apperr.New(apperr.KindValidation, "changes are required")
	}
	// parse up front so a malformed change set never reaches the row
	if _, err := patch.Parse(input.Changes); err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != input.UserID {
		return nil, apperr.New(apperr.KindForbidden, "booking does not belong to this user")
	}
	if current.IsCanceled() {
		return nil, apperr.New(apperr.KindValidation, "cannot edit a canceled booking")
	}

	staged, err := s.bookings.StageChanges(ctx, input.BookingID, input.Changes)
	if err != nil {
		return nil, err
	}
	if !staged {
		// the row was canceled between the read and the conditional write
		return nil, apperr.New(apperr.KindValidation, "cannot edit a canceled booking")
	}

	return s.bookings.GetByID(ctx, input.BookingID)
}

// UpdateStatus drives the state machine. Only the transition INTO confirmed
// merges pending changes and reprices; every other allowed transition is a
// plain status write. Requesting the current status is a safe no-op.
func (s *BookingService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*StatusResult, error) {
	if input.BookingID == "" {
		return nil, apperr.New(apperr.KindValidation, "booking_id is required")
	}
	target, ok := domain.ParseBookingStatus(input.Status)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "unknown status %q", input.Status)
	}
	if len(input.PendingChanges) > 0 {
		if _, err := patch.Parse(input.PendingChanges); err != nil {
			return nil, err
		}
	}

	result := &StatusResult{}
	var event string

	updated, err := s.bookings.UpdateUnderLock(ctx, input.BookingID, func(b *domain.Booking) (bool, error) {
		switch transitionFor(b.Status, target) {
		case actionReject:
			return false, apperr.New(apperr.KindValidation, "booking already canceled")
		case actionNoop:
			result.Message = "status unchanged"
			return false, nil
		case actionConfirm:
			if err := s.confirm(ctx, b, input.PendingChanges); err != nil {
				return false, err
			}
			result.Changed = true
			result.Message = "booking confirmed"
			event = "booking_confirmed"
			return true, nil
		case actionCancel:
			b.Status = domain.BookingStatusCanceled
			result.Changed = true
			result.Message = "booking canceled"
			event = "booking_canceled"
			return true, nil
		default: // actionWrite
			b.Status = target
			result.Changed = true
			result.Message = "status updated"
			event = "booking_status_changed"
			return true, nil
		}
	})
	if err != nil {
		if repository.IsLockTimeout(err) {
			return nil, apperr.Wrap(apperr.KindPersistence, "booking is busy, try again", err)
		}
		return nil, err
	}

	result.Booking = updated
	if result.Changed {
		s.publish(ctx, event, updated)
	}
	return result, nil
}

// confirm mutates b into its post-confirmation shape: staged and request
// changes merged into the trip details, price recomputed from the merged
// result, pending changes cleared. Runs inside the row lock.
func (s *BookingService) confirm(ctx context.Context, b *domain.Booking, requestChanges map[string]any) error {
	changes := patch.Combine(b.PendingChanges, requestChanges)
	if len(changes) == 0 {
		// nothing staged: a plain status flip
		b.Status = domain.BookingStatusConfirmed
		return nil
	}

	cs, err := patch.Parse(changes)
	if err != nil {
		return err
	}
	merged := patch.Apply(cs, b.FlightDetails, b.HotelDetails, b.ItineraryDetails)

	persons := b.Persons
	if merged.Scalar.Persons != nil {
		persons = *merged.Scalar.Persons
	}
	startDate := b.StartDate
	if merged.Scalar.StartDate != nil {
		startDate = *merged.Scalar.StartDate
	}
	endDate := b.EndDate
	if merged.Scalar.EndDate != nil {
		endDate = merged.Scalar.EndDate
	}
	packageID := b.PackageID
	if merged.Scalar.PackageID != nil {
		packageID = merged.Scalar.PackageID
	}
	insurance := b.InsuranceType
	if merged.Scalar.InsuranceType != nil {
		insurance = *merged.Scalar.InsuranceType
	}

	total, pkg, err := s.calc.Compute(ctx, pricing.Input{
		BookingType: b.BookingType,
		Persons:     persons,
		StartDate:   startDate,
		EndDate:     endDate,
		Flight:      merged.Flight,
		Hotel:       merged.Hotel,
		Itinerary:   merged.Itinerary,
		PackageID:   packageID,
		Insurance:   insurance,
	})
	if err != nil {
		return err
	}
	if override := merged.Scalar.TotalPrice; override != nil {
		if *override <= 0 {
			return apperr.New(apperr.KindComputation, "total_price override must be positive")
		}
		total = *override
	}

	b.FlightDetails = merged.Flight
	b.HotelDetails = merged.Hotel
	b.ItineraryDetails = merged.Itinerary
	b.Persons = persons
	b.StartDate = startDate
	b.EndDate = endDate
	b.PackageID = packageID
	b.InsuranceType = insurance
	b.TotalPrice = total
	if pkg != nil {
		b.PackageName = pkg.Name
	}
	b.Status = domain.BookingStatusConfirmed
	b.PendingChanges = nil
	return nil
}

// CancelBooking is the user-facing cancel: it checks ownership, then takes
// the same locked write path a status update does.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, apperr.New(apperr.KindValidation, "booking_id is required")
	}
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "booking does not belong to this user")
	}

	updated, err := s.bookings.UpdateUnderLock(ctx, bookingID, func(b *domain.Booking) (bool, error) {
		if b.IsCanceled() {
			return false, apperr.New(apperr.KindValidation, "booking already canceled")
		}
		b.Status = domain.BookingStatusCanceled
		return true, nil
	})
	if err != nil {
		if repository.IsLockTimeout(err) {
			return nil, apperr.Wrap(apperr.KindPersistence, "booking is busy, try again", err)
		}
		return nil, err
	}

	s.publish(ctx, "booking_canceled", updated)
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string, userID int64) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, apperr.New(apperr.KindValidation, "booking_id is required")
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "booking does not belong to this user")
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) checkUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return apperr.New(apperr.KindValidation, "user_id is required")
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.Newf(apperr.KindNotFound, "user %d not found", userID)
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		BookingType: string(b.BookingType),
		Status:      string(b.Status),
		TotalPrice:  b.TotalPrice,
		OccurredAt:  time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		fmt.Printf("WARNING: failed to publish %s event for booking %s: %v\n", eventType, b.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.ID, event); err != nil {
			fmt.Printf("WARNING: failed to publish %s notification for booking %s: %v\n", eventType, b.ID, err)
		}
	}
}

func parseDate(field, value string, required bool) (*time.Time, error) {
	if value == "" {
		if required {
			return nil, apperr.Newf(apperr.KindValidation, "%s is required", field)
		}
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be a date in the form %s", field, dateLayout)
	}
	return &t, nil
}

var _ BookingUseCase = (*BookingService)(nil)
