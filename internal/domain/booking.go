package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCanceled:
		return BookingStatus(s), true
	}
	return "", false
}

type BookingType string

const (
	BookingTypePackage     BookingType = "package"
	BookingTypeItinerary   BookingType = "itinerary"
	BookingTypeFlightHotel BookingType = "flight_hotel"
)

func ParseBookingType(s string) (BookingType, bool) {
	switch BookingType(s) {
	case BookingTypePackage, BookingTypeItinerary, BookingTypeFlightHotel:
		return BookingType(s), true
	}
	return "", false
}

type InsuranceType string

const (
	InsuranceNone    InsuranceType = "none"
	InsuranceBasic   InsuranceType = "basic"
	InsurancePremium InsuranceType = "premium"
	InsuranceElite   InsuranceType = "elite"
)

func ParseInsuranceType(s string) (InsuranceType, bool) {
	if s == "" {
		return InsuranceNone, true
	}
	switch InsuranceType(s) {
	case InsuranceNone, InsuranceBasic, InsurancePremium, InsuranceElite:
		return InsuranceType(s), true
	}
	return "", false
}

// Booking is the aggregate root. TotalPrice is denormalized and always reflects
// the currently effective trip details, never the staged PendingChanges.
type Booking struct {
	ID               string
	UserID           int64
	BookingType      BookingType
	PackageID        *int64
	PackageName      string
	FlightDetails    *FlightDetails
	HotelDetails     *HotelDetails
	ItineraryDetails *ItineraryDetails
	StartDate        time.Time
	EndDate          *time.Time
	Persons          int
	TotalPrice       float64
	Status           BookingStatus
	InsuranceType    InsuranceType
	PendingChanges   map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Nights is the inclusive day count between start and end, floored at 1.
// A missing end date means a single-day booking.
func (b *Booking) Nights() int {
	if b.EndDate == nil {
		return 1
	}
	return NightsBetween(b.StartDate, *b.EndDate)
}

func NightsBetween(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func (b *Booking) IsCanceled() bool {
	return b.Status == BookingStatusCanceled
}

func (b *Booking) HasPendingChanges() bool {
	return len(b.PendingChanges) > 0
}
