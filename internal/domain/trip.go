package domain

import (
	"encoding/json"
	"time"
)

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// FlightDetails is the flight half of a flight_hotel booking, stored as jsonb.
type FlightDetails struct {
	Airline       string     `json:"airline,omitempty"`
	FromAirport   string     `json:"from_airport,omitempty"`
	ToAirport     string     `json:"to_airport,omitempty"`
	Class         CabinClass `json:"class,omitempty"`
	DepartureDate string     `json:"departure_date,omitempty"`
}

// Amenities are flat hotel add-ons. CarRentalRate is a per-night rate,
// the rest are flat surcharges.
type Amenities struct {
	Pool          bool    `json:"pool,omitempty"`
	Wifi          bool    `json:"wifi,omitempty"`
	CarRental     bool    `json:"car_rental,omitempty"`
	CarRentalRate float64 `json:"car_rental_rate,omitempty"`
}

// HotelDetails is the hotel half of a flight_hotel booking, stored as jsonb.
type HotelDetails struct {
	Name      string    `json:"name,omitempty"`
	City      string    `json:"city,omitempty"`
	Stars     int       `json:"stars,omitempty"`
	RoomType  string    `json:"room_type,omitempty"`
	Amenities Amenities `json:"amenities"`
}

// Activity is one priced item on a custom itinerary. Price is per person.
type Activity struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ActivityList decodes from either a JSON array or a JSON string holding a
// serialized array; older clients ship the latter.
type ActivityList []Activity

func (l *ActivityList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		data = []byte(raw)
	}
	var acts []Activity
	if err := json.Unmarshal(data, &acts); err != nil {
		return err
	}
	*l = acts
	return nil
}

// ItineraryDetails describes a custom itinerary built on top of a base package.
type ItineraryDetails struct {
	Activities ActivityList `json:"activities"`
	Notes      string       `json:"notes,omitempty"`
}

// TourPackage is the catalog entry resolved for package and itinerary bookings.
type TourPackage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone helpers keep merge output detached from the row it was read from.

func (f *FlightDetails) Clone() *FlightDetails {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func (h *HotelDetails) Clone() *HotelDetails {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

func (i *ItineraryDetails) Clone() *ItineraryDetails {
	if i == nil {
		return nil
	}
	c := *i
	c.Activities = append(ActivityList(nil), i.Activities...)
	return &c
}
