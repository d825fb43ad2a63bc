package patch

import "github.com/mkravets/tripbooking/internal/domain"

// Merged is the fully materialized result of applying a change set: the trip
// details the price calculator runs on, plus the scalar overrides the caller
// folds into the booking row. Nothing in it references the staged changes.
type Merged struct {
	Flight    *domain.FlightDetails
	Hotel     *domain.HotelDetails
	Itinerary *domain.ItineraryDetails
	Scalar    ScalarPatch
}

// Apply merges the change set onto the current trip details. Structured
// patches run first, dot-path patches second, so when both target the same
// field the dot-path value is the one that sticks. Inputs are cloned, never
// mutated.
func Apply(cs *ChangeSet, flight *domain.FlightDetails, hotel *domain.HotelDetails, itinerary *domain.ItineraryDetails) Merged {
	out := Merged{
		Flight:    flight.Clone(),
		Hotel:     hotel.Clone(),
		Itinerary: itinerary.Clone(),
	}
	if cs == nil {
		return out
	}
	out.Flight = applyFlight(out.Flight, cs.Flight)
	out.Hotel = applyHotel(out.Hotel, cs.Hotel)
	out.Itinerary = applyItinerary(out.Itinerary, cs.Itinerary)
	out.Flight = applyFlight(out.Flight, cs.FlightDot)
	out.Hotel = applyHotel(out.Hotel, cs.HotelDot)
	out.Scalar = cs.Scalar
	return out
}

func applyFlight(cur *domain.FlightDetails, p *FlightPatch) *domain.FlightDetails {
	if p == nil {
		return cur
	}
	if cur == nil {
		cur = &domain.FlightDetails{}
	}
	if p.Airline != nil {
		cur.Airline = *p.Airline
	}
	if p.FromAirport != nil {
		cur.FromAirport = *p.FromAirport
	}
	if p.ToAirport != nil {
		cur.ToAirport = *p.ToAirport
	}
	if p.Class != nil {
		cur.Class = *p.Class
	}
	if p.DepartureDate != nil {
		cur.DepartureDate = *p.DepartureDate
	}
	return cur
}

func applyHotel(cur *domain.HotelDetails, p *HotelPatch) *domain.HotelDetails {
	if p == nil {
		return cur
	}
	if cur == nil {
		cur = &domain.HotelDetails{}
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.City != nil {
		cur.City = *p.City
	}
	if p.Stars != nil {
		cur.Stars = *p.Stars
	}
	if p.RoomType != nil {
		cur.RoomType = *p.RoomType
	}
	// amenities merge one level deeper: untouched add-ons survive.
	if a := p.Amenities; a != nil {
		if a.Pool != nil {
			cur.Amenities.Pool = *a.Pool
		}
		if a.Wifi != nil {
			cur.Amenities.Wifi = *a.Wifi
		}
		if a.CarRental != nil {
			cur.Amenities.CarRental = *a.CarRental
		}
		if a.CarRentalRate != nil {
			cur.Amenities.CarRentalRate = *a.CarRentalRate
		}
	}
	return cur
}

func applyItinerary(cur *domain.ItineraryDetails, p *ItineraryPatch) *domain.ItineraryDetails {
	if p == nil {
		return cur
	}
	if cur == nil {
		cur = &domain.ItineraryDetails{}
	}
	if p.Activities != nil {
		cur.Activities = append(domain.ActivityList(nil), (*p.Activities)...)
	}
	if p.Notes != nil {
		cur.Notes = *p.Notes
	}
	return cur
}
