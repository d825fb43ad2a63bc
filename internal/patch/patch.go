// Package patch turns the free-form change maps staged on a booking into a
// typed change set and merges it onto the booking's trip details. Two key
// conventions coexist in one change set: structured nested maps
// ({"flight_details": {"airline": "..."}}) and legacy flat dot-paths
// ("flight_details.airline"). Structured keys are applied first, dot-paths
// after, so a dot-path targeting the same field wins.
package patch

import (
	"encoding/json"
	"time"

	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
)

const dateLayout = "2006-01-02"

type FlightPatch struct {
	Airline       *string
	FromAirport   *string
	ToAirport     *string
	Class         *domain.CabinClass
	DepartureDate *string
}

type AmenitiesPatch struct {
	Pool          *bool
	Wifi          *bool
	CarRental     *bool
	CarRentalRate *float64
}

type HotelPatch struct {
	Name      *string
	City      *string
	Stars     *int
	RoomType  *string
	Amenities *AmenitiesPatch
}

type ItineraryPatch struct {
	Activities *[]domain.Activity
	Notes      *string
}

type ScalarPatch struct {
	Persons       *int
	StartDate     *time.Time
	EndDate       *time.Time
	PackageID     *int64
	InsuranceType *domain.InsuranceType
	TotalPrice    *float64
}

// ChangeSet is a fully parsed change map. The *Dot patches hold the legacy
// flat keys, kept separate so Apply can run them after the structured ones.
type ChangeSet struct {
	Flight    *FlightPatch
	Hotel     *HotelPatch
	Itinerary *ItineraryPatch
	Scalar    ScalarPatch

	FlightDot *FlightPatch
	HotelDot  *HotelPatch
}

func (cs *ChangeSet) Empty() bool {
	return cs == nil || (cs.Flight == nil && cs.Hotel == nil && cs.Itinerary == nil &&
		cs.FlightDot == nil && cs.HotelDot == nil && cs.Scalar == (ScalarPatch{}))
}

// Combine shallow-merges two raw change maps; keys in incoming override
// existing. Both inputs are left untouched.
func Combine(existing, incoming map[string]any) map[string]any {
	if len(existing) == 0 && len(incoming) == 0 {
		return nil
	}
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// Parse validates a raw change map into a ChangeSet. Unknown keys and a
// "status" key are rejected outright; status moves only through the lifecycle
// API and a typo'd key silently dropped would lose an edit.
func Parse(changes map[string]any) (*ChangeSet, error) {
	cs := &ChangeSet{}
	for key, raw := range changes {
		switch key {
		case "status":
			return nil, apperr.New(apperr.KindValidation, "status cannot be changed through pending changes")
		case "flight_details":
			p, err := parseFlightMap(raw)
			if err != nil {
				return nil, err
			}
			cs.Flight = p
		case "hotel_details":
			p, err := parseHotelMap(raw)
			if err != nil {
				return nil, err
			}
			cs.Hotel = p
		case "itinerary_details":
			p, err := parseItineraryMap(raw)
			if err != nil {
				return nil, err
			}
			cs.Itinerary = p
		case "persons":
			n, err := intValue(key, raw)
			if err != nil {
				return nil, err
			}
			if n < 1 {
				return nil, apperr.New(apperr.KindValidation, "persons must be at least 1")
			}
			cs.Scalar.Persons = &n
		case "start_date":
			t, err := dateValue(key, raw)
			if err != nil {
				return nil, err
			}
			cs.Scalar.StartDate = t
		case "end_date":
			t, err := dateValue(key, raw)
			if err != nil {
				return nil, err
			}
			cs.Scalar.EndDate = t
		case "package_id":
			n, err := intValue(key, raw)
			if err != nil {
				return nil, err
			}
			id := int64(n)
			cs.Scalar.PackageID = &id
		case "insurance_type":
			s, err := stringValue(key, raw)
			if err != nil {
				return nil, err
			}
			ins, ok := domain.ParseInsuranceType(s)
			if !ok {
				return nil, apperr.Newf(apperr.KindValidation, "unknown insurance type %q", s)
			}
			cs.Scalar.InsuranceType = &ins
		case "total_price":
			f, err := floatValue(key, raw)
			if err != nil {
				return nil, err
			}
			cs.Scalar.TotalPrice = &f
		default:
			if err := parseDotKey(cs, key, raw); err != nil {
				return nil, err
			}
		}
	}
	return cs, nil
}

func parseFlightMap(raw any) (*FlightPatch, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "flight_details must be an object")
	}
	p := &FlightPatch{}
	for k, v := range m {
		if err := setFlightField(p, k, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func setFlightField(p *FlightPatch, field string, raw any) error {
	s, err := stringValue("flight_details."+field, raw)
	if err != nil {
		return err
	}
	switch field {
	case "airline":
		p.Airline = &s
	case "from_airport":
		p.FromAirport = &s
	case "to_airport":
		p.ToAirport = &s
	case "departure_date":
		p.DepartureDate = &s
	case "class":
		switch domain.CabinClass(s) {
		case domain.CabinEconomy, domain.CabinPremiumEconomy, domain.CabinBusiness, domain.CabinFirst:
			c := domain.CabinClass(s)
			p.Class = &c
		default:
			return apperr.Newf(apperr.KindValidation, "unknown cabin class %q", s)
		}
	default:
		return apperr.Newf(apperr.KindValidation, "unknown flight_details field %q", field)
	}
	return nil
}

func parseHotelMap(raw any) (*HotelPatch, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "hotel_details must be an object")
	}
	p := &HotelPatch{}
	for k, v := range m {
		if k == "amenities" {
			am, ok := v.(map[string]any)
			if !ok {
				return nil, apperr.New(apperr.KindValidation, "hotel_details.amenities must be an object")
			}
			if p.Amenities == nil {
				p.Amenities = &AmenitiesPatch{}
			}
			for ak, av := range am {
				if err := setAmenityField(p.Amenities, ak, av); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := setHotelField(p, k, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func setHotelField(p *HotelPatch, field string, raw any) error {
	switch field {
	case "name", "city", "room_type":
		s, err := stringValue("hotel_details."+field, raw)
		if err != nil {
			return err
		}
		switch field {
		case "name":
			p.Name = &s
		case "city":
			p.City = &s
		case "room_type":
			p.RoomType = &s
		}
	case "stars":
		n, err := intValue("hotel_details.stars", raw)
		if err != nil {
			return err
		}
		p.Stars = &n
	default:
		return apperr.Newf(apperr.KindValidation, "unknown hotel_details field %q", field)
	}
	return nil
}

func setAmenityField(p *AmenitiesPatch, field string, raw any) error {
	switch field {
	case "pool", "wifi", "car_rental":
		b, err := boolValue("hotel_details.amenities."+field, raw)
		if err != nil {
			return err
		}
		switch field {
		case "pool":
			p.Pool = &b
		case "wifi":
			p.Wifi = &b
		case "car_rental":
			p.CarRental = &b
		}
	case "car_rental_rate":
		f, err := floatValue("hotel_details.amenities.car_rental_rate", raw)
		if err != nil {
			return err
		}
		p.CarRentalRate = &f
	default:
		return apperr.Newf(apperr.KindValidation, "unknown amenity %q", field)
	}
	return nil
}

func parseItineraryMap(raw any) (*ItineraryPatch, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "itinerary_details must be an object")
	}
	p := &ItineraryPatch{}
	for k, v := range m {
		switch k {
		case "activities":
			acts, err := ParseActivities(v)
			if err != nil {
				return nil, err
			}
			p.Activities = &acts
		case "notes":
			s, err := stringValue("itinerary_details.notes", v)
			if err != nil {
				return nil, err
			}
			p.Notes = &s
		default:
			return nil, apperr.Newf(apperr.KindValidation, "unknown itinerary_details field %q", k)
		}
	}
	return p, nil
}

// ParseActivities accepts either a decoded activity list or a serialized JSON
// string holding one; legacy clients send the latter.
func ParseActivities(raw any) ([]domain.Activity, error) {
	if s, ok := raw.(string); ok {
		var acts []domain.Activity
		if err := json.Unmarshal([]byte(s), &acts); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "activities is not a valid JSON list", err)
		}
		return acts, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "activities must be a list")
	}
	acts := make([]domain.Activity, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, apperr.New(apperr.KindValidation, "each activity must be an object")
		}
		var a domain.Activity
		if v, ok := m["name"]; ok {
			s, err := stringValue("activity.name", v)
			if err != nil {
				return nil, err
			}
			a.Name = s
		}
		if v, ok := m["price"]; ok {
			f, err := floatValue("activity.price", v)
			if err != nil {
				return nil, err
			}
			a.Price = f
		}
		acts = append(acts, a)
	}
	return acts, nil
}

// value coercion: change maps arrive through encoding/json, so numbers are
// float64 and everything else is string/bool/map/slice.

func stringValue(key string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", apperr.Newf(apperr.KindValidation, "%s must be a string", key)
	}
	return s, nil
}

func boolValue(key string, raw any) (bool, error) {
	b, ok := raw.(bool)
	if !ok {
		return false, apperr.Newf(apperr.KindValidation, "%s must be a boolean", key)
	}
	return b, nil
}

func floatValue(key string, raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, apperr.Newf(apperr.KindValidation, "%s must be numeric", key)
		}
		return f, nil
	}
	return 0, apperr.Newf(apperr.KindValidation, "%s must be numeric", key)
}

func intValue(key string, raw any) (int, error) {
	f, err := floatValue(key, raw)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, apperr.Newf(apperr.KindValidation, "%s must be an integer", key)
	}
	return n, nil
}

func dateValue(key string, raw any) (*time.Time, error) {
	s, err := stringValue(key, raw)
	if err != nil {
		return nil, err
	}
	t, perr := time.Parse(dateLayout, s)
	if perr != nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be a date in the form %s", key, dateLayout)
	}
	return &t, nil
}

func parseDotKey(cs *ChangeSet, key string, raw any) error {
	const (
		flightPrefix  = "flight_details."
		hotelPrefix   = "hotel_details."
		amenityPrefix = "hotel_details.amenities."
	)
	switch {
	case len(key) > len(amenityPrefix) && key[:len(amenityPrefix)] == amenityPrefix:
		if cs.HotelDot == nil {
			cs.HotelDot = &HotelPatch{}
		}
		if cs.HotelDot.Amenities == nil {
			cs.HotelDot.Amenities = &AmenitiesPatch{}
		}
		return setAmenityField(cs.HotelDot.Amenities, key[len(amenityPrefix):], raw)
	case len(key) > len(hotelPrefix) && key[:len(hotelPrefix)] == hotelPrefix:
		if cs.HotelDot == nil {
			cs.HotelDot = &HotelPatch{}
		}
		return setHotelField(cs.HotelDot, key[len(hotelPrefix):], raw)
	case len(key) > len(flightPrefix) && key[:len(flightPrefix)] == flightPrefix:
		if cs.FlightDot == nil {
			cs.FlightDot = &FlightPatch{}
		}
		return setFlightField(cs.FlightDot, key[len(flightPrefix):], raw)
	}
	return apperr.Newf(apperr.KindValidation, "unknown change key %q", key)
}
