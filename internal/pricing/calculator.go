// Package pricing computes booking totals. The calculator is pure except for
// one injected package-catalog lookup, so it is testable without a database.
package pricing

import (
	"context"
	"time"

	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
)

// PackageResolver is the one external capability the calculator needs:
// resolving a catalog package to {id, name, price}.
type PackageResolver interface {
	GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error)
}

const (
	baseFlightFare   = 100.0
	flightLegFee     = 50.0
	hotelNightlyBase = 30.0
	poolSurcharge    = 20.0
	wifiSurcharge    = 10.0
)

func classMultiplier(c domain.CabinClass) float64 {
	switch c {
	case domain.CabinPremiumEconomy:
		return 1.25
	case domain.CabinBusiness:
		return 1.65
	case domain.CabinFirst:
		return 2.2
	default:
		return 1
	}
}

func starMultiplier(stars int) float64 {
	switch stars {
	case 4:
		return 1.5
	case 5:
		return 2
	default:
		return 1
	}
}

func insuranceSurcharge(t domain.InsuranceType) float64 {
	switch t {
	case domain.InsuranceBasic:
		return 30
	case domain.InsurancePremium:
		return 50
	case domain.InsuranceElite:
		return 75
	default:
		return 0
	}
}

// Input is one trip specification. EndDate may be nil for single-day
// bookings, which count as one night.
type Input struct {
	BookingType domain.BookingType
	Persons     int
	StartDate   time.Time
	EndDate     *time.Time
	Flight      *domain.FlightDetails
	Hotel       *domain.HotelDetails
	Itinerary   *domain.ItineraryDetails
	PackageID   *int64
	Insurance   domain.InsuranceType
}

func (in Input) nights() int {
	if in.EndDate == nil {
		return 1
	}
	return domain.NightsBetween(in.StartDate, *in.EndDate)
}

type Calculator struct {
	packages PackageResolver
}

func NewCalculator(packages PackageResolver) *Calculator {
	return &Calculator{packages: packages}
}

// Compute returns the total price for the trip and, for package-backed types,
// the resolved catalog package. A total that comes out non-positive is an
// error; callers must never persist it.
func (c *Calculator) Compute(ctx context.Context, in Input) (float64, *domain.TourPackage, error) {
	if in.Persons < 1 {
		return 0, nil, apperr.New(apperr.KindValidation, "persons must be at least 1")
	}

	var (
		total float64
		pkg   *domain.TourPackage
		err   error
	)
	switch in.BookingType {
	case domain.BookingTypeFlightHotel:
		total = c.flightHotelTotal(in)
	case domain.BookingTypePackage:
		total, pkg, err = c.packageTotal(ctx, in)
	case domain.BookingTypeItinerary:
		total, pkg, err = c.itineraryTotal(ctx, in)
	default:
		return 0, nil, apperr.Newf(apperr.KindValidation, "unknown booking type %q", in.BookingType)
	}
	if err != nil {
		return 0, nil, err
	}

	total += insuranceSurcharge(in.Insurance)
	if total <= 0 {
		return 0, nil, apperr.New(apperr.KindComputation, "computed price is not positive")
	}
	return total, pkg, nil
}

func (c *Calculator) flightHotelTotal(in Input) float64 {
	nights := float64(in.nights())
	persons := float64(in.Persons)

	var total float64
	if f := in.Flight; f != nil {
		total += (baseFlightFare + flightLegFee) * classMultiplier(f.Class) * persons
	}
	if h := in.Hotel; h != nil {
		total += hotelNightlyBase * nights * starMultiplier(h.Stars) * persons
		if h.Amenities.CarRental {
			total += h.Amenities.CarRentalRate * nights
		}
		if h.Amenities.Pool {
			total += poolSurcharge
		}
		if h.Amenities.Wifi {
			total += wifiSurcharge
		}
	}
	return total
}

func (c *Calculator) packageTotal(ctx context.Context, in Input) (float64, *domain.TourPackage, error) {
	pkg, err := c.resolvePackage(ctx, in.PackageID)
	if err != nil {
		return 0, nil, err
	}
	return pkg.Price * float64(in.Persons) * float64(in.nights()), pkg, nil
}

func (c *Calculator) itineraryTotal(ctx context.Context, in Input) (float64, *domain.TourPackage, error) {
	if in.Itinerary == nil || len(in.Itinerary.Activities) == 0 {
		return 0, nil, apperr.New(apperr.KindValidation, "itinerary bookings need at least one activity")
	}
	pkg, err := c.resolvePackage(ctx, in.PackageID)
	if err != nil {
		return 0, nil, err
	}
	total := pkg.Price * float64(in.Persons) * float64(in.nights())
	for _, a := range in.Itinerary.Activities {
		total += a.Price * float64(in.Persons)
	}
	return total, pkg, nil
}

func (c *Calculator) resolvePackage(ctx context.Context, id *int64) (*domain.TourPackage, error) {
	if id == nil {
		return nil, apperr.New(apperr.KindValidation, "package_id is required for this booking type")
	}
	pkg, err := c.packages.GetPackage(ctx, *id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "package %d not found", *id)
	}
	if pkg.Price <= 0 {
		return nil, apperr.Newf(apperr.KindComputation, "package %d has no usable price", *id)
	}
	return pkg, nil
}
