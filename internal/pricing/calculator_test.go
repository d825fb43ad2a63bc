package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPackageResolver struct {
	mock.Mock
}

func (m *MockPackageResolver) GetPackage(ctx context.Context, id int64) (*domain.TourPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TourPackage), args.Error(1)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func int64Ptr(v int64) *int64 { return &v }

func TestCalculator_PackageBooking(t *testing.T) {
	resolver := &MockPackageResolver{}
	calc := NewCalculator(resolver)
	ctx := context.Background()

	resolver.On("GetPackage", ctx, int64(7)).Return(&domain.TourPackage{ID: 7, Name: "Alps Week", Price: 100}, nil).Once()

	// catalog price 100 x 2 persons x 3 nights + basic insurance 30
	total, pkg, err := calc.Compute(ctx, Input{
		BookingType: domain.BookingTypePackage,
		Persons:     2,
		StartDate:   date("2025-01-01"),
		EndDate:     datePtr("2025-01-03"),
		PackageID:   int64Ptr(7),
		Insurance:   domain.InsuranceBasic,
	})

	assert.NoError(t, err)
	assert.Equal(t, 630.0, total)
	assert.Equal(t, "Alps Week", pkg.Name)
	resolver.AssertExpectations(t)
}

func TestCalculator_FlightHotelBooking(t *testing.T) {
	calc := NewCalculator(&MockPackageResolver{})
	ctx := context.Background()

	// (100+50)x1x1 + 30x2x1x1 + wifi 10 = 220
	total, pkg, err := calc.Compute(ctx, Input{
		BookingType: domain.BookingTypeFlightHotel,
		Persons:     1,
		StartDate:   date("2025-03-10"),
		EndDate:     datePtr("2025-03-11"),
		Flight:      &domain.FlightDetails{Airline: "AF", Class: domain.CabinEconomy},
		Hotel: &domain.HotelDetails{
			Stars:     3,
			Amenities: domain.Amenities{Wifi: true},
		},
		Insurance: domain.InsuranceNone,
	})

	assert.NoError(t, err)
	assert.Equal(t, 220.0, total)
	assert.Nil(t, pkg)
}

func TestCalculator_FlightHotelModifiers(t *testing.T) {
	calc := NewCalculator(&MockPackageResolver{})
	ctx := context.Background()

	testCases := []struct {
		name     string
		input    Input
		expected float64
	}{
		{
			name: "business class doubles nothing but applies 1.65",
			input: Input{
				BookingType: domain.BookingTypeFlightHotel,
				Persons:     1,
				StartDate:   date("2025-03-10"),
				Flight:      &domain.FlightDetails{Class: domain.CabinBusiness},
			},
			expected: 150 * 1.65,
		},
		{
			name: "five star hotel doubles the nightly rate",
			input: Input{
				BookingType: domain.BookingTypeFlightHotel,
				Persons:     2,
				StartDate:   date("2025-03-10"),
				EndDate:     datePtr("2025-03-11"),
				Hotel:       &domain.HotelDetails{Stars: 5},
			},
			expected: 30 * 2 * 2 * 2,
		},
		{
			name: "car rental is per night, pool and wifi are flat",
			input: Input{
				BookingType: domain.BookingTypeFlightHotel,
				Persons:     1,
				StartDate:   date("2025-03-10"),
				EndDate:     datePtr("2025-03-12"),
				Hotel: &domain.HotelDetails{
					Stars: 3,
					Amenities: domain.Amenities{
						Pool: true, Wifi: true,
						CarRental: true, CarRentalRate: 25,
					},
				},
			},
			expected: 30*3 + 25*3 + 20 + 10,
		},
		{
			name: "elite insurance adds 75 flat",
			input: Input{
				BookingType: domain.BookingTypeFlightHotel,
				Persons:     1,
				StartDate:   date("2025-03-10"),
				Flight:      &domain.FlightDetails{Class: domain.CabinEconomy},
				Insurance:   domain.InsuranceElite,
			},
			expected: 150 + 75,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			total, _, err := calc.Compute(ctx, tc.input)
			assert.NoError(t, err)
			assert.InDelta(t, tc.expected, total, 0.001)
		})
	}
}

func TestCalculator_MonotonicInPersonsAndNights(t *testing.T) {
	calc := NewCalculator(&MockPackageResolver{})
	ctx := context.Background()

	base := Input{
		BookingType: domain.BookingTypeFlightHotel,
		StartDate:   date("2025-03-10"),
		Flight:      &domain.FlightDetails{Class: domain.CabinPremiumEconomy},
		Hotel: &domain.HotelDetails{
			Stars:     4,
			Amenities: domain.Amenities{Pool: true, CarRental: true, CarRentalRate: 15},
		},
		Insurance: domain.InsurancePremium,
	}

	prev := 0.0
	for persons := 1; persons <= 6; persons++ {
		in := base
		in.Persons = persons
		in.EndDate = datePtr("2025-03-12")
		total, _, err := calc.Compute(ctx, in)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}

	prev = 0.0
	for nights := 0; nights <= 5; nights++ {
		in := base
		in.Persons = 2
		end := date("2025-03-10").AddDate(0, 0, nights)
		in.EndDate = &end
		total, _, err := calc.Compute(ctx, in)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}
}

func TestCalculator_ItineraryBooking(t *testing.T) {
	resolver := &MockPackageResolver{}
	calc := NewCalculator(resolver)
	ctx := context.Background()

	resolver.On("GetPackage", ctx, int64(3)).Return(&domain.TourPackage{ID: 3, Name: "City Base", Price: 80}, nil).Once()

	// 80x2x2 + (40+25)x2 + premium 50
	total, pkg, err := calc.Compute(ctx, Input{
		BookingType: domain.BookingTypeItinerary,
		Persons:     2,
		StartDate:   date("2025-06-01"),
		EndDate:     datePtr("2025-06-02"),
		PackageID:   int64Ptr(3),
		Itinerary: &domain.ItineraryDetails{
			Activities: domain.ActivityList{
				{Name: "museum", Price: 40},
				{Name: "boat tour", Price: 25},
			},
		},
		Insurance: domain.InsurancePremium,
	})

	assert.NoError(t, err)
	assert.Equal(t, 80.0*2*2+65*2+50, total)
	assert.Equal(t, "City Base", pkg.Name)
	resolver.AssertExpectations(t)
}

func TestCalculator_Errors(t *testing.T) {
	resolver := &MockPackageResolver{}
	calc := NewCalculator(resolver)
	ctx := context.Background()

	t.Run("unknown booking type", func(t *testing.T) {
		_, _, err := calc.Compute(ctx, Input{BookingType: "cruise", Persons: 1, StartDate: date("2025-01-01")})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("package without package_id", func(t *testing.T) {
		_, _, err := calc.Compute(ctx, Input{BookingType: domain.BookingTypePackage, Persons: 1, StartDate: date("2025-01-01")})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("unresolvable package", func(t *testing.T) {
		resolver.On("GetPackage", ctx, int64(99)).Return(nil, nil).Once()
		_, _, err := calc.Compute(ctx, Input{
			BookingType: domain.BookingTypePackage,
			Persons:     1,
			StartDate:   date("2025-01-01"),
			PackageID:   int64Ptr(99),
		})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("zero catalog price is a computation error", func(t *testing.T) {
		resolver.On("GetPackage", ctx, int64(5)).Return(&domain.TourPackage{ID: 5, Price: 0}, nil).Once()
		_, _, err := calc.Compute(ctx, Input{
			BookingType: domain.BookingTypePackage,
			Persons:     1,
			StartDate:   date("2025-01-01"),
			PackageID:   int64Ptr(5),
		})
		assert.True(t, apperr.Is(err, apperr.KindComputation))
	})

	t.Run("itinerary without activities", func(t *testing.T) {
		_, _, err := calc.Compute(ctx, Input{
			BookingType: domain.BookingTypeItinerary,
			Persons:     1,
			StartDate:   date("2025-01-01"),
			PackageID:   int64Ptr(3),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("zero persons", func(t *testing.T) {
		_, _, err := calc.Compute(ctx, Input{BookingType: domain.BookingTypeFlightHotel, Persons: 0, StartDate: date("2025-01-01")})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	resolver.AssertExpectations(t)
}

func TestCalculator_SingleDayBookingCountsOneNight(t *testing.T) {
	resolver := &MockPackageResolver{}
	calc := NewCalculator(resolver)
	ctx := context.Background()

	resolver.On("GetPackage", ctx, int64(7)).Return(&domain.TourPackage{ID: 7, Price: 100}, nil).Once()

	total, _, err := calc.Compute(ctx, Input{
		BookingType: domain.BookingTypePackage,
		Persons:     1,
		StartDate:   date("2025-01-01"),
		PackageID:   int64Ptr(7),
		Insurance:   domain.InsuranceNone,
	})

	assert.NoError(t, err)
	assert.Equal(t, 100.0, total)
	resolver.AssertExpectations(t)
}
