package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	StageChanges(ctx context.Context, id string, changes map[string]any) (bool, error)
	UpdateUnderLock(ctx context.Context, id string, apply func(b *domain.Booking) (bool, error)) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, booking_type, package_id, package_name, flight_details, hotel_details, itinerary_details, start_date, end_date, persons, total_price, status, insurance_type, pending_changes, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	flight, hotel, itinerary, pending, err := marshalJSONFields(b)
	if err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `INSERT INTO bookings (id, user_id, booking_type, package_id, package_name, flight_details, hotel_details, itinerary_details, start_date, end_date, persons, total_price, status, insurance_type, pending_changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.BookingType, b.PackageID, b.PackageName, flight, hotel, itinerary,
		b.StartDate, b.EndDate, b.Persons, b.TotalPrice, b.Status, b.InsuranceType, pending)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to create booking", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list bookings", err)
	}
	return bookings, nil
}

// StageChanges merges a change map into pending_changes with a single
// conditional update. The jsonb || operator gives the shallow top-level merge
// repeated edits accumulate through, and the status guard makes the write a
// no-op on canceled rows without taking a lock. Returns false when no row
// qualified.
func (r *PGBookingRepository) StageChanges(ctx context.Context, id string, changes map[string]any) (bool, error) {
	payload, err := json.Marshal(changes)
	if err != nil {
		return false, apperr.Wrap(apperr.KindValidation, "changes are not serializable", err)
	}
	cmd, err := r.db.Exec(ctx, `UPDATE bookings
		SET pending_changes = COALESCE(pending_changes, '{}'::jsonb) || $2::jsonb,
		    status = $3,
		    updated_at = now()
		WHERE id = $1 AND status <> $4`,
		id, payload, domain.BookingStatusPending, domain.BookingStatusCanceled)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "failed to stage changes", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// UpdateUnderLock runs one read-modify-write cycle in a single transaction:
// SELECT ... FOR UPDATE, apply, targeted UPDATE, commit. apply mutates the row
// in place and reports whether anything needs persisting; returning an error
// rolls the whole transaction back so partial writes are never observable.
func (r *PGBookingRepository) UpdateUnderLock(ctx context.Context, id string, apply func(b *domain.Booking) (bool, error)) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to open transaction", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, err
	}

	persist, err := apply(b)
	if err != nil {
		return nil, err
	}
	if !persist {
		// nothing to write; the open transaction only held the read lock
		return b, nil
	}

	flight, hotel, itinerary, pending, err := marshalJSONFields(b)
	if err != nil {
		return nil, err
	}
	row = tx.QueryRow(ctx, `UPDATE bookings
		SET package_id=$2, package_name=$3, flight_details=$4, hotel_details=$5, itinerary_details=$6,
		    start_date=$7, end_date=$8, persons=$9, total_price=$10, status=$11, insurance_type=$12,
		    pending_changes=$13, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		b.ID, b.PackageID, b.PackageName, flight, hotel, itinerary,
		b.StartDate, b.EndDate, b.Persons, b.TotalPrice, b.Status, b.InsuranceType, pending)
	if err := row.Scan(&b.UpdatedAt); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to persist booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to commit booking update", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                                 domain.Booking
		flight, hotel, itinerary, pending []byte
	)
	err := row.Scan(&b.ID, &b.UserID, &b.BookingType, &b.PackageID, &b.PackageName,
		&flight, &hotel, &itinerary, &b.StartDate, &b.EndDate, &b.Persons, &b.TotalPrice,
		&b.Status, &b.InsuranceType, &pending, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "booking not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to read booking", err)
	}
	if err := unmarshalInto(flight, &b.FlightDetails); err != nil {
		return nil, err
	}
	if err := unmarshalInto(hotel, &b.HotelDetails); err != nil {
		return nil, err
	}
	if err := unmarshalInto(itinerary, &b.ItineraryDetails); err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		if err := json.Unmarshal(pending, &b.PendingChanges); err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "corrupt pending_changes column", err)
		}
	}
	return &b, nil
}

func unmarshalInto[T any](data []byte, dst **T) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "corrupt details column", err)
	}
	*dst = v
	return nil
}

func marshalJSONFields(b *domain.Booking) (flight, hotel, itinerary, pending []byte, err error) {
	marshal := func(v any) []byte {
		if err != nil {
			return nil
		}
		var data []byte
		data, err = json.Marshal(v)
		return data
	}
	if b.FlightDetails != nil {
		flight = marshal(b.FlightDetails)
	}
	if b.HotelDetails != nil {
		hotel = marshal(b.HotelDetails)
	}
	if b.ItineraryDetails != nil {
		itinerary = marshal(b.ItineraryDetails)
	}
	if len(b.PendingChanges) > 0 {
		pending = marshal(b.PendingChanges)
	}
	if err != nil {
		err = apperr.Wrap(apperr.KindPersistence, "failed to encode details", err)
	}
	return flight, hotel, itinerary, pending, err
}

// IsLockTimeout reports whether err is a lock-wait or serialization failure,
// which callers surface as "try again" rather than a hard failure.
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// 55P03 lock_not_available, 40001 serialization_failure, 40P01 deadlock_detected
	return pgErr.Code == "55P03" || pgErr.Code == "40001" || pgErr.Code == "40P01"
}

var _ BookingRepository = (*PGBookingRepository)(nil)
