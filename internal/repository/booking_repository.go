package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/kit-rental/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key clash.
const mysqlDuplicateEntry = 1062

// BookingRepo provides storage for bookings in the bookings table.  The
// kit, add-on selection and delivery details are frozen at booking time
// and kept as JSON columns; everything that is filtered or sorted on has
// its own column.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_email, kit_id, kit_json, add_ons_json, start_date, nights,
    total_price_paise, delivery_json, whatsapp_updates, status, created_at`

// Insert stores a new booking.  A clash on the primary key is reported as
// ErrDuplicateID so the caller can retry with a fresh identifier.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking) error {
	kitJSON, err := json.Marshal(b.Kit)
	if err != nil {
		return err
	}
	addOnsJSON, err := json.Marshal(b.AddOns)
	if err != nil {
		return err
	}
	deliveryJSON, err := json.Marshal(b.Delivery)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		b.ID, b.UserEmail, b.Kit.ID, kitJSON, addOnsJSON, b.StartDate.Format("2006-01-02"), b.Nights,
		int64(b.TotalPrice), deliveryJSON, b.WhatsAppUpdates, string(b.Status), b.CreatedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Get returns a single booking by ID or ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id string) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// ListByUser returns the bookings owned by email, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, email string) ([]model.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_email = ? ORDER BY created_at DESC, id DESC`, email)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// UpdateStatus sets the status in a single statement.  MySQL reports zero
// affected rows when the value is unchanged, so a miss is confirmed with
// an existence check before returning ErrNotFound.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b                                 model.Booking
		kitID, status                     string
		kitJSON, addOnsJSON, deliveryJSON []byte
		total                             int64
		start                             time.Time
	)
	err := s.Scan(&b.ID, &b.UserEmail, &kitID, &kitJSON, &addOnsJSON, &start, &b.Nights,
		&total, &deliveryJSON, &b.WhatsAppUpdates, &status, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if err := json.Unmarshal(kitJSON, &b.Kit); err != nil {
		return model.Booking{}, fmt.Errorf("booking %s: decode kit: %w", b.ID, err)
	}
	if len(addOnsJSON) > 0 {
		if err := json.Unmarshal(addOnsJSON, &b.AddOns); err != nil {
			return model.Booking{}, fmt.Errorf("booking %s: decode add-ons: %w", b.ID, err)
		}
	}
	if err := json.Unmarshal(deliveryJSON, &b.Delivery); err != nil {
		return model.Booking{}, fmt.Errorf("booking %s: decode delivery: %w", b.ID, err)
	}
	if b.Kit.ID == "" {
		b.Kit.ID = kitID
	}
	b.StartDate = start
	b.TotalPrice = model.Money(total)
	b.Status = model.BookingStatus(status)
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "1062")
}
