package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kit-rental/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var created = time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC)

func sampleBooking() model.Booking {
	return model.Booking{
		ID:         "WK-7Q2M9X",
		UserEmail:  "asha@example.com",
		Kit:        model.Kit{ID: "camp-starter", Name: "Camp Starter", PricePerNight: model.Rupees(1500)},
		AddOns:     model.AddOnSelection{"lantern": 1},
		StartDate:  time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		Nights:     3,
		TotalPrice: model.Rupees(4800),
		Delivery:   model.DeliveryDetails{FullName: "Asha Rao", Phone: "9876543210", Method: model.DeliveryPickup},
		Status:     model.StatusConfirmed,
		CreatedAt:  created,
	}
}

var columns = []string{"id", "user_email", "kit_id", "kit_json", "add_ons_json", "start_date", "nights",
	"total_price_paise", "delivery_json", "whatsapp_updates", "status", "created_at"}

func bookingRow(rows *sqlmock.Rows, id, email string, at time.Time) *sqlmock.Rows {
	return rows.AddRow(id, email, "camp-starter",
		[]byte(`{"id":"camp-starter","name":"Camp Starter","price_per_night":150000}`),
		[]byte(`{"lantern":1}`),
		time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), 3, int64(480000),
		[]byte(`{"full_name":"Asha Rao","phone":"9876543210","delivery_method":"pickup"}`),
		false, "CONFIRMED", at)
}

func TestBookingRepoInsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := sampleBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserEmail, "camp-starter", sqlmock.AnyArg(), sqlmock.AnyArg(), "2030-05-01", 3,
			int64(480000), sqlmock.AnyArg(), false, "CONFIRMED", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), b))
}

func TestBookingRepoInsertDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'WK-7Q2M9X' for key 'PRIMARY'"})

	err := repo.Insert(context.Background(), sampleBooking())
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestBookingRepoGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\?").
		WithArgs("WK-7Q2M9X").
		WillReturnRows(bookingRow(sqlmock.NewRows(columns), "WK-7Q2M9X", "asha@example.com", created))

	got, err := repo.Get(context.Background(), "WK-7Q2M9X")
	require.NoError(t, err)
	assert.Equal(t, sampleBooking(), got)
}

func TestBookingRepoGetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\?").
		WithArgs("WK-NONE00").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), "WK-NONE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepoListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	rows := sqlmock.NewRows(columns)
	bookingRow(rows, "WK-BBBBBB", "asha@example.com", created.Add(time.Hour))
	bookingRow(rows, "WK-AAAAAA", "asha@example.com", created)
	mock.ExpectQuery("FROM bookings WHERE user_email = \\? ORDER BY created_at DESC").
		WithArgs("asha@example.com").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), " Asha@Example.COM")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "WK-BBBBBB", list[0].ID)
	assert.Equal(t, "WK-AAAAAA", list[1].ID)
}

func TestBookingRepoListAllEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("FROM bookings ORDER BY created_at DESC").WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBookingRepoUpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE bookings SET status = \\? WHERE id = \\?").
		WithArgs("DISPATCHED", "WK-7Q2M9X").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, "WK-7Q2M9X", model.StatusDispatched))

	// unchanged value: zero rows but the booking exists
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("DISPATCHED", "WK-7Q2M9X").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM bookings WHERE id = \\?").
		WithArgs("WK-7Q2M9X").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	require.NoError(t, repo.UpdateStatus(ctx, "WK-7Q2M9X", model.StatusDispatched))

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("CANCELLED", "WK-NONE00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM bookings WHERE id = \\?").
		WithArgs("WK-NONE00").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "WK-NONE00", model.StatusCancelled), ErrNotFound)
}

var userColumns = []string{"email", "full_name", "phone", "address", "password_hash", "is_admin", "loyalty_points", "created_at"}

func TestUserRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	u := model.User{Email: " Asha@Example.com ", FullName: "Asha Rao", PasswordHash: "hash", LoyaltyPoints: 50, CreatedAt: created}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("asha@example.com", "Asha Rao", "", "", "hash", false, 50, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), u))

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.ErrorIs(t, repo.Create(context.Background(), u), ErrEmailExists)
}

func TestUserRepoGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("admin@w3.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("admin@w3.com", "Admin", "", "", "hash", true, 1000, created))
	u, err := repo.GetByEmail(context.Background(), "ADMIN@w3.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, 1000, u.LoyaltyPoints)

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoAdjustLoyaltyPoints(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET loyalty_points = GREATEST").
		WithArgs(-50, "asha@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT loyalty_points FROM users").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"loyalty_points"}).AddRow(0))

	points, err := repo.AdjustLoyaltyPoints(context.Background(), "asha@example.com", -50)
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}

func TestUserRepoAdjustLoyaltyPointsUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET loyalty_points").
		WithArgs(10, "ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.AdjustLoyaltyPoints(context.Background(), "ghost@example.com", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
