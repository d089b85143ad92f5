package patients

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at, updated_at")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}).
			AddRow(5, "Jane Doe", "jane@example.com", "", now, now))

	repo := NewRepository(db)
	patient, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), patient.ID)
	assert.Equal(t, "Jane Doe", patient.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}))

	repo := NewRepository(db)
	_, err = repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestRepositoryExists(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewRepository(db)
	assert.NoError(t, repo.Exists(context.Background(), 5))
	assert.ErrorIs(t, repo.Exists(context.Background(), 404), ErrPatientNotFound)
}

func TestRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO patients")).
		WithArgs("Jane Doe", "jane@example.com", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	repo := NewRepository(db)
	patient, err := repo.Create(context.Background(), &CreatePatientRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), patient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewRepository(db)
	_, err = repo.Create(context.Background(), &CreatePatientRequest{Email: "jane@example.com"})
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = repo.Create(context.Background(), &CreatePatientRequest{Name: "Jane Doe"})
	assert.ErrorIs(t, err, ErrMissingContact)
}

func TestRepositoryGetByIDWrapsErrors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WithArgs(int64(5)).WillReturnError(boom)

	repo := NewRepository(db)
	_, err = repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "patients: load:"), err.Error())
}
