package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tajious/parkify/internal/config"
	"github.com/tajious/parkify/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrLessorNotFound       = errors.New("lessor not found")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrParkingLotNotFound   = errors.New("parking lot not found")
	ErrPhoneExists          = errors.New("phone number already exists")
	ErrEmailExists          = errors.New("email already exists")
	ErrConflict             = errors.New("record already exists")
	ErrLessorHasParkingLots = errors.New("lessor still owns parking lots")
)

type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	CreateLessor(ctx context.Context, lessor *models.Lessor) error
	GetLessorByID(ctx context.Context, id uint) (*models.Lessor, error)
	GetLessorByEmail(ctx context.Context, email string) (*models.Lessor, error)
	UpdateLessor(ctx context.Context, lessor *models.Lessor) error
	DeleteLessor(ctx context.Context, id uint) error

	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByID(ctx context.Context, id uint) (*models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error

	CreateParkingLot(ctx context.Context, lot *models.ParkingLot) error
	GetParkingLot(ctx context.Context, id uint) (*models.ParkingLot, error)
	UpdateParkingLotImage(ctx context.Context, id uint, publicURL, bucket, objectPath string) error

	Ping(ctx context.Context) error
}

func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// normalizeEmail is applied on every write and lookup so that address case never splits an account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// translateUniqueViolation turns a unique-index failure into ErrPhoneExists or ErrEmailExists.
// Other errors pass through unchanged.
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	column, ok := uniqueColumn(err)
	if !ok {
		return err
	}

	// Only the column or index name is inspected. The offending value is user input.
	column = strings.ToLower(column)
	switch {
	case strings.Contains(column, "phone"):
		return ErrPhoneExists
	case strings.Contains(column, "email"):
		return ErrEmailExists
	default:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
}

// uniqueColumn names the column or index behind a unique violation.
func uniqueColumn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return "", false
		}
		if pgErr.ConstraintName != "" {
			return pgErr.ConstraintName, true
		}
		return detailKey(pgErr.Detail), true
	}

	// sqlite: "UNIQUE constraint failed: user_info.email"
	const sqliteUnique = "UNIQUE constraint failed:"
	msg := err.Error()
	if i := strings.Index(msg, sqliteUnique); i >= 0 {
		return strings.TrimSpace(msg[i+len(sqliteUnique):]), true
	}
	return "", false
}

// detailKey extracts "email" from a detail such as "Key (email)=(a@b.c) already exists.".
func detailKey(detail string) string {
	rest, ok := strings.CutPrefix(detail, "Key (")
	if !ok {
		return ""
	}
	if i := strings.Index(rest, ")=("); i >= 0 {
		return rest[:i]
	}
	return ""
}
