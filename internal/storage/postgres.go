package storage

import (
	"context"
	"errors"

	"github.com/tajious/parkify/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStorage is the gorm-backed Storage. Despite the name it runs on any gorm
// dialector; tests use sqlite.
type PostgresStorage struct {
	db *gorm.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return NewGormStorage(db)
}

// NewGormStorage migrates the schema on db and wraps it.
func NewGormStorage(db *gorm.DB) (*PostgresStorage, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Lessor{},
		&models.Admin{},
		&models.Complaint{},
		&models.ParkingLot{},
	); err != nil {
		return nil, err
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) DB() *gorm.DB {
	return s.db
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Users

func (s *PostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return translateUniqueViolation(s.db.WithContext(ctx).Create(user).Error)
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](ctx, s.db, ErrUserNotFound, "user_id = ?", id)
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, s.db, ErrUserNotFound, "email = ?", normalizeEmail(email))
}

func (s *PostgresStorage) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return first[models.User](ctx, s.db, ErrUserNotFound, "phone_number = ?", phone)
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"phone_number": user.PhoneNumber,
		})
	if res.Error != nil {
		return translateUniqueViolation(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Lessors

func (s *PostgresStorage) CreateLessor(ctx context.Context, lessor *models.Lessor) error {
	lessor.Email = normalizeEmail(lessor.Email)
	return translateUniqueViolation(s.db.WithContext(ctx).Create(lessor).Error)
}

func (s *PostgresStorage) GetLessorByID(ctx context.Context, id uint) (*models.Lessor, error) {
	return first[models.Lessor](ctx, s.db, ErrLessorNotFound, "lessor_id = ?", id)
}

func (s *PostgresStorage) GetLessorByEmail(ctx context.Context, email string) (*models.Lessor, error) {
	return first[models.Lessor](ctx, s.db, ErrLessorNotFound, "lessor_email = ?", normalizeEmail(email))
}

func (s *PostgresStorage) UpdateLessor(ctx context.Context, lessor *models.Lessor) error {
	lessor.Email = normalizeEmail(lessor.Email)
	res := s.db.WithContext(ctx).Model(&models.Lessor{}).
		Where("lessor_id = ?", lessor.ID).
		Updates(map[string]any{
			"lessor_firstname":    lessor.FirstName,
			"lessor_lastname":     lessor.LastName,
			"lessor_phone_number": lessor.PhoneNumber,
			"lessor_email":        lessor.Email,
			"lessor_password":     lessor.Password,
		})
	if res.Error != nil {
		return translateUniqueViolation(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLessorNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteLessor(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.ParkingLot{}).Where("lessor_id = ?", id).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return ErrLessorHasParkingLots
		}

		res := tx.Delete(&models.Lessor{}, "lessor_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLessorNotFound
		}
		return nil
	})
}

// Admins

func (s *PostgresStorage) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	admin.Email = normalizeEmail(admin.Email)
	return translateUniqueViolation(s.db.WithContext(ctx).Create(admin).Error)
}

func (s *PostgresStorage) GetAdminByID(ctx context.Context, id uint) (*models.Admin, error) {
	return first[models.Admin](ctx, s.db, ErrAdminNotFound, "admin_id = ?", id)
}

func (s *PostgresStorage) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return first[models.Admin](ctx, s.db, ErrAdminNotFound, "email = ?", normalizeEmail(email))
}

// Complaints

func (s *PostgresStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	return s.db.WithContext(ctx).Create(complaint).Error
}

// Parking lots

func (s *PostgresStorage) CreateParkingLot(ctx context.Context, lot *models.ParkingLot) error {
	return s.db.WithContext(ctx).Create(lot).Error
}

func (s *PostgresStorage) GetParkingLot(ctx context.Context, id uint) (*models.ParkingLot, error) {
	return first[models.ParkingLot](ctx, s.db, ErrParkingLotNotFound, "parking_lot_id = ?", id)
}

func (s *PostgresStorage) UpdateParkingLotImage(ctx context.Context, id uint, publicURL, bucket, objectPath string) error {
	res := s.db.WithContext(ctx).Model(&models.ParkingLot{}).
		Where("parking_lot_id = ?", id).
		Updates(map[string]any{
			"location_image":        publicURL,
			"location_image_bucket": bucket,
			"location_image_path":   objectPath,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrParkingLotNotFound
	}
	return nil
}

func first[T any](ctx context.Context, db *gorm.DB, notFound error, query string, args ...any) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}
