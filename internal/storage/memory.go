package storage

import (
	"context"
	"sync"
	"time"

	"github.com/tajious/parkify/internal/models"
)

// InMemoryStorage enforces the same uniqueness rules as the database indexes.
// Records are copied in and out so callers never share memory with the store.
type InMemoryStorage struct {
	mu          sync.RWMutex
	nextID      uint
	users       map[uint]*models.User
	lessors     map[uint]*models.Lessor
	admins      map[uint]*models.Admin
	complaints  map[uint]*models.Complaint
	parkingLots map[uint]*models.ParkingLot
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		users:       make(map[uint]*models.User),
		lessors:     make(map[uint]*models.Lessor),
		admins:      make(map[uint]*models.Admin),
		complaints:  make(map[uint]*models.Complaint),
		parkingLots: make(map[uint]*models.ParkingLot),
	}
}

func (s *InMemoryStorage) id() uint {
	s.nextID++
	return s.nextID
}

func (s *InMemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Complaints returns a snapshot of stored complaints.
func (s *InMemoryStorage) Complaints() []models.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		out = append(out, *c)
	}
	return out
}

func (s *InMemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, u := range s.users {
		if u.PhoneNumber == user.PhoneNumber {
			return ErrPhoneExists
		}
		if u.Email == user.Email {
			return ErrEmailExists
		}
	}

	now := time.Now()
	user.ID = s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *InMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *InMemoryStorage) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.PhoneNumber == phone {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *InMemoryStorage) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.PhoneNumber == user.PhoneNumber {
			return ErrPhoneExists
		}
	}

	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PhoneNumber = user.PhoneNumber
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStorage) CreateLessor(ctx context.Context, lessor *models.Lessor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lessor.Email = normalizeEmail(lessor.Email)
	if err := s.lessorConflict(0, lessor); err != nil {
		return err
	}

	now := time.Now()
	lessor.ID = s.id()
	lessor.CreatedAt, lessor.UpdatedAt = now, now
	stored := *lessor
	s.lessors[lessor.ID] = &stored
	return nil
}

func (s *InMemoryStorage) lessorConflict(self uint, lessor *models.Lessor) error {
	for id, l := range s.lessors {
		if id == self {
			continue
		}
		if l.PhoneNumber == lessor.PhoneNumber {
			return ErrPhoneExists
		}
		if l.Email == lessor.Email {
			return ErrEmailExists
		}
	}
	return nil
}

func (s *InMemoryStorage) GetLessorByID(ctx context.Context, id uint) (*models.Lessor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessors[id]
	if !ok {
		return nil, ErrLessorNotFound
	}
	out := *l
	return &out, nil
}

func (s *InMemoryStorage) GetLessorByEmail(ctx context.Context, email string) (*models.Lessor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, l := range s.lessors {
		if l.Email == email {
			out := *l
			return &out, nil
		}
	}
	return nil, ErrLessorNotFound
}

func (s *InMemoryStorage) UpdateLessor(ctx context.Context, lessor *models.Lessor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.lessors[lessor.ID]
	if !ok {
		return ErrLessorNotFound
	}
	lessor.Email = normalizeEmail(lessor.Email)
	if err := s.lessorConflict(lessor.ID, lessor); err != nil {
		return err
	}

	stored.FirstName = lessor.FirstName
	stored.LastName = lessor.LastName
	stored.PhoneNumber = lessor.PhoneNumber
	stored.Email = lessor.Email
	stored.Password = lessor.Password
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStorage) DeleteLessor(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessors[id]; !ok {
		return ErrLessorNotFound
	}
	for _, lot := range s.parkingLots {
		if lot.LessorID == id {
			return ErrLessorHasParkingLots
		}
	}
	delete(s.lessors, id)
	return nil
}

func (s *InMemoryStorage) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin.Email = normalizeEmail(admin.Email)
	for _, a := range s.admins {
		if a.Email == admin.Email {
			return ErrEmailExists
		}
	}

	now := time.Now()
	admin.ID = s.id()
	admin.CreatedAt, admin.UpdatedAt = now, now
	stored := *admin
	s.admins[admin.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetAdminByID(ctx context.Context, id uint) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	out := *a
	return &out, nil
}

func (s *InMemoryStorage) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, a := range s.admins {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, ErrAdminNotFound
}

func (s *InMemoryStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[complaint.UserID]; !ok {
		return ErrUserNotFound
	}

	complaint.ID = s.id()
	complaint.CreatedAt = time.Now()
	stored := *complaint
	s.complaints[complaint.ID] = &stored
	return nil
}

func (s *InMemoryStorage) CreateParkingLot(ctx context.Context, lot *models.ParkingLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessors[lot.LessorID]; !ok {
		return ErrLessorNotFound
	}

	now := time.Now()
	lot.ID = s.id()
	lot.CreatedAt, lot.UpdatedAt = now, now
	stored := *lot
	s.parkingLots[lot.ID] = &stored
	return nil
}

func (s *InMemoryStorage) GetParkingLot(ctx context.Context, id uint) (*models.ParkingLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.parkingLots[id]
	if !ok {
		return nil, ErrParkingLotNotFound
	}
	out := *lot
	return &out, nil
}

func (s *InMemoryStorage) UpdateParkingLotImage(ctx context.Context, id uint, publicURL, bucket, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.parkingLots[id]
	if !ok {
		return ErrParkingLotNotFound
	}
	lot.LocationImage = publicURL
	lot.LocationImageBucket = bucket
	lot.LocationImagePath = objectPath
	lot.UpdatedAt = time.Now()
	return nil
}
