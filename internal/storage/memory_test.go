package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajious/parkify/internal/models"
)

func TestInMemoryStorage_ConcurrentPhoneRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStorage()

	const racers = 20
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser("0811111111", string(rune('a'+i))+"@example.com")
			errs <- s.CreateUser(ctx, u)
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch err {
		case nil:
			ok++
		case ErrPhoneExists:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, racers-1, dup)
}

func TestInMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStorage()

	u := newUser("0811111111", "a@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	got.FirstName = "mutated"

	again, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.FirstName)
}

func TestInMemoryStorage_ComplaintRequiresUser(t *testing.T) {
	s := NewInMemoryStorage()
	err := s.CreateComplaint(context.Background(), &models.Complaint{UserID: 7, Complain: "c", Detail: "d"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, s.Complaints())
}

func TestInMemoryStorage_LessorLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStorage()

	a := &models.Lessor{PhoneNumber: "1", Email: "a@example.com"}
	b := &models.Lessor{PhoneNumber: "2", Email: "b@example.com"}
	require.NoError(t, s.CreateLessor(ctx, a))
	require.NoError(t, s.CreateLessor(ctx, b))

	b.Email = "A@example.com"
	assert.ErrorIs(t, s.UpdateLessor(ctx, b), ErrEmailExists)

	require.NoError(t, s.CreateParkingLot(ctx, &models.ParkingLot{LessorID: a.ID}))
	assert.ErrorIs(t, s.DeleteLessor(ctx, a.ID), ErrLessorHasParkingLots)
	require.NoError(t, s.DeleteLessor(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteLessor(ctx, b.ID), ErrLessorNotFound)
}
