package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

func updateRequest(l *models.Lessor) models.UpdateLessorRequest {
	return models.UpdateLessorRequest{
		FirstName:   l.FirstName,
		LastName:    "Renamed",
		PhoneNumber: l.PhoneNumber,
		Email:       l.Email,
	}
}

func TestLessorService_UpdateWithoutPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	l := f.seedLessor(t, "lee@example.com", "oldpass")

	got, err := svc.Update(ctx, l.ID, updateRequest(l), "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.LastName)
	assert.NoError(t, auth.ComparePassword(got.Password, "oldpass"))
}

func TestLessorService_PasswordChangeNeedsGrant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	l := f.seedLessor(t, "lee@example.com", "oldpass")
	other := f.seedLessor(t, "other@example.com", "otherpass")

	req := updateRequest(l)
	req.Password = "newpass1"

	_, err := svc.Update(ctx, l.ID, req, "")
	assert.ErrorIs(t, err, ErrPasswordNotVerified)

	session, err := f.tokens.IssueSession(models.RoleLessor, l.ID, l.Email)
	require.NoError(t, err)
	_, err = svc.Update(ctx, l.ID, req, session)
	assert.ErrorIs(t, err, ErrPasswordNotVerified)

	foreign, err := svc.VerifyPassword(ctx, other.ID, "otherpass", "1.1.1.1")
	require.NoError(t, err)
	_, err = svc.Update(ctx, l.ID, req, foreign)
	assert.ErrorIs(t, err, ErrPasswordNotVerified)

	grant, err := svc.VerifyPassword(ctx, l.ID, "oldpass", "1.1.1.1")
	require.NoError(t, err)
	got, err := svc.Update(ctx, l.ID, req, grant)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(got.Password, "newpass1"))
}

func TestLessorService_PasswordGrantIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	l := f.seedLessor(t, "lee@example.com", "oldpass")

	grant, err := svc.VerifyPassword(ctx, l.ID, "oldpass", "1.1.1.1")
	require.NoError(t, err)

	req := updateRequest(l)
	req.Password = "newpass1"
	_, err = svc.Update(ctx, l.ID, req, grant)
	require.NoError(t, err)

	req.Password = "hijacked"
	_, err = svc.Update(ctx, l.ID, req, grant)
	assert.ErrorIs(t, err, ErrPasswordNotVerified)

	got, err := f.store.GetLessorByID(ctx, l.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(got.Password, "newpass1"))
}

func TestLessorService_FailedUpdateKeepsGrant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	l := f.seedLessor(t, "lee@example.com", "oldpass")
	other := f.seedLessor(t, "other@example.com", "otherpass")

	grant, err := svc.VerifyPassword(ctx, l.ID, "oldpass", "1.1.1.1")
	require.NoError(t, err)

	req := updateRequest(l)
	req.Password = "newpass1"
	req.Email = other.Email
	_, err = svc.Update(ctx, l.ID, req, grant)
	assert.ErrorIs(t, err, storage.ErrEmailExists)

	req.Email = l.Email
	got, err := svc.Update(ctx, l.ID, req, grant)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(got.Password, "newpass1"))
}

func TestLessorService_VerifyPasswordLockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	l := f.seedLessor(t, "lee@example.com", "oldpass")

	for _, want := range []int{2, 1} {
		_, err := svc.VerifyPassword(ctx, l.ID, "bad", "1.1.1.1")
		var failure *LoginFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, want, failure.AttemptsRemaining)
	}
	_, err := svc.VerifyPassword(ctx, l.ID, "bad", "1.1.1.1")
	assert.ErrorIs(t, err, lockout.ErrLocked)

	_, err = svc.VerifyPassword(ctx, l.ID, "oldpass", "1.1.1.1")
	assert.ErrorIs(t, err, lockout.ErrLocked)

	// the login scope is untouched by verify failures
	_, err = f.authService().LoginLessor(ctx, "lee@example.com", "oldpass", "1.1.1.1")
	assert.NoError(t, err)
}

func TestLessorService_UpdateConflictsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.lessorService()
	a := f.seedLessor(t, "a@example.com", "pw")
	b := f.seedLessor(t, "b@example.com", "pw")

	req := updateRequest(b)
	req.Email = "A@example.com"
	_, err := svc.Update(ctx, b.ID, req, "")
	assert.ErrorIs(t, err, storage.ErrEmailExists)

	_, err = svc.Update(ctx, 999, req, "")
	assert.ErrorIs(t, err, storage.ErrLessorNotFound)

	require.NoError(t, f.store.CreateParkingLot(ctx, &models.ParkingLot{LessorID: a.ID, Name: "North"}))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), storage.ErrLessorHasParkingLots)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, storage.ErrLessorNotFound)
}
