package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users map[uuid.UUID]*User
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) List(_ context.Context, limit, offset int) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func TestResolveDoctorID(t *testing.T) {
	doctorID := uuid.New()
	doctor := &User{ID: doctorID, Name: "Dr. Bernard", Role: RoleDoctor}

	secretaryID := uuid.New()
	secretary := &User{ID: secretaryID, Name: "Sophie Martin", Role: RoleSecretary, DoctorID: &doctorID}

	orphanID := uuid.New()
	orphan := &User{ID: orphanID, Name: "Paul Leroy", Role: RoleSecretary}

	adminID := uuid.New()
	admin := &User{ID: adminID, Name: "Admin", Role: RoleAdmin}

	svc := NewService(&fakeRepo{users: map[uuid.UUID]*User{
		doctorID:    doctor,
		secretaryID: secretary,
		orphanID:    orphan,
		adminID:     admin,
	}})

	t.Run("doctor resolves to their own id", func(t *testing.T) {
		got, err := svc.ResolveDoctorID(context.Background(), doctorID)
		require.NoError(t, err)
		assert.Equal(t, doctorID, got)
	})

	t.Run("secretary resolves to the associated doctor", func(t *testing.T) {
		got, err := svc.ResolveDoctorID(context.Background(), secretaryID)
		require.NoError(t, err)
		assert.Equal(t, doctorID, got)
	})

	t.Run("secretary without a doctor", func(t *testing.T) {
		_, err := svc.ResolveDoctorID(context.Background(), orphanID)
		assert.ErrorIs(t, err, ErrNoAssociatedDoctor)
	})

	t.Run("admin has no calendar", func(t *testing.T) {
		_, err := svc.ResolveDoctorID(context.Background(), adminID)
		assert.ErrorIs(t, err, ErrNoAssociatedDoctor)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.ResolveDoctorID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleDoctor.Valid())
	assert.True(t, RoleSecretary.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("patient").Valid())
}
