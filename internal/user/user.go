package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor    Role = "medecin"
	RoleSecretary Role = "secretaire"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleSecretary, RoleAdmin:
		return true
	}
	return false
}

// User is a clinic staff account. A secretary carries the id of the doctor
// whose calendar they manage; all availability checks are scoped to a
// resolved doctor id, never to the acting user directly.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	DoctorID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
