package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Principal is a resolved account: a *Student or a *Teacher. The set is
// closed; switch on the concrete type and treat any other value as a bug.
type Principal interface {
	Account() *User
	principal()
}

type Student struct {
	User    User
	Profile StudentProfile
}

func (s *Student) Account() *User { return &s.User }
func (*Student) principal() {}

type Teacher struct {
	User    User
	Profile TeacherProfile
}

func (t *Teacher) Account() *User { return &t.User }
func (*Teacher) principal() {}

// PrincipalView is the JSON shape of a principal.
type PrincipalView struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	UserType          Role       `json:"user_type"`
	AssignedTeacherID *uuid.UUID `json:"assigned_teacher_id,omitempty"`
}

func View(p Principal) PrincipalView {
	switch p := p.(type) {
	case *Student:
		return PrincipalView{
			ID:                p.User.ID,
			FirstName:         p.User.FirstName,
			LastName:          p.User.LastName,
			UserType:          RoleStudent,
			AssignedTeacherID: p.Profile.AssignedTeacherID,
		}
	case *Teacher:
		return PrincipalView{
			ID:        p.User.ID,
			FirstName: p.User.FirstName,
			LastName:  p.User.LastName,
			UserType:  RoleTeacher,
		}
	default:
		panic(fmt.Sprintf("models: unexpected principal %T", p))
	}
}

// All lists the tables owned by user-service.
func All() []any {
	return []any{&User{}, &TeacherProfile{}, &StudentProfile{}}
}
