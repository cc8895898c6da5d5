package service

import (
	"testing"
	"time"

	"github.com/RigelNana/arktutor/pkg/database/dbtest"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
	userrepo "github.com/RigelNana/arktutor/services/user-service/repository"
	userservice "github.com/RigelNana/arktutor/services/user-service/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var day0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newUserService(db *gorm.DB) userservice.UserService {
	return userservice.NewUserService(userrepo.NewUserRepository(db), dbtest.QuietLogger())
}

func seedTeacher(t *testing.T, db *gorm.DB, first string) *usermodels.Teacher {
	t.Helper()
	u := usermodels.User{FirstName: first, LastName: "Teacher", Role: usermodels.RoleTeacher}
	require.NoError(t, db.Create(&u).Error)
	p := usermodels.TeacherProfile{ID: u.ID}
	require.NoError(t, db.Create(&p).Error)
	return &usermodels.Teacher{User: u, Profile: p}
}

func seedStudent(t *testing.T, db *gorm.DB, first, last string, teacherID *uuid.UUID) *usermodels.Student {
	t.Helper()
	u := usermodels.User{FirstName: first, LastName: last, Role: usermodels.RoleStudent}
	require.NoError(t, db.Create(&u).Error)
	p := usermodels.StudentProfile{ID: u.ID, AssignedTeacherID: teacherID}
	require.NoError(t, db.Create(&p).Error)
	return &usermodels.Student{User: u, Profile: p}
}

func ptr[T any](v T) *T { return &v }
