package repository

import (
	"context"
	"testing"

	"github.com/RigelNana/arktutor/pkg/database/dbtest"
	"github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func createUser(t *testing.T, repo UserRepository, role models.Role) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Role: role}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestCreateProfile_RequiresUser(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	assert.Error(t, repo.CreateStudentProfile(ctx, &models.StudentProfile{ID: uuid.New()}))
	assert.Error(t, repo.CreateTeacherProfile(ctx, &models.TeacherProfile{ID: uuid.New()}))
	assert.Equal(t, int64(0), count(t, db, &models.StudentProfile{}))
	assert.Equal(t, int64(0), count(t, db, &models.TeacherProfile{}))
}

func TestCreateStudentProfile_AssignedTeacherMustExist(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := createUser(t, repo, models.RoleStudent)
	ghost := uuid.New()
	assert.Error(t, repo.CreateStudentProfile(ctx, &models.StudentProfile{ID: student.ID, AssignedTeacherID: &ghost}))

	// a user row alone is not a teacher
	other := createUser(t, repo, models.RoleStudent)
	assert.Error(t, repo.CreateStudentProfile(ctx, &models.StudentProfile{ID: student.ID, AssignedTeacherID: &other.ID}))

	teacher := createUser(t, repo, models.RoleTeacher)
	require.NoError(t, repo.CreateTeacherProfile(ctx, &models.TeacherProfile{ID: teacher.ID}))
	require.NoError(t, repo.CreateStudentProfile(ctx, &models.StudentProfile{ID: student.ID, AssignedTeacherID: &teacher.ID}))

	got, err := repo.GetStudentProfile(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTeacherID)
	assert.Equal(t, teacher.ID, *got.AssignedTeacherID)
}

func TestDeleteUser_RemovesProfiles(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	teacher := createUser(t, repo, models.RoleTeacher)
	require.NoError(t, repo.CreateTeacherProfile(ctx, &models.TeacherProfile{ID: teacher.ID}))
	student := createUser(t, repo, models.RoleStudent)
	require.NoError(t, repo.CreateStudentProfile(ctx, &models.StudentProfile{ID: student.ID, AssignedTeacherID: &teacher.ID}))

	require.NoError(t, db.Delete(&models.User{}, "id = ?", teacher.ID).Error)
	assert.Equal(t, int64(0), count(t, db, &models.TeacherProfile{}))

	// the student stays, unassigned
	got, err := repo.GetStudentProfile(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTeacherID)
}
