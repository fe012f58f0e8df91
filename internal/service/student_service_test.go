package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/attendease/attendease-api/internal/models"
	appErrors "github.com/attendease/attendease-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]*models.Student
	nextID     int
	deletedIDs []string
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*models.Student)}
}

func (m *mockStudentRepo) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, classID, email string) (bool, error) {
	for _, s := range m.students {
		if s.ClassID == classID && s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.nextID++
	student.ID = fmt.Sprintf("s-%d", m.nextID)
	stored := *student
	m.students[student.ID] = &stored
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func newStudentFixture() (*StudentService, *mockStudentRepo, *mockCacheInvalidator) {
	repo := newMockStudentRepo()
	classes := &mockClassOwnershipRepo{classes: map[string]*models.Class{
		"c1": {ID: "c1", Name: "Math", TeacherID: "t1"},
		"c2": {ID: "c2", Name: "Art", TeacherID: "t2"},
	}}
	cache := &mockCacheInvalidator{}
	svc := NewStudentService(repo, classes, cache, validator.New(), zap.NewNop())
	return svc, repo, cache
}

func TestStudentServiceAdd(t *testing.T) {
	svc, repo, cache := newStudentFixture()

	student, err := svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice Chen", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "c1", student.ClassID)
	assert.Len(t, repo.students, 1)
	assert.NotEmpty(t, cache.patterns)
}

func TestStudentServiceAddRejectsDuplicateEmail(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	_, err := svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice Again", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceAddRejectsInvalidEmail(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice", Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAddForbiddenForOtherTeacher(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Add(context.Background(), "t1", "c2", AddStudentRequest{Name: "Alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRemove(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), "t1", student.ID))
	assert.Empty(t, repo.students)
}

func TestStudentServiceRemoveForbiddenForOtherTeacher(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Add(context.Background(), "t1", "c1", AddStudentRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	err = svc.Remove(context.Background(), "t2", student.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceRemoveMissing(t *testing.T) {
	svc, _, _ := newStudentFixture()

	err := svc.Remove(context.Background(), "t1", "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
