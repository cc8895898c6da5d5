package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RigelNana/arktutor/pkg/config"
	"github.com/RigelNana/arktutor/pkg/database/dbtest"
	"github.com/RigelNana/arktutor/pkg/events"
	"github.com/RigelNana/arktutor/services/auth-service/utils"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type echoChat struct{}

func (echoChat) Relay(_ context.Context, s *usermodels.Student, prompt string) (string, error) {
	return s.User.FirstName + " asked: " + prompt, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:  config.AuthConfig{Secret: testSecret, Algorithm: "HS256", ExpireMinutes: 60, Issuer: "arktutor"},
		Crypt: config.CryptConfig{Scheme: "pbkdf2_sha256", PBKDF2Rounds: 1000},
	}
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := buildApp(testConfig(), dbtest.QuietLogger(), dbtest.New(t), events.Nop{}, echoChat{})
	require.NoError(t, err)
	return a.engine
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func register(t *testing.T, r http.Handler, body map[string]any) usermodels.PrincipalView {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/users", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[usermodels.PrincipalView](t, w)
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/authenticate", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["access_token"].(string)
}

func TestRegisterAuthenticateAndAccess(t *testing.T) {
	r := newTestEngine(t)

	tom := register(t, r, map[string]any{
		"first_name": "Tom", "last_name": "Baker", "username": "tom", "password": "teacherPass99", "user_type": "teacher",
	})
	assert.Equal(t, usermodels.RoleTeacher, tom.UserType)

	alice := register(t, r, map[string]any{
		"first_name": "Alice", "last_name": "Smith", "username": "alice", "password": "securePassword123",
		"user_type": "student", "assigned_teacher_id": tom.ID,
	})
	assert.Equal(t, usermodels.RoleStudent, alice.UserType)
	require.NotNil(t, alice.AssignedTeacherID)
	assert.Equal(t, tom.ID, *alice.AssignedTeacherID)

	w := do(t, r, http.MethodPost, "/api/v1/authenticate", "", map[string]string{"username": "alice", "password": "securePassword123"})
	require.Equal(t, http.StatusOK, w.Code)
	auth := decode[map[string]any](t, w)
	assert.Equal(t, "bearer", auth["token_type"])
	assert.Equal(t, "student", auth["user_type"])
	assert.Equal(t, alice.ID.String(), auth["user_id"])
	aliceToken := auth["access_token"].(string)
	tomToken := login(t, r, "tom", "teacherPass99")

	w = do(t, r, http.MethodGet, "/api/v1/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[usermodels.PrincipalView](t, w).FirstName)

	// student routes
	w = do(t, r, http.MethodPost, "/api/v1/sessions", aliceToken, map[string]any{
		"student_id": alice.ID, "date": "2025-03-01", "length_minutes": 45, "reactions_total": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/sessions", aliceToken, map[string]any{"student_id": uuid.New(), "length_minutes": 10})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/chat", aliceToken, map[string]string{"prompt": "What is photosynthesis?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice asked: What is photosynthesis?", decode[map[string]string](t, w)["response"])

	w = do(t, r, http.MethodGet, "/api/v1/sessions", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only teachers can access this endpoint", decode[map[string]string](t, w)["error"])

	// teacher routes
	w = do(t, r, http.MethodGet, "/api/v1/sessions", tomToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode[[]map[string]any](t, w)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Alice Smith", sessions[0]["student_name"])
	assert.EqualValues(t, 45, sessions[0]["length_minutes"])

	w = do(t, r, http.MethodPost, "/api/v1/chat", tomToken, map[string]string{"prompt": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/grades", tomToken, map[string]any{
		"student_id": alice.ID, "date": "2025-03-02", "score": 92.5, "comments": "Great work",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/grades?min_score=90&student_id="+alice.ID.String(), tomToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	grades := decode[[]map[string]any](t, w)
	require.Len(t, grades, 1)
	assert.EqualValues(t, 92.5, grades[0]["score"])
	assert.Equal(t, tom.ID.String(), grades[0]["teacher_id"])

	w = do(t, r, http.MethodGet, "/api/v1/grades?min_score=90&max_score=10", tomToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/grades?start_date=yesterday", tomToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_Failures(t *testing.T) {
	r := newTestEngine(t)
	body := map[string]any{
		"first_name": "Alice", "last_name": "Smith", "username": "alice", "password": "securePassword123", "user_type": "student",
	}
	register(t, r, body)

	w := do(t, r, http.MethodPost, "/api/v1/users", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", decode[map[string]string](t, w)["error"])

	body["username"] = "alice2"
	body["assigned_teacher_id"] = uuid.New()
	w = do(t, r, http.MethodPost, "/api/v1/users", "", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body["user_type"] = "admin"
	delete(body, "assigned_teacher_id")
	w = do(t, r, http.MethodPost, "/api/v1/users", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/users", "", `{"first_name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	r := newTestEngine(t)
	register(t, r, map[string]any{
		"first_name": "Alice", "last_name": "Smith", "username": "alice", "password": "securePassword123", "user_type": "student",
	})

	wrong := do(t, r, http.MethodPost, "/api/v1/authenticate", "", map[string]string{"username": "alice", "password": "nope-nope-nope"})
	unknown := do(t, r, http.MethodPost, "/api/v1/authenticate", "", map[string]string{"username": "bob", "password": "securePassword123"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid username or password", decode[map[string]string](t, wrong)["error"])
}

func TestGuardResponses(t *testing.T) {
	r := newTestEngine(t)
	alice := register(t, r, map[string]any{
		"first_name": "Alice", "last_name": "Smith", "username": "alice", "password": "securePassword123", "user_type": "student",
	})

	tokens, err := utils.NewTokenManager(utils.TokenConfig{Secret: []byte(testSecret), Algorithm: "HS256", Lifetime: time.Hour, Issuer: "arktutor"})
	require.NoError(t, err)
	expired, _, err := tokens.Issue(alice.ID.String(), string(usermodels.RoleStudent), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	ghost, _, err := tokens.Issue(uuid.NewString(), string(usermodels.RoleStudent), time.Now())
	require.NoError(t, err)

	w := do(t, r, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))

	for name, token := range map[string]string{"garbage": "not-a-jwt", "expired": expired} {
		w = do(t, r, http.MethodGet, "/api/v1/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"), name)
		assert.Equal(t, "Invalid or expired token", decode[map[string]string](t, w)["error"], name)
	}

	w = do(t, r, http.MethodGet, "/api/v1/me", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "User not found", decode[map[string]string](t, w)["error"])
}

func TestChangePassword(t *testing.T) {
	r := newTestEngine(t)
	register(t, r, map[string]any{
		"first_name": "Alice", "last_name": "Smith", "username": "alice", "password": "securePassword123", "user_type": "student",
	})
	token := login(t, r, "alice", "securePassword123")

	w := do(t, r, http.MethodPut, "/api/v1/me/password", token, map[string]string{"current_password": "wrongPassword1", "new_password": "anotherPass456"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/me/password", token, map[string]string{"current_password": "securePassword123", "new_password": "anotherPass456"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	login(t, r, "alice", "anotherPass456")
}

func TestHealthAndDocs(t *testing.T) {
	r := newTestEngine(t)

	w := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[map[string]any](t, w)
	assert.Contains(t, doc["paths"], "/api/v1/authenticate")
}
