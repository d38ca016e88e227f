package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"languagevio/config"
	"languagevio/database"
	"languagevio/middleware"
	"languagevio/models"
	"languagevio/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []utils.IntentRequest
	err      error
}

func (g *fakeGateway) CreateIntent(_ context.Context, req utils.IntentRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("pi_%d_secret", len(g.requests)), nil
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	tokens  *middleware.TokenService
	gateway *fakeGateway
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()
	inst, err := database.ConnectDb(&config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })

	env := &testEnv{
		db:      inst.Db,
		tokens:  middleware.NewTokenService("test-secret", time.Hour),
		gateway: &fakeGateway{},
	}
	env.app = NewApp(Deps{
		DB:             inst,
		Tokens:         env.tokens,
		Gateway:        env.gateway,
		Mailer:         utils.NoopMailer{},
		EnrollmentMode: mode,
		Currency:       "usd",
		RequestTimeout: 5 * time.Second,
	})
	return env
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	token, err := e.tokens.Issue(map[string]interface{}{"email": email})
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedUser(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, "")

	status, body := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "My Languagevio is running", string(body))

	status, body = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestIssueToken(t *testing.T) {
	env := newTestEnv(t, "")

	status, body := env.do(t, http.MethodPost, "/jwt", "", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, status)
	token, _ := decode(t, body)["token"].(string)
	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims["email"])

	for _, bad := range []string{`[1,2]`, `"str"`, `null`, `{`} {
		status, _ = env.do(t, http.MethodPost, "/jwt", "", bad)
		assert.Equal(t, http.StatusBadRequest, status, bad)
	}
}

func TestGuardedRoutesRequireBearer(t *testing.T) {
	env := newTestEnv(t, "")
	id := uuid.NewString()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/admin/a@x.com"},
		{http.MethodPatch, "/users/admin/" + id},
		{http.MethodGet, "/users/instructor/a@x.com"},
		{http.MethodPatch, "/users/instructor/" + id},
		{http.MethodGet, "/studentClasses?email=a@x.com"},
		{http.MethodPost, "/studentClasses"},
		{http.MethodDelete, "/studentClasses/" + id},
		{http.MethodGet, "/newClasses"},
		{http.MethodPatch, "/newClasses/approved/" + id},
		{http.MethodPatch, "/newClasses/denied/" + id},
		{http.MethodPatch, "/newClasses/feedback/" + id},
		{http.MethodGet, "/newClasses/instructor?email=a@x.com"},
		{http.MethodPost, "/newClasses/instructor"},
		{http.MethodPost, "/create-payment-intent"},
		{http.MethodPost, "/payments"},
		{http.MethodGet, "/payments?email=a@x.com"},
		{http.MethodGet, "/enrolledClasses?email=a@x.com"},
	}
	for _, r := range routes {
		status, body := env.do(t, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", r.method, r.path)
		assert.JSONEq(t, `{"error":true,"message":"an unauthorized access"}`, string(body))
	}
}

func TestOwnershipScopedLists(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "teach@x.com", models.RoleInstructor)
	student := env.token(t, "s@x.com")
	instructor := env.token(t, "teach@x.com")

	cases := []struct {
		path  string
		token string
	}{
		{"/studentClasses", student},
		{"/payments", student},
		{"/enrolledClasses", student},
		{"/newClasses/instructor", instructor},
	}
	for _, tc := range cases {
		status, body := env.do(t, http.MethodGet, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusOK, status, tc.path)
		assert.JSONEq(t, `[]`, string(body), tc.path)

		status, body = env.do(t, http.MethodGet, tc.path+"?email=someone@x.com", tc.token, nil)
		assert.Equal(t, http.StatusForbidden, status, tc.path)
		assert.JSONEq(t, `{"error":true,"message":"forbidden access"}`, string(body))
	}
}

func TestCreateUserIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "")
	payload := map[string]string{"name": "Sam", "email": "sam@x.com", "role": "admin"}

	status, body := env.do(t, http.MethodPost, "/users", "", payload)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, decode(t, body)["insertedId"])

	status, body = env.do(t, http.MethodPost, "/users", "", payload)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"user already exists"}`, string(body))

	var users []models.User
	require.NoError(t, env.db.Where("email = ?", "sam@x.com").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleStudent, users[0].Role)

	status, _ = env.do(t, http.MethodPost, "/users", "", map[string]string{"name": "no email"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestRoleChecksOnlyAnswerForCaller(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "admin@x.com", models.RoleAdmin)
	env.seedUser(t, "teach@x.com", models.RoleInstructor)
	admin := env.token(t, "admin@x.com")
	instructor := env.token(t, "teach@x.com")

	_, body := env.do(t, http.MethodGet, "/users/admin/admin@x.com", admin, nil)
	assert.JSONEq(t, `{"admin":true}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/admin/admin@x.com", instructor, nil)
	assert.JSONEq(t, `{"admin":false}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/instructor/teach@x.com", instructor, nil)
	assert.JSONEq(t, `{"instructor":true}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/instructor/admin@x.com", admin, nil)
	assert.JSONEq(t, `{"instructor":false}`, string(body))

	status, _ := env.do(t, http.MethodGet, "/users", instructor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodGet, "/users", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	var users []models.User
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 2)
}

func TestPromoteToAdminRemovesDirectoryEntry(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "admin@x.com", models.RoleAdmin)
	instructor := env.seedUser(t, "teach@x.com", models.RoleInstructor)
	require.NoError(t, env.db.Create(&models.Instructor{Name: "T", Email: "teach@x.com"}).Error)
	require.NoError(t, env.db.Create(&models.Instructor{Name: "O", Email: "other@x.com"}).Error)
	admin := env.token(t, "admin@x.com")

	status, body := env.do(t, http.MethodPatch, "/users/admin/"+instructor.ID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	out := decode(t, body)
	assert.Equal(t, float64(1), out["result"].(map[string]interface{})["matchedCount"])
	assert.Equal(t, float64(1), out["oldInstructor"].(map[string]interface{})["deletedCount"])

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", instructor.ID).Error)
	assert.Equal(t, models.RoleAdmin, user.Role)

	var left []models.Instructor
	require.NoError(t, env.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "other@x.com", left[0].Email)

	status, body = env.do(t, http.MethodPatch, "/users/admin/"+uuid.NewString(), admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), decode(t, body)["result"].(map[string]interface{})["matchedCount"])

	status, _ = env.do(t, http.MethodPatch, "/users/admin/not-an-id", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPromoteToInstructorUpsertsDirectory(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "admin@x.com", models.RoleAdmin)
	student := env.seedUser(t, "s@x.com", models.RoleStudent)
	admin := env.token(t, "admin@x.com")

	status, body := env.do(t, http.MethodPatch, "/users/instructor/"+student.ID, admin, map[string]string{"name": "Teacher S"})
	require.Equal(t, http.StatusOK, status)
	out := decode(t, body)
	assert.Equal(t, true, out["instructorCreated"])
	assert.NotNil(t, out["newInstructor"])

	status, body = env.do(t, http.MethodPatch, "/users/instructor/"+student.ID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	out = decode(t, body)
	assert.Equal(t, false, out["instructorCreated"])
	assert.Nil(t, out["newInstructor"])

	var entries []models.Instructor
	require.NoError(t, env.db.Where("email = ?", "s@x.com").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "Teacher S", entries[0].Name)

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", student.ID).Error)
	assert.Equal(t, models.RoleInstructor, user.Role)

	status, _ = env.do(t, http.MethodPatch, "/users/instructor/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (e *testEnv) submitClass(t *testing.T, instructorToken string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/newClasses/instructor", instructorToken, map[string]interface{}{
		"name": "Spanish A1", "instructorName": "Ana", "price": 29.99, "seats": 20, "students": 4,
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	id, _ := decode(t, body)["insertedId"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestSubmissionReviewIsOneWay(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "admin@x.com", models.RoleAdmin)
	env.seedUser(t, "teach@x.com", models.RoleInstructor)
	admin := env.token(t, "admin@x.com")
	instructor := env.token(t, "teach@x.com")

	id := env.submitClass(t, instructor)

	var sub models.ClassSubmission
	require.NoError(t, env.db.First(&sub, "id = ?", id).Error)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, "teach@x.com", sub.InstructorEmail)

	publish := map[string]interface{}{"name": "Spanish A1", "price": 29.99, "seats": 20, "students": 4}
	status, body := env.do(t, http.MethodPatch, "/newClasses/approved/"+id, admin, publish)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.NotEmpty(t, decode(t, body)["newClass"].(map[string]interface{})["insertedId"])

	status, _ = env.do(t, http.MethodPatch, "/newClasses/approved/"+id, admin, publish)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = env.do(t, http.MethodPatch, "/newClasses/denied/"+id, admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	var published []models.PublishedClass
	require.NoError(t, env.db.Find(&published).Error)
	require.Len(t, published, 1)
	assert.Equal(t, id, published[0].SubmissionID)
	assert.Equal(t, "teach@x.com", published[0].InstructorEmail)

	require.NoError(t, env.db.First(&sub, "id = ?", id).Error)
	assert.Equal(t, models.StatusApproved, sub.Status)

	status, body = env.do(t, http.MethodPatch, "/newClasses/feedback/"+id, admin, map[string]string{"feedback": "great"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"matchedCount":1,"modifiedCount":1}`, string(body))

	status, _ = env.do(t, http.MethodPatch, "/newClasses/approved/"+uuid.NewString(), admin, publish)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPatch, "/newClasses/approved/"+id, instructor, publish)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInstructorCannotSubmitForOthers(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "teach@x.com", models.RoleInstructor)
	instructor := env.token(t, "teach@x.com")

	status, _ := env.do(t, http.MethodPost, "/newClasses/instructor", instructor, map[string]interface{}{
		"name": "French", "instructorEmail": "other@x.com",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPost, "/newClasses/instructor", env.token(t, "s@x.com"), map[string]interface{}{"name": "French"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSelectedClassOwnership(t *testing.T) {
	env := newTestEnv(t, "")
	alice := env.token(t, "alice@x.com")
	bob := env.token(t, "bob@x.com")

	status, _ := env.do(t, http.MethodPost, "/studentClasses", alice, map[string]interface{}{"classId": uuid.NewString(), "userEmail": "bob@x.com"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodPost, "/studentClasses", alice, map[string]interface{}{"classId": uuid.NewString(), "name": "German"})
	require.Equal(t, http.StatusOK, status)
	id, _ := decode(t, body)["insertedId"].(string)

	status, body = env.do(t, http.MethodGet, "/studentClasses?email=alice@x.com", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var selected []models.SelectedClass
	require.NoError(t, json.Unmarshal(body, &selected))
	require.Len(t, selected, 1)
	assert.Equal(t, "German", selected[0].Name)

	status, _ = env.do(t, http.MethodDelete, "/studentClasses/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodDelete, "/studentClasses/"+id, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deletedCount":1}`, string(body))

	status, body = env.do(t, http.MethodDelete, "/studentClasses/"+id, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deletedCount":0}`, string(body))
}

func TestCreatePaymentIntent(t *testing.T) {
	env := newTestEnv(t, "")
	student := env.token(t, "s@x.com")

	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", bytes.NewBufferString(`{"price":29.99}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+student)
	req.Header.Set("Idempotency-Key", "retry-1")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pi_1_secret", decode(t, raw)["clientSecret"])

	require.Len(t, env.gateway.requests, 1)
	assert.Equal(t, utils.IntentRequest{Amount: 2999, Currency: "usd", IdempotencyKey: "retry-1"}, env.gateway.requests[0])

	status, _ := env.do(t, http.MethodPost, "/create-payment-intent", student, map[string]interface{}{"price": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	env.gateway.err = errors.New("gateway down")
	status, _ = env.do(t, http.MethodPost, "/create-payment-intent", student, map[string]interface{}{"price": 5})
	assert.Equal(t, http.StatusBadGateway, status)
}

type catalogFixture struct {
	submissionID string
	classID      string
	selectedID   string
}

func (e *testEnv) seedCatalog(t *testing.T) catalogFixture {
	t.Helper()
	e.seedUser(t, "admin@x.com", models.RoleAdmin)
	e.seedUser(t, "teach@x.com", models.RoleInstructor)
	admin := e.token(t, "admin@x.com")
	student := e.token(t, "s@x.com")

	submissionID := e.submitClass(t, e.token(t, "teach@x.com"))
	status, body := e.do(t, http.MethodPatch, "/newClasses/approved/"+submissionID, admin,
		map[string]interface{}{"name": "Spanish A1", "price": 29.99, "seats": 20, "students": 4})
	require.Equal(t, http.StatusOK, status)
	classID := decode(t, body)["newClass"].(map[string]interface{})["insertedId"].(string)

	status, body = e.do(t, http.MethodPost, "/studentClasses", student, map[string]interface{}{
		"classId": classID, "approvedId": submissionID, "name": "Spanish A1", "price": 29.99, "seats": 20, "students": 4,
	})
	require.Equal(t, http.StatusOK, status)
	selectedID := decode(t, body)["insertedId"].(string)

	return catalogFixture{submissionID: submissionID, classID: classID, selectedID: selectedID}
}

func (f catalogFixture) checkout(email string) map[string]interface{} {
	return map[string]interface{}{
		"userEmail":      email,
		"classId":        f.classID,
		"approvedId":     f.submissionID,
		"selectedId":     f.selectedID,
		"seats":          19,
		"students":       5,
		"price":          29.99,
		"transactionId":  "pi_123",
		"name":           "Spanish A1",
		"instructorName": "Ana",
		"email":          email,
	}
}

func TestEnrollmentEndToEnd(t *testing.T) {
	env := newTestEnv(t, config.EnrollmentTransactional)
	f := env.seedCatalog(t)
	student := env.token(t, "s@x.com")

	status, _ := env.do(t, http.MethodPost, "/payments", student, f.checkout("other@x.com"))
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodPost, "/payments", student, f.checkout("s@x.com"))
	require.Equal(t, http.StatusOK, status, string(body))
	out := decode(t, body)
	assert.Equal(t, float64(1), out["deleteResult"].(map[string]interface{})["deletedCount"])
	assert.Equal(t, float64(1), out["classResult"].(map[string]interface{})["matchedCount"])
	assert.Equal(t, float64(1), out["approvedResult"].(map[string]interface{})["matchedCount"])

	status, body = env.do(t, http.MethodGet, "/classes/"+f.classID, "", nil)
	require.Equal(t, http.StatusOK, status)
	class := decode(t, body)
	assert.Equal(t, float64(19), class["seats"])
	assert.Equal(t, float64(5), class["students"])

	status, body = env.do(t, http.MethodGet, "/payments?email=s@x.com", student, nil)
	require.Equal(t, http.StatusOK, status)
	var payments []models.Payment
	require.NoError(t, json.Unmarshal(body, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_123", payments[0].TransactionID)

	status, body = env.do(t, http.MethodGet, "/enrolledClasses?email=s@x.com", student, nil)
	require.Equal(t, http.StatusOK, status)
	var enrolled []models.EnrolledClass
	require.NoError(t, json.Unmarshal(body, &enrolled))
	require.Len(t, enrolled, 1)
	assert.Equal(t, payments[0].ID, enrolled[0].PaymentID)

	_, body = env.do(t, http.MethodGet, "/studentClasses?email=s@x.com", student, nil)
	assert.JSONEq(t, `[]`, string(body))

	// The cart entry is gone, so a replay is rejected without writing a second payment.
	status, _ = env.do(t, http.MethodPost, "/payments", student, f.checkout("s@x.com"))
	assert.Equal(t, http.StatusNotFound, status)
	var n int64
	require.NoError(t, env.db.Model(&models.Payment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSequentialEnrollmentReportsFailedStep(t *testing.T) {
	env := newTestEnv(t, config.EnrollmentSequential)
	f := env.seedCatalog(t)
	student := env.token(t, "s@x.com")

	err := env.db.Callback().Update().Before("gorm:update").Register("test:fail_class_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "classes" {
			_ = tx.AddError(errors.New("injected"))
		}
	})
	require.NoError(t, err)

	status, body := env.do(t, http.MethodPost, "/payments", student, f.checkout("s@x.com"))
	require.Equal(t, http.StatusInternalServerError, status)
	out := decode(t, body)
	assert.Equal(t, "class", out["failedStep"])
	result := out["result"].(map[string]interface{})
	assert.NotNil(t, result["insertResult"])
	assert.Equal(t, float64(1), result["deleteResult"].(map[string]interface{})["deletedCount"])
	assert.Nil(t, result["classResult"])

	var n int64
	require.NoError(t, env.db.Model(&models.Payment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGetClassNotFound(t *testing.T) {
	env := newTestEnv(t, "")

	status, _ := env.do(t, http.MethodGet, "/classes/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := env.do(t, http.MethodGet, "/classes", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = env.do(t, http.MethodGet, "/instructors", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRoleChecksDecodeEscapedEmail(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "a+b@x.com", models.RoleAdmin)
	env.seedUser(t, "c+d@x.com", models.RoleInstructor)
	admin := env.token(t, "a+b@x.com")
	instructor := env.token(t, "c+d@x.com")

	status, body := env.do(t, http.MethodGet, "/users/admin/a%2Bb%40x.com", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"admin":true}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/instructor/c%2Bd%40x.com", instructor, nil)
	assert.JSONEq(t, `{"instructor":true}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/instructor/c+d@x.com", instructor, nil)
	assert.JSONEq(t, `{"instructor":true}`, string(body))

	_, body = env.do(t, http.MethodGet, "/users/admin/a%2Bb%40x.com", instructor, nil)
	assert.JSONEq(t, `{"admin":false}`, string(body))
}

func TestPaymentHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t, "")
	student := env.token(t, "s@x.com")
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{0, 48 * time.Hour, 24 * time.Hour} {
		payment := models.Payment{
			UserEmail:     "s@x.com",
			TransactionID: fmt.Sprintf("pi_%d", i),
			Date:          base.Add(offset),
		}
		require.NoError(t, env.db.Create(&payment).Error)
		require.NoError(t, env.db.Create(&models.EnrolledClass{
			PaymentID: payment.ID,
			UserEmail: "s@x.com",
			Name:      fmt.Sprintf("class_%d", i),
			Date:      payment.Date,
		}).Error)
	}
	require.NoError(t, env.db.Create(&models.Payment{UserEmail: "other@x.com", TransactionID: "pi_other", Date: base.Add(72 * time.Hour)}).Error)

	status, body := env.do(t, http.MethodGet, "/payments?email=s@x.com", student, nil)
	require.Equal(t, http.StatusOK, status)
	var payments []models.Payment
	require.NoError(t, json.Unmarshal(body, &payments))
	var txIDs []string
	for _, p := range payments {
		txIDs = append(txIDs, p.TransactionID)
	}
	assert.Equal(t, []string{"pi_1", "pi_2", "pi_0"}, txIDs)

	status, body = env.do(t, http.MethodGet, "/enrolledClasses?email=s@x.com", student, nil)
	require.Equal(t, http.StatusOK, status)
	var enrolled []models.EnrolledClass
	require.NoError(t, json.Unmarshal(body, &enrolled))
	var names []string
	for _, e := range enrolled {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"class_1", "class_2", "class_0"}, names)
}

func TestFeedbackCanBeCleared(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedUser(t, "admin@x.com", models.RoleAdmin)
	admin := env.token(t, "admin@x.com")

	sub := models.ClassSubmission{InstructorEmail: "teach@x.com", Name: "Italian", Status: models.StatusPending}
	require.NoError(t, env.db.Create(&sub).Error)

	status, _ := env.do(t, http.MethodPatch, "/newClasses/feedback/"+sub.ID, admin, map[string]string{"feedback": "add a syllabus"})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodPatch, "/newClasses/feedback/"+sub.ID, admin, map[string]string{"feedback": ""})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"matchedCount":1,"modifiedCount":1}`, string(body))

	var stored models.ClassSubmission
	require.NoError(t, env.db.First(&stored, "id = ?", sub.ID).Error)
	assert.Empty(t, stored.Feedback)
}

func TestCreatePaymentIntentRejectsOversizedPrice(t *testing.T) {
	env := newTestEnv(t, "")
	student := env.token(t, "s@x.com")

	status, body := env.do(t, http.MethodPost, "/create-payment-intent", student, `{"price":1e300}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), "too large")
	assert.Empty(t, env.gateway.requests)
}
