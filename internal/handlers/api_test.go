package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/identity"
	"solardesk/internal/models"
	"solardesk/internal/server"
	"solardesk/internal/storage"
	"solardesk/internal/workflow"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSessionSecret = "test-session-secret"
	testJWTSecret     = "test-jwt-secret"
	testPassword      = "Passw0rd!"
)

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	cookie string
}

// fakeIdentity answers the admin API with canned responses; worker login
// tests only care that provisioning succeeds and tokens come back.
func fakeIdentity(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/users":
			fmt.Fprint(w, `{"users":[]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/admin/users":
			fmt.Fprint(w, `{"id":"uid-1","email":"worker@example.com"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/token":
			fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer","expires_in":3600}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret:     testSessionSecret,
		IdentityJWTSecret: testJWTSecret,
	}
	idp := identity.NewClient(fakeIdentity(t).URL, "service-key")

	return &testApp{
		t:      t,
		db:     db,
		router: server.NewRouter(cfg, idp, store),
	}
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) createStaff(role models.UserRole, firmID uint) *models.User {
	a.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(a.t, err)

	user := models.User{
		Email:        fmt.Sprintf("%s%d@example.com", role, firmID),
		PasswordHash: string(hash),
		Name:         "Test " + string(role),
		Role:         role,
		FirmID:       firmID,
	}
	require.NoError(a.t, a.db.Create(&user).Error)
	return &user
}

func (a *testApp) login(email string) {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": testPassword})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	a.cookie = w.Header().Get("Set-Cookie")
	require.NotEmpty(a.t, a.cookie)
}

type apiFixture struct {
	firm    models.Firm
	client  models.Client
	crew    models.Crew
	member  models.CrewMember
	project models.Project
}

func (a *testApp) seed(status models.ProjectStatus) *apiFixture {
	a.t.Helper()

	f := &apiFixture{}
	f.firm = models.Firm{Name: "Solar Nord GmbH"}
	require.NoError(a.t, a.db.Create(&f.firm).Error)
	f.client = models.Client{FirmID: f.firm.ID, Name: "Haus Müller"}
	require.NoError(a.t, a.db.Create(&f.client).Error)
	f.crew = models.Crew{FirmID: f.firm.ID, Name: "Crew A"}
	require.NoError(a.t, a.db.Create(&f.crew).Error)
	f.member = models.CrewMember{
		CrewID: f.crew.ID,
		Name:   "Jonas Weber",
		Email:  "worker@example.com",
		Role:   models.MemberWorker,
	}
	require.NoError(a.t, a.db.Create(&f.member).Error)
	f.project = models.Project{
		FirmID:   f.firm.ID,
		ClientID: f.client.ID,
		Title:    "Dachanlage Müller",
		Status:   status,
	}
	require.NoError(a.t, a.db.Create(&f.project).Error)
	return f
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLoginLogoutMe(t *testing.T) {
	app := newTestApp(t)
	user := app.createStaff(models.RoleAdmin, 0)

	w := app.do(http.MethodPost, "/api/auth/login", gin.H{"email": user.Email, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	app.login(user.Email)
	w = app.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.Email)
}

func TestStaffEndpointsRequireSession(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)

	w := app.do(http.MethodGet, fmt.Sprintf("/api/projects?firmId=%d", f.firm.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeiterFirmScoping(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)

	leiter := app.createStaff(models.RoleLeiter, f.firm.ID+100)
	app.login(leiter.Email)

	w := app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", f.project.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects?firmId=%d", f.firm.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateReclamationEndpoint(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusWorkCompleted)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/reclamation", f.project.ID), gin.H{
		"description": "Inverter reports ground fault",
		"crewId":      f.crew.ID,
		"deadline":    "2026-10-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "pending", body["status"])

	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", f.project.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reclamation", decodeBody(t, w)["status"])

	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/history", f.project.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "status_change", entries[0]["changeType"])
}

func TestCreateReclamationWrongStatus(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusInProgress)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/reclamation", f.project.ID), gin.H{
		"description": "too early",
		"crewId":      f.crew.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "in_progress", decodeBody(t, w)["currentStatus"])
}

func TestCreateReclamationValidation(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusWorkCompleted)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	// crewId missing
	w := app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/reclamation", f.project.ID), gin.H{
		"description": "no crew",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown crew
	w = app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/reclamation", f.project.ID), gin.H{
		"description": "ghost crew",
		"crewId":      f.crew.ID + 999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusEndpointVersionConflict(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/status", f.project.ID), gin.H{
		"status":  "scheduled",
		"version": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Same stale version again.
	w = app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/status", f.project.ID), gin.H{
		"status":  "in_progress",
		"version": 0,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProjectUpdateWritesHistoryPerField(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodPatch, fmt.Sprintf("/api/projects/%d", f.project.ID), gin.H{
		"title":          "Dachanlage Müller II",
		"crewId":         f.crew.ID,
		"scheduledStart": "2026-09-15",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/history", f.project.ID), nil)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 3)

	types := map[string]bool{}
	for _, e := range entries {
		types[e["changeType"].(string)] = true
	}
	assert.True(t, types["field_update"])
	assert.True(t, types["crew_assigned"])
	assert.True(t, types["schedule_change"])
}

// hookedBody runs a callback on the first read of a request body, after
// routing and any earlier handler work have already happened.
type hookedBody struct {
	reader *bytes.Reader
	once   sync.Once
	hook   func()
}

func (h *hookedBody) Read(p []byte) (int, error) {
	h.once.Do(h.hook)
	return h.reader.Read(p)
}

func TestProjectUpdateLeavesConcurrentStatusChangeIntact(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusSendInvoice)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	// The status flips after the handler has loaded the row but before it
	// writes, as the billing syncer does while an office edit is in flight.
	// The handler binds the body after loading the project, so hooking the
	// body read lands the change exactly in that window.
	raw, err := json.Marshal(gin.H{"title": "Dachanlage Müller II"})
	require.NoError(t, err)
	body := &hookedBody{reader: bytes.NewReader(raw), hook: func() {
		_, err := workflow.ChangeProjectStatus(app.db, workflow.SystemActor(), f.project.ID,
			models.StatusInvoiceSent, nil, "Invoice sent")
		require.NoError(t, err)
	}}

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/projects/%d", f.project.ID), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", app.cookie)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var project models.Project
	require.NoError(t, app.db.First(&project, f.project.ID).Error)
	assert.Equal(t, models.StatusInvoiceSent, project.Status)
	assert.Equal(t, uint(1), project.Version)
	assert.Equal(t, "Dachanlage Müller II", project.Title)

	// Exactly one status entry plus the title edit, nothing reverted.
	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/history", f.project.ID), nil)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	// A stale version must still lose the CAS after the edit.
	stale := uint(0)
	_, err = workflow.ChangeProjectStatus(app.db, workflow.SystemActor(), f.project.ID,
		models.StatusPaid, &stale, "")
	assert.ErrorIs(t, err, workflow.ErrVersionConflict)
}

func TestAddProjectNoteWithPriority(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/notes", f.project.ID), gin.H{
		"description": "Client prefers morning visits",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "high", decodeBody(t, w)["priority"])

	// Without an explicit priority the note defaults to normal.
	w = app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/notes", f.project.ID), gin.H{
		"description": "Ladder access via backyard",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.PriorityNormal, decodeBody(t, w)["priority"])

	w = app.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/notes", f.project.ID), gin.H{
		"description": "x",
		"priority":    "urgent",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkerLogin(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	admin := app.createStaff(models.RoleAdmin, 0)
	app.login(admin.Email)

	w := app.do(http.MethodPost, "/api/worker-auth/generate-pin", gin.H{"memberId": f.member.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pin := decodeBody(t, w)["pin"].(string)
	require.Len(t, pin, 6)

	app.cookie = ""
	w = app.do(http.MethodPost, "/api/worker-auth/login", gin.H{"email": f.member.Email, "pin": pin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "at-1", body["accessToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Jonas Weber", user["name"])
	assert.Equal(t, "Crew A", user["crewName"])
}

func TestWorkerLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.seed(models.StatusNew)

	// Unknown email with a well-formed pin.
	w := app.do(http.MethodPost, "/api/worker-auth/login", gin.H{
		"email": "stranger@example.com",
		"pin":   "123456",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Malformed pin fails validation before any lookup.
	w = app.do(http.MethodPost, "/api/worker-auth/login", gin.H{
		"email": "worker@example.com",
		"pin":   "12ab56",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPinLifecycleEndpoints(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodGet, fmt.Sprintf("/api/worker-auth/member-status/%d", f.member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["hasPin"])

	w = app.do(http.MethodPost, "/api/worker-auth/generate-pin", gin.H{"memberId": f.member.ID})
	require.Equal(t, http.StatusOK, w.Code)
	pin := decodeBody(t, w)["pin"].(string)

	w = app.do(http.MethodGet, fmt.Sprintf("/api/worker-auth/member-status/%d", f.member.ID), nil)
	assert.Equal(t, true, decodeBody(t, w)["hasPin"])

	w = app.do(http.MethodPost, "/api/worker-auth/revoke-pin", gin.H{"memberId": f.member.ID})
	require.Equal(t, http.StatusOK, w.Code)

	app.cookie = ""
	w = app.do(http.MethodPost, "/api/worker-auth/login", gin.H{"email": f.member.Email, "pin": pin})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func workerToken(t *testing.T, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"role":  "worker",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func (a *testApp) doWorker(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestWorkerSurface(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusWorkCompleted)

	// Worker needs an active PIN for the token to be honored.
	_, _, err := workflow.GeneratePin(app.db, workflow.SystemActor(), f.member.ID)
	require.NoError(t, err)

	rec, err := workflow.CreateReclamation(app.db, workflow.SystemActor(), workflow.CreateReclamationInput{
		ProjectID:   f.project.ID,
		CrewID:      f.crew.ID,
		Description: "panel cracked",
	})
	require.NoError(t, err)

	token := workerToken(t, f.member.Email)

	w := app.doWorker(http.MethodGet, "/api/worker/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Jonas Weber", decodeBody(t, w)["name"])

	w = app.doWorker(http.MethodGet, "/api/worker/reclamations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "panel cracked", recs[0]["description"])
	// The worker gets the project context needed on site.
	proj := recs[0]["project"].(map[string]any)
	assert.Equal(t, "Dachanlage Müller", proj["title"])

	w = app.doWorker(http.MethodPost, fmt.Sprintf("/api/worker/reclamations/%d/accept", rec.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "accepted", decodeBody(t, w)["status"])

	// complete is allowed straight from accepted
	w = app.doWorker(http.MethodPost, fmt.Sprintf("/api/worker/reclamations/%d/complete", rec.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decodeBody(t, w)["status"])

	// and a second accept on the terminal row conflicts
	w = app.doWorker(http.MethodPost, fmt.Sprintf("/api/worker/reclamations/%d/accept", rec.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkerSurfaceRejectsBadTokens(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)

	// No token at all.
	req := httptest.NewRequest(http.MethodGet, "/api/worker/me", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token, but the member holds no active PIN.
	w = app.doWorker(http.MethodGet, "/api/worker/me", workerToken(t, f.member.Email), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with the wrong secret.
	claims := jwt.MapClaims{"email": f.member.Email, "exp": time.Now().Add(time.Hour).Unix()}
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	w = app.doWorker(http.MethodGet, "/api/worker/me", bad, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (a *testApp) uploadFile(projectID uint, name, contentType string, data []byte) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%d/files", projectID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestFileUploadDownloadDelete(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.uploadFile(f.project.ID, "roof.png", "image/png", pngBytes(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fileID := uint(decodeBody(t, w)["id"].(float64))

	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/files", f.project.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var files []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "roof.png", files[0]["fileName"])

	w = app.do(http.MethodGet, fmt.Sprintf("/api/files/%d", fileID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// Image uploads get a jpeg thumbnail.
	w = app.do(http.MethodGet, fmt.Sprintf("/api/files/%d?thumbnail=true", fileID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = app.do(http.MethodDelete, fmt.Sprintf("/api/files/%d", fileID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodGet, fmt.Sprintf("/api/files/%d", fileID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Upload and delete both leave a file entry in the audit trail.
	w = app.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/history", f.project.ID), nil)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "file", entries[0]["changeType"])
}

func TestFileUploadRejectsUnsupportedType(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.uploadFile(f.project.ID, "script.sh", "application/x-sh", []byte("#!/bin/sh"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFirmAdminOnly(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusNew)

	leiter := app.createStaff(models.RoleLeiter, f.firm.ID)
	app.login(leiter.Email)

	w := app.do(http.MethodPost, "/api/firms", gin.H{"name": "New Firm"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := app.createStaff(models.RoleAdmin, 0)
	app.login(admin.Email)
	w = app.do(http.MethodPost, "/api/firms", gin.H{"name": "New Firm"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestExportProjects(t *testing.T) {
	app := newTestApp(t)
	f := app.seed(models.StatusScheduled)
	app.login(app.createStaff(models.RoleAdmin, 0).Email)

	w := app.do(http.MethodGet, fmt.Sprintf("/api/projects/export?firmId=%d", f.firm.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}
