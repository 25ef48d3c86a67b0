package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ravent/agentic-api/middleware"
	"ravent/agentic-api/model"
	"ravent/agentic-api/service"
	"ravent/agentic-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_extensions", []string{".pdf", ".docx", ".txt"})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.User{}, model.FileUpload{}))

	st, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	a := &API{
		DB:      db,
		Router:  gin.New(),
		Storage: st,
		Files:   service.NewFiles(db, st),
	}

	a.Router.Use(middleware.NewRequestIDMiddleware())
	a.registerRoutes()

	return a
}

func doJSON(t *testing.T, a *API, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func register(t *testing.T, a *API, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	return doJSON(t, a, http.MethodPost, "/api/accounts/register/", "", gin.H{
		"username": username,
		"password": password,
	})
}

func login(t *testing.T, a *API, username, password string) (access, refresh string) {
	t.Helper()

	rec := doJSON(t, a, http.MethodPost, "/api/accounts/login/", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	access, _ = body["access"].(string)
	refresh, _ = body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	return access, refresh
}

func uploadFile(t *testing.T, a *API, token, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/agenticai/files/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)

	return rec
}

func listFiles(t *testing.T, a *API, token string) []map[string]any {
	t.Helper()

	rec := doJSON(t, a, http.MethodGet, "/api/agenticai/files/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short password", "alice", "short"},
		{"empty password", "alice", ""},
		{"bad username charset", "ali ce!", "password123"},
		{"username too long", strings.Repeat("a", 151), "password123"},
		{"empty username", "", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)

			rec := register(t, a, tt.username, tt.password)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/accounts/register/", "", gin.H{
		"username": "alice",
		"password": "password123",
		"email":    "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateIsCaseInsensitive(t *testing.T) {
	a := newTestAPI(t)

	rec := register(t, a, "alice", "password123")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully.", decode(t, rec)["detail"])

	rec = register(t, a, "ALICE", "password123")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "already exists")
}

func TestRegisterNeverEchoesPassword(t *testing.T) {
	a := newTestAPI(t)

	rec := register(t, a, "alice", "password123")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password123")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)

	rec := doJSON(t, a, http.MethodPost, "/api/accounts/login/", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown user answers exactly like a wrong password
	rec2 := doJSON(t, a, http.MethodPost, "/api/accounts/login/", "", gin.H{
		"username": "nobody",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.Equal(t, decode(t, rec)["error"], decode(t, rec2)["error"])
}

func TestProfile(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, _ := login(t, a, "alice", "password123")

	rec := doJSON(t, a, http.MethodGet, "/api/accounts/profile/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["id"])

	// Absent email comes back as "", not null
	email, present := body["email"]
	assert.True(t, present)
	assert.Equal(t, "", email)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	a := newTestAPI(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/accounts/profile/"},
		{http.MethodGet, "/api/agenticai/files/"},
		{http.MethodPost, "/api/agenticai/files/"},
		{http.MethodDelete, "/api/agenticai/files/1/"},
	}

	for _, p := range paths {
		rec := doJSON(t, a, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)

		rec = doJSON(t, a, p.method, p.path, "garbage-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s with bad token", p.method, p.path)
	}
}

func TestTokenRefresh(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, refresh := login(t, a, "alice", "password123")

	rec := doJSON(t, a, http.MethodPost, "/api/accounts/token/refresh/", "", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	newAccess, _ := decode(t, rec)["access"].(string)
	require.NotEmpty(t, newAccess)

	profile := doJSON(t, a, http.MethodGet, "/api/accounts/profile/", newAccess, nil)
	assert.Equal(t, http.StatusOK, profile.Code)

	// An access token is not valid currency at the refresh endpoint
	rec = doJSON(t, a, http.MethodPost, "/api/accounts/token/refresh/", "", gin.H{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenCantAccessProtectedRoutes(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	_, refresh := login(t, a, "alice", "password123")

	rec := doJSON(t, a, http.MethodGet, "/api/accounts/profile/", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadRejectsBadExtension(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, _ := login(t, a, "alice", "password123")

	rec := uploadFile(t, a, access, "malware.exe", []byte("MZ"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Contains(t, body["error"], ".exe")
	assert.Contains(t, body["error"], ".pdf")

	// Nothing must have reached blob storage
	assert.Empty(t, listFiles(t, a, access))
}

func TestUploadAcceptsCaseInsensitiveExtensions(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, _ := login(t, a, "alice", "password123")

	rec := uploadFile(t, a, access, "Paper.PDF", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestFileListIsOwnerScoped(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	require.Equal(t, http.StatusCreated, register(t, a, "bob", "password456").Code)

	aliceTok, _ := login(t, a, "alice", "password123")
	bobTok, _ := login(t, a, "bob", "password456")

	require.Equal(t, http.StatusCreated, uploadFile(t, a, aliceTok, "notes.txt", []byte("alice's notes")).Code)

	assert.Len(t, listFiles(t, a, aliceTok), 1)
	assert.Empty(t, listFiles(t, a, bobTok))
}

func TestDeleteForeignFileIsMaskedAsNotFound(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	require.Equal(t, http.StatusCreated, register(t, a, "bob", "password456").Code)

	aliceTok, _ := login(t, a, "alice", "password123")
	bobTok, _ := login(t, a, "bob", "password456")

	require.Equal(t, http.StatusCreated, uploadFile(t, a, aliceTok, "notes.txt", []byte("secret")).Code)

	files := listFiles(t, a, aliceTok)
	require.Len(t, files, 1)
	id := int(files[0]["id"].(float64))

	// Bob deleting alice's file looks exactly like deleting nothing
	rec := doJSON(t, a, http.MethodDelete, fmt.Sprintf("/api/agenticai/files/%d/", id), bobTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec2 := doJSON(t, a, http.MethodDelete, "/api/agenticai/files/424242/", bobTok, nil)
	assert.Equal(t, http.StatusNotFound, rec2.Code)
	assert.Equal(t, decode(t, rec)["error"], decode(t, rec2)["error"])

	// And the file is still alice's to list
	assert.Len(t, listFiles(t, a, aliceTok), 1)
}

func TestDeleteMalformedIDIsNotFound(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, _ := login(t, a, "alice", "password123")

	rec := doJSON(t, a, http.MethodDelete, "/api/agenticai/files/not-a-number/", access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatStub(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/agenticai/chat/", "", gin.H{"query": "What is X?"})
	require.Equal(t, http.StatusOK, rec.Code)

	content := decode(t, rec)["content"].(map[string]any)
	assert.Equal(t, "What is X?", content["query"])
	assert.Equal(t, "Knowledge/RAG", content["type"])
	assert.Equal(t, []any{"CSE_1.pdf"}, content["sources"])

	// The answer is input-invariant, only the echoed query changes
	rec2 := doJSON(t, a, http.MethodPost, "/api/agenticai/chat/", "", gin.H{"query": "anything else"})
	require.Equal(t, http.StatusOK, rec2.Code)

	content2 := decode(t, rec2)["content"].(map[string]any)
	assert.Equal(t, "anything else", content2["query"])
	assert.Equal(t, content["answer"], content2["answer"])
}

func TestChatRejectsMissingQuery(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/agenticai/chat/", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, a, http.MethodPost, "/api/agenticai/chat/", "", gin.H{"query": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeartbeat(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodHead, "/api/heartbeat", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidate(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	access, _ := login(t, a, "alice", "password123")

	rec := doJSON(t, a, http.MethodHead, "/api/validate", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, http.MethodHead, "/api/validate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// The register -> 400 dup -> login -> upload -> list -> delete -> empty
// list journey, end to end through the router.
func TestEndToEndFlow(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusCreated, register(t, a, "alice", "password123").Code)
	assert.Equal(t, http.StatusBadRequest, register(t, a, "alice", "password123").Code)

	access, _ := login(t, a, "alice", "password123")

	rec := uploadFile(t, a, access, "notes.txt", []byte("my notes"))
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode(t, rec)
	require.NotZero(t, created["id"])
	storagePath, _ := created["file"].(string)
	require.NotEmpty(t, storagePath)

	files := listFiles(t, a, access)
	require.Len(t, files, 1)
	assert.Equal(t, created["id"], files[0]["id"])

	ok, err := a.Storage.Exists(t.Context(), storagePath)
	require.NoError(t, err)
	assert.True(t, ok)

	id := int(files[0]["id"].(float64))
	rec = doJSON(t, a, http.MethodDelete, fmt.Sprintf("/api/agenticai/files/%d/", id), access, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, listFiles(t, a, access))

	ok, err = a.Storage.Exists(t.Context(), storagePath)
	require.NoError(t, err)
	assert.False(t, ok)
}
