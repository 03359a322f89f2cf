package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contact-book-go/internal/config"
	"contact-book-go/internal/models"
)

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		Port:         "8080",
		AllowOrigins: "*",
		DBDriver:     "sqlite",
		DemoUserID:   1,
		MaxUploadMB:  15,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "contacts.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}, &models.Contact{}))

	return NewServer(cfg, db), db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && json.Valid(w.Body.Bytes()) {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestHealth(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func TestRegisterLoginFlow(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())

	w, env := doJSON(t, engine, http.MethodPost, "/api/register",
		gin.H{"username": "alice", "password": "pw1", "email": "a@x.com"}, nil)
	require.Equal(t, 201, w.Code)
	assert.True(t, env.Success)
	assert.Greater(t, env.Data["user_id"].(float64), float64(0))

	// Username collision, even with a different password and no email.
	w, env = doJSON(t, engine, http.MethodPost, "/api/register",
		gin.H{"username": "alice", "password": "pw2", "email": ""}, nil)
	assert.Equal(t, 400, w.Code)
	assert.False(t, env.Success)

	w, _ = doJSON(t, engine, http.MethodPost, "/api/login",
		gin.H{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, 401, w.Code)

	w, env = doJSON(t, engine, http.MethodPost, "/api/login",
		gin.H{"username": "alice", "password": "pw1"}, nil)
	require.Equal(t, 200, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data["username"])
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())

	w, env := doJSON(t, engine, http.MethodPost, "/api/register",
		gin.H{"username": "alice", "password": "pw1", "email": "not-an-email"}, nil)
	assert.Equal(t, 400, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "请输入有效的邮箱地址", env.Message)
}

func TestIdentityFallsBackToDemoUser(t *testing.T) {
	engine, db := newTestServer(t, testConfig())

	// Without X-User-Id the contact lands under the demo user (id 1).
	w, _ := doJSON(t, engine, http.MethodPost, "/api/contacts",
		gin.H{"name": "张三", "phone1": "13800000001"}, nil)
	require.Equal(t, 201, w.Code)

	var contact models.Contact
	require.NoError(t, db.First(&contact).Error)
	assert.EqualValues(t, 1, contact.UserID)
}

func TestIdentityRequiredWhenDemoDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.DemoUserID = 0
	engine, _ := newTestServer(t, cfg)

	w, env := doJSON(t, engine, http.MethodGet, "/api/contacts", nil, nil)
	assert.Equal(t, 401, w.Code)
	assert.False(t, env.Success)

	w, _ = doJSON(t, engine, http.MethodGet, "/api/contacts", nil,
		map[string]string{"X-User-Id": "7"})
	assert.Equal(t, 200, w.Code)
}

func TestContactFilterPrecedence(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())
	h := map[string]string{"X-User-Id": "1"}

	w, env := doJSON(t, engine, http.MethodPost, "/api/groups", gin.H{"group_name": "同事"}, h)
	require.Equal(t, 201, w.Code)
	groupID := int(env.Data["id"].(float64))

	w, _ = doJSON(t, engine, http.MethodPost, "/api/contacts",
		gin.H{"name": "张三", "phone1": "13800000001", "group_id": groupID, "is_favorite": true}, h)
	require.Equal(t, 201, w.Code)
	w, _ = doJSON(t, engine, http.MethodPost, "/api/contacts",
		gin.H{"name": "李四", "phone1": "13900000002"}, h)
	require.Equal(t, 201, w.Code)

	listNames := func(path string) []string {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-User-Id", "1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)

		var body struct {
			Data []models.Contact `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		names := make([]string, 0, len(body.Data))
		for _, c := range body.Data {
			names = append(names, c.Name)
		}
		return names
	}

	assert.ElementsMatch(t, []string{"张三", "李四"}, listNames("/api/contacts"))
	// Keyword search wins over the group filter.
	assert.Equal(t, []string{"李四"}, listNames("/api/contacts?keyword=李&group_id=1"))
	assert.Equal(t, []string{"张三"}, listNames("/api/contacts?group_id=1&favorite=0"))
	assert.Equal(t, []string{"李四"}, listNames("/api/contacts?favorite=0"))
	assert.Equal(t, []string{"张三"}, listNames("/api/contacts?favorite=1"))
}

func TestUpdateAmbiguityMapsTo400(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())
	h := map[string]string{"X-User-Id": "1"}

	doJSON(t, engine, http.MethodPost, "/api/contacts", gin.H{"name": "张三", "phone1": "13800000001"}, h)
	doJSON(t, engine, http.MethodPost, "/api/contacts", gin.H{"name": "李四", "phone1": "13800000002"}, h)

	// Not found and phone conflict share the same wire response.
	w, env := doJSON(t, engine, http.MethodPut, "/api/contacts",
		gin.H{"old_phone": "13899999999", "new_name": "某人", "new_phone": "13800000009"}, h)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "联系人不存在或新电话1已被占用", env.Message)

	w, env = doJSON(t, engine, http.MethodPut, "/api/contacts",
		gin.H{"old_phone": "13800000001", "new_name": "张三", "new_phone": "13800000002"}, h)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "联系人不存在或新电话1已被占用", env.Message)
}

func TestDeleteAndToggleNotFoundReturn404(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())
	h := map[string]string{"X-User-Id": "1"}

	w, _ := doJSON(t, engine, http.MethodDelete, "/api/contacts", gin.H{"phone": "13800000001"}, h)
	assert.Equal(t, 404, w.Code)

	w, _ = doJSON(t, engine, http.MethodPut, "/api/contacts/favorite/9999", nil, h)
	assert.Equal(t, 404, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())
	h := map[string]string{"X-User-Id": "1"}

	w, env := doJSON(t, engine, http.MethodPost, "/api/contacts/batch", gin.H{
		"contacts": []gin.H{
			{"name": "张三", "phone1": "13800000001"},
			{"name": "", "phone1": "13800000002"},
		},
	}, h)
	require.Equal(t, 200, w.Code)
	assert.EqualValues(t, 1, env.Data["success"])
	assert.EqualValues(t, 1, env.Data["fail"])

	w, _ = doJSON(t, engine, http.MethodPost, "/api/contacts/batch", gin.H{}, h)
	assert.Equal(t, 400, w.Code)

	// Schema rejects records with wrong field types.
	w, _ = doJSON(t, engine, http.MethodPost, "/api/contacts/batch", gin.H{
		"contacts": []gin.H{{"name": "张三", "phone1": 12345}},
	}, h)
	assert.Equal(t, 400, w.Code)
}

func TestExportCSVEndpoint(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())
	h := map[string]string{"X-User-Id": "1"}

	doJSON(t, engine, http.MethodPost, "/api/contacts", gin.H{"name": "张三", "phone1": "13800000001"}, h)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/export", nil)
	req.Header.Set("X-User-Id", "1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=UTF-8''")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, w.Body.String(), "13800000001")
}

func TestImportExcelEndpoint(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())

	f := excelize.NewFile()
	header := []interface{}{"姓名", "电话1", "电话2", "邮箱1", "邮箱2", "社交账号", "地址", "分组ID", "分组名称", "是否收藏"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"张三", "13800000001", "", "", "", "", "", "", "", "是"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "通讯录.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/import/excel", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-Id", "1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.EqualValues(t, 1, env.Data["success"])
	assert.EqualValues(t, 0, env.Data["fail"])
}

func TestImportExcelRejectsWrongExtension(t *testing.T) {
	engine, _ := newTestServer(t, testConfig())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "contacts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/import/excel", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), ".xlsx")
}
