package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tarslive/waitlist-api/config"
	"github.com/tarslive/waitlist-api/config/router"
	"github.com/tarslive/waitlist-api/domain"
	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestApplication(t testing.TB, signupLimit int) (*config.ApplicationConfig, *httptest.Server) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.WaitlistEntry{}); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	logger := log.NewLoggerWithJSONOutput()

	appConfig := &config.ApplicationConfig{
		DB:     db,
		Logger: logger,
		Config: &config.AppConfig{
			SignupRateLimitRequests: signupLimit,
			SignupRateLimitWindow:   time.Minute,
		},
	}

	appConfig.RouterService = router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(appConfig)

	server := httptest.NewServer(appConfig.RouterService.GetEngine())
	return appConfig, server
}

type WaitlistAPITestSuite struct {
	suite.Suite
	db      *gorm.DB
	server  *httptest.Server
	baseURL string
}

func (suite *WaitlistAPITestSuite) SetupSuite() {
	// The throttling path gets its own server below; the shared suite
	// server uses a budget no test here can exhaust.
	appConfig, server := newTestApplication(suite.T(), 1000)
	suite.db = appConfig.DB
	suite.server = server
	suite.baseURL = server.URL
}

func (suite *WaitlistAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *WaitlistAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM waitlist_entries")
}

func (suite *WaitlistAPITestSuite) postJSON(path string, body any) (*http.Response, map[string]interface{}) {
	jsonBody, err := json.Marshal(body)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (suite *WaitlistAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))

	suite.Equal(float64(200), response["code"])
	suite.Contains(response["message"], "health check completed")

	data := response["data"].(map[string]interface{})
	suite.Contains(data, "database")
	suite.Contains(data, "uptime")
	suite.Equal(float64(1), data["database"])
}

func (suite *WaitlistAPITestSuite) TestJoinWaitlist() {
	resp, response := suite.postJSON("/v1/waitlist", map[string]string{
		"email": "john.doe@gmail.com",
		"name":  "John Doe",
	})

	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Equal(float64(201), response["code"])
	suite.Contains(response["message"], "created successfully")

	data := response["data"].(map[string]interface{})
	suite.Equal("john.doe@gmail.com", data["email"])
	suite.Equal("John Doe", data["name"])
	suite.Equal(float64(1), data["position"])
	suite.Contains(data, "id")
	suite.Contains(data, "created_at")
}

func (suite *WaitlistAPITestSuite) TestJoinWaitlistPositionsGrow() {
	for i, email := range []string{"a1@gmail.com", "a2@gmail.com", "a3@gmail.com"} {
		resp, response := suite.postJSON("/v1/waitlist", map[string]string{
			"email": email,
			"name":  "Member",
		})

		suite.Equal(http.StatusCreated, resp.StatusCode)
		data := response["data"].(map[string]interface{})
		suite.Equal(float64(i+1), data["position"])
	}
}

func (suite *WaitlistAPITestSuite) TestJoinWaitlistValidationError() {
	resp, response := suite.postJSON("/v1/waitlist", map[string]string{
		"email": "john@example.com",
		"name":  "John123",
	})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(float64(400), response["code"])
	suite.Contains(response["message"], "Invalid input data")

	data := response["data"].([]interface{})
	suite.Len(data, 2)

	messagesByField := map[string]string{}
	for _, item := range data {
		fieldError := item.(map[string]interface{})
		messagesByField[fieldError["field"].(string)] = fieldError["message"].(string)
	}

	suite.Contains(messagesByField["email"], "Only @gmail.com emails are allowed")
	suite.Contains(messagesByField["name"], "letters, spaces, hyphens")
}

func (suite *WaitlistAPITestSuite) TestJoinWaitlistDuplicateEmail() {
	resp, _ := suite.postJSON("/v1/waitlist", map[string]string{
		"email": "duplicate@gmail.com",
		"name":  "First",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	resp, response := suite.postJSON("/v1/waitlist", map[string]string{
		"email": "duplicate@gmail.com",
		"name":  "Second",
	})

	suite.Equal(http.StatusConflict, resp.StatusCode)
	suite.Equal(float64(409), response["code"])
	suite.Contains(response["message"], "Email already registered")
}

func (suite *WaitlistAPITestSuite) TestGetAllWaitlistEntries() {
	seedTimes := []time.Time{
		time.Now().Add(-2 * time.Hour),
		time.Now().Add(-1 * time.Hour),
	}
	for i, email := range []string{"user1@gmail.com", "user2@gmail.com"} {
		entry := models.WaitlistEntry{Email: email, Name: "User", CreatedAt: seedTimes[i]}
		suite.Require().NoError(suite.db.Create(&entry).Error)
	}

	resp, err := http.Get(suite.baseURL + "/v1/waitlist")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	suite.Contains(response["message"], "retrieved successfully")

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(2), data["total"])

	entries := data["entries"].([]interface{})
	suite.Require().Len(entries, 2)

	// Signup order, oldest first.
	first := entries[0].(map[string]interface{})
	second := entries[1].(map[string]interface{})
	suite.Equal("user1@gmail.com", first["email"])
	suite.Equal("user2@gmail.com", second["email"])
}

func (suite *WaitlistAPITestSuite) adminLogin(email string) (*http.Response, []*http.Cookie) {
	jsonBody, _ := json.Marshal(map[string]string{"email": email})

	resp, err := http.Post(suite.baseURL+"/v1/admin/login", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	resp.Body.Close()

	return resp, resp.Cookies()
}

func (suite *WaitlistAPITestSuite) seedAdmin(email string) {
	entry := models.WaitlistEntry{Email: email, Name: "Admin", IsAdmin: true}
	suite.Require().NoError(suite.db.Create(&entry).Error)
}

func (suite *WaitlistAPITestSuite) TestAdminLoginRejectsNonAdmin() {
	entry := models.WaitlistEntry{Email: "user@gmail.com", Name: "User"}
	suite.Require().NoError(suite.db.Create(&entry).Error)

	resp, cookies := suite.adminLogin("user@gmail.com")

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	suite.Empty(cookies)
}

func (suite *WaitlistAPITestSuite) TestAdminLoginRejectsUnknownEmail() {
	resp, _ := suite.adminLogin("nobody@gmail.com")

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *WaitlistAPITestSuite) TestAdminListingRequiresSession() {
	resp, err := http.Get(suite.baseURL + "/v1/admin/waitlist")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *WaitlistAPITestSuite) TestAdminListingPagination() {
	suite.seedAdmin("boss@gmail.com")
	for i := 1; i <= 25; i++ {
		entry := models.WaitlistEntry{
			Email:     fmt.Sprintf("member%02d@gmail.com", i),
			Name:      "Member",
			CreatedAt: time.Now().Add(time.Duration(i-30) * time.Minute),
		}
		suite.Require().NoError(suite.db.Create(&entry).Error)
	}

	loginResp, cookies := suite.adminLogin("boss@gmail.com")
	suite.Require().Equal(http.StatusOK, loginResp.StatusCode)
	suite.Require().NotEmpty(cookies)

	request, err := http.NewRequest(http.MethodGet, suite.baseURL+"/v1/admin/waitlist?page=2&limit=10", nil)
	suite.Require().NoError(err)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(request)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(26), data["total"])
	suite.Equal(float64(2), data["page"])
	suite.Equal(float64(10), data["limit"])

	entries := data["entries"].([]interface{})
	suite.Len(entries, 10)
}

func (suite *WaitlistAPITestSuite) TestAdminExportCSV() {
	suite.seedAdmin("boss@gmail.com")
	entry := models.WaitlistEntry{
		Email:     "export-me@gmail.com",
		Name:      "Export",
		CreatedAt: time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC),
	}
	suite.Require().NoError(suite.db.Create(&entry).Error)

	loginResp, cookies := suite.adminLogin("boss@gmail.com")
	suite.Require().Equal(http.StatusOK, loginResp.StatusCode)

	request, err := http.NewRequest(http.MethodGet, suite.baseURL+"/v1/admin/export", nil)
	suite.Require().NoError(err)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(request)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Type"), "text/csv")
	suite.Contains(resp.Header.Get("Content-Disposition"), "attachment")
	suite.Contains(resp.Header.Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	suite.Require().Len(lines, 3)
	suite.Equal("Email,Joined Date", lines[0])
	suite.Contains(string(body), `"export-me@gmail.com","8/3/2026"`)
}

func TestSignupThrottling(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	// Dedicated server: the limiter keys on client IP, so a small
	// budget here would bleed into the shared suite's tests.
	appConfig, server := newTestApplication(t, 3)
	defer server.Close()
	defer func() {
		sqlDB, _ := appConfig.DB.DB()
		sqlDB.Close()
	}()

	post := func(email string) *http.Response {
		jsonBody, _ := json.Marshal(map[string]string{"email": email, "name": "Member"})
		resp, err := http.Post(server.URL+"/v1/waitlist", "application/json", bytes.NewBuffer(jsonBody))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		return resp
	}

	for i := 1; i <= 3; i++ {
		resp := post(fmt.Sprintf("burst%d@gmail.com", i))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Request %d: expected 201, got %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := post("burst4@gmail.com")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after exhausting the signup budget, got %d", resp.StatusCode)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(response["message"].(string), "Too many requests") {
		t.Errorf("Expected throttling message, got %v", response["message"])
	}

	// The rejected attempt consumed no slot and no row.
	var count int64
	appConfig.DB.Model(&models.WaitlistEntry{}).Count(&count)
	if count != 3 {
		t.Errorf("Expected 3 stored entries, got %d", count)
	}
}

func TestWaitlistAPISuite(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, new(WaitlistAPITestSuite))
}
