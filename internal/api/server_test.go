package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/config"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/domain"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/repository/dao"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(db))

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			BaseURL:            "localhost:8080",
			Port:               "8080",
			JWTSigningKey:      "test-key",
			AllowedCORSDomains: "localhost",
		},
		Gin: &config.GinConfig{Mode: gin.TestMode},
	}

	return NewServer(conf, db), db
}

func doRequest(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	return resp
}

func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), out))
}

// signupAndLogin registers a user and returns a bearer token for it.
func signupAndLogin(t *testing.T, s *Server, email string) string {
	t.Helper()

	resp := doRequest(t, s, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var login response.LoginResponse
	decodeJSON(t, resp, &login)
	require.NotEmpty(t, login.Token)

	return login.Token
}

// signupAndLoginExisting logs in a user that already signed up.
func signupAndLoginExisting(t *testing.T, s *Server, email string) string {
	t.Helper()

	resp := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var login response.LoginResponse
	decodeJSON(t, resp, &login)

	return login.Token
}

func promoteToAdmin(t *testing.T, db *gorm.DB, email string) {
	t.Helper()

	result := db.Model(&dao.User{}).Where("email = ?", email).Update("is_admin", true)
	require.NoError(t, result.Error)
	require.EqualValues(t, 1, result.RowsAffected)
}

func TestHandleHealthcheck(t *testing.T) {
	s, _ := newTestServer(t)

	resp := doRequest(t, s, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("signup rejects a weak password", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
			"email":    "weak@example.com",
			"password": "short",
			"name":     "Weak",
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("signup then login", func(t *testing.T) {
		token := signupAndLogin(t, s, "customer@example.com")
		require.NotEmpty(t, token)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
			"email":    "customer@example.com",
			"password": "password123",
			"name":     "Copycat",
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "customer@example.com",
			"password": "wrongpass1",
		})
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("sweets require authentication", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodGet, "/api/v1/sweets", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestSweetLifecycle(t *testing.T) {
	s, db := newTestServer(t)

	signupAndLogin(t, s, "admin@example.com")
	promoteToAdmin(t, db, "admin@example.com")
	// Tokens carry the admin flag, so log in again after promoting.
	adminToken := signupAndLoginExisting(t, s, "admin@example.com")
	customerToken := signupAndLogin(t, s, "customer@example.com")

	create := gin.H{
		"name":     "Gummy Bears",
		"category": "Gummies",
		"price":    "2.50",
		"quantity": 5,
	}

	t.Run("non-admin cannot create", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/sweets", customerToken, create)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	var created domain.Sweet
	t.Run("admin creates", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/sweets", adminToken, create)
		require.Equal(t, http.StatusCreated, resp.Code)
		decodeJSON(t, resp, &created)
		require.NotZero(t, created.ID)
		require.Equal(t, 5, created.Quantity)
		require.True(t, created.IsAvailable)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/sweets", adminToken, create)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	sweetPath := fmt.Sprintf("/api/v1/sweets/%v", created.ID)

	t.Run("customer purchases two", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, sweetPath+"/purchase", customerToken, gin.H{"amount": 2})
		require.Equal(t, http.StatusOK, resp.Code)

		var sweet domain.Sweet
		decodeJSON(t, resp, &sweet)
		require.Equal(t, 3, sweet.Quantity)
	})

	t.Run("over-purchase fails and stock is untouched", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, sweetPath+"/purchase", customerToken, gin.H{"amount": 10})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		var respErr response.Err
		decodeJSON(t, resp, &respErr)
		require.Equal(t, "insufficient stock", respErr.Msg)

		get := doRequest(t, s, http.MethodGet, sweetPath, customerToken, nil)
		require.Equal(t, http.StatusOK, get.Code)
		var sweet domain.Sweet
		decodeJSON(t, get, &sweet)
		require.Equal(t, 3, sweet.Quantity)
	})

	t.Run("zero amount is a bad request", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, sweetPath+"/purchase", customerToken, gin.H{"amount": 0})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("non-admin cannot restock", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, sweetPath+"/restock", customerToken, gin.H{"amount": 5})
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("admin restocks", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPost, sweetPath+"/restock", adminToken, gin.H{"amount": 5})
		require.Equal(t, http.StatusOK, resp.Code)

		var sweet domain.Sweet
		decodeJSON(t, resp, &sweet)
		require.Equal(t, 8, sweet.Quantity)
	})

	t.Run("admin updates the price", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPut, sweetPath, adminToken, gin.H{"price": "2.75"})
		require.Equal(t, http.StatusOK, resp.Code)

		var sweet domain.Sweet
		decodeJSON(t, resp, &sweet)
		require.Equal(t, "2.75", sweet.Price.String())
		require.Equal(t, "Gummy Bears", sweet.Name)
	})

	t.Run("update with no fields is a bad request", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodPut, sweetPath, adminToken, gin.H{})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("non-admin cannot delete", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodDelete, sweetPath, customerToken, nil)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodDelete, sweetPath, adminToken, nil)
		require.Equal(t, http.StatusNoContent, resp.Code)

		get := doRequest(t, s, http.MethodGet, sweetPath, customerToken, nil)
		require.Equal(t, http.StatusNotFound, get.Code)
	})
}

func TestListSweets_Filters(t *testing.T) {
	s, db := newTestServer(t)

	signupAndLogin(t, s, "admin@example.com")
	promoteToAdmin(t, db, "admin@example.com")
	token := signupAndLoginExisting(t, s, "admin@example.com")

	seed := []gin.H{
		{"name": "Caramel Fudge", "category": "Chocolate", "price": "3.50", "quantity": 10},
		{"name": "Dark Truffle", "category": "Chocolate", "price": "5.00", "quantity": 4},
		{"name": "Gummy Bears", "category": "Gummies", "price": "2.50", "quantity": 5},
	}
	for _, body := range seed {
		resp := doRequest(t, s, http.MethodPost, "/api/v1/sweets", token, body)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	list := func(t *testing.T, query string) []domain.Sweet {
		t.Helper()

		resp := doRequest(t, s, http.MethodGet, "/api/v1/sweets"+query, token, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var sweets []domain.Sweet
		decodeJSON(t, resp, &sweets)

		return sweets
	}

	t.Run("unfiltered listing is ordered by name", func(t *testing.T) {
		sweets := list(t, "")
		require.Len(t, sweets, 3)
		require.Equal(t, "Caramel Fudge", sweets[0].Name)
		require.Equal(t, "Dark Truffle", sweets[1].Name)
		require.Equal(t, "Gummy Bears", sweets[2].Name)
	})

	t.Run("search combines filters conjunctively", func(t *testing.T) {
		sweets := list(t, "/search?category=choc&min_price=4")
		require.Len(t, sweets, 1)
		require.Equal(t, "Dark Truffle", sweets[0].Name)
	})

	t.Run("name match is case-insensitive", func(t *testing.T) {
		sweets := list(t, "?name=GUMMY")
		require.Len(t, sweets, 1)
		require.Equal(t, "Gummy Bears", sweets[0].Name)
	})

	t.Run("inverted price range yields an empty array", func(t *testing.T) {
		sweets := list(t, "?min_price=5&max_price=3")
		require.NotNil(t, sweets)
		require.Empty(t, sweets)
	})

	t.Run("malformed price bound is a bad request", func(t *testing.T) {
		resp := doRequest(t, s, http.MethodGet, "/api/v1/sweets?min_price=abc", token, nil)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
