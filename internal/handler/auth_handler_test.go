package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
)

type authServiceMock struct {
	loginResp    *models.LoginResponse
	loginErr     error
	registerResp *models.UserInfo
	registerErr  error
	verifyErr    error
	verifiedID   string
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	return m.registerResp, m.registerErr
}

func (m *authServiceMock) VerifySupplier(ctx context.Context, supplierID string) error {
	m.verifiedID = supplierID
	return m.verifyErr
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{loginResp: &models.LoginResponse{AccessToken: "token"}}
	h := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.LoginRequest{Email: "school@example.com", Password: "password"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "token", body.Data.AccessToken)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{loginErr: appErrors.ErrInvalidCredentials}
	h := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.LoginRequest{Email: "school@example.com", Password: "wrong"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{registerResp: &models.UserInfo{ID: "user-1", Verified: false}}
	h := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.RegisterRequest{
		Email:    "supplier@example.com",
		Password: "password123",
		FullName: "CV Sumber Pangan",
		Role:     string(models.RoleSupplier),
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{registerErr: appErrors.Clone(appErrors.ErrConflict, "email already registered")}
	h := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		FullName: "Dup",
		Role:     string(models.RoleSupplier),
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerVerifySupplier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{}
	h := NewAuthHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/suppliers/supplier-1/verify", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "supplier-1"}}

	h.VerifySupplier(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "supplier-1", mockSvc.verifiedID)
}

func TestAuthHandlerVerifySupplierNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{verifyErr: appErrors.Clone(appErrors.ErrNotFound, "supplier not found")}
	h := NewAuthHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/suppliers/missing/verify", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.VerifySupplier(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
