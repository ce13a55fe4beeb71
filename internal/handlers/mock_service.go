package handlers

import (
	"context"
	"net/http"
	"sync"

	"user_service/internal/credentials"
	"user_service/internal/models"
	"user_service/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginRes    models.AuthResult
	loginErr    error
	parseClaims credentials.Claims
	parseErr    error

	lastLoginEmail    string
	lastLoginPassword string
	lastParseToken    string
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	m.lastLoginEmail = email
	m.lastLoginPassword = password
	return m.loginRes, m.loginErr
}
func (m *mockAuth) ParseToken(token string) (credentials.Claims, error) {
	m.lastParseToken = token
	return m.parseClaims, m.parseErr
}

type mockRegistration struct {
	res   models.AuthResult
	err   error
	calls int
	last  service.RegisterInput
}

func (m *mockRegistration) RegisterUser(ctx context.Context, in service.RegisterInput) (models.AuthResult, error) {
	m.calls++
	m.last = in
	return m.res, m.err
}

type mockUsers struct {
	listResp  []models.PublicUser
	listErr   error
	getResp   models.PublicUser
	getErr    error
	createRes models.AuthResult
	createErr error
	updResp   models.PublicUser
	updErr    error
	delErr    error

	lastID    int
	lastPatch models.UserPatch
	lastIn    service.RegisterInput
}

func (m *mockUsers) List(ctx context.Context) ([]models.PublicUser, error) {
	return m.listResp, m.listErr
}
func (m *mockUsers) Get(ctx context.Context, id int) (models.PublicUser, error) {
	m.lastID = id
	return m.getResp, m.getErr
}
func (m *mockUsers) Create(ctx context.Context, in service.RegisterInput) (models.AuthResult, error) {
	m.lastIn = in
	return m.createRes, m.createErr
}
func (m *mockUsers) Update(ctx context.Context, id int, p models.UserPatch) (models.PublicUser, error) {
	m.lastID = id
	m.lastPatch = p
	return m.updResp, m.updErr
}
func (m *mockUsers) Delete(ctx context.Context, id int) error {
	m.lastID = id
	return m.delErr
}

type mockEventLog struct {
	mu      sync.Mutex
	resp    []models.UserEvent
	err     error
	calls   int
	filters []service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.UserEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.filters = append(m.filters, f)
	return m.resp, m.err
}

func (m *mockEventLog) last() service.LogFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.filters) == 0 {
		return service.LogFilter{}
	}
	return m.filters[len(m.filters)-1]
}

// ---- Shared Test Helpers ----

func validAuth() *mockAuth {
	return &mockAuth{parseClaims: credentials.Claims{UserID: 99, Email: "admin@x.io"}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
