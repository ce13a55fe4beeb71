package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"user_service/internal/models"
	"user_service/internal/repository"
	"user_service/internal/service"
)

func postJSON(r http.Handler, path, body string, hdr http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandlers_RegisterAndLogin(t *testing.T) {
	res := models.AuthResult{User: models.PublicUser{ID: 42, Email: "u@x.io", Name: "u"}, Token: "tok123"}
	reg := &mockRegistration{res: res}
	auth := &mockAuth{loginRes: res}
	s := &service.Service{Registration: reg, Authorization: auth}
	r := newTestRouter(s)

	// register success
	w := postJSON(r, "/auth/register", `{"email":"u@x.io","name":"u","password":"longenough"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status=%d, body=%s", w.Code, w.Body.String())
	}
	var out models.AuthResult
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.User.ID != 42 || out.Token != "tok123" {
		t.Fatalf("unexpected register response: %+v", out)
	}
	if reg.last.Email != "u@x.io" || reg.last.Password != "longenough" {
		t.Fatalf("service got %+v", reg.last)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("response mentions password: %s", w.Body.String())
	}

	// login success
	w = postJSON(r, "/auth/login", `{"email":"u@x.io","password":"longenough"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d, body=%s", w.Code, w.Body.String())
	}
	out = models.AuthResult{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Token != "tok123" {
		t.Fatalf("expected token tok123, got %v", out.Token)
	}
	if auth.lastLoginEmail != "u@x.io" {
		t.Fatalf("login got email %q", auth.lastLoginEmail)
	}

	// login invalid body → 400
	w = postJSON(r, "/auth/login", `{"email":1}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestRegister_ValidationDetails(t *testing.T) {
	reg := &mockRegistration{}
	r := newTestRouter(&service.Service{Registration: reg})

	w := postJSON(r, "/auth/register", `{"email":"not-an-email","password":"short"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error != errInvalidBody {
		t.Fatalf("error=%q", out.Error)
	}
	for _, field := range []string{"email", "name", "password"} {
		if out.Details[field] == "" {
			t.Fatalf("missing detail for %q: %+v", field, out.Details)
		}
	}
	if reg.calls != 0 {
		t.Fatalf("service must not be called on invalid input")
	}

	w = postJSON(r, "/auth/register", `{not json`, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if w.Code != http.StatusBadRequest || out.Details["payload"] == "" {
		t.Fatalf("malformed json: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRegister_PasswordLengthCountsBytes(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantCode int
	}{
		{"36 two-byte runes is 72 bytes", strings.Repeat("é", 36), http.StatusCreated},
		{"40 two-byte runes is 80 bytes", strings.Repeat("é", 40), http.StatusBadRequest},
		{"4 two-byte runes is 8 bytes", strings.Repeat("é", 4), http.StatusCreated},
		{"7 ascii bytes", "1234567", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := &mockRegistration{}
			r := newTestRouter(&service.Service{Registration: reg})
			w := postJSON(r, "/auth/register", `{"email":"u@x.io","name":"u","password":"`+tc.password+`"}`, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode == http.StatusBadRequest && reg.calls != 0 {
				t.Fatalf("service must not be called for a rejected password")
			}
		})
	}
}

func TestRegister_ErrorKinds(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "conflict",
			err:      &service.RegistrationError{Kind: service.KindConflict, Err: repository.ErrConflict},
			wantCode: http.StatusConflict,
			wantMsg:  errEmailTaken,
		},
		{
			name:     "validation",
			err:      &service.RegistrationError{Kind: service.KindValidation, Err: errBoom},
			wantCode: http.StatusBadRequest,
			wantMsg:  errInvalidBody,
		},
		{
			name:     "crypto",
			err:      &service.RegistrationError{Kind: service.KindCrypto, Err: errBoom},
			wantCode: http.StatusInternalServerError,
			wantMsg:  errRegister,
		},
		{
			name:     "store",
			err:      &service.RegistrationError{Kind: service.KindStore, Err: errBoom},
			wantCode: http.StatusInternalServerError,
			wantMsg:  errRegister,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Registration: &mockRegistration{err: tc.err}})
			w := postJSON(r, "/auth/register", `{"email":"u@x.io","name":"u","password":"longenough"}`, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d want %d", w.Code, tc.wantCode)
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.wantMsg {
				t.Fatalf("error: got %q want %q", out.Error, tc.wantMsg)
			}
			if bytes.Contains(w.Body.Bytes(), []byte("boom")) {
				t.Fatalf("internal cause leaked: %s", w.Body.String())
			}
		})
	}
}

func TestLogin_Errors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"internal", errBoom, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{loginErr: tc.err}})
			w := postJSON(r, "/auth/login", `{"email":"u@x.io","password":"x"}`, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d want %d", w.Code, tc.wantCode)
			}
		})
	}
}
