package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func signTestToken(secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "dispatcher",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(secret))
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"

	tests := map[string]struct {
		secret         string
		authorization  string
		expectedStatus int
	}{
		"DisabledWithoutSecret": {
			secret:         "",
			authorization:  "",
			expectedStatus: http.StatusOK,
		},
		"MissingToken": {
			secret:         secret,
			authorization:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		"MalformedHeader": {
			secret:         secret,
			authorization:  "Basic abc123",
			expectedStatus: http.StatusUnauthorized,
		},
		"WrongSecret": {
			secret:         secret,
			authorization:  "Bearer " + signTestToken("other-secret"),
			expectedStatus: http.StatusUnauthorized,
		},
		"ValidToken": {
			secret:         secret,
			authorization:  "Bearer " + signTestToken(secret),
			expectedStatus: http.StatusOK,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			handler := AuthMiddleware(tc.secret)(okHandler())

			req := httptest.NewRequest("GET", "/api/callbacks/due", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}

func TestValidationMiddleware(t *testing.T) {
	handler := ValidationMiddleware(okHandler())

	tests := map[string]struct {
		method         string
		contentType    string
		expectedStatus int
	}{
		"GetWithoutContentType":  {"GET", "", http.StatusOK},
		"PostJSON":               {"POST", "application/json", http.StatusOK},
		"PostJSONWithCharset":    {"POST", "application/json; charset=utf-8", http.StatusOK},
		"PostForm":               {"POST", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		"PostWithoutContentType": {"POST", "", http.StatusOK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/webhooks/call-outcome", nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware(okHandler())

	req := httptest.NewRequest("OPTIONS", "/api/contacts/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
