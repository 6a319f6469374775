package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthledger/hearth/internal/http/auth"
)

func TestMiddleware(t *testing.T) {
	const secret = "s3cret"

	valid, err := auth.Issue(secret, "user-1", time.Hour)
	require.NoError(t, err)

	expired, err := auth.Issue(secret, "user-1", -time.Minute)
	require.NoError(t, err)

	foreign, err := auth.Issue("other", "user-1", time.Hour)
	require.NoError(t, err)

	type testCase struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantUser   string
	}

	tests := []testCase{
		{name: "Valid token", secret: secret, header: "Bearer " + valid, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "Missing token", secret: secret, wantStatus: http.StatusUnauthorized},
		{name: "Expired token", secret: secret, header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "Wrong key", secret: secret, header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "Disabled", secret: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := auth.Middleware(tt.secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, auth.UserID(r.Context()))
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, rec.Body.String())
			}
		})
	}
}
