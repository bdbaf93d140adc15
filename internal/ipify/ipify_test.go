package ipify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netchat/netchat/internal/models"
)

func TestPublicIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer srv.Close()

	ip, err := NewClient(srv.URL).PublicIP(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestPublicIP_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status":    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"malformed": func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`not json`)) },
		"bad ip":    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ip":"nope"}`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := NewClient(srv.URL).PublicIP(t.Context())
			var netErr *models.NetworkError
			require.True(t, errors.As(err, &netErr))
		})
	}
}

func TestStatic(t *testing.T) {
	ip, err := Static("198.51.100.1").PublicIP(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.1", ip)
}
