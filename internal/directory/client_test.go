package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.DirectoryConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test",
		Timeout:   2 * time.Second,
	}, zap.NewNop())
}

func TestClientCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/count", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]int{"total_count": 25})
	})

	count, err := client.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, count)
}

func TestClientListProjectsAndStrips(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`[
            {
                "id": "user_1",
                "first_name": "Ada",
                "last_name": "Lovelace",
                "image_url": "https://img.test/ada.png",
                "primary_email_address_id": "em_2",
                "email_addresses": [
                    {"id": "em_1", "email_address": "old@test.dev"},
                    {"id": "em_2", "email_address": "ada@test.dev"}
                ],
                "external_accounts": [{"provider": "oauth_google", "token": "secret"}],
                "last_sign_in_at": 1700000000000,
                "public_metadata": {"level": 3}
            },
            {
                "id": "user_2",
                "email_addresses": [],
                "public_metadata": {}
            }
        ]`))
	})

	users, err := client.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ada := users[0]
	assert.Equal(t, "user_1", ada.ID)
	assert.Equal(t, "ada@test.dev", ada.Email)
	assert.Equal(t, 3, ada.Level)
	require.NotNil(t, ada.LastSignInAt)
	assert.Equal(t, int64(1700000000), ada.LastSignInAt.Unix())

	// projection carries no email-address internals or external accounts
	raw, err := json.Marshal(ada)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "email_addresses")
	assert.NotContains(t, string(raw), "external_accounts")
	assert.NotContains(t, string(raw), "old@test.dev")

	// absent optional fields fall back to zero values, not a crash
	sparse := users[1]
	assert.Empty(t, sparse.Email)
	assert.Empty(t, sparse.FirstName)
	assert.Nil(t, sparse.LastSignInAt)
	assert.Equal(t, "", sparse.DisplayName())
}

func TestClientListUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.List(context.Background(), 10, 0)
	require.Error(t, err)
}
