// Package directory talks to the external identity provider that owns user
// records. The provider is a black box: this client only reads, and it
// strips everything the dashboard must not see before a record leaves the
// package.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/pkg/config"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
)

// Client implements the user-directory collaborator over HTTP.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient constructs a directory client from configuration.
func NewClient(cfg config.DirectoryConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

// wire types: the raw provider payload never escapes this package.
type wireEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type wireUser struct {
	ID                    string             `json:"id"`
	FirstName             string             `json:"first_name"`
	LastName              string             `json:"last_name"`
	ImageURL              string             `json:"image_url"`
	PrimaryEmailAddressID string             `json:"primary_email_address_id"`
	EmailAddresses        []wireEmailAddress `json:"email_addresses"`
	ExternalAccounts      []json.RawMessage  `json:"external_accounts"`
	LastSignInAt          *int64             `json:"last_sign_in_at"`
	PublicMetadata        struct {
		Level int `json:"level"`
	} `json:"public_metadata"`
}

// Count returns the total number of users in the directory.
func (c *Client) Count(ctx context.Context) (int, error) {
	var payload struct {
		TotalCount int `json:"total_count"`
	}
	if err := c.get(ctx, "/v1/users/count", nil, &payload); err != nil {
		return 0, err
	}
	return payload.TotalCount, nil
}

// List fetches one window of users and projects each record down to the
// dashboard shape, dropping email-address internals and external accounts.
func (c *Client) List(ctx context.Context, limit, offset int) ([]models.UserProfile, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var users []wireUser
	if err := c.get(ctx, "/v1/users", query, &users); err != nil {
		return nil, err
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, project(u))
	}
	return profiles, nil
}

func project(u wireUser) models.UserProfile {
	profile := models.UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
		Level:     u.PublicMetadata.Level,
	}
	for _, email := range u.EmailAddresses {
		if email.ID == u.PrimaryEmailAddressID {
			profile.Email = email.EmailAddress
			break
		}
	}
	if u.LastSignInAt != nil {
		t := time.UnixMilli(*u.LastSignInAt).UTC()
		profile.LastSignInAt = &t
	}
	return profile
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directory request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("directory call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode),
			appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "directory request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}
