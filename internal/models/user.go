package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserProfile is the read-only projection of a directory user exposed to
// the dashboard. The directory's raw email-address list and external
// accounts never cross this boundary; only the derived primary email and
// display fields survive. Absent optional fields are empty strings.
type UserProfile struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	ImageURL     string     `json:"image_url"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	Level        int        `json:"level"`
}

// DisplayName joins the name parts, tolerating either being absent.
func (u UserProfile) DisplayName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return ""
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SystemMetrics is the aggregated runtime snapshot served next to the
// Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// AdminClaims are the JWT claims carried by dashboard admin tokens.
type AdminClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
