// Command smoke exercises a running instance and verifies the response
// envelope contract on the listing endpoints. Intended for post-deploy
// checks; exits non-zero when a critical check fails.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type check struct {
	Method     string
	Path       string
	WantStatus int
	Paginated  bool
	Critical   bool
}

type result struct {
	Check    check
	Status   int
	Duration time.Duration
	Error    error
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalCount int `json:"total_count"`
		PageCount  int `json:"page_count"`
	} `json:"pagination"`
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	checks := []check{
		{Method: http.MethodGet, Path: "/health", WantStatus: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/ready", WantStatus: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/metrics", WantStatus: http.StatusOK},
		{Method: http.MethodGet, Path: prefix + "/courses", WantStatus: http.StatusOK, Paginated: true, Critical: true},
		{Method: http.MethodGet, Path: prefix + "/courses?page=abc&per_page=xyz", WantStatus: http.StatusOK, Paginated: true, Critical: true},
		{Method: http.MethodGet, Path: prefix + "/courses/active", WantStatus: http.StatusOK},
		{Method: http.MethodGet, Path: prefix + "/courses/count", WantStatus: http.StatusOK},
		{Method: http.MethodGet, Path: prefix + "/users", WantStatus: http.StatusOK, Paginated: true},
	}

	client := &http.Client{Timeout: timeout}
	var failed int

	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, c := range checks {
		res := run(client, base, c)
		status := "OK"
		if res.Error != nil {
			status = "FAIL"
			if c.Critical {
				failed++
			}
		}
		fmt.Printf("[%s] %s %s (%d, %s)\n", status, c.Method, c.Path, res.Status, res.Duration)
		if res.Error != nil {
			fmt.Printf("  %v\n", res.Error)
		}
	}

	if failed > 0 {
		fmt.Printf("Critical failures: %d\n", failed)
		os.Exit(1)
	}
}

func run(client *http.Client, base string, c check) result {
	res := result{Check: c}
	url := strings.TrimRight(base, "/") + c.Path

	req, err := http.NewRequest(c.Method, url, nil)
	if err != nil {
		res.Error = err
		return res
	}
	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if resp.StatusCode != c.WantStatus {
		res.Error = fmt.Errorf("want status %d, got %d", c.WantStatus, resp.StatusCode)
		return res
	}
	if !c.Paginated {
		return res
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read body: %w", err)
		return res
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		res.Error = fmt.Errorf("decode envelope: %w", err)
		return res
	}
	if env.Pagination == nil {
		res.Error = fmt.Errorf("missing pagination block")
		return res
	}
	if env.Pagination.Page < 1 || env.Pagination.PerPage < 1 {
		res.Error = fmt.Errorf("pagination not normalized: page=%d per_page=%d", env.Pagination.Page, env.Pagination.PerPage)
		return res
	}
	if env.Pagination.PerPage > 0 {
		want := (env.Pagination.TotalCount + env.Pagination.PerPage - 1) / env.Pagination.PerPage
		if env.Pagination.PageCount != want {
			res.Error = fmt.Errorf("page_count %d inconsistent with total %d / per_page %d", env.Pagination.PageCount, env.Pagination.TotalCount, env.Pagination.PerPage)
		}
	}
	return res
}
