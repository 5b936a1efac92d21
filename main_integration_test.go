// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build integration

/*
To run these tests, specify `-tags=integration` when running `go test`.
*/
package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	// Server configuration constants.
	host      = "127.0.0.1:8393"
	authority = "http://127.0.0.1:8393"

	// Polling constants.
	retryCount  = 10
	dialTimeout = 250 * time.Millisecond
)

// httpTestCase defines a test case.
type httpTestCase struct {
	URL                string
	Method             string
	ExpectedStatusCode int
	ExpectedText       string

	// POST requests specific fields
	FormData map[string]string
	JSONBody string
}

// setDefault sets the default values for the test case.
func (c *httpTestCase) setDefault() {
	if c.ExpectedStatusCode == 0 {
		c.ExpectedStatusCode = http.StatusOK
	}

	if c.Method == "" {
		c.Method = http.MethodGet
	}
}

// TestMain starts the server and waits for it to be available before running tests.
func TestMain(m *testing.M) {
	os.Setenv("LANGCAT_HOST", "127.0.0.1")
	os.Setenv("LANGCAT_PORT", "8393")
	os.Setenv("LANGCAT_CATALOG_DIR", "")
	os.Setenv("LANGCAT_LOG_LEVEL", "warn")

	go func() {
		if err := run(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if !waitForServerReady() {
		log.Fatalf("Server did not start in time")
	}

	os.Exit(m.Run())
}

// waitForServerReady polls the server until it's available or the retries are exhausted.
func waitForServerReady() bool {
	for range retryCount {
		conn, err := net.DialTimeout("tcp", host, dialTimeout)
		if err == nil {
			_ = conn.Close()

			return true
		}

		time.Sleep(dialTimeout)
	}

	return false
}

func TestBasicAllRoutes(t *testing.T) {
	t.Parallel()

	testCases := []httpTestCase{
		{URL: "/healthz"},
		{URL: "/languages"},
		{URL: "/language"},
		{URL: "/resolve/english/Errors/no_access", ExpectedText: "You are not allowed to access this section"},
		{
			URL:          "/resolve/english/Errors/email_in_use?arg=bob@example.com",
			ExpectedText: "That email address (bob@example.com) is already being used by a registered member. If you feel this is a mistake, go to the login page and use the password reminder with that address.",
		},
		{URL: "/resolve/english/EmailTemplates/admin_notify_subject", ExpectedText: "A new member has joined"},
		{
			URL:          "/resolve/english/Errors/ban_trigger_already_exists?arg=192.168.0.1&arg=MyBan",
			ExpectedText: "This ban trigger (192.168.0.1) already exists in MyBan.",
		},
		{URL: "/resolve/klingon/Errors/no_access", ExpectedStatusCode: http.StatusNotFound},
		{URL: "/resolve/english/Errors/nope", ExpectedStatusCode: http.StatusNotFound},
		{URL: "/resolve/english/Errors/email_in_use", ExpectedStatusCode: http.StatusUnprocessableEntity},
		{
			URL:          "/resolve",
			Method:       http.MethodPost,
			JSONBody:     `{"language":"french-utf8","domain":"Profile","key":"profile_of_username","args":["Alice"]}`,
			ExpectedText: "Profil de Alice",
		},
		{
			URL:      "/language",
			Method:   http.MethodPost,
			FormData: map[string]string{"lang": "french"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Method+" "+tc.URL, func(t *testing.T) {
			t.Parallel()

			tc.setDefault()
			runTest(t, tc)
		})
	}
}

func runTest(t *testing.T, tc httpTestCase) {
	t.Helper()

	var (
		req *http.Request
		err error
	)

	switch {
	case tc.FormData != nil:
		form := url.Values{}
		for k, v := range tc.FormData {
			form.Set(k, v)
		}

		req, err = http.NewRequest(tc.Method, authority+tc.URL, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	case tc.JSONBody != "":
		req, err = http.NewRequest(tc.Method, authority+tc.URL, strings.NewReader(tc.JSONBody))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		req, err = http.NewRequest(tc.Method, authority+tc.URL, nil)
	}

	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != tc.ExpectedStatusCode {
		t.Errorf("Expected status code %d, got %d", tc.ExpectedStatusCode, resp.StatusCode)
	}

	if tc.ExpectedText == "" {
		return
	}

	var body struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Text != tc.ExpectedText {
		t.Errorf("Expected text %q, got %q", tc.ExpectedText, body.Text)
	}
}
