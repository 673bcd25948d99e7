package handler_test

import (
	"net/http"
	"testing"
)

func TestAPI_RequiresToken(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)
	if code := errorCode(t, resp); code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %s", code)
	}
}

func TestAPI_RejectsForeignToken(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs", "", map[string]string{
		"Authorization": "Bearer not-a-jwt",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestAuthToken_IssuesUsableToken(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/auth/token", `{"userId":"OP-01"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	token, _ := result["token"].(string)
	if token == "" {
		t.Fatal("expected 'token' in response")
	}
	user, _ := result["user"].(map[string]interface{})
	if user["role"] != "OPERATOR" {
		t.Errorf("expected OPERATOR user, got %v", user["role"])
	}

	resp, err = doRequest(ta.app, http.MethodGet, "/api/users", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
}

func TestAuthToken_UnknownUser(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/auth/token", `{"userId":"NOBODY"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestAuthToken_MissingUserID(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/auth/token", `{}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestUsers_CreateRequiresAdmin(t *testing.T) {
	ta := setupApp(t)

	resp := ta.doAuthRequest(t, "ADMIN-01", http.MethodPost, "/api/users", `{"name":"New Hire","role":"OPERATOR"}`)
	assertStatus(t, resp, http.StatusForbidden)
}
