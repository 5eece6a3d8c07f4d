//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"league-app-go/internal/config"
	"league-app-go/internal/db"
	"league-app-go/internal/domain/authz"
	editrequestdomain "league-app-go/internal/domain/editrequest"
	leaguedomain "league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	relationshipdomain "league-app-go/internal/domain/relationship"
	userdomain "league-app-go/internal/domain/user"
	"league-app-go/internal/events"
	"league-app-go/internal/lock"
	"league-app-go/internal/repository/relational"
	"league-app-go/internal/transport/httpserver"
	"league-app-go/internal/transport/httpserver/handler"
	"league-app-go/pkg/logger"
)

type testEnv struct {
	server     *httptest.Server
	authServer *httptest.Server
	db         *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	authServer := newAuthServer(t)
	log := logger.Nop()

	cfg := config.Config{
		ApprovalCounting: "sides",
		DB:               config.DBConfig{Driver: config.DriverPostgres, DSN: dsn},
		Supabase: config.SupabaseConfig{
			URL:            authServer.URL,
			PublishableKey: "test-key",
			AuthTimeout:    2 * time.Second,
		},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	policies, err := policy.Default()
	if err != nil {
		t.Fatalf("policies: %v", err)
	}
	store := relational.NewStore(dbConn)
	resolver := authz.NewResolver(policies)
	userService := userdomain.NewService(store.Users())
	relationshipService := relationshipdomain.NewService(store.Relationships(), relationshipdomain.Deps{
		Resolver:  resolver,
		Locker:    lock.NewLocal(),
		Publisher: events.Noop{},
		Log:       log,
	})
	editRequestService := editrequestdomain.NewService(store.EditRequests(), editrequestdomain.Deps{
		Policies:      policies,
		Resolver:      resolver,
		Relationships: relationshipService,
		Publisher:     events.Noop{},
		Log:           log,
		Counting:      editrequestdomain.ParseCounting(cfg.ApprovalCounting),
	})
	handlers := handler.New(handler.Services{
		Users:         userService,
		League:        leaguedomain.NewService(store.League()),
		Relationships: relationshipService,
		EditRequests:  editRequestService,
		Policies:      policies,
	}, log)

	router := httpserver.NewRouter(cfg, handlers, userService, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: authServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":    token,
			"email": token + "@example.com",
			"user_metadata": map[string]interface{}{
				"name":       "User " + token,
				"avatar_url": "https://example.com/avatar.png",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE edit_requests, relationship_events, relationships, player_match_stats, team_match_stats, match_sets, matches, competitions, players, teams, user_profiles",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type entityResponse struct {
	ID string `json:"id"`
}

type relationshipResponse struct {
	ID      string  `json:"id"`
	State   string  `json:"state"`
	Active  bool    `json:"active"`
	Role    *string `json:"role"`
	ValidTo *string `json:"valid_to"`
}

type editRequestResponse struct {
	ID                         string   `json:"id"`
	State                      string   `json:"state"`
	RequiresDoubleConfirmation bool     `json:"requires_double_confirmation"`
	ApprovedBy                 []string `json:"approved_by"`
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", errResp.Error.Code)
	}

	userID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", userID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var me authMeResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != userID || me.Email != userID+"@example.com" {
		t.Fatalf("unexpected identity %+v", me)
	}
	if me.Role != "user" {
		t.Fatalf("expected role user, got %q", me.Role)
	}
}

func TestE2EContractDoubleConfirmation(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL + "/api"

	teamOwner := "11111111-1111-1111-1111-111111111111"
	teamCoach := "33333333-3333-3333-3333-333333333333"
	playerAgent := "22222222-2222-2222-2222-222222222222"

	resp, body := requestJSON(t, client, http.MethodPost, base+"/teams", teamOwner, map[string]string{"name": "Tigers"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var team entityResponse
	if err := json.Unmarshal(body, &team); err != nil {
		t.Fatalf("decode team: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/teams/"+team.ID+"/administrators", teamOwner, map[string]string{"user_id": teamCoach})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add administrator: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/players", playerAgent, map[string]string{"name": "Ana"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create player: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var player entityResponse
	if err := json.Unmarshal(body, &player); err != nil {
		t.Fatalf("decode player: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/relationships", teamOwner, map[string]interface{}{
		"kind":       "team_player",
		"owner_a_id": team.ID,
		"owner_b_id": player.ID,
		"origin":     "ownerA",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("request relationship: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var rel relationshipResponse
	if err := json.Unmarshal(body, &rel); err != nil {
		t.Fatalf("decode relationship: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/relationships/"+rel.ID+"/approve", playerAgent, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/relationships", teamOwner, map[string]interface{}{
		"kind":       "team_player",
		"owner_a_id": team.ID,
		"owner_b_id": player.ID,
		"origin":     "ownerA",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate request: expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/edit-requests", teamOwner, map[string]interface{}{
		"change_type":   "teamPlayerContract",
		"target_id":     rel.ID,
		"proposed_data": map[string]string{"role": "captain"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create edit request: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var req editRequestResponse
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decode edit request: %v", err)
	}
	if !req.RequiresDoubleConfirmation {
		t.Fatalf("role is a critical field, expected double confirmation")
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/edit-requests/"+req.ID+"/decision", playerAgent, map[string]string{"decision": "accept"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("player decision: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decode edit request: %v", err)
	}
	if req.State != "pending" {
		t.Fatalf("expected pending after one side, got %q", req.State)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/edit-requests/"+req.ID+"/decision", teamCoach, map[string]string{"decision": "accept"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("coach decision: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decode edit request: %v", err)
	}
	if req.State != "accepted" {
		t.Fatalf("expected accepted after both sides, got %q", req.State)
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/relationships/"+rel.ID, teamOwner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get relationship: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &rel); err != nil {
		t.Fatalf("decode relationship: %v", err)
	}
	if rel.Role == nil || *rel.Role != "captain" {
		t.Fatalf("expected role captain, got %v", rel.Role)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/edit-requests", playerAgent, map[string]interface{}{
		"change_type":   "relationshipEnd",
		"target_id":     rel.ID,
		"proposed_data": map[string]string{"reason": "transfer"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create end request: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decode edit request: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/edit-requests/"+req.ID+"/decision", teamOwner, map[string]string{"decision": "accept"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end decision: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/relationships/"+rel.ID, teamOwner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get relationship: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &rel); err != nil {
		t.Fatalf("decode relationship: %v", err)
	}
	if rel.State != "ended" || rel.Active {
		t.Fatalf("expected ended inactive relationship, got %+v", rel)
	}
}
