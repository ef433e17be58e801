package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/tanda/internal/models"
	"github.com/mmynk/tanda/internal/service"
	"github.com/mmynk/tanda/internal/storage/jsonfile"
	"github.com/mmynk/tanda/internal/tips"
)

// setupTestServer wires the full stack: JSON-file store, service, chi
// router, real handlers.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "groups.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	svc, err := service.NewGroupService(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	router := chi.NewRouter()
	NewHandler(svc, tips.New("")).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func createGroup(t *testing.T, base string) models.Group {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, base+"/api/groups", createGroupRequest{
		Name:               "Office Tanda",
		ContributionAmount: 100,
		Members: []models.Member{
			{ID: "m1", Name: "Amara"},
			{ID: "m2", Name: "Bola"},
			{ID: "m3", Name: "Chidi"},
		},
		PayoutOrder: []string{"m2", "m1", "m3"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var g models.Group
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	return g
}

func TestCreateGroupEndpoint(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)

	if g.ID == "" {
		t.Error("expected non-empty group id")
	}
	if g.Status != models.StatusPending {
		t.Errorf("status: expected Pending, got %s", g.Status)
	}
	if len(g.Rounds) != 1 || len(g.Rounds[0].Payments) != 3 {
		t.Errorf("expected round 1 with 3 payments, got %+v", g.Rounds)
	}
}

func TestCreateGroup_ValidationMapsTo400(t *testing.T) {
	server := setupTestServer(t)

	resp, data := doJSON(t, http.MethodPost, server.URL+"/api/groups", createGroupRequest{
		Name:               "Too Small",
		ContributionAmount: 100,
		Members:            []models.Member{{ID: "m1", Name: "Solo"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", resp.StatusCode, data)
	}
}

func TestGroupNotFoundMapsTo404(t *testing.T) {
	server := setupTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/groups/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestFullCycleOverHTTP(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)
	base := fmt.Sprintf("%s/api/groups/%s", server.URL, g.ID)

	// Premature payout: 412.
	resp, _ := doJSON(t, http.MethodPost, base+"/payout", nil)
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Errorf("early payout: expected 412, got %d", resp.StatusCode)
	}

	for round := 1; round <= 3; round++ {
		for _, memberID := range []string{"m1", "m2", "m3"} {
			resp, data := doJSON(t, http.MethodPost, base+"/payments", recordPaymentRequest{MemberID: memberID})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("round %d payment for %s: expected 200, got %d: %s", round, memberID, resp.StatusCode, data)
			}
		}

		resp, data := doJSON(t, http.MethodPost, base+"/payout", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("round %d payout: expected 200, got %d: %s", round, resp.StatusCode, data)
		}

		resp, data = doJSON(t, http.MethodPost, base+"/advance", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("round %d advance: expected 200, got %d: %s", round, resp.StatusCode, data)
		}
		var after models.Group
		if err := json.Unmarshal(data, &after); err != nil {
			t.Fatalf("decode group: %v", err)
		}
		if round < 3 && after.CurrentRound != round+1 {
			t.Errorf("after round %d: expected current round %d, got %d", round, round+1, after.CurrentRound)
		}
		if round == 3 && after.Status != models.StatusCompleted {
			t.Errorf("after final round: expected Completed, got %s", after.Status)
		}
	}

	// Recording against the completed group: 409.
	resp, _ = doJSON(t, http.MethodPost, base+"/payments", recordPaymentRequest{MemberID: "m1"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("payment on completed group: expected 409, got %d", resp.StatusCode)
	}

	// Reset is allowed now that the cycle completed.
	resp, data := doJSON(t, http.MethodPost, base+"/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", resp.StatusCode, data)
	}
	var reset models.Group
	if err := json.Unmarshal(data, &reset); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	if reset.Status != models.StatusPending || reset.CurrentRound != 1 {
		t.Errorf("reset left group at %s round %d", reset.Status, reset.CurrentRound)
	}
}

func TestResetPolicyMapsTo409(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)

	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/groups/%s/reset", server.URL, g.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for reset on pending group, got %d", resp.StatusCode)
	}
}

func TestRosterEndpoints(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)
	base := fmt.Sprintf("%s/api/groups/%s", server.URL, g.ID)

	resp, data := doJSON(t, http.MethodPost, base+"/members", addMemberRequest{Name: "Dayo", Phone: "+234-800-0004"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add member: expected 200, got %d: %s", resp.StatusCode, data)
	}
	var after models.Group
	if err := json.Unmarshal(data, &after); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	if len(after.Members) != 4 {
		t.Errorf("expected 4 members, got %d", len(after.Members))
	}
	if after.Status != models.StatusPending || len(after.Rounds) != 1 {
		t.Error("roster edit did not reset the group")
	}

	resp, data = doJSON(t, http.MethodDelete, base+"/members/m1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove member: expected 200, got %d: %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, &after); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	if len(after.Members) != 3 {
		t.Errorf("expected 3 members after removal, got %d", len(after.Members))
	}
	for _, m := range after.Members {
		if m.ID == "m1" {
			t.Error("m1 still present after removal")
		}
	}
}

func TestPayoutOrderEndpoint(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)
	base := fmt.Sprintf("%s/api/groups/%s", server.URL, g.ID)

	resp, data := doJSON(t, http.MethodPut, base+"/payout-order", payoutOrderRequest{
		Order: []string{"m3", "m2", "m1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set payout order: expected 200, got %d: %s", resp.StatusCode, data)
	}

	// Not a permutation: 400.
	resp, _ = doJSON(t, http.MethodPut, base+"/payout-order", payoutOrderRequest{
		Order: []string{"m3", "m2"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short order, got %d", resp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)

	resp, data := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/groups/%s/export", server.URL, g.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: expected text/csv, got %s", ct)
	}
	out := string(data)
	for _, want := range []string{"Office Tanda", "Amara", "section,rounds"} {
		if !strings.Contains(out, want) {
			t.Errorf("csv missing %q", want)
		}
	}
}

func TestTipEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp, data := doJSON(t, http.MethodGet, server.URL+"/api/tip", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tip: expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode tip: %v", err)
	}
	if body["tip"] == "" {
		t.Error("expected a non-empty tip")
	}
}

func TestListAndDeleteEndpoints(t *testing.T) {
	server := setupTestServer(t)
	g := createGroup(t, server.URL)

	resp, data := doJSON(t, http.MethodGet, server.URL+"/api/groups", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var groups []models.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g.ID {
		t.Errorf("expected [%s], got %+v", g.ID, groups)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/groups/%s", server.URL, g.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/groups/%s", server.URL, g.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}
