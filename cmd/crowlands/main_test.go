package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crowlands/crowlands/internal/config"
	"github.com/crowlands/crowlands/internal/session"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/domain"
)

// harness runs the CLI against a fake API with a throwaway home directory.
type harness struct {
	t       *testing.T
	mux     *http.ServeMux
	store   *session.Store
	opened  []string
	openErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv(session.EnvHome, home)
	t.Setenv(session.EnvToken, "")
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvWebURL, "https://crowlands.example")
	return &harness{t: t, mux: mux, store: session.New(home)}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var buf bytes.Buffer
	root := newRootCmd(&cli{open: func(url string) error {
		h.opened = append(h.opened, url)
		return h.openErr
	}})
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	if err := h.store.SaveLogin(domain.AuthResponse{
		Token: "tok-1",
		User:  domain.User{ID: "u-1", Email: "wren@example.com", Name: "Wren", SubscriptionTier: domain.TierPaid},
	}); err != nil {
		h.t.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "crowlands dev" {
		t.Errorf("out = %q", out)
	}
}

func TestFirstRunWritesConfig(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("", "version"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(h.store.Dir(), config.FileName)); err != nil {
		t.Errorf("config not created: %v", err)
	}
}

func TestHelpListsCommands(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"C R O W L A N D S", "crowlands cast", "crowlands grimoire", "crowlands login"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestLoginSavesSession(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["email"] != "wren@example.com" || body["password"] != "hunter2" {
			t.Errorf("credentials = %v", body)
		}
		writeJSON(w, http.StatusOK, domain.AuthResponse{
			Token: "tok-new",
			User:  domain.User{ID: "u-1", Email: "wren@example.com", SubscriptionTier: domain.TierFree},
		})
	})

	out, err := h.run("wren@example.com\nhunter2\n", "login")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in as wren@example.com") {
		t.Errorf("out = %q", out)
	}
	if got := h.store.Token(); got != "tok-new" {
		t.Errorf("token = %q", got)
	}
	if u, _ := h.store.CachedUser(); u == nil || u.Email != "wren@example.com" {
		t.Errorf("cached user = %+v", u)
	}
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})

	out, err := h.run("hunter3\n", "login", "--email", "wren@example.com")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "do not match") {
		t.Errorf("out = %q", out)
	}
	if h.store.HasToken() {
		t.Error("a rejected login must not save a token")
	}
}

func TestRegisterPasswordsMustMatch(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("one\ntwo\n", "register", "--email", "wren@example.com")
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Errorf("err = %v", err)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("", "logout")
	if err != nil || !strings.Contains(out, "Logged out.") {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if h.store.HasToken() {
		t.Error("token should be gone")
	}

	out, _ = h.run("", "logout")
	if !strings.Contains(out, "Already logged out.") {
		t.Errorf("second logout = %q", out)
	}
}

func TestWhoamiLoggedOutGreets(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "crowlands login") {
		t.Errorf("out = %q", out)
	}
}

func TestWhoamiShowsUsage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		writeJSON(w, http.StatusOK, domain.User{ID: "u-1", Email: "wren@example.com", Name: "Wren", SubscriptionTier: domain.TierFree})
	})
	h.mux.HandleFunc("GET /api/subscriptions/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SubscriptionStatus{SubscriptionTier: domain.TierFree, SpellsUsed: 1, SpellLimit: 3, SpellsRemaining: 2, TotalSpellsGenerated: 5})
	})

	out, err := h.run("", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Wren <wren@example.com>", "free", "1 of 3 spells used · 2 left", "5 cast in total"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if u, _ := h.store.CachedUser(); u == nil || u.SubscriptionTier != domain.TierFree {
		t.Errorf("cache should follow the server, got %+v", u)
	}
}

func TestWhoamiOfflineUsesCacheWithoutTier(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "down"})
	})

	out, err := h.run("", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "wren@example.com") || !strings.Contains(out, "tier unknown") {
		t.Errorf("out = %q", out)
	}
	if strings.Contains(out, domain.TierPaid) {
		t.Errorf("the cached tier must not be shown as fact:\n%s", out)
	}
}

func TestEmailChange(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mux.HandleFunc("PATCH /api/users/me/email", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["current_password"] != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad password"})
			return
		}
		writeJSON(w, http.StatusOK, domain.User{ID: "u-1", Email: body["new_email"]})
	})

	out, err := h.run("hunter2\n", "email", "rook@example.com")
	if err != nil || !strings.Contains(out, "Your email is now rook@example.com") {
		t.Fatalf("out = %q, err = %v", out, err)
	}

	out, err = h.run("wrong\n", "email", "rook@example.com")
	if !errors.Is(err, errShown) || !strings.Contains(out, "password is not right") {
		t.Errorf("out = %q, err = %v", out, err)
	}
}

func spellResponse() map[string]any {
	return map[string]any{
		"spell": map[string]any{
			"title": "Hearth Charm",
			"steps": []map[string]any{{"number": 1, "title": "Sweep", "instruction": "Sweep the threshold inward."}},
		},
		"archetype":  map[string]string{"id": "maud", "name": "Maud Ashgrove", "title": "The Hedge Witch"},
		"limit_info": map[string]int{"spells_used": 1, "spell_limit": 3, "spells_remaining": 2},
	}
}

func TestCastPrintsSpell(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveGuide("maud"); err != nil {
		t.Fatal(err)
	}
	var got domain.SpellRequest
	h.mux.HandleFunc("POST /api/ai/generate-spell", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		writeJSON(w, http.StatusOK, spellResponse())
	})
	h.mux.HandleFunc("GET /api/subscriptions/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SubscriptionStatus{SubscriptionTier: domain.TierFree})
	})

	out, err := h.run("", "cast", "a", "warm", "house")
	if err != nil {
		t.Fatalf("cast: %v\n%s", err, out)
	}
	if got.IntentionText != "a warm house" || got.GuideID != "maud" {
		t.Errorf("request = %+v", got)
	}
	for _, want := range []string{workflow.MsgSpellReady, "# Hearth Charm", "Sweep the threshold inward.", "2 of 3 spells left", "Maud Ashgrove"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestCastEmptyIntentionMakesNoCall(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { calls++ })

	out, err := h.run("", "cast", "   ")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, workflow.MsgEmptyIntention) {
		t.Errorf("out = %q", out)
	}
	if calls != 0 {
		t.Errorf("expected no network calls, got %d", calls)
	}
}

func TestCastUnknownGuide(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "cast", "--guide", "morgana", "anything")
	if err == nil || !strings.Contains(err.Error(), `unknown guide "morgana"`) {
		t.Errorf("err = %v", err)
	}
}

func TestCastLimitReached(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/ai/generate-spell", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"detail": map[string]string{"error": "spell_limit_reached", "message": "The crows are resting until the new moon."},
		})
	})

	out, err := h.run("", "cast", "one more")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "The crows are resting until the new moon.") || !strings.Contains(out, "https://crowlands.example/pricing") {
		t.Errorf("out = %q", out)
	}
}

func TestCastUnexpectedFailureHidesDetail(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/ai/generate-spell", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stack trace here"})
	})

	out, err := h.run("", "cast", "something")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, workflow.MsgGenericRetry) || strings.Contains(out, "stack trace") {
		t.Errorf("out = %q", out)
	}
}

func TestCastSaveNeedsLogin(t *testing.T) {
	h := newHarness(t)
	saves := 0
	h.mux.HandleFunc("POST /api/ai/generate-spell", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, spellResponse())
	})
	h.mux.HandleFunc("GET /api/subscriptions/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SubscriptionStatus{})
	})
	h.mux.HandleFunc("POST /api/grimoire/spells", func(w http.ResponseWriter, r *http.Request) { saves++ })

	out, err := h.run("", "cast", "--save", "a warm house")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "# Hearth Charm") || !strings.Contains(out, workflow.MsgLoginToSave) {
		t.Errorf("out = %q", out)
	}
	if saves != 0 {
		t.Error("save must not reach the server without a token")
	}
}

func TestCastSave(t *testing.T) {
	h := newHarness(t)
	h.login()
	var saved domain.SaveSpellRequest
	h.mux.HandleFunc("POST /api/ai/generate-spell", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, spellResponse())
	})
	h.mux.HandleFunc("GET /api/subscriptions/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SubscriptionStatus{})
	})
	h.mux.HandleFunc("POST /api/grimoire/spells", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&saved) //nolint:errcheck
		writeJSON(w, http.StatusOK, domain.SavedGrimoireEntry{ID: "e-1"})
	})

	out, err := h.run("", "cast", "--save", "a warm house")
	if err != nil {
		t.Fatalf("cast --save: %v\n%s", err, out)
	}
	if !strings.Contains(out, workflow.MsgSaved) {
		t.Errorf("out = %q", out)
	}
	if saved.ArchetypeID != "maud" || saved.ArchetypeName != "Maud Ashgrove" || saved.SpellData.Title() != "Hearth Charm" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestTarot(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/ai/corrie-tarot", func(w http.ResponseWriter, r *http.Request) {
		var req domain.TarotRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		writeJSON(w, http.StatusOK, domain.TarotResult{Reading: domain.TarotReading{
			Question: req.Question,
			Cards:    []domain.TarotDraw{{Position: "Past", Name: "The Tower", Upright: false}},
			Advice:   "Let it fall.",
		}})
	})

	out, err := h.run("", "tarot", "should", "I", "move?")
	if err != nil {
		t.Fatalf("tarot: %v\n%s", err, out)
	}
	for _, want := range []string{"should I move?", "Past: The Tower (reversed)", "Let it fall."} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}

	if _, err := h.run("", "tarot"); err == nil {
		t.Error("a reading needs a question")
	}
}

func TestWardFeatureLocked(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/ai/suggest-ward", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"detail": map[string]string{"error": "feature_locked", "message": "Wards are kept for paid grimoires."},
		})
	})

	out, err := h.run("", "ward", "bad", "dreams")
	if !errors.Is(err, errShown) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "Wards are kept for paid grimoires.") {
		t.Errorf("out = %q", out)
	}
}

func TestWard(t *testing.T) {
	h := newHarness(t)
	h.mux.HandleFunc("POST /api/ai/suggest-ward", func(w http.ResponseWriter, r *http.Request) {
		var req domain.WardRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Concern != "bad dreams" || req.GuideID != "silas" {
			t.Errorf("request = %+v", req)
		}
		writeJSON(w, http.StatusOK, domain.WardResult{Ward: domain.Ward{Name: "Mirror Ward", Materials: []string{"hand mirror"}}})
	})

	out, err := h.run("", "ward", "-g", "silas", "bad", "dreams")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# Mirror Ward") || !strings.Contains(out, "- hand mirror") {
		t.Errorf("out = %q", out)
	}
}

func grimoireEntries() []domain.SavedGrimoireEntry {
	doc := domain.SpellDocument{Title: "Hearth Charm", Steps: []domain.Step{{Number: 1, Instruction: "Sweep the threshold inward."}}}
	return []domain.SavedGrimoireEntry{
		{ID: "a1b2c3d4-0000", SpellData: domain.StructuredSpell(doc), ArchetypeID: "maud", ArchetypeName: "Maud Ashgrove"},
		{ID: "f9e8d7c6-0000", SpellData: domain.UnstructuredSpell("light a candle")},
	}
}

func TestGrimoireNeedsLogin(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "grimoire", "list")
	if !errors.Is(err, errShown) || !strings.Contains(out, "crowlands login") {
		t.Errorf("out = %q, err = %v", out, err)
	}
}

func TestGrimoireListAndShow(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mux.HandleFunc("GET /api/grimoire/spells", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, grimoireEntries())
	})

	out, err := h.run("", "grimoire", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a1b2c3d4", "Hearth Charm", "Maud Ashgrove", "Untitled working"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	out, err = h.run("", "grimoire", "show", "a1b2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# Hearth Charm") || !strings.Contains(out, "Sweep the threshold inward.") {
		t.Errorf("show = %q", out)
	}

	out, err = h.run("", "grimoire", "show", "f9")
	if err != nil || !strings.Contains(out, "light a candle") {
		t.Errorf("degraded show = %q, err = %v", out, err)
	}

	if _, err := h.run("", "grimoire", "show", "zz"); err == nil {
		t.Error("an unknown id should fail")
	}
}

func TestGrimoireDeleteAsks(t *testing.T) {
	h := newHarness(t)
	h.login()
	var deleted []string
	h.mux.HandleFunc("GET /api/grimoire/spells", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, grimoireEntries())
	})
	h.mux.HandleFunc("DELETE /api/grimoire/spells/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	out, err := h.run("n\n", "grimoire", "delete", "a1b2")
	if err != nil || !strings.Contains(out, "Kept.") || len(deleted) != 0 {
		t.Fatalf("out = %q, err = %v, deleted = %v", out, err, deleted)
	}

	out, err = h.run("y\n", "grimoire", "delete", "a1b2")
	if err != nil || !strings.Contains(out, `Deleted "Hearth Charm".`) {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if len(deleted) != 1 || deleted[0] != "a1b2c3d4-0000" {
		t.Errorf("deleted = %v", deleted)
	}
}

func TestWardsListAndDelete(t *testing.T) {
	h := newHarness(t)
	h.login()
	var deleted string
	h.mux.HandleFunc("GET /api/grimoire/wards", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.SavedWard{{ID: "w-123456789", WardData: domain.Ward{Name: "Iron Nail Ward"}, Concern: "thieves"}})
	})
	h.mux.HandleFunc("DELETE /api/grimoire/wards/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})

	out, err := h.run("", "wards", "list")
	if err != nil || !strings.Contains(out, "Iron Nail Ward") || !strings.Contains(out, "thieves") {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if _, err := h.run("", "wards", "delete", "--yes", "w-1234"); err != nil {
		t.Fatal(err)
	}
	if deleted != "w-123456789" {
		t.Errorf("deleted = %q", deleted)
	}
}

func TestGuidesDefault(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "guide", "Ezra", "--default")
	if err != nil || !strings.Contains(out, "Ezra will guide your spells.") {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if h.store.Guide() != "ezra" {
		t.Errorf("guide = %q", h.store.Guide())
	}

	out, _ = h.run("", "guides")
	if !strings.Contains(out, "★ ezra") {
		t.Errorf("default guide not starred:\n%s", out)
	}

	if _, err := h.run("", "guides", "--clear"); err != nil {
		t.Fatal(err)
	}
	if h.store.Guide() != "" {
		t.Error("--clear should forget the guide")
	}
}

func TestGuideDetail(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "guide", "corrie")
	if err != nil {
		t.Fatal(err)
	}
	corrie := domain.Guides["corrie"]
	for _, want := range []string{corrie.Name, corrie.Tenets[0], corrie.SamplePrompts[0]} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if _, err := h.run("", "guide", "morgana"); err == nil {
		t.Error("unknown guide should fail")
	}
}

func TestWaitlist(t *testing.T) {
	h := newHarness(t)
	seen := map[string]bool{}
	h.mux.HandleFunc("POST /api/waitlist/join", func(w http.ResponseWriter, r *http.Request) {
		var req domain.WaitlistRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Source != "cli" {
			t.Errorf("source = %q", req.Source)
		}
		if seen[req.Email] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
			return
		}
		seen[req.Email] = true
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	out, err := h.run("", "waitlist", "wren@example.com")
	if err != nil || !strings.Contains(out, "on the list") {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	out, err = h.run("", "waitlist", "wren@example.com")
	if err != nil || !strings.Contains(out, "already on the list") {
		t.Errorf("out = %q, err = %v", out, err)
	}
	if _, err := h.run("", "waitlist", "not-an-email"); err == nil {
		t.Error("an invalid email should fail before the call")
	}
}

func TestPageCommands(t *testing.T) {
	h := newHarness(t)
	for _, page := range []string{"about", "faq", "privacy"} {
		if _, err := h.run("", page); err != nil {
			t.Fatalf("%s: %v", page, err)
		}
	}
	want := []string{"https://crowlands.example/about", "https://crowlands.example/faq", "https://crowlands.example/privacy"}
	if strings.Join(h.opened, " ") != strings.Join(want, " ") {
		t.Errorf("opened = %v", h.opened)
	}

	h.openErr = errors.New("no browser")
	out, _ := h.run("", "faq")
	if strings.TrimSpace(out) != "https://crowlands.example/faq" {
		t.Errorf("without a browser the URL should be printed, got %q", out)
	}
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "abc"}
	tests := []struct {
		id      string
		want    int
		wantErr bool
	}{
		{"abc", 2, false},
		{"abd", 1, false},
		{"abc1", 0, false},
		{"ab", -1, true},
		{"zzz", -1, true},
		{"", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := matchID(ids, tt.id)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("matchID(%q) = %d, %v; want %d, err %v", tt.id, got, err, tt.want, tt.wantErr)
			}
		})
	}
}
