package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nocodecorp/portal-api/internal/config"
	"github.com/nocodecorp/portal-api/internal/directory"
	"github.com/nocodecorp/portal-api/internal/integration"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/session"
	"github.com/nocodecorp/portal-api/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(endpointURL string) *ServiceDeps {
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		MockFallback:   true,
		WebhookTimeout: 2 * time.Second,
		ReconcileDelay: 10 * time.Millisecond,
	}
	return &ServiceDeps{
		Config:    cfg,
		Endpoint:  integration.NewClient(integration.Config{ClientDataURL: endpointURL, TicketURL: endpointURL, Timeout: 2 * time.Second}),
		Sessions:  session.NewMemoryStore(session.DefaultIdleTTL),
		State:     state.NewStore(),
		Directory: directory.New(),
	}
}

func endpointReturning(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}

func TestResolveViaEndpoint(t *testing.T) {
	srv := endpointReturning(t, `{
		"found": true,
		"client": {"id": "cli_42", "name": "Ada Martin", "email": "ada@corp.io", "emailStatus": "Valid"},
		"projects": [{"id": "proj_a", "name": "Storefront"}],
		"tickets": [{"id": "tick_a", "title": "Checkout broken", "statut": "InProgress"}]
	}`)
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "", "ada@corp.io")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	require.NotNil(t, res.Client)
	assert.Equal(t, "cli_42", res.Client.ID)
	assert.NotEmpty(t, res.Token, "a fresh login issues a token")

	snap := deps.State.Get("cli_42")
	require.NotNil(t, snap)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Tickets, 1)
	assert.Equal(t, "cli_42", snap.Projects[0].ClientID, "missing clientId defaults to the resolved client")
}

func TestResolveFallsBackToMockDirectory(t *testing.T) {
	srv := endpointReturning(t, `{"found": false}`)
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "", "jean.dupont@startup.io")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Equal(t, "cli_1", res.Client.ID)
	assert.NotEmpty(t, res.Token)
}

func TestResolveFoundWithoutIdentity(t *testing.T) {
	// A positive found flag but no client object and no top-level identity:
	// nothing to open a session for, so the mock fallback takes over.
	srv := endpointReturning(t, `{"found": true, "projects": [{"id": "proj_a", "name": "Storefront"}]}`)
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "", "jean.dupont@startup.io")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Equal(t, "cli_1", res.Client.ID)

	// With no mock match either, the same envelope resolves to a clean
	// Unauthenticated instead of blowing up.
	res, err = svc.Resolution.Resolve(context.Background(), "", "ada@corp.io")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
}

func TestResolveByClientIDViaMock(t *testing.T) {
	// Endpoint down entirely.
	deps := testDeps("http://127.0.0.1:0")
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "cli_1", "")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Equal(t, "Jean Dupont", res.Client.Name)
}

func TestResolveUnknownIsUnauthenticated(t *testing.T) {
	srv := endpointReturning(t, `{"found": false}`)
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	// Endpoint says no, mock has nothing: same negative result as an
	// endpoint outage.
	res, err := svc.Resolution.Resolve(context.Background(), "", "nobody@nowhere.io")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Nil(t, res.Client)
}

func TestResolveWithMockDisabled(t *testing.T) {
	deps := testDeps("http://127.0.0.1:0")
	deps.Config.MockFallback = false
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "cli_1", "")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
}

func TestResolveEmptyIdentity(t *testing.T) {
	deps := testDeps("http://127.0.0.1:0")
	svc := NewServices(deps)

	res, err := svc.Resolution.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
}

func TestEmptyStringListsDoNotClobber(t *testing.T) {
	full := `{
		"found": true,
		"client": {"id": "cli_42", "email": "ada@corp.io"},
		"projects": [{"id": "proj_a", "name": "Storefront"}],
		"tickets": [{"id": "tick_a", "title": "Checkout broken"}]
	}`
	empty := `{
		"found": true,
		"client": {"id": "cli_42", "email": "ada@corp.io"},
		"projects": "[]",
		"tickets": "[]"
	}`

	payload := full
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	_, err := svc.Resolution.Resolve(context.Background(), "", "ada@corp.io")
	require.NoError(t, err)
	require.Len(t, deps.State.Get("cli_42").Projects, 1)

	// Second fetch joins nothing; existing data must survive.
	payload = empty
	_, err = svc.Resolution.Resolve(context.Background(), "", "ada@corp.io")
	require.NoError(t, err)

	snap := deps.State.Get("cli_42")
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Tickets, 1)
}

func TestResolveSessionRoundTrip(t *testing.T) {
	srv := endpointReturning(t, `{
		"found": true,
		"client": {"id": "cli_42", "email": "ada@corp.io"}
	}`)
	defer srv.Close()

	deps := testDeps(srv.URL)
	svc := NewServices(deps)

	login, err := svc.Resolution.Resolve(context.Background(), "", "ada@corp.io")
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	// A later mount with the stored token re-resolves without opening a
	// second session.
	res, err := svc.Resolution.ResolveSession(context.Background(), login.Token)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Empty(t, res.Token, "existing session is reused")
	assert.Equal(t, login.Session.Token, res.Session.Token)
}

func TestResolveSessionGarbageToken(t *testing.T) {
	deps := testDeps("http://127.0.0.1:0")
	svc := NewServices(deps)

	res, err := svc.Resolution.ResolveSession(context.Background(), "not-a-jwt")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State)
}

func TestLogout(t *testing.T) {
	deps := testDeps("http://127.0.0.1:0")
	svc := NewServices(deps)

	login, err := svc.Resolution.Resolve(context.Background(), "cli_1", "")
	require.NoError(t, err)
	require.NotNil(t, deps.State.Get("cli_1"))

	require.NoError(t, svc.Resolution.Logout(context.Background(), login.Token))
	assert.Nil(t, deps.State.Get("cli_1"), "snapshot dropped on logout")

	res, err := svc.Resolution.ResolveSession(context.Background(), login.Token)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, res.State, "session gone after logout")
}

func TestDashboardAnnotations(t *testing.T) {
	deps := testDeps("http://127.0.0.1:0")
	svc := NewServices(deps)

	// Mock data has one in-progress ticket with a deadline of yesterday.
	login, err := svc.Resolution.Resolve(context.Background(), "cli_1", "")
	require.NoError(t, err)

	dash, err := svc.Resolution.Dashboard(login.Session)
	require.NoError(t, err)
	require.Len(t, dash.Tickets, 2)

	var late, onTime *models.DashboardTicket
	for i := range dash.Tickets {
		if dash.Tickets[i].ID == "tick_1" {
			late = &dash.Tickets[i]
		} else {
			onTime = &dash.Tickets[i]
		}
	}
	require.NotNil(t, late)
	require.NotNil(t, onTime)
	assert.True(t, late.Late)
	require.NotNil(t, late.DaysRemaining)
	assert.Negative(t, *late.DaysRemaining)
	assert.False(t, onTime.Late)

	_, err = svc.Resolution.Dashboard(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
