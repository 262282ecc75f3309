package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lioncard-backend/lib/scrapers/campuscard"
	"lioncard-backend/lib/telemetry"
	"lioncard-backend/services/lioncard"
	lioncarddb "lioncard-backend/services/lioncard/db"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

const accountPage = `<html><body><table>
<tr><td></td><td>MPA 14 Weekly Meals</td><td></td><td><div align="right">6</div></td></tr>
<tr><td></td><td>Lion Bucks</td><td></td><td><div align="right">$125.50</div></td></tr>
</table></body></html>`

type fakeAuthenticator struct {
	page     string
	loginErr error
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (lioncard.Fetcher, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f, nil
}

func (f *fakeAuthenticator) AccountPage(ctx context.Context) (string, error) {
	return f.page, nil
}

func setup(t testing.TB, auth *fakeAuthenticator) *http.ServeMux {
	cleanup := telemetry.SetupForTesting(t, "test:cmd/lioncardd")
	t.Cleanup(cleanup)

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(lioncarddb.Schema)
	require.NoError(t, err)

	store, err := lioncard.NewCredentialStore(
		sqlite, []byte("0123456789abcdef0123456789abcdef"),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	registerRoutes(mux, lioncard.NewService(auth, store))
	return mux
}

func do(t testing.TB, mux *http.ServeMux, method, path, body string) (int, stateJson) {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	var state stateJson
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	return res.Code, state
}

func TestLoginAndSnapshot(t *testing.T) {
	mux := setup(t, &fakeAuthenticator{page: accountPage})

	status, state := do(t, mux, "POST", "/v1/login",
		`{"username":"student1","password":"pw1"}`)
	require.Equal(t, http.StatusOK, status)
	require.True(t, state.IsAuthenticated)
	require.Empty(t, state.Error)
	require.Equal(t, "student1", state.Username)
	require.NotNil(t, state.Snapshot)
	require.NotNil(t, state.Snapshot.MealSwipes)
	require.Equal(t, "6", *state.Snapshot.MealSwipes)
	require.NotNil(t, state.Snapshot.MealPlan)
	require.Equal(t, "Meal Plan A", state.Snapshot.MealPlan.Name)

	status, state = do(t, mux, "GET", "/v1/snapshot", "")
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, state.Snapshot)
	require.NotNil(t, state.Snapshot.LionBucks)
	require.Equal(t, "$125.50", *state.Snapshot.LionBucks)
}

func TestLoginEmptyCredentials(t *testing.T) {
	mux := setup(t, &fakeAuthenticator{page: accountPage})

	status, state := do(t, mux, "POST", "/v1/login", `{"username":"","password":""}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, state.IsAuthenticated)
}

func TestLoginRejected(t *testing.T) {
	mux := setup(t, &fakeAuthenticator{loginErr: campuscard.ErrLoginRejected})

	status, state := do(t, mux, "POST", "/v1/login",
		`{"username":"student1","password":"badpw"}`)
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, state.IsAuthenticated)
	require.NotEmpty(t, state.Error)
}

func TestLogoutAndRefresh(t *testing.T) {
	mux := setup(t, &fakeAuthenticator{page: accountPage})

	status, _ := do(t, mux, "POST", "/v1/login",
		`{"username":"student1","password":"pw1"}`)
	require.Equal(t, http.StatusOK, status)

	status, state := do(t, mux, "POST", "/v1/refresh", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, state.IsAuthenticated)

	status, state = do(t, mux, "POST", "/v1/logout", "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.Snapshot)

	// refreshing while logged out quietly does nothing
	status, state = do(t, mux, "POST", "/v1/refresh", "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, state.IsAuthenticated)
}
