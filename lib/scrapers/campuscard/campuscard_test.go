package campuscard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePortal mimics the card center's session behavior: the login POST
// hands out a session cookie, the account page requires it.
type fakePortal struct {
	password string
	logins   int
}

func (p *fakePortal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ch/login.html", func(w http.ResponseWriter, r *http.Request) {
		p.logins++
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "Login", r.PostFormValue("action"))

		if r.PostFormValue("password") != p.password {
			http.Error(w, "invalid credentials", http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fixture-session"})
		w.Write([]byte("<html><body>welcome</body></html>"))
	})
	mux.HandleFunc("/ch/", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("JSESSIONID")
		if err != nil || cookie.Value != "fixture-session" {
			http.Error(w, "not logged in", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(accountPage))
	})
	return mux
}

func setupClient(t *testing.T, portal *fakePortal) *Client {
	server := httptest.NewServer(portal.handler(t))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL + "/ch/"})
	require.NoError(t, err)
	return client
}

func TestLoginAndFetch(t *testing.T) {
	portal := &fakePortal{password: "pw1"}
	client := setupClient(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session, err := client.Login(ctx, "student1", "pw1")
	require.NoError(t, err)
	require.Equal(t, 1, portal.logins)

	page, err := session.AccountPage(ctx)
	require.NoError(t, err)

	snapshot, err := ParseAccountPage(page)
	require.NoError(t, err)
	require.NotNil(t, snapshot.LionBucks)
	require.Equal(t, "$125.50", *snapshot.LionBucks)
}

func TestLoginRejected(t *testing.T) {
	portal := &fakePortal{password: "pw1"}
	client := setupClient(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := client.Login(ctx, "student1", "wrong")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLoginRejected))
}

func TestFetchWithoutSessionCookie(t *testing.T) {
	portal := &fakePortal{password: "pw1"}
	server := httptest.NewServer(portal.handler(t))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL + "/ch/"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// a session handle whose jar never saw a login
	session := &Session{http: client.Http}
	client.Http.GetClient().Jar = nil

	_, err = session.AccountPage(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPortalUnreachable))
}

func TestDefaultBaseUrl(t *testing.T) {
	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	require.Equal(t, "fhu.campuscardcenter.com", client.BaseUrl.Hostname())
}
