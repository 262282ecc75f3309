package campuscard

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"lioncard-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// DefaultBaseUrl is the card center instance the university runs.
const DefaultBaseUrl = "https://fhu.campuscardcenter.com/ch/"

var (
	// ErrLoginRejected means the portal answered the login exchange
	// with a non-success status, i.e. the credentials were refused.
	ErrLoginRejected = fmt.Errorf("campus card portal rejected the login")
	// ErrPortalUnreachable means the request never completed or the
	// portal answered a fetch with a non-success status.
	ErrPortalUnreachable = fmt.Errorf("campus card portal is unreachable")
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl when empty.
	BaseUrl string
	// InstrumentOutput optionally receives request/response dumps
	// for debugging scrape sessions.
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "*/*")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// Session is evidence that a login exchange completed. The portal is a
// legacy session-cookie system: it hands out no token to hold on to,
// the session lives in the client's cookie jar and the account page
// fetch going through is the only observable proof it exists.
type Session struct {
	http *resty.Client
}

// Login performs the form login exchange. It issues exactly one POST,
// retry policy belongs to the caller.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
			"action":   "Login",
		}).
		Post("login.html")
	if err != nil {
		span.SetStatus(codes.Error, "login request failed")
		return nil, fmt.Errorf("%w: %w", ErrPortalUnreachable, err)
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "login rejected")
		return nil, fmt.Errorf("%w: status %d", ErrLoginRejected, res.StatusCode())
	}

	return &Session{http: c.Http}, nil
}

// AccountPage retrieves the raw account home page over the logged-in
// session. Always a live read, the portal page is never cached.
func (s *Session) AccountPage(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "session:AccountPage")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "account page request failed")
		return "", fmt.Errorf("%w: %w", ErrPortalUnreachable, err)
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "account page returned a bad status")
		return "", fmt.Errorf("%w: status %d", ErrPortalUnreachable, res.StatusCode())
	}

	return res.String(), nil
}
