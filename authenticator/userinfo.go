package authenticator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// postUserInfoEndpoints lists userinfo endpoints that reject GET requests.
// This is a provider compatibility table, not protocol behavior: the OIDC
// spec allows both methods but these providers only accept POST. New
// exceptions are added here, never inline in the request logic.
var postUserInfoEndpoints = map[string]bool{
	"https://api.dropboxapi.com/2/openid/userinfo": true,
}

// UpstreamFetchError indicates the userinfo request failed at the transport
// level or returned a non-2xx status.
type UpstreamFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("userinfo request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("userinfo request to %s returned status %d", e.URL, e.StatusCode)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

var userInfoClient = &http.Client{Timeout: 10 * time.Second}

// FetchProfile retrieves the userinfo response for the given access token.
// The token is sent as a bearer credential; the HTTP method depends on
// whether the endpoint is in the POST-required table.
func (p *OIDCProvider) FetchProfile(ctx context.Context, accessToken string) (Claims, error) {
	method := http.MethodGet
	if postUserInfoEndpoints[p.userInfoURL] {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, p.userInfoURL, nil)
	if err != nil {
		return nil, &UpstreamFetchError{URL: p.userInfoURL, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := userInfoClient.Do(req)
	if err != nil {
		return nil, &UpstreamFetchError{URL: p.userInfoURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamFetchError{URL: p.userInfoURL, StatusCode: resp.StatusCode}
	}

	var profile Claims
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &UpstreamFetchError{URL: p.userInfoURL, StatusCode: resp.StatusCode, Err: err}
	}

	return profile, nil
}
