package net

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/oauth2"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
)

// GetHTTPClient returns a plain HTTP client with sane timeouts for
// unauthenticated API access.
func GetHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Jar:     jar,
		Timeout: timeoutInSeconds * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:          maxIdleConns,
			IdleConnTimeout:       timeoutInSeconds * time.Second,
			ResponseHeaderTimeout: timeoutInSeconds * time.Second,
		},
	}, nil
}

// GetOAuthClient returns an HTTP client that sends the given API token as a
// bearer credential on every request.
func GetOAuthClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: token,
		},
	)
	return oauth2.NewClient(ctx, ts)
}
