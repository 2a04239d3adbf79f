package net

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
	clientAgent      = "consonance-cli"
)

var reqTransport = &http.Transport{
	MaxIdleConns:          maxIdleConns,
	IdleConnTimeout:       timeoutInSeconds * time.Second,
	DisableCompression:    true,
	DisableKeepAlives:     false,
	ResponseHeaderTimeout: time.Duration(timeoutInSeconds) * time.Second,
}

// GetHTTPClient returns an HTTP client with the shared transport.
func GetHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	return &http.Client{
		Transport: reqTransport,
		Jar:       jar,
		Timeout:   timeoutInSeconds * time.Second,
	}, nil
}

func getResp(url string) (resp *http.Response, err error) {
	c, err := GetHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	return c.Do(req)
}
