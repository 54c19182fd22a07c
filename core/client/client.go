// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package client provides plain access to a remote REST api

The client sends exactly one request per call and never retries. Callers
decide about timeouts through the request context. Non-2xx responses are
reported as *StatusError, which keeps the status code and the raw response
body for diagnostics.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Client provides easy access to a REST API.
type Client struct {
	httpClient *http.Client
	url        string

	defaultHeaders map[string]string
}

// NewWithURL creates a client to make REST requests against url. Relative
// request URLs are resolved against url, absolute ones are used as they are.
//
// The underlying http client has a generous overall timeout of 60 seconds.
// Tighter per-request timeouts are set with the request context.
func NewWithURL(url string) Client {
	return Client{
		url:            strings.TrimSuffix(url, "/"),
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		defaultHeaders: map[string]string{},
	}
}

// WithHeader returns a new client with a default header added
func (c Client) WithHeader(key string, value string) Client {
	// we want a true copy to avoid side effects
	headers := map[string]string{key: value}
	for k, v := range c.defaultHeaders {
		if k != key {
			headers[k] = v
		}
	}
	c.defaultHeaders = headers
	return c
}

// Request is a single request to send with Do
type Request struct {
	Method string
	// URL is either absolute or a path relative to the client's base url
	URL    string
	Query  map[string]string
	Header map[string]string
	Body   []byte
}

// StatusError is returned by Do when the server answered with a status
// outside of the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s got status=%d body=%s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Do sends the request and returns the status code and the raw response body.
//
// Expects a 2xx status as response, otherwise it returns a *StatusError
// together with the status code and body.
func (c Client) Do(ctx context.Context, request Request) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := request.Method
	if method == "" {
		method = http.MethodGet
	}
	target, err := c.resolve(request.URL, request.Query)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, request.URL, err)
	}

	var body io.Reader
	if request.Body != nil {
		body = bytes.NewReader(request.Body)
	}
	r, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	for key, value := range c.defaultHeaders {
		r.Header.Set(key, value)
	}
	for key, value := range request.Header {
		r.Header.Set(key, value)
	}

	res, err := c.httpClient.Do(r)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("%s %s: reading body: %w", method, target, err)
	}

	status := res.StatusCode
	if status < 200 || status > 299 {
		return status, resBody, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: status,
			Body:       resBody,
		}
	}
	return status, resBody, nil
}

// resolve returns the absolute target url including the query string. Query
// parameters are encoded in key order, so that equal requests produce equal urls.
func (c Client) resolve(target string, query map[string]string) (string, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.url + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if len(query) == 0 {
		return u.String(), nil
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var parameters []string
	if u.RawQuery != "" {
		parameters = append(parameters, u.RawQuery)
	}
	for _, key := range keys {
		parameters = append(parameters, url.QueryEscape(key)+"="+url.QueryEscape(query[key]))
	}
	u.RawQuery = strings.Join(parameters, "&")
	return u.String(), nil
}
