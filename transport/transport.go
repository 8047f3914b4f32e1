/*
	Package transport implements C4: a single request/response operation
	over HTTP, treated as the black-box collaborator spec.md §1 declares it
	to be.  It is the sole suspension point named in spec.md §5 -- every
	other component is synchronous, single-threaded, non-yielding.
*/
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/fiji-hpc/hpc-datastore-go/errs"
)

// Method is the HTTP verb this client ever issues: metadata, session
// handshake, and reads use GET; writes use POST.
type Method string

const (
	GET  Method = "GET"
	POST Method = "POST"
)

// Response is the result of one request: status, response headers, and the
// raw body bytes. The status is surfaced regardless of its value, per
// spec.md §4.4.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Adapter issues one HTTP request and returns its status, headers, and body.
// No retries; redirects are not followed automatically so the Session
// Resolver (C5) can inspect a 307's Location header itself.
type Adapter struct {
	client *http.Client
}

// New returns an Adapter wrapping an *http.Client configured to stop at the
// first redirect rather than following it.
func New(client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{}
	}
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Adapter{client: &c}
}

// Request issues one HTTP request.  body and headers are optional for GET.
func (a *Adapter) Request(ctx context.Context, url string, method Method, body []byte, headers http.Header) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(method), url, bodyReader)
	if err != nil {
		return nil, errs.NewTransportError(errs.ProtocolError, 0, err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		kind := errs.ConnectFailed
		if ctx.Err() != nil {
			kind = errs.Timeout
		}
		return nil, errs.NewTransportError(kind, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewTransportError(errs.UnexpectedEOF, resp.StatusCode, err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}, nil
}
