package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type TransportSuite struct{}

var _ = Suite(&TransportSuite{})

func (s *TransportSuite) TestGetReturnsStatusHeadersAndBody(c *C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	a := New(nil)
	resp, err := a.Request(context.Background(), srv.URL, GET, nil, nil)
	c.Assert(err, IsNil)
	c.Assert(resp.Status, Equals, http.StatusOK)
	c.Assert(resp.Headers.Get("X-Test"), Equals, "yes")
	c.Assert(string(resp.Body), Equals, "hello")
}

func (s *TransportSuite) TestPostSendsBodyAndContentType(c *C) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := New(nil)
	headers := http.Header{"Content-Type": []string{"application/octet-stream"}}
	resp, err := a.Request(context.Background(), srv.URL, POST, []byte{1, 2, 3}, headers)
	c.Assert(err, IsNil)
	c.Assert(resp.Status, Equals, http.StatusCreated)
	c.Assert(gotContentType, Equals, "application/octet-stream")
	c.Assert(gotBody, DeepEquals, []byte{1, 2, 3})
}

func (s *TransportSuite) TestRedirectIsNotFollowed(c *C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Location", "/after-redirect")
			w.WriteHeader(http.StatusTemporaryRedirect)
			return
		}
		c.Fatalf("redirect target should never be fetched by the adapter itself")
	}))
	defer srv.Close()

	a := New(nil)
	resp, err := a.Request(context.Background(), srv.URL+"/start", GET, nil, nil)
	c.Assert(err, IsNil)
	c.Assert(resp.Status, Equals, http.StatusTemporaryRedirect)
	c.Assert(resp.Headers.Get("Location"), Equals, "/after-redirect")
}
