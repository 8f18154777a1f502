package httpclient

import "context"

// Response is the part of an HTTP response feed and publisher code reads.
type Response interface {
	Body() []byte
	StatusCode() int
	IsError() bool
}

// Client abstracts outbound HTTP so feed sources and sinks can be faked in tests.
type Client interface {
	Get(ctx context.Context, url string, query, headers map[string]string) (Response, error)
	Send(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
