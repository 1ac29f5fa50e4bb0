package fernet

import (
	"net/http"
	"strconv"
)

// Response is the pipeline's outbound value object. The host transport owns
// delivery; the pipeline only reads the request and fills one of these in.
type Response struct {
	status  int
	headers http.Header
	body    []byte
}

func NewResponse() *Response {
	return &Response{
		status:  http.StatusOK,
		headers: http.Header{},
	}
}

func (r *Response) Status() int          { return r.status }
func (r *Response) Headers() http.Header { return r.headers }
func (r *Response) Body() []byte         { return r.body }

func (r *Response) SetStatus(status int) *Response {
	r.status = status
	return r
}

func (r *Response) SetBody(body []byte) *Response {
	r.body = body
	return r
}

func (r *Response) WriteString(s string) *Response {
	r.body = append(r.body, s...)
	return r
}

func (r *Response) SetHeader(key, value string) *Response {
	r.headers.Set(key, value)
	return r
}

// finalize fills in the response metadata the transport expects before the
// value leaves the pipeline: computed Content-Length, a sniffed Content-Type
// when none was set, and Connection handling for HTTP/1.0 requests.
func (r *Response) finalize(req *http.Request) *Response {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	r.headers.Set("Content-Length", strconv.Itoa(len(r.body)))

	if r.headers.Get("Content-Type") == "" && len(r.body) > 0 {
		r.headers.Set("Content-Type", http.DetectContentType(r.body))
	}

	if req != nil && req.ProtoMajor == 1 && req.ProtoMinor == 0 {
		if r.headers.Get("Connection") == "" {
			r.headers.Set("Connection", "close")
		}
	}

	return r
}
