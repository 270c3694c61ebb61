package ruote

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rstorcloud/alfredo/internal/pluck"
)

// Response is the outcome of one verb operation. Raw always holds the exact
// body bytes; the decoded node is present only when the body parses as JSON
// or YAML.
type Response struct {
	StatusCode int
	Raw        []byte

	body *yaml.Node
}

// OK reports whether the request succeeded (any 2xx status).
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ExitCode maps the response onto a process exit code: 0 for success,
// otherwise the leading digit of the HTTP status (404 -> 4, 500 -> 5).
func (r *Response) ExitCode() int {
	if r.OK() {
		return 0
	}
	return r.StatusCode / 100
}

// Node returns the decoded body, or nil when the body did not decode.
func (r *Response) Node() *yaml.Node {
	return r.body
}

// StringField returns the named top-level scalar from the response body.
func (r *Response) StringField(name string) (string, bool) {
	n, err := pluck.Project(r.body, []string{name})
	if err != nil || n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	return n.Value, true
}

// String renders the decoded body as YAML, falling back to the raw body text
// when it did not decode. No trailing newline either way.
func (r *Response) String() string {
	if r.body == nil {
		return strings.TrimRight(string(r.Raw), "\n")
	}
	s, err := pluck.Encode(r.body)
	if err != nil {
		return strings.TrimRight(string(r.Raw), "\n")
	}
	return s
}
