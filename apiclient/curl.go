package apiclient

import (
	"net/http"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// Curl renders a request as a shell command that reproduces it. Headers are sorted so the
// output is stable.
func Curl(req *http.Request, body []byte) string {
	var b commandBuilder
	b.add("curl", "-X", req.Method)

	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range req.Header[k] {
			b.add("-H", k+": "+v)
		}
	}
	if len(body) > 0 {
		b.add("-d", string(body))
	}
	b.add(req.URL.String())
	return b.String()
}
