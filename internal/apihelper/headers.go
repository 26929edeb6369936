package apihelper

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// TranslateHeaders validates names and values and builds the outbound header
// set. Names are processed in sorted order, so when two names collide after
// canonicalization the later one wins deterministically.
func TranslateHeaders(in map[string]string) (http.Header, error) {
	out := make(http.Header, len(in))
	for _, name := range slices.Sorted(maps.Keys(in)) {
		value := in[name]
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, newError(KindInvalidHeaderName, "invalid header name", fmt.Errorf("%q is not a valid header token", name))
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, newError(KindInvalidHeaderValue, "invalid header value", fmt.Errorf("value of %q contains disallowed characters", name))
		}
		out.Set(name, value)
	}
	return out, nil
}

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
}

// maskHeaders returns a copy of headers safe for logging.
func maskHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			v = "***"
		}
		out[k] = v
	}
	return out
}
