package apihelper

import (
	"fmt"
	"net/http"
	"strings"
)

var recognizedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// ParseMethod normalizes raw and checks it against the standard verbs.
func ParseMethod(raw string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := recognizedMethods[m]; !ok {
		return "", newError(KindInvalidMethod, "invalid HTTP method", fmt.Errorf("%q is not a recognized verb", raw))
	}
	return m, nil
}
