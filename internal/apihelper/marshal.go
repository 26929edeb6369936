package apihelper

import (
	"io"
	"mime"
	"strings"

	"github.com/samvad-hq/samvad-api-helper/pkg/httpclient"
	"golang.org/x/net/html/charset"
)

// marshalResponse reads resp fully and closes its body.
func marshalResponse(resp httpclient.Response) (*ResponseData, error) {
	body := resp.RawBody()
	if body != nil {
		defer body.Close()
	}

	headers := make(map[string]string, len(resp.Header()))
	for name, values := range resp.Header() {
		headers[strings.ToLower(name)] = headerText(values)
	}

	var raw []byte
	if body != nil {
		var err error
		raw, err = io.ReadAll(body)
		if err != nil {
			return nil, newError(KindBodyRead, "failed to read response body", err)
		}
	}

	text, err := decodeText(raw, resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, newError(KindBodyRead, "failed to read response body", err)
	}

	return &ResponseData{
		Status:  uint16(resp.StatusCode()),
		Headers: headers,
		Body:    text,
	}, nil
}

// headerText joins multiple values with ", ". Values that are not visible
// ASCII text map to "".
func headerText(values []string) string {
	for _, v := range values {
		if !isVisibleText(v) {
			return ""
		}
	}
	return strings.Join(values, ", ")
}

func isVisibleText(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b != '\t' && (b < 0x20 || b >= 0x7f) {
			return false
		}
	}
	return true
}

// decodeText converts raw to UTF-8 using the charset declared in contentType.
// Without a usable declaration the bytes are read as UTF-8 and invalid
// sequences are replaced.
func decodeText(raw []byte, contentType string) (string, error) {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if enc, name := charset.Lookup(label); enc != nil && name != "utf-8" {
				out, err := enc.NewDecoder().Bytes(raw)
				if err != nil {
					return "", err
				}
				return string(out), nil
			}
		}
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
}
