package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/ardanlabs/transactchain/business/web/errs"
)

// apiError is returned when the service responds with a failure status.
type apiError struct {
	Status int
	errs.Response
}

func (ae *apiError) Error() string {
	if len(ae.Fields) == 0 {
		return fmt.Sprintf("%d: %s", ae.Status, ae.Response.Error)
	}

	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s:", ae.Status, ae.Response.Error)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s[%s]", k, ae.Fields[k])
	}

	return b.String()
}

// call performs the request against the service and decodes a successful
// response into resp when resp is not nil.
func call(method string, path string, body any, resp any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(serviceURL, "/")+path, r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := http.Client{Timeout: timeout}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		ae := apiError{Status: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(&ae.Response); err != nil {
			ae.Response.Error = http.StatusText(res.StatusCode)
		}
		return &ae
	}

	if resp == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(resp); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
