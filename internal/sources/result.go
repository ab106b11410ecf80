package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/buger/jsonparser"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 10 << 20

// FetchError is a fetch failure carried as data rather than as a Go error.
type FetchError struct {
	Reason string `json:"error"`
	Text   string `json:"text,omitempty"` // Raw upstream body when it was not JSON
}

// Result is the outcome of one fetch: either verbatim upstream JSON or a FetchError.
type Result struct {
	Data json.RawMessage
	Err  *FetchError
}

// Failed builds a Result carrying only an error reason.
func Failed(format string, args ...any) Result {
	return Result{Err: &FetchError{Reason: fmt.Sprintf(format, args...)}}
}

// OK reports whether the fetch produced upstream JSON.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorReason returns the fetch error, or the "error" member of an upstream JSON object.
func (r Result) ErrorReason() (string, bool) {
	if r.Err != nil {
		return r.Err.Reason, true
	}
	value, dataType, _, err := jsonparser.Get(r.Data, "error")
	if err != nil {
		return "", false
	}
	return renderValue(value, dataType), true
}

// MarshalJSON writes the upstream JSON verbatim, or {"error": ..., "text": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	if len(r.Data) == 0 {
		return []byte("null"), nil
	}
	return r.Data, nil
}

// do performs req and classifies the response. label names the datasource in error messages.
func do(client *http.Client, req *http.Request, label string) Result {
	resp, err := client.Do(req)
	if err != nil {
		return Failed("%s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Failed("%s", err.Error())
	}
	if !json.Valid(body) {
		return Result{Err: &FetchError{Reason: "Invalid JSON from " + label, Text: string(body)}}
	}
	return Result{Data: body}
}

// decodeConfig unmarshals the stored config into the source's typed config.
func decodeConfig(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("invalid config field %q: %w", typeErr.Field, err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
