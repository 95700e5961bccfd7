package airtable

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// Decode copies record fields into target using mapstructure tags.
// Numbers are accepted for string fields and list values (multi-select, lookups) are joined with ", ".
func (r Record) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       joinListHook,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(r.Fields); err != nil {
		return fmt.Errorf("decode record %s: %w", r.ID, err)
	}

	return nil
}

func joinListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if from.Kind() != reflect.Slice && from.Kind() != reflect.Array {
		return data, nil
	}

	items := reflect.ValueOf(data)
	parts := make([]string, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		parts = append(parts, fmt.Sprint(items.Index(i).Interface()))
	}

	return strings.Join(parts, ", "), nil
}

// Equals builds a formula matching records whose field equals value.
func Equals(field, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("{%s} = '%s'", field, escaped)
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable: %d %s", e.StatusCode, e.Type)
	}
	return fmt.Sprintf("airtable: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Type: http.StatusText(resp.StatusCode)}

	// The error member is either an object or a bare string such as "NOT_FOUND".
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}

	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		if detailed.Type != "" {
			apiErr.Type = detailed.Type
		}
		apiErr.Message = detailed.Message
		return apiErr
	}

	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil && code != "" {
		apiErr.Type = code
	}

	return apiErr
}
