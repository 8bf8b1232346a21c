package gopdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Convert submits the accumulated options with source as the document to
// convert. It performs exactly one POST and never retries.
//
// On success the result is stored on the request, replacing any earlier one.
// Failures are returned as *APIError; the stored result is cleared.
func (r *Request) Convert(ctx context.Context, source string) (*Result, error) {
	r.claim(KeySource)
	r.source = &source
	r.result = nil

	hosted := r.hosted()
	payload, err := json.Marshal(r.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	logger := r.client.logger.With().Str("request_id", uuid.NewString()).Logger()
	logger.Debug().
		Int("payload_bytes", len(payload)).
		Bool("hosted", hosted).
		Msg("Submitting conversion request")

	status, body, err := r.client.post(ctx, "/go", payload)
	if err != nil {
		logger.Debug().Err(err).Msg("Conversion request failed in transport")
		return nil, newProtocolError(err)
	}

	result, err := classify(status, body, hosted)
	if err != nil {
		logger.Debug().Int("status", status).Err(err).Msg("Conversion rejected")
		return nil, err
	}

	logger.Debug().
		Int("status", status).
		Int("bytes", len(body)).
		Msg("Conversion succeeded")

	r.result = result
	return result, nil
}

// Save writes the bytes of the last successful conversion to path and returns
// the number of bytes written.
func (r *Request) Save(path string) (int, error) {
	if r.result == nil {
		return 0, ErrNoResult
	}
	if r.result.IsHosted() {
		return 0, ErrHostedResult
	}

	if err := r.result.WriteToFile(path, 0o644); err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", path, err)
	}
	return r.result.Len(), nil
}

// ConvertTo is a one-shot conversion. options are applied through Set. When
// output is not empty the document is also saved there, and a failure to save
// is returned as the error alongside the result.
func (c *Client) ConvertTo(ctx context.Context, source string, options map[string]any, output string) (*Result, error) {
	req := c.NewRequest().Apply(options)

	result, err := req.Convert(ctx, source)
	if err != nil {
		return nil, err
	}

	if output == "" {
		return result, nil
	}

	if _, err := req.Save(output); err != nil {
		return result, err
	}
	return result, nil
}

// classify maps a response to a Result or an *APIError
func classify(status int, body []byte, hosted bool) (*Result, error) {
	if status == http.StatusOK {
		if !hosted {
			return &Result{data: body}, nil
		}

		var file HostedFile
		if err := json.Unmarshal(body, &file); err != nil || file == nil {
			return nil, newProtocolError(err)
		}
		return &Result{file: file}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		return nil, newProtocolError(err)
	}

	switch status {
	case http.StatusBadRequest:
		return nil, newInvalidRequest(invalidRequestMessage(body, decoded), decoded)
	case http.StatusUnauthorized:
		return nil, newInvalidAPIKey(decoded)
	case http.StatusForbidden:
		return nil, newNoCredits(decoded)
	case http.StatusTooManyRequests:
		return nil, newRateLimit(decoded)
	default:
		return nil, newServerError(decoded)
	}
}

// invalidRequestMessage picks the most specific explanation of a 400:
// "message", then "error", then the first field of "errors".
func invalidRequestMessage(raw []byte, decoded map[string]any) string {
	if msg, ok := decoded["message"].(string); ok && msg != "" {
		return msg
	}

	if msg, ok := decoded["error"].(string); ok {
		return msg
	}

	if field, msg, ok := firstFieldError(raw); ok {
		if msg == "" {
			return field
		}
		return field + " : " + msg
	}

	return msgInvalidRequest
}

// firstFieldError returns the first entry of the "errors" object in document
// order, which a decoded map cannot preserve.
func firstFieldError(raw []byte) (string, string, bool) {
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Errors) == 0 {
		return "", "", false
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Errors))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", "", false
	}
	if !dec.More() {
		return "", "", false
	}

	tok, err := dec.Token()
	if err != nil {
		return "", "", false
	}
	field, ok := tok.(string)
	if !ok {
		return "", "", false
	}

	var messages any
	if err := dec.Decode(&messages); err != nil {
		return "", "", false
	}

	switch m := messages.(type) {
	case []any:
		if len(m) == 0 || m[0] == nil {
			return field, "", true
		}
		if s, ok := m[0].(string); ok {
			return field, s, true
		}
		return field, fmt.Sprint(m[0]), true
	case string:
		return field, m, true
	case nil:
		return field, "", true
	default:
		return field, fmt.Sprint(m), true
	}
}
