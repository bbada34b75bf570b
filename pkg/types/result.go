package types

import "encoding/json"

// Result is the outcome of a successful Complete call. The vendor's
// response payload is passed through opaquely; the result only annotates
// which provider answered and which earlier providers failed first.
type Result struct {
	// Raw is the answering provider's response body, untouched
	Raw json.RawMessage `json:"-"`

	// Provider identifies the provider that produced Raw
	Provider ProviderType `json:"provider"`

	// Model is the model the answering provider was asked for
	Model string `json:"model"`

	// Errors lists the failures of providers tried before the answering
	// one, in attempt order. Nil when the first provider succeeded.
	Errors []*CallError `json:"errors,omitempty"`

	// RequestID correlates the result with log lines and call errors
	RequestID string `json:"request_id"`
}

// MarshalJSON merges the annotation fields into the raw vendor payload, so
// serialized results look like the vendor response plus "provider" and,
// when present, "errors". A payload that is valid JSON but not an object
// cannot be merged into; it is nested under "response" instead.
func (r *Result) MarshalJSON() ([]byte, error) {
	merged := make(map[string]interface{})
	if len(r.Raw) > 0 {
		if err := json.Unmarshal(r.Raw, &merged); err != nil {
			if !json.Valid(r.Raw) {
				return nil, err
			}
			merged["response"] = json.RawMessage(r.Raw)
		}
	}
	merged["provider"] = r.Provider
	merged["request_id"] = r.RequestID
	if len(r.Errors) > 0 {
		errs := make([]map[string]interface{}, 0, len(r.Errors))
		for _, ce := range r.Errors {
			entry := map[string]interface{}{
				"provider":  ce.Provider,
				"message":   ce.Message,
				"retryable": ce.Retryable,
			}
			if ce.StatusCode > 0 {
				entry["status_code"] = ce.StatusCode
			}
			if len(ce.Raw) > 0 {
				entry["raw"] = json.RawMessage(ce.Raw)
			}
			errs = append(errs, entry)
		}
		merged["errors"] = errs
	}
	return json.Marshal(merged)
}
