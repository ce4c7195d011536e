package assistant

import (
	"encoding/json"
	"strings"
)

// ModelReply is the JSON structure the model is instructed to produce.
type ModelReply struct {
	Message         string   `json:"message"`
	ProductIDs      []string `json:"product_ids"`
	Recommendations []string `json:"recommendations"`
}

// ParseResult is a tagged decode outcome. The Err branch, not an exception
// path, is what routes the caller into the heuristic fallback.
type ParseResult struct {
	Ok    bool
	Reply ModelReply
	Err   string
}

// ParseReply strictly decodes a model response. Models wrap JSON in
// markdown code fences often enough that stripping them first is required.
func ParseReply(raw string) ParseResult {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return ParseResult{Err: "empty response"}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var reply ModelReply
	if err := dec.Decode(&reply); err != nil {
		return ParseResult{Err: "invalid JSON: " + err.Error()}
	}
	if len(reply.ProductIDs) == 0 {
		return ParseResult{Err: "no product ids in reply"}
	}
	return ParseResult{Ok: true, Reply: reply}
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
