package httpapi

import (
	"encoding/json"
	"strings"
)

// Transport decision vocabulary. Engine decisions and any legacy synonyms a
// stored payload may carry collapse into these four values.
const (
	DecisionAllow    = "allow"
	DecisionReject   = "reject"
	DecisionNeedMore = "need_more"
	DecisionError    = "error"
)

// fallbackErrorCode is used when a raw error carries no usable code.
const fallbackErrorCode = "GATE_REJECTED"

// MapDecision folds a raw decision word into the transport vocabulary. The
// function is total: any unrecognized input maps to the error decision
// instead of failing.
func MapDecision(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PASS", "ALLOW", "OK":
		return DecisionAllow
	case "BLOCK", "REJECT", "DENY":
		return DecisionReject
	case "NEED_MORE", "NEEDMORE":
		return DecisionNeedMore
	default:
		return DecisionError
	}
}

// TransportError is the wire form of one validation finding.
type TransportError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Path     string         `json:"path"`
	Severity string         `json:"severity"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// metaKeys lists the raw error fields forwarded into meta when present.
var metaKeys = []string{
	"ui_field_id",
	"ui_field_ids",
	"ui_block_id",
	"artifact_path",
	"rule_id",
	"gate_id",
	"gate_version",
}

// GateIdentity names the gate whose evaluation produced the errors being
// normalized. Both fields are stamped into every error's meta so a finding
// stays traceable to the gate and rule that raised it.
type GateIdentity struct {
	GateID      string
	GateVersion string
}

// NormalizeErrors converts a loosely-typed error list into transport errors.
// Every element produces exactly one entry; nothing is dropped.
func NormalizeErrors(raw []any, gate GateIdentity) []TransportError {
	normalized := make([]TransportError, 0, len(raw))
	for _, entry := range raw {
		normalized = append(normalized, NormalizeError(entry, gate))
	}
	return normalized
}

// NormalizeError converts one raw error of any shape into a transport error.
// Object shapes keep their code and field bindings; strings and unknown
// shapes coerce to the fallback code so a malformed stored payload still
// renders rather than breaking the response. The gate identity lands in meta
// on every shape, fallback included.
func NormalizeError(raw any, gate GateIdentity) TransportError {
	switch value := raw.(type) {
	case map[string]any:
		return normalizeObjectError(value, gate)
	case string:
		return TransportError{
			Code:     fallbackErrorCode,
			Message:  value,
			Path:     "/artifacts",
			Severity: "error",
			Meta:     gateMeta(nil, gate),
		}
	default:
		return TransportError{
			Code:     fallbackErrorCode,
			Message:  renderJSON(raw),
			Path:     "/artifacts",
			Severity: "error",
			Meta:     gateMeta(nil, gate),
		}
	}
}

func normalizeObjectError(obj map[string]any, gate GateIdentity) TransportError {
	code := stringField(obj, "error_code")
	if code == "" {
		code = stringField(obj, "code")
	}
	if code == "" {
		code = fallbackErrorCode
	}

	message := stringField(obj, "message")
	if message == "" {
		message = renderJSON(obj)
	}

	severity := stringField(obj, "severity")
	if severity == "" {
		severity = "error"
	}

	out := TransportError{
		Code:     code,
		Message:  message,
		Path:     errorPath(obj),
		Severity: severity,
	}

	meta := make(map[string]any)
	for _, key := range metaKeys {
		value, ok := obj[key]
		if !ok || isEmptyMetaValue(value) {
			continue
		}
		meta[key] = value
	}
	if _, ok := meta["rule_id"]; !ok && code != fallbackErrorCode {
		meta["rule_id"] = code
	}
	if _, ok := meta["artifact_path"]; !ok && out.Path != "/artifacts" {
		meta["artifact_path"] = out.Path
	}
	if len(meta) == 0 {
		meta = nil
	}
	out.Meta = gateMeta(meta, gate)
	return out
}

// gateMeta stamps the gate identity into meta. Explicit values on the raw
// error win over the injected ones.
func gateMeta(meta map[string]any, gate GateIdentity) map[string]any {
	if gate.GateID == "" && gate.GateVersion == "" {
		return meta
	}
	if meta == nil {
		meta = make(map[string]any, 2)
	}
	if _, ok := meta["gate_id"]; !ok && gate.GateID != "" {
		meta["gate_id"] = gate.GateID
	}
	if _, ok := meta["gate_version"]; !ok && gate.GateVersion != "" {
		meta["gate_version"] = gate.GateVersion
	}
	return meta
}

// errorPath derives the JSON-pointer-ish artifact path. A legacy dotted
// "artifacts.x" form normalizes to the slash form.
func errorPath(obj map[string]any) string {
	if artifactID := stringField(obj, "artifact_id"); artifactID != "" {
		return "/artifacts/" + artifactID
	}
	for _, key := range []string{"path", "artifact_path"} {
		path := stringField(obj, key)
		if path == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(path, "artifacts."); ok && rest != "" {
			return "/artifacts/" + rest
		}
		if strings.HasPrefix(path, "/artifacts") {
			return path
		}
	}
	return "/artifacts"
}

func stringField(obj map[string]any, key string) string {
	value, _ := obj[key].(string)
	return strings.TrimSpace(value)
}

func isEmptyMetaValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func renderJSON(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return "unrenderable error payload"
	}
	return string(raw)
}
