package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/idv-gateway/internal/domain"
)

// Kind tags the shape a provider callback was recognised as.
type Kind int

const (
	KindIgnored Kind = iota
	KindDecision
	KindLifecycle
)

func (k Kind) String() string {
	switch k {
	case KindDecision:
		return "decision"
	case KindLifecycle:
		return "lifecycle"
	default:
		return "ignored"
	}
}

// NormalizedEvent is the canonical (sessionId, status, evidence) triple extracted
// from a callback. Evidence is always empty for lifecycle events.
type NormalizedEvent struct {
	Kind      Kind
	SessionID string
	SubjectID string
	Status    domain.VerificationStatus
	Evidence  domain.Evidence
	Raw       []byte
}

type wirePayload struct {
	ID           json.RawMessage `json:"id"`
	Action       json.RawMessage `json:"action"`
	VendorData   json.RawMessage `json:"vendorData"`
	Verification json.RawMessage `json:"verification"`
}

type wireDecision struct {
	ID         json.RawMessage `json:"id"`
	Status     json.RawMessage `json:"status"`
	VendorData json.RawMessage `json:"vendorData"`
	Reason     json.RawMessage `json:"reason"`
	ReasonCode json.RawMessage `json:"reasonCode"`
	RiskScore  json.RawMessage `json:"riskScore"`
	RiskLabels json.RawMessage `json:"riskLabels"`
	Document   json.RawMessage `json:"document"`
}

// Classify maps a raw callback body onto a NormalizedEvent. The first matching
// shape wins: a nested decision object, then a top-level lifecycle action.
// Anything else is KindIgnored. It performs no I/O.
func Classify(payload []byte) (NormalizedEvent, error) {
	var p wirePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NormalizedEvent{}, fmt.Errorf("decode webhook payload: %w", domain.ErrMalformedInput)
	}

	var d wireDecision
	var decisionID, decisionStatus string
	hasDecisionObject := isObject(p.Verification)
	if hasDecisionObject {
		if err := json.Unmarshal(p.Verification, &d); err != nil {
			return NormalizedEvent{}, fmt.Errorf("decode verification object: %w", domain.ErrMalformedInput)
		}
		decisionID = idString(d.ID)
		decisionStatus, _ = asString(d.Status)
		if decisionID != "" && decisionStatus != "" {
			subject := idString(d.VendorData)
			if subject == "" {
				subject = idString(p.VendorData)
			}
			return NormalizedEvent{
				Kind:      KindDecision,
				SessionID: decisionID,
				SubjectID: subject,
				Status:    NormalizeStatus(decisionStatus),
				Evidence:  decisionEvidence(d),
				Raw:       payload,
			}, nil
		}
	}

	if action, _ := asString(p.Action); action != "" {
		id := idString(p.ID)
		if id == "" {
			return NormalizedEvent{}, fmt.Errorf("lifecycle event without session id: %w", domain.ErrMalformedInput)
		}
		return NormalizedEvent{
			Kind:      KindLifecycle,
			SessionID: id,
			SubjectID: idString(p.VendorData),
			Status:    NormalizeStatus(action),
			Raw:       payload,
		}, nil
	}

	if hasDecisionObject && decisionID == "" && decisionStatus == "" {
		return NormalizedEvent{}, fmt.Errorf("verification object without id and status: %w", domain.ErrMalformedInput)
	}
	return NormalizedEvent{Kind: KindIgnored, Raw: payload}, nil
}

// NormalizeStatus maps provider status vocabulary onto canonical states.
// Only "success" is renamed; every other value passes through unchanged.
func NormalizeStatus(providerStatus string) domain.VerificationStatus {
	if providerStatus == "success" {
		return domain.StatusApproved
	}
	return domain.VerificationStatus(providerStatus)
}

func decisionEvidence(d wireDecision) domain.Evidence {
	var ev domain.Evidence
	if score, ok := riskScore(d.RiskScore); ok {
		ev.RiskScore = &score
	}
	ev.RiskLabels = riskLabels(d.RiskLabels)
	ev.Document = document(d.Document)
	if reason, ok := asString(d.Reason); ok && reason != "" {
		ev.FailReason = &reason
	}
	if code, ok := asString(d.ReasonCode); ok && code != "" {
		ev.FailCode = &code
	}
	return ev
}

// riskScore accepts either {"score": n} or a bare number. Negative scores are dropped.
func riskScore(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var obj struct {
			Score *float64 `json:"score"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil || obj.Score == nil {
			return 0, false
		}
		n = *obj.Score
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

// riskLabels accepts [{"label": "..."}] or ["..."]. A JSON null yields nil (absent);
// an empty array yields a non-nil empty slice.
func riskLabels(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := asString(item); ok {
			if s != "" {
				labels = append(labels, s)
			}
			continue
		}
		var obj struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Label != "" {
			labels = append(labels, obj.Label)
		}
	}
	return labels
}

func document(raw json.RawMessage) *domain.Document {
	if !isObject(raw) {
		return nil
	}
	var w struct {
		Type    json.RawMessage `json:"type"`
		Number  json.RawMessage `json:"number"`
		Country json.RawMessage `json:"country"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil
	}
	doc := domain.Document{}
	doc.Type, _ = asString(w.Type)
	doc.Number, _ = asString(w.Number)
	doc.Country, _ = asString(w.Country)
	if doc == (domain.Document{}) {
		return nil
	}
	return &doc
}

// asString reads a JSON string verbatim, or a number. ok is false for null, absent or other types.
func asString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

// idString reads an identifier field; surrounding whitespace is not part of an id.
func idString(raw json.RawMessage) string {
	s, _ := asString(raw)
	return strings.TrimSpace(s)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
