// Package engine implements the deterministic gate evaluation engine: five
// pure rule-set evaluators, the state machine that orders them, and the
// dispatch that selects one from a gate identity.
//
// The engine performs no I/O. An evaluation is a single pass over
// already-resident data against an immutable Registry, so concurrent
// evaluations need no locking.
package engine

import (
	"fmt"
	"strings"

	"github.com/kmavego/diagnostic-gate/internal/engine/lexicon"
	"github.com/kmavego/diagnostic-gate/internal/engine/registry"
)

// Decision is the engine's binary outcome, prior to transport translation.
type Decision string

const (
	DecisionPass  Decision = "PASS"
	DecisionBlock Decision = "BLOCK"
)

// Project lifecycle states, in gate order.
const (
	StateDraft             = "DRAFT"
	StateValidatedProblem  = "VALIDATED_PROBLEM"
	StateAdmissionDefined  = "ADMISSION_DEFINED"
	StateDecisionsDefined  = "DECISIONS_DEFINED"
	StateAdmissionEnforced = "ADMISSION_ENFORCED"
	// StateFinal is terminal; no gate applies past it.
	StateFinal = "SCOPE_AND_PATHS_DEFINED"
)

// Gate identifiers.
const (
	GateProblemValidation   = "PROBLEM_VALIDATION_01"
	GateGoalToAdmission     = "GOAL_TO_ADMISSION_02"
	GateContentToDecisions  = "CONTENT_TO_DECISIONS_03"
	GateAssessmentAdmission = "ASSESSMENT_TO_ADMISSION_04"
	GateUniversalityFilter  = "UNIVERSALITY_FILTER_05"
)

// GateRef identifies which rule set applies. Versions are carried through,
// never semantically compared.
type GateRef struct {
	GateID      string
	GateVersion string
}

// stateToGate maps a project's current state to the gate guarding its next
// transition. Dispatch is keyed by state only, never by caller input.
var stateToGate = map[string]GateRef{
	StateDraft:             {GateID: GateProblemValidation, GateVersion: "1.1.0"},
	StateValidatedProblem:  {GateID: GateGoalToAdmission, GateVersion: "1.0.1"},
	StateAdmissionDefined:  {GateID: GateContentToDecisions, GateVersion: "1.0.0"},
	StateDecisionsDefined:  {GateID: GateAssessmentAdmission, GateVersion: "1.0.0"},
	StateAdmissionEnforced: {GateID: GateUniversalityFilter, GateVersion: "1.0.0"},
}

// gateNextState fixes the successor state each gate grants on PASS.
var gateNextState = map[string]string{
	GateProblemValidation:   StateValidatedProblem,
	GateGoalToAdmission:     StateAdmissionDefined,
	GateContentToDecisions:  StateDecisionsDefined,
	GateAssessmentAdmission: StateAdmissionEnforced,
	GateUniversalityFilter:  StateFinal,
}

// GateForState resolves the gate a project in the given state must satisfy
// next. The second return is false for the terminal state and for states the
// machine does not know.
func GateForState(state string) (GateRef, bool) {
	ref, ok := stateToGate[state]
	return ref, ok
}

// IsFinalState reports whether state is the terminal lifecycle state.
func IsFinalState(state string) bool {
	return state == StateFinal
}

// Error is one structured validation finding.
type Error struct {
	ArtifactID     string         `json:"artifact_id"`
	ErrorCode      string         `json:"error_code"`
	ReasonClass    string         `json:"reason_class"`
	MessageVariant string         `json:"message_variant"`
	Message        string         `json:"message"`
	OffendingSpans []lexicon.Span `json:"offending_spans"`
	MissingFields  []string       `json:"missing_fields"`
	UIFieldID      string         `json:"ui_field_id"`
	UIFieldIDs     []string       `json:"ui_field_ids,omitempty"`
	UIBlockID      string         `json:"ui_block_id,omitempty"`
}

// Result is one evaluation outcome. Invariant: PASS carries a next state and
// no errors; BLOCK carries at least one error and no next state.
type Result struct {
	Decision  Decision `json:"decision"`
	NextState string   `json:"next_state,omitempty"`
	Errors    []Error  `json:"errors"`
}

// Engine evaluates artifact payloads against the rule registry.
type Engine struct {
	reg *registry.Registry
}

// New builds an engine over reg after checking that the registry's gate
// configuration documents agree with the dispatch table. A mismatch is a
// configuration integrity defect, reported at startup rather than at
// evaluation time.
func New(reg *registry.Registry) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	for state, ref := range stateToGate {
		doc, ok := reg.GateDoc(ref.GateID)
		if !ok {
			return nil, fmt.Errorf("gate %s has no configuration document", ref.GateID)
		}
		if doc.Version != ref.GateVersion {
			return nil, fmt.Errorf("gate %s: document version %s, dispatch expects %s", ref.GateID, doc.Version, ref.GateVersion)
		}
		if doc.Transition.From != state {
			return nil, fmt.Errorf("gate %s: document transition.from %s, dispatch expects %s", ref.GateID, doc.Transition.From, state)
		}
		if doc.Transition.To != gateNextState[ref.GateID] {
			return nil, fmt.Errorf("gate %s: document transition.to %s, dispatch expects %s", ref.GateID, doc.Transition.To, gateNextState[ref.GateID])
		}
	}
	return &Engine{reg: reg}, nil
}

// Registry exposes the engine's rule configuration to collaborators that
// render it (the UI schema endpoint).
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Evaluate runs the rule set identified by gateID against artifacts. An
// unknown gate id is a hard BLOCK with a single generic error; this is a
// defensive terminal case, not a recoverable one.
func (e *Engine) Evaluate(gateID string, artifacts map[string]any) Result {
	switch strings.TrimSpace(gateID) {
	case GateProblemValidation:
		return e.evalProblemValidation(artifacts)
	case GateGoalToAdmission:
		return e.evalGoalToAdmission(artifacts)
	case GateContentToDecisions:
		return e.evalContentToDecisions(artifacts)
	case GateAssessmentAdmission:
		return e.evalAssessmentToAdmission(artifacts)
	case GateUniversalityFilter:
		return e.evalUniversalityFilter(artifacts)
	}
	return Result{
		Decision: DecisionBlock,
		Errors: []Error{
			e.newError("gate_id", "ERR_UNKNOWN_GATE", errorOpts{variant: registry.VariantDetailed}),
		},
	}
}

// errorOpts carries the optional parts of a finding.
type errorOpts struct {
	variant    registry.Variant
	spans      []lexicon.Span
	missing    []string
	uiFieldID  string
	uiFieldIDs []string
	uiBlockID  string
}

// newError assembles a finding, resolving the reason class and message text
// from the registry. The UI binding defaults to the artifact id.
func (e *Engine) newError(artifactID, code string, opts errorOpts) Error {
	variant := opts.variant
	if variant == "" {
		variant = registry.VariantNormal
	}
	uiFieldID := opts.uiFieldID
	if uiFieldID == "" {
		uiFieldID = artifactID
	}
	spans := opts.spans
	if spans == nil {
		spans = []lexicon.Span{}
	}
	missing := opts.missing
	if missing == nil {
		missing = []string{}
	}
	return Error{
		ArtifactID:     artifactID,
		ErrorCode:      code,
		ReasonClass:    e.reg.ReasonClass(code),
		MessageVariant: string(variant),
		Message:        e.reg.Message(code, variant),
		OffendingSpans: spans,
		MissingFields:  missing,
		UIFieldID:      uiFieldID,
		UIFieldIDs:     opts.uiFieldIDs,
		UIBlockID:      opts.uiBlockID,
	}
}

// errorList aggregates findings, collapsing duplicate artifact+code pairs.
type errorList struct {
	errs []Error
}

func (l *errorList) add(err Error) {
	for _, existing := range l.errs {
		if existing.ArtifactID == err.ArtifactID && existing.ErrorCode == err.ErrorCode {
			return
		}
	}
	l.errs = append(l.errs, err)
}

// finish produces the result for a gate: BLOCK with the aggregated errors, or
// PASS with the gate's fixed next state.
func finish(gateID string, errs errorList) Result {
	if len(errs.errs) > 0 {
		return Result{Decision: DecisionBlock, Errors: errs.errs}
	}
	return Result{Decision: DecisionPass, NextState: gateNextState[gateID], Errors: []Error{}}
}
