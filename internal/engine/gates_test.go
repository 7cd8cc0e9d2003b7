package engine

import (
	"strings"
	"testing"
)

func findError(t *testing.T, result Result, artifactID, code string) Error {
	t.Helper()
	for _, e := range result.Errors {
		if e.ArtifactID == artifactID && e.ErrorCode == code {
			return e
		}
	}
	t.Fatalf("no error %s on artifact %s in %+v", code, artifactID, result.Errors)
	return Error{}
}

func countErrors(result Result, artifactID, code string) int {
	n := 0
	for _, e := range result.Errors {
		if e.ArtifactID == artifactID && e.ErrorCode == code {
			n++
		}
	}
	return n
}

func TestProblemValidationLowImpact(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["economic_impact"] = map[string]any{"amount": 100.0, "unit": "RUB"}

	result := eng.Evaluate(GateProblemValidation, artifacts)
	if result.Decision != DecisionBlock {
		t.Fatalf("decision = %s, want BLOCK", result.Decision)
	}
	got := findError(t, result, "economic_impact", "ERR_LOW_BUSINESS_IMPACT")
	if got.UIFieldID != "economic_impact.amount" {
		t.Fatalf("ui_field_id = %q, want economic_impact.amount", got.UIFieldID)
	}
	if len(got.MissingFields) != 0 {
		t.Fatalf("missing fields = %v, want none for a present-but-low amount", got.MissingFields)
	}
}

func TestProblemValidationMissingImpactFields(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["economic_impact"] = map[string]any{"amount": 600.0}

	result := eng.Evaluate(GateProblemValidation, artifacts)
	got := findError(t, result, "economic_impact", "ERR_LOW_BUSINESS_IMPACT")
	if len(got.MissingFields) != 1 || got.MissingFields[0] != "unit" {
		t.Fatalf("missing fields = %v, want [unit]", got.MissingFields)
	}
	if got.UIFieldID != "economic_impact.unit" {
		t.Fatalf("ui_field_id = %q, want economic_impact.unit", got.UIFieldID)
	}
}

func TestProblemValidationUnknownUnit(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["economic_impact"] = map[string]any{"amount": 9999.0, "unit": "EUR"}

	result := eng.Evaluate(GateProblemValidation, artifacts)
	got := findError(t, result, "economic_impact", "ERR_LOW_BUSINESS_IMPACT")
	if got.UIFieldID != "economic_impact.unit" {
		t.Fatalf("ui_field_id = %q, want economic_impact.unit", got.UIFieldID)
	}
}

func TestProblemValidationImpactThresholds(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	tests := []struct {
		amount float64
		unit   string
		pass   bool
	}{
		{500, "USD", true},
		{499.99, "USD", false},
		{30000, "RUB", true},
		{29999, "RUB", false},
		{40, "Hours", true},
		{39, "Hours", false},
		{1, "Conversion%", true},
		{0.5, "Conversion%", false},
	}
	for _, tc := range tests {
		artifacts := passingArtifacts(GateProblemValidation)
		artifacts["economic_impact"] = map[string]any{"amount": tc.amount, "unit": tc.unit}
		result := eng.Evaluate(GateProblemValidation, artifacts)
		blocked := countErrors(result, "economic_impact", "ERR_LOW_BUSINESS_IMPACT") > 0
		if blocked == tc.pass {
			t.Fatalf("%v %s: impact finding = %v, want pass = %v", tc.amount, tc.unit, blocked, tc.pass)
		}
	}
}

func TestProblemValidationStateVerbSpans(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["target_action"] = "Participants will Understand the retry queue"

	result := eng.Evaluate(GateProblemValidation, artifacts)
	got := findError(t, result, "target_action", "ERR_VAGUE_OBJECTIVE")
	if len(got.OffendingSpans) == 0 {
		t.Fatal("expected at least one offending span")
	}
	span := got.OffendingSpans[0]
	if !strings.EqualFold(span.Text, "understand") {
		t.Fatalf("span text = %q, want the matched verb", span.Text)
	}
	original := artifacts["target_action"].(string)
	if original[span.Start:span.End] != span.Text {
		t.Fatalf("span offsets do not slice the original text: %+v", span)
	}
}

func TestProblemValidationScenarioFindingsCollapse(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	// Both short and missing a conditional cue: the two checks must collapse
	// into one finding per artifact+code pair.
	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["error_scenario"] = "Something breaks sometimes."

	result := eng.Evaluate(GateProblemValidation, artifacts)
	if n := countErrors(result, "error_scenario", "ERR_INCOMPLETE_ERROR_SCENARIO"); n != 1 {
		t.Fatalf("incomplete-scenario findings = %d, want 1", n)
	}
}

func TestProblemValidationVagueConsequence(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateProblemValidation)
	artifacts["error_scenario"] = "When the release goes out without review, quality suffers across the team and the whole process slows down for several days in a row."

	result := eng.Evaluate(GateProblemValidation, artifacts)
	findError(t, result, "error_scenario", "ERR_ABSTRACT_ERROR")
}

func TestGoalToAdmissionDeclarativeGoal(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	artifacts["learning_goal"] = "Build awareness of deployment pipelines when an incident occurs in the release flow"

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	findError(t, result, "learning_goal", "ERR_DECLARATIVE_GOAL")
}

func TestGoalToAdmissionNonOperationalGoal(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	// No conditional cue anywhere in the goal.
	artifacts["learning_goal"] = "The engineer rolls back the release deploy within ten minutes"

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	findError(t, result, "learning_goal", "ERR_NON_OPERATIONAL_GOAL")
}

func TestGoalToAdmissionMissingDecisionContext(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	artifacts["decision_context"] = "Deploys sometimes break and people handle it."

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	findError(t, result, "decision_context", "ERR_NO_DECISION_CONTEXT")
}

func TestGoalToAdmissionSoftRule(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	artifacts["admission_rule"] = "Deny sign-off, though the reviewer could waive the release rollback on a failed deploy."

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	findError(t, result, "admission_rule", "ERR_INVALID_ADMISSION_RULE")
}

func TestGoalToAdmissionRuleMustOpenWithHardVerb(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	artifacts["admission_rule"] = "The engineer is denied sign-off for the release rollback on a failed deploy."

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	findError(t, result, "admission_rule", "ERR_INVALID_ADMISSION_RULE")
}

func TestGoalToAdmissionKeywordMismatch(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateGoalToAdmission)
	artifacts["admission_rule"] = "Deny enrollment pending a submitted questionnaire score"

	result := eng.Evaluate(GateGoalToAdmission, artifacts)
	got := findError(t, result, "admission_rule", "ERR_GOAL_RULE_MISMATCH")
	if got.MessageVariant != "detailed" {
		t.Fatalf("message variant = %q, want detailed", got.MessageVariant)
	}
}

func TestContentToDecisionsThinOutline(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateContentToDecisions)
	artifacts["content_outline"] = []any{"Choosing a rollback window", "Declaring an incident"}

	result := eng.Evaluate(GateContentToDecisions, artifacts)
	findError(t, result, "content_outline", "ERR_CONTENT_WITHOUT_DECISIONS")
}

func TestContentToDecisionsGenericTitle(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateContentToDecisions)
	artifacts["content_outline"] = []any{
		"Introduction",
		"Choosing a rollback window",
		"Declaring an incident",
	}

	result := eng.Evaluate(GateContentToDecisions, artifacts)
	findError(t, result, "content_outline", "ERR_CONTENT_WITHOUT_DECISIONS")
}

func TestContentToDecisionsTheoreticalDecision(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateContentToDecisions)
	artifacts["critical_decisions_map"] = []any{
		map[string]any{"decision_point": "Which definition of an incident is correct"},
		map[string]any{"decision_point": "Page the on-call engineer or wait for the next alert"},
		map[string]any{"decision_point": "Declare an incident or keep monitoring the dashboards"},
	}

	result := eng.Evaluate(GateContentToDecisions, artifacts)
	findError(t, result, "critical_decisions_map", "ERR_THEORETICAL_DECISIONS")
}

func TestContentToDecisionsLinkCoverage(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateContentToDecisions)
	links := artifacts["error_prevention_links"].([]any)
	artifacts["error_prevention_links"] = links[:1]

	result := eng.Evaluate(GateContentToDecisions, artifacts)
	got := findError(t, result, "error_prevention_links", "ERR_CONTENT_NOT_PREVENTING_ERRORS")
	if got.MessageVariant != "detailed" {
		t.Fatalf("message variant = %q, want detailed", got.MessageVariant)
	}
}

func TestContentToDecisionsGenericBenefit(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateContentToDecisions)
	links := artifacts["error_prevention_links"].([]any)
	links[0] = map[string]any{
		"decision_point":  "Roll back or hotfix forward after a failed deploy",
		"prevented_error": "None in particular",
		"rationale":       "Following this saves time for the whole team",
	}

	result := eng.Evaluate(GateContentToDecisions, artifacts)
	findError(t, result, "error_prevention_links", "ERR_CONTENT_NOT_PREVENTING_ERRORS")
}

func TestAssessmentToAdmissionKnowledgeCheck(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateAssessmentAdmission)
	artifacts["assessment_design"] = "A multiple choice quiz on rollback theory; below 70% is a fail."

	result := eng.Evaluate(GateAssessmentAdmission, artifacts)
	findError(t, result, "assessment_design", "ERR_KNOWLEDGE_ASSESSMENT")
}

func TestAssessmentToAdmissionNotFailable(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateAssessmentAdmission)
	artifacts["assessment_design"] = "The candidate performs a live rollback on a staging outage with a mentor watching."

	result := eng.Evaluate(GateAssessmentAdmission, artifacts)
	findError(t, result, "assessment_design", "ERR_NON_FAILABLE_ASSESSMENT")
}

func TestAssessmentToAdmissionSoftDecision(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateAssessmentAdmission)
	artifacts["admission_decision"] = "Access to production is recommended once the candidate feels ready."

	result := eng.Evaluate(GateAssessmentAdmission, artifacts)
	got := findError(t, result, "admission_decision", "ERR_SOFT_ADMISSION")
	if got.MessageVariant != "detailed" {
		t.Fatalf("message variant = %q, want detailed", got.MessageVariant)
	}
}

func TestAssessmentToAdmissionNoRealConsequence(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateAssessmentAdmission)
	// The trigger phrase fails the field even though a block marker is present.
	artifacts["failure_consequences"] = "Deploy rights stay blocked, but the candidate can just review the material and try once more."

	result := eng.Evaluate(GateAssessmentAdmission, artifacts)
	findError(t, result, "failure_consequences", "ERR_NO_REAL_CONSEQUENCE")
}

func TestUniversalityFilterUniversalAudience(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateUniversalityFilter)
	artifacts["audience_bounds"] = "Anyone who deploys software, though interns are excluded."

	result := eng.Evaluate(GateUniversalityFilter, artifacts)
	findError(t, result, "audience_bounds", "ERR_UNIVERSAL_AUDIENCE")
}

func TestUniversalityFilterNoExclusions(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateUniversalityFilter)
	artifacts["audience_bounds"] = "Backend engineers with six months of on-call duty."

	result := eng.Evaluate(GateUniversalityFilter, artifacts)
	findError(t, result, "audience_bounds", "ERR_NO_EXCLUSION_CRITERIA")
}

func TestUniversalityFilterSelfDeclaredLevel(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateUniversalityFilter)
	artifacts["entry_level_diagnostics"] = "Candidates rate yourself from one to five on incident handling."

	result := eng.Evaluate(GateUniversalityFilter, artifacts)
	findError(t, result, "entry_level_diagnostics", "ERR_SELF_DECLARED_LEVEL")
}

func TestUniversalityFilterSinglePath(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateUniversalityFilter)
	artifacts["branching_or_paths"] = "Everyone follows one path with a gate check at the end."

	result := eng.Evaluate(GateUniversalityFilter, artifacts)
	findError(t, result, "branching_or_paths", "ERR_NO_BRANCHING")
}

func TestUniversalityFilterTooFewContraindications(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	artifacts := passingArtifacts(GateUniversalityFilter)
	artifacts["contraindications_and_risks"] = []any{"Engineers without any production access"}

	result := eng.Evaluate(GateUniversalityFilter, artifacts)
	got := findError(t, result, "contraindications_and_risks", "ERR_NO_CONTRAINDICATIONS")
	if got.MessageVariant != "detailed" {
		t.Fatalf("message variant = %q, want detailed", got.MessageVariant)
	}
}

func TestMissingArtifactsBlockEveryGate(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	gates := []string{
		GateProblemValidation,
		GateGoalToAdmission,
		GateContentToDecisions,
		GateAssessmentAdmission,
		GateUniversalityFilter,
	}
	for _, gateID := range gates {
		result := eng.Evaluate(gateID, map[string]any{})
		if result.Decision != DecisionBlock {
			t.Fatalf("%s on empty artifacts = %s, want BLOCK", gateID, result.Decision)
		}
		if len(result.Errors) == 0 {
			t.Fatalf("%s on empty artifacts produced no findings", gateID)
		}
	}
}
