package engine

import (
	"strconv"
	"strings"

	"github.com/kmavego/diagnostic-gate/internal/engine/lexicon"
	"github.com/kmavego/diagnostic-gate/internal/engine/registry"
)

// minErrorScenarioWords is the floor for a usable error scenario narrative.
const minErrorScenarioWords = 20

// impactThresholds is the minimum economic impact per supported unit.
var impactThresholds = map[string]float64{
	"USD":         500,
	"RUB":         30000,
	"Hours":       40,
	"Conversion%": 1,
}

// stringArtifact reads a free-text artifact. A missing or non-string value
// reads as empty text; downstream checks then fail it as incomplete rather
// than crashing.
func stringArtifact(artifacts map[string]any, key string) string {
	value, ok := artifacts[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return text
}

// listArtifact reads a list artifact. The second return is false when the
// field is absent or not a list.
func listArtifact(artifacts map[string]any, key string) ([]any, bool) {
	value, ok := artifacts[key]
	if !ok {
		return nil, false
	}
	items, ok := value.([]any)
	return items, ok
}

// itemString reads a string field from one entry of an object list.
func itemString(item any, key string) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	text, _ := obj[key].(string)
	return text
}

// numericValue coerces the loosely-typed amount field to a float.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func startsWithAny(text string, prefixes []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(lowered, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// evalProblemValidation guards DRAFT -> VALIDATED_PROBLEM.
func (e *Engine) evalProblemValidation(artifacts map[string]any) Result {
	lex := e.reg.Lexicon()
	var errs errorList

	targetAction := stringArtifact(artifacts, "target_action")
	for _, verb := range lex.StateVerbs {
		if !lexicon.ContainsAny(targetAction, []string{verb}) {
			continue
		}
		var spans []lexicon.Span
		if span, ok := lexicon.FirstSpan(targetAction, verb); ok {
			spans = append(spans, span)
		}
		errs.add(e.newError("target_action", "ERR_VAGUE_OBJECTIVE", errorOpts{spans: spans}))
		break
	}

	// Too short and missing a trigger cue collapse into one finding.
	errorScenario := stringArtifact(artifacts, "error_scenario")
	if lexicon.WordCount(errorScenario) < minErrorScenarioWords {
		errs.add(e.newError("error_scenario", "ERR_INCOMPLETE_ERROR_SCENARIO", errorOpts{}))
	}
	if !lexicon.ContainsAny(errorScenario, lex.ConditionalCues) {
		errs.add(e.newError("error_scenario", "ERR_INCOMPLETE_ERROR_SCENARIO", errorOpts{}))
	}
	if lexicon.ContainsAny(errorScenario, lex.VagueConsequences) {
		errs.add(e.newError("error_scenario", "ERR_ABSTRACT_ERROR", errorOpts{}))
	}

	if impactErr := e.checkEconomicImpact(artifacts); impactErr != nil {
		errs.add(*impactErr)
	}

	return finish(GateProblemValidation, errs)
}

// checkEconomicImpact validates the {amount, unit} pair and its per-unit
// floor. All failure modes report the same code with a UI binding pointing at
// the offending sub-field.
func (e *Engine) checkEconomicImpact(artifacts map[string]any) *Error {
	raw, present := artifacts["economic_impact"]
	obj, isObject := raw.(map[string]any)
	if !present || !isObject {
		err := e.newError("economic_impact", "ERR_LOW_BUSINESS_IMPACT", errorOpts{
			missing:    []string{"amount", "unit"},
			uiFieldID:  "economic_impact.amount",
			uiFieldIDs: []string{"economic_impact.amount", "economic_impact.unit"},
		})
		return &err
	}

	var missing []string
	amountRaw, hasAmount := obj["amount"]
	unitRaw, hasUnit := obj["unit"]
	if !hasAmount {
		missing = append(missing, "amount")
	}
	if !hasUnit {
		missing = append(missing, "unit")
	}
	if len(missing) > 0 {
		uiIDs := make([]string, 0, len(missing))
		for _, field := range missing {
			uiIDs = append(uiIDs, "economic_impact."+field)
		}
		err := e.newError("economic_impact", "ERR_LOW_BUSINESS_IMPACT", errorOpts{
			missing:    missing,
			uiFieldID:  uiIDs[0],
			uiFieldIDs: uiIDs,
		})
		return &err
	}

	amount, amountOK := numericValue(amountRaw)
	if !amountOK {
		err := e.newError("economic_impact", "ERR_LOW_BUSINESS_IMPACT", errorOpts{
			uiFieldID: "economic_impact.amount",
		})
		return &err
	}
	unit, unitOK := unitRaw.(string)
	threshold, knownUnit := impactThresholds[unit]
	if !unitOK || !knownUnit {
		err := e.newError("economic_impact", "ERR_LOW_BUSINESS_IMPACT", errorOpts{
			uiFieldID: "economic_impact.unit",
		})
		return &err
	}
	if amount < threshold {
		err := e.newError("economic_impact", "ERR_LOW_BUSINESS_IMPACT", errorOpts{
			uiFieldID: "economic_impact.amount",
		})
		return &err
	}
	return nil
}

// evalGoalToAdmission guards VALIDATED_PROBLEM -> ADMISSION_DEFINED.
func (e *Engine) evalGoalToAdmission(artifacts map[string]any) Result {
	lex := e.reg.Lexicon()
	var errs errorList

	learningGoal := stringArtifact(artifacts, "learning_goal")
	decisionContext := stringArtifact(artifacts, "decision_context")
	admissionRule := stringArtifact(artifacts, "admission_rule")

	if lexicon.ContainsAny(learningGoal, lex.StateVerbs) || lexicon.ContainsAny(learningGoal, lex.AbstractNouns) {
		errs.add(e.newError("learning_goal", "ERR_DECLARATIVE_GOAL", errorOpts{}))
	}
	if !lexicon.ContainsAny(learningGoal, lex.ConditionalCues) || len(lexicon.Keywords(learningGoal)) < 3 {
		errs.add(e.newError("learning_goal", "ERR_NON_OPERATIONAL_GOAL", errorOpts{}))
	}

	if !lexicon.ContainsAny(decisionContext, lex.TriggerMarkers) || !lexicon.ContainsAny(decisionContext, lex.AlternativeMarkers) {
		errs.add(e.newError("decision_context", "ERR_NO_DECISION_CONTEXT", errorOpts{}))
	}

	if !startsWithAny(admissionRule, lex.HardAdmissionVerbs) || lexicon.ContainsAny(admissionRule, lex.SoftModals) {
		errs.add(e.newError("admission_rule", "ERR_INVALID_ADMISSION_RULE", errorOpts{}))
	}
	if strings.TrimSpace(admissionRule) != "" && strings.TrimSpace(learningGoal) != "" && lexicon.Mismatch(learningGoal, admissionRule) {
		errs.add(e.newError("admission_rule", "ERR_GOAL_RULE_MISMATCH", errorOpts{variant: registry.VariantDetailed}))
	}

	return finish(GateGoalToAdmission, errs)
}

// evalContentToDecisions guards ADMISSION_DEFINED -> DECISIONS_DEFINED.
func (e *Engine) evalContentToDecisions(artifacts map[string]any) Result {
	var errs errorList

	outline, outlineIsList := listArtifact(artifacts, "content_outline")
	if !outlineIsList || len(outline) < 3 {
		errs.add(e.newError("content_outline", "ERR_CONTENT_WITHOUT_DECISIONS", errorOpts{}))
	} else {
		generic := e.reg.PatternExamples("topic_only_titles")
		for _, entry := range outline {
			title, _ := entry.(string)
			if isGenericTitle(title, generic) {
				errs.add(e.newError("content_outline", "ERR_CONTENT_WITHOUT_DECISIONS", errorOpts{}))
				break
			}
		}
	}

	decisions, decisionsIsList := listArtifact(artifacts, "critical_decisions_map")
	if !decisionsIsList || len(decisions) < 3 {
		errs.add(e.newError("critical_decisions_map", "ERR_INSUFFICIENT_DECISIONS", errorOpts{}))
	} else {
		theoretical := e.reg.PatternTriggers("theoretical_choices_only")
		stateVerbs := e.reg.Lexicon().StateVerbs
		for _, decision := range decisions {
			point := itemString(decision, "decision_point")
			if lexicon.ContainsAny(point, theoretical) || lexicon.ContainsAny(point, stateVerbs) {
				errs.add(e.newError("critical_decisions_map", "ERR_THEORETICAL_DECISIONS", errorOpts{}))
				break
			}
		}
	}

	links, linksIsList := listArtifact(artifacts, "error_prevention_links")
	if !linksIsList || len(links) == 0 {
		errs.add(e.newError("error_prevention_links", "ERR_CONTENT_NOT_PREVENTING_ERRORS", errorOpts{variant: registry.VariantDetailed}))
	} else {
		if decisionsIsList && len(decisions) >= 1 && len(links) < len(decisions) {
			errs.add(e.newError("error_prevention_links", "ERR_CONTENT_NOT_PREVENTING_ERRORS", errorOpts{variant: registry.VariantDetailed}))
		}
		benefits := e.reg.PatternTriggers("generic_benefits")
		for _, link := range links {
			prevented := itemString(link, "prevented_error")
			rationale := itemString(link, "rationale")
			if lexicon.ContainsAny(prevented+" "+rationale, benefits) {
				errs.add(e.newError("error_prevention_links", "ERR_CONTENT_NOT_PREVENTING_ERRORS", errorOpts{variant: registry.VariantDetailed}))
				break
			}
		}
	}

	return finish(GateContentToDecisions, errs)
}

func isGenericTitle(title string, generic []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, example := range generic {
		if normalized == strings.ToLower(example) {
			return true
		}
	}
	return false
}

// evalAssessmentToAdmission guards DECISIONS_DEFINED -> ADMISSION_ENFORCED.
func (e *Engine) evalAssessmentToAdmission(artifacts map[string]any) Result {
	lex := e.reg.Lexicon()
	var errs errorList

	assessmentDesign := stringArtifact(artifacts, "assessment_design")
	admissionDecision := stringArtifact(artifacts, "admission_decision")
	failureConsequences := stringArtifact(artifacts, "failure_consequences")

	if lexicon.ContainsAny(assessmentDesign, lex.KnowledgeMarkers) {
		errs.add(e.newError("assessment_design", "ERR_KNOWLEDGE_ASSESSMENT", errorOpts{}))
	}
	if !lexicon.ContainsAny(assessmentDesign, lex.FailureMarkers) {
		errs.add(e.newError("assessment_design", "ERR_NON_FAILABLE_ASSESSMENT", errorOpts{}))
	}

	if lexicon.ContainsAny(admissionDecision, lex.SoftModals) || !lexicon.ContainsAny(admissionDecision, lex.AdmissionMarkers) {
		errs.add(e.newError("admission_decision", "ERR_SOFT_ADMISSION", errorOpts{variant: registry.VariantDetailed}))
	}

	// A "no real consequence" trigger phrase fails the field regardless of
	// any other content.
	if lexicon.ContainsAny(failureConsequences, e.reg.PatternTriggers("no_real_consequences")) || !lexicon.ContainsAny(failureConsequences, lex.BlockMarkers) {
		errs.add(e.newError("failure_consequences", "ERR_NO_REAL_CONSEQUENCE", errorOpts{variant: registry.VariantDetailed}))
	}

	return finish(GateAssessmentAdmission, errs)
}

// evalUniversalityFilter guards ADMISSION_ENFORCED -> SCOPE_AND_PATHS_DEFINED.
func (e *Engine) evalUniversalityFilter(artifacts map[string]any) Result {
	lex := e.reg.Lexicon()
	var errs errorList

	audienceBounds := stringArtifact(artifacts, "audience_bounds")
	entryDiagnostics := stringArtifact(artifacts, "entry_level_diagnostics")
	branching := stringArtifact(artifacts, "branching_or_paths")

	if lexicon.ContainsAny(audienceBounds, lex.UniversalityClaims) {
		errs.add(e.newError("audience_bounds", "ERR_UNIVERSAL_AUDIENCE", errorOpts{}))
	}
	if !lexicon.ContainsAny(audienceBounds, lex.ExclusionMarkers) {
		errs.add(e.newError("audience_bounds", "ERR_NO_EXCLUSION_CRITERIA", errorOpts{}))
	}

	if lexicon.ContainsAny(entryDiagnostics, e.reg.PatternTriggers("self_declared_levels")) {
		errs.add(e.newError("entry_level_diagnostics", "ERR_SELF_DECLARED_LEVEL", errorOpts{}))
	}

	if lexicon.CountOccurrences(branching, "path") < 2 || !lexicon.ContainsAny(branching, lex.GatingMarkers) {
		errs.add(e.newError("branching_or_paths", "ERR_NO_BRANCHING", errorOpts{}))
	}

	risks, risksIsList := listArtifact(artifacts, "contraindications_and_risks")
	if !risksIsList || len(risks) < 2 {
		errs.add(e.newError("contraindications_and_risks", "ERR_NO_CONTRAINDICATIONS", errorOpts{variant: registry.VariantDetailed}))
	}

	return finish(GateUniversalityFilter, errs)
}
