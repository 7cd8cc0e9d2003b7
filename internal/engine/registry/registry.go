// Package registry loads the engine's rule configuration: the error message
// catalog, the lexical dictionaries, the forbidden-pattern trigger lists, and
// the per-gate configuration documents.
//
// A Registry is built once at startup and is read-only afterwards, so
// concurrent evaluations share it without locking. There is no hot reload; a
// fresh load happens only on process restart.
package registry

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kmavego/diagnostic-gate/internal/engine/registry/rules"
)

// Variant selects a message verbosity level.
type Variant string

const (
	VariantShort    Variant = "short"
	VariantNormal   Variant = "normal"
	VariantDetailed Variant = "detailed"
)

// Lexicon holds the shared phrase dictionaries the evaluators scan for.
type Lexicon struct {
	StateVerbs         []string `yaml:"state_verbs"`
	SoftModals         []string `yaml:"soft_modals"`
	UniversalityClaims []string `yaml:"universality_claims"`
	VagueConsequences  []string `yaml:"vague_consequences"`
	AbstractNouns      []string `yaml:"abstract_nouns"`
	ConditionalCues    []string `yaml:"conditional_cues"`
	TriggerMarkers     []string `yaml:"trigger_markers"`
	AlternativeMarkers []string `yaml:"alternative_markers"`
	HardAdmissionVerbs []string `yaml:"hard_admission_verbs"`
	AdmissionMarkers   []string `yaml:"admission_markers"`
	BlockMarkers       []string `yaml:"block_markers"`
	FailureMarkers     []string `yaml:"failure_markers"`
	KnowledgeMarkers   []string `yaml:"knowledge_assessment_markers"`
	ExclusionMarkers   []string `yaml:"exclusion_markers"`
	GatingMarkers      []string `yaml:"gating_markers"`
}

// Pattern is one forbidden-pattern entry: trigger phrases that flag a field,
// or example values that mark an entry as a generic placeholder.
type Pattern struct {
	Triggers []string `yaml:"triggers"`
	Examples []string `yaml:"examples"`
}

// ArtifactField describes one artifact input of a gate, as rendered by the
// caller's form.
type ArtifactField struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Component   string `yaml:"component" json:"component"`
	Required    bool   `yaml:"required" json:"required"`
	Placeholder string `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Help        string `yaml:"help,omitempty" json:"help,omitempty"`
}

// GateRule is one declared rule of a gate configuration document.
type GateRule struct {
	RuleID      string `yaml:"rule_id"`
	ErrorCode   string `yaml:"error_code"`
	ReasonClass string `yaml:"reason_class"`
	Message     string `yaml:"message"`
}

// Transition declares the state edge a gate guards.
type Transition struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Require string `yaml:"require"`
}

// GateDoc is one gate configuration document.
type GateDoc struct {
	GateID     string          `yaml:"gate_id"`
	Version    string          `yaml:"version"`
	Scope      string          `yaml:"scope"`
	Objective  string          `yaml:"objective"`
	Artifacts  []ArtifactField `yaml:"artifacts"`
	Gates      []GateRule      `yaml:"gates"`
	Transition Transition      `yaml:"transition"`
}

type messageEntry struct {
	ErrorCode   string            `yaml:"error_code"`
	ReasonClass string            `yaml:"reason_class"`
	Variants    map[string]string `yaml:"variants"`
}

type messageDoc struct {
	Messages []messageEntry `yaml:"messages"`
}

type lexiconDoc struct {
	Lexicon Lexicon `yaml:"lexicon"`
}

type patternDoc struct {
	Patterns map[string]Pattern `yaml:"patterns"`
}

// Registry is the immutable rule configuration shared by all evaluations.
type Registry struct {
	messages map[string]messageEntry
	lexicon  Lexicon
	patterns map[string]Pattern
	gates    map[string]GateDoc
}

// LoadDefault builds a Registry from the embedded rule documents.
func LoadDefault() (*Registry, error) {
	return Load(rules.FS)
}

// LoadDir builds a Registry from an override directory with the same layout
// as the embedded defaults.
func LoadDir(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("rules directory is required")
	}
	return Load(os.DirFS(path))
}

// Load parses the three rule documents and the gate configuration documents
// from fsys and validates their integrity.
func Load(fsys fs.FS) (*Registry, error) {
	var messages messageDoc
	if err := readYAML(fsys, "messages.yaml", &messages); err != nil {
		return nil, err
	}
	var lex lexiconDoc
	if err := readYAML(fsys, "lexicon.yaml", &lex); err != nil {
		return nil, err
	}
	var patterns patternDoc
	if err := readYAML(fsys, "patterns.yaml", &patterns); err != nil {
		return nil, err
	}

	reg := &Registry{
		messages: make(map[string]messageEntry, len(messages.Messages)),
		lexicon:  lex.Lexicon,
		patterns: patterns.Patterns,
		gates:    make(map[string]GateDoc),
	}
	if len(messages.Messages) == 0 {
		return nil, fmt.Errorf("messages.yaml: message catalog is empty")
	}
	for _, entry := range messages.Messages {
		code := strings.TrimSpace(entry.ErrorCode)
		if code == "" {
			return nil, fmt.Errorf("messages.yaml: entry without error_code")
		}
		if _, dup := reg.messages[code]; dup {
			return nil, fmt.Errorf("messages.yaml: duplicate error_code %s", code)
		}
		if strings.TrimSpace(entry.Variants[string(VariantNormal)]) == "" {
			return nil, fmt.Errorf("messages.yaml: %s is missing the normal variant", code)
		}
		reg.messages[code] = entry
	}

	gateFiles, err := fs.Glob(fsys, "gates/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob gate documents: %w", err)
	}
	if len(gateFiles) == 0 {
		return nil, fmt.Errorf("no gate configuration documents found")
	}
	sort.Strings(gateFiles)
	fromStates := make(map[string]string)
	for _, file := range gateFiles {
		var doc GateDoc
		if err := readYAML(fsys, file, &doc); err != nil {
			return nil, err
		}
		if err := validateGateDoc(file, doc, reg.messages); err != nil {
			return nil, err
		}
		if prev, dup := fromStates[doc.Transition.From]; dup {
			return nil, fmt.Errorf("%s: transition.from %s already guarded by %s", file, doc.Transition.From, prev)
		}
		fromStates[doc.Transition.From] = doc.GateID
		reg.gates[doc.GateID] = doc
	}

	return reg, nil
}

func readYAML(fsys fs.FS, name string, target any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func validateGateDoc(file string, doc GateDoc, catalog map[string]messageEntry) error {
	if strings.TrimSpace(doc.GateID) == "" {
		return fmt.Errorf("%s: gate_id is required", file)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return fmt.Errorf("%s: version is required", file)
	}
	if len(doc.Artifacts) == 0 {
		return fmt.Errorf("%s: at least one artifact is required", file)
	}
	for _, artifact := range doc.Artifacts {
		if strings.TrimSpace(artifact.ID) == "" {
			return fmt.Errorf("%s: artifact without id", file)
		}
	}
	if len(doc.Gates) == 0 {
		return fmt.Errorf("%s: at least one gate rule is required", file)
	}
	for _, rule := range doc.Gates {
		code := strings.TrimSpace(rule.ErrorCode)
		if code == "" {
			return fmt.Errorf("%s: gate rule without error_code", file)
		}
		if _, ok := catalog[code]; !ok {
			return fmt.Errorf("%s: error_code %s is not in the message catalog", file, code)
		}
	}
	if strings.TrimSpace(doc.Transition.From) == "" || strings.TrimSpace(doc.Transition.To) == "" {
		return fmt.Errorf("%s: transition from/to are required", file)
	}
	return nil
}

// Message returns the template for code at the requested verbosity, falling
// back to the normal variant, then to the empty string for unknown codes.
// Message text is best-effort; a missing template is never fatal.
func (r *Registry) Message(code string, variant Variant) string {
	entry, ok := r.messages[code]
	if !ok {
		return ""
	}
	if text := entry.Variants[string(variant)]; text != "" {
		return text
	}
	return entry.Variants[string(VariantNormal)]
}

// ReasonClass returns the coarse category configured for code, or the empty
// string when the code is unknown.
func (r *Registry) ReasonClass(code string) string {
	return r.messages[code].ReasonClass
}

// KnownCode reports whether code resolves in the message catalog.
func (r *Registry) KnownCode(code string) bool {
	_, ok := r.messages[code]
	return ok
}

// Lexicon returns the shared phrase dictionaries.
func (r *Registry) Lexicon() Lexicon {
	return r.lexicon
}

// PatternTriggers returns the trigger phrases of a forbidden pattern.
func (r *Registry) PatternTriggers(name string) []string {
	return r.patterns[name].Triggers
}

// PatternExamples returns the placeholder examples of a forbidden pattern.
func (r *Registry) PatternExamples(name string) []string {
	return r.patterns[name].Examples
}

// GateDoc returns the configuration document for one gate identity.
func (r *Registry) GateDoc(gateID string) (GateDoc, bool) {
	doc, ok := r.gates[gateID]
	return doc, ok
}

// GateDocs returns all gate configuration documents ordered by gate id.
func (r *Registry) GateDocs() []GateDoc {
	docs := make([]GateDoc, 0, len(r.gates))
	for _, doc := range r.gates {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].GateID < docs[j].GateID })
	return docs
}
