// Package types defines all data structures shared across the aigov
// governance library: document kinds, regulatory vocabularies, frontmatter,
// and lint findings.
package types

import (
	"fmt"
	"time"
)

// DocKind identifies the kind of a managed governance document.
type DocKind string

const (
	// KindModelCard is a model card describing a deployed model or agent.
	KindModelCard DocKind = "model-card"

	// KindDataCard is a data card describing a training or evaluation dataset.
	KindDataCard DocKind = "data-card"

	// KindChecklist is a framework compliance checklist with task items.
	KindChecklist DocKind = "checklist"

	// KindGuide is narrative guidance, including generated probe reports.
	KindGuide DocKind = "guide"
)

// AllKinds lists every document kind in display order.
var AllKinds = []DocKind{KindModelCard, KindDataCard, KindChecklist, KindGuide}

// Valid reports whether k is a known document kind.
func (k DocKind) Valid() bool {
	switch k {
	case KindModelCard, KindDataCard, KindChecklist, KindGuide:
		return true
	}
	return false
}

// RiskTier is an EU AI Act risk classification.
type RiskTier string

const (
	// TierUnacceptable covers prohibited practices (Art. 5).
	TierUnacceptable RiskTier = "Unacceptable"

	// TierHigh covers Annex III high-risk systems, including most
	// healthcare deployments.
	TierHigh RiskTier = "High"

	// TierLimited covers systems carrying transparency obligations only.
	TierLimited RiskTier = "Limited"

	// TierMinimal covers everything else.
	TierMinimal RiskTier = "Minimal"
)

// SafetyCategory is a NIST AI 600-1 generative AI risk category.
type SafetyCategory string

const (
	// CategoryCBRN is CBRN information or capabilities.
	CategoryCBRN SafetyCategory = "CBRN Information or Capabilities"

	// CategoryConfabulation is confidently stated false content.
	CategoryConfabulation SafetyCategory = "Confabulation"

	// CategoryDangerousContent is dangerous, violent, or hateful content.
	CategoryDangerousContent SafetyCategory = "Dangerous, Violent, or Hateful Content"

	// CategoryDataPrivacy is leakage or misuse of personal data.
	CategoryDataPrivacy SafetyCategory = "Data Privacy"

	// CategoryEnvironmental is environmental impact of training and inference.
	CategoryEnvironmental SafetyCategory = "Environmental Impacts"

	// CategoryHarmfulBias is harmful bias and homogenization.
	CategoryHarmfulBias SafetyCategory = "Harmful Bias and Homogenization"

	// CategoryHumanAIConfig is unsafe human-AI configuration.
	CategoryHumanAIConfig SafetyCategory = "Human-AI Configuration"

	// CategoryInfoIntegrity is misinformation and provenance failures.
	CategoryInfoIntegrity SafetyCategory = "Information Integrity"

	// CategoryInfoSecurity is offensive cyber capability and model attacks.
	CategoryInfoSecurity SafetyCategory = "Information Security"

	// CategoryIntellectualProperty is IP infringement in outputs.
	CategoryIntellectualProperty SafetyCategory = "Intellectual Property"

	// CategoryObsceneContent is obscene, degrading, and/or abusive content.
	CategoryObsceneContent SafetyCategory = "Obscene, Degrading, and/or Abusive Content"

	// CategoryValueChain is value chain and component integration risk.
	CategoryValueChain SafetyCategory = "Value Chain and Component Integration"
)

// ProtectionLevel is a jailbreak resilience label for a deployment.
type ProtectionLevel string

const (
	// ProtectionNone means no jailbreak countermeasures.
	ProtectionNone ProtectionLevel = "None"

	// ProtectionBasic means provider default safety filters only.
	ProtectionBasic ProtectionLevel = "Basic"

	// ProtectionHigh means tuned safety thresholds plus refusal behavior.
	ProtectionHigh ProtectionLevel = "High"

	// ProtectionLayered means input and output filters with human escalation.
	ProtectionLayered ProtectionLevel = "Layered"
)

// PrivacyTechnique is the primary privacy protection applied to data.
type PrivacyTechnique string

const (
	// PrivacyDeidentification removes direct identifiers (HIPAA Safe Harbor).
	PrivacyDeidentification PrivacyTechnique = "De-identification"

	// PrivacyPseudonymization replaces identifiers with reversible tokens.
	PrivacyPseudonymization PrivacyTechnique = "Pseudonymization"

	// PrivacyDifferential adds calibrated noise under a privacy budget.
	PrivacyDifferential PrivacyTechnique = "Differential privacy"

	// PrivacyFederated trains without centralizing raw records.
	PrivacyFederated PrivacyTechnique = "Federated learning"

	// PrivacySynthetic substitutes generated stand-in records.
	PrivacySynthetic PrivacyTechnique = "Synthetic data"
)

// Framework identifies a compliance framework with an embedded checklist.
type Framework string

const (
	// FrameworkEUAIAct is Regulation (EU) 2024/1689.
	FrameworkEUAIAct Framework = "eu-ai-act"

	// FrameworkNIST is NIST AI 600-1, the generative AI profile.
	FrameworkNIST Framework = "nist-ai-600-1"

	// FrameworkHIPAA is the HIPAA Privacy and Security Rules.
	FrameworkHIPAA Framework = "hipaa"

	// FrameworkMCPSafety is the agentic tool-use threat checklist.
	FrameworkMCPSafety Framework = "mcp-safety"
)

// ThreatClass is an agentic AI (MCP) threat category.
type ThreatClass string

const (
	// ThreatToolPoisoning is malicious instructions hidden in tool descriptions.
	ThreatToolPoisoning ThreatClass = "tool-poisoning"

	// ThreatPromptInjection is untrusted content steering the model.
	ThreatPromptInjection ThreatClass = "prompt-injection"

	// ThreatToolShadowing is a malicious server overriding a trusted tool.
	ThreatToolShadowing ThreatClass = "tool-shadowing"

	// ThreatRugPull is a tool definition mutating after approval.
	ThreatRugPull ThreatClass = "rug-pull"

	// ThreatCredentialTheft is exfiltration of secrets reachable by tools.
	ThreatCredentialTheft ThreatClass = "credential-theft"

	// ThreatExcessiveAgency is action beyond the delegated mandate.
	ThreatExcessiveAgency ThreatClass = "excessive-agency"

	// ThreatContextLeakage is sensitive context crossing tool boundaries.
	ThreatContextLeakage ThreatClass = "context-leakage"
)

// DocStatus is the review lifecycle state of a managed document.
type DocStatus string

const (
	// StatusDraft is unreviewed.
	StatusDraft DocStatus = "draft"

	// StatusReview is awaiting governance sign-off.
	StatusReview DocStatus = "review"

	// StatusApproved is signed off.
	StatusApproved DocStatus = "approved"

	// StatusRetired is superseded or withdrawn.
	StatusRetired DocStatus = "retired"
)

// Frontmatter is the YAML header carried by every managed document.
type Frontmatter struct {
	// ID is the stable document identifier (UUID).
	ID string `yaml:"id" json:"id"`

	// Kind is the document kind.
	Kind DocKind `yaml:"kind" json:"kind"`

	// Title is the human-readable document title.
	Title string `yaml:"title" json:"title"`

	// Model is the model or agent the document describes, if any.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Version is the version of the described model, if any.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Tier is the EU AI Act risk tier, if classified.
	Tier RiskTier `yaml:"tier,omitempty" json:"tier,omitempty"`

	// Category is the primary NIST AI 600-1 risk category, if classified.
	Category SafetyCategory `yaml:"category,omitempty" json:"category,omitempty"`

	// Framework is the compliance framework, for checklists.
	Framework Framework `yaml:"framework,omitempty" json:"framework,omitempty"`

	// Status is the review lifecycle state.
	Status DocStatus `yaml:"status" json:"status"`

	// Tags are free-form labels for search and filtering.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// CreatedAt is when the document was first written.
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`

	// UpdatedAt is when the document was last modified by the tool.
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Document is a managed governance document: frontmatter plus Markdown body.
type Document struct {
	// Path is the document location relative to the library root.
	Path string `json:"path"`

	// Front is the parsed YAML frontmatter.
	Front Frontmatter `json:"front"`

	// Body is the Markdown content after the frontmatter block.
	Body string `json:"body,omitempty"`

	// Checksum is the first 16 hex characters of the SHA-256 of the raw file.
	Checksum string `json:"checksum,omitempty"`
}

// Severity classifies a lint or link-check finding.
type Severity string

const (
	// SeverityError fails validation and the command exits non-zero.
	SeverityError Severity = "error"

	// SeverityWarning is reported but does not fail validation.
	SeverityWarning Severity = "warning"
)

// Finding is a single validation or link-check result.
type Finding struct {
	// Path is the file the finding applies to, relative to the library root.
	Path string `json:"path" yaml:"path"`

	// Line is the 1-based line number, or 0 when not line-scoped.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`

	// Rule is the stable identifier of the check that fired.
	Rule string `json:"rule" yaml:"rule"`

	// Severity is error or warning.
	Severity Severity `json:"severity" yaml:"severity"`

	// Message describes the problem.
	Message string `json:"message" yaml:"message"`
}

// String renders a finding in path:line style for console output.
func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d [%s] %s: %s", f.Path, f.Line, f.Severity, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", f.Path, f.Severity, f.Rule, f.Message)
}

// UnknownValueError reports a value outside a controlled vocabulary.
type UnknownValueError struct {
	// Vocabulary names the vocabulary that rejected the value.
	Vocabulary string

	// Value is the rejected input.
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Vocabulary, e.Value)
}
