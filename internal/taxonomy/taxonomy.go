// Package taxonomy defines the controlled vocabularies for governance
// documents and their validation rules.
//
// # Risk Tiers
//
// The EU AI Act assigns every system to one of four ordered tiers:
//   - Unacceptable: prohibited practices (Art. 5), may not be deployed
//   - High: Annex III systems, full conformity assessment required
//   - Limited: transparency obligations only (Art. 50)
//   - Minimal: no mandatory obligations
//
// # Safety Categories
//
// NIST AI 600-1 (the generative AI profile) enumerates twelve risk
// categories, from CBRN uplift to value chain integration. Model cards
// record the primary category a deployment mitigates.
//
// # Threat Classes
//
// Agentic deployments that expose tools over MCP carry a distinct threat
// surface. The vocabulary covers the seven classes the library's threat
// model describes, each with a severity and a first-line mitigation.
//
// All lookups are case-insensitive; canonicalization returns the display
// form so cards render consistently regardless of how values were typed.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/ethicslab/aigov/internal/types"
)

// TierInfo describes an EU AI Act risk tier.
type TierInfo struct {
	// Tier is the tier constant.
	Tier types.RiskTier

	// Summary explains what falls into this tier.
	Summary string

	// Obligations lists the headline duties for systems in this tier.
	Obligations []string

	// ConformityAssessment indicates whether a conformity assessment is
	// required before the system may be placed on the market.
	ConformityAssessment bool
}

// TierOrder lists risk tiers from most to least restrictive.
var TierOrder = []types.RiskTier{
	types.TierUnacceptable,
	types.TierHigh,
	types.TierLimited,
	types.TierMinimal,
}

// Tiers maps each risk tier to its info.
var Tiers = map[types.RiskTier]TierInfo{
	types.TierUnacceptable: {
		Tier:    types.TierUnacceptable,
		Summary: "Prohibited practices such as social scoring and manipulative systems",
		Obligations: []string{
			"May not be placed on the market or put into service",
		},
		ConformityAssessment: false,
	},
	types.TierHigh: {
		Tier:    types.TierHigh,
		Summary: "Annex III systems including medical devices and clinical decision support",
		Obligations: []string{
			"Risk management system (Art. 9)",
			"Data governance and bias examination (Art. 10)",
			"Technical documentation and record keeping (Art. 11-12)",
			"Human oversight (Art. 14)",
			"Accuracy, robustness, cybersecurity (Art. 15)",
		},
		ConformityAssessment: true,
	},
	types.TierLimited: {
		Tier:    types.TierLimited,
		Summary: "Systems interacting with people or generating synthetic content",
		Obligations: []string{
			"Disclose AI interaction and label generated content (Art. 50)",
		},
		ConformityAssessment: false,
	},
	types.TierMinimal: {
		Tier:    types.TierMinimal,
		Summary: "All remaining systems, such as spam filters and inventory tools",
		Obligations: []string{
			"Voluntary codes of conduct",
		},
		ConformityAssessment: false,
	},
}

// CategoryInfo describes a NIST AI 600-1 risk category.
type CategoryInfo struct {
	// Category is the category constant.
	Category types.SafetyCategory

	// Reference is the section of NIST AI 600-1 defining the category.
	Reference string

	// Summary explains the risk in one line.
	Summary string
}

// CategoryOrder lists the NIST AI 600-1 categories in profile order.
var CategoryOrder = []types.SafetyCategory{
	types.CategoryCBRN,
	types.CategoryConfabulation,
	types.CategoryDangerousContent,
	types.CategoryDataPrivacy,
	types.CategoryEnvironmental,
	types.CategoryHarmfulBias,
	types.CategoryHumanAIConfig,
	types.CategoryInfoIntegrity,
	types.CategoryInfoSecurity,
	types.CategoryIntellectualProperty,
	types.CategoryObsceneContent,
	types.CategoryValueChain,
}

// Categories maps each NIST AI 600-1 category to its info.
var Categories = map[types.SafetyCategory]CategoryInfo{
	types.CategoryCBRN: {
		Category:  types.CategoryCBRN,
		Reference: "NIST AI 600-1 §2.1",
		Summary:   "Eased access to chemical, biological, radiological, or nuclear capability",
	},
	types.CategoryConfabulation: {
		Category:  types.CategoryConfabulation,
		Reference: "NIST AI 600-1 §2.2",
		Summary:   "Confidently stated false or misleading content",
	},
	types.CategoryDangerousContent: {
		Category:  types.CategoryDangerousContent,
		Reference: "NIST AI 600-1 §2.3",
		Summary:   "Production of dangerous, violent, or hateful content",
	},
	types.CategoryDataPrivacy: {
		Category:  types.CategoryDataPrivacy,
		Reference: "NIST AI 600-1 §2.4",
		Summary:   "Leakage, inference, or misuse of personal and health data",
	},
	types.CategoryEnvironmental: {
		Category:  types.CategoryEnvironmental,
		Reference: "NIST AI 600-1 §2.5",
		Summary:   "Resource consumption of training and serving at scale",
	},
	types.CategoryHarmfulBias: {
		Category:  types.CategoryHarmfulBias,
		Reference: "NIST AI 600-1 §2.6",
		Summary:   "Amplified demographic bias and output homogenization",
	},
	types.CategoryHumanAIConfig: {
		Category:  types.CategoryHumanAIConfig,
		Reference: "NIST AI 600-1 §2.7",
		Summary:   "Over-reliance, automation bias, and unsafe delegation",
	},
	types.CategoryInfoIntegrity: {
		Category:  types.CategoryInfoIntegrity,
		Reference: "NIST AI 600-1 §2.8",
		Summary:   "Scaled misinformation and loss of content provenance",
	},
	types.CategoryInfoSecurity: {
		Category:  types.CategoryInfoSecurity,
		Reference: "NIST AI 600-1 §2.9",
		Summary:   "Offensive cyber uplift and attacks on the model itself",
	},
	types.CategoryIntellectualProperty: {
		Category:  types.CategoryIntellectualProperty,
		Reference: "NIST AI 600-1 §2.10",
		Summary:   "Reproduction of protected works in generated output",
	},
	types.CategoryObsceneContent: {
		Category:  types.CategoryObsceneContent,
		Reference: "NIST AI 600-1 §2.11",
		Summary:   "Obscene, degrading, or abusive imagery and text",
	},
	types.CategoryValueChain: {
		Category:  types.CategoryValueChain,
		Reference: "NIST AI 600-1 §2.12",
		Summary:   "Risk inherited from third-party components and upstream data",
	},
}

// ThreatInfo describes an agentic (MCP) threat class.
type ThreatInfo struct {
	// Class is the threat class constant.
	Class types.ThreatClass

	// Severity grades the class: critical, high, or medium.
	Severity string

	// Summary explains the attack in one line.
	Summary string

	// Mitigation names the first-line countermeasure.
	Mitigation string
}

// ThreatOrder lists threat classes from most to least severe.
var ThreatOrder = []types.ThreatClass{
	types.ThreatToolPoisoning,
	types.ThreatPromptInjection,
	types.ThreatCredentialTheft,
	types.ThreatToolShadowing,
	types.ThreatRugPull,
	types.ThreatExcessiveAgency,
	types.ThreatContextLeakage,
}

// Threats maps each threat class to its info.
var Threats = map[types.ThreatClass]ThreatInfo{
	types.ThreatToolPoisoning: {
		Class:      types.ThreatToolPoisoning,
		Severity:   "critical",
		Summary:    "Malicious instructions embedded in tool descriptions",
		Mitigation: "Pin and review tool manifests before granting access",
	},
	types.ThreatPromptInjection: {
		Class:      types.ThreatPromptInjection,
		Severity:   "critical",
		Summary:    "Untrusted retrieved content steering model behavior",
		Mitigation: "Isolate untrusted content and strip instruction-like text",
	},
	types.ThreatCredentialTheft: {
		Class:      types.ThreatCredentialTheft,
		Severity:   "critical",
		Summary:    "Exfiltration of tokens and secrets reachable by tools",
		Mitigation: "Scope credentials per tool with short-lived tokens",
	},
	types.ThreatToolShadowing: {
		Class:      types.ThreatToolShadowing,
		Severity:   "high",
		Summary:    "A malicious server registering a trusted tool's name",
		Mitigation: "Namespace tools by server and verify server identity",
	},
	types.ThreatRugPull: {
		Class:      types.ThreatRugPull,
		Severity:   "high",
		Summary:    "A tool definition silently changing after user approval",
		Mitigation: "Hash tool definitions and re-approve on change",
	},
	types.ThreatExcessiveAgency: {
		Class:      types.ThreatExcessiveAgency,
		Severity:   "high",
		Summary:    "Agent acting beyond its delegated mandate",
		Mitigation: "Human-in-the-loop approval for consequential actions",
	},
	types.ThreatContextLeakage: {
		Class:      types.ThreatContextLeakage,
		Severity:   "medium",
		Summary:    "Sensitive session context crossing tool boundaries",
		Mitigation: "Minimize context passed to each tool invocation",
	},
}

// LevelOrder lists jailbreak protection levels from weakest to strongest.
var LevelOrder = []types.ProtectionLevel{
	types.ProtectionNone,
	types.ProtectionBasic,
	types.ProtectionHigh,
	types.ProtectionLayered,
}

// LevelSummaries maps each protection level to a one-line description.
var LevelSummaries = map[types.ProtectionLevel]string{
	types.ProtectionNone:    "No jailbreak countermeasures",
	types.ProtectionBasic:   "Provider default safety filters only",
	types.ProtectionHigh:    "Tuned block thresholds plus refusal behavior",
	types.ProtectionLayered: "Input and output filtering with human escalation",
}

// TechniqueOrder lists privacy techniques in display order.
var TechniqueOrder = []types.PrivacyTechnique{
	types.PrivacyDeidentification,
	types.PrivacyPseudonymization,
	types.PrivacyDifferential,
	types.PrivacyFederated,
	types.PrivacySynthetic,
}

// TechniqueSummaries maps each privacy technique to a one-line description.
var TechniqueSummaries = map[types.PrivacyTechnique]string{
	types.PrivacyDeidentification: "Direct identifiers removed per HIPAA Safe Harbor",
	types.PrivacyPseudonymization: "Identifiers replaced with reversible tokens",
	types.PrivacyDifferential:     "Calibrated noise added under a privacy budget",
	types.PrivacyFederated:        "Training without centralizing raw records",
	types.PrivacySynthetic:        "Generated stand-in records replace real data",
}

// FrameworkInfo describes a compliance framework.
type FrameworkInfo struct {
	// Framework is the framework constant.
	Framework types.Framework

	// Title is the display title.
	Title string

	// Citation names the authoritative source.
	Citation string
}

// FrameworkOrder lists frameworks in display order.
var FrameworkOrder = []types.Framework{
	types.FrameworkEUAIAct,
	types.FrameworkNIST,
	types.FrameworkHIPAA,
	types.FrameworkMCPSafety,
}

// Frameworks maps each framework to its info.
var Frameworks = map[types.Framework]FrameworkInfo{
	types.FrameworkEUAIAct: {
		Framework: types.FrameworkEUAIAct,
		Title:     "EU AI Act Readiness",
		Citation:  "Regulation (EU) 2024/1689",
	},
	types.FrameworkNIST: {
		Framework: types.FrameworkNIST,
		Title:     "NIST AI 600-1 Generative AI Profile",
		Citation:  "NIST AI 600-1 (July 2024)",
	},
	types.FrameworkHIPAA: {
		Framework: types.FrameworkHIPAA,
		Title:     "HIPAA Privacy & Security",
		Citation:  "45 CFR Parts 160 and 164",
	},
	types.FrameworkMCPSafety: {
		Framework: types.FrameworkMCPSafety,
		Title:     "Agentic Tool-Use Safety",
		Citation:  "Model Context Protocol threat model",
	},
}

// CanonicalTier resolves a tier value case-insensitively, returning the
// display form.
func CanonicalTier(s string) (types.RiskTier, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, tier := range TierOrder {
		if strings.ToLower(string(tier)) == needle {
			return tier, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "EU AI Act risk tier", Value: s}
}

// CanonicalCategory resolves a NIST AI 600-1 category case-insensitively.
func CanonicalCategory(s string) (types.SafetyCategory, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, cat := range CategoryOrder {
		if strings.ToLower(string(cat)) == needle {
			return cat, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "NIST AI 600-1 category", Value: s}
}

// CanonicalThreat resolves an MCP threat class case-insensitively.
func CanonicalThreat(s string) (types.ThreatClass, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, class := range ThreatOrder {
		if strings.ToLower(string(class)) == needle {
			return class, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "threat class", Value: s}
}

// CanonicalLevel resolves a jailbreak protection level case-insensitively.
func CanonicalLevel(s string) (types.ProtectionLevel, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, level := range LevelOrder {
		if strings.ToLower(string(level)) == needle {
			return level, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "jailbreak protection level", Value: s}
}

// CanonicalTechnique resolves a privacy technique case-insensitively.
func CanonicalTechnique(s string) (types.PrivacyTechnique, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, tech := range TechniqueOrder {
		if strings.ToLower(string(tech)) == needle {
			return tech, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "privacy technique", Value: s}
}

// CanonicalFramework resolves a framework identifier case-insensitively.
func CanonicalFramework(s string) (types.Framework, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, fw := range FrameworkOrder {
		if strings.ToLower(string(fw)) == needle {
			return fw, nil
		}
	}
	return "", &types.UnknownValueError{Vocabulary: "framework", Value: s}
}

// RequiresConformityAssessment reports whether systems in the tier need a
// conformity assessment before market placement.
func RequiresConformityAssessment(tier types.RiskTier) bool {
	if info, ok := Tiers[tier]; ok {
		return info.ConformityAssessment
	}
	return false
}

// VocabularyNames returns the names of all vocabularies, sorted.
func VocabularyNames() []string {
	names := []string{
		"tiers",
		"categories",
		"threats",
		"levels",
		"techniques",
		"frameworks",
	}
	sort.Strings(names)
	return names
}
