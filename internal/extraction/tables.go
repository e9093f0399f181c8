package extraction

import (
	"regexp"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
)

type seniorityRule struct {
	level   models.ExperienceLevel
	pattern *regexp.Regexp
}

// Checked in order; the first tier with a match wins. Every tier's keywords
// are stripped from the cleaned query.
var seniorityRules = []seniorityRule{
	{models.ExperienceExpert, regexp.MustCompile(`(?i)\b(?:senior|sr|lead|principal|staff)\b\.?`)},
	{models.ExperienceEntry, regexp.MustCompile(`(?i)\b(?:entry[- ]level|entry|junior|jr|beginner)\b\.?`)},
	{models.ExperienceIntermediate, regexp.MustCompile(`(?i)\b(?:mid[- ]level|mid|intermediate)\b`)},
}

// $80, $80/hr, $80 per hour, $80 an hour
var ratePattern = regexp.MustCompile(`(?i)\$\s?(\d+(?:\.\d+)?)(?:\s*/\s*(?:hour|hr|h)\b|\s+(?:per|an|a)\s+(?:hour|hr)\b)?`)

// Filler left behind once a rate was pulled out.
var rateFillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:with|at)\s+(?:an?\s+)?(?:hourly\s+)?rate(?:\s+of)?\b`),
	regexp.MustCompile(`(?i)\b(?:an?\s+)?(?:hourly\s+)?rate(?:\s+of)?\b`),
	regexp.MustCompile(`(?i)\b(?:hourly|per\s+hour)\b`),
}

const (
	minRateTolerance    = 5.0
	relativeRatePercent = 15.0
)

var remotePattern = regexp.MustCompile(`(?i)\b(?:fully\s+)?remote(?:ly)?\b(?:\s+(?:position|role|job|work))?`)

// Case sensitive on purpose: a place name starts with a capital letter.
var placePattern = regexp.MustCompile(`\b(?:based in|located in|in|from)\s+([A-Z][A-Za-z.]*(?:\s+[A-Z][A-Za-z.]*)*)`)

// Capitalized words that follow "in" but are technologies, not places.
var nonPlaceTerms = map[string]bool{
	"react": true, "vue": true, "angular": true, "svelte": true, "node": true, "node.js": true,
	"python": true, "java": true, "javascript": true, "typescript": true, "go": true,
	"golang": true, "rust": true, "php": true, "ruby": true, "rails": true, "django": true,
	"flutter": true, "swift": true, "kotlin": true, "figma": true, "sql": true, "aws": true,
	"azure": true, "gcp": true, "docker": true, "kubernetes": true, "solidity": true,
	"unity": true, "unreal": true, "photoshop": true, "illustrator": true, "english": true,
	"spanish": true, "french": true, "german": true, "seo": true, "ai": true, "ml": true,
}

type specializationRule struct {
	pattern *regexp.Regexp
	tags    []models.Specialization
}

// specializationGroup is an independent keyword family. Within a group the
// first matching specific rule wins. The generic rule is a catch-all that only
// applies when no specific rule matched in any group.
type specializationGroup struct {
	name     string
	specific []specializationRule
	generic  *specializationRule
}

func rule(pattern string, tags ...models.Specialization) specializationRule {
	return specializationRule{pattern: regexp.MustCompile(`(?i)` + pattern), tags: tags}
}

func catchAll(pattern string, tags ...models.Specialization) *specializationRule {
	r := rule(pattern, tags...)
	return &r
}

var specializationGroups = []specializationGroup{
	{
		name: "development",
		specific: []specializationRule{
			rule(`\bfull[- ]?stack\b`, models.SpecFullstackDevelopment),
			rule(`\b(?:front[- ]?end|react|vue(?:\.?js)?|angular|svelte|next\.?js|javascript|typescript)\b`,
				models.SpecFrontendDevelopment),
			rule(`\b(?:back[- ]?end|node(?:\.?js)?|python|java|php|ruby|golang|django|api)\b`,
				models.SpecBackendDevelopment),
		},
		generic: catchAll(`\b(?:developer|programmer|coder)s?\b`,
			models.SpecWebDevelopment, models.SpecBackendDevelopment, models.SpecFrontendDevelopment),
	},
	{
		name: "design",
		specific: []specializationRule{
			rule(`\b(?:ui\s*/\s*ux|ux\s*/\s*ui|ui|ux|user experience|user interface|product designer)\b`, models.SpecUIUXDesign),
			rule(`\b(?:graphic|logo|branding|brand identity|illustrator|illustration)\b`, models.SpecGraphicDesign),
		},
		generic: catchAll(`\bdesigners?\b`, models.SpecUIUXDesign, models.SpecGraphicDesign),
	},
	{name: "mobile", specific: []specializationRule{
		rule(`\b(?:mobile|ios|android|flutter|react native|swift|kotlin)\b`, models.SpecMobileDevelopment),
	}},
	{name: "devops", specific: []specializationRule{
		rule(`\b(?:devops|sre|site reliability|kubernetes|k8s|terraform|ci/cd)\b`, models.SpecDevOps),
	}},
	{name: "blockchain", specific: []specializationRule{
		rule(`\b(?:blockchain|web3|solidity|smart contracts?|defi)\b`, models.SpecBlockchain),
	}},
	{name: "games", specific: []specializationRule{
		rule(`\b(?:game|games|gaming|unity|unreal)\b`, models.SpecGameDevelopment),
	}},
	{name: "security", specific: []specializationRule{
		rule(`\b(?:cyber\s?security|security|pentest(?:er|ing)?|penetration test(?:er|ing)?)\b`, models.SpecCybersecurity),
	}},
	{name: "machine learning", specific: []specializationRule{
		rule(`\b(?:machine learning|ml|deep learning|llm|nlp|computer vision|ai)\b`, models.SpecMachineLearning),
	}},
	{name: "data", specific: []specializationRule{
		rule(`\b(?:data scien(?:ce|tist)|data analy(?:st|sis|tics)|analytics)\b`, models.SpecDataScience),
	}},
	{name: "video", specific: []specializationRule{
		rule(`\b(?:video|motion graphics|videographer)\b`, models.SpecVideoEditing),
	}},
	{name: "photography", specific: []specializationRule{
		rule(`\b(?:photograph(?:er|y)|photo)\b`, models.SpecPhotography),
	}},
	{name: "marketing", specific: []specializationRule{
		rule(`\b(?:digital marketing|marketing|marketer|seo|sem|social media)\b`, models.SpecDigitalMarketing),
	}},
	{name: "writing", specific: []specializationRule{
		rule(`\b(?:copywriter|copywriting|writer|writing|content|blogger)\b`, models.SpecContentWriting),
	}},
	{name: "translation", specific: []specializationRule{
		rule(`\b(?:translator|translation|interpreter|locali[sz]ation)\b`, models.SpecTranslation),
	}},
	{name: "consulting", specific: []specializationRule{
		rule(`\b(?:consultant|consulting|advisor)\b`, models.SpecConsulting),
	}},
	{name: "project management", specific: []specializationRule{
		rule(`\b(?:project manager|project management|scrum master|product owner|agile coach)\b`, models.SpecProjectManagement),
	}},
}

var (
	multiSpace          = regexp.MustCompile(`\s+`)
	spaceBeforePunct    = regexp.MustCompile(`\s+([,.;:!?])`)
	danglingPunctuation = regexp.MustCompile(`^[\s,.;:!?-]+|[\s,;:-]+$`)
	trailingPreposition = regexp.MustCompile(`(?i)\s*\b(?:with|for|in|at|of|and|from|a|an)$`)
)

// Phrases the AI extractor sometimes leaves in its cleaned query.
var aiCleanupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwith an hourly rate of\b`),
	regexp.MustCompile(`(?i)\bwith a rate of\b`),
	regexp.MustCompile(`(?i)\bwith\b.*?\brate\b.*?\bof\b`),
	regexp.MustCompile(`(?i)\bposition\b`),
	regexp.MustCompile(`(?i)\bavailable for\b`),
	regexp.MustCompile(`(?i)\bper week\b`),
	regexp.MustCompile(`(?i)\bhours?\b`),
}
