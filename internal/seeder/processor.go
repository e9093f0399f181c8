package seeder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
)

// ContentProcessor normalizes free text on profiles and builds the text that
// gets embedded.
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`[ \t]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
	}
}

// CleanContent strips markup, collapses runs of spaces and keeps at most one
// blank line between paragraphs.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, " ")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(cp.multiWhitespace.ReplaceAllString(line, " "))
		if line == "" {
			emptyLines++
			if emptyLines <= 1 {
				cleaned = append(cleaned, "")
			}
			continue
		}
		emptyLines = 0
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// NormalizeList trims entries and drops blanks and case-insensitive duplicates,
// keeping the first spelling.
func (cp *ContentProcessor) NormalizeList(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(cp.multiWhitespace.ReplaceAllString(item, " "))
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, item)
	}

	return result
}

// EmbeddingText is the document embedded for semantic ranking: title,
// description, skills, specializations, seniority and location.
func (cp *ContentProcessor) EmbeddingText(f models.Freelancer) string {
	var b strings.Builder
	b.WriteString(f.Title)

	if f.Description != "" {
		b.WriteString("\n")
		b.WriteString(f.Description)
	}
	if len(f.Skills) > 0 {
		fmt.Fprintf(&b, "\nSkills: %s", strings.Join(f.Skills, ", "))
	}
	if len(f.Specializations) > 0 {
		specs := make([]string, len(f.Specializations))
		for i, s := range f.Specializations {
			specs[i] = strings.ReplaceAll(s, "_", " ")
		}
		fmt.Fprintf(&b, "\nSpecializations: %s", strings.Join(specs, ", "))
	}
	if f.ExperienceLevel != "" {
		fmt.Fprintf(&b, "\nExperience: %s", f.ExperienceLevel)
	}
	if f.Location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", f.Location)
	}

	return b.String()
}
