package inbox

import (
	"strings"

	"github.com/divyanshkhurana06/mailed0/internal/domain"
)

// categoryKeywords drives keyword categorization. Dispatch is over the closed
// domain.Category enumeration, never open string matching.
var categoryKeywords = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryWork, []string{"meeting", "work", "project", "deadline", "coding", "team"}},
	{domain.CategoryFinance, []string{"invoice", "payment", "money", "bill", "transaction"}},
	{domain.CategoryEvents, []string{"event", "party", "celebration", "invitation"}},
	{domain.CategoryMarketing, []string{"sale", "offer", "promotion", "discount", "newsletter"}},
	{domain.CategoryAccount, []string{"confirm", "verify", "account", "signup"}},
}

// maxTags caps the number of categories attached to one email.
const maxTags = 3

// Categorize assigns up to three categories based on subject, sender, and
// body keywords. An email matching nothing is personal.
func Categorize(subject, from, body string) []domain.Category {
	text := strings.ToLower(subject + " " + from + " " + body)

	var tags []domain.Category
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, entry.category)
				break
			}
		}
	}

	if len(tags) == 0 {
		tags = []domain.Category{domain.CategoryPersonal}
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// Title truncates a subject for display.
func Title(subject string) string {
	if len(subject) > 50 {
		return subject[:50] + "..."
	}
	return subject
}

// Preview truncates a snippet for display.
func Preview(snippet string) string {
	if len(snippet) > 150 {
		return snippet[:150] + "..."
	}
	return snippet
}
