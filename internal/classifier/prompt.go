package classifier

import (
	"fmt"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
)

// categoryDefinitions guide the model; the keyword table stays authoritative
// for the heuristic path
var categoryDefinitions = map[domain.Category]string{
	domain.CategoryDesign:         "graphic, UI, brand, illustration and 3D design tools",
	domain.CategoryVideoEditing:   "video generation, editing, avatars and animation",
	domain.CategoryAudio:          "voice, music, podcast, speech and sound tools",
	domain.CategoryPhotoEditing:   "image generation, photo retouching and enhancement",
	domain.CategorySiteBuilding:   "website, landing page and no-code app builders",
	domain.CategoryCodeGeneration: "AI coding assistants, code generators and developer tools",
	domain.CategoryWriting:        "copywriting, blogging, editing and long-form writing",
	domain.CategoryProductivity:   "assistants, automation, notes, meetings and everything else",
}

func buildPrompt(batch []domain.Candidate) string {
	var sb strings.Builder

	sb.WriteString("Classify each of these AI tools for a catalog aimed at creative professionals, designers and developers learning AI tools.\n\n")
	sb.WriteString("Tools:\n")
	for i, c := range batch {
		fmt.Fprintf(&sb, "[%d] %s\n", i, c.Name)
		fmt.Fprintf(&sb, "    Description: %s\n", c.Description)
		if len(c.Topics) > 0 {
			fmt.Fprintf(&sb, "    Topics: %s\n", strings.Join(c.Topics, ", "))
		}
		fmt.Fprintf(&sb, "    Votes: %d\n", c.Votes)
	}

	sb.WriteString("\nCategories (use the id exactly):\n")
	for _, cat := range domain.AllCategories() {
		fmt.Fprintf(&sb, "- %s: %s\n", cat, categoryDefinitions[cat])
	}

	sb.WriteString(`
Fields:
- category: one category id from the list above
- difficulty: Beginner, Intermediate or Advanced
- pricing: Free, Freemium, Paid or Unknown
- isRelevant: true if the tool is a usable product for creative professionals or developers learning AI tools; false for articles, datasets, research papers, libraries without a product, or off-topic posts

Return a JSON array with one object per tool, using the bracketed number as index:
[{"index": 0, "category": "design", "difficulty": "Beginner", "pricing": "Freemium", "isRelevant": true}]

Respond with ONLY the JSON array. No markdown, no explanation.`)

	return sb.String()
}
