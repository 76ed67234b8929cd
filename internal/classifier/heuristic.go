package classifier

import (
	"context"
	"strings"

	"github.com/pbaille/toolscout/internal/domain"
)

type keywordRow struct {
	category domain.Category
	keywords []string
}

// keywordTable drives the heuristic. Rows are in tie-break order.
var keywordTable = []keywordRow{
	{domain.CategoryDesign, []string{
		"design", "figma", "logo", "illustration", "graphic", "creative",
		"brand", "mockup", "3d", "drawing", "sketch",
	}},
	{domain.CategoryVideoEditing, []string{
		"video", "animation", "film", "subtitle", "avatar", "youtube", "movie", "reel",
	}},
	{domain.CategoryAudio, []string{
		"audio", "voice", "music", "podcast", "sound", "speech", "transcri", "song",
	}},
	{domain.CategoryPhotoEditing, []string{
		"photo", "image", "picture", "retouch", "upscal", "background remov", "headshot", "selfie",
	}},
	{domain.CategorySiteBuilding, []string{
		"website", "site builder", "landing page", "no-code", "nocode", "webflow", "web page", "wordpress",
	}},
	{domain.CategoryCodeGeneration, []string{
		"code", "coding", "developer", "programming", "github", "copilot",
		"compiler", "refactor", "devtool", "terminal",
	}},
	{domain.CategoryWriting, []string{
		"write", "writing", "copywriting", "blog", "essay", "grammar", "article", "story",
	}},
	{domain.CategoryProductivity, []string{
		"productivity", "workflow", "automat", "task", "notes", "meeting",
		"calendar", "email", "assistant", "schedul",
	}},
}

// Heuristic classifies by keyword scoring alone. It never fails.
type Heuristic struct{}

func (Heuristic) ClassifyBatch(_ context.Context, batch []domain.Candidate) (map[int]Classification, error) {
	out := make(map[int]Classification, len(batch))
	for i, cand := range batch {
		out[i] = heuristic(cand)
	}
	return out, nil
}

func heuristic(cand domain.Candidate) Classification {
	return Classification{
		Category:   HeuristicCategory(cand),
		Difficulty: domain.Beginner,
		Pricing:    domain.PricingUnknown,
		IsRelevant: true,
	}
}

// HeuristicCategory scores each category by keyword hits in the candidate's
// name, description and topics. The highest score wins, ties go to the
// earlier table row, and no hits at all means productivity.
func HeuristicCategory(cand domain.Candidate) domain.Category {
	text := strings.ToLower(cand.Name + " " + cand.Description + " " + strings.Join(cand.Topics, " "))

	best, bestScore := domain.CategoryProductivity, 0
	for _, row := range keywordTable {
		score := 0
		for _, kw := range row.keywords {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			best, bestScore = row.category, score
		}
	}
	return best
}
