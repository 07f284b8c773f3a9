package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/kindred/internal/profile"
)

// MatchResult is the outcome for one candidate that survived filtering.
type MatchResult struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subject_id"`
	CandidateID string `json:"candidate_id"`
	// CandidateName is the display name of the candidate at ranking time.
	CandidateName string `json:"candidate_name"`

	FormulaScore    float64  `json:"formula_score"`
	TraitSimilarity float64  `json:"trait_similarity"`
	TextBonus       float64  `json:"text_bonus"`
	SharedKeywords  []string `json:"shared_keywords,omitempty"`

	Judged                   bool    `json:"judged"`
	NarrativeScore           float64 `json:"narrative_score"`
	NarrativeScoreNormalized float64 `json:"narrative_score_normalized"`
	FinalScore               float64 `json:"final_score"`

	Summary              string   `json:"summary,omitempty"`
	ConversationStarters []string `json:"conversation_starters,omitempty"`

	Fallback       bool   `json:"fallback,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	order int
}

// Results holds match results ordered by final score, best first.
type Results struct {
	RunID     string        `json:"run_id,omitempty"`
	SubjectID string        `json:"subject_id"`
	Items     []MatchResult `json:"items"`
}

func (r *Results) Len() int {
	return len(r.Items)
}

func (r *Results) CandidateIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.CandidateID)
	}
	return ids
}

// Report returns display rows keyed by rank.
func (r *Results) Report() []map[string]string {
	report := make([]map[string]string, 0, len(r.Items))
	for idx, item := range r.Items {
		row := map[string]string{
			"rank":          fmt.Sprintf("%d", idx+1),
			"candidate":     fmt.Sprintf("%s (%s)", item.CandidateName, item.CandidateID),
			"formula_score": fmt.Sprintf("%.3f", item.FormulaScore),
			"final_score":   fmt.Sprintf("%.3f", item.FinalScore),
		}
		if len(item.SharedKeywords) > 0 {
			row["shared_keywords"] = strings.Join(item.SharedKeywords, ", ")
		}
		if item.Judged {
			row["narrative_score"] = fmt.Sprintf("%.3f", item.NarrativeScoreNormalized)
			row["summary"] = item.Summary
			row["conversation_starters"] = strings.Join(item.ConversationStarters, " | ")
		}
		if item.Fallback {
			row["fallback_reason"] = item.FallbackReason
		}
		report = append(report, row)
	}
	return report
}

// Candidates returns the ranked candidates from pool, in rank order.
func (r *Results) Candidates(pool *profile.Profiles) *profile.Profiles {
	result := &profile.Profiles{}
	for _, item := range r.Items {
		if p := pool.FindByID(item.CandidateID); p != nil {
			result.Items = append(result.Items, *p)
		}
	}
	return result
}

func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
