// Package scoring implements the deterministic compatibility formula: trait
// Jaccard similarity plus a capped bonus for shared free-text keywords.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/kindred/internal/profile"
)

const (
	DefaultKeywordBonus = 0.1
	DefaultBonusCap     = 0.3
)

// DefaultKeywords is the vocabulary checked by the text bonus.
var DefaultKeywords = []string{"night", "book", "rain", "dream", "story", "world", "sound", "listen", "art", "creative"}

type Config struct {
	Keywords     []string `mapstructure:"keywords"`
	KeywordBonus float64  `mapstructure:"keyword-bonus"`
	BonusCap     float64  `mapstructure:"bonus-cap"`
}

func DefaultConfig() Config {
	return Config{
		Keywords:     append([]string(nil), DefaultKeywords...),
		KeywordBonus: DefaultKeywordBonus,
		BonusCap:     DefaultBonusCap,
	}
}

// Scorer computes formula scores. The zero value is not usable; build it with New.
type Scorer struct {
	keywords []string
	bonus    float64
	cap      float64
}

// Breakdown holds the components of a formula score.
type Breakdown struct {
	TraitSimilarity float64  `json:"trait_similarity"`
	TextBonus       float64  `json:"text_bonus"`
	SharedKeywords  []string `json:"shared_keywords,omitempty"`
	Score           float64  `json:"score"`
}

// ErrConfigurationInvalid is returned by New for a bonus or cap that is negative or not a number.
var ErrConfigurationInvalid = errors.New("scoring configuration invalid")

func (c Config) Validate() error {
	if !(c.KeywordBonus >= 0) {
		return fmt.Errorf("%w: keyword-bonus must not be negative, got %v", ErrConfigurationInvalid, c.KeywordBonus)
	}
	if !(c.BonusCap >= 0) {
		return fmt.Errorf("%w: bonus-cap must not be negative, got %v", ErrConfigurationInvalid, c.BonusCap)
	}
	return nil
}

// Default returns a scorer built from DefaultConfig.
func Default() *Scorer {
	s, _ := New(DefaultConfig())
	return s
}

// New builds a scorer. Bonus and cap are taken as given, so zero turns the text bonus off.
// An empty keyword list uses DefaultKeywords.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{bonus: cfg.KeywordBonus, cap: cfg.BonusCap}

	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	seen := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		s.keywords = append(s.keywords, keyword)
	}

	return s, nil
}

// Score returns the formula score of a pair, always within [0, 1].
func (s *Scorer) Score(a, b profile.Profile) float64 {
	return s.Breakdown(a, b).Score
}

func (s *Scorer) Breakdown(a, b profile.Profile) Breakdown {
	similarity := Jaccard(a.TraitSet(), b.TraitSet())
	bonus, shared := s.TextBonus(a.FreeText, b.FreeText)

	return Breakdown{
		TraitSimilarity: similarity,
		TextBonus:       bonus,
		SharedKeywords:  shared,
		Score:           math.Min(similarity+bonus, 1.0),
	}
}

// TextBonus adds the per-keyword bonus for every vocabulary keyword that appears as an
// exact token in both texts, capped at the configured maximum.
func (s *Scorer) TextBonus(textA, textB string) (float64, []string) {
	tokensA := Tokenize(textA)
	tokensB := Tokenize(textB)

	var (
		bonus  float64
		shared []string
	)
	for _, keyword := range s.keywords {
		_, inA := tokensA[keyword]
		_, inB := tokensB[keyword]
		if inA && inB {
			bonus += s.bonus
			shared = append(shared, keyword)
		}
	}

	return math.Min(bonus, s.cap), shared
}

func (s *Scorer) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// Jaccard returns |A∩B| / |A∪B|. Two empty sets have similarity 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for item := range small {
		if _, ok := large[item]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Tokenize lowercases text and splits it on whitespace. Punctuation stays attached.
func Tokenize(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}
	return tokens
}
