package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/kindred/internal/profile"
)

type selfFilter struct {
	subjectID string
}

// NewSelf creates a filter that removes the subject from its own candidate list.
func NewSelf(subjectID string) Filter {
	return &selfFilter{subjectID: strings.TrimSpace(subjectID)}
}

func (f *selfFilter) Name() string { return "self" }

func (f *selfFilter) Disable(string) {}

func (f *selfFilter) IsEnabled() bool { return true }

func (f *selfFilter) Validate() error {
	if f.subjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	return nil
}

func (f *selfFilter) Apply(_ context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	excluded := p.Exclude(profile.ProfileIDField, []string{f.subjectID})

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}
