package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/kindred/internal/profile"
)

type minTraitsFilter struct {
	minimum  int
	disabled bool
	reason   string
}

// NewMinTraits creates a filter that removes candidates with fewer than minimum traits.
// A minimum of zero or less disables the step.
func NewMinTraits(minimum int) Filter {
	f := &minTraitsFilter{minimum: minimum}
	if minimum <= 0 {
		f.Disable("minimum is not set")
	}
	return f
}

func (f *minTraitsFilter) Name() string { return "min_traits" }

func (f *minTraitsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minTraitsFilter) IsEnabled() bool { return !f.disabled }

func (f *minTraitsFilter) Validate() error {
	if f.minimum <= 0 {
		return fmt.Errorf("minimum traits must be positive, got %d", f.minimum)
	}
	return nil
}

func (f *minTraitsFilter) Apply(_ context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	excluded := p.ExcludeFunc(func(candidate profile.Profile) bool {
		return len(candidate.Traits) < f.minimum
	})

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *minTraitsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.Itoa(f.minimum)},
	}
}
