package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

const (
	ProfileIDField          = "ID"
	ProfileDisplayNameField = "DisplayName"
)

// Profile is a user's traits and self-description used as scoring input.
type Profile struct {
	ID          string   `json:"id" mapstructure:"id" validate:"required"`
	DisplayName string   `json:"display_name" mapstructure:"display-name" validate:"required"`
	Traits      []string `json:"traits,omitempty" mapstructure:"traits"`
	FreeText    string   `json:"free_text,omitempty" mapstructure:"free-text"`
}

// New builds a profile with a trimmed ID and duplicate traits collapsed.
func New(id, displayName string, traits []string, freeText string) Profile {
	return Profile{
		ID:          strings.TrimSpace(id),
		DisplayName: displayName,
		Traits:      uniqueTraits(traits),
		FreeText:    freeText,
	}
}

// TraitSet returns the traits as a set.
func (p Profile) TraitSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Traits))
	for _, trait := range p.Traits {
		set[trait] = struct{}{}
	}
	return set
}

func (p Profile) GetStringField(name string) string {
	switch name {
	case ProfileIDField:
		return p.ID
	case ProfileDisplayNameField:
		return p.DisplayName
	default:
		return ""
	}
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
}

type Profiles struct {
	Items []Profile
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

func (p *Profiles) FindByID(id string) *Profile {
	for idx := range p.Items {
		if p.Items[idx].ID == id {
			return &p.Items[idx]
		}
	}
	return nil
}

func (p *Profiles) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Exclude removes profiles whose field matches any of targets and returns the removed IDs.
// The relative order of the remaining profiles is preserved.
func (p *Profiles) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	lookup := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		lookup[target] = struct{}{}
	}

	var excluded []string
	p.Items = slices.DeleteFunc(p.Items, func(item Profile) bool {
		if _, ok := lookup[item.GetStringField(name)]; ok {
			excluded = append(excluded, item.ID)
			return true
		}
		return false
	})
	return excluded
}

// ExcludeFunc removes profiles for which fn returns true and returns the removed IDs.
func (p *Profiles) ExcludeFunc(fn func(Profile) bool) []string {
	var excluded []string
	p.Items = slices.DeleteFunc(p.Items, func(item Profile) bool {
		if fn(item) {
			excluded = append(excluded, item.ID)
			return true
		}
		return false
	})
	return excluded
}

func (p *Profiles) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "profiles_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func uniqueTraits(traits []string) []string {
	if len(traits) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(traits))
	result := make([]string, 0, len(traits))
	for _, trait := range traits {
		if strings.TrimSpace(trait) == "" {
			continue
		}
		if _, ok := seen[trait]; ok {
			continue
		}
		seen[trait] = struct{}{}
		result = append(result, trait)
	}
	return result
}
