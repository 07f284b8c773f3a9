package profile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const ExcludeActorUser = "user"

type ExcludedProfiles struct {
	Items []*ExcludedProfile
}

type ExcludedProfile struct {
	ID          string
	DisplayName string
	Actor       string `json:",omitempty"`
	Reason      string `json:",omitempty"`
	ExcludedAt  time.Time
}

func (p *Profiles) ToExcluded(actor, reason string) *ExcludedProfiles {
	excluded := &ExcludedProfiles{}
	for _, item := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedProfile{
			ID:          item.ID,
			DisplayName: item.DisplayName,
			Actor:       actor,
			Reason:      reason,
			ExcludedAt:  time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedProfiles, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedProfiles{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedProfiles{}, nil
	}

	var excluded ExcludedProfiles
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose IDs are not already present.
func (e *ExcludedProfiles) Append(s *ExcludedProfiles) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedProfiles) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedProfiles) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
