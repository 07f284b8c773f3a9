package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Document is a profiles file: the subject being matched and the pool of candidates.
type Document struct {
	Subject    Profile   `mapstructure:"subject"`
	Candidates []Profile `mapstructure:"candidates"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a YAML or JSON profiles document. The format is picked by the file extension.
func Load(path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file is not configured")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profiles file %q: %w", path, err)
	}

	return Decode(v.AllSettings())
}

// Decode converts a generic map (as produced by viper or a JSON decoder) into a validated Document.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding profiles: %w", err)
	}

	doc.Subject = New(doc.Subject.ID, doc.Subject.DisplayName, doc.Subject.Traits, doc.Subject.FreeText)
	for idx, candidate := range doc.Candidates {
		doc.Candidates[idx] = New(candidate.ID, candidate.DisplayName, candidate.Traits, candidate.FreeText)
	}

	if err := Validate(doc.Subject); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Candidates))
	for idx, candidate := range doc.Candidates {
		if err := Validate(candidate); err != nil {
			return nil, fmt.Errorf("candidate #%d: %w", idx, err)
		}
		if _, ok := seen[candidate.ID]; ok {
			return nil, fmt.Errorf("candidate #%d: duplicate id %q", idx, candidate.ID)
		}
		seen[candidate.ID] = struct{}{}
	}

	return &doc, nil
}

// Validate checks that the profile carries the fields the scorer relies on.
func Validate(p Profile) error {
	if err := validate.Struct(p); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("profile %q is missing required fields: %s", p.ID, strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// CandidatesOf returns the candidates as a mutable collection.
func (d *Document) CandidatesOf() *Profiles {
	items := make([]Profile, len(d.Candidates))
	copy(items, d.Candidates)
	return &Profiles{Items: items}
}
