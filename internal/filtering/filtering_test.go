package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/kindred/internal/profile"
)

func testProfiles() *profile.Profiles {
	return &profile.Profiles{Items: []profile.Profile{
		profile.New("alex", "Alex", []string{"storyteller", "night owl"}, ""),
		profile.New("jordan", "Jordan", []string{"listener", "dreamer"}, ""),
		profile.New("sam", "Sam", []string{"observer"}, ""),
		profile.New("riley", "Riley", []string{"writer", "night owl", "painter"}, ""),
	}}
}

func writeExcludeFile(t *testing.T, ids ...string) string {
	t.Helper()
	excluded := &profile.Profiles{}
	for _, id := range ids {
		excluded.Items = append(excluded.Items, profile.New(id, id, nil, ""))
	}

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := excluded.ToExcluded(profile.ExcludeActorUser, "seen").ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}
	return path
}

func TestRunFilters(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	f := New([]Filter{
		NewSelf("alex"),
		NewExcludeFile(writeExcludeFile(t, "jordan", "unknown"), logger),
		NewMinTraits(2),
	}, logger)

	result, err := f.RunFilters(context.Background(), testProfiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ids := result.IDs(); !slices.Equal(ids, []string{"riley"}) {
		t.Fatalf("unexpected candidates left: %v", ids)
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 3 {
		t.Fatalf("expected 3 step entries, got %d", len(steps))
	}

	last := steps[2].ContextMap()
	if last["name"] != "min_traits" || last["dropped"] != int64(1) || last["left"] != int64(1) {
		t.Fatalf("unexpected min_traits step: %v", last)
	}

	if observed.FilterMessage("excluding candidates based on exclude file").Len() != 1 {
		t.Fatalf("expected exclude file log entry")
	}
}

func TestRunFiltersSkipsDisabled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	f := New([]Filter{NewSelf("alex"), NewMinTraits(0)}, zap.New(core))

	result, err := f.RunFilters(context.Background(), testProfiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Len() != 3 {
		t.Fatalf("expected 3 candidates, got %d", result.Len())
	}

	disabled := observed.FilterMessage("filter disabled").All()
	if len(disabled) != 1 || disabled[0].ContextMap()["name"] != "min_traits" {
		t.Fatalf("expected min_traits to be reported as disabled, got %v", disabled)
	}
}

func TestRunFiltersValidates(t *testing.T) {
	f := New([]Filter{NewSelf("  ")}, nil)

	if _, err := f.RunFilters(context.Background(), testProfiles()); err == nil {
		t.Fatal("expected validation error for empty subject id")
	}
}

func TestRunFiltersExcludeFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := New([]Filter{NewExcludeFile(path, nil)}, nil)
	if _, err := f.RunFilters(context.Background(), testProfiles()); err == nil {
		t.Fatal("expected error for broken exclude file")
	}
}

func TestRunFiltersMissingExcludeFile(t *testing.T) {
	f := New([]Filter{NewExcludeFile(filepath.Join(t.TempDir(), "absent.json"), nil)}, nil)

	result, err := f.RunFilters(context.Background(), testProfiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Len() != 4 {
		t.Fatalf("expected nothing excluded, got %d left", result.Len())
	}
}

func TestRunFiltersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New([]Filter{NewSelf("alex")}, nil).RunFilters(ctx, testProfiles())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	f := New([]Filter{
		NewSelf("alex"),
		NewExcludeFile("exclude.json", nil),
		NewMinTraits(2),
	}, nil)
	f.DisableByName("min_traits", "ignored")

	statuses := f.Describe()
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	if statuses[0].Name != "self" || !statuses[0].Enabled {
		t.Fatalf("unexpected self status: %+v", statuses[0])
	}

	if statuses[1].Details["path"] != "exclude.json" {
		t.Fatalf("unexpected exclude_file status: %+v", statuses[1])
	}

	if statuses[2].Enabled || statuses[2].Reason != "ignored" || statuses[2].Details["minimum"] != "2" {
		t.Fatalf("expected min_traits to be disabled: %+v", statuses[2])
	}
}

func TestSelfFilterMatchesTrimmedIDs(t *testing.T) {
	profiles := &profile.Profiles{Items: []profile.Profile{
		profile.New(" alex ", "Alex", nil, ""),
		profile.New("sam", "Sam", nil, ""),
	}}

	result, err := New([]Filter{NewSelf("alex ")}, nil).RunFilters(context.Background(), profiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := result.IDs(); !slices.Equal(ids, []string{"sam"}) {
		t.Fatalf("expected subject to be removed, got %v", ids)
	}
}
