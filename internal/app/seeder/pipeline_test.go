package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/heartmarshall/familytree-names/internal/config"
	"github.com/heartmarshall/familytree-names/internal/domain"
)

// mockRepo records calls to verify pipeline behavior.
type mockRepo struct {
	mu sync.Mutex

	forenames []domain.Forename
	surnames  []domain.Surname
	replaced  []string

	bulkInsertForenamesErr error
	bulkInsertSurnamesErr  error
	countErr               error

	// duplicates is subtracted from every insert result.
	duplicates int

	callLog []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{}
}

func (m *mockRepo) logCall(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, name)
}

func (m *mockRepo) BulkInsertForenames(_ context.Context, names []domain.Forename) (int, error) {
	m.logCall("BulkInsertForenames")
	if m.bulkInsertForenamesErr != nil {
		return 0, m.bulkInsertForenamesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forenames = append(m.forenames, names...)
	return len(names) - m.duplicates, nil
}

func (m *mockRepo) BulkInsertSurnames(_ context.Context, names []domain.Surname) (int, error) {
	m.logCall("BulkInsertSurnames")
	if m.bulkInsertSurnamesErr != nil {
		return 0, m.bulkInsertSurnamesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surnames = append(m.surnames, names...)
	return len(names) - m.duplicates, nil
}

func (m *mockRepo) ReplaceForenames(_ context.Context, names []domain.Forename) (int, error) {
	m.logCall("ReplaceForenames")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forenames = slices.Clone(names)
	m.replaced = append(m.replaced, "forenames")
	return len(names), nil
}

func (m *mockRepo) ReplaceSurnames(_ context.Context, names []domain.Surname) (int, error) {
	m.logCall("ReplaceSurnames")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surnames = slices.Clone(names)
	m.replaced = append(m.replaced, "surnames")
	return len(names), nil
}

func (m *mockRepo) CountByCountry(_ context.Context, dataset domain.Dataset) (map[string]int, error) {
	m.logCall("CountByCountry")
	if m.countErr != nil {
		return nil, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	switch dataset {
	case domain.DatasetForenames:
		for _, n := range m.forenames {
			counts[n.Country]++
		}
	case domain.DatasetSurnames:
		for _, n := range m.surnames {
			counts[n.Country]++
		}
	}
	return counts, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T) config.SeederConfig {
	t.Helper()
	return config.SeederConfig{
		ForenamesPath: createTempFile(t, "forenames", "country,region,gender,rank,name\nUS,West,F,1,Mary\nUS,East,M,2,John\nFR,Unknown,M,1,Jean\n"),
		SurnamesPath:  createTempFile(t, "surnames", "country,rank,count,name\nUS,1,2442977,Smith\nFR,1,249000,Martin\n"),
		BatchSize:     2,
	}
}

func TestPipeline_InsertsBothDatasets(t *testing.T) {
	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HasErrors() {
		t.Fatalf("unexpected phase errors: %+v", p.Results())
	}

	if len(repo.forenames) != 3 {
		t.Errorf("expected 3 forenames inserted, got %d", len(repo.forenames))
	}
	if len(repo.surnames) != 2 {
		t.Errorf("expected 2 surnames inserted, got %d", len(repo.surnames))
	}

	fr := p.Results()["forenames"]
	if fr.Parsed != 3 || fr.Inserted != 3 || fr.Skipped != 0 {
		t.Errorf("unexpected forenames result: %+v", fr)
	}
	if len(p.Unmatched()) != 0 {
		t.Errorf("expected no unmatched countries, got %v", p.Unmatched())
	}
}

func TestPipeline_BatchesBySize(t *testing.T) {
	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	if err := p.Run(context.Background(), []string{"forenames"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := 0
	for _, c := range repo.callLog {
		if c == "BulkInsertForenames" {
			calls++
		}
	}
	// 3 rows with batch size 2.
	if calls != 2 {
		t.Errorf("expected 2 insert batches, got %d", calls)
	}
}

func TestPipeline_DryRunNoRepoWrites(t *testing.T) {
	repo := newMockRepo()
	cfg := testConfig(t)
	cfg.DryRun = true

	p := NewPipeline(testLogger(), repo, cfg)
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.callLog) != 0 {
		t.Errorf("expected no repo calls in dry run, got %v", repo.callLog)
	}
	if got := p.Results()["surnames"]; got.Parsed != 2 || got.Skipped != 2 {
		t.Errorf("unexpected dry run result: %+v", got)
	}
}

func TestPipeline_ReplaceMode(t *testing.T) {
	repo := newMockRepo()
	cfg := testConfig(t)
	cfg.Replace = true

	p := NewPipeline(testLogger(), repo, cfg)
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(repo.replaced, []string{"forenames", "surnames"}) {
		t.Errorf("expected both tables replaced in order, got %v", repo.replaced)
	}
	if slices.Contains(repo.callLog, "BulkInsertForenames") {
		t.Error("replace mode should not use batch inserts")
	}
}

func TestPipeline_DuplicatesCountedAsSkipped(t *testing.T) {
	repo := newMockRepo()
	repo.duplicates = 1
	cfg := testConfig(t)
	cfg.BatchSize = 100

	p := NewPipeline(testLogger(), repo, cfg)
	if err := p.Run(context.Background(), []string{"surnames"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := p.Results()["surnames"]
	if got.Inserted != 1 || got.Skipped != 1 {
		t.Errorf("expected 1 inserted and 1 skipped, got %+v", got)
	}
}

func TestPipeline_ErrorIsolation(t *testing.T) {
	repo := newMockRepo()
	repo.bulkInsertForenamesErr = errors.New("forenames db error")

	p := NewPipeline(testLogger(), repo, testConfig(t))
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("pipeline should not return fatal error, got: %v", err)
	}

	if !p.HasErrors() {
		t.Fatal("expected HasErrors to report the failed phase")
	}
	if p.Results()["forenames"].Err == nil {
		t.Error("expected forenames phase to have an error")
	}
	if p.Results()["surnames"].Err != nil {
		t.Errorf("surnames phase should succeed, got %v", p.Results()["surnames"].Err)
	}
	if slices.Contains(repo.callLog, "CountByCountry") {
		t.Error("country check should not run after a failed phase")
	}
}

func TestPipeline_MissingSourceFile(t *testing.T) {
	repo := newMockRepo()
	cfg := testConfig(t)
	cfg.SurnamesPath = cfg.SurnamesPath + ".missing"

	p := NewPipeline(testLogger(), repo, cfg)
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Results()["surnames"].Err; !errors.Is(err, domain.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestPipeline_PhaseFilter(t *testing.T) {
	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	if err := p.Run(context.Background(), []string{"surnames"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := p.Results()
	if _, ok := results["surnames"]; !ok {
		t.Error("expected surnames phase to run")
	}
	if _, ok := results["forenames"]; ok {
		t.Error("forenames should NOT run when filter is surnames only")
	}
}

func TestPipeline_UnknownPhase(t *testing.T) {
	p := NewPipeline(testLogger(), newMockRepo(), testConfig(t))

	err := p.Run(context.Background(), []string{"middle-names"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(p.Results()) != 0 {
		t.Errorf("expected no phases to run, got %v", p.Results())
	}
}

func TestPipeline_ReportsUnmatchedCountries(t *testing.T) {
	repo := newMockRepo()
	cfg := testConfig(t)
	cfg.SurnamesPath = createTempFile(t, "surnames", "country,name\nUS,Smith\nDE,Müller\n")

	p := NewPipeline(testLogger(), repo, cfg)
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"DE", "FR"}; !slices.Equal(p.Unmatched(), want) {
		t.Errorf("expected unmatched %v, got %v", want, p.Unmatched())
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(testLogger(), newMockRepo(), testConfig(t))
	if err := p.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBatchProcess(t *testing.T) {
	items := make([]int, 7)
	for i := range items {
		items[i] = i
	}

	var batches [][]int
	total, err := batchProcess(items, 3, func(batch []int) (int, error) {
		batches = append(batches, batch)
		return len(batch), nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 3 {
		t.Errorf("expected first batch size 3, got %d", len(batches[0]))
	}
	if len(batches[2]) != 1 {
		t.Errorf("expected last batch size 1, got %d", len(batches[2]))
	}
}

func TestBatchProcess_EmptySlice(t *testing.T) {
	total, err := batchProcess([]int{}, 10, func(batch []int) (int, error) {
		t.Fatal("should not be called for empty input")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0, got %d", total)
	}
}

func TestBatchProcess_ErrorStops(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	callCount := 0
	total, err := batchProcess(items, 2, func(batch []int) (int, error) {
		callCount++
		if callCount == 2 {
			return 0, fmt.Errorf("batch error")
		}
		return len(batch), nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls before error, got %d", callCount)
	}
	if total != 2 {
		t.Errorf("expected partial total 2, got %d", total)
	}
}

// createTempFile creates a temporary file with the given content for testing.
func createTempFile(t *testing.T, prefix, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), prefix+"_*.csv")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if content != "" {
		if _, err := f.WriteString(content); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	f.Close()
	return f.Name()
}
