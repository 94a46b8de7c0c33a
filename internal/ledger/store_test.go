package ledger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// #region helpers
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, ratio float64, present bool) RunRecord {
	return RunRecord{
		RunID:           id,
		Codec:           "quantizer",
		Dims:            []int{4, 4},
		CompressedBytes: 42,
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Results: []ResultRow{{
			MetricID: "msz_false_label_ratio",
			Key:      "msz_false_label_ratio:false_label_ratio",
			Value:    ratio,
			HasValue: present,
		}},
	}
}

// #endregion helpers

// #region record-tests
func TestRecordRun_RoundTrip(t *testing.T) {
	s := setupStore(t)
	want := sampleRun("r1", 0.1875, true)

	if err := s.RecordRun(want); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := s.GetRun("r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRun_AbsentValueStoredAsNull(t *testing.T) {
	s := setupStore(t)
	rec := sampleRun("r1", 0, false)
	rec.Results[0].Status = 6
	if err := s.RecordRun(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	var isNull bool
	s.DB().QueryRow(`SELECT value IS NULL FROM results WHERE run_id = 'r1'`).Scan(&isNull)
	if !isNull {
		t.Error("expected NULL value for absent result")
	}

	got, _ := s.GetRun("r1")
	if got.Results[0].HasValue || got.Results[0].Status != 6 {
		t.Errorf("expected absent result with status 6, got %+v", got.Results[0])
	}
}

func TestRecordRun_DuplicateID(t *testing.T) {
	s := setupStore(t)
	if err := s.RecordRun(sampleRun("r1", 0.1, true)); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := s.RecordRun(sampleRun("r1", 0.2, true)); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
	vals, _ := s.Values("msz_false_label_ratio:false_label_ratio")
	if len(vals) != 1 {
		t.Errorf("expected failed insert to roll back, got %d values", len(vals))
	}
}

func TestRecordRun_ZeroCreatedAt(t *testing.T) {
	s := setupStore(t)
	rec := sampleRun("r1", 0.1, true)
	rec.CreatedAt = time.Time{}

	before := time.Now().UTC()
	if err := s.RecordRun(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, _ := s.GetRun("r1")
	if got.CreatedAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

// #endregion record-tests

// #region query-tests
func TestGetRun_NotFound(t *testing.T) {
	s := setupStore(t)
	if _, err := s.GetRun("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestListRuns_InsertionOrderAndLimit(t *testing.T) {
	s := setupStore(t)
	for _, id := range []string{"c", "a", "b"} {
		if err := s.RecordRun(sampleRun(id, 0.1, true)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.RunID)
	}
	if diff := cmp.Diff([]string{"c", "a"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_SkipsAbsent(t *testing.T) {
	s := setupStore(t)
	s.RecordRun(sampleRun("r1", 0.25, true))
	s.RecordRun(sampleRun("r2", 0, false))
	s.RecordRun(sampleRun("r3", 0.5, true))

	vals, err := s.Values("msz_false_label_ratio:false_label_ratio")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if diff := cmp.Diff([]float64{0.25, 0.5}, vals); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStore_Isolated(t *testing.T) {
	a := setupStore(t)
	b := setupStore(t)
	a.RecordRun(sampleRun("r1", 0.1, true))
	if _, err := b.GetRun("r1"); err == nil {
		t.Error("expected separate stores not to share data")
	}
}

// #endregion query-tests
