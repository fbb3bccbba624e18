package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/san-kum/episim/internal/epidemic"
)

func computeRun(t *testing.T, req epidemic.Request) (epidemic.Params, *epidemic.Trajectory) {
	t.Helper()
	p, err := epidemic.Build(req)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	tr, err := epidemic.ComputeTrajectory(context.Background(), p)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	return p, tr
}

func smallRequest() epidemic.Request {
	return epidemic.Request{
		Population:       1.0,
		InitialInfected:  0.01,
		TransmissionRate: 3.2,
		RecoveryRate:     0.23,
		StepSize:         0.01,
		MaxSteps:         50,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p, tr := computeRun(t, smallRequest())

	runID, err := st.Save(p, tr)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Params != p {
		t.Errorf("expected params %+v, got %+v", p, meta.Params)
	}
	if meta.ValidLength != tr.ValidLength {
		t.Errorf("expected valid length %d, got %d", tr.ValidLength, meta.ValidLength)
	}
	if meta.Metrics["peak_infected"] != tr.Metrics["peak_infected"] {
		t.Errorf("expected peak %f, got %f", tr.Metrics["peak_infected"], meta.Metrics["peak_infected"])
	}

	loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if loaded.Len() != tr.Len() {
		t.Fatalf("expected %d rows, got %d", tr.Len(), loaded.Len())
	}
	for i := range tr.Time {
		if loaded.Time[i] != tr.Time[i] || loaded.S[i] != tr.S[i] || loaded.I[i] != tr.I[i] || loaded.R[i] != tr.R[i] {
			t.Fatalf("row %d differs after round trip", i)
		}
	}
}

func TestStoreKeepsTruncatedRuns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := smallRequest()
	req.TransmissionRate = 9.5
	req.StepSize = 0.5
	p, tr := computeRun(t, req)
	if !tr.Truncated() {
		t.Fatal("expected an early-terminated run")
	}

	runID, err := st.Save(p, tr)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if loaded.ValidLength != tr.ValidLength {
		t.Errorf("expected valid length %d, got %d", tr.ValidLength, loaded.ValidLength)
	}
	if loaded.Len() != p.MaxSteps+1 {
		t.Errorf("expected full buffer of %d rows, got %d", p.MaxSteps+1, loaded.Len())
	}
}

func TestWriteCSVStepColumnAfterEarlyStop(t *testing.T) {
	req := smallRequest()
	req.TransmissionRate = 9.5
	req.StepSize = 0.5
	req.MaxSteps = 100
	_, tr := computeRun(t, req)
	if !tr.Truncated() {
		t.Fatal("expected an early-terminated run")
	}

	var buf bytes.Buffer
	if err := WriteCSV(csv.NewWriter(&buf), tr); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(records) != 102 {
		t.Fatalf("expected header plus 101 rows, got %d", len(records))
	}
	for i, rec := range records[1:] {
		if rec[0] != strconv.Itoa(i) {
			t.Errorf("row %d: step column %q, want %d", i, rec[0], i)
		}
	}
	if last := records[101]; last[0] != "100" || last[1] != "0" {
		t.Errorf("last row should be step 100 with zero-filled state, got %v", last)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	p, tr := computeRun(t, smallRequest())
	for i := 0; i < 2; i++ {
		if _, err := st.Save(p, tr); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("sir_0_deadbeef"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrajectory("sir_0_deadbeef"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p, tr := computeRun(t, smallRequest())
	runID, err := st.Save(p, tr)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "trajectory.csv")); os.IsNotExist(err) {
		t.Error("trajectory.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := smallRequest()
	req.RecoveryRate = 0
	p, tr := computeRun(t, req)
	runID, err := st.Save(p, tr)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, tr); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, decoded.ID)
	}
	if decoded.R0 != "∞" {
		t.Errorf("expected R0 ∞ with zero recovery, got %s", decoded.R0)
	}
	if decoded.Steps != 51 {
		t.Errorf("expected 51 steps, got %d", decoded.Steps)
	}
}
