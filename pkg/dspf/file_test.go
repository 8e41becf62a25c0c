package dspf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCreateOpen_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.dspf")
	h := testHeader(LightGradient, 9, 7, 5)
	cubes := mixedCubes(LightGradient, h.CubeCount())

	w, err := Create(path, h)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i, c := range cubes {
		if err := w.WriteNext(c); err != nil {
			t.Fatalf("WriteNext(%d) failed: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if f.Header.DataOffset != h.DataOffset {
		t.Errorf("expected data offset %d, got %d", h.DataOffset, f.Header.DataOffset)
	}

	// Two passes: Cubes rewinds before iterating.
	for pass := 0; pass < 2; pass++ {
		count := 0
		err := f.Cubes(func(i int, c *Cube) error {
			if i != count {
				t.Errorf("expected index %d, got %d", count, i)
			}
			if diff := cmp.Diff(cubes[i], c, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("pass %d cube %d mismatch (-want +got):\n%s", pass, i, diff)
			}
			count++
			return nil
		})
		if err != nil {
			t.Fatalf("Cubes failed: %v", err)
		}
		if count != len(cubes) {
			t.Errorf("pass %d: expected %d cubes, got %d", pass, len(cubes), count)
		}
	}
}

func TestFile_CubesStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.dspf")
	h := testHeader(LightFlat, 4, 4, 4)
	w, err := Create(path, h)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, c := range emptyCubes(h.CubeCount()) {
		w.WriteNext(c)
	}
	w.Close()

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	stop := errors.New("stop")
	seen := 0
	err = f.Cubes(func(i int, c *Cube) error {
		seen++
		if i == 4 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
	if seen != 5 {
		t.Errorf("expected 5 callbacks, got %d", seen)
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.dspf")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.dspf")
	os.WriteFile(bad, []byte("dspf003.03 and then some"), 0644)
	if _, err := Open(bad); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("expected ErrFormatMismatch, got %v", err)
	}

	h := testHeader(LightFlat, 2, 2, 2)
	data, _ := MarshalHeader(h)
	// Point the data offset into the header.
	data[len(data)-8] = 4
	for i := len(data) - 7; i < len(data); i++ {
		data[i] = 0
	}
	inside := filepath.Join(dir, "inside.dspf")
	os.WriteFile(inside, data, 0644)
	if _, err := Open(inside); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestReader_LogsModeSelection(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	path := filepath.Join(t.TempDir(), "volume.dspf")
	h := testHeader(LightFlat, 3, 3, 3)
	w, err := Create(path, h, WithLogger(log))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, c := range emptyCubes(h.CubeCount()) {
		w.WriteNext(c)
	}
	w.Close()

	f, err := Open(path, WithLogger(log))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	if _, err := f.Reader().ReadCube(); err != nil {
		t.Fatalf("ReadCube failed: %v", err)
	}

	if logs.FilterMessage("dspf run flushed").Len() != 4 {
		t.Errorf("expected 4 run flushes, got %d", logs.FilterMessage("dspf run flushed").Len())
	}
	if logs.FilterMessage("dspf data section buffered").Len() != 1 {
		t.Error("expected buffered mode to be logged")
	}
}
