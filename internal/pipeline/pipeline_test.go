package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"cartelera/internal/pipeline"
	"cartelera/internal/testsupport"
)

func TestRunRefusesConcurrentRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("take lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	now := time.Now()
	_, err = p.Run(context.Background(), pipeline.RunOptions{From: now, To: now})
	if !errors.Is(err, pipeline.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunRejectsUnknownTheater(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}

	now := time.Now()
	_, err = p.Run(context.Background(), pipeline.RunOptions{
		From: now, To: now, Theaters: []string{"imaginary"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown theater")
	}
}

func TestDatasetStartsEmpty(t *testing.T) {
	p, err := pipeline.New(testsupport.NewConfig(t, testsupport.WithoutTMDBKey()), nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}

	ds, err := p.Dataset(context.Background())
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if len(ds.Films) != 0 {
		t.Fatalf("expected empty dataset, got %+v", ds)
	}
}

func TestArchiveDryRunOnEmptyDataset(t *testing.T) {
	p, err := pipeline.New(testsupport.NewConfig(t), nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}

	result, err := p.Archive(context.Background(), testsupport.MustShowTime(t, "2026-03-01 00:00"), true)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(result.Bundles) != 0 || result.SessionsArchived != 0 {
		t.Fatalf("expected empty archive result, got %+v", result)
	}
}
