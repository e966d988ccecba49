package storage

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinio/clinicsched/internal/model"
)

func TestIsConflict(t *testing.T) {
	exclusion := &pgconn.PgError{Code: "23P01"}
	if !IsConflict(exclusion) {
		t.Fatal("exclusion violation must be a conflict")
	}
	if !IsConflict(fmt.Errorf("insert appointment: %w", exclusion)) {
		t.Fatal("wrapped exclusion violation must be a conflict")
	}
	if IsConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not the overlap constraint")
	}
	if IsConflict(nil) {
		t.Fatal("nil is not a conflict")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Fatal("pgx.ErrNoRows must be not-found")
	}
	if !IsNotFound(fmt.Errorf("load appointment: %w", pgx.ErrNoRows)) {
		t.Fatal("wrapped pgx.ErrNoRows must be not-found")
	}
	if IsNotFound(fmt.Errorf("boom")) {
		t.Fatal("arbitrary errors are not not-found")
	}
}

func TestStatusStrings(t *testing.T) {
	got := statusStrings(model.OccupyingStatuses())
	if len(got) != 2 || got[0] != "scheduled" || got[1] != "confirmed" {
		t.Fatalf("statusStrings(occupying) = %v", got)
	}
}
