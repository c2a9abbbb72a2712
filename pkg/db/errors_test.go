package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "uq_spools_tag") {
		t.Fatal("nil error must not register as a violation")
	}

	pg := errors.New(`ERROR: duplicate key value violates unique constraint "uq_spools_tag" (SQLSTATE 23505)`)
	if !IsUniqueViolation(pg, "uq_spools_tag") {
		t.Fatal("postgres duplicate-key error with matching constraint not detected")
	}
	if !IsUniqueViolation(pg, "") {
		t.Fatal("postgres duplicate-key error not detected without constraint name")
	}

	lite := errors.New("UNIQUE constraint failed: spools.tag")
	if !IsUniqueViolation(lite, "uq_spools_tag") {
		t.Fatal("sqlite duplicate error not detected")
	}

	if IsUniqueViolation(errors.New("connection refused"), "uq_spools_tag") {
		t.Fatal("unrelated error must not register as a violation")
	}
}
