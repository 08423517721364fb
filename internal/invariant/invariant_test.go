package invariant_test

import (
	"testing"

	"github.com/exprflow/exprflow/internal/invariant"
)

func TestPassesWhenTrue(t *testing.T) {
	invariant.Precondition(true, "should not panic")
	invariant.Postcondition(true, "should not panic")
	invariant.Invariant(true, "should not panic")
}

func TestPanicsWhenFalse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	invariant.Invariant(false, "vertex %d out of range", 5)
}
