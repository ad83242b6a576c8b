package testutil

import "testing"

// step names a subtest after its scenario clause so failures read as
// "Given a doctor/When they issue/Then ...".
func step(t *testing.T, clause, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run(clause+" "+desc, fn)
}

func Given(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Given", desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "When", desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Then", desc, fn)
}

// And continues the preceding clause.
func And(t *testing.T, desc string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "And", desc, fn)
}
