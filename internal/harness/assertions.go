package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string

	// Outcomes gives the full run for context.
	Outcomes []Outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutcomes:\n")
	for i, o := range e.Outcomes {
		fmt.Fprintf(&buf, "  [%d] %s: %s\n", i+1, o.Case, describe(o))
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertProgramContains:
		return assertProgramText(result, a, true)
	case AssertProgramExcludes:
		return assertProgramText(result, a, false)
	case AssertErrorCount:
		return assertErrorCount(result, a)
	case AssertSameProgram:
		return assertSameProgram(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertProgramText(result *Result, a Assertion, want bool) error {
	o, ok := result.Outcome(a.Case)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("case %s", a.Case),
			Actual:   "no such case",
			Outcomes: result.Outcomes,
		}
	}
	if o.Failed() {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("program for case %s", a.Case),
			Actual:   describe(o),
			Outcomes: result.Outcomes,
		}
	}
	if strings.Contains(o.Program, a.Text) == want {
		return nil
	}

	expected := fmt.Sprintf("program of %s containing %q", a.Case, a.Text)
	if !want {
		expected = fmt.Sprintf("program of %s without %q", a.Case, a.Text)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   o.Program,
		Outcomes: result.Outcomes,
	}
}

func assertErrorCount(result *Result, a Assertion) error {
	count := 0
	for _, o := range result.Outcomes {
		if !o.Failed() {
			continue
		}
		if a.Code == "" || o.Error == a.Code {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	code := a.Code
	if code == "" {
		code = "any code"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d error(s) with %s", a.Count, code),
		Actual:   fmt.Sprintf("%d error(s)", count),
		Outcomes: result.Outcomes,
	}
}

func assertSameProgram(result *Result, a Assertion) error {
	var first Outcome
	for i, id := range a.Cases {
		o, ok := result.Outcome(id)
		if !ok || o.Failed() {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("program for case %s", id),
				Actual:   describe(o),
				Outcomes: result.Outcomes,
			}
		}
		if i == 0 {
			first = o
			continue
		}
		if o.Program != first.Program {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s and %s to agree", first.Case, id),
				Actual:   fmt.Sprintf("%s vs %s", first.Program, o.Program),
				Outcomes: result.Outcomes,
			}
		}
	}
	return nil
}
