package syncer

import (
	"fmt"
	"strings"
)

// Result counts what a pass did.
type Result struct {
	Pushed    int
	Inserted  int
	Updated   int
	Repushed  int
	Unchanged int
	Failed    int
}

func (r *Result) Add(o Result) {
	r.Pushed += o.Pushed
	r.Inserted += o.Inserted
	r.Updated += o.Updated
	r.Repushed += o.Repushed
	r.Unchanged += o.Unchanged
	r.Failed += o.Failed
}

// String lists the non-zero counters, e.g. "pushed=3 failed=1".
func (r Result) String() string {
	var parts []string
	for _, c := range []struct {
		name string
		n    int
	}{
		{"pushed", r.Pushed},
		{"inserted", r.Inserted},
		{"updated", r.Updated},
		{"repushed", r.Repushed},
		{"unchanged", r.Unchanged},
		{"failed", r.Failed},
	} {
		if c.n != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c.name, c.n))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, " ")
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailure Status = "failure"
)

// Outcome is what every sync trigger reports to the UI. Triggers never
// return raw errors or panic.
type Outcome struct {
	Status  Status
	Message string
	Counts  Result
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.Status, o.Message)
}

func success(what string, r Result) Outcome {
	return Outcome{Status: StatusSuccess, Message: what + ": " + r.String(), Counts: r}
}

func skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Message: reason}
}

func failure(what string, err error, r Result) Outcome {
	return Outcome{Status: StatusFailure, Message: fmt.Sprintf("%s failed: %v", what, err), Counts: r}
}
