package model

import (
	"encoding/json"
	"fmt"
)

// Outcome is the terminal verdict of a run.
type Outcome int

const (
	// OutcomeInvalid means the walk ended without reaching the target:
	// a dead end, a cycle, or a fetch failure.
	OutcomeInvalid Outcome = iota

	// OutcomeValid means the walk reached the target article.
	OutcomeValid
)

// String returns "VALID" or "INVALID".
func (o Outcome) String() string {
	if o == OutcomeValid {
		return "VALID"
	}
	return "INVALID"
}

// ParseOutcome converts the text form back into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "VALID":
		return OutcomeValid, nil
	case "INVALID":
		return OutcomeInvalid, nil
	default:
		return OutcomeInvalid, fmt.Errorf("unknown outcome %q", s)
	}
}

// MarshalJSON encodes the outcome as its text form.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes the text form of an outcome.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Reason records which terminal state a run ended in.
// It makes the walker's failure transitions inspectable in reports and logs.
type Reason string

const (
	// ReasonReachedTarget means the current node was the target.
	ReasonReachedTarget Reason = "reached_target"

	// ReasonDeadEnd means the page had no qualifying link.
	ReasonDeadEnd Reason = "dead_end"

	// ReasonCycle means the next node was already visited in this run.
	ReasonCycle Reason = "cycle"

	// ReasonFetchFailed means a page could not be fetched or was empty.
	ReasonFetchFailed Reason = "fetch_failed"

	// ReasonMemoHit means the remainder of the walk was spliced from memory.
	ReasonMemoHit Reason = "memo_hit"
)
