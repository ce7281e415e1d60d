package reconcile

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

// Decision is the operator's answer to a prompt.
type Decision int

const (
	DecisionDecline Decision = iota
	DecisionConfirm
	DecisionSkip
	DecisionManualID
)

func (d Decision) String() string {
	switch d {
	case DecisionConfirm:
		return "confirm"
	case DecisionSkip:
		return "skip"
	case DecisionManualID:
		return "manual"
	default:
		return "decline"
	}
}

// Response is a parsed operator answer. ID is set for DecisionManualID.
type Response struct {
	Decision Decision
	ID       string
}

var bareQID = regexp.MustCompile(`^Q[0-9]+$`)

// ParseResponse interprets one line of operator input:
//
//	y, Y          confirm the presented candidate
//	s, S          skip this record
//	id Q123       use entity Q123 instead (also "m Q123")
//	Q123          shorthand for "id Q123"
//	anything else decline
//
// An entity IRI ending in a QID is accepted wherever a QID is.
func ParseResponse(line string) Response {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "y", "Y":
		return Response{Decision: DecisionConfirm}
	case "s", "S":
		return Response{Decision: DecisionSkip}
	}

	fields := strings.Fields(trimmed)
	switch {
	case len(fields) == 2 && (strings.EqualFold(fields[0], "id") || strings.EqualFold(fields[0], "m")):
		if qid, ok := parseEntityRef(fields[1], true); ok {
			return Response{Decision: DecisionManualID, ID: qid}
		}
	case len(fields) == 1:
		if qid, ok := parseEntityRef(fields[0], false); ok {
			return Response{Decision: DecisionManualID, ID: qid}
		}
	}
	return Response{Decision: DecisionDecline}
}

// parseEntityRef accepts Q123 or an entity IRI. lenient also accepts a
// lower-case q after an explicit command.
func parseEntityRef(token string, lenient bool) (string, bool) {
	if strings.Contains(token, "/") {
		if !strings.HasPrefix(token, "http://") && !strings.HasPrefix(token, "https://") {
			return "", false
		}
		token = record.QIDFromIRI(token)
	}
	if lenient {
		token = strings.ToUpper(token)
	}
	if !bareQID.MatchString(token) {
		return "", false
	}
	return token, true
}

// Prompter asks the operator about one record. Implementations return
// context.Canceled when input is interrupted or closed.
type Prompter interface {
	// Confirm presents a candidate for name.
	Confirm(ctx context.Context, name string, candidate Candidate) (Response, error)
	// ManualID reports that nothing matched name and offers to enter an id.
	ManualID(ctx context.Context, name string) (Response, error)
}

// Fetcher retrieves full entity details for an operator-supplied id.
type Fetcher interface {
	FetchByID(ctx context.Context, qid string) (Candidate, error)
}

// Banned reports whether an entity must never be offered.
type Banned interface {
	Contains(iri string) bool
}

// State is the terminal state of one protocol run.
type State int

const (
	// StateUnresolved leaves the record untouched and lets the caller try the next name variant.
	StateUnresolved State = iota
	// StateResolved carries the chosen candidate.
	StateResolved
	// StateSkipped stops work on the record for this pass.
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateSkipped:
		return "skipped"
	default:
		return "unresolved"
	}
}

// Outcome is the result of Disambiguate.
type Outcome struct {
	State     State
	Candidate Candidate
	// Decision is the operator answer that led here.
	Decision Decision
	// NoMatch is set when no candidate survived filtering and the operator was
	// asked for an id instead.
	NoMatch bool
	// Presented is the candidate shown to the operator, if any.
	Presented *Candidate
}

// FilterBanned drops banned candidates, keeping order.
func FilterBanned(candidates []Candidate, banned Banned) []Candidate {
	if banned == nil {
		return candidates
	}
	out := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if banned.Contains(candidate.IRI) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// Disambiguate runs the decision protocol for one search name. Only the first
// non-banned candidate is ever presented. With no candidate left the operator
// may enter an id. Interrupts surface as context.Canceled.
func Disambiguate(ctx context.Context, name string, candidates []Candidate, banned Banned, prompter Prompter, fetcher Fetcher) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	filtered := FilterBanned(candidates, banned)

	if len(filtered) == 0 {
		resp, err := prompter.ManualID(ctx, name)
		if err != nil {
			return Outcome{}, interrupted(err)
		}
		outcome := Outcome{NoMatch: true, Decision: resp.Decision}
		switch resp.Decision {
		case DecisionManualID:
			return resolveManual(ctx, outcome, resp.ID, fetcher)
		case DecisionSkip:
			outcome.State = StateSkipped
		default:
			outcome.State = StateUnresolved
		}
		return outcome, nil
	}

	first := filtered[0]
	resp, err := prompter.Confirm(ctx, name, first)
	if err != nil {
		return Outcome{}, interrupted(err)
	}
	outcome := Outcome{Decision: resp.Decision, Presented: &first}
	switch resp.Decision {
	case DecisionConfirm:
		outcome.State = StateResolved
		outcome.Candidate = first
	case DecisionSkip:
		outcome.State = StateSkipped
	case DecisionManualID:
		return resolveManual(ctx, outcome, resp.ID, fetcher)
	default:
		outcome.State = StateUnresolved
	}
	return outcome, nil
}

// resolveManual fetches an operator-supplied id. An unknown id leaves the
// record unresolved rather than failing the run.
func resolveManual(ctx context.Context, outcome Outcome, qid string, fetcher Fetcher) (Outcome, error) {
	candidate, err := fetcher.FetchByID(ctx, qid)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			outcome.State = StateUnresolved
			outcome.Candidate = Candidate{QID: qid}
			return outcome, nil
		}
		return Outcome{}, err
	}
	outcome.State = StateResolved
	outcome.Candidate = candidate
	return outcome, nil
}

func interrupted(err error) error {
	if errors.Is(err, io.EOF) {
		return context.Canceled
	}
	return err
}
