package reconcile

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestParseResponse(t *testing.T) {
	cases := []struct {
		line string
		want Response
	}{
		{"y", Response{Decision: DecisionConfirm}},
		{" Y\n", Response{Decision: DecisionConfirm}},
		{"s", Response{Decision: DecisionSkip}},
		{"S", Response{Decision: DecisionSkip}},
		{"id Q123", Response{Decision: DecisionManualID, ID: "Q123"}},
		{"m q77", Response{Decision: DecisionManualID, ID: "Q77"}},
		{"Q42", Response{Decision: DecisionManualID, ID: "Q42"}},
		{"http://www.wikidata.org/entity/Q5", Response{Decision: DecisionManualID, ID: "Q5"}},
		{"id https://www.wikidata.org/entity/Q9", Response{Decision: DecisionManualID, ID: "Q9"}},
		{"q42", Response{Decision: DecisionDecline}},
		{"yes", Response{Decision: DecisionDecline}},
		{"", Response{Decision: DecisionDecline}},
		{"id", Response{Decision: DecisionDecline}},
		{"id Qabc", Response{Decision: DecisionDecline}},
		{"foo/Q5", Response{Decision: DecisionDecline}},
	}
	for _, tc := range cases {
		if got := ParseResponse(tc.line); got != tc.want {
			t.Errorf("ParseResponse(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestDisambiguatePresentsOnlyFirstNonBanned(t *testing.T) {
	prompter := &scriptedPrompter{responses: answers("n")}
	candidates := []Candidate{candidate("Q1", "Banned"), candidate("Q2", "First"), candidate("Q3", "Second")}
	outcome, err := Disambiguate(context.Background(), "First", candidates, bannedSet{"Q1": true}, prompter, &fakeSource{})
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if outcome.State != StateUnresolved {
		t.Fatalf("state = %v", outcome.State)
	}
	if len(prompter.presented) != 1 || prompter.presented[0].QID != "Q2" {
		t.Fatalf("presented = %+v", prompter.presented)
	}
}

func TestDisambiguateConfirm(t *testing.T) {
	prompter := &scriptedPrompter{responses: answers("y")}
	outcome, err := Disambiguate(context.Background(), "A", []Candidate{candidate("Q2", "A")}, nil, prompter, &fakeSource{})
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if outcome.State != StateResolved || outcome.Candidate.QID != "Q2" {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestDisambiguateSkip(t *testing.T) {
	prompter := &scriptedPrompter{responses: answers("s")}
	outcome, err := Disambiguate(context.Background(), "A", []Candidate{candidate("Q2", "A")}, nil, prompter, &fakeSource{})
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if outcome.State != StateSkipped {
		t.Fatalf("state = %v", outcome.State)
	}
}

func TestDisambiguateManualOverride(t *testing.T) {
	fetched := candidate("Q99", "Fetched")
	source := &fakeSource{byID: map[string]Candidate{"Q99": fetched}}
	prompter := &scriptedPrompter{responses: answers("id Q99")}
	outcome, err := Disambiguate(context.Background(), "A", []Candidate{candidate("Q2", "A")}, nil, prompter, source)
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if outcome.State != StateResolved || outcome.Candidate.QID != "Q99" || outcome.Decision != DecisionManualID {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestDisambiguateUnknownManualIDLeavesUnresolved(t *testing.T) {
	prompter := &scriptedPrompter{responses: answers("Q404")}
	outcome, err := Disambiguate(context.Background(), "A", nil, nil, prompter, &fakeSource{})
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if outcome.State != StateUnresolved || !outcome.NoMatch {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestDisambiguateNoMatch(t *testing.T) {
	cases := []struct {
		line string
		want State
	}{
		{"", StateUnresolved},
		{"y", StateResolved},
		{"s", StateSkipped},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			source := &fakeSource{byID: map[string]Candidate{"Q7": candidate("Q7", "Seven")}}
			responses := answers(tc.line)
			if tc.want == StateResolved {
				responses = answers("Q7")
			}
			prompter := &scriptedPrompter{responses: responses}
			all := []Candidate{candidate("Q1", "Banned")}
			outcome, err := Disambiguate(context.Background(), "A", all, bannedSet{"Q1": true}, prompter, source)
			if err != nil {
				t.Fatalf("Disambiguate: %v", err)
			}
			if len(prompter.noMatch) != 1 || len(prompter.presented) != 0 {
				t.Fatalf("expected only the no-match prompt, got %+v", prompter)
			}
			if outcome.State != tc.want {
				t.Fatalf("state = %v, want %v", outcome.State, tc.want)
			}
		})
	}
}

func TestDisambiguateInterrupt(t *testing.T) {
	prompter := &scriptedPrompter{err: io.EOF}
	_, err := Disambiguate(context.Background(), "A", []Candidate{candidate("Q2", "A")}, nil, prompter, &fakeSource{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Disambiguate(ctx, "A", nil, nil, &scriptedPrompter{}, &fakeSource{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
