package exam

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stratton-prime/certexam-backend/internal/model"
)

func makeBank(prefix string, n int) []model.Question {
	out := make([]model.Question, n)
	for i := range out {
		out[i] = model.Question{
			ID:            fmt.Sprintf("%s%d", prefix, i+1),
			Category:      model.CategoryOther,
			Type:          model.QuestionTypeSingleChoice,
			Text:          fmt.Sprintf("Question %s%d", prefix, i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}
	}
	return out
}

func countPrefix(qs []model.Question, prefix string) int {
	n := 0
	for _, q := range qs {
		if strings.HasPrefix(q.ID, prefix) {
			n++
		}
	}
	return n
}

func assertUnique(t *testing.T, qs []model.Question) {
	t.Helper()
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("duplicate question %q in sequence", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestDedupeLastWinsAtFirstPosition(t *testing.T) {
	bank := []model.Question{
		{ID: "x", Text: "old"},
		{ID: "y", Text: "y"},
		{ID: "x", Text: "new"},
	}

	got := Dedupe(bank)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "x" || got[0].Text != "new" {
		t.Fatalf("got[0] = %+v, want x/new", got[0])
	}
	if got[1].ID != "y" {
		t.Fatalf("got[1] = %+v, want y", got[1])
	}
}

func TestBuildSequenceStratifiedQuotas(t *testing.T) {
	var bank []model.Question
	bank = append(bank, makeBank("q3-", 30)...)
	bank = append(bank, makeBank("q-p2-", 30)...)
	bank = append(bank, makeBank("law-", 30)...)

	seq := BuildSequence(NewSeededRand(1, 1), bank, DefaultPolicy())

	if len(seq) != 20 {
		t.Fatalf("len = %d, want 20", len(seq))
	}
	assertUnique(t, seq)
	if n := countPrefix(seq, "q3-"); n != 8 {
		t.Errorf("q3- count = %d, want 8", n)
	}
	if n := countPrefix(seq, "q-p2-"); n != 8 {
		t.Errorf("q-p2- count = %d, want 8", n)
	}
	if n := countPrefix(seq, "law-"); n != 4 {
		t.Errorf("remainder count = %d, want 4", n)
	}
}

func TestBuildSequenceBackfillsShortPartition(t *testing.T) {
	var bank []model.Question
	bank = append(bank, makeBank("q3-", 5)...)
	bank = append(bank, makeBank("q-p2-", 30)...)
	bank = append(bank, makeBank("law-", 30)...)

	seq := BuildSequence(NewSeededRand(2, 2), bank, DefaultPolicy())

	if len(seq) != 20 {
		t.Fatalf("len = %d, want 20", len(seq))
	}
	assertUnique(t, seq)
	if n := countPrefix(seq, "q3-"); n != 5 {
		t.Errorf("q3- count = %d, want all 5", n)
	}
	if n := countPrefix(seq, "q-p2-") + countPrefix(seq, "law-"); n != 15 {
		t.Errorf("backfilled count = %d, want 15", n)
	}
}

func TestBuildSequenceSmallBank(t *testing.T) {
	bank := makeBank("law-", 7)

	seq := BuildSequence(NewSeededRand(3, 3), bank, DefaultPolicy())

	if len(seq) != 7 {
		t.Fatalf("len = %d, want 7", len(seq))
	}
	assertUnique(t, seq)
}

func TestBuildSequenceEmptyBank(t *testing.T) {
	seq := BuildSequence(NewSeededRand(4, 4), nil, DefaultPolicy())
	if seq == nil || len(seq) != 0 {
		t.Fatalf("seq = %v, want empty non-nil", seq)
	}
}

func TestBuildSequenceShufflesOptionsOnCopies(t *testing.T) {
	bank := makeBank("law-", 4)
	for i := range bank {
		bank[i].Options = []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	}
	bank = append(bank, model.Question{ID: "open-1", Type: model.QuestionTypeOpen, Text: "Explain."})

	seq := BuildSequence(NewSeededRand(5, 5), bank, DefaultPolicy())

	for _, q := range bank[:4] {
		if !slices.Equal(q.Options, []string{"a", "b", "c", "d", "e", "f", "g", "h"}) {
			t.Fatalf("bank options mutated: %v", q.Options)
		}
	}
	for _, q := range seq {
		if q.Type == model.QuestionTypeOpen {
			if len(q.Options) != 0 {
				t.Fatalf("open question got options %v", q.Options)
			}
			continue
		}
		sorted := slices.Clone(q.Options)
		slices.Sort(sorted)
		if !slices.Equal(sorted, []string{"a", "b", "c", "d", "e", "f", "g", "h"}) {
			t.Fatalf("options of %s are not a permutation: %v", q.ID, q.Options)
		}
	}
}

func TestBuildFullBankKeepsEveryQuestion(t *testing.T) {
	bank := append(makeBank("q3-", 12), makeBank("law-", 25)...)
	bank = append(bank, bank[0])

	seq := BuildFullBank(NewSeededRand(6, 6), bank)

	if len(seq) != 37 {
		t.Fatalf("len = %d, want 37", len(seq))
	}
	for i, q := range seq {
		if q.ID != bank[i].ID {
			t.Fatalf("seq[%d] = %s, want bank order %s", i, q.ID, bank[i].ID)
		}
	}
}

func TestPolicyIdentityAndValidate(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if !p.IsFullBankIdentity("  TEST@stratton-prime.pl ") {
		t.Error("QA identity not recognised")
	}
	if p.IsFullBankIdentity("someone@stratton-prime.pl") {
		t.Error("regular identity treated as QA")
	}

	p.Partitions = append(p.Partitions, Partition{Name: "dup", Prefix: "q3-", Quota: 1})
	if err := p.Validate(); err == nil {
		t.Error("duplicate prefix accepted")
	}
}
