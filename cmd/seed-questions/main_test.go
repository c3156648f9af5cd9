package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stratton-prime/certexam-backend/internal/model"
	"github.com/stratton-prime/certexam-backend/internal/validator"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadQuestions(t *testing.T) {
	validator.Setup()
	path := writeFile(t, `
questions:
  - id: q3-001
    category: LAW
    type: SINGLE_CHOICE
    text: Which act governs data retention?
    options: [Act A, Act B]
    correct_answer: Act B
  - id: misc-001
    category: OTHER
    type: OPEN
    text: Describe the escalation path.
    options: [ignored]
`)

	qs, err := loadQuestions(path)
	if err != nil {
		t.Fatalf("loadQuestions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].Type != model.QuestionTypeSingleChoice || qs[0].CorrectAnswer != "Act B" || len(qs[0].Options) != 2 {
		t.Errorf("first question = %+v", qs[0])
	}
	if qs[1].Options != nil {
		t.Errorf("open question kept options: %v", qs[1].Options)
	}
}

func TestLoadQuestionsRejectsInvalid(t *testing.T) {
	validator.Setup()
	tests := map[string]string{
		"empty":        "questions: []\n",
		"bad type":     "questions:\n  - {id: a, category: LAW, type: ESSAY, text: x}\n",
		"no options":   "questions:\n  - {id: a, category: LAW, type: SINGLE_CHOICE, text: x, correct_answer: y}\n",
		"not yaml":     "questions: [",
		"missing text": "questions:\n  - {id: a, category: OTHER, type: OPEN}\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadQuestions(writeFile(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadQuestionsMissingFile(t *testing.T) {
	_, err := loadQuestions(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "nope.yaml") {
		t.Fatalf("err = %v", err)
	}
}
