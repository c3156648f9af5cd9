package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stratton-prime/certexam-backend/internal/exam"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func TestLoadPolicyDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if p.QuestionSeconds != 70 || p.TargetSize != 20 || p.PassThreshold != 71 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestLoadPolicyFileOverridesSomeKeys(t *testing.T) {
	path := writePolicy(t, `
question_seconds: 45
target_size: 10
partitions:
  - name: part3
    prefix: "q3-"
    quota: 5
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if p.QuestionSeconds != 45 || p.TargetSize != 10 {
		t.Fatalf("file values not applied: %+v", p)
	}
	if p.PassThreshold != 71 || p.DefaultQuota != 4 {
		t.Fatalf("absent keys lost their defaults: %+v", p)
	}
	if len(p.Partitions) != 1 || p.Partitions[0] != (exam.Partition{Name: "part3", Prefix: "q3-", Quota: 5}) {
		t.Fatalf("partitions = %+v", p.Partitions)
	}
}

func TestLoadPolicyEnvWinsOverFile(t *testing.T) {
	path := writePolicy(t, "pass_threshold: 60\n")
	t.Setenv("EXAM_PASS_THRESHOLD", "80")
	t.Setenv("EXAM_MAX_FAILED_ATTEMPTS", "3")

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if p.PassThreshold != 80 || p.MaxFailedAttempts != 3 {
		t.Fatalf("env overrides not applied: %+v", p)
	}
}

func TestLoadPolicyRejectsInvalid(t *testing.T) {
	if _, err := LoadPolicy(writePolicy(t, "question_seconds: 0\n")); err == nil {
		t.Fatal("zero question_seconds accepted")
	}
	if _, err := LoadPolicy(writePolicy(t, "question_seconds: [\n")); err == nil {
		t.Fatal("malformed yaml accepted")
	}
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestSessionLockKeyIsCaseInsensitive(t *testing.T) {
	if CacheKey.SessionLockKey("Jan@Example.com") != CacheKey.SessionLockKey("jan@example.com") {
		t.Fatal("lock keys differ by case")
	}
}
