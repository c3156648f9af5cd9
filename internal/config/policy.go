package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stratton-prime/certexam-backend/internal/exam"
)

// LoadPolicy builds the exam policy: defaults, then the YAML file at path
// (if any), then env overrides. The result is validated.
func LoadPolicy(path string) (exam.Policy, error) {
	p := exam.DefaultPolicy()

	if path != "" {
		var err error
		p, err = LoadPolicyFile(path, p)
		if err != nil {
			return exam.Policy{}, err
		}
	}

	p.QuestionSeconds = getEnvInt("EXAM_QUESTION_SECONDS", p.QuestionSeconds)
	p.CountdownSeconds = getEnvInt("EXAM_COUNTDOWN_SECONDS", p.CountdownSeconds)
	p.PassThreshold = getEnvInt("EXAM_PASS_THRESHOLD", p.PassThreshold)
	p.TargetSize = getEnvInt("EXAM_TARGET_SIZE", p.TargetSize)
	p.FullBankIdentity = getEnv("EXAM_FULL_BANK_IDENTITY", p.FullBankIdentity)
	p.MaxFailedAttempts = getEnvInt("EXAM_MAX_FAILED_ATTEMPTS", p.MaxFailedAttempts)
	p.AllowRetakeAfterPass = getEnvBool("EXAM_ALLOW_RETAKE_AFTER_PASS", p.AllowRetakeAfterPass)

	if err := p.Validate(); err != nil {
		return exam.Policy{}, fmt.Errorf("invalid exam policy: %w", err)
	}
	return p, nil
}

// LoadPolicyFile decodes a YAML policy over base. Keys absent from the file
// keep their value from base.
func LoadPolicyFile(path string, base exam.Policy) (exam.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return exam.Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	p := base
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return exam.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return p, nil
}
