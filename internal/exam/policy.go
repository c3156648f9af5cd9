package exam

import (
	"errors"
	"fmt"
	"strings"
)

// Partition is one methodological part of the exam: every question whose ID
// starts with Prefix belongs to it, and Quota of them are drawn per attempt.
type Partition struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	Quota  int    `yaml:"quota"`
}

// Policy holds the constants that shape one attempt.
type Policy struct {
	QuestionSeconds     int         `yaml:"question_seconds"`
	CountdownSeconds    int         `yaml:"countdown_seconds"`
	PassThreshold       int         `yaml:"pass_threshold"`
	TargetSize          int         `yaml:"target_size"`
	Partitions          []Partition `yaml:"partitions"`
	DefaultQuota        int         `yaml:"default_quota"`
	OpenAnswerMinLength int         `yaml:"open_answer_min_length"`

	// FullBankIdentity skips stratified sampling and serves the whole bank (QA runs).
	FullBankIdentity string `yaml:"full_bank_identity"`

	// MaxFailedAttempts blocks new attempts once reached. Zero means unlimited.
	MaxFailedAttempts    int  `yaml:"max_failed_attempts"`
	AllowRetakeAfterPass bool `yaml:"allow_retake_after_pass"`
}

// DefaultPolicy mirrors the certification rules: 20 questions of 70 seconds
// each, drawn 8/8/4 from the three exam parts, 71% to pass.
func DefaultPolicy() Policy {
	return Policy{
		QuestionSeconds:  70,
		CountdownSeconds: 10,
		PassThreshold:    71,
		TargetSize:       20,
		Partitions: []Partition{
			{Name: "part3", Prefix: "q3-", Quota: 8},
			{Name: "part2", Prefix: "q-p2-", Quota: 8},
		},
		DefaultQuota:        4,
		OpenAnswerMinLength: 5,
		FullBankIdentity:    "test@stratton-prime.pl",
	}
}

// Validate rejects policies the engine cannot run.
func (p Policy) Validate() error {
	if p.QuestionSeconds <= 0 {
		return errors.New("question_seconds must be positive")
	}
	if p.CountdownSeconds < 0 {
		return errors.New("countdown_seconds must not be negative")
	}
	if p.PassThreshold < 0 || p.PassThreshold > 100 {
		return fmt.Errorf("pass_threshold %d out of range 0..100", p.PassThreshold)
	}
	if p.TargetSize <= 0 {
		return errors.New("target_size must be positive")
	}
	if p.DefaultQuota < 0 || p.MaxFailedAttempts < 0 || p.OpenAnswerMinLength < 0 {
		return errors.New("quotas and limits must not be negative")
	}
	seen := make(map[string]bool, len(p.Partitions))
	for _, part := range p.Partitions {
		if part.Prefix == "" {
			return fmt.Errorf("partition %q has an empty prefix", part.Name)
		}
		if part.Quota < 0 {
			return fmt.Errorf("partition %q has a negative quota", part.Name)
		}
		if seen[part.Prefix] {
			return fmt.Errorf("duplicate partition prefix %q", part.Prefix)
		}
		seen[part.Prefix] = true
	}
	return nil
}

// IsFullBankIdentity reports whether email is the designated QA identity.
func (p Policy) IsFullBankIdentity(email string) bool {
	return p.FullBankIdentity != "" && strings.EqualFold(strings.TrimSpace(email), p.FullBankIdentity)
}
