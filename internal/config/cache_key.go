package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionLockKey returns the key of an identity's "exam in progress" flag
func (r *CacheKeyStruct) SessionLockKey(email string) string {
	return fmt.Sprintf("exam:lock:%s", strings.ToLower(email))
}

// QuestionBankKey returns the cache key for the serialized question bank
func (r *CacheKeyStruct) QuestionBankKey() string {
	return "exam:question_bank"
}

var CacheKey = NewCacheKeyStruct()
