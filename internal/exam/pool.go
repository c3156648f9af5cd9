package exam

import (
	"strings"

	"github.com/stratton-prime/certexam-backend/internal/model"
)

// Dedupe removes repeated IDs from the bank. The last occurrence wins, while
// the position of the first occurrence is kept.
func Dedupe(bank []model.Question) []model.Question {
	index := make(map[string]int, len(bank))
	out := make([]model.Question, 0, len(bank))
	for _, q := range bank {
		if i, ok := index[q.ID]; ok {
			out[i] = q
			continue
		}
		index[q.ID] = len(out)
		out = append(out, q)
	}
	return out
}

// BuildSequence assembles the question sequence for one attempt by stratified
// sampling across the policy partitions, topping up from the unused remainder
// when the quotas fall short of the target size.
func BuildSequence(r RandSource, bank []model.Question, p Policy) []model.Question {
	unique := Dedupe(bank)
	if len(unique) == 0 {
		return []model.Question{}
	}

	groups := make([][]model.Question, len(p.Partitions)+1)
	for _, q := range unique {
		g := partitionOf(q.ID, p.Partitions)
		groups[g] = append(groups[g], q)
	}

	var pool []model.Question
	for i, group := range groups {
		quota := p.DefaultQuota
		if i < len(p.Partitions) {
			quota = p.Partitions[i].Quota
		}
		pool = append(pool, take(Shuffle(r, group), quota)...)
	}

	if len(pool) < p.TargetSize {
		used := make(map[string]bool, len(pool))
		for _, q := range pool {
			used[q.ID] = true
		}
		remaining := make([]model.Question, 0, len(unique)-len(pool))
		for _, q := range unique {
			if !used[q.ID] {
				remaining = append(remaining, q)
			}
		}
		pool = append(pool, take(Shuffle(r, remaining), p.TargetSize-len(pool))...)
	}

	pool = take(Shuffle(r, pool), p.TargetSize)
	return shuffleOptions(r, pool)
}

// BuildFullBank serves the whole deduplicated bank in bank order, with
// options still shuffled. Used for the QA identity.
func BuildFullBank(r RandSource, bank []model.Question) []model.Question {
	return shuffleOptions(r, Dedupe(bank))
}

// partitionOf returns the index of the first partition whose prefix matches,
// or len(parts) for the default group.
func partitionOf(id string, parts []Partition) int {
	for i, part := range parts {
		if strings.HasPrefix(id, part.Prefix) {
			return i
		}
	}
	return len(parts)
}

func take(qs []model.Question, n int) []model.Question {
	if n < 0 {
		n = 0
	}
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}

func shuffleOptions(r RandSource, qs []model.Question) []model.Question {
	out := make([]model.Question, len(qs))
	for i, q := range qs {
		q = q.Clone()
		if q.Type.HasOptions() && len(q.Options) > 0 {
			q.Options = Shuffle(r, q.Options)
		}
		out[i] = q
	}
	return out
}
