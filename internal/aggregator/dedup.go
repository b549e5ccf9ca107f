package aggregator

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"jobpulse-engine/pkg/models"
)

// Fingerprint derives the content identity of a job: a hash over the
// lowercased, punctuation-stripped title, company and location. Jobs from
// different boards that describe the same posting collide here.
func Fingerprint(job *models.CanonicalJob) string {
	h := sha256.New()
	h.Write([]byte(normalizeField(job.Title)))
	h.Write([]byte{'|'})
	h.Write([]byte(normalizeField(job.Company)))
	h.Write([]byte{'|'})
	h.Write([]byte(normalizeField(job.Location)))
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// DedupeIdentity collapses records sharing (source, source_id), keeping the
// first occurrence. Input order is otherwise preserved.
func DedupeIdentity(jobs []models.CanonicalJob) []models.CanonicalJob {
	seen := make(map[string]bool, len(jobs))
	out := make([]models.CanonicalJob, 0, len(jobs))
	for _, job := range jobs {
		key := job.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, job)
	}
	return out
}

// DedupeContent collapses records sharing a content fingerprint across
// sources. The richer record wins: featured beats plain, then the newer
// posting date. Fully tied records fall back to the lexicographically
// smaller source name, which makes the winner independent of fetch
// completion order.
func DedupeContent(jobs []models.CanonicalJob) []models.CanonicalJob {
	index := make(map[string]int, len(jobs))
	out := make([]models.CanonicalJob, 0, len(jobs))
	for _, job := range jobs {
		fp := Fingerprint(&job)
		i, ok := index[fp]
		if !ok {
			index[fp] = len(out)
			out = append(out, job)
			continue
		}
		if preferJob(&job, &out[i]) {
			out[i] = job
		}
	}
	return out
}

// preferJob reports whether candidate should replace incumbent among
// content duplicates.
func preferJob(candidate, incumbent *models.CanonicalJob) bool {
	if candidate.IsFeatured != incumbent.IsFeatured {
		return candidate.IsFeatured
	}
	ct, it := candidate.PostedAt, incumbent.PostedAt
	switch {
	case ct == nil && it == nil:
	case ct == nil:
		return false
	case it == nil:
		return true
	case !ct.Equal(*it):
		return ct.After(*it)
	}
	return candidate.Source < incumbent.Source
}

// Dedupe runs both stages in order: identity first, then content.
func Dedupe(jobs []models.CanonicalJob) []models.CanonicalJob {
	return DedupeContent(DedupeIdentity(jobs))
}

// SortJobs orders results for presentation: featured listings first, then
// newest posting date. The sort is stable so provider ordering breaks
// remaining ties deterministically.
func SortJobs(jobs []models.CanonicalJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].IsFeatured != jobs[j].IsFeatured {
			return jobs[i].IsFeatured
		}
		it, jt := jobs[i].PostedAt, jobs[j].PostedAt
		switch {
		case it == nil:
			return false
		case jt == nil:
			return true
		default:
			return it.After(*jt)
		}
	})
}
