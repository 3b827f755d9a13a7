// Package ranking implements the compatibility scoring used by the people
// and group feeds.
//
// The score between two users is the number of shared courses (1.0 each)
// plus a 1.0 bonus when both are in the same grade. Only users sharing at
// least one course with the requester appear in people results; group
// results are never filtered, groups without overlap simply sort last.
//
// All functions here are pure: same inputs, same ordered output. The
// reference time is a parameter so age calculation is deterministic.
package ranking

import (
	"math"
	"sort"
	"time"

	"go-studybuddy-backend/internal/domain"
)

const (
	sharedCourseWeight = 1.0
	gradeMatchBonus    = 1.0
)

// SharedCourses returns the elements of a that also occur in b, preserving
// a's order. Duplicates in a are collapsed.
func SharedCourses(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return []string{}
	}
	inB := make(map[string]bool, len(b))
	for _, c := range b {
		inB[c] = true
	}
	shared := make([]string, 0, len(a))
	seen := make(map[string]bool, len(a))
	for _, c := range a {
		if inB[c] && !seen[c] {
			shared = append(shared, c)
			seen[c] = true
		}
	}
	return shared
}

// Age computes whole years between dob and now, calendar-aware: one year is
// subtracted if the birthday has not yet occurred this year. Returns nil for
// a missing date of birth.
func Age(dob *time.Time, now time.Time) *int {
	if dob == nil {
		return nil
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// Score computes the compatibility score between two profiles. Unbounded:
// it grows linearly with shared course count.
func Score(requester, candidate *domain.UserProfile) float64 {
	if requester == nil || candidate == nil {
		return 0
	}
	score := float64(len(SharedCourses(requester.Courses, candidate.Courses))) * sharedCourseWeight
	if requester.Grade == candidate.Grade {
		score += gradeMatchBonus
	}
	return score
}

// RankCandidates filters, scores and orders candidates for the people feed.
//
// Candidates with zero course overlap are dropped. Results sort by score
// descending, ties by username ascending (case-sensitive, absent username
// first). Scores are rounded to two decimals for presentation stability.
// A nil requester or candidate list yields an empty slice, never an error.
// Excluding the requester from candidates is the caller's job.
func RankCandidates(requester *domain.UserProfile, candidates []domain.UserProfile, now time.Time) []domain.CandidateScore {
	if requester == nil || candidates == nil {
		return []domain.CandidateScore{}
	}

	scored := make([]domain.CandidateScore, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		shared := SharedCourses(requester.Courses, c.Courses)
		if len(shared) == 0 {
			continue
		}
		scored = append(scored, domain.CandidateScore{
			UserProfile:        *c,
			CompatibilityScore: round2(Score(requester, c)),
			SharedCourses:      shared,
			Age:                Age(c.DateOfBirth, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CompatibilityScore != scored[j].CompatibilityScore {
			return scored[i].CompatibilityScore > scored[j].CompatibilityScore
		}
		return scored[i].Username < scored[j].Username
	})

	return scored
}

// RankGroups annotates every group with its course overlap against
// requesterCourses and orders by overlap count descending. No filtering:
// the output always has one entry per input group, and ties keep input
// order (stable sort).
func RankGroups(requesterCourses []string, groups []domain.Group) []domain.GroupRankResult {
	results := make([]domain.GroupRankResult, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		groupCourses := make([]string, len(g.Courses))
		for j, c := range g.Courses {
			groupCourses[j] = c.CourseID
		}
		shared := SharedCourses(requesterCourses, groupCourses)
		results = append(results, domain.GroupRankResult{
			Group:              *g,
			SharedCourses:      shared,
			SharedCoursesCount: len(shared),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SharedCoursesCount > results[j].SharedCoursesCount
	})

	return results
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
