package domain

import "context"

// CandidateScore is a ranked people-feed entry. Built fresh on every
// ranking call, never persisted.
type CandidateScore struct {
	UserProfile
	CompatibilityScore float64  `json:"compatibility_score"`
	SharedCourses      []string `json:"shared_courses"`
	Age                *int     `json:"age"`
}

// GroupRankResult is a ranked group-feed entry.
type GroupRankResult struct {
	Group
	SharedCourses      []string `json:"shared_courses"`
	SharedCoursesCount int      `json:"shared_courses_count"`
}

type MatchUsecase interface {
	// StudyPartners ranks every other user against the requester's profile.
	StudyPartners(ctx context.Context, uid string) ([]CandidateScore, error)
	// GroupFeed ranks all visible groups by course overlap with the
	// requester. Groups without overlap stay in the feed, sorted last.
	GroupFeed(ctx context.Context, uid string) ([]GroupRankResult, error)
}
