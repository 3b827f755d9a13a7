package ranking_test

import (
	"testing"
	"time"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/internal/ranking"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func profile(uid, username, grade string, courses ...string) domain.UserProfile {
	return domain.UserProfile{
		UID:      uid,
		Username: username,
		Grade:    grade,
		Courses:  courses,
	}
}

func TestRankCandidatesScoring(t *testing.T) {
	requester := profile("me", "me", "junior", "CS101", "MATH201")

	candidates := []domain.UserProfile{
		profile("a", "alice", "junior", "CS101", "MATH201", "HIST101"),
		profile("b", "bob", "senior", "CS101"),
		profile("c", "carol", "junior", "HIST101"), // no overlap
	}

	ranked := ranking.RankCandidates(&requester, candidates, now)

	assert.Len(t, ranked, 2, "zero-overlap candidate must be excluded")
	assert.Equal(t, "alice", ranked[0].Username)
	assert.Equal(t, 3.0, ranked[0].CompatibilityScore) // 2 shared + grade match
	assert.ElementsMatch(t, []string{"CS101", "MATH201"}, ranked[0].SharedCourses)
	assert.Equal(t, "bob", ranked[1].Username)
	assert.Equal(t, 1.0, ranked[1].CompatibilityScore)
}

func TestRankCandidatesTieBreaksByUsername(t *testing.T) {
	requester := profile("me", "me", "junior", "CS101")

	candidates := []domain.UserProfile{
		profile("z", "zoe", "junior", "CS101"),
		profile("a", "amy", "junior", "CS101"),
		profile("m", "", "junior", "CS101"), // absent username sorts first
	}

	ranked := ranking.RankCandidates(&requester, candidates, now)

	assert.Len(t, ranked, 3)
	assert.Equal(t, "", ranked[0].Username)
	assert.Equal(t, "amy", ranked[1].Username)
	assert.Equal(t, "zoe", ranked[2].Username)
}

func TestRankCandidatesSortedNonIncreasing(t *testing.T) {
	requester := profile("me", "me", "junior", "CS101", "MATH201", "ENG101")

	candidates := []domain.UserProfile{
		profile("a", "a", "senior", "CS101"),
		profile("b", "b", "junior", "CS101", "MATH201", "ENG101"),
		profile("c", "c", "junior", "CS101"),
		profile("d", "d", "senior", "CS101", "MATH201"),
	}

	ranked := ranking.RankCandidates(&requester, candidates, now)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].CompatibilityScore, ranked[i].CompatibilityScore)
	}
}

func TestRankCandidatesFailSoft(t *testing.T) {
	requester := profile("me", "me", "junior", "CS101")

	assert.Empty(t, ranking.RankCandidates(nil, []domain.UserProfile{profile("a", "a", "junior", "CS101")}, now))
	assert.Empty(t, ranking.RankCandidates(&requester, nil, now))
	assert.Empty(t, ranking.RankCandidates(&requester, []domain.UserProfile{}, now))

	// A candidate with no courses never matches.
	assert.Empty(t, ranking.RankCandidates(&requester, []domain.UserProfile{profile("a", "a", "junior")}, now))
}

func TestAge(t *testing.T) {
	assert.Nil(t, ranking.Age(nil, now))

	birthdayPassed := time.Date(2000, time.January, 10, 0, 0, 0, 0, time.UTC)
	age := ranking.Age(&birthdayPassed, now)
	assert.NotNil(t, age)
	assert.Equal(t, 25, *age)

	birthdayUpcoming := time.Date(2000, time.November, 1, 0, 0, 0, 0, time.UTC)
	age = ranking.Age(&birthdayUpcoming, now)
	assert.Equal(t, 24, *age)

	// Birthday later in the same month.
	sameMonth := time.Date(2000, time.March, 20, 0, 0, 0, 0, time.UTC)
	age = ranking.Age(&sameMonth, now)
	assert.Equal(t, 24, *age)

	// Birthday exactly today counts the full year.
	today := time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC)
	age = ranking.Age(&today, now)
	assert.Equal(t, 25, *age)
}

func TestRankCandidatesAgeAnnotation(t *testing.T) {
	requester := profile("me", "me", "junior", "CS101")
	dob := time.Date(2004, time.June, 1, 0, 0, 0, 0, time.UTC)

	candidate := profile("a", "alice", "junior", "CS101")
	candidate.DateOfBirth = &dob

	ranked := ranking.RankCandidates(&requester, []domain.UserProfile{candidate}, now)
	assert.Len(t, ranked, 1)
	assert.NotNil(t, ranked[0].Age)
	assert.Equal(t, 20, *ranked[0].Age)
}

func group(id int64, name string, courseIDs ...string) domain.Group {
	courses := make([]domain.Course, len(courseIDs))
	for i, c := range courseIDs {
		courses[i] = domain.Course{CourseID: c}
	}
	return domain.Group{ID: id, Name: name, Courses: courses}
}

func TestRankGroupsNeverFilters(t *testing.T) {
	groups := []domain.Group{
		group(1, "calc crew", "MATH201"),
		group(2, "history buffs", "HIST101"),
		group(3, "empty"),
	}

	ranked := ranking.RankGroups([]string{"CS101", "MATH201"}, groups)

	assert.Len(t, ranked, len(groups), "group ranking must not filter")
	assert.Equal(t, int64(1), ranked[0].ID)
	assert.Equal(t, 1, ranked[0].SharedCoursesCount)
	assert.Equal(t, 0, ranked[1].SharedCoursesCount)
	assert.Equal(t, 0, ranked[2].SharedCoursesCount)
}

func TestRankGroupsStableOnTies(t *testing.T) {
	groups := []domain.Group{
		group(1, "first", "HIST101"),
		group(2, "second", "BIO101"),
		group(3, "third", "CS101"),
	}

	ranked := ranking.RankGroups([]string{"CS101"}, groups)

	assert.Equal(t, int64(3), ranked[0].ID)
	// Tied groups keep their input order.
	assert.Equal(t, int64(1), ranked[1].ID)
	assert.Equal(t, int64(2), ranked[2].ID)
}

func TestRankGroupsEmptyInputs(t *testing.T) {
	assert.Empty(t, ranking.RankGroups([]string{"CS101"}, nil))

	// Nil requester courses still keeps every group in the result.
	groups := []domain.Group{group(1, "a", "CS101")}
	ranked := ranking.RankGroups(nil, groups)
	assert.Len(t, ranked, 1)
	assert.Equal(t, 0, ranked[0].SharedCoursesCount)
}

func TestSharedCoursesCollapsesDuplicates(t *testing.T) {
	shared := ranking.SharedCourses([]string{"CS101", "CS101", "MATH201"}, []string{"CS101", "MATH201"})
	assert.Equal(t, []string{"CS101", "MATH201"}, shared)
}
