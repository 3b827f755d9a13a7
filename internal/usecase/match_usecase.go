package usecase

import (
	"context"
	"errors"
	"time"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/internal/ranking"
	"go-studybuddy-backend/pkg/apperror"
)

type matchUsecase struct {
	userRepo  domain.UserRepository
	groupRepo domain.GroupRepository
	now       func() time.Time
}

func NewMatchUsecase(userRepo domain.UserRepository, groupRepo domain.GroupRepository) domain.MatchUsecase {
	return &matchUsecase{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		now:       time.Now,
	}
}

// StudyPartners builds the people feed: everyone but the requester, scored
// and ordered by the ranking engine.
func (u *matchUsecase) StudyPartners(ctx context.Context, uid string) ([]domain.CandidateScore, error) {
	requester, err := u.userRepo.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No profile yet means nothing to match against. Fail soft.
			return []domain.CandidateScore{}, nil
		}
		return nil, apperror.Internal(err)
	}

	candidates, err := u.userRepo.GetAllProfiles(ctx, uid)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return ranking.RankCandidates(requester, candidates, u.now()), nil
}

// GroupFeed builds the group feed: all visible groups ordered by course
// overlap with the requester. Zero-overlap groups remain, sorted last.
func (u *matchUsecase) GroupFeed(ctx context.Context, uid string) ([]domain.GroupRankResult, error) {
	var courses []string
	requester, err := u.userRepo.GetProfile(ctx, uid)
	if err == nil {
		courses = requester.Courses
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	groups, err := u.groupRepo.GetVisibleGroups(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return ranking.RankGroups(courses, groups), nil
}
