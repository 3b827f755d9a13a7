package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}
func (m *MockUserRepo) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}
func (m *MockUserRepo) IsUsernameTaken(ctx context.Context, username string, excludeUID string) (bool, error) {
	args := m.Called(ctx, username, excludeUID)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) SetCourses(ctx context.Context, uid string, courseIDs []string) error {
	return m.Called(ctx, uid, courseIDs).Error(0)
}
func (m *MockUserRepo) GetAllProfiles(ctx context.Context, excludeUID string) ([]domain.UserProfile, error) {
	args := m.Called(ctx, excludeUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserProfile), args.Error(1)
}

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) Fetch(ctx context.Context) ([]domain.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Course), args.Error(1)
}
func (m *MockCourseRepo) GetByIDs(ctx context.Context, courseIDs []string) ([]domain.Course, error) {
	args := m.Called(ctx, courseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Course), args.Error(1)
}

type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Create(ctx context.Context, group *domain.Group, adminUID string) error {
	return m.Called(ctx, group, adminUID).Error(0)
}
func (m *MockGroupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupRepo) GetUserGroups(ctx context.Context, uid string) ([]domain.Group, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}
func (m *MockGroupRepo) GetVisibleGroups(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}
func (m *MockGroupRepo) Update(ctx context.Context, group *domain.Group) error {
	return m.Called(ctx, group).Error(0)
}
func (m *MockGroupRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockGroupRepo) AddMember(ctx context.Context, groupID int64, uid string, role domain.GroupRole) error {
	return m.Called(ctx, groupID, uid, role).Error(0)
}
func (m *MockGroupRepo) RemoveMember(ctx context.Context, groupID int64, uid string) error {
	return m.Called(ctx, groupID, uid).Error(0)
}
func (m *MockGroupRepo) GetMembers(ctx context.Context, groupID int64) ([]domain.GroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupMember), args.Error(1)
}
func (m *MockGroupRepo) UpdateMemberRole(ctx context.Context, groupID int64, uid string, role domain.GroupRole) error {
	return m.Called(ctx, groupID, uid, role).Error(0)
}
func (m *MockGroupRepo) IsMember(ctx context.Context, groupID int64, uid string) (bool, error) {
	args := m.Called(ctx, groupID, uid)
	return args.Bool(0), args.Error(1)
}
func (m *MockGroupRepo) IsAdmin(ctx context.Context, groupID int64, uid string) (bool, error) {
	args := m.Called(ctx, groupID, uid)
	return args.Bool(0), args.Error(1)
}
func (m *MockGroupRepo) AddCourse(ctx context.Context, groupID int64, courseID string) error {
	return m.Called(ctx, groupID, courseID).Error(0)
}
func (m *MockGroupRepo) RemoveCourse(ctx context.Context, groupID int64, courseID string) error {
	return m.Called(ctx, groupID, courseID).Error(0)
}

type MockConnectionRepo struct {
	mock.Mock
}

func (m *MockConnectionRepo) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockConnectionRepo) GetByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionRequest), args.Error(1)
}
func (m *MockConnectionRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockConnectionRepo) GetIncoming(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	args := m.Called(ctx, uid, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConnectionRequest), args.Error(1)
}
func (m *MockConnectionRepo) GetOutgoing(ctx context.Context, uid string, status *domain.RequestStatus) ([]domain.ConnectionRequest, error) {
	args := m.Called(ctx, uid, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConnectionRequest), args.Error(1)
}
func (m *MockConnectionRepo) GetLatestBetween(ctx context.Context, uidA, uidB string) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, uidA, uidB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionRequest), args.Error(1)
}
func (m *MockConnectionRepo) HasAccepted(ctx context.Context, uidA, uidB string) (bool, error) {
	args := m.Called(ctx, uidA, uidB)
	return args.Bool(0), args.Error(1)
}
func (m *MockConnectionRepo) HasPending(ctx context.Context, senderUID, receiverUID string) (bool, error) {
	args := m.Called(ctx, senderUID, receiverUID)
	return args.Bool(0), args.Error(1)
}

type MockJoinRepo struct {
	mock.Mock
}

func (m *MockJoinRepo) Create(ctx context.Context, req *domain.GroupJoinRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockJoinRepo) GetByID(ctx context.Context, id int64) (*domain.GroupJoinRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupJoinRequest), args.Error(1)
}
func (m *MockJoinRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockJoinRepo) AcceptAndAdmit(ctx context.Context, requestID int64, groupID int64, uid string) error {
	return m.Called(ctx, requestID, groupID, uid).Error(0)
}
func (m *MockJoinRepo) HasPending(ctx context.Context, requesterUID string, groupID int64) (bool, error) {
	args := m.Called(ctx, requesterUID, groupID)
	return args.Bool(0), args.Error(1)
}
func (m *MockJoinRepo) GetPendingForGroup(ctx context.Context, groupID int64) ([]domain.GroupJoinRequest, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupJoinRequest), args.Error(1)
}
func (m *MockJoinRepo) GetPendingByUser(ctx context.Context, uid string) ([]domain.GroupJoinRequest, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupJoinRequest), args.Error(1)
}

func TestConnectionSend(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse sending to yourself", func(t *testing.T) {
		uc := usecase.NewConnectionUsecase(new(MockConnectionRepo), new(MockUserRepo), new(MockGroupRepo))
		_, err := uc.Send(ctx, "alice", "alice", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "yourself")
	})

	t.Run("Should refuse when already connected", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		userRepo.On("GetByUID", ctx, "bob").Return(&domain.User{UID: "bob"}, nil)
		connRepo.On("HasAccepted", ctx, "alice", "bob").Return(true, nil)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, new(MockGroupRepo))
		_, err := uc.Send(ctx, "alice", "bob", "")
		assert.ErrorIs(t, err, domain.ErrAlreadyConnected)
	})

	t.Run("Should refuse a second pending request to the same user", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		userRepo.On("GetByUID", ctx, "bob").Return(&domain.User{UID: "bob"}, nil)
		connRepo.On("HasAccepted", ctx, "alice", "bob").Return(false, nil)
		connRepo.On("HasPending", ctx, "alice", "bob").Return(true, nil)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, new(MockGroupRepo))
		_, err := uc.Send(ctx, "alice", "bob", "")
		assert.ErrorIs(t, err, domain.ErrDuplicatePendingRequest)
	})

	t.Run("Should create a pending request with the message attached", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		userRepo.On("GetByUID", ctx, "bob").Return(&domain.User{UID: "bob"}, nil)
		connRepo.On("HasAccepted", ctx, "alice", "bob").Return(false, nil)
		connRepo.On("HasPending", ctx, "alice", "bob").Return(false, nil)
		connRepo.On("Create", ctx, mock.AnythingOfType("*domain.ConnectionRequest")).Return(nil)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, new(MockGroupRepo))
		req, err := uc.Send(ctx, "alice", "bob", "study for finals?")
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPending, req.Status)
		if assert.NotNil(t, req.Message) {
			assert.Equal(t, "study for finals?", *req.Message)
		}
	})

	t.Run("Should surface the unique index as a duplicate conflict", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		userRepo.On("GetByUID", ctx, "bob").Return(&domain.User{UID: "bob"}, nil)
		connRepo.On("HasAccepted", ctx, "alice", "bob").Return(false, nil)
		connRepo.On("HasPending", ctx, "alice", "bob").Return(false, nil)
		connRepo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicatePendingRequest)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, new(MockGroupRepo))
		_, err := uc.Send(ctx, "alice", "bob", "")
		assert.ErrorIs(t, err, domain.ErrDuplicatePendingRequest)
	})
}

func TestConnectionAccept(t *testing.T) {
	ctx := context.Background()
	pending := func() *domain.ConnectionRequest {
		return &domain.ConnectionRequest{ID: 7, SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusPending}
	}

	t.Run("Should refuse anyone but the receiver", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		connRepo.On("GetByID", ctx, int64(7)).Return(pending(), nil)

		uc := usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
		_, err := uc.Accept(ctx, "alice", 7)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("Should refuse a closed request", func(t *testing.T) {
		req := pending()
		req.Status = domain.StatusCanceled
		connRepo := new(MockConnectionRepo)
		connRepo.On("GetByID", ctx, int64(7)).Return(req, nil)

		uc := usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
		_, err := uc.Accept(ctx, "bob", 7)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Should accept and materialize a private hidden pair group", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		groupRepo := new(MockGroupRepo)

		connRepo.On("GetByID", ctx, int64(7)).Return(pending(), nil)
		connRepo.On("UpdateStatus", ctx, int64(7), domain.StatusAccepted).Return(nil)
		userRepo.On("GetProfile", ctx, "alice").Return(&domain.UserProfile{UID: "alice", Username: "alice_w"}, nil)
		userRepo.On("GetProfile", ctx, "bob").Return(&domain.UserProfile{UID: "bob", Username: "bob_k"}, nil)
		groupRepo.On("Create", ctx, mock.AnythingOfType("*domain.Group"), "alice").Return(nil).Run(func(args mock.Arguments) {
			g := args.Get(1).(*domain.Group)
			g.ID = 42
			assert.Equal(t, "@alice_w & @bob_k", g.Name)
			assert.Equal(t, domain.PrivacyPrivate, g.Privacy)
			assert.False(t, g.IsVisible)
		})
		groupRepo.On("AddMember", ctx, int64(42), "bob", domain.RoleMember).Return(nil)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, groupRepo)
		res, err := uc.Accept(ctx, "bob", 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, res.Request.Status)
		if assert.NotNil(t, res.Group) {
			assert.Equal(t, int64(42), res.Group.ID)
		}
		groupRepo.AssertExpectations(t)
	})

	t.Run("Should keep the connection when the pair group fails", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		userRepo := new(MockUserRepo)
		groupRepo := new(MockGroupRepo)

		connRepo.On("GetByID", ctx, int64(7)).Return(pending(), nil)
		connRepo.On("UpdateStatus", ctx, int64(7), domain.StatusAccepted).Return(nil)
		userRepo.On("GetProfile", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
		groupRepo.On("Create", ctx, mock.Anything, "alice").Return(assert.AnError)

		uc := usecase.NewConnectionUsecase(connRepo, userRepo, groupRepo)
		res, err := uc.Accept(ctx, "bob", 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, res.Request.Status)
		assert.Nil(t, res.Group)
	})
}

func TestConnectionCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse anyone but the sender", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		connRepo.On("GetByID", ctx, int64(3)).Return(
			&domain.ConnectionRequest{ID: 3, SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusPending}, nil)

		uc := usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
		_, err := uc.Cancel(ctx, "bob", 3)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("Should mark a pending request canceled, not delete it", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		connRepo.On("GetByID", ctx, int64(3)).Return(
			&domain.ConnectionRequest{ID: 3, SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusPending}, nil)
		connRepo.On("UpdateStatus", ctx, int64(3), domain.StatusCanceled).Return(nil)

		uc := usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
		req, err := uc.Cancel(ctx, "alice", 3)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCanceled, req.Status)
		connRepo.AssertExpectations(t)
	})

	t.Run("Should refuse to cancel an accepted request", func(t *testing.T) {
		connRepo := new(MockConnectionRepo)
		connRepo.On("GetByID", ctx, int64(3)).Return(
			&domain.ConnectionRequest{ID: 3, SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusAccepted}, nil)

		uc := usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
		_, err := uc.Cancel(ctx, "alice", 3)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestConnectionStatusWith(t *testing.T) {
	ctx := context.Background()
	newUC := func(latest *domain.ConnectionRequest, err error) domain.ConnectionUsecase {
		connRepo := new(MockConnectionRepo)
		if latest == nil {
			connRepo.On("GetLatestBetween", ctx, mock.Anything, mock.Anything).Return(nil, err)
		} else {
			connRepo.On("GetLatestBetween", ctx, mock.Anything, mock.Anything).Return(latest, nil)
		}
		return usecase.NewConnectionUsecase(connRepo, new(MockUserRepo), new(MockGroupRepo))
	}

	t.Run("No history reads as none", func(t *testing.T) {
		uc := newUC(nil, domain.ErrNotFound)
		state, err := uc.StatusWith(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.Equal(t, domain.RelationNone, state)
	})

	t.Run("A rejection of the viewer's request reads as none", func(t *testing.T) {
		uc := newUC(&domain.ConnectionRequest{SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusRejected}, nil)
		state, err := uc.StatusWith(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.Equal(t, domain.RelationNone, state)
	})

	t.Run("Pending follows direction", func(t *testing.T) {
		uc := newUC(&domain.ConnectionRequest{SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusPending}, nil)

		state, err := uc.StatusWith(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.Equal(t, domain.RelationPendingOutgoing, state)

		state, err = uc.StatusWith(ctx, "bob", "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RelationPendingIncoming, state)
	})

	t.Run("Accepted reads as connected for both sides", func(t *testing.T) {
		uc := newUC(&domain.ConnectionRequest{SenderUID: "alice", ReceiverUID: "bob", Status: domain.StatusAccepted}, nil)
		state, err := uc.StatusWith(ctx, "bob", "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RelationConnected, state)
	})
}

func TestGroupJoinRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Public groups admit immediately without a pending row", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(1)).Return(
			&domain.Group{ID: 1, Privacy: domain.PrivacyPublic, IsVisible: true}, nil)
		groupRepo.On("IsMember", ctx, int64(1), "carol").Return(false, nil)
		groupRepo.On("AddMember", ctx, int64(1), "carol", domain.RoleMember).Return(nil)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		res, err := uc.RequestToJoin(ctx, "carol", 1, "")
		assert.NoError(t, err)
		assert.True(t, res.AutoAccepted)
		assert.Nil(t, res.Request)
		joinRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Private groups get a pending request", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(1)).Return(
			&domain.Group{ID: 1, Privacy: domain.PrivacyPrivate, IsVisible: true}, nil)
		groupRepo.On("IsMember", ctx, int64(1), "carol").Return(false, nil)
		joinRepo.On("HasPending", ctx, "carol", int64(1)).Return(false, nil)
		joinRepo.On("Create", ctx, mock.AnythingOfType("*domain.GroupJoinRequest")).Return(nil)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		res, err := uc.RequestToJoin(ctx, "carol", 1, "let me in")
		assert.NoError(t, err)
		assert.False(t, res.AutoAccepted)
		if assert.NotNil(t, res.Request) {
			assert.Equal(t, domain.StatusPending, res.Request.Status)
		}
	})

	t.Run("Hidden groups are not open for requests", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(1)).Return(
			&domain.Group{ID: 1, Privacy: domain.PrivacyPublic, IsVisible: false}, nil)

		uc := usecase.NewGroupJoinUsecase(new(MockJoinRepo), groupRepo)
		_, err := uc.RequestToJoin(ctx, "carol", 1, "")
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("Members cannot request again", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(1)).Return(
			&domain.Group{ID: 1, Privacy: domain.PrivacyPublic, IsVisible: true}, nil)
		groupRepo.On("IsMember", ctx, int64(1), "carol").Return(true, nil)

		uc := usecase.NewGroupJoinUsecase(new(MockJoinRepo), groupRepo)
		_, err := uc.RequestToJoin(ctx, "carol", 1, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})
}

func TestGroupJoinRespond(t *testing.T) {
	ctx := context.Background()
	pending := func() *domain.GroupJoinRequest {
		return &domain.GroupJoinRequest{ID: 9, RequesterUID: "carol", GroupID: 1, Status: domain.StatusPending}
	}

	t.Run("Only an admin may respond", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		joinRepo.On("GetByID", ctx, int64(9)).Return(pending(), nil)
		groupRepo.On("IsAdmin", ctx, int64(1), "mallory").Return(false, nil)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		_, err := uc.Respond(ctx, "mallory", 9, true)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("Accept admits the requester atomically", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		joinRepo.On("GetByID", ctx, int64(9)).Return(pending(), nil)
		groupRepo.On("IsAdmin", ctx, int64(1), "dave").Return(true, nil)
		joinRepo.On("AcceptAndAdmit", ctx, int64(9), int64(1), "carol").Return(nil)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		req, err := uc.Respond(ctx, "dave", 9, true)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, req.Status)
		joinRepo.AssertExpectations(t)
	})

	t.Run("A concurrent response surfaces as a conflict", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		joinRepo.On("GetByID", ctx, int64(9)).Return(pending(), nil)
		groupRepo.On("IsAdmin", ctx, int64(1), "dave").Return(true, nil)
		joinRepo.On("AcceptAndAdmit", ctx, int64(9), int64(1), "carol").Return(domain.ErrInvalidTransition)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		_, err := uc.Respond(ctx, "dave", 9, true)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Reject keeps the requester out", func(t *testing.T) {
		joinRepo := new(MockJoinRepo)
		groupRepo := new(MockGroupRepo)
		joinRepo.On("GetByID", ctx, int64(9)).Return(pending(), nil)
		groupRepo.On("IsAdmin", ctx, int64(1), "dave").Return(true, nil)
		joinRepo.On("UpdateStatus", ctx, int64(9), domain.StatusRejected).Return(nil)

		uc := usecase.NewGroupJoinUsecase(joinRepo, groupRepo)
		req, err := uc.Respond(ctx, "dave", 9, false)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, req.Status)
		joinRepo.AssertNotCalled(t, "AcceptAndAdmit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGroupVisibilityPreconditions(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()

	t.Run("A visible group cannot be created without courses", func(t *testing.T) {
		uc := usecase.NewGroupUsecase(new(MockGroupRepo), new(MockCourseRepo), validate)
		group := &domain.Group{Name: "Calc Crew", Privacy: domain.PrivacyPublic, IsVisible: true}
		_, err := uc.CreateGroup(ctx, "alice", group, nil)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("The last course of a visible group cannot be removed", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(5)).Return(&domain.Group{
			ID: 5, Name: "Calc Crew", Privacy: domain.PrivacyPublic, IsVisible: true,
			Courses: []domain.Course{{CourseID: "MATH101"}},
		}, nil)
		groupRepo.On("IsAdmin", ctx, int64(5), "alice").Return(true, nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.RemoveCourse(ctx, "alice", 5, "MATH101")
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
		groupRepo.AssertNotCalled(t, "RemoveCourse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Removing a course from a hidden group is fine", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(5)).Return(&domain.Group{
			ID: 5, Name: "Calc Crew", Privacy: domain.PrivacyPublic, IsVisible: false,
			Courses: []domain.Course{{CourseID: "MATH101"}},
		}, nil)
		groupRepo.On("IsAdmin", ctx, int64(5), "alice").Return(true, nil)
		groupRepo.On("RemoveCourse", ctx, int64(5), "MATH101").Return(nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.RemoveCourse(ctx, "alice", 5, "MATH101")
		assert.NoError(t, err)
	})
}

func TestGroupLeave(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()
	t0 := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Last member leaving deletes the group", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
		}, nil)
		groupRepo.On("Delete", ctx, int64(5)).Return(nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.LeaveGroup(ctx, "alice", 5)
		assert.NoError(t, err)
		groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Departing sole admin hands off to the earliest joiner", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
			{GroupID: 5, UserUID: "carol", Role: domain.RoleMember, JoinedAt: t0.Add(48 * time.Hour)},
			{GroupID: 5, UserUID: "bob", Role: domain.RoleMember, JoinedAt: t0.Add(24 * time.Hour)},
		}, nil)
		groupRepo.On("UpdateMemberRole", ctx, int64(5), "bob", domain.RoleAdmin).Return(nil)
		groupRepo.On("RemoveMember", ctx, int64(5), "alice").Return(nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.LeaveGroup(ctx, "alice", 5)
		assert.NoError(t, err)
		groupRepo.AssertExpectations(t)
	})

	t.Run("A plain member leaves without a handoff", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
			{GroupID: 5, UserUID: "bob", Role: domain.RoleMember, JoinedAt: t0.Add(time.Hour)},
		}, nil)
		groupRepo.On("RemoveMember", ctx, int64(5), "bob").Return(nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.LeaveGroup(ctx, "bob", 5)
		assert.NoError(t, err)
		groupRepo.AssertNotCalled(t, "UpdateMemberRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-members cannot leave", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
		}, nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.LeaveGroup(ctx, "mallory", 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGroupRoleChange(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()
	t0 := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Demoting the only admin is refused", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(5)).Return(&domain.Group{ID: 5, Name: "Calc Crew", Privacy: domain.PrivacyPublic}, nil)
		groupRepo.On("IsAdmin", ctx, int64(5), "alice").Return(true, nil)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
			{GroupID: 5, UserUID: "bob", Role: domain.RoleMember, JoinedAt: t0},
		}, nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.ChangeMemberRole(ctx, "alice", 5, "alice", domain.RoleMember)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("Promoting a member works", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		groupRepo.On("GetByID", ctx, int64(5)).Return(&domain.Group{ID: 5, Name: "Calc Crew", Privacy: domain.PrivacyPublic}, nil)
		groupRepo.On("IsAdmin", ctx, int64(5), "alice").Return(true, nil)
		groupRepo.On("GetMembers", ctx, int64(5)).Return([]domain.GroupMember{
			{GroupID: 5, UserUID: "alice", Role: domain.RoleAdmin, JoinedAt: t0},
			{GroupID: 5, UserUID: "bob", Role: domain.RoleMember, JoinedAt: t0},
		}, nil)
		groupRepo.On("UpdateMemberRole", ctx, int64(5), "bob", domain.RoleAdmin).Return(nil)

		uc := usecase.NewGroupUsecase(groupRepo, new(MockCourseRepo), validate)
		err := uc.ChangeMemberRole(ctx, "alice", 5, "bob", domain.RoleAdmin)
		assert.NoError(t, err)
		groupRepo.AssertExpectations(t)
	})
}

func TestMatchStudyPartners(t *testing.T) {
	ctx := context.Background()
	dob := time.Date(2005, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Ranks candidates and fails soft without a profile", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		userRepo.On("GetProfile", ctx, "alice").Return(&domain.UserProfile{
			UID: "alice", Username: "alice_w", Grade: "junior", DateOfBirth: &dob,
			Courses: []string{"MATH101", "PHYS201"},
		}, nil)
		userRepo.On("GetAllProfiles", ctx, "alice").Return([]domain.UserProfile{
			{UID: "bob", Username: "bob_k", Grade: "junior", Courses: []string{"MATH101", "PHYS201"}},
			{UID: "carol", Username: "carol_p", Grade: "senior", Courses: []string{"CHEM101"}},
		}, nil)

		uc := usecase.NewMatchUsecase(userRepo, new(MockGroupRepo))
		ranked, err := uc.StudyPartners(ctx, "alice")
		assert.NoError(t, err)
		if assert.Len(t, ranked, 1) {
			assert.Equal(t, "bob_k", ranked[0].Username)
			assert.InDelta(t, 3.0, ranked[0].CompatibilityScore, 1e-9)
		}
	})

	t.Run("No profile yields an empty list, not an error", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		userRepo.On("GetProfile", ctx, "ghost").Return(nil, domain.ErrNotFound)

		uc := usecase.NewMatchUsecase(userRepo, new(MockGroupRepo))
		ranked, err := uc.StudyPartners(ctx, "ghost")
		assert.NoError(t, err)
		assert.Empty(t, ranked)
	})
}
