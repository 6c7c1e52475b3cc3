package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finquest-server/internal/model"
	"finquest-server/internal/pkg/jwtutil"
	"finquest-server/internal/repository"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByNickname(ctx context.Context, nickname string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByProfile(ctx context.Context, path string) (int64, error)
	List(ctx context.Context) ([]model.User, error)
	DeleteByID(ctx context.Context, id uint) (bool, error)
}

type ProfileStore interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(path string) error
}

type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event model.UserEvent) error
}

type UserService struct {
	users         UserStore
	profiles      ProfileStore
	events        UserEventPublisher
	logger        *slog.Logger
	jwtSecret     string
	jwtExpiration time.Duration
	hashCost      int
}

type JoinInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Nickname        string
	Career          string
	Salary          int
	Saving          int
	AgeRange        int
	Introduction    string

	ProfileName string
	Profile     io.Reader
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

// UpdateProfileInput carries optional fields; nil means "not provided".
type UpdateProfileInput struct {
	UserID   uint
	Nickname *string
	Career   *string
}

type UpdatePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

func NewUserService(
	users UserStore,
	profiles ProfileStore,
	events UserEventPublisher,
	logger *slog.Logger,
	jwtSecret string,
	jwtExpiration time.Duration,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:         users,
		profiles:      profiles,
		events:        events,
		logger:        logger,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		hashCost:      bcrypt.DefaultCost,
	}
}

// Join registers a user. Checks run in a fixed order and the first failure
// is returned.
func (s *UserService) Join(ctx context.Context, input JoinInput) (*AuthResult, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if !IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	var profilePath string
	if input.Profile != nil {
		profilePath, err = s.profiles.Save(input.ProfileName, input.Profile)
		if err != nil {
			s.logger.ErrorContext(ctx, "save profile image failed", "email", input.Email, "filename", input.ProfileName, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrProfileUpload, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Nickname:     input.Nickname,
		Career:       input.Career,
		Salary:       input.Salary,
		Saving:       input.Saving,
		AgeRange:     input.AgeRange,
		Introduction: input.Introduction,
		Profile:      profilePath,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.discardProfile(ctx, profilePath)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.publish(ctx, model.EventUserJoined, user)

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login never reveals which of email or password was wrong.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.publish(ctx, model.EventUserDeleted, user)
	return nil
}

// UpdateProfile applies nickname and career. Submitting the value already
// stored is rejected rather than treated as a no-op.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		nickname := *input.Nickname
		if nickname == user.Nickname {
			return nil, ErrDuplicateNickname
		}
		if nickname != "" {
			holder, err := s.users.GetByNickname(ctx, nickname)
			if err != nil {
				return nil, err
			}
			if holder != nil && holder.ID != user.ID {
				return nil, ErrNicknameTaken
			}
		}
		user.Nickname = nickname
	}

	if input.Career != nil {
		if *input.Career == user.Career {
			return nil, ErrDuplicateCareer
		}
		user.Career = *input.Career
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateEmail(ctx context.Context, userID uint, email string) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email == user.Email {
		return nil, ErrSameEmail
	}
	if !IsValidEmail(email) {
		return nil, ErrBadEmailFormat
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailInUse
	}

	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, input UpdatePasswordInput) error {
	user, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}
	if input.NewPassword == input.CurrentPassword {
		return ErrSamePassword
	}
	if !IsValidPassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

// discardProfile removes a file written for a join that was not persisted.
// A file another user still points at is kept.
func (s *UserService) discardProfile(ctx context.Context, path string) {
	if path == "" {
		return
	}
	refs, err := s.users.CountByProfile(ctx, path)
	if err != nil {
		s.logger.WarnContext(ctx, "count profile references failed, file kept", "path", path, "error", err)
		return
	}
	if refs > 0 {
		s.logger.WarnContext(ctx, "profile of failed join is shared, file kept", "path", path, "references", refs)
		return
	}
	if err := s.profiles.Remove(path); err != nil {
		s.logger.WarnContext(ctx, "remove profile of failed join failed", "path", path, "error", err)
	}
}

func (s *UserService) publish(ctx context.Context, eventType string, user *model.User) {
	if s.events == nil {
		return
	}
	event := model.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		Profile:    user.Profile,
		OccurredAt: time.Now(),
	}
	if err := s.events.PublishUserEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish user event failed", "type", eventType, "user_id", user.ID, "error", err)
	}
}
