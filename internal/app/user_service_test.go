package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"finquest-server/internal/model"
	"finquest-server/internal/pkg/jwtutil"
	"finquest-server/internal/repository"
)

const testSecret = "test-secret"

type userFixture struct {
	svc       *UserService
	users     *fakeUserStore
	profiles  *fakeProfileStore
	publisher *fakePublisher
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:     newFakeUserStore(),
		profiles:  &fakeProfileStore{},
		publisher: &fakePublisher{},
	}
	f.svc = NewUserService(f.users, f.profiles, f.publisher, nil, testSecret, time.Hour)
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func validJoin() JoinInput {
	return JoinInput{
		Email:           "a@b.co",
		Password:        "Abcdef123!",
		PasswordConfirm: "Abcdef123!",
		Nickname:        "n1",
		Career:          "engineer",
		Salary:          4000,
		Saving:          500,
		AgeRange:        30,
		Introduction:    "hello",
		ProfileName:     "me.png",
		Profile:         strings.NewReader("png-bytes"),
	}
}

func (f *userFixture) join(t *testing.T, mutate func(*JoinInput)) *model.User {
	t.Helper()
	in := validJoin()
	if mutate != nil {
		mutate(&in)
	}
	res, err := f.svc.Join(context.Background(), in)
	require.NoError(t, err)
	return res.User
}

func TestJoin_Success(t *testing.T) {
	f := newUserFixture(t)

	res, err := f.svc.Join(context.Background(), validJoin())
	require.NoError(t, err)

	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "/uploads/me.png", res.User.Profile)
	assert.Equal(t, "png-bytes", f.profiles.saved["/uploads/me.png"])
	assert.NotEqual(t, "Abcdef123!", res.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("Abcdef123!")))

	claims, err := jwtutil.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.EventUserJoined, f.publisher.events[0].Type)
}

func TestJoin_ValidationOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*JoinInput)
		want   error
	}{
		{"missing email", func(in *JoinInput) { in.Email = ""; in.Password = "weak" }, ErrMissingEmail},
		{"bad format beats weak password", func(in *JoinInput) { in.Email = "nope"; in.Password = "weak" }, ErrBadEmailFormat},
		{"weak password beats mismatch", func(in *JoinInput) { in.Password = "short1!"; in.PasswordConfirm = "other" }, ErrWeakPassword},
		{"mismatch", func(in *JoinInput) { in.PasswordConfirm = "Abcdef123@" }, ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newUserFixture(t)
			in := validJoin()
			tc.mutate(&in)

			_, err := f.svc.Join(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, f.users.count())
			assert.Empty(t, f.profiles.saved)
		})
	}
}

func TestJoin_DuplicateEmailNeverCreatesSecondRecord(t *testing.T) {
	f := newUserFixture(t)
	f.join(t, nil)

	_, err := f.svc.Join(context.Background(), validJoin())
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 1, f.users.count())
}

func TestJoin_EmailMatchIsCaseSensitive(t *testing.T) {
	f := newUserFixture(t)
	f.join(t, nil)

	u := f.join(t, func(in *JoinInput) { in.Email = "A@b.co" })
	assert.Equal(t, "A@b.co", u.Email)
	assert.Equal(t, 2, f.users.count())
}

func TestJoin_UploadFailureIsSurfaced(t *testing.T) {
	f := newUserFixture(t)
	f.profiles.err = errBoom

	_, err := f.svc.Join(context.Background(), validJoin())
	assert.ErrorIs(t, err, ErrProfileUpload)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Zero(t, f.users.count())
}

func TestJoin_PersistFailure(t *testing.T) {
	f := newUserFixture(t)
	f.users.createErr = errBoom

	_, err := f.svc.Join(context.Background(), validJoin())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, []string{"/uploads/me.png"}, f.profiles.removed)
	assert.Empty(t, f.profiles.saved)
}

func TestJoin_DuplicateRaceDiscardsUnsharedProfile(t *testing.T) {
	f := newUserFixture(t)
	f.users.createErr = repository.ErrDuplicate

	_, err := f.svc.Join(context.Background(), validJoin())
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, []string{"/uploads/me.png"}, f.profiles.removed)
}

func TestJoin_PersistFailureKeepsSharedProfile(t *testing.T) {
	f := newUserFixture(t)
	f.join(t, nil)
	f.users.createErr = errBoom

	in := validJoin()
	in.Email = "c@d.co"
	_, err := f.svc.Join(context.Background(), in)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.profiles.removed)
	assert.Contains(t, f.profiles.saved, "/uploads/me.png")
}

func TestJoin_PublishFailureIsNotFatal(t *testing.T) {
	f := newUserFixture(t)
	f.publisher.err = errBoom

	_, err := f.svc.Join(context.Background(), validJoin())
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "Abcdef123!"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, wrongPassword := f.svc.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "Abcdef123@"})
	_, unknownEmail := f.svc.Login(context.Background(), LoginInput{Email: "x@b.co", Password: "Abcdef123!"})
	_, wrongCase := f.svc.Login(context.Background(), LoginInput{Email: "A@b.co", Password: "Abcdef123!"})

	for _, err := range []error{wrongPassword, unknownEmail, wrongCase} {
		assert.ErrorIs(t, err, ErrInvalidCredential)
		assert.Equal(t, wrongPassword.Error(), err.Error())
	}
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	require.NoError(t, f.svc.DeleteUser(context.Background(), u.ID))
	assert.Zero(t, f.users.count())

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, model.EventUserDeleted, last.Type)
	assert.Equal(t, "/uploads/me.png", last.Profile)

	assert.ErrorIs(t, f.svc.DeleteUser(context.Background(), u.ID), ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	f := newUserFixture(t)
	f.join(t, nil)
	f.join(t, func(in *JoinInput) { in.Email = "c@d.co" })

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	updated, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:   u.ID,
		Nickname: strPtr("n2"),
		Career:   strPtr("designer"),
	})
	require.NoError(t, err)
	assert.Equal(t, "n2", updated.Nickname)
	assert.Equal(t, "designer", updated.Career)

	stored, _ := f.users.GetByID(context.Background(), u.ID)
	assert.Equal(t, "n2", stored.Nickname)
}

func TestUpdateProfile_SameNicknameIsRejected(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: u.ID, Nickname: strPtr("n1")})
	assert.ErrorIs(t, err, ErrDuplicateNickname)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestUpdateProfile_SameCareerRejectsWholeRequest(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:   u.ID,
		Nickname: strPtr("fresh"),
		Career:   strPtr("engineer"),
	})
	assert.ErrorIs(t, err, ErrDuplicateCareer)

	stored, _ := f.users.GetByID(context.Background(), u.ID)
	assert.Equal(t, "n1", stored.Nickname, "nothing persisted")
}

func TestUpdateProfile_NicknameHeldByAnotherUser(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)
	f.join(t, func(in *JoinInput) { in.Email = "c@d.co"; in.Nickname = "taken" })

	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: u.ID, Nickname: strPtr("taken")})
	assert.ErrorIs(t, err, ErrNicknameTaken)
}

func TestUpdateProfile_NothingProvided(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)

	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: u.ID})
	assert.NoError(t, err)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 99, Nickname: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateEmail_Order(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)
	f.join(t, func(in *JoinInput) { in.Email = "other@b.co" })
	ctx := context.Background()

	_, err := f.svc.UpdateEmail(ctx, 99, "new@b.co")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.UpdateEmail(ctx, u.ID, "a@b.co")
	assert.ErrorIs(t, err, ErrSameEmail)

	_, err = f.svc.UpdateEmail(ctx, u.ID, "not-an-email")
	assert.ErrorIs(t, err, ErrBadEmailFormat)

	_, err = f.svc.UpdateEmail(ctx, u.ID, "other@b.co")
	assert.ErrorIs(t, err, ErrEmailInUse)

	updated, err := f.svc.UpdateEmail(ctx, u.ID, "new@b.co")
	require.NoError(t, err)
	assert.Equal(t, "new@b.co", updated.Email)
}

func TestUpdateEmail_PersistFailure(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)
	f.users.updateErr = errBoom

	_, err := f.svc.UpdateEmail(context.Background(), u.ID, "new@b.co")
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestUpdatePassword_Order(t *testing.T) {
	f := newUserFixture(t)
	u := f.join(t, nil)
	ctx := context.Background()

	err := f.svc.UpdatePassword(ctx, UpdatePasswordInput{UserID: 99, CurrentPassword: "Abcdef123!", NewPassword: "Zyxwvu987!"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = f.svc.UpdatePassword(ctx, UpdatePasswordInput{UserID: u.ID, CurrentPassword: "wrong", NewPassword: "Zyxwvu987!"})
	assert.ErrorIs(t, err, ErrWrongCurrentPassword)

	err = f.svc.UpdatePassword(ctx, UpdatePasswordInput{UserID: u.ID, CurrentPassword: "Abcdef123!", NewPassword: "Abcdef123!"})
	assert.ErrorIs(t, err, ErrSamePassword)

	err = f.svc.UpdatePassword(ctx, UpdatePasswordInput{UserID: u.ID, CurrentPassword: "Abcdef123!", NewPassword: "weak"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, f.svc.UpdatePassword(ctx, UpdatePasswordInput{UserID: u.ID, CurrentPassword: "Abcdef123!", NewPassword: "Zyxwvu987!"}))

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@b.co", Password: "Abcdef123!"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = f.svc.Login(ctx, LoginInput{Email: "a@b.co", Password: "Zyxwvu987!"})
	assert.NoError(t, err)
}
