package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agora/internal/mail"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []mail.VerificationEmail
	err  error
}

func (d *recordingDispatcher) SendVerification(_ context.Context, msg mail.VerificationEmail) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}

func newUserService(t *testing.T) (*UserService, *recordingDispatcher, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	tokens, _ := newTokenService(t)
	d := &recordingDispatcher{}
	svc := NewUserService(newStore(db), tokens, d, MailSettings{
		From:        "no-reply@agora.test",
		FrontendURL: "http://frontend.test/",
	}).WithBcryptCost(bcrypt.MinCost)
	return svc, d, db
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username: "jane_doe",
		Email:    "jane@example.com",
		Name:     "Jane",
		Surname:  "Doe-Smith",
		Password: "Sup3rSecret",
	}
}

func TestUserService_RegisterSendsVerification(t *testing.T) {
	t.Parallel()
	svc, d, db := newUserService(t)

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsActive)
	assert.NotEqual(t, "Sup3rSecret", user.Password)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Sup3rSecret")))

	require.Len(t, d.sent, 1)
	msg := d.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, mail.VerificationSubject, msg.Subject)
	assert.Equal(t, mail.EncodeUID(user.ID), msg.UID)
	assert.Equal(t, "http://frontend.test/verify/"+msg.UID+"/"+msg.Token, msg.Link)
}

func TestUserService_RegisterFieldErrors(t *testing.T) {
	t.Parallel()
	svc, d, _ := newUserService(t)

	in := RegisterInput{
		Username: "x",
		Email:    "nope",
		Name:     "Jane  Mary",
		Surname:  "",
		Password: "short",
	}
	_, err := svc.Register(context.Background(), in)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	for _, field := range []string{"username", "email", "name", "surname", "password"} {
		assert.Contains(t, appErr.Fields, field)
	}
	assert.Equal(t, []string{"This field may not be blank."}, appErr.Fields["surname"])
	assert.Empty(t, d.sent)
}

func TestUserService_RegisterUniqueness(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserService(t)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"user with this username already exists."}, appErr.Fields["username"])
	assert.Equal(t, []string{"user with this email already exists."}, appErr.Fields["email"])
}

func TestUserService_RegisterSurvivesDispatchFailure(t *testing.T) {
	t.Parallel()
	svc, d, _ := newUserService(t)
	d.err = errors.New("broker down")

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestUserService_VerifyEmailThenLogin(t *testing.T) {
	t.Parallel()
	svc, d, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jane@example.com", "Sup3rSecret")
	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", err.Error())

	_, err = svc.GetUser(ctx, user.ID)
	require.Error(t, err)
	assert.Equal(t, models.MsgUserNotActive, err.Error())

	msg := d.sent[0]
	_, err = svc.VerifyEmail(ctx, msg.UID, "bogus")
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	_, err = svc.VerifyEmail(ctx, mail.EncodeUID(user.ID+1), msg.Token)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	_, err = svc.VerifyEmail(ctx, "!!", msg.Token)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))

	pair, err := svc.VerifyEmail(ctx, msg.UID, msg.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)

	_, err = svc.VerifyEmail(ctx, msg.UID, msg.Token)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated), "links work once")

	pair, err = svc.Login(ctx, " jane@example.com ", "Sup3rSecret")
	require.NoError(t, err)
	userID, err := svc.tokens.VerifyAccess(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = svc.Login(ctx, "jane@example.com", "WrongPass1")
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	_, err = svc.Login(ctx, "nobody@example.com", "Sup3rSecret")
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))

	profile, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, UserProfile{ID: user.ID, Username: "jane_doe", Email: "jane@example.com", Name: "Jane", Surname: "Doe-Smith"}, profile)

	_, err = svc.GetUser(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, models.MsgUserNotFound, err.Error())
}
