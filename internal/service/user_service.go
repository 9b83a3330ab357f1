package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/internal/mail"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgNoActiveAccount = "No active account found with the given credentials"
	msgInvalidLink     = "Activation link is invalid"
)

// MailSettings describe how verification links are built.
type MailSettings struct {
	From        string
	FrontendURL string
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Bio      string `json:"bio"`
	Password string `json:"password"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Bio      string `json:"bio"`
}

func ProfileOf(u *models.User) UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Surname:  u.Surname,
		Bio:      u.Bio,
	}
}

type UserService struct {
	store      *repository.Store
	tokens     *TokenService
	dispatcher mail.Dispatcher
	mail       MailSettings
	bcryptCost int
	now        func() time.Time
}

func NewUserService(store *repository.Store, tokens *TokenService, dispatcher mail.Dispatcher, settings MailSettings) *UserService {
	return &UserService{
		store:      store,
		tokens:     tokens,
		dispatcher: dispatcher,
		mail:       settings,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// Register creates an inactive account and sends its verification email.
// A failed dispatch is logged and does not fail the registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)

	fields := map[string][]string{}
	check := func(field, value string, rule func(string) error) {
		if value == "" {
			fields[field] = append(fields[field], "This field may not be blank.")
			return
		}
		if err := rule(value); err != nil {
			fields[field] = append(fields[field], err.Error())
		}
	}
	check("username", in.Username, validation.ValidateUsername)
	check("email", in.Email, validation.ValidateEmail)
	check("name", in.Name, validation.ValidateName)
	check("surname", in.Surname, validation.ValidateSurname)
	check("password", in.Password, validation.ValidatePassword)
	if err := validation.ValidateBio(in.Bio); err != nil {
		fields["bio"] = append(fields["bio"], err.Error())
	}

	if _, bad := fields["username"]; !bad {
		taken, err := s.store.Users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			fields["username"] = append(fields["username"], "user with this username already exists.")
		}
	}
	if _, bad := fields["email"]; !bad {
		taken, err := s.store.Users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			fields["email"] = append(fields["email"], "user with this email already exists.")
		}
	}
	if len(fields) > 0 {
		return nil, models.NewFieldErrors(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Surname:  in.Surname,
		Bio:      in.Bio,
		Password: string(hash),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user)
	return user, nil
}

func (s *UserService) sendVerification(ctx context.Context, user *models.User) {
	if s.dispatcher == nil {
		return
	}
	token, err := s.tokens.IssueVerification(user)
	if err == nil {
		msg := mail.NewVerificationEmail(s.mail.FrontendURL, s.mail.From, user.ID, user.Email, user.Username, token, s.now())
		err = s.dispatcher.SendVerification(ctx, msg)
	}
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to dispatch verification email",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// VerifyEmail activates the account named by uid when token matches it.
// Every failure looks the same to the caller.
func (s *UserService) VerifyEmail(ctx context.Context, uid, token string) (TokenPair, error) {
	invalid := models.NewUnauthenticatedError(msgInvalidLink)

	id, err := mail.DecodeUID(uid)
	if err != nil {
		return TokenPair{}, invalid
	}
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return TokenPair{}, invalid
		}
		return TokenPair{}, err
	}
	if user.IsActive || !s.tokens.CheckVerification(user, token) {
		return TokenPair{}, invalid
	}
	if err := s.store.Users.Activate(ctx, user.ID); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return TokenPair{}, invalid
		}
		return TokenPair{}, err
	}
	return s.tokens.IssuePair(user.ID, "verification")
}

// Login exchanges credentials of an active account for a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return TokenPair{}, models.NewUnauthenticatedError(msgNoActiveAccount)
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return TokenPair{}, models.NewUnauthenticatedError(msgNoActiveAccount)
		}
		return TokenPair{}, models.NewInternalError(err)
	}
	if !user.IsActive {
		return TokenPair{}, models.NewUnauthenticatedError(msgNoActiveAccount)
	}
	return s.tokens.IssuePair(user.ID, "login")
}

// GetUser returns the profile of an active user.
func (s *UserService) GetUser(ctx context.Context, id uint) (UserProfile, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return UserProfile{}, err
	}
	if !user.IsActive {
		return UserProfile{}, models.NewNotFoundError(models.MsgUserNotActive)
	}
	return ProfileOf(user), nil
}
