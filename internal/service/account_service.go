package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
	"github.com/Aykachasanli/pascale-backend-server/internal/repository"
	"github.com/Aykachasanli/pascale-backend-server/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

const defaultDeliveryTimeout = 10 * time.Second

// AccountService owns the user lifecycle: credentials, the active flag,
// the pending one-time code and the pending email.
type AccountService struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository

	passwordHash PasswordHasher
	sessions     SessionTokenIssuer
	codes        CodeGenerator
	codeSender   CodeSender
	media        MediaStore
	clock        Clock
	config       AccountConfig
	logger       logrus.FieldLogger

	deliveries sync.WaitGroup
}

func NewAccountService(
	users repository.UserRepository,
	securityLogs repository.SecurityLogRepository,
	passwordHash PasswordHasher,
	sessions SessionTokenIssuer,
	codes CodeGenerator,
	codeSender CodeSender,
	media MediaStore,
	clock Clock,
	config AccountConfig,
	logger logrus.FieldLogger,
) *AccountService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AccountService{
		users:        users,
		securityLogs: securityLogs,
		passwordHash: passwordHash,
		sessions:     sessions,
		codes:        codes,
		codeSender:   codeSender,
		media:        media,
		clock:        clock,
		config:       config,
		logger:       logger,
	}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if isBlank(input.Name) || isBlank(input.Surname) || isBlank(input.Email) || isBlank(input.Password) {
		return nil, invalidInput("name, surname, email and password are required")
	}

	email := utils.NormalizeEmail(input.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Surname:      strings.TrimSpace(input.Surname),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.UserRoleUser,
		IsActive:     true,
		RegisteredAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, storeError(err)
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if isBlank(input.Email) || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.logSecurity(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	token, expiresIn, err := s.sessions.IssueSessionToken(*user)
	if err != nil {
		return nil, err
	}
	s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, nil)
	return &LoginResult{Token: token, ExpiresIn: int64(expiresIn.Seconds())}, nil
}

// RequestCode issues a fresh code to the account holding email.
func (s *AccountService) RequestCode(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user, user.Email, "generic")
}

func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user, user.Email, "password_reset")
}

func (s *AccountService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	var user *entity.User
	source := "session"

	switch {
	case input.UserID != nil:
		found, err := s.userByID(ctx, *input.UserID)
		if err != nil {
			return err
		}
		if !s.passwordHash.Verify(found.PasswordHash, input.CurrentPassword) {
			return ErrInvalidCredentials
		}
		user = found
	case !isBlank(input.Email) && !isBlank(input.Code):
		found, err := s.userByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if !s.codeMatches(found, input.Code) {
			return ErrInvalidCode
		}
		user = found
		source = "code"
	default:
		return ErrBadRequest
	}

	if isBlank(input.NewPassword) {
		return invalidInput("new password is required")
	}
	hash, err := s.passwordHash.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if source == "code" {
		clearCode(user)
	}
	if err := s.save(ctx, user); err != nil {
		return err
	}
	s.logSecurity(ctx, &user.ID, nil, entity.PasswordChanged, map[string]any{"source": source})
	return nil
}

// RequestDeactivation requires the caller to restate the account email.
func (s *AccountService) RequestDeactivation(ctx context.Context, userID uuid.UUID, email string) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.SameEmail(user.Email, email) {
		return ErrEmailMismatch
	}
	return s.issueCode(ctx, user, user.Email, "deactivation")
}

func (s *AccountService) ConfirmDeactivation(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.codeMatches(user, code) {
		return ErrInvalidCode
	}
	user.IsActive = false
	clearCode(user)
	if err := s.save(ctx, user); err != nil {
		return err
	}
	s.logSecurity(ctx, &user.ID, nil, entity.AccountDeactivated, nil)
	return nil
}

func (s *AccountService) RequestReactivation(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsActive {
		return ErrAlreadyActive
	}
	return s.issueCode(ctx, user, user.Email, "reactivation")
}

// ConfirmReactivation flips the account back to active. The caller logs in
// afterwards; no session token is issued here.
func (s *AccountService) ConfirmReactivation(ctx context.Context, email string, code string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !s.codeMatches(user, code) {
		return ErrInvalidCode
	}
	user.IsActive = true
	clearCode(user)
	if err := s.save(ctx, user); err != nil {
		return err
	}
	s.logSecurity(ctx, &user.ID, nil, entity.AccountReactivated, nil)
	return nil
}

func (s *AccountService) RequestAccountDeletion(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user, user.Email, "deletion")
}

func (s *AccountService) ConfirmAccountDeletion(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.codeMatches(user, code) {
		return ErrInvalidCode
	}
	if err := s.remove(ctx, user); err != nil {
		return err
	}
	s.logSecurity(ctx, &user.ID, nil, entity.AccountDeleted, map[string]any{"source": "self"})
	return nil
}

// InitiateEmailChange parks newEmail on the record and sends the code to it.
func (s *AccountService) InitiateEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) error {
	if isBlank(newEmail) {
		return invalidInput("new email is required")
	}
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}

	email := utils.NormalizeEmail(newEmail)
	taken, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return storeError(err)
	}
	if taken != nil {
		return ErrEmailAlreadyRegistered
	}

	user.PendingEmail = &email
	return s.issueCode(ctx, user, email, "email_change")
}

func (s *AccountService) ConfirmEmailChange(ctx context.Context, userID uuid.UUID, code string) (*entity.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.codeMatches(user, code) {
		return nil, ErrInvalidCode
	}
	if user.PendingEmail == nil || *user.PendingEmail == "" {
		return nil, ErrNoPendingRequest
	}

	email := *user.PendingEmail
	taken, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	if taken != nil && taken.ID != user.ID {
		return nil, ErrEmailAlreadyRegistered
	}

	previous := user.Email
	user.Email = email
	user.PendingEmail = nil
	clearCode(user)
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.logSecurity(ctx, &user.ID, nil, entity.EmailChanged, map[string]any{"from": previous, "to": email})
	return user, nil
}

func (s *AccountService) ChangeRole(ctx context.Context, callerID uuid.UUID, targetID uuid.UUID, role entity.UserRole) (*entity.User, error) {
	caller, err := s.userByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, invalidInput("role must be %q or %q", entity.UserRoleUser, entity.UserRoleAdmin)
	}
	target, err := s.userByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() && role == entity.UserRoleUser && !s.isSuperAdmin(caller) {
		return nil, ErrForbidden
	}

	previous := target.Role
	target.Role = role
	if err := s.save(ctx, target); err != nil {
		return nil, err
	}
	s.logSecurity(ctx, &target.ID, nil, entity.RoleChanged, map[string]any{
		"by":   caller.ID.String(),
		"from": string(previous),
		"to":   string(role),
	})
	return target, nil
}

// DeleteUser is reserved for the super-admin.
func (s *AccountService) DeleteUser(ctx context.Context, callerID uuid.UUID, targetID uuid.UUID) error {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return storeError(err)
	}
	if caller == nil || !s.isSuperAdmin(caller) {
		return ErrForbidden
	}
	target, err := s.userByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, target); err != nil {
		return err
	}
	s.logSecurity(ctx, &target.ID, nil, entity.AccountDeleted, map[string]any{"by": caller.ID.String()})
	return nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.userByID(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*entity.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if surname := strings.TrimSpace(update.Surname); surname != "" {
		user.Surname = surname
	}
	if phone := strings.TrimSpace(update.Phone); phone != "" {
		user.Phone = &phone
	}
	if address := strings.TrimSpace(update.Address); address != "" {
		user.Address = &address
	}
	if update.Age != 0 {
		age := update.Age
		user.Age = &age
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]entity.User, error) {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, storeError(err)
	}
	if caller == nil || !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (s *AccountService) ChangeProfileImage(ctx context.Context, userID uuid.UUID, image io.ReadSeeker) (*entity.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	contentType, ext, err := detectImage(image)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, ErrMediaUnavailable
	}
	object, err := s.media.Upload(ctx, image, contentType, ext, "profiles")
	if err != nil {
		return nil, mediaError(err)
	}

	previous := user.ProfileImage
	user.ProfileImage = &object.URL
	if err := s.save(ctx, user); err != nil {
		s.removeMedia(ctx, &object.URL)
		return nil, err
	}
	s.removeMedia(ctx, previous)
	s.logSecurity(ctx, &user.ID, nil, entity.ProfileImageChanged, nil)
	return user, nil
}

// IsSuperAdmin reports whether user is the configured super-admin.
func (s *AccountService) IsSuperAdmin(user *entity.User) bool {
	return s.isSuperAdmin(user)
}

// Wait blocks until every code delivery started so far has finished.
func (s *AccountService) Wait() {
	s.deliveries.Wait()
}

// SecurityLog returns the most recent audit entries for a user.
func (s *AccountService) SecurityLog(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	if s.securityLogs == nil {
		return nil, nil
	}
	logs, err := s.securityLogs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return logs, nil
}

// issueCode stores a fresh code on user, overwriting any earlier one, then
// hands delivery to a goroutine. Delivery failures are logged only.
func (s *AccountService) issueCode(ctx context.Context, user *entity.User, destination string, purpose string) error {
	code, err := s.codes.Generate()
	if err != nil {
		return err
	}
	issuedAt := s.now()
	user.PendingCode = &code
	user.PendingCodeAt = &issuedAt
	if err := s.save(ctx, user); err != nil {
		return err
	}

	s.dispatchCode(user.ID, destination, code)
	s.logSecurity(ctx, &user.ID, nil, entity.CodeIssued, map[string]any{"purpose": purpose})
	return nil
}

func (s *AccountService) dispatchCode(userID uuid.UUID, destination string, code string) {
	if s.codeSender == nil {
		return
	}
	timeout := s.config.DeliveryTimeout
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.codeSender.SendCode(ctx, destination, code); err != nil {
			s.logger.WithError(err).WithField("user_id", userID.String()).Warn("one-time code delivery failed")
		}
	}()
}

func (s *AccountService) codeMatches(user *entity.User, code string) bool {
	if user.PendingCode == nil || *user.PendingCode == "" || code == "" {
		return false
	}
	if s.config.CodeTTL > 0 && user.PendingCodeAt != nil && s.now().Sub(*user.PendingCodeAt) > s.config.CodeTTL {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*user.PendingCode), []byte(strings.TrimSpace(code))) == 1
}

func (s *AccountService) isSuperAdmin(user *entity.User) bool {
	return user != nil && user.IsAdmin() && utils.SameEmail(user.Email, s.config.SuperAdminEmail)
}

func (s *AccountService) userByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) userByEmail(ctx context.Context, email string) (*entity.User, error) {
	if isBlank(email) {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) save(ctx context.Context, user *entity.User) error {
	err := s.users.Update(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrEmailAlreadyRegistered
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	default:
		return storeError(err)
	}
}

func (s *AccountService) remove(ctx context.Context, user *entity.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError(err)
	}
	s.removeMedia(ctx, user.ProfileImage)
	return nil
}

func (s *AccountService) removeMedia(ctx context.Context, url *string) {
	if s.media == nil || url == nil || *url == "" {
		return
	}
	key, ok := s.media.KeyFromURL(*url)
	if !ok {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("media cleanup failed")
	}
}

func (s *AccountService) logSecurity(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			s.logger.WithError(err).Warn("security log metadata encoding failed")
			return
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := s.securityLogs.Log(ctx, log); err != nil {
		s.logger.WithError(err).WithField("action", string(action)).Warn("security log write failed")
	}
}

func (s *AccountService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func clearCode(user *entity.User) {
	user.PendingCode = nil
	user.PendingCodeAt = nil
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
