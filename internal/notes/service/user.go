package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/policy"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/cryptox"
	"github.com/aussiebroadwan/notes/pkg/idx"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

const MinPasswordLength = 8

type UserService struct {
	Store    store.Store
	Auth     *AuthService
	Recorder Recorder
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
}

// Session is a freshly issued token with the records it was built from.
type Session struct {
	Token  string
	User   domain.User
	Tenant domain.Tenant
}

// Register creates a Free tenant for the company and its first Admin user,
// then signs them in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input and derive the slug
	email := domain.NormalizeEmail(in.Email)
	company := strings.TrimSpace(in.CompanyName)
	slug := domain.Slugify(company)

	fe := fieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe.add("name", "is required")
	}
	validateEmail(fe, email)
	validatePassword(fe, in.Password)
	switch {
	case company == "":
		fe.add("companyName", "is required")
	case slug == "":
		fe.add("companyName", "must contain letters or digits")
	}
	if err := fe.err(); err != nil {
		return Session{}, err
	}

	// 2. Hash password
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return Session{}, err
	}

	now := domain.Now()
	tenant := domain.Tenant{
		ID:        idx.New().String(),
		Name:      company,
		Slug:      slug,
		Plan:      domain.PlanFree,
		MaxNotes:  domain.MaxNotesFor(domain.PlanFree),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	first, last := domain.SplitName(in.Name)
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		TenantID:     tenant.ID,
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. Reject a taken email before anything is written
	switch _, err := s.Store.Users().GetUserByEmail(ctx, email); {
	case err == nil:
		return Session{}, ErrEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to look up email", slog.Any("error", err))
		return Session{}, err
	}

	// 4. Create tenant and admin together. Stores without transactions commit
	// each write, so the tenant is removed again if the admin cannot be added.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrCompanyTaken
			}
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if derr := tx.Tenants().DeleteTenant(ctx, tenant.ID); derr != nil && !errors.Is(derr, store.ErrNotFound) {
				log.Warn("failed to remove tenant of failed registration",
					slog.String("tenant_id", tenant.ID), slog.Any("error", derr))
			}
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCompanyTaken) && !errors.Is(err, ErrEmailTaken) {
			log.Error("failed to register tenant", slog.String("slug", slug), slog.Any("error", err))
		}
		return Session{}, err
	}

	// 5. Issue token
	token, err := s.Auth.IssueToken(user, tenant)
	if err != nil {
		log.Error("failed to sign token", slog.Any("error", err))
		return Session{}, err
	}

	recorderOrNop(s.Recorder).TenantRegistered()
	log.Info("tenant registered",
		slog.String("tenant_id", tenant.ID),
		slog.String("slug", tenant.Slug),
		slog.String("user_id", user.ID),
	)

	return Session{Token: token, User: user, Tenant: tenant}, nil
}

// Login checks credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)
	rec := recorderOrNop(s.Recorder)

	fe := fieldErrors{}
	email = domain.NormalizeEmail(email)
	if email == "" {
		fe.add("email", "is required")
	}
	if password == "" {
		fe.add("password", "is required")
	}
	if err := fe.err(); err != nil {
		return Session{}, err
	}

	// 1. Only active users can log in
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rec.LoginFailed("unknown_user")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !user.IsActive {
		rec.LoginFailed("inactive_user")
		return Session{}, ErrInvalidCredentials
	}

	// 2. Verify password
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			log.Error("stored password hash unusable", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		rec.LoginFailed("bad_password")
		return Session{}, ErrInvalidCredentials
	}

	// 3. Tenant must still be active
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return Session{}, err
	}
	if !tenant.IsActive {
		rec.LoginFailed("inactive_tenant")
		return Session{}, ErrTenantDeactivated
	}

	token, err := s.Auth.IssueToken(user, tenant)
	if err != nil {
		log.Error("failed to sign token", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID), slog.String("tenant", tenant.Slug))
	return Session{Token: token, User: user, Tenant: tenant}, nil
}

type InviteInput struct {
	Email     string
	Role      domain.Role // defaults to Member
	FirstName string
	LastName  string
}

// Invite adds a user to the caller's tenant and returns the temporary
// password the new user logs in with.
func (s *UserService) Invite(ctx context.Context, p domain.Principal, in InviteInput) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	if !policy.Can(p, policy.UserInvite) {
		return domain.User{}, "", ErrForbidden
	}

	// 1. Validate
	email := domain.NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}

	fe := fieldErrors{}
	validateEmail(fe, email)
	if !role.Valid() {
		fe.add("role", "must be Admin or Member")
	}
	if err := fe.err(); err != nil {
		return domain.User{}, "", err
	}

	// 2. Generate and hash the temporary password
	temp, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, "", err
	}
	hash, err := cryptox.HashPassword(temp)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		first, _, _ = strings.Cut(email, "@")
	}

	// 3. Create the user in the inviter's tenant
	now := domain.Now()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		TenantID:     p.TenantID,
		FirstName:    first,
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", ErrEmailTaken
		}
		log.Error("failed to create invited user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	recorderOrNop(s.Recorder).UserInvited(role)
	log.Info("user invited",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
		slog.String("invited_by", p.UserID),
	)

	return user, temp, nil
}

// Profile returns the caller's user record with a usage snapshot of the
// tenant.
func (s *UserService) Profile(ctx context.Context, p domain.Principal) (domain.User, TenantInfo, error) {
	user, err := s.Store.Users().GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, TenantInfo{}, ErrUserNotFound
		}
		return domain.User{}, TenantInfo{}, err
	}

	info, err := tenantInfo(ctx, s.Store, p.TenantID)
	if err != nil {
		return domain.User{}, TenantInfo{}, err
	}
	return user, info, nil
}

// Deactivate soft-deletes a user of the caller's tenant. Their tokens stop
// working on the next request.
func (s *UserService) Deactivate(ctx context.Context, p domain.Principal, userID string) error {
	log := slogx.FromContext(ctx)

	if !policy.Can(p, policy.UserDeactivate) {
		return ErrForbidden
	}

	id, err := idx.Parse(userID)
	if err != nil {
		return ErrInvalidIdentifier
	}
	if id.String() == p.UserID {
		return invalid("id", "cannot deactivate yourself")
	}

	if err := s.Store.Users().DeactivateUser(ctx, p.TenantID, id.String()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info("user deactivated", slog.String("user_id", id.String()), slog.String("by", p.UserID))
	return nil
}

func validateEmail(fe fieldErrors, email string) {
	if email == "" {
		fe.add("email", "is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, ".") {
		fe.add("email", "must be a valid email address")
	}
}

func validatePassword(fe fieldErrors, password string) {
	switch {
	case password == "":
		fe.add("password", "is required")
	case len(password) < MinPasswordLength:
		fe.add("password", "must be at least 8 characters")
	}
}
