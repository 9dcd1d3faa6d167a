package account

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
	"github.com/carepoint/portal/internal/platform/throttle"
	"github.com/carepoint/portal/pkg/pagination"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(subjectID uuid.UUID, role auth.Role, email string, ttl time.Duration) (string, error)
}

// dummyHash is compared against when the email is unknown so that a missing
// account and a wrong password take the same time.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("carepoint-no-such-account")
	return h
})

type Service struct {
	repo    Repository
	tokens  TokenIssuer
	lockout throttle.Lockout
	ttl     time.Duration
}

func NewService(repo Repository, tokens TokenIssuer, lockout throttle.Lockout, ttl time.Duration) *Service {
	if lockout == nil {
		lockout = throttle.NopLockout{}
	}
	return &Service{repo: repo, tokens: tokens, lockout: lockout, ttl: ttl}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, httpx.BadRequest("date_of_birth must be YYYY-MM-DD")
	}
	return &t, nil
}

// hashPassword reports an over-long password as a field error. The request
// validator counts runes, bcrypt counts bytes.
func hashPassword(plain string) (string, error) {
	hash, err := auth.HashPassword(plain)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", &httpx.ValidationError{Fields: map[string]string{"password": err.Error()}}
	}
	return hash, err
}

// Register creates a patient account with its patient profile and returns a
// session token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, "", err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         auth.RolePatient,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
	}
	if err := s.repo.Create(ctx, u, &PatientProfile{DateOfBirth: dob, Gender: req.Gender}, nil); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, "", httpx.Conflict("email already registered")
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID, u.Role, u.Email, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks the lockout, then the password. Unknown email, wrong password
// and inactive account all answer 401 with the same message.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	log := zerolog.Ctx(ctx)
	email := normalizeEmail(req.Email)

	locked, retry, err := s.lockout.Locked(ctx, email)
	if err != nil {
		log.Warn().Err(err).Msg("lockout check failed, allowing login attempt")
	}
	if locked {
		metrics.AuthFailuresTotal.WithLabelValues("locked_out").Inc()
		secs := int(math.Ceil(retry.Seconds()))
		e := httpx.TooManyRequests("too many failed login attempts, try again later")
		e.Details = map[string]int{"retry_after": secs}
		return nil, "", e
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, "", err
	}
	hash := dummyHash()
	if u != nil {
		hash = u.PasswordHash
	}
	ok, err := auth.CheckPassword(hash, req.Password)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !ok {
		metrics.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		if err := s.lockout.Fail(ctx, email); err != nil {
			log.Warn().Err(err).Msg("record failed login")
		}
		return nil, "", &httpx.Error{Status: http.StatusUnauthorized, Message: "invalid email or password"}
	}
	if !u.IsActive {
		metrics.AuthFailuresTotal.WithLabelValues("inactive").Inc()
		return nil, "", &httpx.Error{Status: http.StatusUnauthorized, Message: "account is deactivated"}
	}

	if err := s.lockout.Reset(ctx, email); err != nil {
		log.Warn().Err(err).Msg("reset failed logins")
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("record last login")
	}

	token, err := s.tokens.Issue(u.ID, u.Role, u.Email, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) Me(ctx context.Context, caller *auth.Caller) (*Me, error) {
	u, err := s.repo.GetByID(ctx, caller.UserID)
	if errors.Is(err, db.ErrNotFound) {
		// The token outlived its user.
		return nil, httpx.Unauthenticated()
	}
	if err != nil {
		return nil, err
	}
	patientID, doctorID, err := s.repo.ProfileIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Me{User: u, PatientID: patientID, DoctorID: doctorID}, nil
}

// -- Admin --

func (s *Service) ListUsers(ctx context.Context, f UserFilter, p pagination.Params) ([]*User, int, error) {
	return s.repo.List(ctx, f, p)
}

// CreateUser creates an account of any role. Doctors get a doctors row and
// patients a patients row in the same transaction.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return nil, httpx.BadRequest("unknown role")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
	}

	var patient *PatientProfile
	var doctor *DoctorProfile
	switch role {
	case auth.RolePatient:
		patient = &PatientProfile{}
	case auth.RoleDoctor:
		doctor = &DoctorProfile{
			Specialization: req.Specialization,
			LicenseNumber:  req.LicenseNumber,
			Department:     req.Department,
		}
	}

	if err := s.repo.Create(ctx, u, patient, doctor); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, httpx.Conflict("email or license number already in use")
		}
		return nil, err
	}
	return u, nil
}

// SetStatus activates or deactivates an account. Admins cannot deactivate
// their own account.
func (s *Service) SetStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, active bool) (*User, error) {
	if id == caller.UserID && !active {
		return nil, httpx.Forbidden("you cannot deactivate your own account")
	}
	u, err := s.repo.SetActive(ctx, id, active)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("user not found")
	}
	return u, err
}
