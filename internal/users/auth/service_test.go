// Copyright (c) 2026 InternPulse. All rights reserved.

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// ── Test Doubles ─────────────────────────────────────────────────────────────

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[int64]*User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[int64]*User)}
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id int64) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Create(_ context.Context, user *User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *fakeUserRepository) Update(_ context.Context, user *User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *fakeUserRepository) UpdatePassword(_ context.Context, userID int64, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (repo *fakeUserRepository) MarkVerified(_ context.Context, userID int64, newOTPSecret string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.IsVerified = true
		user.OTPSecret = newOTPSecret
	}
	return nil
}

func (repo *fakeUserRepository) Delete(_ context.Context, id int64) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.users, id)
	return nil
}

func (repo *fakeUserRepository) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.users)
}

// fakeBlacklistRepository is an in-memory BlacklistRepository.
type fakeBlacklistRepository struct {
	mu      sync.Mutex
	entries map[string]*BlacklistEntry
}

func newFakeBlacklistRepository() *fakeBlacklistRepository {
	return &fakeBlacklistRepository{entries: make(map[string]*BlacklistEntry)}
}

func (repo *fakeBlacklistRepository) Add(_ context.Context, entry *BlacklistEntry) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, exists := repo.entries[entry.Token]; exists {
		return nil
	}
	repo.entries[entry.Token] = entry
	return nil
}

func (repo *fakeBlacklistRepository) IsBlacklisted(_ context.Context, rawToken string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	_, revoked := repo.entries[rawToken]
	return revoked, nil
}

func (repo *fakeBlacklistRepository) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.entries)
}

// fakeNotifier records sent emails and can be told to fail.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentEmail
	failed bool
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

func (notifier *fakeNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.failed {
		return errors.New("smtp unavailable")
	}
	notifier.sent = append(notifier.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (notifier *fakeNotifier) last() sentEmail {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.sent[len(notifier.sent)-1]
}

// ── Harness ──────────────────────────────────────────────────────────────────

type serviceHarness struct {
	service   *Service
	users     *fakeUserRepository
	blacklist *fakeBlacklistRepository
	notifier  *fakeNotifier
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	generator, err := snowflake.New(0, 0)
	require.NoError(t, err)

	users := newFakeUserRepository()
	blacklist := newFakeBlacklistRepository()
	notifier := &fakeNotifier{}

	service := NewService(
		users,
		blacklist,
		NewRotationStore(client),
		sec.NewTokenManager("test-signing-secret", "internpulse", time.Hour, 240*time.Hour),
		sec.NewPurposeCodec("test-signing-secret"),
		generator,
		notifier,
		Config{OTPDigits: 6, OTPPeriod: time.Minute, FrontendURL: "https://app.internpulse.test"},
	)

	return &serviceHarness{service: service, users: users, blacklist: blacklist, notifier: notifier}
}

func signupTestUser(t *testing.T, harness *serviceHarness) *Session {
	t.Helper()
	session, err := harness.service.Signup(context.Background(), SignupInput{
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "Passw0rd",
	})
	require.NoError(t, err)
	return session
}

// extractBetween pulls the substring between two markers in an email body.
func extractBetween(t *testing.T, body, start, end string) string {
	t.Helper()
	from := strings.Index(body, start)
	require.GreaterOrEqual(t, from, 0, "marker %q not in body %q", start, body)
	rest := body[from+len(start):]
	to := strings.Index(rest, end)
	require.GreaterOrEqual(t, to, 0)
	return rest[:to]
}

// ── Tests ────────────────────────────────────────────────────────────────────

/*
TestSignupThenLogin covers the primary enrollment scenario: signup issues an
initial session, a matching login issues another, and a wrong password is
rejected with the generic credentials error.
*/
func TestSignupThenLogin(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.NotZero(t, session.User.ID)
	assert.Equal(t, sec.RoleIntern, session.User.Role)
	assert.True(t, session.User.IsActive)
	assert.False(t, session.User.IsVerified)

	// Welcome email went out with a verification code.
	require.Len(t, harness.notifier.sent, 1)
	assert.Equal(t, "a@b.com", harness.notifier.last().to)

	t.Run("login_succeeds", func(t *testing.T) {
		loginSession, err := harness.service.Login(ctx, "a@b.com", "Passw0rd")
		require.NoError(t, err)
		assert.NotEmpty(t, loginSession.AccessToken)
		assert.Equal(t, session.User.ID, loginSession.User.ID)
	})

	t.Run("wrong_password_rejected", func(t *testing.T) {
		_, err := harness.service.Login(ctx, "a@b.com", "wrong1pass")
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		assert.Equal(t, "Invalid login credentials", ae.Message)
	})

	t.Run("unknown_email_same_error", func(t *testing.T) {
		_, err := harness.service.Login(ctx, "nobody@b.com", "Passw0rd")
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "Invalid login credentials", ae.Message)
	})
}

/*
TestSignup_DuplicateEmail verifies the Conflict path.
*/
func TestSignup_DuplicateEmail(t *testing.T) {
	harness := newServiceHarness(t)
	signupTestUser(t, harness)

	_, err := harness.service.Signup(context.Background(), SignupInput{
		Email:     "a@b.com",
		FirstName: "Alan",
		LastName:  "Turing",
		Password:  "Passw0rd",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestSignup_ValidationFailures checks that malformed input never reaches
persistence.
*/
func TestSignup_ValidationFailures(t *testing.T) {
	harness := newServiceHarness(t)

	tests := []struct {
		name  string
		input SignupInput
	}{
		{"bad_email", SignupInput{Email: "not-an-email", FirstName: "Ada", LastName: "Lovelace", Password: "Passw0rd"}},
		{"short_name", SignupInput{Email: "a@b.com", FirstName: "A", LastName: "Lovelace", Password: "Passw0rd"}},
		{"weak_password", SignupInput{Email: "a@b.com", FirstName: "Ada", LastName: "Lovelace", Password: "abcdef"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harness.service.Signup(context.Background(), tt.input)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}

	assert.Zero(t, harness.users.count())
}

/*
TestSignup_RollbackOnEmailFailure verifies the documented policy: when the
welcome email cannot be dispatched, the freshly created account is removed.
*/
func TestSignup_RollbackOnEmailFailure(t *testing.T) {
	harness := newServiceHarness(t)
	harness.notifier.failed = true

	_, err := harness.service.Signup(context.Background(), SignupInput{
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "Passw0rd",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "SERVICE_UNAVAILABLE", ae.Code)

	// The half-created account must not survive.
	assert.Zero(t, harness.users.count())
}

/*
TestLogout_BlacklistsToken verifies that logout records the token and that a
repeated logout with the same token stays a no-op.
*/
func TestLogout_BlacklistsToken(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	require.NoError(t, harness.service.Logout(ctx, session.User.ID, session.AccessToken))

	revoked, err := harness.blacklist.IsBlacklisted(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Idempotent: a second logout neither errors nor duplicates.
	require.NoError(t, harness.service.Logout(ctx, session.User.ID, session.AccessToken))
	assert.Equal(t, 1, harness.blacklist.count())
}

/*
TestRefresh_RotatesToken verifies single-use refresh semantics: the first
redemption yields a new pair, the second is rejected.
*/
func TestRefresh_RotatesToken(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	rotated, err := harness.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Replaying the spent token must fail.
	_, err = harness.service.Refresh(ctx, session.RefreshToken)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)

	// The successor token still works.
	_, err = harness.service.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

/*
TestRefresh_ConcurrentRace redeems the same refresh token from many
goroutines and requires exactly one winner.
*/
func TestRefresh_ConcurrentRace(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	const racers = 8
	results := make(chan error, racers)

	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			_, err := harness.service.Refresh(ctx, session.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

/*
TestRefresh_RejectsGarbage covers malformed and wrong-type tokens.
*/
func TestRefresh_RejectsGarbage(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"access_token_not_accepted", session.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harness.service.Refresh(ctx, tt.token)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "UNAUTHORIZED", ae.Code)
		})
	}
}

/*
TestPasswordResetScenario walks the full reset flow: request produces an
emailed link, confirming with the embedded token installs the new password,
and only the new password logs in afterwards.
*/
func TestPasswordResetScenario(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	signupTestUser(t, harness)

	require.NoError(t, harness.service.RequestPasswordReset(ctx, "a@b.com"))
	require.Len(t, harness.notifier.sent, 2) // welcome + reset

	token := extractBetween(t, harness.notifier.last().body, "token=", `"`)
	require.NotEmpty(t, token)

	t.Run("mismatched_passwords_rejected", func(t *testing.T) {
		err := harness.service.ConfirmPasswordReset(ctx, token, "NewPass1", "Other1pw")
		require.Error(t, err)
	})

	require.NoError(t, harness.service.ConfirmPasswordReset(ctx, token, "NewPass1", "NewPass1"))

	_, err := harness.service.Login(ctx, "a@b.com", "NewPass1")
	require.NoError(t, err)

	_, err = harness.service.Login(ctx, "a@b.com", "Passw0rd")
	require.Error(t, err)
}

/*
TestPasswordReset_UnknownEmailSilent verifies that requesting a reset for an
unregistered address acknowledges without sending anything.
*/
func TestPasswordReset_UnknownEmailSilent(t *testing.T) {
	harness := newServiceHarness(t)

	require.NoError(t, harness.service.RequestPasswordReset(context.Background(), "ghost@b.com"))
	assert.Empty(t, harness.notifier.sent)
}

/*
TestPasswordReset_WrongPurposeToken presents a verification-purpose token to
the reset flow.
*/
func TestPasswordReset_WrongPurposeToken(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	codec := sec.NewPurposeCodec("test-signing-secret")
	wrongPurpose, err := codec.Encode(
		map[string]string{"user_id": "1"}, sec.PurposeEmailVerification,
	)
	require.NoError(t, err)

	err = harness.service.ConfirmPasswordReset(ctx, wrongPurpose, "NewPass1", "NewPass1")
	require.Error(t, err)

	// Password unchanged.
	_, err = harness.service.Login(ctx, session.User.Email, "Passw0rd")
	require.NoError(t, err)
}

/*
TestEmailVerificationScenario walks the OTP flow: request emails a passcode,
confirming marks the account verified and rotates the secret so the same
passcode cannot be replayed.
*/
func TestEmailVerificationScenario(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)

	require.NoError(t, harness.service.RequestEmailVerification(ctx, "a@b.com"))
	passcode := extractBetween(t, harness.notifier.last().body, "<strong>", "</strong>")
	require.Len(t, passcode, 6)

	t.Run("wrong_code_rejected", func(t *testing.T) {
		wrong := "000000"
		if wrong == passcode {
			wrong = "000001"
		}
		err := harness.service.ConfirmEmailVerification(ctx, "a@b.com", wrong)
		require.Error(t, err)
	})

	require.NoError(t, harness.service.ConfirmEmailVerification(ctx, "a@b.com", passcode))

	user, err := harness.users.FindByID(ctx, session.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.NotEqual(t, session.User.OTPSecret, user.OTPSecret, "secret must rotate on verification")

	// The disclosed passcode is dead after rotation.
	err = harness.service.ConfirmEmailVerification(ctx, "a@b.com", passcode)
	require.Error(t, err)
}

/*
TestEmailVerification_AlreadyVerifiedSilent confirms no passcode is sent for
accounts that are already verified.
*/
func TestEmailVerification_AlreadyVerifiedSilent(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	session := signupTestUser(t, harness)
	require.NoError(t, harness.users.MarkVerified(ctx, session.User.ID, session.User.OTPSecret))

	before := len(harness.notifier.sent)
	require.NoError(t, harness.service.RequestEmailVerification(ctx, "a@b.com"))
	assert.Len(t, harness.notifier.sent, before)
}
