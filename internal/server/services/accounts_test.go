package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/cryptox"
	"github.com/dmitrijs2005/memberkeeper/internal/logging"
	"github.com/dmitrijs2005/memberkeeper/internal/server/auth"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
	"github.com/dmitrijs2005/memberkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/memberkeeper/internal/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// --- helpers ---

type fixture struct {
	repo     *accounts.MemoryRepository
	hasher   *countingHasher
	verifier *auth.TokenVerifier
	svc      *AccountService
	gate     *AccessGate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, accounts.NewMemoryRepository())
}

func newFixtureWithRepo(t *testing.T, repo accounts.Repository) *fixture {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)
	verifier, err := auth.NewTokenVerifier(testSecret)
	require.NoError(t, err)

	h := &countingHasher{next: cryptox.NewArgon2idHasher(cryptox.Params{Iterations: 1, MemoryKiB: 1024, Threads: 1})}
	log := logging.NewZapLogger(zap.NewNop())

	f := &fixture{
		hasher:   h,
		verifier: verifier,
		svc:      NewAccountService(repo, validation.NewValidator(nil), h, issuer, log),
		gate:     NewAccessGate(verifier, repo, log),
	}
	if mem, ok := repo.(*accounts.MemoryRepository); ok {
		f.repo = mem
	}
	return f
}

func aliceFields() models.RegistrationFields {
	return models.RegistrationFields{
		Name:             "Alice",
		Email:            "alice@x.com",
		Password:         "Str0ng!Pass",
		PhoneNumber:      "5551234567",
		Gender:           "Female",
		DateOfBirth:      "1990-01-01",
		MembershipStatus: "Active",
	}
}

type countingHasher struct {
	next    PasswordHasher
	mu      sync.Mutex
	hashes  int
	verifys int
}

func (c *countingHasher) Hash(ctx context.Context, pw string) (string, error) {
	c.mu.Lock()
	c.hashes++
	c.mu.Unlock()
	return c.next.Hash(ctx, pw)
}

func (c *countingHasher) Verify(ctx context.Context, pw, digest string) (bool, error) {
	c.mu.Lock()
	c.verifys++
	c.mu.Unlock()
	return c.next.Verify(ctx, pw, digest)
}

type fakeRepo struct {
	createErr error
	findErr   error
	byIDErr   error
	created   int
}

func (f *fakeRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.created++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return a, nil
}

func (f *fakeRepo) FindByEmail(context.Context, string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRepo) FindByID(context.Context, string) (*models.Account, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return nil, common.ErrorNotFound
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", common.ErrMissingSigningSecret }

type failingHasher struct{}

func (failingHasher) Hash(context.Context, string) (string, error) {
	return "", errors.New("entropy exhausted")
}

func (failingHasher) Verify(context.Context, string, string) (bool, error) {
	return false, cryptox.ErrInvalidHash
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, aliceFields())
	require.NoError(t, err)

	a := res.Account
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Alice", a.Name)
	assert.Equal(t, "alice@x.com", a.Email)
	assert.Equal(t, models.GenderFemale, a.Gender)
	assert.Equal(t, models.MembershipActive, a.MembershipStatus)
	assert.Equal(t, "1990-01-01", a.DateOfBirth.Format(models.DateLayout))
	assert.False(t, a.CreatedAt.IsZero())

	assert.NotEqual(t, "Str0ng!Pass", a.PasswordHash)
	assert.NotContains(t, a.PasswordHash, "Str0ng!Pass")
	assert.True(t, strings.HasPrefix(a.PasswordHash, "$argon2id$"))

	id, err := f.verifier.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)
}

func TestRegister_UniqueIdentities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		fields := aliceFields()
		fields.Email = email
		res, err := f.svc.Register(ctx, fields)
		require.NoError(t, err)
		assert.False(t, seen[res.Account.ID], "identity reused")
		seen[res.Account.ID] = true
	}
}

func TestRegister_ValidationErrorSkipsStore(t *testing.T) {
	repo := &fakeRepo{findErr: errors.New("store must not be touched")}
	f := newFixtureWithRepo(t, repo)
	hashesBefore := f.hasher.hashes

	fields := aliceFields()
	fields.PhoneNumber = "12345"

	_, err := f.svc.Register(context.Background(), fields)
	require.Error(t, err)
	assert.Equal(t, common.KindValidation, common.KindOf(err))
	assert.Equal(t, validation.MsgInvalidPhone, err.Error())
	assert.Zero(t, repo.created)
	assert.Equal(t, hashesBefore, f.hasher.hashes)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, aliceFields())
	require.NoError(t, err)

	fields := aliceFields()
	fields.Email = "ALICE@X.COM"
	_, err = f.svc.Register(ctx, fields)
	assert.ErrorIs(t, err, common.ErrAccountExists)
	assert.Equal(t, common.KindConflict, common.KindOf(err))
	assert.Equal(t, 1, f.repo.Count())
}

func TestRegister_ConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(ctx, aliceFields())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, common.ErrAccountExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, f.repo.Count())
}

func TestRegister_InsertConflictSurfacesAsDuplicate(t *testing.T) {
	repo := &fakeRepo{createErr: common.ErrAccountExists}
	f := newFixtureWithRepo(t, repo)

	_, err := f.svc.Register(context.Background(), aliceFields())
	assert.ErrorIs(t, err, common.ErrAccountExists)
}

func TestRegister_InfrastructureFailures(t *testing.T) {
	log := logging.NewZapLogger(nil)
	v := validation.NewValidator(nil)
	hasher := cryptox.NewArgon2idHasher(cryptox.Params{Iterations: 1, MemoryKiB: 1024, Threads: 1})
	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name string
		svc  *AccountService
	}{
		{"lookup", NewAccountService(&fakeRepo{findErr: errors.New("conn refused")}, v, hasher, issuer, log)},
		{"insert", NewAccountService(&fakeRepo{createErr: errors.New("disk full")}, v, hasher, issuer, log)},
		{"hash", NewAccountService(&fakeRepo{}, v, failingHasher{}, issuer, log)},
		{"issue", NewAccountService(&fakeRepo{}, v, hasher, failingIssuer{}, log)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Register(context.Background(), aliceFields())
			require.Error(t, err)
			assert.Equal(t, common.KindInfrastructure, common.KindOf(err))
		})
	}
}

// --- Authenticate ---

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, aliceFields())
	require.NoError(t, err)

	res, err := f.svc.Authenticate(ctx, " Alice@X.com ", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, res.Account.ID)

	id, err := f.verifier.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, id)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	f := newFixture(t)

	for _, c := range [][2]string{{"", "pw"}, {"alice@x.com", ""}, {"  ", "pw"}} {
		_, err := f.svc.Authenticate(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, common.ErrMissingCredentials)
		assert.Equal(t, common.KindAuthentication, common.KindOf(err))
	}
}

func TestAuthenticate_NoEnumerationSignal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, aliceFields())
	require.NoError(t, err)

	wrongRes, wrongErr := f.svc.Authenticate(ctx, "alice@x.com", "wrong")
	unknownRes, unknownErr := f.svc.Authenticate(ctx, "nobody@x.com", "Str0ng!Pass")

	assert.Nil(t, wrongRes)
	assert.Nil(t, unknownRes)
	assert.Same(t, wrongErr, unknownErr)
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
	assert.Equal(t, common.KindAuthentication, common.KindOf(unknownErr))
}

func TestAuthenticate_UnknownEmailStillVerifies(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, f.hasher.verifys)
}

// flakyHasher fails the first failures calls to Hash.
type flakyHasher struct {
	next     PasswordHasher
	failures int
}

func (f *flakyHasher) Hash(ctx context.Context, pw string) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("hasher busy")
	}
	return f.next.Hash(ctx, pw)
}

func (f *flakyHasher) Verify(ctx context.Context, pw, digest string) (bool, error) {
	return f.next.Verify(ctx, pw, digest)
}

func newLimitedService(t *testing.T, h PasswordHasher) *AccountService {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)
	return NewAccountService(accounts.NewMemoryRepository(), validation.NewValidator(nil), h, issuer, logging.NewZapLogger(zap.NewNop()))
}

func limitedArgon2() PasswordHasher {
	return cryptox.NewLimitedHasher(cryptox.NewArgon2idHasher(cryptox.Params{Iterations: 1, MemoryKiB: 1024, Threads: 1}), 1)
}

func TestAuthenticate_CancelledLoginKeepsDummyVerification(t *testing.T) {
	h := &countingHasher{next: limitedArgon2()}
	svc := newLimitedService(t, h)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Authenticate(cancelled, "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	hashes, verifys := h.hashes, h.verifys
	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(context.Background(), "nobody@x.com", "whatever")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
	assert.Equal(t, verifys+5, h.verifys)
	assert.Equal(t, hashes, h.hashes, "unknown-email logins must not hash")
}

func TestAuthenticate_DummyHashRetriedAfterFailure(t *testing.T) {
	h := &countingHasher{next: &flakyHasher{next: limitedArgon2(), failures: 1}}
	svc := newLimitedService(t, h)
	require.Empty(t, svc.dummyHash)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Authenticate(cancelled, "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	require.NotEmpty(t, svc.dummyHash)

	verifys := h.verifys
	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(context.Background(), "nobody@x.com", "whatever")
	}
	assert.Equal(t, verifys+5, h.verifys)
}

func TestAuthenticate_UnknownAndWrongPasswordCostTheSame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, aliceFields())
	require.NoError(t, err)

	hashes, verifys := f.hasher.hashes, f.hasher.verifys
	_, _ = f.svc.Authenticate(ctx, "nobody@x.com", "whatever")
	unknownHashes, unknownVerifys := f.hasher.hashes-hashes, f.hasher.verifys-verifys

	hashes, verifys = f.hasher.hashes, f.hasher.verifys
	_, _ = f.svc.Authenticate(ctx, "alice@x.com", "wrong")
	assert.Equal(t, unknownHashes, f.hasher.hashes-hashes)
	assert.Equal(t, unknownVerifys, f.hasher.verifys-verifys)
	assert.Equal(t, 1, unknownVerifys)
	assert.Zero(t, unknownHashes)
}

func TestAuthenticate_InfrastructureFailures(t *testing.T) {
	f := newFixtureWithRepo(t, &fakeRepo{findErr: errors.New("timeout")})

	_, err := f.svc.Authenticate(context.Background(), "alice@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, common.KindInfrastructure, common.KindOf(err))
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthenticate_CorruptStoredHash(t *testing.T) {
	repo := accounts.NewMemoryRepository()
	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1", Email: "alice@x.com", PasswordHash: "plaintext"})
	require.NoError(t, err)

	f := newFixtureWithRepo(t, repo)
	_, err = f.svc.Authenticate(context.Background(), "alice@x.com", "plaintext")
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptox.ErrInvalidHash)
	assert.Equal(t, common.KindInfrastructure, common.KindOf(err))
}
