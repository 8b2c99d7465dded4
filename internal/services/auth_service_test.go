package service

import (
	"context"
	"testing"
	"time"

	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const fixedCode = "482913"

type authFixture struct {
	users    *fakeUserRepo
	txs      *fakeTxRepo
	settings *fakeSettingsRepo
	redis    *fakeRedis
	sender   *fakeSender
	auth     *authService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	txs := newFakeTxRepo(users)
	settings := &fakeSettingsRepo{}
	redisClient := newFakeRedis()
	sender := &fakeSender{}

	svc := NewAuthService(users, txs, settings, redisClient, sender, "test-secret")
	svc.genCode = func() string { return fixedCode }

	return &authFixture{
		users:    users,
		txs:      txs,
		settings: settings,
		redis:    redisClient,
		sender:   sender,
		auth:     svc,
	}
}

func (f *authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	_, err := f.auth.SendCode(context.Background(), email)
	require.NoError(t, err)
	_, user, err := f.auth.VerifyRegistration(context.Background(), email, password, fixedCode, "")
	require.NoError(t, err)
	return user
}

func TestRegistrationGrantsSignupBonus(t *testing.T) {
	f := newAuthFixture(t)

	delivery, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)
	assert.True(t, delivery.Delivered)
	require.Equal(t, []string{fixedCode}, f.sender.codes)

	token, user, err := f.auth.VerifyRegistration(context.Background(), testEmail, "abcdef", fixedCode, "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(99)))
	assert.NotEmpty(t, user.ReferralCode)

	history, err := f.txs.ListByUser(context.Background(), testEmail)
	require.NoError(t, err)
	require.Len(t, history, 1)
	bonus := history[0]
	assert.Equal(t, models.TypeBuy, bonus.Type)
	assert.Equal(t, models.StatusCompleted, bonus.Status)
	assert.Equal(t, "Welcome Bonus", bonus.TaskTitle)
	assert.True(t, bonus.Amount.Equal(decimal.NewFromInt(99)))
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)

	_, _, err = f.auth.VerifyRegistration(context.Background(), testEmail, "abcdef", "000000", "")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidCode)

	_, err = f.users.GetByEmail(context.Background(), testEmail)
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound, "no account may exist after a failed verification")
}

func TestVerifyRejectsShortPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)

	_, _, err = f.auth.VerifyRegistration(context.Background(), testEmail, "abc", fixedCode, "")
	assert.ErrorIs(t, err, pkgerrors.ErrValidation)
}

func TestSendCodeValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SendCode(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, pkgerrors.ErrValidation)
}

func TestSendCodeExistingUser(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, testEmail, "abcdef")

	_, err := f.auth.SendCode(context.Background(), testEmail)
	assert.ErrorIs(t, err, pkgerrors.ErrUserExists)

	require.NoError(t, f.users.SetBanned(context.Background(), testEmail, true))
	_, err = f.auth.SendCode(context.Background(), testEmail)
	assert.ErrorIs(t, err, pkgerrors.ErrAccountBanned)
}

func TestResendCooldown(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)

	_, err = f.auth.SendCode(context.Background(), testEmail)
	require.ErrorIs(t, err, pkgerrors.ErrCooldownActive)

	f.redis.advance(61 * time.Second)
	_, err = f.auth.SendCode(context.Background(), testEmail)
	assert.NoError(t, err, "the cooldown must lapse after 60 seconds")
}

func TestSendCodeDeliveryFailureFallsBack(t *testing.T) {
	f := newAuthFixture(t)
	f.sender.fail = true

	delivery, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err, "delivery failure is non-fatal")
	assert.False(t, delivery.Delivered)
	assert.Equal(t, fixedCode, delivery.Code)

	// The stored code still verifies.
	_, _, err = f.auth.VerifyRegistration(context.Background(), testEmail, "abcdef", fixedCode, "")
	assert.NoError(t, err)
}

func TestRegistrationWithReferral(t *testing.T) {
	f := newAuthFixture(t)
	referrer := f.register(t, "referrer@example.com", "abcdef")
	f.redis.advance(61 * time.Second)

	_, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)

	_, user, err := f.auth.VerifyRegistration(context.Background(), testEmail, "abcdef", fixedCode, referrer.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, referrer.ReferralCode, user.ReferredBy)
}

func TestRegistrationWithUnknownReferral(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SendCode(context.Background(), testEmail)
	require.NoError(t, err)

	_, _, err = f.auth.VerifyRegistration(context.Background(), testEmail, "abcdef", fixedCode, "NOSUCHCD")
	assert.ErrorIs(t, err, pkgerrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, testEmail, "abcdef")

	token, user, err := f.auth.Login(context.Background(), testEmail, "abcdef")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, testEmail, user.Email)

	_, _, err = f.auth.Login(context.Background(), testEmail, "wrong-pass")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

	_, _, err = f.auth.Login(context.Background(), "ghost@example.com", "abcdef")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

	require.NoError(t, f.users.SetBanned(context.Background(), testEmail, true))
	_, _, err = f.auth.Login(context.Background(), testEmail, "abcdef")
	assert.ErrorIs(t, err, pkgerrors.ErrAccountBanned)
}

func seedAdmin(t *testing.T, f *authFixture, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.settings.SaveAdminCredentials(context.Background(), &models.AdminCredentials{
		Username:     username,
		PasswordHash: string(hash),
	}))
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	seedAdmin(t, f, "MEWAT0786", "MEWAT0000")

	token, err := f.auth.AdminLogin(context.Background(), "MEWAT0786", "MEWAT0000")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.auth.AdminLogin(context.Background(), "MEWAT0786", "wrong")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

	_, err = f.auth.AdminLogin(context.Background(), "someone", "MEWAT0000")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)
}

func TestChangeAdminPassword(t *testing.T) {
	f := newAuthFixture(t)
	seedAdmin(t, f, "MEWAT0786", "MEWAT0000")

	err := f.auth.ChangeAdminPassword(context.Background(), "wrong", "newsecret")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

	require.NoError(t, f.auth.ChangeAdminPassword(context.Background(), "MEWAT0000", "newsecret"))

	_, err = f.auth.AdminLogin(context.Background(), "MEWAT0786", "MEWAT0000")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)
	_, err = f.auth.AdminLogin(context.Background(), "MEWAT0786", "newsecret")
	assert.NoError(t, err)
}
