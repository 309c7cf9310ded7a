package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/auth"
	domainapartment "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"
	domainauth "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/auth"
	domainuser "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/user"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/security"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
)

func newService(t *testing.T) *authsvc.Service {
	t.Helper()
	apartments := memory.NewApartmentRepository()
	for _, seed := range [][3]string{
		{"sunrise-towers", "Sunrise Towers", "Bengaluru"},
		{"palm-meadows", "Palm Meadows", "Bengaluru"},
	} {
		apartment, err := domainapartment.New(domainapartment.ID(seed[0]), seed[1], seed[2])
		require.NoError(t, err)
		require.NoError(t, apartments.Save(context.Background(), apartment))
	}

	return &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Apartments: apartments,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4}, // low cost keeps tests fast
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func validRegistration() authsvc.RegisterParams {
	return authsvc.RegisterParams{
		Email:       "Asha@Example.com",
		Name:        "Asha",
		Password:    "correct horse",
		ApartmentID: "sunrise-towers",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	service := newService(t)

	result, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "asha@example.com", result.User.Email)
	assert.Equal(t, "sunrise-towers", result.User.ApartmentID)

	login, err := service.Login(context.Background(), authsvc.LoginParams{
		Email:    "asha@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
	assert.NotEqual(t, result.Token, login.Token)
}

func TestRegisterValidation(t *testing.T) {
	service := newService(t)

	params := validRegistration()
	params.Password = "short"
	_, err := service.Register(context.Background(), params)
	assert.ErrorIs(t, err, authsvc.ErrPasswordTooShort)

	params = validRegistration()
	params.ApartmentID = "unknown-community"
	_, err = service.Register(context.Background(), params)
	assert.ErrorIs(t, err, authsvc.ErrUnknownApartment)

	params = validRegistration()
	params.ApartmentID = ""
	_, err = service.Register(context.Background(), params)
	assert.ErrorIs(t, err, domainuser.ErrApartmentRequired)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := newService(t)
	_, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = service.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service := newService(t)
	_, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = service.Login(context.Background(), authsvc.LoginParams{Email: "asha@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)

	_, err = service.Login(context.Background(), authsvc.LoginParams{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)
}

func TestResolveTokenAndLogout(t *testing.T) {
	service := newService(t)
	result, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	resolved, err := service.ResolveToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.User.ID)

	require.NoError(t, service.Logout(context.Background(), result.Token))
	_, err = service.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestUpdateProfile(t *testing.T) {
	service := newService(t)
	result, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	userID := string(result.User.ID)

	updated, err := service.UpdateProfile(context.Background(), userID, authsvc.UpdateProfileParams{
		Name:        "Asha K",
		ApartmentID: "palm-meadows",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "palm-meadows", updated.ApartmentID)
	assert.Equal(t, result.User.Email, updated.Email)

	// empty fields leave the profile untouched
	unchanged, err := service.UpdateProfile(context.Background(), userID, authsvc.UpdateProfileParams{})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", unchanged.Name)
	assert.Equal(t, "palm-meadows", unchanged.ApartmentID)

	_, err = service.UpdateProfile(context.Background(), userID, authsvc.UpdateProfileParams{ApartmentID: "unknown-community"})
	assert.ErrorIs(t, err, authsvc.ErrUnknownApartment)

	_, err = service.UpdateProfile(context.Background(), "missing-user", authsvc.UpdateProfileParams{Name: "x"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	service := newService(t)
	result, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	userID := string(result.User.ID)

	_, err = service.UpdateProfile(context.Background(), userID, authsvc.UpdateProfileParams{Password: "tiny"})
	assert.ErrorIs(t, err, authsvc.ErrPasswordTooShort)

	_, err = service.UpdateProfile(context.Background(), userID, authsvc.UpdateProfileParams{Password: "brand new phrase"})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), authsvc.LoginParams{Email: "asha@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)
	login, err := service.Login(context.Background(), authsvc.LoginParams{Email: "asha@example.com", Password: "brand new phrase"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	service := newService(t)
	service.SessionTTL = time.Millisecond
	result, err := service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = service.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
