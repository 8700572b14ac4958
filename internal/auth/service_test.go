package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/kv"
)

const session = "sess-1"

type stubResetClient struct {
	forgotMessage string
	forgotErr     error
	verifyMessage string
	verifyErr     error
	forgotCalls   []string
	verifyCalls   []string
}

func (s *stubResetClient) ForgotPassword(_ context.Context, email string) (string, error) {
	s.forgotCalls = append(s.forgotCalls, email)
	return s.forgotMessage, s.forgotErr
}

func (s *stubResetClient) VerifyResetCode(_ context.Context, code string) (string, error) {
	s.verifyCalls = append(s.verifyCalls, code)
	return s.verifyMessage, s.verifyErr
}

func newTestService(t *testing.T, client *stubResetClient) (Service, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	svc, err := NewService(ServiceParams{Store: store, Client: client})
	require.NoError(t, err)
	return svc, store
}

func TestSaveAndLoadCredentials(t *testing.T) {
	svc, _ := newTestService(t, &stubResetClient{})
	ctx := context.Background()

	require.NoError(t, svc.SaveCredentials(ctx, session, "tok-123", User{Name: "Jo"}))

	token, err := svc.Token(ctx, session)
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)

	user, err := svc.User(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "Jo", user.Name)
}

func TestClearCredentialsSignsOut(t *testing.T) {
	svc, _ := newTestService(t, &stubResetClient{})
	ctx := context.Background()

	require.NoError(t, svc.SaveCredentials(ctx, session, "tok-123", User{Name: "Jo"}))
	require.NoError(t, svc.ClearCredentials(ctx, session))

	token, err := svc.Token(ctx, session)
	require.NoError(t, err)
	require.Empty(t, token)

	user, err := svc.User(ctx, session)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestTokenAbsentIsEmptyNotError(t *testing.T) {
	svc, _ := newTestService(t, &stubResetClient{})

	token, err := svc.Token(context.Background(), session)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestCorruptUserFailsClosedToSignedOut(t *testing.T) {
	svc, store := newTestService(t, &stubResetClient{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, kv.SessionKey(session, "user"), []byte("{oops")))

	user, err := svc.User(ctx, session)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestForgotPasswordStoresResetEmail(t *testing.T) {
	client := &stubResetClient{forgotMessage: "Reset code sent to your email"}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	msg, err := svc.ForgotPassword(ctx, session, " jo@example.com ")
	require.NoError(t, err)
	require.Equal(t, "Reset code sent to your email", msg)
	require.Equal(t, []string{"jo@example.com"}, client.forgotCalls)

	email, err := svc.ResetEmail(ctx, session)
	require.NoError(t, err)
	require.Equal(t, "jo@example.com", email)
}

func TestForgotPasswordUpstreamFailureSkipsPersist(t *testing.T) {
	client := &stubResetClient{forgotErr: pkgerrors.New(pkgerrors.CodeValidation, "no such user")}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.ForgotPassword(ctx, session, "jo@example.com")
	require.Error(t, err)

	email, err := svc.ResetEmail(ctx, session)
	require.NoError(t, err)
	require.Empty(t, email)
}

func TestVerifyResetCodeProxiesUpstream(t *testing.T) {
	client := &stubResetClient{verifyMessage: "success"}
	svc, _ := newTestService(t, client)

	msg, err := svc.VerifyResetCode(context.Background(), session, "123456")
	require.NoError(t, err)
	require.Equal(t, "success", msg)
	require.Equal(t, []string{"123456"}, client.verifyCalls)
}

func TestSaveCredentialsValidation(t *testing.T) {
	svc, _ := newTestService(t, &stubResetClient{})
	ctx := context.Background()

	err := svc.SaveCredentials(ctx, session, "  ", User{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = svc.SaveCredentials(ctx, "", "tok", User{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
