package session

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"pos_terminal/internal/models"
	"pos_terminal/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	resp  *models.LoginResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(context.Context, string, string) (*models.LoginResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}

// failingKV fails writes for the configured key suffix.
type failingKV struct {
	*store.MemoryStore
	failSet string
	getErr  error
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failSet != "" && key == f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func cashierResponse() *models.LoginResponse {
	return &models.LoginResponse{
		Token: "tok-1", EmployeeID: "e-1", Username: "jdoe", FullName: "John Doe", Position: "Cashier",
	}
}

func newTestStore(kv store.KV, auth Authenticator) *Store {
	return NewStore(kv, "pos", "ctx-1", auth, log.New(io.Discard, "", 0))
}

func TestLogin_PersistsAndActivates(t *testing.T) {
	kv := store.NewMemoryStore()
	s := newTestStore(kv, &fakeAuth{resp: cashierResponse()})
	ctx := context.Background()

	sess, err := s.Login(ctx, "jdoe", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, sess.Position)

	token, err := kv.Get(ctx, "pos:ctx-1:token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	raw, err := kv.Get(ctx, "pos:ctx-1:user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"employeeId":"e-1","username":"jdoe","fullName":"John Doe","position":"Cashier"}`, raw)

	tok, employeeID, ok := s.Credentials()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, "e-1", employeeID)
}

func TestLogin_Failure(t *testing.T) {
	tests := []struct {
		name string
		auth *fakeAuth
	}{
		{"rejected credentials", &fakeAuth{err: errors.New("POST auth/login: status 401")}},
		{"unknown position", &fakeAuth{resp: &models.LoginResponse{Token: "t", EmployeeID: "e", Username: "u", Position: "Manager"}}},
		{"missing token", &fakeAuth{resp: &models.LoginResponse{EmployeeID: "e", Username: "u", Position: "Admin"}}},
		{"missing employee id", &fakeAuth{resp: &models.LoginResponse{Token: "t", Username: "u", Position: "Admin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemoryStore()
			s := newTestStore(kv, tt.auth)

			_, err := s.Login(context.Background(), "jdoe", "bad")
			assert.ErrorIs(t, err, ErrLoginFailed)
			assert.Nil(t, s.Current())
			assert.Equal(t, 1, tt.auth.calls, "no retry")

			_, err = kv.Get(context.Background(), "pos:ctx-1:token")
			assert.ErrorIs(t, err, store.ErrKeyNotFound)
		})
	}
}

func TestLogin_PersistenceFailureLeavesSessionAbsent(t *testing.T) {
	kv := &failingKV{MemoryStore: store.NewMemoryStore(), failSet: "pos:ctx-1:user"}
	s := newTestStore(kv, &fakeAuth{resp: cashierResponse()})

	_, err := s.Login(context.Background(), "jdoe", "secret")
	require.Error(t, err)
	assert.Nil(t, s.Current())

	_, err = kv.Get(context.Background(), "pos:ctx-1:token")
	assert.ErrorIs(t, err, store.ErrKeyNotFound, "token is rolled back")
}

func TestRestore_RoundTrip(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_, err := newTestStore(kv, &fakeAuth{resp: cashierResponse()}).Login(ctx, "jdoe", "secret")
	require.NoError(t, err)

	restored := newTestStore(kv, &fakeAuth{})
	restored.Restore(ctx)

	sess := restored.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "John Doe", sess.FullName)
	assert.Equal(t, models.RoleCashier, sess.Position)
}

func TestRestore_IsolatedPerContext(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_, err := newTestStore(kv, &fakeAuth{resp: cashierResponse()}).Login(ctx, "jdoe", "secret")
	require.NoError(t, err)

	other := NewStore(kv, "pos", "ctx-2", &fakeAuth{}, log.New(io.Discard, "", 0))
	other.Restore(ctx)
	assert.Nil(t, other.Current())
}

func TestRestore_TreatsBadDataAsLoggedOut(t *testing.T) {
	tests := []struct {
		name  string
		token *string
		user  *string
	}{
		{"nothing persisted", nil, nil},
		{"token only", strPtr("tok"), nil},
		{"user only", nil, strPtr(`{"employeeId":"e","username":"u","fullName":"F","position":"Admin"}`)},
		{"empty token", strPtr("  "), strPtr(`{"employeeId":"e","username":"u","fullName":"F","position":"Admin"}`)},
		{"not json", strPtr("tok"), strPtr("{not json")},
		{"json null", strPtr("tok"), strPtr("null")},
		{"missing field", strPtr("tok"), strPtr(`{"employeeId":"e","username":"u","position":"Admin"}`)},
		{"mistyped field", strPtr("tok"), strPtr(`{"employeeId":42,"username":"u","fullName":"F","position":"Admin"}`)},
		{"unknown role", strPtr("tok"), strPtr(`{"employeeId":"e","username":"u","fullName":"F","position":"Owner"}`)},
		{"unknown field", strPtr("tok"), strPtr(`{"employeeId":"e","username":"u","fullName":"F","position":"Admin","isRoot":true}`)},
		{"trailing data", strPtr("tok"), strPtr(`{"employeeId":"e","username":"u","fullName":"F","position":"Admin"}{}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemoryStore()
			ctx := context.Background()
			if tt.token != nil {
				require.NoError(t, kv.Set(ctx, "pos:ctx-1:token", *tt.token))
			}
			if tt.user != nil {
				require.NoError(t, kv.Set(ctx, "pos:ctx-1:user", *tt.user))
			}

			s := newTestStore(kv, &fakeAuth{})
			assert.NotPanics(t, func() { s.Restore(ctx) })
			assert.Nil(t, s.Current())
			_, _, ok := s.Credentials()
			assert.False(t, ok)
		})
	}
}

func TestRestore_StorageErrorIsNotSurfaced(t *testing.T) {
	kv := &failingKV{MemoryStore: store.NewMemoryStore(), getErr: errors.New("connection reset")}
	s := newTestStore(kv, &fakeAuth{})
	s.Restore(context.Background())
	assert.Nil(t, s.Current())
}

func TestLogout_ErasesUnconditionally(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	s := newTestStore(kv, &fakeAuth{resp: cashierResponse()})

	require.NoError(t, s.Logout(ctx), "logout with nothing persisted")

	_, err := s.Login(ctx, "jdoe", "secret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	assert.Nil(t, s.Current())
	_, err = kv.Get(ctx, "pos:ctx-1:token")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = kv.Get(ctx, "pos:ctx-1:user")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := newTestStore(store.NewMemoryStore(), &fakeAuth{resp: cashierResponse()})
	_, err := s.Login(context.Background(), "jdoe", "secret")
	require.NoError(t, err)

	sess := s.Current()
	sess.Position = models.RoleAdmin

	assert.Equal(t, models.RoleCashier, s.Current().Position)
}

func strPtr(s string) *string { return &s }
