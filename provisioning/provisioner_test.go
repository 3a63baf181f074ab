package provisioning_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-gateway-auth/gateway"
	fakegateway "github.com/jrsteele09/go-gateway-auth/gateway/gatewayfake"
	"github.com/jrsteele09/go-gateway-auth/identity"
	"github.com/jrsteele09/go-gateway-auth/provisioning"
	"github.com/stretchr/testify/require"
)

var jane = identity.Claims{
	SubjectID:   "108",
	Email:       "jane.doe+work@company.com",
	DisplayName: "Jane Doe",
}

func newProvisioner(t *testing.T) (*provisioning.Provisioner, *fakegateway.FakeGateway) {
	t.Helper()
	fake := fakegateway.New()
	t.Cleanup(fake.Close)
	client := gateway.NewClient(fake.URL, gateway.WithRetryPolicy(3, time.Millisecond))
	return provisioning.NewProvisioner(client, []string{"free"}), fake
}

func TestDeriveIdentifier(t *testing.T) {
	tests := map[string]string{
		"jane.doe+work@company.com": "jane_doe_work",
		"John.Smith@Example.com":    "john_smith",
		"plain@example.com":         "plain",
		"a.b.c+d+e@x.y":             "a_b_c_d_e",
		"no-at-sign":                "no-at-sign",
		"":                          "",
	}
	for email, want := range tests {
		require.Equal(t, want, provisioning.DeriveIdentifier(email), email)
		require.Equal(t, provisioning.DeriveIdentifier(email), provisioning.DeriveIdentifier(email))
	}
}

func TestEnsureConsumer_CreatesConsumerAndKey(t *testing.T) {
	ctx := context.Background()
	p, fake := newProvisioner(t)
	fake.SetGeneratedKey("abc123")

	outcome := p.EnsureConsumer(ctx, jane)
	require.Equal(t, provisioning.Outcome{Success: true, ConsumerID: "c_1", APIKey: "abc123"}, outcome)

	consumer, ok := fake.Consumer(jane.Email)
	require.True(t, ok)
	require.Equal(t, "c_1", consumer.ID)
	require.Equal(t, "jane_doe_work", consumer.CustomID)
	require.Equal(t, []string{"free"}, consumer.Tags)

	t.Run("second call short-circuits", func(t *testing.T) {
		outcome := p.EnsureConsumer(ctx, jane)
		require.Equal(t, provisioning.Outcome{Success: true, ConsumerID: "c_1"}, outcome)
		require.Equal(t, 1, fake.Calls(fakegateway.RouteCreateConsumer))
		require.Equal(t, 1, fake.Calls(fakegateway.RouteCreateKey))
		require.Len(t, fake.Keys(jane.Email), 1)
	})

	t.Run("lookup converges on the created id", func(t *testing.T) {
		client := gateway.NewClient(fake.URL)
		got, err := client.GetConsumer(ctx, jane.Email)
		require.NoError(t, err)
		require.Equal(t, "c_1", got.ID)
	})
}

func TestEnsureConsumer_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("consumer created concurrently", func(t *testing.T) {
		p, fake := newProvisioner(t)
		require.True(t, p.EnsureConsumer(ctx, jane).Success)

		fake.FailNext(fakegateway.RouteGetConsumer, http.StatusNotFound)
		outcome := p.EnsureConsumer(ctx, jane)
		require.Equal(t, provisioning.Outcome{Success: true, Duplicate: true, ConsumerID: "c_1"}, outcome)
		require.Equal(t, 1, fake.Calls(fakegateway.RouteCreateKey))
	})

	t.Run("custom id collision", func(t *testing.T) {
		p, fake := newProvisioner(t)
		require.True(t, p.EnsureConsumer(ctx, jane).Success)

		other := identity.Claims{SubjectID: "2", Email: "jane.doe+work@other.org"}
		outcome := p.EnsureConsumer(ctx, other)
		require.False(t, outcome.Success)
		require.True(t, outcome.Duplicate)
		require.Empty(t, outcome.ConsumerID)
		require.Equal(t, "custom_id collision: jane_doe_work", outcome.Error)
		_, ok := fake.Consumer(other.Email)
		require.False(t, ok)
	})

	t.Run("lookup after conflict fails", func(t *testing.T) {
		p, fake := newProvisioner(t)
		require.True(t, p.EnsureConsumer(ctx, jane).Success)

		fake.FailNext(fakegateway.RouteGetConsumer, http.StatusNotFound, http.StatusInternalServerError)
		outcome := p.EnsureConsumer(ctx, jane)
		require.False(t, outcome.Success)
		require.True(t, outcome.Duplicate)
		require.NotEmpty(t, outcome.Error)
	})
}

func TestEnsureConsumer_FailuresAreContained(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup fails", func(t *testing.T) {
		p, fake := newProvisioner(t)
		fake.FailNext(fakegateway.RouteGetConsumer, http.StatusInternalServerError)

		outcome := p.EnsureConsumer(ctx, jane)
		require.False(t, outcome.Success)
		require.Empty(t, outcome.ConsumerID)
		require.NotEmpty(t, outcome.Error)
		require.Equal(t, 0, fake.Calls(fakegateway.RouteCreateConsumer))
	})

	t.Run("gateway unreachable", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		client := gateway.NewClient(closed.URL, gateway.WithRetryPolicy(1, time.Millisecond))
		p := provisioning.NewProvisioner(client, nil)

		outcome := p.EnsureConsumer(ctx, jane)
		require.False(t, outcome.Success)
		require.Contains(t, outcome.Error, "Request failed")
	})

	t.Run("create fails", func(t *testing.T) {
		p, fake := newProvisioner(t)
		fake.FailNext(fakegateway.RouteCreateConsumer, http.StatusBadRequest)

		outcome := p.EnsureConsumer(ctx, jane)
		require.False(t, outcome.Success)
		require.Empty(t, outcome.ConsumerID)
		require.Equal(t, 0, fake.Calls(fakegateway.RouteCreateKey))
	})

	t.Run("key creation fails", func(t *testing.T) {
		p, fake := newProvisioner(t)
		fake.FailNext(fakegateway.RouteCreateKey, http.StatusInternalServerError)

		outcome := p.EnsureConsumer(ctx, jane)
		require.Equal(t, provisioning.Outcome{Success: true, ConsumerID: "c_1"}, outcome)
		_, ok := fake.Consumer(jane.Email)
		require.True(t, ok)
	})

	t.Run("missing email", func(t *testing.T) {
		p, fake := newProvisioner(t)
		outcome := p.EnsureConsumer(ctx, identity.Claims{SubjectID: "1"})
		require.False(t, outcome.Success)
		require.Empty(t, fake.Requests())
	})

	t.Run("panic", func(t *testing.T) {
		p := provisioning.NewProvisioner(panickingGateway{}, nil)
		var outcome provisioning.Outcome
		require.NotPanics(t, func() { outcome = p.EnsureConsumer(ctx, jane) })
		require.False(t, outcome.Success)
		require.Contains(t, outcome.Error, "boom")
	})
}

func TestKeyManagement(t *testing.T) {
	ctx := context.Background()
	p, fake := newProvisioner(t)
	fake.SetGeneratedKey("first-key-0001")

	info, err := p.ConsumerInfo(ctx, jane.Email)
	require.NoError(t, err)
	require.False(t, info.Provisioned)
	require.Empty(t, info.Keys)

	_, err = p.ListKeys(ctx, jane.Email)
	require.True(t, gateway.IsNotFound(err))

	require.True(t, p.EnsureConsumer(ctx, jane).Success)

	created, err := p.CreateKey(ctx, jane.Email, "custom-key-0002")
	require.NoError(t, err)
	require.Equal(t, "custom-key-0002", created.Key)
	require.Equal(t, "c_1", created.ConsumerID)

	keys, err := p.ListKeys(ctx, jane.Email)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Equal(t, "first-key-0001", keys[0].Key)

	info, err = p.ConsumerInfo(ctx, jane.Email)
	require.NoError(t, err)
	require.True(t, info.Provisioned)
	require.Equal(t, "c_1", info.Consumer.ID)
	require.Len(t, info.Keys, 2)

	require.NoError(t, p.RevokeKey(ctx, jane.Email, keys[0].ID))
	err = p.RevokeKey(ctx, jane.Email, keys[0].ID)
	require.True(t, gateway.IsNotFound(err))

	keys, err = p.ListKeys(ctx, jane.Email)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, p.Deprovision(ctx, jane.Email))
	info, err = p.ConsumerInfo(ctx, jane.Email)
	require.NoError(t, err)
	require.False(t, info.Provisioned)

	err = p.Deprovision(ctx, jane.Email)
	require.True(t, gateway.IsNotFound(err))
}

type panickingGateway struct{ provisioning.Gateway }

func (panickingGateway) FindConsumer(context.Context, string) (*gateway.Consumer, bool, error) {
	panic("boom")
}
