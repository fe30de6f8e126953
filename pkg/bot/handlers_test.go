package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"taxiorders/config"
	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/service"
	"taxiorders/storage"
	"taxiorders/storage/memory"
)

const adminTeleID = 900

// fakeContext records what handlers send back to telegram. Methods the
// handlers do not call panic through the nil embedded interface.
type fakeContext struct {
	tele.Context
	sender    *tele.User
	callback  *tele.Callback
	sent      []interface{}
	edited    []interface{}
	responses []*tele.CallbackResponse
}

func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	c.edited = append(c.edited, what)
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

type failingUsers struct {
	storage.IUserStorage
}

func (failingUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return nil, errs.NewStorageError("get user", errors.New("connection refused"))
}

type failingUserStore struct {
	*memory.Store
}

func (s failingUserStore) User() storage.IUserStorage {
	return failingUsers{IUserStorage: s.Store.User()}
}

func newTestBot(stg storage.IStorage) *Bot {
	svc := service.New(stg, config.Config{
		Currency:             "RUB",
		RetryMaxAttempts:     1,
		RetryInitialInterval: time.Millisecond,
	}, logger.NewNop())
	return &Bot{
		Log: logger.NewNop(),
		Cfg: &config.Config{AdminID: adminTeleID},
		Svc: svc,
	}
}

func teleUser(t *testing.T, store *memory.Store, teleID int64, role models.Role, status string) *models.User {
	t.Helper()
	u, err := store.User().Create(context.Background(), &models.User{
		TelegramID: &teleID,
		FullName:   string(role),
		Role:       role,
		Status:     status,
	})
	require.NoError(t, err)
	return u
}

func startContext(teleID int64) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: teleID, FirstName: "Test"}}
}

func TestHandleStart(t *testing.T) {
	t.Run("new sender becomes a client", func(t *testing.T) {
		b := newTestBot(memory.New(logger.NewNop()))
		c := startContext(100)

		require.NoError(t, b.handleStart(c))
		require.Len(t, c.sent, 1)
		assert.Equal(t, messages["menu_client"], c.sent[0])
	})

	t.Run("configured admin is promoted", func(t *testing.T) {
		b := newTestBot(memory.New(logger.NewNop()))
		c := startContext(adminTeleID)

		require.NoError(t, b.handleStart(c))
		require.Len(t, c.sent, 1)
		assert.Equal(t, messages["menu_admin"], c.sent[0])
	})

	t.Run("blocked user is told so", func(t *testing.T) {
		store := memory.New(logger.NewNop())
		teleUser(t, store, 101, models.RoleDriver, models.UserBlocked)
		b := newTestBot(store)
		c := startContext(101)

		require.NoError(t, b.handleStart(c))
		require.Len(t, c.sent, 1)
		assert.Equal(t, messages["blocked"], c.sent[0])
	})

	t.Run("storage failure is not reported as blocked", func(t *testing.T) {
		b := newTestBot(failingUserStore{Store: memory.New(logger.NewNop())})
		c := startContext(102)

		require.NoError(t, b.handleStart(c))
		require.Len(t, c.sent, 1)
		assert.Equal(t, messages["error"], c.sent[0])
	})
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	store := memory.New(logger.NewNop())
	client := teleUser(t, store, 200, models.RoleClient, models.UserActive)
	teleUser(t, store, 201, models.RoleDriver, models.UserActive)
	teleUser(t, store, 202, models.RoleDriver, models.UserActive)
	b := newTestBot(store)

	order, err := b.Svc.Order().CreateOrder(ctx, models.Actor{ID: client.ID, Role: models.RoleClient}, models.CreateOrderRequest{
		FromAddress:  "Lenina 1",
		ToAddress:    "Airport",
		VehicleClass: models.ClassComfort,
		DistanceKm:   2.1,
	})
	require.NoError(t, err)

	press := func(teleID int64, data string) *fakeContext {
		c := &fakeContext{
			sender:   &tele.User{ID: teleID},
			callback: &tele.Callback{Data: data},
		}
		require.NoError(t, b.handleCallback(c))
		require.Len(t, c.responses, 1)
		return c
	}
	accept := "\f" + callbackData(models.ActionAccept, order.ID)

	t.Run("client cannot accept", func(t *testing.T) {
		c := press(200, accept)
		assert.True(t, c.responses[0].ShowAlert)
		assert.Equal(t, alertText(errs.ErrForbidden), c.responses[0].Text)
		assert.Empty(t, c.edited)
	})

	t.Run("driver accepts and the card is refreshed", func(t *testing.T) {
		c := press(201, accept)
		assert.False(t, c.responses[0].ShowAlert)
		assert.Equal(t, "✅ accepted", c.responses[0].Text)
		require.Len(t, c.edited, 1)
		assert.Contains(t, c.edited[0], statusLabels[models.StatusAccepted])
	})

	t.Run("second driver gets a conflict alert", func(t *testing.T) {
		c := press(202, accept)
		assert.True(t, c.responses[0].ShowAlert)
		assert.Equal(t, alertText(errs.ErrConflict), c.responses[0].Text)
		assert.Empty(t, c.edited)
	})

	t.Run("unknown button", func(t *testing.T) {
		c := press(201, "\fteleport_1")
		assert.True(t, c.responses[0].ShowAlert)
		assert.Equal(t, "Unknown button", c.responses[0].Text)
	})

	got, err := b.Svc.Query().Get(ctx, models.Actor{ID: client.ID, Role: models.RoleClient}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
}
