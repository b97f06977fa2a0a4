package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

type recorder struct {
	mu    sync.Mutex
	kinds []string
	data  []any
}

func (r *recorder) Publish(_ context.Context, kind string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	r.data = append(r.data, data)
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	pub := &recorder{}
	svc := NewNotifyService(dbtest.New(t), pub, logger.Nop())
	ctx := context.Background()

	lead := models.Lead{ID: uuid.New(), Name: "Maya", ContactChannel: "Instagram"}
	n, err := svc.Notify(ctx, NewLead(lead))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, "Prospek", n.Link.Data().View)
	assert.Equal(t, lead.ID.String(), n.Link.Data().ID)

	require.Len(t, pub.kinds, 1)
	assert.Equal(t, "notification", pub.kinds[0])

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkReadAndList(t *testing.T) {
	svc := NewNotifyService(dbtest.New(t), nil, logger.Nop())
	ctx := context.Background()

	p := models.Project{ID: uuid.New(), Name: "Wedding", ClientName: "Rina", PackageName: "Gold", Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)}
	first, err := svc.Notify(ctx, NewBooking(p))
	require.NoError(t, err)
	_, err = svc.Notify(ctx, NewPayment(p, 550000, "Transfer"))
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, first.ID))
	assert.True(t, apperr.Is(svc.MarkRead(ctx, uuid.New()), apperr.CodeNotFound))

	unread, err := svc.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Contains(t, unread[0].Message, "Rp 550.000")

	n, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := svc.List(ctx, false, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
