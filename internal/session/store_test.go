package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kit-rental/internal/model"
)

func sampleDraft() model.DraftBooking {
	return model.DraftBooking{
		Stage:     model.StageSelected,
		Kit:       model.Kit{ID: "camp-starter", Name: "Camp Starter", PricePerNight: model.Rupees(1500)},
		StartDate: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC),
		AddOns:    model.AddOnSelection{"lantern": 1},
		Price:     model.PriceBreakdown{Nights: 3, KitSubtotal: model.Rupees(4500), AddOnSubtotal: model.Rupees(300), Total: model.Rupees(4800)},
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "draft", time.Hour), mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(0),
		"redis":  rs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Load(ctx, "s1")
			assert.ErrorIs(t, err, ErrDraftAbsent)

			d := sampleDraft()
			require.NoError(t, st.Save(ctx, "s1", d))

			got, err := st.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, d.Kit.ID, got.Kit.ID)
			assert.Equal(t, d.Price, got.Price)
			assert.True(t, d.StartDate.Equal(got.StartDate))
			assert.Equal(t, d.AddOns, got.AddOns)

			// other sessions see nothing
			_, err = st.Load(ctx, "s2")
			assert.ErrorIs(t, err, ErrDraftAbsent)
		})
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(ctx, "s1", sampleDraft()))

			next := sampleDraft()
			next.Kit = model.Kit{ID: "trek-lite"}
			next.Stage = model.StageCheckedOut
			require.NoError(t, st.Save(ctx, "s1", next))

			got, err := st.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "trek-lite", got.Kit.ID)
			assert.Equal(t, model.StageCheckedOut, got.Stage)
		})
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(ctx, "s1", sampleDraft()))
			require.NoError(t, st.Clear(ctx, "s1"))
			_, err := st.Load(ctx, "s1")
			assert.ErrorIs(t, err, ErrDraftAbsent)

			require.NoError(t, st.Clear(ctx, "never-saved"))
		})
	}
}

func TestMalformedPayloadIsAbsent(t *testing.T) {
	ctx := context.Background()

	mem := NewMemoryStore(0)
	mem.put("s1", []byte("{not json"))
	_, err := mem.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftAbsent)

	mem.put("s2", []byte(`{"stage":"selected"}`))
	_, err = mem.Load(ctx, "s2")
	assert.ErrorIs(t, err, ErrDraftAbsent, "draft without a kit")

	rs, mr := newRedisStore(t)
	require.NoError(t, mr.Set("draft:s1", "garbage"))
	_, err = rs.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftAbsent)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	st := NewMemoryStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	require.NoError(t, st.Save(ctx, "s1", sampleDraft()))
	now = now.Add(29 * time.Minute)
	_, err := st.Load(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = st.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftAbsent)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	rs, mr := newRedisStore(t)
	require.NoError(t, rs.Save(ctx, "s1", sampleDraft()))
	assert.Equal(t, time.Hour, mr.TTL("draft:s1"))

	mr.FastForward(2 * time.Hour)
	_, err := rs.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftAbsent)
}

func TestRedisStoreUnavailable(t *testing.T) {
	rs, mr := newRedisStore(t)
	mr.Close()
	_, err := rs.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDraftAbsent)
}
