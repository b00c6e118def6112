package state

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
	"rooms-client/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	rooms := []domain.RoomSummary{
		{IsOpen: true, UserLimit: 10, CurrentUserCount: 3},
		{IsOpen: true, UserLimit: 20, CurrentUserCount: 5},
		{IsOpen: false, UserLimit: 10, CurrentUserCount: 0},
	}
	st := ComputeStats(rooms)
	assert.Equal(t, 2, st.Open)
	assert.Equal(t, 1, st.Closed)
	assert.Equal(t, 8, st.TotalUsers)
	assert.Equal(t, 40, st.TotalCapacity)
	assert.Equal(t, 20, st.AverageOccupancy)

	assert.Equal(t, RoomStats{}, ComputeStats(nil))
}

func TestRoomsStore_FetchRooms(t *testing.T) {
	api := testutil.NewMockRoomsAPI(testutil.NewTestRooms(12)...)
	s := NewRoomsStore(api)

	page, err := s.FetchRooms(context.Background(), &domain.FilterPatch{Page: domain.Ptr(2)})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	q, ok := api.LastQuery()
	require.True(t, ok)
	assert.Equal(t, domain.RoomQuery{Page: 2, PageSize: 10}, q)

	snap := s.Snapshot()
	assert.Equal(t, 12, snap.TotalCount)
	assert.Equal(t, 2, snap.TotalPages)
	assert.Equal(t, 2, snap.CurrentPage)
	assert.Len(t, snap.Rooms, 2)
	assert.False(t, snap.IsLoading())
	assert.True(t, snap.HasRooms())
}

func TestRoomsStore_FetchRoomsError(t *testing.T) {
	api := testutil.NewMockRoomsAPI()
	api.ListRoomsFunc = func(context.Context, domain.RoomQuery) (*domain.RoomPage, error) {
		return nil, domain.NewUnknownAPIError(http.StatusServiceUnavailable)
	}
	s := NewRoomsStore(api)

	_, err := s.FetchRooms(context.Background(), nil)
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "HTTP error 503", snap.Errors[OpList])
	assert.True(t, snap.HasErrors())
	assert.False(t, snap.Loading[OpList])
	assert.Empty(t, snap.Rooms)

	s.ClearError(OpList)
	assert.False(t, s.Snapshot().HasErrors())
}

func TestRoomsStore_StaleFetchIsDiscarded(t *testing.T) {
	first := make(chan struct{})
	firstStarted := make(chan struct{})

	slow := &domain.RoomPage{Items: []domain.RoomSummary{{Slug: "stale"}}, Page: 1, PageSize: 10, TotalCount: 1, TotalPages: 1}
	fresh := &domain.RoomPage{Items: []domain.RoomSummary{{Slug: "fresh"}}, Page: 2, PageSize: 10, TotalCount: 11, TotalPages: 2}

	api := testutil.NewMockRoomsAPI()
	api.ListRoomsFunc = func(ctx context.Context, q domain.RoomQuery) (*domain.RoomPage, error) {
		if q.Page == 1 {
			close(firstStarted)
			<-first
			return slow, nil
		}
		return fresh, nil
	}
	s := NewRoomsStore(api)
	before := promtest.ToFloat64(observability.RoomFetchesDiscarded)

	var wg sync.WaitGroup
	wg.Add(1)
	var stalePage *domain.RoomPage
	go func() {
		defer wg.Done()
		stalePage, _ = s.FetchRooms(context.Background(), nil)
	}()

	<-firstStarted
	_, err := s.FetchRooms(context.Background(), &domain.FilterPatch{Page: domain.Ptr(2)})
	require.NoError(t, err)

	close(first)
	wg.Wait()

	assert.Equal(t, slow, stalePage)
	snap := s.Snapshot()
	require.Len(t, snap.Rooms, 1)
	assert.Equal(t, "fresh", snap.Rooms[0].Slug)
	assert.False(t, snap.Loading[OpList])
	assert.Equal(t, before+1, promtest.ToFloat64(observability.RoomFetchesDiscarded))
}

func TestRoomsStore_FetchRoomBySlug(t *testing.T) {
	room := testutil.NewTestRoom(testutil.WithSlug("lobby"))
	s := NewRoomsStore(testutil.NewMockRoomsAPI(room))

	got, err := s.FetchRoomBySlug(context.Background(), "lobby")
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
	assert.Equal(t, room.ID, s.Snapshot().CurrentRoom.ID)

	_, err = s.FetchRoomBySlug(context.Background(), "nope")
	require.Error(t, err)
	snap := s.Snapshot()
	assert.Equal(t, "room nope was not found", snap.Errors[OpDetail])
	// a failed load keeps the previous room
	assert.Equal(t, room.ID, snap.CurrentRoom.ID)
}

func TestRoomsStore_CRUDRefreshesList(t *testing.T) {
	ctx := context.Background()
	api := testutil.NewMockRoomsAPI()
	s := NewRoomsStore(api)

	created, err := s.CreateRoom(ctx, domain.CreateRoomRequest{
		Name: "Lobby", Slug: "lobby", Color: "#000000", Icon: "mdi-home", UserLimit: 5, IsOpen: true,
	})
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Rooms, 1)
	assert.Len(t, api.Queries, 1)

	_, err = s.FetchRoomBySlug(ctx, "lobby")
	require.NoError(t, err)

	updated, err := s.UpdateRoom(ctx, "lobby", domain.UpdateRoomRequest{Name: domain.Ptr("Main Hall")})
	require.NoError(t, err)
	assert.Equal(t, "Main Hall", updated.Name)
	assert.Equal(t, "Main Hall", s.Snapshot().CurrentRoom.Name)
	assert.Equal(t, "Main Hall", s.Snapshot().Rooms[0].Name)

	require.NoError(t, s.DeleteRoom(ctx, created.ID))
	snap := s.Snapshot()
	assert.Nil(t, snap.CurrentRoom)
	assert.Empty(t, snap.Rooms)
	assert.Len(t, api.Queries, 3)
}

func TestRoomsStore_MutationErrorsUseTheirSlot(t *testing.T) {
	ctx := context.Background()
	api := testutil.NewMockRoomsAPI()
	api.CreateRoomFunc = func(context.Context, domain.CreateRoomRequest) (*domain.Room, error) {
		return nil, &domain.APIError{Title: "Conflict", Status: http.StatusConflict}
	}
	s := NewRoomsStore(api)

	_, err := s.CreateRoom(ctx, domain.CreateRoomRequest{Name: "x"})
	require.Error(t, err)

	_, err = s.UpdateRoom(ctx, "missing", domain.UpdateRoomRequest{})
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Conflict", snap.Errors[OpCreate])
	assert.Equal(t, "room missing was not found", snap.Errors[OpUpdate])
	assert.Empty(t, snap.Errors[OpList])
	assert.Empty(t, api.Queries)

	s.ClearErrors()
	assert.False(t, s.Snapshot().HasErrors())
}

func TestRoomsStore_FilterSetters(t *testing.T) {
	s := NewRoomsStore(testutil.NewMockRoomsAPI())

	s.SetPage(4)
	s.SetSearch("lob")
	assert.Equal(t, 4, s.Snapshot().Filters.Page)

	s.SetPageSize(20)
	f := s.Snapshot().Filters
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	s.SetPage(3)
	s.SetIsOpenFilter(domain.Ptr(true))
	f = s.Snapshot().Filters
	assert.Equal(t, 1, f.Page)
	require.NotNil(t, f.IsOpen)
	assert.True(t, *f.IsOpen)

	s.SetIsOpenFilter(nil)
	assert.Nil(t, s.Snapshot().Filters.IsOpen)

	s.UpdateFilters(domain.FilterPatch{Search: domain.Ptr("hall")})
	assert.Equal(t, "hall", s.Snapshot().Filters.Search)

	s.ResetFilters()
	assert.True(t, domain.DefaultFilters().Equal(s.Snapshot().Filters))
}

func TestRoomsStore_FilteredRoomsAndLookup(t *testing.T) {
	api := testutil.NewMockRoomsAPI(
		testutil.NewTestRoom(testutil.WithRoomName("Chess Club"), testutil.WithSlug("chess")),
		testutil.NewTestRoom(testutil.WithRoomName("Poker Night"), testutil.WithSlug("poker")),
	)
	s := NewRoomsStore(api)
	_, err := s.FetchRooms(context.Background(), nil)
	require.NoError(t, err)

	s.SetSearch("  CHESS ")
	snap := s.Snapshot()
	require.Len(t, snap.FilteredRooms, 1)
	assert.Equal(t, "chess", snap.FilteredRooms[0].Slug)
	assert.Len(t, snap.Rooms, 2)

	r, ok := s.RoomBySlug("poker")
	require.True(t, ok)
	_, ok = s.RoomByID(r.ID)
	assert.True(t, ok)
	_, ok = s.RoomBySlug("missing")
	assert.False(t, ok)
}
