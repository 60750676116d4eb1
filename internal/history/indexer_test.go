package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/repository"
	"flow-chat/backend/internal/repository/mocks"
)

var user = identity.Identity{UserID: "u1"}

func entry(id, sessionID string, ts int64) *model.HistoryEntry {
	return &model.HistoryEntry{ID: id, SessionID: sessionID, ChatType: model.ChatTypeText, Timestamp: time.UnixMilli(ts).UTC()}
}

func TestIndexer_List(t *testing.T) {
	t.Run("Passes the filter through", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		filter := model.HistoryFilter{ChatType: model.ChatTypeImage, Limit: 5, Offset: 10}
		repo.On("ListHistory", mock.Anything, "u1", filter).Return([]*model.HistoryEntry{entry("a", "s", 1)}, nil).Once()

		got := NewIndexer(repo).List(context.Background(), user, filter)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	t.Run("Failure yields empty list", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		repo.On("ListHistory", mock.Anything, "u1", mock.Anything).Return(nil, errors.New("boom")).Once()

		got := NewIndexer(repo).List(context.Background(), user, model.HistoryFilter{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Anonymous never hits the store", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		assert.Empty(t, NewIndexer(repo).List(context.Background(), identity.Anonymous, model.HistoryFilter{}))
		assert.Nil(t, NewIndexer(repo).Stats(context.Background(), identity.Anonymous))
	})
}

func TestIndexer_SessionHistory(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("ListHistory", mock.Anything, "u1", model.HistoryFilter{SessionID: "s1"}).Return([]*model.HistoryEntry{}, nil).Once()

	assert.Empty(t, NewIndexer(repo).SessionHistory(context.Background(), user, "s1"))
}

func TestIndexer_Search(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("SearchHistory", mock.Anything, "u1", "cat", model.ChatTypeImage).Return([]*model.HistoryEntry{entry("a", "s", 1)}, nil).Once()

	x := NewIndexer(repo)
	assert.Len(t, x.Search(context.Background(), user, "  cat ", model.ChatTypeImage), 1)
	assert.Empty(t, x.Search(context.Background(), user, "   ", ""), "blank terms match nothing")
}

func TestIndexer_Entry(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("GetHistoryEntry", mock.Anything, "u1", "a").Return(entry("a", "s", 1), nil).Once()
	repo.On("GetHistoryEntry", mock.Anything, "u1", "b").Return(nil, repository.ErrNotFound).Once()

	x := NewIndexer(repo)
	assert.Equal(t, "a", x.Entry(context.Background(), user, "a").ID)
	assert.Nil(t, x.Entry(context.Background(), user, "b"))
}

func TestIndexer_Stats(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("HistoryStats", mock.Anything, "u1").Return(&model.HistoryStats{TotalChats: 3, TotalSessions: 2}, nil).Once()
	repo.On("HistoryStats", mock.Anything, "u1").Return(nil, errors.New("boom")).Once()

	x := NewIndexer(repo)
	assert.Equal(t, 3, x.Stats(context.Background(), user).TotalChats)
	assert.Nil(t, x.Stats(context.Background(), user))
}

func TestIndexer_RecentSessions(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("ListHistory", mock.Anything, "u1", model.HistoryFilter{Limit: 10}).Return([]*model.HistoryEntry{
		entry("1", "c", 9), entry("2", "c", 8), entry("3", "", 7), entry("4", "b", 6), entry("5", "a", 5),
	}, nil).Once()

	assert.Equal(t, []string{"c", "b"}, NewIndexer(repo).RecentSessions(context.Background(), user, 2))
}
