package service

import (
	"sync"
	"testing"
	"time"

	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/testutil"
	"care_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ForumEvent
}

func (p *recordingPublisher) Publish(event ForumEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newForumService(t *testing.T) (*ForumService, *recordingPublisher, *model.User) {
	db := testutil.NewTestDB(t)
	pub := &recordingPublisher{}
	s := NewForumService(repository.NewForumRepository(db), repository.NewModuleRepository(db), pub)
	clock := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s, pub, testutil.CreateUser(t, db, "olga", model.Trainee)
}

func TestForumThreadAndReplies(t *testing.T) {
	s, pub, user := newForumService(t)

	thread, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Night shifts", Content: "Tips?"})
	require.NoError(t, err)

	top, err := s.Reply(user.ID, thread.ID, ReplyRequest{Content: "Hydrate"})
	require.NoError(t, err)
	assert.Equal(t, 0, top.Depth)

	child, err := s.Reply(user.ID, thread.ID, ReplyRequest{ParentID: &top.ID, Content: "Agreed"})
	require.NoError(t, err)
	assert.Equal(t, 1, child.Depth)

	second, err := s.Reply(user.ID, thread.ID, ReplyRequest{Content: "Sleep well"})
	require.NoError(t, err)

	detail, err := s.GetThread(thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.ReplyCount)
	require.Len(t, detail.Replies, 2)
	assert.Equal(t, top.ID, detail.Replies[0].ID)
	assert.Equal(t, second.ID, detail.Replies[1].ID)
	require.Len(t, detail.Replies[0].Children, 1)
	assert.Equal(t, child.ID, detail.Replies[0].Children[0].ID)
	assert.True(t, detail.LastActivityAt.After(thread.LastActivityAt))

	require.Len(t, pub.events, 3)
	assert.Equal(t, EventReplyCreated, pub.events[0].Type)
	assert.Equal(t, thread.ID, pub.events[0].ThreadID)
}

func TestForumReplyDepthCap(t *testing.T) {
	s, _, user := newForumService(t)
	thread, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Deep", Content: "x"})
	require.NoError(t, err)

	parent, err := s.Reply(user.ID, thread.ID, ReplyRequest{Content: "level 0"})
	require.NoError(t, err)
	for depth := 1; depth <= model.MaxReplyDepth; depth++ {
		parent, err = s.Reply(user.ID, thread.ID, ReplyRequest{ParentID: &parent.ID, Content: "deeper"})
		require.NoError(t, err)
		assert.Equal(t, depth, parent.Depth)
	}

	_, err = s.Reply(user.ID, thread.ID, ReplyRequest{ParentID: &parent.ID, Content: "too deep"})
	assert.True(t, util.IsValidation(err))
}

func TestForumReplyRejected(t *testing.T) {
	s, _, user := newForumService(t)
	a, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "A", Content: "x"})
	require.NoError(t, err)
	b, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "B", Content: "x"})
	require.NoError(t, err)
	replyA, err := s.Reply(user.ID, a.ID, ReplyRequest{Content: "on A"})
	require.NoError(t, err)

	_, err = s.Reply(user.ID, b.ID, ReplyRequest{ParentID: &replyA.ID, Content: "cross"})
	assert.True(t, util.IsValidation(err))

	missing := model.GenerateUUID()
	_, err = s.Reply(user.ID, a.ID, ReplyRequest{ParentID: &missing, Content: "x"})
	assert.True(t, util.IsNotFound(err))

	_, err = s.Reply(user.ID, model.GenerateUUID(), ReplyRequest{Content: "x"})
	assert.True(t, util.IsNotFound(err))

	_, err = s.Reply(user.ID, a.ID, ReplyRequest{Content: "  "})
	assert.True(t, util.IsValidation(err))

	moduleID := uint(404)
	_, err = s.CreateThread(user.ID, CreateThreadRequest{ModuleID: &moduleID, Title: "T", Content: "x"})
	assert.True(t, util.IsNotFound(err))
}

func TestForumToggleLike(t *testing.T) {
	s, pub, user := newForumService(t)
	thread, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Likes", Content: "x"})
	require.NoError(t, err)
	reply, err := s.Reply(user.ID, thread.ID, ReplyRequest{Content: "r"})
	require.NoError(t, err)

	res, err := s.ToggleLike(user.ID, model.ForumThreadContent, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true, Likes: 1}, res)

	res, err = s.ToggleLike(user.ID, model.ForumThreadContent, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: false, Likes: 0}, res)

	res, err = s.ToggleLike(user.ID, model.ForumReplyContent, reply.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, EventLikeUpdated, last.Type)
	assert.Equal(t, thread.ID, last.ThreadID)

	_, err = s.ToggleLike(user.ID, "poll", thread.ID)
	assert.True(t, util.IsValidation(err))
	_, err = s.ToggleLike(user.ID, model.ForumReplyContent, model.GenerateUUID())
	assert.True(t, util.IsNotFound(err))
}

// 同一点赞在本事务写入前已被另一请求写入
func TestForumToggleLikeConcurrentInsert(t *testing.T) {
	s, pub, user := newForumService(t)
	thread, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Race", Content: "x"})
	require.NoError(t, err)
	published := len(pub.events)

	db := s.Repo.DB
	injected := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_like", func(tx *gorm.DB) {
		if tx.Statement.Table != "forum_likes" || injected {
			return
		}
		injected = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO forum_likes (created_at, user_id, content_type, content_id) VALUES (?, ?, ?, ?)",
			time.Now(), user.ID, model.ForumThreadContent, thread.ID)
	}))

	_, err = s.ToggleLike(user.ID, model.ForumThreadContent, thread.ID)
	require.True(t, injected)
	var conflict *util.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, conflict.Retriable)
	assert.Len(t, pub.events, published)

	var stored model.ForumThread
	require.NoError(t, db.First(&stored, "id = ?", thread.ID).Error)
	assert.Equal(t, 0, stored.Likes)
}

func TestForumListThreadsOrder(t *testing.T) {
	s, _, user := newForumService(t)
	older, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Older", Content: "x"})
	require.NoError(t, err)
	newer, err := s.CreateThread(user.ID, CreateThreadRequest{Title: "Newer", Content: "x"})
	require.NoError(t, err)

	page, err := s.ListThreads(nil, 1, 10)
	require.NoError(t, err)
	threads := page.List.([]model.ForumThread)
	require.Len(t, threads, 2)
	assert.Equal(t, newer.ID, threads[0].ID)

	// 回复会把旧帖顶到前面
	_, err = s.Reply(user.ID, older.ID, ReplyRequest{Content: "bump"})
	require.NoError(t, err)
	page, err = s.ListThreads(nil, 1, 10)
	require.NoError(t, err)
	threads = page.List.([]model.ForumThread)
	assert.Equal(t, older.ID, threads[0].ID)
	assert.Equal(t, int64(2), page.Total)
}

func TestBuildReplyTreeOrphans(t *testing.T) {
	missing := "gone"
	replies := []model.ForumReply{
		{UUIDBase: model.UUIDBase{ID: "a"}},
		{UUIDBase: model.UUIDBase{ID: "b"}, ParentID: &missing},
	}
	tree := BuildReplyTree(replies)
	require.Len(t, tree, 2)
	assert.Empty(t, tree[0].Children)
}
