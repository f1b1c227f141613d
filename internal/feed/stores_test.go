package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/porchlight-social/porchlight/internal/models"
)

// memStore is an in-memory stand-in for the repositories, implementing
// every store slice the feed components consume.
type memStore struct {
	mu       sync.Mutex
	posts    []*models.Post
	echoes   []*models.Echo
	likes    []*models.Like
	replies  []*models.Reply
	profiles map[int64]*models.Profile

	nextPostID  int64
	nextReplyID int64

	// failOn aborts the named operation with errStoreDown.
	failOn map[string]bool
}

type storeErr string

func (e storeErr) Error() string { return string(e) }

const errStoreDown = storeErr("store down")

func newMemStore() *memStore {
	return &memStore{
		profiles:    make(map[int64]*models.Profile),
		nextPostID:  1,
		nextReplyID: 1,
		failOn:      make(map[string]bool),
	}
}

func (s *memStore) fail(op string) error {
	if s.failOn[op] {
		return errStoreDown
	}
	return nil
}

func (s *memStore) addProfile(id int64, displayName, handle string) *models.Profile {
	p := &models.Profile{ID: id, DisplayName: displayName}
	if handle != "" {
		p.Handle.String, p.Handle.Valid = handle, true
	}
	s.profiles[id] = p
	return p
}

func (s *memStore) addPost(authorID int64, body string, at time.Time) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Post{ID: s.nextPostID, AuthorID: authorID, Body: body, CreatedAt: at}
	s.nextPostID++
	s.posts = append(s.posts, p)
	return p
}

func (s *memStore) addEcho(postID, userID int64, at time.Time) *models.Echo {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.Echo{PostID: postID, UserID: userID, CreatedAt: at}
	s.echoes = append(s.echoes, e)
	return e
}

func (s *memStore) addLike(postID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = append(s.likes, &models.Like{PostID: postID, UserID: userID})
}

// PostStore / PostWriteStore / PostLookup

func (s *memStore) ListRecent(_ context.Context, limit int) ([]*models.Post, error) {
	if err := s.fail("ListRecentPosts"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Post, len(s.posts))
	copy(out, s.posts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) GetByIDs(_ context.Context, ids []int64) ([]*models.Post, error) {
	if err := s.fail("GetPostsByIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Post
	for _, p := range s.posts {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if err := s.fail("GetPostByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, post *models.Post) error {
	if err := s.fail("CreatePost"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.nextPostID
	s.nextPostID++
	s.posts = append(s.posts, post)
	return nil
}

// echoStore / likeStore adapters: the composer wants distinct
// interfaces for echoes and likes, so memStore hands out small views.

type echoView struct{ s *memStore }

func (v echoView) ListRecent(_ context.Context, limit int) ([]*models.Echo, error) {
	if err := v.s.fail("ListRecentEchoes"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]*models.Echo, len(v.s.echoes))
	copy(out, v.s.echoes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v echoView) CountByPostIDs(_ context.Context, postIDs []int64) (map[int64]int64, error) {
	if err := v.s.fail("CountEchoes"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, e := range v.s.echoes {
		for _, id := range postIDs {
			if e.PostID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (v echoView) PostIDsEchoedBy(_ context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if err := v.s.fail("ViewerEchoes"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	member := make(map[int64]bool)
	for _, e := range v.s.echoes {
		if e.UserID != userID {
			continue
		}
		for _, id := range postIDs {
			if e.PostID == id {
				member[id] = true
			}
		}
	}
	return member, nil
}

func (v echoView) Create(_ context.Context, echo *models.Echo) (bool, error) {
	if err := v.s.fail("CreateEcho"); err != nil {
		return false, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, e := range v.s.echoes {
		if e.PostID == echo.PostID && e.UserID == echo.UserID {
			return false, nil
		}
	}
	v.s.echoes = append(v.s.echoes, echo)
	return true, nil
}

func (v echoView) Delete(_ context.Context, postID, userID int64) (bool, error) {
	if err := v.s.fail("DeleteEcho"); err != nil {
		return false, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i, e := range v.s.echoes {
		if e.PostID == postID && e.UserID == userID {
			v.s.echoes = append(v.s.echoes[:i], v.s.echoes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type likeView struct{ s *memStore }

func (v likeView) CountByPostIDs(_ context.Context, postIDs []int64) (map[int64]int64, error) {
	if err := v.s.fail("CountLikes"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, l := range v.s.likes {
		for _, id := range postIDs {
			if l.PostID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (v likeView) PostIDsLikedBy(_ context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if err := v.s.fail("ViewerLikes"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	member := make(map[int64]bool)
	for _, l := range v.s.likes {
		if l.UserID != userID {
			continue
		}
		for _, id := range postIDs {
			if l.PostID == id {
				member[id] = true
			}
		}
	}
	return member, nil
}

func (v likeView) Create(_ context.Context, like *models.Like) (bool, error) {
	if err := v.s.fail("CreateLike"); err != nil {
		return false, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, l := range v.s.likes {
		if l.PostID == like.PostID && l.UserID == like.UserID {
			return false, nil
		}
	}
	v.s.likes = append(v.s.likes, like)
	return true, nil
}

func (v likeView) Delete(_ context.Context, postID, userID int64) (bool, error) {
	if err := v.s.fail("DeleteLike"); err != nil {
		return false, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i, l := range v.s.likes {
		if l.PostID == postID && l.UserID == userID {
			v.s.likes = append(v.s.likes[:i], v.s.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type replyView2 struct{ s *memStore }

func (v replyView2) CountByPostIDs(_ context.Context, postIDs []int64) (map[int64]int64, error) {
	if err := v.s.fail("CountReplies"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, r := range v.s.replies {
		for _, id := range postIDs {
			if r.PostID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (v replyView2) ListByPostID(_ context.Context, postID int64) ([]*models.Reply, error) {
	if err := v.s.fail("ListReplies"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*models.Reply
	for _, r := range v.s.replies {
		if r.PostID == postID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (v replyView2) Create(_ context.Context, reply *models.Reply) error {
	if err := v.s.fail("CreateReply"); err != nil {
		return err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	reply.ID = v.s.nextReplyID
	v.s.nextReplyID++
	v.s.replies = append(v.s.replies, reply)
	return nil
}

type profileView struct{ s *memStore }

func (v profileView) GetByIDs(_ context.Context, ids []int64) ([]*models.Profile, error) {
	if err := v.s.fail("GetProfiles"); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*models.Profile
	for _, id := range ids {
		if p, ok := v.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// notifStore collects notifications written by fanout during tests.
type notifStore struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (s *notifStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, n)
	return nil
}

func (s *notifStore) all() []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Notification, len(s.created))
	copy(out, s.created)
	return out
}

func newTestComposer(s *memStore, window int) *Composer {
	return NewComposer(s, echoView{s}, likeView{s}, replyView2{s}, profileView{s}, window)
}
