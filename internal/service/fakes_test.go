package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

// fakeUserRepo is an in-memory UserRepository mirroring the SQL
// semantics, including the compare-and-swap on rotation.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	r.seq++
	user.ID = r.seq
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Email = user.Email
	stored.FullName = user.FullName
	stored.PasswordHash = user.PasswordHash
	stored.Role = user.Role
	stored.IsActive = user.IsActive
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &token
	user.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id int64, current, next string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || !user.IsActive || user.RefreshToken == nil || *user.RefreshToken != current {
		return pgx.ErrNoRows
	}
	user.RefreshToken = &next
	user.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearRefreshToken(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.RefreshToken = nil
		user.RefreshTokenExpiresAt = nil
	}
	return nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	seq    int64
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = r.seq
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
		}
	}
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int64
	events map[int64]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int64]*domain.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = r.seq
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) ListUpcoming(_ context.Context, _, _ int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.Status == domain.EventStatusPublished && event.StartsAt.After(time.Now()) {
			listed = append(listed, *event)
		}
	}
	return listed, nil
}

func (r *fakeEventRepo) ListByManager(_ context.Context, managerID int64, _, _ int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.CreatedBy == managerID {
			listed = append(listed, *event)
		}
	}
	return listed, nil
}

type regKey struct{ eventID, userID int64 }

type fakeRegistrationRepo struct {
	mu   sync.Mutex
	seq  int64
	regs map[regKey]*domain.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[regKey]*domain.Registration)}
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *domain.Registration, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{reg.EventID, reg.UserID}
	if _, ok := r.regs[key]; ok {
		return uniqueViolation()
	}
	if capacity > 0 {
		count := 0
		for k := range r.regs {
			if k.eventID == reg.EventID {
				count++
			}
		}
		if count >= capacity {
			return repository.ErrEventFull
		}
	}
	r.seq++
	reg.ID = r.seq
	reg.CreatedAt = time.Now()
	clone := *reg
	r.regs[key] = &clone
	return nil
}

func (r *fakeRegistrationRepo) Delete(_ context.Context, eventID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{eventID, userID}
	if _, ok := r.regs[key]; !ok {
		return false, nil
	}
	delete(r.regs, key)
	return true, nil
}

func (r *fakeRegistrationRepo) Exists(_ context.Context, eventID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.regs[regKey{eventID, userID}]
	return ok, nil
}

func (r *fakeRegistrationRepo) CountByEvent(_ context.Context, eventID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.regs {
		if key.eventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegistrationRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Registration, 0)
	for key, reg := range r.regs {
		if key.userID == userID {
			listed = append(listed, *reg)
		}
	}
	return listed, nil
}

func (r *fakeRegistrationRepo) ListByEvent(_ context.Context, eventID int64, _, _ int) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Registration, 0)
	for key, reg := range r.regs {
		if key.eventID == eventID {
			listed = append(listed, *reg)
		}
	}
	return listed, nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	seq   int64
	posts map[int64]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*domain.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	post.ID = r.seq
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *post
	return &clone, nil
}

func (r *fakePostRepo) ListByEvent(_ context.Context, eventID int64, _, _ int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Post, 0)
	for _, post := range r.posts {
		if post.EventID == eventID {
			listed = append(listed, *post)
		}
	}
	return listed, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int64
	comments []domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = r.seq
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID int64, _, _ int) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Comment, 0)
	for _, comment := range r.comments {
		if comment.PostID == postID {
			listed = append(listed, comment)
		}
	}
	return listed, nil
}

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[regKey]struct{}
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[regKey]struct{})}
}

func (r *fakeLikeRepo) Like(_ context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{postID, userID}
	if _, ok := r.likes[key]; ok {
		return false, nil
	}
	r.likes[key] = struct{}{}
	return true, nil
}

func (r *fakeLikeRepo) Unlike(_ context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{postID, userID}
	if _, ok := r.likes[key]; !ok {
		return false, nil
	}
	delete(r.likes, key)
	return true, nil
}

func (r *fakeLikeRepo) Count(_ context.Context, postID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.likes {
		if key.eventID == postID {
			count++
		}
	}
	return count, nil
}

// fakeCache records cache traffic for assertions.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if payload, err := json.Marshal(value); err == nil {
		c.entries[key] = payload
	}
}

func (c *fakeCache) Invalidate(_ context.Context, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.invalidated++
}
