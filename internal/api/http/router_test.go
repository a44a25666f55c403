package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/api/http/handlers"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/observability"
	"github.com/spec-kit/volunteer-hub/internal/persistence"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	"github.com/spec-kit/volunteer-hub/internal/service"
)

// In-memory repositories backing a fully wired app for route tests.

type memUserRepo struct {
	users map[int64]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error   { return nil }
func (r *memUserRepo) Update(_ context.Context, user *domain.User) error   { return nil }
func (r *memUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *memUserRepo) SetRefreshToken(context.Context, int64, string, time.Time) error { return nil }
func (r *memUserRepo) RotateRefreshToken(context.Context, int64, string, string, time.Time) error {
	return nil
}
func (r *memUserRepo) ClearRefreshToken(context.Context, int64) error { return nil }

type memResetRepo struct{}

func (memResetRepo) Create(context.Context, *repository.PasswordResetToken) error { return nil }
func (memResetRepo) GetByToken(context.Context, string) (*repository.PasswordResetToken, error) {
	return nil, pgx.ErrNoRows
}
func (memResetRepo) MarkUsed(context.Context, int64) error { return nil }

type memEventRepo struct {
	mu     sync.Mutex
	seq    int64
	events map[int64]*domain.Event
}

func (r *memEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = r.seq
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *memEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (r *memEventRepo) ListUpcoming(context.Context, int, int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Event, 0)
	for _, event := range r.events {
		if event.Status == domain.EventStatusPublished {
			listed = append(listed, *event)
		}
	}
	return listed, nil
}

func (r *memEventRepo) ListByManager(_ context.Context, managerID int64, _, _ int) ([]domain.Event, error) {
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

type memRegRepo struct {
	mu   sync.Mutex
	seq  int64
	regs map[[2]int64]*domain.Registration
}

func (r *memRegRepo) Create(_ context.Context, reg *domain.Registration, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{reg.EventID, reg.UserID}
	if _, ok := r.regs[key]; ok {
		return repository.ErrEventFull
	}
	if capacity > 0 {
		count := 0
		for k := range r.regs {
			if k[0] == reg.EventID {
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

func (r *memRegRepo) Delete(_ context.Context, eventID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{eventID, userID}
	if _, ok := r.regs[key]; !ok {
		return false, nil
	}
	delete(r.regs, key)
	return true, nil
}

func (r *memRegRepo) Exists(_ context.Context, eventID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.regs[[2]int64{eventID, userID}]
	return ok, nil
}

func (r *memRegRepo) CountByEvent(_ context.Context, eventID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for k := range r.regs {
		if k[0] == eventID {
			count++
		}
	}
	return count, nil
}

func (r *memRegRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Registration, 0)
	for k, reg := range r.regs {
		if k[1] == userID {
			listed = append(listed, *reg)
		}
	}
	return listed, nil
}

func (r *memRegRepo) ListByEvent(_ context.Context, eventID int64, _, _ int) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listed := make([]domain.Registration, 0)
	for k, reg := range r.regs {
		if k[0] == eventID {
			listed = append(listed, *reg)
		}
	}
	return listed, nil
}

type memPostRepo struct{}

func (memPostRepo) Create(context.Context, *domain.Post) error { return nil }
func (memPostRepo) GetByID(context.Context, int64) (*domain.Post, error) {
	return nil, pgx.ErrNoRows
}
func (memPostRepo) ListByEvent(context.Context, int64, int, int) ([]domain.Post, error) {
	return []domain.Post{}, nil
}

type memCommentRepo struct{}

func (memCommentRepo) Create(context.Context, *domain.Comment) error { return nil }
func (memCommentRepo) ListByPost(context.Context, int64, int, int) ([]domain.Comment, error) {
	return []domain.Comment{}, nil
}

type memLikeRepo struct{}

func (memLikeRepo) Like(context.Context, int64, int64) (bool, error)   { return true, nil }
func (memLikeRepo) Unlike(context.Context, int64, int64) (bool, error) { return true, nil }
func (memLikeRepo) Count(context.Context, int64) (int, error)          { return 0, nil }

const (
	managerID   = int64(1)
	volunteerID = int64(2)
)

type routerFixture struct {
	app    *fiber.App
	issuer *auth.TokenIssuer
	users  *memUserRepo
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	users := &memUserRepo{users: map[int64]*domain.User{
		managerID:   {ID: managerID, Email: "manager@example.com", FullName: "Morgan", Role: domain.RoleEventManager, IsActive: true},
		volunteerID: {ID: volunteerID, Email: "vol@example.com", FullName: "Val", Role: domain.RoleVolunteer, IsActive: true},
	}}
	eventsRepo := &memEventRepo{
		seq: 1,
		events: map[int64]*domain.Event{
			1: {
				ID:        1,
				Title:     "Beach cleanup",
				StartsAt:  time.Now().Add(48 * time.Hour),
				EndsAt:    time.Now().Add(52 * time.Hour),
				Capacity:  5,
				Status:    domain.EventStatusPublished,
				CreatedBy: managerID,
			},
		},
	}
	regs := &memRegRepo{regs: make(map[[2]int64]*domain.Registration)}

	authService := service.NewAuthService(config.AuthConfig{
		AccessSecret:          "route-access-secret",
		RefreshSecret:         "route-refresh-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
		BcryptCost:            4,
	}, service.AuthDependencies{UserRepo: users, PasswordResetRepo: memResetRepo{}})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:        eventsRepo,
		RegistrationRepo: regs,
	})
	postService := service.NewPostService(service.PostDependencies{
		PostRepo:    memPostRepo{},
		CommentRepo: memCommentRepo{},
		LikeRepo:    memLikeRepo{},
		EventRepo:   eventsRepo,
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:     handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:       handlers.NewAuthHandler(authService),
		Events:     handlers.NewEventsHandler(eventService),
		Posts:      handlers.NewPostsHandler(postService),
		Middleware: auth.NewMiddleware(authService.TokenIssuer(), users),
	})

	return &routerFixture{app: app, issuer: authService.TokenIssuer(), users: users}
}

func (f *routerFixture) bearer(t *testing.T, id int64) string {
	t.Helper()
	user := f.users.users[id]
	pair, err := f.issuer.IssuePair(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func (f *routerFixture) request(t *testing.T, method, target, token, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestVolunteerManagesOwnRegistration(t *testing.T) {
	f := newRouterFixture(t)
	token := f.bearer(t, volunteerID)

	resp := f.request(t, http.MethodPost, "/events/1/registrations", token, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/me/registrations", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodDelete, "/events/1/registrations", token, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouteGating(t *testing.T) {
	f := newRouterFixture(t)
	volunteer := f.bearer(t, volunteerID)
	manager := f.bearer(t, managerID)

	eventBody := `{"title":"Park day","starts_at":"2030-05-01T10:00:00Z","ends_at":"2030-05-01T14:00:00Z","capacity":10}`

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{name: "public listing needs no token", method: http.MethodGet, target: "/events", want: http.StatusOK},
		{name: "public event detail", method: http.MethodGet, target: "/events/1", want: http.StatusOK},
		{name: "anonymous registration rejected", method: http.MethodPost, target: "/events/1/registrations", want: http.StatusUnauthorized},
		{name: "volunteer can register", method: http.MethodPost, target: "/events/1/registrations", token: volunteer, want: http.StatusCreated},
		{name: "volunteer cannot create events", method: http.MethodPost, target: "/events", token: volunteer, body: eventBody, want: http.StatusForbidden},
		{name: "volunteer cannot publish", method: http.MethodPost, target: "/events/1/publish", token: volunteer, want: http.StatusForbidden},
		{name: "volunteer cannot read roster", method: http.MethodGet, target: "/events/1/registrations", token: volunteer, want: http.StatusForbidden},
		{name: "volunteer cannot list managed", method: http.MethodGet, target: "/events/managed", token: volunteer, want: http.StatusForbidden},
		{name: "manager can create events", method: http.MethodPost, target: "/events", token: manager, body: eventBody, want: http.StatusCreated},
		{name: "manager can read roster", method: http.MethodGet, target: "/events/1/registrations", token: manager, want: http.StatusOK},
		{name: "manager can list managed", method: http.MethodGet, target: "/events/managed", token: manager, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.request(t, tt.method, tt.target, tt.token, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
