package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/config"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/internal/shared/query"
	"catalog-backend/pkg/container"

	authorHandler "catalog-backend/internal/domains/author/handler"
	authorModel "catalog-backend/internal/domains/author/model"
	authorService "catalog-backend/internal/domains/author/service"

	bookHandler "catalog-backend/internal/domains/book/handler"
	bookModel "catalog-backend/internal/domains/book/model"
	bookService "catalog-backend/internal/domains/book/service"

	userHandler "catalog-backend/internal/domains/user/handler"
	userModel "catalog-backend/internal/domains/user/model"
	userService "catalog-backend/internal/domains/user/service"
)

// ========================================
// IN-MEMORY STORE
// ========================================

// memStore giữ authors, books, users, sessions trong một mutex
// để mô phỏng ràng buộc FK giữa các bảng
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	authors  map[int64]authorModel.Author
	books    map[int64]bookModel.Book
	users    map[string]userModel.User
	sessions map[string]string // token hash -> username
}

func newMemStore() *memStore {
	return &memStore{
		authors:  map[int64]authorModel.Author{},
		books:    map[int64]bookModel.Book{},
		users:    map[string]userModel.User{},
		sessions: map[string]string{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func matches(fields map[string]any, filter query.Filter) bool {
	for _, cond := range filter.Conditions {
		if fmt.Sprint(fields[cond.Column]) != fmt.Sprint(cond.Value) {
			return false
		}
	}
	return true
}

type memAuthors struct{ *memStore }

func (r memAuthors) List(_ context.Context, filter query.Filter) ([]authorModel.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []authorModel.Author{}
	for _, a := range r.authors {
		if matches(map[string]any{"id": a.ID, "name": a.Name, "bio": a.Bio}, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAuthors) GetByID(_ context.Context, id int64) (*authorModel.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.authors[id]
	if !ok {
		return nil, authorModel.ErrAuthorNotFound
	}
	return &a, nil
}

func (r memAuthors) Create(_ context.Context, req *authorModel.NewAuthor) (*authorModel.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := authorModel.Author{ID: r.id(), Name: req.Name, Bio: req.Bio}
	r.authors[a.ID] = a
	return &a, nil
}

func (r memAuthors) Update(_ context.Context, a *authorModel.Author) (*authorModel.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.authors[a.ID]; !ok {
		return nil, authorModel.ErrAuthorNotFound
	}
	r.authors[a.ID] = *a
	return a, nil
}

func (r memAuthors) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.authors[id]; !ok {
		return authorModel.ErrAuthorNotFound
	}
	for _, b := range r.books {
		if b.AuthorID == id {
			return authorModel.ErrAuthorHasBooks
		}
	}
	delete(r.authors, id)
	return nil
}

type memBooks struct{ *memStore }

func (r memBooks) List(_ context.Context, filter query.Filter) ([]bookModel.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []bookModel.Book{}
	for _, b := range r.books {
		fields := map[string]any{
			"id": b.ID, "author_id": b.AuthorID, "title": b.Title,
			"pub_year": b.PubYear, "genre": b.Genre,
		}
		if matches(fields, filter) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memBooks) GetByID(_ context.Context, id int64) (*bookModel.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, bookModel.ErrBookNotFound
	}
	return &b, nil
}

func (r memBooks) Create(_ context.Context, req *bookModel.NewBook) (*bookModel.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.authors[req.AuthorID]; !ok {
		return nil, bookModel.ErrAuthorNotFound
	}
	b := bookModel.Book{
		ID: r.id(), AuthorID: req.AuthorID, Title: req.Title,
		PubYear: req.PubYear, Genre: req.Genre,
	}
	r.books[b.ID] = b
	return &b, nil
}

func (r memBooks) Update(_ context.Context, b *bookModel.Book) (*bookModel.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; !ok {
		return nil, bookModel.ErrBookNotFound
	}
	if _, ok := r.authors[b.AuthorID]; !ok {
		return nil, bookModel.ErrAuthorNotFound
	}
	r.books[b.ID] = *b
	return b, nil
}

func (r memBooks) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return bookModel.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

type memUsers struct{ *memStore }

func (r memUsers) CreateUser(_ context.Context, username, passwordHash string) (*userModel.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return nil, userModel.ErrUsernameTaken
	}
	u := userModel.User{ID: r.id(), Username: username, PasswordHash: passwordHash}
	r.users[username] = u
	return &u, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*userModel.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, userModel.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[username]
	return ok, nil
}

type memSessions struct{ *memStore }

func (r memSessions) CreateSession(_ context.Context, username, tokenHash string) (*userModel.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[tokenHash] = username
	return &userModel.Session{ID: r.id(), Username: username, TokenHash: tokenHash, CreatedAt: time.Now()}, nil
}

func (r memSessions) FindUsername(_ context.Context, tokenHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.sessions[tokenHash]
	if !ok {
		return "", userModel.ErrSessionNotFound
	}
	return username, nil
}

func (r memSessions) DeleteSession(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[tokenHash]
	delete(r.sessions, tokenHash)
	return ok, nil
}

// ========================================
// TEST HARNESS
// ========================================

type testApp struct {
	router *gin.Engine
	store  *memStore
	cookie *http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	cfg := &config.Config{
		App:  config.AppConfig{Environment: "test", Port: "0"},
		Auth: config.AuthConfig{CookieName: "token", CookieSecure: true},
	}

	users := userService.NewUserService(
		memUsers{store},
		memSessions{store},
		userService.NewArgon2idHasher(userService.Argon2Params{Memory: 1024, Time: 1, Threads: 1}),
	)
	authors := authorService.NewAuthorService(memAuthors{store})
	books := bookService.NewBookService(memBooks{store})

	registry := prometheus.NewRegistry()
	c := &container.Container{
		Config:        cfg,
		Registry:      registry,
		Metrics:       middleware.NewHTTPMetrics(registry),
		AuthorService: authors,
		BookService:   books,
		UserService:   users,
		AuthorHandler: authorHandler.NewAuthorHandler(authors),
		BookHandler:   bookHandler.NewBookHandler(books),
		UserHandler:   userHandler.NewUserHandler(users, userHandler.CookieConfig{Name: "token", Secure: true}),
	}

	return &testApp{router: SetupRouter(c), store: store}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login đăng ký + đăng nhập alice, giữ cookie cho các request sau
func (a *testApp) login(t *testing.T) {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/signup", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/login", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, ck := range w.Result().Cookies() {
		if ck.Name == "token" {
			a.cookie = ck
		}
	}
	require.NotNil(t, a.cookie, "login must set the session cookie")
}

func (a *testApp) createAuthor(t *testing.T, name string) int64 {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/authors", fmt.Sprintf(`{"name":%q,"bio":"bio"}`, name))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var author authorModel.Author
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	return author.ID
}

func (a *testApp) createBook(t *testing.T, authorID int64, title string, year int, genre string) bookModel.Book {
	t.Helper()

	body := fmt.Sprintf(`{"author_id":%d,"title":%q,"pub_year":%d,"genre":%q}`, authorID, title, year, genre)
	w := a.do(t, http.MethodPost, "/api/books", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var book bookModel.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

// ========================================
// SCENARIOS
// ========================================

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/logincheck", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/books", `{"author_id":1,"title":"T","pub_year":2000,"genre":"fiction"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"kind":"unauthorized","detail":"Unauthorized"}`, w.Body.String())

	app.login(t)

	w = app.do(t, http.MethodPost, "/api/signup", `{"username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"validation","detail":"Username already exists"}`, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"validation","detail":"Invalid username or password"}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/logincheck", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice"}`, w.Body.String())

	authorID := app.createAuthor(t, "Ursula")
	app.createBook(t, authorID, "Earthsea", 1968, "fantasy")

	w = app.do(t, http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, w.Body.String())

	// Token cũ không còn hợp lệ sau logout
	w = app.do(t, http.MethodGet, "/api/logincheck", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/authors/%d", authorID), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	authorID := app.createAuthor(t, "Ursula")
	created := app.createBook(t, authorID, "Earthsea", 1968, "fantasy")

	w := app.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var fetched bookModel.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
	assert.Equal(t, bookModel.Book{
		ID: created.ID, AuthorID: authorID, Title: "Earthsea", PubYear: 1968, Genre: bookModel.GenreFantasy,
	}, fetched)
}

func TestBookWithUnknownAuthor(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodPost, "/api/books", `{"author_id":999,"title":"T","pub_year":2000,"genre":"fiction"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"integrity","detail":"referenced author does not exist"}`, w.Body.String())
	assert.Empty(t, app.store.books)
}

func TestDeleteAuthor(t *testing.T) {
	t.Run("without books", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t)
		id := app.createAuthor(t, "Lonely")

		w := app.do(t, http.MethodDelete, fmt.Sprintf("/api/authors/%d", id), "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		w = app.do(t, http.MethodGet, fmt.Sprintf("/api/authors/%d", id), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"kind":"not_found","detail":"No author was found with ID: %d"}`, id), w.Body.String())
	})

	t.Run("with books", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t)
		id := app.createAuthor(t, "Busy")
		book := app.createBook(t, id, "One", 2001, "mystery")

		w := app.do(t, http.MethodDelete, fmt.Sprintf("/api/authors/%d", id), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t,
			`{"kind":"integrity","detail":"Author still has books associated, please delete those first"}`,
			w.Body.String())

		assert.Contains(t, app.store.authors, id)
		assert.Contains(t, app.store.books, book.ID)
	})
}

func TestListBooksWithFilters(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	first := app.createAuthor(t, "First")
	second := app.createAuthor(t, "Second")

	app.createBook(t, first, "A", 2009, "fantasy")
	want := app.createBook(t, second, "B", 2009, "fantasy")
	app.createBook(t, second, "C", 2010, "fantasy")
	app.createBook(t, second, "D", 2009, "romance")

	w := app.do(t, http.MethodGet, fmt.Sprintf("/api/books?genre=fantasy&author_id=%d&pub_year=2009", second), "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []bookModel.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []bookModel.Book{want}, got)

	w = app.do(t, http.MethodGet, "/api/books?name=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"validation","detail":["\"name\": unknown filter attribute"]}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/books?pub_year=99999999999", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"validation","detail":["\"pub_year\": must be between -2147483648 and 2147483647"]}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/books?title=%FF", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"kind":"validation","detail":["\"title\": must be valid UTF-8"]}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/books?genre=nothing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMalformedBodiesLeaveStoreUntouched(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	authorID := app.createAuthor(t, "Ursula")

	bodies := map[string]string{
		"wrong field name": fmt.Sprintf(`{"author":%d,"title":"T","pub_year":2000,"genre":"fiction"}`, authorID),
		"wrong type":       fmt.Sprintf(`{"author_id":%d,"title":"T","pub_year":"2000","genre":"fiction"}`, authorID),
		"bad enum":         fmt.Sprintf(`{"author_id":%d,"title":"T","pub_year":2000,"genre":"poetry"}`, authorID),
		"pub_year too big": fmt.Sprintf(`{"author_id":%d,"title":"T","pub_year":99999999999,"genre":"fiction"}`, authorID),
		"NUL in title":     fmt.Sprintf(`{"author_id":%d,"title":"a\u0000b","pub_year":2000,"genre":"fiction"}`, authorID),
		"not an object":    `[1,2,3]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/books", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, "validation", envelope["kind"])
		})
	}

	assert.Empty(t, app.store.books)
}

func TestUpdateBook(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	authorID := app.createAuthor(t, "Ursula")
	book := app.createBook(t, authorID, "Earthsea", 1968, "fantasy")

	body := fmt.Sprintf(`{"id":%d,"author_id":%d,"title":"A Wizard of Earthsea","pub_year":1968,"genre":"fantasy"}`, book.ID, authorID)
	w := app.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", book.ID), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "A Wizard of Earthsea", app.store.books[book.ID].Title)

	w = app.do(t, http.MethodPut, "/api/books/999", strings.Replace(body, fmt.Sprintf(`"id":%d`, book.ID), `"id":999`, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", book.ID+100), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no database wired in tests")

	w = app.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `catalog_http_requests_total{method="GET",route="/api/health",status="503"} 1`)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubDB struct {
	stubPinger
	stats *database.PoolStats
}

func (d stubDB) Stats() (*database.PoolStats, error) {
	if d.stats == nil {
		return nil, errors.New("database pool is not initialized")
	}
	return d.stats, nil
}

func TestHealthCheckHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pool := &database.PoolStats{AcquiredConns: 1, IdleConns: 3, TotalConns: 4, MaxConns: 25}

	tests := []struct {
		name       string
		db         poolChecker
		cache      pinger
		wantCode   int
		wantStatus string
		wantPool   bool
	}{
		{"all up", stubDB{stats: pool}, stubPinger{}, http.StatusOK, "ok", true},
		{"redis down", stubDB{stats: pool}, stubPinger{err: errors.New("refused")}, http.StatusOK, "degraded", true},
		{"db down", stubDB{stubPinger: stubPinger{err: errors.New("refused")}}, stubPinger{}, http.StatusServiceUnavailable, "unavailable", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", healthCheckHandler(tt.db, tt.cache))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)

			var body struct {
				Status string              `json:"status"`
				Pool   *database.PoolStats `json:"pool"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			if tt.wantPool {
				assert.Equal(t, pool, body.Pool)
			} else {
				assert.Nil(t, body.Pool)
			}
		})
	}
}
