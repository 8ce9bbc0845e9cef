package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory article repository
// ---------------------------------------------------------------------------

type stubArticleRepo struct {
	byID      map[string]*domain.Article
	nextID    int
	lastQuery ports.ArticleQuery
	createErr error
	deleted   []string
}

func newStubArticleRepo() *stubArticleRepo {
	return &stubArticleRepo{byID: make(map[string]*domain.Article)}
}

func cloneArticle(a *domain.Article) *domain.Article {
	c := *a
	c.Tags = slices.Clone(a.Tags)
	c.Likes = slices.Clone(a.Likes)
	c.Comments = slices.Clone(a.Comments)
	return &c
}

func (r *stubArticleRepo) put(a *domain.Article) *domain.Article {
	if a.ID == "" {
		r.nextID++
		a.ID = fmt.Sprintf("art-%d", r.nextID)
	}
	r.byID[a.ID] = cloneArticle(a)
	return a
}

func (r *stubArticleRepo) Create(_ context.Context, a *domain.Article) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Slug == a.Slug {
			return domain.ErrSlugTaken
		}
	}
	r.put(a)
	return nil
}

func (r *stubArticleRepo) FindByID(_ context.Context, id string) (*domain.Article, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return cloneArticle(a), nil
}

func (r *stubArticleRepo) FindBySlug(_ context.Context, slug string) (*domain.Article, error) {
	for _, a := range r.byID {
		if a.Slug == slug {
			return cloneArticle(a), nil
		}
	}
	return nil, domain.ErrArticleNotFound
}

// List applies the same filters the real Mongo query would.
func (r *stubArticleRepo) List(_ context.Context, q ports.ArticleQuery) ([]*domain.Article, int64, error) {
	r.lastQuery = q

	var matched []*domain.Article
	for _, a := range r.byID {
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.AuthorID != "" && a.AuthorID != q.AuthorID {
			continue
		}
		if q.Featured != nil && a.Featured != *q.Featured {
			continue
		}
		if len(q.Tags) > 0 && !slices.ContainsFunc(a.Tags, func(t string) bool { return slices.Contains(q.Tags, t) }) {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			hit := strings.Contains(strings.ToLower(a.Title), needle) ||
				strings.Contains(strings.ToLower(a.Content), needle) ||
				slices.ContainsFunc(a.Tags, func(t string) bool { return strings.Contains(t, needle) })
			if !hit {
				continue
			}
		}
		matched = append(matched, cloneArticle(a))
	}

	sortKey := func(a *domain.Article) time.Time {
		if q.SortBy == ports.SortCreatedAt || a.PublishedAt == nil {
			return a.CreatedAt
		}
		return *a.PublishedAt
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.SortDesc {
			return sortKey(matched[i]).After(sortKey(matched[j]))
		}
		return sortKey(matched[i]).Before(sortKey(matched[j]))
	})

	total := int64(len(matched))
	skip := min(int(q.Skip), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(skip+int(q.Limit), len(matched))
	}
	return matched[skip:end], total, nil
}

func (r *stubArticleRepo) Update(_ context.Context, a *domain.Article) error {
	if _, ok := r.byID[a.ID]; !ok {
		return domain.ErrArticleNotFound
	}
	r.byID[a.ID] = cloneArticle(a)
	return nil
}

func (r *stubArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrArticleNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubArticleRepo) IncrementViews(_ context.Context, id string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	a.Views++
	return nil
}

func (r *stubArticleRepo) AddComment(_ context.Context, id string, c domain.Comment) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrArticleNotFound
	}
	a.Comments = append(a.Comments, c)
	return nil
}

func (r *stubArticleRepo) SetLike(_ context.Context, id, userID string, liked bool) (int, error) {
	a, ok := r.byID[id]
	if !ok {
		return 0, domain.ErrArticleNotFound
	}
	a.Likes = slices.DeleteFunc(a.Likes, func(u string) bool { return u == userID })
	if liked {
		a.Likes = append(a.Likes, userID)
	}
	return len(a.Likes), nil
}

func (r *stubArticleRepo) CountByAuthor(_ context.Context, authorID string, status domain.ArticleStatus) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if a.AuthorID == authorID && (status == "" || a.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *stubArticleRepo) CountByStatus(_ context.Context, status domain.ArticleStatus) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if status == "" || a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stubArticleRepo) CountPublishedByCategory(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, a := range r.byID {
		if a.IsPublished() {
			out[a.Category]++
		}
	}
	return out, nil
}

func (r *stubArticleRepo) TotalViews(_ context.Context, authorID string) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if authorID == "" || a.AuthorID == authorID {
			n += a.Views
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		r.byID[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return domain.ErrUserExists
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range r.byID {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range r.byID {
		if id != u.ID && existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, q ports.UserQuery) ([]*domain.User, int64, error) {
	var matched []*domain.User
	for _, u := range r.byID {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.Email+" "+u.FullName()), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip := min(int(q.Skip), len(matched))
	end := min(skip+int(q.Limit), len(matched))
	return matched[skip:end], total, nil
}

func (r *stubUserRepo) ListAuthors(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.IsActive && (u.Role == domain.RoleAuthor || u.Role == domain.RoleAdmin) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Count(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.byID {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Media store and image processor
// ---------------------------------------------------------------------------

const stubMediaBase = "https://cdn.test/"

type stubMediaStore struct {
	objects   map[string][]byte
	deleted   []string
	putErr    error
	deleteErr error
	putCalls  int
	failAfter int // when > 0, Put fails once this many objects are stored
}

func newStubMediaStore() *stubMediaStore {
	return &stubMediaStore{objects: make(map[string][]byte)}
}

func (m *stubMediaStore) Put(_ context.Context, name string, data []byte, _ string) (*ports.MediaObject, error) {
	m.putCalls++
	if m.putErr != nil || (m.failAfter > 0 && len(m.objects) >= m.failAfter) {
		return nil, fmt.Errorf("media host unavailable")
	}
	id := "news-site/articles/" + name
	m.objects[id] = data
	return &ports.MediaObject{PublicID: id, URL: stubMediaBase + id}, nil
}

func (m *stubMediaStore) Delete(_ context.Context, publicID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.objects[publicID]; !ok {
		return domain.ErrImageNotFound
	}
	delete(m.objects, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}

func (m *stubMediaStore) PublicIDFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, stubMediaBase) {
		return "", false
	}
	return strings.TrimPrefix(url, stubMediaBase), true
}

type stubProcessor struct {
	err error
}

func (p *stubProcessor) Process(data []byte) (*ports.ProcessedImage, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &ports.ProcessedImage{Data: data, Format: "jpeg", ContentType: "image/jpeg", Width: 1200, Height: 630}, nil
}

type stubVerifier struct {
	verdict ports.EmailVerdict
	calls   int
}

func (v *stubVerifier) Verify(_ context.Context, _ string) ports.EmailVerdict {
	v.calls++
	return v.verdict
}
