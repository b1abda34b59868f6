package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
)

var (
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ repository.ArticleRepository  = (*MockArticleRepository)(nil)
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.ReactionRepository = (*MockReactionRepository)(nil)
	_ repository.BookmarkRepository = (*MockBookmarkRepository)(nil)
	_ repository.SessionRepository  = (*MockSessionRepository)(nil)
)

// NewRepositories wires a full set of in-memory repositories
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:     NewMockUserRepository(),
		Article:  NewMockArticleRepository(),
		Comment:  NewMockCommentRepository(),
		Reaction: NewMockReactionRepository(),
		Bookmark: NewMockBookmarkRepository(),
		Session:  NewMockSessionRepository(),
	}
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	UpsertError error
	UpsertCalls int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*models.User),
	}
}

// Add stores a user directly, for test setup
func (m *MockUserRepository) Add(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.ID] = user
}

func (m *MockUserRepository) Upsert(ctx context.Context, in *models.UpsertUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls++
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}

	now := time.Now().UTC()
	user, ok := m.Users[in.ID]
	if !ok {
		user = &models.User{ID: in.ID, Role: models.RoleReader, CreatedAt: now, Username: in.Username}
		m.Users[in.ID] = user
	}
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.ProfileImageURL = in.ProfileImageURL
	user.UpdatedAt = now

	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email != nil && *u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Username != nil && *u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return false, nil
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	InsertError error
	ListCalls   int
	LastFilter  models.ArticleFilter
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return m.InsertError
	}
	for _, a := range m.Articles {
		if a.Slug == article.Slug {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	a, err := m.GetBySlug(ctx, slug)
	return a != nil, err
}

func (m *MockArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	m.LastFilter = filter

	matched := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.Region != "" && (a.Region == nil || *a.Region != filter.Region) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && a.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Featured != nil && a.Featured != *filter.Featured {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sortByPublished(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	return page(matched, filter.Offset, limit), nil
}

func (m *MockArticleRepository) Update(ctx context.Context, id string, patch *models.ArticlePatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Articles[id]
	if !ok {
		return false, nil
	}
	if patch.Slug.Set {
		for _, other := range m.Articles {
			if other.ID != id && other.Slug == patch.Slug.Value {
				return false, repository.ErrDuplicate
			}
		}
	}

	if patch.Title.Set {
		a.Title = patch.Title.Value
	}
	if patch.Subtitle.Set {
		a.Subtitle = patch.Subtitle.Value
	}
	if patch.Slug.Set {
		a.Slug = patch.Slug.Value
	}
	if patch.Content.Set {
		a.Content = patch.Content.Value
	}
	if patch.Excerpt.Set {
		a.Excerpt = patch.Excerpt.Value
	}
	if patch.Category.Set {
		a.Category = patch.Category.Value
	}
	if patch.Region.Set {
		a.Region = patch.Region.Value
	}
	if patch.ImageURL.Set {
		a.ImageURL = patch.ImageURL.Value
	}
	if patch.Status.Set {
		a.Status = patch.Status.Value
	}
	if patch.Featured.Set {
		a.Featured = patch.Featured.Value
	}
	if patch.ReadTime.Set {
		a.ReadTime = patch.ReadTime.Value
	}
	if patch.PublishedAt.Set {
		a.PublishedAt = patch.PublishedAt.Value
	}
	a.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return false, nil
	}
	delete(m.Articles, id)
	return true, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return false, nil
	}
	a.Views++
	return true, nil
}

func (m *MockArticleRepository) Top(ctx context.Context, kind models.RankingKind, category string, limit int) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if a.Status != models.StatusPublished || (category != "" && a.Category != category) {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if kind == models.RankingMostRead && matched[i].Views != matched[j].Views {
			return matched[i].Views > matched[j].Views
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return page(matched, 0, limit), nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	m.mu.Lock()
	all := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		copied := *a
		all = append(all, &copied)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	for _, a := range all {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[string]*models.Comment
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	if comment.Status == "" {
		comment.Status = models.CommentApproved
	}
	copied := *comment
	m.Comments[comment.ID] = &copied
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string, approvedOnly bool) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comments := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.ArticleID != articleID || (approvedOnly && c.Status != models.CommentApproved) {
			continue
		}
		copied := *c
		comments = append(comments, &copied)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (m *MockCommentRepository) Update(ctx context.Context, id string, update *models.CommentUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return false, nil
	}
	if update.Content != nil {
		c.Content = *update.Content
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	return true, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return false, nil
	}
	delete(m.Comments, id)
	return true, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	m.mu.Lock()
	all := make([]*models.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		copied := *c
		all = append(all, &copied)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	for _, c := range all {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockReactionRepository is a mock implementation of ReactionRepository
type MockReactionRepository struct {
	mu        sync.Mutex
	Reactions map[string]*models.Reaction // keyed by userID + "/" + articleID
}

func NewMockReactionRepository() *MockReactionRepository {
	return &MockReactionRepository{
		Reactions: make(map[string]*models.Reaction),
	}
}

func (m *MockReactionRepository) Get(ctx context.Context, userID, articleID string) (*models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.Reactions[userID+"/"+articleID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *MockReactionRepository) Toggle(ctx context.Context, userID, articleID string, reactionType models.ReactionType) (*models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := userID + "/" + articleID
	existing, ok := m.Reactions[key]
	switch {
	case !ok:
		r := &models.Reaction{
			ID:        uuid.New().String(),
			ArticleID: articleID,
			UserID:    userID,
			Type:      reactionType,
			CreatedAt: time.Now().UTC(),
		}
		m.Reactions[key] = r
		copied := *r
		return &copied, nil
	case existing.Type == reactionType:
		delete(m.Reactions, key)
		return nil, nil
	default:
		existing.Type = reactionType
		copied := *existing
		return &copied, nil
	}
}

func (m *MockReactionRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reactions := make([]*models.Reaction, 0)
	for _, r := range m.Reactions {
		if r.ArticleID == articleID {
			copied := *r
			reactions = append(reactions, &copied)
		}
	}
	return reactions, nil
}

func (m *MockReactionRepository) CountsByArticle(ctx context.Context, articleID string) (models.ReactionCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := models.ReactionCounts{}
	for t := range models.ValidReactionTypes {
		counts[t] = 0
	}
	for _, r := range m.Reactions {
		if r.ArticleID == articleID {
			counts[r.Type]++
		}
	}
	return counts, nil
}

func (m *MockReactionRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reactions), nil
}

// MockBookmarkRepository is a mock implementation of BookmarkRepository
type MockBookmarkRepository struct {
	mu        sync.Mutex
	Bookmarks map[string]*models.Bookmark // keyed by userID + "/" + articleID
}

func NewMockBookmarkRepository() *MockBookmarkRepository {
	return &MockBookmarkRepository{
		Bookmarks: make(map[string]*models.Bookmark),
	}
}

func (m *MockBookmarkRepository) Get(ctx context.Context, userID, articleID string) (*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Bookmarks[userID+"/"+articleID]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, nil
}

func (m *MockBookmarkRepository) Toggle(ctx context.Context, userID, articleID string) (*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := userID + "/" + articleID
	if _, ok := m.Bookmarks[key]; ok {
		delete(m.Bookmarks, key)
		return nil, nil
	}
	b := &models.Bookmark{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	m.Bookmarks[key] = b
	copied := *b
	return &copied, nil
}

func (m *MockBookmarkRepository) ListByUser(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bookmarks := make([]*models.Bookmark, 0)
	for _, b := range m.Bookmarks {
		if b.UserID == userID {
			copied := *b
			bookmarks = append(bookmarks, &copied)
		}
	}
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].CreatedAt.After(bookmarks[j].CreatedAt) })
	return bookmarks, nil
}

func (m *MockBookmarkRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Bookmarks), nil
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*models.Session
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		Sessions: make(map[string]*models.Session),
	}
}

func (m *MockSessionRepository) Get(ctx context.Context, sid string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Sessions[sid]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *MockSessionRepository) Put(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.Sessions[session.SID] = &copied
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Sessions[sid]; !ok {
		return false, nil
	}
	delete(m.Sessions, sid)
	return true, nil
}

func (m *MockSessionRepository) PurgeExpired(ctx context.Context, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for sid, s := range m.Sessions {
		if s.Expired(at) {
			delete(m.Sessions, sid)
			n++
		}
	}
	return n, nil
}

// sortByPublished orders like the SQL listing: published_at desc with nulls last, then created_at desc
func sortByPublished(articles []*models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		switch {
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func page(articles []*models.Article, offset, limit int) []*models.Article {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(articles) {
		return make([]*models.Article, 0)
	}
	end := offset + limit
	if end > len(articles) {
		end = len(articles)
	}
	return articles[offset:end]
}
