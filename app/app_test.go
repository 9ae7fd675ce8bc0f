package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/listing"
	"schwarzesbrett/pkg/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepository implements the methods the tests exercise; the embedded nil
// interface panics on anything else.
type fakeRepository struct {
	Repository

	ads        map[int64]domain.Ad
	users      map[int64]domain.User
	comments   map[int64]domain.AdComment
	images     map[int64]domain.AdImage
	messages   []domain.Message
	ratings    map[[2]int64]domain.Rating
	settings   map[string]string
	settingErr error
	settingGet int
	nextID     int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		ads: map[int64]domain.Ad{
			10: {ID: 10, SellerID: 1, Title: "Fahrrad"},
		},
		users: map[int64]domain.User{
			1: {ID: 1, Username: "anna"},
			2: {ID: 2, Username: "ben"},
		},
		comments: map[int64]domain.AdComment{},
		images:   map[int64]domain.AdImage{},
		ratings:  map[[2]int64]domain.Rating{},
		settings: map[string]string{},
		nextID:   100,
	}
}

func (f *fakeRepository) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) GetAd(_ context.Context, id int64) (domain.Ad, error) {
	ad, ok := f.ads[id]
	if !ok {
		return ad, fmt.Errorf("ad %d: %w", id, domain.ErrNotFound)
	}
	return ad, nil
}

func (f *fakeRepository) GetUser(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return u, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepository) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.User{}, fmt.Errorf("create user: %w", domain.ErrConflict)
		}
	}
	u.ID = f.id()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeRepository) SetUserLocked(_ context.Context, id int64, locked bool) error {
	u := f.users[id]
	u.Locked = locked
	f.users[id] = u
	return nil
}

func (f *fakeRepository) SetUserRole(_ context.Context, id int64, role string) error {
	u := f.users[id]
	u.Role = role
	f.users[id] = u
	return nil
}

func (f *fakeRepository) SetUserPassword(_ context.Context, id int64, hash string) error {
	u := f.users[id]
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeRepository) CreateComment(_ context.Context, adID, authorID int64, content string) (domain.AdComment, error) {
	c := domain.AdComment{ID: f.id(), AdID: adID, AuthorID: authorID, Content: content}
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeRepository) GetCommentByID(_ context.Context, id int64) (domain.AdComment, error) {
	c, ok := f.comments[id]
	if !ok {
		return c, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepository) DeleteComment(_ context.Context, id int64) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeRepository) SaveImage(_ context.Context, adID int64, url string) (domain.AdImage, error) {
	img := domain.AdImage{ID: f.id(), AdID: adID, ImageURL: url}
	f.images[img.ID] = img
	return img, nil
}

func (f *fakeRepository) GetAdImage(_ context.Context, adID, imageID int64) (domain.AdImage, error) {
	img, ok := f.images[imageID]
	if !ok || img.AdID != adID {
		return img, domain.ErrNotFound
	}
	return img, nil
}

func (f *fakeRepository) DeleteAdImage(_ context.Context, _, imageID int64) error {
	delete(f.images, imageID)
	return nil
}

func (f *fakeRepository) CreateMessage(_ context.Context, m domain.Message) (domain.Message, error) {
	m.ID = f.id()
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeRepository) UpsertRating(_ context.Context, r domain.Rating) (domain.Rating, error) {
	f.ratings[[2]int64{r.RaterID, r.RatedID}] = r
	return r, nil
}

func (f *fakeRepository) GetSetting(_ context.Context, key string) (domain.SiteSetting, error) {
	f.settingGet++
	if f.settingErr != nil {
		return domain.SiteSetting{}, f.settingErr
	}
	value, ok := f.settings[key]
	if !ok {
		return domain.SiteSetting{}, domain.ErrNotFound
	}
	return domain.SiteSetting{Key: key, Value: value}, nil
}

func (f *fakeRepository) PutSetting(_ context.Context, key, value string) (domain.SiteSetting, error) {
	f.settings[key] = value
	return domain.SiteSetting{Key: key, Value: value}, nil
}

type memoryImages struct {
	objects map[string][]byte
}

func (m *memoryImages) Upload(key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func (m *memoryImages) Delete(key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryImages) URL(key string) string { return "http://minio/bucket/" + key }

func (m *memoryImages) Key(url string) string { return strings.TrimPrefix(url, "http://minio/bucket/") }

func asUser(id int64) context.Context {
	return middleware.WithUser(context.Background(), id, domain.RoleUser)
}

func asAdmin(id int64) context.Context {
	return middleware.WithUser(context.Background(), id, domain.RoleAdmin)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
}

func TestRegisterUser(t *testing.T) {
	repo := newFakeRepository()
	h := NewRegisterUserHandler(repo, nil)
	h.cost = bcrypt.MinCost

	res, err := h.Handle(context.Background(), &RegisterUserRequest{
		Username: "clara",
		Email:    "Clara@Example.org",
		Password: "geheim123",
	})
	require.NoError(t, err)

	assert.Equal(t, "clara@example.org", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[res.User.ID].PasswordHash), []byte("geheim123")))

	_, err = h.Handle(context.Background(), &RegisterUserRequest{Username: "clara", Email: "c2@example.org", Password: "geheim123"})
	requireStatus(t, err, http.StatusConflict)

	_, err = h.Handle(context.Background(), &RegisterUserRequest{Username: "dora", Email: "not-an-email", Password: "geheim123"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestComments(t *testing.T) {
	repo := newFakeRepository()

	_, err := NewCreateCommentHandler(repo, nil).Handle(asUser(2), &CreateCommentRequest{AdID: 99, Content: "hi"})
	requireStatus(t, err, http.StatusNotFound)

	res, err := NewCreateCommentHandler(repo, nil).Handle(asUser(2), &CreateCommentRequest{AdID: 10, Content: "Noch da?"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Comment.AuthorID)

	del := NewDeleteCommentHandler(repo, nil)
	_, err = del.Handle(asUser(3), &DeleteCommentRequest{AdID: 10, CommentID: res.Comment.ID})
	requireStatus(t, err, http.StatusForbidden)

	_, err = del.Handle(asAdmin(3), &DeleteCommentRequest{AdID: 10, CommentID: res.Comment.ID})
	requireStatus(t, err, http.StatusNoContent)
	assert.Empty(t, repo.comments)
}

func TestImages_StoreAndDelete(t *testing.T) {
	repo := newFakeRepository()
	images := &memoryImages{objects: map[string][]byte{}}

	img, err := NewUploadAdImageHandler(repo, images, nil).Store(asUser(1), 10, []byte("png"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.ImageURL, "http://minio/bucket/ads/10/"))
	assert.True(t, strings.HasSuffix(img.ImageURL, ".png"))
	assert.Len(t, images.objects, 1)

	del := NewDeleteAdImageHandler(repo, images, nil)
	_, err = del.Handle(asUser(2), &DeleteAdImageRequest{AdID: 10, ImageID: img.ID})
	requireStatus(t, err, http.StatusForbidden)

	_, err = del.Handle(asUser(1), &DeleteAdImageRequest{AdID: 10, ImageID: img.ID})
	requireStatus(t, err, http.StatusNoContent)
	assert.Empty(t, images.objects)
	assert.Empty(t, repo.images)
}

func TestSendMessage(t *testing.T) {
	repo := newFakeRepository()
	h := NewSendMessageHandler(repo, nil)

	_, err := h.Handle(asUser(1), &SendMessageRequest{AdID: 10, Subject: "x", Body: "y"})
	requireStatus(t, err, http.StatusBadRequest)

	res, err := h.Handle(asUser(2), &SendMessageRequest{AdID: 10, Subject: "Fahrrad", Body: "Ist es noch da?"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Message.RecipientID)
	assert.Equal(t, int64(2), res.Message.SenderID)
}

func TestRateUser(t *testing.T) {
	repo := newFakeRepository()
	h := NewRateUserHandler(repo, nil)

	_, err := h.Handle(asUser(1), &RateUserRequest{UserID: 1, Stars: 5})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = h.Handle(asUser(1), &RateUserRequest{UserID: 2, Stars: 6})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = h.Handle(asUser(1), &RateUserRequest{UserID: 9, Stars: 3})
	requireStatus(t, err, http.StatusNotFound)

	_, err = h.Handle(asUser(1), &RateUserRequest{UserID: 2, Stars: 2})
	require.NoError(t, err)
	_, err = h.Handle(asUser(1), &RateUserRequest{UserID: 2, Stars: 4})
	require.NoError(t, err)

	require.Len(t, repo.ratings, 1)
	assert.Equal(t, 4, repo.ratings[[2]int64{1, 2}].Stars)
}

func TestUpdateUser(t *testing.T) {
	repo := newFakeRepository()
	h := NewUpdateUserHandler(repo, nil)
	h.cost = bcrypt.MinCost
	locked := true
	role := domain.RoleAdmin
	password := "neuespasswort"

	_, err := h.Handle(asAdmin(1), &UpdateUserRequest{ID: 1, Locked: &locked})
	requireStatus(t, err, http.StatusBadRequest)

	res, err := h.Handle(asAdmin(1), &UpdateUserRequest{ID: 2, Locked: &locked, Role: &role, Password: &password})
	require.NoError(t, err)
	assert.True(t, res.User.Locked)
	assert.Equal(t, domain.RoleAdmin, repo.users[2].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[2].PasswordHash), []byte(password)))
}

func TestSiteSettings_ItemsPerPage(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	settings := NewSiteSettings(repo, cache.NewMemory[string](time.Minute), 20)

	assert.Equal(t, 20, settings.ItemsPerPage(ctx))

	repo.settings[domain.SettingItemsPerPage] = "15"
	settings.Invalidate(ctx, domain.SettingItemsPerPage)
	assert.Equal(t, 15, settings.ItemsPerPage(ctx))
	assert.Equal(t, 15, settings.ItemsPerPage(ctx))
	assert.Equal(t, 2, repo.settingGet)

	repo.settings[domain.SettingItemsPerPage] = "5000"
	settings.Invalidate(ctx, domain.SettingItemsPerPage)
	assert.Equal(t, maxItemsPerPage, settings.ItemsPerPage(ctx))

	repo.settingErr = errors.New("db down")
	settings.Invalidate(ctx, domain.SettingItemsPerPage)
	assert.Equal(t, 20, settings.ItemsPerPage(ctx))
}

func TestPutSetting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	settings := NewSiteSettings(repo, cache.NewMemory[string](time.Minute), 20)
	h := NewPutSettingHandler(repo, settings, nil)

	_, err := h.Handle(ctx, &PutSettingRequest{Key: domain.SettingItemsPerPage, Value: "zero"})
	requireStatus(t, err, http.StatusBadRequest)

	assert.Equal(t, 20, settings.ItemsPerPage(ctx))
	_, err = h.Handle(ctx, &PutSettingRequest{Key: domain.SettingItemsPerPage, Value: "12"})
	require.NoError(t, err)
	assert.Equal(t, 12, settings.ItemsPerPage(ctx))
}

func TestUsersView_Access(t *testing.T) {
	users := []domain.User{{ID: 1, Username: "anna"}, {ID: 2, Username: "ben"}}
	var scopes []domain.UserScope
	source := listing.SourceFuncs[domain.User, domain.UserScope]{
		Page: func(_ context.Context, _ listing.Criteria, _ domain.UserScope) ([]domain.User, error) {
			return users, nil
		},
		Count: func(_ context.Context, _ listing.Criteria, scope domain.UserScope) (int, error) {
			scopes = append(scopes, scope)
			return len(users), nil
		},
	}
	store := viewstate.NewStore(cache.NewMemory[viewstate.Listing](0), cache.NewMemory[categorytree.Snapshot](0))
	settings := NewSiteSettings(newFakeRepository(), cache.NewMemory[string](0), 20)
	h := NewGetUsersViewHandler(source, listing.SortColumns{"username": "u.username"}, store, settings)

	_, err := h.Handle(asUser(1), &GetUsersViewRequest{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = h.Handle(context.Background(), &GetUsersViewRequest{Followed: true})
	requireStatus(t, err, http.StatusUnauthorized)

	res, err := h.Handle(asUser(1), &GetUsersViewRequest{Followed: true})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, []domain.UserScope{{FollowedBy: 1}}, scopes)

	res, err = h.Handle(asAdmin(1), &GetUsersViewRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalItems)
}
