package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/isdelr/inkwell-be/internal/apperr"
	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticleStack(t *testing.T) (*ArticleService, *UserService, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	events := NewEventService(db)
	// No hub: the live feed is exercised separately.
	return NewArticleService(db, nil, events), NewUserService(db), db
}

func createUser(t *testing.T, users *UserService, name, email string) models.User {
	t.Helper()
	user, err := users.CreateUser(name, email, "pw123456")
	require.NoError(t, err)
	return user
}

func TestCreateArticleOwnerComesFromPrincipal(t *testing.T) {
	svc, users, _ := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")

	article, err := svc.CreateArticle(ann.ID, "Hello", "First post.")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, article.UserID)
	assert.Equal(t, "Hello", article.Title)

	got, err := svc.GetArticleByID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, article.ID, got.ID)
	assert.Equal(t, ann.ID, got.UserID)
}

func TestUpdateArticleByNonOwnerIsForbidden(t *testing.T) {
	svc, users, _ := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")
	bob := createUser(t, users, "Bob", "bob@x.com")

	article, err := svc.CreateArticle(ann.ID, "Hello", "First post.")
	require.NoError(t, err)

	_, err = svc.UpdateArticle(article.ID, bob.ID, "Hijacked", "Nope.")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	// The denied mutation must leave the article unchanged.
	got, err := svc.GetArticleByID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "First post.", got.Content)
	assert.Equal(t, ann.ID, got.UserID)

	// The owner's update goes through.
	updated, err := svc.UpdateArticle(article.ID, ann.ID, "Hello again", "Edited.")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, ann.ID, updated.UserID, "ownership never changes")
}

func TestDeleteArticleByNonOwnerIsForbidden(t *testing.T) {
	svc, users, _ := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")
	bob := createUser(t, users, "Bob", "bob@x.com")

	article, err := svc.CreateArticle(ann.ID, "Hello", "First post.")
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteArticle(article.ID, bob.ID), apperr.ErrForbidden)
	_, err = svc.GetArticleByID(article.ID)
	require.NoError(t, err, "article must survive the denied delete")

	require.NoError(t, svc.DeleteArticle(article.ID, ann.ID))
	_, err = svc.GetArticleByID(article.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMutationsOnUnknownArticleAreNotFound(t *testing.T) {
	svc, users, _ := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")

	// Lookup happens before the ownership check, so an unknown id is
	// NotFound for every caller.
	_, err := svc.UpdateArticle("missing", ann.ID, "Title", "Content")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, svc.DeleteArticle("missing", ann.ID), apperr.ErrNotFound)
}

func TestGetAllArticlesNewestFirst(t *testing.T) {
	svc, users, db := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")

	first, err := svc.CreateArticle(ann.ID, "First", "...")
	require.NoError(t, err)
	second, err := svc.CreateArticle(ann.ID, "Second", "...")
	require.NoError(t, err)

	// Force distinct timestamps; two inserts can land in the same tick.
	_, err = db.Exec("UPDATE articles SET created_at = ? WHERE id = ?", time.Now().Add(-time.Hour), first.ID)
	require.NoError(t, err)

	articles, err := svc.GetAllArticles()
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, second.ID, articles[0].ID)
	assert.Equal(t, first.ID, articles[1].ID)
}

func TestArticleEventsAreRecorded(t *testing.T) {
	svc, users, db := newArticleStack(t)
	ann := createUser(t, users, "Ann", "ann@x.com")

	article, err := svc.CreateArticle(ann.ID, "Hello", "First post.")
	require.NoError(t, err)
	_, err = svc.UpdateArticle(article.ID, ann.ID, "Hello", "Edited.")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteArticle(article.ID, ann.ID))

	events, err := NewEventService(db).GetRecentEvents(10)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.ElementsMatch(t, []string{"article.create", "article.update", "article.delete"}, types)
}
