package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/inkwell-be/internal/apperr"
	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/isdelr/inkwell-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ArticleServiceProvider defines the interface for article services.
type ArticleServiceProvider interface {
	GetAllArticles() ([]models.Article, error)
	GetArticleByID(id string) (models.Article, error)
	CreateArticle(principalID, title, content string) (models.Article, error)
	UpdateArticle(id, principalID, title, content string) (models.Article, error)
	DeleteArticle(id, principalID string) error
}

// ArticleService provides business logic for article management. Mutations
// resolve the article first, so an unknown id is always NotFound; Forbidden
// is only ever returned for an article that exists and belongs to someone
// else. The ownership check runs immediately before each write and is never
// cached between requests.
type ArticleService struct {
	db           *sql.DB
	hub          *websocket.Hub
	eventService EventServiceProvider
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB, hub *websocket.Hub, eventService EventServiceProvider) *ArticleService {
	return &ArticleService{db: db, hub: hub, eventService: eventService}
}

// GetAllArticles retrieves every article, newest first.
func (s *ArticleService) GetAllArticles() ([]models.Article, error) {
	rows, err := s.db.Query("SELECT id, title, content, user_id, created_at, updated_at FROM articles ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticleByID retrieves a single article by its ID.
func (s *ArticleService) GetArticleByID(id string) (models.Article, error) {
	var a models.Article
	row := s.db.QueryRow("SELECT id, title, content, user_id, created_at, updated_at FROM articles WHERE id = ?", id)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Article{}, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
		}
		return models.Article{}, err
	}
	return a, nil
}

// CreateArticle creates a new article owned by the acting principal. The
// owner is taken from the principal, never from the payload, and does not
// change for the life of the article.
func (s *ArticleService) CreateArticle(principalID, title, content string) (models.Article, error) {
	now := time.Now()
	article := models.Article{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		UserID:    principalID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stmt, err := s.db.Prepare("INSERT INTO articles (id, title, content, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.Article{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(article.ID, article.Title, article.Content, article.UserID, article.CreatedAt, article.UpdatedAt); err != nil {
		return models.Article{}, err
	}

	s.recordEvent("article.create", fmt.Sprintf("Article '%s' published.", article.Title), article.ID)
	s.notify("article_created", article)
	return article, nil
}

// UpdateArticle updates the title and content of an article owned by the
// acting principal.
func (s *ArticleService) UpdateArticle(id, principalID, title, content string) (models.Article, error) {
	article, err := s.GetArticleByID(id)
	if err != nil {
		return models.Article{}, err
	}
	if err := auth.Authorize(principalID, article.UserID); err != nil {
		return models.Article{}, err
	}

	article.Title = title
	article.Content = content
	article.UpdatedAt = time.Now()

	_, err = s.db.Exec("UPDATE articles SET title = ?, content = ?, updated_at = ? WHERE id = ?",
		article.Title, article.Content, article.UpdatedAt, article.ID)
	if err != nil {
		return models.Article{}, err
	}

	s.recordEvent("article.update", fmt.Sprintf("Article '%s' updated.", article.Title), article.ID)
	s.notify("article_updated", article)
	return article, nil
}

// DeleteArticle removes an article owned by the acting principal.
func (s *ArticleService) DeleteArticle(id, principalID string) error {
	article, err := s.GetArticleByID(id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(principalID, article.UserID); err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM articles WHERE id = ?", id); err != nil {
		return err
	}

	s.recordEvent("article.delete", fmt.Sprintf("Article '%s' deleted.", article.Title), article.ID)
	s.notify("article_deleted", article)
	return nil
}

func (s *ArticleService) recordEvent(eventType, message, articleID string) {
	if err := s.eventService.CreateEvent(eventType, "info", message, &articleID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record article event")
	}
}

// notify pushes the change to the live activity feed: all connected clients
// get the global broadcast, and clients watching this article get a targeted
// copy.
func (s *ArticleService) notify(action string, article models.Article) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(websocket.Message{Action: action, Payload: article})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode feed message")
		return
	}
	s.hub.Broadcast <- msg
	s.hub.BroadcastTo(article.ID, msg)
}
