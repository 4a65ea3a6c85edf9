package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/isdelr/inkwell-be/internal/services"
	"github.com/rs/zerolog/log"
)

const maxTitleLength = 255

// ArticleHandler handles HTTP requests for articles.
type ArticleHandler struct {
	service services.ArticleServiceProvider
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service services.ArticleServiceProvider) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// ArticlePayload defines the structure for create and update requests. There
// is deliberately no owner field; the owner is always the authenticated
// principal.
type ArticlePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetAll handles the request to list all articles, newest first. Public.
func (h *ArticleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.GetAllArticles()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list articles")
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}

	writeJSON(w, http.StatusOK, articles)
}

// Get handles the request to get a single article by its ID. Public.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := h.service.GetArticleByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Create handles the request to publish a new article.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "Could not retrieve user from token")
		return
	}

	var payload ArticlePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if fieldErrors := validateArticle(payload); len(fieldErrors) > 0 {
		writeValidation(w, fieldErrors)
		return
	}

	article, err := h.service.CreateArticle(principal, payload.Title, payload.Content)
	if err != nil {
		log.Error().Err(err).Str("user_id", principal).Msg("Failed to create article")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

// Update handles the request to edit an article. Only the owner may update;
// anyone else gets a Forbidden response and the article is left unchanged.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "Could not retrieve user from token")
		return
	}

	id := chi.URLParam(r, "id")
	var payload ArticlePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if fieldErrors := validateArticle(payload); len(fieldErrors) > 0 {
		writeValidation(w, fieldErrors)
		return
	}

	article, err := h.service.UpdateArticle(id, principal, payload.Title, payload.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Delete handles the request to delete an article. Owner only.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve principal from context")
		writeFailure(w, http.StatusInternalServerError, "Internal server error", "Could not retrieve user from token")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteArticle(id, principal); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Article deleted successfully"})
}

func validateArticle(payload ArticlePayload) map[string][]string {
	fieldErrors := map[string][]string{}
	if strings.TrimSpace(payload.Title) == "" {
		fieldErrors["title"] = append(fieldErrors["title"], "The title field is required.")
	} else if len(payload.Title) > maxTitleLength {
		fieldErrors["title"] = append(fieldErrors["title"], "The title field must not be greater than 255 characters.")
	}
	if strings.TrimSpace(payload.Content) == "" {
		fieldErrors["content"] = append(fieldErrors["content"], "The content field is required.")
	}
	return fieldErrors
}
