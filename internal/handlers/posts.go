package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/services"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// PostsHandler serves both the public reading endpoints and the protected
// dashboard CRUD.
type PostsHandler struct {
	blog *services.BlogService
	log  *logrus.Entry
}

func NewPostsHandler(blog *services.BlogService, log *logrus.Entry) *PostsHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &PostsHandler{blog: blog, log: log}
}

type postListResponse struct {
	Posts      []models.Post      `json:"posts"`
	Pagination storage.Pagination `json:"pagination"`
}

// Recent lists published posts, newest first, with an optional ?category=
// filter. The dropdown sends "All" for no filter.
func (h *PostsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.GetRecentPosts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Featured lists up to three promoted posts for the landing page.
func (h *PostsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.GetFeaturedPosts(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Categories lists published categories with counts and latest covers.
func (h *PostsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blog.GetCategories(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// BySlug returns one published post for the public reading page. Drafts are
// indistinguishable from missing posts here.
func (h *PostsHandler) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondError(w, http.StatusBadRequest, "missing slug")
		return
	}
	post, err := h.blog.GetPostBySlug(r.Context(), slug)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Like bumps the like counter and returns the fresh stats.
func (h *PostsHandler) Like(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blog.LikePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// View bumps the view counter; the reading page fires it once per visit.
func (h *PostsHandler) View(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blog.IncrementViews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// List pages through all posts, drafts included, for the dashboard table.
// ?search= matches title or category.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 10)
	if limit > 100 {
		limit = 100
	}

	posts, pagination, err := h.blog.GetPaginatedPosts(r.Context(), page, limit, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, postListResponse{Posts: posts, Pagination: pagination})
}

// Get returns one post by id regardless of publication state, for the editor.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Create stores a new post. An inline data-URI cover is uploaded along the
// way; the response carries the resolved URL.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	created, err := h.blog.CreatePostWithUpload(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update overwrites the post with the full payload; stats and the original
// publishedAt survive the write.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	updated, err := h.blog.UpdatePostWithUpload(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes the post permanently.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.blog.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
