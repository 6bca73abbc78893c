package http

import (
	"net/http"
)

const (
	msgCategoryNotFound = "Category not found"

	msgCategoryCreated = "Category created successfully"
	msgCategoryUpdated = "Category updated successfully"
	msgCategoryDeleted = "Category deleted successfully"

	msgErrFetchCategories = "Error fetching categories"
	msgErrCreateCategory  = "Error creating category"
	msgErrFetchCategory   = "Error fetching category"
	msgErrUpdateCategory  = "Error updating category"
	msgErrDeleteCategory  = "Error deleting category"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.errors.Write(w, r, err, msgCategoryNotFound, msgErrFetchCategories)
		return
	}
	NewJSONResponse().Body(categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	category, err := s.categories.Create(ctx, p.CategoryInput())
	if err != nil {
		s.errors.Write(w, r, err, msgCategoryNotFound, msgErrCreateCategory)
		return
	}
	CreatedResponse(msgCategoryCreated, category).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgCategoryNotFound).Write(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	category, err := s.categories.Get(ctx, id)
	if err != nil {
		s.errors.Write(w, r, err, msgCategoryNotFound, msgErrFetchCategory)
		return
	}
	DataResponse(category).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgCategoryNotFound).Write(w)
		return
	}
	p := parseBody(w, r)
	if p == nil {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	category, err := s.categories.Update(ctx, id, p.CategoryInput())
	if err != nil {
		s.errors.Write(w, r, err, msgCategoryNotFound, msgErrUpdateCategory)
		return
	}
	UpdatedResponse(msgCategoryUpdated, category).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := PathID(r, "id")
	if !ok {
		NotFoundError(msgCategoryNotFound).Write(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.categories.Delete(ctx, id); err != nil {
		s.errors.Write(w, r, err, msgCategoryNotFound, msgErrDeleteCategory)
		return
	}
	MessageResponse(http.StatusOK, msgCategoryDeleted).Write(w)
}
