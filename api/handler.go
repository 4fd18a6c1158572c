package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-skillsnap/cache"
	"github.com/goliatone/go-skillsnap/portfolio"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Paging decides how the list route of a resource reads its query string.
type Paging int

const (
	// PagingAlways pages every list request, defaulting to page 1 of 20.
	PagingAlways Paging = iota
	// PagingOnRequest returns the full list unless page or pageSize is given.
	PagingOnRequest
)

// ResourceHandler serves the CRUD routes of one portfolio resource.
type ResourceHandler[T any, P portfolio.Record[T]] struct {
	repo   portfolio.Repository[T]
	path   string
	paging Paging
	logger *zap.Logger
}

// NewResourceHandler serves repo under path, e.g. "/api/projects".
func NewResourceHandler[T any, P portfolio.Record[T]](repo portfolio.Repository[T], path string, paging Paging, logger *zap.Logger) *ResourceHandler[T, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler[T, P]{
		repo:   repo,
		path:   path,
		paging: paging,
		logger: logger,
	}
}

// Register mounts the resource routes on group, relative to the group prefix.
func (h *ResourceHandler[T, P]) Register(group gin.IRoutes, relative string) {
	group.GET(relative, h.list)
	group.GET(relative+"/:id", h.get)
	group.POST(relative, h.create)
	group.PUT(relative+"/:id", h.update)
	group.DELETE(relative+"/:id", h.delete)
}

func (h *ResourceHandler[T, P]) list(c *gin.Context) {
	page, pageSize, paged, err := pageParams(c, h.paging)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var records []T
	if paged {
		records, err = h.repo.ListPage(c.Request.Context(), page, pageSize)
	} else {
		records, err = h.repo.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *ResourceHandler[T, P]) get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ResourceHandler[T, P]) create(c *gin.Context) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, h.logger, badRequest("invalid request body", "INVALID_BODY"))
		return
	}
	P(&record).SetID(0)

	created, err := h.repo.Create(c.Request.Context(), record)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	id := P(&created).GetID()
	c.Header("Location", h.path+"/"+strconv.FormatInt(id, 10))
	c.JSON(http.StatusCreated, created)
}

func (h *ResourceHandler[T, P]) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, h.logger, badRequest("invalid request body", "INVALID_BODY"))
		return
	}
	if P(&record).GetID() != id {
		respondError(c, h.logger, badRequest("ID mismatch.", "ID_MISMATCH"))
		return
	}

	if _, err := h.repo.Update(c.Request.Context(), record); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResourceHandler[T, P]) delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResourceHandler[T, P]) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(c, h.logger, badRequest("id must be a positive integer", "INVALID_ID"))
		return 0, false
	}
	return id, true
}

// pageParams reads page and pageSize. Missing values take their defaults; with
// PagingOnRequest the request is unpaged when both are missing.
func pageParams(c *gin.Context, paging Paging) (page, pageSize int, paged bool, err error) {
	rawPage, hasPage := c.GetQuery("page")
	rawSize, hasSize := c.GetQuery("pageSize")

	if paging == PagingOnRequest && !hasPage && !hasSize {
		return 0, 0, false, nil
	}

	page, pageSize = defaultPage, defaultPageSize
	if hasPage {
		if page, err = strconv.Atoi(rawPage); err != nil {
			return 0, 0, false, badRequest("page must be an integer", "INVALID_PAGE")
		}
	}
	if hasSize {
		if pageSize, err = strconv.Atoi(rawSize); err != nil {
			return 0, 0, false, badRequest("pageSize must be an integer", "INVALID_PAGE")
		}
	}
	if err := cache.ValidatePage(page, pageSize); err != nil {
		return 0, 0, false, goerrors.FromOzzoValidation(err, "invalid page").
			WithCode(http.StatusBadRequest).
			WithTextCode("INVALID_PAGE")
	}
	return page, pageSize, true, nil
}
