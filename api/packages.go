package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/tripbooking/internal/apperr"
	"github.com/mkravets/tripbooking/internal/service/catalog"
)

type PackageHandler struct {
	service catalog.CatalogUseCase
}

func NewPackageHandler(service catalog.CatalogUseCase) *PackageHandler {
	return &PackageHandler{service: service}
}

func (h *PackageHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *PackageHandler) list(c *gin.Context) {
	packages, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", packages)
}

func (h *PackageHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, apperr.New(apperr.KindValidation, "invalid package id"))
		return
	}
	pkg, err := h.service.GetPackage(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if pkg == nil {
		fail(c, apperr.Newf(apperr.KindNotFound, "package %d not found", id))
		return
	}
	ok(c, http.StatusOK, "", pkg)
}
