package controllers

import (
	"context"
	"net/http"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/utils"

	"github.com/gin-gonic/gin"
)

type GalleryLister interface {
	Images(ctx context.Context, category string) ([]models.GalleryImage, error)
}

type GalleryController struct {
	gallery GalleryLister
}

func NewGalleryController(gallery GalleryLister) *GalleryController {
	return &GalleryController{gallery: gallery}
}

// GetGallery returns the latest works, optionally of one category.
func (gc *GalleryController) GetGallery(c *gin.Context) {
	category := c.Query("category")
	if category != "" && category != "all" && !knownCategory(category) {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown category")
		return
	}

	images, err := gc.gallery.Images(c.Request.Context(), category)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]gin.H, 0, len(images))
	for _, img := range images {
		response = append(response, gin.H{
			"id":         img.ID,
			"category":   img.Category,
			"fileRef":    img.FileRef,
			"uploadedBy": img.UploadedBy,
			"uploadedAt": img.UploadedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

func knownCategory(category string) bool {
	for _, c := range config.GalleryCategories {
		if c == category {
			return true
		}
	}
	return false
}
