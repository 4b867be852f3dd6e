package banner

import (
	"errors"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/middleware"
	"storefront/model"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PendingPlaceholders is how many skeleton rows the admin table shows before the
// first snapshot arrives.
const PendingPlaceholders = 3

type Deps struct {
	Store services.BannerStore
	// Images is nil when no bucket is configured.
	Images *services.ImageService
	Guard  services.Guard
	Auth   middleware.Authenticator
	Log    zerolog.Logger
}

func BannerController(router *gin.Engine, deps Deps) {
	router.GET("/banners", func(c *gin.Context) {
		ListActiveBanners(c, deps)
	})

	routes := router.Group("/admin/banners", middleware.AccessTokenMiddleware(deps.Auth, deps.Log), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListBanners(c, deps)
		})
		routes.GET("/stream", func(c *gin.Context) {
			StreamBanners(c, deps)
		})
		routes.GET("/new", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"defaults": dto.NewBannerForm(nil)})
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetBanner(c, deps)
		})
		routes.POST("", middleware.InFlight(deps.Guard, middleware.BannerCreateSlot, deps.Log), func(c *gin.Context) {
			CreateBanner(c, deps)
		})
		routes.PUT("/:id", middleware.InFlight(deps.Guard, middleware.BannerEditSlot, deps.Log), func(c *gin.Context) {
			UpdateBanner(c, deps)
		})
		routes.DELETE("/:id", middleware.InFlight(deps.Guard, middleware.BannerDeleteSlot, deps.Log), func(c *gin.Context) {
			DeleteBanner(c, deps)
		})
		routes.POST("/images", func(c *gin.Context) {
			UploadImage(c, deps)
		})
	}
}

func ListActiveBanners(c *gin.Context, deps Deps) {
	banners, err := deps.Store.List(c.Request.Context())
	if err != nil {
		storeError(c, deps.Log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": services.ActiveBanners(banners)})
}

func ListBanners(c *gin.Context, deps Deps) {
	banners, err := deps.Store.List(c.Request.Context())
	if err != nil {
		storeError(c, deps.Log, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewBannerListResponse(banners))
}

// StreamBanners pushes one pending event, then the full list after every change.
// The stream ends when the client disconnects.
func StreamBanners(c *gin.Context, deps Deps) {
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("pending", dto.BannerPending{Placeholders: PendingPlaceholders})
	c.Writer.Flush()

	err := deps.Store.Watch(c.Request.Context(), func(banners []model.Banner) {
		c.SSEvent("snapshot", dto.NewBannerListResponse(banners))
		c.Writer.Flush()
	})
	if err != nil {
		deps.Log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("banner stream failed")
		c.SSEvent("error", dto.NotificationBody("Error", err.Error()))
		c.Writer.Flush()
	}
}

// GetBanner returns the edit dialog defaults, always read fresh for the requested id.
func GetBanner(c *gin.Context, deps Deps) {
	banner, err := deps.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, deps.Log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": banner.ID, "defaults": dto.NewBannerForm(banner)})
}

func CreateBanner(c *gin.Context, deps Deps) {
	var form dto.BannerForm
	if !controller.BindJSON(c, &form) {
		return
	}

	banner, err := deps.Store.Create(c.Request.Context(), form.Fields())
	if err != nil {
		storeError(c, deps.Log, err, gin.H{"keepDialogOpen": true})
		return
	}
	controller.Notify(c, http.StatusCreated, "Banner created", "", gin.H{"banner": banner, "closeDialog": true})
}

func UpdateBanner(c *gin.Context, deps Deps) {
	var form dto.BannerForm
	if !controller.BindJSON(c, &form) {
		return
	}

	banner, err := deps.Store.Update(c.Request.Context(), c.Param("id"), form.Fields())
	if err != nil {
		storeError(c, deps.Log, err, gin.H{"keepDialogOpen": true})
		return
	}
	controller.Notify(c, http.StatusOK, "Banner updated", "", gin.H{"banner": banner, "closeDialog": true})
}

// DeleteBanner is irreversible, so it requires confirm=true.
func DeleteBanner(c *gin.Context, deps Deps) {
	if c.Query("confirm") != "true" {
		controller.Notify(c, http.StatusPreconditionRequired, "Confirm delete", "Deleting a banner cannot be undone. Repeat the request with confirm=true.", nil)
		return
	}

	if err := deps.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, deps.Log, err, nil)
		return
	}
	controller.Notify(c, http.StatusOK, "Banner deleted", "", nil)
}

func UploadImage(c *gin.Context, deps Deps) {
	if deps.Images == nil {
		controller.Notify(c, http.StatusNotImplemented, "Error", "Image uploads are not configured.", nil)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationBody(map[string]string{"image": "Please choose an image"}))
		return
	}
	f, err := file.Open()
	if err != nil {
		storeError(c, deps.Log, err, nil)
		return
	}
	defer f.Close()

	url, err := deps.Images.Upload(c.Request.Context(), f)
	switch {
	case errors.Is(err, services.ErrNotAnImage):
		controller.Notify(c, http.StatusUnsupportedMediaType, "Upload Failed", "Only image files can be uploaded.", nil)
	case errors.Is(err, services.ErrImageTooLarge):
		controller.Notify(c, http.StatusRequestEntityTooLarge, "Upload Failed", "The image is too large.", nil)
	case err != nil:
		storeError(c, deps.Log, err, nil)
	default:
		c.JSON(http.StatusCreated, gin.H{"imageUrl": url})
	}
}

func storeError(c *gin.Context, log zerolog.Logger, err error, extra gin.H) {
	if errors.Is(err, services.ErrBannerNotFound) {
		controller.Notify(c, http.StatusNotFound, "Error", "Banner not found", extra)
		return
	}
	log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Str("path", c.FullPath()).Msg("banner store error")
	controller.Notify(c, http.StatusInternalServerError, "Error", err.Error(), extra)
}
