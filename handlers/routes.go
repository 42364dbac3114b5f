package handlers

import "github.com/gin-gonic/gin"

// Register mounts the toy routes on r. The paths are the public API and must not change.
func Register(r gin.IRouter, h *ToyHandler) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/getToysByName/:text", h.SearchByName)
	r.POST("/upload-toy", h.UploadToy)
	r.GET("/all-toys", h.ListToys)
	r.GET("/all-toys/:id", h.GetToy)
	r.GET("/toys_by_category/:sub_category", h.ToysByCategory)
	r.GET("/toys-by-email", h.ToysByEmail)
	r.GET("/toys-by-email-desc", h.ToysByEmailDesc)
	r.GET("/toys-by-email-asc", h.ToysByEmailAsc)
	r.PATCH("/update-toy/:id", h.UpdateToy)
	r.DELETE("/delete-toy/:id", h.DeleteToy)
}
