package site

import (
	"encoding/base64"
	"net/http"

	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetQRCode(c *gin.Context) {
	res, err := h.service.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	if c.Query("format") == "base64" {
		res.DataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(res.PNG)
		response.Success(c, http.StatusOK, res, nil)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", res.PNG)
}
