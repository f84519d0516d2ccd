package route

import (
	"github.com/VannaSem/SevaSign/internal/controller"
	"github.com/VannaSem/SevaSign/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_File(r *gin.RouterGroup, fileController *controller.FileController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/files")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/:fileId", fileController.ServeFile)
	}
}
