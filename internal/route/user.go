package route

import (
	"github.com/VannaSem/SevaSign/internal/controller"
	"github.com/VannaSem/SevaSign/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Users(r *gin.RouterGroup, userController *controller.UserController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/users")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/me", userController.GetMe)
	}
}
