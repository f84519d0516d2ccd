package route

import (
	"github.com/VannaSem/SevaSign/internal/controller"
	"github.com/gin-gonic/gin"
)

func V1_Auth(r *gin.RouterGroup, authController *controller.AuthController) {
	v1 := r.Group("/v1/auth")
	{
		v1.POST("/jwt/access/verify/:token", authController.VerifyJwtAccessToken)
		v1.POST("/jwt/refresh", authController.RefreshAccessToken)
	}
}
