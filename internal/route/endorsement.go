package route

import (
	"github.com/VannaSem/SevaSign/internal/controller"
	"github.com/VannaSem/SevaSign/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Endorsements(r *gin.RouterGroup, ec *controller.EndorsementController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/endorsements")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", ec.CreateEndorsementRequest)
		v1.GET("", ec.ListEndorsementRequests)
		v1.GET("/:requestId", ec.GetEndorsementRequestById)
		v1.PATCH("/:requestId/status", ec.UpdateEndorsementStatus)
		v1.POST("/:requestId/sign", ec.SignEndorsementRequest)
		v1.GET("/:requestId/audit", ec.GetAuditLog)
	}
}

// V1_Verify is public, it backs the QR code stamped on signed documents.
func V1_Verify(r *gin.RouterGroup, ec *controller.EndorsementController) {
	v1 := r.Group("/v1/verify")
	{
		v1.GET("/:refCode", ec.VerifyByRefCode)
	}
}
