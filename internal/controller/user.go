package controller

import (
	"net/http"

	"github.com/VannaSem/SevaSign/internal/util"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	*baseController
}

// GetMe returns the account of the authenticated user.
func (uc UserController) GetMe(ctx *gin.Context) {
	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := uc.app.Repository.User.GetById(ctx, nil, authUser.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": user,
	})
}
