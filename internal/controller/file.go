package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/VannaSem/SevaSign/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
)

type FileController struct {
	*baseController
}

const (
	ErrFileIdRequired = "file id is required"
)

// ServeFile streams a stored object to the client. Only the requester of
// the owning endorsement request or a signatory may fetch it.
func (fc FileController) ServeFile(ctx *gin.Context) {
	fileId := ctx.Params.ByName("fileId")
	if fileId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "File id is required", util.GenerateErrorMessages(errors.New(ErrFileIdRequired), "fileId"), nil)
		return
	}

	user, err := fc.getAuthUser(ctx)
	if err != nil {
		fc.app.Logger.Errorf("Failed to get auth user: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	file, err := fc.app.Repository.File.GetById(ctx, nil, fileId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(err, "fileId"), nil)
		return
	}

	if !user.Role.CanEndorse() {
		// Requesters may only fetch files attached to their own requests.
		owned, err := fc.ownsFile(ctx, user.ID, fileId)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
			return
		}
		if !owned {
			util.ResponseFailed(ctx, http.StatusForbidden, "You do not have permission to access this file", util.GenerateErrorMessages(errors.New("permission denied"), "fileId"), nil)
			return
		}
	}

	object, err := fc.app.S3.GetObject(ctx, file.BucketName, file.UniqueFileName, minio.GetObjectOptions{})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get file", util.GenerateErrorMessages(err), nil)
		return
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to stat file", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.Header("Content-Type", info.ContentType)
	ctx.Header("Content-Length", fmt.Sprintf("%d", info.Size))
	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.ToBaseFilename()))
	io.Copy(ctx.Writer, object)
}

func (fc FileController) ownsFile(ctx *gin.Context, userId, fileId string) (bool, error) {
	var count int64
	err := fc.app.Repository.DB.WithContext(ctx).
		Table("endorsement_requests").
		Where("requester_id = ? AND (document_file_id = ? OR signed_file_id = ?)", userId, fileId, fileId).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
