package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/VannaSem/SevaSign/internal/auth"
	"github.com/VannaSem/SevaSign/internal/constant"
	"github.com/VannaSem/SevaSign/internal/mailer"
	"github.com/VannaSem/SevaSign/internal/model"
	"github.com/VannaSem/SevaSign/internal/queue"
	"github.com/VannaSem/SevaSign/internal/repository"
	"github.com/VannaSem/SevaSign/internal/util"
	"github.com/VannaSem/SevaSign/pkg/endorse"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EndorsementController struct {
	*baseController
}

const (
	ErrRequestIdRequired = "request id is required"
	ErrRequestNotFound   = "endorsement request not found"

	REF_CODE_LENGTH = 12
)

var ALLOWED_DOCUMENT_FILE_TYPE = []string{".pdf"}

// CreateEndorsementRequest files a new request: the document goes to the
// blob store, the row starts in pending state with a CREATED audit entry.
func (ec EndorsementController) CreateEndorsementRequest(ctx *gin.Context) {
	type Request struct {
		RequesterName    string `json:"requesterName" form:"requesterName" binding:"required,strNotEmpty,min=1,max=100"`
		RequesterMobile  string `json:"requesterMobile" form:"requesterMobile" binding:"required,strNotEmpty,min=1,max=30"`
		RequesterAddress string `json:"requesterAddress" form:"requesterAddress" binding:"required,strNotEmpty,min=1,max=255"`
		ShopNumber       string `json:"shopNumber" form:"shopNumber" binding:"omitempty,max=50"`
		Purpose          string `json:"purpose" form:"purpose" binding:"required,strNotEmpty,min=1,max=500"`
		RequireSignature bool   `json:"requireSignature" form:"requireSignature"`
		RequireSeal      bool   `json:"requireSeal" form:"requireSeal"`
	}
	var body Request

	user, err := ec.getAuthUser(ctx)
	if err != nil {
		ec.app.Logger.Errorf("Failed to get auth user: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		ec.app.Logger.Errorf("Failed to bind request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	docFile, err := ctx.FormFile("documentFile")
	if err != nil {
		ec.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "No document uploaded", util.GenerateErrorMessages(errors.New("document file is required"), "documentFile"), nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(docFile.Filename))
	if !slices.Contains(ALLOWED_DOCUMENT_FILE_TYPE, ext) {
		ec.app.Logger.Errorf("Failed to create endorsement request: invalid file type %s", ext)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid file type", util.GenerateErrorMessages(errors.New("document must be a pdf"), "documentFile"), nil)
		return
	}

	refCode, err := util.GenerateNChar(REF_CODE_LENGTH)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return
	}

	info, err := util.UploadFileToS3ByFileHeader(docFile, &util.FileUploadOptions{
		DirectoryPath: util.GetEndorsementDirectoryPath(refCode),
		UniquePrefix:  true,
		Bucket:        ec.app.Config.Minio.BUCKET,
		S3:            ec.app.S3,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload document", util.GenerateErrorMessages(err), nil)
		return
	}

	requesterType := constant.RequesterTypeCustomer
	if user.Role == constant.UserRoleShopOwner {
		requesterType = constant.RequesterTypeShopOwner
	}

	request := &model.EndorsementRequest{
		RefCode:          refCode,
		RequesterID:      user.ID,
		RequesterType:    requesterType,
		RequesterName:    body.RequesterName,
		RequesterMobile:  body.RequesterMobile,
		RequesterAddress: body.RequesterAddress,
		ShopNumber:       body.ShopNumber,
		Purpose:          body.Purpose,
		RequireSignature: body.RequireSignature,
		RequireSeal:      body.RequireSeal,
		DocumentFile: model.File{
			FileName:       util.ToEndorsementDirectoryPath(refCode, docFile.Filename),
			UniqueFileName: info.Key,
			BucketName:     info.Bucket,
			Size:           info.Size,
		},
	}

	created, err := ec.app.Repository.Endorsement.Create(ctx, nil, request, ctx.ClientIP())
	if err != nil {
		ec.app.Logger.Errorf("Failed to create endorsement request: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create endorsement request", util.GenerateErrorMessages(err), nil)
		return
	}

	ec.notifySignatories(ctx, created)

	util.ResponseSuccess(ctx, gin.H{
		"request": created,
	})
}

// ListEndorsementRequests returns a page of requests. Requesters only see
// their own, signatory roles see everything.
func (ec EndorsementController) ListEndorsementRequests(ctx *gin.Context) {
	type Request struct {
		Page     uint                       `form:"page"`
		PageSize uint                       `form:"pageSize"`
		Status   constant.EndorsementStatus `form:"status"`
	}
	var query Request

	user, err := ec.getAuthUser(ctx)
	if err != nil {
		ec.app.Logger.Errorf("Failed to get auth user: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid query", util.GenerateErrorMessages(err), nil)
		return
	}

	if query.Status != "" && !query.Status.Valid() {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid status", util.GenerateErrorMessages(errors.New("unknown status"), "status"), nil)
		return
	}

	page, pageSize := util.NormalizePagination(query.Page, query.PageSize)

	filter := repository.EndorsementListFilter{
		Status:   query.Status,
		Page:     page,
		PageSize: pageSize,
	}
	if !user.Role.CanEndorse() {
		filter.RequesterID = user.ID
	}

	requests, total, err := ec.app.Repository.Endorsement.List(ctx, nil, filter)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list endorsement requests", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"requests":  requests,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
		"totalPage": util.CalculateTotalPage(total, pageSize),
	})
}

func (ec EndorsementController) GetEndorsementRequestById(ctx *gin.Context) {
	request, _, ok := ec.loadAuthorizedRequest(ctx)
	if !ok {
		return
	}

	documentUrl, err := request.DocumentFile.ToPresignedUrl(ctx, ec.app.S3)
	if err != nil {
		ec.app.Logger.Errorf("Failed to presign document url: %v", err)
	}

	var signedUrl string
	if request.SignedFile != nil {
		signedUrl, err = request.SignedFile.ToPresignedUrl(ctx, ec.app.S3)
		if err != nil {
			ec.app.Logger.Errorf("Failed to presign signed document url: %v", err)
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"request":     request,
		"documentUrl": documentUrl,
		"signedUrl":   signedUrl,
	})
}

// UpdateEndorsementStatus performs the accept, reject and cancel
// transitions. The repository re-checks the lifecycle guard and swaps the
// row against the version read here, a concurrent transition surfaces as
// a conflict instead of silently overwriting.
func (ec EndorsementController) UpdateEndorsementStatus(ctx *gin.Context) {
	type Request struct {
		Status          constant.EndorsementStatus `json:"status" form:"status" binding:"required"`
		RejectionReason string                     `json:"rejectionReason" form:"rejectionReason" binding:"omitempty,max=500"`
	}
	var body Request

	request, user, ok := ec.loadAuthorizedRequest(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	switch body.Status {
	case constant.EndorsementStatusAccepted, constant.EndorsementStatusRejected, constant.EndorsementStatusCancelled:
	default:
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid target status", util.GenerateErrorMessages(errors.New("status must be accepted, rejected or cancelled"), "status"), nil)
		return
	}

	var rejectionReason *string
	if body.Status == constant.EndorsementStatusRejected && body.RejectionReason != "" {
		rejectionReason = &body.RejectionReason
	}

	actor := model.Actor{ID: user.ID, Role: user.Role}
	err := ec.app.Repository.Endorsement.UpdateStatus(ctx, nil, request, body.Status, actor, rejectionReason, ctx.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, model.ErrActorNotAuthorized):
			util.ResponseFailed(ctx, http.StatusForbidden, "You are not allowed to perform this transition", util.GenerateErrorMessages(err, "status"), nil)
		case errors.Is(err, model.ErrTransitionNotAllowed):
			util.ResponseFailed(ctx, http.StatusConflict, "Transition not allowed from current status", util.GenerateErrorMessages(err, "status"), nil)
		case errors.Is(err, repository.ErrRequestConflict):
			util.ResponseFailed(ctx, http.StatusConflict, "Request was modified concurrently, reload and retry", util.GenerateErrorMessages(err, "status"), nil)
		default:
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update status", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	ec.notifyDecision(ctx, request, body.Status, body.RejectionReason)

	updated, err := ec.app.Repository.Endorsement.GetById(ctx, nil, request.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to reload request", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"request": updated,
	})
}

type overlayRequest struct {
	// FileId points at a previously uploaded overlay image; DataURL carries
	// the image inline as a base64 data url. Exactly one must be set.
	FileId    string            `json:"fileId" form:"fileId"`
	DataURL   string            `json:"dataUrl" form:"dataUrl"`
	Placement endorse.Placement `json:"placement" form:"placement" binding:"required"`
}

func (ec EndorsementController) resolveOverlayImage(ctx *gin.Context, o *overlayRequest) ([]byte, error) {
	switch {
	case o.DataURL != "":
		return endorse.DecodeDataURL(o.DataURL)
	case o.FileId != "":
		file, err := ec.app.Repository.File.GetById(ctx, nil, o.FileId)
		if err != nil {
			return nil, fmt.Errorf("overlay file not found: %w", err)
		}
		return file.Download(ctx, ec.app.S3)
	default:
		return nil, errors.New("overlay needs either fileId or dataUrl")
	}
}

// SignEndorsementRequest burns the signature and seal overlays onto the
// document of an accepted request, stores the result as a new object and
// commits the signed transition. Failure at any step leaves the original
// document and the request untouched.
func (ec EndorsementController) SignEndorsementRequest(ctx *gin.Context) {
	type Request struct {
		Page      int                 `json:"page" form:"page" binding:"required,number,gte=1"`
		Render    *endorse.RenderSize `json:"render" form:"render"`
		Signature *overlayRequest     `json:"signature" form:"signature"`
		Seal      *overlayRequest     `json:"seal" form:"seal"`
	}
	var body Request

	request, user, ok := ec.loadAuthorizedRequest(ctx)
	if !ok {
		return
	}

	if !user.Role.CanEndorse() {
		util.ResponseFailed(ctx, http.StatusForbidden, "Only a signatory can sign", util.GenerateErrorMessages(errors.New("permission denied")), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := request.GuardApply(); err != nil {
		util.ResponseFailed(ctx, http.StatusConflict, "Request is not in accepted state", util.GenerateErrorMessages(err, "status"), nil)
		return
	}

	if request.RequireSignature && body.Signature == nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Signature placement is required", util.GenerateErrorMessages(errors.New("signature overlay is required"), "signature"), nil)
		return
	}
	if request.RequireSeal && body.Seal == nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Seal placement is required", util.GenerateErrorMessages(errors.New("seal overlay is required"), "seal"), nil)
		return
	}

	var overlays []endorse.Overlay
	for _, in := range []struct {
		kind endorse.OverlayKind
		req  *overlayRequest
	}{
		{endorse.OverlaySignature, body.Signature},
		{endorse.OverlaySeal, body.Seal},
	} {
		if in.req == nil {
			continue
		}

		img, err := ec.resolveOverlayImage(ctx, in.req)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to load overlay image", util.GenerateErrorMessages(err, string(in.kind)), nil)
			return
		}

		if _, _, err := endorse.DecodeOverlay(img); err != nil {
			util.ResponseFailed(ctx, http.StatusUnprocessableEntity, "Unsupported overlay image format", util.GenerateErrorMessages(err, string(in.kind)), nil)
			return
		}

		overlays = append(overlays, endorse.Overlay{
			Kind:      in.kind,
			Placement: in.req.Placement,
			Image:     img,
		})
	}

	pdf, err := request.DocumentFile.Download(ctx, ec.app.S3)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to fetch document", util.GenerateErrorMessages(err), nil)
		return
	}

	signed, err := endorse.ApplyOverlays(pdf, body.Page, body.Render, overlays)
	if err != nil {
		ec.app.Logger.Errorf("Failed to apply overlays for request %s: %v", request.ID, err)
		util.ResponseFailed(ctx, http.StatusUnprocessableEntity, "Failed to endorse document", util.GenerateErrorMessages(err), nil)
		return
	}

	if ec.app.Config.Endorse.EmbedVerifyQR {
		// reuse the clamped page the overlays landed on
		page, err := endorse.ResolvePage(signed, body.Page)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve endorsed page", util.GenerateErrorMessages(err), nil)
			return
		}

		verifyURL := fmt.Sprintf(ec.app.Config.Endorse.VerifyURLPattern, request.RefCode)
		signed, err = endorse.StampVerifyQR(signed, page.Number, verifyURL)
		if err != nil {
			ec.app.Logger.Errorf("Failed to stamp verification qr for request %s: %v", request.ID, err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to stamp verification code", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	signedName := util.ToSignedDocumentFilename(request.RequesterName)
	info, err := util.UploadBytesToS3(signed, signedName, "application/pdf", &util.FileUploadOptions{
		DirectoryPath: util.GetEndorsementDirectoryPath(request.RefCode),
		UniquePrefix:  true,
		Bucket:        ec.app.Config.Minio.BUCKET,
		S3:            ec.app.S3,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store signed document", util.GenerateErrorMessages(err), nil)
		return
	}

	signedFile := &model.File{
		FileName:       util.ToEndorsementDirectoryPath(request.RefCode, signedName),
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		Size:           info.Size,
	}

	if err := ec.app.Repository.Endorsement.MarkSigned(ctx, nil, request, signedFile, ctx.ClientIP()); err != nil {
		// roll back the uploaded object, the request stays accepted
		if delErr := signedFile.Delete(ctx, ec.app.S3); delErr != nil {
			ec.app.Logger.Errorf("Failed to delete orphaned signed object %s: %v", info.Key, delErr)
		}

		switch {
		case errors.Is(err, model.ErrInvalidStateForApply), errors.Is(err, repository.ErrRequestConflict):
			util.ResponseFailed(ctx, http.StatusConflict, "Request state changed, reload and retry", util.GenerateErrorMessages(err, "status"), nil)
		default:
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to commit signed transition", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	ec.notifySigned(ctx, request, signedFile)

	signedUrl, err := signedFile.ToPresignedUrl(ctx, ec.app.S3)
	if err != nil {
		ec.app.Logger.Errorf("Failed to presign signed document url: %v", err)
	}

	util.ResponseSuccess(ctx, gin.H{
		"signedFileId": signedFile.ID,
		"signedUrl":    signedUrl,
	})
}

func (ec EndorsementController) GetAuditLog(ctx *gin.Context) {
	request, _, ok := ec.loadAuthorizedRequest(ctx)
	if !ok {
		return
	}

	logs, err := ec.app.Repository.AuditLog.GetByRequestId(ctx, nil, request.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get audit log", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"auditLogs": logs,
	})
}

// VerifyByRefCode is the public endpoint behind the verification QR. It
// exposes only what a third party needs to check a stamped document.
func (ec EndorsementController) VerifyByRefCode(ctx *gin.Context) {
	refCode := ctx.Params.ByName("refCode")
	if refCode == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Reference code is required", util.GenerateErrorMessages(errors.New("reference code is required"), "refCode"), nil)
		return
	}

	request, err := ec.app.Repository.Endorsement.GetByRefCode(ctx, nil, refCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Unknown reference code", util.GenerateErrorMessages(err, "refCode"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"refCode":       request.RefCode,
		"status":        request.Status,
		"requesterName": request.RequesterName,
		"signedAt":      request.SignedAt,
	})
}

// loadAuthorizedRequest resolves :requestId and enforces read access:
// the requester who filed it, or any signatory role.
func (ec EndorsementController) loadAuthorizedRequest(ctx *gin.Context) (*model.EndorsementRequest, *auth.JWTPayload, bool) {
	requestId := ctx.Params.ByName("requestId")
	if requestId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Request id is required", util.GenerateErrorMessages(errors.New(ErrRequestIdRequired), "requestId"), nil)
		return nil, nil, false
	}

	user, err := ec.getAuthUser(ctx)
	if err != nil {
		ec.app.Logger.Errorf("Failed to get auth user: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return nil, nil, false
	}

	request, err := ec.app.Repository.Endorsement.GetById(ctx, nil, requestId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Endorsement request not found", util.GenerateErrorMessages(errors.New(ErrRequestNotFound), "requestId"), nil)
			return nil, nil, false
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", util.GenerateErrorMessages(err), nil)
		return nil, nil, false
	}

	if request.RequesterID != user.ID && !user.Role.CanEndorse() {
		util.ResponseFailed(ctx, http.StatusForbidden, "You do not have permission to access this request", util.GenerateErrorMessages(errors.New("permission denied"), "requestId"), nil)
		return nil, nil, false
	}

	return request, user, true
}

// Mail jobs are best effort: a queue failure is logged and never fails
// the transition that triggered it.
func (ec EndorsementController) publishMailJob(job queue.MailJobPayload, err error) {
	if err != nil {
		ec.app.Logger.Errorf("Failed to build mail job: %v", err)
		return
	}
	if ec.app.Queue == nil {
		return
	}

	payloadBytes, err := json.Marshal(job)
	if err != nil {
		ec.app.Logger.Errorf("Failed to marshal mail job: %v", err)
		return
	}

	if err := ec.app.Queue.Publish(queue.QueueMail, payloadBytes); err != nil {
		ec.app.Logger.Errorf("Failed to publish mail job: %v", err)
	}
}

func (ec EndorsementController) requestURL(requestId string) string {
	return fmt.Sprintf("%s/endorsements/%s", ec.app.Config.FrontendURL, requestId)
}

func (ec EndorsementController) notifySignatories(ctx *gin.Context, request *model.EndorsementRequest) {
	signatories, err := ec.app.Repository.User.GetSignatories(ctx, nil)
	if err != nil {
		ec.app.Logger.Errorf("Failed to list signatories for notification: %v", err)
		return
	}

	for _, signatory := range signatories {
		job, err := queue.NewRequestSubmittedMailJob(signatory.Email, mailer.RequestSubmittedData{
			SignatoryName: signatory.FullName(),
			RequesterName: request.RequesterName,
			RefCode:       request.RefCode,
			Purpose:       request.Purpose,
			RequestURL:    ec.requestURL(request.ID),
		})
		ec.publishMailJob(job, err)
	}
}

func (ec EndorsementController) notifyDecision(ctx *gin.Context, request *model.EndorsementRequest, to constant.EndorsementStatus, reason string) {
	if request.Requester.Email == "" {
		return
	}

	data := mailer.RequestDecisionData{
		RequesterName: request.RequesterName,
		RefCode:       request.RefCode,
		Purpose:       request.Purpose,
		Reason:        reason,
		RequestURL:    ec.requestURL(request.ID),
	}

	switch to {
	case constant.EndorsementStatusAccepted:
		job, err := queue.NewRequestAcceptedMailJob(request.Requester.Email, data)
		ec.publishMailJob(job, err)
	case constant.EndorsementStatusRejected:
		job, err := queue.NewRequestRejectedMailJob(request.Requester.Email, data)
		ec.publishMailJob(job, err)
	}
}

func (ec EndorsementController) notifySigned(ctx *gin.Context, request *model.EndorsementRequest, signedFile *model.File) {
	if request.Requester.Email == "" {
		return
	}

	signedBy, err := ec.app.Repository.User.GetById(ctx, nil, request.SignedBy())
	signedByName := "An authorized signatory"
	if err == nil {
		signedByName = signedBy.FullName()
	}

	job, err := queue.NewRequestSignedMailJob(request.Requester.Email, mailer.RequestSignedData{
		RequesterName: request.RequesterName,
		RefCode:       request.RefCode,
		SignedByName:  signedByName,
		DownloadURL:   ec.requestURL(request.ID),
	})
	ec.publishMailJob(job, err)
}
