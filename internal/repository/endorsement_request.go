package repository

import (
	"context"
	"errors"
	"time"

	"github.com/VannaSem/SevaSign/internal/constant"
	"github.com/VannaSem/SevaSign/internal/model"
	"gorm.io/gorm"
)

// ErrRequestConflict means the compare-and-swap on the request row found a
// different status/version than expected: another actor transitioned the
// request first.
var ErrRequestConflict = errors.New("endorsement request was modified concurrently")

type EndorsementRequestRepository struct {
	*baseRepository
	audit *AuditLogRepository
}

// EndorsementListFilter scopes List queries.
type EndorsementListFilter struct {
	// RequesterID limits results to one requester; empty means all.
	RequesterID string
	// Status filters by a single status; empty means all.
	Status   constant.EndorsementStatus
	Page     uint
	PageSize uint
}

// Create inserts a pending request together with its CREATED audit entry.
func (er EndorsementRequestRepository) Create(ctx context.Context, tx *gorm.DB, request *model.EndorsementRequest, ipAddress string) (*model.EndorsementRequest, error) {
	er.logger.Debugf("Create endorsement request for requester: %s", request.RequesterID)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	request.Status = constant.EndorsementStatusPending

	txErr := er.withTx(db, func(tx2 *gorm.DB) error {
		if err := tx2.WithContext(ctx).Model(&model.EndorsementRequest{}).Create(request).Error; err != nil {
			return err
		}

		return er.audit.Append(ctx, tx2, &model.AuditLog{
			RequestID:   request.ID,
			Action:      constant.AuditActionCreated,
			PerformedBy: request.RequesterID,
			PerformedAt: time.Now(),
			IPAddress:   ipAddress,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	return request, nil
}

func (er EndorsementRequestRepository) GetById(ctx context.Context, tx *gorm.DB, requestId string) (*model.EndorsementRequest, error) {
	er.logger.Debugf("Get endorsement request by id: %s", requestId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var request model.EndorsementRequest
	if err := db.WithContext(ctx).Model(&model.EndorsementRequest{}).
		Preload("DocumentFile").Preload("SignedFile").Preload("Requester").
		Where(&model.EndorsementRequest{BaseModel: model.BaseModel{ID: requestId}}).
		First(&request).Error; err != nil {
		return nil, err
	}

	return &request, nil
}

func (er EndorsementRequestRepository) GetByRefCode(ctx context.Context, tx *gorm.DB, refCode string) (*model.EndorsementRequest, error) {
	er.logger.Debugf("Get endorsement request by ref code: %s", refCode)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var request model.EndorsementRequest
	if err := db.WithContext(ctx).Model(&model.EndorsementRequest{}).
		Preload("SignedFile").
		Where(&model.EndorsementRequest{RefCode: refCode}).
		First(&request).Error; err != nil {
		return nil, err
	}

	return &request, nil
}

func (er EndorsementRequestRepository) List(ctx context.Context, tx *gorm.DB, filter EndorsementListFilter) ([]*model.EndorsementRequest, int64, error) {
	er.logger.Debugf("List endorsement requests with filter: %+v", filter)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.EndorsementRequest{})
	if filter.RequesterID != "" {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*model.EndorsementRequest
	offset := int((filter.Page - 1) * filter.PageSize)
	if err := query.Preload("DocumentFile").Preload("SignedFile").
		Order("created_at desc").
		Limit(int(filter.PageSize)).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// UpdateStatus performs a guarded user-driven transition (accept, reject,
// cancel) as a compare-and-swap against the status and version the caller
// read. A concurrent transition makes the swap match zero rows and the
// whole operation fails with ErrRequestConflict, nothing is overwritten.
// One audit entry is appended in the same transaction.
func (er EndorsementRequestRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, request *model.EndorsementRequest, to constant.EndorsementStatus, actor model.Actor, rejectionReason *string, ipAddress string) error {
	er.logger.Debugf("Update endorsement request %s status %s -> %s by %s", request.ID, request.Status, to, actor.ID)

	if err := request.GuardTransition(to, actor); err != nil {
		return err
	}

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	updates := map[string]any{
		"status":  to,
		"version": request.Version + 1,
	}
	switch to {
	case constant.EndorsementStatusAccepted:
		updates["accepted_by_id"] = actor.ID
	case constant.EndorsementStatusRejected:
		updates["rejection_reason"] = rejectionReason
	}

	return er.withTx(db, func(tx2 *gorm.DB) error {
		res := tx2.WithContext(ctx).Model(&model.EndorsementRequest{}).
			Where("id = ? AND status = ? AND version = ?", request.ID, request.Status, request.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestConflict
		}

		return er.audit.Append(ctx, tx2, &model.AuditLog{
			RequestID:   request.ID,
			Action:      constant.AuditActionForStatus(to),
			PerformedBy: actor.ID,
			PerformedAt: time.Now(),
			IPAddress:   ipAddress,
		})
	})
}

// MarkSigned commits the internal accepted -> signed transition: it writes
// the signed file's metadata record, swaps the request into signed state
// with the authority attribution, and appends the SIGNED audit entry. All
// of it in one transaction, the sole mutating step of an apply call.
func (er EndorsementRequestRepository) MarkSigned(ctx context.Context, tx *gorm.DB, request *model.EndorsementRequest, signedFile *model.File, ipAddress string) error {
	er.logger.Debugf("Mark endorsement request %s as signed", request.ID)

	if err := request.GuardApply(); err != nil {
		return err
	}

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	signedBy := request.SignedBy()
	now := time.Now()

	return er.withTx(db, func(tx2 *gorm.DB) error {
		if err := tx2.WithContext(ctx).Model(&model.File{}).Create(signedFile).Error; err != nil {
			return err
		}

		res := tx2.WithContext(ctx).Model(&model.EndorsementRequest{}).
			Where("id = ? AND status = ? AND version = ?", request.ID, constant.EndorsementStatusAccepted, request.Version).
			Updates(map[string]any{
				"status":         constant.EndorsementStatusSigned,
				"version":        request.Version + 1,
				"signed_file_id": signedFile.ID,
				"signed_by_id":   signedBy,
				"signed_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestConflict
		}

		return er.audit.Append(ctx, tx2, &model.AuditLog{
			RequestID:   request.ID,
			Action:      constant.AuditActionSigned,
			PerformedBy: signedBy,
			PerformedAt: now,
			IPAddress:   ipAddress,
		})
	})
}
