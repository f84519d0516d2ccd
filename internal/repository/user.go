package repository

import (
	"context"

	constant "github.com/VannaSem/SevaSign/internal/constant"
	"github.com/VannaSem/SevaSign/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	*baseRepository
}

func (ur UserRepository) GetById(ctx context.Context, tx *gorm.DB, userId string) (*model.User, error) {
	ur.logger.Debugf("Get user by id: %s \n", userId)

	db := ur.getDB(tx)
	var user *model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{BaseModel: model.BaseModel{ID: userId}}).First(&user).Error; err != nil {
		return user, err
	}

	return user, nil
}

func (ur UserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	ur.logger.Debugf("Get user by email: %s \n", email)

	db := ur.getDB(tx)
	var user *model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.User{}).Where(&model.User{Email: email}).First(&user).Error; err != nil {
		return user, err
	}

	return user, nil
}

// GetSignatories returns every account holding a role that can endorse.
func (ur UserRepository) GetSignatories(ctx context.Context, tx *gorm.DB) ([]*model.User, error) {
	ur.logger.Debug("Get signatory users")

	db := ur.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var users []*model.User
	if err := db.WithContext(ctx).Model(&model.User{}).
		Where("role IN ?", constant.SignatoryRoles).
		Find(&users).Error; err != nil {
		return users, err
	}

	return users, nil
}

func (ur *UserRepository) Create(ctx context.Context, tx *gorm.DB, newUser model.User) error {
	ur.logger.Debugf("Create user with data: %v \n", newUser)

	db := ur.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	role := newUser.Role
	if role == "" {
		role = constant.UserRoleCustomer
	}

	if err := db.WithContext(ctx).Model(&model.User{}).Create(&model.User{
		Email:      newUser.Email,
		FirstName:  newUser.FirstName,
		LastName:   newUser.LastName,
		Role:       role,
		ProfileURL: newUser.ProfileURL,
	}).Error; err != nil {
		return err
	}

	return nil
}
