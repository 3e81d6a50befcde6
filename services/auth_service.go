package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
	"nutrilog/utils"
)

func RegisterUser(email, password, fullName string) (*models.User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrInternal, err)
	}

	user := models.User{
		Email:    email,
		Password: hashed,
		FullName: fullName,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrValidation)
		}
		return nil, fmt.Errorf("%w: creating user: %v", common.ErrInternal, err)
	}
	return &user, nil
}

func AuthenticateUser(email, password string) (string, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", common.ErrUnauthenticated
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", common.ErrUnauthenticated
	}
	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %v", common.ErrInternal, err)
	}
	return token, nil
}
