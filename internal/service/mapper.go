package service

import (
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
)

func toUserDTO(user model.User) dto.User {
	return dto.User{
		ID:               user.ID,
		Username:         user.Username,
		DisplayUsername:  user.DisplayUsername,
		Email:            user.Email,
		IsEmailVerified:  user.IsEmailVerified,
		Role:             string(user.Role),
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Image:            user.Image,
		Bio:              user.Bio,
		TwoFactorEnabled: user.TwoFactorEnabled,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func toUserDTOs(users []model.User) []dto.User {
	result := make([]dto.User, 0, len(users))
	for _, user := range users {
		result = append(result, toUserDTO(user))
	}
	return result
}
