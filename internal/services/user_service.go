package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// FindUserByID loads a user by primary key, going through the Redis cache
// when one is configured. The auth middleware calls this on every request.
func FindUserByID(userID uint) (models.User, error) {
	cacheKey := fmt.Sprintf("user:%d", userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return user, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return user, nil
}

func FindUserByUsername(username string) (models.User, error) {
	var user models.User
	err := database.DB.Where("username = ?", username).First(&user).Error
	return user, err
}
