package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"telecom-backend/internal/api/v1/user"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Invoice{})
	db.AutoMigrate(&models.User{}, &models.Invoice{})

	database.DB = db
}

func TestCurrentUser(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	u := models.User{
		Username:     "alice1",
		PasswordHash: "irrelevant",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
	}
	database.DB.Create(&u)

	router := gin.New()
	router.GET("/auth/user", func(c *gin.Context) {
		c.Set("user", u)
		user.CurrentUser(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/user", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status int               `json:"status"`
		Data   user.UserResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "alice1", resp.Data.Username)
	assert.Equal(t, "alice@example.com", resp.Data.Email)
	assert.Equal(t, "Alice Example", resp.Data.FullName)
	assert.Empty(t, resp.Data.Token)
}

func TestCurrentUserMissingContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/auth/user", user.CurrentUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/user", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
