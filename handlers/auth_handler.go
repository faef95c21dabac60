package handlers

import (
	"errors"
	"log"
	"net/http"

	"pollboard-backend/auth"
	"pollboard-backend/config"
	"pollboard-backend/database"
	"pollboard-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Sign-in failures map to specific human-readable messages; anything
// unrecognized gets the generic one.
const (
	msgBadCredentials = "The email or password you entered is incorrect. Please try again."
	msgUnconfirmed    = "Please check your email and confirm your account before signing in."
	msgAuthGeneric    = "An error occurred during sign in. Please try again."
)

// SignupInput defines the expected input for creating an account.
type SignupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Signup creates a new account. Accounts are confirmed immediately when
// AUTH_AUTO_CONFIRM is set (the default).
func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Confirmed:    config.C.AuthAutoConfirm(),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		log.Printf("failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// LoginInput defines the expected input for signing in.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
			return
		}
		log.Printf("failed to look up user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAuthGeneric})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
		return
	}

	if !user.Confirmed {
		c.JSON(http.StatusForbidden, gin.H{"error": msgUnconfirmed})
		return
	}

	token, err := auth.GenerateToken(config.C.JWTSecret(), config.C.JWTTTL(), user.ID, user.Email)
	if err != nil {
		log.Printf("failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAuthGeneric})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email},
	})
}

// Logout acknowledges sign-out. Sessions are stateless tokens, so the
// client simply discards its copy.
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me returns the authenticated user of the current session.
func Me(c *gin.Context) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": session.UserID, "email": session.Email})
}
