package auth

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"io"
	"it-solutions-hub/internal/api"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/models"
	"net/http"
	"time"
)

// Api defines the admin authentication endpoints.
type Api interface {

	// Login issues a token for valid admin credentials
	Login(c *gin.Context)

	// RefreshToken creates a new access token after validating the old one
	RefreshToken(c *gin.Context)
}

// Controller wires environment dependencies with authentication service methods.
// It fulfills the Api interface and delegates credential checks to AuthService.
type Controller struct {
	*environment.Env
	*AuthService
	SigningKey string
	TokenTtl   time.Duration
}

// ensure Controller implements Api
var _ Api = &Controller{}

// Login expects {"data": {"username": "...", "password": "..."}} and answers with a bearer token.
func (ac *Controller) Login(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(constants.LogTypeAuth), "Error reading login info: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	request := api.GenericRequest{}
	err = request.Load(body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(constants.LogTypeAuth), "Error loading request data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	credentials := api.LoginRequest{}
	err = request.DecodeDataTo(&credentials)
	if err != nil {
		ac.LogErrorf(logging.GetLogType(constants.LogTypeAuth), "Error loading user data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading user info"))
		return
	}

	user := models.User{Username: credentials.Username, Password: credentials.Password}
	user.Prepare()
	err = user.Validate()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("Error validating User: %v", err))
		return
	}

	err = ac.DoLogin(c.Request.Context(), &user)
	if errors.Is(err, ErrInvalidCredentials) {
		ac.LogWarnf(logging.GetLogType(constants.LogTypeAuth, user.Username), "failed login")
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Login not successful"))
		return
	}
	if err != nil {
		ac.LogErrorf(logging.GetLogType(constants.LogTypeAuth, user.Username), "error checking credentials: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("Login not successful"))
		return
	}

	token, _, err := middlewares.GenerateToken([]byte(ac.SigningKey), ac.TokenTtl, user.ID, user.Username)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error creating JWT"))
		return
	}

	ac.LogInfof(logging.GetLogType(constants.LogTypeAuth, user.Username), "admin logged in")
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", token))
}

// RefreshToken answers a still valid token with a new one that expires a full TokenTtl from now.
func (ac *Controller) RefreshToken(c *gin.Context) {
	tokenString, ok := middlewares.BearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("An authorization token was not supplied"))
		return
	}

	token, err := middlewares.ValidateToken(tokenString, ac.SigningKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Invalid authorization token"))
		return
	}

	claims := token.Claims.(*middlewares.AdminClaims)
	claims.ExpiresAt = time.Now().Add(ac.TokenTtl).Unix()
	claims.IssuedAt = time.Now().Unix()

	// Create the token
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	refreshed, err := newToken.SignedString([]byte(ac.SigningKey))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error refreshing JWT"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", refreshed))
}
