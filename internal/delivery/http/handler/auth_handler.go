package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"sharespace/internal/delivery/http/dto"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/domain/user"
	"sharespace/internal/pkg/response"
	"sharespace/internal/usecase"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`

	City             *string `json:"city"`
	Budget           *int    `json:"budget"`
	Cleanliness      *int    `json:"cleanliness"`
	NoiseLevel       *int    `json:"noise_level"`
	SleepSchedule    *string `json:"sleep_schedule"`
	Smoking          *string `json:"smoking"`
	SocialLevel      *string `json:"social_level"`
	HasPets          *bool   `json:"has_pets"`
	GenderPreference *string `json:"gender_preference"`
	WorkSchedule     *string `json:"work_schedule"`
	Occupation       *string `json:"occupation"`
	MBTIType         *string `json:"mbti_type"`
	GuestFrequency   *string `json:"guest_frequency"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	usr, pair, err := h.uc.Register(c.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Profile: user.Profile{
			City:             req.City,
			Budget:           req.Budget,
			Cleanliness:      req.Cleanliness,
			NoiseLevel:       req.NoiseLevel,
			SleepSchedule:    req.SleepSchedule,
			Smoking:          req.Smoking,
			SocialLevel:      req.SocialLevel,
			HasPets:          req.HasPets,
			GenderPreference: req.GenderPreference,
			WorkSchedule:     req.WorkSchedule,
			Occupation:       req.Occupation,
			MBTIType:         req.MBTIType,
			GuestFrequency:   req.GuestFrequency,
		},
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, response.MessageCreated, tokenData(usr, pair))
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	usr, pair, err := h.uc.Login(c.Context(), usecase.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, tokenData(usr, pair))
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, nil)
	}

	pair, err := h.uc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRefreshTokenExpired):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		default:
			return mapUsecaseError(err)
		}
	}

	data := map[string]any{
		"access_token":  pair.Access,
		"refresh_token": pair.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func tokenData(u user.User, pair usecase.TokenPair) map[string]any {
	return map[string]any{
		"user":          dto.NewUserResponse(u),
		"access_token":  pair.Access,
		"refresh_token": pair.Refresh,
	}
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrUsernameTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Username already taken", nil, err)
	case errors.Is(err, usecase.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
	default:
		return mapUsecaseError(err)
	}
}
