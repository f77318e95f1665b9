package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"sharespace/internal/delivery/http/dto"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/pkg/response"
	"sharespace/internal/usecase"
)

type UserHandler struct {
	users     usecase.UserUsecase
	favorites usecase.FavoriteUsecase
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`

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

func NewUserHandler(users usecase.UserUsecase, favorites usecase.FavoriteUsecase) *UserHandler {
	return &UserHandler{users: users, favorites: favorites}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/profile", h.GetProfile)
	r.Patch("/profile", h.UpdateProfile)
	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites/:listing_id", h.AddFavorite)
	r.Delete("/favorites/:listing_id", h.RemoveFavorite)
}

func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	u, err := h.users.GetProfile(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

func (h *UserHandler) UpdateProfile(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	u, err := h.users.UpdateProfile(c.Context(), userID, usecase.ProfileUpdateInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		AvatarURL:        req.AvatarURL,
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
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

func (h *UserHandler) ListFavorites(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	saved, err := h.favorites.List(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewListingsResponse(saved))
}

func (h *UserHandler) AddFavorite(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing id", nil, err)
	}

	if err := h.favorites.Add(c.Context(), userID, listingID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, nil)
}

func (h *UserHandler) RemoveFavorite(c fiber.Ctx) error {
	userID := middleware.UserIDFromCtx(c)

	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing id", nil, err)
	}

	if err := h.favorites.Remove(c.Context(), userID, listingID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
