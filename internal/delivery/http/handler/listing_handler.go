package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"sharespace/internal/delivery/http/dto"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/domain/listing"
	"sharespace/internal/pkg/response"
	"sharespace/internal/usecase"
)

type ListingHandler struct {
	feed     usecase.FeedUsecase
	listings usecase.ListingUsecase
}

type listingRequest struct {
	Title           string      `json:"title"`
	Address         *string     `json:"address"`
	Description     *string     `json:"description"`
	City            string      `json:"city"`
	Rent            int         `json:"rent"`
	RoommatesNeeded int         `json:"roommates_needed"`
	RoommatesFound  int         `json:"roommates_found"`
	PetsAllowed     bool        `json:"pets_allowed"`
	SmokingAllowed  bool        `json:"smoking_allowed"`
	IsActive        *bool       `json:"is_active"`
	Latitude        *float64    `json:"latitude"`
	Longitude       *float64    `json:"longitude"`
	ImageURLs       []string    `json:"image_urls"`
	RoommateIDs     []uuid.UUID `json:"current_roommates"`
}

func NewListingHandler(feed usecase.FeedUsecase, listings usecase.ListingUsecase) *ListingHandler {
	return &ListingHandler{feed: feed, listings: listings}
}

// RegisterRoutes wires the listing surface. The feed runs behind
// optional auth so anonymous browsing works; /my must register ahead
// of /:id so the static segment wins.
func (h *ListingHandler) RegisterRoutes(r fiber.Router, optionalAuth, requireAuth fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/", h.Feed, optionalAuth)
	r.Post("/", h.Create, requireAuth)
	r.Get("/my", h.MyListings, requireAuth)
	r.Get("/:id", h.Detail)
	r.Patch("/:id", h.Update, requireAuth)
	r.Delete("/:id", h.Delete, requireAuth)
}

// Feed serves the listing feed. Typed query parameters are validated
// here so malformed values never reach the matching core.
func (h *ListingHandler) Feed(c fiber.Ctx) error {
	filter, err := parseFeedFilter(c)
	if err != nil {
		return err
	}

	show, ok := usecase.ParseShowMode(c.Query("show"))
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid show mode", nil, nil)
	}

	params := usecase.FeedParams{Filter: filter, Show: show}
	if userID := middleware.UserIDFromCtx(c); userID != uuid.Nil {
		params.Viewer = &usecase.Viewer{ID: userID, Role: middleware.RoleFromCtx(c)}
	}

	items, err := h.feed.List(c.Context(), params)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewFeedResponse(items))
}

func (h *ListingHandler) Detail(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing id", nil, err)
	}

	l, err := h.listings.GetDetail(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewListingResponse(l))
}

func (h *ListingHandler) Create(c fiber.Ctx) error {
	listerID := middleware.UserIDFromCtx(c)

	var req listingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	l, err := h.listings.Create(c.Context(), listerID, listingInputFromRequest(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewListingResponse(l))
}

func (h *ListingHandler) MyListings(c fiber.Ctx) error {
	listerID := middleware.UserIDFromCtx(c)

	owned, err := h.listings.MyListings(c.Context(), listerID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMyListingsResponse(owned))
}

func (h *ListingHandler) Update(c fiber.Ctx) error {
	listerID := middleware.UserIDFromCtx(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing id", nil, err)
	}

	var req listingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	l, err := h.listings.Update(c.Context(), id, listerID, listingInputFromRequest(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewListingResponse(l))
}

func (h *ListingHandler) Delete(c fiber.Ctx) error {
	listerID := middleware.UserIDFromCtx(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing id", nil, err)
	}

	if err := h.listings.Delete(c.Context(), id, listerID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func listingInputFromRequest(req listingRequest) usecase.ListingInput {
	return usecase.ListingInput{
		Title:           req.Title,
		Address:         req.Address,
		Description:     req.Description,
		City:            req.City,
		Rent:            req.Rent,
		RoommatesNeeded: req.RoommatesNeeded,
		RoommatesFound:  req.RoommatesFound,
		PetsAllowed:     req.PetsAllowed,
		SmokingAllowed:  req.SmokingAllowed,
		IsActive:        req.IsActive,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ImageURLs:       req.ImageURLs,
		RoommateIDs:     req.RoommateIDs,
	}
}

func parseFeedFilter(c fiber.Ctx) (listing.Filter, error) {
	var f listing.Filter

	f.Search = strings.TrimSpace(c.Query("search"))

	pets, err := boolQuery(c, "pets_allowed")
	if err != nil {
		return listing.Filter{}, err
	}
	f.PetsAllowed = pets

	smoking, err := boolQuery(c, "smoking_allowed")
	if err != nil {
		return listing.Filter{}, err
	}
	f.SmokingAllowed = smoking

	minRent, err := intQuery(c, "min_rent")
	if err != nil {
		return listing.Filter{}, err
	}
	f.MinRent = minRent

	maxRent, err := intQuery(c, "max_rent")
	if err != nil {
		return listing.Filter{}, err
	}
	f.MaxRent = maxRent

	return f, nil
}

func boolQuery(c fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid value for "+name, nil, err)
	}
	return &v, nil
}

func intQuery(c fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid value for "+name, nil, err)
	}
	return &v, nil
}
