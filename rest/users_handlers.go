package rest

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"access-gateway-api/db"
	"access-gateway-api/extract"
)

func (h *Handlers) CreateCategoryHandler(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return ReturnBadRequest(c, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		return ReturnBadRequest(c, "name is required and must be at most 100 characters")
	}

	category, err := h.store.CreateCategory(c.UserContext(), req.Name)
	if errors.Is(err, db.ErrCategoryExists) {
		return ReturnConflict(c, "Category already exists")
	}
	if err != nil {
		return ReturnInternalError(c, "Failed to create category")
	}

	return c.Status(fiber.StatusCreated).JSON(CategoryDetail{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	})
}

func (h *Handlers) ListCategoriesHandler(c *fiber.Ctx) error {
	categories, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve categories")
	}

	details := make([]CategoryDetail, len(categories))
	for i, category := range categories {
		details[i] = CategoryDetail{
			ID:        category.ID,
			Name:      category.Name,
			CreatedAt: category.CreatedAt,
		}
	}

	return c.JSON(CategoriesListResponse{Data: details})
}

func (h *Handlers) GetUserHandler(c *fiber.Ctx) error {
	identifier := strings.TrimSpace(c.Params("identifier"))
	if identifier == "" {
		return ReturnBadRequest(c, "identifier is required")
	}

	ctx := c.UserContext()
	user, err := h.store.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, db.ErrNotFound) {
		return ReturnNotFound(c, "User not found")
	}
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve user")
	}

	grants, err := h.store.ListUserGrants(ctx, user.ID)
	if err != nil {
		return ReturnInternalError(c, "Failed to retrieve grants")
	}

	byAxis := make(map[string][]GrantDetail, len(extract.Axes))
	for _, axis := range extract.Axes {
		byAxis[axis.String()] = []GrantDetail{}
	}
	for _, grant := range grants {
		byAxis[grant.Axis.String()] = append(byAxis[grant.Axis.String()], GrantDetail{
			CategoryID:   grant.CategoryID,
			CategoryName: grant.CategoryName,
			CreatedAt:    grant.CreatedAt,
		})
	}

	return c.JSON(UserDetail{
		ID:          user.ID,
		Identifier:  user.Identifier,
		DisplayName: user.DisplayName,
		Active:      user.Active,
		CreatedAt:   user.CreatedAt,
		Grants:      byAxis,
	})
}
