package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

// UserHandler exposes the user entity.  Users are keyed by email.
type UserHandler struct {
	Users *ticketing.Users
}

func NewUserHandler(users *ticketing.Users) *UserHandler {
	if users == nil {
		panic("nil users passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

type createUserRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required,max=100"`
	Surname string `json:"surname" validate:"required,max=100"`
}

type updateUserRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Surname string `json:"surname" validate:"required,max=100"`
}

type userResponse struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Surname      string   `json:"surname"`
	Reservations []string `json:"reservations"`
}

func toUserResponse(d model.UserDetails) userResponse {
	res := d.Reservations
	if res == nil {
		res = []string{}
	}
	return userResponse{Email: d.Key, Name: d.Name, Surname: d.Surname, Reservations: res}
}

func emailParam(c echo.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Param("email")))
}

// GetUser handles GET /api/users/:email.  404 when the user was never
// initialized.
func (h *UserHandler) GetUser(c echo.Context) error {
	d, err := h.Users.Info(c.Request().Context(), emailParam(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(d))
}

// CreateUser handles POST /api/users.  Returns 201 with the user key, or
// 400 when the body is invalid or the user already exists.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var body createUserRequest
	if err := bindAndValidate(c, &body); err != nil {
		return err
	}
	key, err := h.Users.Initialize(c.Request().Context(), strings.ToLower(strings.TrimSpace(body.Email)), body.Name, body.Surname)
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/users/"+key)
	return c.JSON(http.StatusCreated, echo.Map{"email": key})
}

// UpdateUser handles PUT /api/users/:email.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var body updateUserRequest
	if err := bindAndValidate(c, &body); err != nil {
		return err
	}
	if err := h.Users.Update(c.Request().Context(), emailParam(c), body.Name, body.Surname); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}
