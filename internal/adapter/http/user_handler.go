package http

import (
	"net/http"

	"insurance-claims-backend/internal/infrastructure/logger"
	useruc "insurance-claims-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	uc  *useruc.Usecase
	log *logger.Logger
}

func NewUserHandler(uc *useruc.Usecase, log *logger.Logger) *UserHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserHandler{uc: uc, log: log}
}

func (h *UserHandler) Login(c echo.Context) error {
	var in useruc.LoginInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Login(c.Request().Context(), in)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *UserHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.Me(c.Request().Context(), a)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *UserHandler) ListClaimTypes(c echo.Context) error {
	out, err := h.uc.ListClaimTypes(c.Request().Context())
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *UserHandler) AllowedClaimTypes(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.AllowedClaimTypes(c.Request().Context(), a.ID)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

// ----- checker user management -----

func (h *UserHandler) List(c echo.Context) error {
	out, err := h.uc.ListUsers(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *UserHandler) Create(c echo.Context) error {
	var in useruc.CreateUserInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.CreateUser(c.Request().Context(), in)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusCreated, out)
}

func (h *UserHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	var in useruc.UpdateUserInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.UpdateUser(c.Request().Context(), a, c.Param("userId"), in)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *UserHandler) Deactivate(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	if err := h.uc.DeactivateUser(c.Request().Context(), a, c.Param("userId")); err != nil {
		return respondErr(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
