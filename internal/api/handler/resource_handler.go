package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/mediation-gateway/internal/api/metrics"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
)

// resourceResponse is the success envelope of the REST surface.
type resourceResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ResourceHandler exposes the gateway operations as REST resources. Errors
// are returned unrendered so the HTTP error handler can map them.
type ResourceHandler struct {
	gw *gateway.Gateway
}

func NewResourceHandler(gw *gateway.Gateway) *ResourceHandler {
	return &ResourceHandler{gw: gw}
}

func (h *ResourceHandler) invoke(c echo.Context, op string, args gateway.Args, status int) error {
	started := time.Now()
	res, err := h.gw.Invoke(c.Request().Context(), op, args)
	if err != nil {
		track(op, metrics.TransportREST, gateway.Code(err), started)
		return err
	}
	track(op, metrics.TransportREST, outcomeOK, started)
	return c.JSON(status, resourceResponse{Message: res.Message, Data: res.Data})
}

// body decodes the JSON request body into loose arguments. An empty body
// yields an empty set.
func body(c echo.Context) (gateway.Args, error) {
	args := gateway.Args{}
	if err := new(echo.DefaultBinder).BindBody(c, &args); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if args == nil {
		args = gateway.Args{}
	}
	return args, nil
}

// withID decodes the body and sets id from the path.
func withID(c echo.Context) (gateway.Args, error) {
	args, err := body(c)
	if err != nil {
		return nil, err
	}
	args["id"] = strings.TrimSpace(c.Param("id"))
	return args, nil
}

// ListUsers godoc
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  resourceResponse
// @Failure      503  {object}  map[string]string
// @Router       /api/users [get]
func (h *ResourceHandler) ListUsers(c echo.Context) error {
	return h.invoke(c, gateway.OpGetUsers, gateway.Args{}, http.StatusOK)
}

// GetUser godoc
//
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  resourceResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *ResourceHandler) GetUser(c echo.Context) error {
	return h.invoke(c, gateway.OpGetUsers, gateway.Args{"id": c.Param("id")}, http.StatusOK)
}

// CreateUser godoc
//
// @Summary      Create a user
// @Description  The role may be given by name or by ID.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "firstName, lastName, email, password, role, phone, dateOfBirth, isActive"
// @Success      201   {object}  resourceResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/users [post]
func (h *ResourceHandler) CreateUser(c echo.Context) error {
	args, err := body(c)
	if err != nil {
		return err
	}
	return h.invoke(c, gateway.OpCreateUser, args, http.StatusCreated)
}

// UpdateUser godoc
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User ID"
// @Param        body  body      map[string]any  true  "Fields to change"
// @Success      200   {object}  resourceResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users/{id} [put]
func (h *ResourceHandler) UpdateUser(c echo.Context) error {
	args, err := withID(c)
	if err != nil {
		return err
	}
	return h.invoke(c, gateway.OpUpdateUser, args, http.StatusOK)
}

// DeleteUser godoc
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  resourceResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *ResourceHandler) DeleteUser(c echo.Context) error {
	return h.invoke(c, gateway.OpDeleteUser, gateway.Args{"id": c.Param("id")}, http.StatusOK)
}

// ListRoles godoc
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {object}  resourceResponse
// @Router       /api/roles [get]
func (h *ResourceHandler) ListRoles(c echo.Context) error {
	return h.invoke(c, gateway.OpGetRoles, gateway.Args{}, http.StatusOK)
}

// GetRole godoc
//
// @Summary      Get a role by ID
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  resourceResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/roles/{id} [get]
func (h *ResourceHandler) GetRole(c echo.Context) error {
	return h.invoke(c, gateway.OpGetRoles, gateway.Args{"id": c.Param("id")}, http.StatusOK)
}

// CreateRole godoc
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "name, description, permissions, isActive"
// @Success      201   {object}  resourceResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/roles [post]
func (h *ResourceHandler) CreateRole(c echo.Context) error {
	args, err := body(c)
	if err != nil {
		return err
	}
	return h.invoke(c, gateway.OpCreateRole, args, http.StatusCreated)
}

// UpdateRole godoc
//
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Role ID"
// @Param        body  body      map[string]any  true  "Fields to change"
// @Success      200   {object}  resourceResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/roles/{id} [put]
func (h *ResourceHandler) UpdateRole(c echo.Context) error {
	args, err := withID(c)
	if err != nil {
		return err
	}
	return h.invoke(c, gateway.OpUpdateRole, args, http.StatusOK)
}

// DeleteRole godoc
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  resourceResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/roles/{id} [delete]
func (h *ResourceHandler) DeleteRole(c echo.Context) error {
	return h.invoke(c, gateway.OpDeleteRole, gateway.Args{"id": c.Param("id")}, http.StatusOK)
}

// Seed godoc
//
// @Summary      Seed the default roles and admin user
// @Tags         seed
// @Produce      json
// @Success      200  {object}  resourceResponse
// @Failure      503  {object}  map[string]string
// @Router       /api/seed [post]
func (h *ResourceHandler) Seed(c echo.Context) error {
	return h.invoke(c, gateway.OpSeedDatabase, nil, http.StatusOK)
}
