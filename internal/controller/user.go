package controller

import (
	"fmt"
	"net/http"

	ctx "github.com/krakosik/userhub/internal/context"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/service"
	"github.com/labstack/echo/v4"
)

type UserController interface {
	List(c echo.Context) error
	ListCursor(c echo.Context) error
	Get(c echo.Context) error
	Me(c echo.Context) error
	UpdateMe(c echo.Context) error
	Delete(c echo.Context) error
	Restore(c echo.Context) error
}

type userController struct {
	userService service.UserService
}

func newUserController(userService service.UserService) UserController {
	return &userController{
		userService: userService,
	}
}

// bindAndValidate turns binder failures into validation errors so that every
// malformed request is answered the same way.
func bindAndValidate(c echo.Context, target interface{}) error {
	if err := c.Bind(target); err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return fmt.Errorf("%w: %v", dto.ErrValidation, httpErr.Message)
		}
		return fmt.Errorf("%w: %v", dto.ErrValidation, err)
	}
	return c.Validate(target)
}

func session(c echo.Context) (dto.Session, error) {
	s, ok := ctx.GetSession(c)
	if !ok {
		return dto.Session{}, fmt.Errorf("%w: no session", dto.ErrNotAuthorized)
	}
	return s, nil
}

func (u *userController) List(c echo.Context) error {
	query := dto.NewOffsetQuery()
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}

	page, err := u.userService.ListUsers(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (u *userController) ListCursor(c echo.Context) error {
	query := dto.NewCursorQuery()
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}

	page, err := u.userService.ListUsersCursor(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (u *userController) Get(c echo.Context) error {
	user, err := u.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (u *userController) Me(c echo.Context) error {
	s, err := session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.userService.Me(s))
}

func (u *userController) UpdateMe(c echo.Context) error {
	s, err := session(c)
	if err != nil {
		return err
	}

	var request dto.UpdateProfileRequest
	if err := bindAndValidate(c, &request); err != nil {
		return err
	}

	user, err := u.userService.UpdateProfile(c.Request().Context(), s, request)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (u *userController) Delete(c echo.Context) error {
	s, err := session(c)
	if err != nil {
		return err
	}

	if err := u.userService.DeleteUser(c.Request().Context(), s, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.StatusResponse{StatusCode: http.StatusOK})
}

func (u *userController) Restore(c echo.Context) error {
	s, err := session(c)
	if err != nil {
		return err
	}

	user, err := u.userService.RestoreUser(c.Request().Context(), s, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
