package controller

import (
	"net/http"
	"time"

	"github.com/krakosik/userhub/internal/dto"
	"github.com/labstack/echo/v4"
)

type InfoController interface {
	Info(c echo.Context) error
}

type infoController struct {
	config dto.Config
}

func newInfoController(config dto.Config) InfoController {
	return &infoController{config: config}
}

func (i *infoController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.InfoResponse{
		Name:        i.config.AppName,
		Environment: i.config.Env,
		Version:     i.config.Version,
		Time:        time.Now().UTC(),
	})
}
