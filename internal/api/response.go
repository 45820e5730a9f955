package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func dataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func success(c echo.Context, data interface{}) error {
	return dataResponse(c, http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return dataResponse(c, http.StatusCreated, data)
}

func failure(c echo.Context, status int, code, msg string) error {
	return dataResponse(c, status, []ErrorBody{{Code: code, Message: msg}})
}
