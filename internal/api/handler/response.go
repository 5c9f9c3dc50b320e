package handler

import "github.com/labstack/echo/v4"

const apiVersion = "v1"

const (
	statusSuccess = "success"
	statusError   = "error"
)

type successEnvelope struct {
	API    string `json:"api"`
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ErrorEnvelope is the body of every failed response. Message is either a
// field→message map or {"error": "..."}.
type ErrorEnvelope struct {
	API     string `json:"api"`
	Status  string `json:"status"`
	Message any    `json:"message"`
}

func NewErrorEnvelope(message any) ErrorEnvelope {
	return ErrorEnvelope{API: apiVersion, Status: statusError, Message: message}
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, successEnvelope{API: apiVersion, Status: statusSuccess, Data: data})
}
