package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"hub3-slips/internal/hub3"
	"hub3-slips/internal/repository"
	"hub3-slips/internal/service"
)

type APIResponse struct {
	ErrorCode int         `json:"error_code"`
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

func Response(w http.ResponseWriter, message string, data interface{}, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("[HTTP] write response error: %v", err)
	}
}

func Success(w http.ResponseWriter, message string, data interface{}) {
	Response(w, message, data, 0, "success", http.StatusOK)
}

func SuccessAccepted(w http.ResponseWriter, message string, data interface{}) {
	Response(w, message, data, 0, "success", http.StatusAccepted)
}

func Error(w http.ResponseWriter, message string, errorCode int, httpStatus int) {
	Response(w, message, nil, errorCode, "error", httpStatus)
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, 400, http.StatusBadRequest)
}

// ErrorValidation is a 400 whose data lists the message per field.
func ErrorValidation(w http.ResponseWriter, verr *ValidationError) {
	Response(w, verr.Error(), verr.Fields, 400, "error", http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, 401, http.StatusUnauthorized)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, 404, http.StatusNotFound)
}

func ErrorUnprocessable(w http.ResponseWriter, message string) {
	Error(w, message, 422, http.StatusUnprocessableEntity)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, 500, http.StatusInternalServerError)
}

// serviceError maps a service error onto the response envelope.
func serviceError(w http.ResponseWriter, op string, err error) {
	var (
		verr *ValidationError
		ferr *hub3.FieldError
	)
	switch {
	case errors.As(err, &verr):
		ErrorValidation(w, verr)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		ErrorNotFound(w, err.Error())
	case errors.As(err, &ferr), errors.Is(err, service.ErrBatchTooLarge):
		ErrorUnprocessable(w, err.Error())
	default:
		log.Printf("[HTTP] %s error: %v", op, err)
		ErrorInternal(w, "failed to "+op)
	}
}
