package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type ErrorResponse struct {
	Message string `json:"Message"`
}

// WriteErrorAndStatusCode serializes err as {"Message": ...}. Errors without a
// status are logged and reported as a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	message := err.Error()
	if _, ok := err.(*errors.ErrorWithStatusCode); !ok {
		logger.Log.Error("unhandled error", "error", err)
		message = "Internal server error"
	} else if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
	}
	WriteJSON(w, status, ErrorResponse{Message: message})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func GetIP(r *http.Request) (string, error) {
	ip := r.Header.Get("X-REAL-IP")
	if net.ParseIP(ip) != nil {
		return ip, nil
	}

	for _, ip := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if net.ParseIP(ip) != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

// Validate checks the validate tags of a struct
func Validate(body any) error {
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("validation failed", "error", err)
		return errors.BadRequest(validationMessage(err))
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return errors.BadRequest("Body is invalid json")
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Required fields missing"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "min", "max":
		return fmt.Sprintf("Field '%s' must be between the allowed length bounds (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fe.Field())
	}
}
