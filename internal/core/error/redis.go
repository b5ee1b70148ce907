package errx

import (
	"net/http"
)

// WrapRedis gives Redis failures a uniform status and message.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: RedisErrorMessage,
	}
}
