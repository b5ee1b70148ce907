package errx_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/njchilds90/mathcmd/internal/core/error"
)

var errBoom = errors.New("boom")

func TestAppError(t *testing.T) {
	err := errx.New(errBoom, http.StatusTeapot, "short and stout")
	assert.Equal(t, "short and stout: boom", err.Error())
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, "bad", errx.BadRequest("bad").Error())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, errx.From(nil))

	wrapped := fmt.Errorf("handler: %w", errx.BadRequest("no text"))
	app := errx.From(wrapped)
	require.NotNil(t, app)
	assert.Equal(t, http.StatusBadRequest, app.Status)

	app = errx.From(errBoom)
	assert.Equal(t, http.StatusInternalServerError, app.Status)
	assert.Equal(t, errx.SystemErrorMessage, app.Message)
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, errx.WrapRedis(nil))

	err := errx.WrapRedis(errBoom)
	var app *errx.AppError
	require.ErrorAs(t, err, &app)
	assert.Equal(t, http.StatusBadGateway, app.Status)
	assert.ErrorIs(t, err, errBoom)
}
