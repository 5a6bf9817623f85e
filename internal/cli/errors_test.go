package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitError(t *testing.T) {
	cause := errors.New("boom")

	err := DocumentError("parsing document", cause)
	assert.Equal(t, ExitDocument, err.Code)
	assert.Equal(t, "parsing document: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, ExitConfig, ConfigError("loading configuration", cause).Code)
	assert.Equal(t, ExitGeneral, GeneralError("x", nil).Code)
	assert.Equal(t, "x", GeneralError("x", nil).Error())

	silent := SilentError(ExitGeneral)
	assert.Equal(t, ExitGeneral, silent.Code)
	assert.Empty(t, silent.Error())

	assert.Equal(t, "boom", (&ExitError{Code: 1, Err: cause}).Error())
}
