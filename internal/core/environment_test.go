package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/mathcmd/internal/core"
)

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, core.Production, core.ParseEnvironment("production"))
	assert.Equal(t, core.Staging, core.ParseEnvironment("staging"))
	assert.Equal(t, core.Testing, core.ParseEnvironment("testing"))
	assert.Equal(t, core.Development, core.ParseEnvironment(""))
	assert.Equal(t, core.Development, core.ParseEnvironment("prod"))
	assert.True(t, core.Production.IsProduction())
	assert.False(t, core.Staging.IsProduction())
}
