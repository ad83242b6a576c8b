package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userstore "github.com/bossygit/digital-medical-certificate-system/internal/auth/store/user"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	users := userstore.New()
	cmd := SeedAdminCommand{Email: "Admin@DGTT.cg", Password: "change-me-now", FirstName: "Ange", LastName: "Mavoungou"}

	admin, created, err := SeedAdmin(ctx, users, cmd, time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@dgtt.cg", admin.Email)
	assert.NoError(t, secrets.Verify("change-me-now", admin.PasswordHash))

	again, created, err := SeedAdmin(ctx, users, cmd, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, _, err = SeedAdmin(ctx, users, SeedAdminCommand{Email: "b@dgtt.cg", Password: "short", FirstName: "A", LastName: "B"}, time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
