package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
	"github.com/bobmcallan/gripinvest/internal/storage/memory"
)

func newService() *Service {
	return NewService(memory.NewManager(), common.NewSilentLogger())
}

func ptr[T any](v T) *T { return &v }

func TestCreateProfile_Defaults(t *testing.T) {
	svc := newService()

	u, err := svc.CreateProfile(context.Background(), models.User{
		ID:        "user-1",
		FirstName: " Asha ",
		Email:     "Asha@Example.com",
		Role:      "superuser",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.FirstName)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.RiskModerate, u.RiskAppetite)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = svc.CreateProfile(context.Background(), models.User{ID: "user-1", FirstName: "A", Email: "a@b.c"})
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidState))
}

func TestCreateProfile_Validation(t *testing.T) {
	tests := []struct {
		name string
		user models.User
	}{
		{"missing id", models.User{FirstName: "A", Email: "a@b.c"}},
		{"missing first name", models.User{ID: "u", Email: "a@b.c"}},
		{"bad email", models.User{ID: "u", FirstName: "A", Email: "nope"}},
		{"bad risk", models.User{ID: "u", FirstName: "A", Email: "a@b.c", RiskAppetite: "yolo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService().CreateProfile(context.Background(), tt.user)
			assert.True(t, models.IsKind(err, models.ErrorKindInvalidInput))
		})
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	_, err := newService().GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindNotFound))
	assert.Equal(t, "User not found", err.Error())
}

func TestUpdateProfile(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.CreateProfile(ctx, models.User{ID: "user-1", FirstName: "Asha", LastName: "Rao", Email: "asha@example.com"})
	require.NoError(t, err)

	u, err := svc.UpdateProfile(ctx, "user-1", models.UserPatch{
		LastName:     ptr("Iyer"),
		RiskAppetite: ptr(models.RiskHigh),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.FirstName)
	assert.Equal(t, "Iyer", u.LastName)
	assert.Equal(t, models.RiskHigh, u.RiskAppetite)

	got, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, got.RiskAppetite)
	assert.Equal(t, "asha@example.com", got.Email)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.CreateProfile(ctx, models.User{ID: "user-1", FirstName: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "user-1", models.UserPatch{RiskAppetite: ptr(models.RiskLevel("extreme"))})
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidInput))

	_, err = svc.UpdateProfile(ctx, "user-1", models.UserPatch{FirstName: ptr("  ")})
	assert.True(t, models.IsKind(err, models.ErrorKindInvalidInput))

	_, err = svc.UpdateProfile(ctx, "ghost", models.UserPatch{LastName: ptr("X")})
	assert.True(t, models.IsKind(err, models.ErrorKindNotFound))

	got, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RiskModerate, got.RiskAppetite)
}
