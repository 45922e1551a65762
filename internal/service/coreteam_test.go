package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/service"
)

func validMemberInput() service.CoreTeamInput {
	return service.CoreTeamInput{
		Name:         "Ada Lovelace",
		Role:         "Lead",
		About:        "Writes the first programs and runs the workshops.",
		ProfileImage: "https://img.example.com/ada.png",
		SocialLinks:  service.SocialLinksInput{GitHub: "https://github.com/ada", Twitter: "   "},
	}
}

func TestCoreTeamService_Lifecycle(t *testing.T) {
	h := newHarness()
	svc := h.coreTeamService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validMemberInput())
	require.NoError(t, err)
	require.NotNil(t, created.SocialLinks)
	assert.Equal(t, "https://github.com/ada", created.SocialLinks.GitHub)
	assert.Empty(t, created.SocialLinks.Twitter)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	role := "Organizer"
	updated, err := svc.Update(ctx, created.ID, service.CoreTeamPatchInput{Role: &role, SocialLinks: &service.SocialLinksInput{}})
	require.NoError(t, err)
	assert.Equal(t, "Organizer", updated.Role)
	assert.Nil(t, updated.SocialLinks)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 1, list.TotalPages)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	actions := make([]string, 0, len(h.store.activities))
	for _, a := range h.store.activities {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{
		model.ActionCoreTeamMemberCreated,
		model.ActionCoreTeamMemberUpdated,
		model.ActionCoreTeamMemberDeleted,
	}, actions)
}

func TestCoreTeamService_Validation(t *testing.T) {
	svc := newHarness().coreTeamService()
	in := validMemberInput()
	in.ProfileImage = ""
	in.SocialLinks.LinkedIn = "linkedin"

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.ElementsMatch(t, []string{"profileImage", "socialLinks.linkedin"}, fieldNames(err))

	_, err = svc.Get(context.Background(), "zz")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	err = svc.Delete(context.Background(), objectid.New().Hex())
	require.ErrorIs(t, err, repository.ErrNotFound)
}
