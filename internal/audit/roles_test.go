package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"Auditeur", RoleAuditor, false},
		{"Site", RoleSite, false},
		{"Reviewer", RoleReviewer, false},
		{"auditeur", "", true},
		{"Admin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusInitial, StatusSiteInput, StatusAuditorReview, StatusFinalized} {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("Draft")
	require.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusInitial.Terminal())
	assert.False(t, StatusSiteInput.Terminal())
	assert.False(t, StatusAuditorReview.Terminal())
	assert.True(t, StatusFinalized.Terminal())
}

func TestParseActionStatus(t *testing.T) {
	for _, s := range []ActionStatus{ActionOpen, ActionInProgress, ActionClosed, ActionPendingReviewer} {
		got, err := ParseActionStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseActionStatus("Done")
	require.Error(t, err)
}

func TestParseEventKind(t *testing.T) {
	for _, e := range []EventKind{
		EventImported, EventLoaded, EventExported,
		EventFieldUpdated, EventCommentAdded, EventEvidenceAdded, EventEvidenceRemoved,
	} {
		got, err := ParseEventKind(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseEventKind("Deleted")
	require.Error(t, err)
}
