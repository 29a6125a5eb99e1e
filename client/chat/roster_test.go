package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artEvg/QuickChat/models"
)

func user(id, name string) models.User {
	return models.User{ID: id, FullName: name}
}

func TestIsRosterMember(t *testing.T) {
	unseen := models.UnseenMap{"u-unseen": 2}
	history := map[string]bool{"u-history": true}

	tests := []struct {
		name     string
		peerID   string
		selected string
		want     bool
	}{
		{"unseen messages", "u-unseen", "", true},
		{"corresponded with", "u-history", "", true},
		{"currently selected", "u-selected", "u-selected", true},
		{"stranger", "u-stranger", "", false},
		{"stranger while another selected", "u-stranger", "u-selected", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRosterMember(tt.peerID, unseen, history, tt.selected)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRosterMembershipFilter(t *testing.T) {
	directory := []models.User{
		user("u1", "Alice"),
		user("u2", "Bob"),
		user("u3", "Carol"),
		user("u4", "Dave"),
	}
	unseen := models.UnseenMap{"u2": 1}
	history := map[string]bool{"u1": true}

	roster := BuildRoster(directory, unseen, history, "u3", "")

	// u1 (history), u2 (unseen), u3 (selected); u4 dışarıda
	ids := make([]string, len(roster))
	for i, u := range roster {
		ids[i] = u.ID
	}
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids, "directory order is preserved")
}

func TestBuildRosterSearchWithinMembers(t *testing.T) {
	directory := []models.User{
		user("u1", "Alice Aydın"),
		user("u2", "Bob Alican"),
	}
	history := map[string]bool{"u1": true, "u2": true}

	roster := BuildRoster(directory, models.UnseenMap{}, history, "", "ali")
	// Case-insensitive substring: her iki isim de "ali" içerir
	assert.Len(t, roster, 2)

	roster = BuildRoster(directory, models.UnseenMap{}, history, "", "bob")
	assert.Len(t, roster, 1)
	assert.Equal(t, "u2", roster[0].ID)
}

func TestBuildRosterFallsBackToDirectory(t *testing.T) {
	directory := []models.User{
		user("u1", "Alice"),
		user("u2", "Brand New Person"),
	}
	history := map[string]bool{"u1": true}

	// "new" roster üyeleri arasında eşleşmez → tüm dizine düşülür,
	// ilk-temas konuşması başlatılabilir
	roster := BuildRoster(directory, models.UnseenMap{}, history, "", "new")
	assert.Len(t, roster, 1)
	assert.Equal(t, "u2", roster[0].ID)
}

func TestBuildRosterEmptyQueryStrangerHidden(t *testing.T) {
	directory := []models.User{user("u1", "Alice")}

	// Arama yoksa fallback de yok — yabancılar listelenmez
	roster := BuildRoster(directory, models.UnseenMap{}, map[string]bool{}, "", "")
	assert.Empty(t, roster)
}
