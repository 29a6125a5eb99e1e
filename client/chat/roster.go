// Roster: sidebar'da kimin görüneceğinin tek kanonik kuralı.
//
// Üyelik üç nedenden birine dayanır — okunmamış mesaj var, daha önce
// yazışılmış, ya da şu an seçili. Arama roster üyeleri üzerinde yapılır;
// sonuç boşsa tüm dizine düşülür ki ilk-temas konuşması başlatılabilsin.

package chat

import (
	"strings"

	"github.com/artEvg/QuickChat/models"
)

// IsRosterMember, peer'ın sidebar'da görünüp görünmeyeceğini söyler.
func IsRosterMember(peerID string, unseen models.UnseenMap, history map[string]bool, selectedID string) bool {
	return unseen[peerID] > 0 || history[peerID] || peerID == selectedID
}

// BuildRoster, dizinden sidebar listesini üretir.
//
// İki aşama:
//  1. Üyelik filtresi (IsRosterMember) + isimde case-insensitive substring arama
//  2. Arama roster içinde boş kaldıysa tüm dizine fallback — yeni biriyle
//     konuşma ancak arayarak başlatılabilir
//
// Dizin sırası korunur, ek sıralama uygulanmaz.
func BuildRoster(directory []models.User, unseen models.UnseenMap, history map[string]bool, selectedID, query string) []models.User {
	query = strings.ToLower(strings.TrimSpace(query))

	matches := func(u models.User) bool {
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(u.FullName), query)
	}

	var roster []models.User
	for _, u := range directory {
		if IsRosterMember(u.ID, unseen, history, selectedID) && matches(u) {
			roster = append(roster, u)
		}
	}

	if len(roster) == 0 && query != "" {
		for _, u := range directory {
			if matches(u) {
				roster = append(roster, u)
			}
		}
	}

	return roster
}
