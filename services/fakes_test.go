package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/ws"
)

// ─── Fake repositories ───
//
// Service testleri gerçek DB'ye inmez — repository interface'leri map tabanlı
// fake'lerle sağlanır. SQLite implementasyonları repository paketinin kendi
// testlerinde doğrulanıyor.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) GetAllExcept(_ context.Context, viewerID string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.User
	for _, u := range r.users {
		if u.ID != viewerID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return pkg.ErrNotFound
	}
	stored.FullName = user.FullName
	stored.Bio = user.Bio
	stored.AvatarURL = user.AvatarURL
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newPasswordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userID]
	if !ok {
		return pkg.ErrNotFound
	}
	stored.PasswordHash = newPasswordHash
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*models.Message
	order    []string // insert sırası — ListConversation deterministik kalsın

	createErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*models.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	cp := *msg
	r.messages[msg.ID] = &cp
	r.order = append(r.order, msg.ID)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMessageRepo) ListConversation(_ context.Context, userA, userB string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Message
	for _, id := range r.order {
		m := r.messages[id]
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkSeen(_ context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok {
		return pkg.ErrNotFound
	}
	m.Seen = true
	return nil
}

func (r *fakeMessageRepo) MarkConversationSeen(_ context.Context, senderID, receiverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			m.Seen = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) CountUnseenBySender(_ context.Context, receiverID string) (models.UnseenMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unseen := models.UnseenMap{}
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && !m.Seen {
			unseen[m.SenderID]++
		}
	}
	return unseen, nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	resets map[string]*models.PasswordReset // user_id → kayıt
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{resets: make(map[string]*models.PasswordReset)}
}

func (r *fakeResetRepo) Upsert(_ context.Context, reset *models.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	reset.Used = false
	cp := *reset
	r.resets[reset.UserID] = &cp
	return nil
}

func (r *fakeResetRepo) GetByUserID(_ context.Context, userID string) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[userID]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	cp := *reset
	return &cp, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reset := range r.resets {
		if reset.ID == id {
			reset.Used = true
			return nil
		}
	}
	return pkg.ErrNotFound
}

// ─── Fake collaborators ───

// fakeUploads, data URI'ları diske yazmak yerine sahte URL döner.
type fakeUploads struct {
	saved []string
}

func (u *fakeUploads) SaveDataURI(dataURI string, allowedPrefix string) (string, error) {
	u.saved = append(u.saved, dataURI)
	return "/api/uploads/fake-" + allowedPrefix[:len(allowedPrefix)-1] + ".bin", nil
}

// fakePublisher, SendToUser çağrılarını kaydeder.
type fakePublisher struct {
	mu     sync.Mutex
	online map[string]bool
	sent   []sentEvent
}

type sentEvent struct {
	userID string
	event  ws.Event
}

func newFakePublisher(onlineUsers ...string) *fakePublisher {
	online := make(map[string]bool)
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakePublisher{online: online}
}

func (p *fakePublisher) SendToUser(userID string, event ws.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.online[userID] {
		return false
	}
	p.sent = append(p.sent, sentEvent{userID: userID, event: event})
	return true
}

func (p *fakePublisher) GetOnlineUserIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

// fakeEmailSender, gönderilen OTP'leri kaydeder — test plaintext koda erişebilir.
type fakeEmailSender struct {
	mu   sync.Mutex
	sent map[string]string // email → son OTP
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{sent: make(map[string]string)}
}

func (s *fakeEmailSender) SendResetOTP(_ context.Context, toEmail, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[toEmail] = otp
	return nil
}

func (s *fakeEmailSender) lastOTP(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[email]
}
