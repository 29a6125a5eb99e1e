package handlers

import (
	"context"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/services"
)

// fakeAuthService, handler testleri için fonksiyon alanlı stub.
// Set edilmeyen metot çağrılırsa test panic ile patlar — sessiz geçiş yok.
type fakeAuthService struct {
	signupFn        func(req *models.SignupRequest) (*services.AuthResult, error)
	loginFn         func(req *models.LoginRequest) (*services.AuthResult, error)
	validateFn      func(token string) (*models.TokenClaims, error)
	updateProfileFn func(userID string, req *models.UpdateProfileRequest) (*models.User, error)
	sendResetOTPFn  func(req *models.SendResetOTPRequest) error
	resetPasswordFn func(req *models.ResetPasswordRequest) error
}

func (f *fakeAuthService) Signup(_ context.Context, req *models.SignupRequest) (*services.AuthResult, error) {
	return f.signupFn(req)
}

func (f *fakeAuthService) Login(_ context.Context, req *models.LoginRequest) (*services.AuthResult, error) {
	return f.loginFn(req)
}

func (f *fakeAuthService) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	return f.validateFn(token)
}

func (f *fakeAuthService) UpdateProfile(_ context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	return f.updateProfileFn(userID, req)
}

func (f *fakeAuthService) SendResetOTP(_ context.Context, req *models.SendResetOTPRequest) error {
	return f.sendResetOTPFn(req)
}

func (f *fakeAuthService) ResetPassword(_ context.Context, req *models.ResetPasswordRequest) error {
	return f.resetPasswordFn(req)
}

type fakeMessageService struct {
	getUsersFn        func(viewerID string) ([]models.User, models.UnseenMap, error)
	getConversationFn func(viewerID, peerID string) ([]models.Message, error)
	sendFn            func(senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error)
	markSeenFn        func(viewerID, messageID string) error
}

func (f *fakeMessageService) GetUsersWithUnseen(_ context.Context, viewerID string) ([]models.User, models.UnseenMap, error) {
	return f.getUsersFn(viewerID)
}

func (f *fakeMessageService) GetConversation(_ context.Context, viewerID, peerID string) ([]models.Message, error) {
	return f.getConversationFn(viewerID, peerID)
}

func (f *fakeMessageService) Send(_ context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	return f.sendFn(senderID, receiverID, req)
}

func (f *fakeMessageService) MarkSeen(_ context.Context, viewerID, messageID string) error {
	return f.markSeenFn(viewerID, messageID)
}
