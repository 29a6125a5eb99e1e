// quickchat terminal client.
//
// Üç ekran: auth (login/signup) → roster (kullanıcı listesi, unseen
// rozetleri, online noktaları, arama) → chat. REST çağrıları client/api,
// konuşma state'i client/chat, oturum kalıcılığı client/session üzerinden.
// WebSocket okuyucu bir tea.Cmd döngüsüdür — her event işlendiğinde yeniden
// dinlemeye girer.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"

	"github.com/artEvg/QuickChat/client/api"
	"github.com/artEvg/QuickChat/client/chat"
	"github.com/artEvg/QuickChat/client/session"
	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/ws"
)

// ─── Styles ───

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	mutedColor   = lipgloss.Color("#9CA3AF")
	errColor     = lipgloss.Color("#EF4444")
	badgeColor   = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(badgeColor).
			Bold(true)

	onlineDot = lipgloss.NewStyle().
			Foreground(accentColor).
			Render("●")

	offlineDot = mutedStyle.Render("○")

	ownMsgStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	peerMsgStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// ─── View State ───

type viewState int

const (
	viewAuth viewState = iota
	viewRoster
	viewChat
)

// ─── tea.Msg tipleri ───

type authSuccessMsg struct{ user models.User }
type authErrMsg struct{ err error }
type usersMsg struct {
	users  []models.User
	unseen models.UnseenMap
}
type usersErrMsg struct{ err error }
type wsConnectedMsg struct{ conn *websocket.Conn }
type wsIncomingMsg struct{ data []byte }
type wsErrMsg struct{ err error }
type convOpenedMsg struct{ err error }
type sendResultMsg struct{ err error }
type engineChangedMsg struct{}
type usersTickMsg struct{}
type heartbeatTickMsg struct{}
type wsRetryTickMsg struct{}

// ─── Model ───

type model struct {
	client  *api.Client
	engine  *chat.Engine
	profile string

	conn      *websocket.Conn
	connected bool

	user      models.User
	directory []models.User
	online    map[string]bool

	// Auth
	authAction    string // "login" | "signup"
	emailInput    textinput.Model
	nameInput     textinput.Model
	passwordInput textinput.Model
	authFocused   int
	authError     string
	restoring     bool

	// Roster
	searchInput textinput.Model
	cursor      int

	// Chat
	messageInput textinput.Model
	chatViewport viewport.Model
	sendError    string

	// Engine değişim bildirimi — onChange buraya yazar, waitForChange okur
	changes chan struct{}

	view   viewState
	width  int
	height int
	err    error
}

func initialModel(serverURL, profile string) model {
	emailInput := textinput.New()
	emailInput.Placeholder = "Email"
	emailInput.Focus()
	emailInput.CharLimit = 128
	emailInput.Width = 32

	nameInput := textinput.New()
	nameInput.Placeholder = "Full name"
	nameInput.CharLimit = 64
	nameInput.Width = 32

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.CharLimit = 128
	passwordInput.Width = 32

	searchInput := textinput.New()
	searchInput.Placeholder = "Search people..."
	searchInput.CharLimit = 64
	searchInput.Width = 28

	messageInput := textinput.New()
	messageInput.Placeholder = "Type a message..."
	messageInput.CharLimit = 2000
	messageInput.Width = 60

	return model{
		client:        api.NewClient(serverURL),
		profile:       profile,
		authAction:    "login",
		emailInput:    emailInput,
		nameInput:     nameInput,
		passwordInput: passwordInput,
		searchInput:   searchInput,
		messageInput:  messageInput,
		chatViewport:  viewport.New(80, 20),
		online:        map[string]bool{},
		changes:       make(chan struct{}, 1),
		view:          viewAuth,
	}
}

// ─── Commands ───

// restoreSession, kayıtlı token varsa doğrular — geçerliyse login atlanır.
func restoreSession(client *api.Client, profile string) tea.Cmd {
	return func() tea.Msg {
		sess := session.Load(profile)
		if sess == nil || sess.Token == "" {
			return nil
		}
		client.SetToken(sess.Token)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		user, err := client.Check(ctx)
		if err != nil || user == nil {
			client.SetToken("")
			return nil
		}
		return authSuccessMsg{user: *user}
	}
}

func doAuth(client *api.Client, action, email, fullName, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var payload *api.AuthPayload
		var err error
		if action == "signup" {
			payload, err = client.Signup(ctx, models.SignupRequest{
				Email:    email,
				FullName: fullName,
				Password: password,
			})
		} else {
			payload, err = client.Login(ctx, models.LoginRequest{
				Email:    email,
				Password: password,
			})
		}
		if err != nil {
			return authErrMsg{err: err}
		}
		return authSuccessMsg{user: payload.User}
	}
}

func loadUsers(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		users, unseen, err := client.GetUsers(ctx)
		if err != nil {
			return usersErrMsg{err: err}
		}
		return usersMsg{users: users, unseen: unseen}
	}
}

func connectWS(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conn, err := client.DialWS(ctx)
		if err != nil {
			return wsErrMsg{err: err}
		}
		return wsConnectedMsg{conn: conn}
	}
}

func listenWS(conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return wsErrMsg{err: err}
		}
		return wsIncomingMsg{data: data}
	}
}

func openConversation(engine *chat.Engine, peerID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return convOpenedMsg{err: engine.Open(ctx, peerID)}
	}
}

func sendText(engine *chat.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := engine.Send(ctx, models.SendMessageRequest{Text: text})
		return sendResultMsg{err: err}
	}
}

// waitForChange, engine'in onChange bildirimini tea.Msg'e çevirir.
// Her engineChangedMsg işlendiğinde yeniden kurulur.
func waitForChange(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return engineChangedMsg{}
	}
}

func usersTick() tea.Cmd {
	return tea.Tick(15*time.Second, func(time.Time) tea.Msg {
		return usersTickMsg{}
	})
}

// heartbeatTick, server'ın read deadline'ını canlı tutar — server 90 saniye
// içinde event görmezse bağlantıyı kapatır.
func heartbeatTick() tea.Cmd {
	return tea.Tick(30*time.Second, func(time.Time) tea.Msg {
		return heartbeatTickMsg{}
	})
}

// wsRetryTick, kopan bağlantının yeniden denenmesini geciktirir. Server
// kapalıyken DialWS mikrosaniyeler içinde hata verir — beklemeden tekrar
// denemek sıkı bir döngüye dönüşür.
func wsRetryTick() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return wsRetryTickMsg{}
	})
}

// ─── Init ───

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		restoreSession(m.client, m.profile),
	)
}

// ─── Update ───

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.saveSession()
			return m, tea.Quit

		case "tab":
			if m.view == viewAuth {
				m.cycleAuthFocus()
			}

		case "ctrl+r":
			if m.view == viewAuth {
				if m.authAction == "login" {
					m.authAction = "signup"
				} else {
					m.authAction = "login"
				}
				m.authError = ""
			}

		case "enter":
			switch m.view {
			case viewAuth:
				if cmd := m.submitAuth(); cmd != nil {
					return m, cmd
				}

			case viewRoster:
				roster := m.roster()
				if m.cursor < len(roster) {
					peer := roster[m.cursor]
					m.view = viewChat
					m.sendError = ""
					m.messageInput.Focus()
					m.searchInput.Blur()
					return m, openConversation(m.engine, peer.ID)
				}

			case viewChat:
				if text := strings.TrimSpace(m.messageInput.Value()); text != "" {
					m.messageInput.SetValue("")
					return m, sendText(m.engine, text)
				}
			}

		case "up":
			if m.view == viewRoster && m.cursor > 0 {
				m.cursor--
			}

		case "down":
			if m.view == viewRoster && m.cursor < len(m.roster())-1 {
				m.cursor++
			}

		case "esc":
			if m.view == viewChat {
				m.engine.Close()
				m.view = viewRoster
				m.messageInput.Blur()
				m.searchInput.Focus()
				m.saveSession()
				return m, loadUsers(m.client)
			}
			if m.view == viewRoster {
				m.saveSession()
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatViewport.Width = msg.Width - 4
		m.chatViewport.Height = msg.Height - 7
		m.renderChat()

	case authSuccessMsg:
		m.user = msg.user
		m.authError = ""
		m.view = viewRoster
		m.searchInput.Focus()

		m.engine = chat.NewEngine(m.client, m.user.ID)
		changes := m.changes
		m.engine.SetOnChange(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if sess := session.Load(m.profile); sess != nil && sess.UserID == m.user.ID {
			m.engine.SetHistory(sess.CorrespondedWith)
		}
		m.saveSession()

		return m, tea.Batch(
			loadUsers(m.client),
			connectWS(m.client),
			waitForChange(m.changes),
			usersTick(),
		)

	case authErrMsg:
		m.authError = msg.err.Error()

	case usersMsg:
		m.directory = msg.users
		if m.engine != nil {
			m.engine.SetUnseen(msg.unseen)
		}
		if m.cursor >= len(m.roster()) {
			m.cursor = 0
		}

	case usersErrMsg:
		// Geçici hata — bir sonraki tick telafi eder
		_ = msg.err

	case usersTickMsg:
		cmds = append(cmds, loadUsers(m.client), usersTick())

	case wsConnectedMsg:
		m.conn = msg.conn
		m.connected = true
		cmds = append(cmds, listenWS(m.conn), heartbeatTick())

	case wsErrMsg:
		// Bağlantı koptu — gecikmeli yeniden bağlan; unseen map zaten pull ile tazelenir
		m.connected = false
		m.conn = nil
		cmds = append(cmds, wsRetryTick())

	case wsRetryTickMsg:
		if !m.connected {
			cmds = append(cmds, connectWS(m.client))
		}

	case wsIncomingMsg:
		m.handleWSEvent(msg.data)
		if m.conn != nil {
			cmds = append(cmds, listenWS(m.conn))
		}

	case heartbeatTickMsg:
		if m.conn != nil {
			data, _ := json.Marshal(ws.Event{Op: ws.OpHeartbeat})
			_ = m.conn.WriteMessage(websocket.TextMessage, data)
			cmds = append(cmds, heartbeatTick())
		}

	case convOpenedMsg:
		if msg.err != nil {
			m.view = viewRoster
			m.messageInput.Blur()
			m.searchInput.Focus()
			m.sendError = msg.err.Error()
		} else {
			m.renderChat()
		}

	case sendResultMsg:
		if msg.err != nil {
			m.sendError = msg.err.Error()
		} else {
			m.sendError = ""
		}

	case engineChangedMsg:
		m.renderChat()
		cmds = append(cmds, waitForChange(m.changes))
	}

	// Text input güncellemeleri
	switch m.view {
	case viewAuth:
		switch m.authFocused {
		case 0:
			m.emailInput, _ = m.emailInput.Update(msg)
		case 1:
			if m.authAction == "signup" {
				m.nameInput, _ = m.nameInput.Update(msg)
			} else {
				m.passwordInput, _ = m.passwordInput.Update(msg)
			}
		case 2:
			m.passwordInput, _ = m.passwordInput.Update(msg)
		}
	case viewRoster:
		m.searchInput, _ = m.searchInput.Update(msg)
	case viewChat:
		m.messageInput, _ = m.messageInput.Update(msg)
		m.chatViewport, _ = m.chatViewport.Update(msg)
	}

	return m, tea.Batch(cmds...)
}

// cycleAuthFocus, auth formundaki alanlar arasında dolaşır.
// Login iki alan (email, password), signup üç alan (email, name, password).
func (m *model) cycleAuthFocus() {
	fields := 2
	if m.authAction == "signup" {
		fields = 3
	}
	m.authFocused = (m.authFocused + 1) % fields

	m.emailInput.Blur()
	m.nameInput.Blur()
	m.passwordInput.Blur()

	switch m.authFocused {
	case 0:
		m.emailInput.Focus()
	case 1:
		if m.authAction == "signup" {
			m.nameInput.Focus()
		} else {
			m.passwordInput.Focus()
		}
	case 2:
		m.passwordInput.Focus()
	}
}

func (m *model) submitAuth() tea.Cmd {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	if email == "" || password == "" {
		return nil
	}
	if m.authAction == "signup" && strings.TrimSpace(m.nameInput.Value()) == "" {
		m.authError = "full name is required"
		return nil
	}
	return doAuth(m.client, m.authAction, email, strings.TrimSpace(m.nameInput.Value()), password)
}

// handleWSEvent, server'dan gelen tek bir WS event'ini işler.
func (m *model) handleWSEvent(data []byte) {
	var event struct {
		Op string          `json:"op"`
		D  json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return
	}

	switch event.Op {
	case ws.OpNewMessage:
		var msg models.Message
		if err := json.Unmarshal(event.D, &msg); err != nil {
			return
		}
		if m.engine != nil {
			m.engine.HandlePush(msg)
		}

	case ws.OpOnlineUsers:
		var ids []string
		if err := json.Unmarshal(event.D, &ids); err != nil {
			return
		}
		online := make(map[string]bool, len(ids))
		for _, id := range ids {
			online[id] = true
		}
		m.online = online
	}
}

// roster, mevcut arama ve engine state'inden sidebar listesini üretir.
func (m *model) roster() []models.User {
	if m.engine == nil {
		return nil
	}
	selected := m.engine.Peer()
	return chat.BuildRoster(m.directory, m.engine.Unseen(), m.engine.HistorySet(), selected, m.searchInput.Value())
}

// saveSession, token + corresponded-with set'ini diske yazar.
func (m *model) saveSession() {
	if m.user.ID == "" {
		return
	}
	var history []string
	if m.engine != nil {
		history = m.engine.History()
	}
	if err := session.Save(m.profile, session.Session{
		Token:            m.client.Token(),
		UserID:           m.user.ID,
		FullName:         m.user.FullName,
		CorrespondedWith: history,
	}); err != nil {
		// Session yazılamaması fatal değil — sonraki açılışta login istenir
		_ = err
	}
}

// renderChat, açık konuşmayı viewport içeriğine çevirir.
func (m *model) renderChat() {
	if m.engine == nil {
		return
	}

	var b strings.Builder
	for _, msg := range m.engine.Messages() {
		timestamp := msg.CreatedAt.Local().Format("15:04")

		name := m.peerName(msg.SenderID)
		style := peerMsgStyle
		if msg.SenderID == m.user.ID {
			name = "you"
			style = ownMsgStyle
		}

		body := renderBody(msg)
		seen := ""
		if msg.SenderID == m.user.ID && msg.Seen {
			seen = mutedStyle.Render(" ✓")
		}

		fmt.Fprintf(&b, "%s %s: %s%s\n",
			mutedStyle.Render(timestamp),
			style.Render(name),
			body,
			seen,
		)
	}
	m.chatViewport.SetContent(b.String())
	m.chatViewport.GotoBottom()
}

// renderBody, payload varyantını tek satır metne çevirir.
func renderBody(msg models.Message) string {
	switch msg.Kind() {
	case models.MessageKindImage:
		return mutedStyle.Render("[image] " + deref(msg.Image))
	case models.MessageKindAudio:
		return mutedStyle.Render(fmt.Sprintf("[audio %.0fs] %s", derefF(msg.AudioDuration), deref(msg.Audio)))
	default:
		return deref(msg.Text)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefF(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func (m *model) peerName(userID string) string {
	for _, u := range m.directory {
		if u.ID == userID {
			return u.FullName
		}
	}
	return userID
}

// ─── View ───

func (m model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit.", m.err))
	}

	switch m.view {
	case viewAuth:
		return m.authView()
	case viewRoster:
		return m.rosterView()
	case viewChat:
		return m.chatView()
	}
	return ""
}

func (m model) authView() string {
	var s strings.Builder

	s.WriteString("\n")
	s.WriteString(titleStyle.Render("QuickChat"))
	s.WriteString("\n\n")

	if m.authAction == "login" {
		s.WriteString(selectedStyle.Render("  → Login"))
		s.WriteString(mutedStyle.Render("   Sign up\n"))
	} else {
		s.WriteString(mutedStyle.Render("  Login   "))
		s.WriteString(selectedStyle.Render("→ Sign up\n"))
	}
	s.WriteString(helpStyle.Render("  (Ctrl+R to switch)\n\n"))

	s.WriteString("  Email:\n")
	s.WriteString("  " + m.emailInput.View() + "\n\n")

	if m.authAction == "signup" {
		s.WriteString("  Full name:\n")
		s.WriteString("  " + m.nameInput.View() + "\n\n")
	}

	s.WriteString("  Password:\n")
	s.WriteString("  " + m.passwordInput.View() + "\n\n")

	if m.authError != "" {
		s.WriteString(errorStyle.Render("  " + m.authError))
		s.WriteString("\n\n")
	}

	s.WriteString(helpStyle.Render("  Tab to switch fields • Enter to submit • Ctrl+C to quit\n"))
	return s.String()
}

func (m model) rosterView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("QuickChat — " + m.user.FullName))
	if !m.connected {
		s.WriteString(mutedStyle.Render("  (offline)"))
	}
	s.WriteString("\n\n")
	s.WriteString("  " + m.searchInput.View() + "\n\n")

	roster := m.roster()
	unseen := models.UnseenMap{}
	if m.engine != nil {
		unseen = m.engine.Unseen()
	}

	if len(roster) == 0 {
		s.WriteString(mutedStyle.Render("  Nobody here yet — search to find people.\n"))
	} else {
		for i, u := range roster {
			dot := offlineDot
			if m.online[u.ID] {
				dot = onlineDot
			}

			prefix := "  "
			style := lipgloss.NewStyle()
			if i == m.cursor {
				prefix = "→ "
				style = selectedStyle
			}

			badge := ""
			if n := unseen[u.ID]; n > 0 {
				badge = " " + badgeStyle.Render("("+chat.FormatUnseen(n)+")")
			}

			s.WriteString(style.Render(fmt.Sprintf("%s%s %s", prefix, dot, u.FullName)))
			s.WriteString(badge)
			s.WriteString("\n")
		}
	}

	if m.sendError != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("  " + m.sendError))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("  ↑/↓ navigate • Enter to open • type to search • Esc to quit"))
	return s.String()
}

func (m model) chatView() string {
	var s strings.Builder

	peerID := m.engine.Peer()
	name := m.peerName(peerID)
	dot := offlineDot
	if m.online[peerID] {
		dot = onlineDot
	}

	s.WriteString(titleStyle.Render(name))
	s.WriteString(" " + dot)
	if m.engine.State() == chat.StateLoading {
		s.WriteString(mutedStyle.Render("  loading..."))
	}
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", max(m.width-2, 10)))
	s.WriteString("\n")

	s.WriteString(m.chatViewport.View())
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", max(m.width-2, 10)))
	s.WriteString("\n")
	s.WriteString(m.messageInput.View())
	s.WriteString("\n")

	if m.sendError != "" {
		s.WriteString(errorStyle.Render(m.sendError))
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("Enter to send • Esc to go back"))
	return s.String()
}

// ─── Main ───

func main() {
	serverURL := flag.String("server", envOr("QUICKCHAT_SERVER", "http://localhost:5000"), "server base URL")
	profile := flag.String("profile", envOr("QUICKCHAT_PROFILE", "default"), "local session profile name")
	flag.Parse()

	p := tea.NewProgram(initialModel(*serverURL, *profile), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
