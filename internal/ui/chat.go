package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wrenchat/wren/internal/api"
	"github.com/wrenchat/wren/internal/app"
	"github.com/wrenchat/wren/internal/model"
)

const sidebarWidth = 22

// startResultMsg reports the outcome of starting the app context.
type startResultMsg struct{ err error }

// loginResultMsg reports the outcome of a login attempt.
type loginResultMsg struct{ err error }

// postResultMsg reports the outcome of posting a message.
type postResultMsg struct{ err error }

// Chat is the bubbletea model for the chat surface.
type Chat struct {
	app    *app.App
	bridge *Bridge

	vp       viewport.Model
	nickname textinput.Model
	password textinput.Model
	compose  textinput.Model

	// msgOrder and msgLines hold the rendered message pane, one entry per
	// message id, so a single entity change redraws a single line.
	msgOrder []int64
	msgLines map[int64]string
	// userOrder is the nickname-sorted sidebar, maintained incrementally
	// from the reconciler's insert-after notifications.
	userOrder []int64

	authenticated bool
	loggingIn     bool
	loginErr      string
	status        string
	width, height int
	ready         bool
}

// NewChat creates the chat model over the given app context.
func NewChat(a *app.App, b *Bridge) Chat {
	nickname := textinput.New()
	nickname.Placeholder = "nickname"
	nickname.CharLimit = 32
	nickname.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	compose := textinput.New()
	compose.Placeholder = "say something..."

	return Chat{
		app:      a,
		bridge:   b,
		nickname: nickname,
		password: password,
		compose:  compose,
		msgLines: make(map[int64]string),
	}
}

// Init starts the app context once the program is running.
func (c Chat) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startResultMsg{err: c.app.Start(context.Background())} },
		textinput.Blink,
	)
}

// Update handles program messages.
func (c Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		c.vp.Width = max(20, c.width-sidebarWidth-2)
		c.vp.Height = max(3, c.height-4)
		c.ready = true
		c.refreshMessagePane(false)
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)

	case startResultMsg:
		if msg.err != nil {
			c.status = errorStyle.Render(msg.err.Error())
		}
		return c, nil

	case authChangedMsg:
		c.authenticated = msg.authenticated
		if c.authenticated {
			c.loginErr = ""
			c.nickname.Blur()
			c.password.Blur()
			return c, c.compose.Focus()
		}
		c.compose.Blur()
		c.password.Blur()
		return c, c.nickname.Focus()

	case loginResultMsg:
		c.loggingIn = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrCredentialRejected) {
				c.loginErr = "Invalid credentials. Please try again."
			} else {
				c.loginErr = "Login failed. Please try again."
			}
			// Focus returns to the nickname field, as the web client does.
			c.password.Blur()
			return c, c.nickname.Focus()
		}
		c.nickname.SetValue("")
		c.password.SetValue("")
		return c, nil

	case postResultMsg:
		if msg.err != nil {
			c.status = errorStyle.Render(fmt.Sprintf("message not sent: %v", msg.err))
		}
		return c, nil

	case userChangedMsg:
		if msg.created {
			c.insertUser(msg.user.ID, msg.afterID)
		}
		// Updates re-render in place from the store on the next View.
		return c, nil

	case messageChangedMsg:
		c.msgLines[msg.msg.ID] = c.renderMessage(msg.msg)
		if msg.created {
			c.msgOrder = append(c.msgOrder, msg.msg.ID)
		}
		c.refreshMessagePane(false)
		return c, nil

	case scrollBottomMsg:
		c.refreshMessagePane(true)
		return c, nil
	}

	return c, nil
}

func (c Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return c, tea.Quit
	case tea.KeyTab:
		if !c.authenticated {
			if c.nickname.Focused() {
				c.nickname.Blur()
				return c, c.password.Focus()
			}
			c.password.Blur()
			return c, c.nickname.Focus()
		}
	case tea.KeyEnter:
		if c.authenticated {
			return c.submitPost()
		}
		return c.submitLogin()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if c.authenticated {
		c.compose, cmd = c.compose.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		c.nickname, cmd = c.nickname.Update(msg)
		cmds = append(cmds, cmd)
		c.password, cmd = c.password.Update(msg)
		cmds = append(cmds, cmd)
	}
	if c.ready {
		c.vp, cmd = c.vp.Update(msg)
		cmds = append(cmds, cmd)
		c.bridge.setAtBottom(c.vp.AtBottom())
	}
	return c, tea.Batch(cmds...)
}

func (c Chat) submitLogin() (tea.Model, tea.Cmd) {
	nickname := strings.TrimSpace(c.nickname.Value())
	password := c.password.Value()
	if nickname == "" || password == "" || c.loggingIn {
		return c, nil
	}
	c.loggingIn = true
	c.loginErr = ""
	a := c.app
	return c, func() tea.Msg {
		return loginResultMsg{err: a.Login(context.Background(), nickname, password)}
	}
}

func (c Chat) submitPost() (tea.Model, tea.Cmd) {
	source := strings.TrimSpace(c.compose.Value())
	if source == "" {
		return c, nil
	}
	c.compose.SetValue("")
	a := c.app
	return c, func() tea.Msg {
		return postResultMsg{err: a.PostMessage(source)}
	}
}

// insertUser places id adjacent to its sort-order neighbor in the sidebar.
func (c *Chat) insertUser(id, afterID int64) {
	for _, existing := range c.userOrder {
		if existing == id {
			return
		}
	}
	if afterID == 0 {
		c.userOrder = append([]int64{id}, c.userOrder...)
		return
	}
	for i, existing := range c.userOrder {
		if existing == afterID {
			c.userOrder = append(c.userOrder[:i+1],
				append([]int64{id}, c.userOrder[i+1:]...)...)
			return
		}
	}
	c.userOrder = append(c.userOrder, id)
}

// refreshMessagePane rebuilds the viewport content from the per-message line
// cache. If the pane was at its bottom edge before the change, or force is
// set, it re-scrolls to the bottom.
func (c *Chat) refreshMessagePane(force bool) {
	if !c.ready {
		return
	}
	stick := force || c.vp.AtBottom()
	lines := make([]string, 0, len(c.msgOrder))
	for _, id := range c.msgOrder {
		lines = append(lines, c.msgLines[id])
	}
	c.vp.SetContent(strings.Join(lines, "\n"))
	if stick {
		c.vp.GotoBottom()
	}
	c.bridge.setAtBottom(c.vp.AtBottom())
}

// renderMessage formats a single message line. The author is looked up in
// the user collection by id; messages never hold their own copy.
func (c *Chat) renderMessage(m *model.Message) string {
	author := "???"
	if u, ok := c.app.Users.Get(m.UserID); ok {
		author = u.Nickname
	}
	ts := time.Unix(m.CreatedAt, 0).Format("15:04")
	return fmt.Sprintf("%s %s %s",
		timestampStyle.Render(ts),
		nicknameStyle(author).Render(author+":"),
		m.Source)
}

// View renders the chat surface.
func (c Chat) View() string {
	if !c.ready {
		return "loading..."
	}

	title := titleStyle.Render("wren") + " " +
		promptStyle.Render(fmt.Sprintf("%d online", c.onlineCount()))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		c.vp.View(),
		sidebarStyle.Width(sidebarWidth).Height(c.vp.Height).Render(c.renderSidebar()),
	)

	return strings.Join([]string{title, body, c.renderForm()}, "\n")
}

func (c Chat) onlineCount() int {
	n := 0
	for u := range c.app.Users.All() {
		if u.IsOnline() {
			n++
		}
	}
	return n
}

// renderSidebar lists online users in nickname order. Offline users keep
// their slot in userOrder but are not shown, matching the participants list
// of the original client.
func (c Chat) renderSidebar() string {
	var lines []string
	for _, id := range c.userOrder {
		u, ok := c.app.Users.Get(id)
		if !ok || !u.IsOnline() {
			continue
		}
		lines = append(lines, nicknameStyle(u.Nickname).Render("● "+u.Nickname))
	}
	if len(lines) == 0 {
		return promptStyle.Render("nobody here yet")
	}
	return strings.Join(lines, "\n")
}

func (c Chat) renderForm() string {
	if c.authenticated {
		return promptStyle.Render("> ") + c.compose.View()
	}
	form := promptStyle.Render("log in or register: ") +
		c.nickname.View() + "  " + c.password.View()
	if c.loginErr != "" {
		form += "\n" + errorStyle.Render(c.loginErr)
	}
	if c.status != "" {
		form += "\n" + c.status
	}
	return form
}
