package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/huddle/internal/app"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/player"
	"github.com/mmcdole/huddle/internal/session"
	"github.com/mmcdole/huddle/internal/tui/components"
)

// Tab is a top-level screen
type Tab int

const (
	TabFeed Tab = iota
	TabCommunities
	TabFriends
	TabNotifications
	TabPlaylists
	TabRadio
	TabProfile
	TabAdmin
)

var tabNames = map[Tab]string{
	TabFeed:          "Feed",
	TabCommunities:   "Communities",
	TabFriends:       "Friends",
	TabNotifications: "Notifications",
	TabPlaylists:     "Playlists",
	TabRadio:         "Radio",
	TabProfile:       "Profile",
	TabAdmin:         "Admin",
}

// ParseTab maps a configured tab name to a Tab, defaulting to the feed
func ParseTab(name string) Tab {
	for t, n := range tabNames {
		if strings.EqualFold(n, name) {
			return t
		}
	}
	return TabFeed
}

// FriendsMode selects which list the Friends tab shows
type FriendsMode int

const (
	FriendsList FriendsMode = iota
	FriendsSearch
	FriendsRequests
)

// inputPurpose says what a submitted input modal value is for
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputPost
	inputComment
	inputCommunity
	inputPlaylist
	inputTrack
	inputSearch
	inputFilter
	inputCity
)

const volumeStep = 5

// Model is the main Bubble Tea model for the application
type Model struct {
	App  *app.App
	Keys KeyMap
	Help help.Model

	// Navigation
	Tab     Tab
	Cursors map[Tab]int
	Filter  string
	Friends FriendsMode

	// Drill-down state
	OpenPlaylist  int64
	Tracks        []domain.Track
	OpenCommunity int64
	CommunityFeed []domain.Post

	Input   components.InputModal
	purpose inputPurpose
	target  int64

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg     string
	StatusIsErr   bool
	Loading       bool
	SpinnerFrame  int
	ShowHelp      bool
	ConfirmLogout bool
	LoggedOut     bool
}

// NewModel creates a new application model
func NewModel(a *app.App, start Tab) Model {
	return Model{
		App:     a,
		Keys:    DefaultKeyMap(),
		Help:    help.New(),
		Tab:     start,
		Cursors: make(map[Tab]int),
		Input:   components.NewInputModal(),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return TickCmd(100 * time.Millisecond)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case HydratedMsg:
		m.Loading = false
		if msg.Err != nil {
			m.setError(ErrMsg{Err: msg.Err, Context: "refresh"})
		} else {
			m.setStatus("Up to date")
		}
		return m, nil

	case ActionDoneMsg:
		m.Loading = false
		m.setStatus(msg.Status)
		return m, nil

	case SearchResultsMsg:
		m.Loading = false
		m.Friends = FriendsSearch
		m.Cursors[TabFriends] = 0
		if len(msg.Results) == 0 {
			m.setStatus(fmt.Sprintf("No users match %q", msg.Query))
		} else {
			m.setStatus(fmt.Sprintf("%d users match %q", len(msg.Results), msg.Query))
		}
		return m, nil

	case TracksLoadedMsg:
		m.Loading = false
		m.OpenPlaylist = msg.PlaylistID
		m.Tracks = msg.Tracks
		m.Cursors[TabPlaylists] = 0
		return m, nil

	case CommunityPostsMsg:
		m.Loading = false
		m.OpenCommunity = msg.CommunityID
		m.CommunityFeed = msg.Posts
		return m, nil

	case RadioMsg:
		m.Loading = false
		snap := m.App.Radio.Snapshot()
		if snap.IsPlaying() {
			m.setStatus("Playing " + snap.Station.Name)
		} else {
			m.setStatus("Radio " + snap.State.String())
		}
		return m, nil

	case LoggedOutMsg:
		m.LoggedOut = true
		if msg.Err != nil {
			m.setError(ErrMsg{Err: msg.Err, Context: "logout"})
		}
		return m, tea.Quit

	case ErrMsg:
		m.Loading = false
		m.setError(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(s string) {
	m.StatusMsg = s
	m.StatusIsErr = false
}

func (m *Model) setError(e ErrMsg) {
	m.StatusMsg = e.Error()
	m.StatusIsErr = true
}

// VisibleTabs returns the tabs shown for the current session
func (m Model) VisibleTabs() []Tab {
	tabs := []Tab{TabFeed, TabCommunities, TabFriends, TabNotifications, TabPlaylists, TabRadio, TabProfile}
	if m.App.Admin.Visible() {
		tabs = append(tabs, TabAdmin)
	}
	return tabs
}

func (m Model) cursor() int {
	return m.Cursors[m.Tab]
}

func (m *Model) moveCursor(delta int) {
	n := m.rowCount()
	if n == 0 {
		m.Cursors[m.Tab] = 0
		return
	}
	c := m.Cursors[m.Tab] + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	m.Cursors[m.Tab] = c
}

func (m *Model) switchTab(delta int) {
	tabs := m.VisibleTabs()
	idx := 0
	for i, t := range tabs {
		if t == m.Tab {
			idx = i
		}
	}
	idx = (idx + delta + len(tabs)) % len(tabs)
	m.Tab = tabs[idx]
	m.Filter = ""
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Input.IsVisible() {
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.Input, cmd, submitted = m.Input.Update(msg)
		if submitted {
			value := strings.TrimSpace(m.Input.Value())
			m.Input.Hide()
			cmd = m.submitInput(value)
			return m, cmd
		}
		return m, cmd
	}

	if m.ConfirmLogout {
		switch {
		case key.Matches(msg, m.Keys.Confirm):
			m.ConfirmLogout = false
			return m, LogoutCmd(m.App)
		case key.Matches(msg, m.Keys.Deny):
			m.ConfirmLogout = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = !m.ShowHelp
		return m, nil
	case key.Matches(msg, m.Keys.Logout):
		m.ConfirmLogout = true
		return m, nil
	case key.Matches(msg, m.Keys.NextTab):
		m.switchTab(1)
		return m, nil
	case key.Matches(msg, m.Keys.PrevTab):
		m.switchTab(-1)
		return m, nil
	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.Keys.Refresh):
		m.Loading = true
		return m, HydrateCmd(m.App)
	case key.Matches(msg, m.Keys.Escape):
		m.Filter = ""
		m.StatusMsg = ""
		return m, nil
	case key.Matches(msg, m.Keys.Filter):
		m.showInput(inputFilter, 0, "Filter", "type to narrow the list", m.Filter)
		return m, nil
	}

	switch m.Tab {
	case TabFeed:
		return m.handleFeedKey(msg)
	case TabCommunities:
		return m.handleCommunitiesKey(msg)
	case TabFriends:
		return m.handleFriendsKey(msg)
	case TabNotifications:
		return m.handleNotificationsKey(msg)
	case TabPlaylists:
		return m.handlePlaylistsKey(msg)
	case TabRadio:
		return m.handleRadioKey(msg)
	case TabProfile:
		return m.handleProfileKey(msg)
	case TabAdmin:
		return m.handleAdminKey(msg)
	}
	return m, nil
}

func (m *Model) showInput(p inputPurpose, target int64, title, placeholder, value string) {
	m.purpose = p
	m.target = target
	m.Input.Show(title, placeholder, value)
}

func (m *Model) submitInput(value string) tea.Cmd {
	a := m.App
	target := m.target
	purpose := m.purpose
	m.purpose = inputNone

	switch purpose {
	case inputFilter:
		m.Filter = value
		m.Cursors[m.Tab] = 0
		return nil
	case inputSearch:
		if value == "" {
			a.Friends.ClearSearch()
			m.Friends = FriendsList
			return nil
		}
		m.Loading = true
		return SearchUsersCmd(a, value)
	case inputCity:
		if _, err := a.Session.UpdateProfile(session.ProfilePatch{City: &value}); err != nil {
			m.setError(ErrMsg{Err: err, Context: "updating profile"})
			return nil
		}
		m.setStatus("Profile updated")
		return nil
	}

	if value == "" {
		return nil
	}
	m.Loading = true
	switch purpose {
	case inputPost:
		return ActionCmd("posting", "Posted", func(ctx context.Context) error {
			return a.Feed.Create(ctx, value, "")
		})
	case inputComment:
		return ActionCmd("commenting", "Comment added", func(ctx context.Context) error {
			return a.Feed.Comment(ctx, target, value)
		})
	case inputCommunity:
		name, desc, _ := strings.Cut(value, "|")
		return ActionCmd("creating community", "Community created", func(ctx context.Context) error {
			return a.Communities.Create(ctx, strings.TrimSpace(name), strings.TrimSpace(desc))
		})
	case inputPlaylist:
		return ActionCmd("creating playlist", "Playlist created", func(ctx context.Context) error {
			return a.Playlists.Create(ctx, value, "", false)
		})
	case inputTrack:
		title, url, _ := strings.Cut(value, "|")
		track := domain.Track{Title: strings.TrimSpace(title), URL: strings.TrimSpace(url)}
		return tea.Sequence(
			ActionCmd("adding track", "Track added", func(ctx context.Context) error {
				return a.Playlists.AddTrack(ctx, target, track)
			}),
			LoadTracksCmd(a, target),
		)
	}
	m.Loading = false
	return nil
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	posts := m.App.Feed.Posts()
	var selected *domain.Post
	if c := m.cursor(); c < len(posts) {
		selected = &posts[c]
	}

	switch {
	case key.Matches(msg, m.Keys.New):
		m.showInput(inputPost, 0, "New post", "what's on your mind?", "")
	case key.Matches(msg, m.Keys.Like) && selected != nil:
		id := selected.ID
		return m, ActionCmd("liking", "Liked", func(ctx context.Context) error {
			return m.App.Feed.Like(ctx, id)
		})
	case key.Matches(msg, m.Keys.Comment) && selected != nil:
		m.showInput(inputComment, selected.ID, "Comment", "write a comment", "")
	case key.Matches(msg, m.Keys.Profile) && selected != nil:
		m.App.Profile.View(selected.AuthorID)
		m.Tab = TabProfile
	}
	return m, nil
}

func (m Model) handleCommunitiesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.App.Communities.Filter(m.Filter)
	var selected *domain.Community
	if c := m.cursor(); c < len(items) {
		selected = &items[c]
	}

	switch {
	case key.Matches(msg, m.Keys.New):
		m.showInput(inputCommunity, 0, "New community", "name | description", "")
	case key.Matches(msg, m.Keys.Enter) && selected != nil:
		id, name := selected.ID, selected.Name
		action := m.App.Communities.Action(id).String()
		return m, ActionCmd(strings.ToLower(action)+" community", action+" "+name+": done", func(ctx context.Context) error {
			return m.App.Communities.Toggle(ctx, id)
		})
	case key.Matches(msg, m.Keys.Profile) && selected != nil:
		m.Loading = true
		return m, LoadCommunityPostsCmd(m.App, selected.ID)
	case key.Matches(msg, m.Keys.Back):
		m.OpenCommunity = 0
		m.CommunityFeed = nil
	}
	return m, nil
}

func (m Model) friendRows() []domain.UserCard {
	switch m.Friends {
	case FriendsSearch:
		return m.App.Friends.SearchResults()
	case FriendsRequests:
		reqs := m.App.Friends.Requests()
		out := make([]domain.UserCard, len(reqs))
		for i, r := range reqs {
			out[i] = r.From
		}
		return out
	}
	return m.App.Friends.Filter(m.Filter)
}

func (m Model) handleFriendsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.friendRows()
	var selected *domain.UserCard
	if c := m.cursor(); c < len(rows) {
		selected = &rows[c]
	}
	a := m.App

	switch {
	case key.Matches(msg, m.Keys.Search):
		m.showInput(inputSearch, 0, "Find people", "name, username or phone (3+ characters)", a.Friends.SearchQuery())
	case key.Matches(msg, m.Keys.Requests):
		m.Friends = FriendsRequests
		m.Cursors[TabFriends] = 0
		m.Loading = true
		return m, ActionCmd("loading requests", "Requests loaded", a.Friends.RefreshRequests)
	case key.Matches(msg, m.Keys.Back):
		a.Friends.ClearSearch()
		m.Friends = FriendsList
		m.Cursors[TabFriends] = 0
	case key.Matches(msg, m.Keys.Profile) && selected != nil:
		a.Profile.View(selected.ID)
		m.Tab = TabProfile
	case key.Matches(msg, m.Keys.Add) && selected != nil:
		id := selected.ID
		if m.Friends == FriendsRequests {
			return m, ActionCmd("accepting request", "Request accepted", func(ctx context.Context) error {
				return a.Friends.Accept(ctx, id)
			})
		}
		if a.Friends.IsFriend(id) {
			m.setStatus("Already friends")
			return m, nil
		}
		return m, ActionCmd("adding friend", "Friend added", func(ctx context.Context) error {
			return a.Friends.Add(ctx, id)
		})
	case key.Matches(msg, m.Keys.Remove) && selected != nil:
		id := selected.ID
		if m.Friends == FriendsRequests {
			return m, ActionCmd("rejecting request", "Request rejected", func(ctx context.Context) error {
				return a.Friends.Reject(ctx, id)
			})
		}
		return m, ActionCmd("removing friend", "Friend removed", func(ctx context.Context) error {
			return a.Friends.Remove(ctx, id)
		})
	}
	return m, nil
}

func (m Model) handleNotificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.App.Notifications.Notifications()
	switch {
	case key.Matches(msg, m.Keys.MarkRead):
		return m, ActionCmd("marking read", "All caught up", m.App.Notifications.MarkAllRead)
	case key.Matches(msg, m.Keys.Enter):
		if c := m.cursor(); c < len(items) && !items[c].IsRead {
			id := items[c].ID
			return m, ActionCmd("marking read", "Marked read", func(ctx context.Context) error {
				return m.App.Notifications.MarkRead(ctx, id)
			})
		}
	}
	return m, nil
}

func (m Model) handlePlaylistsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.OpenPlaylist != 0 {
		switch {
		case key.Matches(msg, m.Keys.Back):
			m.OpenPlaylist = 0
			m.Tracks = nil
			m.Cursors[TabPlaylists] = 0
		case key.Matches(msg, m.Keys.Add):
			m.showInput(inputTrack, m.OpenPlaylist, "Add track", "title | url", "")
		}
		return m, nil
	}

	items := m.App.Playlists.Filter(m.Filter)
	switch {
	case key.Matches(msg, m.Keys.New):
		m.showInput(inputPlaylist, 0, "New playlist", "name", "")
	case key.Matches(msg, m.Keys.Enter):
		if c := m.cursor(); c < len(items) {
			m.Loading = true
			return m, LoadTracksCmd(m.App, items[c].ID)
		}
	}
	return m, nil
}

func (m Model) handleRadioKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	stations := m.App.Radio.Catalog().Filter(m.Filter)
	switch {
	case key.Matches(msg, m.Keys.Enter):
		if c := m.cursor(); c < len(stations) {
			m.Loading = true
			return m, SelectStationCmd(m.App, stations[c].ID)
		}
	case key.Matches(msg, m.Keys.PlayPause):
		m.Loading = true
		return m, ToggleRadioCmd(m.App)
	case key.Matches(msg, m.Keys.Pause):
		m.App.Radio.Pause()
	case key.Matches(msg, m.Keys.VolumeUp), key.Matches(msg, m.Keys.VolumeDown):
		step := volumeStep
		if key.Matches(msg, m.Keys.VolumeDown) {
			step = -step
		}
		v, err := m.App.SetVolume(m.App.Radio.Snapshot().Volume + step)
		switch {
		case errors.Is(err, player.ErrLiveVolume):
			m.setStatus(fmt.Sprintf("Volume %d%% (applies on next start)", v))
		case err != nil:
			m.setError(ErrMsg{Err: err, Context: "volume"})
		default:
			m.setStatus(fmt.Sprintf("Volume %d%%", v))
		}
	}
	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.App.Profile.Back()
	case key.Matches(msg, m.Keys.Add):
		id := m.App.Profile.Viewing()
		if id != 0 && !m.App.Friends.IsFriend(id) {
			return m, ActionCmd("adding friend", "Friend added", func(ctx context.Context) error {
				return m.App.Friends.Add(ctx, id)
			})
		}
	case key.Matches(msg, m.Keys.New):
		if m.App.Profile.Viewing() == 0 {
			city := ""
			if sess, ok := m.App.Session.Current(); ok {
				city = sess.City
			}
			m.showInput(inputCity, 0, "City", "where are you?", city)
		}
	}
	return m, nil
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reqs := m.App.Admin.Requests()
	c := m.cursor()
	if c >= len(reqs) {
		return m, nil
	}
	id := reqs[c].ID

	var (
		decision domain.Decision
		status   string
	)
	switch {
	case key.Matches(msg, m.Keys.Approve):
		decision, status = domain.DecisionApprove, "Request approved"
	case key.Matches(msg, m.Keys.Reject):
		decision, status = domain.DecisionReject, "Request rejected"
	default:
		return m, nil
	}
	return m, ActionCmd("resolving request", status, func(ctx context.Context) error {
		return m.App.Admin.Resolve(ctx, id, decision)
	})
}

// rowCount is the length of the list the cursor moves over
func (m Model) rowCount() int {
	a := m.App
	switch m.Tab {
	case TabFeed:
		return len(a.Feed.Posts())
	case TabCommunities:
		return len(a.Communities.Filter(m.Filter))
	case TabFriends:
		return len(m.friendRows())
	case TabNotifications:
		return len(a.Notifications.Notifications())
	case TabPlaylists:
		if m.OpenPlaylist != 0 {
			return len(m.Tracks)
		}
		return len(a.Playlists.Filter(m.Filter))
	case TabRadio:
		return len(a.Radio.Catalog().Filter(m.Filter))
	case TabProfile:
		return len(a.ProfilePosts())
	case TabAdmin:
		return len(a.Admin.Requests())
	}
	return 0
}
