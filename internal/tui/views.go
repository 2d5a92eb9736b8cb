package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/radio"
	"github.com/mmcdole/huddle/internal/tui/styles"
)

const (
	headerHeight = 3
	footerHeight = 2
)

// View renders the current screen
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	body := m.renderBody()
	if m.Input.IsVisible() {
		body = lipgloss.Place(m.Width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.Input.View())
	} else if m.ConfirmLogout {
		prompt := styles.ModalStyle.Render("Log out of " + m.sessionHandle() + "? (y/n)")
		body = lipgloss.Place(m.Width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, prompt)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body),
		m.renderFooter(),
	)
}

func (m Model) bodyHeight() int {
	h := m.Height - headerHeight - footerHeight
	if m.ShowHelp {
		h -= 4
	}
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) sessionHandle() string {
	if sess, ok := m.App.Session.Current(); ok {
		return sess.Handle()
	}
	return "huddle"
}

func (m Model) renderHeader() string {
	var tabs []string
	for _, t := range m.VisibleTabs() {
		label := tabNames[t]
		if t == TabNotifications {
			if n := m.App.Notifications.UnreadCount(); n > 0 {
				label += " " + styles.BadgeStyle.Render(fmt.Sprintf("%d", n))
			}
		}
		if t == m.Tab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}

	title := styles.TitleStyle.Render("huddle") + "  " + styles.DimStyle.Render(m.sessionHandle())
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
	)
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.Loading:
		frame := styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)]
		status = styles.AccentStyle.Render(frame + " working...")
	case m.StatusIsErr:
		status = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		status = styles.SuccessStyle.Render(m.StatusMsg)
	}

	radio := m.App.Radio.Snapshot()
	if radio.StationID != 0 {
		status += "  " + styles.DimStyle.Render("♪ "+radio.Station.Name+" ("+radio.State.String()+")")
	}
	if m.Filter != "" {
		status += "  " + styles.DimStyle.Render("filter: "+m.Filter)
	}

	helpView := m.Help.ShortHelpView(m.Keys.ShortHelp())
	if m.ShowHelp {
		helpView = m.Help.FullHelpView(m.Keys.FullHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, helpView)
}

func (m Model) renderBody() string {
	switch m.Tab {
	case TabFeed:
		return m.renderPosts(m.App.Feed.Posts(), "No posts yet. Press n to write one.")
	case TabCommunities:
		return m.renderCommunities()
	case TabFriends:
		return m.renderFriends()
	case TabNotifications:
		return m.renderNotifications()
	case TabPlaylists:
		return m.renderPlaylists()
	case TabRadio:
		return m.renderRadio()
	case TabProfile:
		return m.renderProfile()
	case TabAdmin:
		return m.renderAdmin()
	}
	return ""
}

// window returns the slice bounds that keep the cursor on screen
func (m Model) window(n int) (int, int) {
	h := m.bodyHeight()
	c := m.cursor()
	start := 0
	if c >= h {
		start = c - h + 1
	}
	end := start + h
	if end > n {
		end = n
	}
	return start, end
}

func (m Model) renderRows(n int, empty string, row func(i int, selected bool) string) string {
	if n == 0 {
		return styles.DimStyle.Render(empty)
	}
	start, end := m.window(n)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, row(i, i == m.cursor()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPosts(posts []domain.Post, empty string) string {
	return m.renderRows(len(posts), empty, func(i int, selected bool) string {
		p := posts[i]
		heart := "♡"
		if m.App.Feed.HasLiked(p.ID) {
			heart = "♥"
		}
		if m.App.Feed.Liking(p.ID) {
			heart = "…"
		}
		author := styles.Truncate(p.AuthorDisplayName, 18)
		meta := fmt.Sprintf(" %s%d  💬%d  %s", heart, p.LikeCount, p.CommentCount, relativeTime(p.CreatedAt))
		avail := m.Width - lipgloss.Width(meta) - 24
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%-20s", author), Foreground: &styles.Amber},
			{Text: styles.Truncate(oneLine(p.Content), avail)},
			{Text: meta, Foreground: &styles.DimGray},
		}, selected, m.Width)
	})
}

func (m Model) renderCommunities() string {
	if m.OpenCommunity != 0 {
		name := ""
		if c, ok := m.App.Communities.Community(m.OpenCommunity); ok {
			name = c.Name
		}
		return styles.SubtitleStyle.Render(name) + "\n" +
			m.renderPosts(m.CommunityFeed, "Nobody has posted here yet.")
	}

	items := m.App.Communities.Filter(m.Filter)
	return m.renderRows(len(items), "No communities. Press n to start one.", func(i int, selected bool) string {
		c := items[i]
		action := m.App.Communities.Action(c.ID).String()
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%-24s", styles.Truncate(c.Name, 22))},
			{Text: fmt.Sprintf("%5d members  ", c.MemberCount), Foreground: &styles.DimGray},
			{Text: fmt.Sprintf("[%s]", action), Foreground: &styles.Amber},
		}, selected, m.Width)
	})
}

func (m Model) renderFriends() string {
	var heading, empty string
	switch m.Friends {
	case FriendsSearch:
		heading = "Results for " + m.App.Friends.SearchQuery()
		empty = "Nobody matched."
	case FriendsRequests:
		heading = "Friend requests"
		empty = "No pending requests."
	default:
		heading = "Friends"
		empty = "No friends yet. Press / to find people."
	}

	rows := m.friendRows()
	list := m.renderRows(len(rows), empty, func(i int, selected bool) string {
		u := rows[i]
		marker := ""
		switch {
		case m.App.Friends.Busy(u.ID):
			marker = "…"
		case m.Friends == FriendsSearch && m.App.Friends.IsFriend(u.ID):
			marker = "friend"
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%-22s", styles.Truncate(u.DisplayName, 20))},
			{Text: fmt.Sprintf("%-18s", styles.Truncate(u.Handle(), 16)), Foreground: &styles.DimGray},
			{Text: u.City + " "},
			{Text: marker, Foreground: &styles.Amber},
		}, selected, m.Width)
	})
	return styles.SubtitleStyle.Render(heading) + "\n" + list
}

func (m Model) renderNotifications() string {
	items := m.App.Notifications.Notifications()
	return m.renderRows(len(items), "Nothing new.", func(i int, selected bool) string {
		n := items[i]
		dot, color := "•", &styles.Amber
		if n.IsRead {
			dot, color = " ", &styles.DimGray
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: dot + " ", Foreground: color},
			{Text: styles.Truncate(oneLine(n.Message), m.Width-16)},
			{Text: "  " + relativeTime(n.CreatedAt), Foreground: &styles.DimGray},
		}, selected, m.Width)
	})
}

func (m Model) renderPlaylists() string {
	if m.OpenPlaylist != 0 {
		name := ""
		if p, ok := m.App.Playlists.Playlist(m.OpenPlaylist); ok {
			name = p.Name
		}
		list := m.renderRows(len(m.Tracks), "Empty playlist. Press a to add a track.", func(i int, selected bool) string {
			t := m.Tracks[i]
			return styles.RenderListRow([]styles.RowPart{
				{Text: fmt.Sprintf("%3d. ", i+1), Foreground: &styles.DimGray},
				{Text: fmt.Sprintf("%-32s", styles.Truncate(t.Title, 30))},
				{Text: t.Artist, Foreground: &styles.DimGray},
			}, selected, m.Width)
		})
		return styles.SubtitleStyle.Render(name) + "\n" + list
	}

	items := m.App.Playlists.Filter(m.Filter)
	return m.renderRows(len(items), "No playlists. Press n to create one.", func(i int, selected bool) string {
		p := items[i]
		visibility := "private"
		if p.IsPublic {
			visibility = "public"
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%-30s", styles.Truncate(p.Name, 28))},
			{Text: fmt.Sprintf("%4d tracks  %s", p.TrackCount, visibility), Foreground: &styles.DimGray},
		}, selected, m.Width)
	})
}

func (m Model) renderRadio() string {
	snap := m.App.Radio.Snapshot()
	stations := m.App.Radio.Catalog().Filter(m.Filter)

	list := m.renderRows(len(stations), "No stations.", func(i int, selected bool) string {
		st := stations[i]
		marker := "  "
		if st.ID == snap.StationID {
			switch snap.State {
			case radio.Playing:
				marker = "▶ "
			case radio.Loading:
				marker = styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)] + " "
			case radio.Paused:
				marker = "❚❚"
			}
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: marker + " ", Foreground: &styles.Amber},
			{Text: fmt.Sprintf("%-26s", styles.Truncate(st.Name, 24))},
			{Text: st.Genre, Foreground: &styles.DimGray},
		}, selected, m.Width)
	})

	volume := fmt.Sprintf("vol %3d%% ", snap.Volume) + styles.RenderBar(snap.Volume, 20)
	line := styles.DimStyle.Render(volume)
	if snap.Err != nil {
		line += "  " + styles.ErrorStyle.Render(snap.Err.Error())
	}
	return list + "\n\n" + line
}

func (m Model) renderProfile() string {
	p, err := m.App.Profile.Resolve()
	if err != nil {
		return styles.ErrorStyle.Render(err.Error())
	}

	u := p.User
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(u.DisplayName))
	b.WriteString("  " + styles.DimStyle.Render(u.Handle()))
	switch {
	case p.Self:
		b.WriteString("  " + styles.DimBadgeStyle.Render("you"))
	case p.IsFriend:
		b.WriteString("  " + styles.BadgeStyle.Render("friend"))
	}
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%-10s", label)) + styles.DetailStyle.Render(value) + "\n")
	}
	field("City", u.City)
	if p.ShowsEmail() {
		field("Email", u.Email)
	}
	if p.ShowsBirthDate() {
		field("Born", u.BirthDate.Format("2 Jan 2006"))
	}
	field("Bio", u.Bio)
	b.WriteString("\n")

	b.WriteString(m.renderPosts(m.App.ProfilePosts(), "No posts."))
	return b.String()
}

func (m Model) renderAdmin() string {
	reqs := m.App.Admin.Requests()
	return m.renderRows(len(reqs), "No admin requests.", func(i int, selected bool) string {
		r := reqs[i]
		color := &styles.Amber
		switch r.Status {
		case domain.AdminRequestApproved:
			color = &styles.Green
		case domain.AdminRequestRejected:
			color = &styles.Red
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%-10s", r.Status), Foreground: color},
			{Text: fmt.Sprintf("%-18s", styles.Truncate(r.Username, 16))},
			{Text: styles.Truncate(oneLine(r.Message), m.Width-34), Foreground: &styles.DimGray},
		}, selected, m.Width)
	})
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return t.Format("Jan 2")
}
