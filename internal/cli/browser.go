package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/cookbook/internal/collection"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/notify"
)

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	detailStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type browserKeys struct {
	ingredients key.Binding
	steps       key.Binding
	rate        key.Binding
	remove      key.Binding
	refresh     key.Binding
}

var keys = browserKeys{
	ingredients: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ingredients")),
	steps:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "steps")),
	rate:        key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5"), key.WithHelp("0-5", "rate")),
	remove:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

func (k browserKeys) short() []key.Binding {
	return []key.Binding{k.ingredients, k.steps, k.rate, k.remove, k.refresh}
}

type recipeItem struct {
	recipe model.Recipe
	ui     collection.UIState
	rating int
}

func (i recipeItem) Title() string {
	title := fmt.Sprintf("%s  %s", i.recipe.DisplayName(), notify.Stars(i.rating))
	if i.ui.CardLoading {
		title += mutedStyle.Render("  working...")
	}

	return title
}

func (i recipeItem) Description() string {
	var parts []string

	if i.recipe.Author != "" {
		parts = append(parts, "by "+i.recipe.Author)
	}

	if i.recipe.PrepTime > 0 {
		parts = append(parts, fmt.Sprintf("prep %gm", i.recipe.PrepTime))
	}

	if i.recipe.CookTime > 0 {
		parts = append(parts, fmt.Sprintf("cook %gm", i.recipe.CookTime))
	}

	if i.recipe.Servings > 0 {
		parts = append(parts, fmt.Sprintf("serves %g", i.recipe.Servings))
	}

	if len(parts) == 0 {
		return "no details"
	}

	return strings.Join(parts, " | ")
}

func (i recipeItem) FilterValue() string {
	return i.recipe.Name
}

// storeUpdatedMsg is sent after the store replaced its collection.
type storeUpdatedMsg struct{}

// storeClosedMsg is sent once the store's update channel is closed.
type storeClosedMsg struct{}

// opDoneMsg reports the end of a delete, rating or refresh.
type opDoneMsg struct {
	op  string
	err error
}

// EventMsg carries a notification into the browser's status line.
type EventMsg struct {
	Event *notify.Event
}

// BrowserModel is an interactive list over a recipe collection.
type BrowserModel struct {
	ctx        context.Context
	list       list.Model
	spinner    spinner.Model
	store      *collection.Store
	reconciler *collection.Reconciler
	rater      *collection.RatingUpdater
	updates    <-chan struct{}

	inflight      int
	confirmDelete string
	status        string
	statusErr     bool
	quitting      bool
}

// NewBrowser builds the browser. The first refresh is issued by Init.
func NewBrowser(ctx context.Context, store *collection.Store, reconciler *collection.Reconciler, rater *collection.RatingUpdater) BrowserModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recipes"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.short

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := BrowserModel{
		ctx:        ctx,
		list:       l,
		spinner:    sp,
		store:      store,
		reconciler: reconciler,
		rater:      rater,
		updates:    store.Subscribe(),
		inflight:   1,
	}
	m.refreshItems()

	return m
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate(), m.reconcile())
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, (msg.Height-v)*2/3)

		return m, nil

	case storeUpdatedMsg:
		m.refreshItems()
		return m, m.waitForUpdate()

	case storeClosedMsg:
		return m, nil

	case opDoneMsg:
		if m.inflight > 0 {
			m.inflight--
		}

		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		}

		m.refreshItems()

		return m, nil

	case EventMsg:
		if msg.Event != nil {
			m.setStatus(notify.FormatText(msg.Event), !msg.Event.Success)
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)
		if m.inflight > 0 {
			m.refreshItems()
		}

		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		if m.confirmDelete != "" {
			return m.confirm(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

		item, selected := m.list.SelectedItem().(recipeItem)

		switch {
		case key.Matches(msg, keys.refresh):
			m.inflight++
			return m, m.reconcile()

		case !selected:

		case key.Matches(msg, keys.ingredients):
			m.store.ToggleIngredients(item.recipe.ID)
			m.refreshItems()

			return m, nil

		case key.Matches(msg, keys.steps):
			m.store.ToggleSteps(item.recipe.ID)
			m.refreshItems()

			return m, nil

		case key.Matches(msg, keys.rate):
			m.inflight++
			return m, m.rate(item.recipe, int(msg.String()[0]-'0'))

		case key.Matches(msg, keys.remove):
			m.confirmDelete = item.recipe.ID
			m.setStatus(fmt.Sprintf("Delete %q? (y/N)", item.recipe.DisplayName()), false)

			return m, nil
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// confirm handles the answer to a pending delete prompt.
func (m BrowserModel) confirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmDelete
	m.confirmDelete = ""

	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus("Delete cancelled", false)
		return m, nil
	}

	recipe, ok := m.store.Recipe(id)
	if !ok {
		m.setStatus("Recipe is gone", true)
		return m, nil
	}

	m.inflight++
	m.status = ""

	return m, m.remove(recipe)
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.list.View())
	b.WriteString("\n")

	if item, ok := m.list.SelectedItem().(recipeItem); ok {
		if details := renderDetails(item); details != "" {
			b.WriteString(detailStyle.Render(details))
			b.WriteString("\n")
		}
	}

	switch {
	case m.inflight > 0:
		b.WriteString(m.spinner.View() + " ")
		b.WriteString(mutedStyle.Render("syncing"))
	case m.status != "" && m.statusErr:
		b.WriteString(statusFail.Render(m.status))
	case m.status != "":
		b.WriteString(statusOK.Render(m.status))
	}

	return docStyle.Render(b.String())
}

// Status returns the text of the status line.
func (m BrowserModel) Status() string {
	return m.status
}

func (m *BrowserModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// refreshItems rebuilds the list from the store's current snapshot.
func (m *BrowserModel) refreshItems() {
	recipes := m.store.Recipes()

	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = recipeItem{
			recipe: r,
			ui:     m.store.UIState(r.ID),
			rating: m.store.DisplayedRating(r.ID),
		}
	}

	m.list.SetItems(items)
}

func (m BrowserModel) waitForUpdate() tea.Cmd {
	ch := m.updates

	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return storeClosedMsg{}
		}

		return storeUpdatedMsg{}
	}
}

func (m BrowserModel) reconcile() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "refresh", err: m.reconciler.Reconcile(m.ctx)}
	}
}

func (m BrowserModel) rate(recipe model.Recipe, rating int) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "rating", err: m.rater.Select(m.ctx, recipe, rating)}
	}
}

func (m BrowserModel) remove(recipe model.Recipe) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "delete", err: m.reconciler.Delete(m.ctx, recipe)}
	}
}

func renderDetails(item recipeItem) string {
	var b strings.Builder

	if item.ui.IngredientsVisible {
		b.WriteString(headingStyle.Render("Ingredients"))
		b.WriteString("\n")

		if len(item.recipe.Ingredients) == 0 {
			b.WriteString(mutedStyle.Render("  none") + "\n")
		}

		for _, ing := range item.recipe.Ingredients {
			b.WriteString("  - " + ing.String() + "\n")
		}
	}

	if item.ui.StepsVisible {
		b.WriteString(headingStyle.Render("Steps"))
		b.WriteString("\n")

		if len(item.recipe.Steps) == 0 {
			b.WriteString(mutedStyle.Render("  none") + "\n")
		}

		for _, st := range item.recipe.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", st.Number, st.Text)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// ProgramSender forwards notifications to a running browser.
type ProgramSender struct {
	program *tea.Program
}

// NewProgramSender returns a notify.Sender that posts EventMsg to p.
func NewProgramSender(p *tea.Program) *ProgramSender {
	return &ProgramSender{program: p}
}

// Name returns the sender name.
func (s *ProgramSender) Name() string {
	return "tui"
}

// Send posts the event to the program.
func (s *ProgramSender) Send(_ context.Context, event *notify.Event) error {
	s.program.Send(EventMsg{Event: event})
	return nil
}
