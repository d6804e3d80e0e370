// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/config"
	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/scan"
	"github.com/jeranaias/skilldeck/internal/skills"
	"github.com/jeranaias/skilldeck/internal/tabs"
	"github.com/jeranaias/skilldeck/internal/ui/styles"
)

// Client is the manager daemon surface the dashboard needs. *api.Client
// satisfies it.
type Client interface {
	scan.ManagerClient
	StartInstall(ctx context.Context, tool string) (*jobs.Job, error)
	ListSkills(ctx context.Context) ([]skills.Skill, error)
}

// PinStore is the subset of store.PinStore the dashboard uses.
type PinStore interface {
	Toggle(ctx context.Context, path string) (bool, error)
	Pinned(ctx context.Context) (map[string]bool, error)
	Prune(ctx context.Context, live map[string]bool) (int, error)
}

// dispatcher delivers messages produced on background goroutines to
// the running program. Until a target is installed, messages are
// dropped.
type dispatcher struct {
	mu sync.Mutex
	fn func(tea.Msg)
}

func (d *dispatcher) send(msg tea.Msg) {
	d.mu.Lock()
	fn := d.fn
	d.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (d *dispatcher) set(fn func(tea.Msg)) {
	d.mu.Lock()
	d.fn = fn
	d.mu.Unlock()
}

// refreshEvery limits manual refreshes to one every two seconds.
var refreshEvery = rate.Every(2 * time.Second)

// Model is the dashboard view. Each instance owns its own job and scan
// state; tearing it down cancels everything it started.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	client Client
	pins   PinStore

	// bus bridges async callbacks into the Bubble Tea loop, usually
	// program.Send. It is a pointer so every copy of the model and
	// every captured callback share the same target.
	bus *dispatcher

	// gen guards async results. Every teardown or tool switch bumps
	// it; messages stamped with an older gen are dropped.
	gen int

	tool      string
	status    *api.ToolStatus
	statusErr error

	requestedTab tabs.Tab

	// Skills
	catalog  []skills.Skill
	filtered []skills.Skill
	skillIdx int

	// Projects
	projects       []api.Project
	projectsLoaded bool
	pinned         map[string]bool
	projectIdx     int

	// Active job state
	scanner *scan.Orchestrator
	install *jobs.Monitor
	jobKind string
	job     *jobs.Job
	jobErr  error

	// Components
	search  textinput.Model
	logView viewport.Model
	spin    spinner.Model

	searching  bool
	detail     string // rendered markdown, empty when overlay closed
	detailName string
	lastErr    error

	refresh *rate.Limiter

	width  int
	height int

	quitting bool
}

// New creates a dashboard for the configured default tool.
func New(theme *styles.Theme, cfg *config.Config, client Client, pins PinStore) Model {
	search := textinput.New()
	search.Placeholder = "search skills"
	search.Prompt = "/ "
	search.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		theme:        theme,
		cfg:          cfg,
		client:       client,
		pins:         pins,
		tool:         cfg.DefaultTool,
		requestedTab: tabs.TabOverview,
		pinned:       map[string]bool{},
		search:       search,
		logView:      viewport.New(80, 10),
		spin:         sp,
		refresh:      rate.NewLimiter(refreshEvery, 1),
		bus:          &dispatcher{},
	}
	m.scanner = m.newScanner()
	m.install = m.newInstallMonitor()
	return m
}

// SetDispatch installs the async message bridge, typically
// program.Send. Callbacks fired before this is called are dropped.
func (m *Model) SetDispatch(fn func(tea.Msg)) {
	m.bus.set(fn)
}

// NewForTesting creates a dashboard with a fresh theme and the async
// bridge left as a no-op, so callbacks fired by background goroutines
// are dropped instead of delivered.
func NewForTesting(cfg *config.Config, client Client, pins PinStore) Model {
	return New(styles.NewTheme(), cfg, client, pins)
}

// newScanner builds a scan orchestrator whose callbacks are stamped
// with the current generation.
func (m *Model) newScanner() *scan.Orchestrator {
	gen, bus := m.gen, m.bus
	return scan.New(m.client, m.tool, m.cfg.PollInterval(), scan.Callbacks{
		OnJobUpdate: func(j *jobs.Job) { bus.send(JobUpdateMsg{Gen: gen, Job: j}) },
		OnLog:       func(line string) { bus.send(LogLineMsg{Gen: gen, Line: line}) },
		OnProjects: func(projects []api.Project) {
			bus.send(ProjectsMsg{Gen: gen, Projects: projects, FromScan: true})
		},
		OnError: func(err error) { bus.send(JobErrMsg{Gen: gen, Err: err}) },
	})
}

// newInstallMonitor builds a job monitor for install jobs, stamped with
// the current generation.
func (m *Model) newInstallMonitor() *jobs.Monitor {
	gen, bus := m.gen, m.bus
	client := m.client
	return jobs.NewMonitor(jobs.MonitorConfig{
		Interval: m.cfg.PollInterval(),
		Fetch: func(ctx context.Context, id string) (*jobs.Job, error) {
			return client.GetJob(ctx, id)
		},
		OnUpdate:   func(j *jobs.Job) { bus.send(JobUpdateMsg{Gen: gen, Job: j}) },
		OnComplete: func(j *jobs.Job) { bus.send(JobCompleteMsg{Gen: gen, Job: j}) },
		OnError:    func(err error) { bus.send(JobErrMsg{Gen: gen, Err: err}) },
	})
}

// Init starts the initial fetches.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.fetchToolStatus(),
		m.fetchSkills(),
		m.fetchProjects(),
		m.loadPins(),
	)
}

// Teardown cancels the active scan and install job and invalidates all
// outstanding async results. Safe to call more than once.
func (m *Model) Teardown() {
	m.gen++
	m.scanner.Teardown()
	m.install.Cancel()
	m.job = nil
	m.jobKind = ""
}

// stale reports whether an async result belongs to a prior generation.
func (m *Model) stale(gen int) bool {
	return gen != m.gen
}

// installed reports whether the current tool is known to be installed.
func (m *Model) installed() bool {
	return m.status != nil && m.status.Installed
}

// effectiveTab resolves the requested tab against what is allowed.
func (m *Model) effectiveTab() tabs.Tab {
	return tabs.Effective(m.requestedTab, m.installed())
}

// switchTool tears down all per-tool state and rebuilds for the next
// configured backend.
func (m *Model) switchTool(tool string) tea.Cmd {
	m.Teardown()
	m.tool = tool
	m.status = nil
	m.statusErr = nil
	m.catalog = nil
	m.filtered = nil
	m.skillIdx = 0
	m.projects = nil
	m.projectsLoaded = false
	m.projectIdx = 0
	m.lastErr = nil
	m.jobErr = nil
	m.logView.SetContent("")
	m.scanner = m.newScanner()
	m.install = m.newInstallMonitor()
	return tea.Batch(m.fetchToolStatus(), m.fetchSkills(), m.fetchProjects())
}

// nextTool returns the tool after the current one in config order.
func (m *Model) nextTool() string {
	names := m.cfg.ToolNames()
	for i, name := range names {
		if name == m.tool {
			return names[(i+1)%len(names)]
		}
	}
	return m.tool
}

// applyFilter recomputes the filtered skill list from the search query.
func (m *Model) applyFilter() {
	m.filtered = skills.Filter(m.catalog, m.search.Value())
	if m.skillIdx >= len(m.filtered) {
		m.skillIdx = 0
	}
}

// applyPins stamps the persisted pin state onto the project list and
// re-sorts it.
func (m *Model) applyPins() {
	for i := range m.projects {
		m.projects[i].Pinned = m.pinned[m.projects[i].Path]
	}
	m.projects = scan.MergeProjects(m.projects)
	if m.projectIdx >= len(m.projects) {
		m.projectIdx = 0
	}
}

// maybeAutoScan returns a command firing the one-shot scan when the
// projects view is effective with a loaded but empty project list, or
// nil when the trigger conditions cannot hold. The orchestrator
// re-checks the one-shot condition under its own lock, so a racing
// duplicate command stays a no-op.
func (m *Model) maybeAutoScan() tea.Cmd {
	if m.effectiveTab() != tabs.TabProjects || !m.projectsLoaded {
		return nil
	}
	if len(m.projects) > 0 || m.scanner.Attempted() {
		return nil
	}
	gen, scanner, projects := m.gen, m.scanner, m.projects
	return func() tea.Msg {
		started, err := scanner.AutoScan(context.Background(), projects)
		if !started && err == nil {
			return nil
		}
		return JobStartedMsg{Gen: gen, Kind: "scan", Started: started, Err: err}
	}
}
