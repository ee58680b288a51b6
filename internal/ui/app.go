package ui

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/controller"
	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/locate"
	"safemap/internal/models"
	"safemap/internal/render"
)

const (
	controlWidth  = 46
	controlHeight = 7
	layersWidth   = 24
	layersHeight  = 7
	listWidth     = 46
	listHeight    = 12
)

// ViewOptions sets up the initial map view
type ViewOptions struct {
	Center      geo.LatLon
	RadiusKm    float64
	AspectRatio float64
	Filters     models.Filters
}

// App runs the event loop: it turns terminal input into controller intents, runs the
// controller's commands off the loop and feeds their results back in
type App struct {
	screen  tcell.Screen
	ctrl    *controller.Controller
	tracker *locate.Tracker
	filters models.Filters

	mapView      *MapView
	listView     *ListView
	reportView   *ReportView
	controlPanel *ControlPanel
	layersPanel  *LayersPanel
	showList     bool

	// Mouse state for endpoint dragging
	buttons  tcell.ButtonMask
	dragging bool
	dragEnd  controller.Endpoint
	dragFrom [2]int

	msgs   chan controller.Msg
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new application on an initialized screen. tracker may be nil,
// in which case position events never arrive.
func NewApp(screen tcell.Screen, ctrl *controller.Controller, scene *render.Scene, tracker *locate.Tracker, opts ViewOptions) *App {
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	width, height := screen.Size()
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		screen:       screen,
		ctrl:         ctrl,
		tracker:      tracker,
		filters:      opts.Filters,
		mapView:      NewMapView(width, height, scene, opts.Center, opts.RadiusKm, opts.AspectRatio),
		listView:     NewListView(0, height-listHeight, listWidth, listHeight),
		reportView:   NewReportView(width, height),
		controlPanel: NewControlPanel(0, 1, controlWidth, controlHeight),
		layersPanel:  NewLayersPanel(width-layersWidth, 1, layersWidth, layersHeight),
		msgs:         make(chan controller.Msg, 64),
		ctx:          ctx,
		cancel:       cancel,
	}

	return app
}

// Run starts the application main loop and returns when the user quits
func (a *App) Run() error {
	defer a.cleanup()

	a.screen.EnableMouse()

	events := make(chan tcell.Event, 16)
	go a.pollEvents(events)

	var positions <-chan locate.Event
	if a.tracker != nil {
		positions = a.tracker.Events()
	}

	a.dispatch(a.ctrl.Init(a.filters))
	a.render()

	ticker := time.NewTicker(100 * time.Millisecond) // 10 FPS
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil // Quit requested
			}

		case msg := <-a.msgs:
			a.send(msg)

		case ev := <-positions:
			a.send(controller.FromLocateEvent(ev))

		case <-ticker.C:
			a.render()
		}
	}
}

// pollEvents forwards terminal events until the screen is finalized
func (a *App) pollEvents(events chan<- tcell.Event) {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-a.ctx.Done():
			return
		}
	}
}

// send applies one message to the controller and starts the commands it returns
func (a *App) send(msg controller.Msg) {
	a.dispatch(a.ctrl.Update(msg))

	if p, ok := a.ctrl.TakeFocus(); ok {
		a.mapView.CenterOn(p)
	}
}

// dispatch runs each command in its own goroutine and posts the result back to the loop
func (a *App) dispatch(cmds []controller.Cmd) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}

		a.wg.Add(1)
		go func(cmd controller.Cmd) {
			defer a.wg.Done()

			msg := cmd(a.ctx)
			if msg == nil {
				return
			}
			select {
			case a.msgs <- msg:
			case <-a.ctx.Done():
			}
		}(cmd)
	}
}

// render renders the current state to the screen
func (a *App) render() {
	a.screen.Clear()
	width, _ := a.screen.Size()

	a.mapView.Draw(a.screen)
	a.controlPanel.Draw(a.screen, a.ctrl)
	a.layersPanel.Draw(a.screen, a.ctrl.Visibility())

	if a.showList {
		a.listView.Update(a.ctrl.Incidents())
		a.listView.Draw(a.screen)
	}

	a.reportView.Draw(a.screen, a.ctrl.Report())

	if a.ctrl.AlertVisible() {
		drawAlertBanner(a.screen, width)
	}

	a.screen.Show()
}

// handleEvent processes terminal events, returning false to quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if a.ctrl.Report().Open() {
			a.handleFormKey(ev)
			return true
		}
		return a.handleMapKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventResize:
		a.handleResize()
	}

	return true
}

// handleFormKey edits the incident form
func (a *App) handleFormKey(ev *tcell.EventKey) {
	report := a.ctrl.Report()

	switch ev.Key() {
	case tcell.KeyEscape:
		a.send(controller.CancelReport{})

	case tcell.KeyEnter:
		a.send(controller.SubmitReport{})

	case tcell.KeyTab:
		a.send(controller.SetCategory{Category: report.Category().Next()})

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		runes := []rune(report.Description())
		if len(runes) > 0 {
			a.send(controller.SetDescription{Text: string(runes[:len(runes)-1])})
		}

	case tcell.KeyRune:
		a.send(controller.SetDescription{Text: report.Description() + string(ev.Rune())})
	}
}

// handleMapKey handles keys while the map has focus
func (a *App) handleMapKey(ev *tcell.EventKey) bool {
	shift := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyEscape:
		if a.ctrl.Mode() == controller.ModeView {
			return false
		}
		a.send(controller.Reset{})

	case tcell.KeyEnter:
		a.send(controller.Click{Point: a.mapView.Cursor()})

	case tcell.KeyUp:
		a.moveOrPan(0, -1, shift)
	case tcell.KeyDown:
		a.moveOrPan(0, 1, shift)
	case tcell.KeyLeft:
		a.moveOrPan(-1, 0, shift)
	case tcell.KeyRight:
		a.moveOrPan(1, 0, shift)

	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q', 'Q':
			return false

		case 'n', 'N':
			a.send(controller.StartNavigation{})

		case 'i', 'I':
			a.send(controller.StartReporting{})

		case 'x', 'X':
			a.send(controller.Reset{})

		case 't', 'T':
			a.send(controller.ToggleTracking{})

		case 'd', 'D':
			a.send(controller.DismissAlert{})

		case 'r', 'R':
			a.send(controller.Reload{})

		case '1', '2', '3', '4', '5':
			kind := controller.Toggleable[r-'1']
			a.send(controller.ToggleLayer{Kind: kind, Visible: !a.ctrl.Visibility().Get(kind)})

		case 'h':
			a.mapView.Pan(-4, 0)
		case 'j':
			a.mapView.Pan(0, 2)
		case 'k':
			a.mapView.Pan(0, -2)
		case 'l':
			a.mapView.Pan(4, 0)

		case 'L':
			a.showList = !a.showList

		case '[':
			a.selectIncident(a.listView.SelectPrev)
		case ']':
			a.selectIncident(a.listView.SelectNext)

		case '+', '=':
			a.mapView.ZoomIn()

		case '-', '_':
			a.mapView.ZoomOut()
		}
	}

	return true
}

func (a *App) moveOrPan(dx, dy int, pan bool) {
	if pan {
		a.mapView.Pan(dx*4, dy*2)
		return
	}
	a.mapView.MoveCursor(dx, dy)
}

// selectIncident moves the list selection and centres the map on the new selection
func (a *App) selectIncident(move func()) {
	a.showList = true
	a.listView.Update(a.ctrl.Incidents())
	move()
	if inc := a.listView.GetSelected(); inc != nil {
		a.mapView.CenterOn(inc.Location)
	}
}

// handleMouse turns presses into clicks and drags of route endpoints into DragEndpoint
func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	prev := a.buttons
	a.buttons = buttons

	switch {
	case buttons&tcell.WheelUp != 0:
		a.mapView.ZoomIn()
		return
	case buttons&tcell.WheelDown != 0:
		a.mapView.ZoomOut()
		return
	}

	pressed := buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0
	released := buttons&tcell.Button1 == 0 && prev&tcell.Button1 != 0

	switch {
	case pressed:
		if a.ctrl.Report().Open() {
			return
		}
		if row, ok := a.layersPanel.row(x, y); ok {
			if row < len(controller.Toggleable) {
				kind := controller.Toggleable[row]
				a.send(controller.ToggleLayer{Kind: kind, Visible: !a.ctrl.Visibility().Get(kind)})
			}
			return
		}
		if a.controlPanel.contains(x, y) || (a.showList && a.listView.contains(x, y)) {
			return
		}

		a.mapView.SetCursor(x, y)

		// Endpoints are only grabbed in view mode; while selecting, a press is a click
		if a.ctrl.Mode() == controller.ModeView {
			if which, ok := a.mapView.EndpointAt(x, y, a.ctrl.Route()); ok {
				a.dragging = true
				a.dragEnd = which
				a.dragFrom = [2]int{x, y}
				return
			}
		}
		a.send(controller.Click{Point: a.mapView.LatLonAt(x, y)})

	case a.dragging && released:
		a.dragging = false
		a.mapView.SetCursor(x, y)
		if a.dragFrom == [2]int{x, y} {
			return
		}
		debug.Log("Endpoint %d dropped at (%d, %d)", a.dragEnd, x, y)
		a.send(controller.DragEndpoint{Which: a.dragEnd, To: a.mapView.LatLonAt(x, y)})

	case a.dragging:
		a.mapView.SetCursor(x, y)
	}
}

// handleResize handles terminal resize events
func (a *App) handleResize() {
	a.screen.Sync()
	width, height := a.screen.Size()

	a.mapView.UpdateDimensions(width, height)
	a.listView.UpdateDimensions(0, height-listHeight, listWidth, listHeight)
	a.reportView.UpdateDimensions(width, height)
	a.layersPanel.box = box{x: width - layersWidth, y: 1, width: layersWidth, height: layersHeight}
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	a.ctrl.Close()

	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.screen != nil {
		a.screen.Fini()
	}
}
